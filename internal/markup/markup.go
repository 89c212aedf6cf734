// internal/markup/markup.go
// Package markup turns HTML and XML documents into unstyled DOM trees. Inline
// style attributes are converted into typed properties; selectors and
// stylesheets in the document are ignored.
package markup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boxflow/internal/dom"
)

// ErrUnsupportedFormat is returned for documents that are neither HTML nor XML.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Format is the syntax of a document.
type Format string

const (
	FormatHTML Format = "html"
	FormatXML  Format = "xml"
)

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatHTML, nil
	case ".xml", ".xhtml":
		return FormatXML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Document is a loaded document.
type Document struct {
	Root  *dom.Dom
	Title string
	// Warnings lists the attributes and declarations that were skipped.
	Warnings []string
}

// Loader converts documents into DOM trees.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a loader. A nil logger discards output.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger.Named("markup")}
}

// Load parses r in the given format.
func (l *Loader) Load(r io.Reader, format Format) (*Document, error) {
	var (
		doc *Document
		err error
	)
	switch format {
	case FormatHTML:
		doc, err = l.loadHTML(r)
	case FormatXML:
		doc, err = l.loadXML(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	for _, w := range doc.Warnings {
		l.logger.Debug("skipped markup", zap.String("detail", w))
	}
	l.logger.Debug("document loaded", zap.String("format", string(format)), zap.Int("nodes", doc.Root.Len()))
	return doc, nil
}

// LoadFile reads a document, choosing the format by extension.
func (l *Loader) LoadFile(path string) (*Document, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()
	doc, err := l.Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return doc, nil
}

// builder accumulates warnings while mapping elements of either syntax.
type builder struct {
	warnings []string
}

func (b *builder) warnf(format string, args ...any) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

// skippedElements never produce nodes.
var skippedElements = map[string]bool{
	"head": true, "script": true, "style": true, "title": true, "meta": true, "link": true, "template": true,
}

// element builds the node for tag with attrs. It returns nil when the
// element is skipped.
func (b *builder) element(tag string, attrs []attribute) *dom.Dom {
	tag = strings.ToLower(tag)
	if skippedElements[tag] {
		return nil
	}
	var d *dom.Dom
	switch tag {
	case "br":
		d = dom.Br()
	case "img":
		img := dom.ImageRef{}
		for _, a := range attrs {
			switch a.name {
			case "src":
				img.Key = a.value
			case "width":
				img.Width = b.number(tag, a)
			case "height":
				img.Height = b.number(tag, a)
			}
		}
		d = dom.Image(img)
	case "icon":
		name := ""
		for _, a := range attrs {
			if a.name == "name" {
				name = a.value
			}
		}
		d = dom.Icon(name)
	case "iframe":
		b.warnf("<iframe> has no render callback and is skipped")
		return nil
	default:
		d = dom.Element(tag)
	}

	col, row := 1, 1
	for _, a := range attrs {
		switch {
		case a.name == "id":
			for _, id := range strings.Fields(a.value) {
				d.WithID(id)
			}
		case a.name == "class":
			for _, c := range strings.Fields(a.value) {
				d.WithClass(c)
			}
		case a.name == "style":
			props, errs := ParseInlineStyle(a.value)
			d.WithStyle(props...)
			for _, err := range errs {
				b.warnf("<%s style>: %v", tag, err)
			}
		case a.name == "tabindex":
			d.WithTabIndex(b.tabIndex(tag, a))
		case a.name == "colspan":
			col = max(int(b.number(tag, a)), 1)
		case a.name == "rowspan":
			row = max(int(b.number(tag, a)), 1)
		case strings.HasPrefix(a.name, "data-"):
			d.WithDataset(strings.TrimPrefix(a.name, "data-"), a.value)
		}
	}
	if col != 1 || row != 1 {
		d.WithSpan(col, row)
	}
	return d
}

// text builds a text node with collapsed white space, or nil when only
// white space remains.
func (b *builder) text(s string) *dom.Dom {
	collapsed := strings.Join(strings.Fields(s), " ")
	if collapsed == "" {
		return nil
	}
	if startsWithSpace(s) {
		collapsed = " " + collapsed
	}
	if endsWithSpace(s) {
		collapsed += " "
	}
	return dom.Text(collapsed)
}

func startsWithSpace(s string) bool {
	return s != "" && strings.TrimLeft(s, " \t\r\n\f") != s
}

func endsWithSpace(s string) bool {
	return s != "" && strings.TrimRight(s, " \t\r\n\f") != s
}

func (b *builder) number(tag string, a attribute) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(a.value), "px"), 64)
	if err != nil {
		b.warnf("<%s %s=%q>: not a number", tag, a.name, a.value)
		return 0
	}
	return v
}

func (b *builder) tabIndex(tag string, a attribute) dom.TabIndex {
	v, err := strconv.Atoi(strings.TrimSpace(a.value))
	switch {
	case err != nil:
		b.warnf("<%s tabindex=%q>: not an integer", tag, a.value)
		return dom.TabIndex{}
	case v < 0:
		return dom.TabIndex{Kind: dom.TabNoKeyboardFocus}
	case v == 0:
		return dom.TabIndex{Kind: dom.TabAuto}
	}
	return dom.TabIndex{Kind: dom.TabOrder, Order: uint32(v)}
}

// attribute is a lower-cased attribute name and its raw value.
type attribute struct {
	name  string
	value string
}
