// internal/markup/xml.go
package markup

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"

	"github.com/xkilldash9x/boxflow/internal/dom"
)

// loadXML parses an XML document. The root element becomes the root node
// whatever its name; an XHTML document is unwrapped to its <body>.
func (l *Loader) loadXML(r io.Reader) (*Document, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parse xml: document has no root element")
	}

	out := &Document{}
	if strings.EqualFold(root.Tag, "html") {
		if title := root.FindElement("./head/title"); title != nil {
			out.Title = strings.TrimSpace(title.Text())
		}
		if body := root.SelectElement("body"); body != nil {
			root = body
		}
	}

	b := &builder{}
	node := b.element(root.Tag, xmlAttributes(root))
	if node == nil {
		return nil, fmt.Errorf("parse xml: root element <%s> is not renderable", root.Tag)
	}
	b.xmlChildren(node, root)
	out.Root = node
	out.Warnings = b.warnings
	return out, nil
}

func (b *builder) xmlChildren(parent *dom.Dom, e *etree.Element) {
	for _, tok := range e.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			if t := b.text(t.Data); t != nil {
				parent.WithChild(t)
			}
		case *etree.Element:
			child := b.element(t.Tag, xmlAttributes(t))
			if child == nil {
				continue
			}
			b.xmlChildren(child, t)
			parent.WithChild(child)
		}
	}
}

func xmlAttributes(e *etree.Element) []attribute {
	out := make([]attribute, 0, len(e.Attr))
	for _, a := range e.Attr {
		out = append(out, attribute{name: strings.ToLower(a.Key), value: a.Value})
	}
	return out
}
