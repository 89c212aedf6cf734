// internal/markup/html.go
package markup

import (
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/boxflow/internal/dom"
)

// loadHTML parses an HTML document and maps its <body> onto the root node.
func (l *Loader) loadHTML(r io.Reader) (*Document, error) {
	doc, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	body := htmlquery.FindOne(doc, "//body")
	if body == nil {
		return nil, fmt.Errorf("parse html: document has no body")
	}

	b := &builder{}
	root := b.element("body", htmlAttributes(body))
	b.htmlChildren(root, body)

	out := &Document{Root: root, Warnings: b.warnings}
	if title := htmlquery.FindOne(doc, "//head/title"); title != nil {
		out.Title = strings.TrimSpace(htmlquery.InnerText(title))
	}
	return out, nil
}

func (b *builder) htmlChildren(parent *dom.Dom, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if t := b.text(c.Data); t != nil {
				parent.WithChild(t)
			}
		case html.ElementNode:
			child := b.element(c.Data, htmlAttributes(c))
			if child == nil {
				continue
			}
			b.htmlChildren(child, c)
			parent.WithChild(child)
		}
	}
}

func htmlAttributes(n *html.Node) []attribute {
	out := make([]attribute, 0, len(n.Attr))
	for _, a := range n.Attr {
		out = append(out, attribute{name: strings.ToLower(a.Key), value: a.Val})
	}
	return out
}
