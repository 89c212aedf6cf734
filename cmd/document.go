// cmd/document.go
package cmd

import (
	"context"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/config"
	"github.com/xkilldash9x/boxflow/internal/dom"
	"github.com/xkilldash9x/boxflow/internal/layout"
	"github.com/xkilldash9x/boxflow/internal/markup"
	"github.com/xkilldash9x/boxflow/internal/observability"
	"github.com/xkilldash9x/boxflow/internal/refany"
	"github.com/xkilldash9x/boxflow/internal/window"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// openDocument loads path and lays it out in a window sized by the config.
// The caller must Close the window.
func openDocument(ctx context.Context, cfg config.Interface, path string) (*window.Window, *markup.Document, error) {
	logger := observability.Component("document")

	doc, err := markup.NewLoader(logger).LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range doc.Warnings {
		logger.Warn("Skipped markup", zap.String("file", path), zap.String("detail", w))
	}

	l := cfg.Layout()
	state := schemas.FullWindowState{
		Size: schemas.Size{Width: l.ViewportWidth, Height: l.ViewportHeight},
		DPI:  l.DPI,
	}
	render := func(*refany.RefAny) *dom.Dom { return doc.Root }

	w, err := window.New(ctx, render, nil, state, window.OptionsFromConfig(cfg, nil), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("lay out %s: %w", path, err)
	}
	for _, m := range w.DebugMessages() {
		logger.Debug("Layout fallback", zap.String("location", m.Location), zap.String("message", m.Message))
	}
	return w, doc, nil
}

// layoutNode is the JSON form of one laid out node.
type layoutNode struct {
	ID      schemas.NodeID `json:"id"`
	Parent  schemas.NodeID `json:"parent,omitempty"`
	Tag     string         `json:"tag"`
	Text    string         `json:"text,omitempty"`
	Rect    schemas.Rect   `json:"rect"`
	Content schemas.Rect   `json:"content"`
	Hidden  bool           `json:"hidden,omitempty"`
}

func layoutNodes(r *layout.Result) []layoutNode {
	sd := r.Styled
	out := make([]layoutNode, 0, sd.Len())
	for i := range sd.Len() {
		id := schemas.NodeIDFromIndex(i)
		data := sd.NodeData.Get(id)
		pr := r.Rects.At(id)
		out = append(out, layoutNode{
			ID:      id,
			Parent:  sd.Hierarchy.Parent(id),
			Tag:     data.TagName(),
			Text:    data.Text,
			Rect:    pr.BorderBox(),
			Content: pr.ContentBox(),
			Hidden:  r.Contexts.At(id).Kind == layout.ContextNone,
		})
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
