package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/dispatch"
	"github.com/xkilldash9x/boxflow/internal/layout"
)

type hitNode struct {
	Dom       schemas.DomID  `json:"dom"`
	Node      schemas.NodeID `json:"node"`
	Tag       string         `json:"tag"`
	Focusable bool           `json:"focusable,omitempty"`
	Rect      schemas.Rect   `json:"rect"`
}

type textHit struct {
	Node   schemas.NodeID `json:"node"`
	Offset int            `json:"offset"`
}

type hitTestOutput struct {
	Point schemas.Point `json:"point"`
	// Hits lists the interactive nodes under the point, topmost first.
	Hits []hitNode `json:"hits"`
	Text *textHit  `json:"text,omitempty"`
}

func newHitTestCmd() *cobra.Command {
	var x, y float64
	cmd := &cobra.Command{
		Use:   "hittest <file>",
		Short: "Reports the nodes and text position under a point",
		Long: `Lays out a document and reports the nodes under (x, y) that can react to
input: nodes with callbacks, focusable nodes, iframes, scroll containers and
nodes with :hover, :active or :focus rules. The caret position inside the
text under the point is reported as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			w, _, err := openDocument(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}
			defer w.Close()

			r := w.Layout()
			point := schemas.Point{X: x, Y: y}
			items := layout.HitTest(r, point, w.Scroll())

			out := hitTestOutput{Point: point, Hits: []hitNode{}}
			for _, id := range dispatch.HitNodes(r, items) {
				res, ok := r.Find(id.Dom)
				if !ok {
					continue
				}
				data := res.Styled.NodeData.Get(id.Node)
				out.Hits = append(out.Hits, hitNode{
					Dom:       id.Dom,
					Node:      id.Node,
					Tag:       data.TagName(),
					Focusable: data.TabIndex.IsFocusable(),
					Rect:      res.Rect(id.Node),
				})
			}
			if th, ok := layout.HitTestText(r, point); ok {
				out.Text = &textHit{Node: th.Node, Offset: th.Offset}
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "x coordinate in pixels")
	cmd.Flags().Float64Var(&y, "y", 0, "y coordinate in pixels")
	return cmd
}
