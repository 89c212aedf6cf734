// File: cmd/layout.go
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/boxflow/api/schemas"
)

type layoutOutput struct {
	File     string       `json:"file"`
	Title    string       `json:"title,omitempty"`
	Viewport schemas.Size `json:"viewport"`
	Nodes    []layoutNode `json:"nodes"`
}

func newLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout <file>",
		Short: "Lays out a document and prints the box of every node as JSON",
		Long: `Loads an HTML or XML document, lays it out in a viewport of the configured
size and prints one entry per node in document order. Ids are one-based;
rects are border boxes in document coordinates.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			w, doc, err := openDocument(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}
			defer w.Close()

			return writeJSON(cmd.OutOrStdout(), layoutOutput{
				File:     args[0],
				Title:    doc.Title,
				Viewport: w.State().Size,
				Nodes:    layoutNodes(w.Layout()),
			})
		},
	}
}
