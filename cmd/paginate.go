// cmd/paginate.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/boxflow/internal/observability"
	"github.com/xkilldash9x/boxflow/internal/pagination"
)

type paginateOutput struct {
	File          string            `json:"file"`
	PageHeight    float64           `json:"page_height"`
	ContentHeight float64           `json:"content_height"`
	PageCount     int               `json:"page_count"`
	Pages         []pagination.Page `json:"pages"`
}

func newPaginateCmd() *cobra.Command {
	var pageHeight float64
	cmd := &cobra.Command{
		Use:   "paginate <file>",
		Short: "Lays out a document and splits it into fixed-height pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("page-height") {
				pageHeight = cfg.Layout().PageHeight
			}
			if pageHeight <= 0 {
				return fmt.Errorf("page height must be positive (set --page-height or layout.page_height)")
			}

			w, _, err := openDocument(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}
			defer w.Close()

			r := w.Layout()
			var contentHeight float64
			for _, n := range layoutNodes(r) {
				contentHeight = max(contentHeight, n.Rect.MaxY())
			}
			pages := pagination.FromLayout(r, pageHeight, pagination.WithLogger(observability.Component("pagination")))
			return writeJSON(cmd.OutOrStdout(), paginateOutput{
				File:          args[0],
				PageHeight:    pageHeight,
				ContentHeight: contentHeight,
				PageCount:     pagination.PageCount(contentHeight, pageHeight),
				Pages:         pages,
			})
		},
	}
	cmd.Flags().Float64Var(&pageHeight, "page-height", 0, "page height in pixels (overrides layout.page_height)")
	return cmd
}
