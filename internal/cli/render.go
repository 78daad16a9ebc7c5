package cli

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/drilltable/internal/drill"
	"github.com/JonMunkholm/drilltable/internal/tui"
)

type renderOpts struct {
	table  string
	parent string
	page   int
	size   int
	sort   string
	dir    string
}

func newRenderCmd(g *globalFlags) *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print one page of a table",
		Long: `Print one page of a table as a text table.

Pages are 1-based. Without --parent the top level is shown.`,
		Example: `  drilltable render --table org
  drilltable render --table org --parent ceo --page 2 --size 20
  drilltable render --table org --sort name --dir desc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, closeFn, err := newTUIService(ctx, g)
			if err != nil {
				return err
			}
			defer closeFn()

			def, err := svc.Definition(opts.table)
			if err != nil {
				return err
			}
			snap, err := svc.Snapshot(ctx, opts.table)
			if err != nil {
				return err
			}

			e := snap.Engine
			state := e.InitialState()
			if cmd.Flags().Changed("parent") {
				state.CurrentParent = opts.parent
			}
			if opts.size > 0 {
				state.PageSize = opts.size
			}
			state = e.Update(state, drill.GotoPage{Index: opts.page - 1})

			var sort drill.SortBy
			if dir := drill.ParseSortDirection(opts.dir); opts.sort != "" && dir != drill.Unsorted {
				sort = drill.SortBy{Column: opts.sort, Direction: dir}
			}

			loggerFromContext(ctx).Debug("render",
				"table", opts.table,
				"parent", state.CurrentParent,
				"page", state.PageIndex+1,
				"size", state.PageSize,
			)
			return tui.RenderPage(cmd.OutOrStdout(), def.Info.Label, e.View(state, sort))
		},
	}

	cmd.Flags().StringVarP(&opts.table, "table", "t", "", "table key (required)")
	cmd.Flags().StringVar(&opts.parent, "parent", "", "parent identifier of the level to show")
	cmd.Flags().IntVar(&opts.page, "page", 1, "page number, 1-based")
	cmd.Flags().IntVar(&opts.size, "size", 0, "rows per page (default: the table's page size)")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "sortable column to sort by")
	cmd.Flags().StringVar(&opts.dir, "dir", "asc", "sort direction: asc or desc")
	_ = cmd.MarkFlagRequired("table")

	return cmd
}
