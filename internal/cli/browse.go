package cli

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/drilltable/internal/core"
	"github.com/JonMunkholm/drilltable/internal/tui"
)

func newBrowseCmd(g *globalFlags) *cobra.Command {
	var table string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse tables interactively",
		Long: `Open the interactive browser. Without --table it starts on the table menu.

Keys: arrows move, enter drills into a row, backspace goes up a level,
n/p change page, +/- change the page size, tab and s sort, r reloads.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, closeFn, err := newTUIService(ctx, g)
			if err != nil {
				return err
			}
			defer closeFn()

			model := tui.New(svc)
			if table != "" {
				if _, err := svc.Definition(table); err != nil {
					return fmt.Errorf("%w (see `%s tables`)", err, appName)
				}
				model = model.StartOn(table)
			}

			// The browser owns the terminal; log lines would tear the screen.
			logger := loggerFromContext(ctx)
			logger.SetOutput(io.Discard)
			defer logger.SetOutput(cmd.ErrOrStderr())

			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&table, "table", "t", "", "table key to open")
	return cmd
}

func newTablesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the defined tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := newTUIService(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer closeFn()

			return printTables(cmd.OutOrStdout(), svc.ListTables())
		},
	}
}

func printTables(w io.Writer, tables []core.TableInfo) error {
	for _, t := range tables {
		group := t.Group
		if group == "" {
			group = "-"
		}
		if _, err := fmt.Fprintf(w, "%-20s %-14s %s\n", t.Key, group, t.Label); err != nil {
			return err
		}
	}
	return nil
}
