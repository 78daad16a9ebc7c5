// Package cli implements the drilltable command-line interface.
//
// # Commands
//
//   - browse: interactive terminal browser over the defined tables
//   - render: print one page of a table as a text table
//   - tables: list the defined tables
//
// Every command reads the same table definitions file as the server
// (TABLES_FILE, or --defs) and the same environment, including a .env file
// in the working directory.
//
// # Logging
//
// Commands log through charmbracelet/log on stderr; --verbose switches to
// debug level. The service's slog output is routed through the same logger.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/drilltable/internal/config"
	"github.com/JonMunkholm/drilltable/internal/core"
	"github.com/JonMunkholm/drilltable/internal/drill"
	"github.com/JonMunkholm/drilltable/internal/tui"
)

const appName = "drilltable"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersion sets the values printed by --version. main calls it with
// values injected through ldflags.
func SetVersion(v, c, d string) {
	version, commit, date = v, c, d
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	verbose     bool
	defs        string
	databaseURL string
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	return newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:          appName,
		Short:        "drilltable browses hierarchical record collections",
		Long:         `drilltable turns flat records that point at their parent into navigable, paginated tables you can drill into level by level.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if g.verbose {
				level = log.DebugLevel
			}
			logger := newLogger(errOut, level)
			slog.SetDefault(slog.New(logger))
			cmd.SetContext(withLogger(cmd.Context(), logger))
		},
	}

	root.SetOut(out)
	root.SetErr(errOut)
	root.SetVersionTemplate(fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n", appName, version, commit, date))

	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&g.defs, "defs", "", "table definitions file (default: $TABLES_FILE or tables.yaml)")
	root.PersistentFlags().StringVar(&g.databaseURL, "database-url", "", "PostgreSQL URL for postgres sources (default: $DATABASE_URL)")

	root.AddCommand(newBrowseCmd(&g))
	root.AddCommand(newRenderCmd(&g))
	root.AddCommand(newTablesCmd(&g))

	return root
}

// openService builds a Service from the environment and g. The returned
// close function releases the database pool, if one was opened.
func openService(ctx context.Context, g *globalFlags, cell drill.CellComponent) (*core.Service, func(), error) {
	// .env is optional, as for the server.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if g.defs != "" {
		cfg.Tables.DefinitionsFile = g.defs
	}
	if g.databaseURL != "" {
		cfg.Database.URL = g.databaseURL
	}

	logger := loggerFromContext(ctx)
	p := newProgress(logger)

	defs, err := core.LoadDefinitions(cfg.Tables.DefinitionsFile)
	if err != nil {
		return nil, nil, err
	}
	reg, err := core.NewRegistry(defs...)
	if err != nil {
		return nil, nil, err
	}
	p.done(fmt.Sprintf("Loaded %d table definitions from %s", reg.TableCount(), cfg.Tables.DefinitionsFile))

	svcCfg := core.ServiceConfig{
		Defaults: core.TableDefaults{
			PageSize:        cfg.Tables.PageSize,
			PageSizeOptions: cfg.Tables.PageSizeOptions,
			RootSentinel:    cfg.Tables.RootSentinel,
		},
		LoadTimeout:        cfg.Tables.LoadTimeout,
		MaxConcurrentLoads: cfg.Tables.MaxConcurrentLoads,
		LoadWait:           cfg.Tables.LoadWait,
		Cell:               cell,
	}

	closeFn := func() {}
	if cfg.Database.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		logger.Debug("database pool opened", "max_conns", pool.Config().MaxConns)
		svcCfg.DB = pool
		closeFn = pool.Close
	}

	return core.NewService(reg, svcCfg), closeFn, nil
}

// newTUIService opens a service whose linker cells render for the terminal.
func newTUIService(ctx context.Context, g *globalFlags) (*core.Service, func(), error) {
	return openService(ctx, g, tui.LinkCell)
}
