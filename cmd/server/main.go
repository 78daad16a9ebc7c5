package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/drilltable/internal/config"
	"github.com/JonMunkholm/drilltable/internal/core"
	"github.com/JonMunkholm/drilltable/internal/logging"
	"github.com/JonMunkholm/drilltable/internal/render"
	"github.com/JonMunkholm/drilltable/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded", "config", cfg)

	ctx := context.Background()

	// The database is only needed for postgres sources.
	var pool *pgxpool.Pool
	if cfg.Database.URL != "" {
		pool, err = connectDB(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
	}

	defs, err := core.LoadDefinitions(cfg.Tables.DefinitionsFile)
	if err != nil {
		slog.Error("failed to load table definitions", "error", err)
		os.Exit(1)
	}
	registry, err := core.NewRegistry(defs...)
	if err != nil {
		slog.Error("failed to register tables", "error", err)
		os.Exit(1)
	}

	svcCfg := core.ServiceConfig{
		Defaults: core.TableDefaults{
			PageSize:        cfg.Tables.PageSize,
			PageSizeOptions: cfg.Tables.PageSizeOptions,
			RootSentinel:    cfg.Tables.RootSentinel,
		},
		LoadTimeout:        cfg.Tables.LoadTimeout,
		MaxConcurrentLoads: cfg.Tables.MaxConcurrentLoads,
		LoadWait:           cfg.Tables.LoadWait,
		Cell:               render.DrillCell,
	}
	if pool != nil {
		svcCfg.DB = pool
	}
	service := core.NewService(registry, svcCfg)

	// Log registered tables
	slog.Info("tables registered",
		"count", registry.TableCount(),
		"groups", len(registry.Groups()),
	)
	for _, group := range registry.Groups() {
		slog.Debug("table group", "group", group, "tables", len(registry.ByGroup(group)))
	}

	if cfg.Tables.LoadOnStart {
		// Tables that fail here are retried on first view.
		if err := service.LoadAll(ctx); err != nil {
			slog.Warn("some tables failed to load", "error", err)
		}
	}

	server := web.NewServer(service, cfg)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartReloadScheduler(jobCtx, core.ReloadConfig{Interval: cfg.Tables.ReloadInterval})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Let in-flight source loads finish
		if err := service.WaitForLoads(shutdownCtx); err != nil {
			slog.Warn("loads still running at shutdown", "active", service.LoadStatus().Active)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// connectDB opens and pings a pool sized from cfg.
func connectDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}
