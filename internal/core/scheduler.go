package core

// scheduler.go refreshes loaded tables in the background.
//
// Each cycle re-reads the source of every table that currently has a
// snapshot. Tables nobody has opened stay unloaded. A failed reload is
// logged and the table keeps serving its previous snapshot; the scheduler
// itself never stops on errors, only when its context is cancelled.

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

// ReloadConfig holds configuration for the reload scheduler.
type ReloadConfig struct {
	Interval time.Duration // How often to reload; zero or negative disables the scheduler
}

// StartReloadScheduler reloads every loaded table each Interval until ctx
// is cancelled. It blocks, so run it in its own goroutine.
func (s *Service) StartReloadScheduler(ctx context.Context, cfg ReloadConfig) {
	if cfg.Interval <= 0 {
		slog.Debug("reload scheduler disabled")
		return
	}

	slog.Info("reload scheduler started", "interval", cfg.Interval)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("reload scheduler stopped")
			return
		case <-ticker.C:
			s.runReloadJob(ctx)
		}
	}
}

// runReloadJob performs one reload cycle and returns the joined errors.
func (s *Service) runReloadJob(ctx context.Context) error {
	start := time.Now()
	keys := s.loadedKeys()

	errs := make([]error, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limiter.MaxConcurrent())
	for i, key := range keys {
		g.Go(func() error {
			_, errs[i] = s.Reload(gctx, key)
			return nil
		})
	}
	_ = g.Wait()

	err := errors.Join(errs...)
	failed := 0
	for _, e := range errs {
		if e != nil {
			failed++
		}
	}

	level := slog.LevelInfo
	if failed > 0 {
		level = slog.LevelWarn
	}
	slog.Log(ctx, level, "reload job completed",
		"tables", len(keys),
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return err
}

// loadedKeys returns the keys that currently have a snapshot, sorted.
func (s *Service) loadedKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.snapshots))
	for key := range s.snapshots {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
