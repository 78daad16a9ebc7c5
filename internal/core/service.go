package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/JonMunkholm/drilltable/internal/drill"
	"github.com/JonMunkholm/drilltable/internal/logging"
	"github.com/JonMunkholm/drilltable/internal/source"
)

// DefaultLoadTimeout bounds a single source load when ServiceConfig leaves
// LoadTimeout unset.
var DefaultLoadTimeout = 30 * time.Second

// ErrTableNotFound is returned for keys missing from the registry.
var ErrTableNotFound = errors.New("table not found")

// ErrRecordNotFound is returned when activating an unknown identifier.
var ErrRecordNotFound = errors.New("record not found")

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// DB serves postgres sources. Nil when no definition needs it.
	DB source.Querier

	Defaults    TableDefaults
	LoadTimeout time.Duration

	// MaxConcurrentLoads and LoadWait size the LoadLimiter shared by every
	// source load. Zero values use DefaultMaxConcurrentLoads and
	// DefaultLoadWait.
	MaxConcurrentLoads int
	LoadWait           time.Duration

	// Cell renders the linker column of every table. The HTML and terminal
	// frontends each supply their own.
	Cell drill.CellComponent

	// CellExtra is passed to Cell.
	CellExtra map[string]any
}

// Service owns the registered tables and the snapshot each one is
// currently displaying.
type Service struct {
	registry *Registry
	cfg      ServiceConfig
	open     func(source.Spec, source.Querier) (source.Source, error)
	now      func() time.Time

	loads   singleflight.Group
	limiter *LoadLimiter

	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

// NewService creates a new Service instance.
func NewService(registry *Registry, cfg ServiceConfig) *Service {
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = DefaultLoadTimeout
	}
	return &Service{
		registry:  registry,
		cfg:       cfg,
		open:      source.Open,
		now:       time.Now,
		limiter:   NewLoadLimiter(cfg.MaxConcurrentLoads, cfg.LoadWait),
		snapshots: make(map[string]*Snapshot),
	}
}

// Registry returns the service's table registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// ListTables returns information about all registered tables.
func (s *Service) ListTables() []TableInfo {
	defs := s.registry.All()
	infos := make([]TableInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// ListTablesByGroup returns tables organized by group.
func (s *Service) ListTablesByGroup() map[string][]TableInfo {
	result := make(map[string][]TableInfo)
	for _, group := range s.registry.Groups() {
		for _, def := range s.registry.ByGroup(group) {
			result[group] = append(result[group], def.Info)
		}
	}
	return result
}

// Status reports every table with its current snapshot, if any.
func (s *Service) Status() []TableStatus {
	defs := s.registry.All()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]TableStatus, len(defs))
	for i, def := range defs {
		st := TableStatus{Info: def.Info}
		if snap, ok := s.snapshots[def.Info.Key]; ok {
			st.Loaded = true
			st.SnapshotID = snap.ID.String()
			st.Records = snap.Engine.Len()
			st.LoadedAt = snap.LoadedAt
		}
		out[i] = st
	}
	return out
}

// Definition returns the definition registered under key.
func (s *Service) Definition(key string) (TableDefinition, error) {
	def, ok := s.registry.Get(key)
	if !ok {
		return TableDefinition{}, fmt.Errorf("%w: %s", ErrTableNotFound, key)
	}
	return def, nil
}

// Snapshot returns the current snapshot of key, loading it on first use.
func (s *Service) Snapshot(ctx context.Context, key string) (*Snapshot, error) {
	s.mu.RLock()
	snap, ok := s.snapshots[key]
	s.mu.RUnlock()
	if ok {
		return snap, nil
	}
	return s.load(ctx, key)
}

// Reload fetches key's records again and swaps in a new snapshot. On
// failure the previous snapshot stays in place.
func (s *Service) Reload(ctx context.Context, key string) (*Snapshot, error) {
	return s.load(ctx, key)
}

// LoadAll loads every registered table. Failures are logged and joined;
// tables that loaded successfully remain available.
func (s *Service) LoadAll(ctx context.Context) error {
	defs := s.registry.All()
	errs := make([]error, len(defs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limiter.MaxConcurrent())
	for i, def := range defs {
		g.Go(func() error {
			_, errs[i] = s.load(ctx, def.Info.Key)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// LoadStatus reports how many source loads are running.
func (s *Service) LoadStatus() LoadLimiterStatus {
	return s.limiter.Status()
}

// WaitForLoads blocks until in-flight source loads finish or ctx is done.
func (s *Service) WaitForLoads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Activate applies an activation of record id to state. The second result
// reports whether the state moved to a new level.
func (s *Service) Activate(ctx context.Context, key string, state drill.State, id string) (drill.State, bool, error) {
	snap, err := s.Snapshot(ctx, key)
	if err != nil {
		return state, false, err
	}
	e := snap.Engine
	if _, ok := e.Lookup(id); !ok {
		return state, false, fmt.Errorf("%w: %q in table %s", ErrRecordNotFound, id, key)
	}
	state = e.Normalize(state)
	next := e.Update(state, drill.Activate{ID: id})
	return next, next != state, nil
}

// load runs one source load per key at a time; concurrent callers share
// the result.
func (s *Service) load(ctx context.Context, key string) (*Snapshot, error) {
	def, err := s.Definition(key)
	if err != nil {
		return nil, err
	}

	v, err, _ := s.loads.Do(key, func() (any, error) {
		return s.build(ctx, def)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

func (s *Service) build(ctx context.Context, def TableDefinition) (*Snapshot, error) {
	key := def.Info.Key
	ctx = logging.WithTable(ctx, key)
	logger := logging.FromContext(ctx)

	src, err := s.open(def.Source, s.cfg.DB)
	if err != nil {
		logger.Error("open source failed", "error", err)
		return nil, fmt.Errorf("table %s: %w", key, err)
	}
	logger = logger.With("source", src.Describe())

	if err := s.limiter.Acquire(ctx); err != nil {
		logger.Warn("load slot unavailable", "active", s.limiter.ActiveCount(), "error", err)
		return nil, fmt.Errorf("table %s: %w", key, err)
	}
	defer s.limiter.Release()

	loadCtx, cancel := context.WithTimeout(ctx, s.cfg.LoadTimeout)
	defer cancel()

	start := s.now()
	records, err := src.Load(loadCtx)
	if err != nil {
		logger.Error("load records failed", "error", err)
		return nil, fmt.Errorf("table %s: %w", key, err)
	}

	engine, err := drill.New(drill.Input{
		Records:   records,
		Columns:   def.DrillColumns(),
		Cell:      s.cfg.Cell,
		CellExtra: s.cfg.CellExtra,
	}, def.Options(s.cfg.Defaults))
	if err != nil {
		logger.Error("build table failed", "records", len(records), "error", err)
		return nil, fmt.Errorf("table %s: %w", key, err)
	}

	snap := &Snapshot{
		ID:       uuid.New(),
		TableKey: key,
		Source:   src.Describe(),
		Engine:   engine,
		LoadedAt: s.now(),
	}

	s.mu.Lock()
	s.snapshots[key] = snap
	s.mu.Unlock()

	logger.Info("table loaded",
		"snapshot_id", snap.ID,
		"records", engine.Len(),
		"duration", snap.LoadedAt.Sub(start),
	)
	return snap, nil
}
