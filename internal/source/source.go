// Package source loads record collections for drill-down tables.
//
// A Source only fetches data; it knows nothing about hierarchy or paging.
// The collection it returns is validated by the drill engine when a table
// snapshot is built.
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/drilltable/internal/drill"
)

// Source loads a full record collection.
type Source interface {
	Load(ctx context.Context) ([]drill.Record, error)

	// Describe returns a short human-readable origin, for logs.
	Describe() string
}

// Kind names a source implementation in table definitions.
type Kind string

const (
	KindFile     Kind = "file"
	KindPostgres Kind = "postgres"
)

// Spec declares where a table's records come from.
type Spec struct {
	Kind  Kind   `yaml:"kind" toml:"kind"`
	Path  string `yaml:"path,omitempty" toml:"path,omitempty"`
	Query string `yaml:"query,omitempty" toml:"query,omitempty"`
}

// Open returns the Source described by spec. db may be nil when no
// definition uses PostgreSQL.
func Open(spec Spec, db Querier) (Source, error) {
	switch Kind(strings.ToLower(string(spec.Kind))) {
	case KindFile, "":
		if spec.Path == "" {
			return nil, fmt.Errorf("file source: path is required")
		}
		return File{Path: spec.Path}, nil

	case KindPostgres:
		if spec.Query == "" {
			return nil, fmt.Errorf("postgres source: query is required")
		}
		if db == nil {
			return nil, fmt.Errorf("postgres source: no database configured (set DATABASE_URL)")
		}
		return Postgres{DB: db, Query: spec.Query}, nil

	default:
		return nil, fmt.Errorf("unknown source kind %q", spec.Kind)
	}
}
