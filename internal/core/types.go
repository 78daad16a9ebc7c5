package core

import (
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/drilltable/internal/drill"
	"github.com/JonMunkholm/drilltable/internal/source"
)

// TableInfo contains display information about a table.
type TableInfo struct {
	Key         string // Unique identifier: "org_chart"
	Group       string // Dashboard section: "People", "Finance"
	Label       string // Display name: "Org chart"
	Description string
}

// FieldNames names the record fields a table navigates by. Empty values
// fall back to the drill defaults.
type FieldNames struct {
	ID     string `yaml:"id" toml:"id"`
	Parent string `yaml:"parent" toml:"parent"`
	Linker string `yaml:"linker" toml:"linker"`
}

// ColumnSpec declares one node of a table's column tree.
type ColumnSpec struct {
	Header   string       `yaml:"header" toml:"header"`
	Field    string       `yaml:"field,omitempty" toml:"field,omitempty"`
	ID       string       `yaml:"id,omitempty" toml:"id,omitempty"`
	Sortable bool         `yaml:"sortable,omitempty" toml:"sortable,omitempty"`
	Columns  []ColumnSpec `yaml:"columns,omitempty" toml:"columns,omitempty"`
}

// TableDefinition contains everything needed to build a table.
type TableDefinition struct {
	Info            TableInfo
	Source          source.Spec
	Fields          FieldNames
	RootSentinel    string
	PageSize        int
	PageSizeOptions []int
	Columns         []ColumnSpec
}

// TableDefaults fill in what a definition leaves unset.
type TableDefaults struct {
	PageSize        int
	PageSizeOptions []int
	RootSentinel    string
}

// Options resolves the engine options for def.
func (def TableDefinition) Options(defaults TableDefaults) drill.Options {
	opts := drill.DefaultOptions()
	if def.Fields.ID != "" {
		opts.IdentifierField = def.Fields.ID
	}
	if def.Fields.Parent != "" {
		opts.ParentIdentifierField = def.Fields.Parent
	}
	opts.LinkerField = def.Fields.Linker

	switch {
	case def.RootSentinel != "":
		opts.RootSentinel = def.RootSentinel
	case defaults.RootSentinel != "":
		opts.RootSentinel = defaults.RootSentinel
	}

	switch {
	case def.PageSize != 0:
		opts.PageSize = def.PageSize
	case defaults.PageSize != 0:
		opts.PageSize = defaults.PageSize
	}

	switch {
	case len(def.PageSizeOptions) > 0:
		opts.PageSizeOptions = append([]int(nil), def.PageSizeOptions...)
	case len(defaults.PageSizeOptions) > 0:
		opts.PageSizeOptions = append([]int(nil), defaults.PageSizeOptions...)
	}

	return opts
}

// DrillColumns converts the declared column tree into engine columns.
func (def TableDefinition) DrillColumns() []drill.Column {
	return drillColumns(def.Columns)
}

func drillColumns(specs []ColumnSpec) []drill.Column {
	if len(specs) == 0 {
		return nil
	}
	cols := make([]drill.Column, len(specs))
	for i, spec := range specs {
		cols[i] = drill.Column{
			Header:   spec.Header,
			Accessor: spec.Field,
			ID:       spec.ID,
			Sortable: spec.Sortable,
			Columns:  drillColumns(spec.Columns),
		}
	}
	return cols
}

// Snapshot is one loaded record collection and the engine built over it.
// A reload replaces the snapshot; it is never modified.
type Snapshot struct {
	ID       uuid.UUID
	TableKey string
	Source   string
	Engine   *drill.Engine
	LoadedAt time.Time
}

// TableStatus summarizes a table for listings.
type TableStatus struct {
	Info       TableInfo `json:"info"`
	Loaded     bool      `json:"loaded"`
	SnapshotID string    `json:"snapshotId,omitempty"`
	Records    int       `json:"records"`
	LoadedAt   time.Time `json:"loadedAt,omitzero"`
}
