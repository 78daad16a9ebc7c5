package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/drilltable/internal/drill"
	"github.com/JonMunkholm/drilltable/internal/source"
)

const yamlDefinitions = `
tables:
  - key: org
    label: Organization
    group: People
    description: Reporting lines
    source:
      kind: file
      path: data/org.json
    fields:
      id: emp_id
      parent: manager_id
      linker: name
    root: none
    page_size: 5
    page_size_options: [5, 15]
    columns:
      - header: Name
        field: name
        sortable: true
      - header: Role
        columns:
          - header: Title
            field: title
          - header: Level
            field: level
            id: lvl
            sortable: true
  - key: ledger
    group: Finance
    source:
      kind: postgres
      query: SELECT id, parent, account FROM accounts
    columns:
      - header: Account
        field: account
`

const tomlDefinitions = `
[[tables]]
key = "org"
label = "Organization"
group = "People"
root = "none"
page_size = 5

[tables.source]
kind = "file"
path = "/srv/data/org.yaml"

[tables.fields]
id = "emp_id"
parent = "manager_id"

[[tables.columns]]
header = "Name"
field = "name"
sortable = true

[[tables.columns]]
header = "Role"

[[tables.columns.columns]]
header = "Title"
field = "title"
`

func TestLoadDefinitionsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDefinitions), 0o644))

	defs, err := LoadDefinitions(path)
	require.NoError(t, err)
	require.Len(t, defs, 2)

	org := defs[0]
	assert.Equal(t, TableInfo{Key: "org", Group: "People", Label: "Organization", Description: "Reporting lines"}, org.Info)
	assert.Equal(t, source.KindFile, org.Source.Kind)
	assert.Equal(t, filepath.Join(dir, "data", "org.json"), org.Source.Path)
	assert.Equal(t, FieldNames{ID: "emp_id", Parent: "manager_id", Linker: "name"}, org.Fields)
	assert.Equal(t, "none", org.RootSentinel)
	assert.Equal(t, 5, org.PageSize)
	assert.Equal(t, []int{5, 15}, org.PageSizeOptions)

	cols := org.DrillColumns()
	require.Len(t, cols, 2)
	assert.Equal(t, drill.Column{Header: "Name", Accessor: "name", Sortable: true}, cols[0])
	require.True(t, cols[1].IsGroup())
	assert.Equal(t, "lvl", cols[1].Columns[1].Key())
	assert.True(t, cols[1].Columns[1].Sortable)

	ledger := defs[1]
	assert.Equal(t, source.KindPostgres, ledger.Source.Kind)
	assert.Equal(t, "SELECT id, parent, account FROM accounts", ledger.Source.Query)
}

func TestDecodeDefinitionsTOML(t *testing.T) {
	defs, err := DecodeDefinitions(".toml", []byte(tomlDefinitions))
	require.NoError(t, err)
	require.Len(t, defs, 1)

	org := defs[0]
	assert.Equal(t, "org", org.Info.Key)
	assert.Equal(t, "/srv/data/org.yaml", org.Source.Path)
	assert.Equal(t, "emp_id", org.Fields.ID)
	assert.Equal(t, "none", org.RootSentinel)
	require.Len(t, org.Columns, 2)
	require.Len(t, org.Columns[1].Columns, 1)
	assert.Equal(t, "title", org.Columns[1].Columns[0].Field)
}

func TestDecodeDefinitionsErrors(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
		want string
	}{
		{"unsupported extension", ".json", `{}`, "unsupported file extension"},
		{"no tables", ".yaml", "tables: []\n", "no tables declared"},
		{"unknown yaml key", ".yaml", "tables:\n  - key: a\n    colums: []\n", "colums"},
		{"unknown toml key", ".toml", "[[tables]]\nkey = \"a\"\nlable = \"x\"\n", "unknown key"},
		{"missing key", ".yaml", "tables:\n  - columns: [{header: A, field: a}]\n", "key is required"},
		{"duplicate key", ".yaml", "tables:\n  - {key: a, columns: [{header: A, field: a}]}\n  - {key: a, columns: [{header: A, field: a}]}\n", "duplicate key"},
		{"no columns", ".yaml", "tables:\n  - key: a\n", "at least one column"},
		{"leaf without field", ".yaml", "tables:\n  - {key: a, columns: [{header: A}]}\n", `column "A" needs a field`},
		{"group with field", ".yaml", "tables:\n  - {key: a, columns: [{header: G, field: g, columns: [{header: A, field: a}]}]}\n", "cannot have a field"},
		{"negative page size", ".yaml", "tables:\n  - {key: a, page_size: -1, columns: [{header: A, field: a}]}\n", "page_size -1"},
		{"unknown source", ".yaml", "tables:\n  - {key: a, source: {kind: ftp}, columns: [{header: A, field: a}]}\n", `unknown source kind "ftp"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDefinitions(tt.ext, []byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDefinitions)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadDefinitionsMissingFile(t *testing.T) {
	_, err := LoadDefinitions(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read definitions")
}

func TestDefinitionOptions(t *testing.T) {
	defaults := TableDefaults{PageSize: 25, PageSizeOptions: []int{25, 50}, RootSentinel: "root"}

	opts := TableDefinition{}.Options(defaults)
	assert.Equal(t, drill.DefaultIdentifierField, opts.IdentifierField)
	assert.Equal(t, drill.DefaultParentIdentifierField, opts.ParentIdentifierField)
	assert.Equal(t, "root", opts.RootSentinel)
	assert.Equal(t, 25, opts.PageSize)
	assert.Equal(t, []int{25, 50}, opts.PageSizeOptions)
	assert.Equal(t, drill.DefaultIdentifierField, opts.Linker())

	opts = TableDefinition{
		Fields:          FieldNames{ID: "code", Parent: "up", Linker: "label"},
		RootSentinel:    "",
		PageSize:        7,
		PageSizeOptions: []int{7},
	}.Options(TableDefaults{})
	assert.Equal(t, "code", opts.IdentifierField)
	assert.Equal(t, "up", opts.ParentIdentifierField)
	assert.Equal(t, "label", opts.Linker())
	assert.Equal(t, drill.DefaultRootSentinel, opts.RootSentinel)
	assert.Equal(t, 7, opts.PageSize)
	assert.Equal(t, []int{7}, opts.PageSizeOptions)
	assert.NoError(t, opts.Validate())
}

func TestRegistry(t *testing.T) {
	reg, err := NewRegistry(
		TableDefinition{Info: TableInfo{Key: "b", Group: "Z"}},
		TableDefinition{Info: TableInfo{Key: "a", Group: "Z", Label: "Alpha"}},
		TableDefinition{Info: TableInfo{Key: "c", Group: "A"}},
	)
	require.NoError(t, err)

	assert.Equal(t, 3, reg.TableCount())
	assert.Equal(t, []string{"A", "Z"}, reg.Groups())

	var keys []string
	for _, def := range reg.All() {
		keys = append(keys, def.Info.Key)
	}
	assert.Equal(t, []string{"c", "a", "b"}, keys)

	z := reg.ByGroup("Z")
	require.Len(t, z, 2)
	assert.Equal(t, "Alpha", z[0].Info.Label)
	assert.Equal(t, "b", z[1].Info.Label, "label defaults to key")

	_, ok := reg.Get("missing")
	assert.False(t, ok)

	assert.ErrorContains(t, reg.Register(TableDefinition{Info: TableInfo{Key: "a"}}), "already registered")
	assert.ErrorContains(t, reg.Register(TableDefinition{}), "key is required")
}
