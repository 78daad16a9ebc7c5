package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/drilltable/internal/drill"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func keys(t *testing.T, records []drill.Record, field string) []string {
	t.Helper()
	out := make([]string, len(records))
	for i, r := range records {
		k, ok := drill.Key(r[field])
		require.True(t, ok, "record %d has no %s", i, field)
		out[i] = k
	}
	return out
}

func TestFileLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "json",
			file: "records.json",
			content: `[
				{"id": "root", "parent": "-1", "name": "Root"},
				{"id": "A", "parent": "root", "name": "Alpha"}
			]`,
		},
		{
			name: "yaml",
			file: "records.yaml",
			content: `
- id: root
  parent: "-1"
  name: Root
- id: A
  parent: root
  name: Alpha
`,
		},
		{
			name: "csv",
			file: "records.csv",
			content: "id,parent,name\nroot,-1,Root\nA,root,Alpha\n",
		},
		{
			name: "json with byte order mark",
			file: "bom.json",
			content: "\xEF\xBB\xBF" + `[{"id": "root", "parent": "-1"}, {"id": "A", "parent": "root", "name": "Alpha"}]`,
		},
		{
			name: "toml",
			file: "records.toml",
			content: `
[[records]]
id = "root"
parent = "-1"
name = "Root"

[[records]]
id = "A"
parent = "root"
name = "Alpha"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := File{Path: writeFile(t, tt.file, tt.content)}
			records, err := src.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, []string{"root", "A"}, keys(t, records, "id"))
			assert.Equal(t, []string{"-1", "root"}, keys(t, records, "parent"))
			assert.Equal(t, "Alpha", records[1]["name"])
		})
	}
}

func TestFileLoadNumericIDs(t *testing.T) {
	src := File{Path: writeFile(t, "n.yml", "- {id: 1, parent: -1}\n- {id: 2, parent: 1}\n")}
	records, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"-1", "1"}, keys(t, records, "parent"))
}

func TestFileLoadJSONKeepsLargeIntegerIDs(t *testing.T) {
	content := `[
		{"id": 9007199254740993, "parent": -1},
		{"id": 9007199254740992, "parent": -1},
		{"id": 9007199254740995, "parent": 9007199254740993}
	]`
	records, err := File{Path: writeFile(t, "big.json", content)}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"9007199254740993", "9007199254740992", "9007199254740995"}, keys(t, records, "id"))

	engine, err := drill.New(drill.Input{Records: records}, drill.DefaultOptions())
	require.NoError(t, err)

	s := engine.Update(engine.InitialState(), drill.Activate{ID: "9007199254740993"})
	assert.Equal(t, "9007199254740993", s.CurrentParent)
	rows := engine.Page(s, drill.SortBy{}).Rows
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"9007199254740995"}, keys(t, rows, "id"))
}

func TestFileLoadCSVCleansExportArtifacts(t *testing.T) {
	content := "\xEF\xBB\xBF" + "\"id\", parent ,Name\n" +
		"=\"007\",-1,Caf\xE9\n" +
		"\n" +
		"008,007,  'Bond'  \n"

	records, err := File{Path: writeFile(t, "export.csv", content)}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"007", "008"}, keys(t, records, "id"))
	assert.Equal(t, "Caf?", records[0]["Name"])
	assert.Equal(t, "Bond", records[1]["Name"])
	assert.Equal(t, int64(-1), records[0]["parent"])
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"42", int64(42)},
		{"-1", int64(-1)},
		{"3.25", 3.25},
		{"-0.5", -0.5},
		{"007", "007"},
		{"+5", "+5"},
		{"1e3", "1e3"},
		{"", ""},
		{"Alpha", "Alpha"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseCell(tt.in), "parseCell(%q)", tt.in)
	}
}

func TestFileLoadEmptyCSV(t *testing.T) {
	records, err := File{Path: writeFile(t, "empty.csv", "")}.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFileLoadErrors(t *testing.T) {
	_, err := File{Path: filepath.Join(t.TempDir(), "missing.json")}.Load(context.Background())
	assert.ErrorContains(t, err, "read source")

	_, err = File{Path: writeFile(t, "bad.json", "{not json")}.Load(context.Background())
	assert.ErrorContains(t, err, "decode source")

	_, err = File{Path: writeFile(t, "records.xml", "<records/>")}.Load(context.Background())
	assert.ErrorContains(t, err, "unsupported file extension")

	_, err = File{Path: writeFile(t, "ragged.csv", "id,parent\n1,-1,extra\n")}.Load(context.Background())
	assert.ErrorContains(t, err, "csv row")

	_, err = File{Path: writeFile(t, "dup.csv", "id,id\n1,2\n")}.Load(context.Background())
	assert.ErrorContains(t, err, "appears twice")
}

func TestFileLoadHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := File{Path: "ignored.json"}.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen(t *testing.T) {
	src, err := Open(Spec{Kind: KindFile, Path: "x.json"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "file:x.json", src.Describe())

	_, err = Open(Spec{Kind: KindFile}, nil)
	assert.ErrorContains(t, err, "path is required")

	_, err = Open(Spec{Kind: KindPostgres, Query: "select 1"}, nil)
	assert.ErrorContains(t, err, "no database configured")

	src, err = Open(Spec{Kind: "POSTGRES", Query: "select 1"}, &fakeQuerier{})
	require.NoError(t, err)
	assert.Equal(t, "postgres:select 1", src.Describe())

	_, err = Open(Spec{Kind: "ftp"}, nil)
	assert.ErrorContains(t, err, "unknown source kind")
}

// fakeQuerier returns canned rows.
type fakeQuerier struct {
	columns []string
	rows    [][]any
	err     error

	gotSQL string
}

func (q *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.gotSQL = sql
	if q.err != nil {
		return nil, q.err
	}
	return &fakeRows{columns: q.columns, rows: q.rows, pos: -1}, nil
}

type fakeRows struct {
	columns []string
	rows    [][]any
	pos     int
	closed  bool
}

func (r *fakeRows) Close() { r.closed = true }
func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	out := make([]pgconn.FieldDescription, len(r.columns))
	for i, c := range r.columns {
		out[i] = pgconn.FieldDescription{Name: c}
	}
	return out
}
func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.rows)
}
func (r *fakeRows) Scan(...any) error { return errors.New("not implemented") }
func (r *fakeRows) Values() ([]any, error) { return r.rows[r.pos], nil }
func (r *fakeRows) RawValues() [][]byte { return nil }
func (r *fakeRows) Conn() *pgx.Conn { return nil }

func TestPostgresLoad(t *testing.T) {
	id := uuid.New()
	q := &fakeQuerier{
		columns: []string{"id", "parent", "label"},
		rows: [][]any{
			{[16]byte(id), "-1", "Top"},
			{"child", id.String(), nil},
		},
	}

	records, err := Postgres{DB: q, Query: "SELECT id, parent, label FROM nodes"}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "SELECT id, parent, label FROM nodes", q.gotSQL)
	assert.Equal(t, id.String(), records[0]["id"])
	assert.Equal(t, "Top", records[0]["label"])
	assert.Equal(t, id.String(), records[1]["parent"])
	assert.Nil(t, records[1]["label"])
}

func TestPostgresLoadQueryError(t *testing.T) {
	q := &fakeQuerier{err: errors.New("dial tcp: connection refused")}
	_, err := Postgres{DB: q, Query: "SELECT 1"}.Load(context.Background())
	assert.ErrorContains(t, err, "query source")
	assert.ErrorContains(t, err, "connection refused")
}
