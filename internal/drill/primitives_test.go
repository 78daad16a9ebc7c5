package drill_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/JonMunkholm/drilltable/internal/drill"
)

func TestHasChildrenMembership(t *testing.T) {
	tests := []struct {
		name    string
		record  drill.Record
		parents []string
		want    bool
	}{
		{"member", drill.Record{"id": "a"}, []string{"a"}, true},
		{"not a member", drill.Record{"id": "b"}, []string{"a"}, false},
		{"duplicates ignored", drill.Record{"id": "a"}, []string{"a", "a", "a"}, true},
		{"order ignored", drill.Record{"id": "a"}, []string{"z", "y", "a"}, true},
		{"missing id", drill.Record{"name": "a"}, []string{"a"}, false},
		{"empty parent list", drill.Record{"id": "a"}, nil, false},
		{"numeric id", drill.Record{"id": 42}, []string{"42"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := drill.HasChildren(tt.record, drill.NewParentSet(tt.parents...), "id")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCollectParents(t *testing.T) {
	set := drill.CollectParents(exampleRecords(), "parent")
	assert.Len(t, set, 3)
	assert.True(t, set.Contains("-1"))
	assert.True(t, set.Contains("root"))
	assert.True(t, set.Contains("A"))
	assert.False(t, set.Contains("B"))
}

func TestPaginate(t *testing.T) {
	rows := []drill.Record{{"id": 1}, {"id": 2}, {"id": 3}, {"id": 4}, {"id": 5}}

	tests := []struct {
		name      string
		pageIndex int
		pageSize  int
		want      int
	}{
		{"full page", 0, 2, 2},
		{"short last page", 2, 2, 1},
		{"past the end", 3, 2, 0},
		{"far past the end", 100, 2, 0},
		{"negative index", -1, 2, 0},
		{"zero size", 0, 0, 0},
		{"size larger than rows", 0, 10, 5},
		{"max index", math.MaxInt, 2, 0},
		{"max index minus one", math.MaxInt - 1, 10, 0},
		{"max size", 0, math.MaxInt, 5},
		{"max size second page", 1, math.MaxInt, 0},
		{"max index and size", math.MaxInt, math.MaxInt, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := drill.Paginate(rows, tt.pageIndex, tt.pageSize)
			assert.NotNil(t, got)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestPaginateDoesNotShareCapacity(t *testing.T) {
	rows := []drill.Record{{"id": 1}, {"id": 2}, {"id": 3}}
	page := drill.Paginate(rows, 0, 2)
	_ = append(page, drill.Record{"id": 99})
	assert.Equal(t, 3, rows[2]["id"])
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, drill.PageCount(0, 10))
	assert.Equal(t, 1, drill.PageCount(1, 10))
	assert.Equal(t, 1, drill.PageCount(10, 10))
	assert.Equal(t, 2, drill.PageCount(11, 10))
	assert.Equal(t, 0, drill.PageCount(5, 0))
	assert.Equal(t, 1, drill.PageCount(5, math.MaxInt))
	assert.Equal(t, 1, drill.PageCount(math.MaxInt, math.MaxInt))
}

func TestSortDirection(t *testing.T) {
	assert.Equal(t, "", drill.Unsorted.Class())
	assert.Equal(t, "asc", drill.Ascending.Class())
	assert.Equal(t, "desc", drill.Descending.Class())

	assert.Equal(t, drill.Ascending, drill.Unsorted.Next())
	assert.Equal(t, drill.Descending, drill.Ascending.Next())
	assert.Equal(t, drill.Unsorted, drill.Descending.Next())

	assert.Equal(t, drill.Descending, drill.ParseSortDirection(" DESC "))
	assert.Equal(t, drill.Unsorted, drill.ParseSortDirection("sideways"))
}

func TestSortByToggle(t *testing.T) {
	name := drill.Column{Accessor: "name", Sortable: true}

	s := drill.SortBy{}.Toggle(name)
	assert.Equal(t, drill.SortBy{Column: "name", Direction: drill.Ascending}, s)
	s = s.Toggle(name)
	assert.Equal(t, drill.SortBy{Column: "name", Direction: drill.Descending}, s)
	s = s.Toggle(name)
	assert.Equal(t, drill.SortBy{}, s)
}

func TestSortRows(t *testing.T) {
	rows := []drill.Record{
		{"id": "a", "n": 10},
		{"id": "b", "n": 2},
		{"id": "c", "n": nil},
		{"id": "d", "n": 2},
	}
	get := func(r drill.Record) any { return r["n"] }

	assert.Equal(t, []string{"c", "b", "d", "a"}, ids(drill.SortRows(rows, get, drill.Ascending)))
	assert.Equal(t, []string{"a", "b", "d", "c"}, ids(drill.SortRows(rows, get, drill.Descending)))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(drill.SortRows(rows, get, drill.Unsorted)))
	assert.Equal(t, "a", rows[0]["id"], "input untouched")
}

func TestCompareValues(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, -1, drill.CompareValues(2, 10.5))
	assert.Equal(t, 1, drill.CompareValues("b", "a"))
	assert.Equal(t, -1, drill.CompareValues(day, day.Add(time.Hour)))
	assert.Equal(t, -1, drill.CompareValues(false, true))
	assert.Equal(t, 0, drill.CompareValues(nil, nil))
	assert.Equal(t, 1, drill.CompareValues("x", nil))

	// Neighbouring integers above 2^53 share a float64.
	assert.Equal(t, 1, drill.CompareValues(int64(9007199254740993), int64(9007199254740992)))
	assert.Equal(t, 1, drill.CompareValues(json.Number("9007199254740993"), json.Number("9007199254740992")))
	assert.Equal(t, -1, drill.CompareValues(json.Number("2"), 10))
	assert.Equal(t, 1, drill.CompareValues(json.Number("2.5"), 2))
	assert.Equal(t, 1, drill.CompareValues(uint64(math.MaxUint64), int64(1)))
}

func TestKey(t *testing.T) {
	id := uuid.MustParse("7f1d7c3c-5a5e-4c1b-9c38-2b1c5f8a6d10")

	tests := []struct {
		in   any
		want string
		ok   bool
	}{
		{nil, "", false},
		{"abc", "abc", true},
		{7, "7", true},
		{int64(-7), "-7", true},
		{uint32(7), "7", true},
		{float64(7), "7", true},
		{1.5, "1.5", true},
		{json.Number("7"), "7", true},
		{json.Number("7.0"), "7", true},
		{json.Number("1e3"), "1000", true},
		{json.Number("1.5"), "1.5", true},
		{json.Number("9007199254740993"), "9007199254740993", true},
		{json.Number("123456789012345678901234567890"), "123456789012345678901234567890", true},
		{int64(9007199254740993), "9007199254740993", true},
		{true, "true", true},
		{[16]byte(id), id.String(), true},
		{id, id.String(), true},
	}
	for _, tt := range tests {
		got, ok := drill.Key(tt.in)
		assert.Equal(t, tt.want, got, "%#v", tt.in)
		assert.Equal(t, tt.ok, ok, "%#v", tt.in)
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", drill.FormatValue(nil))
	assert.Equal(t, "2024-01-15", drill.FormatValue(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-01-15 09:30:00", drill.FormatValue(time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)))
	assert.Equal(t, "", drill.FormatValue(time.Time{}))
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, drill.DefaultOptions().Validate())

	opts := drill.DefaultOptions()
	opts.PageSize = -1
	assert.True(t, errors.Is(opts.Validate(), drill.ErrInvalidPageSize))

	opts = drill.DefaultOptions()
	opts.PageSizeOptions = []int{10, 0}
	assert.True(t, errors.Is(opts.Validate(), drill.ErrInvalidPageSize))

	opts = drill.DefaultOptions()
	opts.ParentIdentifierField = "id"
	assert.True(t, errors.Is(opts.Validate(), drill.ErrInvalidOptions))

	opts = drill.DefaultOptions()
	opts.IdentifierField = ""
	assert.True(t, errors.Is(opts.Validate(), drill.ErrInvalidOptions))
}

func TestOptionsLinker(t *testing.T) {
	opts := drill.DefaultOptions()
	assert.Equal(t, "id", opts.Linker())
	opts.LinkerField = "name"
	assert.Equal(t, "name", opts.Linker())
}

func TestDataErrorMessageIsBounded(t *testing.T) {
	var records []drill.Record
	for i := 0; i < 8; i++ {
		records = append(records, drill.Record{"id": i})
	}
	err := drill.ValidateRecords(records, drill.DefaultOptions())
	assert.ErrorContains(t, err, "and 3 more")
	assert.ErrorContains(t, err, "missing parent identifier field")
}
