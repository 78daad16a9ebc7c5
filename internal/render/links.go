package render

import (
	"net/url"
	"strconv"

	"github.com/JonMunkholm/drilltable/internal/drill"
)

// Query parameter names used by QueryLinker and ParseQuery.
const (
	ParamParent = "parent"
	ParamPage   = "page"
	ParamSize   = "size"
	ParamSort   = "sort"
	ParamDir    = "dir"
)

// Linker turns a table state into a URL.
type Linker interface {
	Link(s drill.State, sort drill.SortBy) string
}

// StateLink is a Linker bound to the sort in effect.
type StateLink func(drill.State) string

// Bind fixes sort so components that only move between states can link.
func Bind(l Linker, sort drill.SortBy) StateLink {
	return func(s drill.State) string {
		return l.Link(s, sort)
	}
}

// QueryLinker encodes state in the query string of Path. Page numbers are
// 1-based in URLs.
type QueryLinker struct {
	Path string
}

func (l QueryLinker) Link(s drill.State, sort drill.SortBy) string {
	q := url.Values{}
	q.Set(ParamParent, s.CurrentParent)
	q.Set(ParamPage, strconv.Itoa(s.PageIndex+1))
	q.Set(ParamSize, strconv.Itoa(s.PageSize))
	if sort.Column != "" && sort.Direction != drill.Unsorted {
		q.Set(ParamSort, sort.Column)
		q.Set(ParamDir, sort.Direction.Class())
	}
	return l.Path + "?" + q.Encode()
}

// ParseQuery reads a state from q, starting from base for anything absent
// or malformed. The result is not clamped; Engine.View does that.
func ParseQuery(q url.Values, base drill.State) (drill.State, drill.SortBy) {
	s := base
	if q.Has(ParamParent) {
		s.CurrentParent = q.Get(ParamParent)
	}
	if n, err := strconv.Atoi(q.Get(ParamPage)); err == nil && n >= 1 {
		s.PageIndex = n - 1
	}
	if n, err := strconv.Atoi(q.Get(ParamSize)); err == nil && n > 0 {
		s.PageSize = n
	}

	var sort drill.SortBy
	if col := q.Get(ParamSort); col != "" {
		if dir := drill.ParseSortDirection(q.Get(ParamDir)); dir != drill.Unsorted {
			sort = drill.SortBy{Column: col, Direction: dir}
		}
	}
	return s, sort
}
