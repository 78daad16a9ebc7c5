package web

import (
	"time"

	"github.com/JonMunkholm/drilltable/internal/core"
	"github.com/JonMunkholm/drilltable/internal/drill"
	"github.com/JonMunkholm/drilltable/internal/render"
)

// tableResponse is the JSON form of one table frame.
type tableResponse struct {
	Table      string             `json:"table"`
	SnapshotID string             `json:"snapshotId"`
	State      drill.State        `json:"state"`
	Sort       sortResponse       `json:"sort"`
	Headers    [][]headerResponse `json:"headers"`
	Columns    []columnResponse   `json:"columns"`
	Rows       []rowResponse      `json:"rows"`
	Total      int                `json:"total"`
	Pagination paginationResponse `json:"pagination"`
	Ancestors  []string           `json:"ancestors"`
}

type sortResponse struct {
	Column    string `json:"column,omitempty"`
	Direction string `json:"direction,omitempty"`
}

type headerResponse struct {
	Header      string `json:"header"`
	Span        int    `json:"span"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

type columnResponse struct {
	Key      string `json:"key"`
	Header   string `json:"header"`
	Sortable bool   `json:"sortable"`
	Sort     string `json:"sort,omitempty"`
}

type rowResponse struct {
	ID          string       `json:"id"`
	HasChildren bool         `json:"hasChildren"`
	Link        string       `json:"link,omitempty"`
	Record      drill.Record `json:"record"`
}

type paginationResponse struct {
	CanNextPage     bool  `json:"canNextPage"`
	CanPreviousPage bool  `json:"canPreviousPage"`
	PageCount       int   `json:"pageCount"`
	PageIndex       int   `json:"pageIndex"`
	PageSize        int   `json:"pageSize"`
	PageOptions     []int `json:"pageOptions"`
	PageSizeOptions []int `json:"pageSizeOptions"`
}

type activateResponse struct {
	State drill.State `json:"state"`
	Moved bool        `json:"moved"`
	URL   string      `json:"url"`
}

type reloadResponse struct {
	Table      string    `json:"table"`
	SnapshotID string    `json:"snapshotId"`
	Records    int       `json:"records"`
	LoadedAt   time.Time `json:"loadedAt"`
}

func newTableResponse(snap *core.Snapshot, v drill.View, path string) tableResponse {
	link := render.Bind(render.QueryLinker{Path: path}, v.Sort)

	resp := tableResponse{
		Table:      snap.TableKey,
		SnapshotID: snap.ID.String(),
		State:      v.State,
		Sort:       sortResponse{Column: v.Sort.Column, Direction: v.Sort.Direction.Class()},
		Headers:    make([][]headerResponse, len(v.Headers)),
		Columns:    make([]columnResponse, len(v.Columns)),
		Rows:       make([]rowResponse, len(v.Page.Rows)),
		Total:      v.Page.Total,
		Pagination: paginationResponse{
			CanNextPage:     v.Pagination.CanNextPage,
			CanPreviousPage: v.Pagination.CanPreviousPage,
			PageCount:       v.Pagination.PageCount,
			PageIndex:       v.Pagination.PageIndex,
			PageSize:        v.Pagination.PageSize,
			PageOptions:     v.Pagination.PageOptions,
			PageSizeOptions: v.Pagination.PageSizeOptions,
		},
		Ancestors: make([]string, len(v.Ancestors)),
	}

	for i, row := range v.Headers {
		resp.Headers[i] = make([]headerResponse, len(row))
		for j, cell := range row {
			h := headerResponse{Span: cell.Span, Placeholder: cell.Placeholder}
			if !cell.Placeholder {
				h.Header = cell.Column.Header
			}
			resp.Headers[i][j] = h
		}
	}

	for i, c := range v.Columns {
		resp.Columns[i] = columnResponse{
			Key:      c.Key(),
			Header:   c.Header,
			Sortable: c.Sortable,
			Sort:     v.Sort.For(c).Class(),
		}
	}

	for i, r := range v.Page.Rows {
		row := rowResponse{ID: v.ID(r), HasChildren: v.HasChildren(r), Record: r}
		if next, ok := v.Activate(r); ok {
			row.Link = link(next)
		}
		resp.Rows[i] = row
	}

	for i, r := range v.Ancestors {
		resp.Ancestors[i] = v.ID(r)
	}

	return resp
}
