package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/drilltable/internal/core"
	"github.com/JonMunkholm/drilltable/internal/drill"
	"github.com/JonMunkholm/drilltable/internal/logging"
	"github.com/JonMunkholm/drilltable/internal/render"
	"github.com/JonMunkholm/drilltable/internal/web/templates"
)

// handleDashboard renders the table overview grouped by section.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	byKey := make(map[string]core.TableStatus)
	for _, st := range s.service.Status() {
		byKey[st.Info.Key] = st
	}

	reg := s.service.Registry()
	var groups []templates.TableGroup
	for _, groupName := range reg.Groups() {
		defs := reg.ByGroup(groupName)
		cards := make([]templates.TableCardData, len(defs))
		for i, def := range defs {
			st := byKey[def.Info.Key]
			cards[i] = templates.TableCardData{
				Info:       def.Info,
				Loaded:     st.Loaded,
				RowCount:   st.Records,
				LoadedAt:   st.LoadedAt,
				SnapshotID: st.SnapshotID,
			}
		}
		name := groupName
		if name == "" {
			name = "Other"
		}
		groups = append(groups, templates.TableGroup{Name: name, Tables: cards})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Dashboard(groups).Render(r.Context(), w)
}

// handleTableView renders one level of a table. HTMX requests get only the
// table fragment so links can swap it in place.
func (s *Server) handleTableView(w http.ResponseWriter, r *http.Request) {
	r, tableKey := withTable(r)

	snap, err := s.service.Snapshot(r.Context(), tableKey)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	view := tableView(snap, r)
	table := render.Table(view, render.Options{
		Linker:      render.QueryLinker{Path: r.URL.Path},
		HTMX:        true,
		Breadcrumbs: true,
	})

	logging.FromContext(r.Context()).Debug("table view",
		"parent", view.State.CurrentParent,
		"page", view.State.PageIndex+1,
		"rows", len(view.Page.Rows),
	)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if isHTMX(r) {
		table.Render(r.Context(), w)
		return
	}

	def, _ := s.service.Definition(tableKey)
	templates.TablePage(templates.TablePageParams{
		Info:       def.Info,
		SnapshotID: snap.ID.String(),
		LoadedAt:   snap.LoadedAt,
		Total:      snap.Engine.Len(),
		Table:      table,
	}).Render(r.Context(), w)
}

// handleListTables returns every table with its load status.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.Status())
}

// handleTableJSON returns the same frame as handleTableView as JSON.
func (s *Server) handleTableJSON(w http.ResponseWriter, r *http.Request) {
	r, tableKey := withTable(r)

	snap, err := s.service.Snapshot(r.Context(), tableKey)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, newTableResponse(snap, tableView(snap, r), r.URL.Path))
}

// handleActivate applies a row activation to the state in the query string
// and returns the resulting state.
func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	r, tableKey := withTable(r)
	recordID := chi.URLParam(r, "recordID")

	snap, err := s.service.Snapshot(r.Context(), tableKey)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	state, sort := render.ParseQuery(r.URL.Query(), snap.Engine.InitialState())
	next, moved, err := s.service.Activate(r.Context(), tableKey, state, recordID)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, activateResponse{
		State: next,
		Moved: moved,
		URL:   render.QueryLinker{Path: "/table/" + tableKey}.Link(next, sort),
	})
}

// handleReload re-reads a table's source. The previous snapshot keeps
// serving if the new data is rejected.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	r, tableKey := withTable(r)

	snap, err := s.service.Reload(r.Context(), tableKey)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	logging.FromContext(r.Context()).Info("table reloaded",
		"snapshot_id", snap.ID,
		"records", snap.Engine.Len(),
	)

	writeJSON(w, reloadResponse{
		Table:      tableKey,
		SnapshotID: snap.ID.String(),
		Records:    snap.Engine.Len(),
		LoadedAt:   snap.LoadedAt,
	})
}

// withTable scopes the request's logging context to the {tableKey} route
// parameter and returns it.
func withTable(r *http.Request) (*http.Request, string) {
	key := chi.URLParam(r, "tableKey")
	return r.WithContext(logging.WithTable(r.Context(), key)), key
}

// tableView reads the navigation state from the query string.
func tableView(snap *core.Snapshot, r *http.Request) drill.View {
	state, sort := render.ParseQuery(r.URL.Query(), snap.Engine.InitialState())
	return snap.Engine.View(state, sort)
}
