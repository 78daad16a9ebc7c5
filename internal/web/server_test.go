package web

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/drilltable/internal/config"
	"github.com/JonMunkholm/drilltable/internal/core"
	"github.com/JonMunkholm/drilltable/internal/render"
	"github.com/JonMunkholm/drilltable/internal/source"
)

const orgJSON = `[
	{"id": "ceo", "parent": "-1", "name": "Ada"},
	{"id": "cto", "parent": "ceo", "name": "Grace"},
	{"id": "dev", "parent": "cto", "name": "Linus"},
	{"id": "ops", "parent": "-1", "name": "Ken <ops>"}
]`

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "org.json")
	require.NoError(t, os.WriteFile(path, []byte(orgJSON), 0o644))

	reg, err := core.NewRegistry(core.TableDefinition{
		Info:   core.TableInfo{Key: "org", Group: "People", Label: "Organization"},
		Source: source.Spec{Kind: source.KindFile, Path: path},
		Columns: []core.ColumnSpec{
			{Header: "ID", Field: "id"},
			{Header: "Name", Field: "name", Sortable: true},
		},
	})
	require.NoError(t, err)

	svc := core.NewService(reg, core.ServiceConfig{
		Defaults: core.TableDefaults{PageSize: 10},
		Cell:     render.DrillCell,
	})

	cfg := &config.Config{}
	if mutate != nil {
		mutate(cfg)
	}
	return NewServer(svc, cfg)
}

func do(t *testing.T, s *Server, method, target string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestDashboardListsTables(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<h2>People</h2>")
	assert.Contains(t, body, `href="/table/org"`)
	assert.Contains(t, body, "Not loaded")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestTableViewFullPage(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/table/org", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
	assert.Contains(t, body, "<h1>Organization</h1>")
	assert.Contains(t, body, `href="/table/org?page=1&amp;parent=ceo&amp;size=10"`)
	assert.Contains(t, body, "Ken &lt;ops&gt;")
	assert.NotContains(t, body, "Grace")
}

func TestTableViewHTMXFragment(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/table/org?parent=ceo", map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, `<div id="drill-table"`))
	assert.Contains(t, body, "Grace")
	assert.NotContains(t, body, "Ken")
	assert.Contains(t, body, `class="breadcrumbs"`)
}

func TestTableViewHugePage(t *testing.T) {
	s := newTestServer(t, nil)
	huge := strconv.Itoa(math.MaxInt)

	rec := do(t, s, http.MethodGet, "/table/org?page="+huge, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<span class="next disabled">Next</span>`)

	rec = do(t, s, http.MethodGet, "/api/table/org?page="+huge+"&size="+huge, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp tableResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Pagination.PageCount)
	assert.Equal(t, 1, resp.State.PageIndex)
	assert.Empty(t, resp.Rows)
	assert.False(t, resp.Pagination.CanNextPage)
}

func TestTableViewUnknownTable(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/table/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "TBL001")

	rec = do(t, s, http.MethodGet, "/api/table/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "TBL001", resp.Code)
}

func TestTableJSON(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/table/org?parent=ceo&sort=name&dir=desc", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp tableResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, "org", resp.Table)
	assert.Equal(t, "ceo", resp.State.CurrentParent)
	assert.Equal(t, "desc", resp.Sort.Direction)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, []string{"ceo"}, resp.Ancestors)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "cto", resp.Rows[0].ID)
	assert.True(t, resp.Rows[0].HasChildren)
	assert.Contains(t, resp.Rows[0].Link, "parent=cto")
	require.Len(t, resp.Columns, 2)
	assert.Equal(t, "desc", resp.Columns[1].Sort)
}

func TestActivate(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/table/org/activate/ceo", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp activateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Moved)
	assert.Equal(t, "ceo", resp.State.CurrentParent)
	assert.Equal(t, "/table/org?page=1&parent=ceo&size=10", resp.URL)

	// A leaf stays put.
	rec = do(t, s, http.MethodPost, "/api/table/org/activate/ops", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Moved)
	assert.Equal(t, "-1", resp.State.CurrentParent)

	rec = do(t, s, http.MethodPost, "/api/table/org/activate/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReloadRequiresAPIKey(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Security.RequireAPIKey = true
		c.Security.APIKeys = []string{"secret"}
	})

	rec := do(t, s, http.MethodPost, "/api/reload/org", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/reload/org", map[string]string{"X-API-Key": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp reloadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "org", resp.Table)
	assert.Equal(t, 4, resp.Records)
	assert.NotEmpty(t, resp.SnapshotID)
}

func TestListTablesReportsStatus(t *testing.T) {
	s := newTestServer(t, nil)
	do(t, s, http.MethodGet, "/table/org", nil)

	rec := do(t, s, http.MethodGet, "/api/tables", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var statuses []core.TableStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&statuses))
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Loaded)
	assert.Equal(t, 4, statuses[0].Records)
}

func TestRateLimiter(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Rate.Enabled = true
		c.Rate.RequestsPerMinute = 2
	})
	t.Cleanup(s.limiter.stop)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/", nil).Code)

	rec := do(t, s, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE001")
}
