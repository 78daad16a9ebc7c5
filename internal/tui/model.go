// Package tui is the interactive terminal browser for drill-down tables.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/drilltable/internal/core"
	"github.com/JonMunkholm/drilltable/internal/drill"
)

// LoadTimeout bounds a table load or reload started from the browser.
var LoadTimeout = 30 * time.Second

/* ----------------------------------------
	MESSAGES
---------------------------------------- */

type snapshotMsg struct {
	key      string
	snap     *core.Snapshot
	reloaded bool
}

type errMsg struct{ err error }

/* ----------------------------------------
	MODEL
---------------------------------------- */

// tableModel is the open table: its snapshot plus the navigation state the
// browser owns.
type tableModel struct {
	key    string
	title  string
	snap   *core.Snapshot
	state  drill.State
	sort   drill.SortBy
	cursor int
	focus  int
}

// Model is the bubbletea model of the browser. With no table open it shows
// the table menu.
type Model struct {
	service *core.Service

	root   *Menu
	menu   *Menu
	cursor int

	table   *tableModel
	initial string
	loading string
	status  string
	err     error

	help help.Model
}

// New returns a browser listing every table in service.
func New(service *core.Service) Model {
	root := buildMenuTree(service)
	return Model{service: service, root: root, menu: root, help: help.New()}
}

// StartOn makes the browser open key as soon as it starts.
func (m Model) StartOn(key string) Model {
	m.initial = key
	m.loading = key
	return m
}

func openTable(service *core.Service, key string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), LoadTimeout)
		defer cancel()

		snap, err := service.Snapshot(ctx, key)
		if err != nil {
			return errMsg{err: err}
		}
		return snapshotMsg{key: key, snap: snap}
	}
}

func reloadTable(service *core.Service, key string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), LoadTimeout)
		defer cancel()

		snap, err := service.Reload(ctx, key)
		if err != nil {
			return errMsg{err: err}
		}
		return snapshotMsg{key: key, snap: snap, reloaded: true}
	}
}

func (m Model) Init() tea.Cmd {
	if m.initial != "" {
		return openTable(m.service, m.initial)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.loading = ""
		m.err = nil
		m.applySnapshot(msg)
		return m, nil

	case errMsg:
		m.loading = ""
		m.err = msg.err
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if msg.String() == "?" {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		if m.table != nil {
			return m.updateTable(msg)
		}
		return m.updateMenu(msg)
	}
	return m, nil
}

func (m *Model) applySnapshot(msg snapshotMsg) {
	def, _ := m.service.Definition(msg.key)

	if msg.reloaded && m.table != nil && m.table.key == msg.key {
		// Keep the position, clamped to the new data. A parent that no
		// longer exists sends the browser back to the top level.
		e := msg.snap.Engine
		t := *m.table
		if t.state.CurrentParent != e.Options().RootSentinel {
			if _, ok := e.Lookup(t.state.CurrentParent); !ok {
				t.state.CurrentParent = e.Options().RootSentinel
				t.state.PageIndex = 0
			}
		}
		t.snap = msg.snap
		t.state = e.Update(t.state, drill.DataChanged{ResetPage: false})
		t.cursor = 0
		m.table = &t
		m.status = fmt.Sprintf("Reloaded %s: %d records", def.Info.Label, msg.snap.Engine.Len())
		return
	}

	m.table = &tableModel{
		key:   msg.key,
		title: def.Info.Label,
		snap:  msg.snap,
		state: msg.snap.Engine.InitialState(),
		focus: firstSortable(msg.snap.Engine.LeafColumns()),
	}
	m.status = ""
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, menuKeys.Quit):
		return m, tea.Quit
	case key.Matches(msg, menuKeys.Back):
		if m.menu.Parent == nil {
			return m, tea.Quit
		}
		m.menu, m.cursor = m.menu.Parent, 0
	case key.Matches(msg, menuKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, menuKeys.Down):
		if m.cursor < len(m.menu.Items)-1 {
			m.cursor++
		}
	case key.Matches(msg, menuKeys.Select):
		item := m.menu.Items[m.cursor]
		switch {
		case item.Submenu != nil:
			m.menu, m.cursor = item.Submenu, 0
		case item.Action != nil:
			m.loading = item.Label
			m.err = nil
			return m, item.Action()
		}
	}
	return m, nil
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := *m.table
	e := t.snap.Engine
	v := e.View(t.state, t.sort)
	m.status = ""

	switch {
	case key.Matches(msg, tableKeys.Quit):
		return m, tea.Quit
	case key.Matches(msg, tableKeys.Tables):
		m.table = nil
		return m, nil
	case key.Matches(msg, tableKeys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
	case key.Matches(msg, tableKeys.Down):
		if t.cursor < len(v.Page.Rows)-1 {
			t.cursor++
		}
	case key.Matches(msg, tableKeys.Open):
		if len(v.Page.Rows) == 0 {
			break
		}
		next, ok := v.Activate(v.Page.Rows[t.cursor])
		if ok {
			t.state, t.cursor = next, 0
		}
	case key.Matches(msg, tableKeys.Parent):
		if len(v.Ancestors) == 0 {
			break
		}
		t.state = upState(v)
		t.cursor = 0
	case key.Matches(msg, tableKeys.NextPage):
		t.state = v.Pagination.NextPage()
	case key.Matches(msg, tableKeys.PrevPage):
		t.state = v.Pagination.PreviousPage()
	case key.Matches(msg, tableKeys.FirstPage):
		t.state = v.Pagination.GotoPage(0)
	case key.Matches(msg, tableKeys.LastPage):
		t.state = v.Pagination.GotoPage(v.Pagination.PageCount - 1)
	case key.Matches(msg, tableKeys.Bigger):
		t.state = v.Pagination.SetPageSize(stepSize(v.Pagination, 1))
	case key.Matches(msg, tableKeys.Smaller):
		t.state = v.Pagination.SetPageSize(stepSize(v.Pagination, -1))
	case key.Matches(msg, tableKeys.NextSort):
		t.focus = nextSortable(v.Columns, t.focus)
	case key.Matches(msg, tableKeys.Sort):
		if t.focus >= 0 && t.focus < len(v.Columns) {
			t.sort = t.sort.Toggle(v.Columns[t.focus])
			t.state.PageIndex = 0
		}
	case key.Matches(msg, tableKeys.Reload):
		m.loading = t.title
		m.table = &t
		return m, reloadTable(m.service, t.key)
	}

	rows := len(e.Page(t.state, t.sort).Rows)
	if t.cursor >= rows {
		t.cursor = max(rows-1, 0)
	}
	m.table = &t
	return m, nil
}

// upState leaves the current level for its parent's level.
func upState(v drill.View) drill.State {
	s := v.State
	s.PageIndex = 0
	if n := len(v.Ancestors); n > 1 {
		s.CurrentParent = v.ID(v.Ancestors[n-2])
	} else {
		s.CurrentParent = v.Options().RootSentinel
	}
	return s
}

// stepSize moves to the neighbouring page size option.
func stepSize(p drill.Pagination, dir int) int {
	opts := p.PageSizeOptions
	if len(opts) == 0 {
		return p.PageSize
	}
	i := slices.Index(opts, p.PageSize)
	if i < 0 {
		i, _ = slices.BinarySearch(opts, p.PageSize)
		if dir > 0 {
			i--
		}
	}
	i = min(max(i+dir, 0), len(opts)-1)
	return opts[i]
}

func firstSortable(cols []drill.Column) int {
	return nextSortable(cols, -1)
}

func nextSortable(cols []drill.Column, from int) int {
	for n := 1; n <= len(cols); n++ {
		i := (from + n) % len(cols)
		if i < 0 {
			i += len(cols)
		}
		if cols[i].Sortable {
			return i
		}
	}
	return -1
}

func (m Model) View() string {
	var b strings.Builder

	if m.table != nil {
		t := m.table
		v := t.snap.Engine.View(t.state, t.sort)
		b.WriteString(renderFrame(v, frame{title: t.title, cursor: t.cursor, focus: t.focus}))
		b.WriteString("\n\n")
		b.WriteString(m.help.View(tableKeys))
	} else {
		b.WriteString(styleTitle.Render(m.menu.Title))
		b.WriteString("\n")
		b.WriteString(m.help.View(menuKeys))
		b.WriteString("\n\n")
		for i, item := range m.menu.Items {
			if i == m.cursor {
				b.WriteString(styleSelected.Render("▸ " + item.Label))
			} else {
				b.WriteString(styleNormal.Render("  " + item.Label))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch {
	case m.loading != "":
		b.WriteString(styleDim.Render("Loading " + m.loading + "..."))
	case m.err != nil:
		msg := core.MapError(m.err)
		b.WriteString(styleError.Render(fmt.Sprintf("%s (%s)", msg.Message, msg.Code)))
		if msg.Action != "" {
			b.WriteString("\n")
			b.WriteString(styleDim.Render(msg.Action))
		}
	case m.status != "":
		b.WriteString(styleStatus.Render(m.status))
	}

	return b.String()
}
