// Package templates holds the page-level HTML components of the web UI.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/drilltable/internal/core"
)

// TableCardData is one table tile on the dashboard.
type TableCardData struct {
	Info       core.TableInfo
	Loaded     bool
	RowCount   int
	LoadedAt   time.Time
	SnapshotID string
}

// TableGroup is one dashboard section.
type TableGroup struct {
	Name   string
	Tables []TableCardData
}

// TablePageParams feeds TablePage.
type TablePageParams struct {
	Info       core.TableInfo
	SnapshotID string
	LoadedAt   time.Time
	Total      int
	Table      templ.Component
}

// HTMXSource is where pages load htmx from. Table links are plain hrefs,
// so pages still work when it is blocked.
const HTMXSource = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"

type page struct {
	w   io.Writer
	err error
}

func (p *page) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *page) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *page) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

func (p *page) component(ctx context.Context, c templ.Component) {
	if p.err == nil && c != nil {
		p.err = c.Render(ctx, p.w)
	}
}

// Layout wraps body in the HTML document shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw("<title>")
		p.text(title)
		p.raw(" | Drill Table</title>")
		p.raw(`<link rel="stylesheet" href="/static/app.css">`)
		p.raw(`</head><body><header><a href="/" class="brand">Drill Table</a></header><main>`)
		p.component(ctx, body)
		p.raw("</main></body></html>")
		return p.err
	})
}

// Dashboard lists every table by group.
func Dashboard(groups []TableGroup) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw("<h1>Tables</h1>")
		if len(groups) == 0 {
			p.raw(`<p class="empty">No tables are defined.</p>`)
		}
		for _, g := range groups {
			p.raw(`<section class="group"><h2>`)
			p.text(g.Name)
			p.raw(`</h2><ul class="cards">`)
			for _, t := range g.Tables {
				p.raw(`<li class="card"><a href="/table/`)
				p.text(t.Info.Key)
				p.raw(`">`)
				p.text(t.Info.Label)
				p.raw("</a>")
				if t.Info.Description != "" {
					p.raw(`<p class="description">`)
					p.text(t.Info.Description)
					p.raw("</p>")
				}
				if t.Loaded {
					p.printf(`<p class="meta">%d records, loaded `, t.RowCount)
					p.text(t.LoadedAt.Format(time.DateTime))
					p.raw("</p>")
				} else {
					p.raw(`<p class="meta">Not loaded</p>`)
				}
				p.raw("</li>")
			}
			p.raw("</ul></section>")
		}
		return p.err
	})
	return Layout("Tables", body)
}

// TablePage is the full page around one drill-down table.
func TablePage(params TablePageParams) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw("<h1>")
		p.text(params.Info.Label)
		p.raw("</h1>")
		if params.Info.Description != "" {
			p.raw(`<p class="description">`)
			p.text(params.Info.Description)
			p.raw("</p>")
		}
		p.raw(`<p class="meta" data-snapshot="`)
		p.text(params.SnapshotID)
		p.raw(`">`)
		p.text(strconv.Itoa(params.Total))
		p.raw(" records, loaded ")
		p.text(params.LoadedAt.Format(time.DateTime))
		p.raw("</p>")
		p.component(ctx, params.Table)
		return p.err
	})
	return Layout(params.Info.Label, body)
}

// ErrorAlert renders a coded error message.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<div class="alert error" role="alert"><strong>`)
		p.text(message)
		p.raw("</strong>")
		if action != "" {
			p.raw("<p>")
			p.text(action)
			p.raw("</p>")
		}
		p.raw(`<small>Code: `)
		p.text(code)
		p.raw("</small></div>")
		return p.err
	})
}
