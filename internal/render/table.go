package render

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/drilltable/internal/drill"
)

// DefaultTarget is the element id of the table container.
const DefaultTarget = "drill-table"

// PaginationRenderer draws the pagination control.
type PaginationRenderer func(p drill.Pagination, link StateLink) templ.Component

// Options configures Table.
type Options struct {
	// Linker builds every URL in the table. Required.
	Linker Linker

	// Pagination replaces DefaultPagination.
	Pagination PaginationRenderer

	// Target is the container element id (default DefaultTarget).
	Target string

	// HTMX adds hx-get attributes so links swap the container in place.
	HTMX bool

	// Breadcrumbs renders the ancestor trail above the table.
	Breadcrumbs bool

	// Label names a record in the breadcrumb trail. Defaults to the
	// linker field's value.
	Label func(drill.Record) string

	// Empty is shown when the current level has no rows.
	Empty string
}

func (o Options) target() string {
	if o.Target == "" {
		return DefaultTarget
	}
	return o.Target
}

func (o Options) swapTarget() string {
	if !o.HTMX {
		return ""
	}
	return o.target()
}

// frame is what cells rendered inside Table can read from the context.
type frame struct {
	view   drill.View
	link   StateLink
	target string
}

type frameKey struct{}

func withFrame(ctx context.Context, f frame) context.Context {
	return context.WithValue(ctx, frameKey{}, f)
}

func frameFrom(ctx context.Context) (frame, bool) {
	f, ok := ctx.Value(frameKey{}).(frame)
	return f, ok
}

// DrillCell is the HTML linker cell. Records with children become links to
// their level; leaves render as plain text. Extra["class"] is added to the
// link's class list.
func DrillCell(p drill.CellProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		label := drill.FormatValue(p.CellValue)

		f, ok := frameFrom(ctx)
		if !p.HasChildren || !ok {
			h.raw(`<span class="drill-leaf">`)
			h.text(label)
			h.raw("</span>")
			return h.err
		}

		class := "drill-link"
		if extra, ok := p.Extra["class"].(string); ok && extra != "" {
			class += " " + extra
		}
		next, _ := f.view.Activate(p.Cell.Row)
		h.anchor(f.link(next), class, f.target, label)
		return h.err
	})
}

// Table renders the header rows, the current page and the pagination
// control for v.
func Table(v drill.View, opts Options) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		link := Bind(opts.Linker, v.Sort)
		ctx = withFrame(ctx, frame{view: v, link: link, target: opts.swapTarget()})

		h.raw("<div")
		h.attr("id", opts.target())
		h.raw(` class="drill-table">`)

		if opts.Breadcrumbs {
			h.component(ctx, Breadcrumbs(v, link, opts.Label, opts.swapTarget()))
		}

		h.raw("<table><thead>")
		writeHeaders(h, v, opts)
		h.raw("</thead><tbody>")
		writeBody(ctx, h, v, opts)
		h.raw("</tbody></table>")

		pager := opts.Pagination
		if pager == nil {
			pager = func(p drill.Pagination, link StateLink) templ.Component {
				return DefaultPagination(p, link, opts.swapTarget())
			}
		}
		h.component(ctx, pager(v.Pagination, link))

		h.raw("</div>")
		return h.err
	})
}

func writeHeaders(h *htmlWriter, v drill.View, opts Options) {
	for _, row := range v.Headers {
		h.raw("<tr>")
		for _, cell := range row {
			if cell.Placeholder {
				h.raw(`<th class="placeholder"></th>`)
				continue
			}
			if cell.Column.IsGroup() {
				h.raw("<th")
				h.intAttr("colspan", cell.Span)
				h.raw(` class="group">`)
				h.text(cell.Column.Header)
				h.raw("</th>")
				continue
			}
			writeLeafHeader(h, v, cell.Column, opts)
		}
		h.raw("</tr>")
	}
}

func writeLeafHeader(h *htmlWriter, v drill.View, c drill.Column, opts Options) {
	dir := v.Sort.For(c)
	classes := []string{}
	if c.Sortable {
		classes = append(classes, "sortable")
	}
	if dir != drill.Unsorted {
		classes = append(classes, dir.Class())
	}

	h.raw("<th")
	if len(classes) > 0 {
		h.attr("class", strings.Join(classes, " "))
	}
	h.raw(">")
	if !c.Sortable {
		h.text(c.Header)
		h.raw("</th>")
		return
	}

	s := v.State
	s.PageIndex = 0
	h.anchor(opts.Linker.Link(s, v.Sort.Toggle(c)), "sort", opts.swapTarget(), c.Header)
	h.raw("</th>")
}

func writeBody(ctx context.Context, h *htmlWriter, v drill.View, opts Options) {
	if len(v.Page.Rows) == 0 {
		empty := opts.Empty
		if empty == "" {
			empty = "No records"
		}
		h.raw(`<tr class="empty"><td`)
		h.intAttr("colspan", max(len(v.Columns), 1))
		h.raw(">")
		h.text(empty)
		h.raw("</td></tr>")
		return
	}

	for _, r := range v.Page.Rows {
		h.raw("<tr")
		h.attr("data-id", v.ID(r))
		if next, ok := v.Activate(r); ok {
			writeRowLink(h, opts.Linker.Link(next, v.Sort), opts.swapTarget())
		}
		h.raw(">")
		for _, c := range v.Columns {
			h.raw("<td>")
			if cell := c.Render(r); cell != nil {
				h.component(ctx, cell)
			} else {
				h.text(drill.FormatValue(c.Value(r)))
			}
			h.raw("</td>")
		}
		h.raw("</tr>")
	}
}

// writeRowLink makes a row with children a click target for the level
// below it. htmx only fires for clicks that land on a cell itself, so the
// linker cell's own link is not requested twice.
func writeRowLink(h *htmlWriter, href, target string) {
	h.raw(` class="has-children"`)
	h.attr("data-href", href)
	if target == "" {
		return
	}
	h.attr("hx-get", href)
	h.attr("hx-trigger", "click target:td")
	h.attr("hx-target", "#"+target)
	h.attr("hx-swap", "outerHTML")
	h.attr("hx-push-url", "true")
}
