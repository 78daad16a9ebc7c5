package render

import (
	"context"
	"io"
	"maps"
	"net/url"
	"slices"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/drilltable/internal/drill"
)

// pageWindow is how many page links are shown on each side of the current page.
const pageWindow = 2

// DefaultPagination renders previous/next links, numbered page links around
// the current page, a page-jump input and a page-size chooser. A non-empty target adds htmx
// swap attributes to every link.
func DefaultPagination(p drill.Pagination, link StateLink, target string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<nav class="pagination">`)

		if p.CanPreviousPage {
			h.anchor(link(p.PreviousPage()), "prev", target, "Previous")
		} else {
			h.raw(`<span class="prev disabled">Previous</span>`)
		}

		h.raw(`<span class="pages">`)
		for _, idx := range visiblePages(p.PageIndex, p.PageCount) {
			switch {
			case idx < 0:
				h.raw(`<span class="gap">&hellip;</span>`)
			case idx == p.PageIndex:
				h.raw(`<span class="page current">`)
				h.text(strconv.Itoa(idx + 1))
				h.raw("</span>")
			default:
				h.anchor(link(p.GotoPage(idx)), "page", target, strconv.Itoa(idx+1))
			}
		}
		h.raw("</span>")

		if p.CanNextPage {
			h.anchor(link(p.NextPage()), "next", target, "Next")
		} else {
			h.raw(`<span class="next disabled">Next</span>`)
		}

		h.raw(`<span class="summary">Page `)
		h.text(strconv.Itoa(min(p.PageIndex+1, max(p.PageCount, 1))))
		h.raw(" of ")
		h.text(strconv.Itoa(max(p.PageCount, 1)))
		h.raw("</span>")

		if p.PageCount > 1 {
			writePageJump(h, p, link, target)
		}

		h.raw(`<span class="sizes">Show `)
		for _, size := range p.PageSizeOptions {
			label := strconv.Itoa(size)
			if size == p.PageSize {
				h.raw(`<span class="size current">`)
				h.text(label)
				h.raw("</span>")
				continue
			}
			h.anchor(link(p.SetPageSize(size)), "size", target, label)
		}
		h.raw("</span>")

		h.raw("</nav>")
		return h.err
	})
}

// visiblePages lists the page indexes to link. Gaps are marked with -1.
func visiblePages(current, count int) []int {
	var pages []int
	last := -1
	for i := 0; i < count; i++ {
		if i != 0 && i != count-1 && (i < current-pageWindow || i > current+pageWindow) {
			continue
		}
		if last >= 0 && i > last+1 {
			pages = append(pages, -1)
		}
		pages = append(pages, i)
		last = i
	}
	return pages
}

// writePageJump writes a form that opens a typed page number. The query
// parameters of the current page's link, other than the page, travel as
// hidden fields. Links that do not parse as URLs get no form.
func writePageJump(h *htmlWriter, p drill.Pagination, link StateLink, target string) {
	u, err := url.Parse(link(p.GotoPage(p.PageIndex)))
	if err != nil {
		return
	}
	q := u.Query()
	q.Del(ParamPage)
	u.RawQuery = ""
	action := u.String()

	h.raw(`<form class="page-jump" method="get"`)
	h.attr("action", action)
	if target != "" {
		h.attr("hx-get", action)
		h.attr("hx-target", "#"+target)
		h.attr("hx-swap", "outerHTML")
		h.attr("hx-push-url", "true")
	}
	h.raw(">")
	for _, name := range slices.Sorted(maps.Keys(q)) {
		for _, value := range q[name] {
			h.raw(`<input type="hidden"`)
			h.attr("name", name)
			h.attr("value", value)
			h.raw(">")
		}
	}
	h.raw(`<label>Go to page <input type="number" name="page" min="1"`)
	h.intAttr("max", p.PageCount)
	h.intAttr("value", min(p.PageIndex+1, p.PageCount))
	h.raw(`></label><button type="submit">Go</button></form>`)
}
