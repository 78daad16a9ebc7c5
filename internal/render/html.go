// Package render turns a drill.View into HTML.
//
// Components are plain templ.Components so they compose with any templ
// layout. Navigation is expressed as links: every interactive element
// points at the URL of the state it leads to, and carries hx-get
// attributes so htmx can swap the table in place when it is loaded.
package render

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// htmlWriter writes markup and remembers the first write error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) attr(name, value string) {
	h.raw(" " + name + `="`)
	h.text(value)
	h.raw(`"`)
}

func (h *htmlWriter) intAttr(name string, v int) {
	h.raw(" " + name + `="` + strconv.Itoa(v) + `"`)
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(ctx, h.w)
	}
}

// anchor writes a navigation link. With a swap target the link also
// carries htmx attributes that replace the target in place.
func (h *htmlWriter) anchor(href, class, target, label string) {
	h.raw("<a")
	h.attr("href", href)
	if class != "" {
		h.attr("class", class)
	}
	if target != "" {
		h.attr("hx-get", href)
		h.attr("hx-target", "#"+target)
		h.attr("hx-swap", "outerHTML")
		h.attr("hx-push-url", "true")
	}
	h.raw(">")
	h.text(label)
	h.raw("</a>")
}
