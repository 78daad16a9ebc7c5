package render

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/drilltable/internal/drill"
)

// RootLabel is the first breadcrumb.
const RootLabel = "Top"

// Breadcrumbs renders the path from the top level to the current parent.
// Every crumb but the last links back to its level's first page.
func Breadcrumbs(v drill.View, link StateLink, label func(drill.Record) string, target string) templ.Component {
	if label == nil {
		field := v.Options().Linker()
		label = func(r drill.Record) string { return drill.FormatValue(r[field]) }
	}

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		opts := v.Options()
		h.raw(`<nav class="breadcrumbs"><ol>`)

		up := v.State
		up.PageIndex = 0
		up.CurrentParent = opts.RootSentinel

		crumb := func(text string, s drill.State, last bool) {
			h.raw("<li>")
			if last {
				h.raw(`<span class="current">`)
				h.text(text)
				h.raw("</span>")
			} else {
				h.anchor(link(s), "crumb", target, text)
			}
			h.raw("</li>")
		}

		crumb(RootLabel, up, len(v.Ancestors) == 0)
		for i, r := range v.Ancestors {
			up.CurrentParent = v.ID(r)
			crumb(label(r), up, i == len(v.Ancestors)-1)
		}

		h.raw("</ol></nav>")
		return h.err
	})
}
