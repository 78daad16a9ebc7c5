package tui

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/drilltable/internal/drill"
)

// LinkCell is the terminal rendering of the linker column: rows that can be
// drilled into get a branch marker, leaves are indented to line up.
func LinkCell(p drill.CellProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		prefix := "  "
		if p.HasChildren {
			prefix = iconBranch + " "
		}
		_, err := io.WriteString(w, prefix+drill.FormatValue(p.CellValue))
		return err
	})
}

// cellText renders the cell of column c for r as plain text.
func cellText(c drill.Column, r drill.Record) string {
	comp := c.Render(r)
	if comp == nil {
		return drill.FormatValue(c.Value(r))
	}
	var b strings.Builder
	if err := comp.Render(context.Background(), &b); err != nil {
		return drill.FormatValue(c.Value(r))
	}
	return b.String()
}
