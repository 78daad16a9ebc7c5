package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/JonMunkholm/drilltable/internal/drill"
)

// frame is what one table render needs besides the view.
type frame struct {
	title  string
	cursor int // highlighted row, -1 for none
	focus  int // focused leaf column, -1 for none
	label  func(drill.Record) string
}

// RenderPage writes one page of v as a bordered text table, with the
// breadcrumb trail and a pagination summary.
func RenderPage(w io.Writer, title string, v drill.View) error {
	_, err := io.WriteString(w, renderFrame(v, frame{title: title, cursor: -1, focus: -1})+"\n")
	return err
}

func renderFrame(v drill.View, f frame) string {
	var b strings.Builder

	if f.title != "" {
		b.WriteString(styleTitle.Render(f.title))
		b.WriteString("\n")
	}
	b.WriteString(styleDim.Render(breadcrumbs(v, f.label)))
	b.WriteString("\n\n")

	b.WriteString(renderTable(v, f))
	b.WriteString("\n")

	if len(v.Page.Rows) == 0 {
		b.WriteString(styleWarning.Render("  No records"))
		b.WriteString("\n")
	}
	b.WriteString(styleDim.Render(paginationLine(v.Pagination, v.Page.Total)))

	return b.String()
}

func renderTable(v drill.View, f frame) string {
	headers := headerLabels(v)
	for i, c := range v.Columns {
		switch v.Sort.For(c) {
		case drill.Ascending:
			headers[i] += iconAsc
		case drill.Descending:
			headers[i] += iconDesc
		}
	}

	rows := make([][]string, len(v.Page.Rows))
	for i, r := range v.Page.Rows {
		row := make([]string, len(v.Columns))
		for j, c := range v.Columns {
			row[j] = cellText(c, r)
		}
		rows[i] = row
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				if col == f.focus {
					return styleHeaderFocus
				}
				return styleHeader
			}
			if row == f.cursor {
				return styleCursorRow
			}
			return styleCell
		})

	return t.Render()
}

// headerLabels flattens the header groups into one label per leaf column,
// joining group headers with " / ".
func headerLabels(v drill.View) []string {
	parts := make([][]string, len(v.Columns))
	for _, row := range v.Headers {
		i := 0
		for _, cell := range row {
			for n := 0; n < cell.Span && i < len(parts); n++ {
				if !cell.Placeholder && cell.Column.Header != "" {
					parts[i] = append(parts[i], cell.Column.Header)
				}
				i++
			}
		}
	}

	labels := make([]string, len(v.Columns))
	for i, p := range parts {
		if len(p) == 0 {
			labels[i] = v.Columns[i].Key()
			continue
		}
		labels[i] = strings.Join(p, " / ")
	}
	return labels
}

// breadcrumbs renders the path from the top level to the current parent.
func breadcrumbs(v drill.View, label func(drill.Record) string) string {
	if label == nil {
		label = v.ID
	}
	crumbs := []string{"Top"}
	for _, r := range v.Ancestors {
		crumbs = append(crumbs, label(r))
	}
	return strings.Join(crumbs, iconCrumb)
}

func paginationLine(p drill.Pagination, total int) string {
	pages := p.PageCount
	if pages == 0 {
		pages = 1
	}
	return fmt.Sprintf("Page %d of %d · %d rows · %d per page", p.PageIndex+1, pages, total, p.PageSize)
}
