package drill

import (
	"maps"

	"github.com/a-h/templ"
)

// Cell identifies one rendered cell.
type Cell struct {
	Row    Record
	Column Column
	Value  any
}

// CellRenderer renders a cell of a leaf column.
type CellRenderer func(Cell) templ.Component

// CellProps is the payload handed to a CellComponent for the linker column.
type CellProps struct {
	Cell        Cell
	CellValue   any
	HasChildren bool
	Extra       map[string]any
}

// CellComponent renders the linker column. It typically produces a link when
// HasChildren is true and plain text otherwise.
type CellComponent func(CellProps) templ.Component

// Column is a node of a table's column tree. A column with child
// Columns is a group; anything else is a leaf.
type Column struct {
	Header string

	// Accessor is the record field shown by a leaf column.
	Accessor string

	// AccessorFunc derives the value instead of reading Accessor.
	AccessorFunc func(Record) any

	// Cell overrides the default text rendering.
	Cell CellRenderer

	// ID is a stable identifier; defaults to Accessor, then Header.
	ID string

	Sortable bool

	Columns []Column
}

// IsGroup reports whether c groups other columns.
func (c Column) IsGroup() bool {
	return len(c.Columns) > 0
}

// Key returns the column's stable identifier.
func (c Column) Key() string {
	switch {
	case c.ID != "":
		return c.ID
	case c.Accessor != "":
		return c.Accessor
	default:
		return c.Header
	}
}

// Value extracts the column's value from r.
func (c Column) Value(r Record) any {
	if c.AccessorFunc != nil {
		return c.AccessorFunc(r)
	}
	return r[c.Accessor]
}

// Render returns the custom cell component for r, or nil when the column
// has no custom renderer and the frontend should format the value itself.
func (c Column) Render(r Record) templ.Component {
	if c.Cell == nil {
		return nil
	}
	return c.Cell(Cell{Row: r, Column: c, Value: c.Value(r)})
}

// LinkContext carries what the linker cell needs to decide interactivity.
type LinkContext struct {
	Parents         ParentSet
	IdentifierField string
	Extra           map[string]any
}

// TransformColumns returns a copy of cols in which every leaf whose Accessor
// equals linkerField renders through cell. Group columns are rebuilt with
// transformed children. The input tree is never modified, and the number of
// columns and the nesting shape are preserved.
func TransformColumns(cols []Column, linkerField string, cell CellComponent, lc LinkContext) []Column {
	if cols == nil {
		return nil
	}
	if lc.Extra != nil {
		lc.Extra = maps.Clone(lc.Extra)
	}
	return transformColumns(cols, linkerField, cell, lc)
}

func transformColumns(cols []Column, linkerField string, cell CellComponent, lc LinkContext) []Column {
	out := make([]Column, len(cols))
	for i, c := range cols {
		if c.IsGroup() {
			c.Columns = transformColumns(c.Columns, linkerField, cell, lc)
		} else if cell != nil && c.Accessor == linkerField {
			c.Cell = linkedCell(cell, lc)
		}
		out[i] = c
	}
	return out
}

func linkedCell(cell CellComponent, lc LinkContext) CellRenderer {
	return func(c Cell) templ.Component {
		return cell(CellProps{
			Cell:        c,
			CellValue:   c.Value,
			HasChildren: HasChildren(c.Row, lc.Parents, lc.IdentifierField),
			Extra:       lc.Extra,
		})
	}
}

// LeafColumns flattens cols depth-first, left to right.
func LeafColumns(cols []Column) []Column {
	var leaves []Column
	for _, c := range cols {
		if c.IsGroup() {
			leaves = append(leaves, LeafColumns(c.Columns)...)
			continue
		}
		leaves = append(leaves, c)
	}
	return leaves
}

// Depth returns the number of header rows cols need.
func Depth(cols []Column) int {
	depth := 0
	for _, c := range cols {
		d := 1
		if c.IsGroup() {
			d += Depth(c.Columns)
		}
		if d > depth {
			depth = d
		}
	}
	return depth
}

// HeaderCell is one cell of a header row.
type HeaderCell struct {
	Column Column
	Span   int

	// Placeholder marks the empty cell above a leaf that sits shallower
	// than the deepest leaf.
	Placeholder bool
}

// HeaderGroups lays cols out as header rows. Group headers span their
// leaves; leaves always sit on the last row.
func HeaderGroups(cols []Column) [][]HeaderCell {
	depth := Depth(cols)
	if depth == 0 {
		return nil
	}
	rows := make([][]HeaderCell, depth)

	var walk func(cols []Column, level int)
	walk = func(cols []Column, level int) {
		for _, c := range cols {
			if c.IsGroup() {
				rows[level] = append(rows[level], HeaderCell{Column: c, Span: len(LeafColumns(c.Columns))})
				walk(c.Columns, level+1)
				continue
			}
			for l := level; l < depth-1; l++ {
				rows[l] = append(rows[l], HeaderCell{Column: c, Span: 1, Placeholder: true})
			}
			rows[depth-1] = append(rows[depth-1], HeaderCell{Column: c, Span: 1})
		}
	}
	walk(cols, 0)

	return rows
}
