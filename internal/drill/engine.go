package drill

import (
	"fmt"
	"slices"
)

// Input is what the caller supplies when building an Engine.
type Input struct {
	Records []Record
	Columns []Column

	// Cell renders the linker column. Nil leaves the column untouched.
	Cell CellComponent

	// CellExtra is passed to Cell as CellProps.Extra.
	CellExtra map[string]any
}

// Engine answers navigation and pagination questions about one collection.
// It is immutable after New and safe for concurrent use.
type Engine struct {
	opts     Options
	records  []Record
	byID     map[string]int
	parents  ParentSet
	children map[string][]Record
	columns  []Column
	leaves   []Column
	headers  [][]HeaderCell
}

// New validates opts and the collection and builds an Engine. Configuration
// errors (see ErrInvalidPageSize) and malformed records (see *DataError)
// are reported here, never during rendering.
func New(in Input, opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("drill: %w", err)
	}
	if err := ValidateRecords(in.Records, opts); err != nil {
		return nil, fmt.Errorf("drill: %w", err)
	}

	e := &Engine{
		opts:     opts,
		records:  slices.Clone(in.Records),
		byID:     make(map[string]int, len(in.Records)),
		parents:  CollectParents(in.Records, opts.ParentIdentifierField),
		children: make(map[string][]Record),
	}
	for i, r := range e.records {
		id, _ := r.field(opts.IdentifierField)
		parent, _ := r.field(opts.ParentIdentifierField)
		e.byID[id] = i
		e.children[parent] = append(e.children[parent], r)
	}

	e.columns = TransformColumns(in.Columns, opts.Linker(), in.Cell, LinkContext{
		Parents:         e.parents,
		IdentifierField: opts.IdentifierField,
		Extra:           in.CellExtra,
	})
	e.leaves = LeafColumns(e.columns)
	e.headers = HeaderGroups(e.columns)

	return e, nil
}

// Options returns the engine's configuration.
func (e *Engine) Options() Options { return e.opts }

// Len returns the size of the full collection.
func (e *Engine) Len() int { return len(e.records) }

// Records returns the full collection. Callers must not modify it.
func (e *Engine) Records() []Record { return e.records }

// Columns returns the transformed column tree.
func (e *Engine) Columns() []Column { return e.columns }

// LeafColumns returns the transformed leaf columns in display order.
func (e *Engine) LeafColumns() []Column { return e.leaves }

// HeaderGroups returns the header rows of the transformed column tree.
func (e *Engine) HeaderGroups() [][]HeaderCell { return e.headers }

// Parents returns the set of all parent identifiers.
func (e *Engine) Parents() ParentSet { return e.parents }

// Lookup finds a record by identifier.
func (e *Engine) Lookup(id string) (Record, bool) {
	i, ok := e.byID[id]
	if !ok {
		return nil, false
	}
	return e.records[i], true
}

// ID returns r's identifier.
func (e *Engine) ID(r Record) string {
	id, _ := r.field(e.opts.IdentifierField)
	return id
}

// HasChildren reports whether r has at least one child.
func (e *Engine) HasChildren(r Record) bool {
	return HasChildren(r, e.parents, e.opts.IdentifierField)
}

// Children returns the direct children of parent in collection order.
func (e *Engine) Children(parent string) []Record {
	return slices.Clone(e.children[parent])
}

// InitialState returns the state a fresh table instance starts in.
func (e *Engine) InitialState() State {
	return NewState(e.opts)
}

// Normalize repairs a state coming from an untrusted host (a URL, a saved
// session): non-positive sizes fall back to the configured page size,
// negative page indexes become 0 and indexes past the end become the page
// count, which still selects an empty page.
func (e *Engine) Normalize(s State) State {
	if s.PageSize <= 0 {
		s.PageSize = e.opts.PageSize
	}
	if s.PageIndex < 0 {
		s.PageIndex = 0
	}
	if count := e.pageCount(s); s.PageIndex > count {
		s.PageIndex = count
	}
	return s
}

// Ancestors returns the chain from the top level down to id, inclusive.
// It is empty at the root and stops at records that are missing or that
// would close a cycle.
func (e *Engine) Ancestors(id string) []Record {
	var chain []Record
	seen := make(map[string]bool)
	for id != e.opts.RootSentinel && !seen[id] {
		r, ok := e.Lookup(id)
		if !ok {
			break
		}
		seen[id] = true
		chain = append(chain, r)
		id, _ = r.field(e.opts.ParentIdentifierField)
	}
	slices.Reverse(chain)
	return chain
}

// sortColumn resolves a SortBy to a sortable leaf column.
func (e *Engine) sortColumn(sort SortBy) (Column, bool) {
	if sort.Column == "" || sort.Direction == Unsorted {
		return Column{}, false
	}
	for _, c := range e.leaves {
		if c.Sortable && c.Key() == sort.Column {
			return c, true
		}
	}
	return Column{}, false
}

// level returns the (optionally sorted) direct children of s.CurrentParent.
func (e *Engine) level(s State, sort SortBy) []Record {
	rows := e.children[s.CurrentParent]
	if col, ok := e.sortColumn(sort); ok {
		return SortRows(rows, col.Value, sort.Direction)
	}
	return rows
}

// Page filters the collection to the current parent's direct children,
// sorts them and slices out the requested page.
func (e *Engine) Page(s State, sort SortBy) Page {
	s = e.Normalize(s)
	rows := e.level(s, sort)
	return Page{
		Rows:      Paginate(rows, s.PageIndex, s.PageSize),
		PageCount: PageCount(len(rows), s.PageSize),
		PageIndex: s.PageIndex,
		PageSize:  s.PageSize,
		Total:     len(rows),
	}
}

// pageCount returns the number of pages at s's level.
func (e *Engine) pageCount(s State) int {
	return PageCount(len(e.children[s.CurrentParent]), s.PageSize)
}

// Update applies msg to s and returns the next state.
func (e *Engine) Update(s State, msg Msg) State {
	s = e.Normalize(s)

	switch m := msg.(type) {
	case Activate:
		r, ok := e.Lookup(m.ID)
		if !ok {
			return s
		}
		next, _ := Navigate(s, r, e.parents, e.opts.IdentifierField)
		return next

	case GotoPage:
		s.PageIndex = clampPage(m.Index, e.pageCount(s))

	case NextPage:
		if s.PageIndex+1 < e.pageCount(s) {
			s.PageIndex++
		}

	case PreviousPage:
		if s.PageIndex > 0 {
			s.PageIndex--
		}

	case SetPageSize:
		if m.Size <= 0 {
			return s
		}
		top := min(s.PageIndex*s.PageSize, len(e.children[s.CurrentParent]))
		s.PageSize = m.Size
		s.PageIndex = top / m.Size

	case DataChanged:
		if m.ResetPage {
			s.PageIndex = 0
		} else {
			s.PageIndex = clampPage(s.PageIndex, e.pageCount(s))
		}
	}

	return s
}

func clampPage(index, count int) int {
	if index < 0 || count == 0 {
		return 0
	}
	if index > count-1 {
		return count - 1
	}
	return index
}
