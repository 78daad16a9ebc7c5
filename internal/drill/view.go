package drill

// Pagination is everything a pagination control needs. The action methods
// return the state the control should move to; the host decides how to
// apply it (a link, a key press, a re-render).
type Pagination struct {
	CanNextPage     bool
	CanPreviousPage bool
	PageCount       int
	PageIndex       int
	PageSize        int

	// PageOptions are the selectable zero-based page indexes.
	PageOptions []int

	// PageSizeOptions are the selectable page sizes.
	PageSizeOptions []int

	engine *Engine
	state  State
}

// GotoPage returns the state showing page n (zero-based, clamped).
func (p Pagination) GotoPage(n int) State {
	return p.engine.Update(p.state, GotoPage{Index: n})
}

// NextPage returns the state showing the following page.
func (p Pagination) NextPage() State {
	return p.engine.Update(p.state, NextPage{})
}

// PreviousPage returns the state showing the preceding page.
func (p Pagination) PreviousPage() State {
	return p.engine.Update(p.state, PreviousPage{})
}

// SetPageSize returns the state with n rows per page.
func (p Pagination) SetPageSize(n int) State {
	return p.engine.Update(p.state, SetPageSize{Size: n})
}

// View is everything a renderer needs for one frame, computed in one step
// so a state transition and its page never disagree.
type View struct {
	State      State
	Sort       SortBy
	Page       Page
	Columns    []Column
	Headers    [][]HeaderCell
	Pagination Pagination

	// Ancestors is the path from the top level to the current parent.
	Ancestors []Record

	engine *Engine
}

// View computes the frame for s sorted by sort.
func (e *Engine) View(s State, sort SortBy) View {
	s = e.Normalize(s)
	if _, ok := e.sortColumn(sort); !ok {
		sort = SortBy{}
	}
	page := e.Page(s, sort)

	options := make([]int, page.PageCount)
	for i := range options {
		options[i] = i
	}

	return View{
		State:   s,
		Sort:    sort,
		Page:    page,
		Columns: e.leaves,
		Headers: e.headers,
		Pagination: Pagination{
			CanNextPage:     s.PageIndex+1 < page.PageCount,
			CanPreviousPage: s.PageIndex > 0,
			PageCount:       page.PageCount,
			PageIndex:       s.PageIndex,
			PageSize:        s.PageSize,
			PageOptions:     options,
			PageSizeOptions: e.opts.sizeOptions(s.PageSize),
			engine:          e,
			state:           s,
		},
		Ancestors: e.Ancestors(s.CurrentParent),
		engine:    e,
	}
}

// Activate returns the state after clicking r. The second result is false
// when r has no children and nothing changes.
func (v View) Activate(r Record) (State, bool) {
	return Navigate(v.State, r, v.engine.parents, v.engine.opts.IdentifierField)
}

// HasChildren reports whether r can be drilled into.
func (v View) HasChildren(r Record) bool {
	return v.engine.HasChildren(r)
}

// ID returns r's identifier.
func (v View) ID(r Record) string {
	return v.engine.ID(r)
}

// Options returns the engine options behind the view.
func (v View) Options() Options {
	return v.engine.opts
}
