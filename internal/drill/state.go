package drill

// State is the navigation state of one table instance. The host owns it and
// passes it into every engine call.
type State struct {
	CurrentParent string `json:"currentParent"`
	PageIndex     int    `json:"pageIndex"`
	PageSize      int    `json:"pageSize"`
}

// NewState returns the initial state: root level, first page.
func NewState(opts Options) State {
	return State{
		CurrentParent: opts.RootSentinel,
		PageIndex:     0,
		PageSize:      opts.PageSize,
	}
}

// AtRoot reports whether s shows the top level.
func (s State) AtRoot(opts Options) bool {
	return s.CurrentParent == opts.RootSentinel
}

// Navigate descends into r when r has children. The new level starts on its
// first page. When r has no children the state is returned unchanged and
// the second result is false.
func Navigate(s State, r Record, parents ParentSet, idField string) (State, bool) {
	if !HasChildren(r, parents, idField) {
		return s, false
	}
	id, _ := r.field(idField)
	s.CurrentParent = id
	s.PageIndex = 0
	return s, true
}

// Msg is an input to Engine.Update.
type Msg interface {
	msg()
}

// Activate is a click (or equivalent) on the row with identifier ID.
type Activate struct{ ID string }

// GotoPage jumps to a zero-based page index.
type GotoPage struct{ Index int }

// NextPage moves one page forward when possible.
type NextPage struct{}

// PreviousPage moves one page back when possible.
type PreviousPage struct{}

// SetPageSize changes the page size, keeping the first visible row on screen.
type SetPageSize struct{ Size int }

// DataChanged tells the engine the collection was replaced. ResetPage false
// keeps the user's page position (optimistic updates); true returns to the
// first page.
type DataChanged struct{ ResetPage bool }

func (Activate) msg()     {}
func (GotoPage) msg()     {}
func (NextPage) msg()     {}
func (PreviousPage) msg() {}
func (SetPageSize) msg()  {}
func (DataChanged) msg()  {}
