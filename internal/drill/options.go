// Package drill is a hierarchical drill-down table engine.
//
// It turns a flat collection of records that point at each other through an
// identifier / parent-identifier pair into a navigable, paginated hierarchy.
// The caller never builds a tree: the engine derives which records have
// children, which records belong to the current level and how that level is
// split into pages.
//
// # State
//
// The engine holds no navigation state of its own. A [State] value
// (current parent, page index, page size) is owned by the host and passed
// into every call; [Engine.Update] returns the next state. This keeps
// several tables on one page independent and makes HTTP handlers stateless.
//
// # Rendering
//
// Columns are declared as a tree of [Column] values. [TransformColumns]
// returns a copy of that tree in which the linker column (by default the
// identifier column) renders through a caller supplied [CellComponent] that
// knows whether the row can be drilled into. Cells are templ components, so
// the same contract serves HTML and plain-text frontends.
package drill

import (
	"errors"
	"fmt"
	"strings"
)

// Defaults applied by DefaultOptions.
const (
	DefaultIdentifierField       = "id"
	DefaultParentIdentifierField = "parent"
	DefaultRootSentinel          = "-1"
	DefaultPageSize              = 10
)

// DefaultPageSizeOptions are the sizes offered by page-size selectors.
var DefaultPageSizeOptions = []int{10, 20, 30, 40, 50}

// ErrInvalidPageSize is returned when a page size is zero or negative.
var ErrInvalidPageSize = errors.New("invalid page size")

// ErrInvalidOptions is returned for missing field names in Options.
var ErrInvalidOptions = errors.New("invalid table options")

// Options enumerates every recognized engine setting.
type Options struct {
	// IdentifierField names the record field holding the record's own id.
	IdentifierField string

	// ParentIdentifierField names the record field holding the parent's id.
	ParentIdentifierField string

	// LinkerField is the column accessor that receives drill-down behavior.
	// Empty means IdentifierField.
	LinkerField string

	// RootSentinel is the parent identifier of top-level records.
	RootSentinel string

	// PageSize is the initial number of rows per page. Must be positive.
	PageSize int

	// PageSizeOptions lists the sizes offered to the user.
	PageSizeOptions []int
}

// DefaultOptions returns Options populated with the package defaults.
func DefaultOptions() Options {
	return Options{
		IdentifierField:       DefaultIdentifierField,
		ParentIdentifierField: DefaultParentIdentifierField,
		RootSentinel:          DefaultRootSentinel,
		PageSize:              DefaultPageSize,
		PageSizeOptions:       append([]int(nil), DefaultPageSizeOptions...),
	}
}

// Linker returns the effective linker field.
func (o Options) Linker() string {
	if o.LinkerField == "" {
		return o.IdentifierField
	}
	return o.LinkerField
}

// Validate reports configuration errors. A non-positive page size is fatal:
// it would make the page count undefined.
func (o Options) Validate() error {
	if o.PageSize <= 0 {
		return fmt.Errorf("%w: %d (must be positive)", ErrInvalidPageSize, o.PageSize)
	}

	var problems []string
	if o.IdentifierField == "" {
		problems = append(problems, "identifier field is empty")
	}
	if o.ParentIdentifierField == "" {
		problems = append(problems, "parent identifier field is empty")
	}
	if o.IdentifierField != "" && o.IdentifierField == o.ParentIdentifierField {
		problems = append(problems, fmt.Sprintf("identifier and parent identifier fields are both %q", o.IdentifierField))
	}
	for _, size := range o.PageSizeOptions {
		if size <= 0 {
			return fmt.Errorf("%w: page size option %d (must be positive)", ErrInvalidPageSize, size)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidOptions, strings.Join(problems, "; "))
	}
	return nil
}

// sizeOptions returns PageSizeOptions, making sure the current size is offered.
func (o Options) sizeOptions(current int) []int {
	opts := o.PageSizeOptions
	if len(opts) == 0 {
		opts = DefaultPageSizeOptions
	}
	out := make([]int, 0, len(opts)+1)
	found := false
	for _, size := range opts {
		if size == current {
			found = true
		}
		out = append(out, size)
	}
	if !found && current > 0 {
		out = insertSorted(out, current)
	}
	return out
}

func insertSorted(sizes []int, v int) []int {
	for i, s := range sizes {
		if v < s {
			sizes = append(sizes, 0)
			copy(sizes[i+1:], sizes[i:])
			sizes[i] = v
			return sizes
		}
	}
	return append(sizes, v)
}
