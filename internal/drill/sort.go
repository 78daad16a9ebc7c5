package drill

import (
	"encoding/json"
	"math"
	"slices"
	"strings"
	"time"
)

// SortDirection is the three-state sort indicator.
type SortDirection int

const (
	Unsorted SortDirection = iota
	Ascending
	Descending
)

// Class returns the CSS class for a header: "", "asc" or "desc".
func (d SortDirection) Class() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return ""
	}
}

func (d SortDirection) String() string {
	return d.Class()
}

// Next cycles unsorted -> ascending -> descending -> unsorted.
func (d SortDirection) Next() SortDirection {
	switch d {
	case Unsorted:
		return Ascending
	case Ascending:
		return Descending
	default:
		return Unsorted
	}
}

// ParseSortDirection accepts "asc" and "desc"; anything else is Unsorted.
func ParseSortDirection(s string) SortDirection {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return Ascending
	case "desc":
		return Descending
	default:
		return Unsorted
	}
}

// SortBy selects a column and direction.
type SortBy struct {
	Column    string // Column key
	Direction SortDirection
}

// For returns the direction c is sorted in.
func (s SortBy) For(c Column) SortDirection {
	if s.Column == "" || s.Column != c.Key() {
		return Unsorted
	}
	return s.Direction
}

// Toggle returns the sort that results from activating c's header.
func (s SortBy) Toggle(c Column) SortBy {
	next := s.For(c).Next()
	if next == Unsorted {
		return SortBy{}
	}
	return SortBy{Column: c.Key(), Direction: next}
}

// SortRows returns a stably sorted copy of rows. Unsorted returns a plain copy.
func SortRows(rows []Record, accessor func(Record) any, dir SortDirection) []Record {
	out := slices.Clone(rows)
	if dir == Unsorted || accessor == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b Record) int {
		c := CompareValues(accessor(a), accessor(b))
		if dir == Descending {
			return -c
		}
		return c
	})
	return out
}

// CompareValues orders two cell values. Nil sorts first; numbers compare
// numerically, times chronologically, bools false before true, and
// everything else by its text form.
func CompareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if ia, ok := toInt(a); ok {
		if ib, ok := toInt(b); ok {
			return cmpInt(ia, ib)
		}
	}

	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}

	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}

	return strings.Compare(FormatValue(a), FormatValue(b))
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// toInt reports integers that fit in an int64. They compare exactly,
// without the rounding a float64 conversion brings above 2^53.
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), uint64(n) <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
