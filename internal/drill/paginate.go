package drill

// FilterChildren returns the records whose parent identifier equals parent,
// in collection order. Only direct children match.
func FilterChildren(records []Record, parentField, parent string) []Record {
	out := []Record{}
	for _, r := range records {
		if p, ok := r.field(parentField); ok && p == parent {
			out = append(out, r)
		}
	}
	return out
}

// Paginate returns rows[pageSize*pageIndex : pageSize*pageIndex+pageSize].
// Out-of-range pages yield a short or empty page, never an error.
func Paginate(rows []Record, pageIndex, pageSize int) []Record {
	if pageSize <= 0 || pageIndex < 0 || pageIndex >= PageCount(len(rows), pageSize) {
		return []Record{}
	}
	// pageIndex is below the page count, so start < len(rows).
	start := pageSize * pageIndex
	end := start + min(pageSize, len(rows)-start)
	return rows[start:end:end]
}

// PageCount returns ceil(n / pageSize), and 0 for an empty level.
func PageCount(n, pageSize int) int {
	if n <= 0 || pageSize <= 0 {
		return 0
	}
	return (n-1)/pageSize + 1
}

// Page is one page of the current level.
type Page struct {
	Rows      []Record
	PageCount int
	PageIndex int
	PageSize  int

	// Total is the number of direct children of the current parent.
	Total int
}
