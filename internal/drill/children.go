package drill

// ParentSet holds every parent identifier that occurs in a collection.
type ParentSet map[string]struct{}

// NewParentSet builds a set from ids. Duplicates collapse.
func NewParentSet(ids ...string) ParentSet {
	s := make(ParentSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// CollectParents gathers the parent identifiers of all records.
// Records without a parent identifier contribute nothing.
func CollectParents(records []Record, parentField string) ParentSet {
	s := make(ParentSet, len(records))
	for _, r := range records {
		if p, ok := r.field(parentField); ok {
			s[p] = struct{}{}
		}
	}
	return s
}

// Contains reports whether id is some record's parent.
func (s ParentSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// HasChildren reports whether r's identifier appears as a parent identifier
// anywhere in the collection that produced parents.
func HasChildren(r Record, parents ParentSet, idField string) bool {
	id, ok := r.field(idField)
	if !ok {
		return false
	}
	return parents.Contains(id)
}
