package core

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the table definitions known to a Service.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]TableDefinition
}

// NewRegistry returns a registry holding defs.
func NewRegistry(defs ...TableDefinition) (*Registry, error) {
	r := &Registry{tables: make(map[string]TableDefinition)}
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a table definition to the registry.
// Returns an error if a table with the same key is already registered.
func (r *Registry) Register(def TableDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if def.Info.Key == "" {
		return fmt.Errorf("invalid table definition: key is required")
	}
	if _, exists := r.tables[def.Info.Key]; exists {
		return fmt.Errorf("invalid table definition: table already registered: %s", def.Info.Key)
	}

	if def.Info.Label == "" {
		def.Info.Label = def.Info.Key
	}

	r.tables[def.Info.Key] = def
	return nil
}

// Get returns a table definition by key.
// Returns false if not found.
func (r *Registry) Get(key string) (TableDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.tables[key]
	return def, ok
}

// All returns all registered table definitions.
// Sorted by group then by key for consistent ordering.
func (r *Registry) All() []TableDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]TableDefinition, 0, len(r.tables))
	for _, def := range r.tables {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Info.Group != result[j].Info.Group {
			return result[i].Info.Group < result[j].Info.Group
		}
		return result[i].Info.Key < result[j].Info.Key
	})

	return result
}

// ByGroup returns all table definitions for a specific group.
// Sorted by key for consistent ordering.
func (r *Registry) ByGroup(group string) []TableDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []TableDefinition
	for _, def := range r.tables {
		if def.Info.Group == group {
			result = append(result, def)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Info.Key < result[j].Info.Key
	})

	return result
}

// Groups returns all unique group names.
// Sorted alphabetically.
func (r *Registry) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, def := range r.tables {
		seen[def.Info.Group] = true
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}

	sort.Strings(groups)
	return groups
}

// TableCount returns the number of registered tables.
func (r *Registry) TableCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}
