package source

import (
	"sort"
	"sync"
)

// Registry holds all registered catalog adapters keyed by name. Optional
// catalogs and test doubles register and unregister at runtime.
type Registry struct {
	mu      sync.RWMutex
	sources map[Name]Source
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[Name]Source),
	}
}

// Register adds an adapter to the registry, replacing any existing adapter
// with the same name.
func (r *Registry) Register(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[s.Name()] = s
}

// Unregister removes an adapter by name. Unknown names are a no-op.
func (r *Registry) Unregister(name Name) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sources, name)
}

// Get returns an adapter by name, or nil if not registered.
func (r *Registry) Get(name Name) Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sources[name]
}

// All returns all registered adapters in a stable order. Adapters registered
// under names outside AllNames are appended after the known ones.
func (r *Registry) All() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []Source
	seen := make(map[Name]bool, len(r.sources))
	for _, name := range AllNames() {
		if s, ok := r.sources[name]; ok {
			result = append(result, s)
			seen[name] = true
		}
	}
	var extras []Name
	for name := range r.sources {
		if !seen[name] {
			extras = append(extras, name)
		}
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })
	for _, name := range extras {
		result = append(result, r.sources[name])
	}
	return result
}
