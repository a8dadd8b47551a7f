package devtools

import "sync"

// Accessor returns a store's current state.
type Accessor func() any

type registryEntry struct {
	owner    any
	accessor Accessor
}

// Registry tracks active stores by name and builds aggregated snapshots.
// Entries keep the position of their first registration.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]registryEntry
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registryEntry)}
}

// Register inserts or overwrites the accessor for name. It reports whether an
// existing entry was replaced.
func (r *Registry) Register(name string, accessor Accessor) (replaced bool) {
	return r.RegisterOwned(name, nil, accessor)
}

// RegisterOwned is Register with an owner token. Only the current owner may
// remove the entry through UnregisterIf. Owners must be comparable.
func (r *Registry) RegisterOwned(name string, owner any, accessor Accessor) (replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries == nil {
		r.entries = make(map[string]registryEntry)
	}
	if _, replaced = r.entries[name]; !replaced {
		r.order = append(r.order, name)
	}
	r.entries[name] = registryEntry{owner: owner, accessor: accessor}
	return replaced
}

// Unregister removes name and reports whether the registry is now empty.
// Removing an unknown name reports emptiness without other effects.
func (r *Registry) Unregister(name string) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(name)
	return len(r.entries) == 0
}

// UnregisterIf removes name only while owner still holds it. A store whose
// name was taken over by a later registration leaves the entry in place.
func (r *Registry) UnregisterIf(name string, owner any) (removed, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.entries[name]; ok && entry.owner == owner {
		r.remove(name)
		removed = true
	}
	return removed, len(r.entries) == 0
}

func (r *Registry) remove(name string) {
	if _, ok := r.entries[name]; !ok {
		return
	}
	delete(r.entries, name)
	for i, existing := range r.order {
		if existing == name {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			return
		}
	}
}

// Snapshot invokes every accessor in registration order. A panicking accessor
// aborts the whole snapshot.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	names := append([]string(nil), r.order...)
	accessors := make([]Accessor, len(names))
	for i, name := range names {
		accessors[i] = r.entries[name].accessor
	}
	r.mu.RUnlock()

	snapshot := make(Snapshot, len(names))
	for i, name := range names {
		var value any
		if accessors[i] != nil {
			value = accessors[i]()
		}
		snapshot[name] = value
	}
	return snapshot
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered stores.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Reset drops every entry.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.order = nil
	r.entries = make(map[string]registryEntry)
	r.mu.Unlock()
}
