package models

import "sync"

// Registry maps collection names to their type. It is filled explicitly at
// start-up and, optionally, by lookups against the server.
type Registry struct {
	types map[string]CollectionType
	mu    sync.RWMutex
}

func NewRegistry(initial map[string]CollectionType) *Registry {
	r := &Registry{types: make(map[string]CollectionType, len(initial))}
	for name, t := range initial {
		r.types[name] = t
	}
	return r
}

func (r *Registry) Register(name string, t CollectionType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[name] = t
}

func (r *Registry) Lookup(name string) (CollectionType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}
