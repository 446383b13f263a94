package llm

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps provider ids to adapters. It is filled at start-up and only
// read afterwards; the lock keeps late registration in tests safe.
type Registry struct {
	adapters map[string]Adapter
	mu       sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter under its Name. Registering the same name twice
// is an error.
func (r *Registry) Register(a Adapter) error {
	if a == nil {
		return fmt.Errorf("nil adapter")
	}
	key := normalizeName(a.Name())
	if key == "" {
		return fmt.Errorf("adapter has empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[key]; exists {
		return fmt.Errorf("provider %q already registered", key)
	}
	r.adapters[key] = a
	return nil
}

// MustRegister is Register that panics, for start-up wiring.
func (r *Registry) MustRegister(a Adapter) {
	if err := r.Register(a); err != nil {
		panic(err)
	}
}

// Lookup finds an adapter; matching ignores case and surrounding space.
func (r *Registry) Lookup(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[normalizeName(name)]
	return a, ok
}

// Names returns the sorted registered provider ids.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.adapters)
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
