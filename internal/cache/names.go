package cache

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/partyvault/partyvault/internal/storage"
	"github.com/partyvault/partyvault/pkg/core"
)

// ErrAlreadyInitialized is returned by a second call to Initialize.
var ErrAlreadyInitialized = errors.New("name registry already initialized")

// NameRegistry caches the set of persisted archive names so listing and
// duplicate checks never touch storage. It is seeded once from the store and
// afterwards mutated only by the session layer, after the paired store
// operation has been decided.
type NameRegistry struct {
	m           sync.Mutex
	names       map[string]struct{}
	initialized bool
}

func NewNameRegistry() *NameRegistry {
	return &NameRegistry{
		names: make(map[string]struct{}),
	}
}

// Initialize scans the store once. Using any other method before a
// successful Initialize panics.
func (r *NameRegistry) Initialize(l storage.Lister) error {
	r.m.Lock()
	defer r.m.Unlock()

	if r.initialized {
		return ErrAlreadyInitialized
	}

	names, err := l.ListNames()
	if err != nil {
		return fmt.Errorf("seed name registry: %w", err)
	}

	r.names = make(map[string]struct{}, len(names))
	for _, name := range names {
		r.names[name] = struct{}{}
	}
	r.initialized = true
	return nil
}

// Initialized reports whether Initialize has succeeded.
func (r *NameRegistry) Initialized() bool {
	r.m.Lock()
	defer r.m.Unlock()
	return r.initialized
}

func (r *NameRegistry) mustBeInitialized() {
	if !r.initialized {
		panic("cache: NameRegistry used before Initialize")
	}
}

func (r *NameRegistry) Contains(name string) bool {
	r.m.Lock()
	defer r.m.Unlock()
	r.mustBeInitialized()

	_, ok := r.names[name]
	return ok
}

// All returns the registered names in lexicographic order.
func (r *NameRegistry) All() []string {
	r.m.Lock()
	defer r.m.Unlock()
	r.mustBeInitialized()

	out := make([]string, 0, len(r.names))
	for name := range r.names {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func (r *NameRegistry) Len() int {
	r.m.Lock()
	defer r.m.Unlock()
	r.mustBeInitialized()
	return len(r.names)
}

// Add registers name, failing with core.ErrDuplicateName if present.
func (r *NameRegistry) Add(name string) error {
	r.m.Lock()
	defer r.m.Unlock()
	r.mustBeInitialized()

	if _, ok := r.names[name]; ok {
		return fmt.Errorf("%w: %q", core.ErrDuplicateName, name)
	}
	r.names[name] = struct{}{}
	return nil
}

// Remove unregisters name, failing with core.ErrNotFound if absent.
func (r *NameRegistry) Remove(name string) error {
	r.m.Lock()
	defer r.m.Unlock()
	r.mustBeInitialized()

	if _, ok := r.names[name]; !ok {
		return fmt.Errorf("%w: %q", core.ErrNotFound, name)
	}
	delete(r.names, name)
	return nil
}
