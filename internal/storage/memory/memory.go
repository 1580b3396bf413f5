// Package memory implements storage.Backend in process memory. Parties pass
// through the record codec on the way in and out, so callers never share
// memory with the store.
package memory

import (
	"fmt"
	"slices"
	"sync"

	"github.com/partyvault/partyvault/internal/codec"
	"github.com/partyvault/partyvault/internal/storage"
	"github.com/partyvault/partyvault/pkg/core"
)

// Backend keeps encoded archives keyed by name.
type Backend struct {
	archives map[string][]string
	mu       sync.RWMutex

	// FailWrites makes every mutating call fail with core.ErrStorageWrite.
	FailWrites bool
}

// New creates a new memory backend
func New() *Backend {
	return &Backend{
		archives: make(map[string][]string),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// Exists reports whether name is stored.
func (b *Backend) Exists(name string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.archives[name]
	return ok, nil
}

// ListNames returns every stored name in lexicographic order.
func (b *Backend) ListNames() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.archives))
	for name := range b.archives {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Save stores the encoded party under name, replacing prior content.
func (b *Backend) Save(name string, party core.Party) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}

	lines, err := codec.EncodeParty(party)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrStorageWrite, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.FailWrites {
		return fmt.Errorf("%w: save %q: writes disabled", core.ErrStorageWrite, name)
	}
	b.archives[name] = lines
	return nil
}

// Load decodes the stored party.
func (b *Backend) Load(name string) (core.Party, error) {
	if err := storage.ValidateName(name); err != nil {
		return nil, err
	}

	b.mu.RLock()
	lines, ok := b.archives[name]
	b.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrNotFound, name)
	}

	party, err := codec.DecodeParty(lines)
	if err != nil {
		return nil, fmt.Errorf("archive %q: %w", name, err)
	}
	return party, nil
}

// Delete removes the stored archive.
func (b *Backend) Delete(name string) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.archives[name]; !ok {
		return fmt.Errorf("%w: %q", core.ErrNotFound, name)
	}
	if b.FailWrites {
		return fmt.Errorf("%w: delete %q: writes disabled", core.ErrStorageWrite, name)
	}
	delete(b.archives, name)
	return nil
}

// PutRaw stores raw encoded lines, bypassing the codec. Used to simulate
// damaged archives.
func (b *Backend) PutRaw(name string, lines []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.archives[name] = slices.Clone(lines)
}

// Remove drops an archive without any checks, as an external process would.
func (b *Backend) Remove(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.archives, name)
}
