// internal/storage/storage.go
package storage

import (
	"fmt"
	"strings"

	"github.com/partyvault/partyvault/pkg/core"
)

// Backend is the interface all archive storage implementations must satisfy.
// Implementations wrap failures with the core error taxonomy.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Exists reports whether an archive with that name is persisted.
	Exists(name string) (bool, error)

	// ListNames scans storage and returns every persisted archive name,
	// sorted lexicographically.
	ListNames() ([]string, error)

	// Save replaces any prior content stored under name with party.
	// On failure the previous content must remain intact.
	Save(name string, party core.Party) error

	// Load returns the whole party or an error; never a partial party.
	Load(name string) (core.Party, error)

	// Delete removes the archive, returning core.ErrNotFound if absent.
	Delete(name string) error
}

// Lister is the subset of Backend needed to seed the name registry.
type Lister interface {
	ListNames() ([]string, error)
}

// ValidateName rejects names that cannot be used as storage identifiers.
// Names are otherwise taken verbatim: no trimming or case folding.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is blank", core.ErrInvalidName)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q contains a path separator", core.ErrInvalidName, name)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q contains a NUL byte", core.ErrInvalidName, name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %q is reserved", core.ErrInvalidName, name)
	}
	return nil
}
