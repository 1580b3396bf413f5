// pkg/core/errors.go
package core

import "errors"

// Archive error taxonomy. Every layer wraps one of these so callers can
// branch with errors.Is regardless of the backend in use.
var (
	// ErrInvalidName rejects blank or unsafe archive names before any I/O.
	ErrInvalidName = errors.New("invalid archive name")

	// ErrDuplicateName is returned when saving a new archive under a name
	// that is already registered.
	ErrDuplicateName = errors.New("archive name already exists")

	// ErrNotFound indicates the named archive is not persisted or not registered.
	ErrNotFound = errors.New("archive not found")

	// ErrMalformedRecord indicates a stored character line could not be decoded.
	ErrMalformedRecord = errors.New("malformed character record")

	// ErrStorageWrite wraps I/O failures while persisting or removing an archive.
	ErrStorageWrite = errors.New("storage write failed")

	// ErrStorageRead wraps I/O failures while reading or scanning archives.
	ErrStorageRead = errors.New("storage read failed")
)
