// pkg/core/events.go
package core

import (
	"errors"
	"time"
)

// Archive operation kinds reported to observers.
const (
	OpSave   = "save"
	OpLoad   = "load"
	OpDelete = "delete"
)

// ArchiveOp describes one completed store operation.
type ArchiveOp struct {
	Kind     string
	Name     string
	Members  int
	Time     time.Time
	Duration time.Duration
	Err      error
}

// Outcome classifies Err into a short label suitable for metric tags.
func (o ArchiveOp) Outcome() string {
	switch {
	case o.Err == nil:
		return "ok"
	case errors.Is(o.Err, ErrInvalidName):
		return "invalid_name"
	case errors.Is(o.Err, ErrDuplicateName):
		return "duplicate"
	case errors.Is(o.Err, ErrNotFound):
		return "not_found"
	case errors.Is(o.Err, ErrMalformedRecord):
		return "malformed"
	case errors.Is(o.Err, ErrStorageWrite):
		return "write_error"
	case errors.Is(o.Err, ErrStorageRead):
		return "read_error"
	default:
		return "error"
	}
}
