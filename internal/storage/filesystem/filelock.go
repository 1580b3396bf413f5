package filesystem

import "errors"

// ErrLocked signals that another process already owns the archive directory.
var ErrLocked = errors.New("archive directory is locked by another process")

const lockFileName = ".partyvault.lock"
