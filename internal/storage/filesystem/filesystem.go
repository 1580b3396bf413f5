// Package filesystem implements storage.Backend as a directory holding one
// file per archive, named <archive-name><extension>, with one encoded
// character per line in party order.
package filesystem

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/partyvault/partyvault/internal/codec"
	"github.com/partyvault/partyvault/internal/config"
	"github.com/partyvault/partyvault/internal/storage"
	"github.com/partyvault/partyvault/pkg/core"
)

// DefaultExtension matches the extension used by earlier single-slot saves.
const DefaultExtension = ".data"

// maxLineSize bounds a single encoded character.
const maxLineSize = 1 << 20

// Backend stores archives as files in a single directory.
type Backend struct {
	dir      string
	ext      string
	lockFile *os.File
}

// New creates a filesystem backend. Nothing touches disk until Init.
func New(cfg config.FilesystemConfig) *Backend {
	ext := cfg.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Backend{
		dir: filepath.Clean(cfg.Dir),
		ext: ext,
	}
}

// Dir returns the archive directory.
func (b *Backend) Dir() string {
	return b.dir
}

// Init creates the archive directory and takes the ownership lock.
func (b *Backend) Init() error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create archive directory: %v", core.ErrStorageWrite, err)
	}
	if b.lockFile != nil {
		return nil
	}

	lockFile, err := acquireFileLock(filepath.Join(b.dir, lockFileName))
	if err != nil {
		return fmt.Errorf("failed to acquire directory lock: %w", err)
	}
	b.lockFile = lockFile
	return nil
}

// Close releases the ownership lock.
func (b *Backend) Close() error {
	if b.lockFile == nil {
		return nil
	}
	if err := releaseFileLock(b.lockFile); err != nil {
		return fmt.Errorf("failed to release directory lock: %w", err)
	}
	b.lockFile = nil
	return nil
}

// Path returns the file that holds the named archive.
func (b *Backend) Path(name string) string {
	return filepath.Join(b.dir, name+b.ext)
}

// validate applies storage.ValidateName and rejects names whose file would
// collide with the lock file or a pending temp file.
func (b *Backend) validate(name string) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}
	if reservedFile(name + b.ext) {
		return fmt.Errorf("%w: %q is reserved by the archive directory", core.ErrInvalidName, name)
	}
	return nil
}

func reservedFile(fileName string) bool {
	if fileName == lockFileName {
		return true
	}
	temp, _ := filepath.Match(tempPattern, fileName)
	return temp
}

// Exists reports whether a regular archive file exists for name. Invalid
// names never exist.
func (b *Backend) Exists(name string) (bool, error) {
	if b.validate(name) != nil {
		return false, nil
	}
	return b.exists(b.Path(name))
}

func (b *Backend) exists(path string) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: stat %s: %v", core.ErrStorageRead, path, err)
	}
	return fi.Mode().IsRegular(), nil
}

// ListNames scans the directory for archive files. A missing directory is
// an empty store.
func (b *Backend) ListNames() ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: scan %s: %v", core.ErrStorageRead, b.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		fileName := e.Name()
		if !strings.HasSuffix(fileName, b.ext) {
			continue
		}
		name := strings.TrimSuffix(fileName, b.ext)
		if b.validate(name) != nil {
			continue
		}
		// same rule as Exists, so a symlinked archive is listed as well
		ok, err := b.exists(filepath.Join(b.dir, fileName))
		if err != nil {
			return nil, err
		}
		if ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Save encodes the whole party before touching disk, then atomically
// replaces the archive file.
func (b *Backend) Save(name string, party core.Party) error {
	if err := b.validate(name); err != nil {
		return err
	}

	lines, err := codec.EncodeParty(party)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrStorageWrite, err)
	}

	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	if err := AtomicWriteFile(b.Path(name), []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("%w: save %q: %v", core.ErrStorageWrite, name, err)
	}
	return nil
}

// Load reads and decodes every line of the archive. Any undecodable line
// fails the whole load.
func (b *Backend) Load(name string) (core.Party, error) {
	if err := b.validate(name); err != nil {
		return nil, err
	}

	path := b.Path(name)
	ok, err := b.exists(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrNotFound, name)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", core.ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: open %q: %v", core.ErrStorageRead, name, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: %q: line exceeds %d bytes", core.ErrMalformedRecord, name, maxLineSize)
		}
		return nil, fmt.Errorf("%w: read %q: %v", core.ErrStorageRead, name, err)
	}

	party, err := codec.DecodeParty(lines)
	if err != nil {
		return nil, fmt.Errorf("archive %q: %w", name, err)
	}
	return party, nil
}

// Delete removes the archive file.
func (b *Backend) Delete(name string) error {
	if err := b.validate(name); err != nil {
		return err
	}

	path := b.Path(name)
	ok, err := b.exists(path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", core.ErrNotFound, name)
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %q", core.ErrNotFound, name)
		}
		return fmt.Errorf("%w: delete %q: %v", core.ErrStorageWrite, name, err)
	}
	return nil
}

// Ensure Backend implements storage.Backend at compile time
var _ storage.Backend = (*Backend)(nil)
