// Package session ties the record codec, archive store and name registry
// together. It is the only layer that mutates the registry, and it keeps the
// registry equal to the set of persisted archives: saves index after a
// successful write, deletes unindex before removing the archive.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/partyvault/partyvault/internal/cache"
	"github.com/partyvault/partyvault/internal/logging"
	"github.com/partyvault/partyvault/internal/roster"
	"github.com/partyvault/partyvault/internal/storage"
	"github.com/partyvault/partyvault/pkg/core"
)

// QuickSlot is the fixed archive name used by QuickSave and QuickLoad.
const QuickSlot = "party"

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("session already started")

// DeleteOutcome reports what a delete request did. Having nothing to delete
// is an outcome, not an error.
type DeleteOutcome int

const (
	NothingToDelete DeleteOutcome = iota
	Deleted
)

func (o DeleteOutcome) String() string {
	switch o {
	case Deleted:
		return "deleted"
	default:
		return "nothing to delete"
	}
}

// Observer receives every completed store operation.
type Observer interface {
	Observe(op core.ArchiveOp)
}

// Dependencies holds all dependencies needed by the session
type Dependencies struct {
	Store      storage.Backend
	Registry   *cache.NameRegistry
	Roster     roster.Generator
	LogManager *logging.SlogManager
	Observers  []Observer
}

// Service runs the session workflow. Every method except Start panics when
// called before Start.
type Service struct {
	deps    Dependencies
	state   *State
	started bool

	now          func() time.Time
	writeLogFunc func(functionName, data, level string)
}

// NewService creates a new session service
func NewService(deps Dependencies) *Service {
	if deps.Registry == nil {
		deps.Registry = cache.NewNameRegistry()
	}
	s := &Service{
		deps:  deps,
		state: NewState(nil),
		now:   time.Now,
	}
	s.writeLogFunc = func(functionName, data, level string) {
		if deps.LogManager != nil {
			deps.LogManager.WriteLog(functionName, data, level)
		}
	}
	return s
}

func (s *Service) writeLog(functionName, data, level string) {
	s.writeLogFunc(functionName, data, level)
}

// AddObserver registers o for subsequent operations.
func (s *Service) AddObserver(o Observer) {
	s.deps.Observers = append(s.deps.Observers, o)
}

func (s *Service) observe(kind, name string, members int, start time.Time, err error) {
	op := core.ArchiveOp{
		Kind:     kind,
		Name:     name,
		Members:  members,
		Time:     start,
		Duration: s.now().Sub(start),
		Err:      err,
	}
	for _, o := range s.deps.Observers {
		o.Observe(op)
	}
}

func (s *Service) mustBeStarted() {
	if !s.started {
		panic("session: Service used before Start")
	}
}

// Start seeds the name registry from the store and rolls the first party.
func (s *Service) Start() error {
	if s.started {
		return ErrAlreadyStarted
	}
	if err := s.deps.Registry.Initialize(s.deps.Store); err != nil {
		s.writeLog("session:Start", fmt.Sprintf("Failed to scan archives: %v", err), "ERROR")
		return err
	}
	s.state.Reset(s.deps.Roster.Generate())
	s.started = true
	s.writeLog("session:Start", fmt.Sprintf("Session started with %d archives", s.deps.Registry.Len()), "INFO")
	return nil
}

// Started reports whether Start has succeeded.
func (s *Service) Started() bool {
	return s.started
}

// Names returns every registered archive name in lexicographic order.
func (s *Service) Names() []string {
	s.mustBeStarted()
	return s.deps.Registry.All()
}

// Active returns a copy of the active party.
func (s *Service) Active() core.Party {
	s.mustBeStarted()
	return s.state.Party()
}

// Current returns the current archive name, if any.
func (s *Service) Current() (string, bool) {
	s.mustBeStarted()
	return s.state.Current()
}

// SaveAsNew persists the active party under a name that is not registered yet.
// On success the session's current archive becomes name.
func (s *Service) SaveAsNew(name string) error {
	s.mustBeStarted()
	functionName := "session:SaveAsNew"

	if err := storage.ValidateName(name); err != nil {
		return err
	}
	if s.deps.Registry.Contains(name) {
		s.writeLog(functionName, fmt.Sprintf("Archive %q already exists", name), "DEBUG")
		return fmt.Errorf("%w: %q", core.ErrDuplicateName, name)
	}

	party := s.state.Party()
	start := s.now()
	err := s.deps.Store.Save(name, party)
	s.observe(core.OpSave, name, len(party), start, err)
	if err != nil {
		s.writeLog(functionName, fmt.Sprintf("Failed to save %q: %v", name, err), "ERROR")
		return err
	}

	if err := s.deps.Registry.Add(name); err != nil {
		return err
	}
	s.state.SetCurrent(name)
	s.writeLog(functionName, fmt.Sprintf("Saved %q with %d members", name, len(party)), "INFO")
	return nil
}

// Overwrite persists the active party under name whether or not it exists.
// The registry gains name only after the write succeeds.
func (s *Service) Overwrite(name string) error {
	s.mustBeStarted()
	functionName := "session:Overwrite"

	if err := storage.ValidateName(name); err != nil {
		return err
	}

	party := s.state.Party()
	start := s.now()
	err := s.deps.Store.Save(name, party)
	s.observe(core.OpSave, name, len(party), start, err)
	if err != nil {
		s.writeLog(functionName, fmt.Sprintf("Failed to save %q: %v", name, err), "ERROR")
		return err
	}

	if !s.deps.Registry.Contains(name) {
		if err := s.deps.Registry.Add(name); err != nil {
			return err
		}
	}
	s.state.SetCurrent(name)
	s.writeLog(functionName, fmt.Sprintf("Saved %q with %d members", name, len(party)), "INFO")
	return nil
}

// QuickSave overwrites the single quick slot.
func (s *Service) QuickSave() error {
	return s.Overwrite(QuickSlot)
}

// QuickLoad loads the single quick slot.
func (s *Service) QuickLoad() (core.Party, error) {
	return s.Load(QuickSlot)
}

// Load replaces the active party with the named archive. On failure the
// active party and current name are left untouched.
func (s *Service) Load(name string) (core.Party, error) {
	s.mustBeStarted()
	functionName := "session:Load"

	start := s.now()
	party, err := s.deps.Store.Load(name)
	s.observe(core.OpLoad, name, len(party), start, err)
	if err != nil {
		s.writeLog(functionName, fmt.Sprintf("Failed to load %q: %v", name, err), "WARN")
		return nil, err
	}

	s.state.Set(name, party)
	s.writeLog(functionName, fmt.Sprintf("Loaded %q with %d members", name, len(party)), "INFO")
	return party.Clone(), nil
}

// New rolls a fresh party and forgets the current archive. Storage is not
// touched.
func (s *Service) New() core.Party {
	s.mustBeStarted()
	party := s.deps.Roster.Generate()
	s.state.Reset(party)
	return party.Clone()
}

// DeleteCurrent deletes the archive the session currently points at.
func (s *Service) DeleteCurrent() (DeleteOutcome, error) {
	s.mustBeStarted()

	name, ok := s.state.Current()
	if !ok {
		return NothingToDelete, nil
	}
	return s.delete(name)
}

// Delete deletes the named archive. When it is the current archive the
// session is reset as with DeleteCurrent; otherwise session state is kept.
func (s *Service) Delete(name string) (DeleteOutcome, error) {
	s.mustBeStarted()

	if err := storage.ValidateName(name); err != nil {
		return NothingToDelete, err
	}
	return s.delete(name)
}

func (s *Service) delete(name string) (DeleteOutcome, error) {
	functionName := "session:Delete"

	exists, err := s.deps.Store.Exists(name)
	if err != nil {
		return NothingToDelete, err
	}
	if !exists {
		s.writeLog(functionName, fmt.Sprintf("Archive %q is not on storage, nothing to delete", name), "INFO")
		return NothingToDelete, nil
	}

	// unindex first: a failure after this point leaves an orphan archive,
	// which the next scan picks up again
	registered := s.deps.Registry.Contains(name)
	if registered {
		if err := s.deps.Registry.Remove(name); err != nil {
			return NothingToDelete, err
		}
	}

	start := s.now()
	err = s.deps.Store.Delete(name)
	s.observe(core.OpDelete, name, 0, start, err)
	switch {
	case errors.Is(err, core.ErrNotFound):
		// removed underneath us; registry already matches storage
		s.writeLog(functionName, fmt.Sprintf("Archive %q vanished before delete", name), "WARN")
		return NothingToDelete, nil
	case err != nil:
		if registered {
			// the archive is still there, so it must stay indexed
			_ = s.deps.Registry.Add(name)
		}
		s.writeLog(functionName, fmt.Sprintf("Failed to delete %q: %v", name, err), "ERROR")
		return NothingToDelete, err
	}

	if current, ok := s.state.Current(); ok && current == name {
		s.state.Reset(s.deps.Roster.Generate())
	}
	s.writeLog(functionName, fmt.Sprintf("Deleted %q", name), "INFO")
	return Deleted, nil
}
