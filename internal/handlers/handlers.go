package handlers

import (
	"errors"
	"fmt"

	"github.com/partyvault/partyvault/internal/cache"
	"github.com/partyvault/partyvault/internal/dispatcher"
	"github.com/partyvault/partyvault/internal/logging"
	"github.com/partyvault/partyvault/internal/session"
	"github.com/partyvault/partyvault/pkg/core"
)

// Commands accepted by the dispatcher.
const (
	CmdStart     = ":START:"
	CmdNames     = ":NAMES:"
	CmdSave      = ":SAVE:"
	CmdLoad      = ":LOAD:"
	CmdDelete    = ":DELETE:"
	CmdNew       = ":NEW:"
	CmdQuickSave = ":QUICKSAVE:"
	CmdQuickLoad = ":QUICKLOAD:"
	CmdShow      = ":SHOW:"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Session    *session.Service
	LogManager *logging.SlogManager
}

// Service adapts dispatcher events to session operations. It is the only
// place where archive errors become user-facing text.
type Service struct {
	deps         Dependencies
	writeLogFunc func(functionName, data, level string)
}

// NewService creates a new handler service
func NewService(deps Dependencies) *Service {
	s := &Service{
		deps: deps,
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

// Register wires every command into d.
func (s *Service) Register(d *dispatcher.Dispatcher) {
	d.Register(CmdStart, s.handleStart, dispatcher.Logged())
	d.Register(CmdNames, s.handleNames)
	d.Register(CmdSave, s.handleSave, dispatcher.Logged())
	d.Register(CmdLoad, s.handleLoad, dispatcher.Logged())
	d.Register(CmdDelete, s.handleDelete, dispatcher.Logged())
	d.Register(CmdNew, s.handleNew, dispatcher.Logged())
	d.Register(CmdQuickSave, s.handleQuickSave, dispatcher.Logged())
	d.Register(CmdQuickLoad, s.handleQuickLoad, dispatcher.Logged())
	d.Register(CmdShow, s.handleShow)
}

// Describe turns an archive error into the message shown to the user.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, core.ErrInvalidName):
		return "You must enter a valid party name."
	case errors.Is(err, core.ErrDuplicateName):
		return "Party name already exists."
	case errors.Is(err, core.ErrNotFound):
		return "No save data to load."
	case errors.Is(err, core.ErrMalformedRecord):
		return "Save data is corrupted and was not loaded."
	case errors.Is(err, core.ErrStorageWrite):
		return "Could not write save data."
	case errors.Is(err, core.ErrStorageRead):
		return "Could not read save data."
	case errors.Is(err, session.ErrAlreadyStarted), errors.Is(err, cache.ErrAlreadyInitialized):
		return "Session already started."
	case errors.Is(err, dispatcher.ErrUnknownCommand):
		return "Unknown command."
	default:
		return err.Error()
	}
}

func (s *Service) handleStart(e dispatcher.Event) (any, error) {
	if err := s.deps.Session.Start(); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Found %d saved parties.", len(s.deps.Session.Names())), nil
}

func (s *Service) handleNames(e dispatcher.Event) (any, error) {
	return s.deps.Session.Names(), nil
}

func (s *Service) handleSave(e dispatcher.Event) (any, error) {
	name := e.Arg(0)
	if err := s.deps.Session.SaveAsNew(name); err != nil {
		return nil, err
	}
	return fmt.Sprintf("%s saved successfully.", name), nil
}

func (s *Service) handleLoad(e dispatcher.Event) (any, error) {
	name := e.Arg(0)
	if _, err := s.deps.Session.Load(name); err != nil {
		return nil, err
	}
	return fmt.Sprintf("%s loaded successfully!", name), nil
}

// handleDelete deletes the named archive, or the current one when no name
// is given.
func (s *Service) handleDelete(e dispatcher.Event) (any, error) {
	var (
		name    string
		outcome session.DeleteOutcome
		err     error
	)
	if len(e.Args) == 0 {
		name, _ = s.deps.Session.Current()
		outcome, err = s.deps.Session.DeleteCurrent()
	} else {
		name = e.Arg(0)
		outcome, err = s.deps.Session.Delete(name)
	}
	if err != nil {
		return nil, err
	}

	if outcome == session.NothingToDelete {
		s.writeLog(CmdDelete, fmt.Sprintf("Attempted -> %q", name), "DEBUG")
		return "No party to delete.", nil
	}
	return fmt.Sprintf("Deleted: %s", name), nil
}

func (s *Service) handleNew(e dispatcher.Event) (any, error) {
	party := s.deps.Session.New()
	return fmt.Sprintf("Rolled a new party of %d.", len(party)), nil
}

func (s *Service) handleQuickSave(e dispatcher.Event) (any, error) {
	if err := s.deps.Session.QuickSave(); err != nil {
		return nil, err
	}
	return "Party Saved!", nil
}

func (s *Service) handleQuickLoad(e dispatcher.Event) (any, error) {
	if _, err := s.deps.Session.QuickLoad(); err != nil {
		return nil, err
	}
	return "Party Loaded!", nil
}

// Snapshot is the result of :SHOW:.
type Snapshot struct {
	Current string
	Loaded  bool
	Party   core.Party
}

func (s *Service) handleShow(e dispatcher.Event) (any, error) {
	name, ok := s.deps.Session.Current()
	return Snapshot{
		Current: name,
		Loaded:  ok,
		Party:   s.deps.Session.Active(),
	}, nil
}
