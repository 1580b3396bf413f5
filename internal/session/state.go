package session

import (
	"sync"

	"github.com/partyvault/partyvault/pkg/core"
)

// State holds the active party and the name of the archive it came from,
// if any. All accessors copy so callers never alias the held party.
type State struct {
	mu      sync.RWMutex
	current string
	loaded  bool
	party   core.Party
}

// NewState creates a State with no current archive.
func NewState(party core.Party) *State {
	return &State{party: party.Clone()}
}

// Current returns the current archive name and whether one is set.
func (st *State) Current() (string, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current, st.loaded
}

// Party returns a copy of the active party.
func (st *State) Party() core.Party {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.party.Clone()
}

// Set replaces the active party and the current archive name together.
func (st *State) Set(name string, party core.Party) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.current = name
	st.loaded = true
	st.party = party.Clone()
}

// SetCurrent points the session at name without touching the party.
func (st *State) SetCurrent(name string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.current = name
	st.loaded = true
}

// Reset clears the current archive name and installs a fresh party.
func (st *State) Reset(party core.Party) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.current = ""
	st.loaded = false
	st.party = party.Clone()
}
