package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partyvault/partyvault/internal/cache"
	"github.com/partyvault/partyvault/internal/dispatcher"
	"github.com/partyvault/partyvault/internal/handlers"
	"github.com/partyvault/partyvault/internal/roster"
	"github.com/partyvault/partyvault/internal/session"
	"github.com/partyvault/partyvault/internal/storage/memory"
	"github.com/partyvault/partyvault/pkg/core"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		command string
		args    []string
	}{
		{"save keeps name verbatim", "save  My Party ", handlers.CmdSave, []string{" My Party "}},
		{"save without name", "save", handlers.CmdSave, []string{""}},
		{"load", "load alpha", handlers.CmdLoad, []string{"alpha"}},
		{"keyword is case insensitive", "LOAD alpha", handlers.CmdLoad, []string{"alpha"}},
		{"delete current", "delete", handlers.CmdDelete, nil},
		{"delete named", "delete alpha", handlers.CmdDelete, []string{"alpha"}},
		{"delete with empty name", "delete ", handlers.CmdDelete, []string{""}},
		{"new", "new", handlers.CmdNew, nil},
		{"list", "list", handlers.CmdNames, nil},
		{"show", "show", handlers.CmdShow, nil},
		{"quicksave", "quicksave", handlers.CmdQuickSave, nil},
		{"quickload", "quickload", handlers.CmdQuickLoad, nil},
		{"crlf is stripped", "load alpha\r", handlers.CmdLoad, []string{"alpha"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := parseLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.command, cmd.Event.Command)
			assert.Equal(t, tt.args, cmd.Event.Args)
		})
	}
}

func TestParseLine_Control(t *testing.T) {
	cmd, err := parseLine("quit")
	require.NoError(t, err)
	assert.True(t, cmd.Quit)

	cmd, err = parseLine("help")
	require.NoError(t, err)
	assert.True(t, cmd.Help)

	cmd, err = parseLine("   ")
	require.NoError(t, err)
	assert.True(t, cmd.Empty)

	_, err = parseLine("launch rockets")
	assert.ErrorIs(t, err, dispatcher.ErrUnknownCommand)
}

func TestFormatResult(t *testing.T) {
	assert.Equal(t, "", formatResult(nil))
	assert.Equal(t, "Party Saved!", formatResult("Party Saved!"))
	assert.Equal(t, "No saved parties.", formatResult([]string{}))
	assert.Equal(t, "Saved parties:\n  alpha\n  beta", formatResult([]string{"alpha", "beta"}))

	out := formatResult(handlers.Snapshot{
		Current: "alpha",
		Loaded:  true,
		Party:   core.Party{{ClassID: 1, Health: 90, Mana: 10, Strength: 3, Agility: 4, Wisdom: 5, Equipment: []int{7, 7}}},
	})
	assert.Equal(t, "Current: alpha\n  1. class=1 hp=90 mp=10 str=3 agi=4 wis=5 equipment=[7 7]", out)

	assert.Equal(t, "Current: (unsaved)\n  (empty party)", formatResult(handlers.Snapshot{}))
}

func newShellDispatcher(t *testing.T) *dispatcher.Dispatcher {
	t.Helper()
	sess := session.NewService(session.Dependencies{
		Store:    memory.New(),
		Registry: cache.NewNameRegistry(),
		Roster:   roster.Fixed(core.Party{{ClassID: 2, Health: 100, Equipment: []int{1}}}),
	})
	d, err := dispatcher.New(nil)
	require.NoError(t, err)
	handlers.NewService(handlers.Dependencies{Session: sess}).Register(d)

	_, err = d.Dispatch(dispatcher.Event{Command: handlers.CmdStart})
	require.NoError(t, err)
	return d
}

func TestRunShell(t *testing.T) {
	d := newShellDispatcher(t)

	in := strings.NewReader(strings.Join([]string{
		"save alpha",
		"list",
		"save alpha",
		"load nope",
		"delete",
		"delete",
		"bogus",
		"",
		"quit",
		"list",
	}, "\n"))
	var out bytes.Buffer

	require.NoError(t, runShell(in, &out, d))

	got := out.String()
	assert.Contains(t, got, "alpha saved successfully.")
	assert.Contains(t, got, "Saved parties:\n  alpha")
	assert.Contains(t, got, "Party name already exists.")
	assert.Contains(t, got, "No save data to load.")
	assert.Contains(t, got, "Deleted: alpha")
	assert.Contains(t, got, "No party to delete.")
	assert.Contains(t, got, "Unknown command.")
	// nothing after quit is executed
	assert.Equal(t, 1, strings.Count(got, "Saved parties:"))
}

func TestRunShell_QuickSlotAndEOF(t *testing.T) {
	d := newShellDispatcher(t)

	in := strings.NewReader("quickload\nquicksave\nnew\nquickload\nshow")
	var out bytes.Buffer

	require.NoError(t, runShell(in, &out, d))

	got := out.String()
	assert.Contains(t, got, "No save data to load.")
	assert.Contains(t, got, "Party Saved!")
	assert.Contains(t, got, "Rolled a new party of 1.")
	assert.Contains(t, got, "Party Loaded!")
	assert.Contains(t, got, "Current: "+session.QuickSlot)
}

func TestShellAcceptsSessionDispatcher(t *testing.T) {
	var d commandDispatcher = newShellDispatcher(t)

	reply, err := execLine("list", d)
	require.NoError(t, err)
	assert.Equal(t, "No saved parties.", reply)
}
