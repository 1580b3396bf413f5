package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/partyvault/partyvault/internal/dispatcher"
	"github.com/partyvault/partyvault/internal/handlers"
	"github.com/partyvault/partyvault/pkg/core"
)

const shellPrompt = "> "

const shellHelp = `Commands:
  new              roll a new party
  show             show the active party
  list             list saved parties
  save <name>      save the active party under a new name
  load <name>      load a saved party
  delete [name]    delete a saved party (the current one when no name is given)
  quicksave        save to the quick slot
  quickload        load the quick slot
  help             show this help
  quit             exit`

// errQuit ends the shell loop.
var errQuit = errors.New("quit")

// commandDispatcher is the part of *dispatcher.Dispatcher the shell uses.
type commandDispatcher interface {
	Dispatch(e dispatcher.Event) (any, error)
}

// shellCommand is one parsed input line.
type shellCommand struct {
	Event dispatcher.Event
	Help  bool
	Quit  bool
	Empty bool
}

// parseLine maps an input line to a dispatcher event. The keyword is matched
// case-insensitively; everything after the first space is the party name,
// taken verbatim.
func parseLine(line string) (shellCommand, error) {
	line = strings.TrimSuffix(line, "\r")
	if strings.TrimSpace(line) == "" {
		return shellCommand{Empty: true}, nil
	}

	keyword, name, hasName := strings.Cut(line, " ")
	keyword = strings.ToLower(keyword)

	named := func(command string) shellCommand {
		return shellCommand{Event: dispatcher.Event{Command: command, Args: []string{name}}}
	}
	bare := func(command string) shellCommand {
		return shellCommand{Event: dispatcher.Event{Command: command}}
	}

	switch keyword {
	case "save":
		return named(handlers.CmdSave), nil
	case "load":
		return named(handlers.CmdLoad), nil
	case "delete":
		if !hasName {
			return bare(handlers.CmdDelete), nil
		}
		return named(handlers.CmdDelete), nil
	case "new":
		return bare(handlers.CmdNew), nil
	case "list", "names":
		return bare(handlers.CmdNames), nil
	case "show":
		return bare(handlers.CmdShow), nil
	case "quicksave":
		return bare(handlers.CmdQuickSave), nil
	case "quickload":
		return bare(handlers.CmdQuickLoad), nil
	case "help", "?":
		return shellCommand{Help: true}, nil
	case "quit", "exit":
		return shellCommand{Quit: true}, nil
	default:
		return shellCommand{}, fmt.Errorf("%w: %s", dispatcher.ErrUnknownCommand, keyword)
	}
}

// formatResult renders a handler result for the terminal.
func formatResult(v any) string {
	switch r := v.(type) {
	case nil:
		return ""
	case string:
		return r
	case []string:
		if len(r) == 0 {
			return "No saved parties."
		}
		return "Saved parties:\n  " + strings.Join(r, "\n  ")
	case handlers.Snapshot:
		return formatSnapshot(r)
	default:
		return fmt.Sprintf("%v", r)
	}
}

func formatSnapshot(s handlers.Snapshot) string {
	var b strings.Builder
	if s.Loaded {
		fmt.Fprintf(&b, "Current: %s", s.Current)
	} else {
		b.WriteString("Current: (unsaved)")
	}
	if len(s.Party) == 0 {
		b.WriteString("\n  (empty party)")
		return b.String()
	}
	for i, c := range s.Party {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, formatCharacter(c))
	}
	return b.String()
}

func formatCharacter(c core.Character) string {
	return fmt.Sprintf(
		"class=%d hp=%d mp=%d str=%d agi=%d wis=%d equipment=%v",
		c.ClassID, c.Health, c.Mana, c.Strength, c.Agility, c.Wisdom, c.Equipment,
	)
}

// runShell reads commands from in until quit or EOF, writing replies to out.
// Handler errors are reported and the loop continues.
func runShell(in io.Reader, out io.Writer, d commandDispatcher) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, shellPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		reply, err := execLine(scanner.Text(), d)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(out, handlers.Describe(err))
			continue
		}
		if reply != "" {
			fmt.Fprintln(out, reply)
		}
	}
}

func execLine(line string, d commandDispatcher) (string, error) {
	cmd, err := parseLine(line)
	switch {
	case err != nil:
		return "", err
	case cmd.Empty:
		return "", nil
	case cmd.Quit:
		return "", errQuit
	case cmd.Help:
		return shellHelp, nil
	}

	result, err := d.Dispatch(cmd.Event)
	if err != nil {
		return "", err
	}
	return formatResult(result), nil
}
