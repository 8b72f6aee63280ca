// Package app runs doctree command scripts against a Document.
package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/pstuifzand/doctree/internal/config"
	"github.com/pstuifzand/doctree/internal/diff"
	"github.com/pstuifzand/doctree/internal/document"
	"github.com/pstuifzand/doctree/internal/history"
	"github.com/pstuifzand/doctree/internal/model"
)

var (
	// ErrUnknownCommand is returned for a command word the app does not know.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUsage is returned when a command gets the wrong arguments.
	ErrUsage = errors.New("usage")

	// ErrUnknownName is returned when no live node has the given name.
	ErrUnknownName = errors.New("no node with that name")

	// ErrScriptFailed is returned by Run when at least one line failed.
	ErrScriptFailed = errors.New("script failed")
)

// App is the script interpreter. Commands refer to nodes by name.
type App struct {
	cfg      *config.Config
	doc      *document.Document
	out      io.Writer
	errOut   io.Writer
	logger   *log.Logger
	created  []model.NodeID
	last     []model.ChangeRecord
	snapshot diff.Snapshot
	history  *history.Manager
	cancel   func()
}

// findHistoryFile holds the find queries of earlier runs
const findHistoryFile = "find.toml"

// NewApp creates an App with a fresh document. Command output goes to out,
// per-line failures to errOut.
func NewApp(cfg *config.Config, out, errOut io.Writer, logger *log.Logger) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	a := &App{
		cfg:    cfg,
		doc:    document.New(cfg, logger),
		out:    out,
		errOut: errOut,
		logger: logger,
	}
	a.cancel = a.doc.Subscribe(func(records []model.ChangeRecord) {
		a.last = records
	})
	return a
}

// Document returns the document the app edits
func (a *App) Document() *document.Document {
	return a.doc
}

// SetHistory makes find queries persist through m
func (a *App) SetHistory(m *history.Manager) {
	a.history = m
}

// Close stops listening to the document
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// Run executes a script line by line. Blank lines and lines starting with
// # are skipped. A failing line is reported and the script continues.
func (a *App) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	failed, lineNo := 0, 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := a.Execute(line); err != nil {
			failed++
			a.logger.Printf("line %d: %s: %v", lineNo, line, err)
			fmt.Fprintf(a.errOut, "line %d: %v\n", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d line(s) failed", ErrScriptFailed, failed)
	}
	return nil
}

// Execute runs a single command line
func (a *App) Execute(line string) error {
	parts := parseCommand(line)
	if len(parts) == 0 {
		return nil
	}

	switch cmd, args := parts[0], parts[1:]; cmd {
	case "folder", "shape", "group":
		return a.handleCreate(cmd, args)
	case "add", "remove", "transfer":
		return a.handleBatch(cmd, args)
	case "before", "after":
		return a.handleInsert(cmd, args)
	case "move":
		return a.handleMove(args)
	case "hide", "show":
		return a.handleVisibility(cmd, args)
	case "rename":
		return a.handleRename(args)
	case "dispose":
		return a.handleDispose(args)
	case "undo":
		return a.doc.Undo()
	case "redo":
		return a.doc.Redo()
	case "tree":
		return a.handleTree(args)
	case "find":
		return a.handleFind(restAfter(line))
	case "queries":
		return a.handleQueries()
	case "check":
		return a.handleCheck()
	case "history":
		for _, h := range a.doc.History() {
			fmt.Fprintln(a.out, h)
		}
		return nil
	case "records":
		return a.handleRecords(args)
	case "snapshot":
		a.Snapshot()
		return nil
	case "diff":
		return a.handleDiff()
	case "export":
		return a.handleExport(args)
	case "set":
		if len(args) != 2 {
			return fmt.Errorf("%w: set <key> <value>", ErrUsage)
		}
		a.cfg.Set(args[0], args[1])
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
}

// Snapshot remembers the current structure for a later diff
func (a *App) Snapshot() {
	_ = a.doc.Do(func(t *model.Tree) error {
		a.snapshot = diff.Capture(t, a.doc.Root())
		return nil
	})
}

// Changes compares the structure now with the last snapshot, or with an
// empty document when no snapshot was taken
func (a *App) Changes() *diff.DiffResult {
	var result *diff.DiffResult
	_ = a.doc.Do(func(t *model.Tree) error {
		result = diff.Compare(a.snapshot, diff.Capture(t, a.doc.Root()))
		return nil
	})
	return result
}

// resolve finds a live node by name: first in pre-order under the root,
// then among detached nodes in creation order
func (a *App) resolve(t *model.Tree, name string) (model.NodeID, error) {
	if id, ok := t.FindByName(a.doc.Root(), name); ok {
		return id, nil
	}
	for _, id := range a.created {
		if !t.IsDisposed(id) && t.Name(id) == name {
			return id, nil
		}
	}
	return model.NoNode, fmt.Errorf("%w: %q", ErrUnknownName, name)
}

// resolveOptional is resolve with "-" meaning no node
func (a *App) resolveOptional(t *model.Tree, name string) (model.NodeID, error) {
	if name == "-" {
		return model.NoNode, nil
	}
	return a.resolve(t, name)
}

func (a *App) resolveAll(t *model.Tree, names []string) ([]model.NodeID, error) {
	ids := make([]model.NodeID, 0, len(names))
	for _, name := range names {
		id, err := a.resolve(t, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
