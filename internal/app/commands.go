package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/pstuifzand/doctree/internal/diff"
	"github.com/pstuifzand/doctree/internal/export"
	"github.com/pstuifzand/doctree/internal/model"
	"github.com/pstuifzand/doctree/internal/search"
)

// ErrDisposeRoot is returned when a script tries to dispose the document root.
var ErrDisposeRoot = errors.New("cannot dispose the document root")

// rawDump prints records field by field instead of through their String method
var rawDump = spew.ConfigState{Indent: "  ", DisableMethods: true}

// handleCreate handles folder|shape|group <name>...
func (a *App) handleCreate(cmd string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: %s <name>...", ErrUsage, cmd)
	}
	kind, err := model.ParseKind(cmd)
	if err != nil {
		return err
	}
	return a.doc.Do(func(t *model.Tree) error {
		for _, name := range args {
			a.created = append(a.created, t.NewNode(kind, name, nil))
		}
		return nil
	})
}

// handleBatch handles add|remove|transfer <folder> <item>...
func (a *App) handleBatch(cmd string, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: %s <folder> <item>...", ErrUsage, cmd)
	}
	return a.doc.Do(func(t *model.Tree) error {
		folder, err := a.resolve(t, args[0])
		if err != nil {
			return err
		}
		items, err := a.resolveAll(t, args[1:])
		if err != nil {
			return err
		}

		var result model.Result
		switch cmd {
		case "add":
			result = t.Add(folder, items...)
		case "remove":
			result = t.Remove(folder, items...)
		default:
			result = t.Transfer(folder, items...)
		}
		return a.describeRejections(t, cmd, result)
	})
}

// describeRejections turns the failed outcomes of a batch into one error
// that names the nodes instead of their ids
func (a *App) describeRejections(t *model.Tree, cmd string, result model.Result) error {
	var errs []error
	for _, o := range result.Rejected() {
		errs = append(errs, fmt.Errorf("%s %q: %w", cmd, t.Name(o.Node), o.Err))
	}
	return errors.Join(errs...)
}

// handleInsert handles before|after <folder> <target|-> <item>
func (a *App) handleInsert(cmd string, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: %s <folder> <target|-> <item>", ErrUsage, cmd)
	}
	return a.doc.Do(func(t *model.Tree) error {
		folder, err := a.resolve(t, args[0])
		if err != nil {
			return err
		}
		target, err := a.resolveOptional(t, args[1])
		if err != nil {
			return err
		}
		item, err := a.resolve(t, args[2])
		if err != nil {
			return err
		}
		if cmd == "before" {
			err = t.InsertBefore(folder, target, item)
		} else {
			err = t.InsertAfter(folder, target, item)
		}
		if err != nil {
			return fmt.Errorf("%s %q: %w", cmd, args[2], err)
		}
		return nil
	})
}

// handleMove handles move <item> <parent> [previous|-]
func (a *App) handleMove(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("%w: move <item> <parent> [previous|-]", ErrUsage)
	}
	return a.doc.Do(func(t *model.Tree) error {
		item, err := a.resolve(t, args[0])
		if err != nil {
			return err
		}
		parent, err := a.resolve(t, args[1])
		if err != nil {
			return err
		}
		previous := model.NoNode
		if len(args) == 3 {
			if previous, err = a.resolveOptional(t, args[2]); err != nil {
				return err
			}
		}
		if err := t.Move(item, parent, previous); err != nil {
			return fmt.Errorf("move %q: %w", args[0], err)
		}
		return nil
	})
}

// handleVisibility handles hide|show <name>...
func (a *App) handleVisibility(cmd string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: %s <name>...", ErrUsage, cmd)
	}
	return a.doc.Do(func(t *model.Tree) error {
		ids, err := a.resolveAll(t, args)
		if err != nil {
			return err
		}
		for _, id := range ids {
			t.SetVisible(id, cmd == "show")
		}
		return nil
	})
}

// handleRename handles rename <name> <new name>
func (a *App) handleRename(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: rename <name> <new name>", ErrUsage)
	}
	return a.doc.Do(func(t *model.Tree) error {
		id, err := a.resolve(t, args[0])
		if err != nil {
			return err
		}
		t.SetName(id, args[1])
		return nil
	})
}

// handleDispose handles dispose <name>...
func (a *App) handleDispose(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: dispose <name>...", ErrUsage)
	}
	return a.doc.Do(func(t *model.Tree) error {
		ids, err := a.resolveAll(t, args)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if id == a.doc.Root() {
				return ErrDisposeRoot
			}
		}
		for _, id := range ids {
			// an earlier name may have taken this one down with its subtree
			if !t.IsDisposed(id) {
				t.Dispose(id)
			}
		}
		return nil
	})
}

// handleTree prints the subtree under a node (the root by default), two
// spaces per level
func (a *App) handleTree(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: tree [name]", ErrUsage)
	}
	return a.doc.Do(func(t *model.Tree) error {
		root := a.doc.Root()
		if len(args) == 1 {
			var err error
			if root, err = a.resolve(t, args[0]); err != nil {
				return err
			}
		}
		t.Walk(root, func(id model.NodeID, depth int) bool {
			fmt.Fprintf(a.out, "%s%s\n", strings.Repeat("  ", depth), export.Label(t, id))
			return true
		})
		return nil
	})
}

// handleFind prints the names of the nodes matching a query, one per line
func (a *App) handleFind(query string) error {
	return a.doc.Do(func(t *model.Tree) error {
		ids, err := search.Find(t, a.doc.Root(), query)
		if err != nil {
			return fmt.Errorf("find: %w", err)
		}
		for _, id := range ids {
			fmt.Fprintln(a.out, t.Name(id))
		}
		a.rememberQuery(query)
		return nil
	})
}

func (a *App) rememberQuery(query string) {
	if a.history == nil || query == "" {
		return
	}
	if err := a.history.Append(findHistoryFile, query, a.cfg.GetInt("history_limit", 100)); err != nil {
		a.logger.Printf("warning: find history: %v", err)
	}
}

// handleQueries prints earlier find queries, oldest first
func (a *App) handleQueries() error {
	if a.history == nil {
		return nil
	}
	entries, err := a.history.Load(findHistoryFile)
	if err != nil {
		return fmt.Errorf("queries: %w", err)
	}
	for _, q := range entries {
		fmt.Fprintln(a.out, q)
	}
	return nil
}

func (a *App) handleCheck() error {
	return a.doc.Do(func(t *model.Tree) error {
		if err := t.Check(a.doc.Root()); err != nil {
			return fmt.Errorf("check: %w", err)
		}
		fmt.Fprintln(a.out, "ok")
		return nil
	})
}

// handleRecords prints the records of the last batch, or with "raw" dumps
// every field
func (a *App) handleRecords(args []string) error {
	if len(args) == 1 && args[0] == "raw" {
		rawDump.Fdump(a.out, a.last)
		return nil
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: records [raw]", ErrUsage)
	}
	for _, r := range a.last {
		fmt.Fprintln(a.out, r)
	}
	return nil
}

func (a *App) handleDiff() error {
	result := a.Changes()
	if result.Empty() {
		fmt.Fprintln(a.out, "no changes")
		return nil
	}
	fmt.Fprint(a.out, diff.Render(diff.BuildDiffLines(result, false)))
	return nil
}

// handleExport handles export <path> [name]
func (a *App) handleExport(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: export <path> [name]", ErrUsage)
	}
	return a.doc.Do(func(t *model.Tree) error {
		root := a.doc.Root()
		if len(args) == 2 {
			var err error
			if root, err = a.resolve(t, args[1]); err != nil {
				return err
			}
		}
		return export.ExportToMarkdown(t, root, args[0])
	})
}
