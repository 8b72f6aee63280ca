// Package document provides a Document that owns a node tree, journals its
// change records for undo and redo, and fans them out to listeners.
package document

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/pstuifzand/doctree/internal/config"
	"github.com/pstuifzand/doctree/internal/model"
)

var (
	// ErrNothingToUndo is returned by Undo when the journal is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned by Redo when no undone batch is left.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrDisposedNode is returned when a journaled node no longer exists.
	ErrDisposedNode = errors.New("journaled node was disposed")

	// ErrReplay is returned when the tree refuses a replayed record.
	ErrReplay = errors.New("replay failed")
)

// Listener is called with every batch of records after it is journaled.
// It runs under the document lock and must not call back into the Document.
type Listener func(records []model.ChangeRecord)

// Document owns one tree. All access to the tree goes through Do, which
// holds the document lock for the duration of the callback.
type Document struct {
	mu        sync.Mutex
	tree      *model.Tree
	root      model.NodeID
	journal   *Journal
	listeners map[int]Listener
	nextID    int
	replaying bool
	logger    *log.Logger
}

// New creates a document with an empty root folder
func New(cfg *config.Config, logger *log.Logger) *Document {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.Default()
	}

	d := &Document{
		journal:   NewJournal(cfg.UndoLimit),
		listeners: make(map[int]Listener),
		logger:    logger,
	}
	d.tree = model.NewTree(model.WithNotifier(d), model.WithLogger(logger))
	d.root = d.tree.NewFolder(cfg.RootName)
	return d
}

// Root returns the document's root folder
func (d *Document) Root() model.NodeID {
	return d.root
}

// Do runs fn with exclusive access to the tree
func (d *Document) Do(fn func(t *model.Tree) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d.tree)
}

// NotifyNodeChanged journals a batch of records and hands it to listeners.
// It is called by the tree from inside Do, with the lock already held.
func (d *Document) NotifyNodeChanged(records []model.ChangeRecord) {
	batch := append([]model.ChangeRecord(nil), records...)
	if !d.replaying {
		d.journal.Push(batch)
	}
	for _, l := range d.listeners {
		l(batch)
	}
}

// Subscribe registers a listener and returns a function removing it
func (d *Document) Subscribe(l Listener) (cancel func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++
	d.listeners[id] = l
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.listeners, id)
	}
}

// CanUndo reports whether there is a batch to undo
func (d *Document) CanUndo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.journal.CanUndo()
}

// CanRedo reports whether there is a batch to redo
func (d *Document) CanRedo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.journal.CanRedo()
}

// History describes the journaled batches, oldest first
func (d *Document) History() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.journal.Summaries()
}

// Undo reverts the most recent batch. Records are replayed newest first,
// each node going back to its old parent and previous sibling. A batch that
// names a disposed node can never be replayed: it is dropped and the tree is
// left alone. Any other failure rolls back the records already replayed and
// keeps the batch on the undo stack.
func (d *Document) Undo() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	batch, ok := d.journal.PopUndo()
	if !ok {
		return ErrNothingToUndo
	}
	if err := d.replay(batch, true); err != nil {
		if !errors.Is(err, ErrDisposedNode) {
			d.journal.PushUndo(batch)
		}
		return fmt.Errorf("undo: %w", err)
	}
	d.journal.PushRedo(batch)
	return nil
}

// Redo applies the most recently undone batch again, oldest record first.
// Failures are handled as in Undo.
func (d *Document) Redo() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	batch, ok := d.journal.PopRedo()
	if !ok {
		return ErrNothingToRedo
	}
	if err := d.replay(batch, false); err != nil {
		if !errors.Is(err, ErrDisposedNode) {
			d.journal.PushRedo(batch)
		}
		return fmt.Errorf("redo: %w", err)
	}
	d.journal.PushUndo(batch)
	return nil
}

// replay places every record of a batch at its old (undo) or new position.
// Either the whole batch is applied or the tree ends up as it was.
func (d *Document) replay(batch []model.ChangeRecord, undo bool) error {
	steps := slices.Clone(batch)
	if undo {
		slices.Reverse(steps)
	}
	for _, r := range steps {
		parent, previous := target(r, undo)
		for _, n := range []model.NodeID{r.Node, parent, previous} {
			if n != model.NoNode && d.tree.IsDisposed(n) {
				d.logger.Printf("replay %s: node %d is disposed", r, n)
				return fmt.Errorf("%s: node %d: %w", r.Action, n, ErrDisposedNode)
			}
		}
	}

	for i, r := range steps {
		parent, previous := target(r, undo)
		if err := d.place(r.Node, parent, previous); err != nil {
			d.logger.Printf("replay %s: %v", r, err)
			for j := i - 1; j >= 0; j-- {
				back := steps[j]
				parent, previous := target(back, !undo)
				if rerr := d.place(back.Node, parent, previous); rerr != nil {
					d.logger.Printf("rollback %s: %v", back, rerr)
				}
			}
			return fmt.Errorf("%s: %w", r.Action, err)
		}
	}
	return nil
}

// target is where a record puts its node: the old position when undoing,
// the new one otherwise
func target(r model.ChangeRecord, undo bool) (parent, previous model.NodeID) {
	if undo {
		return r.OldParent, r.OldPrevious
	}
	return r.NewParent, r.NewPrevious
}

// place puts id under parent right after previous (head when NoNode), or
// detaches it when parent is NoNode. Must be called with the lock held.
func (d *Document) place(id, parent, previous model.NodeID) error {
	t := d.tree
	for _, n := range []model.NodeID{id, parent, previous} {
		if n != model.NoNode && t.IsDisposed(n) {
			return fmt.Errorf("node %d: %w", n, ErrDisposedNode)
		}
	}

	d.replaying = true
	defer func() { d.replaying = false }()

	current := t.Parent(id)
	var err error
	switch {
	case parent == model.NoNode && current == model.NoNode:
		return nil
	case parent == model.NoNode:
		err = t.Remove(current, id).Err()
	case current == model.NoNode && previous == model.NoNode:
		err = t.InsertBefore(parent, model.NoNode, id)
	case current == model.NoNode:
		err = t.InsertAfter(parent, previous, id)
	default:
		err = t.Move(id, parent, previous)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReplay, err)
	}
	return nil
}
