package document

import (
	"fmt"
	"strings"

	"github.com/pstuifzand/doctree/internal/model"
)

// Journal keeps the undo and redo stacks of record batches.
// The undo stack is capped; the oldest batches fall off first.
type Journal struct {
	undo       [][]model.ChangeRecord
	redo       [][]model.ChangeRecord
	maxEntries int
}

// NewJournal creates a journal holding at most maxEntries undo batches
func NewJournal(maxEntries int) *Journal {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Journal{maxEntries: maxEntries}
}

// Push records a new batch and forgets everything that could be redone
func (j *Journal) Push(batch []model.ChangeRecord) {
	if len(batch) == 0 {
		return
	}
	j.PushUndo(batch)
	j.redo = nil
}

// PushUndo puts a batch on the undo stack, trimming the oldest if needed
func (j *Journal) PushUndo(batch []model.ChangeRecord) {
	j.undo = append(j.undo, batch)
	if len(j.undo) > j.maxEntries {
		j.undo = j.undo[len(j.undo)-j.maxEntries:]
	}
}

// PushRedo puts an undone batch on the redo stack
func (j *Journal) PushRedo(batch []model.ChangeRecord) {
	j.redo = append(j.redo, batch)
}

// PopUndo takes the newest batch off the undo stack
func (j *Journal) PopUndo() ([]model.ChangeRecord, bool) {
	if len(j.undo) == 0 {
		return nil, false
	}
	batch := j.undo[len(j.undo)-1]
	j.undo = j.undo[:len(j.undo)-1]
	return batch, true
}

// PopRedo takes the newest batch off the redo stack
func (j *Journal) PopRedo() ([]model.ChangeRecord, bool) {
	if len(j.redo) == 0 {
		return nil, false
	}
	batch := j.redo[len(j.redo)-1]
	j.redo = j.redo[:len(j.redo)-1]
	return batch, true
}

func (j *Journal) CanUndo() bool { return len(j.undo) > 0 }
func (j *Journal) CanRedo() bool { return len(j.redo) > 0 }

// Summaries describes each undo batch on one line, oldest first
func (j *Journal) Summaries() []string {
	out := make([]string, 0, len(j.undo))
	for i, batch := range j.undo {
		actions := make([]string, 0, len(batch))
		for _, r := range batch {
			actions = append(actions, fmt.Sprintf("%s(%d)", r.Action, r.Node))
		}
		out = append(out, fmt.Sprintf("%d: %s", i+1, strings.Join(actions, " ")))
	}
	return out
}
