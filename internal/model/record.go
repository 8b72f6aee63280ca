package model

import "fmt"

// Action tags what a structural operation did to a node
type Action int

const (
	ActionAdd Action = iota
	ActionRemove
	ActionTransfer
	ActionInsertBefore
	ActionInsertAfter
	ActionMove
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	case ActionTransfer:
		return "transfer"
	case ActionInsertBefore:
		return "insert-before"
	case ActionInsertAfter:
		return "insert-after"
	case ActionMove:
		return "move"
	default:
		return "unknown"
	}
}

// ChangeRecord describes one node mutated by one operation.
// Old* is the topology before the mutation, New* after it; NoNode where
// there was (or is) no parent or no previous sibling.
type ChangeRecord struct {
	Action      Action
	Node        NodeID
	OldParent   NodeID
	OldPrevious NodeID
	NewParent   NodeID
	NewPrevious NodeID
}

func (r ChangeRecord) String() string {
	return fmt.Sprintf("%s node=%d old=(%d,%d) new=(%d,%d)",
		r.Action, r.Node, r.OldParent, r.OldPrevious, r.NewParent, r.NewPrevious)
}

// Notifier receives the records of each mutation in a single call
type Notifier interface {
	NotifyNodeChanged(records []ChangeRecord)
}

// NotifierFunc adapts a plain function to Notifier
type NotifierFunc func(records []ChangeRecord)

func (f NotifierFunc) NotifyNodeChanged(records []ChangeRecord) {
	f(records)
}
