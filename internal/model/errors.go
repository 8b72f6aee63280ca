package model

import (
	"errors"
	"fmt"
)

// Reasons an item of a structural operation is rejected.
var (
	// ErrCycle is returned when an operation would make a node its own descendant.
	ErrCycle = errors.New("would create a cycle")

	// ErrSelf is returned when a node is asked to relate to itself.
	ErrSelf = errors.New("node refers to itself")

	// ErrNotChild is returned when a node is not a direct child of the folder.
	ErrNotChild = errors.New("not a child of the folder")

	// ErrNotFolder is returned when a non-folder is used as a container.
	ErrNotFolder = errors.New("not a folder")

	// ErrNotAttached is returned when moving a node that has no parent.
	ErrNotAttached = errors.New("node is not attached")

	// ErrInvalidTarget is returned when a position target is not usable.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrUnknownNode is returned for ids that do not belong to the tree.
	ErrUnknownNode = errors.New("unknown node")

	// ErrDisposed is the panic value wrapped on use-after-dispose.
	ErrDisposed = errors.New("node is disposed")
)

// Outcome is the per-item result of a batch operation
type Outcome struct {
	Node NodeID
	Err  error
}

// Result holds one Outcome per input item, in argument order
type Result []Outcome

// Accepted returns the nodes that were applied
func (r Result) Accepted() []NodeID {
	var ids []NodeID
	for _, o := range r {
		if o.Err == nil {
			ids = append(ids, o.Node)
		}
	}
	return ids
}

// Rejected returns the outcomes that failed
func (r Result) Rejected() []Outcome {
	var out []Outcome
	for _, o := range r {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Err joins all rejection errors, nil when every item was accepted
func (r Result) Err() error {
	var errs []error
	for _, o := range r {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("node %d: %w", o.Node, o.Err))
		}
	}
	return errors.Join(errs...)
}
