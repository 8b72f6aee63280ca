package model

import (
	"errors"
	"fmt"
)

// Check walks the subtree under root and verifies the structural
// invariants: every node is reached once, chains agree with count in both
// directions, children point back at their folder, inherited visibility is
// up to date and nothing reachable is disposed.
func (t *Tree) Check(root NodeID) error {
	if !t.Contains(root) {
		return fmt.Errorf("root %d: %w", root, ErrUnknownNode)
	}
	if t.nodes[root].disposed {
		return fmt.Errorf("root %d: %w", root, ErrDisposed)
	}

	var errs []error
	seen := make(map[NodeID]bool)
	stack := []NodeID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			errs = append(errs, fmt.Errorf("node %d reached twice: %w", id, ErrCycle))
			continue
		}
		seen[id] = true

		f := &t.nodes[id]
		if !f.isFolder() {
			if f.first != NoNode || f.last != NoNode || f.count != 0 {
				errs = append(errs, fmt.Errorf("node %d: non-folder has children", id))
			}
			continue
		}

		children, err := t.checkChain(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		inherited := f.visible && f.parentVisible
		for _, c := range children {
			if t.nodes[c].parentVisible != inherited {
				errs = append(errs, fmt.Errorf("node %d: parentVisible=%v, want %v", c, t.nodes[c].parentVisible, inherited))
			}
			stack = append(stack, c)
		}
	}
	return errors.Join(errs...)
}

// checkChain verifies one folder's chain and returns its children
func (t *Tree) checkChain(folder NodeID) ([]NodeID, error) {
	f := &t.nodes[folder]
	var children []NodeID

	prev := NoNode
	for c := f.first; c != NoNode; c = t.nodes[c].next {
		if len(children) > f.count {
			return nil, fmt.Errorf("folder %d: forward chain longer than count %d", folder, f.count)
		}
		n := &t.nodes[c]
		if n.disposed {
			return nil, fmt.Errorf("folder %d: child %d: %w", folder, c, ErrDisposed)
		}
		if n.parent != folder {
			return nil, fmt.Errorf("folder %d: child %d has parent %d", folder, c, n.parent)
		}
		if n.previous != prev {
			return nil, fmt.Errorf("folder %d: child %d has previous %d, want %d", folder, c, n.previous, prev)
		}
		children = append(children, c)
		prev = c
	}
	if prev != f.last {
		return nil, fmt.Errorf("folder %d: chain ends at %d but last is %d", folder, prev, f.last)
	}
	if len(children) != f.count {
		return nil, fmt.Errorf("folder %d: forward chain has %d nodes, count is %d", folder, len(children), f.count)
	}

	backward := 0
	for c := f.last; c != NoNode; c = t.nodes[c].previous {
		backward++
		if backward > f.count {
			break
		}
	}
	if backward != f.count {
		return nil, fmt.Errorf("folder %d: backward chain has %d nodes, count is %d", folder, backward, f.count)
	}
	return children, nil
}
