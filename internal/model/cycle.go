package model

import "fmt"

// IsAncestorOf reports whether target sits anywhere in the subtree below
// ancestor. It searches the children depth-first, so it costs O(subtree).
// Non-folders have no subtree and are never ancestors.
func (t *Tree) IsAncestorOf(ancestor, target NodeID) bool {
	if !t.live(ancestor, "is ancestor").isFolder() {
		return false
	}
	stack := []NodeID{ancestor}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for c := t.nodes[cur].first; c != NoNode; c = t.nodes[c].next {
			if c == target {
				return true
			}
			if t.nodes[c].isFolder() {
				stack = append(stack, c)
			}
		}
	}
	return false
}

// checkCycle is the one cycle check used by every placing operation: id may
// go into folder unless it is the folder or one of the folder's ancestors.
// It runs before any link is touched.
func (t *Tree) checkCycle(folder, id NodeID) error {
	if folder == id {
		return fmt.Errorf("%w: node would contain itself", ErrCycle)
	}
	if t.IsAncestorOf(id, folder) {
		return fmt.Errorf("%w: %q is inside %q", ErrCycle, t.nodes[folder].name, t.nodes[id].name)
	}
	return nil
}
