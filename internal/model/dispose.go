package model

// Dispose tears down a node and everything below it. An attached node is
// first detached from its parent, which is reported as a single Remove
// record. The subtree is then disposed post-order: children before their
// folder, with sibling and child links cleared on the way. Disposed slots
// stay in the arena as tombstones and their ids are never handed out again.
func (t *Tree) Dispose(id NodeID) {
	n := t.live(id, "dispose")
	if n.attached() {
		record := ChangeRecord{
			Action:      ActionRemove,
			Node:        id,
			OldParent:   n.parent,
			OldPrevious: n.previous,
		}
		t.detach(id)
		t.notify([]ChangeRecord{record})
	}
	t.dispose(id)
}

func (t *Tree) dispose(id NodeID) {
	n := &t.nodes[id]
	if n.isFolder() {
		c := n.first
		for c != NoNode {
			next := t.nodes[c].next
			t.dispose(c)
			c = next
		}
		n.first, n.last, n.count = NoNode, NoNode, 0
	}
	n.parent, n.previous, n.next = NoNode, NoNode, NoNode
	n.payload = nil
	n.disposed = true
	t.alive--
}
