package model

import (
	"fmt"
	"iter"
	"log"

	"github.com/google/uuid"
)

// Tree is the arena holding every node of one document.
// Slot 0 is reserved so that NoNode never refers to a node; slots are never
// reused, disposal only tombstones them.
type Tree struct {
	nodes    []node
	alive    int
	notifier Notifier
	logger   *log.Logger
}

// Option configures a Tree
type Option func(*Tree)

// WithNotifier sets the collaborator receiving change records
func WithNotifier(n Notifier) Option {
	return func(t *Tree) {
		t.notifier = n
	}
}

// WithLogger sets the logger used for rejected operations
func WithLogger(l *log.Logger) Option {
	return func(t *Tree) {
		t.logger = l
	}
}

// NewTree creates an empty tree
func NewTree(opts ...Option) *Tree {
	t := &Tree{
		nodes:  make([]node, 1, 64),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetNotifier replaces the change record collaborator
func (t *Tree) SetNotifier(n Notifier) {
	t.notifier = n
}

// NewNode creates a detached, visible node
func (t *Tree) NewNode(kind Kind, name string, payload any) NodeID {
	t.nodes = append(t.nodes, node{
		uuid:          uuid.New(),
		name:          name,
		kind:          kind,
		payload:       payload,
		visible:       true,
		parentVisible: true,
	})
	t.alive++
	return NodeID(len(t.nodes) - 1)
}

// NewFolder creates a detached, empty folder
func (t *Tree) NewFolder(name string) NodeID {
	return t.NewNode(KindFolder, name, nil)
}

// NewGroup creates a detached, empty group. Groups hold children like folders.
func (t *Tree) NewGroup(name string) NodeID {
	return t.NewNode(KindGroup, name, nil)
}

// NewShape creates a detached shape node carrying payload
func (t *Tree) NewShape(name string, payload any) NodeID {
	return t.NewNode(KindShape, name, payload)
}

// Len returns the number of nodes that are not disposed
func (t *Tree) Len() int {
	return t.alive
}

// Count returns the number of direct children of a folder
func (t *Tree) Count(folder NodeID) int {
	return t.live(folder, "count").count
}

// FirstChild returns the head of a folder's chain
func (t *Tree) FirstChild(folder NodeID) NodeID {
	return t.live(folder, "first child").first
}

// LastChild returns the tail of a folder's chain
func (t *Tree) LastChild(folder NodeID) NodeID {
	return t.live(folder, "last child").last
}

// Children iterates the direct children of a folder in chain order.
// Each range starts from the folder's current head, so the sequence may be
// ranged over again after the tree changes. It must not be used while the
// folder is being mutated.
func (t *Tree) Children(folder NodeID) iter.Seq[NodeID] {
	t.live(folder, "children")
	return func(yield func(NodeID) bool) {
		for c := t.nodes[folder].first; c != NoNode; c = t.nodes[c].next {
			if !yield(c) {
				return
			}
		}
	}
}

// ChildSlice returns the direct children of a folder as a slice
func (t *Tree) ChildSlice(folder NodeID) []NodeID {
	ids := make([]NodeID, 0, t.Count(folder))
	for c := range t.Children(folder) {
		ids = append(ids, c)
	}
	return ids
}

// Walk visits root and its descendants in pre-order. Returning false from fn
// skips the children of that node.
func (t *Tree) Walk(root NodeID, fn func(id NodeID, depth int) bool) {
	t.live(root, "walk")
	t.walk(root, 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(NodeID, int) bool) {
	if !fn(id, depth) {
		return
	}
	n := &t.nodes[id]
	if !n.isFolder() {
		return
	}
	for c := n.first; c != NoNode; c = t.nodes[c].next {
		t.walk(c, depth+1, fn)
	}
}

// Descendants iterates every node below root in pre-order, root excluded
func (t *Tree) Descendants(root NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		stop := false
		t.Walk(root, func(id NodeID, depth int) bool {
			if stop {
				return false
			}
			if id != root && !yield(id) {
				stop = true
				return false
			}
			return true
		})
	}
}

// FindByName returns the first node named name below (or equal to) root
func (t *Tree) FindByName(root NodeID, name string) (NodeID, bool) {
	found := NoNode
	t.Walk(root, func(id NodeID, depth int) bool {
		if found != NoNode {
			return false
		}
		if t.nodes[id].name == name {
			found = id
			return false
		}
		return true
	})
	return found, found != NoNode
}

// FindByUUID looks up a live node by its external identifier
func (t *Tree) FindByUUID(u uuid.UUID) (NodeID, bool) {
	for i := 1; i < len(t.nodes); i++ {
		if !t.nodes[i].disposed && t.nodes[i].uuid == u {
			return NodeID(i), true
		}
	}
	return NoNode, false
}

// Depth returns the number of ancestors of a node
func (t *Tree) Depth(id NodeID) int {
	depth := 0
	for p := t.live(id, "depth").parent; p != NoNode; p = t.nodes[p].parent {
		depth++
	}
	return depth
}

// Ancestors lists the ancestors of a node, nearest first
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var ids []NodeID
	for p := t.live(id, "ancestors").parent; p != NoNode; p = t.nodes[p].parent {
		ids = append(ids, p)
	}
	return ids
}

// SetVisible changes a node's own visibility and updates the inherited
// visibility of all its descendants before returning
func (t *Tree) SetVisible(id NodeID, visible bool) {
	n := t.live(id, "set visible")
	if n.visible == visible {
		return
	}
	n.visible = visible
	t.propagateVisibility(id)
}

// propagateVisibility recomputes parentVisible below id
func (t *Tree) propagateVisibility(id NodeID) {
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[cur]
		if !n.isFolder() {
			continue
		}
		inherited := n.visible && n.parentVisible
		for c := n.first; c != NoNode; c = t.nodes[c].next {
			t.nodes[c].parentVisible = inherited
			stack = append(stack, c)
		}
	}
}

// slot returns the arena slot for id, panicking on ids foreign to the tree
func (t *Tree) slot(id NodeID) *node {
	if !t.Contains(id) {
		panic(fmt.Errorf("node %d: %w", id, ErrUnknownNode))
	}
	return &t.nodes[id]
}

// live returns the slot for id, panicking if the node is disposed
func (t *Tree) live(id NodeID, op string) *node {
	n := t.slot(id)
	if n.disposed {
		panic(fmt.Errorf("%s: node %d: %w", op, id, ErrDisposed))
	}
	return n
}

func (t *Tree) notify(records []ChangeRecord) {
	if len(records) == 0 || t.notifier == nil {
		return
	}
	t.notifier.NotifyNodeChanged(records)
}

func (t *Tree) warn(op string, id NodeID, err error) {
	if t.logger == nil {
		return
	}
	t.logger.Printf("warning: %s: node %d (%s): %v", op, id, t.label(id), err)
}

// label names a node for log output without tripping disposal checks
func (t *Tree) label(id NodeID) string {
	if !t.Contains(id) {
		return "?"
	}
	return t.nodes[id].name
}
