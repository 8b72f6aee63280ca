// Package model contains the document node tree.
//
// The tree is an arena: a Tree owns every node slot and all relationships
// (parent, siblings, first/last child) are NodeID indices into that arena.
// Only folders own child topology. The tree is not safe for concurrent
// writers; callers serialize mutations.
package model

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeID is the arena index of a node. NoNode means "none".
type NodeID uint32

// NoNode is the zero NodeID and never refers to a node.
const NoNode NodeID = 0

// Kind tells what a node represents in the document
type Kind int

const (
	KindShape Kind = iota
	KindGroup
	KindFolder
)

func (k Kind) String() string {
	switch k {
	case KindShape:
		return "shape"
	case KindGroup:
		return "group"
	case KindFolder:
		return "folder"
	default:
		return "unknown"
	}
}

// ParseKind converts the String() form back into a Kind
func ParseKind(s string) (Kind, error) {
	switch s {
	case "shape":
		return KindShape, nil
	case "group":
		return KindGroup, nil
	case "folder":
		return KindFolder, nil
	default:
		return 0, fmt.Errorf("unknown node kind %q", s)
	}
}

// node is one arena slot
type node struct {
	uuid    uuid.UUID
	name    string
	kind    Kind
	payload any

	parent   NodeID
	previous NodeID
	next     NodeID

	// only used when kind == KindFolder
	first NodeID
	last  NodeID
	count int

	visible       bool
	parentVisible bool
	disposed      bool
}

// isFolder reports whether the node owns a child chain; groups do too
func (n *node) isFolder() bool {
	return n.kind == KindFolder || n.kind == KindGroup
}

// attached reports whether the node currently sits in a sibling chain
func (n *node) attached() bool {
	return n.parent != NoNode
}

// Name returns the display label of a node
func (t *Tree) Name(id NodeID) string {
	return t.slot(id).name
}

// SetName changes the display label of a node
func (t *Tree) SetName(id NodeID, name string) {
	t.live(id, "rename").name = name
}

// UUID returns the stable external identifier of a node
func (t *Tree) UUID(id NodeID) uuid.UUID {
	return t.slot(id).uuid
}

// Kind returns the kind of a node
func (t *Tree) Kind(id NodeID) Kind {
	return t.live(id, "kind").kind
}

// IsFolder reports whether the node can hold children
func (t *Tree) IsFolder(id NodeID) bool {
	return t.live(id, "is folder").isFolder()
}

// Payload returns the host value attached at creation
func (t *Tree) Payload(id NodeID) any {
	return t.live(id, "payload").payload
}

// Parent returns the folder holding id, or NoNode when detached
func (t *Tree) Parent(id NodeID) NodeID {
	return t.live(id, "parent").parent
}

// PreviousSibling returns the node before id in its parent's chain
func (t *Tree) PreviousSibling(id NodeID) NodeID {
	return t.live(id, "previous sibling").previous
}

// NextSibling returns the node after id in its parent's chain
func (t *Tree) NextSibling(id NodeID) NodeID {
	return t.live(id, "next sibling").next
}

// Visible returns the node's own visibility toggle
func (t *Tree) Visible(id NodeID) bool {
	return t.live(id, "visible").visible
}

// ParentVisible returns the visibility inherited from the ancestors
func (t *Tree) ParentVisible(id NodeID) bool {
	return t.live(id, "parent visible").parentVisible
}

// EffectiveVisible is true when the node and all its ancestors are visible
func (t *Tree) EffectiveVisible(id NodeID) bool {
	n := t.live(id, "effective visible")
	return n.visible && n.parentVisible
}

// IsDisposed reports whether the node has been disposed
func (t *Tree) IsDisposed(id NodeID) bool {
	return t.slot(id).disposed
}

// Contains reports whether id refers to a slot of this tree
func (t *Tree) Contains(id NodeID) bool {
	return id != NoNode && int(id) < len(t.nodes)
}
