// Package diff captures the structure of a node tree and reports what changed
// between two captures: nodes added, deleted, renamed, moved or re-shown.
package diff

import (
	"github.com/pstuifzand/doctree/internal/model"
)

// Capture records root and every node below it. Nodes are keyed by UUID so
// a capture taken before an edit can be compared with one taken after.
func Capture(t *model.Tree, root model.NodeID) Snapshot {
	snap := make(Snapshot)
	position := make(map[model.NodeID]int)

	t.Walk(root, func(id model.NodeID, depth int) bool {
		data := &NodeData{
			ID:      t.UUID(id).String(),
			Name:    t.Name(id),
			Kind:    t.Kind(id).String(),
			Visible: t.Visible(id),
		}
		if id != root {
			parent := t.Parent(id)
			data.ParentID = t.UUID(parent).String()
			data.ParentName = t.Name(parent)
			data.Position = position[parent]
			position[parent]++
		}
		snap[data.ID] = data
		return true
	})
	return snap
}

// Compare returns the changes that turn snapshot a into snapshot b
func Compare(a, b Snapshot) *DiffResult {
	result := &DiffResult{
		NewNodes:      make(map[string]*NodeData),
		DeletedNodes:  make(map[string]*NodeData),
		ModifiedNodes: make(map[string]*NodeChange),
	}

	for id, after := range b {
		before, ok := a[id]
		if !ok {
			result.NewNodes[id] = after
			continue
		}
		if change := compareNodes(before, after); change != nil {
			result.ModifiedNodes[id] = change
		}
	}
	for id, before := range a {
		if _, ok := b[id]; !ok {
			result.DeletedNodes[id] = before
		}
	}
	return result
}

// compareNodes returns nil when nothing changed
func compareNodes(old, new *NodeData) *NodeChange {
	change := &NodeChange{
		Node:              new,
		OldNode:           old,
		NameChanged:       old.Name != new.Name,
		StructureChanged:  old.ParentID != new.ParentID || old.Position != new.Position,
		VisibilityChanged: old.Visible != new.Visible,
	}
	if !change.NameChanged && !change.StructureChanged && !change.VisibilityChanged {
		return nil
	}
	return change
}
