package model

import "fmt"

// Add appends items to the end of folder's chain, in argument order.
// Items already attached elsewhere are unlinked from their old parent first.
// Items that are the folder itself or one of its ancestors are rejected.
func (t *Tree) Add(folder NodeID, items ...NodeID) Result {
	result := make(Result, 0, len(items))
	var records []ChangeRecord

	for _, id := range items {
		if err := t.checkPlacement(folder, id); err != nil {
			t.warn("add", id, err)
			result = append(result, Outcome{Node: id, Err: err})
			continue
		}

		record := ChangeRecord{Action: ActionAdd, Node: id}
		record.OldParent, record.OldPrevious = t.release(id)
		prev := t.nodes[folder].last
		t.attach(folder, prev, id)
		record.NewParent, record.NewPrevious = folder, prev

		records = append(records, record)
		result = append(result, Outcome{Node: id})
	}

	t.notify(records)
	return result
}

// Remove detaches direct children of folder. The removed nodes keep their
// own subtrees and may be attached again later.
func (t *Tree) Remove(folder NodeID, items ...NodeID) Result {
	return t.unlinkItems(ActionRemove, folder, items)
}

// Transfer detaches direct children of folder like Remove, but the records
// say the caller is about to re-parent them somewhere else.
func (t *Tree) Transfer(folder NodeID, items ...NodeID) Result {
	return t.unlinkItems(ActionTransfer, folder, items)
}

func (t *Tree) unlinkItems(action Action, folder NodeID, items []NodeID) Result {
	op := action.String()
	result := make(Result, 0, len(items))
	var records []ChangeRecord

	folderErr := t.checkFolder(folder, op)
	for _, id := range items {
		err := folderErr
		if err == nil {
			err = t.checkChild(folder, id, op)
		}
		if err != nil {
			t.warn(op, id, err)
			result = append(result, Outcome{Node: id, Err: err})
			continue
		}

		n := &t.nodes[id]
		record := ChangeRecord{
			Action:      action,
			Node:        id,
			OldParent:   n.parent,
			OldPrevious: n.previous,
		}
		t.detach(id)

		records = append(records, record)
		result = append(result, Outcome{Node: id})
	}

	t.notify(records)
	return result
}

// InsertBefore places node immediately before target in folder's chain.
// A NoNode target makes node the first child.
func (t *Tree) InsertBefore(folder, target, id NodeID) error {
	return t.insert(ActionInsertBefore, folder, target, id)
}

// InsertAfter places node immediately after target in folder's chain.
// A NoNode target makes node the last child.
func (t *Tree) InsertAfter(folder, target, id NodeID) error {
	return t.insert(ActionInsertAfter, folder, target, id)
}

func (t *Tree) insert(action Action, folder, target, id NodeID) error {
	op := action.String()
	err := t.checkPlacement(folder, id)
	if err == nil && target != NoNode {
		err = t.checkTarget(folder, target, id)
	}
	if err != nil {
		t.warn(op, id, err)
		return err
	}

	record := ChangeRecord{Action: action, Node: id}
	record.OldParent, record.OldPrevious = t.release(id)

	// the target's neighbours are read after release, which may have
	// unlinked id from right next to it
	var prev NodeID
	switch {
	case action == ActionInsertBefore && target == NoNode:
		prev = NoNode
	case action == ActionInsertBefore:
		prev = t.nodes[target].previous
	case target == NoNode:
		prev = t.nodes[folder].last
	default:
		prev = target
	}
	t.attach(folder, prev, id)
	record.NewParent, record.NewPrevious = folder, prev

	t.notify([]ChangeRecord{record})
	return nil
}

// Move relinks an attached child into newParent right after previous, or at
// the head of the chain when previous is NoNode. This differs from
// InsertAfter, where NoNode appends at the tail. The unlink and relink happen
// in one step and produce a single Move record.
func (t *Tree) Move(child, newParent, previous NodeID) error {
	const op = "move"
	if err := t.checkMove(child, newParent, previous); err != nil {
		t.warn(op, child, err)
		return err
	}

	n := &t.nodes[child]
	record := ChangeRecord{
		Action:      ActionMove,
		Node:        child,
		OldParent:   n.parent,
		OldPrevious: n.previous,
		NewParent:   newParent,
		NewPrevious: previous,
	}
	t.unlink(child)
	t.attach(newParent, previous, child)

	t.notify([]ChangeRecord{record})
	return nil
}

func (t *Tree) checkMove(child, newParent, previous NodeID) error {
	if !t.Contains(child) {
		return ErrUnknownNode
	}
	if !t.live(child, "move").attached() {
		return ErrNotAttached
	}
	if err := t.checkFolder(newParent, "move"); err != nil {
		return err
	}
	if err := t.checkCycle(newParent, child); err != nil {
		return err
	}
	if previous != NoNode {
		return t.checkTarget(newParent, previous, child)
	}
	return nil
}

// checkFolder validates a container argument
func (t *Tree) checkFolder(folder NodeID, op string) error {
	if !t.Contains(folder) {
		return fmt.Errorf("folder %d: %w", folder, ErrUnknownNode)
	}
	if !t.live(folder, op).isFolder() {
		return fmt.Errorf("%q: %w", t.nodes[folder].name, ErrNotFolder)
	}
	return nil
}

// checkChild validates that id is a direct child of folder
func (t *Tree) checkChild(folder, id NodeID, op string) error {
	if !t.Contains(id) {
		return ErrUnknownNode
	}
	if t.live(id, op).parent != folder {
		return ErrNotChild
	}
	return nil
}

// checkTarget validates a position target for placing id
func (t *Tree) checkTarget(folder, target, id NodeID) error {
	if target == id {
		return fmt.Errorf("target: %w", ErrSelf)
	}
	if err := t.checkChild(folder, target, "target"); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	return nil
}

// checkPlacement validates putting id somewhere inside folder
func (t *Tree) checkPlacement(folder, id NodeID) error {
	if err := t.checkFolder(folder, "place"); err != nil {
		return err
	}
	if !t.Contains(id) {
		return ErrUnknownNode
	}
	t.live(id, "place")
	return t.checkCycle(folder, id)
}

// release unlinks id from its current parent, if any, and reports where it was
func (t *Tree) release(id NodeID) (parent, previous NodeID) {
	n := &t.nodes[id]
	if !n.attached() {
		return NoNode, NoNode
	}
	parent, previous = n.parent, n.previous
	t.unlink(id)
	return parent, previous
}

// attach links id into folder after prev and refreshes inherited visibility
func (t *Tree) attach(folder, prev, id NodeID) {
	t.link(folder, prev, id)
	f := &t.nodes[folder]
	t.nodes[id].parentVisible = f.visible && f.parentVisible
	t.propagateVisibility(id)
}

// detach unlinks id and resets it to the detached visibility state
func (t *Tree) detach(id NodeID) {
	t.unlink(id)
	t.nodes[id].parentVisible = true
	t.propagateVisibility(id)
}

// link splices id into folder's chain right after prev, or at the head
// when prev is NoNode
func (t *Tree) link(folder, prev, id NodeID) {
	f := &t.nodes[folder]
	n := &t.nodes[id]

	n.parent = folder
	n.previous = prev
	if prev == NoNode {
		n.next = f.first
		f.first = id
	} else {
		n.next = t.nodes[prev].next
		t.nodes[prev].next = id
	}
	if n.next == NoNode {
		f.last = id
	} else {
		t.nodes[n.next].previous = id
	}
	f.count++
}

// unlink takes id out of its parent's chain and clears its sibling links
func (t *Tree) unlink(id NodeID) {
	n := &t.nodes[id]
	f := &t.nodes[n.parent]

	if n.previous == NoNode {
		f.first = n.next
	} else {
		t.nodes[n.previous].next = n.next
	}
	if n.next == NoNode {
		f.last = n.previous
	} else {
		t.nodes[n.next].previous = n.previous
	}
	f.count--

	n.parent, n.previous, n.next = NoNode, NoNode, NoNode
}
