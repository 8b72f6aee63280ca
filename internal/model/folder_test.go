package model

import (
	"bytes"
	"io"
	"log"
	"slices"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects every batch handed to the notifier
type recorder struct {
	batches [][]ChangeRecord
}

func (r *recorder) NotifyNodeChanged(records []ChangeRecord) {
	r.batches = append(r.batches, append([]ChangeRecord(nil), records...))
}

func (r *recorder) last() []ChangeRecord {
	if len(r.batches) == 0 {
		return nil
	}
	return r.batches[len(r.batches)-1]
}

func newTestTree(t *testing.T) (*Tree, *recorder) {
	t.Helper()
	rec := &recorder{}
	tree := NewTree(WithNotifier(rec), WithLogger(log.New(io.Discard, "", 0)))
	return tree, rec
}

func names(tree *Tree, ids []NodeID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, tree.Name(id))
	}
	return out
}

func TestAddAppendsInOrder(t *testing.T) {
	tree, rec := newTestTree(t)
	f := tree.NewFolder("F")
	a := tree.NewShape("A", nil)
	b := tree.NewShape("B", nil)
	c := tree.NewShape("C", nil)

	res := tree.Add(f, a, b, c)
	require.NoError(t, res.Err())

	assert.Equal(t, []NodeID{a, b, c}, tree.ChildSlice(f))
	assert.Equal(t, 3, tree.Count(f))
	assert.Equal(t, a, tree.FirstChild(f))
	assert.Equal(t, c, tree.LastChild(f))
	assert.Equal(t, f, tree.Parent(b))
	assert.Equal(t, a, tree.PreviousSibling(b))
	assert.Equal(t, c, tree.NextSibling(b))

	require.Len(t, rec.batches, 1, spew.Sdump(rec.batches))
	assert.Equal(t, []ChangeRecord{
		{Action: ActionAdd, Node: a, NewParent: f, NewPrevious: NoNode},
		{Action: ActionAdd, Node: b, NewParent: f, NewPrevious: a},
		{Action: ActionAdd, Node: c, NewParent: f, NewPrevious: b},
	}, rec.last())
	require.NoError(t, tree.Check(f))
}

func TestAddRejectsCycles(t *testing.T) {
	var logBuf bytes.Buffer
	rec := &recorder{}
	tree := NewTree(WithNotifier(rec), WithLogger(log.New(&logBuf, "", 0)))

	root := tree.NewFolder("root")
	inner := tree.NewFolder("inner")
	leaf := tree.NewShape("leaf", nil)
	tree.Add(root, inner)
	rec.batches = nil

	res := tree.Add(inner, root, inner, leaf)

	require.Len(t, res, 3)
	assert.ErrorIs(t, res[0].Err, ErrCycle)
	assert.ErrorIs(t, res[1].Err, ErrCycle)
	assert.NoError(t, res[2].Err)
	assert.Equal(t, []NodeID{leaf}, res.Accepted())
	assert.Len(t, res.Rejected(), 2)
	assert.ErrorIs(t, res.Err(), ErrCycle)

	require.Len(t, rec.batches, 1)
	require.Len(t, rec.last(), 1)
	assert.Equal(t, leaf, rec.last()[0].Node)
	assert.Contains(t, logBuf.String(), "warning: add")
	require.NoError(t, tree.Check(root))
}

func TestAddAllRejectedSendsNothing(t *testing.T) {
	tree, rec := newTestTree(t)
	f := tree.NewFolder("F")

	res := tree.Add(f, f)

	assert.ErrorIs(t, res.Err(), ErrCycle)
	assert.Empty(t, rec.batches)
	assert.Equal(t, 0, tree.Count(f))
}

func TestAddToNonFolder(t *testing.T) {
	tree, rec := newTestTree(t)
	shape := tree.NewShape("S", nil)
	other := tree.NewShape("O", nil)

	res := tree.Add(shape, other)

	assert.ErrorIs(t, res.Err(), ErrNotFolder)
	assert.Empty(t, rec.batches)
	assert.Equal(t, NoNode, tree.Parent(other))
}

func TestAddReparentsAttachedNode(t *testing.T) {
	tree, rec := newTestTree(t)
	f := tree.NewFolder("F")
	g := tree.NewFolder("G")
	a := tree.NewShape("A", nil)
	b := tree.NewShape("B", nil)
	tree.Add(f, a, b)

	res := tree.Add(g, b)
	require.NoError(t, res.Err())

	assert.Equal(t, []NodeID{a}, tree.ChildSlice(f))
	assert.Equal(t, []NodeID{b}, tree.ChildSlice(g))
	assert.Equal(t, ChangeRecord{
		Action:      ActionAdd,
		Node:        b,
		OldParent:   f,
		OldPrevious: a,
		NewParent:   g,
	}, rec.last()[0])
	require.NoError(t, tree.Check(f))
	require.NoError(t, tree.Check(g))
}

func TestRemove(t *testing.T) {
	tree, rec := newTestTree(t)
	f := tree.NewFolder("F")
	a := tree.NewShape("A", nil)
	b := tree.NewShape("B", nil)
	c := tree.NewShape("C", nil)
	stranger := tree.NewShape("stranger", nil)
	tree.Add(f, a, b, c)

	res := tree.Remove(f, b, stranger)

	assert.NoError(t, res[0].Err)
	assert.ErrorIs(t, res[1].Err, ErrNotChild)
	assert.Equal(t, []NodeID{a, c}, tree.ChildSlice(f))
	assert.Equal(t, 2, tree.Count(f))
	assert.Equal(t, NoNode, tree.Parent(b))
	assert.Equal(t, NoNode, tree.PreviousSibling(b))
	assert.Equal(t, NoNode, tree.NextSibling(b))
	assert.True(t, tree.ParentVisible(b))
	assert.Equal(t, []ChangeRecord{
		{Action: ActionRemove, Node: b, OldParent: f, OldPrevious: a},
	}, rec.last())
	require.NoError(t, tree.Check(f))
}

func TestRemoveEnds(t *testing.T) {
	tree, _ := newTestTree(t)
	f := tree.NewFolder("F")
	a := tree.NewShape("A", nil)
	b := tree.NewShape("B", nil)
	c := tree.NewShape("C", nil)
	tree.Add(f, a, b, c)

	tree.Remove(f, a, c)
	assert.Equal(t, []NodeID{b}, tree.ChildSlice(f))
	assert.Equal(t, b, tree.FirstChild(f))
	assert.Equal(t, b, tree.LastChild(f))

	tree.Remove(f, b)
	assert.Equal(t, NoNode, tree.FirstChild(f))
	assert.Equal(t, NoNode, tree.LastChild(f))
	assert.Equal(t, 0, tree.Count(f))
	require.NoError(t, tree.Check(f))
}

func TestTransferRecordsTransfer(t *testing.T) {
	tree, rec := newTestTree(t)
	f := tree.NewFolder("F")
	a := tree.NewShape("A", nil)
	b := tree.NewShape("B", nil)
	tree.Add(f, a, b)

	res := tree.Transfer(f, a, b)
	require.NoError(t, res.Err())

	assert.Equal(t, 0, tree.Count(f))
	assert.Equal(t, []ChangeRecord{
		{Action: ActionTransfer, Node: a, OldParent: f, OldPrevious: NoNode},
		{Action: ActionTransfer, Node: b, OldParent: f, OldPrevious: NoNode},
	}, rec.last())
}

func TestInsertBeforeAndAfter(t *testing.T) {
	tree, rec := newTestTree(t)
	f := tree.NewFolder("F")
	a := tree.NewShape("A", nil)
	b := tree.NewShape("B", nil)
	c := tree.NewShape("C", nil)
	x := tree.NewShape("X", nil)
	y := tree.NewShape("Y", nil)
	head := tree.NewShape("head", nil)
	tail := tree.NewShape("tail", nil)
	tree.Add(f, a, b, c)

	require.NoError(t, tree.InsertBefore(f, b, x))
	assert.Equal(t, []string{"A", "X", "B", "C"}, names(tree, tree.ChildSlice(f)))
	assert.Equal(t, ChangeRecord{Action: ActionInsertBefore, Node: x, NewParent: f, NewPrevious: a}, rec.last()[0])

	require.NoError(t, tree.InsertAfter(f, c, y))
	assert.Equal(t, []string{"A", "X", "B", "C", "Y"}, names(tree, tree.ChildSlice(f)))
	assert.Equal(t, y, tree.LastChild(f))

	require.NoError(t, tree.InsertBefore(f, NoNode, head))
	require.NoError(t, tree.InsertAfter(f, NoNode, tail))
	assert.Equal(t, []string{"head", "A", "X", "B", "C", "Y", "tail"}, names(tree, tree.ChildSlice(f)))
	assert.Equal(t, 7, tree.Count(f))
	require.NoError(t, tree.Check(f))
}

func TestInsertIntoEmptyFolder(t *testing.T) {
	tree, _ := newTestTree(t)
	f := tree.NewFolder("F")
	a := tree.NewShape("A", nil)
	b := tree.NewShape("B", nil)

	require.NoError(t, tree.InsertAfter(f, NoNode, a))
	require.NoError(t, tree.InsertBefore(f, NoNode, b))

	assert.Equal(t, []NodeID{b, a}, tree.ChildSlice(f))
	require.NoError(t, tree.Check(f))
}

func TestInsertRepositionsSibling(t *testing.T) {
	tree, rec := newTestTree(t)
	f := tree.NewFolder("F")
	a := tree.NewShape("A", nil)
	b := tree.NewShape("B", nil)
	c := tree.NewShape("C", nil)
	tree.Add(f, a, b, c)

	require.NoError(t, tree.InsertBefore(f, a, c))
	assert.Equal(t, []NodeID{c, a, b}, tree.ChildSlice(f))
	assert.Equal(t, ChangeRecord{
		Action:      ActionInsertBefore,
		Node:        c,
		OldParent:   f,
		OldPrevious: b,
		NewParent:   f,
	}, rec.last()[0])

	// already in place right before the target
	require.NoError(t, tree.InsertBefore(f, a, c))
	assert.Equal(t, []NodeID{c, a, b}, tree.ChildSlice(f))
	require.NoError(t, tree.Check(f))
}

func TestInsertRejections(t *testing.T) {
	tree, rec := newTestTree(t)
	root := tree.NewFolder("root")
	f := tree.NewFolder("F")
	a := tree.NewShape("A", nil)
	stranger := tree.NewShape("stranger", nil)
	tree.Add(root, f)
	tree.Add(f, a)
	rec.batches = nil

	err := tree.InsertBefore(f, NoNode, root)
	assert.ErrorIs(t, err, ErrCycle)

	err = tree.InsertAfter(f, stranger, tree.NewShape("x", nil))
	assert.ErrorIs(t, err, ErrInvalidTarget)
	assert.ErrorIs(t, err, ErrNotChild)

	err = tree.InsertAfter(f, a, a)
	assert.ErrorIs(t, err, ErrSelf)

	assert.Empty(t, rec.batches)
	assert.Equal(t, []NodeID{a}, tree.ChildSlice(f))
	require.NoError(t, tree.Check(root))
}

func TestMove(t *testing.T) {
	tree, rec := newTestTree(t)
	f := tree.NewFolder("F")
	g := tree.NewFolder("G")
	a := tree.NewShape("A", nil)
	b := tree.NewShape("B", nil)
	c := tree.NewShape("C", nil)
	tree.Add(f, a, b, g)
	tree.Add(g, c)
	rec.batches = nil

	require.NoError(t, tree.Move(a, g, c))

	assert.Equal(t, []NodeID{b, g}, tree.ChildSlice(f))
	assert.Equal(t, []NodeID{c, a}, tree.ChildSlice(g))
	assert.Equal(t, g, tree.Parent(a))
	require.Len(t, rec.batches, 1)
	assert.Equal(t, []ChangeRecord{{
		Action:      ActionMove,
		Node:        a,
		OldParent:   f,
		OldPrevious: NoNode,
		NewParent:   g,
		NewPrevious: c,
	}}, rec.last())

	// no previous sibling puts the node at the head
	require.NoError(t, tree.Move(a, g, NoNode))
	assert.Equal(t, []NodeID{a, c}, tree.ChildSlice(g))

	// while InsertAfter with no target appends
	require.NoError(t, tree.InsertAfter(g, NoNode, a))
	assert.Equal(t, []NodeID{c, a}, tree.ChildSlice(g))

	// within the same folder
	require.NoError(t, tree.Move(b, f, g))
	assert.Equal(t, []NodeID{g, b}, tree.ChildSlice(f))
	require.NoError(t, tree.Check(f))
}

func TestMoveRejections(t *testing.T) {
	tree, rec := newTestTree(t)
	root := tree.NewFolder("root")
	f := tree.NewFolder("F")
	g := tree.NewFolder("G")
	a := tree.NewShape("A", nil)
	detached := tree.NewShape("detached", nil)
	tree.Add(root, f)
	tree.Add(f, g)
	tree.Add(g, a)
	rec.batches = nil

	assert.ErrorIs(t, tree.Move(f, g, NoNode), ErrCycle)
	assert.ErrorIs(t, tree.Move(f, f, NoNode), ErrCycle)
	assert.ErrorIs(t, tree.Move(f, a, NoNode), ErrNotFolder)
	assert.ErrorIs(t, tree.Move(detached, f, NoNode), ErrNotAttached)
	assert.ErrorIs(t, tree.Move(a, f, a), ErrSelf)
	assert.ErrorIs(t, tree.Move(a, root, g), ErrInvalidTarget)
	assert.ErrorIs(t, tree.Move(NodeID(999), f, NoNode), ErrUnknownNode)

	assert.Empty(t, rec.batches)
	require.NoError(t, tree.Check(root))
}

func TestChildrenIsRestartable(t *testing.T) {
	tree, _ := newTestTree(t)
	f := tree.NewFolder("F")
	a := tree.NewShape("A", nil)
	b := tree.NewShape("B", nil)
	tree.Add(f, a, b)

	seq := tree.Children(f)
	var first, second []NodeID
	for id := range seq {
		first = append(first, id)
	}
	for id := range seq {
		second = append(second, id)
	}
	assert.Equal(t, first, second)

	var stopped []NodeID
	for id := range seq {
		stopped = append(stopped, id)
		break
	}
	assert.Equal(t, []NodeID{a}, stopped)
}

func TestChildrenSeesLaterEdits(t *testing.T) {
	tree, _ := newTestTree(t)
	f := tree.NewFolder("F")
	a := tree.NewShape("A", nil)
	b := tree.NewShape("B", nil)

	seq := tree.Children(f)
	assert.Empty(t, slices.Collect(seq))

	tree.Add(f, a, b)
	assert.Equal(t, []NodeID{a, b}, slices.Collect(seq))

	tree.Remove(f, a)
	assert.Equal(t, []NodeID{b}, slices.Collect(seq))

	tree.InsertBefore(f, b, a)
	assert.Equal(t, []NodeID{a, b}, slices.Collect(seq))
}

func TestGroupsHoldChildren(t *testing.T) {
	tree, _ := newTestTree(t)
	g := tree.NewGroup("G")
	a := tree.NewShape("A", nil)

	require.NoError(t, tree.Add(g, a).Err())
	assert.True(t, tree.IsFolder(g))
	assert.False(t, tree.IsFolder(a))
	assert.Equal(t, KindGroup, tree.Kind(g))
	assert.Equal(t, 1, tree.Count(g))
}

func TestWalkAndSearchHelpers(t *testing.T) {
	tree, _ := newTestTree(t)
	root := tree.NewFolder("root")
	f := tree.NewFolder("F")
	a := tree.NewShape("A", "payload")
	b := tree.NewShape("B", nil)
	tree.Add(root, f, b)
	tree.Add(f, a)

	var order []string
	tree.Walk(root, func(id NodeID, depth int) bool {
		order = append(order, tree.Name(id))
		return true
	})
	assert.Equal(t, []string{"root", "F", "A", "B"}, order)

	var desc []NodeID
	for id := range tree.Descendants(root) {
		desc = append(desc, id)
	}
	assert.Equal(t, []NodeID{f, a, b}, desc)

	found, ok := tree.FindByName(root, "A")
	require.True(t, ok)
	assert.Equal(t, a, found)
	assert.Equal(t, "payload", tree.Payload(a))

	byUUID, ok := tree.FindByUUID(tree.UUID(b))
	require.True(t, ok)
	assert.Equal(t, b, byUUID)

	assert.Equal(t, 2, tree.Depth(a))
	assert.Equal(t, []NodeID{f, root}, tree.Ancestors(a))
	assert.True(t, tree.IsAncestorOf(root, a))
	assert.False(t, tree.IsAncestorOf(f, b))
	assert.False(t, tree.IsAncestorOf(a, a))
}
