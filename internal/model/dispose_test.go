package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDeep(tree *Tree, parent NodeID, depth int) []NodeID {
	if depth == 0 {
		return nil
	}
	folder := tree.NewFolder("level")
	shape := tree.NewShape("shape", nil)
	tree.Add(parent, folder, shape)
	ids := []NodeID{folder, shape}
	return append(ids, buildDeep(tree, folder, depth-1)...)
}

func TestDisposeCascade(t *testing.T) {
	tree, rec := newTestTree(t)
	f := tree.NewFolder("F")
	all := buildDeep(tree, f, 5)
	require.Len(t, all, 10)
	assert.Equal(t, 11, tree.Len())
	rec.batches = nil

	tree.Dispose(f)

	assert.True(t, tree.IsDisposed(f))
	for _, id := range all {
		assert.True(t, tree.IsDisposed(id), "node %d", id)
		assert.Equal(t, NoNode, tree.nodes[id].parent)
		assert.Equal(t, NoNode, tree.nodes[id].previous)
		assert.Equal(t, NoNode, tree.nodes[id].next)
	}
	assert.Equal(t, 0, tree.Len())
	// F was detached, so nothing structural to report
	assert.Empty(t, rec.batches)
}

func TestDisposeAttachedDetachesFirst(t *testing.T) {
	tree, rec := newTestTree(t)
	root := tree.NewFolder("root")
	a := tree.NewShape("A", nil)
	f := tree.NewFolder("F")
	c := tree.NewShape("C", nil)
	tree.Add(root, a, f, c)
	inner := buildDeep(tree, f, 2)
	rec.batches = nil

	tree.Dispose(f)

	assert.Equal(t, []NodeID{a, c}, tree.ChildSlice(root))
	assert.Equal(t, 2, tree.Count(root))
	require.Len(t, rec.batches, 1)
	assert.Equal(t, ChangeRecord{Action: ActionRemove, Node: f, OldParent: root, OldPrevious: a}, rec.last()[0])
	for _, id := range inner {
		assert.True(t, tree.IsDisposed(id))
	}
	require.NoError(t, tree.Check(root))
}

func TestUseAfterDisposePanics(t *testing.T) {
	tree, _ := newTestTree(t)
	f := tree.NewFolder("F")
	a := tree.NewShape("A", nil)
	tree.Dispose(a)

	assert.PanicsWithError(t, "place: node 2: node is disposed", func() {
		tree.Add(f, a)
	})
	assert.Panics(t, func() { tree.SetVisible(a, false) })
	assert.Panics(t, func() { tree.Dispose(a) })
	assert.Panics(t, func() { tree.Parent(a) })

	tree.Dispose(f)
	assert.Panics(t, func() { tree.Add(f, tree.NewShape("B", nil)) })
	assert.Panics(t, func() { tree.Children(f) })

	// identity stays readable on tombstones
	assert.Equal(t, "A", tree.Name(a))
	assert.True(t, tree.IsDisposed(a))
}
