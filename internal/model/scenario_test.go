package model

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shape captures every link of every slot so two states can be compared
func shape(tree *Tree) []node {
	out := make([]node, len(tree.nodes))
	copy(out, tree.nodes)
	return out
}

func TestDocumentScenario(t *testing.T) {
	tree, rec := newTestTree(t)
	root := tree.NewFolder("root")
	f := tree.NewFolder("F")
	g := tree.NewFolder("G")
	a := tree.NewShape("A", nil)
	b := tree.NewShape("B", nil)
	c := tree.NewShape("C", nil)
	x := tree.NewShape("X", nil)
	tree.Add(root, f)

	// 1. add
	require.NoError(t, tree.Add(f, a, b, c).Err())
	assert.Equal(t, []NodeID{a, b, c}, tree.ChildSlice(f))
	assert.Equal(t, 3, tree.Count(f))

	// 2. insert before
	require.NoError(t, tree.InsertBefore(f, b, x))
	assert.Equal(t, []NodeID{a, x, b, c}, tree.ChildSlice(f))

	// 3. move into a sibling folder
	tree.Add(f, g)
	rec.batches = nil
	require.NoError(t, tree.Move(a, g, NoNode))
	assert.Equal(t, []NodeID{x, b, c, g}, tree.ChildSlice(f))
	assert.Equal(t, []NodeID{a}, tree.ChildSlice(g))
	require.Len(t, rec.batches, 1)
	require.Len(t, rec.last(), 1)
	assert.Equal(t, ActionMove, rec.last()[0].Action)
	assert.Equal(t, f, rec.last()[0].OldParent)
	assert.Equal(t, g, rec.last()[0].NewParent)

	// 4. moving F below its own descendant is rejected and changes nothing
	before := shape(tree)
	rec.batches = nil
	assert.ErrorIs(t, tree.Move(f, g, a), ErrCycle)
	assert.Error(t, tree.Move(f, a, NoNode))
	assert.Equal(t, before, shape(tree))
	assert.Empty(t, rec.batches)

	// 5. remove
	require.NoError(t, tree.Remove(f, b).Err())
	assert.Equal(t, []NodeID{x, c, g}, tree.ChildSlice(f))
	assert.Equal(t, NoNode, tree.Parent(b))

	// 6. dispose
	tree.Dispose(f)
	for _, id := range []NodeID{f, g, a, c, x} {
		assert.True(t, tree.IsDisposed(id))
	}
	assert.False(t, tree.IsDisposed(b))
	assert.Equal(t, 0, tree.Count(root))
	require.NoError(t, tree.Check(root))
}

// TestRandomOperationsKeepInvariants drives the tree with a seeded stream of
// structural edits and checks the invariants after every step.
func TestRandomOperationsKeepInvariants(t *testing.T) {
	tree, rec := newTestTree(t)
	rng := rand.New(rand.NewPCG(7, 42))

	root := tree.NewFolder("root")
	ids := []NodeID{root}
	newNode := func(i int) NodeID {
		switch i % 3 {
		case 0:
			return tree.NewFolder("folder")
		case 1:
			return tree.NewGroup("group")
		default:
			return tree.NewShape("shape", nil)
		}
	}
	for i := 0; i < 30; i++ {
		ids = append(ids, newNode(i))
	}
	pick := func() NodeID {
		return ids[rng.IntN(len(ids))]
	}

	for step := 0; step < 2000; step++ {
		rec.batches = nil
		a, b, c := pick(), pick(), pick()

		switch rng.IntN(8) {
		case 0:
			res := tree.Add(a, b, c)
			assert.Len(t, res, 2)
			assertRecordsMatch(t, rec, len(res.Accepted()))
		case 1:
			res := tree.Remove(a, b)
			assertRecordsMatch(t, rec, len(res.Accepted()))
		case 2:
			res := tree.Transfer(a, b, c)
			assertRecordsMatch(t, rec, len(res.Accepted()))
		case 3:
			err := tree.InsertBefore(a, pickTarget(tree, rng, a), b)
			assertRecordsMatch(t, rec, boolToInt(err == nil))
		case 4:
			err := tree.InsertAfter(a, pickTarget(tree, rng, a), b)
			assertRecordsMatch(t, rec, boolToInt(err == nil))
		case 5:
			err := tree.Move(b, a, pickTarget(tree, rng, a))
			if err == nil {
				assert.Equal(t, a, tree.Parent(b))
			}
			assertRecordsMatch(t, rec, boolToInt(err == nil))
		case 6:
			tree.SetVisible(a, !tree.Visible(a))
		case 7:
			if a == root || tree.IsAncestorOf(a, root) {
				break
			}
			attached := tree.Parent(a) != NoNode
			tree.Dispose(a)
			assertRecordsMatch(t, rec, boolToInt(attached))

			// forget everything that went down with a and top the pool up
			ids = slices.DeleteFunc(ids, tree.IsDisposed)
			for len(ids) < 31 {
				ids = append(ids, newNode(rng.IntN(3)))
			}
		}

		for _, id := range ids {
			if tree.Parent(id) == NoNode {
				require.NoError(t, tree.Check(id), "step %d", step)
			}
			assert.False(t, tree.IsFolder(id) && tree.IsAncestorOf(id, id), "step %d: node %d contains itself", step, id)
		}
	}
}

func pickTarget(tree *Tree, rng *rand.Rand, folder NodeID) NodeID {
	if !tree.IsFolder(folder) || tree.Count(folder) == 0 || rng.IntN(4) == 0 {
		return NoNode
	}
	children := tree.ChildSlice(folder)
	return children[rng.IntN(len(children))]
}

func assertRecordsMatch(t *testing.T, rec *recorder, accepted int) {
	t.Helper()
	if accepted == 0 {
		assert.Empty(t, rec.batches)
		return
	}
	require.Len(t, rec.batches, 1)
	assert.Len(t, rec.last(), accepted)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
