package bptree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckInvariantsOnHealthyTree(t *testing.T) {
	tr, _ := New[int, int](4)
	for i := 0; i < 100; i++ {
		tr.Insert(i, i)
	}
	assert.NoError(t, tr.CheckInvariants())
}

func TestCheckInvariantsOnEmptyTree(t *testing.T) {
	tr, _ := New[int, int](4)
	assert.NoError(t, tr.CheckInvariants())
}

func TestCheckInvariantsDetectsOutOfOrderLeafKeys(t *testing.T) {
	tr, _ := New[int, int](4)
	tr.Insert(1, 1)
	tr.Insert(2, 2)

	leaf, err := tr.leaves.get(tr.root.ID())
	assert.NoError(t, err)
	leaf.keys[0], leaf.keys[1] = leaf.keys[1], leaf.keys[0]

	err = tr.CheckInvariants()
	assert.Error(t, err)
	assert.True(t, IsKind(err, CorruptedTree))
}

func TestCheckInvariantsDetectsBrokenSeparator(t *testing.T) {
	tr, _ := New[int, int](4)
	for i := 0; i < 50; i++ {
		tr.Insert(i, i)
	}
	assert.NoError(t, tr.CheckInvariants())

	root, err := tr.branches.get(tr.root.ID())
	assert.NoError(t, err)
	root.keys[0] = root.keys[0] + 1000

	err = tr.CheckInvariants()
	assert.Error(t, err)
	assert.True(t, IsKind(err, CorruptedTree))
}

func TestCheckInvariantsDetectsBrokenNextChain(t *testing.T) {
	tr, _ := New[int, int](4)
	for i := 0; i < 50; i++ {
		tr.Insert(i, i)
	}
	assert.NoError(t, tr.CheckInvariants())

	leftmost, err := tr.leaves.get(tr.leftmostLeafRef().ID())
	assert.NoError(t, err)
	leftmost.next = nullNodeID

	err = tr.CheckInvariants()
	assert.Error(t, err)
	assert.True(t, IsKind(err, CorruptedTree))
}
