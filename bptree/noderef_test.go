package bptree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeRefLeaf(t *testing.T) {
	ref := newLeafRef(7)
	assert.True(t, ref.IsLeaf())
	assert.False(t, ref.IsBranch())
	assert.Equal(t, uint32(7), ref.ID())
}

func TestNodeRefBranch(t *testing.T) {
	ref := newBranchRef(42)
	assert.False(t, ref.IsLeaf())
	assert.True(t, ref.IsBranch())
	assert.Equal(t, uint32(42), ref.ID())
}

func TestNodeRefNull(t *testing.T) {
	ref := nullRef()
	assert.True(t, ref.IsNull())
	assert.True(t, ref.IsBranch())
}

func TestNodeRefDistinctFromBranchWithSameID(t *testing.T) {
	leaf := newLeafRef(3)
	branch := newBranchRef(3)
	assert.NotEqual(t, leaf, branch)
	assert.Equal(t, leaf.ID(), branch.ID())
}
