package bptree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessageIncludesKind(t *testing.T) {
	err := invalidCapacityError(2, 4)
	assert.Contains(t, err.Error(), "InvalidCapacity")
	assert.Contains(t, err.Error(), "2")
	assert.Contains(t, err.Error(), "4")
}

func TestIsKindMatches(t *testing.T) {
	err := arenaError("get", "id is not live")
	assert.True(t, IsKind(err, ArenaError))
	assert.False(t, IsKind(err, NodeError))
}

func TestErrorsIsWorksByKind(t *testing.T) {
	var err error = corruptedTreeError("chain", "broken")
	assert.True(t, errors.Is(err, &Error{Kind: CorruptedTree}))
	assert.False(t, errors.Is(err, &Error{Kind: InvalidState}))
}
