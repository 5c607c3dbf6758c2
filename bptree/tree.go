// Package bptree implements an ordered in-memory key→value map as a B+ tree
// with arena-backed nodes and linked leaves. It favors bulk ordered scans
// over a classical pointer-chasing tree: leaves form a singly linked list in
// key order, so a range scan walks that list directly instead of
// re-descending from the root for every item.
//
// The tree is single-owner: mutating it requires exclusive access, and any
// structural mutation (Insert, Remove, Clear) invalidates outstanding range
// iterators and pointers returned by GetMut. Concurrent read-only scans are
// fine since nothing here mutates during a read.
package bptree

import (
	"cmp"
	"fmt"
	"slices"

	"bptree/common"
)

// Tree is an ordered map from K to V backed by a B+ tree. Nodes live in two
// arenas (one per kind) and are addressed by NodeRef rather than by
// pointer; the tree itself holds only its branching capacity, the root
// ref, both arenas, and a running element count.
type Tree[K cmp.Ordered, V any] struct {
	capacity int
	root     NodeRef
	leaves   arena[leafNode[K, V]]
	branches arena[branchNode[K]]
	count    int
}

// New creates an empty Tree with the given branching capacity. Capacity
// must be at least 4: below that the overflow and underflow thresholds
// collide and the split/merge math degenerates.
func New[K cmp.Ordered, V any](capacity int) (*Tree[K, V], error) {
	if capacity < 4 {
		return nil, invalidCapacityError(capacity, 4)
	}

	t := &Tree[K, V]{capacity: capacity}
	rootID, err := t.leaves.allocate(*newLeafNode[K, V]())
	if err != nil {
		return nil, err
	}
	t.root = newLeafRef(rootID)
	return t, nil
}

func minOccupancy(capacity int) int {
	return (capacity + 1) / 2
}

// Len returns the number of live key/value pairs in the tree.
func (t *Tree[K, V]) Len() int { return t.count }

// IsEmpty reports whether the tree holds no entries.
func (t *Tree[K, V]) IsEmpty() bool { return t.count == 0 }

// insertSplit is the product a callee hands back to its parent when a leaf
// or branch it touched overflowed and had to split: the key that now
// separates the old node from the new one, and a ref to the new sibling.
type insertSplit[K any] struct {
	sep K
	ref NodeRef
}

// Insert adds or replaces key. If the key was already present, the previous
// value is returned alongside true; otherwise the zero value and false.
func (t *Tree[K, V]) Insert(key K, value V) (V, bool) {
	old, hadOld, split := t.insertAt(t.root, key, value)
	if split != nil {
		newRootID, err := t.branches.allocate(branchNode[K]{
			keys:     []K{split.sep},
			children: []NodeRef{t.root, split.ref},
		})
		if err != nil {
			// The id space is 2^32 wide; exhausting it is not something a
			// caller can meaningfully recover from mid-insert, so this
			// mirrors the other structural-bug panics below.
			panic(err)
		}
		t.root = newBranchRef(newRootID)
	}
	if !hadOld {
		t.count++
	}
	return old, hadOld
}

func (t *Tree[K, V]) insertAt(ref NodeRef, key K, value V) (oldValue V, hadOld bool, split *insertSplit[K]) {
	if ref.IsNull() {
		panic(invalidStateError("insert", "descended into a null node ref"))
	}
	if ref.IsLeaf() {
		leaf, err := t.leaves.get(ref.ID())
		if err != nil {
			panic(err)
		}

		outcome := leaf.insert(key, value, t.capacity)
		if outcome.needsSplit {
			right, sep := leaf.split(t.capacity)
			rightID, err := t.leaves.allocate(*right)
			if err != nil {
				panic(err)
			}
			leaf.next = rightID
			split = &insertSplit[K]{sep: sep, ref: newLeafRef(rightID)}
		}
		return outcome.oldValue, outcome.replaced, split
	}

	branch, err := t.branches.get(ref.ID())
	if err != nil {
		panic(err)
	}

	idx := branch.findChild(key)
	oldValue, hadOld, childSplit := t.insertAt(branch.children[idx], key, value)
	if childSplit != nil {
		overflowed := branch.insertChild(idx, childSplit.sep, childSplit.ref, t.capacity)
		if overflowed {
			right, median := branch.split(t.capacity)
			rightID, err := t.branches.allocate(*right)
			if err != nil {
				panic(err)
			}
			split = &insertSplit[K]{sep: median, ref: newBranchRef(rightID)}
		}
	}
	return oldValue, hadOld, split
}

// removeOutcome is what a callee in the remove recursion hands back to its
// parent: whether the key was found and its value, whether the subtree now
// underflows, and (if the subtree's own minimum key changed) that new key
// so an ancestor separator can be corrected.
type removeOutcome[K any, V any] struct {
	value         V
	found         bool
	underflow     bool
	newMinKey     K
	minKeyChanged bool
}

// Remove deletes key if present, returning its value and true; otherwise
// the zero value and false.
func (t *Tree[K, V]) Remove(key K) (V, bool) {
	res := t.removeAt(t.root, key)
	if !res.found {
		var zero V
		return zero, false
	}
	t.count--
	t.shrinkRootIfNeeded()
	return res.value, true
}

func (t *Tree[K, V]) removeAt(ref NodeRef, key K) removeOutcome[K, V] {
	if ref.IsNull() {
		panic(invalidStateError("remove", "descended into a null node ref"))
	}
	if ref.IsLeaf() {
		leaf, err := t.leaves.get(ref.ID())
		if err != nil {
			panic(err)
		}

		outcome := leaf.remove(key, t.capacity)
		if !outcome.found {
			return removeOutcome[K, V]{}
		}

		res := removeOutcome[K, V]{value: outcome.value, found: true, underflow: outcome.underflow}
		if len(leaf.keys) > 0 {
			res.newMinKey = leaf.keys[0]
			res.minKeyChanged = true
		}
		return res
	}

	branch, err := t.branches.get(ref.ID())
	if err != nil {
		panic(err)
	}

	idx := branch.findChild(key)
	childRes := t.removeAt(branch.children[idx], key)
	if !childRes.found {
		return removeOutcome[K, V]{}
	}

	res := removeOutcome[K, V]{value: childRes.value, found: true}

	if childRes.minKeyChanged {
		if idx > 0 {
			branch.keys[idx-1] = childRes.newMinKey
		} else {
			res.newMinKey = childRes.newMinKey
			res.minKeyChanged = true
		}
	}

	if childRes.underflow {
		t.rebalanceChild(branch, idx)
	}

	res.underflow = len(branch.keys) < minOccupancy(t.capacity)
	return res
}

// rebalanceChild restores minimum occupancy for the child at idx within
// parent, trying left-borrow, then right-borrow, then merge-left, then
// merge-right, in that order (see SPEC_FULL.md §4.5).
func (t *Tree[K, V]) rebalanceChild(parent *branchNode[K], idx int) {
	if parent.children[idx].IsLeaf() {
		t.rebalanceLeafChild(parent, idx)
	} else {
		t.rebalanceBranchChild(parent, idx)
	}
}

func (t *Tree[K, V]) rebalanceLeafChild(parent *branchNode[K], idx int) {
	minKeys := minOccupancy(t.capacity)
	haveLeft := idx > 0
	haveRight := idx < len(parent.children)-1

	deficient, err := t.leaves.get(parent.children[idx].ID())
	if err != nil {
		panic(err)
	}

	if haveLeft {
		left, err := t.leaves.get(parent.children[idx-1].ID())
		if err != nil {
			panic(err)
		}
		if len(left.keys) > minKeys {
			deficient.borrowFromLeft(left)
			parent.keys[idx-1] = deficient.keys[0]
			return
		}
	}

	if haveRight {
		right, err := t.leaves.get(parent.children[idx+1].ID())
		if err != nil {
			panic(err)
		}
		if len(right.keys) > minKeys {
			deficient.borrowFromRight(right)
			parent.keys[idx] = right.keys[0]
			return
		}
	}

	if haveLeft {
		left, err := t.leaves.get(parent.children[idx-1].ID())
		if err != nil {
			panic(err)
		}
		if len(left.keys)+len(deficient.keys) > t.capacity {
			panic(nodeError("leaf", parent.children[idx-1].ID(),
				fmt.Sprintf("merge-left would overflow capacity %d: left has %d keys, right has %d", t.capacity, len(left.keys), len(deficient.keys))))
		}
		left.mergeWithRight(deficient)
		if _, err := t.leaves.release(parent.children[idx].ID()); err != nil {
			panic(err)
		}
		parent.keys = slices.Delete(parent.keys, idx-1, idx)
		parent.children = slices.Delete(parent.children, idx, idx+1)
		return
	}

	common.Assert(haveRight, "leaf underflow with neither left nor right sibling")
	right, err := t.leaves.get(parent.children[idx+1].ID())
	if err != nil {
		panic(err)
	}
	if len(deficient.keys)+len(right.keys) > t.capacity {
		panic(nodeError("leaf", parent.children[idx].ID(),
			fmt.Sprintf("merge-right would overflow capacity %d: left has %d keys, right has %d", t.capacity, len(deficient.keys), len(right.keys))))
	}
	deficient.mergeWithRight(right)
	if _, err := t.leaves.release(parent.children[idx+1].ID()); err != nil {
		panic(err)
	}
	parent.keys = slices.Delete(parent.keys, idx, idx+1)
	parent.children = slices.Delete(parent.children, idx+1, idx+2)
}

func (t *Tree[K, V]) rebalanceBranchChild(parent *branchNode[K], idx int) {
	minKeys := minOccupancy(t.capacity)
	haveLeft := idx > 0
	haveRight := idx < len(parent.children)-1

	deficient, err := t.branches.get(parent.children[idx].ID())
	if err != nil {
		panic(err)
	}

	if haveLeft {
		left, err := t.branches.get(parent.children[idx-1].ID())
		if err != nil {
			panic(err)
		}
		if len(left.keys) > minKeys {
			promoted := deficient.borrowFromLeft(left, parent.keys[idx-1])
			parent.keys[idx-1] = promoted
			return
		}
	}

	if haveRight {
		right, err := t.branches.get(parent.children[idx+1].ID())
		if err != nil {
			panic(err)
		}
		if len(right.keys) > minKeys {
			promoted := deficient.borrowFromRight(right, parent.keys[idx])
			parent.keys[idx] = promoted
			return
		}
	}

	if haveLeft {
		left, err := t.branches.get(parent.children[idx-1].ID())
		if err != nil {
			panic(err)
		}
		sep := parent.keys[idx-1]
		if len(left.keys)+1+len(deficient.keys) > t.capacity {
			panic(nodeError("branch", parent.children[idx-1].ID(),
				fmt.Sprintf("merge-left would overflow capacity %d: left has %d keys, right has %d", t.capacity, len(left.keys), len(deficient.keys))))
		}
		left.mergeWithRight(deficient, sep)
		if _, err := t.branches.release(parent.children[idx].ID()); err != nil {
			panic(err)
		}
		parent.keys = slices.Delete(parent.keys, idx-1, idx)
		parent.children = slices.Delete(parent.children, idx, idx+1)
		return
	}

	common.Assert(haveRight, "branch underflow with neither left nor right sibling")
	right, err := t.branches.get(parent.children[idx+1].ID())
	if err != nil {
		panic(err)
	}
	sep := parent.keys[idx]
	if len(deficient.keys)+1+len(right.keys) > t.capacity {
		panic(nodeError("branch", parent.children[idx].ID(),
			fmt.Sprintf("merge-right would overflow capacity %d: left has %d keys, right has %d", t.capacity, len(deficient.keys), len(right.keys))))
	}
	deficient.mergeWithRight(right, sep)
	if _, err := t.branches.release(parent.children[idx+1].ID()); err != nil {
		panic(err)
	}
	parent.keys = slices.Delete(parent.keys, idx, idx+1)
	parent.children = slices.Delete(parent.children, idx+1, idx+2)
}

// shrinkRootIfNeeded collapses a root branch that lost its last separator
// down to its single remaining child, per invariant 7.
func (t *Tree[K, V]) shrinkRootIfNeeded() {
	if t.root.IsBranch() && !t.root.IsNull() {
		root, err := t.branches.get(t.root.ID())
		if err != nil {
			panic(err)
		}
		if len(root.keys) == 0 {
			common.Assert(len(root.children) == 1,
				"root branch with zero keys must have exactly one child, got %d", len(root.children))
			newRoot := root.children[0]
			if _, err := t.branches.release(t.root.ID()); err != nil {
				panic(err)
			}
			t.root = newRoot
		}
	}
}

// descendToLeaf returns the NodeRef of the leaf that would contain key.
func (t *Tree[K, V]) descendToLeaf(key K) NodeRef {
	ref := t.root
	for ref.IsBranch() {
		if ref.IsNull() {
			panic(invalidStateError("descend", "reached a null node ref while searching for a leaf"))
		}
		branch, err := t.branches.get(ref.ID())
		if err != nil {
			panic(err)
		}
		ref = branch.children[branch.findChild(key)]
	}
	return ref
}

func (t *Tree[K, V]) leftmostLeafRef() NodeRef {
	ref := t.root
	for ref.IsBranch() {
		if ref.IsNull() {
			panic(invalidStateError("descend", "reached a null node ref while searching for the leftmost leaf"))
		}
		branch, err := t.branches.get(ref.ID())
		if err != nil {
			panic(err)
		}
		ref = branch.children[0]
	}
	return ref
}

// Get returns the value for key, if present.
func (t *Tree[K, V]) Get(key K) (V, bool) {
	leaf, err := t.leaves.get(t.descendToLeaf(key).ID())
	if err != nil {
		panic(err)
	}
	return leaf.get(key)
}

// GetMut returns a pointer directly into the leaf's value slot for key, if
// present. The pointer is invalidated by the next structural mutation
// (Insert, Remove, or Clear) exactly like an iterator is.
func (t *Tree[K, V]) GetMut(key K) (*V, bool) {
	leaf, err := t.leaves.get(t.descendToLeaf(key).ID())
	if err != nil {
		panic(err)
	}
	idx, ok := leaf.find(key)
	if !ok {
		return nil, false
	}
	return &leaf.values[idx], true
}

// ContainsKey reports whether key is present.
func (t *Tree[K, V]) ContainsKey(key K) bool {
	_, ok := t.Get(key)
	return ok
}

// Clear empties the tree, freeing every arena slot and resetting the root
// to a fresh empty leaf.
func (t *Tree[K, V]) Clear() {
	t.leaves.reset()
	t.branches.reset()
	rootID, err := t.leaves.allocate(*newLeafNode[K, V]())
	if err != nil {
		panic(err)
	}
	t.root = newLeafRef(rootID)
	t.count = 0
}
