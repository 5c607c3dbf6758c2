package bptree

import (
	"cmp"
	"fmt"
)

// subtreeBounds summarizes what checkSubtree learned about one subtree: its
// minimum and maximum key, if it holds any.
type subtreeBounds[K any] struct {
	hasKeys bool
	min     K
	max     K
}

// CheckInvariants walks the whole tree once and reports the first
// violation found, or nil if every invariant in SPEC_FULL.md §3 holds:
// strictly increasing keys, separator/subtree-minimum agreement, minimum
// occupancy on every non-root node, uniform leaf depth, and a next chain
// that visits every leaf exactly once in ascending order before
// terminating at null.
func (t *Tree[K, V]) CheckInvariants() error {
	visited := make(map[uint32]bool)
	leafDepths := make(map[uint32]int)

	if _, err := t.checkSubtree(t.root, 0, true, visited, leafDepths); err != nil {
		return err
	}

	commonDepth := -1
	for id, depth := range leafDepths {
		if commonDepth == -1 {
			commonDepth = depth
			continue
		}
		if depth != commonDepth {
			return corruptedTreeError("depth", fmt.Sprintf("leaf %d at depth %d, expected %d", id, depth, commonDepth))
		}
	}

	return t.checkNextChain(visited)
}

func (t *Tree[K, V]) checkSubtree(
	ref NodeRef, depth int, isRoot bool, visited map[uint32]bool, leafDepths map[uint32]int,
) (subtreeBounds[K], error) {
	if ref.IsLeaf() {
		leaf, err := t.leaves.get(ref.ID())
		if err != nil {
			return subtreeBounds[K]{}, corruptedTreeError("noderef", fmt.Sprintf("dangling leaf ref %d", ref.ID()))
		}
		if !isRoot && len(leaf.keys) < minOccupancy(t.capacity) {
			return subtreeBounds[K]{}, corruptedTreeError("occupancy",
				fmt.Sprintf("leaf %d has %d keys, below minimum %d", ref.ID(), len(leaf.keys), minOccupancy(t.capacity)))
		}
		for i := 1; i < len(leaf.keys); i++ {
			if cmp.Compare(leaf.keys[i-1], leaf.keys[i]) >= 0 {
				return subtreeBounds[K]{}, corruptedTreeError("ordering",
					fmt.Sprintf("leaf %d keys not strictly increasing at index %d", ref.ID(), i))
			}
		}

		visited[ref.ID()] = true
		leafDepths[ref.ID()] = depth

		if len(leaf.keys) == 0 {
			return subtreeBounds[K]{}, nil
		}
		return subtreeBounds[K]{hasKeys: true, min: leaf.keys[0], max: leaf.keys[len(leaf.keys)-1]}, nil
	}

	branch, err := t.branches.get(ref.ID())
	if err != nil {
		return subtreeBounds[K]{}, corruptedTreeError("noderef", fmt.Sprintf("dangling branch ref %d", ref.ID()))
	}
	if len(branch.keys) == 0 {
		return subtreeBounds[K]{}, corruptedTreeError("branch", fmt.Sprintf("branch %d has zero keys", ref.ID()))
	}
	if !isRoot && len(branch.keys) < minOccupancy(t.capacity) {
		return subtreeBounds[K]{}, corruptedTreeError("occupancy",
			fmt.Sprintf("branch %d has %d keys, below minimum %d", ref.ID(), len(branch.keys), minOccupancy(t.capacity)))
	}
	if len(branch.children) != len(branch.keys)+1 {
		return subtreeBounds[K]{}, corruptedTreeError("branch",
			fmt.Sprintf("branch %d has %d keys but %d children", ref.ID(), len(branch.keys), len(branch.children)))
	}
	for i := 1; i < len(branch.keys); i++ {
		if cmp.Compare(branch.keys[i-1], branch.keys[i]) >= 0 {
			return subtreeBounds[K]{}, corruptedTreeError("ordering",
				fmt.Sprintf("branch %d separators not strictly increasing at index %d", ref.ID(), i))
		}
	}

	var overall subtreeBounds[K]
	for i, child := range branch.children {
		bounds, err := t.checkSubtree(child, depth+1, false, visited, leafDepths)
		if err != nil {
			return subtreeBounds[K]{}, err
		}
		if !bounds.hasKeys {
			continue
		}

		if i > 0 && cmp.Compare(bounds.min, branch.keys[i-1]) != 0 {
			return subtreeBounds[K]{}, corruptedTreeError("separator",
				fmt.Sprintf("branch %d separator %d does not equal child %d's minimum key", ref.ID(), i-1, i))
		}
		if i < len(branch.keys) && cmp.Compare(bounds.max, branch.keys[i]) >= 0 {
			return subtreeBounds[K]{}, corruptedTreeError("separator",
				fmt.Sprintf("branch %d child %d has a key not less than separator %d", ref.ID(), i, i))
		}

		if !overall.hasKeys {
			overall.hasKeys = true
			overall.min = bounds.min
		}
		overall.max = bounds.max
	}
	return overall, nil
}

// checkNextChain walks the leaf linked list from the leftmost leaf and
// verifies it visits exactly the leaves discovered during the tree walk,
// each exactly once, in ascending key order, terminating at null.
func (t *Tree[K, V]) checkNextChain(visited map[uint32]bool) error {
	ref := t.leftmostLeafRef()
	if !ref.IsLeaf() {
		return corruptedTreeError("chain", "leftmost descent did not reach a leaf")
	}

	seen := make(map[uint32]bool)
	id := ref.ID()
	var prevMax K
	haveFirst := false

	for {
		if seen[id] {
			return corruptedTreeError("chain", fmt.Sprintf("leaf %d visited twice in next chain", id))
		}
		seen[id] = true

		leaf, err := t.leaves.get(id)
		if err != nil {
			return corruptedTreeError("chain", fmt.Sprintf("next chain points to dangling leaf %d", id))
		}

		if len(leaf.keys) > 0 {
			if haveFirst && cmp.Compare(leaf.keys[0], prevMax) <= 0 {
				return corruptedTreeError("chain", "next chain is not in ascending key order")
			}
			prevMax = leaf.keys[len(leaf.keys)-1]
			haveFirst = true
		}

		if leaf.next == nullNodeID {
			break
		}
		id = leaf.next
	}

	if len(seen) != len(visited) {
		return corruptedTreeError("chain", "next chain does not visit exactly the leaves reachable from the root")
	}
	for id := range visited {
		if !seen[id] {
			return corruptedTreeError("chain", fmt.Sprintf("leaf %d reachable from root but missing from next chain", id))
		}
	}
	return nil
}
