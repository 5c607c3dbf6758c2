package bptree

import "cmp"

// BoundKind identifies whether a Bound is open on that side, or pins a key
// inclusively or exclusively.
type BoundKind uint8

const (
	Unbounded BoundKind = iota
	Inclusive
	Exclusive
)

// Bound is one endpoint of a range query.
type Bound[K any] struct {
	Kind BoundKind
	Key  K
}

// Unbound builds an open endpoint.
func Unbound[K any]() Bound[K] { return Bound[K]{Kind: Unbounded} }

// Incl builds an endpoint that includes key.
func Incl[K any](key K) Bound[K] { return Bound[K]{Kind: Inclusive, Key: key} }

// Excl builds an endpoint that excludes key.
func Excl[K any](key K) Bound[K] { return Bound[K]{Kind: Exclusive, Key: key} }

// RangeIterator is a stateful forward cursor over the leaf linked list,
// restricted to a half-open or closed key window. It caches the current
// leaf (a direct *leafNode pointer, not just an id) so that advancing
// within a leaf costs no arena lookup at all; only crossing into the next
// leaf performs one. This is the single largest performance lever in the
// design: a per-item arena lookup would inflate scan cost by roughly the
// branching factor.
type RangeIterator[K cmp.Ordered, V any] struct {
	tree  *Tree[K, V]
	upper Bound[K]
	leaf  *leafNode[K, V]
	idx   int
	done  bool
}

// Range returns a cursor over every (key, value) pair with lower <= key <=
// upper (subject to each bound's inclusivity), in ascending key order.
func (t *Tree[K, V]) Range(lower, upper Bound[K]) *RangeIterator[K, V] {
	var ref NodeRef
	if lower.Kind == Unbounded {
		ref = t.leftmostLeafRef()
	} else {
		ref = t.descendToLeaf(lower.Key)
	}

	leaf, err := t.leaves.get(ref.ID())
	if err != nil {
		panic(err)
	}

	idx := 0
	if lower.Kind != Unbounded {
		idx, _ = leaf.find(lower.Key)
		if lower.Kind == Exclusive && idx < len(leaf.keys) && cmp.Compare(leaf.keys[idx], lower.Key) == 0 {
			idx++
		}
	}

	return &RangeIterator[K, V]{tree: t, upper: upper, leaf: leaf, idx: idx}
}

// Iter returns a cursor over every (key, value) pair in ascending key order.
func (t *Tree[K, V]) Iter() *RangeIterator[K, V] {
	return t.Range(Unbound[K](), Unbound[K]())
}

// Next returns the next (key, value) pair in the window, or ok=false once
// the iterator is exhausted.
func (it *RangeIterator[K, V]) Next() (key K, value V, ok bool) {
	for {
		if it.done {
			return key, value, false
		}

		if it.idx < len(it.leaf.keys) {
			k := it.leaf.keys[it.idx]
			if !it.withinUpper(k) {
				it.done = true
				return key, value, false
			}
			v := it.leaf.values[it.idx]
			it.idx++
			return k, v, true
		}

		if it.leaf.next == nullNodeID {
			it.done = true
			continue
		}
		next, err := it.tree.leaves.get(it.leaf.next)
		if err != nil {
			panic(err)
		}
		it.leaf = next
		it.idx = 0
	}
}

func (it *RangeIterator[K, V]) withinUpper(key K) bool {
	switch it.upper.Kind {
	case Unbounded:
		return true
	case Inclusive:
		return cmp.Compare(key, it.upper.Key) <= 0
	default:
		return cmp.Compare(key, it.upper.Key) < 0
	}
}
