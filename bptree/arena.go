package bptree

// nullNodeID is the sentinel id that is never handed out by allocate. It
// doubles as the "no next leaf" marker for the leaf linked list.
const nullNodeID uint32 = ^uint32(0)

// arena is a typed, append-with-free-list container mapping small integer
// ids to owned nodes. Two independent instances exist on every Tree: one
// for leaf nodes, one for branch nodes.
//
// Slots hold *T rather than T directly so that a pointer returned by get
// stays valid across later allocate calls on the same arena: growing the
// backing slice of pointers never moves the pointed-to node.
type arena[T any] struct {
	slots []*T
	free  []uint32
	live  int

	// gets counts calls to get, regardless of outcome. It exists so tests
	// can assert on the number of arena accesses a scan performs, the
	// counting-wrapper technique needed to pin down the per-leaf (not
	// per-item) access amortization the range iterator depends on.
	gets int
}

func newArena[T any]() *arena[T] {
	return &arena[T]{}
}

// allocate stores value in a free or fresh slot and returns its id.
func (a *arena[T]) allocate(value T) (uint32, error) {
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		p := new(T)
		*p = value
		a.slots[id] = p
		a.live++
		return id, nil
	}

	id := uint32(len(a.slots))
	if id >= nullNodeID {
		return 0, allocationError("arena slot", "id space exhausted")
	}
	p := new(T)
	*p = value
	a.slots = append(a.slots, p)
	a.live++
	return id, nil
}

// get resolves id to its live value, or ArenaError if the slot is empty or
// out of range.
func (a *arena[T]) get(id uint32) (*T, error) {
	a.gets++
	if id >= uint32(len(a.slots)) || a.slots[id] == nil {
		return nil, arenaError("get", "id is not live")
	}
	return a.slots[id], nil
}

// getCount reports how many times get has been called on this arena. Test
// instrumentation only; production code never reads it.
func (a *arena[T]) getCount() int {
	return a.gets
}

// release frees id, returning its former value so the caller can salvage
// fields (e.g. a leaf's next pointer) before it is gone.
func (a *arena[T]) release(id uint32) (T, error) {
	var zero T
	if id >= uint32(len(a.slots)) || a.slots[id] == nil {
		return zero, arenaError("release", "id is not live")
	}
	v := *a.slots[id]
	a.slots[id] = nil
	a.free = append(a.free, id)
	a.live--
	return v, nil
}

// len reports the number of live slots in O(1).
func (a *arena[T]) len() int {
	return a.live
}

// reset discards every slot, as if the arena had just been created.
func (a *arena[T]) reset() {
	a.slots = nil
	a.free = nil
	a.live = 0
	a.gets = 0
}

// iterateLive walks live slots in ascending id order, stopping early if fn
// returns false.
func (a *arena[T]) iterateLive(fn func(id uint32, v *T) bool) {
	for i, p := range a.slots {
		if p == nil {
			continue
		}
		if !fn(uint32(i), p) {
			return
		}
	}
}
