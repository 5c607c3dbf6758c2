package bptree

import "fmt"

// ErrorKind identifies which of the closed set of failure modes a tree
// operation hit. Ordinary lookups never produce one of these; they only
// appear from construction, from CheckInvariants, or from a panic raised
// when the implementation detects its own invariants have been broken.
type ErrorKind int

const (
	// InvalidCapacity is returned by New when capacity is below the minimum.
	InvalidCapacity ErrorKind = iota
	// KeyNotFound is reserved for operations whose contract promises a found
	// key. Get/Remove/ContainsKey report absence with a boolean instead.
	KeyNotFound
	// ArenaError indicates a lookup against an empty or out-of-range arena slot.
	ArenaError
	// NodeError indicates an operation precondition was violated.
	NodeError
	// CorruptedTree indicates CheckInvariants found a structural violation.
	CorruptedTree
	// InvalidState indicates an operation was attempted against a state that
	// should be structurally impossible.
	InvalidState
	// AllocationError indicates an arena could not grow to satisfy allocate.
	AllocationError
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidCapacity:
		return "InvalidCapacity"
	case KeyNotFound:
		return "KeyNotFound"
	case ArenaError:
		return "ArenaError"
	case NodeError:
		return "NodeError"
	case CorruptedTree:
		return "CorruptedTree"
	case InvalidState:
		return "InvalidState"
	case AllocationError:
		return "AllocationError"
	default:
		return "UnknownError"
	}
}

// Error is the single concrete error type produced anywhere in this package.
// Kind narrows it to one of the seven taxonomy members; Msg carries
// human-readable context, built the same way the source's
// BPlusTreeError::arena_error/node_error/etc. constructors build theirs.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is lets errors.Is(err, &bptree.Error{Kind: bptree.InvalidCapacity}) style
// checks match by kind alone (the target's Msg is ignored),
// which is cheaper and more idiomatic than sentinel-wrapping for a closed,
// flat taxonomy like this one.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	return ok && other.Kind == e.Kind
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}

func invalidCapacityError(capacity, minRequired int) *Error {
	return &Error{
		Kind: InvalidCapacity,
		Msg:  fmt.Sprintf("capacity %d is invalid (minimum required: %d)", capacity, minRequired),
	}
}

func arenaError(operation, details string) *Error {
	return &Error{Kind: ArenaError, Msg: fmt.Sprintf("%s failed: %s", operation, details)}
}

func nodeError(nodeType string, id uint32, details string) *Error {
	return &Error{Kind: NodeError, Msg: fmt.Sprintf("%s node %d: %s", nodeType, id, details)}
}

func corruptedTreeError(component, details string) *Error {
	return &Error{Kind: CorruptedTree, Msg: fmt.Sprintf("%s corruption: %s", component, details)}
}

func invalidStateError(operation, state string) *Error {
	return &Error{Kind: InvalidState, Msg: fmt.Sprintf("cannot %s in state: %s", operation, state)}
}

func allocationError(resource, reason string) *Error {
	return &Error{Kind: AllocationError, Msg: fmt.Sprintf("failed to allocate %s: %s", resource, reason)}
}
