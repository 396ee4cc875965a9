package emit

import (
	"github.com/wippyai/wasm-emit/errors"
)

// Table is an append-only, indexed entity collection with two-phase
// allocate-then-define semantics. The index returned at allocation time is
// the entity's final position in the drained sequence; indices are
// 0-based, monotonically increasing, and never reused.
//
// Implicit allocations (entities that occupy an index but will never have
// a locally defined value, such as imports and parameters) share the same
// counter and must all precede the first explicit allocation.
type Table[T any] struct {
	name     string
	slots    []slot[T]
	implicit uint32
}

type slot[T any] struct {
	value   T
	defined bool
}

// Handle is an opaque one-shot definition handle for an allocated slot.
type Handle struct {
	index uint32
}

// Index returns the entity index the handle was allocated under.
func (h Handle) Index() uint32 { return h.index }

// NewTable creates an empty table. The name identifies the entity category
// in contract-violation diagnostics.
func NewTable[T any](name string) *Table[T] {
	return &Table[T]{name: name}
}

// Allocate reserves the next index without associating a value.
func (t *Table[T]) Allocate() Handle {
	idx := t.implicit + uint32(len(t.slots))
	t.slots = append(t.slots, slot[T]{})
	return Handle{index: idx}
}

// Define fulfills a previously allocated handle. Defining a handle twice is
// a contract violation.
func (t *Table[T]) Define(h Handle, v T) {
	s := &t.slots[h.index-t.implicit]
	if s.defined {
		panic(errors.Redefined(t.name, h.index))
	}
	s.value = v
	s.defined = true
}

// Emit allocates and immediately defines, returning the index.
func (t *Table[T]) Emit(v T) uint32 {
	h := t.Allocate()
	t.Define(h, v)
	return h.index
}

// ImplicitAllocate reserves an index with no slot at all, for entities
// whose definition lives elsewhere (imports, parameters). It is only legal
// while the table holds no explicit slots, since implicit and explicit
// indices share one counter.
func (t *Table[T]) ImplicitAllocate() uint32 {
	if len(t.slots) != 0 {
		panic(errors.ImplicitOrder(t.name, len(t.slots)))
	}
	idx := t.implicit
	t.implicit++
	return idx
}

// At returns the defined value at idx. Indices below the implicit count,
// beyond the allocated length, or still undefined are contract violations.
func (t *Table[T]) At(idx uint32) T {
	if idx < t.implicit || int(idx-t.implicit) >= len(t.slots) {
		panic(errors.OutOfRange(errors.PhaseLookup, t.name, idx, int(t.NextIndex())))
	}
	s := &t.slots[idx-t.implicit]
	if !s.defined {
		panic(errors.Undefined(errors.PhaseLookup, t.name, idx))
	}
	return s.value
}

// Len returns the number of explicit slots (defined or pending).
func (t *Table[T]) Len() int { return len(t.slots) }

// NextIndex returns the index the next allocation would receive.
func (t *Table[T]) NextIndex() uint32 {
	return t.implicit + uint32(len(t.slots))
}

// Drain returns the defined values in allocation order. Any slot that was
// allocated but never defined is a contract violation: it means a forward
// reference was handed out and never resolved.
func (t *Table[T]) Drain() []T {
	out := make([]T, len(t.slots))
	for i := range t.slots {
		if !t.slots[i].defined {
			panic(errors.Undefined(errors.PhaseAssemble, t.name, t.implicit+uint32(i)))
		}
		out[i] = t.slots[i].value
	}
	return out
}
