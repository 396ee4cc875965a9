package emit

import (
	"testing"

	"github.com/wippyai/wasm-emit/errors"
)

// expectViolation runs fn and asserts it panics with a contract violation of
// the given kind.
func expectViolation(t *testing.T, kind errors.Kind, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected %s violation, got none", kind)
		}
		err, ok := r.(*errors.Error)
		if !ok {
			t.Fatalf("panic value %v (%T) is not a contract violation", r, r)
		}
		if err.Kind != kind {
			t.Errorf("violation kind = %s, want %s", err.Kind, kind)
		}
	}()
	fn()
}

func TestTableEmitIndices(t *testing.T) {
	tbl := NewTable[string]("test")
	for i := 0; i < 5; i++ {
		if got := tbl.Emit("v"); got != uint32(i) {
			t.Errorf("Emit #%d returned index %d", i, got)
		}
	}
	if tbl.Len() != 5 {
		t.Errorf("Len() = %d, want 5", tbl.Len())
	}
	if tbl.NextIndex() != 5 {
		t.Errorf("NextIndex() = %d, want 5", tbl.NextIndex())
	}
}

func TestTableAllocateDefine(t *testing.T) {
	tbl := NewTable[string]("test")

	a := tbl.Allocate()
	b := tbl.Allocate()
	if a.Index() != 0 || b.Index() != 1 {
		t.Fatalf("allocated indices = %d, %d", a.Index(), b.Index())
	}

	// Definition order does not affect drain order.
	tbl.Define(b, "second")
	tbl.Define(a, "first")

	got := tbl.Drain()
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("Drain() = %v, want [first second]", got)
	}
}

func TestTableDefineTwice(t *testing.T) {
	tbl := NewTable[int]("test")
	h := tbl.Allocate()
	tbl.Define(h, 1)
	expectViolation(t, errors.KindRedefinedEntity, func() {
		tbl.Define(h, 2)
	})
}

func TestTableImplicitAllocate(t *testing.T) {
	tbl := NewTable[int]("test")

	if got := tbl.ImplicitAllocate(); got != 0 {
		t.Errorf("first implicit index = %d, want 0", got)
	}
	if got := tbl.ImplicitAllocate(); got != 1 {
		t.Errorf("second implicit index = %d, want 1", got)
	}

	// Explicit entries continue the same counter.
	if got := tbl.Emit(7); got != 2 {
		t.Errorf("explicit index after implicits = %d, want 2", got)
	}

	// Drain only yields explicit entries.
	if got := tbl.Drain(); len(got) != 1 || got[0] != 7 {
		t.Errorf("Drain() = %v, want [7]", got)
	}
}

func TestTableImplicitAfterExplicit(t *testing.T) {
	tbl := NewTable[int]("test")
	tbl.Emit(1)
	expectViolation(t, errors.KindImplicitOrder, func() {
		tbl.ImplicitAllocate()
	})
}

func TestTableAt(t *testing.T) {
	tbl := NewTable[string]("test")
	tbl.ImplicitAllocate()
	idx := tbl.Emit("hello")

	if got := tbl.At(idx); got != "hello" {
		t.Errorf("At(%d) = %q, want hello", idx, got)
	}

	expectViolation(t, errors.KindOutOfRange, func() {
		tbl.At(0) // implicit slot has no value
	})
	expectViolation(t, errors.KindOutOfRange, func() {
		tbl.At(99)
	})

	h := tbl.Allocate()
	expectViolation(t, errors.KindUndefinedEntity, func() {
		tbl.At(h.Index())
	})
}

func TestTableDrainUndefined(t *testing.T) {
	tbl := NewTable[int]("test")
	tbl.Emit(1)
	tbl.Allocate()
	expectViolation(t, errors.KindUndefinedEntity, func() {
		tbl.Drain()
	})
}
