package emit

import (
	"testing"

	"github.com/wippyai/wasm-emit/errors"
	"github.com/wippyai/wasm-emit/wasm"
)

func TestAssembleEmpty(t *testing.T) {
	m := NewContext(nil).Assemble()
	if len(m.Types) != 0 || len(m.Funcs) != 0 || len(m.Memories) != 0 {
		t.Errorf("empty context assembled non-empty module: %+v", m)
	}
	if m.Start != nil {
		t.Errorf("Start = %d, want none", *m.Start)
	}
}

func TestAssembleUnresolvedDeferredType(t *testing.T) {
	ctx := NewContext(nil)
	ctx.EmitTypeDeferred()
	expectViolation(t, errors.KindUndefinedEntity, func() {
		ctx.Assemble()
	})
}

func TestAssembleUnresolvedDeferredFunc(t *testing.T) {
	ctx := NewContext(nil)
	ctx.EmitFuncDeferred()
	expectViolation(t, errors.KindUndefinedEntity, func() {
		ctx.Assemble()
	})
}

func TestAssembleTwice(t *testing.T) {
	ctx := NewContext(nil)
	ctx.Assemble()
	expectViolation(t, errors.KindRedefinedEntity, func() {
		ctx.Assemble()
	})
}

func TestAssembleMemorySizing(t *testing.T) {
	tests := []struct {
		name  string
		bytes int
		pages uint64
	}{
		{name: "single byte", bytes: 1, pages: 1},
		{name: "exactly one page", bytes: wasm.PageSize, pages: 1},
		{name: "one page plus one", bytes: wasm.PageSize + 1, pages: 2},
		{name: "spanning two pages", bytes: 70010, pages: 2},
		{name: "three pages", bytes: 3 * wasm.PageSize, pages: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewContext(nil)
			ctx.EmitData(make([]byte, tt.bytes))
			m := ctx.Assemble()
			if len(m.Memories) != 1 {
				t.Fatalf("memories = %d, want 1", len(m.Memories))
			}
			mem := m.Memories[0]
			if mem.Min != tt.pages {
				t.Errorf("min pages = %d, want %d", mem.Min, tt.pages)
			}
			if mem.Max == nil || *mem.Max != tt.pages {
				t.Errorf("max pages = %v, want %d", mem.Max, tt.pages)
			}
		})
	}
}

func TestAssembleMemorySizingNearAddressLimit(t *testing.T) {
	// A cursor within one page of the 4 GiB limit must round up without
	// wrapping the page computation.
	ctx := NewContext(nil)
	ctx.state.data.Emit(wasm.DataSegment{
		Offset: []wasm.Instruction{wasm.I32Const(0)},
		Init:   []byte{0},
	})
	ctx.state.dataCursor = 0xFFFF0001

	m := ctx.Assemble()
	if len(m.Memories) != 1 {
		t.Fatalf("memories = %d, want 1", len(m.Memories))
	}
	if got := m.Memories[0].Min; got != 65536 {
		t.Errorf("min pages = %d, want 65536", got)
	}
}

func TestAssembleNoDataNoMemory(t *testing.T) {
	ctx := NewContext(nil)
	ctx.EmitFunc(nil, nil, func(fc *Context, _ uint32) {})
	m := ctx.Assemble()
	if len(m.Memories) != 0 {
		t.Errorf("memories = %d, want none", len(m.Memories))
	}
	if len(m.Data) != 0 {
		t.Errorf("data segments = %d, want none", len(m.Data))
	}
}

func TestAssembleFunctionOrder(t *testing.T) {
	ctx := NewContext(nil)

	// Interleave deferred and eager definitions; assembly must follow
	// allocation order, not resolution order.
	aIdx, resolveA := ctx.EmitFuncDeferred()
	bIdx := ctx.EmitFunc(nil, []wasm.ValueType{wasm.I32()},
		func(fc *Context, _ uint32) {
			fc.EmitInstr(wasm.I32Const(2))
		})
	resolveA(nil, []wasm.ValueType{wasm.I32()}, func(fc *Context, _ uint32) {
		fc.EmitInstr(wasm.I32Const(1))
	})

	m := ctx.Assemble()
	if aIdx != 0 || bIdx != 1 {
		t.Fatalf("indices = %d, %d, want 0, 1", aIdx, bIdx)
	}
	a := m.Funcs[0].Body[0].Imm.(wasm.I32Imm)
	b := m.Funcs[1].Body[0].Imm.(wasm.I32Imm)
	if a.Value != 1 || b.Value != 2 {
		t.Errorf("body constants = %d, %d, want 1, 2", a.Value, b.Value)
	}
}
