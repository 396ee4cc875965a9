package emit

import (
	"testing"

	"github.com/wippyai/wasm-emit/errors"
	"github.com/wippyai/wasm-emit/wasm"
)

func i32() wasm.ValueType { return wasm.I32() }

func sigI32I32toI32() wasm.DefType {
	return wasm.FuncDef([]wasm.ValueType{i32(), i32()}, []wasm.ValueType{i32()})
}

func TestEmitTypeDedup(t *testing.T) {
	ctx := NewContext(nil)

	a := ctx.EmitType(sigI32I32toI32())
	b := ctx.EmitType(sigI32I32toI32())
	if a != b {
		t.Errorf("equal signatures got distinct indices %d and %d", a, b)
	}

	c := ctx.EmitType(wasm.FuncDef([]wasm.ValueType{i32()}, nil))
	if c == a {
		t.Errorf("different signatures share index %d", c)
	}

	m := ctx.Assemble()
	if len(m.Types) != 2 {
		t.Errorf("types table has %d entries, want 2", len(m.Types))
	}
}

func TestEmitTypeDedupStructural(t *testing.T) {
	ctx := NewContext(nil)

	s1 := ctx.EmitType(wasm.StructDef(wasm.Field(i32(), true)))
	s2 := ctx.EmitType(wasm.StructDef(wasm.Field(i32(), true)))
	if s1 != s2 {
		t.Errorf("equal structs got distinct indices %d and %d", s1, s2)
	}

	// Mutability is part of the shape.
	s3 := ctx.EmitType(wasm.StructDef(wasm.Field(i32(), false)))
	if s3 == s1 {
		t.Errorf("structs with different mutability share index %d", s3)
	}

	// An array with the same element is not the struct.
	a := ctx.EmitType(wasm.ArrayDef(wasm.Field(i32(), true)))
	if a == s1 {
		t.Errorf("array and struct share index %d", a)
	}
}

func TestEmitTypeDeferred(t *testing.T) {
	ctx := NewContext(nil)

	idx, resolve := ctx.EmitTypeDeferred()

	// An unresolved slot never satisfies dedup: the same shape emitted
	// eagerly takes a new index.
	eager := ctx.EmitType(sigI32I32toI32())
	if eager == idx {
		t.Fatalf("eager emission reused unresolved index %d", idx)
	}

	resolve(sigI32I32toI32())

	// The eager entry owns the cache slot; resolution does not rewrite it.
	again := ctx.EmitType(sigI32I32toI32())
	if again != eager {
		t.Errorf("post-resolve emission = %d, want %d", again, eager)
	}

	m := ctx.Assemble()
	if len(m.Types) != 2 {
		t.Errorf("types table has %d entries, want 2", len(m.Types))
	}
}

func TestEmitTypeDeferredSeedsCache(t *testing.T) {
	ctx := NewContext(nil)

	idx, resolve := ctx.EmitTypeDeferred()
	resolve(wasm.ArrayDef(wasm.Field(i32(), true)))

	// With no competing eager entry the resolved type joins the cache.
	if again := ctx.EmitType(wasm.ArrayDef(wasm.Field(i32(), true))); again != idx {
		t.Errorf("emission after resolve = %d, want %d", again, idx)
	}
}

func TestEmitImportIndices(t *testing.T) {
	ctx := NewContext(nil)
	sig := ctx.EmitType(wasm.FuncDef([]wasm.ValueType{i32()}, nil))

	f0 := ctx.EmitImport("env", "log", wasm.ImportFunc(sig))
	f1 := ctx.EmitImport("env", "trace", wasm.ImportFunc(sig))
	g0 := ctx.EmitImport("env", "limit", wasm.ImportGlobal(i32(), false))

	if f0 != 0 || f1 != 1 {
		t.Errorf("imported function indices = %d, %d, want 0, 1", f0, f1)
	}
	if g0 != 0 {
		t.Errorf("imported global index = %d, want 0", g0)
	}

	// Local definitions start after the imported slots.
	local := ctx.EmitFunc(nil, nil, func(fc *Context, _ uint32) {})
	if local != 2 {
		t.Errorf("first local function index = %d, want 2", local)
	}
	g := ctx.EmitGlobal(true, i32(), []wasm.Instruction{wasm.I32Const(0)})
	if g != 1 {
		t.Errorf("first local global index = %d, want 1", g)
	}

	m := ctx.Assemble()
	if len(m.Imports) != 3 {
		t.Errorf("imports = %d, want 3", len(m.Imports))
	}
	if len(m.Funcs) != 1 || len(m.Globals) != 1 {
		t.Errorf("locals = %d funcs, %d globals, want 1 each", len(m.Funcs), len(m.Globals))
	}
}

func TestEmitImportAfterDefinition(t *testing.T) {
	ctx := NewContext(nil)
	sig := ctx.EmitType(wasm.FuncDef(nil, nil))
	ctx.EmitFunc(nil, nil, func(fc *Context, _ uint32) {})

	expectViolation(t, errors.KindImplicitOrder, func() {
		ctx.EmitImport("env", "late", wasm.ImportFunc(sig))
	})
}

func TestEmitData(t *testing.T) {
	ctx := NewContext(nil)

	off1 := ctx.EmitData([]byte("hello"))
	off2 := ctx.EmitData([]byte("world!"))
	if off1 != 0 {
		t.Errorf("first segment offset = %d, want 0", off1)
	}
	if off2 != 5 {
		t.Errorf("second segment offset = %d, want 5", off2)
	}

	m := ctx.Assemble()
	if len(m.Data) != 2 {
		t.Fatalf("data segments = %d, want 2", len(m.Data))
	}
	if string(m.Data[1].Init) != "world!" {
		t.Errorf("second segment bytes = %q", m.Data[1].Init)
	}
	imm, ok := m.Data[1].Offset[0].Imm.(wasm.I32Imm)
	if !ok || imm.Value != 5 {
		t.Errorf("second segment offset expr = %+v", m.Data[1].Offset)
	}
}

func TestEmitDataEmpty(t *testing.T) {
	ctx := NewContext(nil)

	// Empty writes return the cursor position but record nothing; a module
	// must never carry a data segment without a memory to hold it.
	if off := ctx.EmitData(nil); off != 0 {
		t.Errorf("empty write offset = %d, want 0", off)
	}
	if off := ctx.EmitData([]byte("hi")); off != 0 {
		t.Errorf("first real segment offset = %d, want 0", off)
	}
	if off := ctx.EmitData([]byte{}); off != 2 {
		t.Errorf("empty write after data offset = %d, want 2", off)
	}

	m := ctx.Assemble()
	if len(m.Data) != 1 {
		t.Errorf("data segments = %d, want 1", len(m.Data))
	}
	if len(m.Memories) != 1 {
		t.Errorf("memories = %d, want 1", len(m.Memories))
	}
}

func TestEmitDataOnlyEmptySegments(t *testing.T) {
	ctx := NewContext(nil)
	ctx.EmitData(nil)
	ctx.EmitData([]byte{})

	m := ctx.Assemble()
	if len(m.Data) != 0 {
		t.Errorf("data segments = %d, want none", len(m.Data))
	}
	if len(m.Memories) != 0 {
		t.Errorf("memories = %d, want none", len(m.Memories))
	}
}

func TestEmitFuncRefOrderAndDedup(t *testing.T) {
	ctx := NewContext(nil)

	f := func(fc *Context, _ uint32) {}
	a := ctx.EmitFunc(nil, nil, f)
	b := ctx.EmitFunc(nil, nil, f)

	ctx.EmitFuncRef(b)
	ctx.EmitFuncRef(a)
	ctx.EmitFuncRef(b)

	m := ctx.Assemble()
	if len(m.Elements) != 1 {
		t.Fatalf("elements = %d, want 1", len(m.Elements))
	}
	elem := m.Elements[0]
	if elem.Flags != 7 {
		t.Errorf("element flags = %d, want 7 (declarative)", elem.Flags)
	}
	if len(elem.Exprs) != 2 {
		t.Fatalf("element exprs = %d, want 2", len(elem.Exprs))
	}
	first := elem.Exprs[0][0].Imm.(wasm.RefFuncImm)
	second := elem.Exprs[1][0].Imm.(wasm.RefFuncImm)
	if first.FuncIdx != b || second.FuncIdx != a {
		t.Errorf("element order = [%d %d], want [%d %d]",
			first.FuncIdx, second.FuncIdx, b, a)
	}
}

func TestEmitStart(t *testing.T) {
	ctx := NewContext(nil)
	f := ctx.EmitFunc(nil, nil, func(fc *Context, _ uint32) {})
	ctx.EmitStart(f)

	expectViolation(t, errors.KindDuplicateStart, func() {
		ctx.EmitStart(f)
	})

	m := ctx.Assemble()
	if m.Start == nil || *m.Start != f {
		t.Errorf("Start = %v, want %d", m.Start, f)
	}
}

func TestIntrinsicMemoized(t *testing.T) {
	ctx := NewContext(nil)

	calls := 0
	gen := func(c *Context) uint32 {
		calls++
		return c.EmitFunc(nil, nil, func(fc *Context, _ uint32) {})
	}

	a := ctx.Intrinsic("helper", gen)
	b := ctx.Intrinsic("helper", gen)
	if a != b {
		t.Errorf("memoized indices differ: %d, %d", a, b)
	}
	if calls != 1 {
		t.Errorf("generator ran %d times, want 1", calls)
	}

	c := ctx.Intrinsic("other", gen)
	if c == a {
		t.Errorf("distinct names share index %d", c)
	}
	if calls != 2 {
		t.Errorf("generator ran %d times, want 2", calls)
	}
}

func TestPayloadPropagation(t *testing.T) {
	type symbols struct{ hits int }
	sym := &symbols{}

	ctx := NewContext(sym)
	ctx.EmitFunc(nil, nil, func(fc *Context, _ uint32) {
		fc.Payload.(*symbols).hits++
		fc.EmitBlock(wasm.Block, wasm.BlockVoid, func(bc *Context) {
			bc.Payload.(*symbols).hits++
		})
	})

	if sym.hits != 2 {
		t.Errorf("payload hits = %d, want 2", sym.hits)
	}
}

// A module with three globals and one deduplicated two-argument function
// assembles to exactly one type entry and no memory or element sections.
func TestMinimalModuleShape(t *testing.T) {
	ctx := NewContext(nil)

	for i := 0; i < 3; i++ {
		ctx.EmitGlobal(true, i32(), []wasm.Instruction{wasm.I32Const(int32(i))})
	}

	idx, resolve := ctx.EmitFuncDeferred()
	resolve([]wasm.ValueType{i32(), i32()}, []wasm.ValueType{i32()},
		func(fc *Context, _ uint32) {
			fc.EmitInstr(wasm.LocalGet(0))
			fc.EmitInstr(wasm.LocalGet(1))
			fc.EmitInstr(wasm.Op(wasm.OpI32Add))
		})

	m := ctx.Assemble()
	if len(m.Types) != 1 {
		t.Errorf("types = %d, want 1", len(m.Types))
	}
	if len(m.Funcs) != 1 {
		t.Fatalf("funcs = %d, want 1", len(m.Funcs))
	}
	if m.Funcs[idx].TypeIdx != 0 {
		t.Errorf("function type index = %d, want 0", m.Funcs[idx].TypeIdx)
	}
	if len(m.Globals) != 3 {
		t.Errorf("globals = %d, want 3", len(m.Globals))
	}
	if len(m.Memories) != 0 {
		t.Errorf("memories = %d, want none", len(m.Memories))
	}
	if len(m.Elements) != 0 {
		t.Errorf("elements = %d, want none", len(m.Elements))
	}
}
