package emit

import (
	"go.uber.org/zap"

	"github.com/wippyai/wasm-emit/wasm"
)

// Context is the emission state for one module-generation pass. All scopes
// opened from a Context share its module-wide tables and caches; only the
// instruction table (and, for let/function scopes, the locals table) is
// per-scope.
//
// Payload is an opaque extension slot for the driving code generator
// (symbol tables, source maps); it is copied by reference into every scope
// and never inspected here.
type Context struct {
	state   *moduleState
	locals  *Table[wasm.ValueType]
	instrs  *Table[wasm.Instruction]
	Payload any
}

// moduleState is the portion of a Context shared by every scope.
type moduleState struct {
	types   *Table[wasm.DefType]
	funcs   *Table[function]
	globals *Table[wasm.Global]
	imports *Table[wasm.Import]
	exports *Table[wasm.Export]
	data    *Table[wasm.DataSegment]

	// Function indices taken by reference, in first-reference order.
	refFuncs []uint32
	refSeen  map[uint32]struct{}

	// Next free byte offset in the module's flat linear memory.
	dataCursor uint32

	start *uint32

	// Structural dedup cache: DefType.Key() of fully resolved defined
	// types to the index of their first emission.
	typeCache map[string]uint32

	// Lazily generated helper entities by name.
	intrinsics map[string]uint32

	assembled bool
}

// function is a fully defined local function awaiting assembly.
type function struct {
	body    []wasm.Instruction
	locals  []wasm.ValueType
	typeIdx uint32
}

// NewContext creates the root context for a module-generation pass.
func NewContext(payload any) *Context {
	return &Context{
		state: &moduleState{
			types:      NewTable[wasm.DefType]("types"),
			funcs:      NewTable[function]("funcs"),
			globals:    NewTable[wasm.Global]("globals"),
			imports:    NewTable[wasm.Import]("imports"),
			exports:    NewTable[wasm.Export]("exports"),
			data:       NewTable[wasm.DataSegment]("data"),
			refSeen:    make(map[uint32]struct{}),
			typeCache:  make(map[string]uint32),
			intrinsics: make(map[string]uint32),
		},
		locals:  NewTable[wasm.ValueType]("locals"),
		instrs:  NewTable[wasm.Instruction]("instrs"),
		Payload: payload,
	}
}

// scope opens a child context with a fresh instruction table, and a fresh
// locals table when freshLocals is set. Everything else is shared.
func (c *Context) scope(freshLocals bool) *Context {
	child := &Context{
		state:   c.state,
		locals:  c.locals,
		instrs:  NewTable[wasm.Instruction]("instrs"),
		Payload: c.Payload,
	}
	if freshLocals {
		child.locals = NewTable[wasm.ValueType]("locals")
	}
	return child
}

// Intrinsic returns the index memoized under name, invoking gen to produce
// it on first use. gen typically emits a shared helper function or global
// through the same context and returns its index.
func (c *Context) Intrinsic(name string, gen func(*Context) uint32) uint32 {
	if idx, ok := c.state.intrinsics[name]; ok {
		return idx
	}
	idx := gen(c)
	c.state.intrinsics[name] = idx
	Logger().Debug("intrinsic generated",
		zap.String("name", name),
		zap.Uint32("index", idx))
	return idx
}
