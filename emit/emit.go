package emit

import (
	"go.uber.org/zap"

	"github.com/wippyai/wasm-emit/errors"
	"github.com/wippyai/wasm-emit/wasm"
)

// EmitType emits a defined type, collapsing structural duplicates: if an
// equal type was already fully emitted, its index is returned and the type
// table does not grow.
func (c *Context) EmitType(dt wasm.DefType) uint32 {
	key := dt.Key()
	if idx, ok := c.state.typeCache[key]; ok {
		Logger().Debug("type dedup hit", zap.Uint32("index", idx))
		return idx
	}
	idx := c.state.types.Emit(dt)
	c.state.typeCache[key] = idx
	return idx
}

// EmitTypeDeferred reserves a type index immediately and returns it with a
// one-shot resolver. The resolver fills the slot and, only then, records
// the type in the dedup cache; an unresolved deferred type never satisfies
// a later EmitType lookup, so equal shapes deferred concurrently keep
// distinct indices.
func (c *Context) EmitTypeDeferred() (uint32, func(wasm.DefType)) {
	h := c.state.types.Allocate()
	resolve := func(dt wasm.DefType) {
		c.state.types.Define(h, dt)
		key := dt.Key()
		if _, ok := c.state.typeCache[key]; !ok {
			c.state.typeCache[key] = h.Index()
		}
	}
	return h.Index(), resolve
}

// EmitImport records an import. Function and global imports occupy an index
// in their category table ahead of all local definitions; the returned
// index is that category index. Memory imports return the import record's
// own position.
func (c *Context) EmitImport(module, name string, desc wasm.ImportDesc) uint32 {
	impIdx := c.state.imports.Emit(wasm.Import{Module: module, Name: name, Desc: desc})
	switch desc.Kind {
	case wasm.KindFunc:
		return c.state.funcs.ImplicitAllocate()
	case wasm.KindGlobal:
		return c.state.globals.ImplicitAllocate()
	}
	return impIdx
}

// EmitExport records a name-to-index export for a function, global, or
// memory.
func (c *Context) EmitExport(name string, kind byte, idx uint32) {
	c.state.exports.Emit(wasm.Export{Name: name, Kind: kind, Idx: idx})
}

// EmitParam reserves a local index for a parameter slot. Parameters carry
// no per-local type entry (the type lives on the owning function's
// signature), so the reservation is implicit and must precede every
// EmitLocal in the scope.
func (c *Context) EmitParam() uint32 {
	return c.locals.ImplicitAllocate()
}

// EmitLocal emits a typed local slot in the current scope and returns its
// index.
func (c *Context) EmitLocal(t wasm.ValueType) uint32 {
	return c.locals.Emit(t)
}

// EmitGlobal emits a global with the given initializer expression and
// returns its index.
func (c *Context) EmitGlobal(mutable bool, t wasm.ValueType, init []wasm.Instruction) uint32 {
	return c.state.globals.Emit(wasm.Global{
		Type: wasm.GlobalType{Type: t, Mutable: mutable},
		Init: init,
	})
}

// EmitData appends bytes as an active data segment at the current data
// cursor and returns the segment's starting offset. The cursor advances by
// len(b); assembly later sizes the module's memory from the final cursor.
func (c *Context) EmitData(b []byte) uint32 {
	off := c.state.dataCursor
	// An empty segment would occupy the data section without claiming any
	// memory, producing a module with segments but no memory to hold them.
	if len(b) == 0 {
		return off
	}
	c.state.data.Emit(wasm.DataSegment{
		Offset: []wasm.Instruction{wasm.I32Const(int32(off))},
		Init:   b,
	})
	c.state.dataCursor = off + uint32(len(b))
	return off
}

// EmitInstr appends one instruction to the current scope's sequence.
func (c *Context) EmitInstr(in wasm.Instruction) {
	c.instrs.Emit(in)
}

// EmitFuncRef records that the function's identity is taken by reference,
// so assembly must declare it in the module's element space. It emits no
// instruction itself.
func (c *Context) EmitFuncRef(idx uint32) {
	if _, ok := c.state.refSeen[idx]; ok {
		return
	}
	c.state.refSeen[idx] = struct{}{}
	c.state.refFuncs = append(c.state.refFuncs, idx)
}

// EmitStart designates the module's entry point. A second designation is a
// contract violation.
func (c *Context) EmitStart(idx uint32) {
	if c.state.start != nil {
		panic(errors.DuplicateStart(*c.state.start, idx))
	}
	c.state.start = &idx
}
