package main

import (
	"github.com/wippyai/wasm-emit/emit"
	"github.com/wippyai/wasm-emit/wasm"
)

// demo is a built-in module generated entirely through the emission API.
// Non-runnable demos exercise GC types and scoped bindings that the bundled
// engine does not execute; they still encode and can be written with -o.
type demo struct {
	build    func() *wasm.Module
	name     string
	desc     string
	runnable bool
}

var demos = []demo{
	{
		name:     "arith",
		desc:     "integer arithmetic: recursion, loops, globals, data",
		runnable: true,
		build:    buildArith,
	},
	{
		name:     "shapes",
		desc:     "GC structs and arrays, deferred types, scoped bindings",
		runnable: false,
		build:    buildShapes,
	},
}

func findDemo(name string) (demo, bool) {
	for _, d := range demos {
		if d.name == name {
			return d, true
		}
	}
	return demo{}, false
}

// buildArith produces a self-contained module: an add function, a recursive
// fibonacci, a loop-based summation, a counter global initialized by the
// start function, and a greeting in linear memory.
func buildArith() *wasm.Module {
	ctx := emit.NewContext(nil)
	i32 := wasm.I32()

	add := ctx.EmitFunc([]wasm.ValueType{i32, i32}, []wasm.ValueType{i32},
		func(fc *emit.Context, _ uint32) {
			fc.EmitInstr(wasm.LocalGet(0))
			fc.EmitInstr(wasm.LocalGet(1))
			fc.EmitInstr(wasm.Op(wasm.OpI32Add))
		})
	ctx.EmitExport("add", wasm.KindFunc, add)

	fib := ctx.EmitFunc([]wasm.ValueType{i32}, []wasm.ValueType{i32},
		func(fc *emit.Context, self uint32) {
			fc.EmitInstr(wasm.LocalGet(0))
			fc.EmitInstr(wasm.I32Const(2))
			fc.EmitInstr(wasm.Op(wasm.OpI32LtS))
			fc.EmitIf(wasm.BlockI32,
				func(tc *emit.Context) {
					tc.EmitInstr(wasm.LocalGet(0))
				},
				func(ec *emit.Context) {
					ec.EmitInstr(wasm.LocalGet(0))
					ec.EmitInstr(wasm.I32Const(1))
					ec.EmitInstr(wasm.Op(wasm.OpI32Sub))
					ec.EmitInstr(wasm.Call(self))
					ec.EmitInstr(wasm.LocalGet(0))
					ec.EmitInstr(wasm.I32Const(2))
					ec.EmitInstr(wasm.Op(wasm.OpI32Sub))
					ec.EmitInstr(wasm.Call(self))
					ec.EmitInstr(wasm.Op(wasm.OpI32Add))
				})
		})
	ctx.EmitExport("fib", wasm.KindFunc, fib)

	sumTo := ctx.EmitFunc([]wasm.ValueType{i32}, []wasm.ValueType{i32},
		func(fc *emit.Context, _ uint32) {
			acc := fc.EmitLocal(i32)
			i := fc.EmitLocal(i32)
			fc.EmitInstr(wasm.I32Const(1))
			fc.EmitInstr(wasm.LocalSet(i))
			fc.EmitBlock(wasm.Block, wasm.BlockVoid, func(bc *emit.Context) {
				bc.EmitBlock(wasm.Loop, wasm.BlockVoid, func(lc *emit.Context) {
					lc.EmitInstr(wasm.LocalGet(i))
					lc.EmitInstr(wasm.LocalGet(0))
					lc.EmitInstr(wasm.Op(wasm.OpI32GtS))
					lc.EmitInstr(wasm.BrIf(1))
					lc.EmitInstr(wasm.LocalGet(acc))
					lc.EmitInstr(wasm.LocalGet(i))
					lc.EmitInstr(wasm.Op(wasm.OpI32Add))
					lc.EmitInstr(wasm.LocalSet(acc))
					lc.EmitInstr(wasm.LocalGet(i))
					lc.EmitInstr(wasm.I32Const(1))
					lc.EmitInstr(wasm.Op(wasm.OpI32Add))
					lc.EmitInstr(wasm.LocalSet(i))
					lc.EmitInstr(wasm.Br(0))
				})
			})
			fc.EmitInstr(wasm.LocalGet(acc))
		})
	ctx.EmitExport("sum_to", wasm.KindFunc, sumTo)

	counter := ctx.EmitGlobal(true, i32, []wasm.Instruction{wasm.I32Const(0)})

	bump := ctx.EmitFunc(nil, []wasm.ValueType{i32},
		func(fc *emit.Context, _ uint32) {
			fc.EmitInstr(wasm.GlobalGet(counter))
			fc.EmitInstr(wasm.I32Const(1))
			fc.EmitInstr(wasm.Op(wasm.OpI32Add))
			fc.EmitInstr(wasm.GlobalSet(counter))
			fc.EmitInstr(wasm.GlobalGet(counter))
		})
	ctx.EmitExport("bump", wasm.KindFunc, bump)

	start := ctx.EmitFunc(nil, nil, func(fc *emit.Context, _ uint32) {
		fc.EmitInstr(wasm.I32Const(1))
		fc.EmitInstr(wasm.GlobalSet(counter))
	})
	ctx.EmitStart(start)

	msg := []byte("generated by wasm-emit\n")
	off := ctx.EmitData(msg)
	msgPtr := ctx.EmitGlobal(false, i32, []wasm.Instruction{wasm.I32Const(int32(off))})
	msgLen := ctx.EmitGlobal(false, i32, []wasm.Instruction{wasm.I32Const(int32(len(msg)))})
	ctx.EmitExport("msg_ptr", wasm.KindGlobal, msgPtr)
	ctx.EmitExport("msg_len", wasm.KindGlobal, msgLen)
	ctx.EmitExport("memory", wasm.KindMemory, 0)

	return ctx.Assemble()
}

// buildShapes produces a module over GC heap types: a point struct, an i32
// array, a self-referential list node emitted through a deferred type, and a
// logging import that demonstrates implicit index allocation.
func buildShapes() *wasm.Module {
	ctx := emit.NewContext(nil)
	i32 := wasm.I32()

	logI32 := ctx.EmitImport("env", "log_i32", wasm.ImportFunc(
		ctx.EmitType(wasm.FuncDef([]wasm.ValueType{i32}, nil))))

	point := ctx.EmitType(wasm.StructDef(
		wasm.Field(i32, true),
		wasm.Field(i32, true),
	))

	intArray := ctx.EmitType(wasm.ArrayDef(wasm.Field(i32, true)))

	// A list node referencing its own type: the index exists before the
	// shape does.
	node, resolveNode := ctx.EmitTypeDeferred()
	resolveNode(wasm.StructDef(
		wasm.Field(i32, true),
		wasm.Field(wasm.RefIdx(node, true), true),
	))

	pointRef := wasm.RefIdx(point, false)

	makePoint := ctx.EmitFunc([]wasm.ValueType{i32, i32}, []wasm.ValueType{pointRef},
		func(fc *emit.Context, _ uint32) {
			fc.EmitInstr(wasm.LocalGet(0))
			fc.EmitInstr(wasm.LocalGet(1))
			fc.EmitInstr(wasm.StructNew(point))
		})
	ctx.EmitExport("make_point", wasm.KindFunc, makePoint)

	pointSum := ctx.EmitFunc([]wasm.ValueType{pointRef}, []wasm.ValueType{i32},
		func(fc *emit.Context, _ uint32) {
			// Bind the argument under a scoped local and log both fields
			// before summing.
			fc.EmitInstr(wasm.LocalGet(0))
			fc.EmitLet(wasm.BlockI32, []wasm.ValueType{pointRef}, func(lc *emit.Context) {
				lc.EmitInstr(wasm.LocalGet(0))
				lc.EmitInstr(wasm.StructGet(point, 0))
				lc.EmitInstr(wasm.Call(logI32))
				lc.EmitInstr(wasm.LocalGet(0))
				lc.EmitInstr(wasm.StructGet(point, 0))
				lc.EmitInstr(wasm.LocalGet(0))
				lc.EmitInstr(wasm.StructGet(point, 1))
				lc.EmitInstr(wasm.Op(wasm.OpI32Add))
			})
		})
	ctx.EmitExport("point_sum", wasm.KindFunc, pointSum)

	cons := ctx.EmitFunc([]wasm.ValueType{i32, wasm.RefIdx(node, true)},
		[]wasm.ValueType{wasm.RefIdx(node, false)},
		func(fc *emit.Context, _ uint32) {
			fc.EmitInstr(wasm.LocalGet(0))
			fc.EmitInstr(wasm.LocalGet(1))
			fc.EmitInstr(wasm.StructNew(node))
		})
	ctx.EmitExport("cons", wasm.KindFunc, cons)

	triple := ctx.EmitFunc(nil, []wasm.ValueType{wasm.RefIdx(intArray, false)},
		func(fc *emit.Context, _ uint32) {
			fc.EmitInstr(wasm.I32Const(1))
			fc.EmitInstr(wasm.I32Const(2))
			fc.EmitInstr(wasm.I32Const(3))
			fc.EmitInstr(wasm.ArrayNewFixed(intArray, 3))
		})
	ctx.EmitExport("triple", wasm.KindFunc, triple)

	// Taking make_point by reference forces the declarative element segment.
	ctx.EmitFuncRef(makePoint)
	ctx.EmitGlobal(false, wasm.Ref(wasm.HeapFunc, true),
		[]wasm.Instruction{wasm.RefFunc(makePoint)})

	return ctx.Assemble()
}
