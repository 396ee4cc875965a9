// Package wasmemit provides the incremental module-construction layer of a
// WebAssembly compiler backend, targeting core modules with the GC extension.
//
// A code generator drives this library by emitting entities (types,
// functions, globals, imports, exports, locals, data, instructions) in
// whatever order its input dictates, including mutually recursive orders,
// and receives stable, position-correct indices for each one. At the end of
// a pass it assembles a single structurally well-formed module value.
//
// # Architecture Overview
//
// The library is organized into a small number of packages:
//
//	wasmemit/       Root package (documentation only)
//	├── emit/       Entity tables, emission context, scoped builders, assembly
//	├── wasm/       Core wasm data model and binary encoder (the target AST)
//	├── errors/     Structured contract-violation errors
//	└── cmd/emit/   Showcase builder and interactive export runner
//
// # Quick Start
//
// Build a module that exports an add function:
//
//	ctx := emit.NewContext(nil)
//	fn := ctx.EmitFunc(
//	    []wasm.ValueType{wasm.I32(), wasm.I32()},
//	    []wasm.ValueType{wasm.I32()},
//	    func(fc *emit.Context, self uint32) {
//	        fc.EmitInstr(wasm.LocalGet(0))
//	        fc.EmitInstr(wasm.LocalGet(1))
//	        fc.EmitInstr(wasm.Op(wasm.OpI32Add))
//	    },
//	)
//	ctx.EmitExport("add", wasm.KindFunc, fn)
//	module := ctx.Assemble()
//	bytes := module.Encode()
//
// # Index Stability
//
// Every entity category is an append-only table: the index returned at
// allocation time is the entity's final position in the emitted module.
// Two-phase allocation (allocate now, define later) supports forward and
// mutual references without renumbering.
//
// # Error Model
//
// Misuse of the emission API (reading an undefined slot, defining a handle
// twice, a second start function) indicates a bug in the driving code
// generator, not a runtime condition. These panic immediately with a
// structured *errors.Error naming the offending category and index.
//
// # Concurrency
//
// A Context and its scopes are single-threaded by contract. Independent
// Contexts share no state and may be used from different goroutines.
package wasmemit
