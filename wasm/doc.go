// Package wasm provides the WebAssembly data model and binary encoder used
// as the emission target of this backend.
//
// The model covers core modules plus the GC extension: defined types
// (function signatures, structs, arrays, with subtype declarations),
// reference value types with heap types, and the 0xFB instruction space.
// Instructions are tree-shaped: block-structured constructs own their
// nested sequences, and Encode flattens the tree into the binary format
// with explicit end/else markers.
//
// Defined types are structurally comparable through DefType.Key, which
// returns the canonical binary encoding. The emit package keys its
// deduplication cache on it.
//
// This package never decodes or validates foreign binaries; it only
// produces them.
package wasm
