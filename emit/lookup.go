package emit

import (
	"github.com/wippyai/wasm-emit/errors"
	"github.com/wippyai/wasm-emit/wasm"
)

// The lookup layer resolves already-defined type indices back to their
// structural shapes so the code generator can make type-directed emission
// decisions. All lookups are read-only; calling them on an index that is
// still mid-deferred-resolution is a contract violation.

// Type returns the defined type at idx.
func (c *Context) Type(idx uint32) wasm.DefType {
	return c.state.types.At(idx)
}

// FuncSignature returns the signature of the function-shaped type at idx.
func (c *Context) FuncSignature(idx uint32) *wasm.FuncType {
	dt := c.Type(idx)
	if dt.Kind != wasm.DefKindFunc {
		panic(errors.ShapeMismatch(idx, "func", shapeName(dt)))
	}
	return dt.Func
}

// ParamType returns the i-th parameter type of the function-shaped type at
// idx.
func (c *Context) ParamType(idx uint32, i int) wasm.ValueType {
	sig := c.FuncSignature(idx)
	if i < 0 || i >= len(sig.Params) {
		panic(errors.OutOfRange(errors.PhaseLookup, "params", uint32(i), len(sig.Params)))
	}
	return sig.Params[i]
}

// FieldType returns the i-th field of the struct-shaped type at idx.
func (c *Context) FieldType(idx uint32, i int) wasm.FieldType {
	dt := c.Type(idx)
	if dt.Kind != wasm.DefKindStruct {
		panic(errors.ShapeMismatch(idx, "struct", shapeName(dt)))
	}
	if i < 0 || i >= len(dt.Struct.Fields) {
		panic(errors.OutOfRange(errors.PhaseLookup, "fields", uint32(i), len(dt.Struct.Fields)))
	}
	return dt.Struct.Fields[i]
}

// FieldRefTarget returns the type index a reference-typed struct field
// points at. Fields that are packed, non-reference, or reference an
// abstract heap type are shape violations.
func (c *Context) FieldRefTarget(idx uint32, i int) uint32 {
	f := c.FieldType(idx, i)
	st := f.Type
	if st.Packed != 0 || st.Val.Kind != wasm.ValueKindRef || st.Val.Ref.Heap < 0 {
		panic(errors.ShapeMismatch(idx, "type-indexed reference field", "other"))
	}
	return uint32(st.Val.Ref.Heap)
}

func shapeName(dt wasm.DefType) string {
	switch dt.Kind {
	case wasm.DefKindFunc:
		return "func"
	case wasm.DefKindStruct:
		return "struct"
	case wasm.DefKindArray:
		return "array"
	}
	return "unknown"
}
