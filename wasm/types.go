package wasm

// ValType is a single-byte value type or reference shorthand.
// See constants.go for ValI32, ValI64, ValF32, ValF64, etc.
type ValType byte

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	case ValFuncRef:
		return "funcref"
	case ValExtern:
		return "externref"
	case ValAnyRef:
		return "anyref"
	case ValEqRef:
		return "eqref"
	case ValI31Ref:
		return "i31ref"
	case ValStructRef:
		return "structref"
	case ValArrayRef:
		return "arrayref"
	case ValRefNull:
		return "ref null"
	case ValRef:
		return "ref"
	default:
		return "unknown"
	}
}

// RefType is a reference type with nullability and heap type.
// Heap is encoded as s33: negative for abstract types, non-negative for
// type indices.
type RefType struct {
	Nullable bool
	Heap     int64
}

// ValueType is any type a local, parameter, result, or global can carry:
// either a simple numeric/shorthand type or a full reference type.
type ValueType struct {
	Kind byte    // ValueKindSimple or ValueKindRef
	Val  ValType // For simple types
	Ref  RefType // For reference types (0x63, 0x64)
}

// ValueType kinds
const (
	ValueKindSimple byte = 0 // Single-byte valtype
	ValueKindRef    byte = 1 // Reference type with heap type
)

// I32 returns the i32 value type.
func I32() ValueType { return ValueType{Kind: ValueKindSimple, Val: ValI32} }

// I64 returns the i64 value type.
func I64() ValueType { return ValueType{Kind: ValueKindSimple, Val: ValI64} }

// F32 returns the f32 value type.
func F32() ValueType { return ValueType{Kind: ValueKindSimple, Val: ValF32} }

// F64 returns the f64 value type.
func F64() ValueType { return ValueType{Kind: ValueKindSimple, Val: ValF64} }

// Simple returns a ValueType for any single-byte valtype.
func Simple(v ValType) ValueType { return ValueType{Kind: ValueKindSimple, Val: v} }

// Ref returns a reference value type for the given heap type.
func Ref(heap int64, nullable bool) ValueType {
	return ValueType{Kind: ValueKindRef, Ref: RefType{Nullable: nullable, Heap: heap}}
}

// RefIdx returns a reference value type targeting a defined type index.
func RefIdx(typeIdx uint32, nullable bool) ValueType {
	return Ref(int64(typeIdx), nullable)
}

func (t ValueType) String() string {
	if t.Kind == ValueKindRef {
		if t.Ref.Nullable {
			return "(ref null ...)"
		}
		return "(ref ...)"
	}
	return t.Val.String()
}

// IsRef reports whether the value type is a reference type (full or
// shorthand).
func (t ValueType) IsRef() bool {
	if t.Kind == ValueKindRef {
		return true
	}
	switch t.Val {
	case ValFuncRef, ValExtern, ValAnyRef, ValEqRef, ValI31Ref, ValStructRef, ValArrayRef:
		return true
	}
	return false
}

// StorageType is a type storable in a struct field or array element:
// a value type or a packed i8/i16.
type StorageType struct {
	Val    ValueType
	Packed byte // PackedI8 or PackedI16; zero for unpacked
}

// Storage wraps a value type as an unpacked storage type.
func Storage(t ValueType) StorageType { return StorageType{Val: t} }

// PackedStorage returns an i8 or i16 packed storage type.
func PackedStorage(p byte) StorageType { return StorageType{Packed: p} }

// Unpacked returns the value type a read of this storage produces.
// Packed fields widen to i32.
func (s StorageType) Unpacked() ValueType {
	if s.Packed != 0 {
		return I32()
	}
	return s.Val
}

// FieldType is a struct field or array element with mutability.
type FieldType struct {
	Type    StorageType
	Mutable bool
}

// Field returns an unpacked field of the given value type.
func Field(t ValueType, mutable bool) FieldType {
	return FieldType{Type: Storage(t), Mutable: mutable}
}

// PackedField returns a packed i8/i16 field.
func PackedField(p byte, mutable bool) FieldType {
	return FieldType{Type: PackedStorage(p), Mutable: mutable}
}

// FuncType is a function signature.
type FuncType struct {
	Params  []ValueType
	Results []ValueType
}

// StructType is a GC struct composite type.
type StructType struct {
	Fields []FieldType
}

// ArrayType is a GC array composite type.
type ArrayType struct {
	Element FieldType
}

// DefType kinds
const (
	DefKindFunc   byte = 0
	DefKindStruct byte = 1
	DefKindArray  byte = 2
)

// DefType is one entry of the type index space: a composite type together
// with its subtyping declaration. The zero subtyping declaration (final, no
// parents) encodes as the plain composite shorthand.
type DefType struct {
	Func    *FuncType
	Struct  *StructType
	Array   *ArrayType
	Parents []uint32
	Kind    byte
	Final   bool
}

// FuncDef returns a final function defined type.
func FuncDef(params, results []ValueType) DefType {
	return DefType{Kind: DefKindFunc, Func: &FuncType{Params: params, Results: results}, Final: true}
}

// StructDef returns a final struct defined type.
func StructDef(fields ...FieldType) DefType {
	return DefType{Kind: DefKindStruct, Struct: &StructType{Fields: fields}, Final: true}
}

// ArrayDef returns a final array defined type.
func ArrayDef(elem FieldType) DefType {
	return DefType{Kind: DefKindArray, Array: &ArrayType{Element: elem}, Final: true}
}

// WithParent returns a copy declared as a non-final subtype of parent.
func (d DefType) WithParent(parent uint32) DefType {
	d.Parents = append([]uint32{parent}, d.Parents...)
	return d
}

// Open returns a copy declared non-final so later types may extend it.
func (d DefType) Open() DefType {
	d.Final = false
	return d
}

// Key returns the canonical binary encoding of the defined type as a
// string, suitable as a map key for structural deduplication. Two defined
// types are structurally equal iff their keys are equal.
func (d DefType) Key() string {
	return string(encodeDefType(d))
}

// Import is an imported function, global, or memory.
type Import struct {
	Module string
	Name   string
	Desc   ImportDesc
}

// ImportDesc describes an imported item.
// Kind uses KindFunc, KindMemory, or KindGlobal.
type ImportDesc struct {
	Global  *GlobalType
	Memory  *Limits
	TypeIdx uint32
	Kind    byte
}

// ImportFunc describes a function import with the given type index.
func ImportFunc(typeIdx uint32) ImportDesc {
	return ImportDesc{Kind: KindFunc, TypeIdx: typeIdx}
}

// ImportGlobal describes a global import.
func ImportGlobal(t ValueType, mutable bool) ImportDesc {
	return ImportDesc{Kind: KindGlobal, Global: &GlobalType{Type: t, Mutable: mutable}}
}

// ImportMemory describes a memory import.
func ImportMemory(limits Limits) ImportDesc {
	return ImportDesc{Kind: KindMemory, Memory: &limits}
}

// Limits describes size constraints for memories.
type Limits struct {
	Max *uint64
	Min uint64
}

// GlobalType describes a global variable's type and mutability.
type GlobalType struct {
	Type    ValueType
	Mutable bool
}

// Global is a global variable with its initializer expression.
type Global struct {
	Init []Instruction
	Type GlobalType
}

// Export describes an exported item.
// Kind uses KindFunc, KindMemory, or KindGlobal.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// Element is an element segment. Only the declarative expression form
// (flags 7) is produced by this backend: a reftype plus one initializer
// expression per entry.
type Element struct {
	RefType RefType
	Exprs   [][]Instruction
	Flags   uint32
}

// DataSegment is an active data segment at a computed offset in memory 0.
type DataSegment struct {
	Offset []Instruction
	Init   []byte
}

// Function is a locally defined function: its signature's type index, its
// declared locals (parameters excluded), and its body.
type Function struct {
	Body    []Instruction
	Locals  []ValueType
	TypeIdx uint32
}

// Module is an assembled WebAssembly module.
type Module struct {
	Types    []DefType
	Imports  []Import
	Funcs    []Function
	Memories []Limits
	Globals  []Global
	Exports  []Export
	Start    *uint32
	Elements []Element
	Data     []DataSegment
}

// NumImportedFuncs returns the number of imported functions.
func (m *Module) NumImportedFuncs() int {
	count := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind == KindFunc {
			count++
		}
	}
	return count
}

// NumImportedGlobals returns the number of imported globals.
func (m *Module) NumImportedGlobals() int {
	count := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind == KindGlobal {
			count++
		}
	}
	return count
}

// FuncTypeAt returns the signature of a function by its index in the
// function index space (imports first), or nil if out of range or the
// type entry is not function-shaped.
func (m *Module) FuncTypeAt(funcIdx uint32) *FuncType {
	numImported := uint32(m.NumImportedFuncs())
	if funcIdx < numImported {
		seen := uint32(0)
		for i := range m.Imports {
			if m.Imports[i].Desc.Kind != KindFunc {
				continue
			}
			if seen == funcIdx {
				return m.funcTypeByIdx(m.Imports[i].Desc.TypeIdx)
			}
			seen++
		}
		return nil
	}
	localIdx := funcIdx - numImported
	if int(localIdx) >= len(m.Funcs) {
		return nil
	}
	return m.funcTypeByIdx(m.Funcs[localIdx].TypeIdx)
}

func (m *Module) funcTypeByIdx(typeIdx uint32) *FuncType {
	if int(typeIdx) >= len(m.Types) {
		return nil
	}
	if m.Types[typeIdx].Kind != DefKindFunc {
		return nil
	}
	return m.Types[typeIdx].Func
}
