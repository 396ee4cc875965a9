package wasm

// Instruction is one instruction in tree form: block-structured constructs
// carry their nested sequences in Body (and Else for conditionals) rather
// than relying on end/else markers in a flat stream. Encoding flattens the
// tree back to the binary form.
type Instruction struct {
	Imm    interface{}
	Body   []Instruction
	Else   []Instruction
	Opcode byte
}

// BlockType is the s33 block type: negative shorthands (see BlockVoid,
// BlockI32, ...) or a non-negative type index.
type BlockType int64

// BlockImm holds the block type for block, loop, and if.
type BlockImm struct {
	Type BlockType
}

// LetImm holds the block type and scoped local declarations for let.
type LetImm struct {
	Locals []ValueType
	Type   BlockType
}

// BranchImm holds the label index for br, br_if, br_on_null, br_on_non_null.
type BranchImm struct {
	LabelIdx uint32
}

// BrTableImm holds the label table for br_table.
type BrTableImm struct {
	Labels  []uint32
	Default uint32
}

// CallImm holds the function index for call and return_call.
type CallImm struct {
	FuncIdx uint32
}

// CallRefImm holds the type index for call_ref and return_call_ref.
type CallRefImm struct {
	TypeIdx uint32
}

// LocalImm holds the local index for local.get, local.set, local.tee.
type LocalImm struct {
	LocalIdx uint32
}

// GlobalImm holds the global index for global.get and global.set.
type GlobalImm struct {
	GlobalIdx uint32
}

// MemoryImm holds memory access parameters for load and store instructions.
type MemoryImm struct {
	Offset uint64
	Align  uint32
}

// I32Imm holds the constant value for i32.const.
type I32Imm struct {
	Value int32
}

// I64Imm holds the constant value for i64.const.
type I64Imm struct {
	Value int64
}

// F32Imm holds the constant value for f32.const.
type F32Imm struct {
	Value float32
}

// F64Imm holds the constant value for f64.const.
type F64Imm struct {
	Value float64
}

// RefNullImm holds the heap type for ref.null.
type RefNullImm struct {
	HeapType int64
}

// RefFuncImm holds the function index for ref.func.
type RefFuncImm struct {
	FuncIdx uint32
}

// GCImm holds GC instruction immediates for struct/array/ref operations.
type GCImm struct {
	SubOpcode uint32
	TypeIdx   uint32 // struct.new, array.new, ...
	FieldIdx  uint32 // struct.get/set
	TypeIdx2  uint32 // array.copy source
	DataIdx   uint32 // array.new_data, array.init_data
	ElemIdx   uint32 // array.new_elem, array.init_elem
	Size      uint32 // array.new_fixed
	LabelIdx  uint32 // br_on_cast
	HeapType  int64  // ref.test, ref.cast (s33)
	HeapType2 int64  // br_on_cast target
	CastFlags byte   // br_on_cast nullability flags
}

// Op returns a bare instruction with no immediates (numeric ops, drop,
// return, unreachable, ...).
func Op(opcode byte) Instruction {
	return Instruction{Opcode: opcode}
}

// I32Const returns i32.const v.
func I32Const(v int32) Instruction {
	return Instruction{Opcode: OpI32Const, Imm: I32Imm{Value: v}}
}

// I64Const returns i64.const v.
func I64Const(v int64) Instruction {
	return Instruction{Opcode: OpI64Const, Imm: I64Imm{Value: v}}
}

// F32Const returns f32.const v.
func F32Const(v float32) Instruction {
	return Instruction{Opcode: OpF32Const, Imm: F32Imm{Value: v}}
}

// F64Const returns f64.const v.
func F64Const(v float64) Instruction {
	return Instruction{Opcode: OpF64Const, Imm: F64Imm{Value: v}}
}

// LocalGet returns local.get idx.
func LocalGet(idx uint32) Instruction {
	return Instruction{Opcode: OpLocalGet, Imm: LocalImm{LocalIdx: idx}}
}

// LocalSet returns local.set idx.
func LocalSet(idx uint32) Instruction {
	return Instruction{Opcode: OpLocalSet, Imm: LocalImm{LocalIdx: idx}}
}

// LocalTee returns local.tee idx.
func LocalTee(idx uint32) Instruction {
	return Instruction{Opcode: OpLocalTee, Imm: LocalImm{LocalIdx: idx}}
}

// GlobalGet returns global.get idx.
func GlobalGet(idx uint32) Instruction {
	return Instruction{Opcode: OpGlobalGet, Imm: GlobalImm{GlobalIdx: idx}}
}

// GlobalSet returns global.set idx.
func GlobalSet(idx uint32) Instruction {
	return Instruction{Opcode: OpGlobalSet, Imm: GlobalImm{GlobalIdx: idx}}
}

// Call returns call funcidx.
func Call(funcIdx uint32) Instruction {
	return Instruction{Opcode: OpCall, Imm: CallImm{FuncIdx: funcIdx}}
}

// ReturnCall returns return_call funcidx.
func ReturnCall(funcIdx uint32) Instruction {
	return Instruction{Opcode: OpReturnCall, Imm: CallImm{FuncIdx: funcIdx}}
}

// CallRef returns call_ref typeidx.
func CallRef(typeIdx uint32) Instruction {
	return Instruction{Opcode: OpCallRef, Imm: CallRefImm{TypeIdx: typeIdx}}
}

// Br returns br label.
func Br(label uint32) Instruction {
	return Instruction{Opcode: OpBr, Imm: BranchImm{LabelIdx: label}}
}

// BrIf returns br_if label.
func BrIf(label uint32) Instruction {
	return Instruction{Opcode: OpBrIf, Imm: BranchImm{LabelIdx: label}}
}

// BrTable returns br_table with the given labels and default.
func BrTable(labels []uint32, def uint32) Instruction {
	return Instruction{Opcode: OpBrTable, Imm: BrTableImm{Labels: labels, Default: def}}
}

// Return returns the return instruction.
func Return() Instruction { return Op(OpReturn) }

// Drop returns the drop instruction.
func Drop() Instruction { return Op(OpDrop) }

// Unreachable returns the unreachable instruction.
func Unreachable() Instruction { return Op(OpUnreachable) }

// Block returns a block instruction owning body.
func Block(bt BlockType, body []Instruction) Instruction {
	return Instruction{Opcode: OpBlock, Imm: BlockImm{Type: bt}, Body: body}
}

// Loop returns a loop instruction owning body.
func Loop(bt BlockType, body []Instruction) Instruction {
	return Instruction{Opcode: OpLoop, Imm: BlockImm{Type: bt}, Body: body}
}

// If returns a then-only conditional.
func If(bt BlockType, then []Instruction) Instruction {
	return Instruction{Opcode: OpIf, Imm: BlockImm{Type: bt}, Body: then}
}

// IfElse returns a two-armed conditional.
func IfElse(bt BlockType, then, els []Instruction) Instruction {
	return Instruction{Opcode: OpIf, Imm: BlockImm{Type: bt}, Body: then, Else: els}
}

// Let returns a scoped-local binding instruction owning body.
func Let(bt BlockType, locals []ValueType, body []Instruction) Instruction {
	return Instruction{Opcode: OpLet, Imm: LetImm{Type: bt, Locals: locals}, Body: body}
}

// RefNull returns ref.null for the given heap type.
func RefNull(heap int64) Instruction {
	return Instruction{Opcode: OpRefNull, Imm: RefNullImm{HeapType: heap}}
}

// RefFunc returns ref.func funcidx.
func RefFunc(funcIdx uint32) Instruction {
	return Instruction{Opcode: OpRefFunc, Imm: RefFuncImm{FuncIdx: funcIdx}}
}

// RefAsNonNull returns ref.as_non_null.
func RefAsNonNull() Instruction { return Op(OpRefAsNonNull) }

// Load returns a load instruction for the given memory opcode.
func Load(opcode byte, align uint32, offset uint64) Instruction {
	return Instruction{Opcode: opcode, Imm: MemoryImm{Align: align, Offset: offset}}
}

// Store returns a store instruction for the given memory opcode.
func Store(opcode byte, align uint32, offset uint64) Instruction {
	return Instruction{Opcode: opcode, Imm: MemoryImm{Align: align, Offset: offset}}
}

// MemorySize returns memory.size for memory 0.
func MemorySize() Instruction {
	return Instruction{Opcode: OpMemorySize}
}

// MemoryGrow returns memory.grow for memory 0.
func MemoryGrow() Instruction {
	return Instruction{Opcode: OpMemoryGrow}
}

// GCOp returns a 0xFB-prefixed instruction with no further immediates
// (array.len, ref.i31, i31.get_s, ...).
func GCOp(sub uint32) Instruction {
	return Instruction{Opcode: OpPrefixGC, Imm: GCImm{SubOpcode: sub}}
}

// StructNew returns struct.new typeidx.
func StructNew(typeIdx uint32) Instruction {
	return Instruction{Opcode: OpPrefixGC, Imm: GCImm{SubOpcode: GCStructNew, TypeIdx: typeIdx}}
}

// StructNewDefault returns struct.new_default typeidx.
func StructNewDefault(typeIdx uint32) Instruction {
	return Instruction{Opcode: OpPrefixGC, Imm: GCImm{SubOpcode: GCStructNewDefault, TypeIdx: typeIdx}}
}

// StructGet returns struct.get typeidx fieldidx.
func StructGet(typeIdx, fieldIdx uint32) Instruction {
	return Instruction{Opcode: OpPrefixGC, Imm: GCImm{SubOpcode: GCStructGet, TypeIdx: typeIdx, FieldIdx: fieldIdx}}
}

// StructSet returns struct.set typeidx fieldidx.
func StructSet(typeIdx, fieldIdx uint32) Instruction {
	return Instruction{Opcode: OpPrefixGC, Imm: GCImm{SubOpcode: GCStructSet, TypeIdx: typeIdx, FieldIdx: fieldIdx}}
}

// ArrayNew returns array.new typeidx.
func ArrayNew(typeIdx uint32) Instruction {
	return Instruction{Opcode: OpPrefixGC, Imm: GCImm{SubOpcode: GCArrayNew, TypeIdx: typeIdx}}
}

// ArrayNewFixed returns array.new_fixed typeidx size.
func ArrayNewFixed(typeIdx, size uint32) Instruction {
	return Instruction{Opcode: OpPrefixGC, Imm: GCImm{SubOpcode: GCArrayNewFixed, TypeIdx: typeIdx, Size: size}}
}

// ArrayNewData returns array.new_data typeidx dataidx.
func ArrayNewData(typeIdx, dataIdx uint32) Instruction {
	return Instruction{Opcode: OpPrefixGC, Imm: GCImm{SubOpcode: GCArrayNewData, TypeIdx: typeIdx, DataIdx: dataIdx}}
}

// ArrayGet returns array.get typeidx.
func ArrayGet(typeIdx uint32) Instruction {
	return Instruction{Opcode: OpPrefixGC, Imm: GCImm{SubOpcode: GCArrayGet, TypeIdx: typeIdx}}
}

// ArraySet returns array.set typeidx.
func ArraySet(typeIdx uint32) Instruction {
	return Instruction{Opcode: OpPrefixGC, Imm: GCImm{SubOpcode: GCArraySet, TypeIdx: typeIdx}}
}

// ArrayLen returns array.len.
func ArrayLen() Instruction { return GCOp(GCArrayLen) }

// RefCast returns ref.cast for the given heap type.
func RefCast(heap int64, nullable bool) Instruction {
	sub := GCRefCast
	if nullable {
		sub = GCRefCastNull
	}
	return Instruction{Opcode: OpPrefixGC, Imm: GCImm{SubOpcode: sub, HeapType: heap}}
}

// RefTest returns ref.test for the given heap type.
func RefTest(heap int64, nullable bool) Instruction {
	sub := GCRefTest
	if nullable {
		sub = GCRefTestNull
	}
	return Instruction{Opcode: OpPrefixGC, Imm: GCImm{SubOpcode: sub, HeapType: heap}}
}

// RefI31 returns ref.i31.
func RefI31() Instruction { return GCOp(GCRefI31) }

// I31GetS returns i31.get_s.
func I31GetS() Instruction { return GCOp(GCI31GetS) }
