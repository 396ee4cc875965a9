package wasm

import (
	"github.com/wippyai/wasm-emit/wasm/internal/binary"
)

// Encode encodes the module to WebAssembly binary format.
func (m *Module) Encode() []byte {
	w := binary.NewWriter()

	// Magic number and version
	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)

	// Type section
	if len(m.Types) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Types)))
		for _, dt := range m.Types {
			writeDefType(sec, dt)
		}
		writeSection(w, SectionType, sec.Bytes())
	}

	// Import section
	if len(m.Imports) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Imports)))
		for _, imp := range m.Imports {
			sec.WriteName(imp.Module)
			sec.WriteName(imp.Name)
			sec.Byte(imp.Desc.Kind)
			switch imp.Desc.Kind {
			case KindFunc:
				sec.WriteU32(imp.Desc.TypeIdx)
			case KindMemory:
				if imp.Desc.Memory != nil {
					writeLimits(sec, *imp.Desc.Memory)
				}
			case KindGlobal:
				if imp.Desc.Global != nil {
					writeGlobalType(sec, *imp.Desc.Global)
				}
			}
		}
		writeSection(w, SectionImport, sec.Bytes())
	}

	// Function section
	if len(m.Funcs) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Funcs)))
		for _, fn := range m.Funcs {
			sec.WriteU32(fn.TypeIdx)
		}
		writeSection(w, SectionFunction, sec.Bytes())
	}

	// Memory section
	if len(m.Memories) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Memories)))
		for _, mem := range m.Memories {
			writeLimits(sec, mem)
		}
		writeSection(w, SectionMemory, sec.Bytes())
	}

	// Global section
	if len(m.Globals) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Globals)))
		for _, g := range m.Globals {
			writeGlobalType(sec, g.Type)
			writeExpr(sec, g.Init)
		}
		writeSection(w, SectionGlobal, sec.Bytes())
	}

	// Export section
	if len(m.Exports) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Exports)))
		for _, exp := range m.Exports {
			sec.WriteName(exp.Name)
			sec.Byte(exp.Kind)
			sec.WriteU32(exp.Idx)
		}
		writeSection(w, SectionExport, sec.Bytes())
	}

	// Start section
	if m.Start != nil {
		sec := binary.NewWriter()
		sec.WriteU32(*m.Start)
		writeSection(w, SectionStart, sec.Bytes())
	}

	// Element section
	if len(m.Elements) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Elements)))
		for _, elem := range m.Elements {
			sec.WriteU32(elem.Flags)
			// Plain nullable funcref/externref use the single-byte
			// shorthand so pre-GC engines accept the segment.
			switch {
			case elem.RefType.Nullable && elem.RefType.Heap == HeapFunc:
				sec.Byte(byte(ValFuncRef))
			case elem.RefType.Nullable && elem.RefType.Heap == HeapExtern:
				sec.Byte(byte(ValExtern))
			default:
				writeRefType(sec, elem.RefType)
			}
			sec.WriteU32(uint32(len(elem.Exprs)))
			for _, expr := range elem.Exprs {
				writeExpr(sec, expr)
			}
		}
		writeSection(w, SectionElement, sec.Bytes())
	}

	// Code section
	if len(m.Funcs) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Funcs)))
		for _, fn := range m.Funcs {
			body := binary.NewWriter()
			writeLocals(body, fn.Locals)
			writeExpr(body, fn.Body)
			sec.WriteU32(uint32(body.Len()))
			sec.WriteBytes(body.Bytes())
		}
		writeSection(w, SectionCode, sec.Bytes())
	}

	// Data section
	if len(m.Data) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Data)))
		for _, d := range m.Data {
			sec.WriteU32(0) // active, memory 0
			writeExpr(sec, d.Offset)
			sec.WriteU32(uint32(len(d.Init)))
			sec.WriteBytes(d.Init)
		}
		writeSection(w, SectionData, sec.Bytes())
	}

	return w.Bytes()
}

func writeSection(w *binary.Writer, id byte, data []byte) {
	w.Byte(id)
	w.WriteU32(uint32(len(data)))
	w.WriteBytes(data)
}

// writeExpr flattens an instruction tree and terminates it with end.
func writeExpr(w *binary.Writer, instrs []Instruction) {
	for i := range instrs {
		writeInstruction(w, &instrs[i])
	}
	w.Byte(OpEnd)
}

func writeInstruction(w *binary.Writer, instr *Instruction) {
	w.Byte(instr.Opcode)

	switch instr.Opcode {
	case OpBlock, OpLoop:
		imm := instr.Imm.(BlockImm)
		w.WriteS64(int64(imm.Type))
		writeExpr(w, instr.Body)
		return

	case OpIf:
		imm := instr.Imm.(BlockImm)
		w.WriteS64(int64(imm.Type))
		for i := range instr.Body {
			writeInstruction(w, &instr.Body[i])
		}
		if len(instr.Else) > 0 {
			w.Byte(OpElse)
			for i := range instr.Else {
				writeInstruction(w, &instr.Else[i])
			}
		}
		w.Byte(OpEnd)
		return

	case OpLet:
		imm := instr.Imm.(LetImm)
		w.WriteS64(int64(imm.Type))
		writeLocals(w, imm.Locals)
		writeExpr(w, instr.Body)
		return

	case OpBr, OpBrIf, OpBrOnNull, OpBrOnNonNull:
		imm := instr.Imm.(BranchImm)
		w.WriteU32(imm.LabelIdx)

	case OpBrTable:
		imm := instr.Imm.(BrTableImm)
		w.WriteU32(uint32(len(imm.Labels)))
		for _, l := range imm.Labels {
			w.WriteU32(l)
		}
		w.WriteU32(imm.Default)

	case OpCall, OpReturnCall:
		imm := instr.Imm.(CallImm)
		w.WriteU32(imm.FuncIdx)

	case OpCallRef, OpReturnCallRef:
		imm := instr.Imm.(CallRefImm)
		w.WriteU32(imm.TypeIdx)

	case OpLocalGet, OpLocalSet, OpLocalTee:
		imm := instr.Imm.(LocalImm)
		w.WriteU32(imm.LocalIdx)

	case OpGlobalGet, OpGlobalSet:
		imm := instr.Imm.(GlobalImm)
		w.WriteU32(imm.GlobalIdx)

	case OpI32Load, OpI64Load, OpF32Load, OpF64Load,
		OpI32Load8S, OpI32Load8U, OpI32Load16S, OpI32Load16U,
		OpI32Store, OpI64Store, OpF32Store, OpF64Store,
		OpI32Store8, OpI32Store16:
		imm := instr.Imm.(MemoryImm)
		w.WriteU32(imm.Align)
		w.WriteU64(imm.Offset)

	case OpMemorySize, OpMemoryGrow:
		w.Byte(0) // memory index

	case OpI32Const:
		imm := instr.Imm.(I32Imm)
		w.WriteS32(imm.Value)

	case OpI64Const:
		imm := instr.Imm.(I64Imm)
		w.WriteS64(imm.Value)

	case OpF32Const:
		imm := instr.Imm.(F32Imm)
		w.WriteF32(imm.Value)

	case OpF64Const:
		imm := instr.Imm.(F64Imm)
		w.WriteF64(imm.Value)

	case OpRefNull:
		imm := instr.Imm.(RefNullImm)
		w.WriteS64(imm.HeapType)

	case OpRefFunc:
		imm := instr.Imm.(RefFuncImm)
		w.WriteU32(imm.FuncIdx)

	case OpPrefixGC:
		writeGCImmediate(w, instr.Imm.(GCImm))
	}
}

func writeGCImmediate(w *binary.Writer, imm GCImm) {
	w.WriteU32(imm.SubOpcode)

	switch imm.SubOpcode {
	case GCStructNew, GCStructNewDefault:
		w.WriteU32(imm.TypeIdx)

	case GCStructGet, GCStructGetS, GCStructGetU, GCStructSet:
		w.WriteU32(imm.TypeIdx)
		w.WriteU32(imm.FieldIdx)

	case GCArrayNew, GCArrayNewDefault, GCArrayGet, GCArrayGetS, GCArrayGetU,
		GCArraySet, GCArrayFill:
		w.WriteU32(imm.TypeIdx)

	case GCArrayNewFixed:
		w.WriteU32(imm.TypeIdx)
		w.WriteU32(imm.Size)

	case GCArrayNewData, GCArrayInitData:
		w.WriteU32(imm.TypeIdx)
		w.WriteU32(imm.DataIdx)

	case GCArrayNewElem, GCArrayInitElem:
		w.WriteU32(imm.TypeIdx)
		w.WriteU32(imm.ElemIdx)

	case GCArrayCopy:
		w.WriteU32(imm.TypeIdx)
		w.WriteU32(imm.TypeIdx2)

	case GCRefTest, GCRefTestNull, GCRefCast, GCRefCastNull:
		w.WriteS64(imm.HeapType)

	case GCBrOnCast, GCBrOnCastFail:
		w.Byte(imm.CastFlags)
		w.WriteU32(imm.LabelIdx)
		w.WriteS64(imm.HeapType)
		w.WriteS64(imm.HeapType2)

	case GCArrayLen, GCAnyConvertExtern, GCExternConvertAny,
		GCRefI31, GCI31GetS, GCI31GetU:
		// No immediates
	}
}

// writeLocals writes a locals vector, compressing runs of equal types.
func writeLocals(w *binary.Writer, locals []ValueType) {
	type run struct {
		t     ValueType
		count uint32
	}
	var runs []run
	for _, t := range locals {
		if len(runs) > 0 && runs[len(runs)-1].t == t {
			runs[len(runs)-1].count++
			continue
		}
		runs = append(runs, run{t: t, count: 1})
	}
	w.WriteU32(uint32(len(runs)))
	for _, r := range runs {
		w.WriteU32(r.count)
		writeValueType(w, r.t)
	}
}

func writeValueType(w *binary.Writer, t ValueType) {
	if t.Kind == ValueKindRef {
		writeRefType(w, t.Ref)
		return
	}
	w.Byte(byte(t.Val))
}

func writeRefType(w *binary.Writer, r RefType) {
	if r.Nullable {
		w.Byte(byte(ValRefNull))
	} else {
		w.Byte(byte(ValRef))
	}
	w.WriteS64(r.Heap)
}

func writeValueTypes(w *binary.Writer, types []ValueType) {
	w.WriteU32(uint32(len(types)))
	for _, t := range types {
		writeValueType(w, t)
	}
}

func writeLimits(w *binary.Writer, l Limits) {
	if l.Max != nil {
		w.Byte(0x01)
		w.WriteU32(uint32(l.Min))
		w.WriteU32(uint32(*l.Max))
	} else {
		w.Byte(0x00)
		w.WriteU32(uint32(l.Min))
	}
}

func writeGlobalType(w *binary.Writer, g GlobalType) {
	writeValueType(w, g.Type)
	if g.Mutable {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
}

// encodeDefType produces the canonical binary form of a defined type.
// DefType.Key uses this encoding as the structural identity of the type.
func encodeDefType(dt DefType) []byte {
	w := binary.NewWriter()
	writeDefType(w, dt)
	return w.Bytes()
}

func writeDefType(w *binary.Writer, dt DefType) {
	if len(dt.Parents) > 0 || !dt.Final {
		if dt.Final {
			w.Byte(SubFinalByte)
		} else {
			w.Byte(SubTypeByte)
		}
		w.WriteU32(uint32(len(dt.Parents)))
		for _, p := range dt.Parents {
			w.WriteU32(p)
		}
	}
	switch dt.Kind {
	case DefKindFunc:
		w.Byte(FuncTypeByte)
		writeValueTypes(w, dt.Func.Params)
		writeValueTypes(w, dt.Func.Results)
	case DefKindStruct:
		w.Byte(StructTypeByte)
		w.WriteU32(uint32(len(dt.Struct.Fields)))
		for _, f := range dt.Struct.Fields {
			writeFieldType(w, f)
		}
	case DefKindArray:
		w.Byte(ArrayTypeByte)
		writeFieldType(w, dt.Array.Element)
	}
}

func writeFieldType(w *binary.Writer, ft FieldType) {
	if ft.Type.Packed != 0 {
		w.Byte(ft.Type.Packed)
	} else {
		writeValueType(w, ft.Type.Val)
	}
	if ft.Mutable {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
}
