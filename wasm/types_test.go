package wasm_test

import (
	"testing"

	"github.com/wippyai/wasm-emit/wasm"
)

func TestDefTypeKeyEquality(t *testing.T) {
	tests := []struct {
		name string
		a, b wasm.DefType
		same bool
	}{
		{
			name: "identical signatures",
			a:    wasm.FuncDef([]wasm.ValueType{wasm.I32(), wasm.I64()}, []wasm.ValueType{wasm.F64()}),
			b:    wasm.FuncDef([]wasm.ValueType{wasm.I32(), wasm.I64()}, []wasm.ValueType{wasm.F64()}),
			same: true,
		},
		{
			name: "param order matters",
			a:    wasm.FuncDef([]wasm.ValueType{wasm.I32(), wasm.I64()}, nil),
			b:    wasm.FuncDef([]wasm.ValueType{wasm.I64(), wasm.I32()}, nil),
			same: false,
		},
		{
			name: "params are not results",
			a:    wasm.FuncDef([]wasm.ValueType{wasm.I32()}, nil),
			b:    wasm.FuncDef(nil, []wasm.ValueType{wasm.I32()}),
			same: false,
		},
		{
			name: "identical structs",
			a:    wasm.StructDef(wasm.Field(wasm.I32(), true), wasm.PackedField(wasm.PackedI8, false)),
			b:    wasm.StructDef(wasm.Field(wasm.I32(), true), wasm.PackedField(wasm.PackedI8, false)),
			same: true,
		},
		{
			name: "field mutability matters",
			a:    wasm.StructDef(wasm.Field(wasm.I32(), true)),
			b:    wasm.StructDef(wasm.Field(wasm.I32(), false)),
			same: false,
		},
		{
			name: "packing matters",
			a:    wasm.StructDef(wasm.PackedField(wasm.PackedI8, true)),
			b:    wasm.StructDef(wasm.PackedField(wasm.PackedI16, true)),
			same: false,
		},
		{
			name: "struct is not array",
			a:    wasm.StructDef(wasm.Field(wasm.I32(), true)),
			b:    wasm.ArrayDef(wasm.Field(wasm.I32(), true)),
			same: false,
		},
		{
			name: "reference nullability matters",
			a:    wasm.ArrayDef(wasm.Field(wasm.RefIdx(0, true), true)),
			b:    wasm.ArrayDef(wasm.Field(wasm.RefIdx(0, false), true)),
			same: false,
		},
		{
			name: "reference target matters",
			a:    wasm.ArrayDef(wasm.Field(wasm.RefIdx(0, true), true)),
			b:    wasm.ArrayDef(wasm.Field(wasm.RefIdx(1, true), true)),
			same: false,
		},
		{
			name: "subtyping declaration matters",
			a:    wasm.StructDef(wasm.Field(wasm.I32(), true)),
			b:    wasm.StructDef(wasm.Field(wasm.I32(), true)).WithParent(0),
			same: false,
		},
		{
			name: "finality matters",
			a:    wasm.StructDef(wasm.Field(wasm.I32(), true)),
			b:    wasm.StructDef(wasm.Field(wasm.I32(), true)).Open(),
			same: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Key() == tt.b.Key(); got != tt.same {
				t.Errorf("Key equality = %v, want %v", got, tt.same)
			}
		})
	}
}

func TestValueTypeComparable(t *testing.T) {
	if wasm.I32() != wasm.I32() {
		t.Errorf("I32() values differ")
	}
	if wasm.I32() == wasm.I64() {
		t.Errorf("I32() equals I64()")
	}
	if wasm.RefIdx(3, true) != wasm.RefIdx(3, true) {
		t.Errorf("identical references differ")
	}
	if wasm.RefIdx(3, true) == wasm.RefIdx(3, false) {
		t.Errorf("nullability ignored in comparison")
	}
}

func TestModuleIndexHelpers(t *testing.T) {
	m := &wasm.Module{
		Types: []wasm.DefType{
			wasm.FuncDef(nil, nil),
			wasm.FuncDef([]wasm.ValueType{wasm.I32()}, []wasm.ValueType{wasm.I32()}),
		},
		Imports: []wasm.Import{
			{Module: "env", Name: "a", Desc: wasm.ImportFunc(0)},
			{Module: "env", Name: "g", Desc: wasm.ImportGlobal(wasm.I32(), false)},
			{Module: "env", Name: "b", Desc: wasm.ImportFunc(1)},
		},
		Funcs: []wasm.Function{{TypeIdx: 1}},
	}

	if got := m.NumImportedFuncs(); got != 2 {
		t.Errorf("NumImportedFuncs() = %d, want 2", got)
	}
	if got := m.NumImportedGlobals(); got != 1 {
		t.Errorf("NumImportedGlobals() = %d, want 1", got)
	}

	// Function index space: imports first, then local functions.
	if ft := m.FuncTypeAt(1); ft == nil || len(ft.Params) != 1 {
		t.Errorf("FuncTypeAt(1) = %+v, want (i32) -> (i32)", ft)
	}
	if ft := m.FuncTypeAt(2); ft == nil || len(ft.Params) != 1 {
		t.Errorf("FuncTypeAt(2) = %+v, want (i32) -> (i32)", ft)
	}
}
