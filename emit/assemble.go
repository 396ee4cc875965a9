package emit

import (
	"go.uber.org/zap"

	"github.com/wippyai/wasm-emit/errors"
	"github.com/wippyai/wasm-emit/wasm"
)

// Assemble drains every module-wide table exactly once and produces the
// final module value. It synthesizes the declarative element segment from
// the referenced-function set and derives the memory declaration from the
// total data bytes written. A Context must not be assembled twice.
func (c *Context) Assemble() *wasm.Module {
	st := c.state
	if st.assembled {
		panic(errors.New(errors.PhaseAssemble, errors.KindRedefinedEntity).
			Category("module").Detail("context already assembled").Build())
	}
	st.assembled = true

	m := &wasm.Module{
		Types:   st.types.Drain(),
		Imports: st.imports.Drain(),
		Globals: st.globals.Drain(),
		Exports: st.exports.Drain(),
		Data:    st.data.Drain(),
		Start:   st.start,
	}

	fns := st.funcs.Drain()
	m.Funcs = make([]wasm.Function, len(fns))
	for i, fn := range fns {
		m.Funcs[i] = wasm.Function{
			TypeIdx: fn.typeIdx,
			Locals:  fn.locals,
			Body:    fn.body,
		}
	}

	// Functions whose identity was taken by reference must be pre-declared
	// in exactly one declarative element segment.
	if len(st.refFuncs) > 0 {
		elem := wasm.Element{
			Flags:   7,
			RefType: wasm.RefType{Nullable: true, Heap: wasm.HeapFunc},
			Exprs:   make([][]wasm.Instruction, len(st.refFuncs)),
		}
		for i, fi := range st.refFuncs {
			elem.Exprs[i] = []wasm.Instruction{wasm.RefFunc(fi)}
		}
		m.Elements = []wasm.Element{elem}
	}

	// One fixed-size memory sized to hold everything the data cursor
	// covered; none at all when no data was written.
	if st.dataCursor > 0 {
		pages := (uint64(st.dataCursor) + wasm.PageSize - 1) / wasm.PageSize
		max := pages
		m.Memories = []wasm.Limits{{Min: pages, Max: &max}}
	}

	Logger().Debug("module assembled",
		zap.Int("types", len(m.Types)),
		zap.Int("imports", len(m.Imports)),
		zap.Int("funcs", len(m.Funcs)),
		zap.Int("globals", len(m.Globals)),
		zap.Int("exports", len(m.Exports)),
		zap.Int("data_segments", len(m.Data)),
		zap.Int("referenced_funcs", len(st.refFuncs)),
		zap.Uint32("data_bytes", st.dataCursor))

	return m
}
