package emit

import (
	"github.com/wippyai/wasm-emit/wasm"
)

// HeadFunc builds the single parent-scope instruction that a drained child
// sequence folds into. wasm.Block, wasm.Loop, and wasm.If satisfy it.
type HeadFunc func(bt wasm.BlockType, body []wasm.Instruction) wasm.Instruction

// EmitBlock opens a child scope sharing every table except a fresh
// instruction table, runs body in it, and emits head(bt, captured) in the
// receiver's scope. It is the uniform builder for all block-structured
// control instructions.
func (c *Context) EmitBlock(head HeadFunc, bt wasm.BlockType, body func(*Context)) {
	child := c.scope(false)
	body(child)
	c.EmitInstr(head(bt, child.instrs.Drain()))
}

// EmitIf builds a two-armed conditional from independent then/else scopes.
// els may be nil for a then-only conditional.
func (c *Context) EmitIf(bt wasm.BlockType, then func(*Context), els func(*Context)) {
	tc := c.scope(false)
	then(tc)
	var elseBody []wasm.Instruction
	if els != nil {
		ec := c.scope(false)
		els(ec)
		elseBody = ec.instrs.Drain()
	}
	c.EmitInstr(wasm.IfElse(bt, tc.instrs.Drain(), elseBody))
}

// EmitLet opens a child scope with fresh instructions and a fresh locals
// table seeded with localTypes (indices 0..n-1 inside the scope; body may
// add more with EmitLocal), then folds the captured sequence and the
// scope's locals into one scoped-binding instruction.
func (c *Context) EmitLet(bt wasm.BlockType, localTypes []wasm.ValueType, body func(*Context)) {
	child := c.scope(true)
	for _, t := range localTypes {
		child.EmitLocal(t)
	}
	body(child)
	c.EmitInstr(wasm.Let(bt, child.locals.Drain(), child.instrs.Drain()))
}

// EmitFunc allocates a function index, dedups its signature into the type
// table, and generates its body in a child scope with fresh locals and
// fresh instructions. body receives the scope and the function's own index
// so it can emit self-recursive calls and references before the body
// completes. One parameter local index is reserved per entry of params.
func (c *Context) EmitFunc(params, results []wasm.ValueType, body func(fc *Context, self uint32)) uint32 {
	idx, resolve := c.EmitFuncDeferred()
	resolve(params, results, body)
	return idx
}

// EmitFuncDeferred splits function emission in two: the index is allocated
// now, the signature and body are supplied later through the returned
// one-shot resolver. Mutually recursive function groups allocate all their
// indices first, then resolve each body in any order.
func (c *Context) EmitFuncDeferred() (uint32, func(params, results []wasm.ValueType, body func(fc *Context, self uint32))) {
	h := c.state.funcs.Allocate()
	resolve := func(params, results []wasm.ValueType, body func(fc *Context, self uint32)) {
		typeIdx := c.EmitType(wasm.FuncDef(params, results))
		fc := c.scope(true)
		for range params {
			fc.EmitParam()
		}
		body(fc, h.Index())
		c.state.funcs.Define(h, function{
			typeIdx: typeIdx,
			locals:  fc.locals.Drain(),
			body:    fc.instrs.Drain(),
		})
	}
	return h.Index(), resolve
}
