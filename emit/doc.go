// Package emit is the incremental module-construction core: it tracks
// every category of module entity in an append-only indexed table,
// supports two-phase allocate-then-define emission for forward and mutual
// references, deduplicates structurally equal defined types, captures
// nested instruction sequences in isolated scopes, and assembles the final
// wasm.Module.
//
// A Context is created once per generation pass. Emission methods hand out
// indices that are final: the k-th allocation in a category is index k-1 in
// the emitted module, regardless of the order definitions arrive in.
//
// Scopes share every table with their parent except instructions (and, for
// let and function scopes, locals), so a type emitted while generating a
// nested block deduplicates against types emitted anywhere else in the
// pass.
//
// All misuse (reading undefined slots, double definition, duplicate start)
// panics with a structured *errors.Error; see the errors package.
package emit
