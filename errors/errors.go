package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in module construction the violation occurred.
type Phase string

const (
	PhaseEmit     Phase = "emit"     // entity emission
	PhaseLookup   Phase = "lookup"   // type shape resolution
	PhaseScope    Phase = "scope"    // nested scope construction
	PhaseAssemble Phase = "assemble" // terminal module assembly
)

// Kind categorizes the contract violation.
type Kind string

const (
	KindUndefinedEntity Kind = "undefined_entity" // allocated slot read before definition
	KindRedefinedEntity Kind = "redefined_entity" // handle defined twice
	KindImplicitOrder   Kind = "implicit_order"   // implicit allocation after explicit emission
	KindOutOfRange      Kind = "out_of_range"     // index beyond table length
	KindShapeMismatch   Kind = "shape_mismatch"   // type entry not of the expected shape
	KindDuplicateStart  Kind = "duplicate_start"  // second start function designation
)

// Error is the structured contract-violation error used throughout the
// builder. Violations indicate bugs in the driving code generator; they are
// raised by panic and are not meant to be recovered and retried.
type Error struct {
	Cause    error
	Phase    Phase
	Kind     Kind
	Category string // entity category ("types", "funcs", ...)
	Detail   string
	Index    int64 // offending index; -1 when not applicable
	HasIndex bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Category != "" {
		b.WriteString(" in ")
		b.WriteString(e.Category)
	}
	if e.HasIndex {
		fmt.Fprintf(&b, " at index %d", e.Index)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error's phase and kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction.
type Builder struct {
	err Error
}

// New creates a new error builder.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
			Index: -1,
		},
	}
}

// Category sets the entity category the violation concerns.
func (b *Builder) Category(name string) *Builder {
	b.err.Category = name
	return b
}

// Index sets the offending index.
func (b *Builder) Index(idx uint32) *Builder {
	b.err.Index = int64(idx)
	b.err.HasIndex = true
	return b
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the common contract violations

// Undefined reports a slot read before its definition was supplied.
func Undefined(phase Phase, category string, idx uint32) *Error {
	return New(phase, KindUndefinedEntity).Category(category).Index(idx).
		Detail("allocated but never defined").Build()
}

// Redefined reports a definition handle fulfilled twice.
func Redefined(category string, idx uint32) *Error {
	return New(PhaseEmit, KindRedefinedEntity).Category(category).Index(idx).
		Detail("slot already defined").Build()
}

// ImplicitOrder reports an implicit allocation on a non-empty table.
func ImplicitOrder(category string, defined int) *Error {
	return New(PhaseEmit, KindImplicitOrder).Category(category).
		Detail("implicit allocation after %d explicit entries", defined).Build()
}

// OutOfRange reports an index beyond the table's allocated length.
func OutOfRange(phase Phase, category string, idx uint32, length int) *Error {
	return New(phase, KindOutOfRange).Category(category).Index(idx).
		Detail("index out of range (length %d)", length).Build()
}

// ShapeMismatch reports a type entry that is not of the expected shape.
func ShapeMismatch(idx uint32, want, got string) *Error {
	return New(PhaseLookup, KindShapeMismatch).Category("types").Index(idx).
		Detail("expected %s type, found %s", want, got).Build()
}

// DuplicateStart reports a second start-function designation.
func DuplicateStart(existing, proposed uint32) *Error {
	return New(PhaseEmit, KindDuplicateStart).Category("funcs").Index(proposed).
		Detail("start function already set to %d", existing).Build()
}
