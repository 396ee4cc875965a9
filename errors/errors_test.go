package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "undefined entity",
			err:  Undefined(PhaseAssemble, "funcs", 3),
			want: "[assemble] undefined_entity in funcs at index 3: allocated but never defined",
		},
		{
			name: "redefined entity",
			err:  Redefined("types", 0),
			want: "[emit] redefined_entity in types at index 0: slot already defined",
		},
		{
			name: "implicit order",
			err:  ImplicitOrder("globals", 2),
			want: "[emit] implicit_order in globals: implicit allocation after 2 explicit entries",
		},
		{
			name: "shape mismatch",
			err:  ShapeMismatch(5, "struct", "func"),
			want: "[lookup] shape_mismatch in types at index 5: expected struct type, found func",
		},
		{
			name: "duplicate start",
			err:  DuplicateStart(1, 4),
			want: "[emit] duplicate_start in funcs at index 4: start function already set to 1",
		},
		{
			name: "bare builder",
			err:  New(PhaseScope, KindOutOfRange).Build(),
			want: "[scope] out_of_range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := New(PhaseEmit, KindRedefinedEntity).Cause(cause).Build()

	if !stderrors.Is(err, cause) {
		t.Errorf("errors.Is does not see the cause")
	}
	if got := err.Error(); got != "[emit] redefined_entity (caused by: boom)" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorIs(t *testing.T) {
	err := Undefined(PhaseLookup, "types", 9)

	if !stderrors.Is(err, New(PhaseLookup, KindUndefinedEntity).Build()) {
		t.Errorf("same phase and kind should match")
	}
	if stderrors.Is(err, New(PhaseAssemble, KindUndefinedEntity).Build()) {
		t.Errorf("different phase should not match")
	}
	if stderrors.Is(err, New(PhaseLookup, KindOutOfRange).Build()) {
		t.Errorf("different kind should not match")
	}
}
