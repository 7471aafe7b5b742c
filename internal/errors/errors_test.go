package errors

import (
	"errors"
	"fmt"
	"testing"
)

// =============================================================================
// Test Error Types and Constructors
// =============================================================================

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     *Error
		kind    Kind
		message string
	}{
		{"NotFound", NotFound("event not found"), ErrNotFound, "event not found"},
		{"NotFoundf", NotFoundf("category %d not found", 7), ErrNotFound, "category 7 not found"},
		{"Validation", Validation("select at least one slot"), ErrValidation, "select at least one slot"},
		{"Validationf", Validationf("cattle number must be between 1 and %d", 2), ErrValidation, "cattle number must be between 1 and 2"},
		{"Conflict", Conflict("vote is final"), ErrConflict, "vote is final"},
		{"Conflictf", Conflictf("password %d already taken", 3), ErrConflict, "password 3 already taken"},
		{"InvalidInput", InvalidInput("bad id"), ErrInvalidInput, "bad id"},
		{"InvalidInputf", InvalidInputf("bad id %q", "x"), ErrInvalidInput, `bad id "x"`},
		{"AuthRequired", AuthRequired("login required"), ErrAuthRequired, "login required"},
		{"Forbidden", Forbidden("judges only"), ErrForbidden, "judges only"},
		{"Internalf", Internalf("boom %d", 1), ErrInternal, "boom 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("expected Kind %v, got %v", tt.kind, tt.err.Kind)
			}
			if tt.err.Message != tt.message {
				t.Errorf("expected Message %q, got %q", tt.message, tt.err.Message)
			}
			if tt.err.Err != nil {
				t.Errorf("expected Err to be nil, got %v", tt.err.Err)
			}
		})
	}
}

func TestInternal_WrapsUnderlying(t *testing.T) {
	underlying := errors.New("disk full")
	err := Internal(underlying)

	if err.Kind != ErrInternal {
		t.Errorf("expected ErrInternal, got %v", err.Kind)
	}
	if err.Error() != "internal error: disk full" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !errors.Is(err, underlying) {
		t.Error("expected errors.Is to find underlying error")
	}
}

func TestWrap(t *testing.T) {
	underlying := errors.New("payment declined")
	err := Wrap(underlying, ErrConflict, "purchase rejected")

	if err.Kind != ErrConflict {
		t.Errorf("expected ErrConflict, got %v", err.Kind)
	}
	if err.Unwrap() != underlying {
		t.Error("expected Unwrap to return underlying error")
	}
	if err.Error() != "purchase rejected: payment declined" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestWithCode_DoesNotMutateOriginal(t *testing.T) {
	base := Conflict("slot taken")
	coded := base.WithCode("STALE_SLOT")

	if coded.Code != "STALE_SLOT" {
		t.Errorf("expected code STALE_SLOT, got %q", coded.Code)
	}
	if base.Code != "" {
		t.Errorf("expected original code to stay empty, got %q", base.Code)
	}
	if coded.Kind != ErrConflict || coded.Message != "slot taken" {
		t.Error("expected kind and message to be preserved")
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("checkout: %w", AuthRequired("login required"))

	if got := KindOf(wrapped); got != ErrAuthRequired {
		t.Errorf("expected ErrAuthRequired, got %v", got)
	}
	if got := KindOf(errors.New("plain")); got != ErrInternal {
		t.Errorf("expected ErrInternal for plain error, got %v", got)
	}
	if got := KindOf(nil); got != ErrInternal {
		t.Errorf("expected ErrInternal for nil, got %v", got)
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NotFound("x"))
	if !Is(err, ErrNotFound) {
		t.Error("expected Is to match ErrNotFound")
	}
	if Is(err, ErrConflict) {
		t.Error("expected Is not to match ErrConflict")
	}
}

func TestKind_String(t *testing.T) {
	kinds := map[Kind]string{
		ErrInternal:     "internal",
		ErrNotFound:     "not_found",
		ErrValidation:   "validation",
		ErrConflict:     "conflict",
		ErrInvalidInput: "invalid_input",
		ErrAuthRequired: "auth_required",
		ErrForbidden:    "forbidden",
	}
	for k, want := range kinds {
		if k.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, k.String(), want)
		}
	}
}
