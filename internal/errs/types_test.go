package errs

import (
	"errors"
	"testing"
)

func TestDatabaseErrorKeepsOriginalMessage(t *testing.T) {
	orig := errors.New("deadline exceeded")
	err := NewDatabaseError("create", "failed to add transaction", orig)

	if got := err.Error(); got != "failed to add transaction: deadline exceeded" {
		t.Fatalf("Error() = %q", got)
	}
	if !errors.Is(err, orig) {
		t.Fatal("expected errors.Is to reach the wrapped error")
	}
}

func TestDatabaseErrorWithoutCause(t *testing.T) {
	err := NewDatabaseError("read", "failed to list cards", nil)
	if got := err.Error(); got != "failed to list cards" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestFieldErrorAs(t *testing.T) {
	var err error = NewFieldError("value", "value must be greater than zero")

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Field != "value" {
		t.Fatalf("Field = %q", verr.Field)
	}
}
