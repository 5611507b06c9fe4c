package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestDenyErrorMatching(t *testing.T) {
	err := fmt.Errorf("create task: %w", Deny(NoRelation, "write"))

	if !IsDenied(err) {
		t.Fatal("expected wrapped DenyError to match")
	}

	var d *DenyError
	if !errors.As(err, &d) {
		t.Fatal("errors.As failed on wrapped DenyError")
	}
	if d.Reason != NoRelation {
		t.Errorf("reason = %q, want %q", d.Reason, NoRelation)
	}
}

func TestDenyErrorMessages(t *testing.T) {
	if got := Deny(NoRelation, "write").Error(); got != "permission denied: no team relation to target" {
		t.Errorf("unexpected NoRelation message: %q", got)
	}
	if got := Deny(InsufficientRole, "admin").Error(); got != "permission denied: requires admin role" {
		t.Errorf("unexpected InsufficientRole message: %q", got)
	}
}

func TestValidationError(t *testing.T) {
	err := Invalid("title", "must not be empty")

	if !IsValidation(err) {
		t.Fatal("expected ValidationError to match")
	}
	if IsDenied(err) {
		t.Fatal("ValidationError should not match DenyError")
	}
	if got := err.Error(); got != "invalid title: must not be empty" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestStorageErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Storage("create task", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected StorageError to unwrap to its cause")
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	if errors.Is(ErrNotFound, ErrConflict) {
		t.Fatal("ErrNotFound and ErrConflict must be distinct")
	}
}
