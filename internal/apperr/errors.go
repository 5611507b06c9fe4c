package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors for handlers to map to HTTP status.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("conflicting record already exists")
)

// DenyReason distinguishes why an authorization check refused a request.
type DenyReason string

const (
	// InsufficientRole means the user is related to the target but their
	// best role is below the level the action requires.
	InsufficientRole DenyReason = "insufficient_role"
	// NoRelation means the user has no team association with the target.
	NoRelation DenyReason = "no_relation"
)

type DenyError struct {
	Reason   DenyReason
	Required string
}

func (e *DenyError) Error() string {
	if e.Reason == NoRelation {
		return "permission denied: no team relation to target"
	}
	return fmt.Sprintf("permission denied: requires %s role", e.Required)
}

func Deny(reason DenyReason, required string) *DenyError {
	return &DenyError{Reason: reason, Required: required}
}

// IsDenied reports whether err is an authorization refusal.
func IsDenied(err error) bool {
	var d *DenyError
	return errors.As(err, &d)
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// StorageError wraps an unexpected failure of the underlying store. It
// always means the enclosing transaction was rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func Storage(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}
