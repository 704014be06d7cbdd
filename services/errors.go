package services

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized: no resolved user identity on the request.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden: the user is not allowed to do this yet (e.g. level locked).
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound: no matching row.
	ErrNotFound = errors.New("not found")
	// ErrValidation: malformed or missing input.
	ErrValidation = errors.New("validation failed")
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StorageError wraps a failed query or transaction. Nothing written by the
// failed unit of work survives.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// forbidden returns ErrForbidden with a reason attached.
func forbidden(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}
