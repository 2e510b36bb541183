package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("version conflict")
	ErrValidation    = errors.New("validation failed")
	ErrRevisionOrder = errors.New("revision version not increasing")
)

// NotFoundError indicates a resource was not found
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// Is allows errors.Is() to match against ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError indicates invalid input on a manual save
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is allows errors.Is() to match against ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConflictError is returned when a save presents a stale expected version.
// The caller must refetch the note and re-decide; the store never merges.
type ConflictError struct {
	NoteID          string
	ExpectedVersion int
	CurrentVersion  int
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return fmt.Sprintf("note %s: expected version %d but current version is %d; reload before saving",
		e.NoteID, e.ExpectedVersion, e.CurrentVersion)
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// LinkIndexError wraps a link-recompute failure that happened after the
// note itself committed. The save stands; only the derived link set is
// stale until the next successful save rewrites it.
type LinkIndexError struct {
	NoteID string
	Err    error
}

// Error implements the error interface
func (e *LinkIndexError) Error() string {
	return fmt.Sprintf("link indexing for note %s failed (save committed): %v", e.NoteID, e.Err)
}

// Unwrap exposes the underlying failure
func (e *LinkIndexError) Unwrap() error {
	return e.Err
}
