package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a point lookup that matched nothing in the
	// caller's partition. It is not a storage failure.
	ErrNotFound = errors.New("record not found")

	// ErrConflict reports a uniqueness violation on insert or a stale
	// version tag on update. The caller decides whether to re-read and
	// retry; the repository never retries on its own.
	ErrConflict = errors.New("record conflict")

	// ErrStoreUnavailable reports a timeout or transport problem talking
	// to the document store. Safe to retry with backoff.
	ErrStoreUnavailable = errors.New("document store unavailable")
)

// ValidationError names the field and rule an entity failed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
