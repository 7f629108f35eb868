// Package common defines the sentinel errors shared by the repository,
// service, and handler layers. Callers match them with errors.Is.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation targets a record id that is
	// absent from the store.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a store-level uniqueness constraint
	// rejects a write, e.g. a second active alert for the same user.
	ErrConflict = errors.New("conflict")

	// ErrInvalidState is returned when a transition is attempted from a
	// non-permitted source state, or when a compare-and-swap update finds
	// the record already moved by a concurrent caller.
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation is returned for malformed input such as empty required
	// fields or a non-positive check-in duration.
	ErrValidation = errors.New("validation error")

	// ErrLocationUnavailable is returned by geolocation providers when no
	// position can be acquired. It is absorbed by callers: an alert or
	// check-in proceeds with no coordinate rather than failing.
	ErrLocationUnavailable = errors.New("location unavailable")
)

// Validationf wraps ErrValidation with a human-readable reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
