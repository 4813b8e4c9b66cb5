// Package domainerr holds the error categories shared by every feature package.
// Feature packages wrap one of these roots so callers can branch on the
// category with errors.Is while still matching the specific sentinel.
package domainerr

import "errors"

var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation error")
	// ErrStateConflict marks an operation that is invalid for the current entity state.
	ErrStateConflict = errors.New("state conflict")
	// ErrInsufficientFunds marks a balance below the required amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
)

// Category returns the root error err belongs to, or nil for infrastructure failures.
func Category(err error) error {
	for _, root := range []error{ErrValidation, ErrStateConflict, ErrInsufficientFunds, ErrNotFound, ErrForbidden} {
		if errors.Is(err, root) {
			return root
		}
	}
	return nil
}
