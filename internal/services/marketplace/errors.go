// File: internal/services/marketplace/errors.go
package marketplace

import "errors"

var (
	// ErrNotApproved is returned when an unapproved bot is made public.
	ErrNotApproved = errors.New("bot must be approved before going public")
	// ErrShareCodeExhausted is returned when code generation keeps colliding.
	ErrShareCodeExhausted = errors.New("could not generate a unique share code")
)
