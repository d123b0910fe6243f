// Package apperrors defines the error kinds the HTTP layer translates
// into status codes. Services wrap these sentinels with fmt.Errorf and
// %w so the boundary can classify with errors.Is.
package apperrors

import "errors"

var (
	// ErrInvalidArgument maps to 400.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthorized maps to 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden maps to 403.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound maps to 404.
	ErrNotFound = errors.New("not found")
	// ErrTimeout maps to 408.
	ErrTimeout = errors.New("timeout")
	// ErrConflict maps to 409.
	ErrConflict = errors.New("conflict")
)
