package shared

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail indicates the login key is already taken.
	ErrDuplicateEmail = errors.New("duplicate email")
)
