// Package errs holds the error kinds shared by every layer. Concrete errors wrap one of these
// so callers can classify them with errors.Is.
package errs

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
)
