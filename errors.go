package ggmovie

import (
	"errors"
	"fmt"
)

// Errors returned by Driver.
var (
	ErrInvalidRequest = errors.New("ggmovie: invalid request")
	ErrBusy           = errors.New("ggmovie: a render job is already active")
	ErrDriverHalted   = errors.New("ggmovie: driver halted after a fatal error")
)

// FatalError marks an error of the graphics environment or of the resource
// ownership protocol. A job that hits one fails and its Driver halts.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return "ggmovie: fatal: " + e.Err.Error()
}

func (e *FatalError) Unwrap() error { return e.Err }

// IsFatal reports whether err is or wraps a *FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

func fatal(err error) error {
	if err == nil || IsFatal(err) {
		return err
	}
	return &FatalError{Err: err}
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
