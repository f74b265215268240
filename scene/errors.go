// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package scene

import (
	"errors"
	"fmt"
)

// Precondition violations of Host. They indicate a bug in the caller.
var (
	ErrNotLoaded      = errors.New("scene: no scene loaded")
	ErrNoRenderTarget = errors.New("scene: no render target bound")
)

// LoadError reports a scene that could not be parsed or instantiated.
// Line and Column are 1-based and zero when unknown.
type LoadError struct {
	Source string
	Line   int
	Column int
	Err    error
}

func (e *LoadError) Error() string {
	loc := e.Source
	switch {
	case e.Line > 0 && e.Column > 0:
		loc = fmt.Sprintf("%s:%d:%d", e.Source, e.Line, e.Column)
	case e.Line > 0:
		loc = fmt.Sprintf("%s:%d", e.Source, e.Line)
	}
	return fmt.Sprintf("scene: load %s: %v", loc, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
