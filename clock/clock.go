// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package clock provides the synthetic animation time source used while
// rendering a movie.
//
// A Virtual clock advances by a fixed step per frame regardless of how long
// the frame took to render, so the same scene always produces the same
// sequence of images.
package clock

import (
	"errors"
	"sync"
	"time"
)

// ErrInvalidFPS is returned by New when the frame rate is not positive.
var ErrInvalidFPS = errors.New("clock: fps must be positive")

// TimeSource reports the current animation time in milliseconds.
type TimeSource interface {
	Elapsed() int64
}

// AnimationSystem is the part of a scene engine that evaluates time-based
// bindings. A nil time source restores the engine's own (wall) clock.
type AnimationSystem interface {
	SetTimeSource(ts TimeSource)
	AdvanceAnimation()
}

// Virtual is a fixed-step clock. It is not safe for concurrent Advance
// calls; Elapsed may be read from any goroutine.
type Virtual struct {
	step int64

	mu        sync.Mutex
	elapsed   int64
	installed AnimationSystem
}

// New returns a clock that advances 1000/fps milliseconds per frame.
// The step is an integer number of milliseconds, so 24 fps yields 41 ms.
func New(fps int) (*Virtual, error) {
	if fps <= 0 {
		return nil, ErrInvalidFPS
	}
	return &Virtual{step: int64(1000 / fps)}, nil
}

// Step returns the per-frame increment in milliseconds.
func (v *Virtual) Step() int64 {
	return v.step
}

// Elapsed returns the total synthetic time in milliseconds.
func (v *Virtual) Elapsed() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.elapsed
}

// ElapsedDuration returns Elapsed as a time.Duration.
func (v *Virtual) ElapsedDuration() time.Duration {
	return time.Duration(v.Elapsed()) * time.Millisecond
}

// Install makes v the time source of sys. Installing over a previous
// system uninstalls it first.
func (v *Virtual) Install(sys AnimationSystem) {
	if sys == nil {
		return
	}
	v.mu.Lock()
	prev := v.installed
	v.installed = sys
	v.mu.Unlock()

	if prev != nil && prev != sys {
		prev.SetTimeSource(nil)
	}
	sys.SetTimeSource(v)
}

// Installed reports whether the clock currently drives an animation system.
func (v *Virtual) Installed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.installed != nil
}

// Uninstall detaches the clock. It is a no-op if the clock was never
// installed or was already uninstalled.
func (v *Virtual) Uninstall() {
	v.mu.Lock()
	sys := v.installed
	v.installed = nil
	v.mu.Unlock()

	if sys != nil {
		sys.SetTimeSource(nil)
	}
}

// Advance moves time forward by one step and asks the installed animation
// system to evaluate its bindings at the new instant.
func (v *Virtual) Advance() {
	v.mu.Lock()
	v.elapsed += v.step
	sys := v.installed
	v.mu.Unlock()

	if sys != nil {
		sys.AdvanceAnimation()
	}
}
