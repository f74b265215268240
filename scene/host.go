// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package scene

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/ggmovie/clock"
)

// StepHooks connect a render step to the graphics context.
type StepHooks struct {
	// Current must succeed before any engine call; it checks that the
	// caller holds the graphics context.
	Current func() error

	// AfterSync runs right after Sync returns. A dedicated render thread
	// uses it to release the controlling goroutine.
	AfterSync func()

	// Flush runs after EndFrame and makes the target safe to read back.
	Flush func() error
}

// Host loads a scene into an Engine and drives its render steps.
type Host struct {
	engine Engine
	log    *slog.Logger

	root   RootVisual
	source string
	size   image.Point
	target RenderTarget
	clock  *clock.Virtual
}

// NewHost returns a Host for engine. A nil logger disables logging.
func NewHost(engine Engine, log *slog.Logger) *Host {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Host{engine: engine, log: log.With("component", "scene")}
}

// Load instantiates source and binds its root visual to size.
// Failures are returned as *LoadError and leave the host unloaded.
func (h *Host) Load(source string, size image.Point) error {
	h.root = nil

	root, err := h.engine.Load(source, size)
	if err != nil {
		var le *LoadError
		if !errors.As(err, &le) {
			le = &LoadError{Source: source, Err: err}
		}
		h.log.Warn("scene load failed",
			"source", le.Source,
			"line", le.Line,
			"column", le.Column,
			"error", le.Err,
		)
		return le
	}
	if root == nil {
		return &LoadError{Source: source, Err: errors.New("root is not a visual item")}
	}

	root.Resize(size.X, size.Y)
	h.root = root
	h.source = source
	h.size = size
	h.log.Debug("scene loaded", "source", source, "width", size.X, "height", size.Y)
	return nil
}

// Loaded reports whether a scene is ready to render.
func (h *Host) Loaded() bool {
	return h.root != nil
}

// Root returns the render root, or nil before a successful Load.
func (h *Host) Root() RootVisual {
	return h.root
}

// InstallClock makes c the time source of the engine's animations.
func (h *Host) InstallClock(c *clock.Virtual) {
	c.Install(h.engine)
	h.clock = c
}

// UninstallClock detaches the installed clock, if any.
func (h *Host) UninstallClock() {
	if h.clock == nil {
		return
	}
	h.clock.Uninstall()
	h.clock = nil
}

// SetRenderTarget binds the target subsequent steps render into.
// Passing nil unbinds it.
func (h *Host) SetRenderTarget(target RenderTarget) error {
	if err := h.engine.SetRenderTarget(target); err != nil {
		return fmt.Errorf("scene: set render target: %w", err)
	}
	h.target = target
	return nil
}

// RenderStep renders one frame: polish, begin-frame, sync, render and
// end-frame, in that order.
func (h *Host) RenderStep(hooks StepHooks) error {
	if h.root == nil {
		return ErrNotLoaded
	}
	if hooks.Current != nil {
		if err := hooks.Current(); err != nil {
			return err
		}
	}
	if h.target == nil {
		return ErrNoRenderTarget
	}

	h.engine.Polish()
	h.engine.BeginFrame()
	h.engine.Sync()
	if hooks.AfterSync != nil {
		hooks.AfterSync()
	}

	if err := h.engine.Render(); err != nil {
		return fmt.Errorf("scene: render: %w", err)
	}
	if err := h.engine.EndFrame(); err != nil {
		return fmt.Errorf("scene: end frame: %w", err)
	}
	if hooks.Flush != nil {
		if err := hooks.Flush(); err != nil {
			return err
		}
	}
	return nil
}
