// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package scene

import (
	"image"

	"github.com/gogpu/gg"

	"github.com/gogpu/ggmovie/clock"
)

// Engine is a declarative scene engine driven frame by frame.
//
// Load instantiates a scene description. The render pipeline is split into
// discrete steps so the caller controls where each runs:
//
//	Polish      finalize deferred layout
//	BeginFrame  start a frame
//	Sync        commit scene mutations into the render state
//	Render      draw the committed state into the render target
//	EndFrame    finish the frame
//
// Sync is the only step that reads mutable scene state. Render and
// EndFrame only touch what Sync committed, so the scene may be mutated
// again (for instance by advancing the animation clock) as soon as Sync
// returns.
type Engine interface {
	clock.AnimationSystem

	Load(source string, size image.Point) (RootVisual, error)
	SetRenderTarget(target RenderTarget) error

	Polish()
	BeginFrame()
	Sync()
	Render() error
	EndFrame() error
}

// RootVisual is the top-level visual element of a loaded scene.
type RootVisual interface {
	Resize(width, height int)
}

// RenderTarget is what an Engine renders into.
type RenderTarget interface {
	// Canvas returns the drawing context of the color buffer. Its size is
	// LogicalSize scaled by Scale.
	Canvas() *gg.Context
	LogicalSize() image.Point
	Scale() float64
}
