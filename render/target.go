// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gputypes"
)

// FrameTarget is the offscreen buffer a single movie frame is rendered into.
//
// Its physical size is the logical output size multiplied by the device
// pixel ratio. A FrameTarget is created and destroyed through a Manager and
// must only be touched by the owner currently holding the context.
type FrameTarget struct {
	fb      Framebuffer
	logical image.Point
	scale   float64
	format  PixelFormat

	mu        sync.Mutex
	flushed   bool
	destroyed bool
}

// PhysicalSize returns size scaled by scale, rounded to the nearest pixel
// and clamped to at least 1x1.
func PhysicalSize(size image.Point, scale float64) image.Point {
	w := int(math.Round(float64(size.X) * scale))
	h := int(math.Round(float64(size.Y) * scale))
	return image.Pt(max(w, 1), max(h, 1))
}

// Width returns the physical width in pixels.
func (t *FrameTarget) Width() int {
	return t.fb.Size().X
}

// Height returns the physical height in pixels.
func (t *FrameTarget) Height() int {
	return t.fb.Size().Y
}

// LogicalSize returns the size scenes are laid out in.
func (t *FrameTarget) LogicalSize() image.Point {
	return t.logical
}

// Scale returns the device pixel ratio.
func (t *FrameTarget) Scale() float64 {
	return t.scale
}

// ColorFormat returns the color attachment format.
func (t *FrameTarget) ColorFormat() gputypes.TextureFormat {
	return t.format.Color
}

// DepthStencilFormat returns the depth/stencil attachment format.
func (t *FrameTarget) DepthStencilFormat() gputypes.TextureFormat {
	return t.format.DepthStencil
}

// Canvas returns the drawing context of the color buffer.
func (t *FrameTarget) Canvas() *gg.Context {
	return t.fb.Canvas()
}

// Flushed reports whether the contents are complete and safe to read back.
// It becomes false whenever the owning context is made current again.
func (t *FrameTarget) Flushed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flushed && !t.destroyed
}

// ReadPixels copies the color buffer. Callers normally go through
// capture.Capture, which checks Flushed first.
func (t *FrameTarget) ReadPixels() (*image.RGBA, error) {
	t.mu.Lock()
	destroyed := t.destroyed
	t.mu.Unlock()
	if destroyed {
		return nil, ErrInvalidTarget
	}
	return t.fb.ReadPixels()
}

func (t *FrameTarget) setFlushed(v bool) {
	t.mu.Lock()
	t.flushed = v
	t.mu.Unlock()
}

func (t *FrameTarget) destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.flushed = false
	t.fb.Destroy()
}
