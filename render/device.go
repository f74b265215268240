// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"

	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from a host application.
//
// When a host already owns a GPU device (e.g. a gogpu.App rendering a
// preview), it can hand the device to the Software backend so accelerated
// builds share it instead of creating their own.
type DeviceHandle = gpucontext.DeviceProvider

// PixelFormat describes the buffers requested for the device context and
// every frame target created from it.
type PixelFormat struct {
	// Color is the color attachment format.
	Color gputypes.TextureFormat

	// DepthStencil is the combined depth/stencil attachment format.
	DepthStencil gputypes.TextureFormat

	// DepthBits and StencilBits are minimum precision hints.
	DepthBits   int
	StencilBits int

	// Samples is the multisample count. Use 1 for no multisampling.
	Samples int
}

// DefaultPixelFormat returns RGBA8 color with a combined depth/stencil
// attachment of at least 16 depth and 8 stencil bits.
func DefaultPixelFormat() PixelFormat {
	return PixelFormat{
		Color:        gputypes.TextureFormatRGBA8Unorm,
		DepthStencil: gputypes.TextureFormatDepth24PlusStencil8,
		DepthBits:    16,
		StencilBits:  8,
		Samples:      1,
	}
}

// Backend creates device contexts and offscreen surfaces.
//
// Implementations wrap a concrete graphics API. The Manager is the only
// caller; it serializes access and enforces ownership, so backends do not
// need to be safe for concurrent use.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string

	// CreateDevice creates a device context compatible with format.
	CreateDevice(format PixelFormat) (Device, error)

	// CreateSurface creates an offscreen surface of the given size.
	CreateSurface(format PixelFormat, size image.Point) (Surface, error)
}

// Device is a graphics context. It must be current on a surface before any
// framebuffer work is issued.
type Device interface {
	// Valid reports whether the context survived creation.
	Valid() bool

	// MakeCurrent binds the context to s.
	MakeCurrent(s Surface) error

	// DoneCurrent unbinds the context.
	DoneCurrent()

	// NewFramebuffer allocates a color + depth/stencil framebuffer.
	NewFramebuffer(width, height int, format PixelFormat) (Framebuffer, error)

	// Flush submits all pending commands.
	Flush() error

	// Destroy releases the context.
	Destroy()
}

// Surface is an offscreen drawable the device can be made current on.
type Surface interface {
	Format() PixelFormat
	Size() image.Point
	Destroy()
}

// Framebuffer is the backend allocation behind a FrameTarget.
type Framebuffer interface {
	// Size returns the physical size in pixels.
	Size() image.Point

	// Valid reports whether the allocation is complete.
	Valid() bool

	// Canvas returns the drawing context rendering into the color buffer.
	Canvas() *gg.Context

	// ReadPixels copies the color buffer into a new image.
	ReadPixels() (*image.RGBA, error)

	// Destroy releases the allocation.
	Destroy()
}
