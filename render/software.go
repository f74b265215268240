// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gg"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
)

// Errors reported by the Software backend.
var (
	errUnsupportedColor = errors.New("render: software backend only supports RGBA8 color")
	errNotCurrent       = errors.New("render: software device is not current")
	errDestroyed        = errors.New("render: use of destroyed resource")
)

// SoftwareOption configures the Software backend.
type SoftwareOption func(*Software)

// WithDeviceHandle records a GPU device owned by the host application.
// Builds with the gpu tag hand it to the gg accelerator; otherwise it is
// only reported.
func WithDeviceHandle(h DeviceHandle) SoftwareOption {
	return func(s *Software) {
		s.handle = h
	}
}

// Software is a CPU backend that rasterizes frames with gg.
//
// The device context only tracks which surface it is current on, but it
// enforces the same rules as a hardware context: framebuffers can only be
// created, drawn and flushed while current.
type Software struct {
	handle DeviceHandle
}

// NewSoftware returns a CPU rendering backend.
func NewSoftware(opts ...SoftwareOption) *Software {
	s := &Software{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns "software", or "software+host" when a host device is set.
func (s *Software) Name() string {
	if s.handle != nil && s.handle.Device() != nil {
		return "software+host"
	}
	return "software"
}

// CreateDevice creates a software device context.
func (s *Software) CreateDevice(format PixelFormat) (Device, error) {
	if format.Color != gputypes.TextureFormatRGBA8Unorm {
		return nil, errUnsupportedColor
	}
	if format.Samples > 1 {
		return nil, fmt.Errorf("render: software backend does not support %dx multisampling", format.Samples)
	}
	if err := attachAccelerator(s.handle); err != nil {
		return nil, err
	}
	return &softwareDevice{valid: true}, nil
}

// CreateSurface creates an offscreen surface.
func (s *Software) CreateSurface(format PixelFormat, size image.Point) (Surface, error) {
	return &softwareSurface{format: format, size: size}, nil
}

var _ Backend = (*Software)(nil)

type softwareSurface struct {
	format    PixelFormat
	size      image.Point
	destroyed bool
}

func (s *softwareSurface) Format() PixelFormat { return s.format }
func (s *softwareSurface) Size() image.Point   { return s.size }
func (s *softwareSurface) Destroy()            { s.destroyed = true }

type softwareDevice struct {
	valid   bool
	current *softwareSurface
}

func (d *softwareDevice) Valid() bool { return d.valid }

func (d *softwareDevice) MakeCurrent(s Surface) error {
	if !d.valid {
		return errDestroyed
	}
	ss, ok := s.(*softwareSurface)
	if !ok || ss.destroyed {
		return fmt.Errorf("render: surface %T cannot be used with the software device", s)
	}
	d.current = ss
	return nil
}

func (d *softwareDevice) DoneCurrent() {
	d.current = nil
}

func (d *softwareDevice) NewFramebuffer(width, height int, format PixelFormat) (Framebuffer, error) {
	if d.current == nil {
		return nil, errNotCurrent
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render: framebuffer size %dx%d", width, height)
	}
	return &softwareFramebuffer{
		dc:   gg.NewContext(width, height),
		size: image.Pt(width, height),
	}, nil
}

func (d *softwareDevice) Flush() error {
	if d.current == nil {
		return errNotCurrent
	}
	return nil
}

func (d *softwareDevice) Destroy() {
	d.valid = false
	d.current = nil
}

type softwareFramebuffer struct {
	dc   *gg.Context
	size image.Point
}

func (f *softwareFramebuffer) Size() image.Point { return f.size }

func (f *softwareFramebuffer) Valid() bool { return f.dc != nil }

func (f *softwareFramebuffer) Canvas() *gg.Context { return f.dc }

func (f *softwareFramebuffer) ReadPixels() (*image.RGBA, error) {
	if f.dc == nil {
		return nil, errDestroyed
	}
	src := f.dc.Image()
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Copy(dst, image.Point{}, src, bounds, draw.Src, nil)
	return dst, nil
}

func (f *softwareFramebuffer) Destroy() {
	f.dc = nil
}
