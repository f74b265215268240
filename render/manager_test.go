// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/gogpu/gputypes"
)

// brokenBackend fails device creation in configurable ways.
type brokenBackend struct {
	createErr error
	invalid   bool
}

func (b *brokenBackend) Name() string { return "broken" }

func (b *brokenBackend) CreateDevice(PixelFormat) (Device, error) {
	if b.createErr != nil {
		return nil, b.createErr
	}
	return &softwareDevice{valid: !b.invalid}, nil
}

func (b *brokenBackend) CreateSurface(format PixelFormat, size image.Point) (Surface, error) {
	return &softwareSurface{format: format, size: size}, nil
}

func newInitialized(t *testing.T) (*Manager, *Owner) {
	t.Helper()
	owner := NewOwner("test")
	m := NewManager(NewSoftware(), nil)
	if err := m.Initialize(owner, image.Pt(64, 32), DefaultPixelFormat()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(m.Destroy)
	return m, owner
}

func TestInitializeFailures(t *testing.T) {
	tests := []struct {
		name    string
		backend Backend
		format  PixelFormat
		size    image.Point
		want    error
	}{
		{"create error", &brokenBackend{createErr: errors.New("no driver")}, DefaultPixelFormat(), image.Pt(8, 8), ErrContextCreation},
		{"invalid context", &brokenBackend{invalid: true}, DefaultPixelFormat(), image.Pt(8, 8), ErrContextInvalid},
		{"unsupported color", NewSoftware(), PixelFormat{Color: gputypes.TextureFormatBGRA8Unorm}, image.Pt(8, 8), ErrContextCreation},
		{"zero size", NewSoftware(), DefaultPixelFormat(), image.Pt(0, 8), ErrInvalidSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.backend, nil)
			err := m.Initialize(NewOwner("test"), tt.size, tt.format)
			if !errors.Is(err, tt.want) {
				t.Errorf("Initialize() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestInitializeTwice(t *testing.T) {
	m, owner := newInitialized(t)
	if err := m.Initialize(owner, image.Pt(8, 8), DefaultPixelFormat()); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second Initialize() error = %v, want ErrAlreadyInitialized", err)
	}
}

func TestMakeCurrentSingleOwner(t *testing.T) {
	m, owner := newInitialized(t)
	other := NewOwner("other")

	if err := m.MakeCurrent(other); !errors.Is(err, ErrWrongOwner) {
		t.Errorf("MakeCurrent(other) error = %v, want ErrWrongOwner", err)
	}
	if err := m.MakeCurrent(owner); err != nil {
		t.Fatalf("MakeCurrent(owner) error = %v", err)
	}
	// Re-entrant for the same owner.
	if err := m.MakeCurrent(owner); err != nil {
		t.Errorf("second MakeCurrent(owner) error = %v", err)
	}
	if err := m.RequireCurrent(owner); err != nil {
		t.Errorf("RequireCurrent() error = %v", err)
	}
	if err := m.ReleaseCurrent(owner); err != nil {
		t.Errorf("ReleaseCurrent() error = %v", err)
	}
	if err := m.RequireCurrent(owner); !errors.Is(err, ErrNoCurrentContext) {
		t.Errorf("RequireCurrent() after release error = %v, want ErrNoCurrentContext", err)
	}
}

func TestTransfer(t *testing.T) {
	m, owner := newInitialized(t)
	worker := NewOwner("worker")

	if err := m.MakeCurrent(owner); err != nil {
		t.Fatal(err)
	}
	if err := m.Transfer(owner, worker); !errors.Is(err, ErrContextBusy) {
		t.Errorf("Transfer() while current error = %v, want ErrContextBusy", err)
	}
	if err := m.ReleaseCurrent(owner); err != nil {
		t.Fatal(err)
	}
	if err := m.Transfer(worker, owner); !errors.Is(err, ErrWrongOwner) {
		t.Errorf("Transfer() from non-owner error = %v, want ErrWrongOwner", err)
	}
	if err := m.Transfer(owner, worker); err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}
	if m.Owner() != worker {
		t.Errorf("Owner() = %v, want %v", m.Owner(), worker)
	}
	if err := m.MakeCurrent(owner); !errors.Is(err, ErrWrongOwner) {
		t.Errorf("previous owner MakeCurrent() error = %v, want ErrWrongOwner", err)
	}
	if err := m.MakeCurrent(worker); err != nil {
		t.Errorf("new owner MakeCurrent() error = %v", err)
	}
}

func TestCreateFrameTargetValidation(t *testing.T) {
	m, owner := newInitialized(t)

	tests := []struct {
		name  string
		size  image.Point
		scale float64
		want  error
	}{
		{"zero width", image.Pt(0, 10), 1, ErrInvalidSize},
		{"negative height", image.Pt(10, -1), 1, ErrInvalidSize},
		{"zero scale", image.Pt(10, 10), 0, ErrInvalidScale},
		{"negative scale", image.Pt(10, 10), -2, ErrInvalidScale},
		{"nan scale", image.Pt(10, 10), math.NaN(), ErrInvalidScale},
		{"no current context", image.Pt(10, 10), 1, ErrNoCurrentContext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.CreateFrameTarget(owner, tt.size, tt.scale); !errors.Is(err, tt.want) {
				t.Errorf("CreateFrameTarget() error = %v, want %v", err, tt.want)
			}
		})
	}
	if m.FrameTarget() != nil {
		t.Error("failed CreateFrameTarget left a target behind")
	}
}

func TestCreateFrameTargetScaled(t *testing.T) {
	m, owner := newInitialized(t)
	if err := m.MakeCurrent(owner); err != nil {
		t.Fatal(err)
	}

	target, err := m.CreateFrameTarget(owner, image.Pt(40, 30), 1.5)
	if err != nil {
		t.Fatalf("CreateFrameTarget() error = %v", err)
	}
	if target.Width() != 60 || target.Height() != 45 {
		t.Errorf("physical size = %dx%d, want 60x45", target.Width(), target.Height())
	}
	if target.LogicalSize() != image.Pt(40, 30) {
		t.Errorf("LogicalSize() = %v, want (40,30)", target.LogicalSize())
	}
	if target.ColorFormat() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("ColorFormat() = %v, want RGBA8Unorm", target.ColorFormat())
	}
	if target.DepthStencilFormat() != gputypes.TextureFormatDepth24PlusStencil8 {
		t.Errorf("DepthStencilFormat() = %v, want Depth24PlusStencil8", target.DepthStencilFormat())
	}
	if _, err := m.CreateFrameTarget(owner, image.Pt(40, 30), 1); !errors.Is(err, ErrTargetExists) {
		t.Errorf("second CreateFrameTarget() error = %v, want ErrTargetExists", err)
	}
}

func TestFlushMarksTarget(t *testing.T) {
	m, owner := newInitialized(t)
	if err := m.MakeCurrent(owner); err != nil {
		t.Fatal(err)
	}
	target, err := m.CreateFrameTarget(owner, image.Pt(4, 4), 1)
	if err != nil {
		t.Fatal(err)
	}

	if target.Flushed() {
		t.Error("new target reports Flushed() = true")
	}
	if err := m.Flush(owner); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if !target.Flushed() {
		t.Error("Flushed() = false after Flush")
	}

	img, err := target.ReadPixels()
	if err != nil {
		t.Fatalf("ReadPixels() error = %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
		t.Errorf("ReadPixels() bounds = %v, want 4x4", img.Bounds())
	}

	// A new current bracket starts a new frame.
	_ = m.ReleaseCurrent(owner)
	_ = m.MakeCurrent(owner)
	if target.Flushed() {
		t.Error("Flushed() = true after MakeCurrent")
	}
}

func TestDestroyFrameTargetIdempotent(t *testing.T) {
	m, owner := newInitialized(t)

	if err := m.DestroyFrameTarget(owner); err != nil {
		t.Errorf("DestroyFrameTarget() without target error = %v", err)
	}

	_ = m.MakeCurrent(owner)
	target, err := m.CreateFrameTarget(owner, image.Pt(4, 4), 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.DestroyFrameTarget(owner); err != nil {
		t.Errorf("DestroyFrameTarget() error = %v", err)
	}
	if err := m.DestroyFrameTarget(owner); err != nil {
		t.Errorf("second DestroyFrameTarget() error = %v", err)
	}
	if _, err := target.ReadPixels(); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("ReadPixels() on destroyed target error = %v, want ErrInvalidTarget", err)
	}

	m.Destroy()
	m.Destroy()
	if err := m.MakeCurrent(owner); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("MakeCurrent() after Destroy error = %v, want ErrNotInitialized", err)
	}
}

func TestPhysicalSize(t *testing.T) {
	tests := []struct {
		size  image.Point
		scale float64
		want  image.Point
	}{
		{image.Pt(100, 50), 1, image.Pt(100, 50)},
		{image.Pt(100, 50), 2, image.Pt(200, 100)},
		{image.Pt(3, 3), 1.5, image.Pt(5, 5)},
		{image.Pt(1, 1), 0.1, image.Pt(1, 1)},
	}

	for _, tt := range tests {
		if got := PhysicalSize(tt.size, tt.scale); got != tt.want {
			t.Errorf("PhysicalSize(%v, %v) = %v, want %v", tt.size, tt.scale, got, tt.want)
		}
	}
}
