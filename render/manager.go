// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"
)

// Errors returned by Manager. All of them describe a broken environment or
// a misuse of the ownership protocol; none is recoverable within a job.
var (
	ErrNotInitialized     = errors.New("render: manager not initialized")
	ErrAlreadyInitialized = errors.New("render: manager already initialized")
	ErrContextCreation    = errors.New("render: unable to create device context")
	ErrContextInvalid     = errors.New("render: device context is not valid")
	ErrSurfaceCreation    = errors.New("render: unable to create offscreen surface")
	ErrNoCurrentContext   = errors.New("render: no current context")
	ErrContextBusy        = errors.New("render: context is current on another owner")
	ErrWrongOwner         = errors.New("render: resources are owned by another owner")
	ErrInvalidSize        = errors.New("render: invalid size")
	ErrInvalidScale       = errors.New("render: invalid device pixel ratio")
	ErrInvalidTarget      = errors.New("render: invalid frame target")
	ErrTargetExists       = errors.New("render: frame target already exists")
)

// Manager owns the device context, the offscreen surface and the frame
// target of one render job.
//
// Exactly one Owner may use the resources at a time. Ownership starts with
// the owner passed to Initialize and only moves through Transfer. The
// context may be current on at most one owner; MakeCurrent and
// ReleaseCurrent bracket every render step.
type Manager struct {
	backend Backend
	log     *slog.Logger

	mu      sync.Mutex
	format  PixelFormat
	device  Device
	surface Surface
	target  *FrameTarget
	owner   *Owner
	current *Owner
}

// NewManager returns a Manager that allocates through backend.
// A nil logger disables logging.
func NewManager(backend Backend, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		backend: backend,
		log:     log.With("component", "render", "backend", backend.Name()),
	}
}

// Initialize creates the device context and an offscreen surface of size.
// The calling owner becomes the resource owner.
func (m *Manager) Initialize(owner *Owner, size image.Point, format PixelFormat) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return ErrAlreadyInitialized
	}
	if size.X <= 0 || size.Y <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, size.X, size.Y)
	}

	device, err := m.backend.CreateDevice(format)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrContextCreation, err)
	}
	if device == nil || !device.Valid() {
		if device != nil {
			device.Destroy()
		}
		return ErrContextInvalid
	}

	surface, err := m.backend.CreateSurface(format, size)
	if err != nil {
		device.Destroy()
		return fmt.Errorf("%w: %w", ErrSurfaceCreation, err)
	}

	m.device = device
	m.surface = surface
	m.format = format
	m.owner = owner
	m.log.Info("graphics initialized",
		"owner", owner.String(),
		"surface", fmt.Sprintf("%dx%d", size.X, size.Y),
		"color", format.Color,
	)
	return nil
}

// Owner returns the current resource owner.
func (m *Manager) Owner() *Owner {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owner
}

// Transfer moves ownership of every resource from one owner to another.
// It fails while the context is current, so the previous owner must
// release it first.
func (m *Manager) Transfer(from, to *Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkOwner(from); err != nil {
		return err
	}
	if m.current != nil {
		return fmt.Errorf("%w: %s", ErrContextBusy, m.current)
	}
	m.owner = to
	m.log.Info("graphics ownership transferred", "from", from.String(), "to", to.String())
	return nil
}

// MakeCurrent binds the context to the offscreen surface for owner.
// Making the context current invalidates the last flush of the target.
func (m *Manager) MakeCurrent(owner *Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkOwner(owner); err != nil {
		return err
	}
	if m.current != nil {
		if m.current == owner {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrContextBusy, m.current)
	}
	if err := m.device.MakeCurrent(m.surface); err != nil {
		return fmt.Errorf("render: make current: %w", err)
	}
	m.current = owner
	if m.target != nil {
		m.target.setFlushed(false)
	}
	return nil
}

// ReleaseCurrent unbinds the context. Releasing a context that is not
// current is a no-op.
func (m *Manager) ReleaseCurrent(owner *Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkOwner(owner); err != nil {
		return err
	}
	if m.current == nil {
		return nil
	}
	m.device.DoneCurrent()
	m.current = nil
	return nil
}

// RequireCurrent fails fast unless owner holds the context current.
func (m *Manager) RequireCurrent(owner *Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requireCurrent(owner)
}

// CreateFrameTarget allocates the frame target for a logical size and
// device pixel ratio. Size and scale are validated before anything is
// allocated.
func (m *Manager) CreateFrameTarget(owner *Owner, size image.Point, scale float64) (*FrameTarget, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, size.X, size.Y)
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireCurrent(owner); err != nil {
		return nil, err
	}
	if m.target != nil {
		return nil, ErrTargetExists
	}

	phys := PhysicalSize(size, scale)
	fb, err := m.device.NewFramebuffer(phys.X, phys.Y, m.format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	if !fb.Valid() {
		fb.Destroy()
		return nil, ErrInvalidTarget
	}

	m.target = &FrameTarget{
		fb:      fb,
		logical: size,
		scale:   scale,
		format:  m.format,
	}
	m.log.Debug("frame target created",
		"logical", fmt.Sprintf("%dx%d", size.X, size.Y),
		"physical", fmt.Sprintf("%dx%d", phys.X, phys.Y),
		"scale", scale,
	)
	return m.target, nil
}

// FrameTarget returns the current frame target, or nil.
func (m *Manager) FrameTarget() *FrameTarget {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target
}

// DestroyFrameTarget releases the frame target. It is idempotent.
func (m *Manager) DestroyFrameTarget(owner *Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.target == nil {
		return nil
	}
	if err := m.checkOwner(owner); err != nil {
		return err
	}
	m.target.destroy()
	m.target = nil
	return nil
}

// Flush submits pending commands and marks the target safe to read back.
func (m *Manager) Flush(owner *Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireCurrent(owner); err != nil {
		return err
	}
	if err := m.device.Flush(); err != nil {
		return fmt.Errorf("render: flush: %w", err)
	}
	if m.target != nil {
		m.target.setFlushed(true)
	}
	return nil
}

// Destroy releases the target, surface and context regardless of owner.
// It is the best-effort teardown used after fatal errors and is safe to
// call more than once.
func (m *Manager) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.target != nil {
		m.target.destroy()
		m.target = nil
	}
	if m.device != nil && m.current != nil {
		m.device.DoneCurrent()
	}
	m.current = nil
	if m.surface != nil {
		m.surface.Destroy()
		m.surface = nil
	}
	if m.device != nil {
		m.device.Destroy()
		m.device = nil
	}
	m.owner = nil
}

func (m *Manager) checkOwner(owner *Owner) error {
	if m.device == nil {
		return ErrNotInitialized
	}
	if owner == nil || owner != m.owner {
		return fmt.Errorf("%w: %s is not %s", ErrWrongOwner, owner, m.owner)
	}
	return nil
}

func (m *Manager) requireCurrent(owner *Owner) error {
	if err := m.checkOwner(owner); err != nil {
		return err
	}
	if m.current != owner {
		return ErrNoCurrentContext
	}
	return nil
}
