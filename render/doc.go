// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render manages the graphics resources of an offscreen render job.
//
// # Key Principle
//
// A device context, its offscreen surface and the frame target rendered into
// are thread-affine: they belong to exactly one Owner at a time and the
// context is current on at most one owner. Ownership moves only through
// Manager.Transfer, which is logged, so a hand-off between goroutines is
// always explicit.
//
// # Core Types
//
//   - Backend: creates device contexts and surfaces for a graphics API
//   - Manager: owns context, surface and FrameTarget; enforces ownership
//   - FrameTarget: color + depth/stencil buffer sized size*devicePixelRatio
//   - Software: CPU backend rasterizing with gg
//
// # Usage
//
//	owner := render.NewOwner("render")
//	m := render.NewManager(render.NewSoftware(), logger)
//	if err := m.Initialize(owner, image.Pt(640, 360), render.DefaultPixelFormat()); err != nil {
//	    return err // environment error
//	}
//	defer m.Destroy()
//
//	if err := m.MakeCurrent(owner); err != nil {
//	    return err
//	}
//	target, err := m.CreateFrameTarget(owner, image.Pt(640, 360), 2)
//	// draw into target.Canvas() ...
//	_ = m.Flush(owner)
//	_ = m.ReleaseCurrent(owner)
//
// # GPU Acceleration
//
// Building with -tags gpu registers the gg GPU accelerator (wgpu compute
// shaders) for the Software backend's rasterization. A host device can be
// shared with WithDeviceHandle.
package render
