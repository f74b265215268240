// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package scene hosts a declarative scene engine for offscreen rendering.
//
// Host loads a scene description through an Engine, sizes its root visual
// to the output and runs the per-frame render step. The markup subpackage
// provides the built-in YAML engine.
package scene
