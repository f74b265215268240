// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package capture reads rendered frames back and writes them to disk
// through a bounded pool of encoders.
package capture

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
)

// ErrNotFlushed is returned when a target is read before its frame was
// flushed.
var ErrNotFlushed = errors.New("capture: frame target not flushed")

// Source is a render target that can be read back.
type Source interface {
	Flushed() bool
	ReadPixels() (*image.RGBA, error)
}

// Frame is one captured image and where it goes.
type Frame struct {
	// Index is 1-based.
	Index int
	Path  string
	Image *image.RGBA
}

// Capture copies the flushed contents of src into a new image.
func Capture(src Source) (*image.RGBA, error) {
	if !src.Flushed() {
		return nil, ErrNotFlushed
	}
	img, err := src.ReadPixels()
	if err != nil {
		return nil, fmt.Errorf("capture: read pixels: %w", err)
	}
	return img, nil
}

// FramePath returns {dir}/{name}_{index}.{format}. Indices are not padded.
func FramePath(dir, name string, index int, format string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%d.%s", name, index, format))
}
