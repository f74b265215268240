// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package capture

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"sort"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrUnknownFormat is returned for an image format without an encoder.
var ErrUnknownFormat = errors.New("capture: unknown image format")

// Encoder writes img to w in one image format.
type Encoder func(w io.Writer, img image.Image) error

var encoders = map[string]Encoder{
	"png":  png.Encode,
	"jpg":  encodeJPEG,
	"jpeg": encodeJPEG,
	"gif": func(w io.Writer, img image.Image) error {
		return gif.Encode(w, img, nil)
	},
	"bmp":  bmp.Encode,
	"tif":  encodeTIFF,
	"tiff": encodeTIFF,
}

func encodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
}

func encodeTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

// EncoderFor returns the encoder for format, matched case-insensitively.
func EncoderFor(format string) (Encoder, error) {
	enc, ok := encoders[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return enc, nil
}

// Formats lists the supported format names.
func Formats() []string {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
