// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build gpu

package render

import (
	"fmt"

	"github.com/gogpu/gg"
	ggpu "github.com/gogpu/gg/gpu"
)

// attachAccelerator shares the host device with the gg GPU accelerator that
// the gg/gpu import registers. Without a host device the accelerator keeps
// its own; if no adapter is available gg falls back to the CPU rasterizer.
func attachAccelerator(h DeviceHandle) error {
	if h == nil || h.Device() == nil {
		return nil
	}
	if err := ggpu.SetDeviceProvider(h); err != nil {
		return fmt.Errorf("render: attach host device: %w", err)
	}
	gg.Logger().Info("frame rendering shares the host GPU device")
	return nil
}
