// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/gogpu/ggmovie"
	"github.com/gogpu/ggmovie/internal/config"
)

// jobFlags are the request flags shared by render and serve.
type jobFlags struct {
	outputDir  *string
	outputName *string
	format     *string
	size       *string
	dpr        *float64
	durationMs *int64
	fps        *int
	scheduler  *string
	maxPending *int
	logLevel   *string
	logFormat  *string
}

func addJobFlags(fs *flag.FlagSet, cfg *config.Config) *jobFlags {
	return &jobFlags{
		outputDir:  fs.String("out", cfg.OutputDir, "output directory"),
		outputName: fs.String("name", cfg.OutputName, "output file base name"),
		format:     fs.String("format", cfg.Format, "output image format (see ggmovie formats)"),
		size:       fs.String("size", formatSize(cfg), "logical scene size WIDTHxHEIGHT"),
		dpr:        fs.Float64("dpr", cfg.DevicePixelRatio, "device pixel ratio"),
		durationMs: fs.Int64("duration", cfg.DurationMs, "movie duration in milliseconds"),
		fps:        fs.Int("fps", cfg.FPS, "frames per second"),
		scheduler:  fs.String("scheduler", cfg.Scheduler, "frame scheduler: sync|cooperative|worker"),
		maxPending: fs.Int("max-pending", cfg.MaxPendingWrites, "max frames waiting to be written (0 = 2*GOMAXPROCS)"),
		logLevel:   fs.String("log-level", cfg.LogLevel, "log level: debug|info|warn|error"),
		logFormat:  fs.String("log-format", cfg.LogFormat, "log format: text|json"),
	}
}

// request builds the request for scene from the parsed flags.
func (f *jobFlags) request(scene string) (ggmovie.Request, error) {
	size, err := config.ParseSize(*f.size)
	if err != nil {
		return ggmovie.Request{}, err
	}
	req := ggmovie.NewRequest(scene, *f.outputName, *f.outputDir, *f.format, size)
	req.DevicePixelRatio = *f.dpr
	req.DurationMs = *f.durationMs
	req.FPS = *f.fps
	req.Scheduling = *f.scheduler
	return req, nil
}

func formatSize(cfg *config.Config) string {
	return fmt.Sprintf("%dx%d", cfg.Size.X, cfg.Size.Y)
}

func stdoutIsTTY() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
