// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads the ggmovie command defaults from the environment.
package config

import (
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port      int
	LogLevel  string
	LogFormat string

	OutputDir        string
	OutputName       string
	Format           string
	Size             image.Point
	DevicePixelRatio float64
	DurationMs       int64
	FPS              int
	Scheduler        string
	MaxPendingWrites int
}

func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	size, err := ParseSize(getEnv("GGMOVIE_SIZE", "640x360"))
	if err != nil {
		return nil, fmt.Errorf("invalid GGMOVIE_SIZE: %w", err)
	}

	dpr, err := strconv.ParseFloat(getEnv("GGMOVIE_DPR", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GGMOVIE_DPR: %w", err)
	}

	duration, err := strconv.ParseInt(getEnv("GGMOVIE_DURATION_MS", "1000"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GGMOVIE_DURATION_MS: %w", err)
	}

	fps, err := strconv.Atoi(getEnv("GGMOVIE_FPS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid GGMOVIE_FPS: %w", err)
	}

	pending, err := strconv.Atoi(getEnv("GGMOVIE_MAX_PENDING_WRITES", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid GGMOVIE_MAX_PENDING_WRITES: %w", err)
	}

	return &Config{
		Port:             port,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		OutputDir:        getEnv("GGMOVIE_OUTPUT_DIR", "frames"),
		OutputName:       getEnv("GGMOVIE_OUTPUT_NAME", "frame"),
		Format:           getEnv("GGMOVIE_FORMAT", "png"),
		Size:             size,
		DevicePixelRatio: dpr,
		DurationMs:       duration,
		FPS:              fps,
		Scheduler:        getEnv("GGMOVIE_SCHEDULER", "sync"),
		MaxPendingWrites: pending,
	}, nil
}

// ParseSize parses "WIDTHxHEIGHT".
func ParseSize(s string) (image.Point, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return image.Point{}, fmt.Errorf("size %q is not WIDTHxHEIGHT", s)
	}
	x, err := strconv.Atoi(w)
	if err != nil {
		return image.Point{}, fmt.Errorf("size %q: width: %w", s, err)
	}
	y, err := strconv.Atoi(h)
	if err != nil {
		return image.Point{}, fmt.Errorf("size %q: height: %w", s, err)
	}
	return image.Pt(x, y), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
