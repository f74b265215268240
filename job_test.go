package ggmovie

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		s    Status
		want string
		done bool
	}{
		{StatusIdle, "idle", false},
		{StatusInitializing, "initializing", false},
		{StatusRunning, "running", false},
		{StatusCleanup, "cleanup", false},
		{StatusFinished, "finished", true},
		{StatusFailed, "failed", true},
		{Status(42), "Status(42)", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.s.String())
		assert.Equal(t, tt.done, tt.s.Done(), tt.want)
	}

	text, err := StatusRunning.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "running", string(text))

	var s Status
	require.NoError(t, s.UnmarshalText([]byte("cleanup")))
	assert.Equal(t, StatusCleanup, s)
	assert.Error(t, s.UnmarshalText([]byte("paused")))
}

func TestTotalFrames(t *testing.T) {
	tests := []struct {
		durationMs int64
		fps        int
		want       int
	}{
		{1000, 24, 24},
		{1999, 24, 24},
		{2000, 30, 60},
		{999, 60, 0},
		{0, 24, 0},
		{1000, 0, 0},
		{-1000, 24, 0},
		{math.MaxInt64, 24, MaxFrames},
		{math.MaxInt64, math.MaxInt, MaxFrames},
	}
	for _, tt := range tests {
		r := Request{DurationMs: tt.durationMs, FPS: tt.fps}
		assert.Equal(t, tt.want, r.TotalFrames(), "%d ms at %d fps", tt.durationMs, tt.fps)
	}
}

func TestNewRequestDefaults(t *testing.T) {
	r := NewRequest("scene.yaml", "out", "/tmp/out", "png", image.Pt(64, 48))
	assert.Equal(t, DefaultDevicePixelRatio, r.DevicePixelRatio)
	assert.Equal(t, int64(DefaultDurationMs), r.DurationMs)
	assert.Equal(t, DefaultFPS, r.FPS)
	assert.NoError(t, r.Validate())
}

func TestValidateRejectsFrameCountOverflow(t *testing.T) {
	tests := []struct {
		name       string
		durationMs int64
		fps        int
		valid      bool
	}{
		{"at limit", 1000, MaxFrames, true},
		{"one second over", 2000, MaxFrames, false},
		{"huge duration", math.MaxInt64, 24, false},
		{"huge fps", 10_000, math.MaxInt, false},
		{"huge fps under a second", 999, math.MaxInt, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRequest("scene.yaml", "out", "/tmp/out", "png", image.Pt(8, 8))
			r.DurationMs = tt.durationMs
			r.FPS = tt.fps

			err := r.Validate()
			if tt.valid {
				require.NoError(t, err)
				assert.GreaterOrEqual(t, r.TotalFrames(), 0)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}
