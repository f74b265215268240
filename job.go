package ggmovie

import (
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/ggmovie/capture"
)

// MaxFrames bounds the frame count of a job.
const MaxFrames = math.MaxInt32

// Request defaults, applied by NewRequest.
const (
	DefaultDevicePixelRatio = 1.0
	DefaultDurationMs       = 1000
	DefaultFPS              = 24
)

// Request describes a movie to render.
type Request struct {
	// SceneSource is a path or file:// URL understood by the scene engine.
	SceneSource     string      `json:"scene"`
	OutputName      string      `json:"name"`
	OutputDirectory string      `json:"directory"`
	OutputFormat    string      `json:"format"`
	Size            image.Point `json:"size"`

	DevicePixelRatio float64 `json:"devicePixelRatio"`
	DurationMs       int64   `json:"durationMs"`
	FPS              int     `json:"fps"`

	// Scheduling selects a scheduler by name ("sync", "cooperative" or
	// "worker"). Empty uses the Driver's scheduler.
	Scheduling string `json:"scheduling,omitempty"`
}

// NewRequest returns a Request with the default device pixel ratio,
// duration and frame rate.
func NewRequest(source, name, dir, format string, size image.Point) Request {
	return Request{
		SceneSource:      source,
		OutputName:       name,
		OutputDirectory:  dir,
		OutputFormat:     format,
		Size:             size,
		DevicePixelRatio: DefaultDevicePixelRatio,
		DurationMs:       DefaultDurationMs,
		FPS:              DefaultFPS,
	}
}

// TotalFrames returns floor(DurationMs/1000) * FPS, capped at MaxFrames.
// A duration below one second renders no frames.
func (r Request) TotalFrames() int {
	if r.FPS <= 0 || r.DurationMs < 0 {
		return 0
	}
	secs := r.DurationMs / 1000
	if secs > int64(MaxFrames/r.FPS) {
		return MaxFrames
	}
	return int(secs) * r.FPS
}

// Validate checks the fields a job cannot start without. Size and device
// pixel ratio are checked by the graphics layer.
func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.OutputName) == "":
		return invalidf("empty output name")
	case strings.TrimSpace(r.OutputDirectory) == "":
		return invalidf("empty output directory")
	case r.FPS <= 0:
		return invalidf("fps must be positive, got %d", r.FPS)
	case r.DurationMs < 0:
		return invalidf("negative duration %d ms", r.DurationMs)
	case r.DurationMs/1000 > int64(MaxFrames/r.FPS):
		return invalidf("%d ms at %d fps exceeds %d frames", r.DurationMs, r.FPS, MaxFrames)
	}
	if _, err := capture.EncoderFor(r.OutputFormat); err != nil {
		return invalidf("%v", err)
	}
	if r.Scheduling != "" {
		if _, err := SchedulerByName(r.Scheduling); err != nil {
			return invalidf("%v", err)
		}
	}
	return nil
}

// Status is the state of a render job.
type Status int

const (
	StatusIdle Status = iota
	StatusInitializing
	StatusRunning
	StatusCleanup
	StatusFinished
	StatusFailed
)

var statusNames = [...]string{"idle", "initializing", "running", "cleanup", "finished", "failed"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText encodes the status name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("ggmovie: unknown status %q", text)
}

// Done reports whether s is Finished or Failed.
func (s Status) Done() bool {
	return s == StatusFinished || s == StatusFailed
}

// Job is a snapshot of a render job.
type Job struct {
	ID           uuid.UUID `json:"id"`
	Request      Request   `json:"request"`
	Status       Status    `json:"status"`
	TotalFrames  int       `json:"totalFrames"`
	CurrentFrame int       `json:"currentFrame"`
	StartedAt    time.Time `json:"startedAt"`
}

// Report is the outcome of a finished or failed job.
type Report struct {
	JobID       uuid.UUID `json:"jobId"`
	Status      Status    `json:"status"`
	TotalFrames int       `json:"totalFrames"`
	Rendered    int       `json:"rendered"`
	Written     int       `json:"written"`
	Failed      int       `json:"failed"`
	Bytes       int64     `json:"bytes"`

	// WriteErrors lists failed frames by index.
	WriteErrors []*capture.WriteError `json:"-"`

	// Elapsed is the synthetic animation time covered.
	Elapsed time.Duration `json:"elapsed"`
	// Wall is how long the job took.
	Wall time.Duration `json:"wall"`
}
