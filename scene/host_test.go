// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package scene

import (
	"errors"
	"image"
	"reflect"
	"testing"

	"github.com/gogpu/gg"

	"github.com/gogpu/ggmovie/clock"
)

type recordingRoot struct {
	w, h int
}

func (r *recordingRoot) Resize(w, h int) { r.w, r.h = w, h }

type recordingEngine struct {
	calls   []string
	loadErr error
	root    *recordingRoot
	target  RenderTarget
	source  clock.TimeSource
}

func (e *recordingEngine) SetTimeSource(ts clock.TimeSource) { e.source = ts }
func (e *recordingEngine) AdvanceAnimation()                 {}

func (e *recordingEngine) Load(string, image.Point) (RootVisual, error) {
	if e.loadErr != nil {
		return nil, e.loadErr
	}
	e.root = &recordingRoot{}
	return e.root, nil
}

func (e *recordingEngine) SetRenderTarget(t RenderTarget) error {
	e.target = t
	return nil
}

func (e *recordingEngine) Polish()         { e.calls = append(e.calls, "polish") }
func (e *recordingEngine) BeginFrame()     { e.calls = append(e.calls, "begin") }
func (e *recordingEngine) Sync()           { e.calls = append(e.calls, "sync") }
func (e *recordingEngine) Render() error   { e.calls = append(e.calls, "render"); return nil }
func (e *recordingEngine) EndFrame() error { e.calls = append(e.calls, "end"); return nil }

type stubTarget struct{}

func (stubTarget) Canvas() *gg.Context      { return nil }
func (stubTarget) LogicalSize() image.Point { return image.Pt(10, 10) }
func (stubTarget) Scale() float64           { return 1 }

func TestHostLoadResizesRoot(t *testing.T) {
	e := &recordingEngine{}
	h := NewHost(e, nil)

	if err := h.Load("scene.yaml", image.Pt(320, 240)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !h.Loaded() {
		t.Fatal("Loaded() = false after successful Load")
	}
	if e.root.w != 320 || e.root.h != 240 {
		t.Errorf("root size = %dx%d, want 320x240", e.root.w, e.root.h)
	}
}

func TestHostLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantLine int
	}{
		{"plain error", errors.New("boom"), 0},
		{"located error", &LoadError{Source: "a.yaml", Line: 7, Column: 3, Err: errors.New("bad item")}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHost(&recordingEngine{loadErr: tt.err}, nil)
			err := h.Load("a.yaml", image.Pt(10, 10))

			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("Load() error = %T, want *LoadError", err)
			}
			if le.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", le.Line, tt.wantLine)
			}
			if h.Loaded() {
				t.Error("Loaded() = true after failed Load")
			}
		})
	}
}

func TestLoadErrorMessage(t *testing.T) {
	err := &LoadError{Source: "movie.yaml", Line: 4, Column: 9, Err: errors.New("unknown item type")}
	want := "scene: load movie.yaml:4:9: unknown item type"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestRenderStepOrder(t *testing.T) {
	e := &recordingEngine{}
	h := NewHost(e, nil)
	if err := h.Load("s", image.Pt(10, 10)); err != nil {
		t.Fatal(err)
	}
	if err := h.SetRenderTarget(stubTarget{}); err != nil {
		t.Fatal(err)
	}

	err := h.RenderStep(StepHooks{
		Current:   func() error { e.calls = append(e.calls, "current"); return nil },
		AfterSync: func() { e.calls = append(e.calls, "synced") },
		Flush:     func() error { e.calls = append(e.calls, "flush"); return nil },
	})
	if err != nil {
		t.Fatalf("RenderStep() error = %v", err)
	}

	want := []string{"current", "polish", "begin", "sync", "synced", "render", "end", "flush"}
	if !reflect.DeepEqual(e.calls, want) {
		t.Errorf("calls = %v, want %v", e.calls, want)
	}
}

func TestRenderStepPreconditions(t *testing.T) {
	e := &recordingEngine{}
	h := NewHost(e, nil)

	if err := h.RenderStep(StepHooks{}); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("RenderStep() before Load error = %v, want ErrNotLoaded", err)
	}

	_ = h.Load("s", image.Pt(10, 10))
	if err := h.RenderStep(StepHooks{}); !errors.Is(err, ErrNoRenderTarget) {
		t.Errorf("RenderStep() without target error = %v, want ErrNoRenderTarget", err)
	}

	_ = h.SetRenderTarget(stubTarget{})
	notCurrent := errors.New("not current")
	err := h.RenderStep(StepHooks{Current: func() error { return notCurrent }})
	if !errors.Is(err, notCurrent) {
		t.Errorf("RenderStep() error = %v, want %v", err, notCurrent)
	}
	if len(e.calls) != 0 {
		t.Errorf("engine was called without a current context: %v", e.calls)
	}
}

func TestHostClockInstall(t *testing.T) {
	e := &recordingEngine{}
	h := NewHost(e, nil)
	c, err := clock.New(24)
	if err != nil {
		t.Fatal(err)
	}

	h.InstallClock(c)
	if e.source != c {
		t.Errorf("engine time source = %v, want the virtual clock", e.source)
	}
	h.UninstallClock()
	h.UninstallClock()
	if e.source != nil {
		t.Errorf("engine time source = %v after UninstallClock, want nil", e.source)
	}
	if c.Installed() {
		t.Error("clock still installed")
	}
}
