// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package markup

import (
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/gogpu/gg"

	"github.com/gogpu/ggmovie/scene"
)

type fixedSource struct{ ms int64 }

func (s *fixedSource) Elapsed() int64 { return s.ms }

type canvasTarget struct {
	dc      *gg.Context
	logical image.Point
	scale   float64
}

func (t *canvasTarget) Canvas() *gg.Context      { return t.dc }
func (t *canvasTarget) LogicalSize() image.Point { return t.logical }
func (t *canvasTarget) Scale() float64           { return t.scale }

func load(t *testing.T, src string, size image.Point) (*Engine, scene.RootVisual) {
	t.Helper()
	e := New(WithFS(fstest.MapFS{"scene.yaml": {Data: []byte(src)}}))
	root, err := e.Load("scene.yaml", size)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	root.Resize(size.X, size.Y)
	return e, root
}

func renderOnce(t *testing.T, e *Engine) {
	t.Helper()
	e.Polish()
	e.BeginFrame()
	e.Sync()
	if err := e.Render(); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if err := e.EndFrame(); err != nil {
		t.Fatalf("EndFrame() error = %v", err)
	}
}

func TestTrackEval(t *testing.T) {
	linear := easings["linear"]
	ramp := func(tr track) *track {
		tr.keys = []keyframe{{at: 0, v: []float64{0}}, {at: 1000, v: []float64{100}, ease: linear}}
		return &tr
	}

	tests := []struct {
		name  string
		track *track
		at    int64
		want  float64
	}{
		{"start", ramp(track{}), 0, 0},
		{"middle", ramp(track{}), 500, 50},
		{"end", ramp(track{}), 1000, 100},
		{"after end holds", ramp(track{}), 1500, 100},
		{"before delay", ramp(track{delay: 200}), 100, 0},
		{"after delay", ramp(track{delay: 200}), 700, 50},
		{"loop", ramp(track{loop: true}), 1500, 50},
		{"loop restart", ramp(track{loop: true}), 2000, 0},
		{"alternate forward", ramp(track{loop: true, alternate: true}), 250, 25},
		{"alternate backward", ramp(track{loop: true, alternate: true}), 1250, 75},
		{"keyframes", &track{keys: []keyframe{
			{at: 0, v: []float64{0}},
			{at: 100, v: []float64{10}, ease: linear},
			{at: 300, v: []float64{-10}, ease: linear},
		}}, 200, 0},
		{"single keyframe", &track{keys: []keyframe{{at: 0, v: []float64{7}}}}, 500, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got [1]float64
			tt.track.eval(tt.at, got[:])
			if math.Abs(got[0]-tt.want) > 1e-9 {
				t.Errorf("eval(%d) = %v, want %v", tt.at, got[0], tt.want)
			}
		})
	}
}

func TestEasingEndpoints(t *testing.T) {
	for name, ease := range easings {
		if got := ease(0); math.Abs(got) > 1e-9 {
			t.Errorf("%s(0) = %v, want 0", name, got)
		}
		if got := ease(1); math.Abs(got-1) > 1e-9 {
			t.Errorf("%s(1) = %v, want 1", name, got)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantLine int
		wantMsg  string
	}{
		{"unknown type", "items:\n  - type: hexagon\n", 2, `unknown item type "hexagon"`},
		{"unknown property", "items:\n  - type: rect\n    size: 3\n", 3, `unknown item property "size"`},
		{"missing type", "items:\n  - x: 3\n", 2, "item has no type"},
		{"bad hex", "background: \"#zz0000\"\n", 1, "invalid hex color"},
		{"unknown color", "background: sparkly\n", 1, `unknown color "sparkly"`},
		{"line without stroke", "items:\n  - type: line\n    x2: 10\n", 2, "line needs a stroke color"},
		{"percent rotation", "items:\n  - type: rect\n    rotation: 50%\n", 3, "rotation does not accept percentages"},
		{"bad number", "items:\n  - type: rect\n    width: wide\n", 3, `invalid number "wide"`},
		{"mixed units", "items:\n  - type: rect\n    x:\n      from: 0\n      to: 50%\n", 5, "mixes percentages"},
		{"unknown easing", "items:\n  - type: rect\n    x:\n      from: 0\n      to: 5\n      easing: wobble\n", 6, `unknown easing "wobble"`},
		{"keyframes out of order", "items:\n  - type: rect\n    x:\n      keyframes:\n        - {at: 500, value: 1}\n        - {at: 100, value: 2}\n", 6, "precedes the previous keyframe"},
		{"incomplete animation", "items:\n  - type: rect\n    x:\n      from: 3\n", 4, "needs from and to"},
		{"unknown key", "title: demo\n", 1, `unknown scene key "title"`},
		{"items not a list", "items: 3\n", 1, "items must be a list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse("s.yaml", []byte(tt.src))
			var le *scene.LoadError
			if !errors.As(err, &le) {
				t.Fatalf("parse() error = %v, want *scene.LoadError", err)
			}
			if le.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", le.Line, tt.wantLine)
			}
			if !strings.Contains(le.Err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", le.Err, tt.wantMsg)
			}
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := parse("s.yaml", []byte("items: [rect\n"))
	var le *scene.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("parse() error = %v, want *scene.LoadError", err)
	}
	if le.Source != "s.yaml" {
		t.Errorf("Source = %q, want s.yaml", le.Source)
	}
}

func TestResolveSource(t *testing.T) {
	tests := []struct {
		source  string
		want    string
		wantErr bool
	}{
		{"movie.yaml", "movie.yaml", false},
		{"file:///tmp/movie.yaml", filepath.FromSlash("/tmp/movie.yaml"), false},
		{"file://localhost/tmp/movie.yaml", filepath.FromSlash("/tmp/movie.yaml"), false},
		{"http://example.com/movie.yaml", "", true},
		{"file://remote/movie.yaml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := resolveSource(tt.source)
		if (err != nil) != tt.wantErr {
			t.Errorf("resolveSource(%q) error = %v, wantErr %v", tt.source, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("resolveSource(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestLoadFileURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie.yaml")
	if err := os.WriteFile(path, []byte("items:\n  - {type: rect, width: 1, height: 1, fill: red}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	e := New()
	if _, err := e.Load("file://"+filepath.ToSlash(path), image.Pt(4, 4)); err != nil {
		t.Fatalf("Load(file URL) error = %v", err)
	}
	if _, err := e.Load(filepath.Join(t.TempDir(), "missing.yaml"), image.Pt(4, 4)); err == nil {
		t.Error("Load(missing) succeeded")
	}
}

func TestAnimationFollowsTimeSource(t *testing.T) {
	e, _ := load(t, `
items:
  - type: rect
    x: {from: 0, to: 100, duration: 1000}
    fill: red
`, image.Pt(200, 100))

	src := &fixedSource{}
	e.SetTimeSource(src)

	for _, ms := range []int64{0, 250, 1000} {
		src.ms = ms
		e.AdvanceAnimation()
		e.Polish()
		if got, want := e.layout[0].x, float64(ms)/10; got != want {
			t.Errorf("x at %d ms = %v, want %v", ms, got, want)
		}
		if e.Time() != ms {
			t.Errorf("Time() = %d, want %d", e.Time(), ms)
		}
	}
}

func TestPolishResolvesPercentages(t *testing.T) {
	e, root := load(t, `
items:
  - type: circle
    x: 50%
    y: 25%
    radius: 10%
    fill: blue
  - type: rect
    visible: false
    fill: red
`, image.Pt(200, 100))
	e.SetTimeSource(&fixedSource{})

	e.Polish()
	if len(e.layout) != 1 {
		t.Fatalf("layout has %d shapes, want 1 (hidden item skipped)", len(e.layout))
	}
	s := e.layout[0]
	if s.x != 100 || s.y != 25 || s.r != 10 {
		t.Errorf("circle = (%v, %v) r=%v, want (100, 25) r=10", s.x, s.y, s.r)
	}

	root.Resize(400, 400)
	e.Polish()
	s = e.layout[0]
	if s.x != 200 || s.y != 100 || s.r != 40 {
		t.Errorf("after resize circle = (%v, %v) r=%v, want (200, 100) r=40", s.x, s.y, s.r)
	}
}

func TestRenderScalesToDevicePixels(t *testing.T) {
	e, _ := load(t, `
background: black
items:
  - type: rect
    x: 0
    y: 0
    width: 50%
    height: 100%
    fill: red
`, image.Pt(10, 10))
	e.SetTimeSource(&fixedSource{})

	target := &canvasTarget{dc: gg.NewContext(20, 20), logical: image.Pt(10, 10), scale: 2}
	if err := e.SetRenderTarget(target); err != nil {
		t.Fatal(err)
	}
	renderOnce(t, e)

	img := target.dc.Image()
	left := color.RGBAModel.Convert(img.At(5, 10)).(color.RGBA)
	right := color.RGBAModel.Convert(img.At(15, 10)).(color.RGBA)
	if left.R < 200 || left.G > 50 {
		t.Errorf("left pixel = %v, want red", left)
	}
	if right.R > 50 || right.A < 200 {
		t.Errorf("right pixel = %v, want opaque black", right)
	}
	if e.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", e.Frames())
	}
}

func TestRenderUsesSyncedState(t *testing.T) {
	e, _ := load(t, `
items:
  - type: rect
    x: {from: 0, to: 100, duration: 100}
    width: 1
    height: 1
    fill: red
`, image.Pt(100, 10))
	src := &fixedSource{}
	e.SetTimeSource(src)

	e.Polish()
	e.BeginFrame()
	e.Sync()

	// Advancing after Sync must not change what this frame draws.
	src.ms = 100
	e.AdvanceAnimation()
	if got := e.current.shapes[0].x; got != 0 {
		t.Errorf("committed x = %v after advance, want 0", got)
	}
}

func TestRenderPreconditions(t *testing.T) {
	e := New()
	if err := e.Render(); !errors.Is(err, scene.ErrNotLoaded) {
		t.Errorf("Render() before Load error = %v, want ErrNotLoaded", err)
	}
	if err := e.EndFrame(); !errors.Is(err, errNoFrame) {
		t.Errorf("EndFrame() without BeginFrame error = %v, want errNoFrame", err)
	}

	e, _ = load(t, "items: []\n", image.Pt(4, 4))
	if err := e.Render(); !errors.Is(err, scene.ErrNoRenderTarget) {
		t.Errorf("Render() without target error = %v, want ErrNoRenderTarget", err)
	}
}

func TestParsedDocumentsAreShared(t *testing.T) {
	src := "items:\n  - type: rect\n    width: 4\n    height: 4\n    fill: \"#abcdef\"\n"
	a, _ := load(t, src, image.Pt(8, 8))
	b, _ := load(t, src, image.Pt(8, 8))
	if a.doc != b.doc {
		t.Error("identical sources were parsed twice")
	}

	c, _ := load(t, strings.Replace(src, "#abcdef", "#fedcba", 1), image.Pt(8, 8))
	if c.doc == a.doc {
		t.Error("changed source reused a stale document")
	}
}
