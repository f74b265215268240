// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package markup

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gogpu/gg"

	"github.com/gogpu/ggmovie/clock"
	"github.com/gogpu/ggmovie/internal/cache"
	"github.com/gogpu/ggmovie/scene"
)

var errNoFrame = errors.New("markup: EndFrame without BeginFrame")

// Option configures an Engine.
type Option func(*Engine)

// WithFS reads scene sources from fsys instead of the local file system.
func WithFS(fsys fs.FS) Option {
	return func(e *Engine) {
		e.readFile = func(name string) ([]byte, error) {
			return fs.ReadFile(fsys, filepath.ToSlash(name))
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Engine renders YAML scene markup with gg.
//
// Animations are evaluated at the time reported by the installed time
// source, or at wall-clock time since Load when none is installed.
// AdvanceAnimation may run concurrently with Render: Render only reads the
// state committed by the last Sync.
type Engine struct {
	log      *slog.Logger
	readFile func(string) ([]byte, error)

	mu       sync.Mutex
	doc      *document
	source   clock.TimeSource
	loadedAt time.Time
	size     image.Point
	target   scene.RenderTarget

	// evaluated at now
	now        int64
	background gg.RGBA
	values     [][numProps]float64
	fills      []gg.RGBA
	strokes    []gg.RGBA

	dirty   bool
	layout  []shape
	current frame
	inFrame bool
	frames  int
}

var _ scene.Engine = (*Engine)(nil)

// New returns an Engine with nothing loaded.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:      slog.New(slog.DiscardHandler),
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With("component", "markup")
	return e
}

// Root is the root visual of a loaded scene.
type Root struct {
	e *Engine
}

// Resize sets the size percentages are resolved against.
func (r *Root) Resize(width, height int) {
	r.e.mu.Lock()
	defer r.e.mu.Unlock()
	r.e.size = image.Pt(width, height)
	r.e.dirty = true
}

// Size returns the current root size.
func (r *Root) Size() image.Point {
	r.e.mu.Lock()
	defer r.e.mu.Unlock()
	return r.e.size
}

// Load reads and parses source, a file path or file:// URL.
func (e *Engine) Load(source string, size image.Point) (scene.RootVisual, error) {
	path, err := resolveSource(source)
	if err != nil {
		return nil, &scene.LoadError{Source: source, Err: err}
	}
	data, err := e.readFile(path)
	if err != nil {
		return nil, &scene.LoadError{Source: source, Err: err}
	}
	doc, err := e.document(source, data)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc = doc
	e.size = size
	e.loadedAt = time.Now()
	e.values = make([][numProps]float64, len(doc.items))
	e.fills = make([]gg.RGBA, len(doc.items))
	e.strokes = make([]gg.RGBA, len(doc.items))
	e.current = frame{}
	e.frames = 0
	e.evaluate(e.timeLocked())

	e.log.Debug("scene parsed", "source", source, "items", len(doc.items))
	return &Root{e: e}, nil
}

// docKey identifies a parsed document. The source is part of the key
// because load errors and logs name it.
type docKey struct {
	source string
	sum    [sha256.Size]byte
}

// documents holds parsed documents shared by every Engine. A document is
// never modified after parse.
var documents = cache.New[docKey, *document](64)

func (e *Engine) document(source string, data []byte) (*document, error) {
	key := docKey{source: source, sum: sha256.Sum256(data)}
	if doc, ok := documents.Get(key); ok {
		e.log.Debug("scene reused", "source", source)
		return doc, nil
	}
	doc, err := parse(source, data)
	if err != nil {
		return nil, err
	}
	documents.Add(key, doc)
	return doc, nil
}

// resolveSource maps a scene reference to a path.
func resolveSource(source string) (string, error) {
	if source == "" {
		return "", errors.New("empty scene source")
	}
	if !strings.Contains(source, "://") {
		return source, nil
	}
	u, err := url.Parse(source)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported scene source scheme %q", u.Scheme)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("unsupported scene source host %q", u.Host)
	}
	return filepath.FromSlash(u.Path), nil
}

// SetTimeSource installs the animation time source. A nil source restores
// the wall clock.
func (e *Engine) SetTimeSource(ts clock.TimeSource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.source = ts
	if ts != nil && e.doc != nil {
		e.evaluate(ts.Elapsed())
	}
}

// AdvanceAnimation evaluates every animation at the current time.
func (e *Engine) AdvanceAnimation() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc != nil {
		e.evaluate(e.timeLocked())
	}
}

// Time returns the instant animations were last evaluated at, in ms.
func (e *Engine) Time() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

// Frames returns the number of frames ended since Load.
func (e *Engine) Frames() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// SetRenderTarget binds the target Render draws into.
func (e *Engine) SetRenderTarget(target scene.RenderTarget) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.target = target
	return nil
}

// Polish resolves percentages against the root size. Without a time
// source it first catches animations up with the wall clock.
func (e *Engine) Polish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil {
		return
	}
	if e.source == nil {
		e.evaluate(e.timeLocked())
	}
	if !e.dirty {
		return
	}

	w, h := float64(e.size.X), float64(e.size.Y)
	e.layout = e.layout[:0]
	for i, it := range e.doc.items {
		if !it.visible {
			continue
		}
		e.layout = append(e.layout, resolve(it, &e.values[i], e.fills[i], e.strokes[i], w, h))
	}
	e.dirty = false
}

// BeginFrame starts a frame.
func (e *Engine) BeginFrame() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFrame = true
}

// Sync commits the polished layout as the state the next Render draws.
func (e *Engine) Sync() {
	e.mu.Lock()
	defer e.mu.Unlock()
	shapes := make([]shape, len(e.layout))
	copy(shapes, e.layout)
	e.current = frame{background: e.background, shapes: shapes}
}

// Render draws the committed state into the render target.
func (e *Engine) Render() error {
	e.mu.Lock()
	f, target, loaded := e.current, e.target, e.doc != nil
	e.mu.Unlock()

	if !loaded {
		return scene.ErrNotLoaded
	}
	if target == nil {
		return scene.ErrNoRenderTarget
	}
	dc := target.Canvas()
	if dc == nil {
		return scene.ErrNoRenderTarget
	}
	return drawFrame(dc, f, target.Scale())
}

// EndFrame finishes the frame started by BeginFrame.
func (e *Engine) EndFrame() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.inFrame {
		return errNoFrame
	}
	e.inFrame = false
	e.frames++
	return nil
}

func (e *Engine) timeLocked() int64 {
	if e.source != nil {
		return e.source.Elapsed()
	}
	return time.Since(e.loadedAt).Milliseconds()
}

func (e *Engine) evaluate(ms int64) {
	e.now = ms
	e.background = e.doc.background.at(ms)
	for i, it := range e.doc.items {
		for pr := prop(0); pr < numProps; pr++ {
			e.values[i][pr] = it.num[pr].at(ms)
		}
		e.fills[i] = it.fill.at(ms)
		e.strokes[i] = it.stroke.at(ms)
	}
	e.dirty = true
}
