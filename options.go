package ggmovie

import (
	"log/slog"

	"github.com/gogpu/ggmovie/render"
	"github.com/gogpu/ggmovie/scene"
	"github.com/gogpu/ggmovie/scene/markup"
)

// Option configures a Driver during creation.
//
// Example:
//
//	// Default: synchronous loop, software backend, YAML scenes
//	d := ggmovie.NewDriver()
//
//	// Dedicated render thread, at most 4 writes in flight
//	d := ggmovie.NewDriver(ggmovie.WithScheduler(ggmovie.NewWorker()), ggmovie.WithMaxPendingWrites(4))
type Option func(*driverOptions)

// driverOptions holds optional configuration for a Driver.
type driverOptions struct {
	scheduler        Scheduler
	backend          render.Backend
	newEngine        func(*slog.Logger) scene.Engine
	maxPendingWrites int
	listeners        []Listener
	logger           *slog.Logger
	pixelFormat      render.PixelFormat
}

// defaultOptions returns the default driver options.
func defaultOptions() driverOptions {
	return driverOptions{
		scheduler: Synchronous{},
		backend:   render.NewSoftware(),
		newEngine: func(l *slog.Logger) scene.Engine {
			return markup.New(markup.WithLogger(l))
		},
		pixelFormat: render.DefaultPixelFormat(),
	}
}

// WithScheduler sets the scheduler used when a Request names none.
func WithScheduler(s Scheduler) Option {
	return func(o *driverOptions) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// WithBackend sets the graphics backend. The default is render.NewSoftware().
func WithBackend(b render.Backend) Option {
	return func(o *driverOptions) {
		if b != nil {
			o.backend = b
		}
	}
}

// WithEngineFactory sets how a job creates its scene engine. The default
// creates a markup engine.
func WithEngineFactory(fn func(*slog.Logger) scene.Engine) Option {
	return func(o *driverOptions) {
		if fn != nil {
			o.newEngine = fn
		}
	}
}

// WithMaxPendingWrites bounds the frame writes in flight. Zero selects
// 2*GOMAXPROCS.
func WithMaxPendingWrites(n int) Option {
	return func(o *driverOptions) {
		o.maxPendingWrites = n
	}
}

// WithListener adds a listener notified about every job of the Driver.
func WithListener(l Listener) Option {
	return func(o *driverOptions) {
		if l != nil {
			o.listeners = append(o.listeners, l)
		}
	}
}

// WithLogger sets the Driver's logger. The default is Logger().
func WithLogger(l *slog.Logger) Option {
	return func(o *driverOptions) {
		o.logger = l
	}
}

// WithPixelFormat sets the color and depth/stencil format of the device
// context and frame target.
func WithPixelFormat(f render.PixelFormat) Option {
	return func(o *driverOptions) {
		o.pixelFormat = f
	}
}
