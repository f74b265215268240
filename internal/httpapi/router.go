// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package httpapi exposes a ggmovie Driver over HTTP.
//
// Routes:
//
//	POST /jobs                 start a render job
//	GET  /jobs/current         the running job, or the last one
//	GET  /jobs/current/events  server-sent progress events of that job
//	GET  /healthz              driver health
package httpapi

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gogpu/ggmovie"
)

// Deps are the collaborators of a Server.
type Deps struct {
	Driver *ggmovie.Driver
	// Defaults fills the fields a POST /jobs body leaves out.
	Defaults ggmovie.Request
	Log      *slog.Logger
}

// Server holds the handler state.
type Server struct {
	driver   *ggmovie.Driver
	defaults ggmovie.Request
	log      *slog.Logger

	mu   sync.Mutex
	last *ggmovie.JobHandle
}

// NewServer returns a Server for d. A nil Log uses ggmovie.Logger().
func NewServer(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = ggmovie.Logger()
	}
	return &Server{
		driver:   d.Driver,
		defaults: d.Defaults,
		log:      log.With("component", "httpapi"),
	}
}

// Router returns the chi router serving s.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.Health)

	r.Post("/jobs", s.PostJob)
	r.Get("/jobs/current", s.GetCurrentJob)
	r.Get("/jobs/current/events", s.Events)

	return r
}

// NewRouter is shorthand for NewServer(d).Router().
func NewRouter(d Deps) http.Handler {
	return NewServer(d).Router()
}

// current returns the running job, or the last job started through s.
func (s *Server) current() *ggmovie.JobHandle {
	if h := s.driver.Active(); h != nil {
		return h
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
