// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package httpapi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/gogpu/ggmovie"
)

type progressView struct {
	Render int `json:"render"`
	Write  int `json:"write"`
}

type jobView struct {
	Job         ggmovie.Job     `json:"job"`
	Progress    progressView    `json:"progress"`
	Report      *ggmovie.Report `json:"report,omitempty"`
	WriteErrors []string        `json:"writeErrors,omitempty"`
	Error       string          `json:"error,omitempty"`
}

func viewOf(h *ggmovie.JobHandle) jobView {
	v := jobView{Job: h.Job()}
	v.Progress.Render, v.Progress.Write = h.Progress()
	if !v.Job.Status.Done() {
		return v
	}
	report, err := h.Result()
	v.Report = &report
	for _, we := range report.WriteErrors {
		v.WriteErrors = append(v.WriteErrors, we.Error())
	}
	if err != nil {
		v.Error = err.Error()
	}
	return v
}

// PostJob starts a render job. The body is a JSON ggmovie.Request; omitted
// fields take the server defaults.
func (s *Server) PostJob(w http.ResponseWriter, r *http.Request) {
	req := s.defaults
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json body: "+err.Error())
		return
	}
	// The driver halts on these, so they must not reach it from a client.
	if err := checkGeometry(req); err != nil {
		writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	// The job outlives the request.
	ctx := context.WithoutCancel(r.Context())
	h, err := s.driver.StartRenderJob(ctx, req)
	switch {
	case errors.Is(err, ggmovie.ErrInvalidRequest):
		writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	case errors.Is(err, ggmovie.ErrBusy):
		writeErr(w, http.StatusConflict, "BUSY", err.Error())
		return
	case errors.Is(err, ggmovie.ErrDriverHalted):
		writeErr(w, http.StatusServiceUnavailable, "DRIVER_HALTED", err.Error())
		return
	case err != nil:
		s.log.Error("start render job", "error", err)
		writeErr(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	s.mu.Lock()
	s.last = h
	s.mu.Unlock()
	s.log.Info("job accepted", "job", h.ID().String(), "scene", req.SceneSource)
	writeJSON(w, http.StatusAccepted, viewOf(h))
}

// checkGeometry rejects an output size or device pixel ratio the driver
// would classify as fatal.
func checkGeometry(req ggmovie.Request) error {
	if req.Size.X <= 0 || req.Size.Y <= 0 {
		return fmt.Errorf("size must be positive, got %dx%d", req.Size.X, req.Size.Y)
	}
	dpr := req.DevicePixelRatio
	if !(dpr > 0) || math.IsInf(dpr, 1) {
		return fmt.Errorf("devicePixelRatio must be positive and finite, got %v", dpr)
	}
	return nil
}

// GetCurrentJob reports the running job, or the last one.
func (s *Server) GetCurrentJob(w http.ResponseWriter, r *http.Request) {
	h := s.current()
	if h == nil {
		writeErr(w, http.StatusNotFound, "JOB_NOT_FOUND", "no job has been started")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(h))
}

// Health reports whether the driver can accept jobs.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status": "ok",
		"busy":   s.driver.Active() != nil,
	}
	if err := s.driver.Halted(); err != nil {
		health["status"] = "halted"
		health["error"] = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, health)
		return
	}
	writeJSON(w, http.StatusOK, health)
}
