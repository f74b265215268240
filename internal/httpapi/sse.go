// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gogpu/ggmovie"
)

const keepAliveInterval = 15 * time.Second

// sendEvent writes one server-sent event and flushes it. An empty name
// writes a keep-alive comment. The payload is single-line JSON.
func sendEvent(w http.ResponseWriter, name string, payload any) {
	var b strings.Builder
	if name == "" {
		b.WriteString(": keep-alive\n\n")
	} else {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		b.WriteString("event: " + name + "\n")
		b.WriteString("data: ")
		b.Write(data)
		b.WriteString("\n\n")
	}
	_, _ = io.WriteString(w, b.String())
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// payloadOf returns the data of e: {"percent": n} for progress, the job
// view for the terminal event.
func payloadOf(h *ggmovie.JobHandle, e ggmovie.Event) any {
	if e.Terminal() {
		return viewOf(h)
	}
	return map[string]int{"percent": e.Percent}
}

// Events streams the progress of the current job. The stream ends after
// the finished or failed event.
func (s *Server) Events(w http.ResponseWriter, r *http.Request) {
	h := s.current()
	if h == nil {
		writeErr(w, http.StatusNotFound, "JOB_NOT_FOUND", "no job has been started")
		return
	}

	events, cancel := h.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	ctx := r.Context()
	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			sendEvent(w, "", nil)
		case e, ok := <-events:
			if !ok {
				return
			}
			sendEvent(w, e.Kind.String(), payloadOf(h, e))
			if e.Terminal() {
				return
			}
		}
	}
}
