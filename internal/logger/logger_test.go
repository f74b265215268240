// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf, ServiceName: "ggmovie"})

	log.Info("job started", "frames", 24)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v", err)
	}
	if entry["msg"] != "job started" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["service"] != "ggmovie" {
		t.Errorf("service = %v", entry["service"])
	}
	if entry["frames"] != float64(24) {
		t.Errorf("frames = %v", entry["frames"])
	}

	ts, ok := entry["time"].(string)
	if !ok {
		t.Fatalf("time = %v, want string", entry["time"])
	}
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t.Fatalf("time %q is not RFC3339: %v", ts, err)
	}
	if !strings.HasSuffix(ts, "Z") || parsed.Location() != time.UTC {
		t.Errorf("time %q is not UTC", ts)
	}
}

func TestTextOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "text", Output: &buf})

	log.Info("hello", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "msg=hello") || !strings.Contains(out, "key=value") {
		t.Errorf("unexpected text output: %s", out)
	}
	if strings.Contains(out, "service=") {
		t.Errorf("service attribute without ServiceName: %s", out)
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		level  string
		debug  bool
		info   bool
		errors bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"error", false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Level: tt.level, Output: &buf})

			log.Debug("d")
			if got := buf.Len() > 0; got != tt.debug {
				t.Errorf("debug logged = %v, want %v", got, tt.debug)
			}
			buf.Reset()
			log.Info("i")
			if got := buf.Len() > 0; got != tt.info {
				t.Errorf("info logged = %v, want %v", got, tt.info)
			}
			buf.Reset()
			log.Error("e")
			if got := buf.Len() > 0; got != tt.errors {
				t.Errorf("error logged = %v, want %v", got, tt.errors)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"debug", "DEBUG"},
		{"DEBUG", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{" error ", "ERROR"},
		{"verbose", "INFO"},
		{"", "INFO"},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input).String(); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}
