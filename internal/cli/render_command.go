// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/gogpu/ggmovie"
	"github.com/gogpu/ggmovie/internal/config"
	"github.com/gogpu/ggmovie/internal/logger"
)

type renderResult struct {
	Report      ggmovie.Report `json:"report"`
	WriteErrors []string       `json:"writeErrors,omitempty"`
	Error       string         `json:"error,omitempty"`
}

func runRender(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	jf := addJobFlags(fs, cfg)
	scene := fs.String("scene", "", "scene file path or file:// URL (or first argument)")
	showProgress := fs.Bool("progress", true, "show the progress view when stdout is a terminal")
	jsonOut := fs.Bool("json", false, "print the report as JSON")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	source := strings.TrimSpace(*scene)
	if source == "" && fs.NArg() > 0 {
		source = fs.Arg(0)
	}
	if source == "" {
		return errors.New("render: a scene is required")
	}
	req, err := jf.request(source)
	if err != nil {
		return err
	}

	interactive := *showProgress && !*jsonOut && stdoutIsTTY()
	level := *jf.logLevel
	if interactive && logger.ParseLevel(level) < slog.LevelWarn {
		// Keep log lines from tearing the progress view.
		level = "warn"
	}
	log := logger.New(logger.Config{Level: level, Format: *jf.logFormat, ServiceName: "ggmovie"})
	ggmovie.SetLogger(log)

	opts := []ggmovie.Option{
		ggmovie.WithMaxPendingWrites(*jf.maxPending),
		ggmovie.WithLogger(log),
	}

	var report ggmovie.Report
	switch {
	case interactive:
		report, err = renderWithProgressView(req, opts)
	case *jsonOut:
		report, err = ggmovie.NewDriver(opts...).RenderMovie(context.Background(), req)
	default:
		report, err = renderPlain(os.Stdout, req, opts)
	}

	if *jsonOut {
		if perr := printJSON(resultOf(report, err)); perr != nil {
			return perr
		}
		return err
	}
	if err == nil {
		printSummary(os.Stdout, req, report)
	}
	return err
}

// renderPlain prints a line whenever a percentage crosses a multiple of 10.
func renderPlain(w io.Writer, req ggmovie.Request, opts []ggmovie.Option) (ggmovie.Report, error) {
	lastRender, lastWrite := -1, -1
	step := func(name string, last *int, pct int) {
		if pct/10 == *last {
			return
		}
		*last = pct / 10
		_, _ = fmt.Fprintf(w, "%-6s %3d%%\n", name, pct)
	}
	listener := ggmovie.ListenerFuncs{
		RenderProgress: func(pct int) { step("render", &lastRender, pct) },
		WriteProgress:  func(pct int) { step("write", &lastWrite, pct) },
	}

	_, _ = fmt.Fprintf(w, "rendering %s: %d frames at %d fps\n", req.SceneSource, req.TotalFrames(), req.FPS)
	d := ggmovie.NewDriver(append(opts, ggmovie.WithListener(listener))...)
	return d.RenderMovie(context.Background(), req)
}

func printSummary(w io.Writer, req ggmovie.Request, r ggmovie.Report) {
	_, _ = fmt.Fprintf(w, "%s: %d/%d frames written to %s (%s) in %s\n",
		r.Status, r.Written, r.TotalFrames, req.OutputDirectory,
		humanize.Bytes(uint64(r.Bytes)), r.Wall.Round(time.Millisecond))
	for _, we := range r.WriteErrors {
		_, _ = fmt.Fprintf(w, "  %v\n", we)
	}
}

func resultOf(r ggmovie.Report, err error) renderResult {
	res := renderResult{Report: r}
	for _, we := range r.WriteErrors {
		res.WriteErrors = append(res.WriteErrors, we.Error())
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
