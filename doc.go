// Package ggmovie renders animated scenes offscreen into numbered image
// files.
//
// # Overview
//
// A Driver runs one render job at a time. The job loads a scene, renders
// it frame by frame against a synthetic clock and writes every frame to
// {dir}/{name}_{index}.{format}. Rendered time is decoupled from wall time,
// so the same request always produces the same images regardless of how
// fast the host is.
//
// # Quick Start
//
//	d := ggmovie.NewDriver()
//	req := ggmovie.NewRequest("intro.yaml", "intro", "out", "png", image.Pt(640, 360))
//	report, err := d.RenderMovie(ctx, req)
//
// # Job Lifecycle
//
// A job moves through Idle, Initializing, Running, Cleanup and ends in
// Finished or Failed. It renders floor(DurationMs/1000)*FPS frames; the
// clock advances 1000/FPS milliseconds (integer division) per frame. The
// job is Finished once every scheduled write has completed, successful or
// not. Failed writes are listed in the Report.
//
// # Scheduling
//
// The same frame loop runs under three strategies:
//   - Synchronous: a plain loop on the calling goroutine
//   - Cooperative: one continuation event per frame on an EventQueue
//   - Worker: a goroutine locked to its OS thread owns the graphics
//     resources; the controller advances the clock while it renders
//
// # Errors
//
// Scene load failures (*scene.LoadError) and write failures
// (*capture.WriteError) are job errors. Graphics and protocol failures are
// wrapped in *FatalError; they fail the job and halt the Driver, which then
// rejects new jobs with ErrDriverHalted.
package ggmovie
