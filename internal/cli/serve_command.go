// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogpu/ggmovie"
	"github.com/gogpu/ggmovie/internal/config"
	"github.com/gogpu/ggmovie/internal/httpapi"
	"github.com/gogpu/ggmovie/internal/logger"
)

func runServe(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	jf := addJobFlags(fs, cfg)
	port := fs.Int("port", cfg.Port, "listen port")
	scene := fs.String("scene", "", "scene used by jobs that name none")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	defaults, err := jf.request(*scene)
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{Level: *jf.logLevel, Format: *jf.logFormat, ServiceName: "ggmovie"})
	ggmovie.SetLogger(log)

	d := ggmovie.NewDriver(
		ggmovie.WithMaxPendingWrites(*jf.maxPending),
		ggmovie.WithLogger(log),
	)

	addr := fmt.Sprintf(":%d", *port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewRouter(httpapi.Deps{Driver: d, Defaults: defaults, Log: log}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", addr, "scheduler", defaults.Scheduling)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", "error", err)
	}

	// Let the running job write its frames.
	if h := d.Active(); h != nil {
		log.Info("waiting for active job", "job", h.ID().String())
		if _, err := h.Wait(shutdownCtx); errors.Is(err, context.DeadlineExceeded) {
			fmt.Fprintln(os.Stderr, "ggmovie: job still running at shutdown:", h.ID())
		}
	}
	log.Info("shutdown complete")
	return nil
}
