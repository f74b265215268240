// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cli implements the ggmovie command.
package cli

import (
	"fmt"
	"strings"

	"github.com/gogpu/ggmovie/capture"
)

// Run executes the ggmovie command line. args excludes the program name.
func Run(args []string) error {
	if len(args) == 0 {
		printRootUsage()
		return nil
	}

	switch args[0] {
	case "render":
		return runRender(args[1:])
	case "serve":
		return runServe(args[1:])
	case "formats":
		fmt.Println(strings.Join(capture.Formats(), "\n"))
		return nil
	case "help", "-h", "--help":
		printRootUsage()
		return nil
	default:
		printRootUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printRootUsage() {
	fmt.Println("ggmovie: render animated scenes to numbered image files")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ggmovie render [flags] <scene.yaml>")
	fmt.Println("  ggmovie serve [flags]")
	fmt.Println("  ggmovie formats")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  render   render one movie and show its progress")
	fmt.Println("  serve    accept render jobs over HTTP")
	fmt.Println("  formats  list the supported output formats")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  GGMOVIE_OUTPUT_DIR, GGMOVIE_OUTPUT_NAME, GGMOVIE_FORMAT, GGMOVIE_SIZE,")
	fmt.Println("  GGMOVIE_DPR, GGMOVIE_DURATION_MS, GGMOVIE_FPS, GGMOVIE_SCHEDULER,")
	fmt.Println("  GGMOVIE_MAX_PENDING_WRITES, LOG_LEVEL, LOG_FORMAT, PORT")
	fmt.Println("  Flags override the environment.")
}
