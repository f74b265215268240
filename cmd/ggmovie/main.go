// Command ggmovie renders animated scenes to numbered image files.
package main

import (
	"fmt"
	"os"

	"github.com/gogpu/ggmovie/internal/cli"
)

func main() {
	if err := cli.Run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
