// Mirror runs the smart mirror camera, face tracking and dashboard.
package main

import (
	"fmt"
	"os"

	"github.com/teslashibe/go-mirror/internal/cli"
)

func main() {
	if err := cli.NewRootCmd(&cli.Dependencies{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
