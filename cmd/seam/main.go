// Command seam is the Seam project tool: scaffolding, environment checks,
// and a dev watch loop for host-adapter projects.
package main

import (
	"os"

	"github.com/go-seam/seam/cmd/seam/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
