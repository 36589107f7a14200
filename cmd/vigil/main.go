package main

import (
	"os"

	"github.com/athlab/vigil/cmd/vigil/commands"
)

// main is the entry point for the Vigil CLI.
// Unified CLI: go run ./cmd/vigil [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
