// Package main provides the entry point for the muxer CLI.
package main

import (
	"os"

	"github.com/Iron-Ham/muxer/internal/cmd"
)

func main() {
	// Execute has already reported the error.
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
