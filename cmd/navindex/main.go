// Package main provides the entry point for the navindex CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/navindex/cmd/navindex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
