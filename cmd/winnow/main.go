// Package main is the entry point for the winnow CLI.
package main

import (
	"os"

	"github.com/runger/winnow/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
