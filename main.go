// Package main is the entrypoint for the breakeven CLI.
package main

import (
	"os"

	"github.com/benchvis/breakeven/cmd"
	"github.com/benchvis/breakeven/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogError("Command failed", err)
		os.Exit(1)
	}

	if err := cmd.CloseRunStore(); err != nil {
		contract.LogError("Failed to close run store", err)
		os.Exit(1)
	}
}
