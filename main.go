// Package main is the entry point for the Aegis case worker.
package main

import (
	"fmt"
	"os"

	"aegis/cmd"
)

func main() {
	// Playbooks are registered here by deployments that build their own
	// binary; the stock binary ships with an empty registry.
	rootCmd := cmd.NewRootCmd(nil)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
