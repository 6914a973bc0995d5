// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// loom is the command-line companion to the studio server. It talks to
// the running server over its HTTP API; it never opens the data store
// directly.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "loom",
	Short: "Command-line companion for the StudioLoom server",
	Long: `loom manages a running StudioLoom server over its HTTP API.

Examples:
  loom status                     # Server liveness
  loom clients list               # List client workspaces
  loom clients create "Acme Co"   # Register a new client
  loom clients switch client_abc  # Change the active client
  loom brain export               # Dump the active persona brain
  loom flush                      # Force queued writes to disk`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server",
		defaultServerURL(), "Base URL of the studio server")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(brainCmd)
	rootCmd.AddCommand(flushCmd)
}

func defaultServerURL() string {
	if v := os.Getenv("STUDIOLOOM_SERVER"); v != "" {
		return v
	}
	return "http://127.0.0.1:8900"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
