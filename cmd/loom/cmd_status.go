// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that the studio server is up",
	RunE:  runStatus,
}

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Block until all queued writes are durable",
	RunE:  runFlush,
}

func runStatus(cmd *cobra.Command, args []string) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := apiRequest(http.MethodGet, "/health", nil, &resp); err != nil {
		return err
	}
	fmt.Printf("Server at %s is %s\n", serverURL, resp.Status)
	return nil
}

func runFlush(cmd *cobra.Command, args []string) error {
	if err := apiRequest(http.MethodPost, "/api/flush", nil, nil); err != nil {
		return err
	}
	fmt.Println("All queued writes are on disk.")
	return nil
}
