// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/StudioLoomAI/StudioLoom/services/studio/datatypes"
)

var brainExportOut string

var brainCmd = &cobra.Command{
	Use:   "brain",
	Short: "Inspect the active persona brain",
}

var brainExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump the active client's persona brain as JSON",
	RunE:  runBrainExport,
}

var brainImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the active client's persona brain from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runBrainImport,
}

func init() {
	brainExportCmd.Flags().StringVarP(&brainExportOut, "out", "o", "",
		"Write to a file instead of stdout")
	brainCmd.AddCommand(brainExportCmd)
	brainCmd.AddCommand(brainImportCmd)
}

func runBrainExport(cmd *cobra.Command, args []string) error {
	var brain datatypes.Brain
	if err := apiRequest(http.MethodGet, "/api/brain", nil, &brain); err != nil {
		return err
	}

	data, err := json.MarshalIndent(brain, "", "  ")
	if err != nil {
		return fmt.Errorf("encode brain: %w", err)
	}
	data = append(data, '\n')

	if brainExportOut == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(brainExportOut, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", brainExportOut, err)
	}
	fmt.Printf("Wrote brain to %s\n", brainExportOut)
	return nil
}

func runBrainImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	var brain datatypes.Brain
	if err := json.Unmarshal(data, &brain); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	if err := apiRequest(http.MethodPut, "/api/brain", brain, nil); err != nil {
		return err
	}
	fmt.Println("Brain imported.")
	return nil
}
