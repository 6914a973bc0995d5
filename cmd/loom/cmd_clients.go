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
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/StudioLoomAI/StudioLoom/services/studio/datatypes"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage client workspaces",
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered clients",
	RunE:  runClientsList,
}

var clientsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Register a new client workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientsCreate,
}

var clientsSwitchCmd = &cobra.Command{
	Use:   "switch <id>",
	Short: "Change the active client",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientsSwitch,
}

var clientsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a client from the registry",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientsDelete,
}

func init() {
	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsCreateCmd)
	clientsCmd.AddCommand(clientsSwitchCmd)
	clientsCmd.AddCommand(clientsDeleteCmd)
}

type clientsResponse struct {
	Clients []datatypes.ClientMeta `json:"clients"`
	Active  string                 `json:"active"`
}

func runClientsList(cmd *cobra.Command, args []string) error {
	var resp clientsResponse
	if err := apiRequest(http.MethodGet, "/api/clients", nil, &resp); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCONFIGURED\tACTIVE")
	for _, c := range resp.Clients {
		active := ""
		if c.ID == resp.Active {
			active = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", c.ID, c.Name, c.Configured, active)
	}
	return w.Flush()
}

func runClientsCreate(cmd *cobra.Command, args []string) error {
	var resp struct {
		ID string `json:"id"`
	}
	body := map[string]string{"name": args[0]}
	if err := apiRequest(http.MethodPost, "/api/clients", body, &resp); err != nil {
		return err
	}
	fmt.Printf("Created client %s\n", resp.ID)
	return nil
}

func runClientsSwitch(cmd *cobra.Command, args []string) error {
	var resp struct {
		Active string `json:"active"`
	}
	body := map[string]string{"id": args[0]}
	if err := apiRequest(http.MethodPost, "/api/clients/switch", body, &resp); err != nil {
		return err
	}
	fmt.Printf("Active client is now %s\n", resp.Active)
	return nil
}

func runClientsDelete(cmd *cobra.Command, args []string) error {
	var resp clientsResponse
	if err := apiRequest(http.MethodDelete, "/api/clients/"+args[0], nil, &resp); err != nil {
		return err
	}
	fmt.Printf("Deleted. %d clients remain, active is %s\n", len(resp.Clients), resp.Active)
	return nil
}
