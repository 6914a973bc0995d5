// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the studio's HTTP endpoints.
//
// Every handler is a constructor taking its dependencies and returning
// a gin.HandlerFunc. Handlers never touch the store directly; all data
// access goes through the workspace.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/StudioLoomAI/StudioLoom/services/studio/workspace"
)

type CreateClientRequest struct {
	Name string `json:"name" binding:"required"`
}

type SwitchClientRequest struct {
	ID string `json:"id" binding:"required"`
}

// HandleListClients returns the client registry plus the active ID.
func HandleListClients(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"clients": ws.Clients(),
			"active":  ws.ActiveClientID(),
		})
	}
}

// HandleCreateClient registers a new client namespace. The new client
// does not become active; the caller switches explicitly.
func HandleCreateClient(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateClientRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		id, err := ws.CreateClient(c.Request.Context(), req.Name)
		if err != nil {
			if errors.Is(err, workspace.ErrEmptyClientName) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "client name must not be empty"})
				return
			}
			slog.Error("create client failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id})
	}
}

// HandleSwitchClient flushes pending writes, then loads the requested
// client's data into the cache.
func HandleSwitchClient(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SwitchClientRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		if err := ws.SetActiveClient(c.Request.Context(), req.ID); err != nil {
			if errors.Is(err, workspace.ErrClientNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "unknown client"})
				return
			}
			slog.Error("switch client failed", "id", req.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"active": ws.ActiveClientID()})
	}
}

// HandleDeleteClient removes a client from the registry. The admin
// client cannot be deleted; deleting the active client falls back to
// admin.
func HandleDeleteClient(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := ws.DeleteClient(c.Request.Context(), id); err != nil {
			slog.Error("delete client failed", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"clients": ws.Clients(),
			"active":  ws.ActiveClientID(),
		})
	}
}

// HandleMarkConfigured flags a client as having completed onboarding.
func HandleMarkConfigured(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := ws.MarkConfigured(c.Request.Context(), id); err != nil {
			if errors.Is(err, workspace.ErrClientNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "unknown client"})
				return
			}
			slog.Error("mark configured failed", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "configured": true})
	}
}
