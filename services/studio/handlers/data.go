// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/StudioLoomAI/StudioLoom/services/studio/datatypes"
	"github.com/StudioLoomAI/StudioLoom/services/studio/workspace"
)

// Reads return the cached state for the active client; saves land in
// the cache synchronously and persist in the background. A GET issued
// right after a PUT always sees the new value.

// HandleGetBrain returns the active client's persona brain.
func HandleGetBrain(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, ws.Brain())
	}
}

// HandleSaveBrain replaces the active client's persona brain.
func HandleSaveBrain(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		var brain datatypes.Brain
		if err := c.BindJSON(&brain); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		ws.SaveBrain(&brain)
		c.JSON(http.StatusOK, gin.H{"saved": true})
	}
}

// HandleGetFeed returns the planning grid.
func HandleGetFeed(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, ws.Feed())
	}
}

// HandleSaveFeed replaces the planning grid.
func HandleSaveFeed(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		var feed []datatypes.FeedPost
		if err := c.BindJSON(&feed); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		for i := range feed {
			if !feed[i].Valid() {
				slog.Warn("rejected feed save", "index", i, "id", feed[i].ID)
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "empty posts must not carry content",
					"index": i,
				})
				return
			}
		}
		ws.SaveFeed(feed)
		c.JSON(http.StatusOK, gin.H{"saved": true})
	}
}

func HandleGetBank(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, ws.Bank())
	}
}

func HandleSaveBank(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		var bank []datatypes.BankItem
		if err := c.BindJSON(&bank); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		ws.SaveBank(bank)
		c.JSON(http.StatusOK, gin.H{"saved": true})
	}
}

func HandleGetHighlights(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, ws.Highlights())
	}
}

func HandleSaveHighlights(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		var highlights []datatypes.Highlight
		if err := c.BindJSON(&highlights); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		ws.SaveHighlights(highlights)
		c.JSON(http.StatusOK, gin.H{"saved": true})
	}
}

func HandleGetStories(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, ws.Stories())
	}
}

func HandleSaveStories(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		var stories []datatypes.StoryItem
		if err := c.BindJSON(&stories); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		ws.SaveStories(stories)
		c.JSON(http.StatusOK, gin.H{"saved": true})
	}
}

func HandleGetPlaybook(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, ws.Playbook())
	}
}

func HandleSavePlaybook(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		var playbook []datatypes.TrendCard
		if err := c.BindJSON(&playbook); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		ws.SavePlaybook(playbook)
		c.JSON(http.StatusOK, gin.H{"saved": true})
	}
}

func HandleGetTemplates(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, ws.Templates())
	}
}

func HandleSaveTemplates(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		var templates []datatypes.PostTemplate
		if err := c.BindJSON(&templates); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		ws.SaveTemplates(templates)
		c.JSON(http.StatusOK, gin.H{"saved": true})
	}
}

func HandleGetDraft(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, ws.Draft())
	}
}

func HandleSaveDraft(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		var draft datatypes.Draft
		if err := c.BindJSON(&draft); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		ws.SaveDraft(draft)
		c.JSON(http.StatusOK, gin.H{"saved": true})
	}
}

func HandleGetSprint(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, ws.Sprint())
	}
}

func HandleSaveSprint(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sprint datatypes.Sprint
		if err := c.BindJSON(&sprint); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		ws.SaveSprint(sprint)
		c.JSON(http.StatusOK, gin.H{"saved": true})
	}
}

// HandleGetSettings returns the global app settings (shared across
// clients).
func HandleGetSettings(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, ws.Settings())
	}
}

func HandleSaveSettings(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		var settings datatypes.AppSettings
		if err := c.BindJSON(&settings); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		ws.SaveSettings(settings)
		c.JSON(http.StatusOK, gin.H{"saved": true})
	}
}

// HandleFlush blocks until all queued writes have reached the store.
func HandleFlush(ws *workspace.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ws.Flush(c.Request.Context()); err != nil {
			slog.Error("flush failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"flushed": true})
	}
}
