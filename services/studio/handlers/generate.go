// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/StudioLoomAI/StudioLoom/services/studio/ai"
	"github.com/StudioLoomAI/StudioLoom/services/studio/datatypes"
	"github.com/StudioLoomAI/StudioLoom/services/studio/observability"
	"github.com/StudioLoomAI/StudioLoom/services/studio/workspace"
)

type GeneratePlanRequest struct {
	// Brief overrides the active sprint brief when set.
	Brief string `json:"brief"`

	// Count overrides the active sprint post count when positive.
	Count int `json:"count"`
}

type GenerateCaptionRequest struct {
	Post datatypes.FeedPost `json:"post" binding:"required"`
}

type GenerateTrendsRequest struct {
	Source string `json:"source" binding:"required"`
}

type GenerateImageRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// HandleGeneratePlan asks the AI backend for a sprint plan using the
// active client's brain. The plan is returned to the caller, not
// written into the feed; the operator places posts explicitly.
func HandleGeneratePlan(ws *workspace.Workspace, client ai.Client, metrics *observability.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GeneratePlanRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		sprint := ws.Sprint()
		brief := req.Brief
		if brief == "" {
			brief = sprint.Brief
		}
		count := req.Count
		if count <= 0 {
			count = sprint.PostCount
		}
		if brief == "" || count <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no sprint brief or post count available"})
			return
		}

		start := time.Now()
		posts, err := client.GeneratePlan(c.Request.Context(), ws.Brain(), brief, count)
		observeGeneration(metrics, "plan", err, time.Since(start))
		if err != nil {
			respondGenerationError(c, "plan", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"posts": posts})
	}
}

// HandleGenerateCaption writes a caption for one post in the persona's
// voice.
func HandleGenerateCaption(ws *workspace.Workspace, client ai.Client, metrics *observability.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GenerateCaptionRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		start := time.Now()
		caption, err := client.GenerateCaption(c.Request.Context(), ws.Brain(), req.Post)
		observeGeneration(metrics, "caption", err, time.Since(start))
		if err != nil {
			respondGenerationError(c, "caption", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"caption": caption})
	}
}

// HandleGenerateTrends converts pasted source material into playbook
// cards adapted to the persona.
func HandleGenerateTrends(ws *workspace.Workspace, client ai.Client, metrics *observability.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GenerateTrendsRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		start := time.Now()
		cards, err := client.GenerateTrends(c.Request.Context(), ws.Brain(), req.Source)
		observeGeneration(metrics, "trends", err, time.Since(start))
		if err != nil {
			respondGenerationError(c, "trends", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cards": cards})
	}
}

// HandleGenerateImage renders an image for the prompt and returns the
// raw PNG.
func HandleGenerateImage(client ai.Client, metrics *observability.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GenerateImageRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		start := time.Now()
		img, err := client.GenerateImage(c.Request.Context(), req.Prompt)
		observeGeneration(metrics, "image", err, time.Since(start))
		if err != nil {
			respondGenerationError(c, "image", err)
			return
		}
		c.Data(http.StatusOK, "image/png", img)
	}
}

func observeGeneration(metrics *observability.HTTPMetrics, operation string, err error, elapsed time.Duration) {
	if metrics == nil {
		return
	}
	outcome := "success"
	switch {
	case errors.Is(err, ai.ErrTransient):
		outcome = "transient_error"
	case err != nil:
		outcome = "permanent_error"
	}
	metrics.ObserveGeneration(operation, outcome, elapsed)
}

// respondGenerationError maps the transient/permanent split onto HTTP:
// transient failures get 503 with a Retry-After hint, permanent ones
// 422 so the UI stops retrying and surfaces the message.
func respondGenerationError(c *gin.Context, operation string, err error) {
	if errors.Is(err, ai.ErrTransient) {
		slog.Warn("generation temporarily unavailable", "operation", operation, "error", err)
		c.Header("Retry-After", "10")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "generation service unavailable, try again"})
		return
	}
	slog.Error("generation failed", "operation", operation, "error", err)
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
}
