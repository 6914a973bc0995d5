// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/StudioLoomAI/StudioLoom/services/studio/ai"
	"github.com/StudioLoomAI/StudioLoom/services/studio/events"
	"github.com/StudioLoomAI/StudioLoom/services/studio/handlers"
	"github.com/StudioLoomAI/StudioLoom/services/studio/observability"
	"github.com/StudioLoomAI/StudioLoom/services/studio/workspace"
)

// SetupRoutes wires the studio's HTTP surface onto the router.
func SetupRoutes(router *gin.Engine, ws *workspace.Workspace, bus *events.Bus,
	aiClient ai.Client, metrics *observability.HTTPMetrics) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// The socket handler blocks for the lifetime of the connection, so
	// the gauge brackets it directly.
	socket := events.HandleEventSocket(bus)
	router.GET("/ws", func(c *gin.Context) {
		metrics.ActiveWebsockets.Inc()
		defer metrics.ActiveWebsockets.Dec()
		socket(c)
	})

	api := router.Group("/api")
	{
		clients := api.Group("/clients")
		{
			clients.GET("", handlers.HandleListClients(ws))
			clients.POST("", handlers.HandleCreateClient(ws))
			clients.POST("/switch", handlers.HandleSwitchClient(ws))
			clients.DELETE("/:id", handlers.HandleDeleteClient(ws))
			clients.POST("/:id/configured", handlers.HandleMarkConfigured(ws))
		}

		api.GET("/brain", handlers.HandleGetBrain(ws))
		api.PUT("/brain", handlers.HandleSaveBrain(ws))
		api.GET("/feed", handlers.HandleGetFeed(ws))
		api.PUT("/feed", handlers.HandleSaveFeed(ws))
		api.GET("/bank", handlers.HandleGetBank(ws))
		api.PUT("/bank", handlers.HandleSaveBank(ws))
		api.GET("/highlights", handlers.HandleGetHighlights(ws))
		api.PUT("/highlights", handlers.HandleSaveHighlights(ws))
		api.GET("/stories", handlers.HandleGetStories(ws))
		api.PUT("/stories", handlers.HandleSaveStories(ws))
		api.GET("/playbook", handlers.HandleGetPlaybook(ws))
		api.PUT("/playbook", handlers.HandleSavePlaybook(ws))
		api.GET("/templates", handlers.HandleGetTemplates(ws))
		api.PUT("/templates", handlers.HandleSaveTemplates(ws))
		api.GET("/draft", handlers.HandleGetDraft(ws))
		api.PUT("/draft", handlers.HandleSaveDraft(ws))
		api.GET("/sprint", handlers.HandleGetSprint(ws))
		api.PUT("/sprint", handlers.HandleSaveSprint(ws))
		api.GET("/settings", handlers.HandleGetSettings(ws))
		api.PUT("/settings", handlers.HandleSaveSettings(ws))
		api.POST("/flush", handlers.HandleFlush(ws))

		generate := api.Group("/generate")
		{
			generate.POST("/plan", handlers.HandleGeneratePlan(ws, aiClient, metrics))
			generate.POST("/caption", handlers.HandleGenerateCaption(ws, aiClient, metrics))
			generate.POST("/trends", handlers.HandleGenerateTrends(ws, aiClient, metrics))
			generate.POST("/image", handlers.HandleGenerateImage(aiClient, metrics))
		}
	}
}
