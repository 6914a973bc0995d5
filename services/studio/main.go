// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/StudioLoomAI/StudioLoom/pkg/logging"
	"github.com/StudioLoomAI/StudioLoom/services/studio/ai"
	"github.com/StudioLoomAI/StudioLoom/services/studio/config"
	"github.com/StudioLoomAI/StudioLoom/services/studio/events"
	"github.com/StudioLoomAI/StudioLoom/services/studio/observability"
	"github.com/StudioLoomAI/StudioLoom/services/studio/routes"
	badgerstore "github.com/StudioLoomAI/StudioLoom/services/studio/storage/badger"
	"github.com/StudioLoomAI/StudioLoom/services/studio/workspace"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfgPath := os.Getenv("STUDIOLOOM_CONFIG")
	if cfgPath == "" {
		var err error
		cfgPath, err = config.DefaultPath()
		if err != nil {
			log.Fatalf("FATAL: could not resolve the config path: %v", err)
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("FATAL: could not load the config: %v", err)
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Printf("WARN: %v, using info", err)
	}
	logger := logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: "studio",
		JSON:    cfg.Logging.JSON,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	metrics := observability.InitMetrics()

	store, err := openStore(cfg, logger.Slog())
	if err != nil {
		log.Fatalf("FATAL: could not open the data store: %v", err)
	}
	defer store.Close()

	bus := events.NewBus()
	ws, err := workspace.New(workspace.Config{
		Store:  store,
		Bus:    bus,
		Logger: logger.Slog(),
	})
	if err != nil {
		log.Fatalf("FATAL: could not create the workspace: %v", err)
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	if err := ws.Initialize(initCtx); err != nil {
		cancelInit()
		log.Fatalf("FATAL: could not initialize the workspace: %v", err)
	}
	cancelInit()

	aiClient := ai.NewSwitchable(buildAIClient(cfg, logger.Slog()))

	watcher, err := config.NewWatcher(cfgPath, func(next config.Config) {
		aiClient.Store(buildAIClient(next, logger.Slog()))
	}, logger.Slog())
	if err != nil {
		slog.Warn("config hot reload disabled", "error", err)
	} else {
		defer watcher.Stop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.Middleware())
	routes.SetupRoutes(router, ws, bus, aiClient, metrics)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		slog.Info("studio server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	// Close flushes queued writes before the store goes away.
	if err := ws.Close(shutdownCtx); err != nil {
		slog.Error("workspace close failed", "error", err)
	}
	slog.Info("studio server stopped")
}

func openStore(cfg config.Config, logger *slog.Logger) (*badgerstore.Store, error) {
	storeCfg := badgerstore.DefaultConfig()
	storeCfg.Path = expandHome(cfg.Data.Dir)
	storeCfg.SyncWrites = cfg.Data.SyncWrites
	storeCfg.Logger = logger
	return badgerstore.Open(storeCfg)
}

// buildAIClient returns the configured backend, or Disabled when no
// API key is available.
func buildAIClient(cfg config.Config, logger *slog.Logger) ai.Client {
	key := os.Getenv("STUDIOLOOM_AI_KEY")
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		slog.Warn("no AI API key set, generation endpoints disabled")
		return ai.Disabled{}
	}

	aiCfg := ai.DefaultOpenAIConfig()
	aiCfg.APIKey = key
	if cfg.AI.Model != "" {
		aiCfg.Model = cfg.AI.Model
	}
	if cfg.AI.ImageModel != "" {
		aiCfg.ImageModel = cfg.AI.ImageModel
	}
	aiCfg.BaseURL = cfg.AI.BaseURL

	client, err := ai.NewOpenAIClient(aiCfg, logger)
	if err != nil {
		slog.Error("could not create the AI client, generation endpoints disabled", "error", err)
		return ai.Disabled{}
	}
	return client
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
