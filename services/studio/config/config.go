// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the studio service configuration from a YAML
// file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the studio service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Data    DataConfig    `yaml:"data"`
	Logging LoggingConfig `yaml:"logging"`
	AI      AIConfig      `yaml:"ai"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"gt=0,lte=65535"`
}

// DataConfig configures the durable store.
type DataConfig struct {
	// Dir is where the key-value store lives on disk.
	Dir string `yaml:"dir" validate:"required"`

	// SyncWrites forces fsync on every write. Slower, safer.
	SyncWrites bool `yaml:"sync_writes"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	Dir   string `yaml:"dir"`
	JSON  bool   `yaml:"json"`
}

// AIConfig configures the generative-AI boundary.
type AIConfig struct {
	// Model is the chat model for plans, captions and trends.
	Model string `yaml:"model"`

	// ImageModel is the image generation model.
	ImageModel string `yaml:"image_model"`

	// BaseURL overrides the API endpoint for OpenAI-compatible local
	// servers. Empty means the hosted API.
	BaseURL string `yaml:"base_url"`

	// The API key is never read from the file; set STUDIOLOOM_AI_KEY
	// or OPENAI_API_KEY instead.
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8900,
		},
		Data: DataConfig{
			Dir:        "~/.studioloom/data",
			SyncWrites: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "~/.studioloom/logs",
			JSON:  true,
		},
		AI: AIConfig{
			Model:      "gpt-4o-mini",
			ImageModel: "dall-e-3",
		},
	}
}

// Validate checks the configuration against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load reads configuration from path, creating a default file on first
// run, then applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeDefault(path); err != nil {
			return cfg, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DefaultPath returns ~/.studioloom/studioloom.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".studioloom", "studioloom.yaml"), nil
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// applyEnv layers STUDIOLOOM_* environment variables over the file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("STUDIOLOOM_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("STUDIOLOOM_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("STUDIOLOOM_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("STUDIOLOOM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("STUDIOLOOM_AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	if v := os.Getenv("STUDIOLOOM_AI_BASE_URL"); v != "" {
		cfg.AI.BaseURL = v
	}
}
