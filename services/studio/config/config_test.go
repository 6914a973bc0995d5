// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studioloom.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.Equal(t, Default(), cfg)
}

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studioloom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  host: 0.0.0.0
  port: 9000
data:
  dir: /tmp/loom
logging:
  level: debug
ai:
  model: gpt-4o
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/tmp/loom", cfg.Data.Dir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studioloom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: -1
data:
  dir: /tmp/loom
logging:
  level: info
`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studioloom.yaml")

	t.Setenv("STUDIOLOOM_PORT", "7777")
	t.Setenv("STUDIOLOOM_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "studioloom.yaml")
	_, err := Load(path)
	require.NoError(t, err)

	var mu sync.Mutex
	var got *Config
	handler := func(cfg Config) {
		mu.Lock()
		defer mu.Unlock()
		got = &cfg
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := newWatcher(path, handler, logger, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte(`
server:
  host: 127.0.0.1
  port: 8123
data:
  dir: /tmp/loom
logging:
  level: info
`), 0644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil && got.Server.Port == 8123
	}, 3*time.Second, 25*time.Millisecond)
}

func TestWatcherIgnoresInvalidReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "studioloom.yaml")
	_, err := Load(path)
	require.NoError(t, err)

	var mu sync.Mutex
	calls := 0
	handler := func(cfg Config) {
		mu.Lock()
		defer mu.Unlock()
		calls++
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := newWatcher(path, handler, logger, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: -5\ndata:\n  dir: x\nlogging:\n  level: info\n"), 0644))

	time.Sleep(300 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls, "invalid config must never reach the handler")
}
