// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce batches rapid editor save sequences into one reload.
const defaultDebounce = 500 * time.Millisecond

// ReloadHandler receives the freshly loaded configuration after the
// file changes on disk.
type ReloadHandler func(cfg Config)

// Watcher reloads the config file when it changes.
//
// Editors often write configs as a remove+create or a burst of writes,
// so the watcher watches the parent directory and debounces events
// before reloading. A change that fails to parse or validate is logged
// and dropped; the handler only sees valid configs.
type Watcher struct {
	path     string
	handler  ReloadHandler
	logger   *slog.Logger
	debounce time.Duration

	fsw      *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher starts watching path for changes. Stop must be called to
// release the underlying file watcher.
func NewWatcher(path string, handler ReloadHandler, logger *slog.Logger) (*Watcher, error) {
	return newWatcher(path, handler, logger, defaultDebounce)
}

func newWatcher(path string, handler ReloadHandler, logger *slog.Logger, debounce time.Duration) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("reload handler is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch config directory: %w", err)
	}

	w := &Watcher{
		path:     path,
		handler:  handler,
		logger:   logger.With("component", "config_watcher"),
		debounce: debounce,
		fsw:      fsw,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Stop shuts the watcher down. Idempotent.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fsw.Close()
	})
}

func (w *Watcher) run() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config reload rejected", "path", w.path, "error", err)
		return
	}
	w.logger.Info("config reloaded", "path", w.path)
	w.handler(cfg)
}
