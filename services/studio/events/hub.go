// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package events

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Local-first service; the SPA is served from a file:// origin
		// or a dev server, so origin checks buy nothing here.
		return true
	},
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
}

// wsWriteTimeout bounds a single frame write to a browser tab.
const wsWriteTimeout = 5 * time.Second

// wsMessage is the frame pushed to the browser for each bus event.
type wsMessage struct {
	Event string `json:"event"`
}

// HandleEventSocket upgrades the request to a websocket and forwards
// bus events to the connected browser tab until it disconnects.
//
// Each tab gets its own bus subscription; slow tabs drop signals rather
// than stalling saves (see Bus.Publish).
func HandleEventSocket(bus *Bus) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade the event websocket", "error", err)
			return
		}
		defer ws.Close()
		slog.Info("event socket client connected", "remote", ws.RemoteAddr().String())

		ch, cancel := bus.Subscribe()
		defer cancel()

		// Reader goroutine: we never expect client frames, but reading
		// is the only way to notice a closed tab promptly.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				slog.Info("event socket client disconnected")
				return
			case event, ok := <-ch:
				if !ok {
					return
				}
				_ = ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := ws.WriteJSON(wsMessage{Event: string(event)}); err != nil {
					slog.Warn("failed to write event frame", "error", err)
					return
				}
			}
		}
	}
}
