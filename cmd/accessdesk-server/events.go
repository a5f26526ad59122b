// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"net/http"

	"github.com/accessdesk/accessdesk/lib/eventstream"
	"github.com/accessdesk/accessdesk/lib/netutil"
	"github.com/accessdesk/accessdesk/lib/schema/request"
)

// handleEvents streams bus events to one dashboard until the client
// goes away or the server shuts down. A subscriber that falls behind
// receives a resync event in place of the events it missed.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	controller := http.NewResponseController(w)

	subscription := s.bus.Subscribe()
	defer subscription.Close()

	header := w.Header()
	header.Set("Content-Type", eventstream.ContentType)
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	writer := eventstream.NewWriter(w, controller.Flush)
	if err := writer.Comment("connected"); err != nil {
		s.logger.Warn("event stream does not support flushing", "error", err)
		return
	}

	ticker := s.clock.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		var event request.Event
		select {
		case <-r.Context().Done():
			return
		case <-s.shutdown:
			return
		case <-ticker.C:
			event = request.Event{Type: request.EventHeartbeat}
		case received := <-subscription.Events():
			event = subscription.Resolve(received)
		}
		if err := writer.Write(event); err != nil {
			if !netutil.IsExpectedCloseError(err) {
				s.logger.Warn("writing event stream", "event", event.Type, "error", err)
			}
			return
		}
	}
}
