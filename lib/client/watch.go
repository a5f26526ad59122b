// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/accessdesk/accessdesk/lib/eventstream"
	"github.com/accessdesk/accessdesk/lib/requestindex"
	"github.com/accessdesk/accessdesk/lib/schema/request"
)

// Reconnect backoff bounds.
const (
	InitialBackoff = time.Second
	MaxBackoff     = 30 * time.Second
)

// Update is one delivery from Watch. Exactly one of Reload, Event, or
// Disconnected is meaningful.
type Update struct {
	// Reload is the full request list, newest first. Set when
	// Snapshot is true.
	Reload   []request.Request
	Snapshot bool

	// Event is a push event. Resync and heartbeat events are handled
	// inside Watch and never delivered.
	Event *request.Event

	// Disconnected is the reason the stream dropped. Watch
	// reconnects after Retry.
	Disconnected error
	Retry        time.Duration
}

// Watch follows the event stream until ctx is done, calling deliver
// for every update from a single goroutine. It returns ctx.Err().
func (c *Client) Watch(ctx context.Context, deliver func(Update)) error {
	backoff := InitialBackoff
	for {
		connected, err := c.watchOnce(ctx, deliver)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = InitialBackoff
		}
		c.logger.Warn("event stream disconnected, reconnecting", "error", err, "backoff", backoff)
		deliver(Update{Disconnected: err, Retry: backoff})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.clock.After(backoff):
		}
		backoff = min(backoff*2, MaxBackoff)
	}
}

// watchOnce runs one connection. connected reports whether the stream
// was established, which resets the backoff.
func (c *Client) watchOnce(ctx context.Context, deliver func(Update)) (connected bool, err error) {
	streamContext, cancel := context.WithCancel(ctx)
	defer cancel()

	httpRequest, err := http.NewRequestWithContext(streamContext, http.MethodGet, c.server+"/api/events", nil)
	if err != nil {
		return false, err
	}
	httpRequest.Header.Set("Accept", eventstream.ContentType)
	httpRequest.Header.Set("Cache-Control", "no-cache")

	response, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return false, fmt.Errorf("connecting to event stream: %w", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return false, parseAPIError(response)
	}
	if mediaType, _, _ := mime.ParseMediaType(response.Header.Get("Content-Type")); mediaType != eventstream.ContentType {
		return false, fmt.Errorf("event stream has content type %q", response.Header.Get("Content-Type"))
	}

	// Subscribe before listing so no event between the two is lost.
	// Events that race the listing are reconciled by the index.
	if err := c.reload(ctx, deliver); err != nil {
		return true, err
	}

	reader := eventstream.NewReader(response.Body)
	for {
		event, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return true, errors.New("event stream closed by server")
			}
			return true, err
		}
		switch event.Type {
		case request.EventHeartbeat:
			continue
		case request.EventResync:
			c.logger.Info("server requested resync")
			if err := c.reload(ctx, deliver); err != nil {
				return true, err
			}
		default:
			deliver(Update{Event: &event})
		}
	}
}

func (c *Client) reload(ctx context.Context, deliver func(Update)) error {
	records, err := c.List(ctx, requestindex.FilterAll)
	if err != nil {
		return fmt.Errorf("reloading requests: %w", err)
	}
	deliver(Update{Reload: records, Snapshot: true})
	return nil
}
