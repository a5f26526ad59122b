// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package requestui

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/accessdesk/accessdesk/lib/client"
	"github.com/accessdesk/accessdesk/lib/requestindex"
	"github.com/accessdesk/accessdesk/lib/schema/request"
)

// EventKind classifies a change delivered through [Source.Subscribe].
type EventKind string

const (
	EventPut          EventKind = "put"
	EventRemove       EventKind = "remove"
	EventReload       EventKind = "reload"
	EventDisconnected EventKind = "disconnected"
)

// Event describes one change to the source, or a connection problem.
type Event struct {
	Kind EventKind
	ID   int64

	// Status is the record's status after a put. Previous and Existed
	// describe the record before it, so the UI can tell a transition
	// from a repeat.
	Status   request.Status
	Previous request.Status
	Existed  bool

	// Err and Retry are set for EventDisconnected.
	Err   error
	Retry time.Duration
}

// Source abstracts request data for the dashboard.
type Source interface {
	// List returns the records passing filter, newest first.
	List(filter requestindex.Filter) []request.Request

	// Get returns one record by id.
	Get(id int64) (request.Request, bool)

	// Stats counts every record by status.
	Stats() request.Stats

	// Subscribe returns a channel receiving an Event per change.
	// Returns nil if the source is static.
	Subscribe() <-chan Event
}

// Deleter is implemented by sources that can delete records on the
// server. The dashboard hides the delete action otherwise.
type Deleter interface {
	Delete(ctx context.Context, id int64) error
}

// IndexSource wraps a [requestindex.Index] with a mutex for concurrent
// access and event dispatch.
type IndexSource struct {
	mutex       sync.RWMutex
	index       *requestindex.Index
	subscribers []chan Event
}

// NewIndexSource creates an empty IndexSource.
func NewIndexSource() *IndexSource {
	return &IndexSource{index: requestindex.New()}
}

func (source *IndexSource) List(filter requestindex.Filter) []request.Request {
	source.mutex.RLock()
	defer source.mutex.RUnlock()
	return source.index.List(filter)
}

func (source *IndexSource) Get(id int64) (request.Request, bool) {
	source.mutex.RLock()
	defer source.mutex.RUnlock()
	return source.index.Get(id)
}

func (source *IndexSource) Stats() request.Stats {
	source.mutex.RLock()
	defer source.mutex.RUnlock()
	return source.index.Stats()
}

// Subscribe returns a buffered channel receiving every later change.
func (source *IndexSource) Subscribe() <-chan Event {
	source.mutex.Lock()
	defer source.mutex.Unlock()
	channel := make(chan Event, 64)
	source.subscribers = append(source.subscribers, channel)
	return channel
}

// Load replaces the contents with a full listing.
func (source *IndexSource) Load(records []request.Request) {
	source.mutex.Lock()
	source.index.Load(records)
	subscribers := source.subscribers
	source.mutex.Unlock()
	dispatch(subscribers, Event{Kind: EventReload})
}

// Put inserts or replaces a record.
func (source *IndexSource) Put(record request.Request) {
	source.mutex.Lock()
	previous, existed := source.index.Put(record)
	subscribers := source.subscribers
	source.mutex.Unlock()

	event := Event{Kind: EventPut, ID: record.ID, Status: record.Status, Existed: existed}
	if existed {
		event.Previous = previous.Status
	}
	dispatch(subscribers, event)
}

// Remove drops a record. Unknown ids still dispatch, since a delete
// the dashboard never saw is news to the user all the same.
func (source *IndexSource) Remove(id int64) {
	source.mutex.Lock()
	previous, existed := source.index.Remove(id)
	subscribers := source.subscribers
	source.mutex.Unlock()

	dispatch(subscribers, Event{Kind: EventRemove, ID: id, Previous: previous.Status, Existed: existed})
}

// Apply folds one client update into the index.
func (source *IndexSource) Apply(update client.Update) {
	switch {
	case update.Snapshot:
		source.Load(update.Reload)
	case update.Disconnected != nil:
		source.mutex.RLock()
		subscribers := source.subscribers
		source.mutex.RUnlock()
		dispatch(subscribers, Event{Kind: EventDisconnected, Err: update.Disconnected, Retry: update.Retry})
	case update.Event != nil:
		event := update.Event
		switch event.Type {
		case request.EventCreated, request.EventUpdated:
			if event.Request != nil {
				source.Put(*event.Request)
			}
		case request.EventDeleted:
			source.Remove(event.ID)
		}
	}
}

func dispatch(subscribers []chan Event, event Event) {
	for _, subscriber := range subscribers {
		select {
		case subscriber <- event:
		default:
			// Buffer full; the next refresh reads current state.
		}
	}
}

// StreamSource is an IndexSource fed by the server's event stream.
type StreamSource struct {
	*IndexSource
	client *client.Client
	logger *slog.Logger
}

// NewStreamSource creates a source for the server behind c. Call Run
// to start streaming.
func NewStreamSource(c *client.Client, logger *slog.Logger) *StreamSource {
	return &StreamSource{IndexSource: NewIndexSource(), client: c, logger: logger}
}

// Run follows the event stream until ctx is done. Callers run it in
// its own goroutine.
func (source *StreamSource) Run(ctx context.Context) {
	err := source.client.Watch(ctx, source.Apply)
	source.logger.Debug("event stream stopped", "error", err)
}

// Delete removes a record on the server. The index is updated when the
// request_deleted event arrives.
func (source *StreamSource) Delete(ctx context.Context, id int64) error {
	return source.client.Delete(ctx, id)
}
