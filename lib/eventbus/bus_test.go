// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventbus

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/accessdesk/accessdesk/lib/schema/request"
	"github.com/accessdesk/accessdesk/lib/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createdEvent(id int64) request.Event {
	return request.Event{
		Type:    request.EventCreated,
		ID:      id,
		Request: &request.Request{ID: id, Status: request.StatusPending},
	}
}

func TestMemoryFanOut(t *testing.T) {
	bus := NewMemory(discardLogger())
	first := bus.Subscribe()
	defer first.Close()
	second := bus.Subscribe()
	defer second.Close()

	bus.Publish(context.Background(), createdEvent(1))

	for _, subscription := range []*Subscription{first, second} {
		event := subscription.Resolve(testutil.RequireReceive(t, subscription.Events(), 5*time.Second, "created event"))
		if event.Type != request.EventCreated || event.ID != 1 {
			t.Errorf("event = %+v, want request_created for 1", event)
		}
	}
}

func TestMemoryCloseUnsubscribes(t *testing.T) {
	bus := NewMemory(discardLogger())
	subscription := bus.Subscribe()
	if bus.Subscribers() != 1 {
		t.Fatalf("Subscribers() = %d, want 1", bus.Subscribers())
	}
	subscription.Close()
	subscription.Close()
	if bus.Subscribers() != 0 {
		t.Fatalf("Subscribers() = %d, want 0", bus.Subscribers())
	}

	bus.Publish(context.Background(), createdEvent(1))
	testutil.RequireNoReceive(t, subscription.Events(), 50*time.Millisecond, "closed subscription")
}

func TestMemoryOverflowResyncs(t *testing.T) {
	bus := NewMemory(discardLogger())
	slow := bus.Subscribe()
	defer slow.Close()

	// One more than the buffer holds.
	for id := int64(1); id <= SubscriberBuffer+1; id++ {
		bus.Publish(context.Background(), createdEvent(id))
	}

	ctx := context.Background()
	event, err := slow.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if event.Type != request.EventResync {
		t.Fatalf("first event after overflow = %q, want resync", event.Type)
	}
	if len(slow.Events()) != 0 {
		t.Errorf("%d stale events left buffered after resync", len(slow.Events()))
	}

	// Delivery resumes normally.
	bus.Publish(ctx, createdEvent(999))
	event, err = slow.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if event.Type != request.EventCreated || event.ID != 999 {
		t.Errorf("event after resync = %+v, want created 999", event)
	}
}

func TestMemoryOverflowDoesNotAffectOthers(t *testing.T) {
	bus := NewMemory(discardLogger())
	slow := bus.Subscribe()
	defer slow.Close()
	fast := bus.Subscribe()
	defer fast.Close()

	ctx := context.Background()
	for id := int64(1); id <= SubscriberBuffer+10; id++ {
		bus.Publish(ctx, createdEvent(id))
		event, err := fast.Next(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if event.ID != id {
			t.Fatalf("fast subscriber got %d, want %d", event.ID, id)
		}
	}
}

func TestNextHonorsContext(t *testing.T) {
	bus := NewMemory(discardLogger())
	subscription := bus.Subscribe()
	defer subscription.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := subscription.Next(ctx); err == nil {
		t.Fatal("Next on a cancelled context returned nil error")
	}
}
