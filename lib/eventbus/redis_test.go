// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventbus

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/accessdesk/accessdesk/lib/schema/request"
	"github.com/accessdesk/accessdesk/lib/testutil"
)

func TestEnvelopeCarriesDeletedID(t *testing.T) {
	payload, err := encodeEnvelope(request.Event{Type: request.EventDeleted, ID: 12})
	if err != nil {
		t.Fatal(err)
	}
	event, err := decodeEnvelope(string(payload))
	if err != nil {
		t.Fatal(err)
	}
	if event.Type != request.EventDeleted || event.ID != 12 || event.Request != nil {
		t.Errorf("decoded = %+v, want deleted 12 with no record", event)
	}
}

func TestDecodeEnvelopeRejectsGarbage(t *testing.T) {
	for _, payload := range []string{"", "not json", `{"id":3}`} {
		if _, err := decodeEnvelope(payload); err == nil {
			t.Errorf("decodeEnvelope(%q) succeeded", payload)
		}
	}
}

func TestRelaySkipsMalformed(t *testing.T) {
	bus := NewRedis(nil, "", discardLogger())
	subscription := bus.Subscribe()
	defer subscription.Close()

	bus.relay(context.Background(), "{broken")
	bus.relay(context.Background(), `{"type":"request_updated","id":4,"request":{"id":4,"status":"completed"}}`)

	event := testutil.RequireReceive(t, subscription.Events(), 5*time.Second, "relayed event")
	if event.Type != request.EventUpdated || event.Request == nil || event.Request.Status != request.StatusCompleted {
		t.Errorf("event = %+v, want request_updated completed", event)
	}
}

// TestRedisRoundTrip needs a live server: set ACCESSDESK_TEST_REDIS to
// its address.
func TestRedisRoundTrip(t *testing.T) {
	address := os.Getenv("ACCESSDESK_TEST_REDIS")
	if address == "" {
		t.Skip("ACCESSDESK_TEST_REDIS not set")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := Connect(ctx, address)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Close()

	bus := NewRedis(client, testutil.UniqueID("accessdesk-test"), discardLogger())
	subscription := bus.Subscribe()
	defer subscription.Close()

	errs := make(chan error, 1)
	go func() { errs <- bus.Run(ctx) }()

	// Run subscribes asynchronously; publish until the relay is up.
	deadline := time.Now().Add(5 * time.Second) //nolint:realclock live redis
	for {
		if err := bus.Publish(ctx, createdEvent(7)); err != nil {
			t.Fatalf("Publish: %v", err)
		}
		select {
		case event := <-subscription.Events():
			if event.ID != 7 {
				t.Fatalf("event = %+v, want id 7", event)
			}
			cancel()
			if err := testutil.RequireReceive(t, errs, 5*time.Second, "Run exit"); err != nil {
				t.Errorf("Run: %v", err)
			}
			return
		case <-time.After(100 * time.Millisecond): //nolint:realclock live redis
		}
		if time.Now().After(deadline) { //nolint:realclock live redis
			t.Fatal("no event relayed from redis")
		}
	}
}
