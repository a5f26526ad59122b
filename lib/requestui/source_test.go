// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package requestui

import (
	"errors"
	"testing"
	"time"

	"github.com/accessdesk/accessdesk/lib/client"
	"github.com/accessdesk/accessdesk/lib/requestindex"
	"github.com/accessdesk/accessdesk/lib/schema/request"
	"github.com/accessdesk/accessdesk/lib/testutil"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func makeRecord(id int64, status request.Status, minutes int) request.Request {
	return request.Request{
		ID:        id,
		Type:      request.TypeAccess,
		Status:    status,
		CreatedAt: epoch.Add(time.Duration(minutes) * time.Minute),
		Data: request.Data{
			LANID: "user" + string(rune('a'+id)), FullName: "User", Email: "u@example.com",
			Domain: "r1-core", Manager: "boss", Requester: "boss", SpaceKey: "ENG", Access: "dev",
		},
	}
}

func TestIndexSourceApply(t *testing.T) {
	source := NewIndexSource()
	events := source.Subscribe()

	source.Apply(client.Update{Snapshot: true, Reload: []request.Request{
		makeRecord(1, request.StatusPending, 0),
		makeRecord(2, request.StatusPending, 1),
	}})
	if event := testutil.RequireReceive(t, events, time.Second, "reload"); event.Kind != EventReload {
		t.Fatalf("event = %+v, want reload", event)
	}
	if source.Stats().Total != 2 {
		t.Fatalf("Total = %d, want 2", source.Stats().Total)
	}

	updated := makeRecord(1, request.StatusCompleted, 0)
	source.Apply(client.Update{Event: &request.Event{Type: request.EventUpdated, ID: 1, Request: &updated}})
	event := testutil.RequireReceive(t, events, time.Second, "put")
	if event.Kind != EventPut || event.ID != 1 || !event.Existed ||
		event.Previous != request.StatusPending || event.Status != request.StatusCompleted {
		t.Errorf("put event = %+v", event)
	}

	source.Apply(client.Update{Event: &request.Event{Type: request.EventDeleted, ID: 2}})
	event = testutil.RequireReceive(t, events, time.Second, "remove")
	if event.Kind != EventRemove || event.ID != 2 || !event.Existed {
		t.Errorf("remove event = %+v", event)
	}
	if _, ok := source.Get(2); ok {
		t.Error("record 2 still present after delete event")
	}

	lost := errors.New("connection reset")
	source.Apply(client.Update{Disconnected: lost, Retry: 2 * time.Second})
	event = testutil.RequireReceive(t, events, time.Second, "disconnect")
	if event.Kind != EventDisconnected || !errors.Is(event.Err, lost) || event.Retry != 2*time.Second {
		t.Errorf("disconnect event = %+v", event)
	}

	if got := source.List(requestindex.Filter(request.StatusCompleted)); len(got) != 1 || got[0].ID != 1 {
		t.Errorf("completed list = %+v, want record 1", got)
	}
}

func TestIndexSourceCreateRacingListing(t *testing.T) {
	source := NewIndexSource()
	events := source.Subscribe()

	created := makeRecord(5, request.StatusPending, 5)
	source.Apply(client.Update{Event: &request.Event{Type: request.EventCreated, ID: 5, Request: &created}})
	testutil.RequireReceive(t, events, time.Second, "put")

	source.Apply(client.Update{Snapshot: true, Reload: []request.Request{created, makeRecord(4, request.StatusPending, 4)}})
	testutil.RequireReceive(t, events, time.Second, "reload")
	if source.Stats().Total != 2 {
		t.Errorf("Total = %d, want 2 with no duplicate", source.Stats().Total)
	}
}

func TestIndexSourceDropsWhenSubscriberFull(t *testing.T) {
	source := NewIndexSource()
	events := source.Subscribe()
	for id := int64(1); id <= 100; id++ {
		source.Put(makeRecord(id, request.StatusPending, int(id)))
	}
	if len(events) != cap(events) {
		t.Errorf("buffered %d events, want a full buffer of %d", len(events), cap(events))
	}
	if source.Stats().Total != 100 {
		t.Errorf("Total = %d, want 100 despite dropped events", source.Stats().Total)
	}
}
