// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package request

// EventType names a push event. The names are part of the dashboard
// wire contract.
type EventType string

const (
	// EventCreated carries the new record.
	EventCreated EventType = "request_created"

	// EventUpdated carries the full record after a status change.
	EventUpdated EventType = "request_updated"

	// EventDeleted carries only the id of the removed record.
	EventDeleted EventType = "request_deleted"

	// EventResync tells the client that events were dropped and it
	// must reload the full list.
	EventResync EventType = "resync"

	// EventHeartbeat keeps idle streams alive and carries no payload.
	EventHeartbeat EventType = "heartbeat"
)

// Event is one push notification.
type Event struct {
	Type EventType

	// Request is populated for EventCreated and EventUpdated.
	Request *Request

	// ID is populated for every record event. For EventDeleted it is
	// the only payload.
	ID int64
}

// DeletedPayload is the JSON body of a request_deleted event.
type DeletedPayload struct {
	ID int64 `json:"id"`
}
