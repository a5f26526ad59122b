// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventstream encodes and decodes the Server-Sent Events
// stream served at /api/events.
//
// Each event is an "event:" line naming the [request.EventType] and a
// single "data:" line holding JSON, terminated by a blank line:
//
//	event: request_updated
//	data: {"id":4,"status":"completed",...}
//
// request_created and request_updated carry the full record,
// request_deleted carries {"id":N}, and resync and heartbeat carry {}.
// The same stream is consumed by the browser dashboard's EventSource
// and by [Reader] in the terminal dashboard.
package eventstream
