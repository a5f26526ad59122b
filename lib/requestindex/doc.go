// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package requestindex keeps an ordered in-memory mirror of the
// server's request records on the client side.
//
// A dashboard loads the full listing once with [Index.Load] and then
// applies push events as they arrive: [Index.Put] for request_created
// and request_updated, [Index.Remove] for request_deleted. Records are
// kept newest first. A created record goes to the front; an updated
// record keeps its position so the list does not jump under the
// user's cursor.
//
// Push events can race the initial listing (an event emitted between
// the server building the listing and the client subscribing, or the
// other way round), so Put treats a create for a known id as an update
// and an update for an unknown id as a create. Remove of an unknown id
// is a no-op.
//
// # Concurrency
//
// Index is not safe for concurrent use. Dashboards wrap it with a
// mutex (see lib/requestui.IndexSource).
package requestindex
