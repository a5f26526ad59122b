// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventbus fans request lifecycle events out to connected
// dashboards.
//
// [Memory] is the in-process bus. Each subscriber owns a buffered
// channel; publishing never blocks. A subscriber whose channel is full
// loses the event and is flagged for resync. The next event it reads
// is replaced by an [request.EventResync] and its stale buffer is
// discarded, telling the dashboard to reload the full list instead of
// applying a gapped sequence.
//
// [Redis] publishes events on a Redis channel and relays every message
// received on that channel into a local Memory bus, so dashboards
// connected to any server replica see changes made by all of them.
package eventbus
