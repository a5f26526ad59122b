// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package request defines the accessdesk request record: the JSON
// shape persisted by the request store, returned by the HTTP API, and
// carried by push events. Both the server and every dashboard client
// decode the same types.
//
// A record is either an access request (grant a person read, dev, or
// admin on a Confluence space) or a space creation request. Records
// move through [StatusPending] and [StatusProcessing] to one of the
// terminal statuses [StatusCompleted], [StatusFailed], or
// [StatusWorkInProgress].
package request
