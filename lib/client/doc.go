// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package client talks to the accessdesk request server.
//
// [Client] wraps the JSON API: listing requests, submitting access and
// space requests, deleting, and reading stats. Non-2xx responses
// become [*APIError]. User actions are never retried.
//
// [Client.Watch] follows the server's event stream. Each connection
// starts with a full reload of the request list, then delivers push
// events in order. When the stream drops, Watch reports the
// disconnect and reconnects with exponential backoff (1s doubling to
// 30s), reloading again once connected.
package client
