// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Accessdesk is the operator CLI for accessdesk-server. It lists,
// submits, and deletes requests, runs a live terminal dashboard
// ("accessdesk watch"), registers the secret scanner's Confluence
// webhooks, and prepares sealed service account credentials.
//
// Exit codes: 0 on success, 2 for invalid input, 3 when a request
// does not exist, 4 when the server is unreachable or timed out, and
// 1 for anything else.
package main
