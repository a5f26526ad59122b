// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides shared infrastructure for accessdesk
// services.
//
// Both long-running binaries (the request server and the secret
// scanner) compose the same pieces in their own main() function:
//
//   - HTTP serving: [HTTPServer] binds a TCP listener, signals
//     readiness, and drains in-flight requests on context cancellation.
//   - Webhook authentication: [VerifyWebhookHMAC] checks
//     X-Hub-Signature-256 style signatures.
//   - Confluence bootstrap: [ConnectConfluence] loads the service
//     account from the configured credential source and builds a
//     rate-limited Confluence client.
//
// The package provides building blocks, not a runtime.
package service
