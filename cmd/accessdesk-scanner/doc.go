// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Accessdesk-scanner receives Confluence page_created and page_updated
// webhooks, scans the page body for pasted credentials, and rewrites
// the page with each secret masked.
//
// The service shares the accessdesk configuration file: it reads the
// scanner section for its listen address and optional webhook HMAC
// secret, and the confluence and credentials sections for the service
// account it edits pages with. Register the webhooks with
// "accessdesk webhook setup".
//
// Endpoints:
//
//   - POST /webhook/page-created
//   - POST /webhook/page-updated
//   - GET /health
package main
