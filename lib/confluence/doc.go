// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package confluence is a typed client for the parts of the Confluence
// Server/Data Center REST API that accessdesk automates: users and
// their licenses, groups, spaces and space permissions, page bodies,
// and webhooks.
//
// Every request carries HTTP basic auth for the service account and
// passes through a token-bucket limiter so a burst of queued requests
// does not overwhelm the Confluence instance. Non-2xx responses
// become [*APIError]; 404s additionally match [ErrNotFound] with
// errors.Is.
package confluence
