// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package automation turns submitted requests into Confluence changes.
//
// [AccessProcessor] grants a person read, dev, or admin on an existing
// space by adding them to the space's permission group, creating the
// user and licensing them first when needed. Admin is granted only
// when the request's manager or requester already administers the
// space; otherwise it is downgraded to dev and the downgrade is noted.
//
// [SpaceProcessor] creates a space with its three permission groups
// and makes the requested admin a member of the admin group. A request
// with an invalid name or key, or naming an admin who does not exist
// or holds no license, is returned as work in progress with one issue
// per problem and nothing is changed in Confluence.
//
// Each processor returns a [request.Result] whose Comments are the
// work notes shown on the dashboard. Confluence failures are reported
// in the Result with status error. A non-nil error is returned only
// when the context ends, so an interrupted request can be retried.
package automation
