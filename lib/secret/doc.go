// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret keeps credentials out of the Go heap.
//
// A [Buffer] is an anonymous mmap region locked into RAM (mlock) and
// excluded from core dumps (MADV_DONTDUMP). The garbage collector
// never sees it, so the bytes are not copied around by the runtime,
// and Close zeroes them before unmapping. accessdesk holds the
// Confluence service-account password, the scanner's webhook secret,
// and decrypted age identities in Buffers.
//
// [Buffer.String] makes a heap copy and exists for API boundaries
// that need a string, such as HTTP basic auth. Any access after Close
// panics.
package secret
