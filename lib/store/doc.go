// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package store persists request records in a single JSON file.
//
// The file holds a JSON array of records in insertion order, indented
// for people who inspect it by hand. The whole array is rewritten on
// every change: the data set is small (one entry per human-submitted
// request) and a full rewrite keeps the file readable by anything that
// understands JSON.
//
// Writes go to a temporary file in the same directory, are fsynced,
// and are renamed over the original, so a crash leaves either the old
// or the new contents and never a truncated file.
//
// [Store] is safe for concurrent use. A single mutex serializes every
// read and write.
package store
