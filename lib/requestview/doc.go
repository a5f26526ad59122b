// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package requestview renders request records as HTML fragments for
// the web dashboard.
//
// A record renders as a card: a header with the type label, id, and
// status badge; the submitted details; an outcome block that depends
// on status and type; the work notes as markdown; and a footer with
// timestamps and a delete action. [RenderList] renders a filtered list
// of cards or the empty-list message.
//
// All record text is escaped by html/template. Work notes go through
// goldmark, which drops raw HTML, before being marked safe.
package requestview
