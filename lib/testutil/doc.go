// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds helpers shared by accessdesk tests.
//
// [RequireReceive], [RequireSend], [RequireClosed], and
// [RequireNoReceive] bound channel operations with a wall-clock
// timeout so a broken test fails instead of hanging. They are the only
// real-clock waits in the test suite; everything else runs on
// clock.Fake.
//
// [UniqueID] produces distinct identifiers for tests that share a
// store or event bus.
package testutil
