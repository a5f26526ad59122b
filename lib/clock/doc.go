// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock lets time-dependent code run against a controllable
// clock in tests.
//
// Components that timestamp records, sleep between retries, or emit
// heartbeats take a [Clock] instead of calling the time package. The
// binaries pass [Real]. Tests pass a [FakeClock] from [Fake], which
// stands still until [FakeClock.Advance] is called:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go worker.Run(ctx)          // worker calls fake.Sleep(time.Second)
//	fake.WaitForTimers(1)       // the Sleep has registered
//	fake.Advance(time.Second)   // and now returns
//
// WaitForTimers closes the race between a goroutine registering a
// wait and the test moving time forward.
package clock
