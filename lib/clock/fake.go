// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"slices"
	"sync"
	"time"
)

// FakeClock is a Clock whose time moves only when Advance is called.
// It is safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	changed *sync.Cond
	now     time.Time
	pending []*waiter
}

// waiter is a registered After, Sleep, or ticker.
type waiter struct {
	deadline time.Time
	channel  chan time.Time

	// period is non-zero for tickers, which are rescheduled after
	// each fire instead of being removed.
	period  time.Duration
	stopped bool
}

// Fake returns a FakeClock set to start.
func Fake(start time.Time) *FakeClock {
	fake := &FakeClock{now: start}
	fake.changed = sync.NewCond(&fake.mu)
	return fake
}

// Now returns the fake time.
func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// After registers a one-shot waiter. A non-positive d fires before
// After returns and registers nothing.
func (f *FakeClock) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- f.now
		return channel
	}
	f.registerLocked(&waiter{deadline: f.now.Add(d), channel: channel})
	return channel
}

// NewTicker registers a periodic waiter.
func (f *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ticker := &waiter{deadline: f.now.Add(d), channel: make(chan time.Time, 1), period: d}
	f.registerLocked(ticker)
	return &Ticker{
		C: ticker.channel,
		stop: func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			ticker.stopped = true
		},
	}
}

// Sleep blocks until the clock has been advanced by d.
func (f *FakeClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	<-f.After(d)
}

func (f *FakeClock) registerLocked(w *waiter) {
	f.pending = append(f.pending, w)
	f.changed.Broadcast()
}

// Advance moves time forward by d and fires every waiter whose
// deadline is reached, earliest first. A ticker spanned by several
// periods fires once per period; sends never block, so ticks beyond
// the channel buffer are dropped.
func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)

	for {
		due := f.dueLocked()
		if len(due) == 0 {
			return
		}
		for _, w := range due {
			select {
			case w.channel <- f.now:
			default:
			}
		}
	}
}

// dueLocked removes expired waiters from the pending list (keeping
// tickers, with their deadline moved one period on) and returns them
// in deadline order.
func (f *FakeClock) dueLocked() []*waiter {
	var due, remaining []*waiter
	for _, w := range f.pending {
		switch {
		case w.stopped:
		case w.deadline.After(f.now):
			remaining = append(remaining, w)
		default:
			due = append(due, w)
		}
	}
	slices.SortStableFunc(due, func(a, b *waiter) int {
		return a.deadline.Compare(b.deadline)
	})
	for _, w := range due {
		if w.period > 0 {
			w.deadline = w.deadline.Add(w.period)
			remaining = append(remaining, w)
		}
	}
	f.pending = remaining
	return due
}

// WaitForTimers blocks until at least n waiters are registered and
// not yet fired or stopped.
func (f *FakeClock) WaitForTimers(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for f.activeLocked() < n {
		f.changed.Wait()
	}
}

// PendingCount returns the number of registered waiters.
func (f *FakeClock) PendingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activeLocked()
}

func (f *FakeClock) activeLocked() int {
	count := 0
	for _, w := range f.pending {
		if !w.stopped {
			count++
		}
	}
	return count
}
