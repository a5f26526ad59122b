// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeNowAdvances(t *testing.T) {
	fake := Fake(epoch)
	if !fake.Now().Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", fake.Now(), epoch)
	}
	fake.Advance(90 * time.Second)
	if want := epoch.Add(90 * time.Second); !fake.Now().Equal(want) {
		t.Fatalf("Now() = %v, want %v", fake.Now(), want)
	}
}

func TestFakeAfter(t *testing.T) {
	fake := Fake(epoch)
	channel := fake.After(3 * time.Second)

	fake.Advance(2 * time.Second)
	select {
	case <-channel:
		t.Fatal("After fired before its deadline")
	default:
	}

	fake.Advance(time.Second)
	select {
	case fired := <-channel:
		if want := epoch.Add(3 * time.Second); !fired.Equal(want) {
			t.Errorf("fired at %v, want %v", fired, want)
		}
	default:
		t.Fatal("After did not fire at its deadline")
	}
	if fake.PendingCount() != 0 {
		t.Errorf("PendingCount() = %d, want 0 after one-shot fired", fake.PendingCount())
	}
}

func TestFakeAfterNonPositive(t *testing.T) {
	fake := Fake(epoch)
	select {
	case <-fake.After(0):
	default:
		t.Fatal("After(0) should fire immediately")
	}
	if fake.PendingCount() != 0 {
		t.Errorf("PendingCount() = %d, want 0", fake.PendingCount())
	}
}

func TestFakeSleepWithWaitForTimers(t *testing.T) {
	fake := Fake(epoch)
	done := make(chan struct{})
	go func() {
		fake.Sleep(time.Second)
		close(done)
	}()

	fake.WaitForTimers(1)
	fake.Advance(time.Second)

	select {
	case <-done:
	case <-time.After(5 * time.Second): //nolint:realclock test hang prevention
		t.Fatal("Sleep did not return after Advance")
	}
}

func TestFakeTicker(t *testing.T) {
	fake := Fake(epoch)
	ticker := fake.NewTicker(30 * time.Second)

	fake.Advance(30 * time.Second)
	select {
	case <-ticker.C:
	default:
		t.Fatal("ticker did not fire after one period")
	}

	// Three periods at once: the buffer holds one tick, the rest drop.
	fake.Advance(90 * time.Second)
	select {
	case <-ticker.C:
	default:
		t.Fatal("ticker did not fire after three periods")
	}
	select {
	case <-ticker.C:
		t.Fatal("ticker buffered more than one tick")
	default:
	}

	ticker.Stop()
	fake.Advance(30 * time.Second)
	select {
	case <-ticker.C:
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestFakeNewTickerPanicsOnZero(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewTicker(0) did not panic")
		}
	}()
	Fake(epoch).NewTicker(0)
}
