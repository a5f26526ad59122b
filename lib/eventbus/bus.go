// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/accessdesk/accessdesk/lib/schema/request"
)

// Bus is implemented by [Memory] and [Redis].
type Bus interface {
	Publish(ctx context.Context, event request.Event) error
	Subscribe() *Subscription
}

// SubscriberBuffer is the per-subscriber channel capacity.
const SubscriberBuffer = 256

// Subscription is one subscriber's view of the bus.
type Subscription struct {
	bus     *Memory
	channel chan request.Event
	resync  atomic.Bool
	closed  atomic.Bool
}

// Events returns the delivery channel. Pass every received event
// through [Subscription.Resolve] before acting on it.
func (s *Subscription) Events() <-chan request.Event { return s.channel }

// Resolve returns the event to act on for one received from Events.
// If events were dropped since the last read, the buffered events are
// stale: Resolve discards them and returns a resync event instead.
func (s *Subscription) Resolve(received request.Event) request.Event {
	if !s.resync.CompareAndSwap(true, false) {
		return received
	}
	for {
		select {
		case <-s.channel:
		default:
			return request.Event{Type: request.EventResync}
		}
	}
}

// Next blocks until an event is available or ctx is done, and returns
// it already resolved.
func (s *Subscription) Next(ctx context.Context) (request.Event, error) {
	select {
	case event := <-s.channel:
		return s.Resolve(event), nil
	case <-ctx.Done():
		return request.Event{}, ctx.Err()
	}
}

// Close unregisters the subscription. The channel is not closed.
func (s *Subscription) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.bus.remove(s)
	}
}

// Memory is the in-process bus. It is safe for concurrent use.
type Memory struct {
	logger *slog.Logger

	mu          sync.Mutex
	subscribers map[*Subscription]struct{}
}

// NewMemory returns an empty bus.
func NewMemory(logger *slog.Logger) *Memory {
	return &Memory{
		logger:      logger,
		subscribers: make(map[*Subscription]struct{}),
	}
}

// Subscribe registers a new subscriber.
func (m *Memory) Subscribe() *Subscription {
	subscription := &Subscription{
		bus:     m,
		channel: make(chan request.Event, SubscriberBuffer),
	}
	m.mu.Lock()
	m.subscribers[subscription] = struct{}{}
	m.mu.Unlock()
	return subscription
}

// Publish delivers event to every subscriber without blocking. It
// never fails; the error return satisfies [Bus].
func (m *Memory) Publish(_ context.Context, event request.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for subscription := range m.subscribers {
		select {
		case subscription.channel <- event:
		default:
			if !subscription.resync.Swap(true) {
				m.logger.Warn("subscriber fell behind, scheduling resync",
					"event", event.Type, "id", event.ID)
			}
		}
	}
	return nil
}

// Subscribers returns the number of registered subscribers.
func (m *Memory) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers)
}

func (m *Memory) remove(subscription *Subscription) {
	m.mu.Lock()
	delete(m.subscribers, subscription)
	m.mu.Unlock()
}
