// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/accessdesk/accessdesk/lib/schema/request"
)

// DefaultChannel is the Redis channel events are published on.
const DefaultChannel = "accessdesk:events"

// Connect builds a Redis client from either a redis:// URL or a bare
// host:port, and checks that the server answers.
func Connect(ctx context.Context, address string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(address, "redis://") || strings.HasPrefix(address, "rediss://") {
		options, err := redis.ParseURL(address)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		client = redis.NewClient(options)
	} else {
		client = redis.NewClient(&redis.Options{Addr: address})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", address, err)
	}
	return client, nil
}

// Redis shares events between server replicas through a Redis
// channel. Published events travel through Redis, including back to
// the publishing replica, and reach local subscribers only via
// [Redis.Run].
type Redis struct {
	client  *redis.Client
	channel string
	local   *Memory
	logger  *slog.Logger
}

// NewRedis returns a bus on the given channel. Call Run to start
// relaying.
func NewRedis(client *redis.Client, channel string, logger *slog.Logger) *Redis {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Redis{
		client:  client,
		channel: channel,
		local:   NewMemory(logger),
		logger:  logger,
	}
}

// envelope is the JSON form of an event on the Redis channel.
type envelope struct {
	Type    request.EventType `json:"type"`
	ID      int64             `json:"id,omitempty"`
	Request *request.Request  `json:"request,omitempty"`
}

func encodeEnvelope(event request.Event) ([]byte, error) {
	return json.Marshal(envelope{Type: event.Type, ID: event.ID, Request: event.Request})
}

func decodeEnvelope(payload string) (request.Event, error) {
	var message envelope
	if err := json.Unmarshal([]byte(payload), &message); err != nil {
		return request.Event{}, err
	}
	if message.Type == "" {
		return request.Event{}, fmt.Errorf("event has no type")
	}
	return request.Event{Type: message.Type, ID: message.ID, Request: message.Request}, nil
}

// Publish sends event on the Redis channel.
func (r *Redis) Publish(ctx context.Context, event request.Event) error {
	payload, err := encodeEnvelope(event)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event.Type, err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publishing %s event: %w", event.Type, err)
	}
	return nil
}

// Subscribe registers a local subscriber.
func (r *Redis) Subscribe() *Subscription {
	return r.local.Subscribe()
}

// Run subscribes to the Redis channel and relays messages to local
// subscribers until ctx is cancelled. Malformed messages are logged
// and skipped.
func (r *Redis) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to redis channel %s: %w", r.channel, err)
	}
	r.logger.Info("relaying events from redis", "channel", r.channel)

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case message, ok := <-messages:
			if !ok {
				return fmt.Errorf("redis channel %s closed", r.channel)
			}
			r.relay(ctx, message.Payload)
		}
	}
}

func (r *Redis) relay(ctx context.Context, payload string) {
	event, err := decodeEnvelope(payload)
	if err != nil {
		r.logger.Warn("dropping malformed event from redis", "error", err)
		return
	}
	r.local.Publish(ctx, event)
}
