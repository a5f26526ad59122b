// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package confluence

import (
	"context"
	"fmt"
	"net/http"
)

// Webhook is a registered webhook.
type Webhook struct {
	ID     int64    `json:"id,omitempty"`
	Name   string   `json:"name"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Active bool     `json:"active"`
}

// ListWebhooks returns the registered webhooks.
func (client *Client) ListWebhooks(ctx context.Context) ([]Webhook, error) {
	var result page[Webhook]
	if err := client.get(ctx, "/rest/api/webhooks", &result); err != nil {
		return nil, fmt.Errorf("listing webhooks: %w", err)
	}
	return result.Results, nil
}

// CreateWebhook registers an active webhook.
func (client *Client) CreateWebhook(ctx context.Context, name, targetURL string, events []string) (*Webhook, error) {
	request := Webhook{Name: name, URL: targetURL, Events: events, Active: true}
	var created Webhook
	if err := client.send(ctx, http.MethodPost, "/rest/api/webhooks", request, &created); err != nil {
		return nil, fmt.Errorf("creating webhook %s: %w", name, err)
	}
	if created.Name == "" {
		created = request
	}
	return &created, nil
}
