// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/accessdesk/accessdesk/lib/config"
	"github.com/accessdesk/accessdesk/lib/confluence"
	"github.com/accessdesk/accessdesk/lib/credential"
)

// ConnectConfluence loads the service account and returns a client
// for the configured Confluence. The caller closes the returned
// credentials after the client is no longer used.
func ConnectConfluence(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*confluence.Client, *credential.Credentials, error) {
	credentials, err := credential.Load(ctx, cfg.Credentials, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("loading confluence credentials: %w", err)
	}
	client, err := confluence.NewClient(confluence.Config{
		BaseURL:           cfg.Confluence.URL,
		Username:          credentials.Username,
		Password:          credentials.Password,
		RequestsPerSecond: cfg.Confluence.RequestsPerSecond,
		Burst:             cfg.Confluence.Burst,
		HTTPClient:        &http.Client{Timeout: cfg.Confluence.Timeout},
		Logger:            logger.With("component", "confluence"),
	})
	if err != nil {
		credentials.Close()
		return nil, nil, err
	}
	logger.Info("confluence client ready",
		"url", client.BaseURL(),
		"username", credentials.Username,
		"requests_per_second", cfg.Confluence.RequestsPerSecond,
	)
	return client, credentials, nil
}
