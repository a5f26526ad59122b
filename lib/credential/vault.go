// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package credential

import (
	"context"
	"fmt"
	"net/http"

	vault "github.com/hashicorp/vault/api"

	"github.com/accessdesk/accessdesk/lib/config"
)

// FromVault reads username and password from a KV version 2 secret.
func FromVault(ctx context.Context, cfg config.VaultConfig) (*Credentials, error) {
	return fromVault(ctx, cfg, nil)
}

func fromVault(ctx context.Context, cfg config.VaultConfig, httpClient *http.Client) (*Credentials, error) {
	clientConfig := vault.DefaultConfig()
	if clientConfig.Error != nil {
		return nil, fmt.Errorf("vault config: %w", clientConfig.Error)
	}
	clientConfig.Address = cfg.Address
	if httpClient != nil {
		clientConfig.HttpClient = httpClient
	}
	client, err := vault.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("creating vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	kvSecret, err := client.KVv2(cfg.Mount).Get(ctx, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s from vault: %w", cfg.Mount, cfg.Path, err)
	}
	username, _ := kvSecret.Data["username"].(string)
	password, _ := kvSecret.Data["password"].(string)
	if username == "" || password == "" {
		return nil, fmt.Errorf("vault secret %s/%s must contain username and password", cfg.Mount, cfg.Path)
	}
	return FromPlain(username, password)
}
