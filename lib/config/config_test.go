// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accessdesk.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Server.Listen != ":5000" {
		t.Errorf("expected listen=:5000, got %s", cfg.Server.Listen)
	}
	if cfg.Scanner.Listen != ":5002" {
		t.Errorf("expected scanner listen=:5002, got %s", cfg.Scanner.Listen)
	}
	if cfg.Server.Workers != 4 {
		t.Errorf("expected workers=4, got %d", cfg.Server.Workers)
	}
	if cfg.Server.Heartbeat != 30*time.Second {
		t.Errorf("expected heartbeat=30s, got %s", cfg.Server.Heartbeat)
	}
	if cfg.Credentials.Vault.Mount != "kv" || cfg.Credentials.Vault.Path != "confluence" {
		t.Errorf("expected vault kv/confluence, got %s/%s", cfg.Credentials.Vault.Mount, cfg.Credentials.Vault.Path)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
environment: production
server:
  listen: 127.0.0.1:8080
  workers: 8
  heartbeat: 10s
confluence:
  url: https://wiki.example.com
  requests_per_second: 2.5
credentials:
  source: sealed
  sealed:
    file: /etc/accessdesk/confluence.age
    identity: /etc/accessdesk/identity.txt
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Environment != Production {
		t.Errorf("expected environment=production, got %s", cfg.Environment)
	}
	if cfg.Server.Listen != "127.0.0.1:8080" {
		t.Errorf("expected listen=127.0.0.1:8080, got %s", cfg.Server.Listen)
	}
	if cfg.Server.Workers != 8 {
		t.Errorf("expected workers=8, got %d", cfg.Server.Workers)
	}
	if cfg.Server.Heartbeat != 10*time.Second {
		t.Errorf("expected heartbeat=10s, got %s", cfg.Server.Heartbeat)
	}
	if cfg.Confluence.RequestsPerSecond != 2.5 {
		t.Errorf("expected requests_per_second=2.5, got %v", cfg.Confluence.RequestsPerSecond)
	}
	// Unset fields keep their defaults.
	if cfg.Server.Database != "requests_db.json" {
		t.Errorf("expected default database, got %s", cfg.Server.Database)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := writeConfig(t, "server: [unterminated\n")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv("CONFLUENCE_URL", "https://wiki.example.com")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Listen != ":5000" {
		t.Errorf("expected default listen, got %s", cfg.Server.Listen)
	}
	if cfg.Confluence.URL != "https://wiki.example.com" {
		t.Errorf("expected CONFLUENCE_URL override, got %s", cfg.Confluence.URL)
	}
}

func TestLoadFromEnvironmentPath(t *testing.T) {
	path := writeConfig(t, "server:\n  database: /var/lib/accessdesk/requests.json\n")
	t.Setenv(EnvConfig, path)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Database != "/var/lib/accessdesk/requests.json" {
		t.Errorf("expected database from file, got %s", cfg.Server.Database)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen: :7000
credentials:
  vault:
    token: from-file
`)
	t.Setenv("ACCESSDESK_LISTEN", ":9000")
	t.Setenv("VAULT_TOKEN", "from-env")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Server.Listen != ":9000" {
		t.Errorf("expected ACCESSDESK_LISTEN to win, got %s", cfg.Server.Listen)
	}
	if cfg.Credentials.Vault.Token != "from-env" {
		t.Errorf("expected VAULT_TOKEN to win, got %s", cfg.Credentials.Vault.Token)
	}
	if cfg.Server.RedisURL != "redis://cache:6379/0" {
		t.Errorf("expected REDIS_URL override, got %s", cfg.Server.RedisURL)
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("ACCESSDESK_TEST_DIR", "/srv/accessdesk")

	tests := []struct {
		input string
		want  string
	}{
		{"${ACCESSDESK_TEST_DIR}/db.json", "/srv/accessdesk/db.json"},
		{"${ACCESSDESK_TEST_UNSET:-/tmp}/db.json", "/tmp/db.json"},
		{"${ACCESSDESK_TEST_UNSET}", ""},
		{"no variables", "no variables"},
	}
	for _, test := range tests {
		if got := expandVars(test.input); got != test.want {
			t.Errorf("expandVars(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestLoadFileExpandsVariables(t *testing.T) {
	t.Setenv("ACCESSDESK_TEST_SECRET", "s3cret")
	path := writeConfig(t, "scanner:\n  webhook_secret: ${ACCESSDESK_TEST_SECRET}\n")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Scanner.WebhookSecret != "s3cret" {
		t.Errorf("expected expanded secret, got %q", cfg.Scanner.WebhookSecret)
	}
}

func validConfig() *Config {
	cfg := Default()
	cfg.Confluence.URL = "https://wiki.example.com"
	cfg.Credentials.Vault.Token = "token"
	return cfg
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad environment", func(c *Config) { c.Environment = "staging" }, "invalid environment"},
		{"no workers", func(c *Config) { c.Server.Workers = 0 }, "server.workers"},
		{"no confluence url", func(c *Config) { c.Confluence.URL = "" }, "confluence.url is required"},
		{"relative confluence url", func(c *Config) { c.Confluence.URL = "wiki" }, "absolute URL"},
		{"no vault token", func(c *Config) { c.Credentials.Vault.Token = "" }, "vault.token"},
		{"unknown source", func(c *Config) { c.Credentials.Source = "env" }, "credentials.source"},
		{"sealed without identity", func(c *Config) {
			c.Credentials.Source = SourceSealed
			c.Credentials.Sealed.File = "creds.age"
		}, "credentials.sealed"},
		{"plain in production", func(c *Config) {
			c.Environment = Production
			c.Credentials.Source = SourcePlain
			c.Credentials.Username = "svc"
			c.Credentials.Password = "pw"
		}, "not allowed in production"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := validConfig()
			test.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("Validate() = %q, want it to mention %q", err, test.want)
			}
		})
	}
}

func TestValidateReportsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Listen = ""
	cfg.Server.Database = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	for _, want := range []string{"server.listen", "server.database"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() = %q, missing %q", err, want)
		}
	}
}

func TestValidateScannerIgnoresServer(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Workers = 0
	if err := cfg.ValidateScanner(); err != nil {
		t.Errorf("ValidateScanner() = %v, want nil", err)
	}
}
