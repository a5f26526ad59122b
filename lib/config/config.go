// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development allows plain credentials in the config file.
	Development Environment = "development"
	// Production requires credentials from Vault or a sealed file.
	Production Environment = "production"
)

// EnvConfig names the environment variable holding the config path.
const EnvConfig = "ACCESSDESK_CONFIG"

// Config is the master configuration.
type Config struct {
	// Environment is development or production.
	Environment Environment `yaml:"environment"`

	// Server configures the request server.
	Server ServerConfig `yaml:"server"`

	// Scanner configures the secret scanner webhook service.
	Scanner ScannerConfig `yaml:"scanner"`

	// Confluence configures the Confluence REST client.
	Confluence ConfluenceConfig `yaml:"confluence"`

	// Credentials selects where the Confluence service account comes
	// from.
	Credentials CredentialsConfig `yaml:"credentials"`
}

// ServerConfig configures the request server.
type ServerConfig struct {
	// Listen is the HTTP listen address.
	// Default: :5000
	Listen string `yaml:"listen"`

	// Database is the JSON file holding all requests.
	// Default: requests_db.json
	Database string `yaml:"database"`

	// Workers bounds concurrent automation runs.
	// Default: 4
	Workers int `yaml:"workers"`

	// QueueSize bounds requests waiting for a worker.
	// Default: 256
	QueueSize int `yaml:"queue_size"`

	// Heartbeat is the interval between keep-alive events on the
	// event stream.
	// Default: 30s
	Heartbeat time.Duration `yaml:"heartbeat"`

	// SettleDelay is the wait between creating a space's groups and
	// adding its admin.
	// Default: 1s
	SettleDelay time.Duration `yaml:"settle_delay"`

	// RedisURL, when set, shares events between server replicas
	// through Redis pub/sub. Either redis://host:port/db or host:port.
	RedisURL string `yaml:"redis_url"`

	// RedisChannel is the pub/sub channel name.
	// Default: accessdesk:events
	RedisChannel string `yaml:"redis_channel"`
}

// ScannerConfig configures the secret scanner.
type ScannerConfig struct {
	// Listen is the HTTP listen address.
	// Default: :5002
	Listen string `yaml:"listen"`

	// WebhookSecret, when set, requires every webhook delivery to
	// carry a matching X-Hub-Signature-256 header.
	WebhookSecret string `yaml:"webhook_secret"`

	// PublicURL is where Confluence reaches the scanner. Used by
	// "accessdesk webhook setup" when --scanner-url is not given.
	PublicURL string `yaml:"public_url"`
}

// ConfluenceConfig configures the Confluence client.
type ConfluenceConfig struct {
	// URL is the Confluence base URL, without a trailing slash.
	URL string `yaml:"url"`

	// RequestsPerSecond paces calls to Confluence. Negative disables
	// pacing.
	// Default: 10
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the number of calls allowed back to back.
	// Default: 5
	Burst int `yaml:"burst"`

	// Timeout bounds each HTTP call.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`
}

// Credential sources.
const (
	SourceVault  = "vault"
	SourceSealed = "sealed"
	SourcePlain  = "plain"
)

// CredentialsConfig selects the Confluence service account source.
type CredentialsConfig struct {
	// Source is vault, sealed, or plain.
	// Default: vault
	Source string `yaml:"source"`

	Vault  VaultConfig  `yaml:"vault"`
	Sealed SealedConfig `yaml:"sealed"`

	// Username and Password are used by the plain source. Plain
	// credentials are refused in production.
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// VaultConfig locates a KV version 2 secret with username and
// password keys.
type VaultConfig struct {
	// Address defaults to http://127.0.0.1:8200.
	Address string `yaml:"address"`

	// Token is usually supplied through VAULT_TOKEN rather than the
	// file.
	Token string `yaml:"token"`

	// Mount is the KV engine mount. Default: kv
	Mount string `yaml:"mount"`

	// Path is the secret path under the mount. Default: confluence
	Path string `yaml:"path"`
}

// SealedConfig locates an age-encrypted credential file.
type SealedConfig struct {
	// File is the armored ciphertext written by
	// "accessdesk credentials seal".
	File string `yaml:"file"`

	// Identity is the age identity file that decrypts it.
	Identity string `yaml:"identity"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			Listen:       ":5000",
			Database:     "requests_db.json",
			Workers:      4,
			QueueSize:    256,
			Heartbeat:    30 * time.Second,
			SettleDelay:  time.Second,
			RedisChannel: "accessdesk:events",
		},
		Scanner: ScannerConfig{
			Listen: ":5002",
		},
		Confluence: ConfluenceConfig{
			RequestsPerSecond: 10,
			Burst:             5,
			Timeout:           30 * time.Second,
		},
		Credentials: CredentialsConfig{
			Source: SourceVault,
			Vault: VaultConfig{
				Address: "http://127.0.0.1:8200",
				Mount:   "kv",
				Path:    "confluence",
			},
		},
	}
}

// Load loads configuration from the file named by ACCESSDESK_CONFIG.
// When the variable is unset the defaults are used, still subject to
// environment overrides.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(EnvConfig))
}

// LoadFile loads configuration from path. An empty path skips the
// file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.expandVariables()
	cfg.applyEnvironment(os.LookupEnv)
	return cfg, nil
}

// loadFile merges a YAML file into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// envOverrides maps environment variables to the fields they replace.
func (c *Config) envOverrides() map[string]*string {
	return map[string]*string{
		"ACCESSDESK_ENVIRONMENT":    (*string)(&c.Environment),
		"ACCESSDESK_LISTEN":         &c.Server.Listen,
		"ACCESSDESK_DB":             &c.Server.Database,
		"ACCESSDESK_SCANNER_LISTEN": &c.Scanner.Listen,
		"SCANNER_WEBHOOK_SECRET":    &c.Scanner.WebhookSecret,
		"SCANNER_PUBLIC_URL":        &c.Scanner.PublicURL,
		"CONFLUENCE_URL":            &c.Confluence.URL,
		"CREDENTIAL_SOURCE":         &c.Credentials.Source,
		"VAULT_ADDR":                &c.Credentials.Vault.Address,
		"VAULT_TOKEN":               &c.Credentials.Vault.Token,
		"REDIS_URL":                 &c.Server.RedisURL,
	}
}

// applyEnvironment replaces fields whose override variable is set and
// non-empty.
func (c *Config) applyEnvironment(lookup func(string) (string, bool)) {
	for name, field := range c.envOverrides() {
		if value, ok := lookup(name); ok && value != "" {
			*field = value
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} in string
// fields that commonly carry paths, URLs, or secrets.
func (c *Config) expandVariables() {
	fields := []*string{
		&c.Server.Database,
		&c.Server.RedisURL,
		&c.Scanner.WebhookSecret,
		&c.Scanner.PublicURL,
		&c.Confluence.URL,
		&c.Credentials.Vault.Address,
		&c.Credentials.Vault.Token,
		&c.Credentials.Sealed.File,
		&c.Credentials.Sealed.Identity,
		&c.Credentials.Username,
		&c.Credentials.Password,
	}
	for _, field := range fields {
		*field = expandVars(*field)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns from the
// process environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Server.Listen == "" {
		errs = append(errs, errors.New("server.listen is required"))
	}
	if c.Server.Database == "" {
		errs = append(errs, errors.New("server.database is required"))
	}
	if c.Server.Workers < 1 {
		errs = append(errs, fmt.Errorf("server.workers must be at least 1, got %d", c.Server.Workers))
	}
	if c.Server.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("server.queue_size must be at least 1, got %d", c.Server.QueueSize))
	}
	if c.Server.Heartbeat <= 0 {
		errs = append(errs, errors.New("server.heartbeat must be positive"))
	}
	if c.Server.SettleDelay < 0 {
		errs = append(errs, errors.New("server.settle_delay must not be negative"))
	}
	if c.Scanner.Listen == "" {
		errs = append(errs, errors.New("scanner.listen is required"))
	}

	if c.Confluence.URL == "" {
		errs = append(errs, errors.New("confluence.url is required (or set CONFLUENCE_URL)"))
	} else if parsed, err := url.Parse(c.Confluence.URL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		errs = append(errs, fmt.Errorf("confluence.url must be an absolute URL, got %q", c.Confluence.URL))
	}
	if c.Confluence.Timeout <= 0 {
		errs = append(errs, errors.New("confluence.timeout must be positive"))
	}

	switch c.Credentials.Source {
	case SourceVault:
		if c.Credentials.Vault.Address == "" {
			errs = append(errs, errors.New("credentials.vault.address is required"))
		}
		if c.Credentials.Vault.Token == "" {
			errs = append(errs, errors.New("credentials.vault.token is required (or set VAULT_TOKEN)"))
		}
		if c.Credentials.Vault.Mount == "" || c.Credentials.Vault.Path == "" {
			errs = append(errs, errors.New("credentials.vault.mount and credentials.vault.path are required"))
		}
	case SourceSealed:
		if c.Credentials.Sealed.File == "" || c.Credentials.Sealed.Identity == "" {
			errs = append(errs, errors.New("credentials.sealed.file and credentials.sealed.identity are required"))
		}
	case SourcePlain:
		if c.Environment == Production {
			errs = append(errs, errors.New("plain credentials are not allowed in production"))
		}
		if c.Credentials.Username == "" || c.Credentials.Password == "" {
			errs = append(errs, errors.New("credentials.username and credentials.password are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("credentials.source must be one of: %v", []string{SourceVault, SourceSealed, SourcePlain}))
	}

	return errors.Join(errs...)
}

// ValidateScanner checks only what the scanner service needs: it
// shares the Confluence and credential settings but never uses the
// server section.
func (c *Config) ValidateScanner() error {
	scanner := *c
	scanner.Server = Default().Server
	return scanner.Validate()
}
