// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package credential

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/accessdesk/accessdesk/lib/config"
	"github.com/accessdesk/accessdesk/lib/sealed"
	"github.com/accessdesk/accessdesk/lib/secret"
)

// Credentials is a service account. Password satisfies fmt.Stringer
// so it can be handed to confluence.Config directly.
type Credentials struct {
	Username string
	Password *secret.Buffer
}

// Close releases the password.
func (c *Credentials) Close() error {
	if c == nil || c.Password == nil {
		return nil
	}
	return c.Password.Close()
}

// Load reads credentials from the configured source.
func Load(ctx context.Context, cfg config.CredentialsConfig, logger *slog.Logger) (*Credentials, error) {
	switch cfg.Source {
	case config.SourceVault:
		credentials, err := FromVault(ctx, cfg.Vault)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded confluence credentials from vault",
			"mount", cfg.Vault.Mount, "path", cfg.Vault.Path, "username", credentials.Username)
		return credentials, nil
	case config.SourceSealed:
		credentials, err := FromSealedFile(cfg.Sealed.File, cfg.Sealed.Identity)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded confluence credentials from sealed file",
			"file", cfg.Sealed.File, "username", credentials.Username)
		return credentials, nil
	case config.SourcePlain:
		logger.Warn("using plain confluence credentials from config; use vault or a sealed file outside development")
		return FromPlain(cfg.Username, cfg.Password)
	}
	return nil, fmt.Errorf("unknown credential source %q", cfg.Source)
}

// FromPlain wraps plain values.
func FromPlain(username, password string) (*Credentials, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	buffer, err := secret.NewFromString(password)
	if err != nil {
		return nil, fmt.Errorf("protecting password: %w", err)
	}
	return &Credentials{Username: username, Password: buffer}, nil
}

// FromSealedFile decrypts a credential file with the identity stored
// at identityPath.
func FromSealedFile(path, identityPath string) (*Credentials, error) {
	identity, err := sealed.ReadIdentityFile(identityPath)
	if err != nil {
		return nil, err
	}
	defer identity.Close()

	plaintext, err := sealed.OpenFile(path, identity)
	if err != nil {
		return nil, err
	}
	defer plaintext.Close()

	credentials, err := Parse(plaintext.Bytes())
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return credentials, nil
}

// Parse reads "username=" and "password=" lines. Blank lines and lines
// starting with # are ignored. Values are taken verbatim after the
// first "=".
func Parse(data []byte) (*Credentials, error) {
	var username string
	var password []byte
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		line := bytes.TrimRight(scanner.Bytes(), "\r")
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 || trimmed[0] == '#' {
			continue
		}
		key, value, found := bytes.Cut(line, []byte("="))
		if !found {
			secret.Zero(password)
			return nil, fmt.Errorf("line %d: expected key=value", lineNumber)
		}
		switch strings.TrimSpace(string(key)) {
		case "username":
			username = strings.TrimSpace(string(value))
		case "password":
			secret.Zero(password)
			// The scanner reuses its buffer between lines.
			password = append([]byte(nil), value...)
		default:
			return nil, fmt.Errorf("line %d: unknown key %q", lineNumber, strings.TrimSpace(string(key)))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if username == "" {
		secret.Zero(password)
		return nil, fmt.Errorf("username is missing")
	}
	if len(password) == 0 {
		return nil, fmt.Errorf("password is missing")
	}
	buffer, err := secret.NewFromBytes(password)
	if err != nil {
		return nil, fmt.Errorf("protecting password: %w", err)
	}
	return &Credentials{Username: username, Password: buffer}, nil
}

// Seal formats credentials as a credential file and encrypts it to
// the given age recipients.
func Seal(username string, password *secret.Buffer, recipients []string) ([]byte, error) {
	if username == "" || strings.ContainsAny(username, "\r\n") {
		return nil, fmt.Errorf("username must be a single non-empty line")
	}
	if password == nil || password.Len() == 0 || bytes.ContainsAny(password.Bytes(), "\r\n") {
		return nil, fmt.Errorf("password must be a single non-empty line")
	}
	var plaintext bytes.Buffer
	plaintext.WriteString("username=" + username + "\n")
	plaintext.WriteString("password=")
	plaintext.Write(password.Bytes())
	plaintext.WriteString("\n")
	defer secret.Zero(plaintext.Bytes())
	return sealed.Seal(plaintext.Bytes(), recipients)
}
