// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package credential

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/accessdesk/accessdesk/lib/config"
	"github.com/accessdesk/accessdesk/lib/sealed"
	"github.com/accessdesk/accessdesk/lib/secret"
)

func TestParse(t *testing.T) {
	data := []byte("# confluence service account\nusername=svc-wiki\r\npassword=p=ss word\n\n")
	credentials, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer credentials.Close()
	if credentials.Username != "svc-wiki" {
		t.Errorf("Username = %q, want svc-wiki", credentials.Username)
	}
	if got := credentials.Password.String(); got != "p=ss word" {
		t.Errorf("Password = %q, want %q", got, "p=ss word")
	}
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"no password":  "username=svc\n",
		"no username":  "password=pw\n",
		"unknown key":  "username=svc\npassword=pw\ntoken=x\n",
		"missing sign": "username svc\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(input)); err == nil {
				t.Errorf("Parse(%q) = nil error", input)
			}
		})
	}
}

func TestSealRoundTrip(t *testing.T) {
	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	defer keypair.Close()

	password, err := secret.NewFromString("correct horse")
	if err != nil {
		t.Fatalf("NewFromString: %v", err)
	}
	defer password.Close()

	ciphertext, err := Seal("svc-wiki", password, []string{keypair.PublicKey})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if strings.Contains(string(ciphertext), "correct horse") {
		t.Fatal("ciphertext contains the plaintext password")
	}

	directory := t.TempDir()
	sealedPath := filepath.Join(directory, "confluence.age")
	identityPath := filepath.Join(directory, "identity.txt")
	if err := os.WriteFile(sealedPath, ciphertext, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	identity := "# created for tests\n" + keypair.PrivateKey.String() + "\n"
	if err := os.WriteFile(identityPath, []byte(identity), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	credentials, err := Load(context.Background(), config.CredentialsConfig{
		Source: config.SourceSealed,
		Sealed: config.SealedConfig{File: sealedPath, Identity: identityPath},
	}, discardLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer credentials.Close()
	if credentials.Username != "svc-wiki" || credentials.Password.String() != "correct horse" {
		t.Errorf("credentials = %q / %q", credentials.Username, credentials.Password.String())
	}
}

func TestSealRejectsMultilineValues(t *testing.T) {
	password, err := secret.NewFromString("pw\nusername=evil")
	if err != nil {
		t.Fatalf("NewFromString: %v", err)
	}
	defer password.Close()
	if _, err := Seal("svc", password, []string{"age1unused"}); err == nil {
		t.Error("Seal accepted a multi-line password")
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newVault serves one KV version 2 secret at kv/confluence and
// requires the given token.
func newVault(t *testing.T, token string, data map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Vault-Token") != token {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"errors":["permission denied"]}`))
			return
		}
		if r.Method != http.MethodGet || r.URL.Path != "/v1/kv/data/confluence" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"errors":[]}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"request_id":     "test",
			"lease_id":       "",
			"renewable":      false,
			"lease_duration": 0,
			"data": map[string]any{
				"data": data,
				"metadata": map[string]any{
					"created_time":    "2026-01-01T00:00:00.000000Z",
					"custom_metadata": nil,
					"deletion_time":   "",
					"destroyed":       false,
					"version":         1,
				},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func vaultConfig(address, token string) config.VaultConfig {
	return config.VaultConfig{Address: address, Token: token, Mount: "kv", Path: "confluence"}
}

func TestFromVault(t *testing.T) {
	server := newVault(t, "root-token", map[string]any{"username": "svc-wiki", "password": "hunter2"})

	credentials, err := fromVault(context.Background(), vaultConfig(server.URL, "root-token"), server.Client())
	if err != nil {
		t.Fatalf("fromVault: %v", err)
	}
	defer credentials.Close()
	if credentials.Username != "svc-wiki" || credentials.Password.String() != "hunter2" {
		t.Errorf("credentials = %q / %q", credentials.Username, credentials.Password.String())
	}
}

func TestFromVaultMissingKeys(t *testing.T) {
	server := newVault(t, "root-token", map[string]any{"username": "svc-wiki"})
	if _, err := fromVault(context.Background(), vaultConfig(server.URL, "root-token"), server.Client()); err == nil {
		t.Fatal("fromVault accepted a secret without a password")
	}
}

func TestFromVaultWrongToken(t *testing.T) {
	server := newVault(t, "root-token", map[string]any{"username": "svc", "password": "pw"})
	if _, err := fromVault(context.Background(), vaultConfig(server.URL, "wrong"), server.Client()); err == nil {
		t.Fatal("fromVault succeeded with the wrong token")
	}
}

func TestLoadPlain(t *testing.T) {
	credentials, err := Load(context.Background(), config.CredentialsConfig{
		Source: config.SourcePlain, Username: "svc", Password: "pw",
	}, discardLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer credentials.Close()
	if credentials.Password.String() != "pw" {
		t.Errorf("Password = %q", credentials.Password.String())
	}
}

func TestLoadUnknownSource(t *testing.T) {
	if _, err := Load(context.Background(), config.CredentialsConfig{Source: "ldap"}, discardLogger()); err == nil {
		t.Fatal("Load accepted an unknown source")
	}
}
