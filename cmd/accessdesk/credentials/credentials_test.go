// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package credentials

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/accessdesk/accessdesk/cmd/accessdesk/cli"
	"github.com/accessdesk/accessdesk/lib/credential"
)

func keygen(t *testing.T) (identityPath, publicKey string) {
	t.Helper()
	identityPath = filepath.Join(t.TempDir(), "identity.txt")
	var output bytes.Buffer
	if err := Keygen(identityPath, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), &output); err != nil {
		t.Fatalf("Keygen: %v", err)
	}
	publicKey, ok := strings.CutPrefix(strings.TrimSpace(output.String()), "Public key: ")
	if !ok || !strings.HasPrefix(publicKey, "age1") {
		t.Fatalf("Keygen output = %q", output.String())
	}
	return identityPath, publicKey
}

func TestKeygen(t *testing.T) {
	identityPath, publicKey := keygen(t)

	info, err := os.Stat(identityPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("identity mode = %v, want 0600", info.Mode().Perm())
	}
	contents, err := os.ReadFile(identityPath)
	if err != nil {
		t.Fatal(err)
	}
	text := string(contents)
	if !strings.Contains(text, "# created: 2026-05-01T00:00:00Z") {
		t.Errorf("identity file lacks creation comment:\n%s", text)
	}
	if !strings.Contains(text, "# public key: "+publicKey) || !strings.Contains(text, "\nAGE-SECRET-KEY-1") {
		t.Errorf("identity file = %q", text)
	}
}

func TestKeygenRefusesToOverwrite(t *testing.T) {
	identityPath, _ := keygen(t)
	err := Keygen(identityPath, time.Now(), io.Discard)
	if err == nil {
		t.Fatal("Keygen overwrote an existing identity")
	}
	var toolErr *cli.ToolError
	if !errors.As(err, &toolErr) || toolErr.Category != cli.CategoryConflict {
		t.Errorf("error = %v, want conflict", err)
	}
}

func TestSealRoundTrip(t *testing.T) {
	identityPath, publicKey := keygen(t)
	sealedPath := filepath.Join(t.TempDir(), "confluence.age")

	var output bytes.Buffer
	input := strings.NewReader("svc-accessdesk\nhunter2 with spaces\n")
	if err := Seal(input, []string{publicKey}, sealedPath, &output); err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if !strings.Contains(output.String(), "svc-accessdesk") {
		t.Errorf("output = %q", output.String())
	}
	info, err := os.Stat(sealedPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("sealed file mode = %v, want 0600", info.Mode().Perm())
	}

	credentials, err := credential.FromSealedFile(sealedPath, identityPath)
	if err != nil {
		t.Fatalf("FromSealedFile: %v", err)
	}
	defer credentials.Close()
	if credentials.Username != "svc-accessdesk" {
		t.Errorf("Username = %q", credentials.Username)
	}
	if !credentials.Password.Equal([]byte("hunter2 with spaces")) {
		t.Error("password did not round-trip")
	}
}

func TestSealValidation(t *testing.T) {
	_, publicKey := keygen(t)
	path := filepath.Join(t.TempDir(), "out.age")

	tests := []struct {
		name       string
		input      string
		recipients []string
	}{
		{"no recipients", "user\npass\n", nil},
		{"bad recipient", "user\npass\n", []string{"not-a-key"}},
		{"empty input", "", []string{publicKey}},
		{"missing password", "user\n", []string{publicKey}},
		{"empty username", "\npass\n", []string{publicKey}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := Seal(strings.NewReader(test.input), test.recipients, path, io.Discard)
			if cli.ExitCodeFor(err) != cli.ExitValidation {
				t.Errorf("Seal error = %v, want validation", err)
			}
			if _, statErr := os.Stat(path); statErr == nil {
				t.Error("Seal wrote output despite the error")
			}
		})
	}
}
