// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"errors"
	"strings"
	"testing"
)

func TestWebhookSignature(t *testing.T) {
	secret := []byte("scanner-secret")
	body := []byte(`{"page":{"id":"12345"}}`)
	signed := SignWebhookHMAC(secret, body)
	if !strings.HasPrefix(signed, "sha256=") || len(signed) != len("sha256=")+64 {
		t.Fatalf("SignWebhookHMAC = %q", signed)
	}

	tests := []struct {
		name      string
		secret    []byte
		body      []byte
		signature string
		want      error
	}{
		{"prefixed", secret, body, signed, nil},
		{"bare hex", secret, body, strings.TrimPrefix(signed, "sha256="), nil},
		{"missing", secret, body, "", ErrSignatureMissing},
		{"other body", secret, []byte("{}"), signed, ErrSignatureMismatch},
		{"other secret", []byte("wrong"), body, signed, ErrSignatureMismatch},
		{"truncated", secret, body, signed[:39], ErrSignatureMismatch},
		{"not hex", secret, body, "sha256=zz", ErrSignatureMismatch},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := VerifyWebhookHMAC(test.secret, test.body, test.signature)
			if !errors.Is(err, test.want) {
				t.Errorf("VerifyWebhookHMAC = %v, want %v", err, test.want)
			}
		})
	}
}

func TestVerifyWebhookHMACRequiresSecret(t *testing.T) {
	body := []byte("payload")
	err := VerifyWebhookHMAC(nil, body, SignWebhookHMAC(nil, body))
	if err == nil || !strings.Contains(err.Error(), "secret is empty") {
		t.Errorf("VerifyWebhookHMAC with no secret = %v", err)
	}
}
