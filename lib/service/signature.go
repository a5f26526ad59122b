// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// signaturePrefix marks the digest algorithm in a webhook signature
// header.
const signaturePrefix = "sha256="

var (
	// ErrSignatureMissing is returned when a signed request carries no
	// signature.
	ErrSignatureMissing = errors.New("webhook signature is missing")

	// ErrSignatureMismatch is returned when the signature does not
	// match the body.
	ErrSignatureMismatch = errors.New("webhook signature does not match")
)

// SignWebhookHMAC returns the "sha256=<hex>" HMAC-SHA256 signature of
// body under secret.
func SignWebhookHMAC(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookHMAC checks signature, the hex HMAC-SHA256 of body
// with or without the "sha256=" prefix. Errors never include the
// expected digest.
func VerifyWebhookHMAC(secret, body []byte, signature string) error {
	if len(secret) == 0 {
		return errors.New("webhook signing secret is empty")
	}
	if signature == "" {
		return ErrSignatureMissing
	}
	digest, err := hex.DecodeString(strings.TrimPrefix(signature, signaturePrefix))
	if err != nil {
		return fmt.Errorf("%w: not hex", ErrSignatureMismatch)
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), digest) {
		return ErrSignatureMismatch
	}
	return nil
}
