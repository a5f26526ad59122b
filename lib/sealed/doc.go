// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts and decrypts credential files with age.
//
// The server can load the Confluence service account from a file
// sealed to an age x25519 recipient. The file is ASCII-armored age
// ciphertext ("-----BEGIN AGE ENCRYPTED FILE-----") so it can be
// committed to configuration repositories or pasted into secrets
// managers. The plaintext format is owned by lib/credential.
//
// Identities and decrypted plaintext are returned as [secret.Buffer]
// values. Callers close them.
package sealed
