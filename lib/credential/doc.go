// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package credential loads the Confluence service account.
//
// Three sources are supported, chosen by config.CredentialsConfig:
//
//   - vault: a KV version 2 secret with username and password keys,
//     read with the Vault API client
//   - sealed: an age-armored file of "username=" and "password=" lines,
//     decrypted with an identity file (see [Seal] and lib/sealed)
//   - plain: values from the config file, for development only
//
// The password is held in a [secret.Buffer] for the life of the
// process. Callers close the returned [Credentials] on shutdown.
package credential
