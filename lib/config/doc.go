// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for accessdesk
// services and the CLI.
//
// Configuration comes from a single file named by the
// ACCESSDESK_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). Values are layered in a fixed order:
//
//  1. [Default]
//  2. the YAML file, when one is named
//  3. ${VAR} and ${VAR:-default} expansion of string fields
//  4. environment overrides such as ACCESSDESK_LISTEN and VAULT_TOKEN
//
// [Config.Validate] then rejects incomplete or contradictory settings,
// reporting every problem at once.
//
// Key exports:
//
//   - [Config] -- master struct with Server, Scanner, Confluence, Credentials
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other accessdesk packages.
package config
