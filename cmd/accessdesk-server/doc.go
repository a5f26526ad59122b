// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// accessdesk-server accepts Confluence access and space creation
// requests, persists them in a JSON file, runs the automation for each
// one on a bounded worker pool, and pushes every lifecycle change to
// connected dashboards over Server-Sent Events.
//
// Configuration comes from the YAML file named by -config or
// $ACCESSDESK_CONFIG, with environment overrides. With a Redis URL
// configured, several replicas share one event stream; each replica
// still owns its own request file, so replicas must not share a
// database path.
package main
