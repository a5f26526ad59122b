// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/accessdesk/accessdesk/lib/client"
)

// EnvServer overrides the default server URL.
const EnvServer = "ACCESSDESK_SERVER"

// Connection holds the global flags of commands that talk to
// accessdesk-server. Embed it in a params struct.
type Connection struct {
	Server  string
	Verbose bool
}

// AddFlags binds --server and --verbose. The server default comes
// from $ACCESSDESK_SERVER.
func (c *Connection) AddFlags(flagSet *pflag.FlagSet) {
	server := os.Getenv(EnvServer)
	if server == "" {
		server = client.DefaultServer
	}
	flagSet.StringVar(&c.Server, "server", server, "accessdesk server URL (env "+EnvServer+")")
	flagSet.BoolVarP(&c.Verbose, "verbose", "v", false, "log at debug level")
}

// Logger returns the command logger at the level --verbose selects.
func (c *Connection) Logger() *slog.Logger {
	return NewCommandLogger(c.Verbose)
}

// Client returns a client for --server.
func (c *Connection) Client(logger *slog.Logger) (*client.Client, error) {
	result, err := client.New(client.Config{Server: c.Server, Logger: logger})
	if err != nil {
		return nil, Validation("%w", err)
	}
	return result, nil
}

// ClassifyError wraps a client failure in a ToolError with a category
// matching its cause. server names the server in hints. ToolErrors
// and nil pass through unchanged.
func ClassifyError(err error, server string) error {
	if err == nil {
		return nil
	}
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return err
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusNotFound:
			return &ToolError{Category: CategoryNotFound, Err: err}
		case apiErr.StatusCode == http.StatusBadRequest:
			return &ToolError{Category: CategoryValidation, Err: err}
		case apiErr.StatusCode >= 500:
			return &ToolError{Category: CategoryTransient, Err: err}
		}
		return &ToolError{Category: CategoryInternal, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return (&ToolError{Category: CategoryTransient, Err: err}).
			WithHint("The server at " + server + " did not answer in time.")
	}
	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) || strings.Contains(err.Error(), "connection refused") {
		return (&ToolError{Category: CategoryTransient, Err: err}).
			WithHint("Is accessdesk-server running at " + server + "? Set --server or " + EnvServer + ".")
	}
	return &ToolError{Category: CategoryInternal, Err: err}
}
