// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/accessdesk/accessdesk/lib/clock"
	"github.com/accessdesk/accessdesk/lib/netutil"
	"github.com/accessdesk/accessdesk/lib/requestindex"
	"github.com/accessdesk/accessdesk/lib/schema/request"
	"github.com/accessdesk/accessdesk/lib/version"
)

// DefaultServer is used when neither --server nor ACCESSDESK_SERVER
// is set.
const DefaultServer = "http://127.0.0.1:5000"

// ErrNotFound is matched by an APIError with status 404.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string

	// Fields lists missing payload keys on a 400 validation failure.
	Fields []string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("server returned %d: %s: %s", e.StatusCode, e.Message, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Is reports whether a 404 APIError matches ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Config configures a Client.
type Config struct {
	// Server is the server root URL. Defaults to DefaultServer.
	Server string

	// HTTPClient is used for API calls and the event stream. It must
	// not set an overall Timeout, which would cut the stream; bound
	// API calls with the context instead. Defaults to a client with
	// no timeout.
	HTTPClient *http.Client

	// Clock drives reconnect backoff. Defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client is safe for concurrent use.
type Client struct {
	server     string
	httpClient *http.Client
	clock      clock.Clock
	logger     *slog.Logger
}

// New validates config and returns a Client.
func New(config Config) (*Client, error) {
	server := strings.TrimRight(config.Server, "/")
	if server == "" {
		server = DefaultServer
	}
	parsed, err := url.Parse(server)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("server URL must be http or https (got %q)", config.Server)
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{server: server, httpClient: httpClient, clock: clk, logger: logger}, nil
}

// Server returns the server root URL.
func (c *Client) Server() string { return c.server }

// List returns all requests, newest first. A filter other than all
// is applied by the server.
func (c *Client) List(ctx context.Context, filter requestindex.Filter) ([]request.Request, error) {
	path := "/api/requests"
	if filter != "" && filter != requestindex.FilterAll {
		path += "?status=" + url.QueryEscape(string(filter))
	}
	var records []request.Request
	if err := c.do(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Stats returns request counts by status.
func (c *Client) Stats(ctx context.Context) (request.Stats, error) {
	var stats request.Stats
	err := c.do(ctx, http.MethodGet, "/api/stats", nil, &stats)
	return stats, err
}

// SubmitAccess creates an access request.
func (c *Client) SubmitAccess(ctx context.Context, data request.Data) (request.Request, error) {
	var record request.Request
	err := c.do(ctx, http.MethodPost, "/api/requests", data, &record)
	return record, err
}

// SubmitSpace creates a space creation request.
func (c *Client) SubmitSpace(ctx context.Context, data request.Data) (request.Request, error) {
	var record request.Request
	err := c.do(ctx, http.MethodPost, "/api/space-requests", data, &record)
	return record, err
}

// Delete removes a request.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/requests/"+strconv.FormatInt(id, 10), nil, nil)
}

// Version returns the server's build details.
func (c *Client) Version(ctx context.Context) (version.Details, error) {
	var details version.Details
	err := c.do(ctx, http.MethodGet, "/api/version", nil, &details)
	return details, err
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	httpRequest, err := http.NewRequestWithContext(ctx, method, c.server+path, reader)
	if err != nil {
		return err
	}
	httpRequest.Header.Set("Accept", "application/json")
	if body != nil {
		httpRequest.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return parseAPIError(response)
	}
	if result == nil {
		return nil
	}
	return netutil.DecodeResponse(response.Body, result)
}

func parseAPIError(response *http.Response) error {
	body := netutil.ErrorBody(response.Body)
	apiError := &APIError{StatusCode: response.StatusCode}
	var decoded netutil.ErrorResponse
	if json.Unmarshal([]byte(body), &decoded) == nil && decoded.Error != "" {
		apiError.Message = decoded.Error
		apiError.Fields = decoded.Fields
	} else if trimmed := strings.TrimSpace(body); trimmed != "" {
		apiError.Message = trimmed
	} else {
		apiError.Message = http.StatusText(response.StatusCode)
	}
	return apiError
}
