// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/accessdesk/accessdesk/lib/netutil"
)

// Default limiter settings: ten requests per second with a burst of
// five.
const (
	DefaultRequestsPerSecond = 10
	DefaultBurst             = 5
)

// Config configures a Client.
type Config struct {
	// BaseURL is the Confluence root, e.g. "https://wiki.example.com".
	// Required.
	BaseURL string

	// Username and Password are the service account. Password is
	// read on every request; pass a *secret.Buffer to keep it off the
	// heap between requests.
	Username string
	Password fmt.Stringer

	// RequestsPerSecond and Burst configure the limiter. Zero values
	// take the defaults; a negative RequestsPerSecond disables
	// limiting.
	RequestsPerSecond float64
	Burst             int

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client is a Confluence REST client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	username   string
	password   fmt.Stringer
	limiter    *rate.Limiter
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient validates config and returns a Client.
func NewClient(config Config) (*Client, error) {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("confluence: base URL is required")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("confluence: base URL must be http or https (got %q)", baseURL)
	}
	if config.Username == "" || config.Password == nil {
		return nil, fmt.Errorf("confluence: username and password are required")
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if config.RequestsPerSecond >= 0 {
		perSecond := config.RequestsPerSecond
		if perSecond == 0 {
			perSecond = DefaultRequestsPerSecond
		}
		burst := config.Burst
		if burst <= 0 {
			burst = DefaultBurst
		}
		limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		username:   config.Username,
		password:   config.Password,
		limiter:    limiter,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// BaseURL returns the Confluence root without a trailing slash.
func (client *Client) BaseURL() string { return client.baseURL }

// do sends one request and returns the response body. path is
// relative to the base URL and may carry a query string. requestBody
// is JSON-encoded when non-nil.
func (client *Client) do(ctx context.Context, method, path string, requestBody any) ([]byte, error) {
	if err := client.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("confluence: rate limiter: %w", err)
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("confluence: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("confluence: creating request: %w", err)
	}
	request.SetBasicAuth(client.username, client.password.String())
	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	// Confluence rejects mutating requests without this header when
	// XSRF protection is on.
	request.Header.Set("X-Atlassian-Token", "no-check")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("confluence: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("confluence: reading response body: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		client.logger.Debug("confluence request failed",
			"method", method,
			"path", path,
			"status", response.StatusCode,
		)
		return nil, parseAPIError(response.StatusCode, body)
	}
	return body, nil
}

// get decodes a GET response into result.
func (client *Client) get(ctx context.Context, path string, result any) error {
	body, err := client.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("confluence: decoding %s: %w", path, err)
	}
	return nil
}

// send issues a POST or PUT and decodes the response into result when
// result is non-nil and the body is not empty.
func (client *Client) send(ctx context.Context, method, path string, requestBody, result any) error {
	body, err := client.do(ctx, method, path, requestBody)
	if err != nil {
		return err
	}
	if result == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("confluence: decoding %s: %w", path, err)
	}
	return nil
}

// page is the envelope of Confluence's offset-paginated list
// endpoints.
type page[T any] struct {
	Results []T `json:"results"`
	Start   int `json:"start"`
	Limit   int `json:"limit"`
	Size    int `json:"size"`
}

// pageLimit is the page size requested from list endpoints.
const pageLimit = 200

// collect walks an offset-paginated endpoint. path must already carry
// a query string.
func collect[T any](ctx context.Context, client *Client, path string) ([]T, error) {
	var all []T
	for start := 0; ; {
		var current page[T]
		if err := client.get(ctx, fmt.Sprintf("%s&start=%d&limit=%d", path, start, pageLimit), &current); err != nil {
			return nil, err
		}
		all = append(all, current.Results...)
		if len(current.Results) == 0 || len(current.Results) < pageLimit {
			return all, nil
		}
		start += len(current.Results)
	}
}
