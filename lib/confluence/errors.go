// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package confluence

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches any 404 response.
var ErrNotFound = errors.New("confluence: not found")

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (err *APIError) Error() string {
	return fmt.Sprintf("confluence: HTTP %d: %s", err.StatusCode, err.Message)
}

// Is makes errors.Is(err, ErrNotFound) true for 404 responses.
func (err *APIError) Is(target error) bool {
	return target == ErrNotFound && err.StatusCode == http.StatusNotFound
}

// parseAPIError extracts the message from a Confluence error body,
// which is {"statusCode":N,"message":"..."} on most endpoints and
// plain text or HTML on some failures.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiError := &APIError{StatusCode: statusCode}
	var wire struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &wire) == nil && wire.Message != "" {
		apiError.Message = wire.Message
	} else {
		apiError.Message = string(body)
	}
	if apiError.Message == "" {
		apiError.Message = http.StatusText(statusCode)
	}
	return apiError
}
