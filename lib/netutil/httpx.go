// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil holds HTTP I/O helpers shared by the accessdesk
// clients and servers.
//
// Response helpers ([ReadResponse], [DecodeResponse], [ErrorBody])
// bound body reads at [MaxResponseSize]. They are for JSON API
// responses from the accessdesk server and Confluence, not for the
// event stream, which is read incrementally.
//
// [WriteJSON] and [WriteError] produce the JSON bodies every
// accessdesk endpoint answers with. Errors are always an object with
// an "error" member.
//
// [IsExpectedCloseError] separates a client hanging up from a real
// write failure on long-lived responses.
package netutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// MaxResponseSize bounds JSON response reads at 32 MB. Confluence
// page bodies are the largest payloads handled and are far smaller.
const MaxResponseSize int64 = 32 << 20

// ReadResponse reads a response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads a body (up to MaxResponseSize bytes) and
// decodes it as JSON into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := ReadResponse(body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// ErrorBody returns an error response body as a string for
// diagnostics. A read failure yields whatever was read.
func ErrorBody(body io.Reader) string {
	data, _ := ReadResponse(body)
	return string(data)
}

// ErrorResponse is the body of every non-2xx accessdesk response.
type ErrorResponse struct {
	Error string `json:"error"`

	// Fields lists missing payload keys on a validation failure.
	Fields []string `json:"fields,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": message} with the given status.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}
