// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"
)

func TestDecodeResponse(t *testing.T) {
	t.Run("valid JSON", func(t *testing.T) {
		var result struct {
			Key  string `json:"key"`
			Size int    `json:"size"`
		}
		if err := DecodeResponse(bytes.NewReader([]byte(`{"key":"ENG","size":3}`)), &result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Key != "ENG" || result.Size != 3 {
			t.Fatalf("got %+v", result)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		if err := DecodeResponse(bytes.NewReader([]byte(`<html>`)), &struct{}{}); err == nil {
			t.Fatal("expected error for invalid JSON")
		}
	})

	t.Run("read error propagates", func(t *testing.T) {
		if err := DecodeResponse(&failReader{}, &struct{}{}); err == nil {
			t.Fatal("expected error from failing reader")
		}
	})
}

func TestErrorBody(t *testing.T) {
	if got := ErrorBody(bytes.NewReader([]byte(`{"message":"No space"}`))); got != `{"message":"No space"}` {
		t.Errorf("got %q", got)
	}
	if got := ErrorBody(&failReader{}); got != "" {
		t.Errorf("failing reader: got %q, want empty", got)
	}
}

func TestWriteError(t *testing.T) {
	recorder := httptest.NewRecorder()
	WriteError(recorder, http.StatusNotFound, "Not found")

	if recorder.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", recorder.Code)
	}
	if got := recorder.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	var body map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "Not found" {
		t.Errorf("error = %v", body["error"])
	}
	if _, ok := body["fields"]; ok {
		t.Error("fields should be omitted when empty")
	}
}

func TestIsExpectedCloseError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.Canceled, true},
		{fmt.Errorf("write: %w", syscall.EPIPE), true},
		{syscall.ECONNRESET, true},
		{errors.New("disk full"), false},
	}
	for _, test := range tests {
		if got := IsExpectedCloseError(test.err); got != test.want {
			t.Errorf("IsExpectedCloseError(%v) = %v, want %v", test.err, got, test.want)
		}
	}
}

// failReader always returns an error on Read.
type failReader struct{}

func (*failReader) Read([]byte) (int, error) {
	return 0, fmt.Errorf("simulated read failure")
}
