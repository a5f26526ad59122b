// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/accessdesk/accessdesk/lib/client"
)

func TestToolError_Hint(t *testing.T) {
	err := Validation("missing required flag --lan-id")
	if err.Error() != "missing required flag --lan-id" {
		t.Errorf("Error() = %q", err.Error())
	}

	hinted := err.WithHint("Run 'accessdesk submit access --help'.")
	if hinted != err {
		t.Error("WithHint should return the same pointer")
	}
	want := "missing required flag --lan-id\n\nRun 'accessdesk submit access --help'."
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := fmt.Errorf("submit: %w", err)
	var toolErr *ToolError
	if !errors.As(wrapped, &toolErr) || toolErr.Hint == "" {
		t.Error("hint lost through errors.As")
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), ExitFailure},
		{"validation", Validation("bad"), ExitValidation},
		{"not found", NotFound("missing"), ExitNotFound},
		{"transient", Transient("timeout"), ExitTransient},
		{"conflict", Conflict("exists"), ExitFailure},
		{"internal", Internal("bug"), ExitFailure},
		{"wrapped", fmt.Errorf("outer: %w", NotFound("missing")), ExitNotFound},
		{"exit error", &ExitError{Code: 7}, 7},
	}
	for _, test := range tests {
		if got := ExitCodeFor(test.err); got != test.want {
			t.Errorf("%s: ExitCodeFor = %d, want %d", test.name, got, test.want)
		}
	}
}

func TestClassifyError(t *testing.T) {
	const server = "http://127.0.0.1:5000"
	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		hint     string
	}{
		{"not found", &client.APIError{StatusCode: 404, Message: "Request not found"}, CategoryNotFound, ""},
		{"bad request", &client.APIError{StatusCode: 400, Message: "Missing fields", Fields: []string{"email"}}, CategoryValidation, ""},
		{"server error", &client.APIError{StatusCode: 503, Message: "unavailable"}, CategoryTransient, ""},
		{"other status", &client.APIError{StatusCode: 418, Message: "teapot"}, CategoryInternal, ""},
		{"timeout", fmt.Errorf("listing: %w", context.DeadlineExceeded), CategoryTransient, "did not answer"},
		{"unreachable", &url.Error{Op: "Get", URL: server, Err: errors.New("dial tcp: connection refused")}, CategoryTransient, "Is accessdesk-server running"},
		{"unknown", errors.New("decoding response: unexpected EOF"), CategoryInternal, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var toolErr *ToolError
			if !errors.As(ClassifyError(test.err, server), &toolErr) {
				t.Fatal("ClassifyError did not return a ToolError")
			}
			if toolErr.Category != test.category {
				t.Errorf("Category = %q, want %q", toolErr.Category, test.category)
			}
			if !strings.Contains(toolErr.Hint, test.hint) {
				t.Errorf("Hint = %q, want it to contain %q", toolErr.Hint, test.hint)
			}
			if !errors.Is(toolErr, test.err) {
				t.Error("classified error does not wrap the original")
			}
		})
	}

	if ClassifyError(nil, server) != nil {
		t.Error("ClassifyError(nil) != nil")
	}
	original := Validation("already classified")
	if ClassifyError(original, server) != error(original) {
		t.Error("ClassifyError rewrapped a ToolError")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var output strings.Builder
	newLogger(&output, false, false).Debug("hidden")
	if output.Len() != 0 {
		t.Errorf("debug logged without verbose: %q", output.String())
	}
	newLogger(&output, false, true).Debug("shown")
	if !strings.HasPrefix(output.String(), "{") {
		t.Errorf("non-terminal output = %q, want JSON", output.String())
	}
	output.Reset()
	newLogger(&output, true, false).Info("text")
	if !strings.Contains(output.String(), "msg=text") {
		t.Errorf("terminal output = %q, want text handler", output.String())
	}
}
