// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/accessdesk/accessdesk/lib/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startServer runs server until the test ends and returns the
// channel Serve's result arrives on.
func startServer(t *testing.T, server *HTTPServer) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "server ready")
	return cancel, done
}

func TestHTTPServerServesAndDrains(t *testing.T) {
	server := NewHTTPServer(HTTPServerConfig{
		Address: "127.0.0.1:0",
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "ok "+r.URL.Path)
		}),
		ShutdownTimeout: 2 * time.Second,
		Logger:          discardLogger(),
	})
	cancel, done := startServer(t, server)

	response, err := http.Get("http://" + server.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	body, _ := io.ReadAll(response.Body)
	response.Body.Close()
	if response.StatusCode != http.StatusOK || string(body) != "ok /health" {
		t.Errorf("GET /health = %d %q", response.StatusCode, body)
	}

	cancel()
	if err := testutil.RequireReceive(t, done, 5*time.Second, "Serve return"); err != nil {
		t.Errorf("Serve() = %v, want nil", err)
	}
}

func TestHTTPServerRejectsIncompleteConfig(t *testing.T) {
	handler := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	tests := []struct {
		name   string
		config HTTPServerConfig
		want   string
	}{
		{"address", HTTPServerConfig{Handler: handler, Logger: discardLogger()}, "address is required"},
		{"handler", HTTPServerConfig{Address: ":0", Logger: discardLogger()}, "handler is required"},
		{"logger", HTTPServerConfig{Address: ":0", Handler: handler}, "logger is required"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := NewHTTPServer(test.config).Serve(context.Background())
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Errorf("Serve() = %v, want %q", err, test.want)
			}
		})
	}
}

func TestHTTPServerAddressInUse(t *testing.T) {
	first := NewHTTPServer(HTTPServerConfig{
		Address: "127.0.0.1:0",
		Handler: http.NotFoundHandler(),
		Logger:  discardLogger(),
	})
	startServer(t, first)

	second := NewHTTPServer(HTTPServerConfig{
		Address: first.Addr().String(),
		Handler: http.NotFoundHandler(),
		Logger:  discardLogger(),
	})
	err := second.Serve(context.Background())
	if err == nil || !strings.Contains(err.Error(), "listening on") {
		t.Errorf("Serve() on a bound port = %v", err)
	}
}

func TestHTTPServerShutdownHookEndsStreams(t *testing.T) {
	release := make(chan struct{})
	streaming := make(chan struct{})

	// The handler holds its response open like an event stream until
	// the shutdown hook releases it.
	server := NewHTTPServer(HTTPServerConfig{
		Address: "127.0.0.1:0",
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.(http.Flusher).Flush()
			close(streaming)
			<-release
		}),
		ShutdownTimeout: 5 * time.Second,
		WriteTimeout:    -1,
		OnShutdown:      func() { close(release) },
		Logger:          discardLogger(),
	})
	cancel, done := startServer(t, server)

	response, err := http.Get("http://" + server.Addr().String() + "/api/events")
	if err != nil {
		t.Fatalf("GET /api/events: %v", err)
	}
	defer response.Body.Close()
	testutil.RequireClosed(t, streaming, 5*time.Second, "stream started")

	cancel()
	if err := testutil.RequireReceive(t, done, 5*time.Second, "Serve return"); err != nil {
		t.Errorf("Serve() = %v, want nil", err)
	}
}
