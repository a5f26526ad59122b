// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultReadTimeout     = 30 * time.Second

	// Request bodies are small JSON documents and webhook payloads.
	maxHeaderBytes = 64 << 10
)

// HTTPServerConfig configures an HTTPServer.
type HTTPServerConfig struct {
	// Address is the TCP listen address, for example ":5000" or
	// "127.0.0.1:0". Required.
	Address string

	// Handler serves every request. Required.
	Handler http.Handler

	// ShutdownTimeout bounds the drain of in-flight requests once
	// Serve's context ends. Zero means 10 seconds.
	ShutdownTimeout time.Duration

	// WriteTimeout bounds each response. Zero means 30 seconds;
	// negative disables the limit, which Server-Sent Events need.
	WriteTimeout time.Duration

	// OnShutdown runs once when the drain starts. Handlers that hold
	// streams open use it to end them.
	OnShutdown func()

	// Logger is required.
	Logger *slog.Logger
}

func (c HTTPServerConfig) validate() error {
	var errs []error
	if c.Address == "" {
		errs = append(errs, errors.New("address is required"))
	}
	if c.Handler == nil {
		errs = append(errs, errors.New("handler is required"))
	}
	if c.Logger == nil {
		errs = append(errs, errors.New("logger is required"))
	}
	return errors.Join(errs...)
}

// HTTPServer runs one handler on a TCP listener with graceful
// shutdown.
type HTTPServer struct {
	config HTTPServerConfig
	ready  chan struct{}
	addr   net.Addr
}

// NewHTTPServer returns a server for config. Nothing is bound until
// Serve runs.
func NewHTTPServer(config HTTPServerConfig) *HTTPServer {
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = defaultShutdownTimeout
	}
	switch {
	case config.WriteTimeout == 0:
		config.WriteTimeout = defaultWriteTimeout
	case config.WriteTimeout < 0:
		config.WriteTimeout = 0
	}
	return &HTTPServer{config: config, ready: make(chan struct{})}
}

// Ready is closed once the listener is bound.
func (s *HTTPServer) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address, which carries the real port when
// the configured one was 0. Valid after Ready is closed.
func (s *HTTPServer) Addr() net.Addr {
	return s.addr
}

// Serve binds the listener and serves until ctx ends, then stops
// accepting connections and drains in-flight requests. It returns nil
// after a clean drain.
func (s *HTTPServer) Serve(ctx context.Context) error {
	if err := s.config.validate(); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	logger := s.config.Logger

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.Address, err)
	}
	s.addr = listener.Addr()

	server := &http.Server{
		Handler:           s.config.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       time.Minute,
		MaxHeaderBytes:    maxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	failed := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()
	close(s.ready)
	logger.Info("http server listening", "address", s.addr.String())

	select {
	case err := <-failed:
		return fmt.Errorf("serving on %s: %w", s.addr, err)
	case <-ctx.Done():
	}
	return s.drain(server)
}

func (s *HTTPServer) drain(server *http.Server) error {
	logger := s.config.Logger
	logger.Info("http server shutting down", "timeout", s.config.ShutdownTimeout)
	if s.config.OnShutdown != nil {
		s.config.OnShutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		server.Close()
		return fmt.Errorf("http server shutdown: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}
