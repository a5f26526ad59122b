// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/gzhttp"
	"github.com/zeebo/blake3"

	"github.com/accessdesk/accessdesk/lib/clock"
	"github.com/accessdesk/accessdesk/lib/eventbus"
	"github.com/accessdesk/accessdesk/lib/netutil"
	"github.com/accessdesk/accessdesk/lib/requestindex"
	"github.com/accessdesk/accessdesk/lib/schema/request"
	"github.com/accessdesk/accessdesk/lib/store"
	"github.com/accessdesk/accessdesk/lib/version"
)

// maxBodySize bounds a submitted request payload.
const maxBodySize = 1 << 20

// DefaultHeartbeat is used when ServerConfig.Heartbeat is zero.
const DefaultHeartbeat = 30 * time.Second

// ServerConfig configures a Server.
type ServerConfig struct {
	Store     *store.Store
	Bus       eventbus.Bus
	Queue     Queue
	Clock     clock.Clock
	Heartbeat time.Duration
	Logger    *slog.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	store     *store.Store
	bus       eventbus.Bus
	queue     Queue
	clock     clock.Clock
	heartbeat time.Duration
	logger    *slog.Logger

	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// NewServer creates a Server.
func NewServer(config ServerConfig) *Server {
	heartbeat := config.Heartbeat
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &Server{
		store:     config.Store,
		bus:       config.Bus,
		queue:     config.Queue,
		clock:     config.Clock,
		heartbeat: heartbeat,
		logger:    config.Logger,
		shutdown:  make(chan struct{}),
	}
}

// Shutdown ends every open event stream. Safe to call more than once.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() { close(s.shutdown) })
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(requestIDMiddleware)
	router.Use(recoverMiddleware(s.logger))
	router.Use(loggingMiddleware(s.logger, s.clock))

	// The event stream must not pass through the compressor, which
	// buffers output.
	router.Get("/api/events", s.handleEvents)

	router.Group(func(router chi.Router) {
		router.Use(func(next http.Handler) http.Handler { return gzhttp.GzipHandler(next) })

		router.Get("/", s.handleIndex)
		router.Get("/health", s.handleHealth)
		router.Get("/fragments/requests", s.handleFragment)

		router.Route("/api", func(router chi.Router) {
			router.Get("/requests", s.handleList)
			router.Post("/requests", s.handleCreate(request.TypeAccess))
			router.Delete("/requests/{id}", s.handleDelete)
			router.Post("/space-requests", s.handleCreate(request.TypeSpaceCreation))
			router.Get("/stats", s.handleStats)
			router.Get("/version", s.handleVersion)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		netutil.WriteError(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		netutil.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	netutil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	netutil.WriteJSON(w, http.StatusOK, version.Current())
}

// sortedRecords returns the records passing filter, newest first.
func (s *Server) sortedRecords(filter requestindex.Filter) []request.Request {
	index := requestindex.New()
	index.Load(s.store.List())
	return index.List(filter)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	filter, err := requestindex.ParseFilter(r.URL.Query().Get("status"))
	if err != nil {
		netutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	records := s.sortedRecords(filter)
	if records == nil {
		records = []request.Request{}
	}

	body, err := json.Marshal(records)
	if err != nil {
		s.logger.Error("encoding request list", "error", err)
		netutil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	body = append(body, '\n')

	sum := blake3.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:16]) + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var stats request.Stats
	for _, record := range s.store.List() {
		stats.Add(record.Status)
	}
	netutil.WriteJSON(w, http.StatusOK, stats)
}

// handleCreate accepts a submission of the given type, persists it,
// announces it, and queues it for processing.
func (s *Server) handleCreate(kind request.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data request.Data
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
		if err != nil {
			netutil.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		if err := json.Unmarshal(bytes.TrimSpace(body), &data); err != nil {
			netutil.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		if kind == request.TypeSpaceCreation {
			err = data.ValidateSpace()
		} else {
			err = data.ValidateAccess()
		}
		var missing *request.MissingFieldsError
		switch {
		case errors.As(err, &missing):
			netutil.WriteJSON(w, http.StatusBadRequest, netutil.ErrorResponse{Error: "Missing fields", Fields: missing.Fields})
			return
		case err != nil:
			netutil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		record, err := s.store.Create(kind, data)
		if err != nil {
			s.logger.Error("persisting request", "type", kind, "error", err)
			netutil.WriteError(w, http.StatusInternalServerError, "Could not save request")
			return
		}
		s.logger.Info("request created", "request_id", record.ID, "type", kind)

		if err := s.bus.Publish(context.WithoutCancel(r.Context()), request.Event{Type: request.EventCreated, ID: record.ID, Request: &record}); err != nil {
			s.logger.Warn("publishing request_created", "request_id", record.ID, "error", err)
		}
		if err := s.queue.Enqueue(r.Context(), record.ID); err != nil {
			s.logger.Warn("request not queued; it stays pending until the next restart",
				"request_id", record.ID, "error", err)
		}
		netutil.WriteJSON(w, http.StatusCreated, record)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		netutil.WriteError(w, http.StatusBadRequest, "Invalid request id")
		return
	}
	if err := s.store.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			netutil.WriteError(w, http.StatusNotFound, "Request not found")
			return
		}
		s.logger.Error("deleting request", "request_id", id, "error", err)
		netutil.WriteError(w, http.StatusInternalServerError, "Could not delete request")
		return
	}
	s.logger.Info("request deleted", "request_id", id)

	if err := s.bus.Publish(context.WithoutCancel(r.Context()), request.Event{Type: request.EventDeleted, ID: id}); err != nil {
		s.logger.Warn("publishing request_deleted", "request_id", id, "error", err)
	}
	netutil.WriteJSON(w, http.StatusOK, map[string]any{"status": "deleted", "id": id})
}
