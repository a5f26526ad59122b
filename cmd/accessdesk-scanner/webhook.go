// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/accessdesk/accessdesk/lib/confluence"
	"github.com/accessdesk/accessdesk/lib/netutil"
	"github.com/accessdesk/accessdesk/lib/scanner"
	"github.com/accessdesk/accessdesk/lib/service"
)

// maxWebhookBodySize bounds a webhook payload. Confluence sends the
// page metadata, not the body, so deliveries are small.
const maxWebhookBodySize = 1 << 20

// SignatureHeader carries the hex HMAC-SHA256 of the body when a
// webhook secret is configured.
const SignatureHeader = "X-Hub-Signature-256"

// MaskMessage is the version message on pages the scanner rewrites.
const MaskMessage = "Auto-masked secrets"

// Pages is the part of the Confluence client the scanner uses.
type Pages interface {
	GetPage(ctx context.Context, id string) (*confluence.Page, error)
	UpdatePage(ctx context.Context, id, title, body string, version int, message string) error
}

// ScanResponse is the JSON reply to a webhook delivery.
type ScanResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count,omitempty"`
}

// WebhookHandler scans and masks the page named by each delivery.
type WebhookHandler struct {
	pages  Pages
	secret []byte
	logger *slog.Logger
}

// NewWebhookHandler creates a handler. An empty secret disables
// signature verification.
func NewWebhookHandler(pages Pages, secret []byte, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{pages: pages, secret: secret, logger: logger}
}

// Handler routes the webhook and health endpoints.
func (h *WebhookHandler) Handler() http.Handler {
	router := chi.NewRouter()
	router.Post("/webhook/page-created", h.handleWebhook("page_created"))
	router.Post("/webhook/page-updated", h.handleWebhook("page_updated"))
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		netutil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		netutil.WriteError(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		netutil.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return router
}

func (h *WebhookHandler) handleWebhook(event string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodySize))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("webhook body too large", "event", event, "limit", tooLarge.Limit)
			netutil.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		if err != nil {
			h.logger.Error("reading webhook body", "event", event, "error", err)
			netutil.WriteError(w, http.StatusBadRequest, "Unreadable body")
			return
		}

		if len(h.secret) > 0 {
			if err := service.VerifyWebhookHMAC(h.secret, body, r.Header.Get(SignatureHeader)); err != nil {
				h.logger.Warn("webhook signature rejected",
					"event", event,
					"error", err,
					"remote_addr", r.RemoteAddr,
				)
				netutil.WriteError(w, http.StatusUnauthorized, "Invalid signature")
				return
			}
		}

		pageID, err := parsePageID(body)
		if err != nil {
			h.logger.Warn("webhook without page id", "event", event, "error", err)
			netutil.WriteError(w, http.StatusBadRequest, "No page ID")
			return
		}

		logger := h.logger.With("event", event, "page_id", pageID)
		count, err := h.scanPage(r.Context(), pageID)
		if err != nil {
			logger.Error("scanning page", "error", err)
			netutil.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if count == 0 {
			logger.Debug("page clean")
			netutil.WriteJSON(w, http.StatusOK, ScanResponse{Status: "clean"})
			return
		}
		logger.Info("masked secrets", "count", count)
		netutil.WriteJSON(w, http.StatusOK, ScanResponse{Status: "masked", Count: count})
	}
}

// scanPage masks the secrets on one page and returns how many it
// masked. A clean page is left untouched.
func (h *WebhookHandler) scanPage(ctx context.Context, pageID string) (int, error) {
	page, err := h.pages.GetPage(ctx, pageID)
	if err != nil {
		return 0, err
	}
	text := page.Body.Storage.Value
	findings := scanner.Scan(text)
	if len(findings) == 0 {
		return 0, nil
	}
	for _, finding := range findings {
		h.logger.Info("secret found", "page_id", pageID, "kind", finding.Kind, "offset", finding.Start)
	}
	err = h.pages.UpdatePage(ctx, pageID, page.Title, scanner.Mask(text, findings), page.Version.Number+1, MaskMessage)
	if err != nil {
		return 0, err
	}
	return len(findings), nil
}

// webhookPayload covers the places Confluence and its plugins put the
// page id.
type webhookPayload struct {
	Page    *struct{ ID json.RawMessage } `json:"page"`
	Content *struct{ ID json.RawMessage } `json:"content"`
	ID      json.RawMessage               `json:"id"`
}

// parsePageID finds the page id in page.id, content.id, or id, in that
// order. Each may be a JSON string or number.
func parsePageID(body []byte) (string, error) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decoding payload: %w", err)
	}
	var candidates []json.RawMessage
	if payload.Page != nil {
		candidates = append(candidates, payload.Page.ID)
	}
	if payload.Content != nil {
		candidates = append(candidates, payload.Content.ID)
	}
	candidates = append(candidates, payload.ID)
	for _, raw := range candidates {
		if id := idString(raw); id != "" {
			return id, nil
		}
	}
	return "", errors.New("payload has no page id")
}

func idString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var number json.Number
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&number); err == nil {
		return number.String()
	}
	return ""
}
