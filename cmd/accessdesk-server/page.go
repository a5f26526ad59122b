// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	_ "embed"
	"net/http"

	"github.com/accessdesk/accessdesk/lib/netutil"
	"github.com/accessdesk/accessdesk/lib/requestindex"
	"github.com/accessdesk/accessdesk/lib/requestview"
)

//go:embed static/index.html
var indexPage []byte

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(indexPage)
}

// handleFragment renders the request cards for one status tab. The
// dashboard page swaps the fragment in whenever the event stream
// reports a change.
func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	filter, err := requestindex.ParseFilter(r.URL.Query().Get("status"))
	if err != nil {
		netutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body bytes.Buffer
	if err := requestview.RenderList(&body, s.sortedRecords(filter), filter); err != nil {
		s.logger.Error("rendering request list", "error", err)
		netutil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(body.Bytes())
}
