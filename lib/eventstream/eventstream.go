// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventstream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/accessdesk/accessdesk/lib/schema/request"
)

// ContentType is the media type of the stream.
const ContentType = "text/event-stream"

// Payload returns the JSON data line for an event.
func Payload(event request.Event) ([]byte, error) {
	switch event.Type {
	case request.EventCreated, request.EventUpdated:
		if event.Request == nil {
			return nil, fmt.Errorf("%s event without a record", event.Type)
		}
		return json.Marshal(event.Request)
	case request.EventDeleted:
		return json.Marshal(request.DeletedPayload{ID: event.ID})
	default:
		return []byte("{}"), nil
	}
}

// Writer writes events to an SSE response.
type Writer struct {
	w     io.Writer
	flush func() error
}

// NewWriter returns a Writer on w. flush, when non-nil, is called after
// every event so it leaves the server's buffers immediately.
func NewWriter(w io.Writer, flush func() error) *Writer {
	return &Writer{w: w, flush: flush}
}

// Write sends one event.
func (w *Writer) Write(event request.Event) error {
	payload, err := Payload(event)
	if err != nil {
		return err
	}
	var frame bytes.Buffer
	frame.Grow(len(payload) + len(event.Type) + 16)
	frame.WriteString("event: ")
	frame.WriteString(string(event.Type))
	frame.WriteString("\ndata: ")
	frame.Write(payload)
	frame.WriteString("\n\n")
	if _, err := w.w.Write(frame.Bytes()); err != nil {
		return err
	}
	if w.flush != nil {
		return w.flush()
	}
	return nil
}

// Comment writes a comment line, which clients ignore. Servers send
// one on connect to get headers through intermediaries.
func (w *Writer) Comment(text string) error {
	if _, err := fmt.Fprintf(w.w, ": %s\n\n", text); err != nil {
		return err
	}
	if w.flush != nil {
		return w.flush()
	}
	return nil
}

// MaxLineSize bounds a single line of the stream.
const MaxLineSize = 1 << 20

// Reader parses an SSE stream into events.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader returns a Reader on r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &Reader{scanner: scanner}
}

// Next returns the next event. Comments, unknown fields, and frames
// without an event name are skipped. Multiple data lines are joined
// with newlines. Returns io.EOF when the stream ends cleanly.
func (r *Reader) Next() (request.Event, error) {
	var name string
	var data []string
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if line == "" {
			if name == "" {
				data = nil
				continue
			}
			return decode(request.EventType(name), strings.Join(data, "\n"))
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			name = value
		case "data":
			data = append(data, value)
		}
	}
	if err := r.scanner.Err(); err != nil {
		return request.Event{}, err
	}
	return request.Event{}, io.EOF
}

func decode(kind request.EventType, data string) (request.Event, error) {
	event := request.Event{Type: kind}
	switch kind {
	case request.EventCreated, request.EventUpdated:
		var record request.Request
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			return request.Event{}, fmt.Errorf("decoding %s payload: %w", kind, err)
		}
		event.Request = &record
		event.ID = record.ID
	case request.EventDeleted:
		var payload request.DeletedPayload
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return request.Event{}, fmt.Errorf("decoding %s payload: %w", kind, err)
		}
		event.ID = payload.ID
	}
	return event, nil
}
