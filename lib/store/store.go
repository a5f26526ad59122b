// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/accessdesk/accessdesk/lib/clock"
	"github.com/accessdesk/accessdesk/lib/schema/request"
)

// ErrNotFound is returned for an id the store does not hold.
var ErrNotFound = errors.New("request not found")

// Store is the JSON-file request store.
type Store struct {
	path  string
	clock clock.Clock

	mu      sync.Mutex
	records []request.Request
}

// Open loads the store at path. A missing file yields an empty store;
// the file is created on the first write. A file that exists but does
// not parse is an error: the store refuses to overwrite data it cannot
// read.
func Open(path string, clk clock.Clock) (*Store, error) {
	store := &Store{path: path, clock: clk}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading request store %s: %w", path, err)
	}
	if len(data) == 0 {
		return store, nil
	}
	if err := json.Unmarshal(data, &store.records); err != nil {
		return nil, fmt.Errorf("decoding request store %s: %w", path, err)
	}
	return store, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// Create persists a new pending record and returns it. The id is one
// more than the largest id ever present in the file at the time of
// the call.
func (s *Store) Create(kind request.Type, data request.Data) (request.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxID int64
	for _, record := range s.records {
		maxID = max(maxID, record.ID)
	}

	record := request.Request{
		ID:        maxID + 1,
		Type:      kind,
		Status:    request.StatusPending,
		CreatedAt: s.clock.Now().UTC(),
		Data:      data,
	}
	records := append(s.records[:len(s.records):len(s.records)], record)
	if err := s.writeLocked(records); err != nil {
		return request.Request{}, err
	}
	s.records = records
	return record.Clone(), nil
}

// Update applies mutate to the record with the given id, stamps
// updated_at, persists, and returns the new record. mutate runs with
// the store locked and must not call back into the store. If mutate
// returns an error nothing is written.
func (s *Store) Update(id int64, mutate func(*request.Request) error) (request.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	position := s.positionLocked(id)
	if position < 0 {
		return request.Request{}, fmt.Errorf("request %d: %w", id, ErrNotFound)
	}

	updated := s.records[position].Clone()
	if err := mutate(&updated); err != nil {
		return request.Request{}, err
	}
	updated.ID = id
	now := s.clock.Now().UTC()
	updated.UpdatedAt = &now

	records := append([]request.Request(nil), s.records...)
	records[position] = updated
	if err := s.writeLocked(records); err != nil {
		return request.Request{}, err
	}
	s.records = records
	return updated.Clone(), nil
}

// Delete removes the record with the given id.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	position := s.positionLocked(id)
	if position < 0 {
		return fmt.Errorf("request %d: %w", id, ErrNotFound)
	}
	records := make([]request.Request, 0, len(s.records)-1)
	records = append(records, s.records[:position]...)
	records = append(records, s.records[position+1:]...)
	if err := s.writeLocked(records); err != nil {
		return err
	}
	s.records = records
	return nil
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id int64) (request.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	position := s.positionLocked(id)
	if position < 0 {
		return request.Request{}, fmt.Errorf("request %d: %w", id, ErrNotFound)
	}
	return s.records[position].Clone(), nil
}

// List returns copies of every record in insertion order.
func (s *Store) List() []request.Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]request.Request, len(s.records))
	for i, record := range s.records {
		result[i] = record.Clone()
	}
	return result
}

// Unfinished returns the ids of records still pending or processing,
// in insertion order. The server requeues them at startup.
func (s *Store) Unfinished() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []int64
	for _, record := range s.records {
		if record.Status == request.StatusPending || record.Status == request.StatusProcessing {
			ids = append(ids, record.ID)
		}
	}
	return ids
}

func (s *Store) positionLocked(id int64) int {
	for i, record := range s.records {
		if record.ID == id {
			return i
		}
	}
	return -1
}

// writeLocked replaces the file with records.
func (s *Store) writeLocked(records []request.Request) error {
	if records == nil {
		records = []request.Request{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding request store: %w", err)
	}

	directory := filepath.Dir(s.path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("creating store directory %s: %w", directory, err)
	}

	tmpFile, err := os.CreateTemp(directory, ".requests-*.json")
	if err != nil {
		return fmt.Errorf("creating temp store file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing store data: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing store data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp store file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("renaming store file to %s: %w", s.path, err)
	}

	success = true
	return nil
}
