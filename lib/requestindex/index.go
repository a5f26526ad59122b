// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package requestindex

import (
	"fmt"
	"slices"

	"github.com/accessdesk/accessdesk/lib/schema/request"
)

// Filter selects records by status. [FilterAll] selects everything.
type Filter string

// FilterAll matches every record regardless of status.
const FilterAll Filter = "all"

// Filters lists the accepted filter values in dashboard tab order.
var Filters = []Filter{
	FilterAll,
	Filter(request.StatusPending),
	Filter(request.StatusProcessing),
	Filter(request.StatusCompleted),
	Filter(request.StatusFailed),
	Filter(request.StatusWorkInProgress),
}

// ParseFilter validates a filter name. The empty string means
// [FilterAll].
func ParseFilter(name string) (Filter, error) {
	if name == "" {
		return FilterAll, nil
	}
	for _, filter := range Filters {
		if string(filter) == name {
			return filter, nil
		}
	}
	return "", fmt.Errorf("unknown status filter %q (want one of %v)", name, Filters)
}

// Matches reports whether a record with the given status passes the
// filter.
func (filter Filter) Matches(status request.Status) bool {
	return filter == FilterAll || filter == "" || request.Status(filter) == status
}

// Index is the ordered collection. The zero value is not usable; call
// [New].
type Index struct {
	// records is ordered newest first.
	records []request.Request
}

// New returns an empty index.
func New() *Index {
	return &Index{}
}

// Load replaces the contents with a full listing. The listing may be
// in any order; the index sorts it newest first by creation time,
// breaking ties by descending id. Duplicate ids keep the last
// occurrence.
func (idx *Index) Load(records []request.Request) {
	seen := make(map[int64]int, len(records))
	loaded := make([]request.Request, 0, len(records))
	for _, record := range records {
		if position, exists := seen[record.ID]; exists {
			loaded[position] = record.Clone()
			continue
		}
		seen[record.ID] = len(loaded)
		loaded = append(loaded, record.Clone())
	}
	slices.SortStableFunc(loaded, compareNewestFirst)
	idx.records = loaded
}

func compareNewestFirst(a, b request.Request) int {
	if cmp := b.CreatedAt.Compare(a.CreatedAt); cmp != 0 {
		return cmp
	}
	switch {
	case a.ID > b.ID:
		return -1
	case a.ID < b.ID:
		return 1
	}
	return 0
}

// Put inserts or replaces a record. A record with a new id goes to
// the front. A record with a known id replaces the stored one in
// place. Returns the record previously stored under that id, if any.
func (idx *Index) Put(record request.Request) (previous request.Request, existed bool) {
	record = record.Clone()
	if position := idx.position(record.ID); position >= 0 {
		previous = idx.records[position]
		idx.records[position] = record
		return previous, true
	}
	idx.records = slices.Insert(idx.records, 0, record)
	return request.Request{}, false
}

// Remove deletes the record with the given id. Returns the removed
// record and true, or false if the id was not present.
func (idx *Index) Remove(id int64) (request.Request, bool) {
	position := idx.position(id)
	if position < 0 {
		return request.Request{}, false
	}
	removed := idx.records[position]
	idx.records = slices.Delete(idx.records, position, position+1)
	return removed, true
}

// Get returns a copy of the record with the given id.
func (idx *Index) Get(id int64) (request.Request, bool) {
	position := idx.position(id)
	if position < 0 {
		return request.Request{}, false
	}
	return idx.records[position].Clone(), true
}

// Len returns the number of records.
func (idx *Index) Len() int {
	return len(idx.records)
}

// List returns copies of the records that pass the filter, newest
// first.
func (idx *Index) List(filter Filter) []request.Request {
	var result []request.Request
	for _, record := range idx.records {
		if filter.Matches(record.Status) {
			result = append(result, record.Clone())
		}
	}
	return result
}

// Stats counts every record by status.
func (idx *Index) Stats() request.Stats {
	var stats request.Stats
	for _, record := range idx.records {
		stats.Add(record.Status)
	}
	return stats
}

// Clear removes every record.
func (idx *Index) Clear() {
	idx.records = nil
}

func (idx *Index) position(id int64) int {
	return slices.IndexFunc(idx.records, func(record request.Request) bool {
		return record.ID == id
	})
}
