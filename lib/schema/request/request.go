// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package request

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a request record.
type Status string

const (
	// StatusPending is the initial state: the record is persisted and
	// queued for processing.
	StatusPending Status = "pending"

	// StatusProcessing means a worker is running the automation for
	// this record.
	StatusProcessing Status = "processing"

	// StatusCompleted means the automation succeeded.
	StatusCompleted Status = "completed"

	// StatusFailed means the automation returned an error. The
	// record's Error field holds the reason.
	StatusFailed Status = "failed"

	// StatusWorkInProgress means the automation found problems that
	// need a human (invalid space key, unlicensed admin). Comments
	// and Result.Issues describe what to fix.
	StatusWorkInProgress Status = "work_in_progress"
)

// Statuses lists every known status in display order.
var Statuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
	StatusWorkInProgress,
}

// IsKnown reports whether s is one of the defined statuses.
func (s Status) IsKnown() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are expected.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusWorkInProgress
}

// Type discriminates access requests from space creation requests.
type Type string

const (
	// TypeAccess grants a user membership in one of a space's
	// permission groups. Records written before the type field
	// existed carry no type and are access requests.
	TypeAccess Type = "access_request"

	// TypeSpaceCreation creates a space together with its read, dev,
	// and admin groups.
	TypeSpaceCreation Type = "space_creation"
)

// Access levels an access request may ask for. Each maps to a group
// named "<SPACEKEY>_<level>".
const (
	AccessRead  = "read"
	AccessDev   = "dev"
	AccessAdmin = "admin"
)

// ValidAccess reports whether level is read, dev, or admin.
func ValidAccess(level string) bool {
	return level == AccessRead || level == AccessDev || level == AccessAdmin
}

// Request is a single tracked record.
type Request struct {
	ID        int64      `json:"id"`
	Type      Type       `json:"type,omitempty"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Data      Data       `json:"data"`

	// Result is nil until processing finishes.
	Result *Result `json:"result"`

	// Error is set when Status is StatusFailed.
	Error string `json:"error,omitempty"`

	// Comments are the work notes produced by the automation, one
	// line each, prefixed with a status glyph.
	Comments []string `json:"comments,omitempty"`
}

// Kind returns the record type, treating an absent type as an access
// request.
func (r *Request) Kind() Type {
	if r.Type == "" {
		return TypeAccess
	}
	return r.Type
}

// LastChanged returns UpdatedAt when set, CreatedAt otherwise.
func (r *Request) LastChanged() time.Time {
	if r.UpdatedAt != nil {
		return *r.UpdatedAt
	}
	return r.CreatedAt
}

// Clone returns a deep copy so callers can hand records across
// goroutines without sharing slices.
func (r Request) Clone() Request {
	if r.UpdatedAt != nil {
		updated := *r.UpdatedAt
		r.UpdatedAt = &updated
	}
	if r.Result != nil {
		result := r.Result.clone()
		r.Result = &result
	}
	r.Comments = cloneStrings(r.Comments)
	return r
}

// Data is the submitted payload. Access requests use the first eight
// fields; space creation requests use SpaceName, SpaceKey, SpaceAdmin,
// and the optional Description.
type Data struct {
	LANID     string `json:"lan_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Domain    string `json:"domain,omitempty"`
	Manager   string `json:"manager,omitempty"`
	Requester string `json:"requester,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	SpaceKey  string `json:"space_key,omitempty"`
	Access    string `json:"access,omitempty"`

	SpaceName   string `json:"space_name,omitempty"`
	SpaceAdmin  string `json:"space_admin,omitempty"`
	Description string `json:"description,omitempty"`
}

// AccessFields are the payload keys an access request must carry.
var AccessFields = []string{
	"lan_id", "email", "domain", "manager",
	"requester", "full_name", "space_key", "access",
}

// SpaceFields are the payload keys a space creation request must carry.
var SpaceFields = []string{"space_name", "space_key", "space_admin"}

// Field returns the value of a payload key by its JSON name. Unknown
// names return "".
func (d *Data) Field(name string) string {
	switch name {
	case "lan_id":
		return d.LANID
	case "email":
		return d.Email
	case "domain":
		return d.Domain
	case "manager":
		return d.Manager
	case "requester":
		return d.Requester
	case "full_name":
		return d.FullName
	case "space_key":
		return d.SpaceKey
	case "access":
		return d.Access
	case "space_name":
		return d.SpaceName
	case "space_admin":
		return d.SpaceAdmin
	case "description":
		return d.Description
	}
	return ""
}

// Missing returns the names in fields whose values are empty, in the
// order given. A nil result means every field is present.
func (d *Data) Missing(fields []string) []string {
	var missing []string
	for _, name := range fields {
		if d.Field(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// ValidateAccess checks an access request payload.
func (d *Data) ValidateAccess() error {
	if missing := d.Missing(AccessFields); len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	if !ValidAccess(d.Access) {
		return fmt.Errorf("access must be one of read, dev, admin (got %q)", d.Access)
	}
	return nil
}

// ValidateSpace checks a space creation payload. Name and key format
// rules are not enforced here: a badly formed key is recorded and
// reported as work in progress by the space automation so that the
// requester sees the problem on the dashboard.
func (d *Data) ValidateSpace() error {
	if missing := d.Missing(SpaceFields); len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

// MissingFieldsError reports required payload keys that were absent
// or empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing fields: %v", e.Fields)
}

// ResultStatus is the outcome reported by an automation processor.
type ResultStatus string

const (
	ResultSuccess        ResultStatus = "success"
	ResultError          ResultStatus = "error"
	ResultWorkInProgress ResultStatus = "work_in_progress"
)

// Result is the processor output stored on a finished record.
type Result struct {
	Status  ResultStatus `json:"status"`
	Message string       `json:"message,omitempty"`

	// Access request outcome.
	Username      string   `json:"username,omitempty"`
	AccessGranted string   `json:"access_granted,omitempty"`
	Group         string   `json:"group,omitempty"`
	Permissions   []string `json:"permissions,omitempty"`

	// Space creation outcome.
	SpaceURL string `json:"space_url,omitempty"`
	SpaceKey string `json:"space_key,omitempty"`

	Comments []string `json:"comments,omitempty"`
	Issues   []string `json:"issues,omitempty"`
}

// RecordStatus maps a processor outcome to the record status it
// produces.
func (r *Result) RecordStatus() Status {
	switch r.Status {
	case ResultSuccess:
		return StatusCompleted
	case ResultWorkInProgress:
		return StatusWorkInProgress
	default:
		return StatusFailed
	}
}

func (r Result) clone() Result {
	r.Permissions = cloneStrings(r.Permissions)
	r.Comments = cloneStrings(r.Comments)
	r.Issues = cloneStrings(r.Issues)
	return r
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string(nil), values...)
}

// Stats counts records by status. The JSON shape matches the
// GET /api/stats response.
type Stats struct {
	Total          int `json:"total"`
	Pending        int `json:"pending"`
	Processing     int `json:"processing"`
	Completed      int `json:"completed"`
	Failed         int `json:"failed"`
	WorkInProgress int `json:"work_in_progress"`
}

// Add counts one record with the given status.
func (s *Stats) Add(status Status) {
	s.Total++
	switch status {
	case StatusPending:
		s.Pending++
	case StatusProcessing:
		s.Processing++
	case StatusCompleted:
		s.Completed++
	case StatusFailed:
		s.Failed++
	case StatusWorkInProgress:
		s.WorkInProgress++
	}
}

// Count returns the number of records with the given status.
func (s Stats) Count(status Status) int {
	switch status {
	case StatusPending:
		return s.Pending
	case StatusProcessing:
		return s.Processing
	case StatusCompleted:
		return s.Completed
	case StatusFailed:
		return s.Failed
	case StatusWorkInProgress:
		return s.WorkInProgress
	}
	return 0
}
