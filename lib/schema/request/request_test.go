// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package request

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func validAccessData() Data {
	return Data{
		LANID:     "jdoe",
		Email:     "jdoe@example.com",
		Domain:    "r1-core",
		Manager:   "mlead",
		Requester: "jdoe",
		FullName:  "Jane Doe",
		SpaceKey:  "ENG",
		Access:    "dev",
	}
}

func TestValidateAccess(t *testing.T) {
	data := validAccessData()
	if err := data.ValidateAccess(); err != nil {
		t.Fatalf("ValidateAccess() = %v, want nil", err)
	}

	data.Email = ""
	data.Manager = ""
	err := data.ValidateAccess()
	var missing *MissingFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("ValidateAccess() = %v, want *MissingFieldsError", err)
	}
	if want := []string{"email", "manager"}; !reflect.DeepEqual(missing.Fields, want) {
		t.Errorf("missing fields = %v, want %v", missing.Fields, want)
	}
}

func TestValidateAccessLevel(t *testing.T) {
	data := validAccessData()
	data.Access = "owner"
	err := data.ValidateAccess()
	if err == nil {
		t.Fatal("ValidateAccess() = nil, want error for unknown access level")
	}
	if !strings.Contains(err.Error(), "owner") {
		t.Errorf("error = %q, want it to name the bad level", err)
	}
}

func TestValidateSpace(t *testing.T) {
	data := Data{SpaceName: "Engineering", SpaceKey: "eng1", SpaceAdmin: "admin"}
	// Key format problems are reported by the automation, not here.
	if err := data.ValidateSpace(); err != nil {
		t.Fatalf("ValidateSpace() = %v, want nil", err)
	}

	data.SpaceAdmin = ""
	var missing *MissingFieldsError
	if err := data.ValidateSpace(); !errors.As(err, &missing) {
		t.Fatalf("ValidateSpace() = %v, want *MissingFieldsError", err)
	}
	if want := []string{"space_admin"}; !reflect.DeepEqual(missing.Fields, want) {
		t.Errorf("missing fields = %v, want %v", missing.Fields, want)
	}
}

func TestKindDefaultsToAccess(t *testing.T) {
	var record Request
	if err := json.Unmarshal([]byte(`{"id":3,"status":"pending","created_at":"2026-01-02T03:04:05Z","data":{}}`), &record); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if record.Kind() != TypeAccess {
		t.Errorf("Kind() = %q, want %q", record.Kind(), TypeAccess)
	}
	if record.Result != nil {
		t.Errorf("Result = %+v, want nil", record.Result)
	}
}

func TestRequestWireShape(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	record := Request{
		ID:        7,
		Type:      TypeSpaceCreation,
		Status:    StatusPending,
		CreatedAt: created,
		Data:      Data{SpaceName: "Docs", SpaceKey: "DOCS", SpaceAdmin: "admin"},
	}
	encoded, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(encoded, &fields); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	// The dashboard checks result for null, so it must be present.
	if value, ok := fields["result"]; !ok || value != nil {
		t.Errorf("result = %v (present=%v), want explicit null", value, ok)
	}
	if _, ok := fields["updated_at"]; ok {
		t.Error("updated_at should be omitted before the first update")
	}
	data := fields["data"].(map[string]any)
	if _, ok := data["lan_id"]; ok {
		t.Error("access fields should be omitted from a space payload")
	}
	if data["space_key"] != "DOCS" {
		t.Errorf("data.space_key = %v, want DOCS", data["space_key"])
	}
}

func TestRecordStatus(t *testing.T) {
	tests := []struct {
		result ResultStatus
		want   Status
	}{
		{ResultSuccess, StatusCompleted},
		{ResultWorkInProgress, StatusWorkInProgress},
		{ResultError, StatusFailed},
		{"", StatusFailed},
	}
	for _, test := range tests {
		result := Result{Status: test.result}
		if got := result.RecordStatus(); got != test.want {
			t.Errorf("RecordStatus(%q) = %q, want %q", test.result, got, test.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	updated := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	original := Request{
		ID:        1,
		UpdatedAt: &updated,
		Comments:  []string{"one"},
		Result:    &Result{Status: ResultSuccess, Permissions: []string{"read"}},
	}
	clone := original.Clone()
	clone.Comments[0] = "changed"
	clone.Result.Permissions[0] = "changed"
	*clone.UpdatedAt = updated.Add(time.Hour)

	if original.Comments[0] != "one" {
		t.Error("Clone shares the Comments slice")
	}
	if original.Result.Permissions[0] != "read" {
		t.Error("Clone shares the Result")
	}
	if !original.UpdatedAt.Equal(updated) {
		t.Error("Clone shares UpdatedAt")
	}
}

func TestStats(t *testing.T) {
	var stats Stats
	for _, status := range []Status{StatusPending, StatusPending, StatusFailed, StatusWorkInProgress} {
		stats.Add(status)
	}
	if stats.Total != 4 {
		t.Errorf("Total = %d, want 4", stats.Total)
	}
	if stats.Count(StatusPending) != 2 {
		t.Errorf("Count(pending) = %d, want 2", stats.Count(StatusPending))
	}
	if stats.Count(StatusWorkInProgress) != 1 {
		t.Errorf("Count(work_in_progress) = %d, want 1", stats.Count(StatusWorkInProgress))
	}
	if stats.Count(StatusCompleted) != 0 {
		t.Errorf("Count(completed) = %d, want 0", stats.Count(StatusCompleted))
	}
}
