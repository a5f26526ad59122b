// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package automation

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"testing"

	"github.com/accessdesk/accessdesk/lib/confluence/confluencetest"
	"github.com/accessdesk/accessdesk/lib/schema/request"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func accessData(access string) request.Data {
	return request.Data{
		LANID:     "jdoe",
		Email:     "jdoe@example.com",
		Domain:    "r1-core",
		Manager:   "mlead",
		Requester: "jdoe",
		FullName:  "Jane Doe",
		SpaceKey:  "ENG",
		Access:    access,
	}
}

func hasComment(comments []string, prefix, fragment string) bool {
	return slices.ContainsFunc(comments, func(comment string) bool {
		return strings.HasPrefix(comment, prefix) && strings.Contains(comment, fragment)
	})
}

func TestUsername(t *testing.T) {
	data := accessData("read")
	if got := Username(data); got != "jdoe" {
		t.Errorf("Username(r1-core) = %q, want jdoe", got)
	}
	data.Domain = "partner"
	if got := Username(data); got != "jdoe@example.com" {
		t.Errorf("Username(partner) = %q, want email", got)
	}
}

func TestAccessCreatesUserAndGrantsDev(t *testing.T) {
	fake := confluencetest.New(t)
	fake.AddSpace("ENG")
	processor := NewAccessProcessor(fake.Client(t), discardLogger())

	result, err := processor.Process(context.Background(), accessData("dev"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Status != request.ResultSuccess {
		t.Fatalf("Status = %q (%s), want success", result.Status, result.Message)
	}
	if result.Username != "jdoe" || result.AccessGranted != "dev" || result.Group != "ENG_dev" {
		t.Errorf("result = %+v", result)
	}
	if !fake.UserExists("jdoe") {
		t.Error("user was not created")
	}
	if !fake.InGroup("jdoe", "confluence-users") {
		t.Error("user was not licensed")
	}
	if !fake.InGroup("jdoe", "ENG_dev") {
		t.Error("user was not added to ENG_dev")
	}
	for _, level := range Levels {
		if !fake.GroupExists("ENG_" + level) {
			t.Errorf("group ENG_%s was not created", level)
		}
	}
	if !slices.Contains(result.Permissions, "page:create") {
		t.Errorf("Permissions = %v, want page:create", result.Permissions)
	}
	if !hasComment(result.Comments, "✅", "Created user jdoe") {
		t.Errorf("Comments = %v, want user creation note", result.Comments)
	}
}

func TestAccessUsesEmailOutsideLANDomain(t *testing.T) {
	fake := confluencetest.New(t)
	fake.AddSpace("ENG")
	processor := NewAccessProcessor(fake.Client(t), discardLogger())

	data := accessData("read")
	data.Domain = "partner"
	result, err := processor.Process(context.Background(), data)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Username != "jdoe@example.com" {
		t.Errorf("Username = %q, want email", result.Username)
	}
	if !fake.InGroup("jdoe@example.com", "ENG_read") {
		t.Error("email user was not added to ENG_read")
	}
}

func TestAccessExistingLicensedUser(t *testing.T) {
	fake := confluencetest.New(t)
	fake.AddSpace("ENG")
	fake.AddUser("jdoe", true)
	processor := NewAccessProcessor(fake.Client(t), discardLogger())

	result, err := processor.Process(context.Background(), accessData("read"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Status != request.ResultSuccess {
		t.Fatalf("Status = %q, want success", result.Status)
	}
	if fake.CountCalls(http.MethodPost, "/rest/api/admin/user") != 0 {
		t.Error("existing user was created again")
	}
	if fake.CountCalls(http.MethodPut, "/rest/api/user/jdoe/group/confluence-users") != 0 {
		t.Error("licensed user was licensed again")
	}
}

func TestAccessAdminDowngradedWithoutApprover(t *testing.T) {
	fake := confluencetest.New(t)
	fake.AddSpace("ENG", "someone-else")
	processor := NewAccessProcessor(fake.Client(t), discardLogger())

	result, err := processor.Process(context.Background(), accessData("admin"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.AccessGranted != "dev" || result.Group != "ENG_dev" {
		t.Errorf("granted %q via %q, want dev via ENG_dev", result.AccessGranted, result.Group)
	}
	if fake.InGroup("jdoe", "ENG_admin") {
		t.Error("user was added to ENG_admin")
	}
	if !hasComment(result.Comments, "⚠️", "granted dev instead") {
		t.Errorf("Comments = %v, want downgrade warning", result.Comments)
	}
}

func TestAccessAdminApprovedByManager(t *testing.T) {
	fake := confluencetest.New(t)
	fake.AddSpace("ENG", "mlead")
	processor := NewAccessProcessor(fake.Client(t), discardLogger())

	result, err := processor.Process(context.Background(), accessData("admin"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.AccessGranted != "admin" || !fake.InGroup("jdoe", "ENG_admin") {
		t.Errorf("result = %+v, want admin granted", result)
	}
}

func TestAccessUserSetupFailure(t *testing.T) {
	fake := confluencetest.New(t)
	fake.AddSpace("ENG")
	fake.Fail(http.MethodPost, "/rest/api/admin/user", http.StatusForbidden)
	processor := NewAccessProcessor(fake.Client(t), discardLogger())

	result, err := processor.Process(context.Background(), accessData("dev"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Status != request.ResultError {
		t.Fatalf("Status = %q, want error", result.Status)
	}
	if !strings.HasPrefix(result.Message, "User setup failed") {
		t.Errorf("Message = %q, want User setup failed prefix", result.Message)
	}
	if !hasComment(result.Comments, "❌", "User setup failed") {
		t.Errorf("Comments = %v, want failure note", result.Comments)
	}
	if fake.GroupExists("ENG_dev") {
		t.Error("groups were created after user setup failed")
	}
}

func TestAccessCanceledContext(t *testing.T) {
	fake := confluencetest.New(t)
	processor := NewAccessProcessor(fake.Client(t), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := processor.Process(ctx, accessData("read")); err == nil {
		t.Fatal("Process with canceled context returned nil error")
	}
}
