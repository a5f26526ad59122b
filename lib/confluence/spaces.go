// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package confluence

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Operation keys used in space permissions.
const (
	OperationRead       = "read"
	OperationCreate     = "create"
	OperationDelete     = "delete"
	OperationAdminister = "administer"
)

// Permission is one grant in a space's permission list.
type Permission struct {
	Operation PermissionOperation `json:"operation"`
	Subject   PermissionSubject   `json:"subject"`
}

// PermissionOperation names what a grant allows on which target type.
type PermissionOperation struct {
	OperationKey string `json:"operationKey"`
	TargetType   string `json:"targetType"`
}

// SubjectUser is the subject type of a grant held by a single user.
const SubjectUser = "user"

// PermissionSubject identifies who holds a grant. Exactly one of
// UserKey and GroupName is set depending on Type.
type PermissionSubject struct {
	Type      string `json:"type"`
	UserKey   string `json:"userKey,omitempty"`
	GroupName string `json:"name,omitempty"`
}

// Grant is an element of the body of a group permission grant.
type Grant struct {
	TargetType   string `json:"targetType"`
	OperationKey string `json:"operationKey"`
}

// SpacePermissions lists every grant on the space.
func (client *Client) SpacePermissions(ctx context.Context, key string) ([]Permission, error) {
	var permissions []Permission
	if err := client.get(ctx, "/rest/api/space/"+url.PathEscape(key)+"/permissions", &permissions); err != nil {
		return nil, fmt.Errorf("listing permissions of space %s: %w", key, err)
	}
	return permissions, nil
}

// IsSpaceAdmin reports whether username holds the administer
// permission on the space directly. Group grants do not count, and a
// user that does not exist or has no user key is not an admin.
func (client *Client) IsSpaceAdmin(ctx context.Context, key, username string) (bool, error) {
	if username == "" {
		return false, nil
	}
	user, err := client.GetUser(ctx, username)
	if err != nil {
		return false, err
	}
	if user.UserKey == "" {
		return false, nil
	}
	permissions, err := client.SpacePermissions(ctx, key)
	if err != nil {
		return false, err
	}
	for _, permission := range permissions {
		subject := permission.Subject
		if permission.Operation.OperationKey == OperationAdminister && subject.Type == SubjectUser && subject.UserKey == user.UserKey {
			return true, nil
		}
	}
	return false, nil
}

// Space is a created space.
type Space struct {
	ID   int64  `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type createSpaceRequest struct {
	Key         string           `json:"key"`
	Name        string           `json:"name"`
	Description spaceDescription `json:"description"`
	Type        string           `json:"type"`
}

type spaceDescription struct {
	Plain plainValue `json:"plain"`
}

type plainValue struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

// CreateSpace creates a global space.
func (client *Client) CreateSpace(ctx context.Context, key, name, description string) (*Space, error) {
	body := createSpaceRequest{
		Key:  key,
		Name: name,
		Description: spaceDescription{
			Plain: plainValue{Value: description, Representation: "plain"},
		},
		Type: "global",
	}
	var space Space
	if err := client.send(ctx, http.MethodPost, "/rest/api/space", body, &space); err != nil {
		return nil, fmt.Errorf("creating space %s: %w", key, err)
	}
	return &space, nil
}

// GrantGroupPermissions grants operations on the space to group.
func (client *Client) GrantGroupPermissions(ctx context.Context, key, group string, grants []Grant) error {
	path := "/rest/api/space/" + url.PathEscape(key) + "/permissions/group/" + url.PathEscape(group) + "/grant"
	if err := client.send(ctx, http.MethodPut, path, grants, nil); err != nil {
		return fmt.Errorf("granting %s permissions on %s: %w", group, key, err)
	}
	return nil
}

// GrantGroupPermission grants a single operation.
func (client *Client) GrantGroupPermission(ctx context.Context, key, group, targetType, operation string) error {
	return client.GrantGroupPermissions(ctx, key, group, []Grant{{TargetType: targetType, OperationKey: operation}})
}

// SpaceURL returns the browser URL of the space.
func (client *Client) SpaceURL(key string) string {
	return client.baseURL + "/display/" + key
}
