// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package confluence

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
)

// LicenseGroup is the group whose members hold a Confluence license.
const LicenseGroup = "confluence-users"

// User is a Confluence user account.
type User struct {
	Username    string `json:"username"`
	UserKey     string `json:"userKey"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`
}

// Group is a Confluence group reference.
type Group struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// GetUser looks a user up by username. Returns an error matching
// ErrNotFound when the user does not exist.
func (client *Client) GetUser(ctx context.Context, username string) (*User, error) {
	var user User
	if err := client.get(ctx, "/rest/api/user?username="+url.QueryEscape(username), &user); err != nil {
		return nil, fmt.Errorf("getting user %s: %w", username, err)
	}
	return &user, nil
}

// createUserRequest is the body of POST /rest/api/admin/user.
type createUserRequest struct {
	UserName       string `json:"userName"`
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	NotifyViaEmail bool   `json:"notifyViaEmail"`
}

// CreateUser creates a local user without notifying them. The initial
// password is the email address; users reset it on first login.
func (client *Client) CreateUser(ctx context.Context, username, fullName, email string) error {
	body := createUserRequest{
		UserName: username,
		FullName: fullName,
		Email:    email,
		Password: email,
	}
	if err := client.send(ctx, http.MethodPost, "/rest/api/admin/user", body, nil); err != nil {
		return fmt.Errorf("creating user %s: %w", username, err)
	}
	return nil
}

// UserGroups returns the names of the groups username belongs to.
func (client *Client) UserGroups(ctx context.Context, username string) ([]string, error) {
	groups, err := collect[Group](ctx, client, "/rest/api/user/memberof?username="+url.QueryEscape(username))
	if err != nil {
		return nil, fmt.Errorf("listing groups of %s: %w", username, err)
	}
	names := make([]string, len(groups))
	for i, group := range groups {
		names[i] = group.Name
	}
	return names, nil
}

// IsMember reports whether username belongs to group.
func (client *Client) IsMember(ctx context.Context, username, group string) (bool, error) {
	groups, err := client.UserGroups(ctx, username)
	if err != nil {
		return false, err
	}
	return slices.Contains(groups, group), nil
}

// IsLicensed reports whether username belongs to LicenseGroup.
func (client *Client) IsLicensed(ctx context.Context, username string) (bool, error) {
	return client.IsMember(ctx, username, LicenseGroup)
}
