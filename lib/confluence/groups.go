// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package confluence

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// GroupExists reports whether a group named name exists.
func (client *Client) GroupExists(ctx context.Context, name string) (bool, error) {
	var group Group
	err := client.get(ctx, "/rest/api/group/"+url.PathEscape(name), &group)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("getting group %s: %w", name, err)
	}
	return true, nil
}

// CreateGroup creates a group.
func (client *Client) CreateGroup(ctx context.Context, name string) error {
	body := Group{Name: name, Type: "group"}
	if err := client.send(ctx, http.MethodPost, "/rest/api/admin/group", body, nil); err != nil {
		return fmt.Errorf("creating group %s: %w", name, err)
	}
	return nil
}

// EnsureGroup creates the group unless it already exists. Reports
// whether it was created.
func (client *Client) EnsureGroup(ctx context.Context, name string) (bool, error) {
	exists, err := client.GroupExists(ctx, name)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	return true, client.CreateGroup(ctx, name)
}

// AddUserToGroup adds username to group. Adding an existing member is
// not an error on the Confluence side.
func (client *Client) AddUserToGroup(ctx context.Context, username, group string) error {
	path := "/rest/api/user/" + url.PathEscape(username) + "/group/" + url.PathEscape(group)
	if err := client.send(ctx, http.MethodPut, path, nil, nil); err != nil {
		return fmt.Errorf("adding %s to %s: %w", username, group, err)
	}
	return nil
}

// GroupMembers returns the users in group.
func (client *Client) GroupMembers(ctx context.Context, group string) ([]User, error) {
	members, err := collect[User](ctx, client, "/rest/api/group/"+url.PathEscape(group)+"/member?expand=status")
	if err != nil {
		return nil, fmt.Errorf("listing members of %s: %w", group, err)
	}
	return members, nil
}
