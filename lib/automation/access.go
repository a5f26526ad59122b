// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package automation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/accessdesk/accessdesk/lib/confluence"
	"github.com/accessdesk/accessdesk/lib/schema/request"
)

// LANIDDomain is the domain whose users sign in with their LAN id.
// Users of every other domain sign in with their email address.
const LANIDDomain = "r1-core"

// Username picks the Confluence username for an access request.
func Username(data request.Data) string {
	if data.Domain == LANIDDomain {
		return data.LANID
	}
	return data.Email
}

// AccessProcessor grants space access.
type AccessProcessor struct {
	client Confluence
	logger *slog.Logger
}

// NewAccessProcessor returns a processor using client.
func NewAccessProcessor(client Confluence, logger *slog.Logger) *AccessProcessor {
	return &AccessProcessor{client: client, logger: logger}
}

// Process runs an access request.
func (p *AccessProcessor) Process(ctx context.Context, data request.Data) (request.Result, error) {
	var comments notes
	username := Username(data)
	logger := p.logger.With("username", username, "space_key", data.SpaceKey)

	if err := p.ensureUser(ctx, data, username, &comments); err != nil {
		if ctx.Err() != nil {
			return request.Result{}, ctx.Err()
		}
		logger.Warn("user setup failed", "error", err)
		return failure(comments, "User setup failed", err), nil
	}

	if err := ensureGroups(ctx, p.client, data.SpaceKey, &comments, false); err != nil {
		if ctx.Err() != nil {
			return request.Result{}, ctx.Err()
		}
		return failure(comments, "Group setup failed", err), nil
	}

	access := data.Access
	if access == request.AccessAdmin && !p.approvedForAdmin(ctx, data) {
		if ctx.Err() != nil {
			return request.Result{}, ctx.Err()
		}
		logger.Info("admin access not approved by a space admin, downgrading to dev")
		comments.warn("Admin access needs a space admin as manager or requester; granted dev instead")
		access = request.AccessDev
	}

	group := GroupName(data.SpaceKey, access)
	member, err := p.client.IsMember(ctx, username, group)
	if err == nil && !member {
		err = p.client.AddUserToGroup(ctx, username, group)
	}
	if err != nil {
		if ctx.Err() != nil {
			return request.Result{}, ctx.Err()
		}
		return failure(comments, "Adding user to "+group+" failed", err), nil
	}
	if member {
		comments.done("%s is already in %s", username, group)
	} else {
		comments.done("Added %s to %s", username, group)
	}
	logger.Info("access granted", "group", group)

	return request.Result{
		Status:        request.ResultSuccess,
		Message:       "Access granted",
		Username:      username,
		AccessGranted: access,
		Group:         group,
		Permissions:   PermissionLabels(LevelGrants(access)),
		Comments:      comments,
	}, nil
}

// ensureUser creates the user when missing and licenses them when
// unlicensed.
func (p *AccessProcessor) ensureUser(ctx context.Context, data request.Data, username string, comments *notes) error {
	_, err := p.client.GetUser(ctx, username)
	switch {
	case errors.Is(err, confluence.ErrNotFound):
		if err := p.client.CreateUser(ctx, username, data.FullName, data.Email); err != nil {
			return err
		}
		comments.done("Created user %s", username)
	case err != nil:
		return err
	default:
		comments.done("User %s exists", username)
	}

	licensed, err := p.client.IsLicensed(ctx, username)
	if err != nil {
		return err
	}
	if licensed {
		return nil
	}
	if err := p.client.AddUserToGroup(ctx, username, confluence.LicenseGroup); err != nil {
		return err
	}
	comments.done("Licensed %s", username)
	return nil
}

// approvedForAdmin reports whether the manager or requester
// administers the space. Lookup failures count as not approved.
func (p *AccessProcessor) approvedForAdmin(ctx context.Context, data request.Data) bool {
	for _, approver := range []string{data.Manager, data.Requester} {
		admin, err := p.client.IsSpaceAdmin(ctx, data.SpaceKey, approver)
		if err != nil {
			p.logger.Debug("space admin check failed", "approver", approver, "error", err)
			continue
		}
		if admin {
			return true
		}
	}
	return false
}
