// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package automation

import (
	"context"
	"fmt"

	"github.com/accessdesk/accessdesk/lib/confluence"
	"github.com/accessdesk/accessdesk/lib/schema/request"
)

// Processor runs the automation for one request payload.
type Processor interface {
	Process(ctx context.Context, data request.Data) (request.Result, error)
}

// Confluence is the subset of *confluence.Client the processors use.
type Confluence interface {
	BaseURL() string
	GetUser(ctx context.Context, username string) (*confluence.User, error)
	CreateUser(ctx context.Context, username, fullName, email string) error
	IsLicensed(ctx context.Context, username string) (bool, error)
	IsMember(ctx context.Context, username, group string) (bool, error)
	EnsureGroup(ctx context.Context, name string) (bool, error)
	AddUserToGroup(ctx context.Context, username, group string) error
	IsSpaceAdmin(ctx context.Context, key, username string) (bool, error)
	CreateSpace(ctx context.Context, key, name, description string) (*confluence.Space, error)
	GrantGroupPermissions(ctx context.Context, key, group string, grants []confluence.Grant) error
}

// Comment prefixes for work notes.
const (
	markDone    = "✅"
	markWarning = "⚠️"
	markProblem = "❌"
)

// Levels lists the access levels in group creation order.
var Levels = []string{request.AccessRead, request.AccessDev, request.AccessAdmin}

// GroupName returns the permission group for a space and level.
func GroupName(spaceKey, level string) string {
	return spaceKey + "_" + level
}

// LevelGrants returns the space permissions given to the group of an
// access level. Unknown levels get none.
func LevelGrants(level string) []confluence.Grant {
	switch level {
	case request.AccessRead:
		return []confluence.Grant{{TargetType: "space", OperationKey: confluence.OperationRead}}
	case request.AccessDev:
		grants := []confluence.Grant{{TargetType: "space", OperationKey: confluence.OperationRead}}
		for _, target := range []string{"page", "blogpost", "comment", "attachment"} {
			grants = append(grants,
				confluence.Grant{TargetType: target, OperationKey: confluence.OperationCreate},
				confluence.Grant{TargetType: target, OperationKey: confluence.OperationDelete},
			)
		}
		return grants
	case request.AccessAdmin:
		return []confluence.Grant{{TargetType: "space", OperationKey: confluence.OperationAdminister}}
	}
	return nil
}

// PermissionLabels renders grants as "target:operation" labels.
func PermissionLabels(grants []confluence.Grant) []string {
	labels := make([]string, len(grants))
	for i, grant := range grants {
		labels[i] = grant.TargetType + ":" + grant.OperationKey
	}
	return labels
}

// notes accumulates work-note comments.
type notes []string

func (n *notes) done(format string, args ...any) {
	*n = append(*n, markDone+" "+fmt.Sprintf(format, args...))
}

func (n *notes) warn(format string, args ...any) {
	*n = append(*n, markWarning+" "+fmt.Sprintf(format, args...))
}

func (n *notes) problem(format string, args ...any) {
	*n = append(*n, markProblem+" "+fmt.Sprintf(format, args...))
}

// failure builds an error result whose message and last note describe
// what went wrong.
func failure(comments notes, message string, err error) request.Result {
	if err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	comments.problem("%s", message)
	return request.Result{
		Status:   request.ResultError,
		Message:  message,
		Comments: comments,
	}
}

// ensureGroups creates any missing level groups for the space and
// grants the level permissions to the groups it created. Grant
// failures become warnings; a group that cannot be created is an
// error.
func ensureGroups(ctx context.Context, client Confluence, spaceKey string, comments *notes, grantExisting bool) error {
	for _, level := range Levels {
		group := GroupName(spaceKey, level)
		created, err := client.EnsureGroup(ctx, group)
		if err != nil {
			return fmt.Errorf("ensuring group %s: %w", group, err)
		}
		if created {
			comments.done("Created group %s", group)
		}
		if !created && !grantExisting {
			continue
		}
		if err := client.GrantGroupPermissions(ctx, spaceKey, group, LevelGrants(level)); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			comments.warn("Could not grant %s permissions to %s: %v", level, group, err)
		}
	}
	return nil
}
