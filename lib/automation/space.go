// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package automation

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/accessdesk/accessdesk/lib/clock"
	"github.com/accessdesk/accessdesk/lib/confluence"
	"github.com/accessdesk/accessdesk/lib/schema/request"
)

// MaxSpaceKeyLength is the longest space key accepted.
const MaxSpaceKeyLength = 5

// DefaultSettleDelay is how long to wait after creating a space's
// groups before adding the admin, giving Confluence's user directory
// time to see the new groups.
const DefaultSettleDelay = time.Second

// ValidateSpaceName returns the problem with a space name, or "".
func ValidateSpaceName(name string) string {
	if name == "" {
		return "Name is required"
	}
	if first, _ := utf8.DecodeRuneInString(name); unicode.IsDigit(first) {
		return "Name can't start with a number"
	}
	return ""
}

// ValidateSpaceKey returns the problem with a space key, or "".
func ValidateSpaceKey(key string) string {
	if key == "" {
		return "Key is required"
	}
	if utf8.RuneCountInString(key) > MaxSpaceKeyLength {
		return "Key max 5 chars"
	}
	for _, r := range key {
		if r < 'A' || r > 'Z' {
			return "Key must be uppercase letters only"
		}
	}
	return ""
}

// SpaceProcessor creates spaces.
type SpaceProcessor struct {
	client Confluence
	clock  clock.Clock
	settle time.Duration
	logger *slog.Logger
}

// NewSpaceProcessor returns a processor using client. settle is the
// delay between group setup and adding the admin; zero means
// DefaultSettleDelay.
func NewSpaceProcessor(client Confluence, clk clock.Clock, settle time.Duration, logger *slog.Logger) *SpaceProcessor {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	return &SpaceProcessor{client: client, clock: clk, settle: settle, logger: logger}
}

// Process runs a space creation request.
func (p *SpaceProcessor) Process(ctx context.Context, data request.Data) (request.Result, error) {
	var comments notes
	var issues []string
	key, admin := data.SpaceKey, data.SpaceAdmin
	logger := p.logger.With("space_key", key, "space_admin", admin)

	if problem := ValidateSpaceName(data.SpaceName); problem != "" {
		issues = append(issues, problem)
		comments.problem("%s", problem)
	}
	if problem := ValidateSpaceKey(key); problem != "" {
		issues = append(issues, problem)
		comments.problem("%s", problem)
	}

	issue, err := p.checkAdmin(ctx, admin, &comments)
	if err != nil {
		if ctx.Err() != nil {
			return request.Result{}, ctx.Err()
		}
		return failure(comments, "Checking admin "+admin+" failed", err), nil
	}
	if issue != "" {
		issues = append(issues, issue)
	}

	if len(issues) > 0 {
		logger.Info("space request needs attention", "issues", issues)
		return request.Result{
			Status:   request.ResultWorkInProgress,
			Message:  "Action required",
			Comments: comments,
			Issues:   issues,
		}, nil
	}

	if _, err := p.client.CreateSpace(ctx, key, data.SpaceName, data.Description); err != nil {
		if ctx.Err() != nil {
			return request.Result{}, ctx.Err()
		}
		logger.Warn("space creation failed", "error", err)
		return failure(comments, "Creation failed", err), nil
	}

	if err := ensureGroups(ctx, p.client, key, &comments, true); err != nil {
		if ctx.Err() != nil {
			return request.Result{}, ctx.Err()
		}
		comments.warn("Group setup incomplete: %v", err)
	}

	select {
	case <-p.clock.After(p.settle):
	case <-ctx.Done():
		return request.Result{}, ctx.Err()
	}

	adminGroup := GroupName(key, request.AccessAdmin)
	if err := p.client.AddUserToGroup(ctx, admin, adminGroup); err != nil {
		if ctx.Err() != nil {
			return request.Result{}, ctx.Err()
		}
		comments.warn("Could not add %s to admin group: %v", admin, err)
	} else {
		comments.done("Space %s created. %s added as admin.", key, admin)
	}
	logger.Info("space created")

	return request.Result{
		Status:   request.ResultSuccess,
		Message:  "Space " + key + " created",
		SpaceURL: p.client.BaseURL() + "/display/" + key,
		SpaceKey: key,
		Comments: comments,
	}, nil
}

// checkAdmin returns the issue with the requested admin, or "".
func (p *SpaceProcessor) checkAdmin(ctx context.Context, admin string, comments *notes) (string, error) {
	_, err := p.client.GetUser(ctx, admin)
	if errors.Is(err, confluence.ErrNotFound) {
		comments.warn("User %s not found", admin)
		return "Admin doesn't exist", nil
	}
	if err != nil {
		return "", err
	}
	licensed, err := p.client.IsLicensed(ctx, admin)
	if err != nil {
		return "", err
	}
	if !licensed {
		comments.warn("User %s has no license", admin)
		return "No license", nil
	}
	return "", nil
}
