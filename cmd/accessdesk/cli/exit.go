// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
)

// ExitError signals a non-zero exit code without printing an extra
// error message. The command is expected to have already written its
// own output.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// Exit codes for categorized failures.
const (
	ExitFailure    = 1
	ExitValidation = 2
	ExitNotFound   = 3
	ExitTransient  = 4
)

// ExitCodeFor maps err to the process exit code: the code of an
// ExitError, the category code of a ToolError, and ExitFailure for
// anything else. A nil error is 0.
func ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		switch toolErr.Category {
		case CategoryValidation:
			return ExitValidation
		case CategoryNotFound:
			return ExitNotFound
		case CategoryTransient:
			return ExitTransient
		}
	}
	return ExitFailure
}
