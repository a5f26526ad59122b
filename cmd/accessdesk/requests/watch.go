// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package requests

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/accessdesk/accessdesk/cmd/accessdesk/cli"
	"github.com/accessdesk/accessdesk/lib/clock"
	"github.com/accessdesk/accessdesk/lib/requestui"
)

type watchParams struct {
	cli.Connection
	LogFile string `flag:"log-file" desc:"write logs to this file (the dashboard owns the terminal)"`
}

// WatchCommand returns "accessdesk watch".
func WatchCommand() *cli.Command {
	var params watchParams
	return &cli.Command{
		Name:    "watch",
		Summary: "Open the live terminal dashboard",
		Description: `Open a full-screen dashboard of requests that updates as the server
pushes changes.

Keys: h/l or 1-6 switch status tabs, j/k move, / filters by fuzzy
text, d deletes the selected request after confirmation, tab moves
focus to the detail pane, q quits.`,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("watch", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			logger, closeLog, err := watchLogger(params.LogFile, params.Verbose)
			if err != nil {
				return err
			}
			defer closeLog()

			requests, err := params.Client(logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
			defer stop()

			source := requestui.NewStreamSource(requests, logger)
			go source.Run(ctx)

			program := tea.NewProgram(
				requestui.NewModel(source, clock.Real()),
				tea.WithAltScreen(),
				tea.WithMouseAllMotion(),
				tea.WithContext(ctx),
			)
			if _, err := program.Run(); err != nil && ctx.Err() == nil {
				return cli.Internal("dashboard: %w", err)
			}
			return nil
		},
	}
}

// watchLogger sends logs to path, or discards them when path is
// empty: the dashboard draws over stderr.
func watchLogger(path string, verbose bool) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, cli.Validation("opening log file: %w", err)
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}))
	logger.Info("dashboard starting", "pid", os.Getpid())
	return logger, func() { file.Close() }, nil
}
