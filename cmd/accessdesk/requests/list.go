// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package requests

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/accessdesk/accessdesk/cmd/accessdesk/cli"
	"github.com/accessdesk/accessdesk/lib/client"
	"github.com/accessdesk/accessdesk/lib/requestindex"
	"github.com/accessdesk/accessdesk/lib/requestview"
	"github.com/accessdesk/accessdesk/lib/schema/request"
)

// callTimeout bounds one API call.
const callTimeout = 30 * time.Second

type listParams struct {
	cli.Connection
	cli.JSONOutput
	Status string `flag:"status" desc:"only requests with this status (all, pending, processing, completed, failed, work_in_progress)" default:"all"`
}

// ListCommand returns "accessdesk list".
func ListCommand() *cli.Command {
	var params listParams
	return &cli.Command{
		Name:    "list",
		Summary: "List requests, newest first",
		Usage:   "accessdesk list [--status STATUS] [flags]",
		Examples: []cli.Example{
			{Description: "Show everything that failed", Command: "accessdesk list --status failed"},
			{Command: "accessdesk list --json | jq '.[].id'"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			filter, err := requestindex.ParseFilter(params.Status)
			if err != nil {
				return cli.Validation("%w", err)
			}
			requests, err := params.Client(params.Logger())
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
			defer cancel()
			return cli.ClassifyError(runList(ctx, requests, filter, &params.JSONOutput, os.Stdout), params.Server)
		},
	}
}

func runList(ctx context.Context, requests *client.Client, filter requestindex.Filter, output *cli.JSONOutput, w io.Writer) error {
	records, err := requests.List(ctx, filter)
	if err != nil {
		return err
	}
	if done, err := output.EmitJSON(w, records); done {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(w, requestview.EmptyMessage(filter))
		return nil
	}
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tSUMMARY\tCREATED")
	for _, record := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			record.ID,
			requestview.TypeLabel(record.Kind()),
			requestview.StatusLabel(record.Status),
			summary(record),
			record.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	return tw.Flush()
}

// summary is the one-line description of a record in list output.
func summary(record request.Request) string {
	data := record.Data
	if record.Kind() == request.TypeSpaceCreation {
		return fmt.Sprintf("%s %q (admin %s)", data.SpaceKey, data.SpaceName, data.SpaceAdmin)
	}
	line := fmt.Sprintf("%s -> %s %s", data.LANID, data.SpaceKey, data.Access)
	if record.Status == request.StatusFailed && record.Error != "" {
		line += ": " + firstLine(record.Error)
	}
	return line
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return line
}

type statsParams struct {
	cli.Connection
	cli.JSONOutput
}

// StatsCommand returns "accessdesk stats".
func StatsCommand() *cli.Command {
	var params statsParams
	return &cli.Command{
		Name:    "stats",
		Summary: "Show request counts by status",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("stats", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			requests, err := params.Client(params.Logger())
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
			defer cancel()
			return cli.ClassifyError(runStats(ctx, requests, &params.JSONOutput, os.Stdout), params.Server)
		},
	}
}

func runStats(ctx context.Context, requests *client.Client, output *cli.JSONOutput, w io.Writer) error {
	stats, err := requests.Stats(ctx)
	if err != nil {
		return err
	}
	if done, err := output.EmitJSON(w, stats); done {
		return err
	}
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total\t%d\n", stats.Total)
	for _, status := range request.Statuses {
		fmt.Fprintf(tw, "%s\t%d\n", requestview.StatusLabel(status), stats.Count(status))
	}
	return tw.Flush()
}
