// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the accessdesk CLI command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/accessdesk/accessdesk/cmd/accessdesk/cli"
	credentialscmd "github.com/accessdesk/accessdesk/cmd/accessdesk/credentials"
	"github.com/accessdesk/accessdesk/cmd/accessdesk/requests"
	webhookcmd "github.com/accessdesk/accessdesk/cmd/accessdesk/webhook"
	"github.com/accessdesk/accessdesk/lib/client"
	"github.com/accessdesk/accessdesk/lib/version"
)

// Root builds and returns the complete accessdesk CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "accessdesk",
		Description: `accessdesk: Confluence access and space request desk.

Submit access and space creation requests to accessdesk-server, follow
their progress, and manage the secret scanner's webhooks.`,
		Subcommands: []*cli.Command{
			requests.ListCommand(),
			requests.StatsCommand(),
			requests.SubmitCommand(),
			requests.DeleteCommand(),
			requests.WatchCommand(),
			webhookcmd.Command(),
			credentialscmd.Command(),
			versionCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Watch the request dashboard in the terminal",
				Command:     "accessdesk watch",
			},
			{
				Description: "Show failed requests",
				Command:     "accessdesk list --status failed",
			},
			{
				Description: "Request developer access to a space",
				Command:     "accessdesk submit access --lan-id jdoe --email jdoe@example.com --domain r1-core --manager mlead --requester jdoe --full-name 'Jane Doe' --space-key ENG --access dev",
			},
			{
				Description: "Register the secret scanner webhooks",
				Command:     "accessdesk webhook setup --scanner-url https://scanner.internal:5002",
			},
		},
	}
}

type versionParams struct {
	cli.Connection
	cli.JSONOutput
}

// versionResult is the --json output of "accessdesk version".
type versionResult struct {
	Client version.Details  `json:"client"`
	Server *version.Details `json:"server,omitempty"`
	Error  string           `json:"server_error,omitempty"`
}

func versionCommand() *cli.Command {
	var params versionParams
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Description: `Print the CLI version and, when accessdesk-server answers, the
server's version.`,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("version", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			api, err := params.Client(params.Logger())
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return runVersion(ctx, api, &params.JSONOutput, os.Stdout)
		},
	}
}

// runVersion never fails because the server is unreachable: the
// client version is still useful on its own.
func runVersion(ctx context.Context, api *client.Client, output *cli.JSONOutput, w io.Writer) error {
	result := versionResult{Client: version.Current()}
	server, err := api.Version(ctx)
	if err != nil {
		result.Error = err.Error()
	} else {
		result.Server = &server
	}
	if done, err := output.EmitJSON(w, result); done {
		return err
	}

	fmt.Fprintf(w, "accessdesk %s\n", version.Full())
	if result.Server != nil {
		fmt.Fprintf(w, "server %s (%s)\n", result.Server.Version, api.Server())
	} else {
		fmt.Fprintf(w, "server unreachable at %s\n", api.Server())
	}
	return nil
}
