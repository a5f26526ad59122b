// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package requests

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/accessdesk/accessdesk/cmd/accessdesk/cli"
	"github.com/accessdesk/accessdesk/lib/client"
	"github.com/accessdesk/accessdesk/lib/schema/request"
)

// SubmitCommand returns "accessdesk submit" with its access and space
// subcommands.
func SubmitCommand() *cli.Command {
	return &cli.Command{
		Name:    "submit",
		Summary: "Submit an access or space creation request",
		Description: `Submit a request to accessdesk-server. The server queues it and the
automation runs in the background; follow progress with
"accessdesk watch" or "accessdesk list".`,
		Subcommands: []*cli.Command{
			submitAccessCommand(),
			submitSpaceCommand(),
		},
	}
}

type submitAccessParams struct {
	cli.Connection
	cli.JSONOutput
	LANID     string `flag:"lan-id" desc:"LAN id of the user to grant (required)"`
	Email     string `flag:"email" desc:"user email (required)"`
	Domain    string `flag:"domain" desc:"user directory domain (required)"`
	Manager   string `flag:"manager" desc:"approving manager (required)"`
	Requester string `flag:"requester" desc:"who is asking (required)"`
	FullName  string `flag:"full-name" desc:"user display name (required)"`
	SpaceKey  string `flag:"space-key" desc:"Confluence space key (required)"`
	Access    string `flag:"access" desc:"access level: read, dev, or admin (required)"`
}

func (p *submitAccessParams) data() request.Data {
	return request.Data{
		LANID:     p.LANID,
		Email:     p.Email,
		Domain:    p.Domain,
		Manager:   p.Manager,
		Requester: p.Requester,
		FullName:  p.FullName,
		SpaceKey:  p.SpaceKey,
		Access:    p.Access,
	}
}

func submitAccessCommand() *cli.Command {
	var params submitAccessParams
	return &cli.Command{
		Name:    "access",
		Summary: "Request access to a Confluence space",
		Usage:   "accessdesk submit access --lan-id ID --email ADDR --domain D --manager M --requester R --full-name NAME --space-key KEY --access LEVEL",
		Examples: []cli.Example{
			{
				Description: "Give jdoe developer access to ENG",
				Command:     "accessdesk submit access --lan-id jdoe --email jdoe@example.com --domain r1-core --manager mlead --requester jdoe --full-name 'Jane Doe' --space-key ENG --access dev",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("access", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			data := params.data()
			if err := validate(data.ValidateAccess()); err != nil {
				return err
			}
			requests, err := params.Client(params.Logger())
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
			defer cancel()
			return cli.ClassifyError(runSubmit(ctx, requests.SubmitAccess, data, &params.JSONOutput, os.Stdout), params.Server)
		},
	}
}

type submitSpaceParams struct {
	cli.Connection
	cli.JSONOutput
	Name        string `flag:"name" desc:"space name (required)"`
	Key         string `flag:"key" desc:"space key, 2-10 letters and digits (required)"`
	Admin       string `flag:"admin" desc:"username of the space administrator (required)"`
	Description string `flag:"description" desc:"space description"`
}

func submitSpaceCommand() *cli.Command {
	var params submitSpaceParams
	return &cli.Command{
		Name:    "space",
		Summary: "Request a new Confluence space",
		Usage:   "accessdesk submit space --name NAME --key KEY --admin USER [--description TEXT]",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("space", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			data := request.Data{
				SpaceName:   params.Name,
				SpaceKey:    params.Key,
				SpaceAdmin:  params.Admin,
				Description: params.Description,
			}
			if err := validate(data.ValidateSpace()); err != nil {
				return err
			}
			requests, err := params.Client(params.Logger())
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
			defer cancel()
			return cli.ClassifyError(runSubmit(ctx, requests.SubmitSpace, data, &params.JSONOutput, os.Stdout), params.Server)
		},
	}
}

// validate turns a local validation failure into a ToolError naming
// the flags to set.
func validate(err error) error {
	if err == nil {
		return nil
	}
	var missing *request.MissingFieldsError
	if errors.As(err, &missing) {
		flags := make([]string, len(missing.Fields))
		for index, field := range missing.Fields {
			flags[index] = "--" + flagName(field)
		}
		return cli.Validation("missing required flags: %s", strings.Join(flags, ", "))
	}
	return cli.Validation("%w", err)
}

// flagName maps a payload key to the flag that sets it.
func flagName(field string) string {
	switch field {
	case "space_name":
		return "name"
	case "space_key":
		return "key"
	case "space_admin":
		return "admin"
	}
	return strings.ReplaceAll(field, "_", "-")
}

func runSubmit(ctx context.Context, submit func(context.Context, request.Data) (request.Request, error), data request.Data, output *cli.JSONOutput, w io.Writer) error {
	record, err := submit(ctx, data)
	if err != nil {
		return err
	}
	if done, err := output.EmitJSON(w, record); done {
		return err
	}
	fmt.Fprintf(w, "Submitted request #%d (%s)\n", record.ID, record.Status)
	return nil
}

type deleteParams struct {
	cli.Connection
}

// DeleteCommand returns "accessdesk delete".
func DeleteCommand() *cli.Command {
	var params deleteParams
	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a request",
		Description: `Delete a request from the server. Deleting removes the record only;
anything the automation already changed in Confluence stays.`,
		Usage: "accessdesk delete <id>",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("delete", &params) },
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one request id")
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			requests, err := params.Client(params.Logger())
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
			defer cancel()
			return cli.ClassifyError(runDelete(ctx, requests, id, os.Stdout), params.Server)
		},
	}
}

func parseID(text string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(text, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, cli.Validation("invalid request id %q", text)
	}
	return id, nil
}

func runDelete(ctx context.Context, requests *client.Client, id int64, w io.Writer) error {
	if err := requests.Delete(ctx, id); err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return cli.NotFound("request #%d not found", id)
		}
		return err
	}
	fmt.Fprintf(w, "Deleted request #%d\n", id)
	return nil
}
