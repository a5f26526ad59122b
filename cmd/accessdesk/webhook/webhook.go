// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package webhook implements "accessdesk webhook", which registers the
// secret scanner's Confluence webhooks.
package webhook

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/accessdesk/accessdesk/cmd/accessdesk/cli"
	"github.com/accessdesk/accessdesk/lib/config"
	"github.com/accessdesk/accessdesk/lib/confluence"
	"github.com/accessdesk/accessdesk/lib/service"
)

// scannerMarker identifies scanner webhooks by name.
const scannerMarker = "Scanner"

// scannerHooks are the webhooks setup registers, keyed by Confluence
// event, with the scanner path each one targets.
var scannerHooks = []struct {
	event string
	path  string
}{
	{"page_created", "/webhook/page-created"},
	{"page_updated", "/webhook/page-updated"},
}

// Webhooks is the part of the Confluence client these commands use.
type Webhooks interface {
	ListWebhooks(ctx context.Context) ([]confluence.Webhook, error)
	CreateWebhook(ctx context.Context, name, targetURL string, events []string) (*confluence.Webhook, error)
}

// Command returns the "webhook" parent command.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "webhook",
		Summary: "Manage the scanner's Confluence webhooks",
		Description: `Register and inspect the Confluence webhooks that feed
accessdesk-scanner. Both subcommands read the Confluence URL and
service account from the accessdesk configuration file.`,
		Subcommands: []*cli.Command{
			setupCommand(),
			listCommand(),
		},
	}
}

// ConfluenceFlags selects the configuration used to reach Confluence.
type ConfluenceFlags struct {
	ConfigPath string `flag:"config" desc:"path to the accessdesk configuration file (default $ACCESSDESK_CONFIG)"`
	Verbose    bool   `flag:"verbose,v" desc:"log at debug level"`
}

// connect loads the configuration and opens a Confluence client. The
// returned close releases the service account password.
func (p *ConfluenceFlags) connect(ctx context.Context) (*confluence.Client, *config.Config, func(), error) {
	path := p.ConfigPath
	if path == "" {
		path = os.Getenv(config.EnvConfig)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, nil, nil, cli.Validation("%w", err)
	}
	if cfg.Confluence.URL == "" {
		return nil, nil, nil, cli.Validation("confluence.url is not configured").
			WithHint("Set it in the configuration file or export CONFLUENCE_URL.")
	}
	logger := cli.NewCommandLogger(p.Verbose)
	client, credentials, err := service.ConnectConfluence(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, cli.Transient("connecting to Confluence: %w", err)
	}
	return client, cfg, func() { credentials.Close() }, nil
}

type setupParams struct {
	ConfluenceFlags
	ScannerURL string `flag:"scanner-url" desc:"URL Confluence uses to reach accessdesk-scanner (default scanner.public_url)"`
}

func setupCommand() *cli.Command {
	var params setupParams
	return &cli.Command{
		Name:    "setup",
		Summary: "Register the page_created and page_updated webhooks",
		Description: `Register the scanner webhooks unless one whose name contains
"Scanner" already exists. Running setup twice is safe.`,
		Usage: "accessdesk webhook setup [--scanner-url URL] [flags]",
		Examples: []cli.Example{
			{Command: "accessdesk webhook setup --scanner-url https://scanner.internal:5002"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("setup", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			client, cfg, release, err := params.connect(ctx)
			if err != nil {
				return err
			}
			defer release()

			scannerURL := params.ScannerURL
			if scannerURL == "" {
				scannerURL = cfg.Scanner.PublicURL
			}
			if scannerURL == "" {
				return cli.Validation("scanner URL is not set").
					WithHint("Pass --scanner-url or set scanner.public_url.")
			}
			return Setup(ctx, client, scannerURL, os.Stdout, cli.NewCommandLogger(params.Verbose))
		},
	}
}

// Setup registers the scanner webhooks pointing at scannerURL unless
// one already exists, reporting what it did on w.
func Setup(ctx context.Context, hooks Webhooks, scannerURL string, w io.Writer, logger *slog.Logger) error {
	existing, err := hooks.ListWebhooks(ctx)
	if err != nil {
		return cli.Transient("%w", err)
	}
	for _, hook := range existing {
		if strings.Contains(hook.Name, scannerMarker) {
			fmt.Fprintf(w, "Scanner webhooks already registered (%s -> %s)\n", hook.Name, hook.URL)
			return nil
		}
	}

	base := strings.TrimRight(scannerURL, "/")
	for _, spec := range scannerHooks {
		name := scannerMarker + " - " + spec.event
		created, err := hooks.CreateWebhook(ctx, name, base+spec.path, []string{spec.event})
		if err != nil {
			return cli.Transient("%w", err)
		}
		logger.Debug("webhook created", "name", created.Name, "id", created.ID)
		fmt.Fprintf(w, "Created webhook %q -> %s\n", created.Name, created.URL)
	}
	return nil
}

type listParams struct {
	ConfluenceFlags
	cli.JSONOutput
}

func listCommand() *cli.Command {
	var params listParams
	return &cli.Command{
		Name:    "list",
		Summary: "List registered Confluence webhooks",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			client, _, release, err := params.connect(ctx)
			if err != nil {
				return err
			}
			defer release()
			return List(ctx, client, &params.JSONOutput, os.Stdout)
		},
	}
}

// List writes the registered webhooks to w.
func List(ctx context.Context, hooks Webhooks, output *cli.JSONOutput, w io.Writer) error {
	existing, err := hooks.ListWebhooks(ctx)
	if err != nil {
		return cli.Transient("%w", err)
	}
	if done, err := output.EmitJSON(w, existing); done {
		return err
	}
	if len(existing) == 0 {
		fmt.Fprintln(w, "No webhooks registered.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEVENTS\tURL\tACTIVE")
	for _, hook := range existing {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\n", hook.ID, hook.Name, strings.Join(hook.Events, ","), hook.URL, hook.Active)
	}
	return tw.Flush()
}
