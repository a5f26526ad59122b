// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "accessdesk",
		Subcommands: []*Command{
			{
				Name: "submit",
				Subcommands: []*Command{
					{
						Name: "access",
						Run: func(args []string) error {
							called = "submit access"
							receivedArgs = args
							return nil
						},
					},
					{Name: "space", Run: func(args []string) error { called = "submit space"; return nil }},
				},
			},
			{Name: "version", Run: func(args []string) error { called = "version"; return nil }},
		},
	}

	if err := root.Execute([]string{"submit", "access", "extra-arg"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "submit access" {
		t.Errorf("dispatched to %q, want %q", called, "submit access")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "extra-arg" {
		t.Errorf("args = %v, want [extra-arg]", receivedArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var status string
	var target string

	command := &Command{
		Name: "list",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flagSet.StringVar(&status, "status", "all", "status filter")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				target = args[0]
			}
			return nil
		},
	}

	if err := command.Execute([]string{"--status", "failed", "positional"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if status != "failed" {
		t.Errorf("status = %q, want %q", status, "failed")
	}
	if target != "positional" {
		t.Errorf("target = %q, want %q", target, "positional")
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "list",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flagSet.Bool("json", false, "json output")
			flagSet.String("status", "all", "status filter")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--stauts", "failed"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --status") {
		t.Errorf("error = %q, want suggestion for '--status'", err)
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error = %q, should point to --help", err)
	}
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Category != CategoryValidation {
		t.Errorf("error = %#v, want a validation ToolError", err)
	}
}

func TestCommand_Execute_UnknownFlagNoSuggestion(t *testing.T) {
	command := &Command{
		Name: "list",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flagSet.Bool("json", false, "json output")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--zzzzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not suggest for distant flag", err)
	}
}

func TestCommand_Execute_UnknownSubcommand(t *testing.T) {
	root := &Command{
		Name: "accessdesk",
		Subcommands: []*Command{
			{Name: "list"},
			{Name: "stats"},
			{Name: "webhook"},
		},
	}

	err := root.Execute([]string{"webhok"})
	if err == nil || !strings.Contains(err.Error(), `did you mean "webhook"`) {
		t.Errorf("error = %v, want suggestion for 'webhook'", err)
	}
	if ExitCodeFor(err) != ExitValidation {
		t.Errorf("exit code = %d, want %d", ExitCodeFor(err), ExitValidation)
	}

	err = root.Execute([]string{"zzzzzzz"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %v, want no suggestion for distant input", err)
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			root := &Command{
				Name:        "accessdesk",
				Subcommands: []*Command{{Name: "list", Summary: "List requests"}},
			}
			if err := root.Execute([]string{helpArg}); err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
		})
	}
}

func TestCommand_Execute_NoArgsShowsHelp(t *testing.T) {
	root := &Command{
		Name:        "accessdesk",
		Subcommands: []*Command{{Name: "list", Summary: "List requests"}},
	}
	err := root.Execute([]string{})
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %v, want 'subcommand required'", err)
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "accessdesk",
		Description: "Confluence access request desk.",
		Subcommands: []*Command{
			{Name: "list", Summary: "List requests"},
			{Name: "watch", Summary: "Open the terminal dashboard"},
		},
		Examples: []Example{
			{Description: "Show failed requests", Command: "accessdesk list --status failed"},
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"Confluence access request desk.",
		"Usage:",
		"accessdesk <command> [flags]",
		"Commands:",
		"Open the terminal dashboard",
		"Examples:",
		"# Show failed requests",
		"accessdesk list --status failed",
		"Run 'accessdesk <command> --help'",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_PrintHelp_WithFlags(t *testing.T) {
	var params struct {
		JSONOutput
		Connection
	}
	command := &Command{
		Name:  "stats",
		Usage: "accessdesk stats [flags]",
		Flags: func() *pflag.FlagSet { return FlagsFromParams("stats", &params) },
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()
	for _, want := range []string{"accessdesk stats [flags]", "Flags:", "--json", "--server", "-v, --verbose"} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	root := &Command{Name: "accessdesk"}
	webhook := &Command{Name: "webhook", parent: root}
	setup := &Command{Name: "setup", parent: webhook}

	if got := setup.fullName(); got != "accessdesk webhook setup" {
		t.Errorf("setup.fullName() = %q, want %q", got, "accessdesk webhook setup")
	}
	if got := root.fullName(); got != "accessdesk" {
		t.Errorf("root.fullName() = %q, want %q", got, "accessdesk")
	}
}
