// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package credentials implements "accessdesk credentials", which
// creates the age identity and the sealed credential file the
// services read the Confluence service account from.
package credentials

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/accessdesk/accessdesk/cmd/accessdesk/cli"
	"github.com/accessdesk/accessdesk/lib/credential"
	"github.com/accessdesk/accessdesk/lib/sealed"
	"github.com/accessdesk/accessdesk/lib/secret"
)

// Command returns the "credentials" parent command.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "credentials",
		Summary: "Create sealed Confluence service account credentials",
		Description: `Generate an age identity for a host and seal the Confluence
service account to it. Point credentials.sealed_file and
credentials.identity_file at the results.`,
		Subcommands: []*cli.Command{
			keygenCommand(),
			sealCommand(),
		},
	}
}

type keygenParams struct {
	Output string `flag:"output,o" desc:"identity file to create (required)"`
}

func keygenCommand() *cli.Command {
	var params keygenParams
	return &cli.Command{
		Name:    "keygen",
		Summary: "Generate an age identity file",
		Description: `Write a new x25519 identity to --output, readable only by its
owner, and print the matching public key. The file must not exist.`,
		Usage: "accessdesk credentials keygen --output FILE",
		Examples: []cli.Example{
			{Command: "accessdesk credentials keygen -o /etc/accessdesk/identity.txt"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("keygen", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if params.Output == "" {
				return cli.Validation("--output is required")
			}
			return Keygen(params.Output, time.Now(), os.Stdout)
		},
	}
}

// Keygen writes a new identity to path in age-keygen's format and
// prints its public key on w.
func Keygen(path string, now time.Time, w io.Writer) error {
	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		return cli.Internal("%w", err)
	}
	defer keypair.Close()

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return cli.Conflict("%s already exists", path).
				WithHint("Remove it first if you mean to replace the identity.")
		}
		return cli.Internal("%w", err)
	}
	fmt.Fprintf(file, "# created: %s\n# public key: %s\n", now.UTC().Format(time.RFC3339), keypair.PublicKey)
	_, writeErr := file.Write(keypair.PrivateKey.Bytes())
	if writeErr == nil {
		_, writeErr = file.Write([]byte("\n"))
	}
	if closeErr := file.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		return cli.Internal("writing %s: %w", path, writeErr)
	}

	fmt.Fprintf(w, "Public key: %s\n", keypair.PublicKey)
	return nil
}

type sealParams struct {
	Recipients []string `flag:"recipient,r" desc:"age public key to seal to (repeatable, required)"`
	Output     string   `flag:"output,o" desc:"sealed credential file to write (required)"`
}

func sealCommand() *cli.Command {
	var params sealParams
	return &cli.Command{
		Name:    "seal",
		Summary: "Seal a username and password read from stdin",
		Description: `Read the username from the first line of standard input and the
password from the second, then encrypt them to every --recipient.`,
		Usage: "accessdesk credentials seal -r age1... -o FILE < input",
		Examples: []cli.Example{
			{
				Description: "Seal interactively",
				Command:     "accessdesk credentials seal -r $(cat host.pub) -o confluence.age",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("seal", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if params.Output == "" {
				return cli.Validation("--output is required")
			}
			return Seal(os.Stdin, params.Recipients, params.Output, os.Stdout)
		},
	}
}

// Seal reads a username line and a password line from r, seals them
// to recipients, and writes the result to path.
func Seal(r io.Reader, recipients []string, path string, w io.Writer) error {
	if len(recipients) == 0 {
		return cli.Validation("at least one --recipient is required")
	}
	for _, recipient := range recipients {
		if err := sealed.ParsePublicKey(recipient); err != nil {
			return cli.Validation("%w", err)
		}
	}

	// The username is not secret, so it is read with the shared reader
	// and only the password lands in a protected buffer.
	reader := bufio.NewReader(r)
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return cli.Validation("reading username from stdin: %w", err)
	}
	username := strings.TrimSpace(line)
	password, err := secret.ReadLine(reader)
	if err != nil {
		return cli.Validation("reading password from stdin: %w", err)
	}
	defer password.Close()

	ciphertext, err := credential.Seal(username, password, recipients)
	if err != nil {
		return cli.Validation("%w", err)
	}
	if err := os.WriteFile(path, ciphertext, 0o600); err != nil {
		return cli.Internal("%w", err)
	}
	fmt.Fprintf(w, "Sealed credentials for %s to %d recipient(s) in %s\n", username, len(recipients), path)
	return nil
}
