// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package kconf assembles the kconf command-line tool: the interactive
// configurator, the JSON line-delimited IDE server, the style checker,
// the documentation generator and the renames utility (spec.md §6,
// SPEC_FULL.md §11-12), all built on the same cmdfactory/config/log
// ambient stack as the rest of this module's consumers.
package kconf

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"kconf.sh/cmdfactory"
	"kconf.sh/config"
	"kconf.sh/internal/cli"
	"kconf.sh/internal/cli/kconf/check"
	"kconf.sh/internal/cli/kconf/configure"
	"kconf.sh/internal/cli/kconf/doc"
	"kconf.sh/internal/cli/kconf/renames"
	"kconf.sh/internal/cli/kconf/server"
	"kconf.sh/internal/cli/kconf/version"
	kitversion "kconf.sh/internal/version"
	"kconf.sh/iostreams"
	"kconf.sh/log"
)

type kconfOptions struct{}

// NewCmd builds the root `kconf` cobra command and attaches every
// subcommand (spec.md §6 "Consumer tools").
func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&kconfOptions{}, cobra.Command{
		Short: "Parse, evaluate and maintain Kconfig configuration trees",
		Use:   "kconf [FLAGS] SUBCOMMAND",
		Long: heredoc.Docf(`
        kconf %s

        Parse, evaluate and maintain Kconfig configuration trees:
        interactively configure a .config, serve an editor over the
        line-delimited JSON protocol, check style, generate reference
        documentation, or apply a symbol rename list.`, kitversion.Version()),
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	})
	if err != nil {
		panic(err)
	}

	cmd.AddGroup(&cobra.Group{ID: "config", Title: "CONFIGURATION COMMANDS"})
	cmd.AddCommand(configure.NewCmd())
	cmd.AddCommand(server.NewCmd())

	cmd.AddGroup(&cobra.Group{ID: "maintain", Title: "MAINTENANCE COMMANDS"})
	cmd.AddCommand(check.NewCmd())
	cmd.AddCommand(doc.NewCmd())
	cmd.AddCommand(renames.NewCmd())

	cmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISCELLANEOUS COMMANDS"})
	cmd.AddCommand(version.NewCmd())

	return cmd
}

func (k *kconfOptions) Run(_ *cobra.Command, _ []string) error {
	return pflag.ErrHelp
}

// Main wires the ambient stack (config manager, logger, IO streams)
// into a context and executes the root command, returning the process
// exit code.
func Main(args []string) int {
	cmd := NewCmd()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	copts := &cli.CliOptions{}

	for _, o := range []cli.CliOption{
		cli.WithDefaultConfigManager(cmd),
		cli.WithDefaultIOStreams(),
		cli.WithDefaultLogger(),
	} {
		if err := o(copts); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if copts.ConfigManager != nil {
		ctx = config.WithConfigManager(ctx, copts.ConfigManager)
	}

	if copts.Logger != nil {
		ctx = log.WithLogger(ctx, copts.Logger)
	}

	if copts.IOStreams != nil {
		ctx = iostreams.WithIOStreams(ctx, copts.IOStreams)
	}

	log.G(ctx).Debugf("kconf %s", kitversion.Version())

	cmdfactory.Main(ctx, cmd)
	return 0
}
