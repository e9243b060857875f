// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package server implements `kconf server`, exposing an Engine over the
// line-delimited JSON protocol on stdin/stdout for IDE integration
// (spec.md §6).
package server

import (
	"github.com/spf13/cobra"

	"kconf.sh/cmdfactory"
	"kconf.sh/config"
	"kconf.sh/kconfig"
	"kconf.sh/log"
	kserver "kconf.sh/server"
)

type ServerOptions struct {
	Root       string `long:"root" short:"k" usage:"path to the root Kconfig file" default:"Kconfig"`
	ConfigFile string `long:"config" short:"c" usage:"path to an existing .config file to preload"`
	RenameFile string `long:"renames" short:"r" usage:"path to a rename list to apply before loading"`
}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&ServerOptions{}, cobra.Command{
		Use:   "server [FLAGS]",
		Short: "Serve an Engine over the line-delimited JSON protocol",
	})
	if err != nil {
		panic(err)
	}
	return cmd
}

func (opts *ServerOptions) Run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := log.G(ctx)
	cfg := config.G(ctx)

	eng, err := kconfig.NewEngine(opts.Root)
	if err != nil {
		return err
	}

	if cfg.DefaultsPolicy != "" {
		eng.Policy = kconfig.DefaultsPolicy(cfg.DefaultsPolicy)
	}

	if opts.RenameFile != "" {
		if err := eng.LoadRenameFile(opts.RenameFile); err != nil {
			return err
		}
	}

	if opts.ConfigFile != "" {
		if _, err := eng.LoadConfig(opts.ConfigFile, kconfig.OriginPrimaryConfig); err != nil {
			return err
		}
	}

	srv := kserver.New(eng, cmd.InOrStdin(), cmd.OutOrStdout(), logger.WithField("component", "server"))

	if err := srv.Hello(); err != nil {
		return err
	}

	return srv.Serve()
}
