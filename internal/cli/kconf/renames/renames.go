// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package renames implements `kconf renames`, migrating an existing
// .config file onto canonical symbol names by loading it through a
// rename list and rewriting it in place (spec.md §4.5).
package renames

import (
	"fmt"

	"github.com/spf13/cobra"

	"kconf.sh/cmdfactory"
	"kconf.sh/kconfig"
)

type RenamesOptions struct {
	Root       string `long:"root" short:"k" usage:"path to the root Kconfig file" default:"Kconfig"`
	ConfigFile string `long:"config" short:"c" usage:"path to the .config file to migrate" default:".config"`
	RenameFile string `long:"renames" short:"r" usage:"path to the rename list to apply" default:"Kconfig.renames"`
}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&RenamesOptions{}, cobra.Command{
		Use:   "renames [FLAGS]",
		Short: "Migrate a .config file's deprecated symbol names to their canonical form",
	})
	if err != nil {
		panic(err)
	}
	return cmd
}

func (opts *RenamesOptions) Run(cmd *cobra.Command, _ []string) error {
	eng, err := kconfig.NewEngine(opts.Root)
	if err != nil {
		return fmt.Errorf("could not parse %s: %w", opts.Root, err)
	}

	if err := eng.LoadRenameFile(opts.RenameFile); err != nil {
		return err
	}

	report, err := eng.LoadConfig(opts.ConfigFile, kconfig.OriginPrimaryConfig)
	if err != nil {
		return err
	}

	for _, d := range report.Diagnostics {
		if d.Category == kconfig.CategoryInvalidRename || d.Category == kconfig.CategoryUndefinedSymbol {
			fmt.Fprintln(cmd.ErrOrStderr(), d.String())
		}
	}

	if err := eng.SaveConfig(opts.ConfigFile); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "migrated %s to canonical symbol names (%s)\n", opts.ConfigFile, report.Summary())
	return nil
}
