// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package doc implements `kconf doc`, rendering a Kconfig tree to
// Markdown reference documentation (SPEC_FULL.md §12).
package doc

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kconf.sh/cmdfactory"
	"kconf.sh/docgen"
	"kconf.sh/internal/errs"
	"kconf.sh/kconfig"
)

type DocOptions struct {
	Root   string `long:"root" short:"k" usage:"path to the root Kconfig file" default:"Kconfig"`
	Output string `long:"output" short:"o" usage:"path to write the generated Markdown to (default: stdout)"`
}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&DocOptions{}, cobra.Command{
		Use:   "doc [FLAGS]",
		Short: "Render a Kconfig tree as Markdown reference documentation",
	})
	if err != nil {
		panic(err)
	}
	return cmd
}

func (opts *DocOptions) Run(_ *cobra.Command, _ []string) error {
	if _, err := os.Stat(opts.Root); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", opts.Root, errs.ErrNotFound)
		}
		return fmt.Errorf("%w: %s: %s", errs.ErrInternal, opts.Root, err)
	}

	table, err := kconfig.Parse(opts.Root)
	if err != nil {
		return err
	}

	out := docgen.Render(table)

	if opts.Output == "" {
		if _, err := os.Stdout.WriteString(out); err != nil {
			return fmt.Errorf("%w: %s", errs.ErrInternal, err)
		}
		return nil
	}

	if err := os.WriteFile(opts.Output, []byte(out), 0o644); err != nil {
		return fmt.Errorf("%w: %s", errs.ErrInternal, err)
	}
	return nil
}
