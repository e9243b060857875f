// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package check implements `kconf check`, the style checker front-end
// (spec.md §6, SPEC_FULL.md §12): it runs the checker over one or more
// Kconfig files and reports non-zero when any issue is found, whether or
// not it was autofixed.
package check

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kconf.sh/checker"
	"kconf.sh/cmdfactory"
	"kconf.sh/docgen"
	"kconf.sh/internal/errs"
	"kconf.sh/internal/tableprinter"
	"kconf.sh/iostreams"
	"kconf.sh/kconfig"
)

type CheckOptions struct {
	Tree bool `long:"tree" usage:"print the menu outline instead of running style checks, for debugging a tree's structure"`
}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&CheckOptions{}, cobra.Command{
		Use:   "check FILE [FILE...]",
		Short: "Check Kconfig source files for style issues",
		Args:  cobra.MinimumNArgs(1),
	})
	if err != nil {
		panic(err)
	}
	return cmd
}

func (opts *CheckOptions) Run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	io := iostreams.G(ctx)
	cs := io.ColorScheme()

	if opts.Tree {
		for _, path := range args {
			table, err := kconfig.Parse(path)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}
			fmt.Fprint(io.Out, docgen.RenderTree(table))
		}
		return nil
	}

	table, err := tableprinter.NewTablePrinter(ctx)
	if err != nil {
		return err
	}

	unfixed := false
	rows := 0
	for _, path := range args {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%s: %w", path, errs.ErrNotFound)
			}
			return fmt.Errorf("%w: %s: %s", errs.ErrInternal, path, err)
		}

		result, err := checker.CheckFile(path)
		if err != nil {
			return fmt.Errorf("checking %s: %w", path, err)
		}

		for _, issue := range result.Issues {
			status := "fixed"
			statusColor := cs.Green
			if !issue.Fixed {
				status = "unfixed"
				statusColor = cs.Red
				unfixed = true
			}
			table.AddField(path, nil)
			table.AddField(fmt.Sprintf("%d", issue.Line), nil)
			table.AddField(issue.Message, nil)
			table.AddField(status, statusColor)
			table.EndRow()
			rows++
		}

		if result.Changed {
			fmt.Fprintf(io.Out, "%s: wrote %s\n", path, result.NewPath)
		}
	}

	if rows == 0 {
		return nil
	}

	if err := table.Render(io.Out); err != nil {
		return err
	}

	if unfixed {
		return fmt.Errorf("one or more style issues could not be automatically fixed")
	}
	return fmt.Errorf("one or more style issues were found and fixed")
}
