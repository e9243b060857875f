// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package configure implements `kconf configure`, the interactive
// front-end over the engine: it walks the menu tree in traversal order
// and prompts for every visible, user-settable symbol that has no
// existing assignment (spec.md §9 "Interactive UI as external
// observer" — the prompt loop is external to the engine; the engine
// only ever sees Set/Reset calls).
package configure

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"kconf.sh/cmdfactory"
	"kconf.sh/config"
	"kconf.sh/iostreams"
	"kconf.sh/kconfig"
	"kconf.sh/log"
)

type ConfigureOptions struct {
	Root       string `long:"root" short:"k" usage:"path to the root Kconfig file" default:"Kconfig"`
	ConfigFile string `long:"config" short:"c" usage:"path to the .config file to load and save" default:".config"`
	RenameFile string `long:"renames" short:"r" usage:"path to a rename list to apply before loading"`
}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&ConfigureOptions{}, cobra.Command{
		Use:     "configure [FLAGS]",
		Short:   "Interactively populate a .config from a Kconfig tree",
		Aliases: []string{"menuconfig"},
	})
	if err != nil {
		panic(err)
	}
	return cmd
}

func (opts *ConfigureOptions) Run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := log.G(ctx)
	streams := iostreams.G(ctx)
	cfg := config.G(ctx)

	eng, err := kconfig.NewEngine(opts.Root)
	if err != nil {
		return fmt.Errorf("could not parse %s: %w", opts.Root, err)
	}

	if cfg.DefaultsPolicy != "" {
		eng.Policy = kconfig.DefaultsPolicy(cfg.DefaultsPolicy)
	}

	if opts.RenameFile != "" {
		if err := eng.LoadRenameFile(opts.RenameFile); err != nil {
			return err
		}
	}

	noPrompt := cfg.NoPrompt || !streams.CanPrompt()

	if _, err := os.Stat(opts.ConfigFile); err == nil {
		loadReport, err := eng.LoadConfig(opts.ConfigFile, kconfig.OriginPrimaryConfig)
		if err != nil {
			return err
		}

		if eng.Policy == kconfig.PolicyInteractive && !noPrompt {
			if err := resolveInteractiveDefaults(eng, loadReport); err != nil {
				return err
			}
		}
	}

	err = eng.Table.Root.Walk(func(n *kconfig.MenuNode) error {
		switch n.Kind {
		case kconfig.NodeChoice:
			return promptChoice(eng, n.Choice, noPrompt)
		case kconfig.NodeConfig, kconfig.NodeMenuConfig:
			sym := n.Symbol
			if sym == nil || !sym.IsUserSettable() || sym.Choice != nil {
				// Choice members are driven by their NodeChoice instead.
				return nil
			}
			if visible, ok := eng.Visible(sym.Name); !ok || !visible {
				return nil
			}
			if !eng.IsDefault(sym.Name) {
				// Already has an explicit assignment; nothing to ask.
				return nil
			}
			if noPrompt {
				return nil
			}

			current, _ := eng.Value(sym.Name)
			answer, err := prompt(sym, current)
			if err != nil {
				return err
			}
			if answer == "" {
				return nil
			}
			return eng.Set(sym.Name, answer)
		default:
			return nil
		}
	})
	if err != nil {
		return err
	}

	if err := eng.SaveConfig(opts.ConfigFile); err != nil {
		return err
	}

	report := eng.Report()
	for _, d := range report.Filter(kconfig.Verbosity(cfg.ReportVerbosity)) {
		fmt.Fprintln(streams.ErrOut, d.String())
	}
	if kconfig.Verbosity(cfg.ReportVerbosity) == kconfig.VerbosityVerbose {
		fmt.Fprintln(streams.ErrOut, report.Summary())
	}

	logger.Infof("wrote %s", opts.ConfigFile)
	return nil
}

// resolveInteractiveDefaults implements the `interactive` branch of
// KCONFIG_DEFAULTS_POLICY (spec.md §4.4): for every symbol the loader
// flagged as having a stored default that disagrees with its live
// Kconfig default, ask the operator which one to keep.
func resolveInteractiveDefaults(eng *kconfig.Engine, report *kconfig.Report) error {
	for _, d := range report.Diagnostics {
		if d.Category != kconfig.CategoryDefaultMismatch {
			continue
		}

		name := symbolNameAt(eng.Table, d.Location)
		if name == "" {
			continue
		}

		stored, _ := eng.Value(name)
		eng.Reset(name)
		kconfigDefault, _ := eng.Value(name)
		if err := eng.Set(name, stored.Raw); err != nil {
			return err
		}

		keep := true
		q := &survey.Confirm{
			Message: fmt.Sprintf("%s: stored default %q disagrees with Kconfig default %q — keep stored value?",
				name, stored.Raw, kconfigDefault.Raw),
			Default: true,
		}
		if err := survey.AskOne(q, &keep); err != nil {
			return err
		}

		if !keep {
			eng.Reset(name)
		}
	}

	return nil
}

// symbolNameAt finds the symbol declared at loc, or "" if none matches.
func symbolNameAt(table *kconfig.SymbolTable, loc kconfig.Location) string {
	for _, name := range table.DeclOrder {
		if sym := table.Symbols[name]; sym != nil && sym.Loc == loc {
			return name
		}
	}
	return ""
}

func prompt(sym *kconfig.Symbol, current kconfig.Value) (string, error) {
	message := sym.Name
	if sym.Prompt != nil && sym.Prompt.Text != "" {
		message = sym.Prompt.Text
	}

	switch sym.Kind {
	case kconfig.KindBool:
		var answer bool
		q := &survey.Confirm{
			Message: message,
			Default: current.Raw == "y",
		}
		if err := survey.AskOne(q, &answer); err != nil {
			return "", err
		}
		if answer {
			return "y", nil
		}
		return "n", nil

	default:
		var answer string
		q := &survey.Input{
			Message: message,
			Default: current.Raw,
		}
		if err := survey.AskOne(q, &answer); err != nil {
			return "", err
		}
		return answer, nil
	}
}

// promptChoice asks the operator to pick one member of a choice group,
// skipping the prompt if the choice is not currently visible, has no
// members, or already carries an explicit selection.
func promptChoice(eng *kconfig.Engine, choice *kconfig.Choice, noPrompt bool) error {
	if len(choice.Members) == 0 {
		return nil
	}

	visible, ok := eng.Visible(choice.Members[0].Name)
	if !ok || !visible {
		return nil
	}

	selected := ""
	explicit := false
	for _, m := range choice.Members {
		v, _ := eng.Value(m.Name)
		if v.Raw == "y" {
			selected = m.Name
			explicit = !eng.IsDefault(m.Name)
			break
		}
	}

	if explicit || noPrompt {
		return nil
	}

	message := choice.Name
	if choice.Prompt != nil && choice.Prompt.Text != "" {
		message = choice.Prompt.Text
	}

	options := make([]string, 0, len(choice.Members))
	for _, m := range choice.Members {
		options = append(options, m.Name)
	}

	answer := selected
	q := &survey.Select{
		Message: message,
		Options: options,
		Default: selected,
	}
	if err := survey.AskOne(q, &answer); err != nil {
		return err
	}
	if answer == "" || answer == selected {
		return nil
	}
	return eng.Set(answer, "y")
}
