// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package cli

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"kconf.sh/cmdfactory"
	"kconf.sh/config"
	"kconf.sh/iostreams"
	"kconf.sh/log"
)

// CliOptions accumulates the ambient dependencies every kconf subcommand
// is built against: a config manager, a logger, and the terminal
// streams (spec.md §9 "Interactive UI as external observer").
type CliOptions struct {
	IOStreams     *iostreams.IOStreams
	Logger        *logrus.Logger
	ConfigManager *config.ConfigManager
}

type CliOption func(*CliOptions) error

// WithDefaultLogger sets up the built in logger based on parameters
// found in the ConfigManager's Log settings.
func WithDefaultLogger() CliOption {
	return func(copts *CliOptions) error {
		if copts.Logger != nil {
			return nil
		}

		if copts.ConfigManager == nil {
			copts.Logger = log.L
			return nil
		}

		logger := logrus.New()

		switch log.LoggerTypeFromString(copts.ConfigManager.Config.Log.Type) {
		case log.QUIET:
			logger.Formatter = new(logrus.TextFormatter)

		case log.BASIC, log.FANCY:
			formatter := new(log.TextFormatter)
			formatter.FullTimestamp = true
			formatter.DisableTimestamp = true

			if copts.ConfigManager.Config.Log.Timestamps {
				formatter.DisableTimestamp = false
			} else {
				formatter.TimestampFormat = ">"
			}

			logger.Formatter = formatter

		case log.JSON:
			formatter := new(logrus.JSONFormatter)
			formatter.DisableTimestamp = !copts.ConfigManager.Config.Log.Timestamps
			logger.Formatter = formatter
		}

		level, ok := log.Levels()[copts.ConfigManager.Config.Log.Level]
		if !ok {
			logger.Level = logrus.InfoLevel
		} else {
			logger.Level = level
		}

		if copts.IOStreams != nil {
			logger.SetOutput(copts.IOStreams.Out)
		}

		copts.Logger = logger

		return nil
	}
}

// WithDefaultConfigManager instantiates a configuration manager based on
// the default configuration file location, then re-attributes command
// flags against it so that a non-standard `Paths.Config` directory (set
// by its flag or the environment) can redirect the manager to that
// directory before any subcommand runs.
func WithDefaultConfigManager(cmd *cobra.Command) CliOption {
	return func(copts *CliOptions) error {
		cfgm, err := config.NewConfigManager(
			config.WithFile(config.DefaultConfigFile(), true),
			config.WithEnv(),
		)
		if err != nil {
			return err
		}

		cmdfactory.AttributeFlags(cmd, cfgm.Config, os.Args...)

		if cpath := cfgm.Config.Paths.Config; cpath != "" && cpath != config.ConfigDir() {
			cfgm, err = config.NewConfigManager(
				config.WithFile(filepath.Join(cpath, "config.yaml"), true),
				config.WithEnv(),
			)
			if err != nil {
				return err
			}
		}

		copts.ConfigManager = cfgm

		return nil
	}
}

// WithDefaultIOStreams instantiates IO streams bound to the process's
// real stdio, applying the config manager's no-prompt setting.
func WithDefaultIOStreams() CliOption {
	return func(copts *CliOptions) error {
		if copts.IOStreams != nil {
			return nil
		}

		io := iostreams.System()

		if copts.ConfigManager != nil {
			if copts.ConfigManager.Config.NoPrompt {
				io.SetNeverPrompt(true)
			}
		}

		if pager, ok := os.LookupEnv("KCONFIG_PAGER"); ok {
			io.SetPager(pager)
		}

		copts.IOStreams = io

		return nil
	}
}
