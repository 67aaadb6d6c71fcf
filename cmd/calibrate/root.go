// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

package main

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/calibrec/internal/config"
	"github.com/tomtom215/calibrec/internal/logging"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Calibrec - calibrated recommendation re-ranking",
		Long: `Calibrate re-ranks upstream candidate lists so that the class mix of each
user's final list matches the mix of that user's preference history.

Inputs and outputs are CSV, TSV, Parquet, JSON or NDJSON tables chosen by
file extension. Settings come from a YAML file, CALIBREC_* environment
variables and flags, in increasing precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format (json, console)")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newDistributionsCmd(opts),
		newCodesCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// loadConfig layers the persistent flags over config.Load, applies the
// command's own overrides and initializes logging. Validation runs after
// every override so flag values are checked like file values.
func (o *globalOptions) loadConfig(cmd *cobra.Command, override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = o.logFormat
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    cmd.ErrOrStderr(),
	})
	return cfg, nil
}
