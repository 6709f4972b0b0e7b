// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianForensics/pkg/logging"
	"github.com/AleutianAI/AleutianForensics/services/forensic/config"
)

// Exit codes for CLI commands.
const (
	CLIExitSuccess  = 0 // Operation completed successfully
	CLIExitFindings = 1 // Analysis completed and --fail-on-suspects found suspects
	CLIExitError    = 2 // Operation failed
)

// errFindings is returned when --fail-on-suspects is set and a run flagged
// anyone. main maps it to CLIExitFindings without printing.
var errFindings = errors.New("suspects found")

// annotationConfigOptional marks commands that run on defaults when the
// config file is broken.
const annotationConfigOptional = "forensic/config-optional"

// app is the state shared by every command after PersistentPreRunE.
type app struct {
	// flags
	configPath string
	logLevel   string
	jsonLogs   bool

	// resolved
	cfgPath string
	cfg     config.ForensicConfig
	logger  *logging.Logger
}

// newRootCmd builds the command tree. Each call returns an independent tree.
func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "forensic",
		Short: "Match DNA profiles against unknown sequences",
		Long: `forensic loads a database of STR marker profiles, flags everyone whose
profile matches two unknown DNA sequences and removes everyone else.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "",
		"Config file (default ~/.aleutian/forensic.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		"Log level: debug, info, warn or error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&a.jsonLogs, "json", false,
		"Write logs as JSON")

	rootCmd.AddCommand(
		newAnalyzeCmd(a),
		newUnmarkedCmd(a),
		newServeCmd(a),
		newWatchCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// setup loads the config and builds the logger.
//
// Precedence, lowest first: defaults, config file, FORENSIC_* environment,
// command-line flags.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	path := a.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	a.cfgPath = path

	cfg, loadErr := config.Load(path)
	if loadErr != nil {
		if cmd.Annotations[annotationConfigOptional] != "true" {
			return loadErr
		}
		cfg = config.DefaultConfig()
	}

	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if cmd.Flags().Changed("json") {
		cfg.Logging.JSON = a.jsonLogs
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}

	a.cfg = cfg
	a.logger = logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: "forensic",
		JSON:    cfg.Logging.JSON,
		Output:  cmd.ErrOrStderr(),
	})
	slog.SetDefault(a.logger.Slog())

	if loadErr != nil {
		a.logger.Warn("config ignored, using defaults", "path", path, "error", loadErr)
	}
	a.logger.Debug("config loaded", "path", path)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Annotations: map[string]string{
			annotationConfigOptional: "true",
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "forensic %s\n", version)
		},
	}
}
