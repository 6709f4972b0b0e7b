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
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianForensics/services/forensic"
	"github.com/AleutianAI/AleutianForensics/services/forensic/database"
	"github.com/AleutianAI/AleutianForensics/services/forensic/loader"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		format         string
		failOnSuspects bool
		parallel       int
	)

	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Flag matching profiles and remove everyone else",
		Long: `analyze runs a full analysis on each FILE: load every profile, flag the
ones that match the two unknown sequences, list the unmarked people in level
order and remove them. Files are analyzed concurrently; each gets its own
database.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Output.Format
			}
			out, err := resolveFormat(format, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			reports, err := a.analyzeFiles(cmd.Context(), args, parallel)
			if err != nil {
				return err
			}
			if err := writeReports(cmd.OutOrStdout(), out, reports); err != nil {
				return err
			}

			if failOnSuspects {
				for _, r := range reports {
					if r.Flagged > 0 {
						return errFindings
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", "", "Output format: auto, text, json or yaml (default from config)")
	cmd.Flags().BoolVar(&failOnSuspects, "fail-on-suspects", false,
		fmt.Sprintf("Exit with status %d if any profile is flagged", CLIExitFindings))
	cmd.Flags().IntVar(&parallel, "parallel", 0, "Files analyzed at once (default GOMAXPROCS)")
	return cmd
}

// analyzeFiles analyzes paths concurrently and returns reports in argument
// order. The first failure cancels the rest.
func (a *app) analyzeFiles(ctx context.Context, paths []string, parallel int) ([]*forensic.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if parallel <= 0 {
		parallel = runtime.GOMAXPROCS(0)
	}

	reports := make([]*forensic.Report, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i, path := range paths {
		g.Go(func() error {
			ds, err := loader.ReadFile(path)
			if err != nil {
				return err
			}
			svc := forensic.NewService(forensic.DefaultServiceConfig(), a.logger.With("source", path).Slog())
			report, err := svc.Analyze(ctx, ds)
			if err != nil {
				return fmt.Errorf("analyze %s: %w", path, err)
			}
			report.Source = path
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func newUnmarkedCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "unmarked FILE",
		Short: "List the people who do not match, in level order",
		Long: `unmarked loads FILE, flags matching profiles and prints the names that
were not flagged in level order (root first, left before right). Nothing is
removed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Output.Format
			}
			out, err := resolveFormat(format, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			names, err := a.unmarkedNames(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeNames(cmd.OutOrStdout(), out, names)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", "", "Output format: auto, text, json or yaml (default from config)")
	return cmd
}

// unmarkedNames loads path into a database, flags it and returns the
// unmarked names without cleaning up.
func (a *app) unmarkedNames(ctx context.Context, path string) ([]string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ds, err := loader.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	db := database.New(database.WithLogger(a.logger.Slog()))
	if err := db.Load(ctx, ds.Records(), ds.FirstSequence, ds.SecondSequence); err != nil {
		return nil, err
	}
	db.Flag(ctx)
	return db.UnmarkedNames(), nil
}
