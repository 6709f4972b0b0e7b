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
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianForensics/services/forensic"
	"github.com/AleutianAI/AleutianForensics/services/forensic/loader"
	"github.com/AleutianAI/AleutianForensics/services/forensic/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Re-analyze FILE every time it changes",
		Long: `watch analyzes FILE once, then again after every change. Bursts of
writes are collapsed (see watch.debounce in the config). Errors in the file
are logged and watching continues. Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Output.Format
			}
			out, err := resolveFormat(format, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.watchFile(ctx, args[0], cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", "", "Output format: auto, text, json or yaml (default from config)")
	return cmd
}

// watchFile analyzes path now and after each change until ctx is done.
func (a *app) watchFile(ctx context.Context, path string, w io.Writer, format string) error {
	svc := forensic.NewService(forensic.DefaultServiceConfig(), a.logger.Slog())

	run := func(ctx context.Context) {
		ds, err := loader.ReadFile(path)
		if err != nil {
			a.logger.Warn("could not read input", "path", path, "error", err)
			return
		}
		report, err := svc.Analyze(ctx, ds)
		if err != nil {
			a.logger.Warn("analysis failed", "path", path, "error", err)
			return
		}
		report.Source = path
		if err := writeReports(w, format, []*forensic.Report{report}); err != nil {
			a.logger.Error("could not write report", "error", err)
		}
	}

	watcher, err := watch.New(path, func(ctx context.Context, c watch.Change) {
		a.logger.Info("input changed", "path", c.Path, "op", c.Op.String())
		run(ctx)
	}, &watch.Options{
		Debounce: a.cfg.Watch.Debounce,
		Logger:   a.logger.Slog(),
	})
	if err != nil {
		return err
	}

	run(ctx)
	return watcher.Run(ctx)
}
