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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianForensics/pkg/ux"
	"github.com/AleutianAI/AleutianForensics/services/forensic"
)

// Output formats.
const (
	formatAuto = "auto"
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// resolveFormat turns "auto" into text for a terminal and JSON otherwise.
func resolveFormat(format string, w io.Writer) (string, error) {
	switch format {
	case formatText, formatJSON, formatYAML:
		return format, nil
	case formatAuto, "":
		if isTerminal(w) {
			return formatText, nil
		}
		return formatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want auto, text, json or yaml)", format)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// writeReports writes reports in format. JSON output is a single object for
// one report and an array otherwise; YAML output is one document per report.
func writeReports(w io.Writer, format string, reports []*forensic.Report) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(reports) == 1 {
			return enc.Encode(reports[0])
		}
		return enc.Encode(reports)

	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, r := range reports {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return enc.Close()

	case formatText:
		for i, r := range reports {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if err := writeText(w, r); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// writeText renders one report for a human reader. Styling is applied only
// when w is a terminal.
func writeText(w io.Writer, r *forensic.Report) error {
	p := ux.NewPrinter(w, printerMode(w))

	title := r.Source
	if title == "" {
		title = "analysis"
	}
	p.Title(fmt.Sprintf("== %s (run %s)", title, r.RunID))
	p.Info(fmt.Sprintf("Profiles: %d  flagged: %d  unmarked: %d  tree height: %d  (%d ms)",
		r.Total, r.Flagged, r.Unmarked, r.TreeHeight, r.DurationMs))

	if len(r.Suspects) == 0 {
		p.Success("No profile matches the unknown sequences.")
	} else {
		p.Warning("Suspects:")
		tw := tabwriter.NewWriter(p.Writer(), 0, 4, 2, ' ', 0)
		for _, s := range r.Suspects {
			name := s.Name
			if p.Mode() == ux.ModeRich {
				name = ux.Styles.Highlight.Render(name)
			}
			fmt.Fprintf(tw, "  %s\t%d/%d hits\t%s\n", name, s.Hits, len(s.Markers), markerSummary(s))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(r.UnmarkedNames) > 0 {
		p.Muted("Removed: " + strings.Join(r.UnmarkedNames, "; "))
	}
	return nil
}

// printerMode styles output for terminals only.
func printerMode(w io.Writer) ux.Mode {
	if isTerminal(w) {
		return ux.ModeRich
	}
	return ux.ModePlain
}

// markerSummary renders "AGAT 2=2 TCTG 9!=3".
func markerSummary(s forensic.Suspect) string {
	if len(s.Markers) == 0 {
		return "(no markers)"
	}
	parts := make([]string, 0, len(s.Markers))
	for _, m := range s.Markers {
		op := "="
		if !m.Hit {
			op = "!="
		}
		parts = append(parts, fmt.Sprintf("%s %d%s%d", m.Pattern, m.Expected, op, m.Observed))
	}
	return strings.Join(parts, " ")
}

// writeNames writes one name per line, or a JSON/YAML list.
func writeNames(w io.Writer, format string, names []string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(names)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(names); err != nil {
			return err
		}
		return enc.Close()
	case formatText:
		for _, n := range names {
			if _, err := fmt.Fprintln(w, n); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
