// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command forensic finds the people whose DNA profiles match two unknown
// sequences.
//
// An input file holds the two unknown sequences, the number of people and
// one record per person:
//
//	AGATAGAT
//	TCTGTCTGTCTG
//	2
//	Ada Mills 2 AGAT 2 TCTG 3
//	Jane Doe 2 AGAT 4 TCTG 1
//
// Usage:
//
//	forensic analyze case.txt
//	forensic analyze --format json a.txt b.txt
//	forensic unmarked case.txt
//	forensic watch case.txt
//	forensic serve --port 8087
//	forensic config init
//
// Example requests against "forensic serve":
//
//	# Health check
//	curl http://localhost:8087/v1/forensic/health
//
//	# Analyze a file in the text format
//	curl -X POST http://localhost:8087/v1/forensic/analyze \
//	  -H "Content-Type: text/plain" --data-binary @case.txt
package main

import (
	"errors"
	"os"

	"github.com/AleutianAI/AleutianForensics/pkg/ux"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, errFindings) {
			os.Exit(CLIExitFindings)
		}
		ux.NewPrinter(os.Stderr, printerMode(os.Stderr)).Error("Error: " + err.Error())
		os.Exit(CLIExitError)
	}
}
