// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output styling for the forensic CLI.
package ux

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Aleutian color palette - deep ocean teals and arctic waters
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7") // Bright teal - highlights, success
	ColorTealPrimary = lipgloss.Color("#20B9B4") // Primary teal - main brand color
	ColorSlate       = lipgloss.Color("#2C4A54") // Slate - muted text, borders

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorTealPrimary),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorTealBright).Bold(true),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

// Mode selects how a Printer renders.
type Mode string

const (
	// ModeRich adds colors and icons.
	ModeRich Mode = "rich"

	// ModePlain writes the text unchanged, for pipes and scripts.
	ModePlain Mode = "plain"
)

// Printer writes styled lines to one writer.
//
// # Description
//
// In ModePlain every method writes its text exactly as given followed by a
// newline, so plain output stays stable for parsing. ModeRich decorates the
// same text with the package Styles.
//
// # Thread Safety
//
// Not safe for concurrent use; the underlying writer decides.
type Printer struct {
	w    io.Writer
	mode Mode
}

// NewPrinter returns a Printer for w. An unknown mode is treated as plain.
func NewPrinter(w io.Writer, mode Mode) *Printer {
	if mode != ModeRich {
		mode = ModePlain
	}
	return &Printer{w: w, mode: mode}
}

// Mode returns the render mode.
func (p *Printer) Mode() Mode {
	return p.mode
}

// Writer returns the underlying writer for unstyled blocks such as tables.
func (p *Printer) Writer() io.Writer {
	return p.w
}

func (p *Printer) rich() bool {
	return p.mode == ModeRich
}

// Title prints a styled title
func (p *Printer) Title(text string) {
	if p.rich() {
		text = Styles.Title.Render(text)
	}
	fmt.Fprintln(p.w, text)
}

// Info prints an informational line
func (p *Printer) Info(text string) {
	if p.rich() {
		fmt.Fprintf(p.w, "%s %s\n", Styles.Muted.Render("│"), text)
		return
	}
	fmt.Fprintln(p.w, text)
}

// Muted prints secondary text
func (p *Printer) Muted(text string) {
	if p.rich() {
		text = Styles.Muted.Render(text)
	}
	fmt.Fprintln(p.w, text)
}

// Success prints a success message with checkmark
func (p *Printer) Success(text string) {
	if p.rich() {
		fmt.Fprintf(p.w, "%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
		return
	}
	fmt.Fprintln(p.w, text)
}

// Warning prints a warning message
func (p *Printer) Warning(text string) {
	if p.rich() {
		fmt.Fprintf(p.w, "%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
		return
	}
	fmt.Fprintln(p.w, text)
}

// Error prints an error message
func (p *Printer) Error(text string) {
	if p.rich() {
		fmt.Fprintf(p.w, "%s %s\n", IconError.Render(), Styles.Error.Render(text))
		return
	}
	fmt.Fprintln(p.w, text)
}
