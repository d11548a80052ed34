// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	ColorAccent  = lipgloss.Color("#2CD7C7")
	ColorPrimary = lipgloss.Color("#20B9B4")
	ColorBorder  = lipgloss.Color("#16858E")

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorMuted   = lipgloss.Color("#5B7A84")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title    lipgloss.Style
	Location lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Box      lipgloss.Style
}{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
	Location: lipgloss.NewStyle().Foreground(ColorPrimary),
	Muted:    lipgloss.NewStyle().Foreground(ColorMuted),
	Success:  lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:  lipgloss.NewStyle().Foreground(ColorWarning),
	Error:    lipgloss.NewStyle().Foreground(ColorError),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconBullet  Icon = "•"
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
		return Styles.Muted.Render(string(i))
	}
}

// Printer writes command output at a PersonalityLevel.
//
// Machine output is exactly the text passed in; rich output adds color
// and icons around it.
type Printer struct {
	w     io.Writer
	level PersonalityLevel
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, level PersonalityLevel) *Printer {
	return &Printer{w: w, level: level}
}

// Rich reports whether styling is enabled.
func (p *Printer) Rich() bool {
	return p.level == PersonalityRich
}

// Title prints a heading. Machine output uses "== text ==".
func (p *Printer) Title(text string) {
	if !p.Rich() {
		fmt.Fprintf(p.w, "== %s ==\n", text)
		return
	}
	fmt.Fprintln(p.w, Styles.Title.Render(text))
}

// Line prints text unchanged.
func (p *Printer) Line(text string) {
	fmt.Fprintln(p.w, text)
}

// Success prints a positive informational outcome.
func (p *Printer) Success(text string) {
	if !p.Rich() {
		fmt.Fprintln(p.w, text)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
}

// Notice prints a neutral informational outcome.
func (p *Printer) Notice(text string) {
	if !p.Rich() {
		fmt.Fprintln(p.w, text)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", IconBullet.Render(), Styles.Muted.Render(text))
}

// Finding prints one located message, e.g. "  3:1   Code before strictures".
func (p *Printer) Finding(line, column int, message string) {
	loc := fmt.Sprintf("%5d:%-4d", line, column)
	if !p.Rich() {
		fmt.Fprintf(p.w, "%s %s\n", loc, message)
		return
	}
	fmt.Fprintf(p.w, "%s %s %s\n", IconWarning.Render(), Styles.Location.Render(loc), message)
}

// Status prints a check line for "perlkit doctor".
func (p *Printer) Status(ok bool, name, detail string) {
	if !p.Rich() {
		state := "ok"
		if !ok {
			state = "missing"
		}
		fmt.Fprintf(p.w, "%-12s %-8s %s\n", name, state, detail)
		return
	}
	icon := IconSuccess
	if !ok {
		icon = IconError
	}
	fmt.Fprintf(p.w, "%s %s %s\n", icon.Render(), Styles.Title.Render(fmt.Sprintf("%-12s", name)), Styles.Muted.Render(detail))
}

// Summary prints a totals line.
func (p *Printer) Summary(files, findings int) {
	if !p.Rich() {
		fmt.Fprintf(p.w, "%d finding(s) in %d file(s)\n", findings, files)
		return
	}
	fmt.Fprintf(p.w, "\n%s %s  %s %s\n",
		Styles.Warning.Render(fmt.Sprintf("%d", findings)), Styles.Muted.Render("findings"),
		Styles.Title.Render(fmt.Sprintf("%d", files)), Styles.Muted.Render("files"),
	)
}

// Box prints content in a rounded box; machine output prints it as is.
func (p *Printer) Box(title, content string) {
	if !p.Rich() {
		if title != "" {
			p.Title(title)
		}
		fmt.Fprintln(p.w, content)
		return
	}
	body := content
	if title != "" {
		body = Styles.Title.Render(title) + "\n" + content
	}
	fmt.Fprintln(p.w, Styles.Box.Render(body))
}
