// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux provides terminal output styling for the memek CLI.
package ux

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette: purple resonance tones.
var (
	ColorPrimary = lipgloss.Color("#A66CFF")
	ColorAccent  = lipgloss.Color("#E5B8F4")
	ColorDeep    = lipgloss.Color("#5B2A86")
	ColorSlate   = lipgloss.Color("#6C6A80")

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorSuper   = lipgloss.Color("#FF4FD8")
)

// Styles provides pre-configured lipgloss styles.
var Styles = struct {
	Title   lipgloss.Style
	Key     lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Super   lipgloss.Style
	Box     lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
	Key:     lipgloss.NewStyle().Foreground(ColorAccent),
	Muted:   lipgloss.NewStyle().Foreground(ColorSlate),
	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning: lipgloss.NewStyle().Foreground(ColorWarning),
	Error:   lipgloss.NewStyle().Foreground(ColorError),
	Super:   lipgloss.NewStyle().Bold(true).Foreground(ColorSuper),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDeep).
		Padding(0, 1),
}

// Icon is a status glyph.
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconArrow   Icon = "→"
	IconSpark   Icon = "✦"
)

// Field is one labelled value in a Record block.
type Field struct {
	Key   string
	Value any
}

// Printer writes styled output. Errors and warnings go to Err.
type Printer struct {
	Out  io.Writer
	Err  io.Writer
	Mode Mode
}

// NewPrinter writes to stdout/stderr in the detected mode.
func NewPrinter() *Printer {
	return &Printer{Out: os.Stdout, Err: os.Stderr, Mode: DetectMode()}
}

func (p *Printer) line(w io.Writer, icon Icon, style lipgloss.Style, prefix, text string) {
	switch p.Mode {
	case ModeMachine:
		fmt.Fprintf(w, "%s: %s\n", prefix, text)
	case ModeMinimal:
		fmt.Fprintf(w, "%s %s\n", icon, text)
	default:
		fmt.Fprintf(w, "%s %s\n", style.Render(string(icon)), style.Render(text))
	}
}

// Success prints a completed action.
func (p *Printer) Success(format string, args ...any) {
	p.line(p.Out, IconSuccess, Styles.Success, "OK", fmt.Sprintf(format, args...))
}

// Warning prints a recoverable problem to Err.
func (p *Printer) Warning(format string, args ...any) {
	p.line(p.Err, IconWarning, Styles.Warning, "WARN", fmt.Sprintf(format, args...))
}

// Error prints a failure to Err.
func (p *Printer) Error(format string, args ...any) {
	p.line(p.Err, IconError, Styles.Error, "ERROR", fmt.Sprintf(format, args...))
}

// Info prints a plain line. Machine mode prints it unadorned.
func (p *Printer) Info(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	if p.Mode == ModeMachine {
		fmt.Fprintln(p.Out, text)
		return
	}
	fmt.Fprintf(p.Out, "%s %s\n", Styles.Muted.Render(string(IconArrow)), text)
}

// Record prints a titled block of fields. Machine mode prints one
// key=value per line with the title as a comment-free prefix.
func (p *Printer) Record(title string, fields ...Field) {
	if p.Mode == ModeMachine {
		for _, f := range fields {
			fmt.Fprintf(p.Out, "%s=%v\n", machineKey(f.Key), f.Value)
		}
		return
	}

	width := 0
	for _, f := range fields {
		if len(f.Key) > width {
			width = len(f.Key)
		}
	}
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('\n')
		}
		key := fmt.Sprintf("%-*s", width, f.Key)
		if p.Mode == ModeRich {
			key = Styles.Key.Render(key)
		}
		fmt.Fprintf(&b, "%s  %v", key, f.Value)
	}

	if p.Mode == ModeMinimal {
		fmt.Fprintf(p.Out, "%s\n%s\n", title, b.String())
		return
	}
	fmt.Fprintln(p.Out, Styles.Box.Render(Styles.Title.Render(title)+"\n"+b.String()))
}

// Tier renders a reward tier label. Super gets its own style.
func (p *Printer) Tier(tier string) string {
	if p.Mode != ModeRich {
		return tier
	}
	if strings.EqualFold(tier, "super") {
		return Styles.Super.Render(string(IconSpark) + " " + tier)
	}
	return Styles.Success.Render(tier)
}

func machineKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(k)), " ", "_")
}
