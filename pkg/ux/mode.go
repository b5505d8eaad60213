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
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Mode controls how rich CLI output is.
type Mode string

const (
	// ModeRich enables colors, icons and boxes.
	ModeRich Mode = "rich"

	// ModeMinimal uses icons without colors or boxes.
	ModeMinimal Mode = "minimal"

	// ModeMachine prints plain key=value text for scripts.
	ModeMachine Mode = "machine"
)

// ModeEnv overrides mode detection.
const ModeEnv = "MEMEK_OUTPUT"

// ParseMode converts a string to a Mode. Unknown values give ModeRich.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minimal", "min", "m":
		return ModeMinimal
	case "machine", "plain", "quiet", "q":
		return ModeMachine
	default:
		return ModeRich
	}
}

// DetectMode picks the mode from MEMEK_OUTPUT, falling back to ModeMachine
// when stdout is not a terminal.
func DetectMode() Mode {
	if env := os.Getenv(ModeEnv); env != "" {
		return ParseMode(env)
	}
	if !IsTerminal(os.Stdout) {
		return ModeMachine
	}
	return ModeRich
}

// IsTerminal reports whether f is a terminal, including Cygwin/MSYS ptys.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
