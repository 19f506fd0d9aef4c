// Package ui holds terminal presentation helpers shared by the CLI and
// the notice writer.
package ui

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	// Styles used across the console. color honors its package-level
	// NoColor flag, which Configure sets from the environment.
	ErrorLabel = color.New(color.FgRed, color.Bold)
	InfoLabel  = color.New(color.FgCyan)
	Accent     = color.New(color.FgBlue)
	Muted      = color.New(color.Faint)
)

// ShouldUseColor returns true when ANSI colors should be used on stdout.
func ShouldUseColor() bool {
	return colorPolicy(os.Getenv, term.IsTerminal(int(os.Stdout.Fd())))
}

// colorPolicy resolves the color conventions in precedence order:
// NO_COLOR (https://no-color.org, any non-empty value disables), then
// CLICOLOR_FORCE=1 (color even without a TTY), then CLICOLOR=0
// (disable), then whether stdout is a terminal.
func colorPolicy(env func(string) string, tty bool) bool {
	if env("NO_COLOR") != "" {
		return false
	}
	switch {
	case strings.TrimSpace(env("CLICOLOR_FORCE")) == "1":
		return true
	case strings.TrimSpace(env("CLICOLOR")) == "0":
		return false
	}
	return tty
}

// Configure applies the color policy for the process. forceOff wins over
// everything (the --no-color flag).
func Configure(forceOff bool) {
	color.NoColor = forceOff || !ShouldUseColor()
}
