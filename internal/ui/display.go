// Package ui provides the interactive terminal surface: prompts, status
// lines, and progress display.
package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

// Init configures the UI color settings.
func Init(noColor bool) {
	if noColor {
		color.NoColor = true
	}
}

// Info prints a plain status line.
func Info(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}

// Success prints a green status line.
func Success(format string, args ...interface{}) {
	successColor.Fprintf(os.Stdout, "✓ "+format+"\n", args...)
}

// Warn prints a yellow status line.
func Warn(format string, args ...interface{}) {
	warnColor.Fprintf(os.Stdout, "! "+format+"\n", args...)
}

// Error prints a red status line to stderr.
func Error(format string, args ...interface{}) {
	errorColor.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}
