// Package ui provides colored terminal output and the interactive prompts
// the deployment workflow blocks on.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	infoPrefix    = color.New(color.FgHiBlue).Sprint("i")
	successPrefix = color.New(color.FgHiGreen).Sprint("✓")
	warningPrefix = color.New(color.FgHiYellow).Sprint("⚠")
	errorPrefix   = color.New(color.FgHiRed).Sprint("✗")
	cyan          = color.New(color.FgHiCyan).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
)

// UI writes workflow messages to the terminal. Prompts and informational
// output go to Out; warnings and errors go to ErrOut.
type UI struct {
	Out    io.Writer
	ErrOut io.Writer
}

// New creates a UI bound to stdout/stderr.
func New() *UI {
	return &UI{Out: os.Stdout, ErrOut: os.Stderr}
}

func (u *UI) Info(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", infoPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Success(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Warning(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Error(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", errorPrefix, fmt.Sprintf(format, a...))
}

// Plain writes a line with no prefix, for lists and playbook text.
func (u *UI) Plain(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s\n", fmt.Sprintf(format, a...))
}

// Cyan returns a cyan-colored string for emphasizing refs and SHAs.
func Cyan(s string) string { return cyan(s) }

// Yellow returns a yellow-colored string for destructive-action warnings.
func Yellow(s string) string { return yellow(s) }
