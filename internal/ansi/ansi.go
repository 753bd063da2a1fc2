// Package ansi provides ANSI escape code constants and helpers for terminal output.
// All colored/styled terminal output should reference these constants to avoid duplication.
package ansi

import (
	"io"
	"os"
	"regexp"

	"github.com/mattn/go-isatty"
)

// Text styles and foreground colors.
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Blue    = "\033[34m"
	Yellow  = "\033[33m"
	Green   = "\033[32m"
	Red     = "\033[31m"
	Cyan    = "\033[36m"
	Magenta = "\033[35m"
)

var escapeRE = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

// Enabled reports whether w is a terminal that should receive escape codes.
// Setting NO_COLOR disables color regardless of the writer.
func Enabled(w io.Writer) bool {
	if _, off := os.LookupEnv("NO_COLOR"); off {
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Wrap surrounds s with the given styles and a trailing Reset.
// With no styles it returns s unchanged.
func Wrap(s string, styles ...string) string {
	if len(styles) == 0 {
		return s
	}
	var prefix string
	for _, st := range styles {
		prefix += st
	}
	return prefix + s + Reset
}

// Strip removes all escape sequences from s.
func Strip(s string) string {
	return escapeRE.ReplaceAllString(s, "")
}
