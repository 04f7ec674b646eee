// Package ui prints user-facing diagnostics with the conventional
// "Error:"/"Warning:" prefixes. Color is handled by fatih/color and degrades
// to plain text on non-terminals.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Out is the diagnostic stream; overridable in tests.
var Out io.Writer = os.Stderr

var (
	errPrefix  = color.New(color.FgRed, color.Bold).Sprint("Error:")
	warnPrefix = color.New(color.FgYellow, color.Bold).Sprint("Warning:")
)

func Errorf(format string, a ...any) {
	fmt.Fprintf(Out, "%s %s\n", errPrefix, fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) {
	fmt.Fprintf(Out, "%s %s\n", warnPrefix, fmt.Sprintf(format, a...))
}
