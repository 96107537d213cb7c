package logger

import (
	"github.com/fatih/color" // Colored console output for launcher status lines
)

// Colorized printing functions for the launcher's own status lines.
// Output relayed from child processes never goes through these; it is
// written verbatim so the user sees exactly what npm and friends print.

// Info logs progress and success messages in green.
var Info = color.New(color.FgGreen).PrintfFunc()

// Warn logs non-fatal problems (missing template, shortcut failure) in bright magenta.
var Warn = color.New(color.FgHiMagenta).PrintfFunc()

// Error logs fatal problems in red.
var Error = color.New(color.FgRed).PrintfFunc()

// Step announces the start of a launch stage.
var Step = color.New(color.Bold, color.FgCyan).PrintfFunc()

// Debug logs debug messages in cyan if enabled, otherwise is a no-op.
// Init swaps the implementation depending on the --debug flag.
var Debug = func(format string, a ...any) {}

// Init enables or disables debug output and colors.
// When noColor is set every level prints plain text, which is also what
// fatih/color does on its own when stdout is not a terminal.
func Init(enableDebug, noColor bool) {
	if noColor {
		color.NoColor = true
	}
	if enableDebug {
		Debug = color.New(color.FgCyan).PrintfFunc()
	} else {
		Debug = func(format string, a ...any) {}
	}
}
