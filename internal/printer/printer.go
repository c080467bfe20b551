// Package printer writes human-facing status lines to the terminal. Log
// output goes through slog; these are the messages an operator reads.
package printer

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
)

// Success prints a green confirmation line.
func Success(format string, a ...any) {
	green.Printf("✓ "+format+"\n", a...)
}

// Info prints a plain informational line.
func Info(format string, a ...any) {
	fmt.Printf(format+"\n", a...)
}

// Step prints a cyan progress line for multi-step operations.
func Step(format string, a ...any) {
	cyan.Printf("→ "+format+"\n", a...)
}

// Warning prints a yellow warning line.
func Warning(format string, a ...any) {
	yellow.Printf("! "+format+"\n", a...)
}
