// Package logger provides leveled, colorized printf-style logging on stderr.
package logger

import (
	"io"
	"os"

	"github.com/fatih/color"
)

// Info logs informational messages in green.
var Info func(format string, a ...interface{})

// Warn logs warnings in bright magenta.
var Warn func(format string, a ...interface{})

// Error logs errors in red.
var Error func(format string, a ...interface{})

// Debug logs debug messages in cyan when enabled, otherwise it is a no-op.
var Debug func(format string, a ...interface{})

func init() {
	Init(false, os.Stderr)
}

// Init points every level at w and turns debug logging on or off.
func Init(enableDebug bool, w io.Writer) {
	Info = printer(w, color.FgGreen)
	Warn = printer(w, color.FgHiMagenta)
	Error = printer(w, color.FgRed)
	if enableDebug {
		Debug = printer(w, color.FgCyan)
	} else {
		Debug = func(format string, a ...interface{}) {}
	}
}

func printer(w io.Writer, attr color.Attribute) func(format string, a ...interface{}) {
	fprintf := color.New(attr).FprintfFunc()
	return func(format string, a ...interface{}) {
		fprintf(w, format, a...)
	}
}
