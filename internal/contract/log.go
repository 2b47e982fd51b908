package contract

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	warnColor  = color.New(color.FgYellow)          // missing cells, skipped series
	errorColor = color.New(color.FgRed, color.Bold) // fatal conditions
)

// LogWarning logs a recoverable condition to stderr.
func LogWarning(format string, args ...any) {
	warnColor.Fprintf(os.Stderr, "⚠️  "+format+"\n", args...)
}

// LogError logs an error to stderr.
func LogError(msg string, err error) {
	errorColor.Fprintf(os.Stderr, "❌ %s: %v\n", msg, err)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	LogError(msg, err)
	os.Exit(1)
}

// LogInfo logs a progress message to stderr, keeping stdout clean for data.
func LogInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
