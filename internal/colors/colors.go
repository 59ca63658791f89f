// Package colors provides color output utilities for the command line.
// It is used for messages printed before the daemon logger exists.
package colors

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Color constants
const (
	Red    = "\033[0;31m"
	Yellow = "\033[1;33m"
	Cyan   = "\033[0;36m"
	Reset  = "\033[0m"
)

var (
	debugEnabled = false
	writeMu      sync.Mutex
)

func init() {
	if val := os.Getenv("GAUDIBLE_DEBUG"); val == "true" || val == "1" {
		debugEnabled = true
	}
}

// SetDebug enables or disables debug output.
func SetDebug(enabled bool) {
	debugEnabled = enabled
}

func write(w io.Writer, color, label, msg string) {
	writeMu.Lock()
	defer writeMu.Unlock()
	if _, err := fmt.Fprintf(w, "%s%s%s %s%s\n", color, label, Reset, msg, Reset); err != nil {
		// last resort, never recurse
		fmt.Fprintf(os.Stderr, "%s %s\n", label, msg)
	}
}

// Error outputs an error message to stderr.
func Error(msgs ...string) {
	write(os.Stderr, Red, "Error:", strings.Join(msgs, " "))
}

// Warning outputs a warning message to stderr.
func Warning(msgs ...string) {
	write(os.Stderr, Yellow, "Warning:", strings.Join(msgs, " "))
}

// Debug outputs a debug message to stderr if debug is enabled.
func Debug(msgs ...string) {
	if !debugEnabled {
		return
	}
	write(os.Stderr, Cyan, "Debug:", strings.Join(msgs, " "))
}
