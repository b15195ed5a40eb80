// Package logger provides levelled logging for the Dossier CLI.
//
// Warnings and errors are always written: soft pipeline failures such as a
// page that could not be scraped are reported this way rather than returned.
// Debug, info and section output appear only in verbose mode (--verbose).
// Output goes to stderr so it never mixes with command results on stdout.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	quiet   bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetQuiet suppresses warnings. Errors are still written.
// Used by full-screen and stdio front ends that own the terminal.
func SetQuiet(q bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = q
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(levelDebug, "", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(levelInfo, "", format, args...)
}

// Warn prints a warning unless quiet mode is enabled.
func Warn(format string, args ...any) {
	write(levelWarn, "", format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	write(levelError, "", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Logger prefixes every message with a component name.
type Logger struct {
	component string
}

// Named returns a logger for a component, e.g. Named("scraper").
func Named(component string) *Logger {
	return &Logger{component: component}
}

// Debug prints a component message if verbose mode is enabled.
func (l *Logger) Debug(format string, args ...any) {
	write(levelDebug, l.component, format, args...)
}

// Info prints a component message if verbose mode is enabled.
func (l *Logger) Info(format string, args ...any) {
	write(levelInfo, l.component, format, args...)
}

// Warn prints a component warning unless quiet mode is enabled.
func (l *Logger) Warn(format string, args ...any) {
	write(levelWarn, l.component, format, args...)
}

// Error prints a component error.
func (l *Logger) Error(format string, args ...any) {
	write(levelError, l.component, format, args...)
}

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

var levelTags = map[level]string{
	levelDebug: "[DEBUG] ",
	levelInfo:  "[INFO] ",
	levelWarn:  "[WARN] ",
	levelError: "[ERROR] ",
}

func write(lvl level, component, format string, args ...any) {
	// Exclusive lock: writers such as bytes.Buffer are not concurrency safe.
	mu.Lock()
	defer mu.Unlock()

	switch lvl {
	case levelDebug, levelInfo:
		if !verbose {
			return
		}
	case levelWarn:
		if quiet {
			return
		}
	}

	prefix := levelTags[lvl]
	if component != "" {
		prefix += component + ": "
	}
	fmt.Fprintf(output, prefix+format+"\n", args...)
}
