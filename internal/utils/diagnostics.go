package utils

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/toyz/routelens/pkg/routelens"
)

// DiagnosticLevel represents the level of diagnostic output
type DiagnosticLevel int

const (
	DiagnosticSilent DiagnosticLevel = iota
	DiagnosticError
	DiagnosticWarn
	DiagnosticInfo
	DiagnosticVerbose
	DiagnosticDebug
)

// ParseDiagnosticLevel maps a verbosity name to a level. Unknown names give info.
func ParseDiagnosticLevel(name string) DiagnosticLevel {
	switch strings.ToLower(name) {
	case "silent":
		return DiagnosticSilent
	case "quiet", "error":
		return DiagnosticError
	case "warn", "warning":
		return DiagnosticWarn
	case "verbose":
		return DiagnosticVerbose
	case "debug":
		return DiagnosticDebug
	default:
		return DiagnosticInfo
	}
}

// DiagnosticSystem provides structured, user-friendly terminal output
type DiagnosticSystem struct {
	level     DiagnosticLevel
	useColors bool
	showTime  bool
	output    io.Writer
	errorOut  io.Writer
	indent    int
}

// NewDiagnosticSystemWithWriters creates a diagnostic system on explicit writers
func NewDiagnosticSystemWithWriters(level DiagnosticLevel, output, errorOut io.Writer, useColors bool) *DiagnosticSystem {
	return &DiagnosticSystem{
		level:     level,
		useColors: useColors,
		showTime:  level >= DiagnosticVerbose,
		output:    output,
		errorOut:  errorOut,
	}
}

// Level returns the configured output level
func (d *DiagnosticSystem) Level() DiagnosticLevel {
	return d.level
}

// Error outputs error messages (always shown unless silent)
func (d *DiagnosticSystem) Error(format string, args ...any) {
	if d.level >= DiagnosticError {
		d.writeMessage(d.errorOut, "ERROR", d.paint(color.FgRed), format, args...)
	}
}

// Warn outputs warning messages
func (d *DiagnosticSystem) Warn(format string, args ...any) {
	if d.level >= DiagnosticWarn {
		d.writeMessage(d.errorOut, "WARN", d.paint(color.FgYellow), format, args...)
	}
}

// Info outputs informational messages
func (d *DiagnosticSystem) Info(format string, args ...any) {
	if d.level >= DiagnosticInfo {
		d.writeMessage(d.errorOut, "INFO", d.paint(color.FgBlue), format, args...)
	}
}

// Verbose outputs detailed messages (verbose mode only)
func (d *DiagnosticSystem) Verbose(format string, args ...any) {
	if d.level >= DiagnosticVerbose {
		d.writeMessage(d.errorOut, "VERBOSE", d.paint(color.FgHiBlack), format, args...)
	}
}

// Debug outputs debug messages (highest verbosity)
func (d *DiagnosticSystem) Debug(format string, args ...any) {
	if d.level >= DiagnosticDebug {
		d.writeMessage(d.errorOut, "DEBUG", d.paint(color.FgMagenta), format, args...)
	}
}

// Section creates a prominent section header
func (d *DiagnosticSystem) Section(title string) {
	if d.level >= DiagnosticInfo {
		d.paint(color.FgCyan, color.Bold).Fprintf(d.errorOut, "%s\n", title)
	}
}

// Indent increases the indentation level
func (d *DiagnosticSystem) Indent() {
	d.indent++
}

// Unindent decreases the indentation level
func (d *DiagnosticSystem) Unindent() {
	if d.indent > 0 {
		d.indent--
	}
}

// Summary outputs a final summary, keys in sorted order
func (d *DiagnosticSystem) Summary(title string, stats map[string]any) {
	if d.level < DiagnosticInfo {
		return
	}
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(d.errorOut, "\n%s\n", title)
	for _, key := range keys {
		fmt.Fprintf(d.errorOut, "   %s: %v\n", key, stats[key])
	}
}

// Finding prints one route diagnostic as "file:line:col: severity CODE message".
// Findings are results, not progress, so they go to the main output at every
// level above silent.
func (d *DiagnosticSystem) Finding(diag routelens.Diagnostic) {
	if d.level < DiagnosticError {
		return
	}

	severity := d.paint(color.FgBlue)
	switch diag.Severity {
	case routelens.SeverityError:
		severity = d.paint(color.FgRed, color.Bold)
	case routelens.SeverityWarning:
		severity = d.paint(color.FgYellow, color.Bold)
	}

	fmt.Fprintf(d.output, "%s%s:%d:%d: %s %s %s\n",
		d.getIndent(),
		diag.File, diag.Line, diag.Column,
		severity.Sprint(diag.Severity.String()),
		d.paint(color.Faint).Sprint(diag.Code),
		diag.Message,
	)
}

// paint returns a color honoring this system's color setting rather than the
// process-wide default
func (d *DiagnosticSystem) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if d.useColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (d *DiagnosticSystem) writeMessage(writer io.Writer, level string, c *color.Color, format string, args ...any) {
	var output strings.Builder
	output.WriteString(d.getIndent())

	if d.showTime {
		output.WriteString(time.Now().Format("15:04:05 "))
	}
	output.WriteString(c.Sprintf("[%s]", level))
	output.WriteString(" ")
	output.WriteString(fmt.Sprintf(format, args...))
	output.WriteString("\n")

	fmt.Fprint(writer, output.String())
}

func (d *DiagnosticSystem) getIndent() string {
	return strings.Repeat("  ", d.indent)
}

// ColorEnabled reports whether terminal output should be coloured. NO_COLOR and
// FORCE_COLOR take precedence over terminal detection.
func ColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	return !color.NoColor
}
