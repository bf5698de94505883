package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/routelens/internal/errors"
)

// ErrorReporter prints command failures with their location, context and suggestions
type ErrorReporter struct {
	out     io.Writer
	verbose bool
}

// NewErrorReporter creates a new error reporter
func NewErrorReporter(out io.Writer, verbose bool) *ErrorReporter {
	return &ErrorReporter{out: out, verbose: verbose}
}

// ReportError prints err. Every error collected in a MultipleErrors is reported
// on its own.
func (r *ErrorReporter) ReportError(err error) {
	if err == nil {
		return
	}

	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) && len(multi.Errors) > 1 {
		for _, e := range multi.Errors {
			r.ReportError(e)
		}
		return
	}

	var rlErr errors.RoutelensError
	if !stderrors.As(err, &rlErr) {
		r.header("Error")
		fmt.Fprintf(r.out, "%s\n", err.Error())
		return
	}

	r.header(rlErr.ErrorCode().String())
	fmt.Fprintf(r.out, "%s\n", err.Error())

	if loc := rlErr.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "  Location: %s\n", loc)
	}
	r.printContext(rlErr.Context())
	r.printSuggestions(rlErr.Suggestions())

	if r.verbose {
		r.printChain(rlErr.Unwrap())
	}
}

func (r *ErrorReporter) header(kind string) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprintf(r.out, "%s: ", kind)
}

// printContext prints context entries in key order
func (r *ErrorReporter) printContext(context map[string]any) {
	if len(context) == 0 {
		return
	}
	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(r.out, "  %s: %v\n", formatContextKey(key), context[key])
	}
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

func (r *ErrorReporter) printSuggestions(suggestions []string) {
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintf(r.out, "  Suggestions:\n")
	for i, suggestion := range suggestions {
		fmt.Fprintf(r.out, "    %d. %s\n", i+1, suggestion)
	}
}

// printChain prints the wrapped causes, innermost last
func (r *ErrorReporter) printChain(err error) {
	level := 1
	for err != nil {
		fmt.Fprintf(r.out, "  cause %d: %s\n", level, err.Error())
		err = stderrors.Unwrap(err)
		level++
	}
}
