package errors

import (
	"fmt"
	"strings"
)

// RoutelensError is implemented by every error the CLI and server report
type RoutelensError interface {
	error
	ErrorCode() ErrorCode
	Location() SourceLocation
	Context() map[string]any
	Suggestions() []string
	Unwrap() error
}

// ErrorCode classifies a failure; the CLI derives its exit status from it
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota
	ConfigurationErrorCode
	FileSystemErrorCode
	InputErrorCode
	ServerErrorCode
)

func (e ErrorCode) String() string {
	switch e {
	case ConfigurationErrorCode:
		return "ConfigurationError"
	case FileSystemErrorCode:
		return "FileSystemError"
	case InputErrorCode:
		return "InputError"
	case ServerErrorCode:
		return "ServerError"
	default:
		return "UnknownError"
	}
}

// SourceLocation points into an analysed document. Line and Column are 1-based
// and zero when unknown.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

func (s SourceLocation) String() string {
	switch {
	case s.File == "":
		return "unknown location"
	case s.Line == 0:
		return s.File
	case s.Column == 0:
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// IsEmpty reports whether no file is known
func (s SourceLocation) IsEmpty() bool {
	return s.File == ""
}

// BaseError is the RoutelensError every constructor in this package returns.
// The With* methods modify the error in place and return it for chaining.
type BaseError struct {
	Code    ErrorCode
	Message string
	Where   SourceLocation
	Cause   error
	Fields  map[string]any
	Hints   []string
}

// Error renders "location: message: cause", leaving out the parts that are unset
func (e *BaseError) Error() string {
	var b strings.Builder
	if !e.Where.IsEmpty() {
		b.WriteString(e.Where.String())
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *BaseError) ErrorCode() ErrorCode     { return e.Code }
func (e *BaseError) Location() SourceLocation { return e.Where }
func (e *BaseError) Suggestions() []string    { return e.Hints }
func (e *BaseError) Unwrap() error            { return e.Cause }

// Context never returns nil
func (e *BaseError) Context() map[string]any {
	if e.Fields == nil {
		return map[string]any{}
	}
	return e.Fields
}

func (e *BaseError) WithLocation(loc SourceLocation) *BaseError {
	e.Where = loc
	return e
}

func (e *BaseError) WithContext(key string, value any) *BaseError {
	if e.Fields == nil {
		e.Fields = map[string]any{}
	}
	e.Fields[key] = value
	return e
}

func (e *BaseError) WithSuggestion(suggestion string) *BaseError {
	e.Hints = append(e.Hints, suggestion)
	return e
}

func New(code ErrorCode, message string) *BaseError {
	return &BaseError{Code: code, Message: message}
}

func Newf(code ErrorCode, format string, args ...any) *BaseError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches a code and message to cause, which stays reachable through errors.Is and errors.As
func Wrap(code ErrorCode, message string, cause error) *BaseError {
	return &BaseError{Code: code, Message: message, Cause: cause}
}

// MultipleErrors collects failures from independent units of work, such as the
// files of one diagnose run
type MultipleErrors struct {
	Errors []RoutelensError
}

func (e *MultipleErrors) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d errors:", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, err)
	}
	return b.String()
}

// Unwrap exposes every collected error to errors.Is and errors.As
func (e *MultipleErrors) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

func (e *MultipleErrors) Add(err RoutelensError) {
	e.Errors = append(e.Errors, err)
}

// ErrorOrNil returns nil for an empty collection
func (e *MultipleErrors) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// HasCode reports whether any collected error carries code
func (e *MultipleErrors) HasCode(code ErrorCode) bool {
	for _, err := range e.Errors {
		if err.ErrorCode() == code {
			return true
		}
	}
	return false
}
