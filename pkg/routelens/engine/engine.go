// Package engine answers completion and diagnostic requests for one source document
// at a time. Every request parses the document afresh; nothing is cached between calls.
package engine

import (
	"github.com/toyz/routelens/internal/completion"
	"github.com/toyz/routelens/internal/diagnostics"
	"github.com/toyz/routelens/internal/syntax"
	"github.com/toyz/routelens/pkg/routelens"
)

// Completion is the answer to a completion request
type Completion struct {
	Kind  routelens.CompletionKind `json:"kind" yaml:"kind"`
	Items []routelens.Item         `json:"items" yaml:"items"`
}

// Option configures an Engine
type Option func(*Engine)

// WithReturnTypeAnalyzer registers a collaborator that inspects resolvable handlers
// during Diagnose
func WithReturnTypeAnalyzer(analyzer diagnostics.ReturnTypeAnalyzer) Option {
	return func(e *Engine) {
		e.analyzers = append(e.analyzers, analyzer)
	}
}

// Engine is safe for concurrent use
type Engine struct {
	analyzers []diagnostics.ReturnTypeAnalyzer
}

// New creates an engine
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Complete returns the suggestions for the byte offset cursor in source. A cursor
// outside the document or outside any mapped route yields no items and CompletionNone.
func (e *Engine) Complete(filename, source string, cursor int) Completion {
	out := Completion{Items: []routelens.Item{}}
	if cursor < 0 || cursor > len(source) {
		return out
	}

	result := completion.Complete(syntax.Parse(filename, source), cursor)
	out.Kind = result.Kind
	if len(result.Items) > 0 {
		out.Items = result.Items
	}
	return out
}

// Diagnose reports route template problems for every mapped route in source
func (e *Engine) Diagnose(filename, source string) []routelens.Diagnostic {
	diags := diagnostics.Analyze(syntax.Parse(filename, source), e.analyzers...)
	if diags == nil {
		return []routelens.Diagnostic{}
	}
	return diags
}

// Template parses a raw route template
func (e *Engine) Template(raw string) *routelens.Template {
	return routelens.ParseTemplate(raw)
}
