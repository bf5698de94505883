// Package diagnostics reports problems in the route templates of mapping calls.
package diagnostics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/toyz/routelens/internal/matcher"
	"github.com/toyz/routelens/internal/signature"
	"github.com/toyz/routelens/internal/syntax"
	"github.com/toyz/routelens/pkg/routelens"
)

// Diagnostic codes
const (
	CodeDuplicateParameter = "RL0001"
	CodeUnterminated       = "RL0002"
	CodeEmptyParameterName = "RL0003"
	CodeCatchAllNotLast    = "RL0004"
)

// Handler is what a return-type collaborator receives for one mapping call
type Handler struct {
	Call      *syntax.Call
	Match     matcher.Match
	Signature routelens.HandlerSignature
	// Expr is the handler argument, nil for decorated methods and missing handlers
	Expr   syntax.Expr
	Method *syntax.Method
}

// ReturnTypeAnalyzer inspects handler return values. Implementations live outside
// this module; Analyze only forwards resolvable handlers to them.
type ReturnTypeAnalyzer interface {
	AnalyzeHandler(file *syntax.File, handler Handler) []routelens.Diagnostic
}

// Analyze reports template diagnostics for every mapping call in file, followed by
// whatever the return-type analyzers report. Each group is ordered by position.
func Analyze(file *syntax.File, analyzers ...ReturnTypeAnalyzer) []routelens.Diagnostic {
	var diags, reported []routelens.Diagnostic

	for _, call := range file.Calls {
		m, ok := matcher.Find(call, file)
		if !ok {
			continue
		}
		if lit := m.Template(call); lit != nil {
			diags = append(diags, checkTemplate(lit.Template())...)
		}

		if len(analyzers) == 0 {
			continue
		}
		sig := signature.Extract(call, m, file, signature.NoCursor)
		if !sig.Resolvable {
			continue
		}
		handler := Handler{Call: call, Match: m, Signature: sig, Expr: m.Handler(call), Method: m.HandlerDecl}
		if ref, ok := handler.Expr.(*syntax.Ref); ok {
			if decls := file.ResolveMethods(ref.Name()); len(decls) > 0 {
				handler.Method = decls[0]
			}
		}
		for _, analyzer := range analyzers {
			reported = append(reported, analyzer.AnalyzeHandler(file, handler)...)
		}
	}

	lines := newLineIndex(file.Source)
	return append(lines.place(file.Name, diags), lines.place(file.Name, reported)...)
}

// place fills in file positions and orders diags by source offset
func (l lineIndex) place(name string, diags []routelens.Diagnostic) []routelens.Diagnostic {
	for i := range diags {
		diags[i].File = name
		diags[i].Line, diags[i].Column = l.position(diags[i].Span.Start)
	}
	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Span.Start < diags[j].Span.Start
	})
	return diags
}

// checkTemplate validates one parsed template. Spans are converted to source offsets.
func checkTemplate(tmpl *routelens.Template) []routelens.Diagnostic {
	var diags []routelens.Diagnostic
	report := func(code string, severity routelens.Severity, span routelens.Span, format string, args ...any) {
		diags = append(diags, routelens.Diagnostic{
			Code:     code,
			Severity: severity,
			Message:  fmt.Sprintf(format, args...),
			Span:     tmpl.SourceSpan(span),
		})
	}

	params := tmpl.Parameters()
	seen := make(map[string]bool, len(params))
	for i, part := range params {
		if !part.Terminated {
			report(CodeUnterminated, routelens.SeverityError, part.Span,
				"route parameter %q is missing its closing '}'", part.Value)
		}

		if part.Value == "" {
			if part.Terminated {
				report(CodeEmptyParameterName, routelens.SeverityError, part.Span,
					"route parameter has an empty name")
			}
			continue
		}

		key := strings.ToLower(part.Value)
		if seen[key] {
			report(CodeDuplicateParameter, routelens.SeverityError, part.NameSpan,
				"route parameter %q appears more than once in the template", part.Value)
		}
		seen[key] = true

		if part.CatchAll && i != len(params)-1 {
			report(CodeCatchAllNotLast, routelens.SeverityError, part.Span,
				"catch-all route parameter %q must be the last parameter", part.Value)
		}
	}
	return diags
}

// lineIndex converts byte offsets to 1-based line and column numbers
type lineIndex struct {
	starts []int
}

func newLineIndex(src string) lineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{starts: starts}
}

func (l lineIndex) position(offset int) (int, int) {
	line := sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return line + 1, offset - l.starts[line] + 1
}
