package completion

import (
	"github.com/toyz/routelens/internal/matcher"
	"github.com/toyz/routelens/internal/syntax"
	"github.com/toyz/routelens/pkg/routelens"
)

// Context is the resolved cursor situation of one completion request
type Context struct {
	Kind   routelens.CompletionKind
	Cursor int
	Call   *syntax.Call
	Match  matcher.Match

	// Literal is the template literal of the matched call, nil when the template
	// argument is not a string literal
	Literal *syntax.StringLit

	// Params and ParamIndex locate the handler parameter under the cursor
	Params     *syntax.ParamList
	ParamIndex int
}

// Template parses the matched call's template literal
func (c Context) Template() *routelens.Template {
	if c.Literal == nil {
		return nil
	}
	return c.Literal.Template()
}

// Locate finds the innermost matched call whose template literal or handler
// parameter list contains the cursor.
func Locate(file *syntax.File, cursor int) (Context, bool) {
	var best Context
	bestWidth := -1

	consider := func(ctx Context, width int) {
		if bestWidth < 0 || width < bestWidth {
			best, bestWidth = ctx, width
		}
	}

	for _, call := range file.Calls {
		if !call.Span.Contains(cursor) && (call.Decorates == nil || call.Decorates.Params == nil || !call.Decorates.Params.Span.Contains(cursor)) {
			continue
		}
		m, ok := matcher.Find(call, file)
		if !ok {
			continue
		}
		base := Context{Cursor: cursor, Call: call, Match: m, Literal: m.Template(call)}

		if base.Literal != nil && base.Literal.ValueSpan().Contains(cursor) {
			ctx := base
			ctx.Kind = routelens.InsideTemplatePlaceholder
			consider(ctx, base.Literal.ValueSpan().Len())
		}

		if list := handlerParams(call, m); list != nil {
			if i := list.IndexAt(cursor); i >= 0 {
				ctx := base
				ctx.Kind = routelens.InsideHandlerParameterName
				ctx.Params = list
				ctx.ParamIndex = i
				consider(ctx, list.Span.Len())
			}
		}
	}
	return best, bestWidth >= 0
}

// handlerParams returns the parameter list written at the call site or on the
// decorated method. Referenced methods are declared elsewhere and never hold the cursor.
func handlerParams(call *syntax.Call, m matcher.Match) *syntax.ParamList {
	if m.HandlerDecl != nil {
		return m.HandlerDecl.Params
	}
	if lambda, ok := m.Handler(call).(*syntax.Lambda); ok {
		return lambda.Params
	}
	return nil
}
