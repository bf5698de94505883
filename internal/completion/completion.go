// Package completion keeps route placeholders and handler parameter names
// consistent by suggesting one from the other.
package completion

import (
	"fmt"
	"strings"

	"github.com/toyz/routelens/internal/classify"
	"github.com/toyz/routelens/internal/signature"
	"github.com/toyz/routelens/internal/syntax"
	"github.com/toyz/routelens/pkg/routelens"
)

// Result is the ordered, duplicate-free suggestion set for one request
type Result struct {
	Kind  routelens.CompletionKind `json:"kind"`
	Items []routelens.Item         `json:"items"`
}

// Names returns the suggested names in order
func (r Result) Names() []string {
	names := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		names = append(names, item.Name)
	}
	return names
}

// Engine computes suggestions for located contexts. It holds no state between requests.
type Engine struct {
	Resolver syntax.Resolver
}

// Complete computes the suggestions for a context returned by Locate
func (e Engine) Complete(ctx Context) Result {
	result := Result{Kind: ctx.Kind}
	if ctx.Call == nil {
		return result
	}
	tmpl := ctx.Template()
	if tmpl == nil {
		return result
	}
	sig := signature.Extract(ctx.Call, ctx.Match, e.Resolver, ctx.Cursor)
	if !sig.Resolvable {
		return result
	}

	switch ctx.Kind {
	case routelens.InsideTemplatePlaceholder:
		result.Items = placeholderItems(tmpl, sig, ctx.Cursor)
	case routelens.InsideHandlerParameterName:
		result.Items = parameterNameItems(tmpl, sig, ctx)
	}
	return result
}

// Complete locates the cursor in file and computes its suggestions
func Complete(file *syntax.File, cursor int) Result {
	ctx, ok := Locate(file, cursor)
	if !ok {
		return Result{}
	}
	return Engine{Resolver: file}.Complete(ctx)
}

// placeholderItems suggests route-bindable handler parameter names for the
// placeholder under the cursor, skipping names other placeholders already use.
func placeholderItems(tmpl *routelens.Template, sig routelens.HandlerSignature, cursor int) []routelens.Item {
	offset, ok := tmpl.SourceToValue(cursor)
	if !ok {
		return nil
	}
	current := tmpl.ParameterAt(offset)
	if current < 0 {
		return nil
	}

	used := make(map[string]bool)
	for i, part := range tmpl.Parts {
		if i != current && part.IsParameter() {
			used[part.Value] = true
		}
	}

	var items []routelens.Item
	for _, p := range sig.Parameters {
		name, ok := p.ParamName()
		if !ok || name == "" || used[name] {
			continue
		}
		category := classify.Classify(p)
		if category != routelens.RouteBindable {
			continue
		}
		used[name] = true
		items = append(items, routelens.Item{Name: name, Description: describeParameter(p, category)})
	}
	return items
}

// parameterNameItems suggests template placeholder names for a handler parameter
// whose name is being typed, skipping names other parameters already use.
func parameterNameItems(tmpl *routelens.Template, sig routelens.HandlerSignature, ctx Context) []routelens.Item {
	if ctx.Params == nil || ctx.ParamIndex >= len(ctx.Params.Params) {
		return nil
	}
	if !inNameSlot(ctx.Params.Params[ctx.ParamIndex], ctx.Cursor) {
		return nil
	}

	used := make(map[string]bool)
	found := false
	for _, p := range sig.Parameters {
		if p.Position == ctx.ParamIndex {
			found = true
			if classify.Classify(p) != routelens.RouteBindable {
				return nil
			}
			continue
		}
		if p.HasName {
			used[p.Name] = true
		}
	}
	if !found {
		return nil
	}

	var items []routelens.Item
	for _, part := range tmpl.Parameters() {
		if part.Value == "" || used[part.Value] {
			continue
		}
		used[part.Value] = true
		items = append(items, routelens.Item{Name: part.Value, Description: describePlaceholder(part)})
	}
	return items
}

// inNameSlot reports whether the cursor is where a parameter's name goes: inside
// a written name, or past a type that has no name yet.
func inNameSlot(p *syntax.Param, cursor int) bool {
	switch {
	case p.Bare:
		return cursor > p.NameToken.End
	case p.NameToken != nil:
		return cursor >= p.NameToken.Start && cursor <= p.NameToken.End
	case len(p.TypeTokens) > 0:
		return cursor > p.TypeTokens[len(p.TypeTokens)-1].End
	}
	return false
}

// describeParameter reads "handler parameter int id, bound from the route"
func describeParameter(p routelens.HandlerParameter, category routelens.BindingCategory) string {
	if p.Type.Name == "" {
		return fmt.Sprintf("handler parameter %s, %s", p.Name, classify.Describe(category))
	}
	return fmt.Sprintf("handler parameter %s %s, %s", p.Type.Name, p.Name, classify.Describe(category))
}

func describePlaceholder(part routelens.TemplatePart) string {
	var b strings.Builder
	b.WriteString("route parameter {")
	if part.CatchAll {
		b.WriteString("*")
	}
	b.WriteString(part.Value)
	for _, policy := range part.Policies {
		b.WriteString(":")
		b.WriteString(policy)
	}
	b.WriteString("}")
	return b.String()
}
