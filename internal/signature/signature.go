// Package signature recovers the parameter list of a mapped handler.
package signature

import (
	"github.com/toyz/routelens/internal/classify"
	"github.com/toyz/routelens/internal/matcher"
	"github.com/toyz/routelens/internal/syntax"
	"github.com/toyz/routelens/pkg/routelens"
)

// NoCursor is passed when no edit is in progress, e.g. for diagnostics
const NoCursor = -1

// Extract returns the handler signature of a matched call. cursor is the absolute
// offset of the author's cursor, used to tell a type that is waiting for its name
// from an implicitly typed parameter.
func Extract(call *syntax.Call, m matcher.Match, resolver syntax.Resolver, cursor int) routelens.HandlerSignature {
	if m.HandlerDecl != nil {
		return FromMethod(m.HandlerDecl, cursor)
	}

	switch h := m.Handler(call).(type) {
	case *syntax.Lambda:
		sig := fromParams(h.Params, cursor, true)
		sig.AsyncOrReturnsValue = h.Async || h.ReturnsValue
		return sig
	case *syntax.Ref:
		if resolver == nil {
			return routelens.HandlerSignature{}
		}
		decls := resolver.ResolveMethods(h.Name())
		if len(decls) == 0 {
			return routelens.HandlerSignature{}
		}
		return FromMethod(decls[0], cursor)
	}
	return routelens.HandlerSignature{}
}

// FromMethod returns the signature of a declared method
func FromMethod(m *syntax.Method, cursor int) routelens.HandlerSignature {
	sig := fromParams(m.Params, cursor, false)
	sig.AsyncOrReturnsValue = m.Async() || (m.ReturnType != "" && m.ReturnType != "void")
	return sig
}

func fromParams(list *syntax.ParamList, cursor int, implicit bool) routelens.HandlerSignature {
	sig := routelens.HandlerSignature{Resolvable: true}
	if list == nil {
		return sig
	}
	for i, p := range list.Params {
		if param, ok := Parameter(p, i, cursor, implicit); ok {
			sig.Parameters = append(sig.Parameters, param)
		}
	}
	return sig
}

// Parameter converts one declared parameter. A lone identifier is a name when
// implicit typing is allowed (lambdas), unless the cursor sits after it past
// whitespace: then it is a type still waiting for its name. Empty slots are skipped.
func Parameter(p *syntax.Param, position, cursor int, implicit bool) (routelens.HandlerParameter, bool) {
	param := routelens.HandlerParameter{
		Position:    position,
		Annotations: annotations(p),
	}

	switch {
	case p.Bare:
		waiting := cursor >= 0 && p.Region.Contains(cursor) && cursor > p.NameToken.End
		if implicit && !waiting {
			param.Name, param.HasName = p.Name()
			return param, true
		}
		param.Type = typeTag(p.NameToken.Text)
	case p.NameToken != nil:
		param.Name, param.HasName = p.Name()
		param.Type = typeTag(p.TypeText())
	case len(p.TypeTokens) > 0:
		param.Type = typeTag(p.TypeText())
	default:
		return routelens.HandlerParameter{}, false
	}
	return param, true
}

func typeTag(name string) routelens.TypeTag {
	if classify.IsSpecialType(name) {
		return routelens.TypeTag{Kind: routelens.TypeSpecial, Name: name}
	}
	return routelens.TypeTag{Kind: routelens.TypeNamed, Name: name}
}

func annotations(p *syntax.Param) []string {
	var names []string
	seen := make(map[string]bool, len(p.Attributes))
	for _, attr := range p.Attributes {
		if seen[attr.Name] {
			continue
		}
		seen[attr.Name] = true
		names = append(names, attr.Name)
	}
	return names
}
