// Package matcher recognizes mapping calls: calls that associate a route template
// with a handler.
package matcher

import (
	"github.com/toyz/routelens/internal/syntax"
)

// Match locates the template and handler of a mapping call. Argument indexes refer
// to call.Args; HandlerArg is -1 when the handler is not an argument (missing, or a
// decorated method given by HandlerDecl).
type Match struct {
	Strategy    string
	Entry       string
	TemplateArg int
	HandlerArg  int
	HandlerDecl *syntax.Method
}

// Strategy recognizes one call shape
type Strategy interface {
	Name() string
	Match(call *syntax.Call, resolver syntax.Resolver) (Match, bool)
}

// Strategies are tried in order; the first that matches wins
var Strategies = []Strategy{
	wellKnown{},
	structural{},
	routeAttribute{},
}

// Find runs the strategies against a call
func Find(call *syntax.Call, resolver syntax.Resolver) (Match, bool) {
	if call == nil {
		return Match{}, false
	}
	for _, strategy := range Strategies {
		if m, ok := strategy.Match(call, resolver); ok {
			m.Strategy = strategy.Name()
			return m, true
		}
	}
	return Match{}, false
}

// Template returns the template literal of a matched call, or nil when the template
// argument is not a string literal.
func (m Match) Template(call *syntax.Call) *syntax.StringLit {
	if m.TemplateArg < 0 || m.TemplateArg >= len(call.Args) {
		return nil
	}
	lit, _ := call.Args[m.TemplateArg].Expr.(*syntax.StringLit)
	return lit
}

// Handler returns the handler argument expression, or nil
func (m Match) Handler(call *syntax.Call) syntax.Expr {
	if m.HandlerArg < 0 || m.HandlerArg >= len(call.Args) {
		return nil
	}
	return call.Args[m.HandlerArg].Expr
}

// bindArguments resolves every argument to a declared parameter slot. Named
// arguments bind by name; positional arguments bind by position, offset by
// firstSlot for receiver forms where the first declared parameter is the receiver.
// It returns the argument index per slot name.
func bindArguments(args []*syntax.Argument, params []string, firstSlot int) (map[string]int, bool) {
	bound := make(map[string]int, len(args))
	for i, arg := range args {
		slot := firstSlot + i
		if arg.Name != "" {
			slot = indexOf(params, arg.Name)
			if slot < firstSlot {
				return nil, false
			}
		}
		if slot >= len(params) {
			return nil, false
		}
		name := params[slot]
		if _, taken := bound[name]; taken {
			return nil, false
		}
		bound[name] = i
	}
	return bound, true
}

func indexOf(items []string, item string) int {
	for i, it := range items {
		if it == item {
			return i
		}
	}
	return -1
}
