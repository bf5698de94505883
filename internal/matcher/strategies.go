package matcher

import (
	"strings"

	"github.com/toyz/routelens/internal/classify"
	"github.com/toyz/routelens/internal/syntax"
)

// staticHost is the type that declares the well-known entry points as extension methods
const staticHost = "EndpointRouteBuilderExtensions"

var (
	mapParams        = []string{"endpoints", "pattern", "handler"}
	mapMethodsParams = []string{"endpoints", "pattern", "httpMethods", "handler"}
)

// entryPoints holds the declared parameter order of every well-known mapping method
var entryPoints = map[string][]string{
	"Map":         mapParams,
	"MapGet":      mapParams,
	"MapPost":     mapParams,
	"MapPut":      mapParams,
	"MapDelete":   mapParams,
	"MapPatch":    mapParams,
	"MapFallback": mapParams,
	"MapMethods":  mapMethodsParams,
}

// wellKnown matches the framework's own mapping methods, called either as an
// extension (app.MapGet) or through the declaring type.
type wellKnown struct{}

func (wellKnown) Name() string { return "well-known" }

func (wellKnown) Match(call *syntax.Call, _ syntax.Resolver) (Match, bool) {
	params, ok := entryPoints[call.Name()]
	if !ok || !call.Receiver {
		return Match{}, false
	}

	firstSlot := 1
	if call.Qualifier() == staticHost {
		firstSlot = 0
	}
	bound, ok := bindArguments(call.Args, params, firstSlot)
	if !ok {
		return Match{}, false
	}
	template, ok := bound["pattern"]
	if !ok {
		return Match{}, false
	}

	handler, ok := bound["handler"]
	if !ok {
		handler = -1
	}
	return Match{Entry: call.Name(), TemplateArg: template, HandlerArg: handler}, true
}

// structural matches user-defined wrappers shaped like the well-known entry points:
// exactly one route-pattern string parameter and exactly one delegate-shaped parameter.
type structural struct{}

func (structural) Name() string { return "structural" }

func (structural) Match(call *syntax.Call, resolver syntax.Resolver) (Match, bool) {
	if resolver == nil || call.InAttribute {
		return Match{}, false
	}

	for _, decl := range resolver.ResolveMethods(call.Name()) {
		if decl.Params == nil {
			continue
		}
		pattern, handler, ok := wrapperShape(decl.Params.Params)
		if !ok {
			continue
		}

		names := make([]string, len(decl.Params.Params))
		for i, p := range decl.Params.Params {
			names[i], _ = p.Name()
		}

		firstSlot := 0
		if call.Receiver && decl.Params.Params[0].HasModifier("this") && len(call.Args) < len(names) {
			firstSlot = 1
		}
		bound, ok := bindArguments(call.Args, names, firstSlot)
		if !ok {
			continue
		}
		template, ok := bound[names[pattern]]
		if !ok {
			continue
		}
		handlerArg, ok := bound[names[handler]]
		if !ok {
			handlerArg = -1
		}
		return Match{Entry: decl.Name, TemplateArg: template, HandlerArg: handlerArg}, true
	}
	return Match{}, false
}

// wrapperShape returns the positions of the route-pattern and delegate parameters
func wrapperShape(params []*syntax.Param) (int, int, bool) {
	pattern, handler := -1, -1
	for i, p := range params {
		if isRoutePattern(p) {
			if pattern >= 0 {
				return 0, 0, false
			}
			pattern = i
		}
		if isDelegateShaped(p) {
			if handler >= 0 {
				return 0, 0, false
			}
			handler = i
		}
	}
	return pattern, handler, pattern >= 0 && handler >= 0
}

func isRoutePattern(p *syntax.Param) bool {
	if t := classify.NormalizeType(p.TypeText()); t != "string" && t != "String" {
		return false
	}
	for _, attr := range p.Attributes {
		if strings.TrimSuffix(attr.SimpleName(), "Attribute") != "StringSyntax" || len(attr.Args) == 0 {
			continue
		}
		switch v := attr.Args[0].Expr.(type) {
		case *syntax.StringLit:
			if v.Value == "Route" {
				return true
			}
		case *syntax.Ref:
			if v.Name() == "Route" {
				return true
			}
		}
	}
	return false
}

var delegateTypes = map[string]bool{
	"Delegate":        true,
	"RequestDelegate": true,
	"Func":            true,
	"Action":          true,
}

func isDelegateShaped(p *syntax.Param) bool {
	return delegateTypes[classify.NormalizeType(p.TypeText())]
}

var routeAttributes = map[string]bool{
	"HttpGet":     true,
	"HttpPost":    true,
	"HttpPut":     true,
	"HttpDelete":  true,
	"HttpPatch":   true,
	"HttpHead":    true,
	"HttpOptions": true,
	"Route":       true,
}

// routeAttribute matches attribute routes on controller actions, e.g.
// [HttpGet("{id}")] public object Get(int id). The decorated method is the handler.
type routeAttribute struct{}

func (routeAttribute) Name() string { return "route-attribute" }

func (routeAttribute) Match(call *syntax.Call, _ syntax.Resolver) (Match, bool) {
	if !call.InAttribute || call.Decorates == nil {
		return Match{}, false
	}
	name := strings.TrimSuffix(call.Name(), "Attribute")
	if !routeAttributes[name] {
		return Match{}, false
	}

	template := -1
	for i, arg := range call.Args {
		if arg.Name == "template" {
			template = i
			break
		}
		if arg.Name == "" && template < 0 {
			template = i
		}
	}
	if template < 0 {
		return Match{}, false
	}
	return Match{Entry: name, TemplateArg: template, HandlerArg: -1, HandlerDecl: call.Decorates}, true
}
