// Package classify decides where the framework takes a handler parameter's value from.
package classify

import (
	"strings"

	"github.com/toyz/routelens/pkg/routelens"
)

// specialTypes are framework-owned context and IO carriers injected by the dispatcher
var specialTypes = map[string]bool{
	"HttpContext":         true,
	"HttpRequest":         true,
	"HttpResponse":        true,
	"CancellationToken":   true,
	"ClaimsPrincipal":     true,
	"IFormFileCollection": true,
	"IFormFile":           true,
	"Stream":              true,
	"PipeReader":          true,
}

// bindingAnnotations maps a normalized annotation name to its binding effect
var bindingAnnotations = map[string]routelens.BindingCategory{
	"asparameters": routelens.AggregateBound,
	"fromquery":    routelens.AnnotationBound,
	"fromform":     routelens.AnnotationBound,
	"fromheader":   routelens.AnnotationBound,
	"fromservices": routelens.AnnotationBound,
}

// Classify returns the binding category of a parameter. Unknown annotations
// never suppress route binding.
func Classify(param routelens.HandlerParameter) routelens.BindingCategory {
	if param.Type.Kind == routelens.TypeSpecial || IsSpecialType(param.Type.Name) {
		return routelens.SpecialFrameworkType
	}

	category := routelens.RouteBindable
	for _, annotation := range param.Annotations {
		switch bindingAnnotations[NormalizeAnnotation(annotation)] {
		case routelens.AggregateBound:
			return routelens.AggregateBound
		case routelens.AnnotationBound:
			category = routelens.AnnotationBound
		}
	}
	return category
}

// IsSpecialType reports whether a written type names a framework-injected type
func IsSpecialType(typeName string) bool {
	if typeName == "" {
		return false
	}
	return specialTypes[NormalizeType(typeName)]
}

// NormalizeType strips alias and namespace qualifiers, generic arguments, array
// ranks and nullable markers. Matching on the result is nominal and case-sensitive.
//
// global::System.IO.Stream? -> Stream
func NormalizeType(typeName string) string {
	name := strings.TrimSpace(typeName)
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	if i := strings.IndexAny(name, "<["); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimRight(name, "?")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// NormalizeAnnotation lowercases an annotation name and drops its namespace
// and "Attribute" suffix.
func NormalizeAnnotation(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if trimmed := strings.TrimSuffix(name, "attribute"); trimmed != "" {
		name = trimmed
	}
	return name
}

// Describe returns a short label for a binding category
func Describe(category routelens.BindingCategory) string {
	switch category {
	case routelens.SpecialFrameworkType:
		return "framework-provided value"
	case routelens.AnnotationBound:
		return "bound from an explicit source"
	case routelens.AggregateBound:
		return "bound from several request values"
	default:
		return "bound from the route"
	}
}
