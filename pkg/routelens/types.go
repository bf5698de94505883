package routelens

import "fmt"

// TypeKind classifies how much is known about a handler parameter's type
type TypeKind int

const (
	// TypeUnresolved means no type token was written (implicitly typed lambda parameter)
	TypeUnresolved TypeKind = iota
	// TypeNamed is a written type that is not a framework-injected type
	TypeNamed
	// TypeSpecial is a framework-owned context or IO type injected by the dispatcher
	TypeSpecial
)

// String returns the string representation of the type kind
func (k TypeKind) String() string {
	switch k {
	case TypeNamed:
		return "named"
	case TypeSpecial:
		return "special"
	default:
		return "unresolved"
	}
}

// TypeTag is the nominal type of a handler parameter
type TypeTag struct {
	Kind TypeKind `json:"kind"`
	Name string   `json:"name,omitempty"`
}

// HandlerParameter is one parameter of a handler signature. Name is only meaningful
// when HasName is true: while the author is still typing, a parameter may have a type
// but no name yet.
type HandlerParameter struct {
	Name        string   `json:"name,omitempty"`
	HasName     bool     `json:"has_name"`
	Type        TypeTag  `json:"type"`
	Annotations []string `json:"annotations,omitempty"`
	Position    int      `json:"position"`
}

// ParamName returns the parameter name and whether one has been written
func (p HandlerParameter) ParamName() (string, bool) {
	return p.Name, p.HasName
}

// HandlerSignature is the ordered parameter list of a mapped handler
type HandlerSignature struct {
	Parameters []HandlerParameter `json:"parameters"`

	// Resolvable is false when the handler is null, absent or an unresolvable reference
	Resolvable bool `json:"resolvable"`

	// AsyncOrReturnsValue is consumed by return-type collaborators only
	AsyncOrReturnsValue bool `json:"async_or_returns_value"`
}

// Names returns the written parameter names in order
func (s HandlerSignature) Names() []string {
	var names []string
	for _, p := range s.Parameters {
		if p.HasName {
			names = append(names, p.Name)
		}
	}
	return names
}

// BindingCategory describes where the framework takes a parameter's value from
type BindingCategory int

const (
	RouteBindable BindingCategory = iota
	SpecialFrameworkType
	AnnotationBound
	AggregateBound
)

// String returns the string representation of the binding category
func (c BindingCategory) String() string {
	switch c {
	case SpecialFrameworkType:
		return "special"
	case AnnotationBound:
		return "annotation"
	case AggregateBound:
		return "aggregate"
	default:
		return "route"
	}
}

// CompletionKind is the cursor context a completion request was resolved to.
// CompletionNone means the cursor is not inside any mapped route.
type CompletionKind int

const (
	CompletionNone CompletionKind = iota
	InsideHandlerParameterName
	InsideTemplatePlaceholder
)

// String returns the string representation of the completion kind
func (k CompletionKind) String() string {
	switch k {
	case InsideHandlerParameterName:
		return "handler_parameter_name"
	case InsideTemplatePlaceholder:
		return "template_placeholder"
	default:
		return "none"
	}
}

func (k CompletionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Item is a single completion candidate
type Item struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Severity of a diagnostic
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// MarshalText renders the severity by name in json and yaml output
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a severity name written by MarshalText
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Diagnostic is a finding reported against a source range
type Diagnostic struct {
	Code     string   `json:"code" yaml:"code"`
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
	File     string   `json:"file,omitempty" yaml:"file,omitempty"`
	Span     Span     `json:"span" yaml:"span"`
	Line     int      `json:"line" yaml:"line"`
	Column   int      `json:"column" yaml:"column"`
}
