package syntax

import (
	"strings"

	"github.com/toyz/routelens/pkg/routelens"
)

// File is the syntax view of one host source document
type File struct {
	Name    string
	Source  string
	Tokens  []Token
	Calls   []*Call
	Methods []*Method
}

// Resolver resolves a referenced declaration by simple name
type Resolver interface {
	ResolveMethods(name string) []*Method
}

// ResolveMethods returns every method declared in the file with the given name
func (f *File) ResolveMethods(name string) []*Method {
	var methods []*Method
	for _, m := range f.Methods {
		if m.Name == name {
			methods = append(methods, m)
		}
	}
	return methods
}

// Call is an invocation, or an attribute usage with an argument list
type Call struct {
	// Callee holds the dotted name parts, e.g. ["app", "MapGet"]
	Callee []string
	// Receiver is true when the name is reached through '.', e.g. app.MapGet
	Receiver bool
	NameSpan routelens.Span
	Args     []*Argument
	// Span covers the argument list from '(' to ')' or to where recovery stopped
	Span   routelens.Span
	Closed bool

	InAttribute bool
	// Decorates is the method an attribute usage is attached to
	Decorates *Method
}

// Name returns the last callee part
func (c *Call) Name() string {
	if len(c.Callee) == 0 {
		return ""
	}
	return c.Callee[len(c.Callee)-1]
}

// Qualifier returns the callee part just before the name, if any
func (c *Call) Qualifier() string {
	if len(c.Callee) < 2 {
		return ""
	}
	return c.Callee[len(c.Callee)-2]
}

// Argument is one argument of a call, optionally passed by name
type Argument struct {
	Name string
	Expr Expr
	Span routelens.Span
}

// Expr is the small set of expression shapes the analyzers care about
type Expr interface {
	ExprSpan() routelens.Span
}

// StringLit is a regular or verbatim string literal
type StringLit struct {
	Span     routelens.Span
	Verbatim bool
	// Value is the decoded content; Offsets maps each value offset (0..len) to a source offset
	Value      string
	Offsets    []int
	Terminated bool
}

// ValueSpan is the source range of the literal's content, quotes excluded
func (s *StringLit) ValueSpan() routelens.Span {
	return routelens.Span{Start: s.Offsets[0], End: s.Offsets[len(s.Offsets)-1]}
}

// Template parses the literal's value as a route template
func (s *StringLit) Template() *routelens.Template {
	return routelens.ParseTemplateLiteral(s.Value, s.Offsets)
}

func (s *StringLit) ExprSpan() routelens.Span { return s.Span }

// NullLit is the null literal
type NullLit struct {
	Span routelens.Span
}

func (n *NullLit) ExprSpan() routelens.Span { return n.Span }

// Ref is a (possibly qualified) reference to a named declaration
type Ref struct {
	Span  routelens.Span
	Parts []string
}

// Name returns the referenced simple name
func (r *Ref) Name() string {
	return r.Parts[len(r.Parts)-1]
}

func (r *Ref) ExprSpan() routelens.Span { return r.Span }

// Lambda is an inline function value. Arrow is false while the author is still
// typing the parameter list.
type Lambda struct {
	Span   routelens.Span
	Async  bool
	Params *ParamList
	Arrow  bool
	Block  bool
	// ReturnsValue is true for expression bodies and blocks containing "return <expr>"
	ReturnsValue bool
}

func (l *Lambda) ExprSpan() routelens.Span { return l.Span }

// Opaque is any other expression
type Opaque struct {
	Span routelens.Span
}

func (o *Opaque) ExprSpan() routelens.Span { return o.Span }

// Method is a method or local function declaration
type Method struct {
	Name       string
	NameSpan   routelens.Span
	Modifiers  []string
	ReturnType string
	Params     *ParamList
	Attributes []*Attribute
}

// Async reports whether the declaration carries the async modifier
func (m *Method) Async() bool {
	for _, mod := range m.Modifiers {
		if mod == "async" {
			return true
		}
	}
	return false
}

// ParamList is a parenthesised parameter list
type ParamList struct {
	// Span runs from just after '(' to the closing ')' or to where recovery stopped
	Span   routelens.Span
	Closed bool
	Params []*Param
}

// IndexAt returns the index of the parameter whose region contains offset, or -1
func (l *ParamList) IndexAt(offset int) int {
	if l == nil || !l.Span.Contains(offset) {
		return -1
	}
	for i, p := range l.Params {
		if p.Region.Contains(offset) {
			return i
		}
	}
	return -1
}

// Param is one declared parameter. Bare is set for a single identifier that may be
// either an implicitly typed parameter name or a type whose name is not written yet.
type Param struct {
	Region     routelens.Span
	Attributes []*Attribute
	Modifiers  []string
	TypeTokens []Token
	NameToken  *Token
	Bare       bool
}

// TypeText renders the declared type
func (p *Param) TypeText() string {
	var b strings.Builder
	for _, t := range p.TypeTokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

// Name returns the written parameter name
func (p *Param) Name() (string, bool) {
	if p.NameToken == nil {
		return "", false
	}
	return strings.TrimPrefix(p.NameToken.Text, "@"), true
}

// HasModifier reports whether the parameter carries the modifier keyword
func (p *Param) HasModifier(modifier string) bool {
	for _, m := range p.Modifiers {
		if m == modifier {
			return true
		}
	}
	return false
}

// Attribute is one attribute usage such as [FromQuery] or [StringSyntax("Route")]
type Attribute struct {
	Name string
	Args []*Argument
	Span routelens.Span
}

// SimpleName strips namespace qualifiers from the attribute name
func (a *Attribute) SimpleName() string {
	if i := strings.LastIndex(a.Name, "."); i >= 0 {
		return a.Name[i+1:]
	}
	return a.Name
}
