package routelens

import (
	"sort"
	"strings"
)

// TemplatePartType represents the type of template part
type TemplatePartType int

const (
	LiteralPart TemplatePartType = iota
	ParameterPart
)

func (t TemplatePartType) String() string {
	if t == ParameterPart {
		return "parameter"
	}
	return "literal"
}

// MarshalText renders the part type by name in json and yaml output
func (t TemplatePartType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Span is a half-open [Start, End) range of offsets
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether offset lies inside the span, both ends included
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset <= s.End
}

// Len returns the width of the span
func (s Span) Len() int {
	return s.End - s.Start
}

// TemplatePart represents a single literal or parameter node of a route template.
// Offsets are relative to the decoded template value.
type TemplatePart struct {
	Type TemplatePartType `json:"type"`

	// Value is the unescaped literal text, or the parameter name for parameters
	Value string `json:"value"`
	Span  Span   `json:"span"`

	// Parameter-only fields
	NameSpan        Span     `json:"name_span"`
	Policies        []string `json:"policies,omitempty"`
	CatchAll        bool     `json:"catch_all,omitempty"`
	PreserveSlashes bool     `json:"preserve_slashes,omitempty"`
	Optional        bool     `json:"optional,omitempty"`
	Default         string   `json:"default,omitempty"`
	Terminated      bool     `json:"terminated"`
}

// IsParameter reports whether the part is a parameter placeholder
func (p TemplatePart) IsParameter() bool {
	return p.Type == ParameterPart
}

// Template is a parsed route template
type Template struct {
	// Raw is the decoded template string the parts were parsed from
	Raw   string         `json:"raw"`
	Parts []TemplatePart `json:"parts"`

	// offsets maps every value offset (0..len(Raw)) to an absolute source offset.
	// Nil means the identity mapping.
	offsets []int
}

// ParseTemplate parses a route template string. It never fails: malformed input
// such as an unterminated placeholder produces a best-effort trailing part.
func ParseTemplate(raw string) *Template {
	return ParseTemplateLiteral(raw, nil)
}

// ParseTemplateLiteral parses a template decoded from a string literal. offsets maps
// each offset of value (including len(value)) to its position in the source file, so
// cursors inside escape sequences still resolve.
func ParseTemplateLiteral(value string, offsets []int) *Template {
	if len(offsets) != len(value)+1 {
		offsets = nil
	}
	t := &Template{Raw: value, offsets: offsets}
	t.Parts = parseParts(value)
	return t
}

func parseParts(s string) []TemplatePart {
	var parts []TemplatePart
	var literal strings.Builder
	literalStart := 0

	flush := func(end int) {
		if literal.Len() == 0 {
			return
		}
		parts = append(parts, TemplatePart{
			Type:  LiteralPart,
			Value: literal.String(),
			Span:  Span{Start: literalStart, End: end},
		})
		literal.Reset()
	}

	i := 0
	for i < len(s) {
		switch {
		case s[i] == '{' && i+1 < len(s) && s[i+1] == '{':
			if literal.Len() == 0 {
				literalStart = i
			}
			literal.WriteByte('{')
			i += 2
		case s[i] == '}' && i+1 < len(s) && s[i+1] == '}':
			if literal.Len() == 0 {
				literalStart = i
			}
			literal.WriteByte('}')
			i += 2
		case s[i] == '{':
			flush(i)
			part, next := parseParameter(s, i)
			parts = append(parts, part)
			i = next
		default:
			if literal.Len() == 0 {
				literalStart = i
			}
			literal.WriteByte(s[i])
			i++
		}
	}
	flush(len(s))

	return parts
}

// parseParameter parses the placeholder opening at s[start] == '{' and returns the
// part together with the offset just past it.
func parseParameter(s string, start int) (TemplatePart, int) {
	part := TemplatePart{Type: ParameterPart}

	j := start + 1
	if j < len(s) && s[j] == '*' {
		part.CatchAll = true
		j++
		if j < len(s) && s[j] == '*' {
			part.PreserveSlashes = true
			j++
		}
	}

	nameStart := j
	for j < len(s) && s[j] != '}' && s[j] != ':' {
		j++
	}
	name := s[nameStart:j]

	for j < len(s) && s[j] == ':' {
		policy, next := scanPolicy(s, j+1)
		part.Policies = append(part.Policies, policy)
		j = next
	}

	if j < len(s) && s[j] == '}' {
		part.Terminated = true
		j++
	}

	// Optional and default markers may trail either the name or the last policy.
	if n := len(part.Policies); n > 0 {
		part.Policies[n-1], part.Default, part.Optional = splitDefault(part.Policies[n-1])
	}
	if !part.Optional && part.Default == "" {
		var trimmed string
		trimmed, part.Default, part.Optional = splitDefault(name)
		name = trimmed
	} else {
		name, _, _ = splitDefault(name)
	}

	part.Value = name
	part.NameSpan = Span{Start: nameStart, End: nameStart + len(name)}
	part.Span = Span{Start: start, End: j}
	return part, j
}

// scanPolicy reads one ':'-introduced policy starting at i. Doubled braces are
// literal and ':' inside parentheses does not start a new policy.
func scanPolicy(s string, i int) (string, int) {
	var b strings.Builder
	depth := 0
	for i < len(s) {
		c := s[i]
		switch {
		case (c == '{' || c == '}') && i+1 < len(s) && s[i+1] == c:
			b.WriteByte(c)
			i += 2
			continue
		case c == '}':
			return b.String(), i
		case c == ':' && depth == 0:
			return b.String(), i
		case c == '(':
			depth++
		case c == ')' && depth > 0:
			depth--
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), i
}

// splitDefault separates "name=value" and "name?" forms. Parenthesised text is never split.
func splitDefault(s string) (rest, def string, optional bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '=':
			if depth == 0 {
				return s[:i], s[i+1:], false
			}
		}
	}
	if strings.HasSuffix(s, "?") && depth == 0 {
		return s[:len(s)-1], "", true
	}
	return s, "", false
}

// Parameters returns the parameter parts in template order
func (t *Template) Parameters() []TemplatePart {
	var params []TemplatePart
	for _, part := range t.Parts {
		if part.IsParameter() {
			params = append(params, part)
		}
	}
	return params
}

// ParameterNames returns every parameter name in order, duplicates and empty names included
func (t *Template) ParameterNames() []string {
	var names []string
	for _, part := range t.Parts {
		if part.IsParameter() {
			names = append(names, part.Value)
		}
	}
	return names
}

// ParameterAt returns the index into Parts of the parameter whose name region
// contains the value offset, or -1.
func (t *Template) ParameterAt(offset int) int {
	for i, part := range t.Parts {
		if part.IsParameter() && part.NameSpan.Contains(offset) {
			return i
		}
	}
	return -1
}

// ValueToSource maps a value offset to its absolute source offset
func (t *Template) ValueToSource(offset int) int {
	if offset < 0 {
		offset = 0
	}
	if offset > len(t.Raw) {
		offset = len(t.Raw)
	}
	if t.offsets == nil {
		return offset
	}
	return t.offsets[offset]
}

// SourceToValue maps an absolute source offset back into the template value. A source
// offset that falls inside an escape sequence resolves to the character the sequence
// produces. The boolean is false when the offset lies outside the literal.
func (t *Template) SourceToValue(source int) (int, bool) {
	if t.offsets == nil {
		if source < 0 || source > len(t.Raw) {
			return 0, false
		}
		return source, true
	}
	if source < t.offsets[0] || source > t.offsets[len(t.offsets)-1] {
		return 0, false
	}
	// First value offset whose source position is at or past the cursor.
	i := sort.Search(len(t.offsets), func(i int) bool { return t.offsets[i] >= source })
	if t.offsets[i] == source {
		return i, true
	}
	return i - 1, true
}

// SourceSpan converts a value span into absolute source offsets
func (t *Template) SourceSpan(span Span) Span {
	return Span{Start: t.ValueToSource(span.Start), End: t.ValueToSource(span.End)}
}

// PathStyle selects the router syntax a template is rendered into
type PathStyle int

const (
	GinStyle PathStyle = iota
	EchoStyle
	FiberStyle
)

// FrameworkPath renders the template in the given router syntax
// Converts: /users/{id:int} -> /users/:id
// Converts: /files/{*path}  -> /files/*path (gin), /files/* (echo, fiber)
func (t *Template) FrameworkPath(style PathStyle) string {
	var b strings.Builder
	for _, part := range t.Parts {
		if !part.IsParameter() {
			b.WriteString(part.Value)
			continue
		}
		if part.CatchAll {
			b.WriteString("*")
			if style == GinStyle {
				name := part.Value
				if name == "" {
					name = "path"
				}
				b.WriteString(name)
			}
			continue
		}
		b.WriteString(":")
		b.WriteString(part.Value)
		if part.Optional && style == FiberStyle {
			b.WriteString("?")
		}
	}
	return b.String()
}
