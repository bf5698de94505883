package routelens

import (
	"fmt"
	"regexp"
	"strings"
)

// PathMatch is the result of matching a request path against a template
type PathMatch struct {
	Matched bool              `json:"matched" yaml:"matched"`
	Values  map[string]string `json:"values,omitempty" yaml:"values,omitempty"`

	// Rejected and Constraint name the parameter and policy that refused a value
	Rejected   string `json:"rejected,omitempty" yaml:"rejected,omitempty"`
	Constraint string `json:"constraint,omitempty" yaml:"constraint,omitempty"`
}

// MatchPath matches a request path against the template and checks every
// constraint of the captured values. Literals compare case-insensitively and a
// trailing slash is ignored. Optional parameters that are absent are left out of
// Values; parameters with a default get it.
//
// An error means the template itself cannot be matched: it is malformed or names
// an unknown constraint.
func (t *Template) MatchPath(path string) (PathMatch, error) {
	re, params, err := t.pathPattern()
	if err != nil {
		return PathMatch{}, err
	}

	m := re.FindStringSubmatch(path)
	if m == nil {
		return PathMatch{}, nil
	}

	values := make(map[string]string, len(params))
	for i, part := range params {
		value := m[i+1]
		if value == "" {
			if part.Default == "" {
				continue
			}
			value = part.Default
		}
		for _, policy := range part.Policies {
			ok, err := CheckConstraint(policy, value)
			if err != nil {
				return PathMatch{}, err
			}
			if !ok {
				return PathMatch{Rejected: part.Value, Constraint: policy}, nil
			}
		}
		values[part.Value] = value
	}
	return PathMatch{Matched: true, Values: values}, nil
}

// pathPattern compiles the template into an anchored regular expression with one
// group per parameter, in template order.
func (t *Template) pathPattern() (*regexp.Regexp, []TemplatePart, error) {
	var b strings.Builder
	b.WriteString(`(?i)^/?`)

	var params []TemplatePart
	for i, part := range t.Parts {
		if !part.IsParameter() {
			lit := part.Value
			if i == 0 {
				lit = strings.TrimPrefix(strings.TrimPrefix(lit, "~"), "/")
			}
			if i+1 < len(t.Parts) && slashOptional(t.Parts, i+1) {
				lit = strings.TrimSuffix(lit, "/")
			}
			b.WriteString(regexp.QuoteMeta(lit))
			continue
		}

		if !part.Terminated || part.Value == "" {
			return nil, nil, fmt.Errorf("malformed route parameter at offset %d", part.Span.Start)
		}
		for _, policy := range part.Policies {
			if !IsKnownConstraint(policy) {
				return nil, nil, fmt.Errorf("unknown route constraint %q on parameter %q", policy, part.Value)
			}
		}

		group := `([^/]+)`
		if part.CatchAll {
			group = `(.*)`
		}
		switch {
		case slashOptional(t.Parts, i):
			b.WriteString(`(?:/` + group + `)?`)
		case skippable(part):
			b.WriteString(group + `?`)
		default:
			b.WriteString(group)
		}
		params = append(params, part)
	}
	b.WriteString(`/?$`)

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, nil, fmt.Errorf("compile route template %q: %w", t.Raw, err)
	}
	return re, params, nil
}

// skippable reports whether a parameter may match nothing
func skippable(part TemplatePart) bool {
	return part.Optional || part.CatchAll || part.Default != ""
}

// slashOptional reports whether the separator before the parameter at i goes
// away together with the parameter, as in "/pages/{page?}" matching "/pages".
func slashOptional(parts []TemplatePart, i int) bool {
	if i == 0 || i != len(parts)-1 || !parts[i].IsParameter() || !skippable(parts[i]) {
		return false
	}
	prev := parts[i-1]
	return !prev.IsParameter() && strings.HasSuffix(prev.Value, "/")
}
