package routelens

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ConstraintFunc reports whether a route value satisfies a constraint. arg is the
// text between the constraint's parentheses, empty when it has none.
type ConstraintFunc func(value, arg string) (bool, error)

// BuiltinConstraints holds the route constraints a template policy may name
var BuiltinConstraints = map[string]ConstraintFunc{
	"int":       checkInt(32),
	"long":      checkInt(64),
	"bool":      checkBool,
	"double":    checkFloat(64),
	"float":     checkFloat(32),
	"decimal":   checkFloat(64),
	"guid":      checkGUID,
	"datetime":  checkDateTime,
	"alpha":     checkAlpha,
	"required":  checkRequired,
	"file":      checkFile,
	"nonfile":   checkNonFile,
	"min":       checkMin,
	"max":       checkMax,
	"range":     checkRange,
	"length":    checkLength,
	"minlength": checkMinLength,
	"maxlength": checkMaxLength,
	"regex":     checkRegex,
}

// ConstraintAliases maps alternative spellings to builtin constraint names
var ConstraintAliases = map[string]string{
	"uuid":    "guid",
	"integer": "int",
}

// dateTimeLayouts are tried in order by the datetime constraint
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"01/02/2006",
}

// SplitConstraint separates a policy such as "range(1,10)" into its name and argument
func SplitConstraint(policy string) (name, arg string) {
	open := strings.IndexByte(policy, '(')
	if open < 0 || !strings.HasSuffix(policy, ")") {
		return policy, ""
	}
	return policy[:open], policy[open+1 : len(policy)-1]
}

// LookupConstraint returns the builtin constraint a policy names, checking aliases first
func LookupConstraint(policy string) (ConstraintFunc, bool) {
	name, _ := SplitConstraint(policy)
	name = strings.ToLower(name)
	if actual, isAlias := ConstraintAliases[name]; isAlias {
		name = actual
	}
	fn, ok := BuiltinConstraints[name]
	return fn, ok
}

// IsKnownConstraint checks if a policy names a builtin constraint, including aliases
func IsKnownConstraint(policy string) bool {
	_, ok := LookupConstraint(policy)
	return ok
}

// KnownConstraints returns every builtin constraint name and alias, sorted
func KnownConstraints() []string {
	names := make([]string, 0, len(BuiltinConstraints)+len(ConstraintAliases))
	for name := range BuiltinConstraints {
		names = append(names, name)
	}
	for alias := range ConstraintAliases {
		names = append(names, alias)
	}
	slices.Sort(names)
	return names
}

// CheckConstraint evaluates one policy against a route value. It fails for unknown
// constraints and malformed arguments.
func CheckConstraint(policy, value string) (bool, error) {
	fn, ok := LookupConstraint(policy)
	if !ok {
		return false, fmt.Errorf("unknown route constraint %q", policy)
	}
	_, arg := SplitConstraint(policy)
	ok, err := fn(value, arg)
	if err != nil {
		return false, fmt.Errorf("constraint %q: %w", policy, err)
	}
	return ok, nil
}

func checkInt(bits int) ConstraintFunc {
	return func(value, _ string) (bool, error) {
		_, err := strconv.ParseInt(value, 10, bits)
		return err == nil, nil
	}
}

func checkFloat(bits int) ConstraintFunc {
	return func(value, _ string) (bool, error) {
		_, err := strconv.ParseFloat(value, bits)
		return err == nil, nil
	}
}

func checkBool(value, _ string) (bool, error) {
	return strings.EqualFold(value, "true") || strings.EqualFold(value, "false"), nil
}

func checkGUID(value, _ string) (bool, error) {
	_, err := uuid.Parse(value)
	return err == nil, nil
}

func checkDateTime(value, _ string) (bool, error) {
	for _, layout := range dateTimeLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true, nil
		}
	}
	return false, nil
}

func checkAlpha(value, _ string) (bool, error) {
	if value == "" {
		return false, nil
	}
	for i := 0; i < len(value); i++ {
		c := value[i] | 0x20
		if c < 'a' || c > 'z' {
			return false, nil
		}
	}
	return true, nil
}

func checkRequired(value, _ string) (bool, error) {
	return value != "", nil
}

// checkFile accepts values whose last segment has an extension, e.g. "app.js"
func checkFile(value, _ string) (bool, error) {
	last := value[strings.LastIndexByte(value, '/')+1:]
	dot := strings.LastIndexByte(last, '.')
	return dot >= 0 && dot < len(last)-1, nil
}

func checkNonFile(value, arg string) (bool, error) {
	ok, err := checkFile(value, arg)
	return !ok, err
}

func checkMin(value, arg string) (bool, error) {
	bound, err := intArg(arg)
	if err != nil {
		return false, err
	}
	n, err := strconv.ParseInt(value, 10, 64)
	return err == nil && n >= bound, nil
}

func checkMax(value, arg string) (bool, error) {
	bound, err := intArg(arg)
	if err != nil {
		return false, err
	}
	n, err := strconv.ParseInt(value, 10, 64)
	return err == nil && n <= bound, nil
}

func checkRange(value, arg string) (bool, error) {
	lo, hi, err := intPair(arg)
	if err != nil {
		return false, err
	}
	n, err := strconv.ParseInt(value, 10, 64)
	return err == nil && n >= lo && n <= hi, nil
}

// checkLength takes either an exact length or a "min,max" pair
func checkLength(value, arg string) (bool, error) {
	n := int64(utf8.RuneCountInString(value))
	if strings.Contains(arg, ",") {
		lo, hi, err := intPair(arg)
		if err != nil {
			return false, err
		}
		return n >= lo && n <= hi, nil
	}
	exact, err := intArg(arg)
	if err != nil {
		return false, err
	}
	return n == exact, nil
}

func checkMinLength(value, arg string) (bool, error) {
	bound, err := intArg(arg)
	if err != nil {
		return false, err
	}
	return int64(utf8.RuneCountInString(value)) >= bound, nil
}

func checkMaxLength(value, arg string) (bool, error) {
	bound, err := intArg(arg)
	if err != nil {
		return false, err
	}
	return int64(utf8.RuneCountInString(value)) <= bound, nil
}

// checkRegex matches case-insensitively; the pattern is not implicitly anchored
func checkRegex(value, arg string) (bool, error) {
	if arg == "" {
		return false, fmt.Errorf("missing pattern")
	}
	re, err := regexp.Compile("(?i)" + arg)
	if err != nil {
		return false, err
	}
	return re.MatchString(value), nil
}

func intArg(arg string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("argument %q is not an integer", arg)
	}
	return n, nil
}

func intPair(arg string) (int64, int64, error) {
	lo, hi, ok := strings.Cut(arg, ",")
	if !ok {
		return 0, 0, fmt.Errorf("argument %q must be two integers", arg)
	}
	a, err := intArg(lo)
	if err != nil {
		return 0, 0, err
	}
	b, err := intArg(hi)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
