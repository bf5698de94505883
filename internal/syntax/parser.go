package syntax

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/toyz/routelens/pkg/routelens"
)

// controlKeywords look like calls when followed by '(' but never are
var controlKeywords = map[string]bool{
	"if": true, "for": true, "foreach": true, "while": true, "switch": true,
	"catch": true, "using": true, "lock": true, "fixed": true, "return": true,
	"typeof": true, "nameof": true, "sizeof": true, "default": true,
	"checked": true, "unchecked": true, "when": true, "base": true, "this": true,
	"new": true, "throw": true, "await": true, "async": true, "static": true,
	"delegate": true,
}

// exprKeywords may precede a call; any other identifier before "name(" makes it a declaration
var exprKeywords = map[string]bool{
	"return": true, "await": true, "new": true, "throw": true, "in": true,
	"is": true, "as": true, "else": true, "case": true, "yield": true,
	"not": true, "and": true, "or": true, "when": true, "out": true,
	"ref": true, "do": true, "goto": true,
}

var declarationModifiers = map[string]bool{
	"public": true, "private": true, "protected": true, "internal": true,
	"static": true, "async": true, "virtual": true, "override": true,
	"abstract": true, "sealed": true, "extern": true, "unsafe": true,
	"new": true, "partial": true, "readonly": true,
}

var parameterModifiers = map[string]bool{
	"ref": true, "out": true, "in": true, "params": true, "this": true,
	"scoped": true, "readonly": true,
}

// predefinedTypes are keywords that can only ever be a type, never a parameter name
var predefinedTypes = map[string]bool{
	"bool": true, "byte": true, "sbyte": true, "char": true, "decimal": true,
	"double": true, "float": true, "int": true, "uint": true, "nint": true,
	"nuint": true, "long": true, "ulong": true, "short": true, "ushort": true,
	"object": true, "string": true, "dynamic": true, "var": true,
}

type scanner struct {
	src    string
	toks   []Token
	pair   []int
	closed []bool
	file   *File

	pendingAttrs []*Attribute
	pendingCalls []*Call
	attrEnd      int
}

// Parse scans host source into its syntax view. It never fails; malformed or
// incomplete input yields fewer or partial nodes.
func Parse(filename, src string) *File {
	toks := Tokenize(filename, src)
	s := &scanner{
		src:     src,
		toks:    toks,
		file:    &File{Name: filename, Source: src, Tokens: toks},
		attrEnd: -1,
	}
	s.matchBrackets()
	s.scan()
	return s.file
}

// matchBrackets pairs every opening bracket with its closer. A closer of the wrong
// kind closes every bracket opened after the nearest opener of its own kind; those
// inner brackets are recorded as unclosed and end at the mismatching token.
func (s *scanner) matchBrackets() {
	s.pair = make([]int, len(s.toks))
	s.closed = make([]bool, len(s.toks))
	openers := map[string]string{")": "(", "]": "[", "}": "{"}

	var stack []int
	for i, t := range s.toks {
		if t.Kind != Punct {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			stack = append(stack, i)
		case ")", "]", "}":
			want := openers[t.Text]
			k := len(stack) - 1
			for k >= 0 && s.toks[stack[k]].Text != want {
				k--
			}
			if k < 0 {
				continue
			}
			for m := len(stack) - 1; m > k; m-- {
				s.pair[stack[m]] = i
			}
			s.pair[stack[k]] = i
			s.closed[stack[k]] = true
			stack = stack[:k]
		}
	}
	for _, open := range stack {
		s.pair[open] = len(s.toks)
	}
}

func (s *scanner) scan() {
	for i := 0; i < len(s.toks); i++ {
		if s.attrEnd >= 0 && i > s.attrEnd {
			s.attrEnd = -1
		}
		t := s.toks[i]
		switch {
		case t.Is("[") && s.attrEnd < 0 && s.statementStart(i):
			s.pendingAttrs = append(s.pendingAttrs, s.parseAttributeList(i, s.pair[i])...)
			s.attrEnd = s.pair[i]
		case t.Is(";") || t.Is("{") || t.Is("}"):
			if s.attrEnd < 0 {
				s.pendingAttrs = nil
				s.pendingCalls = nil
			}
		case t.Kind == Ident && s.is(i+1, "("):
			s.identBeforeParen(i)
		}
	}
}

func (s *scanner) is(i int, text string) bool {
	return i >= 0 && i < len(s.toks) && s.toks[i].Is(text)
}

func (s *scanner) isOpen(i int) bool {
	return s.is(i, "(") || s.is(i, "[") || s.is(i, "{")
}

// offsetAt is the start of token i, or the end of input past the last token
func (s *scanner) offsetAt(i int) int {
	if i < len(s.toks) {
		return s.toks[i].Start
	}
	return len(s.src)
}

func (s *scanner) spanOf(a, b int) routelens.Span {
	if a >= b {
		at := s.offsetAt(a)
		return routelens.Span{Start: at, End: at}
	}
	return routelens.Span{Start: s.toks[a].Start, End: s.toks[b-1].End}
}

func (s *scanner) statementStart(i int) bool {
	if i == 0 {
		return true
	}
	return s.is(i-1, ";") || s.is(i-1, "{") || s.is(i-1, "}") || s.is(i-1, "]")
}

func (s *scanner) identBeforeParen(n int) {
	if controlKeywords[s.toks[n].Text] {
		return
	}
	if s.isDeclaration(n) {
		s.declareMethod(n)
		return
	}
	s.file.Calls = append(s.file.Calls, s.parseCall(n))
}

func (s *scanner) isDeclaration(n int) bool {
	if n == 0 {
		return false
	}
	prev := s.toks[n-1]
	switch {
	case prev.Kind == Ident:
		return !exprKeywords[prev.Text]
	case prev.Is(">"):
		return true
	case prev.Is("]"):
		return s.is(n-2, "[") || s.is(n-2, ",")
	}
	return false
}

func (s *scanner) declareMethod(n int) {
	name := s.toks[n]
	mods, ret := s.declarationHead(n)
	m := &Method{
		Name:       strings.TrimPrefix(name.Text, "@"),
		NameSpan:   routelens.Span{Start: name.Start, End: name.End},
		Modifiers:  mods,
		ReturnType: ret,
		Params:     s.parseParamList(n+1, len(s.toks)),
		Attributes: s.pendingAttrs,
	}
	for _, c := range s.pendingCalls {
		c.Decorates = m
	}
	s.pendingAttrs = nil
	s.pendingCalls = nil
	s.file.Methods = append(s.file.Methods, m)
}

// declarationHead collects the modifiers and return type written before a method name
func (s *scanner) declarationHead(n int) ([]string, string) {
	k := n - 1
	for k >= 0 {
		t := s.toks[k]
		arrayRank := (t.Is("[") && (s.is(k+1, "]") || s.is(k+1, ","))) ||
			(t.Is("]") && (s.is(k-1, "[") || s.is(k-1, ",")))
		if t.Kind == Ident || t.Is(".") || t.Is("<") || t.Is(">") || t.Is("?") ||
			t.Is(",") || t.Is("::") || arrayRank {
			k--
			continue
		}
		break
	}

	var mods []string
	var ret strings.Builder
	for _, t := range s.toks[k+1 : n] {
		if ret.Len() == 0 && t.Kind == Ident && declarationModifiers[t.Text] {
			mods = append(mods, t.Text)
			continue
		}
		ret.WriteString(t.Text)
	}
	return mods, ret.String()
}

func (s *scanner) parseCall(n int) *Call {
	open := n + 1
	end, closed := s.argumentEnd(open)
	callee, receiver := s.calleeParts(n)

	endOffset := s.offsetAt(end)
	if closed {
		endOffset = s.toks[end].End
	}
	c := &Call{
		Callee:   callee,
		Receiver: receiver,
		NameSpan: routelens.Span{Start: s.toks[n].Start, End: s.toks[n].End},
		Span:     routelens.Span{Start: s.toks[open].Start, End: endOffset},
		Closed:   closed,
		Args:     s.parseArguments(open, end),
	}
	if s.attrEnd >= 0 && n < s.attrEnd {
		c.InAttribute = true
		s.pendingCalls = append(s.pendingCalls, c)
	}
	return c
}

// argumentEnd finds the token that ends an argument list: the matching ')' or, for
// an unclosed list, a top-level ';'.
func (s *scanner) argumentEnd(open int) (int, bool) {
	close := s.pair[open]
	for k := open + 1; k < close; k++ {
		if s.isOpen(k) {
			if s.pair[k] >= close {
				break
			}
			k = s.pair[k]
			continue
		}
		if s.toks[k].Is(";") {
			return k, false
		}
	}
	return close, s.closed[open]
}

func (s *scanner) calleeParts(n int) ([]string, bool) {
	parts := []string{strings.TrimPrefix(s.toks[n].Text, "@")}
	receiver := false
	k := n
	for s.is(k-1, ".") {
		if k-2 >= 0 && s.toks[k-2].Kind == Ident {
			parts = append([]string{strings.TrimPrefix(s.toks[k-2].Text, "@")}, parts...)
			k -= 2
			continue
		}
		receiver = true
		break
	}
	return parts, receiver || len(parts) > 1
}

// parseArguments splits the tokens between open and end (exclusive) at top-level commas
func (s *scanner) parseArguments(open, end int) []*Argument {
	start := open + 1
	if start >= end {
		return nil
	}

	var args []*Argument
	k := start
	for k < end {
		if s.isOpen(k) {
			if s.pair[k] >= end {
				break
			}
			k = s.pair[k] + 1
			continue
		}
		if s.toks[k].Is(",") {
			args = append(args, s.parseArgument(start, k))
			start = k + 1
		}
		k++
	}
	return append(args, s.parseArgument(start, end))
}

func (s *scanner) parseArgument(a, b int) *Argument {
	arg := &Argument{Span: s.spanOf(a, b)}
	if b-a >= 2 && s.toks[a].Kind == Ident && s.toks[a+1].Is(":") {
		arg.Name = strings.TrimPrefix(s.toks[a].Text, "@")
		a += 2
	}
	arg.Expr = s.parseExpr(a, b)
	return arg
}

func (s *scanner) parseExpr(a, b int) Expr {
	span := s.spanOf(a, b)
	if a >= b {
		return &Opaque{Span: span}
	}

	if b-a == 1 {
		t := s.toks[a]
		switch {
		case t.Kind == String || t.Kind == Verbatim:
			return decodeString(t)
		case t.Is("null") || t.Is("default"):
			return &NullLit{Span: span}
		}
	}

	if lambda := s.parseLambda(a, b); lambda != nil {
		return lambda
	}
	if parts, ok := s.dottedName(a, b); ok {
		return &Ref{Span: span, Parts: parts}
	}
	return &Opaque{Span: span}
}

func (s *scanner) dottedName(a, b int) ([]string, bool) {
	var parts []string
	for k := a; k < b; k++ {
		t := s.toks[k]
		if (k-a)%2 == 0 {
			if t.Kind != Ident {
				return nil, false
			}
			parts = append(parts, strings.TrimPrefix(t.Text, "@"))
		} else if !t.Is(".") {
			return nil, false
		}
	}
	if (b-a)%2 == 0 {
		return nil, false
	}
	return parts, true
}

func (s *scanner) parseLambda(a, b int) *Lambda {
	lambda := &Lambda{Span: s.spanOf(a, b)}

	k := a
	for k < b && (s.toks[k].Is("async") || s.toks[k].Is("static")) {
		if s.toks[k].Text == "async" {
			lambda.Async = true
		}
		k++
	}
	anonymous := false
	if k < b && s.toks[k].Is("delegate") {
		anonymous = true
		k++
	}
	if k >= b {
		return nil
	}

	switch {
	case s.toks[k].Is("("):
		close := s.pair[k]
		lambda.Params = s.parseParamList(k, b)
		after := close + 1
		switch {
		case after < b && s.toks[after].Kind == Arrow:
			lambda.Arrow = true
			s.parseLambdaBody(lambda, after+1, b)
		case anonymous && s.is(after, "{") && after < b:
			lambda.Arrow = true
			s.parseLambdaBody(lambda, after, b)
		case close < b-1:
			// a parenthesised expression followed by more tokens
			return nil
		}
		// otherwise the parameter list is still being written
	case s.toks[k].Kind == Ident && !anonymous && k+1 < b && s.toks[k+1].Kind == Arrow:
		tok := s.toks[k]
		region := routelens.Span{Start: tok.Start, End: tok.End}
		lambda.Params = &ParamList{
			Span:   region,
			Closed: true,
			Params: []*Param{{Region: region, NameToken: &tok, Bare: true}},
		}
		lambda.Arrow = true
		s.parseLambdaBody(lambda, k+2, b)
	default:
		return nil
	}
	return lambda
}

func (s *scanner) parseLambdaBody(lambda *Lambda, k, b int) {
	if k >= b {
		return
	}
	if !s.toks[k].Is("{") {
		lambda.ReturnsValue = true
		return
	}
	lambda.Block = true
	end := s.pair[k]
	if end > b {
		end = b
	}
	for j := k + 1; j < end; j++ {
		if s.toks[j].Is("return") && j+1 < end && !s.toks[j+1].Is(";") {
			lambda.ReturnsValue = true
			return
		}
	}
}

// parseParamList parses the parameter list opened at token open. limit bounds the
// list for arguments that were cut short.
func (s *scanner) parseParamList(open, limit int) *ParamList {
	close, closed := s.pair[open], s.closed[open]
	if close > limit {
		close, closed = limit, false
	}

	list := &ParamList{
		Span:   routelens.Span{Start: s.toks[open].End, End: s.offsetAt(close)},
		Closed: closed,
	}

	regionStart := list.Span.Start
	start := open + 1
	angle := 0
	for k := start; k < close; k++ {
		t := s.toks[k]
		switch {
		case s.isOpen(k):
			if s.pair[k] >= close {
				k = close
				continue
			}
			k = s.pair[k]
		case t.Is("<"):
			angle++
		case t.Is(">") && angle > 0:
			angle--
		case t.Is(",") && angle == 0:
			list.Params = append(list.Params, s.parseParam(start, k, routelens.Span{Start: regionStart, End: t.Start}))
			regionStart = t.End
			start = k + 1
		}
	}
	list.Params = append(list.Params, s.parseParam(start, close, routelens.Span{Start: regionStart, End: list.Span.End}))
	return list
}

func (s *scanner) parseParam(a, b int, region routelens.Span) *Param {
	p := &Param{Region: region}

	k := a
	for k < b && s.toks[k].Is("[") {
		close := s.pair[k]
		if close > b {
			close = b
		}
		p.Attributes = append(p.Attributes, s.parseAttributeList(k, close)...)
		k = close + 1
	}
	for k < b && s.toks[k].Kind == Ident && parameterModifiers[s.toks[k].Text] {
		p.Modifiers = append(p.Modifiers, s.toks[k].Text)
		k++
	}

	end := b
	for j := k; j < b; j++ {
		if s.isOpen(j) {
			if s.pair[j] >= b {
				break
			}
			j = s.pair[j]
			continue
		}
		if s.toks[j].Is("=") {
			end = j
			break
		}
	}
	if k > end {
		return p
	}

	rest := s.toks[k:end]
	n := len(rest)
	switch {
	case n == 0:
	case n >= 2 && rest[n-1].Kind == Ident && !predefinedTypes[rest[n-1].Text] &&
		!rest[n-2].Is(".") && !rest[n-2].Is("::"):
		p.TypeTokens = append([]Token(nil), rest[:n-1]...)
		name := rest[n-1]
		p.NameToken = &name
	case n == 1 && rest[0].Kind == Ident && !predefinedTypes[rest[0].Text]:
		name := rest[0]
		p.NameToken = &name
		p.Bare = true
	default:
		p.TypeTokens = append([]Token(nil), rest...)
	}
	return p
}

// parseAttributeList parses the attributes between '[' at open and close (exclusive)
func (s *scanner) parseAttributeList(open, close int) []*Attribute {
	if close > len(s.toks) {
		close = len(s.toks)
	}

	var attrs []*Attribute
	start := open + 1
	for k := start; k <= close; k++ {
		if k < close && s.isOpen(k) {
			if s.pair[k] >= close {
				k = close - 1
				continue
			}
			k = s.pair[k]
			continue
		}
		if k == close || s.toks[k].Is(",") {
			if attr := s.parseAttribute(start, k); attr != nil {
				attrs = append(attrs, attr)
			}
			start = k + 1
		}
	}
	return attrs
}

func (s *scanner) parseAttribute(a, b int) *Attribute {
	// attribute targets such as "return:" or "param:"
	if b-a >= 2 && s.toks[a].Kind == Ident && s.toks[a+1].Is(":") {
		a += 2
	}

	var parts []string
	k := a
	for k < b && s.toks[k].Kind == Ident {
		parts = append(parts, strings.TrimPrefix(s.toks[k].Text, "@"))
		if !s.is(k+1, ".") || k+2 >= b {
			k++
			break
		}
		k += 2
	}
	if len(parts) == 0 {
		return nil
	}

	attr := &Attribute{Name: strings.Join(parts, "."), Span: s.spanOf(a, b)}
	if k < b && s.toks[k].Is("(") {
		end := s.pair[k]
		if end > b {
			end = b
		}
		attr.Args = s.parseArguments(k, end)
	}
	return attr
}

// decodeString decodes a regular or verbatim string token, recording for every
// value byte the source offset of the character or escape sequence that produced it.
func decodeString(t Token) *StringLit {
	lit := &StringLit{
		Span:     routelens.Span{Start: t.Start, End: t.End},
		Verbatim: t.Kind == Verbatim,
	}

	text := t.Text
	i := 1
	if lit.Verbatim {
		i = 2
	}

	var value []byte
	var offsets []int
	for i < len(text) {
		c := text[i]
		if c == '"' {
			if lit.Verbatim && i+1 < len(text) && text[i+1] == '"' {
				offsets = append(offsets, t.Start+i)
				value = append(value, '"')
				i += 2
				continue
			}
			lit.Terminated = true
			break
		}
		if c == '\\' && !lit.Verbatim && i+1 < len(text) {
			decoded, width := decodeEscape(text[i:])
			for n := 0; n < len(decoded); n++ {
				offsets = append(offsets, t.Start+i)
			}
			value = append(value, decoded...)
			i += width
			continue
		}
		offsets = append(offsets, t.Start+i)
		value = append(value, c)
		i++
	}
	offsets = append(offsets, t.Start+i)

	lit.Value = string(value)
	lit.Offsets = offsets
	return lit
}

var simpleEscapes = map[byte]string{
	'n': "\n", 't': "\t", 'r': "\r", '0': "\x00", 'a': "\a", 'b': "\b",
	'f': "\f", 'v': "\v", '\\': "\\", '"': "\"", '\'': "'",
}

// decodeEscape decodes the escape sequence at the start of s (s[0] == '\\')
func decodeEscape(s string) (string, int) {
	if v, ok := simpleEscapes[s[1]]; ok {
		return v, 2
	}

	digits := 0
	switch s[1] {
	case 'u':
		digits = 4
	case 'U':
		digits = 8
	case 'x':
		digits = 4
		for n := 0; n < 4; n++ {
			if 2+n >= len(s) || !isHex(s[2+n]) {
				digits = n
				break
			}
		}
	}
	if digits > 0 && 2+digits <= len(s) {
		if code, err := strconv.ParseUint(s[2:2+digits], 16, 32); err == nil && utf8.ValidRune(rune(code)) {
			return string(rune(code)), 2 + digits
		}
	}
	return s[1:2], 2
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
