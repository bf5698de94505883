package syntax

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// TokenKind is the coarse class of a host-source token
type TokenKind int

const (
	Ident TokenKind = iota
	String
	Verbatim
	Char
	Number
	Arrow
	Punct
	Other
)

// Token is a lexed token with absolute byte offsets
type Token struct {
	Kind  TokenKind
	Text  string
	Start int
	End   int
}

// Is reports whether the token is the given punctuation or identifier text
func (t Token) Is(text string) bool {
	return (t.Kind == Punct || t.Kind == Ident || t.Kind == Arrow) && t.Text == text
}

// The rule list is total: whitespace and comments are elided by their lower-case
// names and the trailing "Other" rule accepts any remaining rune.
var hostLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "comment", Pattern: `//[^\n]*|/\*(?s:.*?)(?:\*/|$)`},
	{Name: "whitespace", Pattern: `\s+`},
	{Name: "Verbatim", Pattern: `@"(?:""|[^"])*"?`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\\n])*"?`},
	{Name: "Char", Pattern: `'(?:\\.|[^'\\\n])*'?`},
	{Name: "Number", Pattern: `[0-9][0-9A-Za-z_.]*`},
	{Name: "Ident", Pattern: `@?[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Arrow", Pattern: `=>`},
	{Name: "Punct", Pattern: `::|\?\?|[(){}\[\],.:;<>?=!+\-*/%&|^~]`},
	{Name: "Other", Pattern: `.`},
})

var kindBySymbol = func() map[lexer.TokenType]TokenKind {
	symbols := hostLexer.Symbols()
	return map[lexer.TokenType]TokenKind{
		symbols["Ident"]:    Ident,
		symbols["String"]:   String,
		symbols["Verbatim"]: Verbatim,
		symbols["Char"]:     Char,
		symbols["Number"]:   Number,
		symbols["Arrow"]:    Arrow,
		symbols["Punct"]:    Punct,
		symbols["Other"]:    Other,
	}
}()

// Tokenize lexes host source. It never fails; if the lexer reports an error the
// tokens read so far are returned.
func Tokenize(filename, src string) []Token {
	lex, err := hostLexer.LexString(filename, src)
	if err != nil {
		return nil
	}

	var tokens []Token
	for {
		tok, err := lex.Next()
		if err != nil || tok.EOF() {
			return tokens
		}
		kind, ok := kindBySymbol[tok.Type]
		if !ok {
			kind = Other
		}
		tokens = append(tokens, Token{
			Kind:  kind,
			Text:  tok.Value,
			Start: tok.Pos.Offset,
			End:   tok.Pos.Offset + len(tok.Value),
		})
	}
}
