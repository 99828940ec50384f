// Package lexer turns Astrixa source text into a token stream.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/astrixa-lang/astrixa/internal/diagnostics"
	"github.com/astrixa-lang/astrixa/internal/token"
)

// Lexer is a rune-at-a-time scanner over Astrixa source text.
//
// Line and Column always reflect the position of the next character to
// be consumed, so the parser can snapshot them when tagging a
// diagnostic at the current token (spec §4.2).
type Lexer struct {
	input        string
	err          *diagnostics.Diagnostic
	position     int
	readPosition int
	ch           rune
	Line         int
	Column       int
}

// New creates a Lexer over input. The input is normalized to Unicode
// NFC first so that identifiers built from combining-character
// sequences compare equal regardless of how the source file encoded
// them.
func New(input string) *Lexer {
	l := &Lexer{
		input:  norm.NFC.String(input),
		Line:   1,
		Column: 0,
	}
	l.readChar()
	return l
}

// Err returns the diagnostic that terminated lexing, if any.
func (l *Lexer) Err() *diagnostics.Diagnostic {
	return l.err
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.Line++
		l.Column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.Column++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
	l.Column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) currentPos() (int, int) {
	return l.Line, l.Column
}

func (l *Lexer) fail(message, help string) {
	if l.err != nil {
		return
	}
	line, col := l.currentPos()
	l.err = &diagnostics.Diagnostic{Message: message, Line: line, Column: col, Help: help}
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber() (token.Type, string) {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
		return token.FLOAT, l.input[start:l.position]
	}
	return token.INT, l.input[start:l.position]
}

// readString reads the body of a double-quoted string literal,
// consuming both the opening and closing quote. No escape processing
// is performed beyond accepting any non-'"' rune verbatim (spec §4.2).
func (l *Lexer) readString() (string, bool) {
	l.readChar() // consume opening quote
	var sb strings.Builder
	for l.ch != '"' {
		if l.ch == 0 {
			return sb.String(), false
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // consume closing quote
	return sb.String(), true
}

// twoCharOps is checked before singleCharOps so operators are matched
// by longest match (e.g. "==" before "=", "->" before "-").
var twoCharOps = map[string]token.Type{
	"->": token.ARROW,
	"==": token.EQ,
	"!=": token.NOT_EQ,
	"<=": token.LT_EQ,
	">=": token.GT_EQ,
	"&&": token.AND_AND,
	"||": token.OR_OR,
}

var singleCharOps = map[rune]token.Type{
	'(': token.LPAREN,
	')': token.RPAREN,
	'{': token.LBRACE,
	'}': token.RBRACE,
	':': token.COLON,
	',': token.COMMA,
	'.': token.DOT,
	'+': token.PLUS,
	'-': token.MINUS,
	'*': token.ASTERISK,
	'/': token.SLASH,
	'%': token.PERCENT,
	'<': token.LT,
	'>': token.GT,
	'!': token.BANG,
	'=': token.ASSIGN,
}

// NextToken scans and returns the next token. Once a lexical error has
// occurred, NextToken returns EOF forever (spec §4.2: "terminate
// lexing").
func (l *Lexer) NextToken() token.Token {
	if l.err != nil {
		return token.New(token.EOF, "", l.Line, l.Column)
	}

	for {
		l.skipWhitespace()
		if l.ch == '/' && l.peekChar() == '/' {
			l.skipLineComment()
			continue
		}
		break
	}

	line, col := l.currentPos()

	switch {
	case l.ch == 0:
		return token.New(token.EOF, "", line, col)
	case isLetter(l.ch):
		lit := l.readIdentifier()
		return token.New(token.LookupIdent(lit), lit, line, col)
	case isDigit(l.ch):
		tt, lit := l.readNumber()
		return token.New(tt, lit, line, col)
	case l.ch == '"':
		lit, terminated := l.readString()
		if !terminated {
			l.fail("unterminated string literal", "Close the string with a matching \" before the end of input")
			return token.New(token.EOF, "", line, col)
		}
		return token.New(token.STRING, lit, line, col)
	}

	two := string(l.ch) + string(l.peekChar())
	if tt, ok := twoCharOps[two]; ok {
		l.readChar()
		l.readChar()
		return token.New(tt, two, line, col)
	}

	if tt, ok := singleCharOps[l.ch]; ok {
		lit := string(l.ch)
		l.readChar()
		return token.New(tt, lit, line, col)
	}

	bad := l.ch
	l.fail("unexpected character '"+string(bad)+"'", "Remove or replace this character")
	l.readChar()
	return token.New(token.EOF, "", line, col)
}
