package lexer

import (
	"testing"

	"github.com/astrixa-lang/astrixa/internal/token"
)

func collect(src string) []token.Token {
	l := New(src)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func TestMinimalFunctionTokens(t *testing.T) {
	toks := collect("fn greet { }")
	wantTypes := []token.Type{token.FN, token.IDENT, token.LBRACE, token.RBRACE, token.EOF}
	if len(toks) != len(wantTypes) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(wantTypes), toks)
	}
	for i, want := range wantTypes {
		if toks[i].Type != want {
			t.Errorf("token[%d].Type = %v, want %v", i, toks[i].Type, want)
		}
	}
}

// TestRoundTripPosition exercises spec §8's round-trip invariant: the
// token beginning at source character (L, C) carries line=L, column=C,
// including across a line break where column resets to 1.
func TestRoundTripPosition(t *testing.T) {
	src := "fn {\n}\n"
	toks := collect(src)
	type want struct {
		typ        token.Type
		line, col int
	}
	wants := []want{
		{token.FN, 1, 1},
		{token.LBRACE, 1, 4},
		{token.RBRACE, 2, 1},
		{token.EOF, 3, 1},
	}
	if len(toks) != len(wants) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(wants), toks)
	}
	for i, w := range wants {
		if toks[i].Type != w.typ || toks[i].Line != w.line || toks[i].Column != w.col {
			t.Errorf("token[%d] = %v @ (%d,%d), want %v @ (%d,%d)",
				i, toks[i].Type, toks[i].Line, toks[i].Column, w.typ, w.line, w.col)
		}
	}
}

func TestLineCommentsAreDiscarded(t *testing.T) {
	toks := collect("fn greet { } // trailing comment\n// whole line\nlet x = 1")
	var sawComment bool
	for _, tok := range toks {
		if tok.Literal == "trailing" || tok.Literal == "comment" {
			sawComment = true
		}
	}
	if sawComment {
		t.Error("comment text leaked into token stream")
	}
}

func TestUnterminatedStringProducesDiagnostic(t *testing.T) {
	l := New(`"unterminated`)
	tok := l.NextToken()
	if tok.Type != token.EOF {
		t.Fatalf("Type = %v, want EOF", tok.Type)
	}
	if l.Err() == nil {
		t.Fatal("expected a diagnostic for an unterminated string")
	}
	if l.Err().Message != "unterminated string literal" {
		t.Errorf("Message = %q", l.Err().Message)
	}
}

func TestTerminatedStringLiteral(t *testing.T) {
	l := New(`"hello world"`)
	tok := l.NextToken()
	if tok.Type != token.STRING || tok.Literal != "hello world" {
		t.Errorf("got %+v", tok)
	}
}

func TestNumberLiterals(t *testing.T) {
	cases := []struct {
		src  string
		typ  token.Type
		lit  string
	}{
		{"42", token.INT, "42"},
		{"3.14", token.FLOAT, "3.14"},
		{"5.", token.INT, "5"}, // trailing dot with no digit after is not a float
	}
	for _, c := range cases {
		l := New(c.src)
		tok := l.NextToken()
		if tok.Type != c.typ || tok.Literal != c.lit {
			t.Errorf("New(%q).NextToken() = %+v, want {%v %q}", c.src, tok, c.typ, c.lit)
		}
	}
}

func TestOperatorLongestMatch(t *testing.T) {
	cases := []struct {
		src string
		typ token.Type
	}{
		{"==", token.EQ}, {"=", token.ASSIGN},
		{"->", token.ARROW}, {"-", token.MINUS},
		{"<=", token.LT_EQ}, {"<", token.LT},
		{">=", token.GT_EQ}, {">", token.GT},
		{"!=", token.NOT_EQ}, {"!", token.BANG},
		{"&&", token.AND_AND}, {"||", token.OR_OR},
	}
	for _, c := range cases {
		l := New(c.src)
		tok := l.NextToken()
		if tok.Type != c.typ {
			t.Errorf("New(%q).NextToken().Type = %v, want %v", c.src, tok.Type, c.typ)
		}
	}
}

func TestUnexpectedCharacterStopsLexing(t *testing.T) {
	l := New("let x = @")
	var last token.Token
	for i := 0; i < 10; i++ {
		last = l.NextToken()
		if last.Type == token.EOF {
			break
		}
	}
	if l.Err() == nil {
		t.Fatal("expected a diagnostic for '@'")
	}
	// Once failed, NextToken must keep returning EOF.
	again := l.NextToken()
	if again.Type != token.EOF {
		t.Errorf("NextToken() after failure = %v, want EOF", again.Type)
	}
}

func TestNFCNormalization(t *testing.T) {
	// "é" as NFD (e + combining acute) should lex identically to NFC.
	nfd := "café"
	l := New(nfd)
	tok := l.NextToken()
	if tok.Type != token.IDENT {
		t.Fatalf("Type = %v, want IDENT", tok.Type)
	}
	if tok.Literal != "café" {
		t.Errorf("Literal = %q, want NFC-normalized form", tok.Literal)
	}
}
