package lexer

import (
	"testing"

	"github.com/codeassociates/jfmc/token"
)

func TestBasicTokens(t *testing.T) {
	input := `fn add(x: i32, y: i32) -> i32 { return x + y; }`

	tests := []struct {
		expectedKind   token.Kind
		expectedLexeme string
	}{
		{token.FN, "fn"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.COLON, ":"},
		{token.I32, "i32"},
		{token.COMMA, ","},
		{token.IDENT, "y"},
		{token.COLON, ":"},
		{token.I32, "i32"},
		{token.RPAREN, ")"},
		{token.ARROW, "->"},
		{token.I32, "i32"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.IDENT, "x"},
		{token.PLUS, "+"},
		{token.IDENT, "y"},
		{token.SEMI, ";"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.Next()
		if tok.Kind != tt.expectedKind {
			t.Fatalf("tests[%d] - kind wrong. expected=%s, got=%s (lexeme=%q)",
				i, tt.expectedKind, tok.Kind, tok.Lexeme)
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.expectedLexeme, tok.Lexeme)
		}
	}
}

func TestTwoCharOperators(t *testing.T) {
	input := `== != <= >= && || << >> += -= *= /= -> .. ::`
	expected := []token.Kind{
		token.EQ, token.NEQ, token.LE, token.GE, token.AND, token.OR,
		token.SHL, token.SHR, token.PLUSEQ, token.MINUSEQ, token.STAREQ,
		token.SLASHEQ, token.ARROW, token.DOTDOT, token.COLONCOLON, token.EOF,
	}
	l := New(input)
	for i, want := range expected {
		tok := l.Next()
		if tok.Kind != want {
			t.Fatalf("tests[%d] - expected=%s, got=%s (%q)", i, want, tok.Kind, tok.Lexeme)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input       string
		expectKind  token.Kind
		expectInt   int64
		expectFloat float64
	}{
		{"42", token.INT, 42, 0},
		{"3.14", token.FLOAT, 0, 3.14},
		{"1e3", token.FLOAT, 0, 1000},
		{"2.5e-1", token.FLOAT, 0, 0.25},
	}
	for _, tt := range tests {
		l := New(tt.input)
		tok := l.Next()
		if tok.Kind != tt.expectKind {
			t.Fatalf("input %q: expected kind %s, got %s", tt.input, tt.expectKind, tok.Kind)
		}
		if tt.expectKind == token.INT && tok.Literal.Int != tt.expectInt {
			t.Errorf("input %q: expected int %d, got %d", tt.input, tt.expectInt, tok.Literal.Int)
		}
		if tt.expectKind == token.FLOAT && tok.Literal.Float != tt.expectFloat {
			t.Errorf("input %q: expected float %v, got %v", tt.input, tt.expectFloat, tok.Literal.Float)
		}
	}
}

func TestStringAndCharLiterals(t *testing.T) {
	l := New(`"hello\n" 'a' '\t'`)

	tok := l.Next()
	if tok.Kind != token.STRING || tok.Lexeme != "hello\n" {
		t.Fatalf("expected decoded string literal, got kind=%s lexeme=%q", tok.Kind, tok.Lexeme)
	}

	tok = l.Next()
	if tok.Kind != token.CHAR || tok.Literal.Char != 'a' {
		t.Fatalf("expected char literal 'a', got kind=%s literal=%v", tok.Kind, tok.Literal.Char)
	}

	tok = l.Next()
	if tok.Kind != token.CHAR || tok.Literal.Char != '\t' {
		t.Fatalf("expected char literal tab, got kind=%s literal=%v", tok.Kind, tok.Literal.Char)
	}
}

func TestUnterminatedStringIsIllegal(t *testing.T) {
	l := New(`"unterminated`)
	tok := l.Next()
	if tok.Kind != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %s", tok.Kind)
	}
	// Scanning does not resume past an error.
	if again := l.Next(); again.Kind != token.ILLEGAL {
		t.Fatalf("expected lexer to stay on the error token, got %s", again.Kind)
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	input := "// a line comment\nlet x = 1; /* block\ncomment */ let y = 2;"
	l := New(input)
	var kinds []token.Kind
	for {
		tok := l.Next()
		kinds = append(kinds, tok.Kind)
		if tok.Kind == token.EOF || tok.Kind == token.ILLEGAL {
			break
		}
	}
	want := []token.Kind{
		token.LET, token.IDENT, token.ASSIGN, token.INT, token.SEMI,
		token.LET, token.IDENT, token.ASSIGN, token.INT, token.SEMI,
		token.EOF,
	}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(kinds), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token[%d]: expected %s, got %s", i, want[i], kinds[i])
		}
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	input := "let x = 1;\nlet y = 2;"
	l := New(input)

	// Skip to the second line's "let".
	var tok token.Token
	for i := 0; i < 6; i++ {
		tok = l.Next()
	}
	if tok.Line != 2 {
		t.Fatalf("expected token on line 2, got line %d (%q)", tok.Line, tok.Lexeme)
	}
}

func TestKeywordsAndTypeKeywords(t *testing.T) {
	input := "struct impl extern include as mut loop i8 u64 f32 bool char str"
	l := New(input)
	expected := []token.Kind{
		token.STRUCT, token.IMPL, token.EXTERN, token.INCLUDE, token.AS, token.MUT, token.LOOP,
		token.I8, token.U64, token.F32, token.BOOL, token.CHAR_KW, token.STR, token.EOF,
	}
	for i, want := range expected {
		tok := l.Next()
		if tok.Kind != want {
			t.Fatalf("tests[%d]: expected %s, got %s (%q)", i, want, tok.Kind, tok.Lexeme)
		}
		if token.IsTypeKeyword(want) && !token.IsTypeKeyword(tok.Kind) {
			t.Errorf("tests[%d]: expected %s to be a type keyword", i, tok.Kind)
		}
	}
}

func TestTokenizeStopsAtIllegalToken(t *testing.T) {
	toks := Tokenize("let x = 1; @")
	last := toks[len(toks)-1]
	if last.Kind != token.ILLEGAL {
		t.Fatalf("expected Tokenize to end on ILLEGAL, got %s", last.Kind)
	}
}

func TestTokenizeIncludesTrailingEOF(t *testing.T) {
	toks := Tokenize("let x = 1;")
	last := toks[len(toks)-1]
	if last.Kind != token.EOF {
		t.Fatalf("expected Tokenize to end on EOF, got %s", last.Kind)
	}
}
