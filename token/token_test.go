package token

import "testing"

func TestLookupIdentClassifiesKeywords(t *testing.T) {
	tests := []struct {
		ident string
		want  Kind
	}{
		{"fn", FN},
		{"let", LET},
		{"struct", STRUCT},
		{"impl", IMPL},
		{"i32", I32},
		{"str", STR},
		{"true", TRUE},
		{"false", FALSE},
		{"foobar", IDENT},
		{"i33", IDENT},
	}
	for _, tt := range tests {
		if got := LookupIdent(tt.ident); got != tt.want {
			t.Errorf("LookupIdent(%q) = %s, want %s", tt.ident, got, tt.want)
		}
	}
}

func TestIsTypeKeyword(t *testing.T) {
	for _, k := range []Kind{I8, I16, I32, I64, U8, U16, U32, U64, F32, F64, BOOL, CHAR_KW, STR} {
		if !IsTypeKeyword(k) {
			t.Errorf("expected %s to be a type keyword", k)
		}
	}
	for _, k := range []Kind{FN, LET, IDENT, PLUS, IF} {
		if IsTypeKeyword(k) {
			t.Errorf("expected %s to not be a type keyword", k)
		}
	}
}

func TestKindStringFallsBackToUnknown(t *testing.T) {
	var unknown Kind = 9999
	if unknown.String() != "UNKNOWN" {
		t.Errorf("expected UNKNOWN for out-of-range kind, got %q", unknown.String())
	}
	if EOF.String() != "EOF" {
		t.Errorf("expected EOF name, got %q", EOF.String())
	}
}
