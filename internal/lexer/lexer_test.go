package lexer

import (
	"testing"

	"github.com/funvibe/d/internal/token"
)

func kinds(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestTokenizeKeywordsAndPunctuation(t *testing.T) {
	toks := Tokenize("t.d", "var x := 1 + 2; if x <= 3 then print x end")
	got := kinds(toks)
	want := []token.Type{
		token.VAR, token.IDENT, token.ASSIGN, token.INT, token.PLUS, token.INT, token.SEMICOLON,
		token.IF, token.IDENT, token.LE, token.INT, token.THEN, token.PRINT, token.IDENT, token.END,
		token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenizeIntPayload(t *testing.T) {
	toks := Tokenize("t.d", "42")
	if toks[0].Type != token.INT {
		t.Fatalf("expected INT, got %v", toks[0].Type)
	}
	big, ok := toks[0].Int.(interface{ String() string })
	if !ok {
		t.Fatalf("Int payload missing String() method: %T", toks[0].Int)
	}
	if big.String() != "42" {
		t.Errorf("Int payload = %s, want 42", big.String())
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks := Tokenize("t.d", `"hi\n"`)
	if toks[0].Type != token.STRING {
		t.Fatalf("expected STRING, got %v", toks[0].Type)
	}
	if toks[0].Str != "hi\n" {
		t.Errorf("decoded string = %q, want %q", toks[0].Str, "hi\n")
	}
}

func TestTokenizeAlwaysEndsWithEOF(t *testing.T) {
	toks := Tokenize("t.d", "")
	if len(toks) != 1 || toks[0].Type != token.EOF {
		t.Fatalf("empty source should tokenize to a single EOF, got %v", toks)
	}
}

func TestSpansTrackLineAndColumn(t *testing.T) {
	toks := Tokenize("t.d", "a\nb")
	if toks[0].Span.Line != 1 {
		t.Errorf("first token line = %d, want 1", toks[0].Span.Line)
	}
	// find the second identifier
	var second token.Token
	found := 0
	for _, tk := range toks {
		if tk.Type == token.IDENT {
			found++
			if found == 2 {
				second = tk
			}
		}
	}
	if second.Span.Line != 2 {
		t.Errorf("second identifier line = %d, want 2", second.Span.Line)
	}
}
