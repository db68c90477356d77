package ast

import (
	"testing"

	"github.com/funvibe/d/internal/token"
)

func TestProgramSpanOnEmptyBody(t *testing.T) {
	p := &Program{File: "t.d"}
	span := p.Span()
	if span.File != "t.d" {
		t.Errorf("Span().File = %q, want %q", span.File, "t.d")
	}
}

func TestProgramSpanUsesFirstStatement(t *testing.T) {
	p := &Program{
		File: "t.d",
		Body: []Statement{
			&ExitStmt{Tok: token.Token{Span: token.Span{File: "t.d", Line: 3}}},
		},
	}
	if got := p.Span().Line; got != 3 {
		t.Errorf("Span().Line = %d, want 3 (first statement's line)", got)
	}
}
