// Package locator is the source-file / line-column service: it maps a
// token.Span back onto the original source text and renders the excerpt
// a diagnostic report shows under an error (the `--locators` CLI flag).
package locator

import (
	"fmt"
	"strings"

	"github.com/funvibe/d/internal/config"
	"github.com/funvibe/d/internal/token"
)

// File holds one source file's text, indexed by line for fast excerpt
// rendering.
type File struct {
	Name  string
	lines []string
}

// NewFile splits src into lines, keeping the original line numbering
// (1-based) the lexer already stamped into its spans.
func NewFile(name, src string) *File {
	lines := strings.Split(src, "\n")
	return &File{Name: name, lines: lines}
}

func (f *File) Line(n int) (string, bool) {
	if n < 1 || n > len(f.lines) {
		return "", false
	}
	return f.lines[n-1], true
}

// Excerpt renders the line a span starts on plus a caret line pointing at
// its column, the shape every `--locators` error report uses.
func (f *File) Excerpt(span token.Span) string {
	line, ok := f.Line(span.Line)
	if !ok {
		return fmt.Sprintf("%s: <source unavailable>", span.String())
	}
	if len(line) > config.DefaultExcerptWidth {
		line = line[:config.DefaultExcerptWidth] + "…"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%s\n", span.String(), line)
	pad := span.Column - 1
	if pad < 0 {
		pad = 0
	}
	caretLen := span.Length
	if caretLen < 1 {
		caretLen = 1
	}
	sb.WriteString(strings.Repeat(" ", pad))
	sb.WriteString(strings.Repeat("^", caretLen))
	return sb.String()
}

// Set resolves a span against the right File by name, supporting a
// multi-file run (each CLI positional argument gets its own File).
type Set struct {
	byName map[string]*File
}

func NewSet() *Set { return &Set{byName: make(map[string]*File)} }

func (s *Set) Add(name, src string) *File {
	f := NewFile(name, src)
	s.byName[name] = f
	return f
}

func (s *Set) Excerpt(span token.Span) string {
	f, ok := s.byName[span.File]
	if !ok {
		return span.String()
	}
	return f.Excerpt(span)
}
