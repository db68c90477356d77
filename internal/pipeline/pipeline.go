// Package pipeline composes the four stages sketched in spec §2's data
// flow (`tokens -> AST -> rewritten-AST + diagnostics -> execution`)
// into a single reusable run, the shape a CLI front-end or an embedding
// host drives directly.
package pipeline

import (
	"github.com/funvibe/d/internal/ast"
	"github.com/funvibe/d/internal/diagnostics"
	"github.com/funvibe/d/internal/executor"
	"github.com/funvibe/d/internal/lexer"
	"github.com/funvibe/d/internal/parser"
	"github.com/funvibe/d/internal/token"
)

// Context carries one source file through every stage.
type Context struct {
	File   string
	Source string

	Tokens []token.Token
	Prog   *ast.Program

	Sink *diagnostics.AccumulatingSink

	// StopAfterLex / StopAfterCheck implement the CLI's -L/-c flags: a
	// later Processor that finds either set returns without doing its
	// own work.
	StopAfterLex   bool
	StopAfterCheck bool

	// ExecState is filled in by Execute; nil if execution never ran
	// (lex/parse/compile error, or -c/-L was requested).
	ExecState *executor.State
}

// Processor is one pipeline stage.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline runs an ordered list of stages over one Context.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

func (p *Pipeline) Run(initial *Context) *Context {
	ctx := initial
	for _, proc := range p.processors {
		ctx = proc.Process(ctx)
	}
	return ctx
}

// LexStage tokenizes ctx.Source. The lexer never fails outright (§6): a
// malformed token still carries ILLEGAL, which the parser turns into a
// ParseError diagnostic at the point it's consumed.
type LexStage struct{}

func (LexStage) Process(ctx *Context) *Context {
	ctx.Tokens = lexer.Tokenize(ctx.File, ctx.Source)
	return ctx
}

// ParseStage builds the AST contract (§6) from the token stream. After a
// parse error ctx.Prog's Body holds the statements that did parse;
// diagnostics explain the rest.
type ParseStage struct{}

func (ParseStage) Process(ctx *Context) *Context {
	if ctx.StopAfterLex {
		return ctx
	}
	ctx.Prog = parser.ParseProgram(ctx.File, ctx.Tokens, ctx.Sink)
	return ctx
}

