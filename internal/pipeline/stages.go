package pipeline

import (
	"io"

	"github.com/funvibe/d/internal/analyzer"
	"github.com/funvibe/d/internal/builtins"
	"github.com/funvibe/d/internal/executor"
)

// AnalyzeStage runs the constant-folding analyzer (§4.3) in place over
// the parsed program, rewriting folded/closure nodes and logging every
// diagnostic to ctx.Sink. Builtins is pre-declared into the analyzer's
// top-level scope so calls to them type-check, and calls to a pure
// builtin with known arguments fold (§4.3's call-analysis rule).
type AnalyzeStage struct {
	Input io.Reader
}

func (s AnalyzeStage) Process(ctx *Context) *Context {
	if ctx.StopAfterLex || ctx.Prog == nil {
		return ctx
	}
	reg := builtins.Registry(inputAdapter{s.Input})
	a := analyzer.New(ctx.Sink, reg)
	a.AnalyzeProgram(ctx.Prog)
	return ctx
}

// ExecuteStage runs the rewritten program through the tree-walking
// executor, skipping entirely when compilation failed or the CLI asked
// to stop after lexing/checking (§6's -L/-c flags).
type ExecuteStage struct {
	Out   io.Writer
	Input io.Reader
}

func (s ExecuteStage) Process(ctx *Context) *Context {
	if ctx.StopAfterLex || ctx.StopAfterCheck {
		return ctx
	}
	if ctx.Prog == nil || ctx.Sink.HasErrors() {
		return ctx
	}
	ex := executor.New(s.Out, s.Input)
	st := ex.Run(ctx.Prog)
	ctx.ExecState = &st
	return ctx
}

// inputAdapter lets the analyzer's builtins registry share the exact
// same io.Reader the executor will later read from, without analysis
// time ever actually consuming a byte (the `input` builtin is marked
// impure, so the analyzer never calls its Fn).
type inputAdapter struct{ r io.Reader }

func (inputAdapter) ReadInputLine() (string, bool) { return "", false }
