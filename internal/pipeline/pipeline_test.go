package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/funvibe/d/internal/diagnostics"
	"github.com/funvibe/d/internal/executor"
)

func newCtx(file, src string) *Context {
	return &Context{File: file, Source: src, Sink: diagnostics.NewAccumulatingSink()}
}

func TestFullPipelineRunsSourceToCompletion(t *testing.T) {
	var out bytes.Buffer
	ctx := newCtx("t.d", `print 1 + 2`)
	p := New(LexStage{}, ParseStage{}, AnalyzeStage{Input: strings.NewReader("")}, ExecuteStage{Out: &out, Input: strings.NewReader("")})
	ctx = p.Run(ctx)

	if ctx.Sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Sink.All())
	}
	if ctx.ExecState == nil {
		t.Fatal("ExecState was never filled in")
	}
	if ctx.ExecState.Kind != executor.Running {
		t.Errorf("terminal state = %+v, want Running", ctx.ExecState)
	}
	if out.String() != "3" {
		t.Errorf("stdout = %q, want %q", out.String(), "3")
	}
}

func TestStopAfterLexSkipsParseAnalyzeExecute(t *testing.T) {
	var out bytes.Buffer
	ctx := newCtx("t.d", `print 1`)
	ctx.StopAfterLex = true
	p := New(LexStage{}, ParseStage{}, AnalyzeStage{Input: strings.NewReader("")}, ExecuteStage{Out: &out, Input: strings.NewReader("")})
	ctx = p.Run(ctx)

	if ctx.Prog != nil {
		t.Errorf("Prog = %+v, want nil when StopAfterLex is set", ctx.Prog)
	}
	if ctx.ExecState != nil {
		t.Error("ExecState should not be set when StopAfterLex is set")
	}
	if len(ctx.Tokens) == 0 {
		t.Error("LexStage should still have tokenized the source")
	}
}

func TestStopAfterCheckSkipsExecute(t *testing.T) {
	var out bytes.Buffer
	ctx := newCtx("t.d", `print 1`)
	ctx.StopAfterCheck = true
	p := New(LexStage{}, ParseStage{}, AnalyzeStage{Input: strings.NewReader("")}, ExecuteStage{Out: &out, Input: strings.NewReader("")})
	ctx = p.Run(ctx)

	if ctx.Prog == nil {
		t.Fatal("Prog should still be parsed when only StopAfterCheck is set")
	}
	if ctx.ExecState != nil {
		t.Error("ExecState should not be set when StopAfterCheck is set")
	}
	if out.Len() != 0 {
		t.Errorf("stdout = %q, want empty (execution skipped)", out.String())
	}
}

func TestExecuteStageSkippedOnAnalysisErrors(t *testing.T) {
	var out bytes.Buffer
	ctx := newCtx("t.d", `print y`) // undefined variable -> analyzer error
	p := New(LexStage{}, ParseStage{}, AnalyzeStage{Input: strings.NewReader("")}, ExecuteStage{Out: &out, Input: strings.NewReader("")})
	ctx = p.Run(ctx)

	if !ctx.Sink.HasErrors() {
		t.Fatal("expected analysis errors for an undefined variable")
	}
	if ctx.ExecState != nil {
		t.Error("ExecuteStage should not run when the sink has errors")
	}
}

func TestBuiltinIsCallableThroughFullPipeline(t *testing.T) {
	var out bytes.Buffer
	ctx := newCtx("t.d", `print uuid4().Length`)
	p := New(LexStage{}, ParseStage{}, AnalyzeStage{Input: strings.NewReader("")}, ExecuteStage{Out: &out, Input: strings.NewReader("")})
	ctx = p.Run(ctx)

	if ctx.Sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Sink.All())
	}
	if out.String() != "36" {
		t.Errorf("stdout = %q, want %q (canonical uuid4 string length)", out.String(), "36")
	}
}
