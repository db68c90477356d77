package analyzer

import (
	"github.com/funvibe/d/internal/ast"
	"github.com/funvibe/d/internal/diagnostics"
	"github.com/funvibe/d/internal/timeline"
	"github.com/funvibe/d/internal/token"
	"github.com/funvibe/d/internal/values"
)

// Analyzer walks a Program, rewriting it in place and logging diagnostics.
// It owns no AST memory beyond what it rewrites; the tree it returns is
// the same *ast.Program with some statement/expression slots replaced.
type Analyzer struct {
	sink     diagnostics.Sink
	tl       *timeline.Timeline
	inFunc   bool
	inCycle  int // nesting depth of while/for bodies
	builtins map[string]*values.Builtin
}

func New(sink diagnostics.Sink, builtins map[string]*values.Builtin) *Analyzer {
	return &Analyzer{sink: sink, tl: timeline.New(), builtins: builtins}
}

// AnalyzeProgram is the entry point: it runs the statement visitor over
// the whole body, then reports top-level liveness before returning.
// HasErrors on the sink tells the caller whether execution may proceed
// (§7: "the system does not execute on any error diagnostic").
func (a *Analyzer) AnalyzeProgram(prog *ast.Program) {
	for name, b := range a.builtins {
		a.tl.Declare(name, zeroSpan(prog.File), timeline.StaticType(b.TypeOf()))
		a.tl.Lookup(name) // builtins are never flagged as unused
	}
	prog.Body = a.visitBody(prog.Body, false)
	a.reportScopeEnd(a.tl.EndScope())
}

func zeroSpan(file string) token.Span { return token.Span{File: file} }

func (a *Analyzer) log(d *diagnostics.Diagnostic) { a.sink.Log(d) }

// reportScopeEnd turns an EndScope report into VariableNeverUsed and
// AssignedValueUnused diagnostics (§4.3's variable-liveness pass).
func (a *Analyzer) reportScopeEnd(report timeline.EndReport) {
	for _, b := range report.DeclaredUnused {
		a.log(diagnostics.NewDiagnostic(diagnostics.VariableNeverUsed, b.DeclSpan, "variable %q is never used", b.Name))
	}
	for _, span := range report.AssignmentUnused {
		a.log(diagnostics.NewDiagnostic(diagnostics.AssignedValueUnused, span, "assigned value is never used"))
	}
}
