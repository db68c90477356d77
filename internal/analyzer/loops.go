package analyzer

import (
	"github.com/funvibe/d/internal/ast"
	"github.com/funvibe/d/internal/diagnostics"
	"github.com/funvibe/d/internal/timeline"
	"github.com/funvibe/d/internal/token"
	"github.com/funvibe/d/internal/types"
)

// visitWhileStmt implements §4.3's while-loop analysis: the condition is
// checked once against the live timeline without writing the result back
// into the condition slot (catching a statically-false or non-Boolean
// condition before the loop ever runs), then the body is
// analyzed inside a blind scope since the number of iterations is never
// statically known. Every ancestor name the body touches across that
// boundary is degraded to Unknown on the outer timeline once the body
// scope closes, modeling "this body may have run any number of times."
func (a *Analyzer) visitWhileStmt(n *ast.WhileStmt) StmtResult {
	cr := a.visitExpr(n.Cond)
	condType := cr.Content.TypeOf()
	if condType.Kind() != types.Bool && condType.Kind() != types.Unknown {
		a.log(diagnostics.NewDiagnostic(diagnostics.WhileConditionNotBoolAtStart, n.Cond.Span(), "while condition must be a boolean"))
	} else if cr.Content.IsValue {
		if taken, isBool := boolValue(cr.Content.Value); isBool && !taken {
			a.log(diagnostics.NewDiagnostic(diagnostics.WhileConditionFalseAtStart, n.Span(), "loop body never executes"))
			// §8: the body provably never runs, so it is pruned entirely
			// rather than merely analyzed-and-kept.
			if len(n.Body) > 0 {
				a.log(diagnostics.NewDiagnostic(diagnostics.CodeUnreachable, n.Body[0].Span(), "unreachable code"))
			}
			kept := []ast.Statement{}
			if !cr.Pure {
				kept = append(kept, &ast.ExprStmt{Tok: token.Token{Span: n.Cond.Span()}, Expr: n.Cond})
			}
			result := reachedEnd(cr.Pure)
			result.Replacement = kept
			return result
		}
	}

	a.tl.StartBlindScope()
	a.inCycle++
	// Re-check the condition inside the body's blind scope too, since
	// free variables it reads may have been degraded by the body itself
	// on a later iteration; this second read is the one whose folded
	// result replaces the condition slot.
	a.visitExprFolded(&n.Cond)
	n.Body = a.visitBody(n.Body, true)
	a.inCycle--
	touched := a.tl.ExternalsTouchedNames()
	report := a.tl.EndScope()
	a.reportScopeEnd(report)
	a.tl.DegradeNames(touched)

	return reachedEnd(false)
}

// visitForStmt handles both the numeric-range form (`for i in a..b loop`)
// and the iterable form (`for x in arr loop`); in both cases the loop
// variable is declared Unknown inside a fresh blind scope for the same
// reason a while body is blind (§4.3).
func (a *Analyzer) visitForStmt(n *ast.ForStmt) StmtResult {
	pure := true
	if n.Iterable != nil {
		r := a.visitExprFolded(&n.Iterable)
		pure = r.Pure
		it := r.Content.TypeOf()
		if it.Kind() != types.Array && it.Kind() != types.Unknown {
			a.log(diagnostics.NewDiagnostic(diagnostics.IterableExpected, n.Iterable.Span(), "value is not iterable"))
		}
	} else {
		sr := a.visitExprFolded(&n.Start)
		er := a.visitExprFolded(&n.Stop)
		pure = sr.Pure && er.Pure
		if sr.Content.TypeOf().Kind() != types.Integer && sr.Content.TypeOf().Kind() != types.Unknown {
			a.log(diagnostics.NewDiagnostic(diagnostics.IntegerBoundaryExpected, n.Start.Span(), "range boundary must be an integer"))
		}
		if er.Content.TypeOf().Kind() != types.Integer && er.Content.TypeOf().Kind() != types.Unknown {
			a.log(diagnostics.NewDiagnostic(diagnostics.IntegerBoundaryExpected, n.Stop.Span(), "range boundary must be an integer"))
		}
	}

	a.tl.StartBlindScope()
	a.inCycle++
	if n.VarName != "" {
		a.tl.Declare(n.VarName, n.Span(), timeline.StaticType(types.Simple(types.Unknown)))
		a.tl.Lookup(n.VarName) // the loop variable is allowed to go unread
	}
	n.Body = a.visitBody(n.Body, true)
	a.inCycle--
	touched := a.tl.ExternalsTouchedNames()
	report := a.tl.EndScope()
	a.reportScopeEnd(report)
	a.tl.DegradeNames(touched)

	_ = pure
	return reachedEnd(false)
}
