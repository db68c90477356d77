package analyzer

import (
	"github.com/funvibe/d/internal/ast"
	"github.com/funvibe/d/internal/diagnostics"
	"github.com/funvibe/d/internal/timeline"
	"github.com/funvibe/d/internal/token"
	"github.com/funvibe/d/internal/types"
	"github.com/funvibe/d/internal/values"
)

// visitBody is the convenience wrapper used by AnalyzeProgram and plain
// nested blocks (if/while/for arms) that don't need the StmtResult back.
func (a *Analyzer) visitBody(body []ast.Statement, inLoop bool) []ast.Statement {
	out, _ := a.visitBodyResult(body, inLoop)
	return out
}

// visitBodyResult walks a statement list in order, threading termination
// state (§4.3 item 1): once a statement Exits, Returns or Errors, every
// following statement in the same list is unreachable and is flagged
// rather than analyzed for folding.
func (a *Analyzer) visitBodyResult(body []ast.Statement, inLoop bool) ([]ast.Statement, StmtResult) {
	out := make([]ast.Statement, 0, len(body))
	result := reachedEnd(true)
	terminated := false

	for _, stmt := range body {
		if terminated {
			a.log(diagnostics.NewDiagnostic(diagnostics.CodeUnreachable, stmt.Span(), "unreachable code"))
			continue
		}
		slot := stmt
		sr := a.visitStmt(&slot)
		if sr.Replacement != nil {
			out = append(out, sr.Replacement...)
		} else {
			out = append(out, slot)
		}
		result.Pure = result.Pure && sr.Pure
		if sr.hasReturn {
			result.mergeReturnType(sr.ReturnedType)
		}
		if sr.Termination != ReachedEnd {
			result.Termination = sr.Termination
			terminated = true
		}
	}
	return out, result
}

func (a *Analyzer) visitStmt(slot *ast.Statement) StmtResult {
	switch n := (*slot).(type) {
	case *ast.VarDecl:
		return a.visitVarDecl(n)
	case *ast.Assign:
		return a.visitAssign(n)
	case *ast.PrintStmt:
		return a.visitPrintStmt(n)
	case *ast.IfStmt:
		return a.visitIfStmt(n)
	case *ast.WhileStmt:
		return a.visitWhileStmt(n)
	case *ast.ForStmt:
		return a.visitForStmt(n)
	case *ast.ExitStmt:
		if a.inCycle == 0 {
			a.log(diagnostics.NewDiagnostic(diagnostics.ExitOutsideOfCycle, n.Span(), "exit used outside of a loop"))
		}
		return StmtResult{Termination: Exited, Pure: true}
	case *ast.ReturnStmt:
		return a.visitReturnStmt(n)
	case *ast.ExprStmt:
		return a.visitExprStmt(n)
	}
	return reachedEnd(true)
}

func (a *Analyzer) visitVarDecl(n *ast.VarDecl) StmtResult {
	var content timeline.Content
	pure := true
	if n.Value != nil {
		r := a.visitExprFolded(&n.Value)
		pure = r.Pure
		if r.Err {
			content = timeline.StaticType(types.Simple(types.Unknown))
		} else {
			content = r.Content
		}
	} else {
		content = timeline.StaticType(types.Simple(types.None))
	}
	if !a.tl.Declare(n.Name, n.Span(), content) {
		a.log(diagnostics.NewDiagnostic(diagnostics.VariableRedefined, n.Span(), "%q is already declared in this scope", n.Name))
	}
	return reachedEnd(pure)
}

func (a *Analyzer) visitAssign(n *ast.Assign) StmtResult {
	switch target := n.Target.(type) {
	case *ast.Identifier:
		r := a.visitExprFolded(&n.Value)
		lr := a.tl.Lookup(target.Name)
		if lr.Kind == timeline.NotFound {
			a.log(diagnostics.NewDiagnostic(diagnostics.VariableNotDefined, target.Span(), "%q is not defined", target.Name))
			return reachedEnd(r.Pure)
		}
		content := r.Content
		if r.Err {
			content = timeline.StaticType(types.Simple(types.Unknown))
		}
		a.tl.Assign(target.Name, content, n.Span())
		return reachedEnd(r.Pure)
	case *ast.IndexExpr:
		xr := a.visitExprFolded(&target.X)
		a.visitExprFolded(&target.Index)
		vr := a.visitExprFolded(&n.Value)
		if xr.Content.TypeOf().Kind() != types.Array && xr.Content.TypeOf().Kind() != types.Unknown {
			a.log(diagnostics.NewDiagnostic(diagnostics.SubscriptAssignOnlyArrays, n.Span(), "subscript assignment is only valid on arrays"))
		}
		a.tl.MakeAllUnknown()
		_ = vr
		return reachedEnd(false)
	case *ast.FieldAccess:
		a.visitExprFolded(&target.X)
		vr := a.visitExprFolded(&n.Value)
		if target.ByIndex {
			a.log(diagnostics.NewDiagnostic(diagnostics.CannotAssignIndexedField, n.Span(), "indexed tuple fields are not assignable"))
		} else {
			a.log(diagnostics.NewDiagnostic(diagnostics.CannotAssignNamedField, n.Span(), "named tuple fields are not assignable"))
		}
		return reachedEnd(vr.Pure)
	default:
		a.log(diagnostics.NewDiagnostic(diagnostics.FieldsOnlyAssignableInTuple, n.Span(), "invalid assignment target"))
		return reachedEnd(false)
	}
}

func (a *Analyzer) visitPrintStmt(n *ast.PrintStmt) StmtResult {
	pure := true
	for i := range n.Args {
		r := a.visitExprFolded(&n.Args[i])
		pure = pure && r.Pure
	}
	// print is a side effect; it never folds away, but it doesn't make
	// surrounding bindings Unknown either (§4.1: it reads, never writes).
	return reachedEnd(false)
}

func (a *Analyzer) visitReturnStmt(n *ast.ReturnStmt) StmtResult {
	if !a.inFunc {
		a.log(diagnostics.NewDiagnostic(diagnostics.ReturnOutsideOfFunction, n.Span(), "return used outside of a function"))
	}
	result := StmtResult{Termination: Returned, Pure: true}
	if n.Value != nil {
		r := a.visitExprFolded(&n.Value)
		result.Pure = r.Pure
		result.mergeReturnType(r.Content.TypeOf())
	} else {
		result.mergeReturnType(types.Simple(types.None))
	}
	return result
}

func (a *Analyzer) visitExprStmt(n *ast.ExprStmt) StmtResult {
	_, wasCall := n.Expr.(*ast.CallExpr)
	r := a.visitExprFolded(&n.Expr)
	if !wasCall {
		a.log(diagnostics.NewDiagnostic(diagnostics.ExpressionStatementNoEffect, n.Span(), "expression statement has no effect"))
	}
	return reachedEnd(r.Pure)
}

// visitIfStmt implements §4.2/§4.3's branch-merge rule: both the known-
// condition short-circuit path (only the taken arm's side effects apply,
// and the diagnostic that the other arm is unreachable is still useful
// information) and the unknown-condition path (clone, analyze each arm,
// Merge back) are handled.
func (a *Analyzer) visitIfStmt(n *ast.IfStmt) StmtResult {
	cr := a.visitExprFolded(&n.Cond)
	if !cr.Err && cr.Content.TypeOf().Kind() != types.Bool && cr.Content.TypeOf().Kind() != types.Unknown {
		a.log(diagnostics.NewDiagnostic(diagnostics.ConditionMustBeBoolean, n.Cond.Span(), "condition must be a boolean"))
	}

	if cr.Content.IsValue {
		taken, isBool := boolValue(cr.Content.Value)
		if isBool {
			a.log(diagnostics.NewDiagnostic(diagnostics.IfConditionAlwaysKnown, n.Span(), "condition is always %v", taken))
			return a.collapseIfStmt(n, taken, cr.Pure)
		}
	}

	thenTL := a.tl.Clone()
	elseTL := a.tl.Clone()

	a.tl = thenTL
	thenResult := a.runIfArm(n, true)
	a.tl = elseTL
	var elseResult StmtResult
	if n.HasElse {
		elseResult = a.runIfArm(n, false)
	} else {
		elseResult = reachedEnd(true)
	}

	thenTL.Merge(elseTL)
	a.tl = thenTL

	merged := StmtResult{Pure: cr.Pure && thenResult.Pure && elseResult.Pure}
	switch {
	case thenResult.Termination != ReachedEnd && elseResult.Termination != ReachedEnd:
		merged.Termination = thenResult.Termination
		if thenResult.Termination == Returned {
			merged.mergeReturnType(thenResult.ReturnedType)
		}
		if elseResult.Termination == Returned {
			merged.mergeReturnType(elseResult.ReturnedType)
		}
	default:
		merged.Termination = ReachedEnd
	}
	if thenResult.hasReturn {
		merged.mergeReturnType(thenResult.ReturnedType)
	}
	if elseResult.hasReturn {
		merged.mergeReturnType(elseResult.ReturnedType)
	}
	return merged
}

// runIfArm analyzes one arm of an if statement against the already
// a.tl-selected (cloned) timeline, rewriting that arm's statements.
func (a *Analyzer) runIfArm(n *ast.IfStmt, thenArm bool) StmtResult {
	if n.Short {
		var slot *ast.Expression
		if thenArm {
			slot = &n.ThenExpr
		} else {
			slot = &n.ElseExpr
		}
		if *slot == nil {
			return reachedEnd(true)
		}
		r := a.visitExprFolded(slot)
		result := reachedEnd(r.Pure)
		result.mergeReturnType(r.Content.TypeOf())
		return result
	}
	var body *[]ast.Statement
	if thenArm {
		body = &n.Then
	} else {
		body = &n.Else
	}
	out, result := a.visitBodyResult(*body, false)
	*body = out
	return result
}

// collapseIfStmt implements §8's dead-branch pruning: a statically-known
// condition means only the taken arm is analyzed (no clone/merge needed,
// since the other arm provably never executes), the untaken arm is
// flagged CodeUnreachable, and the whole *ast.IfStmt is replaced by the
// taken arm's own statements. A condition kept around only for a side
// effect (never true for a pure fold in this implementation, but the
// rule still applies if one ever reaches here) is hoisted ahead of it as
// a bare expression statement so that effect still runs exactly once.
func (a *Analyzer) collapseIfStmt(n *ast.IfStmt, taken bool, condPure bool) StmtResult {
	var result StmtResult
	var kept []ast.Statement

	if n.Short {
		var slot *ast.Expression
		var dead ast.Expression
		switch {
		case taken:
			slot = &n.ThenExpr
			if n.HasElse {
				dead = n.ElseExpr
			}
		case n.HasElse:
			slot = &n.ElseExpr
			dead = n.ThenExpr
		default:
			dead = n.ThenExpr
		}
		if dead != nil {
			a.log(diagnostics.NewDiagnostic(diagnostics.CodeUnreachable, dead.Span(), "unreachable code"))
		}
		if slot == nil {
			result = reachedEnd(true)
			kept = []ast.Statement{}
		} else {
			r := a.visitExprFolded(slot)
			result = reachedEnd(r.Pure)
			result.mergeReturnType(r.Content.TypeOf())
			kept = []ast.Statement{&ast.ExprStmt{Tok: token.Token{Span: (*slot).Span()}, Expr: *slot}}
		}
	} else {
		var body *[]ast.Statement
		var dead []ast.Statement
		switch {
		case taken:
			body = &n.Then
			if n.HasElse {
				dead = n.Else
			}
		case n.HasElse:
			body = &n.Else
			dead = n.Then
		default:
			dead = n.Then
		}
		if len(dead) > 0 {
			a.log(diagnostics.NewDiagnostic(diagnostics.CodeUnreachable, dead[0].Span(), "unreachable code"))
		}
		if body == nil {
			result = reachedEnd(true)
			kept = []ast.Statement{}
		} else {
			out, r := a.visitBodyResult(*body, false)
			*body = out
			result = r
			kept = out
		}
	}

	result.Pure = result.Pure && condPure
	if !condPure {
		kept = append([]ast.Statement{&ast.ExprStmt{Tok: token.Token{Span: n.Cond.Span()}, Expr: n.Cond}}, kept...)
	}
	if kept == nil {
		kept = []ast.Statement{}
	}
	result.Replacement = kept
	return result
}

func boolValue(v values.Value) (bool, bool) {
	return values.Truthy(v)
}
