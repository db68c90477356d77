package analyzer

import (
	"math/big"

	"github.com/funvibe/d/internal/ast"
	"github.com/funvibe/d/internal/bigint"
	"github.com/funvibe/d/internal/diagnostics"
	"github.com/funvibe/d/internal/timeline"
	"github.com/funvibe/d/internal/token"
	"github.com/funvibe/d/internal/types"
	"github.com/funvibe/d/internal/values"
)

func bigFromAST(v *big.Int) bigint.Int { return bigint.FromBig(v) }

// opString maps the handful of token types the folding algebra cares
// about onto the short operator strings values.Binary/types.BinaryOp use.
func opString(t token.Type) string {
	switch t {
	case token.PLUS:
		return "+"
	case token.MINUS:
		return "-"
	case token.STAR:
		return "*"
	case token.SLASH:
		return "/"
	case token.EQ:
		return "=="
	case token.NEQ:
		return "!="
	case token.LT:
		return "<"
	case token.LE:
		return "<="
	case token.GT:
		return ">"
	case token.GE:
		return ">="
	}
	return "?"
}

func litToken(span token.Span) token.Token { return token.Token{Span: span} }

func (a *Analyzer) visitExpr(e ast.Expression) ExprResult {
	switch n := e.(type) {
	case *ast.Identifier:
		return a.visitIdentifier(n)
	case *ast.IntLiteral:
		return ExprResult{Content: timeline.KnownValue(&values.Int{V: bigFromAST(n.Value)}), Pure: true}
	case *ast.RealLiteral:
		return ExprResult{Content: timeline.KnownValue(&values.Real{V: n.Value}), Pure: true}
	case *ast.StringLiteral:
		return ExprResult{Content: timeline.KnownValue(&values.Str{V: n.Value}), Pure: true}
	case *ast.BoolLiteral:
		return ExprResult{Content: timeline.KnownValue(values.BoolOf(n.Value)), Pure: true}
	case *ast.NoneLiteral:
		return ExprResult{Content: timeline.KnownValue(values.Nil), Pure: true}
	case *ast.LiteralValue:
		v, _ := n.Payload.(values.Value)
		return ExprResult{Content: timeline.KnownValue(v), Pure: true}
	case *ast.ArrayLiteral:
		return a.visitArrayLiteral(n)
	case *ast.TupleLiteral:
		return a.visitTupleLiteral(n)
	case *ast.FuncLiteral:
		return a.visitFuncLiteral(n)
	case *ast.ClosureDef:
		return ExprResult{Content: timeline.StaticType(types.Fn(len(n.Params), types.Simple(types.Unknown), false))}
	case *ast.BinaryExpr:
		return a.visitBinary(n)
	case *ast.LogicalExpr:
		return a.visitLogical(n)
	case *ast.CompareExpr:
		return a.visitCompare(n)
	case *ast.UnaryExpr:
		return a.visitUnary(n)
	case *ast.FieldAccess:
		return a.visitFieldAccess(n)
	case *ast.IndexExpr:
		return a.visitIndex(n)
	case *ast.CallExpr:
		return a.visitCall(n)
	case *ast.RangeExpr:
		a.visitExprFolded(&n.Start)
		a.visitExprFolded(&n.Stop)
		return ExprResult{Content: timeline.StaticType(types.Simple(types.Unknown))}
	}
	return exprError()
}

// visitExprFolded visits an expression slot and rewrites it in place with
// the analyzer's Replacement when one was produced, returning the result.
func (a *Analyzer) visitExprFolded(slot *ast.Expression) ExprResult {
	res := a.visitExpr(*slot)
	if res.Replacement != nil {
		*slot = res.Replacement
	}
	return res
}

func (a *Analyzer) visitIdentifier(n *ast.Identifier) ExprResult {
	lr := a.tl.Lookup(n.Name)
	switch lr.Kind {
	case timeline.NotFound:
		a.log(diagnostics.NewDiagnostic(diagnostics.VariableNotDefined, n.Span(), "%q is not defined", n.Name))
		return exprError()
	case timeline.FoundValue:
		return ExprResult{Content: timeline.KnownValue(lr.Binding.Content.Value), Pure: true}
	case timeline.FoundType:
		return ExprResult{Content: timeline.StaticType(lr.Binding.Content.Type), Pure: false}
	default: // BehindBlind
		return ExprResult{Content: timeline.StaticType(types.Simple(types.Unknown)), Pure: false}
	}
}

func (a *Analyzer) visitArrayLiteral(n *ast.ArrayLiteral) ExprResult {
	pure := true
	for i := range n.Elements {
		r := a.visitExprFolded(&n.Elements[i])
		pure = pure && r.Pure
	}
	// Arrays are never folded into a shared literal: each execution
	// allocates a fresh Array (§4.1).
	return ExprResult{Content: timeline.StaticType(types.Simple(types.Array)), Pure: pure}
}

func (a *Analyzer) visitTupleLiteral(n *ast.TupleLiteral) ExprResult {
	pure := true
	known := true
	vals := make([]values.Value, len(n.Fields))
	names := make(map[string]int)
	fieldNames := make([]string, len(n.Fields))
	seen := make(map[string]bool)
	for i := range n.Fields {
		f := &n.Fields[i]
		r := a.visitExprFolded(&f.Value)
		pure = pure && r.Pure
		if !r.Content.IsValue {
			known = false
		} else {
			vals[i] = r.Content.Value
		}
		fieldNames[i] = f.Name
		if f.Name != "" {
			if seen[f.Name] {
				a.log(diagnostics.NewDiagnostic(diagnostics.DuplicateFieldNames, f.Tok.Span, "duplicate field name %q", f.Name))
			}
			seen[f.Name] = true
			names[f.Name] = i
		}
	}
	if known {
		return ExprResult{Content: timeline.KnownValue(values.NewTuple(vals, names)), Pure: pure}
	}
	return ExprResult{Content: timeline.StaticType(types.TupleOf(fieldNames)), Pure: pure}
}

// visitFuncLiteral runs the function-literal analysis pass (§4.3): a
// blind scope hides every ancestor binding as Unknown, parameters are
// declared as Unknown, and whatever ancestor names the body reads or
// writes across that boundary become CapturedNames; ClosureDef replaces
// the FuncLiteral so the executor does not need to redo this walk.
func (a *Analyzer) visitFuncLiteral(n *ast.FuncLiteral) ExprResult {
	a.tl.StartBlindScope()
	for _, p := range n.Params {
		a.tl.Declare(p, n.Span(), timeline.StaticType(types.Simple(types.Unknown)))
	}
	wasInFunc := a.inFunc
	a.inFunc = true
	var bodyResult StmtResult
	if n.ShortBody != nil {
		r := a.visitExprFolded(&n.ShortBody)
		bodyResult = StmtResult{Termination: ReachedEnd, Pure: r.Pure}
		bodyResult.mergeReturnType(r.Content.TypeOf())
	} else {
		n.Body, bodyResult = a.visitBodyResult(n.Body, true)
	}
	a.inFunc = wasInFunc
	captured := a.tl.ExternalsTouchedNames()
	report := a.tl.EndScope()
	a.reportScopeEnd(report)

	names := make([]string, 0, len(captured))
	for name := range captured {
		names = append(names, name)
	}

	pure := bodyResult.Pure && len(names) == 0
	retType := bodyResult.ReturnedType
	if retType.Kind() == types.Integer && !bodyResult.hasReturn {
		retType = types.Simple(types.Unknown)
	}
	replacement := &ast.ClosureDef{Tok: n.Tok, Params: n.Params, Body: n.Body, ShortBody: n.ShortBody, CapturedNames: names}
	return ExprResult{
		Content:     timeline.StaticType(types.Fn(len(n.Params), retType, pure)),
		Pure:        true,
		Replacement: replacement,
	}
}

func (a *Analyzer) visitBinary(n *ast.BinaryExpr) ExprResult {
	lr := a.visitExprFolded(&n.Left)
	rr := a.visitExprFolded(&n.Right)
	if lr.Err || rr.Err {
		return exprError()
	}
	op := opString(n.Op)
	pure := lr.Pure && rr.Pure

	if lr.Content.IsValue && rr.Content.IsValue {
		out := values.Binary(op, lr.Content.Value, rr.Content.Value, n.Span())
		if out.Unsupported {
			a.reportOperatorNotApplicable(n.Span(), op, lr.Content.TypeOf(), rr.Content.TypeOf())
			return exprError()
		}
		if out.Err != nil {
			if out.Err.Kind == "DivisionByZero" {
				a.log(diagnostics.NewDiagnostic(diagnostics.IntegerZeroDivisionWarning, n.Span(), "integer division by zero"))
			}
			return ExprResult{Content: timeline.StaticType(types.Simple(types.Unknown)), Pure: pure, Err: true}
		}
		return ExprResult{
			Content:     timeline.KnownValue(out.Value),
			Pure:        pure,
			Replacement: &ast.LiteralValue{Tok: litToken(n.Span()), Payload: out.Value},
		}
	}

	rt, result := types.BinaryOp(op, lr.Content.TypeOf(), rr.Content.TypeOf())
	if result == types.Unsupported {
		a.reportOperatorNotApplicable(n.Span(), op, lr.Content.TypeOf(), rr.Content.TypeOf())
		return exprError()
	}
	return ExprResult{Content: timeline.StaticType(rt), Pure: pure}
}

func (a *Analyzer) reportOperatorNotApplicable(span token.Span, op string, left, right types.Type) {
	a.log(diagnostics.NewDiagnostic(diagnostics.OperatorNotApplicable, span,
		"operator %q is not applicable to %s and %s", op, left, right))
}

// visitLogical implements `and or xor`. The right operand is always
// visited (for diagnostics and liveness on both branches), but the fold
// only needs both sides known.
func (a *Analyzer) visitLogical(n *ast.LogicalExpr) ExprResult {
	lr := a.visitExprFolded(&n.Left)
	rr := a.visitExprFolded(&n.Right)
	if lr.Err || rr.Err {
		return exprError()
	}
	pure := lr.Pure && rr.Pure
	opName := logicalOpName(n.Op)

	if lr.Content.IsValue && rr.Content.IsValue {
		out := values.Logical(opName, lr.Content.Value, rr.Content.Value, n.Span())
		if out.Unsupported {
			a.reportOperatorNotApplicable(n.Span(), opName, lr.Content.TypeOf(), rr.Content.TypeOf())
			return exprError()
		}
		return ExprResult{Content: timeline.KnownValue(out.Value), Pure: pure,
			Replacement: &ast.LiteralValue{Tok: litToken(n.Span()), Payload: out.Value}}
	}

	rt, result := types.LogicalOp(lr.Content.TypeOf(), rr.Content.TypeOf())
	if result == types.Unsupported {
		a.reportOperatorNotApplicable(n.Span(), opName, lr.Content.TypeOf(), rr.Content.TypeOf())
		return exprError()
	}
	return ExprResult{Content: timeline.StaticType(rt), Pure: pure}
}

func logicalOpName(t token.Type) string {
	switch t {
	case token.AND:
		return "and"
	case token.OR:
		return "or"
	case token.XOR:
		return "xor"
	}
	return "?"
}

// visitCompare folds a chained comparison (a R1 b R2 c ...) into the
// conjunction of its pairwise comparisons (§4.3's comparison-chain rule).
func (a *Analyzer) visitCompare(n *ast.CompareExpr) ExprResult {
	operandResults := make([]ExprResult, len(n.Operands))
	pure := true
	anyErr := false
	for i := range n.Operands {
		operandResults[i] = a.visitExprFolded(&n.Operands[i])
		pure = pure && operandResults[i].Pure
		anyErr = anyErr || operandResults[i].Err
	}
	if anyErr {
		return exprError()
	}

	allKnown := true
	for _, r := range operandResults {
		if !r.Content.IsValue {
			allKnown = false
		}
	}

	if allKnown {
		result := true
		for i, op := range n.Ops {
			out := values.Compare(opString(op), operandResults[i].Content.Value, operandResults[i+1].Content.Value, n.Span())
			if out.Unsupported {
				a.reportOperatorNotApplicable(n.Span(), opString(op), operandResults[i].Content.TypeOf(), operandResults[i+1].Content.TypeOf())
				return exprError()
			}
			b, _ := values.Truthy(out.Value)
			result = result && b
		}
		v := values.BoolOf(result)
		return ExprResult{Content: timeline.KnownValue(v), Pure: pure, Replacement: &ast.LiteralValue{Tok: litToken(n.Span()), Payload: v}}
	}

	for i, op := range n.Ops {
		_, result := types.BinaryOp(opString(op), operandResults[i].Content.TypeOf(), operandResults[i+1].Content.TypeOf())
		if result == types.Unsupported {
			a.reportOperatorNotApplicable(n.Span(), opString(op), operandResults[i].Content.TypeOf(), operandResults[i+1].Content.TypeOf())
			return exprError()
		}
	}
	return ExprResult{Content: timeline.StaticType(types.Simple(types.Bool)), Pure: pure}
}

func (a *Analyzer) visitUnary(n *ast.UnaryExpr) ExprResult {
	xr := a.visitExprFolded(&n.X)
	if xr.Err {
		return exprError()
	}
	op := unaryOpName(n.Op)
	if xr.Content.IsValue {
		out := values.Unary(op, xr.Content.Value, n.Span())
		if out.Unsupported {
			a.log(diagnostics.NewDiagnostic(diagnostics.OperatorNotApplicable, n.Span(), "operator %q is not applicable to %s", op, xr.Content.TypeOf()))
			return exprError()
		}
		return ExprResult{Content: timeline.KnownValue(out.Value), Pure: xr.Pure,
			Replacement: &ast.LiteralValue{Tok: litToken(n.Span()), Payload: out.Value}}
	}
	rt, result := types.UnaryOp(op, xr.Content.TypeOf())
	if result == types.Unsupported {
		a.log(diagnostics.NewDiagnostic(diagnostics.OperatorNotApplicable, n.Span(), "operator %q is not applicable to %s", op, xr.Content.TypeOf()))
		return exprError()
	}
	return ExprResult{Content: timeline.StaticType(rt), Pure: xr.Pure}
}

func unaryOpName(t token.Type) string {
	switch t {
	case token.PLUS:
		return "+"
	case token.MINUS:
		return "-"
	case token.NOT:
		return "not"
	}
	return "?"
}

func (a *Analyzer) visitFieldAccess(n *ast.FieldAccess) ExprResult {
	xr := a.visitExprFolded(&n.X)
	if xr.Err {
		return exprError()
	}
	if n.ByIndex {
		// `.(i)` / `.<int>` addresses a tuple position directly.
		if xr.Content.IsValue {
			if tup, isOk := xr.Content.Value.(*values.Tuple); isOk {
				if n.Index < 0 || n.Index >= len(tup.Values) {
					a.log(diagnostics.NewDiagnostic(diagnostics.NoSuchField, n.Span(), "tuple has no field at position %d", n.Index+1))
					return exprError()
				}
				v := tup.Values[n.Index]
				res := ExprResult{Content: timeline.KnownValue(v), Pure: xr.Pure}
				if _, isTup := v.(*values.Tuple); !isTup {
					res.Replacement = &ast.LiteralValue{Tok: litToken(n.Span()), Payload: v}
				}
				return res
			}
		}
		return ExprResult{Content: timeline.StaticType(types.Simple(types.Unknown)), Pure: xr.Pure}
	}

	name := n.Name
	if xr.Content.IsValue {
		out := values.Field(xr.Content.Value, name, n.Span())
		if out.Unsupported {
			a.log(diagnostics.NewDiagnostic(diagnostics.NoSuchField, n.Span(), "no such field: %s", name))
			return exprError()
		}
		if out.Err != nil {
			code := diagnostics.NoneValueAccessed
			if out.Err.Kind == "FieldNotFound" {
				code = diagnostics.NoSuchField
			}
			a.log(diagnostics.NewDiagnostic(code, n.Span(), "%s", out.Err.Message))
			return exprError()
		}
		return ExprResult{Content: timeline.KnownValue(out.Value), Pure: xr.Pure}
	}

	// Type is statically known but the value is not: only Tuple field
	// names resolve (to Unknown, since field sub-types aren't tracked);
	// a None type is a NoneValueAccessed error; everything else degrades
	// to Unknown outright.
	xt := xr.Content.TypeOf()
	if xt.Kind() == types.Tuple {
		for _, f := range xt.Fields() {
			if f == name {
				return ExprResult{Content: timeline.StaticType(types.Simple(types.Unknown)), Pure: xr.Pure}
			}
		}
		a.log(diagnostics.NewDiagnostic(diagnostics.NoSuchField, n.Span(), "no such field: %s", name))
		return exprError()
	}
	if xt.Kind() == types.None {
		a.log(diagnostics.NewDiagnostic(diagnostics.NoneValueAccessed, n.Span(), "field access on a statically-none value"))
		return exprError()
	}
	return ExprResult{Content: timeline.StaticType(types.Simple(types.Unknown)), Pure: xr.Pure}
}

func (a *Analyzer) visitIndex(n *ast.IndexExpr) ExprResult {
	xr := a.visitExprFolded(&n.X)
	ir := a.visitExprFolded(&n.Index)
	if xr.Err || ir.Err {
		return exprError()
	}
	pure := xr.Pure && ir.Pure
	if xr.Content.IsValue && ir.Content.IsValue {
		out := values.IndexOf(xr.Content.Value, ir.Content.Value, n.Span())
		if out.Unsupported {
			a.log(diagnostics.NewDiagnostic(diagnostics.BadSubscriptIndexType, n.Span(), "value is not indexable"))
			return exprError()
		}
		if out.Err != nil {
			a.log(diagnostics.NewDiagnostic(diagnostics.EvaluationException, n.Span(), "%s", out.Err.Message))
			return ExprResult{Content: timeline.StaticType(types.Simple(types.Unknown)), Pure: pure, Err: true}
		}
		return ExprResult{Content: timeline.KnownValue(out.Value), Pure: pure}
	}
	xt := xr.Content.TypeOf()
	if xt.Kind() != types.Array && xt.Kind() != types.Unknown {
		a.log(diagnostics.NewDiagnostic(diagnostics.BadSubscriptIndexType, n.Span(), "value is not indexable"))
		return exprError()
	}
	return ExprResult{Content: timeline.StaticType(types.Simple(types.Unknown)), Pure: pure}
}

// visitCall implements §4.3's call analysis: verify arity against a
// statically-known function type, and fold the call only when the
// callee resolved to a pure Builtin and every argument is a known
// literal value. User closures are never invoked at analysis time —
// that would require re-entering a full evaluator inside the analyzer —
// so their calls are always left for the executor.
func (a *Analyzer) visitCall(n *ast.CallExpr) ExprResult {
	cr := a.visitExprFolded(&n.Callee)
	if cr.Err {
		return exprError()
	}
	argResults := make([]ExprResult, len(n.Args))
	pure := cr.Pure
	anyErr := false
	for i := range n.Args {
		argResults[i] = a.visitExprFolded(&n.Args[i])
		pure = pure && argResults[i].Pure
		anyErr = anyErr || argResults[i].Err
	}
	if anyErr {
		return exprError()
	}

	ct := cr.Content.TypeOf()
	if ct.Kind() != types.Function && ct.Kind() != types.Unknown {
		a.log(diagnostics.NewDiagnostic(diagnostics.TriedToCallNonFunction, n.Span(), "cannot call a %s", ct))
		return exprError()
	}
	if ct.Kind() == types.Function && ct.Arity() != len(n.Args) {
		a.log(diagnostics.NewDiagnostic(diagnostics.WrongArgumentCount, n.Span(), "expected %d argument(s), got %d", ct.Arity(), len(n.Args)))
		return exprError()
	}

	if cr.Content.IsValue {
		if b, isBuiltin := cr.Content.Value.(*values.Builtin); isBuiltin && b.Sig.Pure {
			allKnown := true
			args := make([]values.Value, len(argResults))
			for i, r := range argResults {
				if !r.Content.IsValue {
					allKnown = false
					break
				}
				args[i] = r.Content.Value
			}
			if allKnown {
				result, rtErr := b.Fn(args)
				if rtErr != nil {
					a.log(diagnostics.NewDiagnostic(diagnostics.WrongArgumentType, n.Span(), "%s", rtErr.Message))
					return exprError()
				}
				return ExprResult{Content: timeline.KnownValue(result), Pure: true,
					Replacement: &ast.LiteralValue{Tok: litToken(n.Span()), Payload: result}}
			}
		}
	}

	if ct.Kind() == types.Function && !ct.Pure() {
		a.tl.MakeAllUnknown()
	}
	return ExprResult{Content: timeline.StaticType(ct.Return()), Pure: false}
}
