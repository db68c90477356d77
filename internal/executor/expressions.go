package executor

import (
	"fmt"
	"strings"

	"github.com/funvibe/d/internal/ast"
	"github.com/funvibe/d/internal/token"
	"github.com/funvibe/d/internal/values"
)

// eval evaluates an expression to a Value. The returned State is Running
// on success; any other Kind means the value is meaningless and must be
// propagated without inspection (§3: "every visit method inspects this
// before proceeding").
func (e *Executor) eval(expr ast.Expression, scope *runtimeScope) (values.Value, State) {
	switch n := expr.(type) {
	case *ast.LiteralValue:
		v, _ := n.Payload.(values.Value)
		return v, running()
	case *ast.IntLiteral:
		return &values.Int{V: bigFromAST(n.Value)}, running()
	case *ast.RealLiteral:
		return &values.Real{V: n.Value}, running()
	case *ast.StringLiteral:
		return &values.Str{V: n.Value}, running()
	case *ast.BoolLiteral:
		return values.BoolOf(n.Value), running()
	case *ast.NoneLiteral:
		return values.Nil, running()
	case *ast.Identifier:
		v, ok := scope.lookup(n.Name)
		if !ok {
			return nil, e.throw("VariableNotDefined", n.Span(), "%q is not defined", n.Name)
		}
		return v, running()
	case *ast.ArrayLiteral:
		return e.evalArrayLiteral(n, scope)
	case *ast.TupleLiteral:
		return e.evalTupleLiteral(n, scope)
	case *ast.FuncLiteral:
		return e.evalClosure(n.Params, n.Body, n.ShortBody, nil, scope)
	case *ast.ClosureDef:
		return e.evalClosure(n.Params, n.Body, n.ShortBody, n.CapturedNames, scope)
	case *ast.BinaryExpr:
		return e.evalBinary(n, scope)
	case *ast.LogicalExpr:
		return e.evalLogical(n, scope)
	case *ast.CompareExpr:
		return e.evalCompare(n, scope)
	case *ast.UnaryExpr:
		return e.evalUnary(n, scope)
	case *ast.FieldAccess:
		return e.evalFieldAccess(n, scope)
	case *ast.IndexExpr:
		return e.evalIndex(n, scope)
	case *ast.CallExpr:
		return e.evalCall(n, scope)
	}
	panic(fmt.Sprintf("executor: unhandled expression node %T", expr))
}

func (e *Executor) evalArrayLiteral(n *ast.ArrayLiteral, scope *runtimeScope) (values.Value, State) {
	arr := values.NewArray()
	for i, elem := range n.Elements {
		v, st := e.eval(elem, scope)
		if st.Kind != Running {
			return nil, st
		}
		arr.Set(int64(i), v)
	}
	return arr, running()
}

func (e *Executor) evalTupleLiteral(n *ast.TupleLiteral, scope *runtimeScope) (values.Value, State) {
	vals := make([]values.Value, len(n.Fields))
	names := make(map[string]int)
	for i, f := range n.Fields {
		v, st := e.eval(f.Value, scope)
		if st.Kind != Running {
			return nil, st
		}
		vals[i] = v
		if f.Name != "" {
			names[f.Name] = i
		}
	}
	return values.NewTuple(vals, names), running()
}

// evalClosure snapshots each captured name's current value (§4.5: a
// closure captures values, never a pointer into the enclosing scope).
func (e *Executor) evalClosure(params []string, body []ast.Statement, shortBody ast.Expression, capturedNames []string, scope *runtimeScope) (values.Value, State) {
	captured := make(map[string]values.Value, len(capturedNames))
	for _, name := range capturedNames {
		if v, ok := scope.lookup(name); ok {
			captured[name] = v
		}
	}
	return &values.Closure{
		Params:    params,
		Body:      stmtsToIface(body),
		ShortBody: ast.Expression(shortBody),
		Captured:  captured,
		Sig:       values.Signature{Arity: len(params)},
	}, running()
}

func stmtsToIface(body []ast.Statement) []values.Stmt {
	out := make([]values.Stmt, len(body))
	for i, s := range body {
		out[i] = s
	}
	return out
}

func (e *Executor) evalBinary(n *ast.BinaryExpr, scope *runtimeScope) (values.Value, State) {
	l, st := e.eval(n.Left, scope)
	if st.Kind != Running {
		return nil, st
	}
	r, st := e.eval(n.Right, scope)
	if st.Kind != Running {
		return nil, st
	}
	op := opString(n.Op)
	out := values.Binary(op, l, r, n.Span())
	if out.Unsupported {
		return nil, e.throw("OperatorNotApplicable", n.Span(), "operator %q is not applicable to %s and %s", op, l.TypeOf(), r.TypeOf())
	}
	if out.Err != nil {
		return nil, State{Kind: Throwing, Err: out.Err, ErrSpan: n.Span(), Trace: e.snapshotTrace()}
	}
	return out.Value, running()
}

func (e *Executor) evalLogical(n *ast.LogicalExpr, scope *runtimeScope) (values.Value, State) {
	l, st := e.eval(n.Left, scope)
	if st.Kind != Running {
		return nil, st
	}
	lb, isBool := values.Truthy(l)
	if isBool {
		switch logicalOpName(n.Op) {
		case "and":
			if !lb {
				return values.False, running()
			}
		case "or":
			if lb {
				return values.True, running()
			}
		}
	}
	r, st := e.eval(n.Right, scope)
	if st.Kind != Running {
		return nil, st
	}
	opName := logicalOpName(n.Op)
	out := values.Logical(opName, l, r, n.Span())
	if out.Unsupported {
		return nil, e.throw("OperatorNotApplicable", n.Span(), "operator %q is not applicable to %s and %s", opName, l.TypeOf(), r.TypeOf())
	}
	return out.Value, running()
}

func (e *Executor) evalCompare(n *ast.CompareExpr, scope *runtimeScope) (values.Value, State) {
	operands := make([]values.Value, len(n.Operands))
	for i, o := range n.Operands {
		v, st := e.eval(o, scope)
		if st.Kind != Running {
			return nil, st
		}
		operands[i] = v
	}
	for i, op := range n.Ops {
		opName := opString(op)
		out := values.Compare(opName, operands[i], operands[i+1], n.Span())
		if out.Unsupported {
			return nil, e.throw("OperatorNotApplicable", n.Span(), "operator %q is not applicable to %s and %s", opName, operands[i].TypeOf(), operands[i+1].TypeOf())
		}
		taken, _ := values.Truthy(out.Value)
		if !taken {
			return values.False, running()
		}
	}
	return values.True, running()
}

func (e *Executor) evalUnary(n *ast.UnaryExpr, scope *runtimeScope) (values.Value, State) {
	x, st := e.eval(n.X, scope)
	if st.Kind != Running {
		return nil, st
	}
	op := unaryOpName(n.Op)
	out := values.Unary(op, x, n.Span())
	if out.Unsupported {
		return nil, e.throw("OperatorNotApplicable", n.Span(), "operator %q is not applicable to %s", op, x.TypeOf())
	}
	return out.Value, running()
}

func (e *Executor) evalFieldAccess(n *ast.FieldAccess, scope *runtimeScope) (values.Value, State) {
	x, st := e.eval(n.X, scope)
	if st.Kind != Running {
		return nil, st
	}
	if n.ByIndex {
		tup, isOk := x.(*values.Tuple)
		if !isOk {
			return nil, e.throw("NoSuchField", n.Span(), "value is not a tuple")
		}
		if n.Index < 0 || n.Index >= len(tup.Values) {
			return nil, e.throw("NoSuchField", n.Span(), "tuple has no field at position %d", n.Index+1)
		}
		return tup.Values[n.Index], running()
	}
	out := values.Field(x, n.Name, n.Span())
	if out.Unsupported {
		return nil, e.throw("NoSuchField", n.Span(), "no such field: %s", n.Name)
	}
	if out.Err != nil {
		return nil, State{Kind: Throwing, Err: out.Err, ErrSpan: n.Span(), Trace: e.snapshotTrace()}
	}
	return out.Value, running()
}

func (e *Executor) evalIndex(n *ast.IndexExpr, scope *runtimeScope) (values.Value, State) {
	x, st := e.eval(n.X, scope)
	if st.Kind != Running {
		return nil, st
	}
	idx, st := e.eval(n.Index, scope)
	if st.Kind != Running {
		return nil, st
	}
	out := values.IndexOf(x, idx, n.Span())
	if out.Unsupported {
		return nil, e.throw("BadSubscriptIndexType", n.Span(), "value is not indexable")
	}
	if out.Err != nil {
		return nil, State{Kind: Throwing, Err: out.Err, ErrSpan: n.Span(), Trace: e.snapshotTrace()}
	}
	return out.Value, running()
}

func (e *Executor) evalCall(n *ast.CallExpr, scope *runtimeScope) (values.Value, State) {
	callee, st := e.eval(n.Callee, scope)
	if st.Kind != Running {
		return nil, st
	}
	args := make([]values.Value, len(n.Args))
	for i, a := range n.Args {
		v, st := e.eval(a, scope)
		if st.Kind != Running {
			return nil, st
		}
		args[i] = v
	}

	switch fn := callee.(type) {
	case *values.Builtin:
		if len(args) != fn.Sig.Arity {
			return nil, e.throw("WrongArgumentCount", n.Span(), "expected %d argument(s), got %d", fn.Sig.Arity, len(args))
		}
		v, rtErr := fn.Fn(args)
		if rtErr != nil {
			return nil, State{Kind: Throwing, Err: rtErr, ErrSpan: n.Span(), Trace: e.snapshotTrace()}
		}
		return v, running()
	case *values.Closure:
		return e.callClosure(fn, args, n.Span())
	}
	return nil, e.throw("TriedToCallNonFunction", n.Span(), "cannot call a %s", callee.TypeOf())
}

// callClosure implements §4.4's closure-call mechanics: a fresh runtime
// scope seeded with the captured snapshot, then the actual arguments
// bound to parameter names.
func (e *Executor) callClosure(fn *values.Closure, args []values.Value, span token.Span) (values.Value, State) {
	if len(args) != len(fn.Params) {
		return nil, e.throw("WrongArgumentCount", span, "expected %d argument(s), got %d", len(fn.Params), len(args))
	}
	if !e.pushFrame(fn.Name, span) {
		return nil, e.throw("StackOverflow", span, "call stack exceeded capacity")
	}
	defer e.popFrame()

	scope := newRuntimeScope(nil)
	for name, v := range fn.Captured {
		scope.declare(name, v)
	}
	for i, p := range fn.Params {
		scope.declare(p, args[i])
	}

	if fn.ShortBody != nil {
		expr, isOk := fn.ShortBody.(ast.Expression)
		if !isOk {
			panic("executor: closure short-body is not an ast.Expression")
		}
		return e.eval(expr, scope)
	}

	body := make([]ast.Statement, len(fn.Body))
	for i, s := range fn.Body {
		stmt, isOk := s.(ast.Statement)
		if !isOk {
			panic("executor: closure body element is not an ast.Statement")
		}
		body[i] = stmt
	}
	st := e.execBody(body, scope)
	switch st.Kind {
	case Returning:
		return st.ReturnVal, running()
	case ExitingLoop:
		// Semantics guarantee `exit` cannot reach a function boundary
		// (the analyzer rejects it outside a loop); this is a host bug.
		panic("executor: exit propagated out of a function body")
	case Running:
		return values.Nil, running()
	default:
		return nil, st
	}
}

// ReadInputLine implements the `input` built-in: one line from the
// executor's input stream, without the trailing newline.
func (e *Executor) ReadInputLine() (string, bool) {
	line, err := e.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}
