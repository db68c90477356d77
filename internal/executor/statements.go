package executor

import (
	"fmt"

	"github.com/funvibe/d/internal/ast"
	"github.com/funvibe/d/internal/bigint"
	"github.com/funvibe/d/internal/values"
)

var bigOne = bigint.FromInt64(1)

// execBody pushes a fresh runtime scope, visits statements in source
// order until the control state leaves Running, then pops the scope on
// every exit path including abrupt ones (§4.4, §5).
func (e *Executor) execBody(body []ast.Statement, parent *runtimeScope) State {
	scope := newRuntimeScope(parent)
	st := running()
	for _, stmt := range body {
		st = e.execStmt(stmt, scope)
		if st.Kind != Running {
			break
		}
	}
	return st
}

func (e *Executor) execStmt(stmt ast.Statement, scope *runtimeScope) State {
	switch n := stmt.(type) {
	case *ast.VarDecl:
		return e.execVarDecl(n, scope)
	case *ast.Assign:
		return e.execAssign(n, scope)
	case *ast.PrintStmt:
		return e.execPrint(n, scope)
	case *ast.IfStmt:
		return e.execIf(n, scope)
	case *ast.WhileStmt:
		return e.execWhile(n, scope)
	case *ast.ForStmt:
		return e.execFor(n, scope)
	case *ast.ExitStmt:
		return State{Kind: ExitingLoop}
	case *ast.ReturnStmt:
		return e.execReturn(n, scope)
	case *ast.ExprStmt:
		v, st := e.eval(n.Expr, scope)
		if st.Kind != Running {
			return st
		}
		_ = v
		return running()
	}
	panic(fmt.Sprintf("executor: unhandled statement node %T", stmt))
}

func (e *Executor) execVarDecl(n *ast.VarDecl, scope *runtimeScope) State {
	var v values.Value = values.Nil
	if n.Value != nil {
		var st State
		v, st = e.eval(n.Value, scope)
		if st.Kind != Running {
			return st
		}
	}
	scope.declare(n.Name, v)
	return running()
}

func (e *Executor) execAssign(n *ast.Assign, scope *runtimeScope) State {
	v, st := e.eval(n.Value, scope)
	if st.Kind != Running {
		return st
	}
	switch target := n.Target.(type) {
	case *ast.Identifier:
		scope.assign(target.Name, v)
		return running()
	case *ast.IndexExpr:
		recv, st := e.eval(target.X, scope)
		if st.Kind != Running {
			return st
		}
		idx, st := e.eval(target.Index, scope)
		if st.Kind != Running {
			return st
		}
		out := values.SetIndex(recv, idx, v, n.Span())
		if out.Unsupported {
			return e.throw("SubscriptAssignmentOnlyInArrays", n.Span(), "subscript assignment is only valid on arrays")
		}
		if out.Err != nil {
			return State{Kind: Throwing, Err: out.Err, ErrSpan: n.Span(), Trace: e.snapshotTrace()}
		}
		return running()
	}
	panic("executor: unhandled assignment target")
}

func (e *Executor) execPrint(n *ast.PrintStmt, scope *runtimeScope) State {
	for _, arg := range n.Args {
		v, st := e.eval(arg, scope)
		if st.Kind != Running {
			return st
		}
		fmt.Fprint(e.out, v.String())
	}
	return running()
}

func (e *Executor) execReturn(n *ast.ReturnStmt, scope *runtimeScope) State {
	var v values.Value = values.Nil
	if n.Value != nil {
		var st State
		v, st = e.eval(n.Value, scope)
		if st.Kind != Running {
			return st
		}
	}
	return State{Kind: Returning, ReturnVal: v}
}

// execIf evaluates the condition then dispatches to exactly one arm;
// the short-form (`if c => e [else => e]`) evaluates its expression arm
// for effect and discards the value, matching the statement-form's
// control-flow shape.
func (e *Executor) execIf(n *ast.IfStmt, scope *runtimeScope) State {
	cond, st := e.eval(n.Cond, scope)
	if st.Kind != Running {
		return st
	}
	taken, isBool := values.Truthy(cond)
	if !isBool {
		return e.throw("ConditionMustBeBoolean", n.Cond.Span(), "condition did not evaluate to a boolean")
	}

	if n.Short {
		if taken {
			_, st := e.eval(n.ThenExpr, scope)
			return st
		}
		if n.HasElse {
			_, st := e.eval(n.ElseExpr, scope)
			return st
		}
		return running()
	}
	if taken {
		return e.execBody(n.Then, scope)
	}
	if n.HasElse {
		return e.execBody(n.Else, scope)
	}
	return running()
}

// execWhile implements §4.4: an ExitingLoop signal raised by the body is
// swallowed here and converted back to Running once the loop is left.
func (e *Executor) execWhile(n *ast.WhileStmt, scope *runtimeScope) State {
	for {
		cond, st := e.eval(n.Cond, scope)
		if st.Kind != Running {
			return st
		}
		taken, isBool := values.Truthy(cond)
		if !isBool {
			return e.throw("ConditionMustBeBoolean", n.Cond.Span(), "while condition did not evaluate to a boolean")
		}
		if !taken {
			return running()
		}
		st = e.execBody(n.Body, scope)
		switch st.Kind {
		case Running:
			continue
		case ExitingLoop:
			return running()
		default:
			return st
		}
	}
}

func (e *Executor) execFor(n *ast.ForStmt, scope *runtimeScope) State {
	if n.Iterable != nil {
		recv, st := e.eval(n.Iterable, scope)
		if st.Kind != Running {
			return st
		}
		arr, isOk := recv.(*values.Array)
		if !isOk {
			return e.throw("IterableExpected", n.Iterable.Span(), "value is not iterable")
		}
		for _, k := range arr.Keys() {
			elem, _ := arr.Get(k)
			body := newRuntimeScope(scope)
			if n.VarName != "" {
				body.declare(n.VarName, elem)
			}
			st := e.execBody(n.Body, body)
			switch st.Kind {
			case Running:
				continue
			case ExitingLoop:
				return running()
			default:
				return st
			}
		}
		return running()
	}

	startV, st := e.eval(n.Start, scope)
	if st.Kind != Running {
		return st
	}
	stopV, st := e.eval(n.Stop, scope)
	if st.Kind != Running {
		return st
	}
	startI, isOk := startV.(*values.Int)
	if !isOk {
		return e.throw("IntegerBoundaryExpected", n.Start.Span(), "range start must be an integer")
	}
	stopI, isOk := stopV.(*values.Int)
	if !isOk {
		return e.throw("IntegerBoundaryExpected", n.Stop.Span(), "range stop must be an integer")
	}
	i := startI.V
	for i.Cmp(stopI.V) <= 0 {
		body := newRuntimeScope(scope)
		if n.VarName != "" {
			body.declare(n.VarName, &values.Int{V: i})
		}
		st := e.execBody(n.Body, body)
		switch st.Kind {
		case Running:
			i = i.Add(bigOne)
			continue
		case ExitingLoop:
			return running()
		default:
			return st
		}
	}
	return running()
}
