package prettyprinter

import (
	"fmt"
	"strings"

	"github.com/funvibe/d/internal/ast"
)

// Tree renders a program as an indented node-kind dump, one line per
// node with its span, the shape the original tool's syntax explorer used
// to let you eyeball exactly what the parser built for a given input.
func Tree(prog *ast.Program) string {
	var sb strings.Builder
	for _, s := range prog.Body {
		dumpStmt(&sb, s, 0)
	}
	return sb.String()
}

func dumpLine(sb *strings.Builder, depth int, format string, args ...interface{}) {
	sb.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(sb, format, args...)
	sb.WriteString("\n")
}

func dumpStmt(sb *strings.Builder, s ast.Statement, depth int) {
	switch n := s.(type) {
	case *ast.VarDecl:
		dumpLine(sb, depth, "VarDecl %s @%s", n.Name, n.Span())
		if n.Value != nil {
			dumpExpr(sb, n.Value, depth+1)
		}
	case *ast.Assign:
		dumpLine(sb, depth, "Assign @%s", n.Span())
		dumpExpr(sb, n.Target, depth+1)
		dumpExpr(sb, n.Value, depth+1)
	case *ast.PrintStmt:
		dumpLine(sb, depth, "Print @%s", n.Span())
		for _, a := range n.Args {
			dumpExpr(sb, a, depth+1)
		}
	case *ast.IfStmt:
		dumpLine(sb, depth, "If short=%t @%s", n.Short, n.Span())
		dumpExpr(sb, n.Cond, depth+1)
		if n.Short {
			dumpExpr(sb, n.ThenExpr, depth+1)
			if n.HasElse {
				dumpExpr(sb, n.ElseExpr, depth+1)
			}
			return
		}
		for _, st := range n.Then {
			dumpStmt(sb, st, depth+1)
		}
		for _, st := range n.Else {
			dumpStmt(sb, st, depth+1)
		}
	case *ast.WhileStmt:
		dumpLine(sb, depth, "While @%s", n.Span())
		dumpExpr(sb, n.Cond, depth+1)
		for _, st := range n.Body {
			dumpStmt(sb, st, depth+1)
		}
	case *ast.ForStmt:
		dumpLine(sb, depth, "For var=%s @%s", n.VarName, n.Span())
		if n.Iterable != nil {
			dumpExpr(sb, n.Iterable, depth+1)
		} else {
			dumpExpr(sb, n.Start, depth+1)
			dumpExpr(sb, n.Stop, depth+1)
		}
		for _, st := range n.Body {
			dumpStmt(sb, st, depth+1)
		}
	case *ast.ExitStmt:
		dumpLine(sb, depth, "Exit @%s", n.Span())
	case *ast.ReturnStmt:
		dumpLine(sb, depth, "Return @%s", n.Span())
		if n.Value != nil {
			dumpExpr(sb, n.Value, depth+1)
		}
	case *ast.ExprStmt:
		dumpLine(sb, depth, "ExprStmt @%s", n.Span())
		dumpExpr(sb, n.Expr, depth+1)
	default:
		dumpLine(sb, depth, "<unknown-stmt %T>", n)
	}
}

func dumpExpr(sb *strings.Builder, e ast.Expression, depth int) {
	switch n := e.(type) {
	case *ast.Identifier:
		dumpLine(sb, depth, "Identifier %s @%s", n.Name, n.Span())
	case *ast.IntLiteral:
		dumpLine(sb, depth, "IntLiteral %s @%s", n.Value.String(), n.Span())
	case *ast.RealLiteral:
		dumpLine(sb, depth, "RealLiteral %g @%s", n.Value, n.Span())
	case *ast.StringLiteral:
		dumpLine(sb, depth, "StringLiteral %q @%s", n.Value, n.Span())
	case *ast.BoolLiteral:
		dumpLine(sb, depth, "BoolLiteral %t @%s", n.Value, n.Span())
	case *ast.NoneLiteral:
		dumpLine(sb, depth, "NoneLiteral @%s", n.Span())
	case *ast.LiteralValue:
		dumpLine(sb, depth, "LiteralValue %v @%s", n.Payload, n.Span())
	case *ast.ArrayLiteral:
		dumpLine(sb, depth, "ArrayLiteral @%s", n.Span())
		for _, el := range n.Elements {
			dumpExpr(sb, el, depth+1)
		}
	case *ast.TupleLiteral:
		dumpLine(sb, depth, "TupleLiteral @%s", n.Span())
		for _, f := range n.Fields {
			if f.Name != "" {
				dumpLine(sb, depth+1, "field %s:", f.Name)
			}
			dumpExpr(sb, f.Value, depth+1)
		}
	case *ast.FuncLiteral:
		dumpLine(sb, depth, "FuncLiteral params=%s @%s", strings.Join(n.Params, ","), n.Span())
		dumpFuncBody(sb, n.Body, n.ShortBody, depth+1)
	case *ast.ClosureDef:
		dumpLine(sb, depth, "ClosureDef params=%s captured=%s @%s", strings.Join(n.Params, ","), strings.Join(n.CapturedNames, ","), n.Span())
		dumpFuncBody(sb, n.Body, n.ShortBody, depth+1)
	case *ast.BinaryExpr:
		dumpLine(sb, depth, "BinaryExpr %s @%s", n.Op, n.Span())
		dumpExpr(sb, n.Left, depth+1)
		dumpExpr(sb, n.Right, depth+1)
	case *ast.LogicalExpr:
		dumpLine(sb, depth, "LogicalExpr %s @%s", n.Op, n.Span())
		dumpExpr(sb, n.Left, depth+1)
		dumpExpr(sb, n.Right, depth+1)
	case *ast.CompareExpr:
		dumpLine(sb, depth, "CompareExpr @%s", n.Span())
		for _, o := range n.Operands {
			dumpExpr(sb, o, depth+1)
		}
	case *ast.UnaryExpr:
		dumpLine(sb, depth, "UnaryExpr %s @%s", n.Op, n.Span())
		dumpExpr(sb, n.X, depth+1)
	case *ast.FieldAccess:
		if n.ByIndex {
			dumpLine(sb, depth, "FieldAccess .(%d) @%s", n.Index, n.Span())
		} else {
			dumpLine(sb, depth, "FieldAccess .%s @%s", n.Name, n.Span())
		}
		dumpExpr(sb, n.X, depth+1)
	case *ast.IndexExpr:
		dumpLine(sb, depth, "IndexExpr @%s", n.Span())
		dumpExpr(sb, n.X, depth+1)
		dumpExpr(sb, n.Index, depth+1)
	case *ast.CallExpr:
		dumpLine(sb, depth, "CallExpr @%s", n.Span())
		dumpExpr(sb, n.Callee, depth+1)
		for _, a := range n.Args {
			dumpExpr(sb, a, depth+1)
		}
	case *ast.RangeExpr:
		dumpLine(sb, depth, "RangeExpr @%s", n.Span())
		dumpExpr(sb, n.Start, depth+1)
		dumpExpr(sb, n.Stop, depth+1)
	default:
		dumpLine(sb, depth, "<unknown-expr %T>", n)
	}
}

func dumpFuncBody(sb *strings.Builder, body []ast.Statement, short ast.Expression, depth int) {
	if short != nil {
		dumpExpr(sb, short, depth)
		return
	}
	for _, st := range body {
		dumpStmt(sb, st, depth)
	}
}
