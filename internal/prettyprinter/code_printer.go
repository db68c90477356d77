// Package prettyprinter renders a parsed program back to source text and
// to an indented tree dump, the two views the original implementation's
// syntax explorer offered for inspecting what the parser produced. The
// CLI's AST-explorer mode drives this package directly.
package prettyprinter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/funvibe/d/internal/ast"
	"github.com/funvibe/d/internal/token"
)

// operatorPrecedence mirrors the parser's own table (lowest-binds-first)
// so Print only parenthesizes an operand when its own operator binds
// looser than the context it sits in.
var operatorPrecedence = map[token.Type]int{
	token.OR:    1,
	token.XOR:   1,
	token.AND:   2,
	token.EQ:    3,
	token.NEQ:   3,
	token.LT:    3,
	token.LE:    3,
	token.GT:    3,
	token.GE:    3,
	token.PLUS:  4,
	token.MINUS: 4,
	token.STAR:  5,
	token.SLASH: 5,
}

func precedenceOf(t token.Type) int {
	if p, ok := operatorPrecedence[t]; ok {
		return p
	}
	return 10
}

// CodePrinter reconstitutes D source text from an AST, the way a
// formatter or a REPL's "show me what you parsed" command would.
type CodePrinter struct {
	buf    bytes.Buffer
	indent int
}

func NewCodePrinter() *CodePrinter { return &CodePrinter{} }

func (p *CodePrinter) String() string { return p.buf.String() }

func (p *CodePrinter) write(s string) { p.buf.WriteString(s) }

func (p *CodePrinter) writeIndent() {
	p.buf.WriteString(strings.Repeat("    ", p.indent))
}

func (p *CodePrinter) writeln() { p.buf.WriteByte('\n') }

// Print renders an entire program, one statement per line.
func (p *CodePrinter) Print(prog *ast.Program) string {
	for _, s := range prog.Body {
		p.writeIndent()
		p.printStmt(s)
		p.writeln()
	}
	return p.String()
}

func (p *CodePrinter) printBlock(body []ast.Statement) {
	p.write("\n")
	p.indent++
	for _, s := range body {
		p.writeIndent()
		p.printStmt(s)
		p.writeln()
	}
	p.indent--
	p.writeIndent()
}

func (p *CodePrinter) printStmt(s ast.Statement) {
	switch n := s.(type) {
	case *ast.VarDecl:
		p.write("var " + n.Name)
		if n.Value != nil {
			p.write(" = ")
			p.printExpr(n.Value, 0)
		}
	case *ast.Assign:
		p.printExpr(n.Target, 0)
		p.write(" = ")
		p.printExpr(n.Value, 0)
	case *ast.PrintStmt:
		p.write("print ")
		for i, a := range n.Args {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(a, 0)
		}
	case *ast.IfStmt:
		p.write("if ")
		p.printExpr(n.Cond, 0)
		if n.Short {
			p.write(" => ")
			p.printExpr(n.ThenExpr, 0)
			if n.HasElse {
				p.write(" else ")
				p.printExpr(n.ElseExpr, 0)
			}
			return
		}
		p.write(" then")
		p.printBlock(n.Then)
		if n.HasElse {
			p.write("else")
			p.printBlock(n.Else)
		}
		p.write("end")
	case *ast.WhileStmt:
		p.write("while ")
		p.printExpr(n.Cond, 0)
		p.write(" loop")
		p.printBlock(n.Body)
		p.write("end")
	case *ast.ForStmt:
		p.write("for ")
		if n.VarName != "" {
			p.write(n.VarName)
		} else {
			p.write("_")
		}
		p.write(" in ")
		if n.Iterable != nil {
			p.printExpr(n.Iterable, 0)
		} else {
			p.printExpr(n.Start, 0)
			p.write("..")
			p.printExpr(n.Stop, 0)
		}
		p.write(" loop")
		p.printBlock(n.Body)
		p.write("end")
	case *ast.ExitStmt:
		p.write("exit")
	case *ast.ReturnStmt:
		p.write("return")
		if n.Value != nil {
			p.write(" ")
			p.printExpr(n.Value, 0)
		}
	case *ast.ExprStmt:
		p.printExpr(n.Expr, 0)
	default:
		fmt.Fprintf(&p.buf, "<unknown-stmt %T>", n)
	}
}

func (p *CodePrinter) printExpr(e ast.Expression, parentPrec int) {
	switch n := e.(type) {
	case *ast.Identifier:
		p.write(n.Name)
	case *ast.IntLiteral:
		p.write(n.Value.String())
	case *ast.RealLiteral:
		fmt.Fprintf(&p.buf, "%g", n.Value)
	case *ast.StringLiteral:
		fmt.Fprintf(&p.buf, "%q", n.Value)
	case *ast.BoolLiteral:
		fmt.Fprintf(&p.buf, "%t", n.Value)
	case *ast.NoneLiteral:
		p.write("none")
	case *ast.LiteralValue:
		fmt.Fprintf(&p.buf, "<folded %v>", n.Payload)
	case *ast.ArrayLiteral:
		p.write("[")
		for i, el := range n.Elements {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(el, 0)
		}
		p.write("]")
	case *ast.TupleLiteral:
		p.write("(")
		for i, f := range n.Fields {
			if i > 0 {
				p.write(", ")
			}
			if f.Name != "" {
				p.write(f.Name + ": ")
			}
			p.printExpr(f.Value, 0)
		}
		p.write(")")
	case *ast.FuncLiteral:
		p.printFunc(n.Params, n.Body, n.ShortBody)
	case *ast.ClosureDef:
		p.printFunc(n.Params, n.Body, n.ShortBody)
	case *ast.BinaryExpr:
		prec := precedenceOf(n.Op)
		p.maybeParen(prec, parentPrec, func() {
			p.printExpr(n.Left, prec)
			p.write(" " + n.Op.String() + " ")
			p.printExpr(n.Right, prec+1)
		})
	case *ast.LogicalExpr:
		prec := precedenceOf(n.Op)
		p.maybeParen(prec, parentPrec, func() {
			p.printExpr(n.Left, prec)
			p.write(" " + n.Op.String() + " ")
			p.printExpr(n.Right, prec+1)
		})
	case *ast.CompareExpr:
		p.maybeParen(3, parentPrec, func() {
			p.printExpr(n.Operands[0], 4)
			for i, op := range n.Ops {
				p.write(" " + op.String() + " ")
				p.printExpr(n.Operands[i+1], 4)
			}
		})
	case *ast.UnaryExpr:
		p.write(n.Op.String())
		if n.Op == token.NOT {
			p.write(" ")
		}
		p.printExpr(n.X, 9)
	case *ast.FieldAccess:
		p.printExpr(n.X, 10)
		if n.ByIndex {
			fmt.Fprintf(&p.buf, ".(%d)", n.Index+1)
		} else {
			p.write("." + n.Name)
		}
	case *ast.IndexExpr:
		p.printExpr(n.X, 10)
		p.write("[")
		p.printExpr(n.Index, 0)
		p.write("]")
	case *ast.CallExpr:
		p.printExpr(n.Callee, 10)
		p.write("(")
		for i, a := range n.Args {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(a, 0)
		}
		p.write(")")
	case *ast.RangeExpr:
		p.printExpr(n.Start, 0)
		p.write("..")
		p.printExpr(n.Stop, 0)
	default:
		fmt.Fprintf(&p.buf, "<unknown-expr %T>", n)
	}
}

func (p *CodePrinter) printFunc(params []string, body []ast.Statement, short ast.Expression) {
	p.write("func(" + strings.Join(params, ", ") + ")")
	if short != nil {
		p.write(" => ")
		p.printExpr(short, 0)
		return
	}
	p.write(" is")
	p.printBlock(body)
	p.write("end")
}

func (p *CodePrinter) maybeParen(prec, parentPrec int, body func()) {
	if prec < parentPrec {
		p.write("(")
		body()
		p.write(")")
		return
	}
	body()
}
