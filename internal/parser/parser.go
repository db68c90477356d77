// Package parser builds the AST contract §6 describes from a token
// stream: every node carries a span; a parse error is reported on the
// shared log and the returned program keeps the statements that did
// parse. Like the
// lexer, the parser is an external collaborator of the core (§1) — it
// owes the analyzer a well-formed tree, nothing more.
package parser

import (
	"math/big"

	"github.com/funvibe/d/internal/ast"
	"github.com/funvibe/d/internal/diagnostics"
	"github.com/funvibe/d/internal/token"
)

// precedence levels, lowest to highest.
const (
	lowest = iota
	precOr
	precAnd
	precCompare
	precSum
	precProduct
	precUnary
	precPostfix
)

var precedences = map[token.Type]int{
	token.OR: precOr, token.XOR: precOr,
	token.AND: precAnd,
	token.EQ: precCompare, token.NEQ: precCompare,
	token.LT: precCompare, token.LE: precCompare, token.GT: precCompare, token.GE: precCompare,
	token.PLUS: precSum, token.MINUS: precSum,
	token.STAR: precProduct, token.SLASH: precProduct,
	token.LPAREN: precPostfix, token.DOT: precPostfix, token.LBRACKET: precPostfix,
}

// compareOps is the set of relational operators that chain (§4.3).
var compareOps = map[token.Type]bool{
	token.EQ: true, token.NEQ: true, token.LT: true, token.LE: true, token.GT: true, token.GE: true,
}

type Parser struct {
	tokens []token.Token
	pos    int
	sink   diagnostics.Sink
	file   string
}

func New(file string, tokens []token.Token, sink diagnostics.Sink) *Parser {
	return &Parser{tokens: tokens, sink: sink, file: file}
}

func (p *Parser) cur() token.Token  { return p.tokens[p.pos] }
func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}
func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(t token.Type) bool { return p.cur().Type == t }

func (p *Parser) expect(t token.Type, context string) (token.Token, bool) {
	if p.at(t) {
		return p.advance(), true
	}
	p.errorf("expected %s %s, found %s", t, context, p.cur().Type)
	return p.cur(), false
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.sink.Log(diagnostics.NewDiagnostic(diagnostics.ParseError, p.cur().Span, format, args...))
}

// skipSeparators consumes any run of NEWLINE/SEMICOLON tokens, both of
// which the token-stream contract treats as statement separators (§6).
func (p *Parser) skipSeparators() {
	for p.at(token.NEWLINE) || p.at(token.SEMICOLON) {
		p.advance()
	}
}

// ParseProgram parses the whole token stream. On an unrecoverable
// structural failure the returned Program may have a shorter Body than
// the source implies; diagnostics on the sink explain why.
func ParseProgram(file string, tokens []token.Token, sink diagnostics.Sink) *ast.Program {
	p := New(file, tokens, sink)
	prog := &ast.Program{File: file}
	p.skipSeparators()
	for !p.at(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Body = append(prog.Body, stmt)
		}
		if !p.at(token.EOF) && !p.at(token.NEWLINE) && !p.at(token.SEMICOLON) {
			// Recover by skipping to the next separator so one bad
			// statement doesn't cascade into spurious errors.
			for !p.at(token.EOF) && !p.at(token.NEWLINE) && !p.at(token.SEMICOLON) {
				p.advance()
			}
		}
		p.skipSeparators()
	}
	return prog
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case token.VAR:
		return p.parseVarDecl()
	case token.PRINT:
		return p.parsePrintStmt()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.EXIT:
		tok := p.advance()
		return &ast.ExitStmt{Tok: tok}
	case token.RETURN:
		tok := p.advance()
		var val ast.Expression
		if !p.atStatementEnd() {
			val = p.parseExpression(lowest)
		}
		return &ast.ReturnStmt{Tok: tok, Value: val}
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) atStatementEnd() bool {
	return p.at(token.NEWLINE) || p.at(token.SEMICOLON) || p.at(token.EOF) ||
		p.at(token.END) || p.at(token.ELSE)
}

func (p *Parser) parseVarDecl() ast.Statement {
	tok := p.advance() // 'var'
	name, ok := p.expect(token.IDENT, "after var")
	if !ok {
		return nil
	}
	decl := &ast.VarDecl{Tok: tok, Name: name.Name}
	if p.at(token.ASSIGN) {
		p.advance()
		decl.Value = p.parseExpression(lowest)
	}
	return decl
}

func (p *Parser) parsePrintStmt() ast.Statement {
	tok := p.advance() // 'print'
	stmt := &ast.PrintStmt{Tok: tok}
	stmt.Args = append(stmt.Args, p.parseExpression(lowest))
	for p.at(token.COMMA) {
		p.advance()
		stmt.Args = append(stmt.Args, p.parseExpression(lowest))
	}
	return stmt
}

// parseExprOrAssignStmt parses either a bare expression statement or an
// assignment `target := value`.
func (p *Parser) parseExprOrAssignStmt() ast.Statement {
	tok := p.cur()
	expr := p.parseExpression(lowest)
	if p.at(token.ASSIGN) {
		p.advance()
		value := p.parseExpression(lowest)
		return &ast.Assign{Tok: tok, Target: expr, Value: value}
	}
	return &ast.ExprStmt{Tok: tok, Expr: expr}
}

// parseBlock parses statements until one of the given terminator keywords
// is reached, without consuming the terminator.
func (p *Parser) parseBlock(terminators ...token.Type) []ast.Statement {
	p.skipSeparators()
	var body []ast.Statement
	for !p.at(token.EOF) && !p.atAny(terminators...) {
		stmt := p.parseStatement()
		if stmt != nil {
			body = append(body, stmt)
		}
		if !p.atAny(terminators...) && !p.at(token.EOF) {
			p.skipSeparators()
		}
	}
	return body
}

func (p *Parser) atAny(types ...token.Type) bool {
	for _, t := range types {
		if p.at(t) {
			return true
		}
	}
	return false
}

func (p *Parser) parseIfStmt() ast.Statement {
	tok := p.advance() // 'if'
	cond := p.parseExpression(lowest)

	if p.at(token.ARROW) {
		p.advance()
		stmt := &ast.IfStmt{Tok: tok, Short: true, Cond: cond}
		stmt.ThenExpr = p.parseExpression(lowest)
		if p.at(token.ELSE) {
			p.advance()
			if _, ok := p.expect(token.ARROW, "after else in short if"); ok {
				stmt.ElseExpr = p.parseExpression(lowest)
				stmt.HasElse = true
			}
		}
		return stmt
	}

	p.expect(token.THEN, "after if condition")
	stmt := &ast.IfStmt{Tok: tok, Cond: cond}
	stmt.Then = p.parseBlock(token.ELSE, token.END)
	if p.at(token.ELSE) {
		p.advance()
		stmt.HasElse = true
		stmt.Else = p.parseBlock(token.END)
	}
	p.expect(token.END, "to close if")
	return stmt
}

func (p *Parser) parseWhileStmt() ast.Statement {
	tok := p.advance() // 'while'
	cond := p.parseExpression(lowest)
	p.expect(token.LOOP, "after while condition")
	body := p.parseBlock(token.END)
	p.expect(token.END, "to close while")
	return &ast.WhileStmt{Tok: tok, Cond: cond, Body: body}
}

func (p *Parser) parseForStmt() ast.Statement {
	tok := p.advance() // 'for'
	stmt := &ast.ForStmt{Tok: tok}
	if p.at(token.IDENT) {
		stmt.VarName = p.advance().Name
	}
	p.expect(token.IN, "after for loop variable")
	first := p.parseExpression(lowest)
	if p.at(token.RANGE) {
		p.advance()
		stmt.Start = first
		stmt.Stop = p.parseExpression(lowest)
	} else {
		stmt.Iterable = first
	}
	p.expect(token.LOOP, "after for-in clause")
	stmt.Body = p.parseBlock(token.END)
	p.expect(token.END, "to close for")
	return stmt
}

// ---- expressions ----

func (p *Parser) parseExpression(precedence int) ast.Expression {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}

	for !p.atStatementEnd() && precedence < p.peekPrecedenceForCur() {
		cur := p.cur()
		switch {
		case compareOps[cur.Type]:
			left = p.parseCompareChain(left)
		case cur.Type == token.AND || cur.Type == token.OR || cur.Type == token.XOR:
			left = p.parseLogical(left)
		case cur.Type == token.LPAREN:
			left = p.parseCall(left)
		case cur.Type == token.LBRACKET:
			left = p.parseIndex(left)
		case cur.Type == token.DOT:
			left = p.parseFieldAccess(left)
		case isArithOp(cur.Type):
			left = p.parseBinary(left)
		default:
			return left
		}
	}
	return left
}

func isArithOp(t token.Type) bool {
	return t == token.PLUS || t == token.MINUS || t == token.STAR || t == token.SLASH
}

func (p *Parser) peekPrecedenceForCur() int {
	if prec, ok := precedences[p.cur().Type]; ok {
		return prec
	}
	return lowest
}

func (p *Parser) parsePrefix() ast.Expression {
	tok := p.cur()
	switch tok.Type {
	case token.INT:
		p.advance()
		v, _ := tok.Int.(*big.Int)
		if v == nil {
			v = big.NewInt(0)
		}
		return &ast.IntLiteral{Tok: tok, Value: v}
	case token.REAL:
		p.advance()
		return &ast.RealLiteral{Tok: tok, Value: tok.Real}
	case token.STRING:
		p.advance()
		return &ast.StringLiteral{Tok: tok, Value: tok.Str}
	case token.TRUE:
		p.advance()
		return &ast.BoolLiteral{Tok: tok, Value: true}
	case token.FALSE:
		p.advance()
		return &ast.BoolLiteral{Tok: tok, Value: false}
	case token.NONE_KW:
		p.advance()
		return &ast.NoneLiteral{Tok: tok}
	case token.IDENT:
		p.advance()
		return &ast.Identifier{Tok: tok, Name: tok.Name}
	case token.LPAREN:
		p.advance()
		expr := p.parseExpression(lowest)
		p.expect(token.RPAREN, "to close parenthesized expression")
		return expr
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.LBRACE:
		return p.parseTupleLiteral()
	case token.MINUS, token.PLUS, token.NOT:
		p.advance()
		x := p.parseExpression(precUnary)
		return &ast.UnaryExpr{Tok: tok, Op: tok.Type, X: x}
	case token.FUNC:
		return p.parseFuncLiteral()
	default:
		p.errorf("unexpected token %s in expression", tok.Type)
		p.advance()
		return nil
	}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.advance() // '['
	lit := &ast.ArrayLiteral{Tok: tok}
	for !p.at(token.RBRACKET) && !p.at(token.EOF) {
		lit.Elements = append(lit.Elements, p.parseExpression(lowest))
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBRACKET, "to close array literal")
	return lit
}

// parseTupleLiteral parses `{1, 2, 3}` (positional) or `{a: 1, b: 2}`
// (named fields), or a mix of both.
func (p *Parser) parseTupleLiteral() ast.Expression {
	tok := p.advance() // '{'
	lit := &ast.TupleLiteral{Tok: tok}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		fieldTok := p.cur()
		if p.at(token.IDENT) && p.peek().Type == token.COLON {
			name := p.advance().Name
			p.advance() // ':'
			lit.Fields = append(lit.Fields, ast.TupleField{Name: name, Tok: fieldTok, Value: p.parseExpression(lowest)})
		} else {
			lit.Fields = append(lit.Fields, ast.TupleField{Tok: fieldTok, Value: p.parseExpression(lowest)})
		}
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBRACE, "to close tuple literal")
	return lit
}

func (p *Parser) parseFuncLiteral() ast.Expression {
	tok := p.advance() // 'func'
	p.expect(token.LPAREN, "after func")
	var params []string
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		name, ok := p.expect(token.IDENT, "in parameter list")
		if ok {
			params = append(params, name.Name)
		}
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN, "to close parameter list")

	lit := &ast.FuncLiteral{Tok: tok, Params: params}
	if p.at(token.ARROW) {
		p.advance()
		lit.ShortBody = p.parseExpression(lowest)
		return lit
	}
	p.expect(token.IS, "or => after func parameter list")
	lit.Body = p.parseBlock(token.END)
	p.expect(token.END, "to close func body")
	return lit
}

func (p *Parser) parseBinary(left ast.Expression) ast.Expression {
	tok := p.advance()
	prec := precedences[tok.Type]
	right := p.parseExpression(prec)
	return &ast.BinaryExpr{Tok: tok, Op: tok.Type, Left: left, Right: right}
}

func (p *Parser) parseLogical(left ast.Expression) ast.Expression {
	tok := p.advance()
	right := p.parseExpression(precAnd)
	return &ast.LogicalExpr{Tok: tok, Op: tok.Type, Left: left, Right: right}
}

// parseCompareChain greedily consumes further comparison operators so
// `a < b <= c` becomes one CompareExpr with Operands=[a,b,c], matching
// §4.3's description of comparison chains as the AND of pairwise
// comparisons.
func (p *Parser) parseCompareChain(left ast.Expression) ast.Expression {
	tok := p.cur()
	chain := &ast.CompareExpr{Tok: tok, Operands: []ast.Expression{left}}
	for compareOps[p.cur().Type] {
		op := p.advance().Type
		chain.Ops = append(chain.Ops, op)
		chain.Operands = append(chain.Operands, p.parseExpression(precSum))
	}
	return chain
}

func (p *Parser) parseCall(callee ast.Expression) ast.Expression {
	tok := p.advance() // '('
	call := &ast.CallExpr{Tok: tok, Callee: callee}
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		call.Args = append(call.Args, p.parseExpression(lowest))
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN, "to close call arguments")
	return call
}

func (p *Parser) parseIndex(x ast.Expression) ast.Expression {
	tok := p.advance() // '['
	idx := p.parseExpression(lowest)
	p.expect(token.RBRACKET, "to close subscript")
	return &ast.IndexExpr{Tok: tok, X: x, Index: idx}
}

// parseFieldAccess handles `.name`, `.(i)` and the literal-index shortcut
// `.<int>` described in §4.1.
func (p *Parser) parseFieldAccess(x ast.Expression) ast.Expression {
	tok := p.advance() // '.'
	switch p.cur().Type {
	case token.IDENT:
		name := p.advance().Name
		return &ast.FieldAccess{Tok: tok, X: x, Name: name}
	case token.LPAREN:
		p.advance()
		idxTok, _ := p.expect(token.INT, "inside .( )")
		p.expect(token.RPAREN, "to close .( )")
		idx := 0
		if v, okV := idxTok.Int.(*big.Int); okV {
			idx = int(v.Int64())
		}
		// §4.1: .(i) is 1-based; store it 0-based for the analyzer/executor.
		return &ast.FieldAccess{Tok: tok, X: x, Index: idx - 1, ByIndex: true}
	case token.INT:
		idxTok := p.advance()
		idx := 0
		if v, okV := idxTok.Int.(*big.Int); okV {
			idx = int(v.Int64())
		}
		return &ast.FieldAccess{Tok: tok, X: x, Index: idx - 1, ByIndex: true}
	default:
		p.errorf("expected field name or index after '.'")
		return x
	}
}
