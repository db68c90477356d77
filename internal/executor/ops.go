package executor

import (
	"math/big"

	"github.com/funvibe/d/internal/bigint"
	"github.com/funvibe/d/internal/token"
)

func bigFromAST(v *big.Int) bigint.Int { return bigint.FromBig(v) }

// opString/logicalOpName/unaryOpName mirror the analyzer's own copies:
// both components fold the same handful of token types onto the short
// operator strings values.Binary/Compare/Logical/Unary expect, but
// there's no shared package between them worth introducing for four
// switch statements.
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
