// Package analyzer implements the constant-folding semantic analyzer
// (§4.3): three co-operating visitors over the AST that decide, per node,
// whether its inputs are known, rewrite nodes into precomputed-literal or
// closure-capture forms, and emit diagnostics to the shared log.
package analyzer

import (
	"github.com/funvibe/d/internal/ast"
	"github.com/funvibe/d/internal/timeline"
	"github.com/funvibe/d/internal/types"
)

// Termination classifies how a statement block finished (§4.3, glossary).
type Termination int

const (
	ReachedEnd Termination = iota
	Exited
	Returned
	Errored
)

// StmtResult is what the statement visitor returns for every node (§4.3
// item 1).
type StmtResult struct {
	Termination  Termination
	Pure         bool
	ReturnedType types.Type // Generalize of every Returned(T) seen on this path
	Replacement  []ast.Statement
	hasReturn    bool
}

func reachedEnd(pure bool) StmtResult { return StmtResult{Termination: ReachedEnd, Pure: pure} }

// mergeReturnType folds a new Returned(T) observation into the running
// Generalize used by function-literal analysis (§4.3).
func (r *StmtResult) mergeReturnType(t types.Type) {
	if !r.hasReturn {
		r.ReturnedType = t
		r.hasReturn = true
		return
	}
	r.ReturnedType = types.Generalize(r.ReturnedType, t)
}

// ExprResult is what the expression visitor returns for every node
// (§4.3 item 2).
type ExprResult struct {
	Content     timeline.Content
	Pure        bool
	Replacement ast.Expression // nil: keep the original node
	Err         bool           // a diagnostic was already emitted for this node
}

func exprError() ExprResult {
	return ExprResult{Content: timeline.StaticType(types.Simple(types.Unknown)), Err: true}
}
