// Package executor is the tree-walking evaluator that shares the
// analyzer's runtime value model (§4.4): it threads a four-state control
// signal through every AST visit and maintains a bounded call stack that
// produces elided backtraces on exception.
package executor

import (
	"bufio"
	"fmt"
	"io"

	"github.com/funvibe/d/internal/ast"
	"github.com/funvibe/d/internal/token"
	"github.com/funvibe/d/internal/values"
)

// StateKind is the four-variant control-state sum (§3, §4.4).
type StateKind int

const (
	Running StateKind = iota
	ExitingLoop
	Returning
	Throwing
)

// State is the executor's single control-state object, checked at the
// top of every visit.
type State struct {
	Kind      StateKind
	ReturnVal values.Value
	Err       *values.RuntimeError
	ErrSpan   token.Span
	Trace     []token.Span
}

func running() State { return State{Kind: Running} }

// runtimeScope is one lexical level of the call-time environment —
// distinct from the analyzer's timeline.Scope, which only ever existed
// at analysis time.
type runtimeScope struct {
	vars   map[string]values.Value
	parent *runtimeScope
}

func newRuntimeScope(parent *runtimeScope) *runtimeScope {
	return &runtimeScope{vars: make(map[string]values.Value), parent: parent}
}

func (s *runtimeScope) declare(name string, v values.Value) { s.vars[name] = v }

func (s *runtimeScope) lookup(name string) (values.Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (s *runtimeScope) assign(name string, v values.Value) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.vars[name]; ok {
			cur.vars[name] = v
			return true
		}
	}
	return false
}

// Executor owns the program's I/O streams and bounded call stack for the
// run's entire lifetime (§5: both are borrowed mutably, exclusively).
type Executor struct {
	out        io.Writer
	in         *bufio.Reader
	callStack  []frame
	stackLimit int
	traceCap   int
}

type frame struct {
	name string
	span token.Span
}

// Default call-stack capacity and backtrace cap (the total number of
// frames RenderTrace keeps); exported as
// variables rather than constants so a host embedding the executor can
// tune them without forking the package.
var (
	DefaultStackCapacity = 2000
	DefaultTraceCap      = 20
)

func New(out io.Writer, in io.Reader) *Executor {
	return &Executor{
		out:        out,
		in:         bufio.NewReader(in),
		stackLimit: DefaultStackCapacity,
		traceCap:   DefaultTraceCap,
	}
}

// Run executes a fully analyzed program's top-level body and returns the
// terminal state (always Running on clean exit, or Throwing on an
// uncaught runtime error — the language has no exception surface,
// §7 item 3).
func (e *Executor) Run(prog *ast.Program) State {
	scope := newRuntimeScope(nil)
	st := e.execBody(prog.Body, scope)
	if st.Kind == Returning {
		// A top-level `return` has nothing to return to; treat it as a
		// clean stop, matching how the executor treats falling off the
		// end of the program.
		return running()
	}
	return st
}

func (e *Executor) pushFrame(name string, span token.Span) bool {
	if len(e.callStack) >= e.stackLimit {
		return false
	}
	e.callStack = append(e.callStack, frame{name: name, span: span})
	return true
}

func (e *Executor) popFrame() { e.callStack = e.callStack[:len(e.callStack)-1] }

// snapshotTrace captures the current call stack as a []token.Span (most
// recent call last), for attaching to a new Throwing state.
func (e *Executor) snapshotTrace() []token.Span {
	spans := make([]token.Span, len(e.callStack))
	for i, f := range e.callStack {
		spans[i] = f.span
	}
	return spans
}

func (e *Executor) throw(kind string, span token.Span, format string, args ...interface{}) State {
	return State{
		Kind:    Throwing,
		Err:     values.NewRuntimeError(kind, span, format, args...),
		ErrSpan: span,
		Trace:   e.snapshotTrace(),
	}
}

// RenderTrace implements the backtrace-halving rule (§4.4): if the
// recorded trace exceeds the cap, show floor(cap/2) frames from the top
// and ceil(cap/2) from the bottom with a "Skipping N calls…" marker
// between them.
func RenderTrace(trace []token.Span, cap int) []string {
	if len(trace) <= cap || cap <= 0 {
		out := make([]string, len(trace))
		for i, s := range trace {
			out[i] = s.String()
		}
		return out
	}
	top := cap / 2
	bottom := cap - top
	out := make([]string, 0, cap+1)
	for _, s := range trace[:top] {
		out = append(out, s.String())
	}
	skipped := len(trace) - top - bottom
	out = append(out, fmt.Sprintf("Skipping %d calls…", skipped))
	for _, s := range trace[len(trace)-bottom:] {
		out = append(out, s.String())
	}
	return out
}
