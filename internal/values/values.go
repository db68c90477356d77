// Package values is the runtime value model shared by the analyzer (which
// folds expressions into Values whenever every operand is known, §4.3) and
// the executor (which falls back to the same operator algebra whenever an
// operand's value was Unknown at analysis time, §4.4). Sharing this model
// between the two components is what the spec calls out as the core of
// the system: the analyzer never duplicates evaluation logic, it simply
// invokes these same Binary/Unary/Field/Subscript entry points eagerly.
package values

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/d/internal/bigint"
	"github.com/funvibe/d/internal/token"
	"github.com/funvibe/d/internal/types"
)

// Value is the runtime payload of every expression result.
type Value interface {
	Kind() types.Kind
	TypeOf() types.Type
	String() string
}

// ---- concrete kinds ----

type Int struct{ V bigint.Int }

func (*Int) Kind() types.Kind   { return types.Integer }
func (*Int) TypeOf() types.Type { return types.Simple(types.Integer) }
func (v *Int) String() string   { return v.V.String() }

type Real struct{ V float64 }

func (*Real) Kind() types.Kind   { return types.Real }
func (*Real) TypeOf() types.Type { return types.Simple(types.Real) }
func (v *Real) String() string   { return fmt.Sprintf("%g", v.V) }

type Str struct{ V string }

func (*Str) Kind() types.Kind   { return types.String }
func (*Str) TypeOf() types.Type { return types.Simple(types.String) }
func (v *Str) String() string   { return v.V }

type Bool struct{ V bool }

func (*Bool) Kind() types.Kind   { return types.Bool }
func (*Bool) TypeOf() types.Type { return types.Simple(types.Bool) }
func (v *Bool) String() string {
	if v.V {
		return "true"
	}
	return "false"
}

type None struct{}

func (*None) Kind() types.Kind   { return types.None }
func (*None) TypeOf() types.Type { return types.Simple(types.None) }
func (*None) String() string     { return "none" }

// Array is a sparse, ordered-by-key mapping from integer index to value.
// It is the one mutable scalar-ish container and is never pre-folded into
// a shared literal (§4.3): each execution of an array literal allocates a
// fresh Array.
type Array struct {
	items map[int64]Value
}

func NewArray() *Array { return &Array{items: make(map[int64]Value)} }

func (a *Array) Kind() types.Kind   { return types.Array }
func (a *Array) TypeOf() types.Type { return types.Simple(types.Array) }

func (a *Array) Get(i int64) (Value, bool) {
	v, ok := a.items[i]
	return v, ok
}

func (a *Array) Set(i int64, v Value) { a.items[i] = v }

func (a *Array) Len() int { return len(a.items) }

// Keys returns the populated indices in ascending order.
func (a *Array) Keys() []int64 {
	keys := make([]int64, 0, len(a.items))
	for k := range a.items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (a *Array) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, k := range a.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.items[k].String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// Tuple is an ordered sequence of values plus an injective name->position
// map (§3). Positions are 1-based in the surface language (`.(1)`).
type Tuple struct {
	Values []Value
	Names  map[string]int // name -> 0-based position
}

func NewTuple(values []Value, names map[string]int) *Tuple {
	return &Tuple{Values: values, Names: names}
}

func (t *Tuple) Kind() types.Kind { return types.Tuple }
func (t *Tuple) TypeOf() types.Type {
	fields := make([]string, len(t.Values))
	for name, pos := range t.Names {
		fields[pos] = name
	}
	return types.TupleOf(fields)
}

func (t *Tuple) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, v := range t.Values {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Signature describes a callable's static shape: parameter count and
// whether the call can be folded at analysis time (no side effects, only
// reads of already-known bindings).
type Signature struct {
	Arity int
	Pure  bool
}

// Closure is a user function: its parameter list, captured-variable
// snapshot, and body AST. The snapshot is taken once, at closure-creation
// time — later reassignment in the enclosing scope is not observed
// (§4.5); this is why Captured holds Values, not names-to-look-up-later.
type Closure struct {
	Params    []string
	Body      []Stmt
	ShortBody Expr
	Captured  map[string]Value
	Sig       Signature
	Name      string // for stack traces; "" for anonymous
}

func (*Closure) Kind() types.Kind { return types.Function }
func (c *Closure) TypeOf() types.Type {
	return types.Fn(len(c.Params), types.Simple(types.Unknown), c.Sig.Pure)
}
func (c *Closure) String() string { return "func(...)" }

// Builtin is an intrinsic callable with a static signature (§3): `input`,
// the string methods, and the domain-stack intrinsics registered by the
// package internal/builtins.
type Builtin struct {
	Name string
	Sig  Signature
	Fn   func(args []Value) (Value, *RuntimeError)
}

func (*Builtin) Kind() types.Kind   { return types.Function }
func (b *Builtin) TypeOf() types.Type { return types.Fn(b.Sig.Arity, types.Simple(types.Unknown), b.Sig.Pure) }
func (b *Builtin) String() string   { return "builtin " + b.Name }

// Stmt/Expr are narrow aliases over ast.Statement/ast.Expression, kept as
// interface{} placeholders here to avoid values<->ast import cycles (ast
// references values.Value inside ast.LiteralValue, so ast cannot import
// values, and values cannot import ast). The executor and analyzer both
// perform the concrete type assertion back to ast.Statement/Expression.
type Stmt = interface{}
type Expr = interface{}

// RuntimeError is the payload of the executor's Throwing control state
// (§4.4, §7). Kind is a short stable string ("DivisionByZero",
// "IndexOutOfRange", "FieldNotFound", "StackOverflow", "NoneAccessed", …)
// so callers can compare without parsing Message.
type RuntimeError struct {
	Kind    string
	Message string
	Span    token.Span
}

func (e *RuntimeError) Error() string { return e.Message }

func NewRuntimeError(kind string, span token.Span, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)}
}

// Outcome is the three-valued result of every operator/field/subscript
// entry point: exactly one of a concrete Value, a RuntimeError, or
// Unsupported (the operator does not apply to these operand kinds at
// all — distinct from a RuntimeError because Unsupported is knowable
// from types alone and fires a semantic diagnostic when types are known,
// §4.1, §7).
type Outcome struct {
	Value       Value
	Err         *RuntimeError
	Unsupported bool
}

func ok(v Value) Outcome                { return Outcome{Value: v} }
func runtimeErr(e *RuntimeError) Outcome { return Outcome{Err: e} }
func unsupported() Outcome              { return Outcome{Unsupported: true} }

var (
	True  = &Bool{V: true}
	False = &Bool{V: false}
	Nil   = &None{}
)

func BoolOf(b bool) *Bool {
	if b {
		return True
	}
	return False
}

func Truthy(v Value) (bool, bool) {
	b, ok := v.(*Bool)
	if !ok {
		return false, false
	}
	return b.V, true
}
