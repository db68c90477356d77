// Package types implements the static-type half of the Value|Type duality
// described in the spec's data model: every Binding holds either a known
// Value or, when folding cannot go further, a Type. Types support the same
// operator algebra as values (§4.1) but the algebra returns further Types.
package types

import "fmt"

// Kind enumerates the type lattice's elements. Unknown is the lattice top:
// every operation accepts it, arithmetic and unary operators on it yield
// Unknown (comparisons and `and`/`or`/`xor` still yield Bool), and it is
// the signal that a surrounding computation cannot be folded.
type Kind int

const (
	Integer Kind = iota
	Real
	String
	Bool
	None
	Array
	Tuple
	Function
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "int"
	case Real:
		return "real"
	case String:
		return "string"
	case Bool:
		return "bool"
	case None:
		return "none"
	case Array:
		return "array"
	case Tuple:
		return "tuple"
	case Function:
		return "function"
	default:
		return "unknown"
	}
}

// Type is an immutable static type. Function carries extra metadata;
// every other kind is a singleton value of that kind.
type Type struct {
	kind Kind

	// Function-only fields.
	arity     int
	fnReturn  *Type
	pure      bool
	fieldName []string // Tuple-only: registered field names, "" for positional
}

func Simple(k Kind) Type { return Type{kind: k} }

func Fn(arity int, ret Type, pure bool) Type {
	r := ret
	return Type{kind: Function, arity: arity, fnReturn: &r, pure: pure}
}

func TupleOf(fields []string) Type {
	return Type{kind: Tuple, fieldName: fields}
}

func (t Type) Kind() Kind { return t.kind }
func (t Type) Arity() int { return t.arity }
func (t Type) Pure() bool { return t.pure }
func (t Type) Return() Type {
	if t.fnReturn == nil {
		return Simple(Unknown)
	}
	return *t.fnReturn
}
func (t Type) Fields() []string { return t.fieldName }

func (t Type) String() string {
	if t.kind == Function {
		return fmt.Sprintf("func(%d)->%s", t.arity, t.Return())
	}
	return t.kind.String()
}

func (t Type) Equal(o Type) bool {
	if t.kind != o.kind {
		return false
	}
	if t.kind == Function {
		return t.arity == o.arity && t.Return().Equal(o.Return()) && t.pure == o.pure
	}
	return true
}

// Generalize is the lattice meet: identical types collapse to themselves;
// a numeric mix (Integer, Real) collapses to Real; anything else (a kind
// mismatch, or either side already Unknown) collapses to Unknown. It is
// commutative and idempotent by construction — see types_test.go.
func Generalize(a, b Type) Type {
	if a.Equal(b) {
		return a
	}
	numeric := func(t Type) bool { return t.kind == Integer || t.kind == Real }
	if numeric(a) && numeric(b) {
		return Simple(Real)
	}
	return Simple(Unknown)
}

// Algebra mirrors the value algebra (§4.1) but only ever reports whether
// an operator kind is supported and, if so, what type it returns — it
// never performs the computation, since at analysis time the operands are
// merely types.
type Result int

const (
	Supported Result = iota
	RuntimeError
	Unsupported
)

// BinaryOp decides whether the arithmetic/comparison operator `op` is
// statically applicable to types a and b, returning the result type.
// `op` is one of "+", "-", "*", "/", "==", "!=", "<", "<=", ">", ">=".
func BinaryOp(op string, a, b Type) (Type, Result) {
	if a.kind == Unknown || b.kind == Unknown {
		switch op {
		case "==", "!=", "<", "<=", ">", ">=":
			return Simple(Bool), Supported
		default:
			return Simple(Unknown), Supported
		}
	}

	switch op {
	case "+", "-", "*", "/":
		switch {
		case a.kind == String && b.kind == String && op == "+":
			return Simple(String), Supported
		case a.kind == Array && b.kind == Array && op == "+":
			return Simple(Array), Supported
		case (a.kind == Integer || a.kind == Real) && (b.kind == Integer || b.kind == Real):
			if a.kind == Real || b.kind == Real {
				return Simple(Real), Supported
			}
			return Simple(Integer), Supported
		default:
			return Type{}, Unsupported
		}
	case "==", "!=":
		return Simple(Bool), Supported
	case "<", "<=", ">", ">=":
		switch {
		case a.kind == String && b.kind == String:
			return Simple(Bool), Supported
		case (a.kind == Integer || a.kind == Real) && (b.kind == Integer || b.kind == Real):
			return Simple(Bool), Supported
		default:
			return Type{}, Unsupported
		}
	}
	return Type{}, Unsupported
}

// LogicalOp decides `and`/`or`/`xor` applicability; per the resolved open
// question, non-Boolean operands are always an error unless Unknown.
func LogicalOp(a, b Type) (Type, Result) {
	if a.kind == Unknown || b.kind == Unknown {
		return Simple(Bool), Supported
	}
	if a.kind == Bool && b.kind == Bool {
		return Simple(Bool), Supported
	}
	return Type{}, Unsupported
}

// UnaryOp decides `+ - not` applicability.
func UnaryOp(op string, a Type) (Type, Result) {
	if a.kind == Unknown {
		return Simple(Unknown), Supported
	}
	switch op {
	case "+", "-":
		if a.kind == Integer || a.kind == Real {
			return a, Supported
		}
		return Type{}, Unsupported
	case "not":
		if a.kind == Bool {
			return Simple(Bool), Supported
		}
		return Type{}, Unsupported
	}
	return Type{}, Unsupported
}
