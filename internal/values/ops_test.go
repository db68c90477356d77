package values

import (
	"testing"

	"github.com/funvibe/d/internal/bigint"
	"github.com/funvibe/d/internal/token"
)

func i(n int64) *Int   { return &Int{V: bigint.FromInt64(n)} }
func r(f float64) *Real { return &Real{V: f} }
func s(v string) *Str   { return &Str{V: v} }

func TestBinaryIntArithmetic(t *testing.T) {
	out := Binary("+", i(2), i(3), token.Span{})
	if out.Unsupported || out.Err != nil {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if got := out.Value.(*Int).V.String(); got != "5" {
		t.Errorf("2+3 = %s, want 5", got)
	}
}

func TestBinaryIntDivisionByZeroIsRuntimeError(t *testing.T) {
	out := Binary("/", i(1), i(0), token.Span{})
	if out.Err == nil {
		t.Fatal("expected a RuntimeError for integer division by zero")
	}
	if out.Err.Kind != "DivisionByZero" {
		t.Errorf("Err.Kind = %s, want DivisionByZero", out.Err.Kind)
	}
}

func TestBinaryRealDivisionByZeroIsInf(t *testing.T) {
	out := Binary("/", r(1), r(0), token.Span{})
	if out.Err != nil || out.Unsupported {
		t.Fatalf("real division by zero should not fail: %+v", out)
	}
	got := out.Value.(*Real).V
	if got != got+1 { // crude +Inf check: Inf+1 == Inf
		t.Errorf("expected +Inf, got %v", got)
	}
}

func TestBinaryMixedIntRealPromotesToReal(t *testing.T) {
	out := Binary("+", i(2), r(0.5), token.Span{})
	if out.Unsupported || out.Err != nil {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if got := out.Value.(*Real).V; got != 2.5 {
		t.Errorf("2 + 0.5 = %v, want 2.5", got)
	}
}

func TestBinaryStringConcat(t *testing.T) {
	out := Binary("+", s("foo"), s("bar"), token.Span{})
	if got := out.Value.(*Str).V; got != "foobar" {
		t.Errorf("concat = %q, want %q", got, "foobar")
	}
}

func TestBinaryStringMinusUnsupported(t *testing.T) {
	out := Binary("-", s("foo"), s("bar"), token.Span{})
	if !out.Unsupported {
		t.Error("string minus string should be Unsupported")
	}
}

func TestBinaryArrayConcat(t *testing.T) {
	a, b := NewArray(), NewArray()
	a.Set(0, i(1))
	a.Set(1, i(2))
	b.Set(0, i(3))
	out := Binary("+", a, b, token.Span{})
	arr := out.Value.(*Array)
	if arr.Len() != 3 {
		t.Fatalf("concatenated array has %d elements, want 3", arr.Len())
	}
	v, _ := arr.Get(2)
	if v.(*Int).V.String() != "3" {
		t.Errorf("element at index 2 = %s, want 3", v.String())
	}
}

func TestCompareEqualityAcrossKindsIsFalse(t *testing.T) {
	out := Compare("==", i(1), s("1"), token.Span{})
	if out.Value.(*Bool).V {
		t.Error("Int(1) == Str(\"1\") should be false")
	}
}

func TestCompareIntRealEquality(t *testing.T) {
	out := Compare("==", i(2), r(2.0), token.Span{})
	if !out.Value.(*Bool).V {
		t.Error("Int(2) == Real(2.0) should be true")
	}
}

func TestCompareOrdering(t *testing.T) {
	out := Compare("<", i(1), i(2), token.Span{})
	if !out.Value.(*Bool).V {
		t.Error("1 < 2 should be true")
	}
	out = Compare(">=", s("b"), s("a"), token.Span{})
	if !out.Value.(*Bool).V {
		t.Error(`"b" >= "a" should be true`)
	}
}

func TestLogicalRequiresBooleanOperands(t *testing.T) {
	out := Logical("and", True, i(1), token.Span{})
	if !out.Unsupported {
		t.Error("and with a non-Boolean operand should be Unsupported")
	}
	out = Logical("xor", True, False, token.Span{})
	if !out.Value.(*Bool).V {
		t.Error("true xor false should be true")
	}
}

func TestUnaryOperators(t *testing.T) {
	if got := Unary("-", i(5), token.Span{}).Value.(*Int).V.String(); got != "-5" {
		t.Errorf("-5 = %s, want -5", got)
	}
	if got := Unary("not", True, token.Span{}).Value.(*Bool).V; got {
		t.Error("not true should be false")
	}
	if out := Unary("not", i(1), token.Span{}); !out.Unsupported {
		t.Error("not on an Int should be Unsupported")
	}
}

func TestFieldOnNoneIsRuntimeError(t *testing.T) {
	out := Field(Nil, "anything", token.Span{})
	if out.Err == nil || out.Err.Kind != "NoneAccessed" {
		t.Fatalf("expected NoneAccessed error, got %+v", out)
	}
}

func TestFieldStringLength(t *testing.T) {
	out := Field(s("hello"), "Length", token.Span{})
	if got := out.Value.(*Int).V.String(); got != "5" {
		t.Errorf("Length = %s, want 5", got)
	}
}

func TestFieldTupleNamedAccess(t *testing.T) {
	tup := NewTuple([]Value{i(1), i(2)}, map[string]int{"x": 0, "y": 1})
	out := Field(tup, "y", token.Span{})
	if got := out.Value.(*Int).V.String(); got != "2" {
		t.Errorf("tuple.y = %s, want 2", got)
	}
	out = Field(tup, "z", token.Span{})
	if out.Err == nil || out.Err.Kind != "FieldNotFound" {
		t.Fatalf("expected FieldNotFound, got %+v", out)
	}
}

func TestIndexOfArray(t *testing.T) {
	arr := NewArray()
	arr.Set(0, s("a"))
	out := IndexOf(arr, i(0), token.Span{})
	if out.Value.(*Str).V != "a" {
		t.Errorf("arr[0] = %v, want a", out.Value)
	}
	out = IndexOf(arr, i(5), token.Span{})
	if out.Err == nil || out.Err.Kind != "IndexOutOfRange" {
		t.Fatalf("expected IndexOutOfRange, got %+v", out)
	}
}

func TestSetIndexRejectsNonArray(t *testing.T) {
	tup := NewTuple([]Value{i(1)}, map[string]int{"x": 0})
	out := SetIndex(tup, i(0), i(2), token.Span{})
	if !out.Unsupported {
		t.Error("subscript assignment on a Tuple should be Unsupported")
	}
}

func TestStringSliceRespectsStepAndBounds(t *testing.T) {
	v, err := stringSlice("abcdef", []Value{i(0), i(6), i(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := v.(*Str).V; got != "ace" {
		t.Errorf("slice = %q, want %q", got, "ace")
	}
}

func TestStringSliceRejectsZeroStep(t *testing.T) {
	_, err := stringSlice("abc", []Value{i(0), i(1), i(0)})
	if err == nil || err.Kind != "BadSliceStep" {
		t.Fatalf("expected BadSliceStep, got %v", err)
	}
}
