package bigint

import "testing"

func TestArithmetic(t *testing.T) {
	a, b := FromInt64(7), FromInt64(3)
	if got := a.Add(b).String(); got != "10" {
		t.Errorf("Add = %s, want 10", got)
	}
	if got := a.Sub(b).String(); got != "4" {
		t.Errorf("Sub = %s, want 4", got)
	}
	if got := a.Mul(b).String(); got != "21" {
		t.Errorf("Mul = %s, want 21", got)
	}
}

func TestDivAndModTruncateTowardZero(t *testing.T) {
	a, b := FromInt64(-7), FromInt64(2)
	q, ok := a.Div(b)
	if !ok || q.String() != "-3" {
		t.Errorf("Div(-7, 2) = %s, ok=%v, want -3, true", q.String(), ok)
	}
	r, ok := a.Mod(b)
	if !ok || r.String() != "-1" {
		t.Errorf("Mod(-7, 2) = %s, ok=%v, want -1, true", r.String(), ok)
	}
}

func TestDivAndModByZero(t *testing.T) {
	a, zero := FromInt64(5), FromInt64(0)
	if _, ok := a.Div(zero); ok {
		t.Error("Div by zero should report ok=false")
	}
	if _, ok := a.Mod(zero); ok {
		t.Error("Mod by zero should report ok=false")
	}
}

func TestNegCmpSignIsZero(t *testing.T) {
	a := FromInt64(5)
	if got := a.Neg().String(); got != "-5" {
		t.Errorf("Neg = %s, want -5", got)
	}
	if FromInt64(3).Cmp(FromInt64(5)) >= 0 {
		t.Error("Cmp(3, 5) should be negative")
	}
	if !FromInt64(0).IsZero() {
		t.Error("IsZero(0) should be true")
	}
	if FromInt64(-4).Sign() != -1 {
		t.Error("Sign(-4) should be -1")
	}
}

func TestParse(t *testing.T) {
	v, ok := Parse("12345678901234567890")
	if !ok {
		t.Fatal("Parse failed on a valid base-10 string")
	}
	if v.String() != "12345678901234567890" {
		t.Errorf("Parse round-trip = %s", v.String())
	}
	if _, ok := Parse("not-a-number"); ok {
		t.Error("Parse should fail on malformed input")
	}
}

func TestInt64Conversion(t *testing.T) {
	small := FromInt64(42)
	n, ok := small.Int64()
	if !ok || n != 42 {
		t.Errorf("Int64() = %d, %v, want 42, true", n, ok)
	}

	huge, _ := Parse("100000000000000000000000000000000000000")
	if _, ok := huge.Int64(); ok {
		t.Error("Int64() should report ok=false for a value exceeding int64 range")
	}
}

func TestFloat64AndText(t *testing.T) {
	if got := FromInt64(255).Text(16); got != "ff" {
		t.Errorf("Text(16) = %s, want ff", got)
	}
	if got := FromInt64(2).Float64(); got != 2.0 {
		t.Errorf("Float64() = %v, want 2.0", got)
	}
}
