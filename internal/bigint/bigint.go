// Package bigint is the leaf component the spec calls out separately: an
// arbitrary-precision integer, consumed only for its algebraic operations
// and fallible division. It wraps the standard library's math/big, which
// is the same library the teacher's lexer, ast and evaluator packages use
// to back integer literals and arithmetic (see DESIGN.md for why no
// third-party bignum library from the retrieved pack was a better fit).
package bigint

import "math/big"

// Int is an arbitrary-precision signed integer.
type Int struct {
	v *big.Int
}

// FromInt64 builds an Int from a native integer.
func FromInt64(n int64) Int {
	return Int{v: big.NewInt(n)}
}

// FromBig adopts an existing *big.Int without copying; callers that still
// hold a mutable reference must clone first.
func FromBig(b *big.Int) Int {
	if b == nil {
		return FromInt64(0)
	}
	return Int{v: b}
}

// Parse parses a base-10 string; ok is false on malformed input.
func Parse(s string) (Int, bool) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Int{}, false
	}
	return Int{v: v}, true
}

func (a Int) Big() *big.Int { return new(big.Int).Set(a.v) }

func (a Int) Add(b Int) Int { return Int{v: new(big.Int).Add(a.v, b.v)} }
func (a Int) Sub(b Int) Int { return Int{v: new(big.Int).Sub(a.v, b.v)} }
func (a Int) Mul(b Int) Int { return Int{v: new(big.Int).Mul(a.v, b.v)} }

// Div performs truncating integer division. ok is false when b is zero,
// the only way this component signals failure — callers translate that
// into the runtime-error or compile-time-error path described in §4.1.
func (a Int) Div(b Int) (Int, bool) {
	if b.v.Sign() == 0 {
		return Int{}, false
	}
	return Int{v: new(big.Int).Quo(a.v, b.v)}, true
}

// Mod performs truncating remainder; ok is false when b is zero.
func (a Int) Mod(b Int) (Int, bool) {
	if b.v.Sign() == 0 {
		return Int{}, false
	}
	return Int{v: new(big.Int).Rem(a.v, b.v)}, true
}

func (a Int) Neg() Int { return Int{v: new(big.Int).Neg(a.v)} }

func (a Int) Cmp(b Int) int { return a.v.Cmp(b.v) }

func (a Int) IsZero() bool { return a.v.Sign() == 0 }

func (a Int) Sign() int { return a.v.Sign() }

// Float64 converts to the nearest double, used when an Integer is mixed
// with a Real in arithmetic (§4.1).
func (a Int) Float64() float64 {
	f, _ := new(big.Float).SetInt(a.v).Float64()
	return f
}

func (a Int) Int64() (int64, bool) {
	if !a.v.IsInt64() {
		return 0, false
	}
	return a.v.Int64(), true
}

// String renders base-10, the default rendering used by `print`.
func (a Int) String() string { return a.v.String() }

// Text renders in an arbitrary base (2-36), per the leaf component's
// base-N rendering contract.
func (a Int) Text(base int) string { return a.v.Text(base) }
