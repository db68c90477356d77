package values

import (
	"strings"

	"github.com/funvibe/d/internal/bigint"
	"github.com/funvibe/d/internal/token"
)

// Binary applies `op` (one of "+ - * /") to two runtime values. Integer
// division by zero is a RuntimeError; Real division by zero follows host
// float semantics and produces +/-Inf (§4.1).
func Binary(op string, a, b Value, span token.Span) Outcome {
	switch l := a.(type) {
	case *Int:
		switch r := b.(type) {
		case *Int:
			return intBinary(op, l, r, span)
		case *Real:
			return realBinary(op, &Real{V: l.V.Float64()}, r, span)
		}
	case *Real:
		switch r := b.(type) {
		case *Real:
			return realBinary(op, l, r, span)
		case *Int:
			return realBinary(op, l, &Real{V: r.V.Float64()}, span)
		}
	case *Str:
		if r, isStr := b.(*Str); isStr && op == "+" {
			return ok(&Str{V: l.V + r.V})
		}
	case *Array:
		if r, isArr := b.(*Array); isArr && op == "+" {
			return ok(concatArrays(l, r))
		}
	}
	return unsupported()
}

func intBinary(op string, l, r *Int, span token.Span) Outcome {
	switch op {
	case "+":
		return ok(&Int{V: l.V.Add(r.V)})
	case "-":
		return ok(&Int{V: l.V.Sub(r.V)})
	case "*":
		return ok(&Int{V: l.V.Mul(r.V)})
	case "/":
		q, divOK := l.V.Div(r.V)
		if !divOK {
			return runtimeErr(NewRuntimeError("DivisionByZero", span, "integer division by zero"))
		}
		return ok(&Int{V: q})
	}
	return unsupported()
}

func realBinary(op string, l, r *Real, span token.Span) Outcome {
	switch op {
	case "+":
		return ok(&Real{V: l.V + r.V})
	case "-":
		return ok(&Real{V: l.V - r.V})
	case "*":
		return ok(&Real{V: l.V * r.V})
	case "/":
		// Host float semantics: x/0 is +-Inf, 0/0 is NaN. Never a runtime
		// error for Real, per §4.1.
		return ok(&Real{V: l.V / r.V})
	}
	return unsupported()
}

func concatArrays(l, r *Array) *Array {
	out := NewArray()
	for _, k := range l.Keys() {
		v, _ := l.Get(k)
		out.Set(k, v)
	}
	offset := int64(0)
	if len(l.items) > 0 {
		keys := l.Keys()
		offset = keys[len(keys)-1] + 1
	}
	for _, k := range r.Keys() {
		v, _ := r.Get(k)
		out.Set(offset+k, v)
	}
	return out
}

// Compare implements the total/partial ordering used by `< <= > >=` and
// the equality used by `== !=`. Equality is defined for every pair of
// kinds (unequal kinds are simply unequal);
// ordering comparisons are only defined for Integer/Real mixes and String.
func Compare(op string, a, b Value, span token.Span) Outcome {
	if op == "==" || op == "!=" {
		eq := valuesEqual(a, b)
		if op == "!=" {
			eq = !eq
		}
		return ok(BoolOf(eq))
	}

	switch l := a.(type) {
	case *Int:
		switch r := b.(type) {
		case *Int:
			return ok(BoolOf(orderResult(op, l.V.Cmp(r.V))))
		case *Real:
			return ok(BoolOf(orderResult(op, cmpFloat(l.V.Float64(), r.V))))
		}
	case *Real:
		switch r := b.(type) {
		case *Real:
			return ok(BoolOf(orderResult(op, cmpFloat(l.V, r.V))))
		case *Int:
			return ok(BoolOf(orderResult(op, cmpFloat(l.V, r.V.Float64()))))
		}
	case *Str:
		if r, isStr := b.(*Str); isStr {
			return ok(BoolOf(orderResult(op, strings.Compare(l.V, r.V))))
		}
	}
	return unsupported()
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func orderResult(op string, cmp int) bool {
	switch op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	}
	return false
}

func valuesEqual(a, b Value) bool {
	switch l := a.(type) {
	case *Int:
		if r, isOk := b.(*Int); isOk {
			return l.V.Cmp(r.V) == 0
		}
		if r, isOk := b.(*Real); isOk {
			return l.V.Float64() == r.V
		}
	case *Real:
		if r, isOk := b.(*Real); isOk {
			return l.V == r.V
		}
		if r, isOk := b.(*Int); isOk {
			return l.V == r.V.Float64()
		}
	case *Str:
		if r, isOk := b.(*Str); isOk {
			return l.V == r.V
		}
	case *Bool:
		if r, isOk := b.(*Bool); isOk {
			return l.V == r.V
		}
	case *None:
		_, isOk := b.(*None)
		return isOk
	}
	return false
}

// Logical applies `and or xor`. Per the resolved open question (§9), xor
// does not short-circuit and every logical operator is an error unless
// both operands are Boolean.
func Logical(op string, a, b Value, span token.Span) Outcome {
	la, aIsBool := a.(*Bool)
	lb, bIsBool := b.(*Bool)
	if !aIsBool || !bIsBool {
		return unsupported()
	}
	switch op {
	case "and":
		return ok(BoolOf(la.V && lb.V))
	case "or":
		return ok(BoolOf(la.V || lb.V))
	case "xor":
		return ok(BoolOf(la.V != lb.V))
	}
	return unsupported()
}

// Unary applies `+ - not`.
func Unary(op string, a Value, span token.Span) Outcome {
	switch op {
	case "-":
		switch v := a.(type) {
		case *Int:
			return ok(&Int{V: v.V.Neg()})
		case *Real:
			return ok(&Real{V: -v.V})
		}
	case "+":
		switch a.(type) {
		case *Int, *Real:
			return ok(a)
		}
	case "not":
		if v, isOk := a.(*Bool); isOk {
			return ok(BoolOf(!v.V))
		}
	}
	return unsupported()
}

// Field resolves `.name` on a value — the named fields of §4.1 (String's
// Length/Lower/Upper/Split/SplitWS/Join/Slice, a Tuple's registered
// names). Callable fields are returned as *Builtin bound to the
// receiver.
func Field(receiver Value, name string, span token.Span) Outcome {
	switch v := receiver.(type) {
	case *Str:
		return stringField(v, name)
	case *Tuple:
		pos, has := v.Names[name]
		if !has {
			return runtimeErr(NewRuntimeError("FieldNotFound", span, "no such field: %s", name))
		}
		return ok(v.Values[pos])
	case *None:
		return runtimeErr(NewRuntimeError("NoneAccessed", span, "field access on none"))
	}
	return unsupported()
}

func stringField(v *Str, name string) Outcome {
	switch name {
	case "Length":
		return ok(&Int{V: bigint.FromInt64(int64(len([]rune(v.V))))})
	case "Lower":
		return ok(&Str{V: strings.ToLower(v.V)})
	case "Upper":
		return ok(&Str{V: strings.ToUpper(v.V)})
	case "Split":
		return ok(&Builtin{Name: "Split", Sig: Signature{Arity: 1, Pure: true}, Fn: func(args []Value) (Value, *RuntimeError) {
			sep, isOk := args[0].(*Str)
			if !isOk {
				return nil, NewRuntimeError("WrongArgumentType", token.Span{}, "Split expects a string separator")
			}
			return stringSplit(v.V, sep.V), nil
		}})
	case "SplitWS":
		return ok(&Builtin{Name: "SplitWS", Sig: Signature{Arity: 0, Pure: true}, Fn: func(args []Value) (Value, *RuntimeError) {
			return stringSplit(v.V, ""), nil
		}})
	case "Join":
		return ok(&Builtin{Name: "Join", Sig: Signature{Arity: 1, Pure: true}, Fn: func(args []Value) (Value, *RuntimeError) {
			arr, isOk := args[0].(*Array)
			if !isOk {
				return nil, NewRuntimeError("WrongArgumentType", token.Span{}, "Join expects an array")
			}
			parts := make([]string, 0, arr.Len())
			for _, k := range arr.Keys() {
				elem, _ := arr.Get(k)
				s, isOk := elem.(*Str)
				if !isOk {
					return nil, NewRuntimeError("WrongArgumentType", token.Span{}, "Join expects an array of strings")
				}
				parts = append(parts, s.V)
			}
			return &Str{V: strings.Join(parts, v.V)}, nil
		}})
	case "Slice":
		return ok(&Builtin{Name: "Slice", Sig: Signature{Arity: 3, Pure: true}, Fn: func(args []Value) (Value, *RuntimeError) {
			return stringSlice(v.V, args)
		}})
	}
	return unsupported()
}

func stringSplit(s, sep string) *Array {
	var parts []string
	if sep == "" {
		parts = strings.Fields(s)
	} else {
		parts = strings.Split(s, sep)
	}
	out := NewArray()
	for i, p := range parts {
		out.Set(int64(i), &Str{V: p})
	}
	return out
}

// stringSlice implements the rule pinned down in §4.1/§9: negative
// indices are literal, not from-the-end; stop is exclusive; step must be
// non-zero; iteration stops once i leaves [0, len) or crosses stop in the
// direction of travel.
func stringSlice(s string, args []Value) (Value, *RuntimeError) {
	runes := []rune(s)
	n := int64(len(runes))
	start, sOK := asInt(args[0])
	stop, eOK := asInt(args[1])
	step, stOK := asInt(args[2])
	if !sOK || !eOK || !stOK {
		return nil, NewRuntimeError("WrongArgumentType", token.Span{}, "Slice expects integer bounds")
	}
	if step == 0 {
		return nil, NewRuntimeError("BadSliceStep", token.Span{}, "slice step must be non-zero")
	}
	var sb strings.Builder
	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		if i < 0 || i >= n {
			break
		}
		sb.WriteRune(runes[i])
	}
	return &Str{V: sb.String()}, nil
}

func asInt(v Value) (int64, bool) {
	i, isOk := v.(*Int)
	if !isOk {
		return 0, false
	}
	n, fits := i.V.Int64()
	return n, fits
}

// IndexOf resolves `[k]` on Array only; every other receiver, Tuple and
// String included, is unsupported.
func IndexOf(receiver, key Value, span token.Span) Outcome {
	switch v := receiver.(type) {
	case *Array:
		idx, isOk := asInt(key)
		if !isOk {
			return runtimeErr(NewRuntimeError("BadSubscriptIndexType", span, "array index must be an integer"))
		}
		val, has := v.Get(idx)
		if !has {
			return runtimeErr(NewRuntimeError("IndexOutOfRange", span, "no element at index %d", idx))
		}
		return ok(val)
	}
	return unsupported()
}

// SetIndex implements `a[i] := v` (Array only — Tuple and everything else
// reject subscript assignment, §4.3 diagnostics).
func SetIndex(receiver, key, val Value, span token.Span) Outcome {
	arr, isOk := receiver.(*Array)
	if !isOk {
		return unsupported()
	}
	idx, isOk := asInt(key)
	if !isOk {
		return runtimeErr(NewRuntimeError("BadSubscriptIndexType", span, "array index must be an integer"))
	}
	arr.Set(idx, val)
	return ok(val)
}

