// Package builtins assembles the small set of intrinsics the language
// exposes at its top level (§4.4, §4.5's "closures & built-ins" share):
// the `input` line reader plus a handful of domain-stack extras threaded
// in from the retrieved example corpus. String methods (Length, Lower,
// Split, …) are not here — they live on the receiver itself, resolved by
// values.Field.
package builtins

import (
	"github.com/google/uuid"

	"github.com/funvibe/d/internal/bigint"
	"github.com/funvibe/d/internal/config"
	"github.com/funvibe/d/internal/token"
	"github.com/funvibe/d/internal/values"
)

// LineReader is the narrow interface the `input` built-in needs; the
// executor itself satisfies it (see executor.ReadInputLine), but tests
// can substitute a canned reader without constructing a full Executor.
type LineReader interface {
	ReadInputLine() (string, bool)
}

// Registry is the immutable table of top-level names the analyzer
// pre-declares and the executor's root scope is seeded with.
func Registry(in LineReader) map[string]*values.Builtin {
	reg := map[string]*values.Builtin{
		config.InputFuncName: {
			Name: config.InputFuncName,
			Sig:  values.Signature{Arity: 0, Pure: false},
			Fn: func(args []values.Value) (values.Value, *values.RuntimeError) {
				line, ok := in.ReadInputLine()
				if !ok {
					return &values.Str{V: ""}, nil
				}
				return &values.Str{V: line}, nil
			},
		},
		// uuid4 hands back a fresh RFC-4122 string; grounded on the
		// teacher's own use of google/uuid for generated identifiers.
		// Impure: two calls never fold to the same literal.
		"uuid4": {
			Name: "uuid4",
			Sig:  values.Signature{Arity: 0, Pure: false},
			Fn: func(args []values.Value) (values.Value, *values.RuntimeError) {
				return &values.Str{V: uuid.NewString()}, nil
			},
		},
		// parseInt parses a base-10 string into an Integer, the one
		// conversion the surface language has no literal syntax for.
		"parseInt": {
			Name: "parseInt",
			Sig:  values.Signature{Arity: 1, Pure: true},
			Fn: func(args []values.Value) (values.Value, *values.RuntimeError) {
				s, ok := args[0].(*values.Str)
				if !ok {
					return nil, values.NewRuntimeError("WrongArgumentType", token.Span{}, "parseInt expects a string")
				}
				n, ok := bigint.Parse(s.V)
				if !ok {
					return nil, values.NewRuntimeError("WrongArgumentType", token.Span{}, "%q is not a valid integer", s.V)
				}
				return &values.Int{V: n}, nil
			},
		},
	}
	return reg
}
