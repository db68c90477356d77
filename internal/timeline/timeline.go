// Package timeline implements the per-scope value timeline the analyzer
// threads through the AST (§3, §4.2): a stack of scopes, each holding
// bindings that carry either a folded Value or a static Type, plus a
// stack of blind-scope boundaries that model loop and closure bodies
// whose execution count or timing is not statically known.
package timeline

import (
	"fmt"

	"github.com/funvibe/d/internal/token"
	"github.com/funvibe/d/internal/types"
	"github.com/funvibe/d/internal/values"
)

// Content is the Value|Type duality: exactly one of the two fields is
// meaningful, selected by IsValue.
type Content struct {
	IsValue bool
	Value   values.Value
	Type    types.Type
}

func KnownValue(v values.Value) Content { return Content{IsValue: true, Value: v} }
func StaticType(t types.Type) Content   { return Content{Type: t} }

// TypeOf extracts the static type regardless of which half is populated.
func (c Content) TypeOf() types.Type {
	if c.IsValue {
		return c.Value.TypeOf()
	}
	return c.Type
}

// Binding is one declared name's entry (§3 Invariant 1: content is never
// both a value and a type at once, enforced by Content's shape).
type Binding struct {
	Name           string
	DeclSpan       token.Span
	Content        Content
	Used           bool
	PendingUnused  []token.Span // spans whose assigned value was never read
}

func (b *Binding) clone() *Binding {
	cp := *b
	cp.PendingUnused = append([]token.Span(nil), b.PendingUnused...)
	return &cp
}

// Scope holds one lexical level's bindings plus the set of ancestor
// names this scope wrote through a blind boundary (externals-touched,
// §4.2), used to replay degraded writes when a loop or closure body ends.
type Scope struct {
	Bindings         map[string]*Binding
	order            []string // declaration order, for deterministic scope-end reports
	ExternalsTouched map[string]bool
}

func newScope() *Scope {
	return &Scope{Bindings: make(map[string]*Binding), ExternalsTouched: make(map[string]bool)}
}

func (s *Scope) clone() *Scope {
	cp := newScope()
	cp.order = append([]string(nil), s.order...)
	for k, v := range s.Bindings {
		cp.Bindings[k] = v.clone()
	}
	for k, v := range s.ExternalsTouched {
		cp.ExternalsTouched[k] = v
	}
	return cp
}

// LookupResult is the four-way answer lookup can give (§4.2).
type LookupResultKind int

const (
	NotFound LookupResultKind = iota
	FoundValue
	FoundType
	BehindBlind
)

type LookupResult struct {
	Kind    LookupResultKind
	Binding *Binding // nil for NotFound/BehindBlind
	Type    types.Type
}

// UnusedDecl names one binding that was declared but never read.
type UnusedDecl struct {
	Name     string
	DeclSpan token.Span
}

// EndReport is returned by EndScope (§4.2).
type EndReport struct {
	DeclaredUnused   []UnusedDecl // bindings never read
	AssignmentUnused []token.Span // spans whose assigned value was never read
	ExternalsTouched []string     // ancestor names read or written from inside
}

// Timeline is a stack of Scopes plus a stack of blind-scope indices.
type Timeline struct {
	scopes      []*Scope
	blindStack  []int // indices into scopes that are blind boundaries
}

func New() *Timeline {
	t := &Timeline{}
	t.StartScope()
	return t
}

func (t *Timeline) Depth() int { return len(t.scopes) }

// StartScope opens an ordinary nested scope (e.g. an if-branch body).
func (t *Timeline) StartScope() {
	t.scopes = append(t.scopes, newScope())
}

// StartBlindScope opens a scope that is also a blind boundary: code
// inside it sees every enclosing binding as Unknown (§4.2, §4.3's
// function/loop analysis).
func (t *Timeline) StartBlindScope() {
	t.StartScope()
	t.blindStack = append(t.blindStack, len(t.scopes)-1)
}

// topBlindIndex returns the shallowest scope depth currently behind a
// blind boundary, or -1 if none is active.
func (t *Timeline) topBlindIndex() int {
	if len(t.blindStack) == 0 {
		return -1
	}
	return t.blindStack[len(t.blindStack)-1]
}

// Declare adds a new binding to the topmost scope. It fails (returns
// false) if the name is already declared there (§4.2's `declare`
// contract; redeclaration in an ancestor scope is fine — lookup finds
// the nearest, invariant 3).
func (t *Timeline) Declare(name string, span token.Span, content Content) bool {
	top := t.scopes[len(t.scopes)-1]
	if _, exists := top.Bindings[name]; exists {
		return false
	}
	top.Bindings[name] = &Binding{Name: name, DeclSpan: span, Content: content}
	top.order = append(top.order, name)
	return true
}

// Lookup finds the nearest binding for name, reporting whether the
// reader is behind a blind boundary relative to it. Reading marks the
// binding used and clears its pending-unused-assignment list (invariant
// 2).
func (t *Timeline) Lookup(name string) LookupResult {
	blind := t.topBlindIndex()
	for i := len(t.scopes) - 1; i >= 0; i-- {
		b, found := t.scopes[i].Bindings[name]
		if !found {
			continue
		}
		b.Used = true
		b.PendingUnused = nil
		if blind >= 0 && i < blind {
			t.scopes[len(t.scopes)-1].ExternalsTouched[name] = true
			return LookupResult{Kind: BehindBlind, Type: types.Simple(types.Unknown)}
		}
		if b.Content.IsValue {
			return LookupResult{Kind: FoundValue, Binding: b, Type: b.Content.TypeOf()}
		}
		return LookupResult{Kind: FoundType, Binding: b, Type: b.Content.Type}
	}
	return LookupResult{Kind: NotFound}
}

// Assign replaces an existing binding's content. It fails if the name is
// undeclared anywhere on the stack. If the binding lives in a scope
// behind the current blind boundary, the write is also recorded in the
// topmost scope's externals-touched set.
func (t *Timeline) Assign(name string, content Content, span token.Span) bool {
	blind := t.topBlindIndex()
	for i := len(t.scopes) - 1; i >= 0; i-- {
		b, found := t.scopes[i].Bindings[name]
		if !found {
			continue
		}
		if blind >= 0 && i < blind {
			t.scopes[len(t.scopes)-1].ExternalsTouched[name] = true
		}
		b.Content = content
		b.PendingUnused = []token.Span{span}
		return true
	}
	return false
}

// MakeAllUnknown degrades every binding in every scope to its current
// content's type, discarding any folded value, and clears pending-unused
// sets. Called after any impure call (§4.2) or at the end of a loop body
// (§4.3's while/for-loop analysis, which replays each touched external
// name's degradation).
func (t *Timeline) MakeAllUnknown() {
	for _, s := range t.scopes {
		for _, b := range s.Bindings {
			if b.Content.IsValue {
				b.Content = StaticType(types.Simple(types.Unknown))
			}
			b.PendingUnused = nil
		}
	}
}

// DegradeNames degrades only the named bindings to Unknown, wherever they
// are declared; used to replay a loop body's externals-touched writes
// onto the outer timeline once the body's own blind scope has closed.
func (t *Timeline) DegradeNames(names map[string]bool) {
	for _, s := range t.scopes {
		for name, b := range s.Bindings {
			if names[name] {
				b.Content = StaticType(types.Simple(types.Unknown))
			}
		}
	}
}

// EndScope pops the topmost scope and reports its liveness findings
// (§4.2, §4.3's variable-liveness diagnostics).
func (t *Timeline) EndScope() EndReport {
	top := t.scopes[len(t.scopes)-1]
	t.scopes = t.scopes[:len(t.scopes)-1]
	if len(t.blindStack) > 0 && t.blindStack[len(t.blindStack)-1] == len(t.scopes) {
		t.blindStack = t.blindStack[:len(t.blindStack)-1]
	}

	report := EndReport{}
	for _, name := range top.order {
		b := top.Bindings[name]
		if !b.Used {
			report.DeclaredUnused = append(report.DeclaredUnused, UnusedDecl{Name: name, DeclSpan: b.DeclSpan})
		}
		report.AssignmentUnused = append(report.AssignmentUnused, b.PendingUnused...)
	}
	for name := range top.ExternalsTouched {
		report.ExternalsTouched = append(report.ExternalsTouched, name)
	}
	return report
}

// ExternalsTouchedNames returns the names the current topmost scope has
// seen read or written across its blind boundary so far (used mid-body,
// e.g. by while-loop analysis which needs this before the scope ends).
func (t *Timeline) ExternalsTouchedNames() map[string]bool {
	top := t.scopes[len(t.scopes)-1]
	out := make(map[string]bool, len(top.ExternalsTouched))
	for k := range top.ExternalsTouched {
		out[k] = true
	}
	return out
}

// Clone makes an independent copy for speculative branch analysis (e.g.
// analyzing a while condition without committing its side effects, or
// descending into an if/else arm before merging).
func (t *Timeline) Clone() *Timeline {
	cp := &Timeline{blindStack: append([]int(nil), t.blindStack...)}
	for _, s := range t.scopes {
		cp.scopes = append(cp.scopes, s.clone())
	}
	return cp
}

// Merge reconciles two timelines that diverged after a speculative clone
// (e.g. the two arms of an if/else, §4.2's `merge`). It requires the two
// timelines to share shape: same scope depths, same names in each scope;
// a mismatch indicates an analyzer bug and Merge panics rather than
// silently producing a corrupt timeline (§9: "fail-fast on any mismatch").
func (t *Timeline) Merge(other *Timeline) {
	if len(t.scopes) != len(other.scopes) {
		panic(fmt.Sprintf("timeline shape mismatch: depth %d vs %d", len(t.scopes), len(other.scopes)))
	}
	for i, s := range t.scopes {
		os := other.scopes[i]
		if len(s.Bindings) != len(os.Bindings) {
			panic(fmt.Sprintf("timeline shape mismatch at depth %d: %d vs %d bindings", i, len(s.Bindings), len(os.Bindings)))
		}
		for name, b := range s.Bindings {
			ob, found := os.Bindings[name]
			if !found {
				panic(fmt.Sprintf("timeline shape mismatch: %q missing on one branch", name))
			}
			b.Used = b.Used || ob.Used
			b.PendingUnused = unionSpans(b.PendingUnused, ob.PendingUnused)
			merged := types.Generalize(b.Content.TypeOf(), ob.Content.TypeOf())
			if b.Content.IsValue && ob.Content.IsValue && valuesEqual(b.Content.Value, ob.Content.Value) {
				// both branches agree on the exact value: keep it known.
				continue
			}
			b.Content = StaticType(merged)
		}
		for name := range os.ExternalsTouched {
			s.ExternalsTouched[name] = true
		}
	}
}

func valuesEqual(a, b values.Value) bool {
	o := values.Compare("==", a, b, token.Span{})
	if o.Unsupported || o.Err != nil {
		return false
	}
	eq, isBool := values.Truthy(o.Value)
	return isBool && eq
}

func unionSpans(a, b []token.Span) []token.Span {
	seen := make(map[token.Span]bool, len(a)+len(b))
	out := make([]token.Span, 0, len(a)+len(b))
	for _, s := range append(append([]token.Span{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
