package timeline

import (
	"testing"

	"github.com/funvibe/d/internal/bigint"
	"github.com/funvibe/d/internal/token"
	"github.com/funvibe/d/internal/types"
	"github.com/funvibe/d/internal/values"
)

func intVal(n int64) values.Value { return &values.Int{V: bigint.FromInt64(n)} }

func TestDeclareAndLookup(t *testing.T) {
	tl := New()
	if !tl.Declare("x", token.Span{Line: 1}, KnownValue(intVal(1))) {
		t.Fatal("Declare should succeed for a fresh name")
	}
	res := tl.Lookup("x")
	if res.Kind != FoundValue {
		t.Fatalf("Lookup kind = %v, want FoundValue", res.Kind)
	}
	if res.Binding.Content.Value.(*values.Int).V.String() != "1" {
		t.Errorf("looked-up value = %v, want 1", res.Binding.Content.Value)
	}
}

func TestDeclareRejectsRedeclarationInSameScope(t *testing.T) {
	tl := New()
	tl.Declare("x", token.Span{}, KnownValue(intVal(1)))
	if tl.Declare("x", token.Span{}, KnownValue(intVal(2))) {
		t.Error("Declare should fail for a name already bound in the current scope")
	}
}

func TestDeclareInNestedScopeShadows(t *testing.T) {
	tl := New()
	tl.Declare("x", token.Span{}, KnownValue(intVal(1)))
	tl.StartScope()
	if !tl.Declare("x", token.Span{}, KnownValue(intVal(2))) {
		t.Fatal("redeclaring in a nested scope should succeed")
	}
	res := tl.Lookup("x")
	if res.Binding.Content.Value.(*values.Int).V.String() != "2" {
		t.Errorf("nearest binding = %v, want 2", res.Binding.Content.Value)
	}
}

func TestLookupNotFound(t *testing.T) {
	tl := New()
	if tl.Lookup("missing").Kind != NotFound {
		t.Error("Lookup of an undeclared name should report NotFound")
	}
}

func TestLookupBehindBlindScopeReturnsUnknown(t *testing.T) {
	tl := New()
	tl.Declare("x", token.Span{}, KnownValue(intVal(1)))
	tl.StartBlindScope()
	res := tl.Lookup("x")
	if res.Kind != BehindBlind {
		t.Fatalf("Lookup kind = %v, want BehindBlind", res.Kind)
	}
	if res.Type.Kind() != types.Unknown {
		t.Errorf("BehindBlind type = %v, want Unknown", res.Type)
	}
	touched := tl.ExternalsTouchedNames()
	if !touched["x"] {
		t.Error("reading x across the blind boundary should mark it externally touched")
	}
}

func TestAssignFailsForUndeclaredName(t *testing.T) {
	tl := New()
	if tl.Assign("ghost", KnownValue(intVal(1)), token.Span{}) {
		t.Error("Assign should fail for a name never declared")
	}
}

func TestAssignMarksPendingUnused(t *testing.T) {
	tl := New()
	tl.Declare("x", token.Span{}, KnownValue(intVal(1)))
	span := token.Span{Line: 3}
	if !tl.Assign("x", KnownValue(intVal(2)), span) {
		t.Fatal("Assign should succeed for a declared name")
	}
	report := tl.EndScope()
	if len(report.AssignmentUnused) != 1 || report.AssignmentUnused[0] != span {
		t.Errorf("AssignmentUnused = %v, want [%v]", report.AssignmentUnused, span)
	}
}

func TestEndScopeReportsDeclaredUnused(t *testing.T) {
	tl := New()
	declSpan := token.Span{Line: 1}
	tl.Declare("unused", declSpan, KnownValue(intVal(1)))
	report := tl.EndScope()
	if len(report.DeclaredUnused) != 1 || report.DeclaredUnused[0].Name != "unused" {
		t.Errorf("DeclaredUnused = %v, want [unused]", report.DeclaredUnused)
	}
}

func TestEndScopeOmitsUsedBindingsFromUnused(t *testing.T) {
	tl := New()
	tl.Declare("used", token.Span{}, KnownValue(intVal(1)))
	tl.Lookup("used")
	report := tl.EndScope()
	if len(report.DeclaredUnused) != 0 {
		t.Errorf("DeclaredUnused = %v, want none (binding was read)", report.DeclaredUnused)
	}
}

func TestMakeAllUnknownDegradesFoldedValues(t *testing.T) {
	tl := New()
	tl.Declare("x", token.Span{}, KnownValue(intVal(1)))
	tl.MakeAllUnknown()
	res := tl.Lookup("x")
	if res.Kind != FoundType || res.Type.Kind() != types.Unknown {
		t.Errorf("after MakeAllUnknown, Lookup = %+v, want FoundType(Unknown)", res)
	}
}

func TestDegradeNamesOnlyAffectsNamedBindings(t *testing.T) {
	tl := New()
	tl.Declare("x", token.Span{}, KnownValue(intVal(1)))
	tl.Declare("y", token.Span{}, KnownValue(intVal(2)))
	tl.DegradeNames(map[string]bool{"x": true})

	if tl.Lookup("x").Kind != FoundType {
		t.Error("x should have been degraded to a static type")
	}
	if tl.Lookup("y").Kind != FoundValue {
		t.Error("y should remain a known value")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	tl := New()
	tl.Declare("x", token.Span{}, KnownValue(intVal(1)))
	clone := tl.Clone()
	clone.Assign("x", KnownValue(intVal(99)), token.Span{})

	orig := tl.Lookup("x").Binding.Content.Value.(*values.Int).V.String()
	cloned := clone.Lookup("x").Binding.Content.Value.(*values.Int).V.String()
	if orig != "1" {
		t.Errorf("original timeline mutated by clone assignment: x = %s", orig)
	}
	if cloned != "99" {
		t.Errorf("clone's x = %s, want 99", cloned)
	}
}

func TestMergeKeepsAgreeingValuesKnown(t *testing.T) {
	base := New()
	base.Declare("x", token.Span{}, KnownValue(intVal(1)))
	left := base.Clone()
	right := base.Clone()
	// both branches leave x == 1 unchanged
	left.Merge(right)
	res := left.Lookup("x")
	if res.Kind != FoundValue || res.Binding.Content.Value.(*values.Int).V.String() != "1" {
		t.Errorf("Merge of agreeing branches = %+v, want FoundValue(1)", res)
	}
}

func TestMergeGeneralizesDivergingValues(t *testing.T) {
	base := New()
	base.Declare("x", token.Span{}, KnownValue(intVal(1)))
	left := base.Clone()
	right := base.Clone()
	left.Assign("x", KnownValue(intVal(1)), token.Span{})
	right.Assign("x", KnownValue(intVal(2)), token.Span{})
	left.Merge(right)
	res := left.Lookup("x")
	if res.Kind != FoundType || res.Type.Kind() != types.Integer {
		t.Errorf("Merge of diverging Int values = %+v, want FoundType(Integer)", res)
	}
}

func TestMergePanicsOnShapeMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Merge should panic when scope depths differ")
		}
	}()
	a := New()
	b := New()
	b.StartScope()
	a.Merge(b)
}
