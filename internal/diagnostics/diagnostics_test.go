package diagnostics

import (
	"bytes"
	"testing"

	"github.com/funvibe/d/internal/token"
)

func TestNewDiagnosticDefaultsSeverityFromTaxonomy(t *testing.T) {
	d := NewDiagnostic(VariableNotDefined, token.Span{Line: 1, Column: 1}, "undefined variable %s", "x")
	if d.Severity != Error {
		t.Errorf("VariableNotDefined severity = %v, want Error", d.Severity)
	}
	if d.Message != "undefined variable x" {
		t.Errorf("Message = %q", d.Message)
	}

	w := NewDiagnostic(VariableNeverUsed, token.Span{Line: 1, Column: 1}, "variable %s never used", "y")
	if w.Severity != Warning {
		t.Errorf("VariableNeverUsed severity = %v, want Warning", w.Severity)
	}
}

func TestWithRelatedAppendsSpans(t *testing.T) {
	d := NewDiagnostic(VariableRedefined, token.Span{Line: 2, Column: 1}, "redefined")
	d.WithRelated(token.Span{Line: 1, Column: 1})
	if len(d.Related) != 1 {
		t.Fatalf("Related = %v, want 1 entry", d.Related)
	}
}

func TestAccumulatingSinkSortsBySourcePosition(t *testing.T) {
	sink := NewAccumulatingSink()
	sink.Log(NewDiagnostic(VariableNotDefined, token.Span{Line: 5, Column: 1}, "later"))
	sink.Log(NewDiagnostic(VariableNotDefined, token.Span{Line: 1, Column: 3}, "earlier"))
	sink.Log(NewDiagnostic(VariableNotDefined, token.Span{Line: 1, Column: 1}, "earliest"))

	all := sink.All()
	if len(all) != 3 {
		t.Fatalf("All() returned %d diagnostics, want 3", len(all))
	}
	if all[0].Message != "earliest" || all[1].Message != "earlier" || all[2].Message != "later" {
		t.Errorf("diagnostics not sorted by position: %v, %v, %v", all[0].Message, all[1].Message, all[2].Message)
	}
}

func TestAccumulatingSinkHasErrors(t *testing.T) {
	sink := NewAccumulatingSink()
	sink.Log(NewDiagnostic(VariableNeverUsed, token.Span{}, "unused"))
	if sink.HasErrors() {
		t.Error("HasErrors() = true with only a warning logged")
	}
	sink.Log(NewDiagnostic(VariableNotDefined, token.Span{}, "undefined"))
	if !sink.HasErrors() {
		t.Error("HasErrors() = false after logging an error")
	}
}

func TestAccumulatingSinkFilter(t *testing.T) {
	sink := NewAccumulatingSink()
	sink.Log(NewDiagnostic(VariableNeverUsed, token.Span{Line: 1}, "unused"))
	sink.Log(NewDiagnostic(VariableNotDefined, token.Span{Line: 2}, "undefined"))

	errorsOnly := sink.Filter(Error)
	if len(errorsOnly) != 1 || errorsOnly[0].Code != VariableNotDefined {
		t.Errorf("Filter(Error) = %v, want just the VariableNotDefined entry", errorsOnly)
	}
}

func TestStreamingSinkWritesRenderedLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewStreamingSink(&buf)
	sink.Log(NewDiagnostic(VariableNotDefined, token.Span{File: "a.d", Line: 1, Column: 1}, "undefined variable x"))
	if got, want := buf.String(), "a.d:1:1 [VariableNotDefined] error: undefined variable x\n"; got != want {
		t.Errorf("StreamingSink output = %q, want %q", got, want)
	}
}

func TestFanOutSinkForwardsToAll(t *testing.T) {
	a, b := NewAccumulatingSink(), NewAccumulatingSink()
	fan := NewFanOutSink(a, b)
	fan.Log(NewDiagnostic(VariableNotDefined, token.Span{}, "x"))
	if len(a.All()) != 1 || len(b.All()) != 1 {
		t.Errorf("FanOutSink did not forward to both sinks: a=%d b=%d", len(a.All()), len(b.All()))
	}
}
