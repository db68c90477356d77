// Package diagnostics holds the structured messages produced by the lexer,
// parser, analyzer and executor, and the sinks that render or accumulate
// them. It is the shared log described as an external collaborator of the
// core: the analyzer and parser both write into it, never read each
// other's internals.
package diagnostics

import (
	"fmt"
	"io"
	"sort"

	"github.com/funvibe/d/internal/token"
)

// Severity classifies how a Diagnostic should gate compilation.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Code is a short, stable identifier for a diagnostic kind, e.g.
// "VariableNeverUsed" or "IntegerZeroDivisionWarning".
type Code string

// Diagnostic taxonomy from the semantic analyzer and executor. Names are
// intentionally exactly the ones a reader of the language reference would
// recognize; severities match the table in the component design.
const (
	VariableNotDefined          Code = "VariableNotDefined"
	VariableRedefined           Code = "VariableRedefined"
	OperatorNotApplicable       Code = "OperatorNotApplicable"
	WrongArgumentCount          Code = "WrongArgumentCount"
	WrongArgumentType           Code = "WrongArgumentType"
	TriedToCallNonFunction      Code = "TriedToCallNonFunction"
	ConditionMustBeBoolean      Code = "ConditionMustBeBoolean"
	IterableExpected            Code = "IterableExpected"
	IntegerBoundaryExpected     Code = "IntegerBoundaryExpected"
	NoSuchField                 Code = "NoSuchField"
	BadSubscriptIndexType       Code = "BadSubscriptIndexType"
	SubscriptAssignOnlyArrays   Code = "SubscriptAssignmentOnlyInArrays"
	FieldsOnlyAssignableInTuple Code = "FieldsOnlyAssignableInTuples"
	CannotAssignNamedField      Code = "CannotAssignNamedFieldInTuple"
	CannotAssignIndexedField    Code = "CannotAssignIndexedFieldInTuple"
	ExitOutsideOfCycle          Code = "ExitOutsideOfCycle"
	ReturnOutsideOfFunction     Code = "ReturnOutsideOfFunction"
	EvaluationException         Code = "EvaluationException"
	DuplicateFieldNames         Code = "DuplicateFieldNames"
	DuplicateParameterNames     Code = "DuplicateParameterNames"
	NoneValueAccessed           Code = "NoneValueAccessed"
	CodeUnreachable             Code = "CodeUnreachable"
	IfConditionAlwaysKnown      Code = "IfConditionAlwaysKnown"
	WhileConditionFalseAtStart  Code = "WhileConditionFalseAtStart"
	WhileConditionNotBoolAtStart Code = "WhileConditionNotBoolAtStart"
	ExpressionStatementNoEffect Code = "ExpressionStatementNoSideEffects"
	IntegerZeroDivisionWarning  Code = "IntegerZeroDivisionWarning"
	VariableNeverUsed           Code = "VariableNeverUsed"
	AssignedValueUnused         Code = "AssignedValueUnused"

	// ParseError covers the lexer/parser boundary; it is not part of the
	// analyzer's own taxonomy (§4.3) but shares the same Sink.
	ParseError Code = "ParseError"
)

// severityFor gives every code listed in the taxonomy its documented
// default severity; a code not present here is an implementation bug and
// defaults to Error so it cannot silently slip through.
var severityFor = map[Code]Severity{
	VariableNotDefined: Error, VariableRedefined: Error, OperatorNotApplicable: Error,
	WrongArgumentCount: Error, WrongArgumentType: Error, TriedToCallNonFunction: Error,
	ConditionMustBeBoolean: Error, IterableExpected: Error, IntegerBoundaryExpected: Error,
	NoSuchField: Error, BadSubscriptIndexType: Error, SubscriptAssignOnlyArrays: Error,
	FieldsOnlyAssignableInTuple: Error, CannotAssignNamedField: Error, CannotAssignIndexedField: Error,
	ExitOutsideOfCycle: Error, ReturnOutsideOfFunction: Error, EvaluationException: Error,
	DuplicateFieldNames: Error, DuplicateParameterNames: Error, NoneValueAccessed: Error,
	WhileConditionNotBoolAtStart: Error,
	CodeUnreachable:             Warning,
	IfConditionAlwaysKnown:      Warning,
	WhileConditionFalseAtStart:  Warning,
	ExpressionStatementNoEffect: Warning,
	IntegerZeroDivisionWarning:  Warning,
	VariableNeverUsed:           Warning,
	AssignedValueUnused:         Warning,
	ParseError:                  Error,
}

// Diagnostic is a single structured message with zero or more span
// anchors. Most diagnostics carry exactly one span; a few (e.g. a
// comparison-chain warning) carry a primary span plus related ones.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  token.Span
	Related  []token.Span
}

// NewDiagnostic builds a Diagnostic, defaulting severity from the code
// taxonomy when the caller does not need to override it.
func NewDiagnostic(code Code, primary token.Span, message string, args ...interface{}) *Diagnostic {
	sev, ok := severityFor[code]
	if !ok {
		sev = Error
	}
	return &Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  fmt.Sprintf(message, args...),
		Primary:  primary,
	}
}

// WithRelated attaches secondary spans (e.g. "previous declaration here")
// and returns the same Diagnostic for chaining at the call site.
func (d *Diagnostic) WithRelated(spans ...token.Span) *Diagnostic {
	d.Related = append(d.Related, spans...)
	return d
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Primary, d.Severity, d.Message)
}

// Render produces the human-readable line for a diagnostic; callers that
// want source excerpts wrap this with their own locator-backed renderer.
func (d *Diagnostic) Render() string {
	return fmt.Sprintf("%s [%s] %s: %s", d.Primary, d.Code, d.Severity, d.Message)
}

// Sink accumulates, streams, or fans out diagnostics as they are logged.
// The analyzer and parser hold one Sink and never inspect its concrete
// type; a CLI front-end decides which concrete Sink to wire in.
type Sink interface {
	Log(d *Diagnostic)
}

// AccumulatingSink stores every diagnostic for later, sorted rendering —
// the shape the analyzer uses so it can report in source order regardless
// of visit order.
type AccumulatingSink struct {
	diagnostics []*Diagnostic
}

func NewAccumulatingSink() *AccumulatingSink {
	return &AccumulatingSink{}
}

func (s *AccumulatingSink) Log(d *Diagnostic) {
	s.diagnostics = append(s.diagnostics, d)
}

// All returns every logged diagnostic, sorted by source position.
func (s *AccumulatingSink) All() []*Diagnostic {
	sorted := make([]*Diagnostic, len(s.diagnostics))
	copy(sorted, s.diagnostics)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Primary, sorted[j].Primary
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return sorted
}

// Filter returns only diagnostics at or above the given severity.
func (s *AccumulatingSink) Filter(min Severity) []*Diagnostic {
	var out []*Diagnostic
	for _, d := range s.All() {
		if d.Severity >= min {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether any accumulated diagnostic is an Error; the
// pipeline uses this to decide whether execution may proceed.
func (s *AccumulatingSink) HasErrors() bool {
	for _, d := range s.diagnostics {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// StreamingSink writes diagnostics line-by-line to w as they arrive,
// useful for a CLI running with --locators/-l against a live terminal.
type StreamingSink struct {
	w io.Writer
}

func NewStreamingSink(w io.Writer) *StreamingSink {
	return &StreamingSink{w: w}
}

func (s *StreamingSink) Log(d *Diagnostic) {
	fmt.Fprintln(s.w, d.Render())
}

// FanOutSink forwards every Log call to each wrapped sink, letting a
// front-end accumulate for a final summary while also streaming live.
type FanOutSink struct {
	sinks []Sink
}

func NewFanOutSink(sinks ...Sink) *FanOutSink {
	return &FanOutSink{sinks: sinks}
}

func (s *FanOutSink) Log(d *Diagnostic) {
	for _, sink := range s.sinks {
		sink.Log(d)
	}
}
