// Package diagnostic defines the compiler-wide error/warning shape
// every phase in spec.md §4 produces, plus the VF-code taxonomy from
// spec.md §6. It is the generalization of the teacher's per-package
// "<Package>Error{Kind, Message}" convention (graph.GraphError,
// dsl.SyntaxError, query.QueryError, inference.InferenceError) across
// the five compiler phases, enriched with github.com/samber/oops for
// structured error context the way holomush-holomush's pkg/errutil
// wraps oops for logging.
package diagnostic

import (
	"encoding/json"
	"fmt"

	"github.com/samber/oops"

	"github.com/mbcrawfo/vibefun/internal/token"
)

// Severity distinguishes fatal diagnostics from advisory ones.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Phase identifies which pipeline stage produced a diagnostic, which
// in turn constrains its Code to a VF-prefix range (spec.md §6).
type Phase int

const (
	PhaseLexer Phase = iota
	PhaseParser
	PhaseDesugar
	PhaseTypeCheck
	PhaseResolver
)

func (p Phase) String() string {
	switch p {
	case PhaseLexer:
		return "lexer"
	case PhaseParser:
		return "parser"
	case PhaseDesugar:
		return "desugar"
	case PhaseTypeCheck:
		return "type-check"
	case PhaseResolver:
		return "resolver"
	default:
		return "unknown"
	}
}

// Code is one of the VF1xxx..VF5xxx codes from spec.md §6/§8.
type Code string

const (
	// Lexer — VF1xxx
	CodeInvalidEscape      Code = "VF1001"
	CodeReservedWord       Code = "VF1010"
	CodeInvalidUTF8        Code = "VF1020"
	CodeUnterminatedString Code = "VF1030"
	CodeInvalidNumber      Code = "VF1040"
	CodeUnexpectedChar     Code = "VF1050"

	// Parser — VF2xxx
	CodeExpectedSemicolon Code = "VF2001"
	CodeUnexpectedToken   Code = "VF2030"
	CodeAmbiguousConstruct Code = "VF2040"

	// Desugarer — VF3xxx
	CodeInternalDesugarError Code = "VF3001"

	// Type checker — VF4xxx
	CodeUnificationFailure  Code = "VF4001"
	CodeMixedNumericOperand Code = "VF4002"
	CodeOccursCheck         Code = "VF4010"
	CodeUndefinedName       Code = "VF4020"
	CodeUnknownField        Code = "VF4030"
	CodeUnknownConstructor  Code = "VF4040"
	CodeArityMismatch       Code = "VF4050"
	CodeNoMatchingOverload  Code = "VF4060"
	CodeAmbiguousOverload   Code = "VF4070"
	CodeExternalOutsideUnsafe Code = "VF4080"
	CodeNonExhaustiveMatch  Code = "VF4900" // warning by default
	CodeUnreachableArm      Code = "VF4901" // warning

	// Module resolver — VF5xxx
	CodeModuleNotFound   Code = "VF5000"
	CodeSelfImport       Code = "VF5004"
	CodeInvalidConfig    Code = "VF5010"
	CodeCircularDependency Code = "VF5900" // warning
	CodeCaseMismatch     Code = "VF5901"   // warning
)

// Diagnostic is the structured shape every phase returns, whether
// fatal or advisory.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Phase    Phase
	Message  string
	Location token.Location
	Hint     string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s %s: %s (%s)", d.Location, d.Severity, d.Code, d.Message, d.Phase)
}

// Wrap attaches oops structured context (code, location, phase) to an
// underlying error, matching the errutil.LogError convention: calling
// code that wants a slog-friendly error can type-assert with
// oops.AsOops on the result the way holomush's LogError does.
func (d Diagnostic) Wrap(err error) error {
	b := oops.
		Code(string(d.Code)).
		In(d.Phase.String()).
		With("location", d.Location.String())
	if d.Hint != "" {
		b = b.Hint(d.Hint)
	}
	if err != nil {
		return b.Wrap(err)
	}
	return b.Errorf("%s", d.Message)
}

// Diagnosable is implemented by every phase's error sentinel
// (LexError, ParseError, TypeError, ResolveError); it lets LogError
// attach oops structured context at a package boundary without this
// package importing any of the phase packages.
type Diagnosable interface {
	error
	AsDiagnostic() Diagnostic
}

// LogError enriches err with oops structured context (VF-code, phase,
// location) when it carries a Diagnostic, matching the
// errutil.LogError convention holomush-holomush uses at its own
// boundaries between an internal error and a caller that logs it. An
// error that doesn't implement Diagnosable passes through unchanged.
func LogError(err error) error {
	if err == nil {
		return nil
	}
	d, ok := err.(Diagnosable)
	if !ok {
		return err
	}
	return d.AsDiagnostic().Wrap(err)
}

type jsonDiagnostic struct {
	Kind     string `json:"kind"`
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Phase    string `json:"phase"`
	Message  string `json:"message"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Hint     string `json:"hint,omitempty"`
}

// MarshalJSON produces the `--json`-mode shape described in spec.md
// §7, using the teacher's serialization-package convention of a
// "kind"-tagged envelope (serialization.serializedValue / pgraph.go's
// jsonResult) so downstream tooling can dispatch on Kind without a
// type switch over Go types.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonDiagnostic{
		Kind:     "diagnostic",
		Code:     string(d.Code),
		Severity: d.Severity.String(),
		Phase:    d.Phase.String(),
		Message:  d.Message,
		File:     d.Location.File,
		Line:     d.Location.Line,
		Column:   d.Location.Column,
		Hint:     d.Hint,
	})
}
