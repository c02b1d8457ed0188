package models

// DiagnosticKind classifies a recoverable per-source problem.
type DiagnosticKind string

const (
	DiagFetch     DiagnosticKind = "fetch"
	DiagSchema    DiagnosticKind = "schema"
	DiagParse     DiagnosticKind = "parse"
	DiagHeader    DiagnosticKind = "header"
	DiagDuplicate DiagnosticKind = "duplicate"
	DiagCoverage  DiagnosticKind = "coverage"
	DiagCache     DiagnosticKind = "cache"
)

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// MDiagnostic is surfaced to the presentation layer instead of failing the whole view.
type MDiagnostic struct {
	Source   string         `json:"source"`
	Kind     DiagnosticKind `json:"kind"`
	Severity Severity       `json:"severity"`
	Column   string         `json:"column,omitempty"`
	Row      int            `json:"row,omitempty"` // 1-based data row, 0 when not row specific
	Message  string         `json:"message"`
}
