package domain

import "time"

// DiagnosticStatus indicates whether a single environment check passed.
type DiagnosticStatus string

const (
	DiagnosticStatusPass DiagnosticStatus = "pass"
	DiagnosticStatusFail DiagnosticStatus = "fail"
	DiagnosticStatusSkip DiagnosticStatus = "skip"
)

// DiagnosticItem is one check result with an optional remediation hint.
type DiagnosticItem struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Status  DiagnosticStatus `json:"status"`
	Message string           `json:"message"`
	Hint    string           `json:"hint,omitempty"`
	Fixable bool             `json:"fixable,omitempty"`
}

// DiagnosticReport aggregates checks for the window, the terminal and MCP.
type DiagnosticReport struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	Interpreter string           `json:"interpreter"`
	HasFailures bool             `json:"hasFailures"`
	Items       []DiagnosticItem `json:"items"`
}
