// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package diagnostics

import (
	"fmt"
	"sort"

	"github.com/AleutianAI/tracelint/services/lint/ast"
)

// =============================================================================
// SEVERITY
// =============================================================================

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	// SeverityInfo represents informational/style findings.
	SeverityInfo Severity = iota

	// SeverityWarning represents findings that should be reviewed.
	SeverityWarning

	// SeverityError represents findings that fail a CI check.
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, ok := ParseSeverity(string(text))
	if !ok {
		return fmt.Errorf("unknown severity %q", text)
	}
	*s = parsed
	return nil
}

// ParseSeverity parses a severity string.
//
// Description:
//
//	Accepts the common spellings used by linters and config files.
//
// Inputs:
//
//	s - Severity string (e.g., "error", "warn", "info")
//
// Outputs:
//
//	Severity - The parsed severity level
//	bool     - False if s is not a recognised spelling
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "error", "err", "fatal", "critical":
		return SeverityError, true
	case "warning", "warn":
		return SeverityWarning, true
	case "info", "note", "style", "hint":
		return SeverityInfo, true
	default:
		return SeverityWarning, false
	}
}

// =============================================================================
// DIAGNOSTIC
// =============================================================================

// Diagnostic is a single finding reported by a rule.
//
// Thread Safety: Immutable after creation.
type Diagnostic struct {
	// Code is the stable code of the rule that produced the finding.
	Code string `json:"code" msgpack:"code"`

	// Message is the human-readable description.
	Message string `json:"message" msgpack:"message"`

	// Hint is an optional suggestion for fixing the finding.
	Hint string `json:"hint,omitempty" msgpack:"hint,omitempty"`

	// Span is the byte range the finding covers.
	Span ast.Span `json:"span" msgpack:"span"`

	// Start is the 1-indexed position of Span.Start.
	Start ast.Position `json:"start" msgpack:"start"`

	// End is the 1-indexed position of Span.End.
	End ast.Position `json:"end" msgpack:"end"`

	// Severity is the effective severity after overrides.
	Severity Severity `json:"severity" msgpack:"severity"`
}

// Location returns a formatted location string (file:line:col).
func (d *Diagnostic) Location(file string) string {
	return fmt.Sprintf("%s:%d:%d", file, d.Start.Line, d.Start.Column)
}

// =============================================================================
// FAULT
// =============================================================================

// Fault records a rule invocation that panicked.
//
// Faults are bugs in the rule, not problems in the linted source. They are
// kept apart from diagnostics so callers can count and surface them
// separately.
type Fault struct {
	// Code is the code of the faulting rule.
	Code string `json:"code" msgpack:"code"`

	// Phase is the rule entry point that failed ("visit", "finish", ...).
	Phase string `json:"phase" msgpack:"phase"`

	// NodeKind is the kind of the node being visited. Empty outside visits.
	NodeKind ast.Kind `json:"node_kind,omitempty" msgpack:"node_kind,omitempty"`

	// Span is the span of the node being visited.
	Span ast.Span `json:"span" msgpack:"span"`

	// Message is the recovered panic value rendered as text.
	Message string `json:"message" msgpack:"message"`

	// Stack is the goroutine stack at the time of the panic.
	Stack string `json:"-" msgpack:"-"`
}

func (f Fault) Error() string {
	if f.NodeKind != "" {
		return fmt.Sprintf("rule %s panicked in %s on %s [%d,%d): %s",
			f.Code, f.Phase, f.NodeKind, f.Span.Start, f.Span.End, f.Message)
	}
	return fmt.Sprintf("rule %s panicked in %s: %s", f.Code, f.Phase, f.Message)
}

// =============================================================================
// ORDERING
// =============================================================================

// Sort orders diagnostics deterministically for stable output.
//
// Diagnostics are ordered by span start, then span end, then code, then
// message. Sorting is stable so equal diagnostics keep their report order.
func Sort(diags []Diagnostic) {
	if len(diags) < 2 {
		return
	}
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Span.Start != b.Span.Start {
			return a.Span.Start < b.Span.Start
		}
		if a.Span.End != b.Span.End {
			return a.Span.End < b.Span.End
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
}

// Codes returns the distinct codes present in diags, in first-seen order.
func Codes(diags []Diagnostic) []string {
	seen := make(map[string]bool, len(diags))
	var out []string
	for _, d := range diags {
		if !seen[d.Code] {
			seen[d.Code] = true
			out = append(out, d.Code)
		}
	}
	return out
}
