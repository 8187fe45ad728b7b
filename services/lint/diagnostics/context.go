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

	"github.com/AleutianAI/tracelint/services/lint/ast"
)

// Context collects the findings for one file during one lint run.
//
// Description:
//
//	Rules never touch the Context directly. Each rule receives a Reporter
//	bound to its own code; reporters can only append. The Context owns the
//	translation from byte spans to line/column positions and applies
//	per-code severity overrides when a finding is recorded.
//
// Thread Safety: Not safe for concurrent use. One Context belongs to one
// file's sequential walk.
type Context struct {
	module    *ast.Module
	overrides map[string]Severity
	diags     []Diagnostic
	faults    []Fault
}

// NewContext creates an empty Context for module.
//
// Inputs:
//
//	module    - The module being linted. Must not be nil.
//	overrides - Severity per rule code. May be nil.
func NewContext(module *ast.Module, overrides map[string]Severity) *Context {
	return &Context{
		module:    module,
		overrides: overrides,
		diags:     make([]Diagnostic, 0, 16),
	}
}

// Module returns the module the context reports against.
func (c *Context) Module() *ast.Module {
	return c.module
}

// Reporter returns an append-only handle that stamps every finding with code.
func (c *Context) Reporter(code string, severity Severity) *Reporter {
	if s, ok := c.overrides[code]; ok {
		severity = s
	}
	return &Reporter{ctx: c, code: code, severity: severity}
}

// RecordFault appends a fault record.
func (c *Context) RecordFault(f Fault) {
	c.faults = append(c.faults, f)
}

// Diagnostics returns the recorded diagnostics in report order.
func (c *Context) Diagnostics() []Diagnostic {
	return c.diags
}

// Faults returns the recorded faults in occurrence order.
func (c *Context) Faults() []Fault {
	return c.faults
}

// Len returns the number of recorded diagnostics.
func (c *Context) Len() int {
	return len(c.diags)
}

// Truncate drops every diagnostic recorded after the first n.
//
// The engine uses this to discard partial output from a rule invocation
// that panicked.
func (c *Context) Truncate(n int) {
	if n >= 0 && n < len(c.diags) {
		c.diags = c.diags[:n]
	}
}

func (c *Context) add(d Diagnostic) {
	if lines := c.module.Lines; lines != nil {
		d.Start = lines.Position(d.Span.Start)
		d.End = lines.Position(d.Span.End)
	}
	c.diags = append(c.diags, d)
}

// =============================================================================
// REPORTER
// =============================================================================

// Reporter is a rule's write-only view of a Context.
type Reporter struct {
	ctx      *Context
	code     string
	severity Severity
}

// Code returns the rule code stamped on every finding.
func (r *Reporter) Code() string {
	return r.code
}

// Module returns the module being linted.
func (r *Reporter) Module() *ast.Module {
	return r.ctx.module
}

// Report records a finding at span.
func (r *Reporter) Report(span ast.Span, message string) {
	r.ctx.add(Diagnostic{
		Code:     r.code,
		Message:  message,
		Span:     span,
		Severity: r.severity,
	})
}

// Reportf records a finding at span with a formatted message.
func (r *Reporter) Reportf(span ast.Span, format string, args ...any) {
	r.Report(span, fmt.Sprintf(format, args...))
}

// ReportHint records a finding with a fix suggestion.
func (r *Reporter) ReportHint(span ast.Span, message, hint string) {
	r.ctx.add(Diagnostic{
		Code:     r.code,
		Message:  message,
		Hint:     hint,
		Span:     span,
		Severity: r.severity,
	})
}

// ReportNode records a finding covering node.
func (r *Reporter) ReportNode(node *ast.Node, message string) {
	r.Report(node.Span, message)
}
