// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/AleutianAI/tracelint/services/lint/ast"
	"github.com/AleutianAI/tracelint/services/lint/diagnostics"
	"github.com/AleutianAI/tracelint/services/lint/rules"
)

// Engine-produced diagnostic codes. They are not rules and cannot be
// selected, but they can be suppressed and have their severity overridden.
const (
	// CodeParseError is reported once for a file that failed to parse.
	CodeParseError = "parse-error"

	// CodeInternalError is reported for a rule fault when fault reporting
	// is enabled.
	CodeInternalError = "internal-error"
)

// Rule entry points, recorded on faults.
const (
	phaseInit     = "init"
	phaseVisit    = "visit"
	phaseFinish   = "finish"
	phaseComments = "comments"
)

// =============================================================================
// DISPATCHER
// =============================================================================

// Dispatcher runs a rule set over one module with a single tree walk.
//
// Description:
//
//	Every rule builds one visitor per file. Visitors are indexed by the
//	node kinds they declare; rules without a KindFilter see every named
//	node. The tree is walked once in pre-order, and each node is offered
//	to the interested visitors in rule order.
//
//	Each call into a rule runs under recover. A panic discards whatever
//	that call reported, records a Fault and, when reportFaults is set, an
//	internal-error diagnostic. The walk then continues with the next
//	visitor and node; a faulted rule keeps receiving nodes.
//
// Thread Safety: A Dispatcher is immutable and safe for concurrent Run
// calls on different contexts.
type Dispatcher struct {
	logger       *slog.Logger
	reportFaults bool
}

// NewDispatcher creates a Dispatcher. A nil logger uses slog.Default().
func NewDispatcher(logger *slog.Logger, reportFaults bool) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger, reportFaults: reportFaults}
}

// entry is one rule's visitor for the current file.
type entry struct {
	order   int
	rule    rules.Rule
	visitor rules.Visitor
}

// Run executes rs over dctx's module, recording into dctx.
//
// Inputs:
//
//	rs   - The rules to run, in the order they should observe each node.
//	dctx - The file's diagnostic context. Must not be nil.
func (d *Dispatcher) Run(rs []rules.Rule, dctx *diagnostics.Context) {
	m := dctx.Module()
	if m == nil || m.Root == nil {
		return
	}

	byKind := make(map[ast.Kind][]*entry)
	var wildcard, all []*entry

	for i, r := range rs {
		rep := dctx.Reporter(r.Code(), r.Severity())
		var v rules.Visitor
		d.guard(dctx, r, phaseInit, nil, func() {
			v = r.NewVisitor(rep, m)
		})
		if v == nil {
			continue
		}
		e := &entry{order: i, rule: r, visitor: v}
		all = append(all, e)
		if kf, ok := r.(rules.KindFilter); ok {
			for _, k := range kf.Kinds() {
				byKind[k] = append(byKind[k], e)
			}
			continue
		}
		wildcard = append(wildcard, e)
	}

	if len(all) > 0 {
		merged := make(map[ast.Kind][]*entry)
		ast.Inspect(m.Root, func(n *ast.Node) bool {
			targets, ok := merged[n.Kind]
			if !ok {
				targets = mergeEntries(byKind[n.Kind], wildcard)
				merged[n.Kind] = targets
			}
			for _, e := range targets {
				d.guard(dctx, e.rule, phaseVisit, n, func() {
					e.visitor.Visit(n)
				})
			}
			return true
		})

		for _, e := range all {
			if f, ok := e.visitor.(rules.Finisher); ok {
				d.guard(dctx, e.rule, phaseFinish, nil, f.Finish)
			}
		}
	}

	for _, r := range rs {
		cc, ok := r.(rules.CommentChecker)
		if !ok {
			continue
		}
		rep := dctx.Reporter(r.Code(), r.Severity())
		d.guard(dctx, r, phaseComments, nil, func() {
			cc.CheckComments(rep, m)
		})
	}
}

// mergeEntries merges two order-sorted entry lists.
func mergeEntries(a, b []*entry) []*entry {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	out := make([]*entry, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].order < b[j].order {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// guard runs fn, converting a panic into a fault.
func (d *Dispatcher) guard(dctx *diagnostics.Context, r rules.Rule, phase string, n *ast.Node, fn func()) {
	mark := dctx.Len()
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		dctx.Truncate(mark)

		f := diagnostics.Fault{
			Code:    r.Code(),
			Phase:   phase,
			Message: fmt.Sprint(rec),
			Stack:   string(debug.Stack()),
		}
		if n != nil {
			f.NodeKind = n.Kind
			f.Span = n.Span
		}
		dctx.RecordFault(f)

		d.logger.Warn("rule fault",
			slog.String("rule", f.Code),
			slog.String("phase", phase),
			slog.String("node_kind", string(f.NodeKind)),
			slog.Int("span_start", f.Span.Start),
			slog.Int("span_end", f.Span.End),
			slog.String("file", dctx.Module().Path),
			slog.String("panic", f.Message),
			slog.String("stack", f.Stack),
		)

		if d.reportFaults {
			dctx.Reporter(CodeInternalError, diagnostics.SeverityError).ReportHint(
				f.Span,
				fmt.Sprintf("Rule %s failed: %s", f.Code, f.Message),
				"This is a bug in the rule, not in your code; other rules were unaffected",
			)
		}
	}()
	fn()
}
