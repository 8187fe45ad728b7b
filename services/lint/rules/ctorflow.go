// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rules

import (
	"strings"

	"github.com/AleutianAI/tracelint/services/lint/ast"
)

// =============================================================================
// LATTICE
// =============================================================================

// superState tracks whether the base constructor has run.
type superState uint8

const (
	superNotCalled superState = iota
	superMaybeCalled
	superCalled
)

func (s superState) String() string {
	switch s {
	case superNotCalled:
		return "not-called"
	case superMaybeCalled:
		return "maybe-called"
	case superCalled:
		return "called"
	default:
		return "unknown"
	}
}

// flowState is the abstract state at one program point. Unreachable states
// are the identity of join.
type flowState struct {
	reachable bool
	super     superState
}

var unreachable = flowState{}

func entryState() flowState {
	return flowState{reachable: true, super: superNotCalled}
}

// join combines the states of two converging paths.
//
//	called     ⊔ called     = called
//	not-called ⊔ not-called = not-called
//	otherwise                = maybe-called
func join(a, b flowState) flowState {
	if !a.reachable {
		return b
	}
	if !b.reachable {
		return a
	}
	if a.super == b.super {
		return a
	}
	return flowState{reachable: true, super: superMaybeCalled}
}

// =============================================================================
// VIOLATIONS
// =============================================================================

type violationKind uint8

const (
	violationThisBeforeSuper violationKind = iota
	violationMissingSuper
	violationDuplicateSuper
)

// violation is one finding of the constructor flow analysis.
type violation struct {
	kind violationKind
	span ast.Span

	// state is the flow state at the site.
	state superState

	// keyword is "this" or "super" for violationThisBeforeSuper.
	keyword string
}

type violationKey struct {
	kind  violationKind
	start int
	end   int
}

// =============================================================================
// ANALYZER
// =============================================================================

// jumpTarget is an enclosing statement that break or continue can leave.
type jumpTarget struct {
	label     string
	loop      bool
	switchLik bool
	breaks    flowState
	continues flowState
}

// ctorAnalyzer runs the flow analysis over one constructor body.
//
// The analysis is a structured abstract interpretation over the syntax tree:
// every statement maps an incoming state to its normal-completion state,
// while break, continue, return and throw end the current path and deposit
// their state on the matching target.
type ctorAnalyzer struct {
	targets    []*jumpTarget
	violations []violation
	seen       map[violationKey]bool
}

// analyzeConstructor returns the violations in a derived-class constructor
// body, in the order they were found.
func analyzeConstructor(body *ast.Node) []violation {
	a := &ctorAnalyzer{seen: make(map[violationKey]bool)}
	final := a.stmt(body, entryState())
	if final.reachable && final.super != superCalled {
		end := body.Span.End
		a.report(violation{
			kind:  violationMissingSuper,
			span:  ast.Span{Start: end - 1, End: end},
			state: final.super,
		})
	}
	return a.violations
}

func (a *ctorAnalyzer) report(v violation) {
	key := violationKey{kind: v.kind, start: v.span.Start, end: v.span.End}
	if a.seen[key] {
		return
	}
	a.seen[key] = true
	a.violations = append(a.violations, v)
}

func (a *ctorAnalyzer) push(t *jumpTarget) *jumpTarget {
	a.targets = append(a.targets, t)
	return t
}

func (a *ctorAnalyzer) pop() {
	a.targets = a.targets[:len(a.targets)-1]
}

// breakTarget finds the statement a break leaves.
func (a *ctorAnalyzer) breakTarget(label string) *jumpTarget {
	for i := len(a.targets) - 1; i >= 0; i-- {
		t := a.targets[i]
		if label != "" {
			if t.label == label {
				return t
			}
			continue
		}
		if t.loop || t.switchLik {
			return t
		}
	}
	return nil
}

// continueTarget finds the loop a continue restarts.
func (a *ctorAnalyzer) continueTarget(label string) *jumpTarget {
	for i := len(a.targets) - 1; i >= 0; i-- {
		t := a.targets[i]
		if !t.loop {
			continue
		}
		if label == "" || t.label == label {
			return t
		}
	}
	return nil
}

// =============================================================================
// STATEMENTS
// =============================================================================

func (a *ctorAnalyzer) stmt(n *ast.Node, s flowState) flowState {
	return a.labeledStmt(n, s, "")
}

// labeledStmt analyzes n; label is the label attached to n, if any.
func (a *ctorAnalyzer) labeledStmt(n *ast.Node, s flowState, label string) flowState {
	if n == nil || !s.reachable {
		return s
	}

	switch n.Kind {
	case ast.KindStatementBlock, ast.KindElseClause, ast.KindFinallyClause:
		for _, child := range n.NamedChildren() {
			s = a.stmt(child, s)
			if !s.reachable {
				break
			}
		}
		return s

	case ast.KindIfStatement:
		s = a.expr(n.ChildByField("condition"), s)
		then := a.stmt(n.ChildByField("consequence"), s)
		if alt := n.ChildByField("alternative"); alt != nil {
			return join(then, a.stmt(alt, s))
		}
		return join(then, s)

	case ast.KindSwitchStatement:
		return a.switchStmt(n, s, label)

	case ast.KindForStatement:
		s = a.stmt(n.ChildByField("initializer"), s)
		s = a.expr(n.ChildByField("condition"), s)
		update := n.ChildByField("increment")
		return a.loop(n.ChildByField("body"), s, label, alwaysTrue(n.ChildByField("condition")), func(back flowState) flowState {
			back = a.expr(update, back)
			return a.expr(n.ChildByField("condition"), back)
		})

	case ast.KindForInStatement:
		s = a.expr(n.ChildByField("right"), s)
		return a.loop(n.ChildByField("body"), s, label, false, nil)

	case ast.KindWhileStatement:
		s = a.expr(n.ChildByField("condition"), s)
		return a.loop(n.ChildByField("body"), s, label, alwaysTrue(n.ChildByField("condition")), func(back flowState) flowState {
			return a.expr(n.ChildByField("condition"), back)
		})

	case ast.KindDoStatement:
		return a.doLoop(n, s, label)

	case ast.KindLabeledStatement:
		name := ""
		if l := n.ChildByField("label"); l != nil {
			name = l.Text()
		}
		body := n.ChildByField("body")
		if body.Is(ast.LoopKinds...) || body.Is(ast.KindSwitchStatement) {
			return a.labeledStmt(body, s, name)
		}
		t := a.push(&jumpTarget{label: name})
		out := a.stmt(body, s)
		a.pop()
		return join(out, t.breaks)

	case ast.KindTryStatement:
		return a.tryStmt(n, s)

	case ast.KindBreakStatement:
		if t := a.breakTarget(fieldText(n, "label")); t != nil {
			t.breaks = join(t.breaks, s)
		}
		return unreachable

	case ast.KindContinueStatement:
		if t := a.continueTarget(fieldText(n, "label")); t != nil {
			t.continues = join(t.continues, s)
		}
		return unreachable

	case ast.KindReturnStatement:
		for _, child := range n.NamedChildren() {
			s = a.expr(child, s)
		}
		if s.reachable && s.super != superCalled {
			a.report(violation{kind: violationMissingSuper, span: n.Span, state: s.super})
		}
		return unreachable

	case ast.KindThrowStatement:
		for _, child := range n.NamedChildren() {
			s = a.expr(child, s)
		}
		return unreachable

	case ast.KindEmptyStatement, ast.KindDebuggerStatement:
		return s
	}

	if n.Is(ast.FunctionKinds...) || n.Is(ast.ClassKinds...) {
		return s
	}
	return a.expr(n, s)
}

func (a *ctorAnalyzer) switchStmt(n *ast.Node, s flowState, label string) flowState {
	s = a.expr(n.ChildByField("value"), s)
	t := a.push(&jumpTarget{label: label, switchLik: true})
	defer a.pop()

	fall := unreachable
	hasDefault := false
	for _, c := range n.ChildByField("body").NamedChildren() {
		if !c.Is(ast.KindSwitchCase, ast.KindSwitchDefault) {
			continue
		}
		entry := s
		if c.Kind == ast.KindSwitchDefault {
			hasDefault = true
		} else {
			entry = a.expr(c.ChildByField("value"), s)
		}
		cur := join(entry, fall)
		for _, st := range c.NamedChildren() {
			if st.Field == "value" {
				continue
			}
			cur = a.stmt(st, cur)
		}
		fall = cur
	}

	out := join(fall, t.breaks)
	if !hasDefault {
		out = join(out, s)
	}
	return out
}

// loop analyzes a body that runs zero or more times.
//
// The body is analyzed once from the entry state and once more from the
// loop-back state so that misuse on a later iteration (a second super()
// call, or this after a conditional super()) is found. The exit state
// includes the entry state because the body may never run, unless the
// condition is constant true, in which case only break leaves the loop.
func (a *ctorAnalyzer) loop(body *ast.Node, entry flowState, label string, infinite bool, back func(flowState) flowState) flowState {
	t := a.push(&jumpTarget{label: label, loop: true})
	defer a.pop()

	first := join(a.stmt(body, entry), t.continues)
	if back != nil {
		first = back(first)
	}
	out := join(entry, first)

	if first.reachable {
		t.continues = unreachable
		second := join(a.stmt(body, join(entry, first)), t.continues)
		if back != nil {
			second = back(second)
		}
		out = join(out, second)
	}
	if infinite {
		out = unreachable
	}
	return join(out, t.breaks)
}

// alwaysTrue reports whether a loop condition is missing or the literal true.
func alwaysTrue(cond *ast.Node) bool {
	if cond == nil {
		return true
	}
	switch strings.Trim(cond.Text(), "(); \t\n") {
	case "", "true":
		return true
	}
	return false
}

// alwaysFalse reports whether a loop condition is the literal false.
func alwaysFalse(cond *ast.Node) bool {
	return cond != nil && strings.Trim(cond.Text(), "(); \t\n") == "false"
}

// doLoop analyzes a do/while body, which runs at least once. With a
// constant false condition it runs exactly once.
func (a *ctorAnalyzer) doLoop(n *ast.Node, entry flowState, label string) flowState {
	body := n.ChildByField("body")
	cond := n.ChildByField("condition")

	t := a.push(&jumpTarget{label: label, loop: true})
	defer a.pop()

	first := a.expr(cond, join(a.stmt(body, entry), t.continues))
	out := first
	if first.reachable && !alwaysFalse(cond) {
		t.continues = unreachable
		second := a.expr(cond, join(a.stmt(body, first), t.continues))
		out = join(out, second)
	}
	return join(out, t.breaks)
}

// tryStmt analyzes try/catch/finally.
//
// An exception may leave the try block at any point, so the catch clause is
// entered with the join of the try block's entry and exit states: a super()
// call inside try is only trusted on the normal path.
func (a *ctorAnalyzer) tryStmt(n *ast.Node, s flowState) flowState {
	tryOut := a.stmt(n.ChildByField("body"), s)
	thrown := join(s, tryOut)

	out := tryOut
	if handler := n.ChildByField("handler"); handler != nil {
		catchOut := a.stmt(handler.ChildByField("body"), thrown)
		out = join(tryOut, catchOut)
		thrown = join(thrown, catchOut)
	}

	if fin := n.ChildByField("finalizer"); fin != nil {
		// The exceptional path re-throws after finally; analyze it only for
		// violations inside the finally block.
		a.stmt(fin, thrown)
		if out.reachable {
			out = a.stmt(fin, out)
		}
	}
	return out
}

// =============================================================================
// EXPRESSIONS
// =============================================================================

func (a *ctorAnalyzer) expr(n *ast.Node, s flowState) flowState {
	if n == nil || !s.reachable {
		return s
	}
	if n.Is(ast.FunctionKinds...) || n.Is(ast.ClassKinds...) {
		return s
	}

	switch n.Kind {
	case ast.KindThis:
		a.checkThis(n, s, "this")
		return s

	case ast.KindSuper:
		// Bare super outside a call is a member access such as super.x.
		a.checkThis(n, s, "super")
		return s

	case ast.KindCallExpression:
		fn := n.ChildByField("function")
		if fn.Is(ast.KindSuper) {
			s = a.expr(n.ChildByField("arguments"), s)
			if s.super != superNotCalled {
				a.report(violation{kind: violationDuplicateSuper, span: n.Span, state: s.super})
			}
			s.super = superCalled
			return s
		}

	case ast.KindBinaryExpression:
		switch n.Operator() {
		case "&&", "||", "??":
			left := a.expr(n.ChildByField("left"), s)
			right := a.expr(n.ChildByField("right"), left)
			return join(left, right)
		}

	case ast.KindAugmentedAssignmentExpression:
		switch n.Operator() {
		case "&&=", "||=", "??=":
			left := a.expr(n.ChildByField("left"), s)
			right := a.expr(n.ChildByField("right"), left)
			return join(left, right)
		}

	case ast.KindTernaryExpression:
		s = a.expr(n.ChildByField("condition"), s)
		return join(
			a.expr(n.ChildByField("consequence"), s),
			a.expr(n.ChildByField("alternative"), s),
		)
	}

	for _, child := range n.NamedChildren() {
		s = a.expr(child, s)
	}
	return s
}

// checkThis reports this or super used before super(). A member access
// such as this.x is reported over the whole member expression.
func (a *ctorAnalyzer) checkThis(n *ast.Node, s flowState, keyword string) {
	if s.super == superCalled {
		return
	}
	span := n.Span
	if p := n.Parent; p != nil && n.Field == "object" && p.Is(ast.KindMemberExpression, ast.KindSubscriptExpression) {
		span = p.Span
	}
	a.report(violation{kind: violationThisBeforeSuper, span: span, state: s.super, keyword: keyword})
}

func fieldText(n *ast.Node, field string) string {
	if f := n.ChildByField(field); f != nil {
		return f.Text()
	}
	return ""
}
