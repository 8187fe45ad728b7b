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
	"github.com/AleutianAI/tracelint/services/lint/ast"
	"github.com/AleutianAI/tracelint/services/lint/diagnostics"
)

// Category groups rules for listing and configuration.
type Category string

const (
	CategoryPossibleErrors Category = "possible-errors"
	CategoryBestPractices  Category = "best-practices"
	CategoryControlFlow    Category = "control-flow"
	CategoryTypeScript     Category = "typescript"
	CategoryStyle          Category = "style"
	CategorySuppression    Category = "suppression"
)

// Rule is one diagnostic check.
//
// Description:
//
//	A Rule is stateless and shared by every file and goroutine. Per-file
//	state lives on the Visitor returned by NewVisitor, which the engine
//	creates once per file and discards when the walk ends.
//
// Thread Safety: Implementations must be safe for concurrent NewVisitor calls.
type Rule interface {
	// Code returns the stable rule code, e.g. "no-debugger".
	Code() string

	// Category returns the rule's category.
	Category() Category

	// Description returns a one-line summary.
	Description() string

	// Severity returns the default severity of the rule's findings.
	Severity() diagnostics.Severity

	// NewVisitor returns the per-file visitor. May return nil for rules
	// that only inspect comments.
	NewVisitor(r *diagnostics.Reporter, m *ast.Module) Visitor
}

// Visitor receives nodes from the engine's walk.
type Visitor interface {
	Visit(n *ast.Node)
}

// KindFilter is implemented by rules that only care about some node kinds.
// Rules without it are offered every named node.
type KindFilter interface {
	Kinds() []ast.Kind
}

// Finisher is implemented by visitors that report after the walk.
type Finisher interface {
	Finish()
}

// CommentChecker is implemented by rules that inspect the comment list.
type CommentChecker interface {
	CheckComments(r *diagnostics.Reporter, m *ast.Module)
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(n *ast.Node)

// Visit calls f(n).
func (f VisitorFunc) Visit(n *ast.Node) {
	f(n)
}

// base carries the identity shared by every rule in the catalog.
type base struct {
	code        string
	category    Category
	description string
	severity    diagnostics.Severity
}

func (b base) Code() string                   { return b.code }
func (b base) Category() Category             { return b.category }
func (b base) Description() string            { return b.description }
func (b base) Severity() diagnostics.Severity { return b.severity }

// nodeRule is a stateless rule that inspects single nodes of given kinds.
type nodeRule struct {
	base
	kinds []ast.Kind
	check func(r *diagnostics.Reporter, n *ast.Node)
}

func (nr *nodeRule) Kinds() []ast.Kind {
	return nr.kinds
}

func (nr *nodeRule) NewVisitor(r *diagnostics.Reporter, _ *ast.Module) Visitor {
	return VisitorFunc(func(n *ast.Node) { nr.check(r, n) })
}

// newNodeRule builds a nodeRule with its category's default severity.
func newNodeRule(code string, cat Category, desc string, kinds []ast.Kind, check func(*diagnostics.Reporter, *ast.Node)) *nodeRule {
	return &nodeRule{
		base:  newBase(code, cat, desc),
		kinds: kinds,
		check: check,
	}
}

func newBase(code string, cat Category, desc string) base {
	return base{code: code, category: cat, description: desc, severity: defaultSeverity(cat)}
}

// defaultSeverity maps a category to the severity its rules report with.
// Findings that are almost certainly bugs are errors; the rest are warnings.
func defaultSeverity(cat Category) diagnostics.Severity {
	switch cat {
	case CategoryPossibleErrors, CategoryControlFlow:
		return diagnostics.SeverityError
	default:
		return diagnostics.SeverityWarning
	}
}

// commentRule is a rule that only inspects comments.
type commentRule struct {
	base
	check func(r *diagnostics.Reporter, m *ast.Module)
}

func (cr *commentRule) NewVisitor(*diagnostics.Reporter, *ast.Module) Visitor {
	return nil
}

func (cr *commentRule) Kinds() []ast.Kind {
	return []ast.Kind{}
}

func (cr *commentRule) CheckComments(r *diagnostics.Reporter, m *ast.Module) {
	cr.check(r, m)
}

func newCommentRule(code string, desc string, check func(*diagnostics.Reporter, *ast.Module)) *commentRule {
	return &commentRule{base: newBase(code, CategorySuppression, desc), check: check}
}

// programRule inspects the whole module once, from the program node.
type programRule struct {
	base
	check func(r *diagnostics.Reporter, root *ast.Node)
}

func (pr *programRule) Kinds() []ast.Kind {
	return []ast.Kind{ast.KindProgram}
}

func (pr *programRule) NewVisitor(r *diagnostics.Reporter, _ *ast.Module) Visitor {
	return VisitorFunc(func(n *ast.Node) { pr.check(r, n) })
}

func newProgramRule(code string, cat Category, desc string, check func(*diagnostics.Reporter, *ast.Node)) *programRule {
	return &programRule{base: newBase(code, cat, desc), check: check}
}
