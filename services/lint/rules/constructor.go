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

// ctorRule runs the constructor flow analysis on every derived class and
// reports the violation kinds it owns.
//
// Description:
//
//	constructor-super and no-this-before-super share one analysis but are
//	separate rules so each can be selected, suppressed and overridden on
//	its own. The analysis is deterministic, so running it once per rule
//	yields consistent results.
type ctorRule struct {
	base
	kinds map[violationKind]bool
}

func (cr *ctorRule) Kinds() []ast.Kind {
	return ast.ClassKinds
}

func (cr *ctorRule) NewVisitor(r *diagnostics.Reporter, _ *ast.Module) Visitor {
	return VisitorFunc(func(n *ast.Node) {
		if !isDerivedClass(n) {
			return
		}
		body := constructorBody(n)
		if body == nil {
			return
		}
		for _, v := range analyzeConstructor(body) {
			if cr.kinds[v.kind] {
				reportViolation(r, v)
			}
		}
	})
}

var constructorSuper = &ctorRule{
	base: newBase(CodeConstructorSuper, CategoryControlFlow,
		"Require exactly one 'super()' call on every path through a derived-class constructor"),
	kinds: map[violationKind]bool{violationMissingSuper: true, violationDuplicateSuper: true},
}

var noThisBeforeSuper = &ctorRule{
	base: newBase(CodeNoThisBeforeSuper, CategoryControlFlow,
		"Disallow 'this' and 'super' member access before 'super()' in constructors"),
	kinds: map[violationKind]bool{violationThisBeforeSuper: true},
}

func reportViolation(r *diagnostics.Reporter, v violation) {
	switch v.kind {
	case violationThisBeforeSuper:
		r.ReportHint(v.span,
			"'"+v.keyword+"' is not allowed before 'super()'",
			"Call 'super()' before accessing '"+v.keyword+"'")
	case violationDuplicateSuper:
		if v.state == superMaybeCalled {
			r.ReportHint(v.span, "'super()' may already have been called on some paths",
				"Ensure 'super()' runs exactly once on every path")
			return
		}
		r.ReportHint(v.span, "Unexpected duplicate 'super()'", "Remove the second 'super()' call")
	case violationMissingSuper:
		if v.state == superMaybeCalled {
			r.ReportHint(v.span, "Lacked a call of 'super()' in some code paths",
				"Ensure 'super()' is called on every path through the constructor")
			return
		}
		r.ReportHint(v.span, "Expected to call 'super()'",
			"Call 'super()' before the constructor returns")
	}
}

// isDerivedClass reports whether a class node has an extends clause.
func isDerivedClass(class *ast.Node) bool {
	heritage := class.FirstChildOfKind(ast.KindClassHeritage)
	if heritage == nil {
		return false
	}
	return heritage.HasToken("extends") || heritage.FirstChildOfKind(ast.KindExtendsClause) != nil
}

// constructorBody returns the body of the class's constructor, or nil when
// the class has none. Overload signatures without a body are skipped.
func constructorBody(class *ast.Node) *ast.Node {
	for _, member := range class.ChildByField("body").NamedChildren() {
		if member.Kind != ast.KindMethodDefinition || member.HasToken("static") {
			continue
		}
		if memberName(member) != "constructor" {
			continue
		}
		if body := member.ChildByField("body"); body != nil {
			return body
		}
	}
	return nil
}

// memberName returns the static name of a class member or object property
// key, unquoting string keys. Computed keys yield "".
func memberName(member *ast.Node) string {
	key := member.ChildByField("name")
	if key == nil {
		key = member.ChildByField("key")
	}
	return propertyKey(key)
}

func propertyKey(key *ast.Node) string {
	if key == nil {
		return ""
	}
	switch key.Kind {
	case ast.KindPropertyIdentifier, ast.KindIdentifier, ast.KindShorthandProperty,
		ast.KindPrivatePropertyIdentifier, ast.KindNumber:
		return key.Text()
	case ast.KindString:
		return stringValue(key)
	}
	return ""
}

// stringValue returns the contents of a string literal without quotes.
// Escape sequences are returned as written.
func stringValue(n *ast.Node) string {
	text := n.Text()
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}
