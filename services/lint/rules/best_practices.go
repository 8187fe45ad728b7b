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
	"regexp"

	"github.com/AleutianAI/tracelint/services/lint/ast"
	"github.com/AleutianAI/tracelint/services/lint/diagnostics"
)

var defaultParamLast = newNodeRule(CodeDefaultParamLast, CategoryBestPractices,
	"Require default parameters to be last",
	[]ast.Kind{ast.KindFormalParameters},
	func(r *diagnostics.Reporter, n *ast.Node) {
		params := n.NamedChildren()
		seenRequired := false
		for i := len(params) - 1; i >= 0; i-- {
			p := params[i]
			switch {
			case isRestParam(p):
			case hasDefault(p):
				if seenRequired {
					r.ReportHint(p.Span, "Default parameters should be last",
						"Move the parameter to the end of the list or remove its default")
				}
			default:
				seenRequired = true
			}
		}
	})

func hasDefault(p *ast.Node) bool {
	switch p.Kind {
	case ast.KindAssignmentPattern, ast.KindOptionalParameter:
		return true
	case ast.KindRequiredParameter:
		return p.ChildByField("value") != nil
	}
	return false
}

func isRestParam(p *ast.Node) bool {
	if p.Kind == ast.KindRequiredParameter {
		p = p.ChildByField("pattern")
	}
	return p.Is(ast.KindRestPattern)
}

var eqeqeq = newNodeRule(CodeEqeqeq, CategoryBestPractices,
	"Require === and !==",
	[]ast.Kind{ast.KindBinaryExpression},
	func(r *diagnostics.Reporter, n *ast.Node) {
		switch op := n.Operator(); op {
		case "==", "!=":
			r.ReportHint(n.Span, "Expected '"+op+"=' and instead saw '"+op+"'",
				"Use '"+op+"=' to compare without type coercion")
		}
	})

var noArrayConstructor = newNodeRule(CodeNoArrayConstructor, CategoryBestPractices,
	"Disallow the Array constructor with anything but a single length argument",
	[]ast.Kind{ast.KindNewExpression, ast.KindCallExpression},
	func(r *diagnostics.Reporter, n *ast.Node) {
		callee := n.ChildByField("function")
		if n.Kind == ast.KindNewExpression {
			callee = n.ChildByField("constructor")
		}
		if !isIdent(callee, "Array") || n.ChildByField("type_arguments") != nil {
			return
		}
		if len(n.ChildByField("arguments").NamedChildren()) != 1 {
			r.ReportHint(n.Span, "Array constructor is not allowed", "Use an array literal instead, e.g. [1, 2, 3]")
		}
	})

var noAwaitInLoop = newNodeRule(CodeNoAwaitInLoop, CategoryBestPractices,
	"Disallow 'await' inside loop bodies",
	[]ast.Kind{ast.KindAwaitExpression},
	func(r *diagnostics.Reporter, n *ast.Node) {
		child := n
		for p := n.Parent; p != nil; child, p = p, p.Parent {
			if p.Is(ast.FunctionKinds...) {
				return
			}
			if !p.Is(ast.LoopKinds...) {
				continue
			}
			switch child.Field {
			case "body", "condition", "increment":
				if p.Kind == ast.KindForInStatement && p.HasToken("await") {
					return
				}
				r.ReportHint(n.Span, "Unexpected 'await' inside a loop",
					"Collect the promises and await them together with Promise.all")
				return
			}
		}
	})

var noCaseDeclarations = newNodeRule(CodeNoCaseDeclarations, CategoryBestPractices,
	"Disallow lexical declarations directly in case clauses",
	[]ast.Kind{ast.KindSwitchCase, ast.KindSwitchDefault},
	func(r *diagnostics.Reporter, n *ast.Node) {
		for _, st := range n.NamedChildren() {
			if st.Field == "value" {
				continue
			}
			if st.Is(ast.KindLexicalDeclaration, ast.KindClassDeclaration, ast.KindFunctionDeclaration, ast.KindGeneratorFunctionDecl) {
				r.ReportHint(st.Span, "Unexpected declaration in case clause",
					"Wrap the case body in braces to give it its own block")
			}
		}
	})

var noDeleteVar = newNodeRule(CodeNoDeleteVar, CategoryBestPractices,
	"Disallow deleting variables",
	[]ast.Kind{ast.KindUnaryExpression},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if n.Operator() == "delete" && n.ChildByField("argument").Unparen().Is(ast.KindIdentifier) {
			r.ReportHint(n.Span, "Variables shouldn't be deleted", "Remove the delete expression")
		}
	})

var noEmpty = newNodeRule(CodeNoEmpty, CategoryBestPractices,
	"Disallow empty block statements",
	[]ast.Kind{ast.KindStatementBlock, ast.KindSwitchStatement},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if n.Kind == ast.KindSwitchStatement {
			if body := n.ChildByField("body"); body != nil && len(body.NamedChildren()) == 0 {
				r.ReportHint(n.Span, "Empty switch statement", "Add cases or remove the switch")
			}
			return
		}
		if len(n.NamedChildren()) > 0 || len(n.Module().CommentsWithin(n.Span)) > 0 {
			return
		}
		if p := n.Parent; p.Is(ast.FunctionKinds...) || p.Is(ast.KindInternalModule, ast.KindModule, ast.KindAmbientDeclaration) {
			return
		}
		r.ReportHint(n.Span, "Empty block statement", "Add code or a comment explaining why the block is empty")
	})

var noEval = newNodeRule(CodeNoEval, CategoryBestPractices,
	"Disallow eval()",
	[]ast.Kind{ast.KindCallExpression},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if isIdent(n.ChildByField("function").Unparen(), "eval") {
			r.ReportHint(n.Span, "`eval` call is not allowed", "Remove the use of eval")
		}
	})

var noNewSymbol = newNodeRule(CodeNoNewSymbol, CategoryBestPractices,
	"Disallow 'new Symbol()'",
	[]ast.Kind{ast.KindNewExpression},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if isIdent(n.ChildByField("constructor"), "Symbol") {
			r.ReportHint(n.Span, "`Symbol` cannot be called as a constructor", "Call Symbol() without 'new'")
		}
	})

var legacyOctal = regexp.MustCompile(`^0[0-9]+$`)

var noOctal = newNodeRule(CodeNoOctal, CategoryBestPractices,
	"Disallow legacy octal literals",
	[]ast.Kind{ast.KindNumber},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if legacyOctal.MatchString(n.Text()) {
			r.ReportHint(n.Span, "`Octal number` is not allowed", "Use the 0o prefix, e.g. 0o71")
		}
	})

var noThisAlias = newNodeRule(CodeNoThisAlias, CategoryBestPractices,
	"Disallow aliasing 'this' to a local variable",
	[]ast.Kind{ast.KindVariableDeclarator, ast.KindAssignmentExpression},
	func(r *diagnostics.Reporter, n *ast.Node) {
		target, value := n.ChildByField("name"), n.ChildByField("value")
		if n.Kind == ast.KindAssignmentExpression {
			target, value = n.ChildByField("left"), n.ChildByField("right")
		}
		if target.Is(ast.KindIdentifier) && value.Unparen().Is(ast.KindThis) {
			r.ReportHint(n.Span, "Assign `this` to declare a variable or constant is not allowed",
				"Use an arrow function or refer to 'this' directly")
		}
	})

var noThrowLiteral = newNodeRule(CodeNoThrowLiteral, CategoryBestPractices,
	"Disallow throwing literals",
	[]ast.Kind{ast.KindThrowStatement},
	func(r *diagnostics.Reporter, n *ast.Node) {
		args := n.NamedChildren()
		if len(args) == 0 {
			return
		}
		switch v := args[0].Unparen(); {
		case v.Is(ast.KindString, ast.KindTemplateString, ast.KindNumber, ast.KindTrue, ast.KindFalse, ast.KindNull, ast.KindRegex):
			r.ReportHint(n.Span, "Expected an error object to be thrown", "Throw an Error instance instead")
		case v.Is(ast.KindUndefined) || isIdent(v, "undefined"):
			r.ReportHint(n.Span, "Do not throw undefined", "Throw an Error instance instead")
		}
	})

var noUnusedLabels = newNodeRule(CodeNoUnusedLabels, CategoryBestPractices,
	"Disallow labels that are never referenced",
	[]ast.Kind{ast.KindLabeledStatement},
	func(r *diagnostics.Reporter, n *ast.Node) {
		label := fieldText(n, "label")
		used := false
		ast.InspectFunctionBody(n.ChildByField("body"), func(c *ast.Node) bool {
			if c.Is(ast.KindBreakStatement, ast.KindContinueStatement) && fieldText(c, "label") == label {
				used = true
			}
			return !used
		})
		if !used {
			r.ReportHint(n.ChildByField("label").Span, "'"+label+"' label is never used", "Remove the label")
		}
	})

var noVar = newNodeRule(CodeNoVar, CategoryBestPractices,
	"Require 'let' or 'const' instead of 'var'",
	[]ast.Kind{ast.KindVariableDeclaration},
	func(r *diagnostics.Reporter, n *ast.Node) {
		r.ReportHint(n.Span, "`var` keyword is not allowed", "Use 'let' or 'const'")
	})

var noWith = newNodeRule(CodeNoWith, CategoryBestPractices,
	"Disallow with statements",
	[]ast.Kind{ast.KindWithStatement},
	func(r *diagnostics.Reporter, n *ast.Node) {
		r.ReportHint(n.Span, "`with` statement is not allowed", "Reference the object's properties explicitly")
	})

var singleVarDeclarator = newNodeRule(CodeSingleVarDeclarator, CategoryStyle,
	"Require one variable per declaration",
	[]ast.Kind{ast.KindVariableDeclaration, ast.KindLexicalDeclaration},
	func(r *diagnostics.Reporter, n *ast.Node) {
		count := 0
		for _, c := range n.NamedChildren() {
			if c.Kind == ast.KindVariableDeclarator {
				count++
			}
		}
		if count > 1 {
			r.ReportHint(n.Span, "Multiple variable declarators are not allowed", "Split into one declaration per variable")
		}
	})

var noExtraSemi = newNodeRule(CodeNoExtraSemi, CategoryStyle,
	"Disallow unnecessary semicolons",
	[]ast.Kind{ast.KindEmptyStatement},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if n.Parent.Is(ast.KindProgram, ast.KindStatementBlock, ast.KindSwitchCase, ast.KindSwitchDefault) {
			r.ReportHint(n.Span, "Unnecessary semicolon", "Remove the extra semicolon")
		}
	})

var noEmptyPattern = newNodeRule(CodeNoEmptyPattern, CategoryBestPractices,
	"Disallow empty destructuring patterns",
	[]ast.Kind{ast.KindObjectPattern, ast.KindArrayPattern},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if len(n.NamedChildren()) == 0 && !n.HasToken(",") {
			r.ReportHint(n.Span, "Empty destructuring pattern is not allowed",
				"Bind at least one name or remove the pattern")
		}
	})
