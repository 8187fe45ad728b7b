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
	"github.com/AleutianAI/tracelint/services/lint/diagnostics"
)

var noDebugger = newNodeRule(CodeNoDebugger, CategoryPossibleErrors,
	"Disallow debugger statements",
	[]ast.Kind{ast.KindDebuggerStatement},
	func(r *diagnostics.Reporter, n *ast.Node) {
		r.ReportHint(n.Span, "'debugger' statement is not allowed", "Remove the debugger statement")
	})

var forDirection = newNodeRule(CodeForDirection, CategoryPossibleErrors,
	"Require for-loop updates to move the counter towards the stop condition",
	[]ast.Kind{ast.KindForStatement},
	func(r *diagnostics.Reporter, n *ast.Node) {
		cond := firstExpr(n.ChildByField("condition"))
		update := n.ChildByField("increment")
		if cond == nil || update == nil || cond.Kind != ast.KindBinaryExpression {
			return
		}
		counter := cond.ChildByField("left")
		if counter == nil || counter.Kind != ast.KindIdentifier {
			return
		}

		var want int
		switch cond.Operator() {
		case "<", "<=":
			want = 1
		case ">", ">=":
			want = -1
		default:
			return
		}
		if dir := updateDirection(update, counter.Text()); dir != 0 && dir != want {
			r.ReportHint(update.Span, "Update moves the loop counter in the wrong direction",
				"Flip the update operator or the comparison so the loop can terminate")
		}
	})

// updateDirection returns +1 or -1 when update moves name up or down, 0
// when unknown.
func updateDirection(update *ast.Node, name string) int {
	switch update.Kind {
	case ast.KindUpdateExpression:
		if arg := update.ChildByField("argument"); arg == nil || arg.Text() != name {
			return 0
		}
		if strings.Contains(update.Operator(), "++") {
			return 1
		}
		return -1
	case ast.KindAugmentedAssignmentExpression:
		if left := update.ChildByField("left"); left == nil || left.Text() != name {
			return 0
		}
		sign := 1
		switch update.Operator() {
		case "+=":
		case "-=":
			sign = -1
		default:
			return 0
		}
		right := update.ChildByField("right")
		if neg, ok := numericSign(right); ok {
			return sign * neg
		}
	}
	return 0
}

// numericSign returns the sign of a numeric literal, possibly negated.
func numericSign(n *ast.Node) (int, bool) {
	n = n.Unparen()
	switch {
	case n.Is(ast.KindNumber):
		return 1, true
	case n.Is(ast.KindUnaryExpression) && n.Operator() == "-":
		if s, ok := numericSign(n.ChildByField("argument")); ok {
			return -s, true
		}
	}
	return 0, false
}

var getterReturn = newNodeRule(CodeGetterReturn, CategoryPossibleErrors,
	"Require getters to return a value",
	[]ast.Kind{ast.KindMethodDefinition},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if !n.HasToken("get") {
			return
		}
		body := n.ChildByField("body")
		if body == nil {
			return
		}
		returned := false
		ast.InspectFunctionBody(body, func(c *ast.Node) bool {
			if c.Kind != ast.KindReturnStatement {
				return true
			}
			if len(c.NamedChildren()) == 0 {
				r.ReportHint(c.Span, "Getter must return a value", "Return a value from the getter")
			} else {
				returned = true
			}
			return true
		})
		if !returned {
			name := n.ChildByField("name")
			if name == nil {
				name = n
			}
			r.ReportHint(name.Span, "Expected getter '"+name.Text()+"' to return a value",
				"Return a value from the getter")
		}
	})

var noSetterReturn = newNodeRule(CodeNoSetterReturn, CategoryPossibleErrors,
	"Disallow returning values from setters",
	[]ast.Kind{ast.KindMethodDefinition},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if !n.HasToken("set") {
			return
		}
		ast.InspectFunctionBody(n.ChildByField("body"), func(c *ast.Node) bool {
			if c.Kind == ast.KindReturnStatement && len(c.NamedChildren()) > 0 {
				r.ReportHint(c.Span, "Setter cannot return a value", "Remove the returned value")
			}
			return true
		})
	})

var noAsyncPromiseExecutor = newNodeRule(CodeNoAsyncPromiseExecutor, CategoryPossibleErrors,
	"Disallow async functions as Promise executors",
	[]ast.Kind{ast.KindNewExpression},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if !isIdent(n.ChildByField("constructor"), "Promise") {
			return
		}
		args := n.ChildByField("arguments").NamedChildren()
		if len(args) == 0 {
			return
		}
		exec := args[0].Unparen()
		if exec.Is(ast.FunctionKinds...) && exec.HasToken("async") {
			r.ReportHint(exec.Span, "Async promise executors are not allowed",
				"Remove 'async' and handle errors inside the executor")
		}
	})

var comparisonOps = map[string]bool{
	"==": true, "===": true, "!=": true, "!==": true,
	"<": true, "<=": true, ">": true, ">=": true,
}

var noCompareNegZero = newNodeRule(CodeNoCompareNegZero, CategoryPossibleErrors,
	"Disallow comparing against -0",
	[]ast.Kind{ast.KindBinaryExpression},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if !comparisonOps[n.Operator()] {
			return
		}
		if isNegZero(n.ChildByField("left")) || isNegZero(n.ChildByField("right")) {
			r.ReportHint(n.Span, "Do not use the '"+n.Operator()+"' operator to compare against -0",
				"Use Object.is(x, -0) instead")
		}
	})

func isNegZero(n *ast.Node) bool {
	n = n.Unparen()
	if !n.Is(ast.KindUnaryExpression) || n.Operator() != "-" {
		return false
	}
	arg := n.ChildByField("argument")
	return arg.Is(ast.KindNumber) && strings.Trim(arg.Text(), "0.") == "" && strings.Contains(arg.Text(), "0")
}

var noCondAssign = newNodeRule(CodeNoCondAssign, CategoryPossibleErrors,
	"Disallow assignment operators in conditional expressions",
	[]ast.Kind{ast.KindIfStatement, ast.KindWhileStatement, ast.KindDoStatement, ast.KindForStatement, ast.KindTernaryExpression},
	func(r *diagnostics.Reporter, n *ast.Node) {
		cond := n.ChildByField("condition")
		if n.Kind == ast.KindForStatement {
			cond = firstExpr(cond)
		} else if cond.Is(ast.KindParenthesizedExpression) && n.Kind != ast.KindTernaryExpression {
			// The grammar wraps if/while conditions in the statement's own parentheses.
			if inner := cond.NamedChildren(); len(inner) == 1 {
				cond = inner[0]
			}
		}
		if cond.Is(ast.KindAssignmentExpression) {
			r.ReportHint(cond.Span, "Expected a conditional expression and instead saw an assignment",
				"Change the assignment to a comparison, or wrap it in an extra pair of parentheses")
		}
	})

var noDupeArgs = newNodeRule(CodeNoDupeArgs, CategoryPossibleErrors,
	"Disallow duplicate parameter names in function definitions",
	ast.FunctionKinds,
	func(r *diagnostics.Reporter, n *ast.Node) {
		seen := make(map[string]bool)
		for _, p := range n.ChildByField("parameters").NamedChildren() {
			for _, id := range patternNames(p) {
				name := id.Text()
				if seen[name] {
					r.ReportHint(id.Span, "Duplicate parameter name '"+name+"'", "Rename or remove the duplicate parameter")
				}
				seen[name] = true
			}
		}
	})

var noDupeClassMembers = newNodeRule(CodeNoDupeClassMembers, CategoryPossibleErrors,
	"Disallow duplicate class members",
	[]ast.Kind{ast.KindClassBody},
	func(r *diagnostics.Reporter, n *ast.Node) {
		type key struct {
			static bool
			name   string
		}
		kinds := make(map[key]string)
		for _, m := range n.NamedChildren() {
			if m.Kind != ast.KindMethodDefinition || m.ChildByField("body") == nil {
				continue
			}
			name := memberName(m)
			if name == "" {
				continue
			}
			k := key{static: m.HasToken("static"), name: name}
			accessor := "method"
			switch {
			case m.HasToken("get"):
				accessor = "get"
			case m.HasToken("set"):
				accessor = "set"
			}
			prev, ok := kinds[k]
			switch {
			case !ok:
				kinds[k] = accessor
			case (prev == "get" && accessor == "set") || (prev == "set" && accessor == "get"):
				kinds[k] = "pair"
			default:
				r.ReportHint(m.ChildByField("name").Span, "Duplicate name '"+name+"'",
					"Rename or remove the duplicate member")
			}
		}
	})

var noDupeElseIf = newNodeRule(CodeNoDupeElseIf, CategoryPossibleErrors,
	"Disallow duplicate conditions in if/else-if chains",
	[]ast.Kind{ast.KindIfStatement},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if n.Parent.Is(ast.KindElseClause) {
			return
		}
		seen := make(map[string]bool)
		for cur := n; cur != nil; {
			cond := cur.ChildByField("condition").Unparen()
			if cond != nil {
				text := normalizeSpace(cond.Text())
				if seen[text] {
					r.ReportHint(cond.Span, "This branch can never execute; its condition is a duplicate",
						"Remove the branch or change its condition")
				}
				seen[text] = true
			}
			alt := cur.ChildByField("alternative")
			cur = nil
			if alt != nil {
				if next := alt.NamedChildren(); len(next) == 1 && next[0].Kind == ast.KindIfStatement {
					cur = next[0]
				}
			}
		}
	})

var noDupeKeys = newNodeRule(CodeNoDupeKeys, CategoryPossibleErrors,
	"Disallow duplicate keys in object literals",
	[]ast.Kind{ast.KindObject},
	func(r *diagnostics.Reporter, n *ast.Node) {
		kinds := make(map[string]string)
		for _, p := range n.NamedChildren() {
			var name, accessor string
			var at *ast.Node
			switch p.Kind {
			case ast.KindPair:
				at = p.ChildByField("key")
				name, accessor = propertyKey(at), "value"
			case ast.KindShorthandProperty:
				at = p
				name, accessor = p.Text(), "value"
			case ast.KindMethodDefinition:
				at = p.ChildByField("name")
				name, accessor = memberName(p), "value"
				if p.HasToken("get") {
					accessor = "get"
				} else if p.HasToken("set") {
					accessor = "set"
				}
			default:
				continue
			}
			if name == "" {
				continue
			}
			prev, ok := kinds[name]
			switch {
			case !ok:
				kinds[name] = accessor
			case (prev == "get" && accessor == "set") || (prev == "set" && accessor == "get"):
				kinds[name] = "pair"
			default:
				r.ReportHint(at.Span, "Duplicate key '"+name+"'", "Remove or rename the duplicate key")
			}
		}
	})

var noDuplicateCase = newNodeRule(CodeNoDuplicateCase, CategoryPossibleErrors,
	"Disallow duplicate case labels",
	[]ast.Kind{ast.KindSwitchBody},
	func(r *diagnostics.Reporter, n *ast.Node) {
		seen := make(map[string]bool)
		for _, c := range n.NamedChildren() {
			value := c.ChildByField("value")
			if c.Kind != ast.KindSwitchCase || value == nil {
				continue
			}
			text := normalizeSpace(value.Text())
			if seen[text] {
				r.ReportHint(value.Span, "Duplicate case label", "Remove or change the duplicate case")
			}
			seen[text] = true
		}
	})

var noEmptyCharacterClass = newNodeRule(CodeNoEmptyCharacterClass, CategoryPossibleErrors,
	"Disallow empty character classes in regular expressions",
	[]ast.Kind{ast.KindRegex},
	func(r *diagnostics.Reporter, n *ast.Node) {
		pattern := n.ChildByField("pattern")
		if pattern != nil && hasEmptyCharClass(pattern.Text()) {
			r.ReportHint(n.Span, "Empty character class '[]' never matches anything",
				"Add characters to the class or remove it")
		}
	})

func hasEmptyCharClass(pattern string) bool {
	inClass := false
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; {
		case c == '\\':
			i++
		case inClass && c == ']':
			inClass = false
		case !inClass && c == '[':
			if i+1 < len(pattern) && pattern[i+1] == ']' {
				return true
			}
			inClass = true
		}
	}
	return false
}

var noRegexSpaces = newNodeRule(CodeNoRegexSpaces, CategoryPossibleErrors,
	"Disallow multiple literal spaces in regular expressions",
	[]ast.Kind{ast.KindRegex},
	func(r *diagnostics.Reporter, n *ast.Node) {
		pattern := n.ChildByField("pattern")
		if pattern != nil && hasRunOfSpaces(pattern.Text()) {
			r.ReportHint(n.Span, "More than one consecutive space in a regular expression",
				"Use a quantifier instead, e.g. ' {2}'")
		}
	})

func hasRunOfSpaces(pattern string) bool {
	inClass := false
	run := 0
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\':
			i++
			run = 0
			continue
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		}
		if c == ' ' && !inClass {
			run++
			if run >= 2 && (i+1 >= len(pattern) || !isQuantifier(pattern[i+1])) {
				return true
			}
			continue
		}
		run = 0
	}
	return false
}

func isQuantifier(c byte) bool {
	return c == '{' || c == '*' || c == '+' || c == '?'
}

var noExtraBooleanCast = newNodeRule(CodeNoExtraBooleanCast, CategoryPossibleErrors,
	"Disallow unnecessary boolean casts",
	[]ast.Kind{ast.KindUnaryExpression, ast.KindCallExpression},
	func(r *diagnostics.Reporter, n *ast.Node) {
		switch n.Kind {
		case ast.KindUnaryExpression:
			arg := n.ChildByField("argument")
			if n.Operator() != "!" || !arg.Is(ast.KindUnaryExpression) || arg.Operator() != "!" {
				return
			}
		case ast.KindCallExpression:
			if !isIdent(n.ChildByField("function"), "Boolean") {
				return
			}
		}
		if inBooleanContext(n) {
			r.ReportHint(n.Span, "Redundant double negation", "Remove the cast; the context already converts to boolean")
		}
	})

// inBooleanContext reports whether the value of n is only used as a
// condition.
func inBooleanContext(n *ast.Node) bool {
	child := n
	p := n.Parent
	for p.Is(ast.KindParenthesizedExpression) {
		child, p = p, p.Parent
	}
	if p == nil {
		return false
	}
	switch p.Kind {
	case ast.KindIfStatement, ast.KindWhileStatement, ast.KindDoStatement, ast.KindTernaryExpression:
		return child.Field == "condition"
	case ast.KindExpressionStatement:
		return p.Field == "condition" && p.Parent.Is(ast.KindForStatement)
	case ast.KindUnaryExpression:
		return p.Operator() == "!"
	}
	return false
}

var nonCallableGlobals = map[string]bool{"Math": true, "JSON": true, "Reflect": true, "Atomics": true}

var noObjCalls = newNodeRule(CodeNoObjCalls, CategoryPossibleErrors,
	"Disallow calling global objects as functions",
	[]ast.Kind{ast.KindCallExpression, ast.KindNewExpression},
	func(r *diagnostics.Reporter, n *ast.Node) {
		callee := n.ChildByField("function")
		if n.Kind == ast.KindNewExpression {
			callee = n.ChildByField("constructor")
		}
		if callee.Is(ast.KindIdentifier) && nonCallableGlobals[callee.Text()] {
			r.ReportHint(n.Span, "'"+callee.Text()+"' is not a function", "Call one of its methods instead")
		}
	})

var prototypeBuiltins = map[string]bool{
	"hasOwnProperty":       true,
	"isPrototypeOf":        true,
	"propertyIsEnumerable": true,
}

var noPrototypeBuiltins = newNodeRule(CodeNoPrototypeBuiltins, CategoryPossibleErrors,
	"Disallow calling Object.prototype methods directly on objects",
	[]ast.Kind{ast.KindCallExpression},
	func(r *diagnostics.Reporter, n *ast.Node) {
		fn := n.ChildByField("function")
		if !fn.Is(ast.KindMemberExpression) {
			return
		}
		prop := fn.ChildByField("property")
		if prop == nil || !prototypeBuiltins[prop.Text()] {
			return
		}
		r.ReportHint(n.Span, "Access to Object.prototype."+prop.Text()+" is not allowed from target object",
			"Use Object.prototype."+prop.Text()+".call(obj, ...) instead")
	})

var noSparseArray = newNodeRule(CodeNoSparseArray, CategoryPossibleErrors,
	"Disallow sparse array literals",
	[]ast.Kind{ast.KindArray},
	func(r *diagnostics.Reporter, n *ast.Node) {
		prevSep := false
		for _, c := range n.Children {
			if c.Named {
				prevSep = false
				continue
			}
			switch c.Text() {
			case "[":
				prevSep = true
			case ",":
				if prevSep {
					r.ReportHint(n.Span, "Sparse arrays are not allowed", "Fill the holes with 'undefined'")
					return
				}
				prevSep = true
			}
		}
	})

var noUnsafeFinally = newNodeRule(CodeNoUnsafeFinally, CategoryPossibleErrors,
	"Disallow control flow statements in finally blocks",
	[]ast.Kind{ast.KindReturnStatement, ast.KindThrowStatement, ast.KindBreakStatement, ast.KindContinueStatement},
	func(r *diagnostics.Reporter, n *ast.Node) {
		label := fieldText(n, "label")
		for p := n.Parent; p != nil; p = p.Parent {
			if p.Is(ast.FunctionKinds...) || p.Is(ast.ClassKinds...) {
				return
			}
			if p.Kind == ast.KindFinallyClause {
				r.ReportHint(n.Span, "Unsafe usage of "+strings.TrimSuffix(string(n.Kind), "_statement")+" in finally block",
					"Move the statement out of the finally block")
				return
			}
			switch n.Kind {
			case ast.KindBreakStatement:
				if label == "" && (p.Is(ast.LoopKinds...) || p.Is(ast.KindSwitchStatement)) {
					return
				}
			case ast.KindContinueStatement:
				if label == "" && p.Is(ast.LoopKinds...) {
					return
				}
			}
			if label != "" && p.Kind == ast.KindLabeledStatement && fieldText(p, "label") == label {
				return
			}
		}
	})

var noUnsafeNegation = newNodeRule(CodeNoUnsafeNegation, CategoryPossibleErrors,
	"Disallow negating the left operand of 'in' and 'instanceof'",
	[]ast.Kind{ast.KindBinaryExpression},
	func(r *diagnostics.Reporter, n *ast.Node) {
		op := n.Operator()
		if op != "in" && op != "instanceof" {
			return
		}
		left := n.ChildByField("left")
		if left.Is(ast.KindUnaryExpression) && left.Operator() == "!" {
			r.ReportHint(n.Span, "Unexpected negation of left operand of '"+op+"'",
				"Wrap the whole expression in parentheses: !(a "+op+" b)")
		}
	})

var useIsNaN = newNodeRule(CodeUseIsNaN, CategoryPossibleErrors,
	"Require Number.isNaN() when checking for NaN",
	[]ast.Kind{ast.KindBinaryExpression, ast.KindSwitchStatement},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if n.Kind == ast.KindSwitchStatement {
			if isNaNExpr(n.ChildByField("value").Unparen()) {
				r.ReportHint(n.Span, "'switch(NaN)' can never match a case clause", "Use Number.isNaN instead of the switch")
			}
			for _, c := range n.ChildByField("body").NamedChildren() {
				if c.Kind == ast.KindSwitchCase && isNaNExpr(c.ChildByField("value")) {
					r.ReportHint(c.Span, "'case NaN' can never match", "Use Number.isNaN in an if statement")
				}
			}
			return
		}
		if !comparisonOps[n.Operator()] {
			return
		}
		if isNaNExpr(n.ChildByField("left")) || isNaNExpr(n.ChildByField("right")) {
			r.ReportHint(n.Span, "Use the isNaN function to compare with NaN", "Use Number.isNaN(x)")
		}
	})

func isNaNExpr(n *ast.Node) bool {
	n = n.Unparen()
	if isIdent(n, "NaN") {
		return true
	}
	return n.Is(ast.KindMemberExpression) &&
		isIdent(n.ChildByField("object"), "Number") &&
		fieldText(n, "property") == "NaN"
}

var validTypeofNames = map[string]bool{
	"undefined": true, "object": true, "boolean": true, "number": true,
	"string": true, "function": true, "symbol": true, "bigint": true,
}

var validTypeof = newNodeRule(CodeValidTypeof, CategoryPossibleErrors,
	"Require typeof comparisons to use valid type names",
	[]ast.Kind{ast.KindBinaryExpression},
	func(r *diagnostics.Reporter, n *ast.Node) {
		switch n.Operator() {
		case "==", "===", "!=", "!==":
		default:
			return
		}
		left, right := n.ChildByField("left").Unparen(), n.ChildByField("right").Unparen()
		if isTypeof(right) {
			left, right = right, left
		}
		if !isTypeof(left) || right == nil {
			return
		}
		if right.Kind != ast.KindString && !(right.Kind == ast.KindTemplateString && right.FirstChildOfKind(ast.KindTemplateSubstitution) == nil) {
			return
		}
		if name := stringValue(right); !validTypeofNames[name] {
			r.ReportHint(right.Span, "Invalid typeof comparison value '"+name+"'",
				"Compare against one of: undefined, object, boolean, number, string, function, symbol, bigint")
		}
	})

func isTypeof(n *ast.Node) bool {
	return n.Is(ast.KindUnaryExpression) && n.Operator() == "typeof"
}

var requireYield = newNodeRule(CodeRequireYield, CategoryPossibleErrors,
	"Require generator functions to contain 'yield'",
	[]ast.Kind{ast.KindGeneratorFunctionDecl, ast.KindGeneratorFunction, ast.KindMethodDefinition},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if n.Kind == ast.KindMethodDefinition && !n.HasToken("*") {
			return
		}
		body := n.ChildByField("body")
		if body == nil || len(body.NamedChildren()) == 0 {
			return
		}
		found := false
		ast.InspectFunctionBody(body, func(c *ast.Node) bool {
			if c.Kind == ast.KindYieldExpression {
				found = true
				return false
			}
			return !found
		})
		if !found {
			r.ReportHint(n.Span, "Generator function has no 'yield'", "Add a 'yield' or make it a regular function")
		}
	})

// =============================================================================
// HELPERS
// =============================================================================

func isIdent(n *ast.Node, name string) bool {
	return n.Is(ast.KindIdentifier) && n.Text() == name
}

// firstExpr unwraps the expression_statement the grammar uses for for-loop
// conditions.
func firstExpr(n *ast.Node) *ast.Node {
	if n.Is(ast.KindExpressionStatement) {
		if inner := n.NamedChildren(); len(inner) > 0 {
			return inner[0]
		}
		return nil
	}
	if n.Is(ast.KindEmptyStatement) {
		return nil
	}
	return n
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
