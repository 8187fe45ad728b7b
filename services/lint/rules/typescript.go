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

// The rules in this file only match TypeScript node kinds, so they are
// inert on JavaScript modules.

var bannedTypes = map[string]string{
	"String":   "Use 'string' instead",
	"Boolean":  "Use 'boolean' instead",
	"Number":   "Use 'number' instead",
	"Symbol":   "Use 'symbol' instead",
	"BigInt":   "Use 'bigint' instead",
	"Function": "Use a specific function type, like '() => void'",
	"Object":   "Use 'Record<string, unknown>' or 'unknown' instead",
}

var banTypes = newNodeRule(CodeBanTypes, CategoryTypeScript,
	"Disallow wrapper object types and other unsafe built-in types",
	[]ast.Kind{ast.KindTypeIdentifier, ast.KindObjectType},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if n.Field == "name" {
			return
		}
		if n.Kind == ast.KindObjectType {
			if n.Parent.Is(ast.KindInterfaceDeclaration) {
				return
			}
			if len(n.NamedChildren()) == 0 {
				r.ReportHint(n.Span, "'{}' type is not allowed",
					"Use 'Record<string, unknown>' for objects or 'unknown' for any value")
			}
			return
		}
		if hint, ok := bannedTypes[n.Text()]; ok {
			r.ReportHint(n.Span, "'"+n.Text()+"' type is not allowed", hint)
		}
	})

var explicitFunctionReturnType = newNodeRule(CodeExplicitFunctionReturnType, CategoryTypeScript,
	"Require explicit return types on functions and class methods",
	[]ast.Kind{ast.KindFunctionDeclaration, ast.KindGeneratorFunctionDecl, ast.KindFunction,
		ast.KindFunctionExpression, ast.KindGeneratorFunction, ast.KindMethodDefinition},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if !r.Module().Language.IsTypeScript() || n.ChildByField("return_type") != nil {
			return
		}
		if n.Kind == ast.KindMethodDefinition && (memberName(n) == "constructor" || n.HasToken("set")) {
			return
		}
		at := n.ChildByField("name")
		if at == nil {
			at = n
		}
		r.ReportHint(at.Span, "Missing return type on function", "Add a return type annotation, e.g. ': void'")
	})

var noEmptyInterface = newNodeRule(CodeNoEmptyInterface, CategoryTypeScript,
	"Disallow empty interfaces",
	[]ast.Kind{ast.KindInterfaceDeclaration},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if body := n.ChildByField("body"); body == nil || len(body.NamedChildren()) > 0 {
			return
		}
		extends := n.FirstChildOfKind(ast.KindExtendsTypeClause)
		switch {
		case extends == nil:
			r.ReportHint(n.Span, "An empty interface is equivalent to '{}'", "Remove the interface or add members")
		case len(extends.NamedChildren()) == 1:
			r.ReportHint(n.Span, "An interface declaring no members is equivalent to its supertype",
				"Use a type alias of the supertype instead")
		}
	})

var noExplicitAny = newNodeRule(CodeNoExplicitAny, CategoryTypeScript,
	"Disallow the 'any' type",
	[]ast.Kind{ast.KindPredefinedType},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if n.Text() == "any" {
			r.ReportHint(n.Span, "`any` type is not allowed", "Use a specific type or 'unknown'")
		}
	})

var noExtraNonNullAssertion = newNodeRule(CodeNoExtraNonNullAssertion, CategoryTypeScript,
	"Disallow redundant non-null assertions",
	[]ast.Kind{ast.KindNonNullExpression, ast.KindMemberExpression, ast.KindCallExpression},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if n.Kind == ast.KindNonNullExpression {
			if inner := n.NamedChildren(); len(inner) == 1 && inner[0].Unparen().Is(ast.KindNonNullExpression) {
				r.ReportHint(n.Span, "Extra non-null assertion", "Remove the extra '!'")
			}
			return
		}
		if n.FirstChildOfKind(ast.KindOptionalChain) == nil && !n.HasToken("?.") {
			return
		}
		object := n.ChildByField("object")
		if n.Kind == ast.KindCallExpression {
			object = n.ChildByField("function")
		}
		if object.Is(ast.KindNonNullExpression) {
			r.ReportHint(object.Span, "Extra non-null assertion before optional chain", "Remove the '!'")
		}
	})

var noNonNullAssertion = newNodeRule(CodeNoNonNullAssertion, CategoryTypeScript,
	"Disallow non-null assertions",
	[]ast.Kind{ast.KindNonNullExpression},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if n.Parent.Is(ast.KindNonNullExpression) {
			return
		}
		r.ReportHint(n.Span, "Do not use non-null assertion", "Check for null explicitly instead")
	})

var noInferrableTypes = newNodeRule(CodeNoInferrableTypes, CategoryTypeScript,
	"Disallow type annotations that can be inferred from a literal initializer",
	[]ast.Kind{ast.KindVariableDeclarator, ast.KindRequiredParameter, ast.KindOptionalParameter, ast.KindPublicFieldDefinition},
	func(r *diagnostics.Reporter, n *ast.Node) {
		ann := n.ChildByField("type")
		value := n.ChildByField("value")
		if ann == nil || value == nil {
			return
		}
		types := ann.NamedChildren()
		if len(types) != 1 {
			return
		}
		name := types[0].Text()
		if inferredType(value.Unparen()) == name {
			r.ReportHint(ann.Span, "Type '"+name+"' is trivially inferred from the initializer",
				"Remove the type annotation")
		}
	})

// inferredType returns the primitive type name of a literal expression.
func inferredType(v *ast.Node) string {
	switch {
	case v.Is(ast.KindNumber):
		if strings.HasSuffix(v.Text(), "n") {
			return "bigint"
		}
		return "number"
	case isIdent(v, "Infinity"), isIdent(v, "NaN"):
		return "number"
	case v.Is(ast.KindString):
		return "string"
	case v.Is(ast.KindTemplateString) && v.FirstChildOfKind(ast.KindTemplateSubstitution) == nil:
		return "string"
	case v.Is(ast.KindTrue, ast.KindFalse):
		return "boolean"
	case v.Is(ast.KindNull):
		return "null"
	case v.Is(ast.KindUndefined), isIdent(v, "undefined"):
		return "undefined"
	case v.Is(ast.KindUnaryExpression):
		switch v.Operator() {
		case "-", "+":
			return inferredType(v.ChildByField("argument").Unparen())
		case "!":
			return "boolean"
		case "void":
			return "undefined"
		}
	case v.Is(ast.KindCallExpression):
		switch fn := v.ChildByField("function"); {
		case isIdent(fn, "Number"):
			return "number"
		case isIdent(fn, "String"):
			return "string"
		case isIdent(fn, "Boolean"):
			return "boolean"
		case isIdent(fn, "BigInt"):
			return "bigint"
		case isIdent(fn, "Symbol"):
			return "symbol"
		}
	}
	return ""
}

var noMisusedNew = newNodeRule(CodeNoMisusedNew, CategoryTypeScript,
	"Require constructors to be declared as 'constructor' in classes and 'new' in interfaces",
	[]ast.Kind{ast.KindInterfaceDeclaration, ast.KindClassDeclaration, ast.KindAbstractClassDeclaration},
	func(r *diagnostics.Reporter, n *ast.Node) {
		typeName := fieldText(n, "name")
		body := n.ChildByField("body")
		for _, m := range body.NamedChildren() {
			switch {
			case n.Kind == ast.KindInterfaceDeclaration && m.Kind == ast.KindMethodSignature && memberName(m) == "constructor":
				r.ReportHint(m.Span, "Interfaces cannot be constructed, only classes",
					"Declare a construct signature: 'new (): "+typeName+"'")
			case n.Kind == ast.KindInterfaceDeclaration && m.Kind == ast.KindConstructSignature && returnsType(m, typeName):
				r.ReportHint(m.Span, "Interfaces cannot be constructed, only classes",
					"Use a class or a separate constructor interface")
			case n.Kind != ast.KindInterfaceDeclaration && m.Is(ast.KindMethodDefinition, ast.KindMethodSignature) &&
				memberName(m) == "new" && returnsType(m, typeName):
				r.ReportHint(m.Span, "Class cannot have method named `new`", "Use 'constructor' instead")
			}
		}
	})

func returnsType(m *ast.Node, name string) bool {
	rt := m.ChildByField("return_type")
	if rt == nil || name == "" {
		return false
	}
	inner := rt.NamedChildren()
	return len(inner) == 1 && strings.TrimSpace(inner[0].Text()) == name
}

var noNamespace = newNodeRule(CodeNoNamespace, CategoryTypeScript,
	"Disallow TypeScript namespaces and internal modules",
	[]ast.Kind{ast.KindInternalModule, ast.KindModule},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if strings.HasSuffix(r.Module().Path, ".d.ts") || n.ChildByField("name").Is(ast.KindString) {
			return
		}
		r.ReportHint(n.Span, "TypeScript's `module` and `namespace` are discouraged to use",
			"Use ES module syntax (import/export) instead")
	})

var preferNamespaceKeyword = newNodeRule(CodePreferNamespaceKeyword, CategoryTypeScript,
	"Require 'namespace' instead of 'module' for internal modules",
	[]ast.Kind{ast.KindModule},
	func(r *diagnostics.Reporter, n *ast.Node) {
		if n.ChildByField("name").Is(ast.KindString) {
			return
		}
		r.ReportHint(n.Span, "`module` keyword in module declaration is not allowed",
			"Use the 'namespace' keyword instead")
	})

var preferAsConst = newNodeRule(CodePreferAsConst, CategoryTypeScript,
	"Require 'as const' over repeating a literal as its own type",
	[]ast.Kind{ast.KindAsExpression, ast.KindTypeAssertion, ast.KindVariableDeclarator},
	func(r *diagnostics.Reporter, n *ast.Node) {
		var value, typ *ast.Node
		switch n.Kind {
		case ast.KindAsExpression:
			kids := n.NamedChildren()
			if len(kids) != 2 {
				return
			}
			value, typ = kids[0], kids[1]
		case ast.KindTypeAssertion:
			kids := n.NamedChildren()
			if len(kids) != 2 {
				return
			}
			typ, value = kids[0], kids[1]
			if typ.Kind == ast.KindTypeArguments {
				if inner := typ.NamedChildren(); len(inner) == 1 {
					typ = inner[0]
				}
			}
		case ast.KindVariableDeclarator:
			value = n.ChildByField("value")
			if ann := n.ChildByField("type"); ann != nil {
				if inner := ann.NamedChildren(); len(inner) == 1 {
					typ = inner[0]
				}
			}
		}
		if value == nil || !typ.Is(ast.KindLiteralType) || !value.Is(ast.KindString, ast.KindNumber) {
			return
		}
		if typ.Text() == value.Text() {
			r.ReportHint(typ.Span, "Expected a `const` assertion instead of a literal type annotation",
				"Use 'as const'")
		}
	})
