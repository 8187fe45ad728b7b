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

// assignRule reports writes to names declared with a given binding kind.
type assignRule struct {
	base
	kind    bindingKind
	message func(name string) string
	hint    string
}

func (ar *assignRule) Kinds() []ast.Kind {
	return []ast.Kind{ast.KindProgram}
}

func (ar *assignRule) NewVisitor(r *diagnostics.Reporter, _ *ast.Module) Visitor {
	return VisitorFunc(func(n *ast.Node) {
		for _, a := range resolveScopes(n).assignments {
			if a.binding.kind == ar.kind {
				r.ReportHint(a.target.Span, ar.message(a.binding.name), ar.hint)
			}
		}
	})
}

var noClassAssign = &assignRule{
	base:    newBase(CodeNoClassAssign, CategoryPossibleErrors, "Disallow reassigning class declarations"),
	kind:    bindClass,
	message: func(name string) string { return "'" + name + "' is a class and cannot be reassigned" },
	hint:    "Declare a separate variable instead of reassigning the class",
}

var noFuncAssign = &assignRule{
	base:    newBase(CodeNoFuncAssign, CategoryPossibleErrors, "Disallow reassigning function declarations"),
	kind:    bindFunction,
	message: func(name string) string { return "'" + name + "' is a function and cannot be reassigned" },
	hint:    "Declare a separate variable instead of reassigning the function",
}

var noConstAssign = &assignRule{
	base:    newBase(CodeNoConstAssign, CategoryPossibleErrors, "Disallow reassigning const variables"),
	kind:    bindConst,
	message: func(name string) string { return "'" + name + "' is constant" },
	hint:    "Change the declaration to 'let' or use a new variable",
}

var noExAssign = &assignRule{
	base:    newBase(CodeNoExAssign, CategoryPossibleErrors, "Disallow reassigning the exception parameter of a catch clause"),
	kind:    bindCatch,
	message: func(string) string { return "Reassigning exception parameter is not allowed" },
	hint:    "Use a different variable for the new value",
}

var restrictedNames = map[string]bool{
	"NaN":       true,
	"Infinity":  true,
	"undefined": true,
	"eval":      true,
	"arguments": true,
}

var noShadowRestrictedNames = newProgramRule(CodeNoShadowRestrictedNames, CategoryBestPractices,
	"Disallow declarations that shadow restricted global names",
	func(r *diagnostics.Reporter, root *ast.Node) {
		for _, b := range resolveScopes(root).bindings {
			if !restrictedNames[b.name] {
				continue
			}
			// `var undefined;` without a value leaves the binding undefined.
			if b.name == "undefined" && b.kind == bindVar {
				if d := b.id.Parent; d != nil && d.Kind == ast.KindVariableDeclarator && d.ChildByField("value") == nil {
					continue
				}
			}
			r.ReportNode(b.id, "Shadowing of global property '"+b.name+"'")
		}
	})
