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
)

// bindingKind is how a name was declared.
type bindingKind uint8

const (
	bindVar bindingKind = iota
	bindLet
	bindConst
	bindFunction
	bindClass
	bindParam
	bindCatch
	bindImport
)

// binding is one declared name.
type binding struct {
	name string
	kind bindingKind

	// id is the identifier node in the declaration.
	id *ast.Node
}

// scope is a lexical scope. Function scopes receive hoisted var and
// function declarations; block scopes receive let, const and class.
type scope struct {
	parent   *scope
	function bool
	bindings map[string]*binding
}

func newScope(parent *scope, function bool) *scope {
	return &scope{parent: parent, function: function, bindings: make(map[string]*binding)}
}

func (s *scope) hoist() *scope {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.function {
			return cur
		}
	}
	return s
}

func (s *scope) declare(id *ast.Node, kind bindingKind) {
	name := id.Text()
	if name == "" {
		return
	}
	if _, ok := s.bindings[name]; ok {
		return
	}
	s.bindings[name] = &binding{name: name, kind: kind, id: id}
}

// lookup resolves name through the scope chain. Returns nil for globals.
func (s *scope) lookup(name string) *binding {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.bindings[name]; ok {
			return b
		}
	}
	return nil
}

// assignment is a write to a resolved name.
type assignment struct {
	target  *ast.Node
	binding *binding
}

// scopeInfo is the result of resolving one module.
type scopeInfo struct {
	bindings    []*binding
	assignments []assignment
}

type pendingWrite struct {
	id    *ast.Node
	scope *scope
}

type scopeBuilder struct {
	bindings []*binding
	writes   []pendingWrite
}

// resolveScopes builds the scope tree for a program and resolves every
// identifier that is written to.
//
// Description:
//
//	This is a purely lexical resolver: it understands var hoisting, block
//	scoping of let, const and class, parameters, catch parameters and
//	imports. It does not model with statements or eval. Writes to names
//	that resolve to no declaration are treated as globals and dropped.
func resolveScopes(root *ast.Node) *scopeInfo {
	b := &scopeBuilder{}
	program := newScope(nil, true)
	b.visit(root, program)

	info := &scopeInfo{bindings: b.bindings}
	for _, w := range b.writes {
		if bd := w.scope.lookup(w.id.Text()); bd != nil {
			info.assignments = append(info.assignments, assignment{target: w.id, binding: bd})
		}
	}
	return info
}

func (b *scopeBuilder) declare(s *scope, id *ast.Node, kind bindingKind) {
	before := len(s.bindings)
	s.declare(id, kind)
	if len(s.bindings) > before {
		b.bindings = append(b.bindings, s.bindings[id.Text()])
	}
}

func (b *scopeBuilder) declarePattern(s *scope, pattern *ast.Node, kind bindingKind) {
	for _, id := range patternNames(pattern) {
		b.declare(s, id, kind)
	}
}

func (b *scopeBuilder) write(s *scope, target *ast.Node) {
	for _, id := range patternNames(target) {
		b.writes = append(b.writes, pendingWrite{id: id, scope: s})
	}
}

func (b *scopeBuilder) visitChildren(n *ast.Node, s *scope) {
	for _, c := range n.NamedChildren() {
		b.visit(c, s)
	}
}

func (b *scopeBuilder) visit(n *ast.Node, s *scope) {
	if n == nil {
		return
	}

	switch n.Kind {
	case ast.KindFunctionDeclaration, ast.KindGeneratorFunctionDecl:
		if name := n.ChildByField("name"); name != nil {
			b.declare(s.hoist(), name, bindFunction)
		}
		b.function(n, newScope(s, true))
		return

	case ast.KindFunction, ast.KindFunctionExpression, ast.KindGeneratorFunction:
		fs := newScope(s, true)
		if name := n.ChildByField("name"); name != nil {
			b.declare(fs, name, bindFunction)
		}
		b.function(n, fs)
		return

	case ast.KindArrowFunction, ast.KindMethodDefinition:
		b.function(n, newScope(s, true))
		return

	case ast.KindClassDeclaration, ast.KindAbstractClassDeclaration:
		if name := n.ChildByField("name"); name != nil {
			b.declare(s, name, bindClass)
		}
		b.visitChildren(n, newScope(s, false))
		return

	case ast.KindClass:
		cs := newScope(s, false)
		if name := n.ChildByField("name"); name != nil {
			b.declare(cs, name, bindClass)
		}
		b.visitChildren(n, cs)
		return

	case ast.KindStatementBlock, ast.KindForStatement, ast.KindSwitchBody:
		b.visitChildren(n, newScope(s, false))
		return

	case ast.KindForInStatement:
		fs := newScope(s, false)
		left := n.ChildByField("left")
		switch kind := n.ChildByField("kind"); {
		case kind == nil:
			b.write(s, left)
		case kind.Text() == "var":
			b.declarePattern(s.hoist(), left, bindVar)
		case kind.Text() == "const":
			b.declarePattern(fs, left, bindConst)
		default:
			b.declarePattern(fs, left, bindLet)
		}
		b.visit(n.ChildByField("right"), s)
		b.visit(n.ChildByField("body"), fs)
		return

	case ast.KindCatchClause:
		cs := newScope(s, false)
		if p := n.ChildByField("parameter"); p != nil {
			b.declarePattern(cs, p, bindCatch)
		}
		if body := n.ChildByField("body"); body != nil {
			b.visitChildren(body, cs)
		}
		return

	case ast.KindVariableDeclaration:
		b.declarators(n, s.hoist(), s, bindVar)
		return

	case ast.KindLexicalDeclaration:
		kind := bindLet
		if n.HasToken("const") {
			kind = bindConst
		}
		b.declarators(n, s, s, kind)
		return

	case ast.KindImportSpecifier:
		id := n.ChildByField("alias")
		if id == nil {
			id = n.ChildByField("name")
		}
		if id != nil && id.Kind == ast.KindIdentifier {
			b.declare(s, id, bindImport)
		}
		return

	case ast.KindNamespaceImport:
		if id := n.FirstChildOfKind(ast.KindIdentifier); id != nil {
			b.declare(s, id, bindImport)
		}
		return

	case ast.KindImportClause:
		for _, c := range n.NamedChildren() {
			if c.Kind == ast.KindIdentifier {
				b.declare(s, c, bindImport)
				continue
			}
			b.visit(c, s)
		}
		return

	case ast.KindAssignmentExpression, ast.KindAugmentedAssignmentExpression:
		b.write(s, n.ChildByField("left"))
		b.visitWriteRHS(n.ChildByField("left"), s)
		b.visit(n.ChildByField("right"), s)
		return

	case ast.KindUpdateExpression:
		b.write(s, n.ChildByField("argument"))
		return
	}

	b.visitChildren(n, s)
}

// visitWriteRHS visits the parts of an assignment target that are reads,
// such as default values and computed keys in destructuring patterns.
func (b *scopeBuilder) visitWriteRHS(target *ast.Node, s *scope) {
	if target == nil {
		return
	}
	switch target.Kind {
	case ast.KindIdentifier, ast.KindShorthandPropertyPattern:
		return
	case ast.KindAssignmentPattern:
		b.visit(target.ChildByField("right"), s)
		b.visitWriteRHS(target.ChildByField("left"), s)
		return
	case ast.KindObjectPattern, ast.KindArrayPattern, ast.KindRestPattern, ast.KindParenthesizedExpression:
		for _, c := range target.NamedChildren() {
			b.visitWriteRHS(c, s)
		}
		return
	}
	b.visit(target, s)
}

func (b *scopeBuilder) declarators(n *ast.Node, declScope, valueScope *scope, kind bindingKind) {
	for _, d := range n.NamedChildren() {
		if d.Kind != ast.KindVariableDeclarator {
			continue
		}
		b.declarePattern(declScope, d.ChildByField("name"), kind)
		b.visit(d.ChildByField("value"), valueScope)
	}
}

// function declares parameters in fs and visits the body in it.
func (b *scopeBuilder) function(n *ast.Node, fs *scope) {
	if params := n.ChildByField("parameters"); params != nil {
		for _, p := range params.NamedChildren() {
			b.declarePattern(fs, p, bindParam)
			b.visitWriteRHS(p, fs)
		}
	}
	if p := n.ChildByField("parameter"); p != nil {
		b.declare(fs, p, bindParam)
	}
	body := n.ChildByField("body")
	if body == nil {
		return
	}
	if body.Kind == ast.KindStatementBlock {
		b.visitChildren(body, fs)
		return
	}
	b.visit(body, fs)
}

// patternNames returns the identifiers bound or assigned by a pattern.
func patternNames(n *ast.Node) []*ast.Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case ast.KindIdentifier, ast.KindShorthandPropertyPattern:
		return []*ast.Node{n}
	case ast.KindPairPattern:
		return patternNames(n.ChildByField("value"))
	case ast.KindAssignmentPattern, ast.KindObjectAssignmentPattern:
		return patternNames(n.ChildByField("left"))
	case ast.KindRequiredParameter, ast.KindOptionalParameter:
		return patternNames(n.ChildByField("pattern"))
	case ast.KindObjectPattern, ast.KindArrayPattern, ast.KindRestPattern, ast.KindParenthesizedExpression:
		var out []*ast.Node
		for _, c := range n.NamedChildren() {
			out = append(out, patternNames(c)...)
		}
		return out
	}
	return nil
}
