// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"strings"
)

// =============================================================================
// SPAN
// =============================================================================

// Span is a half-open byte range [Start, End) into the module source.
type Span struct {
	Start int `json:"start" msgpack:"s"`
	End   int `json:"end" msgpack:"e"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// =============================================================================
// LANGUAGE
// =============================================================================

// Language identifies the grammar a module was parsed with.
type Language string

const (
	// LanguageJavaScript covers .js, .mjs, .cjs and .jsx files.
	LanguageJavaScript Language = "javascript"

	// LanguageTypeScript covers .ts, .mts and .cts files.
	LanguageTypeScript Language = "typescript"

	// LanguageTSX covers .tsx files.
	LanguageTSX Language = "tsx"
)

// IsTypeScript reports whether the language carries TypeScript syntax.
func (l Language) IsTypeScript() bool {
	return l == LanguageTypeScript || l == LanguageTSX
}

// =============================================================================
// NODE
// =============================================================================

// Node is one element of the syntax tree.
//
// Description:
//
//	Nodes are produced by the Parser from a tree-sitter tree and are never
//	modified afterwards. Kind carries the grammar's node type, Field the
//	name of the grammar field the node occupies in its parent (empty when
//	the grammar assigns none). Anonymous tokens such as operators and
//	keywords are retained with Named set to false so rules can inspect
//	them, but the engine only offers named nodes to rules.
//
// Thread Safety: Immutable after construction; safe for concurrent reads.
type Node struct {
	Kind     Kind
	Span     Span
	Named    bool
	Field    string
	Parent   *Node
	Children []*Node

	module *Module
}

// Text returns the source text covered by the node.
func (n *Node) Text() string {
	if n == nil || n.module == nil {
		return ""
	}
	return string(n.module.Source[n.Span.Start:n.Span.End])
}

// Module returns the module that owns the node.
func (n *Node) Module() *Module {
	return n.module
}

// ChildByField returns the first child occupying the named grammar field.
func (n *Node) ChildByField(field string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildrenByField returns every child occupying the named grammar field.
func (n *Node) ChildrenByField(field string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

// NamedChildren returns the named children in source order.
func (n *Node) NamedChildren() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Named {
			out = append(out, c)
		}
	}
	return out
}

// FirstChildOfKind returns the first direct child with the given kind.
func (n *Node) FirstChildOfKind(kinds ...Kind) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		for _, k := range kinds {
			if c.Kind == k {
				return c
			}
		}
	}
	return nil
}

// HasToken reports whether n has a direct anonymous child with the given text.
func (n *Node) HasToken(token string) bool {
	if n == nil {
		return false
	}
	for _, c := range n.Children {
		if !c.Named && c.Text() == token {
			return true
		}
	}
	return false
}

// Operator returns the text of the "operator" field, or the first anonymous
// child when the grammar does not name it.
func (n *Node) Operator() string {
	if op := n.ChildByField("operator"); op != nil {
		return op.Text()
	}
	if n == nil {
		return ""
	}
	for _, c := range n.Children {
		if !c.Named {
			return c.Text()
		}
	}
	return ""
}

// Unparen strips any number of enclosing parenthesized_expression wrappers.
func (n *Node) Unparen() *Node {
	for n != nil && n.Kind == KindParenthesizedExpression {
		inner := n.NamedChildren()
		if len(inner) == 0 {
			return n
		}
		n = inner[0]
	}
	return n
}

// Is reports whether the node has one of the given kinds.
func (n *Node) Is(kinds ...Kind) bool {
	if n == nil {
		return false
	}
	for _, k := range kinds {
		if n.Kind == k {
			return true
		}
	}
	return false
}

// Ancestor returns the nearest ancestor whose kind is in kinds, stopping
// (and returning nil) at any node whose kind is in stop.
func (n *Node) Ancestor(kinds []Kind, stop []Kind) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Is(kinds...) {
			return p
		}
		if p.Is(stop...) {
			return nil
		}
	}
	return nil
}

// =============================================================================
// COMMENT
// =============================================================================

// CommentKind distinguishes line comments from block comments.
type CommentKind int

const (
	// CommentLine is a // comment.
	CommentLine CommentKind = iota

	// CommentBlock is a /* */ comment.
	CommentBlock
)

// Comment is a source comment attached to a module.
//
// Thread Safety: Immutable after creation.
type Comment struct {
	Kind CommentKind
	Span Span

	// Raw is the complete comment text including delimiters.
	Raw string

	// Line is the 1-indexed line the comment starts on.
	Line int

	// Trailing is true when code precedes the comment on its first line.
	Trailing bool
}

// Body returns the comment text without its delimiters.
func (c Comment) Body() string {
	switch c.Kind {
	case CommentBlock:
		body := strings.TrimPrefix(c.Raw, "/*")
		return strings.TrimSuffix(body, "*/")
	default:
		return strings.TrimPrefix(c.Raw, "//")
	}
}

// =============================================================================
// MODULE
// =============================================================================

// Module is the parsed representation of one source file.
//
// Description:
//
//	Module owns the node tree and the comment list for a file together with
//	the source it was built from. A Module is never modified after Parse
//	returns it, so it may be shared across goroutines.
type Module struct {
	// Path is the file path as given to the parser.
	Path string

	// Language is the grammar the file was parsed with.
	Language Language

	// Source is the original file content.
	Source []byte

	// Hash is the hex SHA-256 of Source.
	Hash string

	// Root is the program node.
	Root *Node

	// Comments lists every comment in source order.
	Comments []Comment

	// Lines maps byte offsets to line and column positions.
	Lines *LineIndex
}

// SpanText returns the source text for an arbitrary span.
func (m *Module) SpanText(s Span) string {
	if s.Start < 0 || s.End > len(m.Source) || s.Start > s.End {
		return ""
	}
	return string(m.Source[s.Start:s.End])
}

// CommentsWithin returns the comments lying entirely inside span.
func (m *Module) CommentsWithin(span Span) []Comment {
	var out []Comment
	for _, c := range m.Comments {
		if span.Contains(c.Span) {
			out = append(out, c)
		}
	}
	return out
}
