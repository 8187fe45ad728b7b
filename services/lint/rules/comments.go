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
	"strings"

	"github.com/AleutianAI/tracelint/services/lint/ast"
	"github.com/AleutianAI/tracelint/services/lint/diagnostics"
	"github.com/AleutianAI/tracelint/services/lint/suppress"
)

// =============================================================================
// SUPPRESSION POLICY
// =============================================================================

// banUntaggedIgnore reports blanket suppression directives that do not name
// any rule. Such directives never suppress anything.
var banUntaggedIgnore = newCommentRule(CodeBanUntaggedIgnore,
	"Disallow suppression directives that do not name the rules they suppress",
	func(r *diagnostics.Reporter, m *ast.Module) {
		for _, c := range m.Comments {
			d, ok := suppress.ParseComment(c)
			if !ok || !d.Untagged() {
				continue
			}
			r.ReportHint(c.Span,
				"Ignore directive requires lint rule name(s)",
				"Add one or more rule codes, e.g. `// "+suppress.Marker+" no-debugger`, or use `"+suppress.BlanketMarker+"`")
		}
	})

var (
	todoWord = regexp.MustCompile(`\bTODO\b`)
	todoTag  = regexp.MustCompile(`^\s*\((@[\w.-]+|#\d+)\)`)
)

// banUntaggedTodo reports TODO comments without an owner or issue tag.
var banUntaggedTodo = newCommentRule(CodeBanUntaggedTodo,
	"Require TODO comments to reference a user or an issue",
	func(r *diagnostics.Reporter, m *ast.Module) {
		for _, c := range m.Comments {
			if untaggedTodo(c.Body()) {
				r.ReportHint(c.Span,
					"TODO should be tagged with (@username) or (#issue)",
					"Write `TODO(@username)` or `TODO(#1234)`")
			}
		}
	})

// untaggedTodo reports whether any TODO in text lacks a tag.
func untaggedTodo(text string) bool {
	for _, loc := range todoWord.FindAllStringIndex(text, -1) {
		if !todoTag.MatchString(text[loc[1]:]) {
			return true
		}
	}
	return false
}

// =============================================================================
// TYPESCRIPT DIRECTIVES
// =============================================================================

// tsDirective returns the TypeScript pragma in a line comment, e.g.
// "ts-ignore", and the text after it.
func tsDirective(c ast.Comment) (string, string, bool) {
	if c.Kind != ast.CommentLine {
		return "", "", false
	}
	body := strings.TrimSpace(strings.TrimLeft(c.Body(), "/"))
	if !strings.HasPrefix(body, "@ts-") {
		return "", "", false
	}
	name, rest, _ := strings.Cut(body[1:], " ")
	switch name {
	case "ts-ignore", "ts-nocheck", "ts-expect-error", "ts-check":
		return name, strings.TrimSpace(rest), true
	}
	return "", "", false
}

var banTSComment = newCommentRule(CodeBanTSComment,
	"Disallow TypeScript directive comments that silence the compiler",
	func(r *diagnostics.Reporter, m *ast.Module) {
		for _, c := range m.Comments {
			name, rest, ok := tsDirective(c)
			if !ok {
				continue
			}
			switch {
			case name == "ts-ignore" || name == "ts-nocheck":
				r.ReportHint(c.Span, "'@"+name+"' is not allowed",
					"Fix the underlying type error instead of silencing it")
			case name == "ts-expect-error" && rest == "":
				r.ReportHint(c.Span, "'@ts-expect-error' must be followed by a description",
					"Explain why the error is expected, e.g. `// @ts-expect-error: upstream typing bug`")
			}
		}
	})

var banTSIgnore = newCommentRule(CodeBanTSIgnore,
	"Disallow '@ts-ignore' in favour of '@ts-expect-error'",
	func(r *diagnostics.Reporter, m *ast.Module) {
		for _, c := range m.Comments {
			if name, _, ok := tsDirective(c); ok && name == "ts-ignore" {
				r.ReportHint(c.Span, "'@ts-ignore' is not allowed",
					"Use '@ts-expect-error' so the directive fails once the error is fixed")
			}
		}
	})

var tripleSlashReference = regexp.MustCompile(`^/\s*<reference\s+(path|types)\s*=`)

var banTripleSlashReference = &commentRule{
	base: newBase(CodeTripleSlashReference, CategoryTypeScript,
		"Disallow '/// <reference path|types>' in favour of ES module imports"),
	check: func(r *diagnostics.Reporter, m *ast.Module) {
		for _, c := range m.Comments {
			if c.Kind != ast.CommentLine || !tripleSlashReference.MatchString(c.Body()) {
				continue
			}
			r.ReportHint(c.Span, "Triple-slash reference directives are not allowed",
				"Use an `import` declaration instead")
		}
	},
}
