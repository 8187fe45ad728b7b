// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package suppress

import (
	"slices"
	"strings"
	"unicode"

	"github.com/AleutianAI/tracelint/services/lint/ast"
)

const (
	// Marker starts a suppression directive.
	Marker = "tracelint-ignore"

	// BlanketMarker is the explicitly tagged blanket form of Marker.
	BlanketMarker = Marker + "-all"

	// reasonSeparator introduces free-form text after the code list.
	reasonSeparator = "--"
)

// Directive is one suppression request parsed from a comment.
//
// Thread Safety: Immutable after creation.
type Directive struct {
	// Line is the 1-indexed line the directive applies to. Zero when no
	// code follows the comment, in which case the directive is inert.
	Line int

	// CommentLine is the 1-indexed line the comment starts on.
	CommentLine int

	// Codes lists the rule codes to suppress. Empty for blanket directives.
	Codes []string

	// Tagged is true for the explicit blanket form (BlanketMarker).
	Tagged bool

	// Reason is the optional text after "--".
	Reason string

	// Span is the span of the comment holding the directive.
	Span ast.Span
}

// Blanket reports whether the directive names no rule codes.
func (d *Directive) Blanket() bool {
	return len(d.Codes) == 0
}

// Untagged reports whether the directive is a bare blanket suppression.
//
// Untagged directives are policy violations and never suppress anything.
func (d *Directive) Untagged() bool {
	return d.Blanket() && !d.Tagged
}

// Matches reports whether the directive suppresses code.
//
// Unknown codes never match anything, so a directive naming only unknown
// codes is inert.
func (d *Directive) Matches(code string) bool {
	if d.Blanket() {
		return d.Tagged
	}
	return slices.Contains(d.Codes, code)
}

// ParseComment parses a directive from a comment.
//
// Description:
//
//	Recognises `tracelint-ignore [code[, code...]] [-- reason]` and
//	`tracelint-ignore-all [-- reason]` in line or block comments. Codes may
//	be separated by commas, whitespace or both. In block comments the
//	directive ends at the end of its line. The returned directive has
//	its Line field unset; Resolve fills it in.
//
// Inputs:
//
//	c - The comment to inspect.
//
// Outputs:
//
//	*Directive - The parsed directive.
//	bool       - False if the comment is not a directive.
func ParseComment(c ast.Comment) (*Directive, bool) {
	text := strings.TrimSpace(c.Body())
	if c.Kind == ast.CommentBlock {
		text = trimStars(text)
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
	}

	var tagged bool
	var rest string
	switch {
	case hasMarker(text, BlanketMarker):
		tagged = true
		rest = text[len(BlanketMarker):]
	case hasMarker(text, Marker):
		rest = text[len(Marker):]
	default:
		return nil, false
	}

	d := &Directive{
		CommentLine: c.Line,
		Tagged:      tagged,
		Span:        c.Span,
	}

	if idx := strings.Index(rest, reasonSeparator); idx >= 0 {
		d.Reason = strings.TrimSpace(rest[idx+len(reasonSeparator):])
		rest = rest[:idx]
	}

	if !tagged {
		d.Codes = splitCodes(rest)
	}
	return d, true
}

// trimStars drops the leading asterisks of JSDoc-style block comments,
// including the one before a directive on the comment's second line.
func trimStars(text string) string {
	for {
		trimmed := strings.TrimSpace(strings.TrimLeft(text, "*"))
		if trimmed == text {
			return text
		}
		text = trimmed
	}
}

// hasMarker reports whether text starts with marker as a whole word.
func hasMarker(text, marker string) bool {
	if !strings.HasPrefix(text, marker) {
		return false
	}
	if len(text) == len(marker) {
		return true
	}
	next := rune(text[len(marker)])
	return unicode.IsSpace(next) || next == ','
}

func splitCodes(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return nil
	}
	codes := make([]string, 0, len(fields))
	for _, f := range fields {
		if !slices.Contains(codes, f) {
			codes = append(codes, f)
		}
	}
	return codes
}
