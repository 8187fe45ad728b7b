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
	"github.com/AleutianAI/tracelint/services/lint/ast"
	"github.com/AleutianAI/tracelint/services/lint/diagnostics"
)

// Index holds the suppression directives of one module keyed by target line.
//
// Thread Safety: Immutable after Resolve returns; safe for concurrent reads.
type Index struct {
	directives []*Directive
	byLine     map[int][]*Directive
}

// Resolve scans the module's comments once and builds its directive index.
//
// Description:
//
//	A directive in a comment that trails code applies to the comment's own
//	line. Any other directive applies to the next line holding code, skipping
//	blank lines and lines that contain only comments.
//
// Inputs:
//
//	m - The parsed module.
//
// Outputs:
//
//	*Index - The directive index. Never nil.
func Resolve(m *ast.Module) *Index {
	idx := &Index{byLine: make(map[int][]*Directive)}
	if m == nil || len(m.Comments) == 0 {
		return idx
	}

	var code []bool
	for _, c := range m.Comments {
		d, ok := ParseComment(c)
		if !ok {
			continue
		}
		if c.Trailing {
			d.Line = c.Line
		} else {
			if code == nil {
				code = codeLines(m)
			}
			d.Line = nextCodeLine(code, m.Lines.Line(c.Span.End))
		}
		idx.directives = append(idx.directives, d)
		if d.Line > 0 {
			idx.byLine[d.Line] = append(idx.byLine[d.Line], d)
		}
	}
	return idx
}

// Directives returns every directive in source order.
func (idx *Index) Directives() []*Directive {
	return idx.directives
}

// ForLine returns the directives targeting line.
func (idx *Index) ForLine(line int) []*Directive {
	return idx.byLine[line]
}

// Len returns the number of directives.
func (idx *Index) Len() int {
	return len(idx.directives)
}

// Suppressed reports whether d is dropped by a directive.
//
// Description:
//
//	A diagnostic is suppressed when a directive targets its start line and
//	either lists its code or is a tagged blanket directive. Diagnostics whose
//	code is in exempt are never suppressed by a directive written on the
//	diagnostic's own line, so a malformed directive cannot hide the report
//	about itself.
func (idx *Index) Suppressed(d diagnostics.Diagnostic, exempt map[string]bool) bool {
	for _, dir := range idx.byLine[d.Start.Line] {
		if exempt[d.Code] && dir.CommentLine == d.Start.Line {
			continue
		}
		if dir.Matches(d.Code) {
			return true
		}
	}
	return false
}

// Filter returns the diagnostics that survive suppression.
//
// Inputs:
//
//	diags  - Raw diagnostics. Not modified.
//	exempt - Codes protected from same-line suppression. May be nil.
//
// Outputs:
//
//	[]diagnostics.Diagnostic - Surviving diagnostics in input order.
//	int                      - Number of suppressed diagnostics.
func (idx *Index) Filter(diags []diagnostics.Diagnostic, exempt map[string]bool) ([]diagnostics.Diagnostic, int) {
	if len(idx.byLine) == 0 {
		return diags, 0
	}
	kept := make([]diagnostics.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if idx.Suppressed(d, exempt) {
			continue
		}
		kept = append(kept, d)
	}
	return kept, len(diags) - len(kept)
}

// codeLines reports, per 1-indexed line, whether it holds any non-space
// byte outside a comment.
func codeLines(m *ast.Module) []bool {
	src := m.Source
	out := make([]bool, m.Lines.LineCount()+2)
	line, ci := 1, 0
	for i := 0; i < len(src); i++ {
		for ci < len(m.Comments) && m.Comments[ci].Span.End <= i {
			ci++
		}
		if ci < len(m.Comments) && i >= m.Comments[ci].Span.Start {
			for ; i < m.Comments[ci].Span.End; i++ {
				if src[i] == '\n' {
					line++
				}
			}
			i--
			continue
		}
		switch src[i] {
		case '\n':
			line++
		case ' ', '\t', '\r', '\f', '\v':
		default:
			out[line] = true
		}
	}
	return out
}

func nextCodeLine(code []bool, after int) int {
	for l := after + 1; l < len(code); l++ {
		if code[l] {
			return l
		}
	}
	return 0
}
