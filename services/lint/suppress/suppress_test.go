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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/tracelint/services/lint/ast"
	"github.com/AleutianAI/tracelint/services/lint/diagnostics"
)

func parse(t *testing.T, src string) *ast.Module {
	t.Helper()
	m, err := ast.NewParser().Parse(context.Background(), []byte(src), "t.ts")
	require.NoError(t, err)
	return m
}

func lineComment(text string) ast.Comment {
	return ast.Comment{Kind: ast.CommentLine, Raw: "//" + text, Line: 1}
}

func diagAt(code string, line int) diagnostics.Diagnostic {
	return diagnostics.Diagnostic{Code: code, Start: ast.Position{Line: line, Column: 1}}
}

func TestParseComment(t *testing.T) {
	tests := []struct {
		name     string
		comment  ast.Comment
		ok       bool
		codes    []string
		tagged   bool
		untagged bool
		reason   string
	}{
		{name: "not a directive", comment: lineComment(" just a note"), ok: false},
		{name: "marker prefix of another word", comment: lineComment(" tracelint-ignored"), ok: false},
		{name: "bare", comment: lineComment(" tracelint-ignore"), ok: true, untagged: true},
		{name: "bare with reason", comment: lineComment(" tracelint-ignore -- legacy"), ok: true, untagged: true, reason: "legacy"},
		{name: "codes", comment: lineComment(" tracelint-ignore no-var, eqeqeq no-var"), ok: true, codes: []string{"no-var", "eqeqeq"}},
		{name: "codes with reason", comment: lineComment(" tracelint-ignore no-eval -- sandboxed"), ok: true, codes: []string{"no-eval"}, reason: "sandboxed"},
		{name: "tagged blanket", comment: lineComment(" tracelint-ignore-all -- generated"), ok: true, tagged: true, reason: "generated"},
		{name: "tagged blanket ignores codes", comment: lineComment(" tracelint-ignore-all no-var"), ok: true, tagged: true},
		{name: "block", comment: ast.Comment{Kind: ast.CommentBlock, Raw: "/** tracelint-ignore no-with */"}, ok: true, codes: []string{"no-with"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := ParseComment(tt.comment)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.codes, d.Codes)
			assert.Equal(t, tt.tagged, d.Tagged)
			assert.Equal(t, tt.untagged, d.Untagged())
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestDirective_Matches(t *testing.T) {
	untagged := &Directive{}
	tagged := &Directive{Tagged: true}
	listed := &Directive{Codes: []string{"no-var"}}

	assert.False(t, untagged.Matches("no-var"), "untagged blanket suppresses nothing")
	assert.True(t, tagged.Matches("no-var"))
	assert.True(t, tagged.Matches("anything"))
	assert.True(t, listed.Matches("no-var"))
	assert.False(t, listed.Matches("eqeqeq"))
}

func TestResolve_TargetLines(t *testing.T) {
	src := "" +
		"// tracelint-ignore no-var\n" + // 1 -> 4
		"\n" + // 2
		"/* unrelated */\n" + // 3
		"var a = 1;\n" + // 4
		"var b = 2; // tracelint-ignore no-var\n" + // 5 -> 5
		"// tracelint-ignore-all -- end of file\n" // 6 -> 0
	idx := Resolve(parse(t, src))

	dirs := idx.Directives()
	require.Len(t, dirs, 3)
	assert.Equal(t, 4, dirs[0].Line)
	assert.Equal(t, 1, dirs[0].CommentLine)
	assert.Equal(t, 5, dirs[1].Line)
	assert.Equal(t, 0, dirs[2].Line, "no code follows")
	assert.Len(t, idx.ForLine(4), 1)
	assert.Equal(t, 3, idx.Len())
}

func TestResolve_MultilineBlockComment(t *testing.T) {
	src := "/*\n * tracelint-ignore no-var\n */\nvar a;\n"
	idx := Resolve(parse(t, src))
	require.Len(t, idx.Directives(), 1, "leading asterisks are skipped")
	assert.Equal(t, []string{"no-var"}, idx.Directives()[0].Codes)
	assert.Equal(t, 4, idx.Directives()[0].Line)

	src = "/* tracelint-ignore no-var\n   spans lines */\nvar a;\n"
	idx = Resolve(parse(t, src))
	require.Len(t, idx.Directives(), 1)
	assert.Equal(t, []string{"no-var"}, idx.Directives()[0].Codes, "the directive ends with its line")
	assert.Equal(t, 3, idx.Directives()[0].Line)

	src = "/**\n * tracelint-ignore no-debugger -- local only\n * More prose.\n */\ndebugger;\n"
	idx = Resolve(parse(t, src))
	require.Len(t, idx.Directives(), 1, "JSDoc opening asterisk is skipped")
	d := idx.Directives()[0]
	assert.Equal(t, []string{"no-debugger"}, d.Codes)
	assert.Equal(t, "local only", d.Reason)
	assert.Equal(t, 5, d.Line)

	kept, n := idx.Filter([]diagnostics.Diagnostic{diagAt("no-debugger", 5)}, nil)
	assert.Empty(t, kept)
	assert.Equal(t, 1, n)
}

func TestFilter_NoDirectivesIsIdentity(t *testing.T) {
	idx := Resolve(parse(t, "var a = 1;\n// plain comment\nvar b;\n"))
	raw := []diagnostics.Diagnostic{diagAt("no-var", 1), diagAt("no-var", 3)}

	kept, n := idx.Filter(raw, nil)
	assert.Equal(t, raw, kept)
	assert.Equal(t, 0, n)
}

func TestFilter(t *testing.T) {
	src := "" +
		"// tracelint-ignore no-var\n" + // 1 -> 2
		"var a = 1;\n" + // 2
		"// tracelint-ignore\n" + // 3 -> 4
		"var b = 2;\n" + // 4
		"// tracelint-ignore-all -- vendored\n" + // 5 -> 6
		"var c = 3;\n" + // 6
		"var d = 4; // tracelint-ignore\n" // 7 -> 7
	idx := Resolve(parse(t, src))

	raw := []diagnostics.Diagnostic{
		diagAt("no-var", 2),
		diagAt("eqeqeq", 2),
		diagAt("no-var", 4),
		diagAt("ban-untagged-ignore", 3),
		diagAt("no-var", 6),
		diagAt("ban-untagged-ignore", 7),
	}
	exempt := map[string]bool{"ban-untagged-ignore": true}

	kept, n := idx.Filter(raw, exempt)
	assert.Equal(t, 2, n)
	assert.Equal(t, []diagnostics.Diagnostic{
		diagAt("eqeqeq", 2),
		diagAt("no-var", 4),
		diagAt("ban-untagged-ignore", 3),
		diagAt("ban-untagged-ignore", 7),
	}, kept)
}

func TestFilter_ExemptOnlyOnOwnLine(t *testing.T) {
	src := "" +
		"// tracelint-ignore ban-untagged-todo -- tracked elsewhere\n" + // 1 -> 2
		"foo(); // TODO fix\n" + // 2
		"bar(); // tracelint-ignore ban-untagged-todo -- TODO later\n" // 3
	idx := Resolve(parse(t, src))
	exempt := map[string]bool{"ban-untagged-todo": true}

	assert.True(t, idx.Suppressed(diagAt("ban-untagged-todo", 2), exempt), "a directive on the line above still applies")
	assert.False(t, idx.Suppressed(diagAt("ban-untagged-todo", 3), exempt))
}
