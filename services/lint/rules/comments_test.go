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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/tracelint/services/lint/ast"
	"github.com/AleutianAI/tracelint/services/lint/diagnostics"
)

func TestBanUntaggedIgnore(t *testing.T) {
	t.Run("untagged blanket", func(t *testing.T) {
		diags := lint(t, "a.js", "// tracelint-ignore\nfoo();\n", banUntaggedIgnore)
		require.Len(t, diags, 1)

		d := diags[0]
		assert.Equal(t, CodeBanUntaggedIgnore, d.Code)
		assert.Equal(t, "Ignore directive requires lint rule name(s)", d.Message)
		assert.Equal(t, diagnostics.SeverityWarning, d.Severity)
		assert.Equal(t, ast.Position{Line: 1, Column: 1}, d.Start)
	})

	t.Run("trailing and block", func(t *testing.T) {
		src := "foo(); // tracelint-ignore -- why\n/* tracelint-ignore */\nbar();\n"
		assert.Len(t, lint(t, "a.ts", src, banUntaggedIgnore), 2)
	})

	t.Run("tagged forms", func(t *testing.T) {
		src := "" +
			"// tracelint-ignore no-var\n" +
			"var a;\n" +
			"// tracelint-ignore-all -- generated\n" +
			"var b;\n" +
			"// mentions tracelint-ignore in passing\n"
		assert.Empty(t, lint(t, "a.js", src, banUntaggedIgnore))
	})
}

func TestBanUntaggedTodo(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"// TODO fix this\n", 1},
		{"// TODO: fix this\n", 1},
		{"/* TODO */\n", 1},
		{"// TODO(@alice) fix this\n", 0},
		{"// TODO(#123) fix this\n", 0},
		{"// TODO (@bob.smith): spaced\n", 0},
		{"// TODO(@alice) then TODO again\n", 1},
		{"// todo lowercase is prose\n", 0},
		{"// TODOS are plural\n", 0},
		{"/**\n * Docs.\n * TODO(#9) tagged\n */\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			diags := lint(t, "a.js", tt.src, banUntaggedTodo)
			assert.Len(t, diags, tt.want)
			for _, d := range diags {
				assert.Equal(t, "TODO should be tagged with (@username) or (#issue)", d.Message)
			}
		})
	}
}
