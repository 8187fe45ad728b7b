// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/tracelint/services/lint/ast"
	"github.com/AleutianAI/tracelint/services/lint/diagnostics"
	"github.com/AleutianAI/tracelint/services/lint/engine"
)

func fixtureResults() []*engine.FileResult {
	return []*engine.FileResult{
		{
			Path:     "src/a.js",
			Language: ast.LanguageJavaScript,
			Diagnostics: []diagnostics.Diagnostic{
				{
					Code:     "no-debugger",
					Message:  "Unexpected 'debugger' statement",
					Start:    ast.Position{Line: 3, Column: 5},
					Severity: diagnostics.SeverityError,
				},
				{
					Code:     "no-var",
					Message:  "Unexpected var, use let or const instead",
					Hint:     "Replace var with let or const",
					Start:    ast.Position{Line: 1, Column: 1},
					Severity: diagnostics.SeverityWarning,
				},
			},
			Suppressed: 1,
		},
		{Path: "src/clean.ts", Language: ast.LanguageTypeScript},
		{Path: "README.md", Error: "unsupported language: \".md\""},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(fixtureResults())
	assert.Equal(t, Summary{Files: 3, Errors: 1, Warnings: 1, Suppressed: 1, Skipped: 1}, s)
	assert.True(t, s.Failed())
	assert.False(t, Summarize(nil).Failed())
}

func TestNewPrinter_UnknownFormat(t *testing.T) {
	_, err := NewPrinter("xml", &bytes.Buffer{}, false)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestTextPrinter(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPrinter(FormatText, &buf, false)
	require.NoError(t, err)
	require.NoError(t, p.Print(fixtureResults()))

	out := buf.String()
	assert.Contains(t, out, "src/a.js\n")
	assert.Contains(t, out, "3:5")
	assert.Contains(t, out, "Unexpected 'debugger' statement")
	assert.Contains(t, out, "Replace var with let or const")
	assert.NotContains(t, out, "src/clean.ts", "files without findings are omitted")
	assert.Contains(t, out, "2 problems (1 error, 1 warning) in 3 files, 1 suppressed")
}

func TestCompactPrinter(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPrinter(FormatCompact, &buf, false)
	require.NoError(t, err)
	require.NoError(t, p.Print(fixtureResults()))

	assert.Equal(t,
		"src/a.js:3:5: error: Unexpected 'debugger' statement [no-debugger]\n"+
			"src/a.js:1:1: warning: Unexpected var, use let or const instead [no-var]\n"+
			"README.md: warning: unsupported language: \".md\"\n",
		buf.String())
}

func TestJSONPrinter(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPrinter(FormatJSON, &buf, false)
	require.NoError(t, err)
	require.NoError(t, p.Print(fixtureResults()))

	var decoded struct {
		Version string `json:"version"`
		Results []struct {
			Path        string `json:"path"`
			Diagnostics []struct {
				Code     string `json:"code"`
				Severity string `json:"severity"`
			} `json:"diagnostics"`
		} `json:"results"`
		Summary Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, engine.Version, decoded.Version)
	require.Len(t, decoded.Results, 3)
	assert.Equal(t, "error", decoded.Results[0].Diagnostics[0].Severity)
	assert.Equal(t, 1, decoded.Summary.Errors)
}
