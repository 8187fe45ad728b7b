// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestCheck_CleanFile(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "ok.ts", "export const answer = 42;\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"check", "--no-cache", dir}, &stdout, &stderr)

	assert.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "0 problems")
}

func TestCheck_ErrorsExitNonZero(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "bad.js", "debugger;\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"check", "--no-cache", "--format", "compact", dir}, &stdout, &stderr)

	assert.Equal(t, exitFindings, code)
	assert.Contains(t, stdout.String(), "bad.js:1:1: error:")
	assert.Contains(t, stdout.String(), "[no-debugger]")
}

func TestCheck_DisableRule(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "bad.js", "debugger;\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"check", "--no-cache", "--disable", "no-debugger", dir}, &stdout, &stderr)
	assert.Equal(t, exitOK, code, stderr.String())
}

func TestCheck_JSON(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.js", "// tracelint-ignore\ndebugger;\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"check", "--no-cache", "--format", "json", dir}, &stdout, &stderr)
	require.Equal(t, exitFindings, code, stderr.String())

	var out struct {
		Results []struct {
			Diagnostics []struct {
				Code string `json:"code"`
			} `json:"diagnostics"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	require.Len(t, out.Results, 1)
	require.Len(t, out.Results[0].Diagnostics, 2, "an untagged directive suppresses nothing")
	assert.Equal(t, "ban-untagged-ignore", out.Results[0].Diagnostics[0].Code)
	assert.Equal(t, "no-debugger", out.Results[0].Diagnostics[1].Code)
}

func TestCheck_UnknownRule(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"check", "--no-cache", "--rule", "no-such-rule", t.TempDir()}, &stdout, &stderr)

	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr.String(), "no-such-rule")
}

func TestCheck_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "src/a.js", "var x = 1;\n")
	cfg := writeSource(t, dir, "tracelint.yaml", "preset: all\nseverity:\n  no-var: error\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"check", "--no-cache", "-c", cfg, "-f", "compact", filepath.Join(dir, "src")}, &stdout, &stderr)

	assert.Equal(t, exitFindings, code)
	assert.Contains(t, stdout.String(), "error: ")
	assert.Contains(t, stdout.String(), "[no-var]")
}

func TestRules_JSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"rules", "--json", "--preset", "recommended"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	var infos []ruleInfo
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &infos))
	require.NotEmpty(t, infos)
	for _, info := range infos {
		assert.True(t, info.Recommended, info.Code)
	}
}

func TestRules_Table(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"rules", "--category", "suppression"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	assert.Contains(t, stdout.String(), "ban-untagged-ignore")
	assert.Contains(t, stdout.String(), "ban-untagged-todo")
	assert.NotContains(t, stdout.String(), "no-debugger")
}

func TestRun_BadLogLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--log-level", "loud", "rules"}, &stdout, &stderr)
	assert.Equal(t, exitUsage, code)
}

func TestWatch_MetricsFlagsExclusive(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"watch", "--no-cache", "--metrics-addr", ":0", "--metrics-stdout", "1s", t.TempDir()}, &stdout, &stderr)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr.String(), "mutually exclusive")
}
