// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/tracelint/services/lint/diagnostics"
	"github.com/AleutianAI/tracelint/services/lint/rules"
)

func codes(rs []rules.Rule) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Code())
	}
	return out
}

func TestParseConfig(t *testing.T) {
	t.Run("empty keeps defaults", func(t *testing.T) {
		cfg, err := ParseConfig(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)

		cfg, err = ParseConfig([]byte("# only a comment\n"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("full document", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(`
preset: all
rules:
  exclude: [no-empty]
severity:
  no-debugger: warning
  parse-error: warning
workers: 3
report_faults: true
cache:
  enabled: true
  dir: /tmp/tracelint
`))
		require.NoError(t, err)
		assert.Equal(t, rules.PresetAll, cfg.Preset)
		assert.Equal(t, []string{"no-empty"}, cfg.Rules.Exclude)
		assert.Equal(t, 3, cfg.Workers)
		assert.True(t, cfg.ReportFaults)
		assert.True(t, cfg.Cache.Enabled)

		overrides, err := cfg.SeverityOverrides()
		require.NoError(t, err)
		assert.Equal(t, map[string]diagnostics.Severity{
			"no-debugger": diagnostics.SeverityWarning,
			"parse-error": diagnostics.SeverityWarning,
		}, overrides)
	})

	tests := []struct {
		name  string
		yaml  string
		field string
		rule  bool
	}{
		{name: "unknown key", yaml: "presets: all\n"},
		{name: "bad preset", yaml: "preset: strict\n", field: "Config.Preset"},
		{name: "negative workers", yaml: "workers: -1\n", field: "Config.Workers"},
		{name: "bad severity", yaml: "severity:\n  no-var: loud\n", field: "Config.Severity[no-var]"},
		{name: "unknown severity code", yaml: "severity:\n  no-such-rule: error\n", field: "severity", rule: true},
		{name: "unknown include", yaml: "rules:\n  include: [no-such-rule]\n", field: "rules.include", rule: true},
		{name: "unknown exclude", yaml: "rules:\n  exclude: [no-such-rule]\n", field: "rules.exclude", rule: true},
		{name: "cache without dir", yaml: "cache:\n  enabled: true\n  dir: \"\"\n", field: "Config.Cache.Dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, IsConfigError(err))

			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			if tt.field != "" {
				assert.Equal(t, tt.field, ce.Field)
			}
			if tt.rule {
				assert.ErrorIs(t, err, rules.ErrUnknownRule)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("preset: all\n"), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, rules.PresetAll, cfg.Preset)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(path, []byte("workers: many\n"), 0600))
	_, err = LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.True(t, IsConfigError(err))
}

func TestSelection_Resolve(t *testing.T) {
	t.Run("default is recommended", func(t *testing.T) {
		rs, err := Selection{}.Resolve()
		require.NoError(t, err)
		assert.Equal(t, codes(rules.Recommended()), codes(rs))
	})

	t.Run("codes only", func(t *testing.T) {
		rs, err := Selection{Codes: []string{rules.CodeNoVar, rules.CodeNoDebugger}}.Resolve()
		require.NoError(t, err)
		assert.Equal(t, []string{rules.CodeNoVar, rules.CodeNoDebugger}, codes(rs))
	})

	t.Run("preset plus codes minus exclude", func(t *testing.T) {
		rs, err := Selection{
			Preset:  rules.PresetRecommended,
			Codes:   []string{rules.CodeNoVar, rules.CodeNoDebugger},
			Exclude: []string{rules.CodeNoEmpty},
		}.Resolve()
		require.NoError(t, err)

		got := codes(rs)
		assert.Equal(t, rules.CodeNoVar, got[len(got)-1], "added rules follow the preset")
		assert.NotContains(t, got, rules.CodeNoEmpty)
		assert.Len(t, got, len(rules.Recommended()))
	})

	t.Run("exclude everything", func(t *testing.T) {
		rs, err := Selection{Codes: []string{rules.CodeNoVar}, Exclude: []string{rules.CodeNoVar}}.Resolve()
		require.NoError(t, err)
		assert.Empty(t, rs)
	})

	t.Run("unknown preset", func(t *testing.T) {
		_, err := Selection{Preset: "strict"}.Resolve()
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}
