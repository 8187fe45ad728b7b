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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/tracelint/services/lint/ast"
	"github.com/AleutianAI/tracelint/services/lint/diagnostics"
	"github.com/AleutianAI/tracelint/services/lint/rules"
)

// DefaultConfigFile is the file name the CLI looks for in the working
// directory when no config path is given.
const DefaultConfigFile = ".tracelint.yaml"

// Config configures a Linter.
//
// Description:
//
//	Config is loaded from YAML and validated before use. The zero value is
//	not valid; start from DefaultConfig.
//
// Example:
//
//	preset: recommended
//	rules:
//	  include: [eqeqeq, no-var]
//	  exclude: [no-empty]
//	severity:
//	  no-debugger: warning
//	workers: 8
//	report_faults: true
//	cache:
//	  enabled: true
//	  dir: ~/.cache/tracelint
type Config struct {
	// Preset is the base rule set: "recommended" or "all". Empty with a
	// non-empty Rules.Include selects exactly the included rules.
	Preset string `yaml:"preset" validate:"omitempty,oneof=recommended all"`

	// Rules adjusts the preset.
	Rules RulesConfig `yaml:"rules"`

	// Severity overrides the default severity per rule code.
	Severity map[string]string `yaml:"severity" validate:"dive,keys,required,endkeys,severity"`

	// Workers bounds the number of files linted concurrently. Zero means
	// GOMAXPROCS.
	Workers int `yaml:"workers" validate:"gte=0,lte=1024"`

	// ReportFaults turns rule panics into internal-error diagnostics in
	// addition to fault records.
	ReportFaults bool `yaml:"report_faults"`

	// MaxFileSize is the largest file, in bytes, the parser accepts.
	MaxFileSize int `yaml:"max_file_size" validate:"gte=0"`

	// Cache configures the on-disk result cache.
	Cache CacheConfig `yaml:"cache"`
}

// RulesConfig lists rule codes to add to or remove from the preset.
type RulesConfig struct {
	Include []string `yaml:"include" validate:"dive,required"`
	Exclude []string `yaml:"exclude" validate:"dive,required"`
}

// CacheConfig configures the result cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir" validate:"required_if=Enabled true"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Preset:      rules.PresetRecommended,
		Workers:     runtime.GOMAXPROCS(0),
		MaxFileSize: ast.DefaultMaxFileSize,
		Cache: CacheConfig{
			Dir: "~/.cache/tracelint",
		},
	}
}

var configValidate = func() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("severity", func(fl validator.FieldLevel) bool {
		_, ok := diagnostics.ParseSeverity(fl.Field().String())
		return ok
	})
	return v
}()

// Validate checks field constraints and rule codes.
//
// Outputs:
//
//	error - A *ConfigError wrapping ErrInvalidConfig or rules.ErrUnknownRule.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ConfigError{
				Field: fe.Namespace(),
				Err:   fmt.Errorf("%w: failed %q", ErrInvalidConfig, fe.Tag()),
			}
		}
		return &ConfigError{Err: fmt.Errorf("%w: %v", ErrInvalidConfig, err)}
	}
	if _, err := c.SeverityOverrides(); err != nil {
		return err
	}
	if _, err := c.Selection().Resolve(); err != nil {
		return err
	}
	return nil
}

// Selection returns the rule selection described by the config.
func (c Config) Selection() Selection {
	return Selection{
		Preset:  c.Preset,
		Codes:   c.Rules.Include,
		Exclude: c.Rules.Exclude,
	}
}

// SeverityOverrides parses the severity map.
func (c Config) SeverityOverrides() (map[string]diagnostics.Severity, error) {
	if len(c.Severity) == 0 {
		return nil, nil
	}
	codes := make([]string, 0, len(c.Severity))
	for code := range c.Severity {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make(map[string]diagnostics.Severity, len(codes))
	for _, code := range codes {
		if _, ok := rules.Get(code); !ok && code != CodeInternalError && code != CodeParseError {
			return nil, &ConfigError{Field: "severity", Err: fmt.Errorf("%w: %s", rules.ErrUnknownRule, code)}
		}
		sev, ok := diagnostics.ParseSeverity(c.Severity[code])
		if !ok {
			return nil, &ConfigError{Field: "severity." + code, Err: fmt.Errorf("%w: severity %q", ErrInvalidConfig, c.Severity[code])}
		}
		out[code] = sev
	}
	return out, nil
}

// ParseConfig decodes and validates YAML configuration.
//
// Description:
//
//	Fields absent from data keep their DefaultConfig values. Unknown keys
//	are rejected so typos surface early.
//
// Inputs:
//
//	data - YAML document.
//
// Outputs:
//
//	Config - The decoded configuration.
//	error  - A *ConfigError on decode or validation failure.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(data) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, &ConfigError{Err: fmt.Errorf("%w: %v", ErrInvalidConfig, err)}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}
