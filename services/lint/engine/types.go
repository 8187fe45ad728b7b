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
	"context"
	"time"

	"github.com/AleutianAI/tracelint/services/lint/ast"
	"github.com/AleutianAI/tracelint/services/lint/diagnostics"
)

// Source is one in-memory file to lint.
type Source struct {
	Path    string
	Content []byte
}

// FileResult is the outcome of linting one file.
type FileResult struct {
	// Path is the file path as given.
	Path string `json:"path" msgpack:"path"`

	// Language is the grammar used. Empty when the file was not parsed.
	Language ast.Language `json:"language,omitempty" msgpack:"language"`

	// Diagnostics are the findings that survived suppression, sorted by
	// span start, span end, code and message.
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics" msgpack:"diagnostics"`

	// Faults records rule panics. Faults never abort the file.
	Faults []diagnostics.Fault `json:"faults,omitempty" msgpack:"faults,omitempty"`

	// Suppressed is the number of findings dropped by directives.
	Suppressed int `json:"suppressed" msgpack:"suppressed"`

	// ParseFailed is true when the file could not be parsed. Diagnostics
	// then holds exactly one parse-error finding and no rule ran.
	ParseFailed bool `json:"parse_failed,omitempty" msgpack:"parse_failed,omitempty"`

	// Error is set by LintFiles when the file could not be linted at all,
	// e.g. an unsupported extension.
	Error string `json:"error,omitempty" msgpack:"-"`

	// Cached is true when the result came from the result cache.
	Cached bool `json:"cached,omitempty" msgpack:"-"`

	// Duration is the wall time spent on the file.
	Duration time.Duration `json:"duration_ns" msgpack:"duration"`
}

// Count returns the number of diagnostics at each severity.
func (r *FileResult) Count() (errs, warnings, infos int) {
	for _, d := range r.Diagnostics {
		switch d.Severity {
		case diagnostics.SeverityError:
			errs++
		case diagnostics.SeverityWarning:
			warnings++
		default:
			infos++
		}
	}
	return errs, warnings, infos
}

// HasErrors reports whether any diagnostic has error severity.
func (r *FileResult) HasErrors() bool {
	errs, _, _ := r.Count()
	return errs > 0
}

// Cache stores file results between runs.
//
// Implementations must be safe for concurrent use. Lookup returns false
// without an error on a miss.
type Cache interface {
	Lookup(ctx context.Context, key string) (*FileResult, bool, error)
	Store(ctx context.Context, key string, res *FileResult) error
}
