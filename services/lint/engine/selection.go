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
	"fmt"

	"github.com/AleutianAI/tracelint/services/lint/rules"
)

// Selection chooses the rules a Linter runs.
//
// Description:
//
//	Preset picks the base set. Codes are added to it, or form the whole set
//	when Preset is empty. Exclude is removed last. Every code must exist in
//	the catalog.
type Selection struct {
	Preset  string
	Codes   []string
	Exclude []string
}

// Resolve returns the selected rules in catalog order for presets, followed
// by explicitly added rules in the order given.
//
// Outputs:
//
//	[]rules.Rule - The selected rules. May be empty.
//	error        - A *ConfigError wrapping rules.ErrUnknownRule.
func (s Selection) Resolve() ([]rules.Rule, error) {
	var base []rules.Rule
	if s.Preset != "" || len(s.Codes) == 0 {
		var err error
		base, err = rules.Preset(s.Preset)
		if err != nil {
			return nil, &ConfigError{Field: "preset", Err: fmt.Errorf("%w: %v", ErrInvalidConfig, err)}
		}
	}

	extra, err := rules.Lookup(s.Codes)
	if err != nil {
		return nil, &ConfigError{Field: "rules.include", Err: err}
	}
	excluded, err := rules.Lookup(s.Exclude)
	if err != nil {
		return nil, &ConfigError{Field: "rules.exclude", Err: err}
	}

	drop := make(map[string]bool, len(excluded))
	for _, r := range excluded {
		drop[r.Code()] = true
	}

	out := make([]rules.Rule, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, group := range [][]rules.Rule{base, extra} {
		for _, r := range group {
			if drop[r.Code()] || seen[r.Code()] {
				continue
			}
			seen[r.Code()] = true
			out = append(out, r)
		}
	}
	return out, nil
}
