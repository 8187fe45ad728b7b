// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine runs lint rules over JavaScript and TypeScript sources.
//
// A file moves through four stages:
//
//	parse -> dispatch -> suppress -> sort
//
// Parsing produces an ast.Module. The Dispatcher walks the module once and
// offers each node to the rules that declared interest in its kind; comment
// rules run after the walk. Diagnostics then pass through the file's
// suppression index (see package suppress) and are sorted by position.
//
// A rule that panics is isolated: its partial output from the failing call
// is discarded, a diagnostics.Fault is recorded on the result, and every
// other rule's findings are kept.
//
// Configuration comes from a YAML file (see Config) and selects a preset,
// extra or excluded rules, severity overrides, a worker count and an
// optional on-disk result cache.
//
// # Thread Safety
//
// Linter and Dispatcher are safe for concurrent use. Each file gets its own
// diagnostics.Context.
package engine
