// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package rules holds the rule catalog.
//
// Every rule is a stateless value identified by a stable code. The engine
// asks each selected rule for a per-file Visitor and offers it the named
// nodes it declared interest in through KindFilter. Rules that read the
// comment list instead implement CommentChecker.
//
// # Presets
//
//	| Preset      | Contents                                   |
//	|-------------|--------------------------------------------|
//	| recommended | Rules that rarely produce false positives  |
//	| all         | Every rule, a superset of recommended      |
//
// # Constructor analysis
//
// constructor-super and no-this-before-super share a flow-sensitive analysis
// of derived-class constructors. The analysis tracks whether super() has
// run on every path, with a three-valued state (not called, maybe called,
// called) joined at control-flow merges. Nested functions and classes are
// opaque to it.
//
// # Thread Safety
//
// Rules are immutable and safe for concurrent use. Visitors are not; the
// engine creates one per rule per file.
package rules
