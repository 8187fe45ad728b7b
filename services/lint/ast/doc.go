// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ast parses JavaScript and TypeScript source into an immutable
// syntax tree for the lint engine.
//
// Parsing is delegated to tree-sitter. The tree-sitter tree is converted
// into plain Go values (Module, Node, Comment) so that rules can hold node
// pointers freely, the tree can be shared across goroutines, and tests can
// build or inspect trees without cgo handles.
//
// # Grammars
//
//	| Extension              | Language   |
//	|------------------------|------------|
//	| .js .mjs .cjs .jsx     | javascript |
//	| .ts .mts .cts          | typescript |
//	| .tsx                   | tsx        |
//
// # Comments
//
// Tree-sitter reports comments as extra nodes that may appear under any
// parent. The converter lifts them out of the tree into Module.Comments in
// source order, recording whether each one trails code on its line.
//
// # Syntax errors
//
// Trees containing ERROR or MISSING nodes are rejected with a *ParseError
// wrapping ErrParseFailed. Linting never runs on a partial tree.
package ast
