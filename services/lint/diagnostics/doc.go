// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package diagnostics defines lint findings and the per-file sink rules
// report them into.
//
// # Severity Mapping
//
//	| Severity | Meaning                      |
//	|----------|------------------------------|
//	| error    | Fails a CI check             |
//	| warning  | Should be reviewed           |
//	| info     | Style or informational       |
//
// # Usage
//
//	ctx := diagnostics.NewContext(module, nil)
//	rep := ctx.Reporter("no-debugger", diagnostics.SeverityError)
//	rep.Report(node.Span, "`debugger` statement is not allowed")
//	diags := ctx.Diagnostics()
//	diagnostics.Sort(diags)
package diagnostics
