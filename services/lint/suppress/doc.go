// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package suppress resolves inline suppression directives.
//
// # Syntax
//
//	// tracelint-ignore no-debugger, no-eval   suppress the listed codes
//	// tracelint-ignore no-debugger -- vendored suppress with a reason
//	// tracelint-ignore-all                     suppress every code
//	// tracelint-ignore                         untagged: reported, suppresses nothing
//
// A directive in a comment that follows code on the same line applies to
// that line; otherwise it applies to the next line holding code.
package suppress
