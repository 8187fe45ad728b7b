// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command tracelint lints JavaScript and TypeScript sources.
//
// Usage:
//
//	tracelint check [paths...]       Lint files and directories
//	tracelint rules                  List available rules
//	tracelint watch [dirs...]        Re-lint files as they change
//
// Exit codes: 0 when no error-severity findings, 1 when there are, 2 on
// usage or configuration errors.
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
