// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"sort"
	"unicode/utf8"
)

// Position is a 1-indexed line and column. Columns count runes.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// LineIndex translates byte offsets into line/column positions.
//
// Thread Safety: Immutable after construction.
type LineIndex struct {
	src    []byte
	starts []int
}

// NewLineIndex records the start offset of every line in src.
func NewLineIndex(src []byte) *LineIndex {
	starts := make([]int, 1, 64)
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{src: src, starts: starts}
}

// LineCount returns the number of lines, counting a trailing partial line.
func (li *LineIndex) LineCount() int {
	return len(li.starts)
}

// Line returns the 1-indexed line containing offset.
func (li *LineIndex) Line(offset int) int {
	offset = li.clamp(offset)
	return sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset })
}

// Position returns the line and rune column of offset.
func (li *LineIndex) Position(offset int) Position {
	offset = li.clamp(offset)
	line := li.Line(offset)
	start := li.starts[line-1]
	return Position{Line: line, Column: utf8.RuneCount(li.src[start:offset]) + 1}
}

// LineSpan returns the byte span of a 1-indexed line excluding its newline.
func (li *LineIndex) LineSpan(line int) Span {
	if line < 1 || line > len(li.starts) {
		return Span{}
	}
	start := li.starts[line-1]
	end := len(li.src)
	if line < len(li.starts) {
		end = li.starts[line] - 1
	}
	if end > start && li.src[end-1] == '\r' {
		end--
	}
	return Span{Start: start, End: end}
}

func (li *LineIndex) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(li.src) {
		return len(li.src)
	}
	return offset
}
