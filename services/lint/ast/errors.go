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
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedLanguage indicates that no grammar is available for the
	// requested file extension.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrParseFailed indicates that the source has syntax errors and no
	// module was produced. The accompanying *ParseError locates the first one.
	ErrParseFailed = errors.New("parse failed")

	// ErrInvalidContent indicates that the content is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid content")

	// ErrFileTooLarge indicates that the content exceeds the parser's size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// ParseError describes where parsing failed.
type ParseError struct {
	// FilePath is the path of the file being parsed.
	FilePath string

	// Span covers the first erroneous or missing node.
	Span Span

	// Line is the 1-indexed line of Span.Start. Zero when unknown.
	Line int

	// Column is the 1-indexed column of Span.Start. Zero when unknown.
	Column int

	// Message describes the error in human-readable form.
	Message string

	// Cause is the underlying error. May be nil.
	Cause error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.FilePath, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// IsParseError reports whether err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// IsUnsupportedLanguage reports whether err wraps ErrUnsupportedLanguage.
func IsUnsupportedLanguage(err error) bool {
	return errors.Is(err, ErrUnsupportedLanguage)
}
