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
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

const (
	// DefaultMaxFileSize is the default upper bound on parsed content.
	DefaultMaxFileSize = 10 * 1024 * 1024

	// WarnFileSize logs a warning for files larger than this.
	WarnFileSize = 1024 * 1024
)

// extensionLanguages maps file extensions to grammars.
var extensionLanguages = map[string]Language{
	".js":  LanguageJavaScript,
	".mjs": LanguageJavaScript,
	".cjs": LanguageJavaScript,
	".jsx": LanguageJavaScript,
	".ts":  LanguageTypeScript,
	".mts": LanguageTypeScript,
	".cts": LanguageTypeScript,
	".tsx": LanguageTSX,
}

// LanguageFromPath returns the grammar for a file path, or "" if unsupported.
func LanguageFromPath(path string) Language {
	return extensionLanguages[strings.ToLower(filepath.Ext(path))]
}

// Extensions returns every supported file extension.
func Extensions() []string {
	exts := make([]string, 0, len(extensionLanguages))
	for ext := range extensionLanguages {
		exts = append(exts, ext)
	}
	return exts
}

// Parser builds Modules from JavaScript and TypeScript source.
//
// Description:
//
//	Parser uses tree-sitter to parse source and converts the resulting
//	tree into an immutable Module. Tree-sitter recovers from syntax errors;
//	Parser does not, and rejects any tree containing ERROR or MISSING nodes
//	with a *ParseError wrapping ErrParseFailed, so rules only ever see
//	well-formed trees.
//
// Thread Safety:
//
//	Parser is safe for concurrent use. Each Parse call creates its own
//	tree-sitter parser instance.
type Parser struct {
	maxFileSize int
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithMaxFileSize sets the maximum content size in bytes.
func WithMaxFileSize(size int) ParserOption {
	return func(p *Parser) {
		if size > 0 {
			p.maxFileSize = size
		}
	}
}

// NewParser creates a Parser.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses content using the grammar selected by filePath's extension.
//
// Description:
//
//	Selects the grammar from the file extension and delegates to
//	ParseLanguage.
//
// Inputs:
//
//	ctx      - Context for cancellation.
//	content  - Raw source bytes. Must be valid UTF-8.
//	filePath - Path used for grammar selection and error messages.
//
// Outputs:
//
//	*Module - The parsed module. Nil on error.
//	error   - ErrUnsupportedLanguage, ErrFileTooLarge, ErrInvalidContent,
//	          or a *ParseError wrapping ErrParseFailed.
func (p *Parser) Parse(ctx context.Context, content []byte, filePath string) (*Module, error) {
	lang := LanguageFromPath(filePath)
	if lang == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, filepath.Ext(filePath))
	}
	return p.ParseLanguage(ctx, content, filePath, lang)
}

// ParseLanguage parses content with an explicit grammar.
//
// Thread Safety: Safe for concurrent use.
func (p *Parser) ParseLanguage(ctx context.Context, content []byte, filePath string, lang Language) (*Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}

	grammar, err := grammarFor(lang)
	if err != nil {
		return nil, err
	}

	if len(content) > p.maxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), p.maxFileSize)
	}
	if len(content) > WarnFileSize {
		slog.Warn("parsing large file",
			slog.String("file", filePath),
			slog.Int("size_bytes", len(content)))
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}

	ctx, span := startParseSpan(ctx, lang, filePath, len(content))
	defer span.End()
	start := time.Now()

	parser := sitter.NewParser()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		recordParseMetrics(ctx, lang, time.Since(start), 0, false)
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	lines := NewLineIndex(content)
	if root == nil {
		recordParseMetrics(ctx, lang, time.Since(start), 0, false)
		return nil, &ParseError{FilePath: filePath, Message: "empty syntax tree", Cause: ErrParseFailed}
	}
	if root.HasError() {
		recordParseMetrics(ctx, lang, time.Since(start), 0, false)
		return nil, syntaxError(root, lines, filePath)
	}

	hash := sha256.Sum256(content)
	m := &Module{
		Path:     filePath,
		Language: lang,
		Source:   content,
		Hash:     hex.EncodeToString(hash[:]),
		Lines:    lines,
	}
	b := &builder{module: m}
	m.Root = b.convert(root, nil, "")

	setParseSpanResult(span, b.count, len(m.Comments))
	recordParseMetrics(ctx, lang, time.Since(start), b.count, true)

	return m, nil
}

func grammarFor(lang Language) (*sitter.Language, error) {
	switch lang {
	case LanguageJavaScript:
		return javascript.GetLanguage(), nil
	case LanguageTypeScript:
		return typescript.GetLanguage(), nil
	case LanguageTSX:
		return tsx.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
}

// syntaxError locates the first ERROR or MISSING node in pre-order.
func syntaxError(root *sitter.Node, lines *LineIndex, filePath string) error {
	bad := findErrorNode(root)
	perr := &ParseError{FilePath: filePath, Message: "syntax error", Cause: ErrParseFailed}
	if bad == nil {
		return perr
	}
	perr.Span = Span{Start: int(bad.StartByte()), End: int(bad.EndByte())}
	pos := lines.Position(perr.Span.Start)
	perr.Line, perr.Column = pos.Line, pos.Column
	if bad.IsMissing() {
		perr.Message = fmt.Sprintf("missing %s", bad.Type())
	} else {
		perr.Message = "unexpected token"
	}
	return perr
}

func findErrorNode(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.IsMissing() || n.Type() == string(KindError) {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := findErrorNode(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

// builder converts tree-sitter nodes into Nodes and collects comments.
type builder struct {
	module *Module
	count  int
}

func (b *builder) convert(sn *sitter.Node, parent *Node, field string) *Node {
	n := &Node{
		Kind:   Kind(sn.Type()),
		Span:   Span{Start: int(sn.StartByte()), End: int(sn.EndByte())},
		Named:  sn.IsNamed(),
		Field:  field,
		Parent: parent,
		module: b.module,
	}
	b.count++

	count := int(sn.ChildCount())
	if count == 0 {
		return n
	}
	n.Children = make([]*Node, 0, count)
	for i := 0; i < count; i++ {
		child := sn.Child(i)
		if child == nil {
			continue
		}
		if child.Type() == string(KindComment) {
			b.addComment(child)
			continue
		}
		n.Children = append(n.Children, b.convert(child, n, sn.FieldNameForChild(i)))
	}
	return n
}

func (b *builder) addComment(sn *sitter.Node) {
	m := b.module
	span := Span{Start: int(sn.StartByte()), End: int(sn.EndByte())}
	raw := string(m.Source[span.Start:span.End])

	kind := CommentLine
	if strings.HasPrefix(raw, "/*") {
		kind = CommentBlock
	}

	line := m.Lines.Line(span.Start)
	lineStart := m.Lines.LineSpan(line).Start
	leading := strings.TrimSpace(string(m.Source[lineStart:span.Start]))

	m.Comments = append(m.Comments, Comment{
		Kind:     kind,
		Span:     span,
		Raw:      raw,
		Line:     line,
		Trailing: leading != "" && !strings.HasSuffix(leading, "*/"),
	})
}
