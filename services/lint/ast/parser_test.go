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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, path, src string) *Module {
	t.Helper()
	m, err := NewParser().Parse(context.Background(), []byte(src), path)
	require.NoError(t, err)
	return m
}

func TestLanguageFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"a.js", LanguageJavaScript},
		{"a.MJS", LanguageJavaScript},
		{"a.jsx", LanguageJavaScript},
		{"a.ts", LanguageTypeScript},
		{"a.d.ts", LanguageTypeScript},
		{"a.tsx", LanguageTSX},
		{"a.py", ""},
		{"Makefile", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, LanguageFromPath(tt.path))
		})
	}
	assert.Len(t, Extensions(), 8)
}

func TestParser_Parse(t *testing.T) {
	src := "const a = 1; // trailing\n/* block */\nfunction f() { return a; }\n"
	m := mustParse(t, "x.js", src)

	assert.Equal(t, LanguageJavaScript, m.Language)
	assert.Equal(t, KindProgram, m.Root.Kind)
	assert.NotEmpty(t, m.Hash)
	require.Len(t, m.Comments, 2)

	assert.Equal(t, CommentLine, m.Comments[0].Kind)
	assert.True(t, m.Comments[0].Trailing)
	assert.Equal(t, " trailing", m.Comments[0].Body())
	assert.Equal(t, 1, m.Comments[0].Line)

	assert.Equal(t, CommentBlock, m.Comments[1].Kind)
	assert.False(t, m.Comments[1].Trailing)
	assert.Equal(t, " block ", m.Comments[1].Body())
	assert.Equal(t, 2, m.Comments[1].Line)

	for n := range PreOrder(m.Root) {
		assert.NotEqual(t, KindComment, n.Kind, "comments are kept out of the tree")
		assert.True(t, n.Named)
	}
}

func TestParser_TypeScript(t *testing.T) {
	m := mustParse(t, "x.ts", "interface A { x: number }\nlet v = <any>1 as const;\n")
	assert.Equal(t, LanguageTypeScript, m.Language)
	assert.True(t, m.Language.IsTypeScript())

	var kinds []Kind
	Inspect(m.Root, func(n *Node) bool {
		kinds = append(kinds, n.Kind)
		return true
	})
	assert.Contains(t, kinds, KindInterfaceDeclaration)
}

func TestParser_TSX(t *testing.T) {
	m := mustParse(t, "x.tsx", "const el = <div className=\"a\">{1}</div>;\n")
	assert.Equal(t, LanguageTSX, m.Language)
}

func TestParser_SyntaxError(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), []byte("let x = ;\nfoo(\n"), "bad.js")
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrParseFailed))
	assert.True(t, IsParseError(err))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "bad.js", perr.FilePath)
	assert.Equal(t, 1, perr.Line)
	assert.Contains(t, perr.Error(), "bad.js:1:")
}

func TestParser_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := NewParser().Parse(ctx, []byte("x"), "a.rb")
		assert.True(t, IsUnsupportedLanguage(err))
	})

	t.Run("too large", func(t *testing.T) {
		p := NewParser(WithMaxFileSize(8))
		_, err := p.Parse(ctx, []byte(strings.Repeat("a;", 10)), "a.js")
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("invalid utf8", func(t *testing.T) {
		_, err := NewParser().Parse(ctx, []byte{'a', 0xff, ';'}, "a.js")
		assert.ErrorIs(t, err, ErrInvalidContent)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := NewParser().Parse(cctx, []byte("a;"), "a.js")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNode_Navigation(t *testing.T) {
	m := mustParse(t, "x.js", "if ((a)) { b = a + 1; }\n")

	var bin, paren *Node
	Inspect(m.Root, func(n *Node) bool {
		switch n.Kind {
		case KindBinaryExpression:
			bin = n
		case KindParenthesizedExpression:
			if paren == nil {
				paren = n
			}
		}
		return true
	})
	require.NotNil(t, bin)
	require.NotNil(t, paren)

	assert.Equal(t, "+", bin.Operator())
	assert.Equal(t, "a", bin.ChildByField("left").Text())
	assert.Equal(t, "1", bin.ChildByField("right").Text())
	assert.Equal(t, "a", paren.Unparen().Text())
	assert.NotNil(t, bin.Ancestor([]Kind{KindIfStatement}, nil))
	assert.Nil(t, bin.Ancestor([]Kind{KindIfStatement}, []Kind{KindStatementBlock}))
	assert.Same(t, m, bin.Module())
}

func TestInspectFunctionBody(t *testing.T) {
	m := mustParse(t, "x.js", "function f() { a(); function g() { b(); } class C { m() { c(); } } }\n")

	fn := m.Root.NamedChildren()[0]
	require.Equal(t, KindFunctionDeclaration, fn.Kind)

	var calls []string
	InspectFunctionBody(fn, func(n *Node) bool {
		if n.Kind == KindCallExpression {
			calls = append(calls, n.Text())
		}
		return true
	})
	assert.Equal(t, []string{"a()"}, calls)
}

func TestPreOrder_Break(t *testing.T) {
	m := mustParse(t, "x.js", "a; b; c;\n")
	count := 0
	for range PreOrder(m.Root) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestLineIndex(t *testing.T) {
	li := NewLineIndex([]byte("ab\nçd\n\nx"))

	assert.Equal(t, 4, li.LineCount())
	assert.Equal(t, Position{Line: 1, Column: 1}, li.Position(0))
	assert.Equal(t, Position{Line: 2, Column: 1}, li.Position(3))
	assert.Equal(t, Position{Line: 2, Column: 2}, li.Position(5), "columns count runes")
	assert.Equal(t, 3, li.Line(7))
	assert.Equal(t, 4, li.Line(100), "offsets clamp to the end")
	assert.Equal(t, Span{Start: 3, End: 6}, li.LineSpan(2))
}

func TestSpan(t *testing.T) {
	s := Span{Start: 2, End: 10}
	assert.Equal(t, 8, s.Len())
	assert.True(t, s.Contains(Span{Start: 2, End: 10}))
	assert.True(t, s.Contains(Span{Start: 3, End: 4}))
	assert.False(t, s.Contains(Span{Start: 1, End: 4}))
}
