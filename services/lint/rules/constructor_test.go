// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/tracelint/services/lint/ast"
)

func ctorMessages(t *testing.T, src string) []string {
	t.Helper()
	return messages(lint(t, "a.js", src, constructorSuper, noThisBeforeSuper))
}

func TestConstructorSuper(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "valid",
			src:  "class A extends B { constructor() { super(); this.x = 1; } }",
			want: []string{},
		},
		{
			name: "this before super",
			src:  "class A extends B { constructor() { this.x = 1; super(); } }",
			want: []string{"'this' is not allowed before 'super()'"},
		},
		{
			name: "super member before super",
			src:  "class A extends B { constructor() { super.init(); super(); } }",
			want: []string{"'super' is not allowed before 'super()'"},
		},
		{
			name: "this in super arguments",
			src:  "class A extends B { constructor() { super(this.x); } }",
			want: []string{"'this' is not allowed before 'super()'"},
		},
		{
			name: "missing on every path",
			src:  "class A extends B { constructor() { } }",
			want: []string{"Expected to call 'super()'"},
		},
		{
			name: "missing on some paths",
			src:  "class A extends B { constructor(x) { if (x) { super(); } } }",
			want: []string{"Lacked a call of 'super()' in some code paths"},
		},
		{
			name: "both branches",
			src:  "class A extends B { constructor(x) { if (x) { super(1); } else { super(2); } } }",
			want: []string{},
		},
		{
			name: "duplicate",
			src:  "class A extends B { constructor() { super(); super(); } }",
			want: []string{"Unexpected duplicate 'super()'"},
		},
		{
			name: "possibly duplicate",
			src:  "class A extends B { constructor(x) { if (x) super(); super(); } }",
			want: []string{"'super()' may already have been called on some paths"},
		},
		{
			name: "this after conditional super",
			src:  "class A extends B { constructor(x) { if (x) super(); this.y = 1; } }",
			want: []string{"'this' is not allowed before 'super()'", "Lacked a call of 'super()' in some code paths"},
		},
		{
			name: "early return",
			src:  "class A extends B { constructor(x) { if (x) return; super(); } }",
			want: []string{"Expected to call 'super()'"},
		},
		{
			name: "throw ends the path",
			src:  "class A extends B { constructor(x) { if (!x) throw new Error('x'); super(); } }",
			want: []string{},
		},
		{
			name: "super in loop",
			src:  "class A extends B { constructor(xs) { while (xs.length) { super(); } } }",
			want: []string{"'super()' may already have been called on some paths", "Lacked a call of 'super()' in some code paths"},
		},
		{
			name: "infinite loop exits through break",
			src:  "class A extends B { constructor() { for (;;) { super(); break; } } }",
			want: []string{},
		},
		{
			name: "do while false runs once",
			src:  "class A extends B { constructor() { do { super(); } while (false); } }",
			want: []string{},
		},
		{
			name: "do while loops call again",
			src:  "class A extends B { constructor(x) { do { super(); } while (x); } }",
			want: []string{"Unexpected duplicate 'super()'"},
		},
		{
			name: "break before super",
			src:  "class A extends B { constructor(x) { while (true) { if (x) break; super(); break; } } }",
			want: []string{"Lacked a call of 'super()' in some code paths"},
		},
		{
			name: "switch with default",
			src:  "class A extends B { constructor(k) { switch (k) { case 1: super(1); break; default: super(0); } } }",
			want: []string{},
		},
		{
			name: "switch without default",
			src:  "class A extends B { constructor(k) { switch (k) { case 1: super(1); } } }",
			want: []string{"Lacked a call of 'super()' in some code paths"},
		},
		{
			name: "catch after super in try",
			src:  "class A extends B { constructor() { try { super(); } catch (e) { super(); } } }",
			want: []string{"'super()' may already have been called on some paths"},
		},
		{
			name: "logical super",
			src:  "class A extends B { constructor(x) { x && super(); } }",
			want: []string{"Lacked a call of 'super()' in some code paths"},
		},
		{
			name: "arrow functions are not analyzed",
			src:  "class A extends B { constructor() { const f = () => this.x; super(); f(); } }",
			want: []string{},
		},
		{
			name: "non-derived class",
			src:  "class A { constructor() { this.x = 1; } }",
			want: []string{},
		},
		{
			name: "derived class without constructor",
			src:  "class A extends B { m() { this.x = 1; } }",
			want: []string{},
		},
		{
			name: "class expression",
			src:  "const A = class extends B { constructor() { this.x = 1; super(); } };",
			want: []string{"'this' is not allowed before 'super()'"},
		},
		{
			name: "nested classes are analyzed separately",
			src:  "class A extends B { constructor() { super(); class C extends D { constructor() { this.x = 1; } } } }",
			want: []string{"'this' is not allowed before 'super()'", "Expected to call 'super()'"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ctorMessages(t, tt.src))
		})
	}
}

func TestConstructorRules_Spans(t *testing.T) {
	span := func(src, sub string, last bool) ast.Span {
		i := strings.Index(src, sub)
		if last {
			i = strings.LastIndex(src, sub)
		}
		require.GreaterOrEqual(t, i, 0, sub)
		return ast.Span{Start: i, End: i + len(sub)}
	}

	t.Run("valid", func(t *testing.T) {
		src := "class A extends B { constructor() { super(); this.x = 1; } }"
		assert.Empty(t, lint(t, "a.js", src, constructorSuper, noThisBeforeSuper))
	})

	t.Run("this member before super", func(t *testing.T) {
		src := "class A extends B { constructor() { this.x = 1; super(); } }"
		diags := lint(t, "a.js", src, constructorSuper, noThisBeforeSuper)
		require.Len(t, diags, 1)
		assert.Equal(t, CodeNoThisBeforeSuper, diags[0].Code)
		assert.Equal(t, span(src, "this.x", false), diags[0].Span)
	})

	t.Run("super member before super", func(t *testing.T) {
		src := "class A extends B { constructor() { super.init(); super(); } }"
		diags := lint(t, "a.js", src, noThisBeforeSuper)
		require.Len(t, diags, 1)
		assert.Equal(t, span(src, "super.init", false), diags[0].Span)
	})

	t.Run("bare this before super", func(t *testing.T) {
		src := "class A extends B { constructor() { f(this); super(); } }"
		diags := lint(t, "a.js", src, noThisBeforeSuper)
		require.Len(t, diags, 1)
		assert.Equal(t, span(src, "this", false), diags[0].Span)
	})

	t.Run("missing on some paths", func(t *testing.T) {
		src := "class A extends B { constructor(c) { if (c) { super(); } } }"
		diags := lint(t, "a.js", src, constructorSuper, noThisBeforeSuper)
		require.Len(t, diags, 1)
		assert.Equal(t, CodeConstructorSuper, diags[0].Code)
		closing := strings.LastIndex(src, "} }")
		assert.Equal(t, ast.Span{Start: closing, End: closing + 1}, diags[0].Span)
	})

	t.Run("duplicate", func(t *testing.T) {
		src := "class A extends B { constructor() { super(); super(); } }"
		diags := lint(t, "a.js", src, constructorSuper, noThisBeforeSuper)
		require.Len(t, diags, 1)
		assert.Equal(t, "Unexpected duplicate 'super()'", diags[0].Message)
		assert.Equal(t, span(src, "super()", true), diags[0].Span)
	})
}

func TestConstructorSuper_MissingReportedAtClosingBrace(t *testing.T) {
	src := "class A extends B {\n  constructor() {\n    foo();\n  }\n}\n"
	diags := lint(t, "a.js", src, constructorSuper)

	require.Len(t, diags, 1)
	assert.Equal(t, CodeConstructorSuper, diags[0].Code)
	assert.Equal(t, ast.Position{Line: 4, Column: 3}, diags[0].Start)
}

func TestConstructorSuper_TypeScript(t *testing.T) {
	src := "" +
		"class A extends B<number> {\n" +
		"  constructor(private readonly n: number);\n" +
		"  constructor(private readonly n: number) {\n" +
		"    this.n = n;\n" +
		"    super();\n" +
		"  }\n" +
		"}\n"
	diags := lint(t, "a.ts", src, constructorSuper, noThisBeforeSuper)

	require.Len(t, diags, 1)
	assert.Equal(t, CodeNoThisBeforeSuper, diags[0].Code)
	assert.Equal(t, 4, diags[0].Start.Line)
}

func TestConstructorRules_SplitKinds(t *testing.T) {
	src := "class A extends B { constructor() { this.x = 1; } }"

	assert.Equal(t, []string{"Expected to call 'super()'"}, messages(lint(t, "a.js", src, constructorSuper)))
	assert.Equal(t, []string{"'this' is not allowed before 'super()'"}, messages(lint(t, "a.js", src, noThisBeforeSuper)))
}

func TestJoin(t *testing.T) {
	called := flowState{reachable: true, super: superCalled}
	notCalled := entryState()

	assert.Equal(t, called, join(called, called))
	assert.Equal(t, notCalled, join(notCalled, notCalled))
	assert.Equal(t, superMaybeCalled, join(called, notCalled).super)
	assert.Equal(t, called, join(unreachable, called))
	assert.Equal(t, notCalled, join(notCalled, unreachable))
	assert.False(t, join(unreachable, unreachable).reachable)
	assert.Equal(t, "maybe-called", superMaybeCalled.String())
}
