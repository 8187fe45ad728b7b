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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/tracelint/services/lint/ast"
	"github.com/AleutianAI/tracelint/services/lint/diagnostics"
)

// lint runs rs over src the way the engine does, without fault isolation,
// so a panicking rule fails the test.
func lint(t *testing.T, path, src string, rs ...Rule) []diagnostics.Diagnostic {
	t.Helper()
	m, err := ast.NewParser().Parse(context.Background(), []byte(src), path)
	require.NoError(t, err)

	dctx := diagnostics.NewContext(m, nil)
	for _, r := range rs {
		rep := dctx.Reporter(r.Code(), r.Severity())
		if v := r.NewVisitor(rep, m); v != nil {
			var kinds map[ast.Kind]bool
			if kf, ok := r.(KindFilter); ok {
				kinds = make(map[ast.Kind]bool)
				for _, k := range kf.Kinds() {
					kinds[k] = true
				}
			}
			ast.Inspect(m.Root, func(n *ast.Node) bool {
				if kinds == nil || kinds[n.Kind] {
					v.Visit(n)
				}
				return true
			})
			if f, ok := v.(Finisher); ok {
				f.Finish()
			}
		}
		if cc, ok := r.(CommentChecker); ok {
			cc.CheckComments(rep, m)
		}
	}
	diags := dctx.Diagnostics()
	diagnostics.Sort(diags)
	return diags
}

func messages(diags []diagnostics.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Message)
	}
	return out
}

func TestRules_Representative(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		path string
		src  string
		want int
	}{
		{"debugger", noDebugger, "a.js", "debugger;\nfunction f() { debugger; }\n", 2},
		{"for direction wrong", forDirection, "a.js", "for (let i = 0; i < 10; i--) {}\n", 1},
		{"for direction right", forDirection, "a.js", "for (let i = 10; i > 0; i -= 1) {}\n", 0},
		{"getter without return", getterReturn, "a.js", "class A { get x() {} }\n", 1},
		{"getter with return", getterReturn, "a.js", "class A { get x() { return 1; } }\n", 0},
		{"setter return", noSetterReturn, "a.js", "class A { set x(v) { return v; } }\n", 1},
		{"async executor", noAsyncPromiseExecutor, "a.js", "new Promise(async (resolve) => {});\nnew Promise((resolve) => {});\n", 1},
		{"default param first", defaultParamLast, "a.js", "function f(a = 1, b) {}\nfunction g(a, b = 1, ...c) {}\n", 1},
		{"loose equality", eqeqeq, "a.js", "a == b;\na === b;\na != null;\n", 2},
		{"array constructor", noArrayConstructor, "a.js", "new Array(1, 2);\nnew Array(5);\nArray();\n", 2},
		{"await in loop", noAwaitInLoop, "a.js", "async function f(xs) { for (const x of xs) { await x; } await xs; }\n", 1},
		{"await in nested function", noAwaitInLoop, "a.js", "for (;;) { async function g() { await 1; } }\n", 0},
		{"case declaration", noCaseDeclarations, "a.js", "switch (x) { case 1: let y = 1; break; case 2: { let z = 2; } }\n", 1},
		{"var", noVar, "a.js", "var a;\nlet b;\nconst c = 1;\n", 1},
		{"single declarator", singleVarDeclarator, "a.js", "let a = 1, b = 2;\nlet c = 3;\n", 1},
		{"extra semicolon", noExtraSemi, "a.js", "a();;\n", 1},
		{"empty pattern", noEmptyPattern, "a.js", "const {} = obj;\nconst [] = arr;\nconst {a} = obj;\n", 2},
		{"wrapper type", banTypes, "a.ts", "let a: String;\nlet b: string;\n", 1},
		{"missing return type", explicitFunctionReturnType, "a.ts", "function f() {}\nfunction g(): void {}\n", 1},
		{"return type in javascript", explicitFunctionReturnType, "a.js", "function f() {}\n", 0},
		{"explicit any", noExplicitAny, "a.ts", "let a: any;\nlet b: unknown;\n", 1},
		{"non-null assertion", noNonNullAssertion, "a.ts", "a!.b;\nc!!;\n", 2},
		{"extra non-null assertion", noExtraNonNullAssertion, "a.ts", "c!!;\n", 1},
		{"empty interface", noEmptyInterface, "a.ts", "interface A {}\ninterface B { x: number }\n", 1},
		{"ts-ignore comment", banTSComment, "a.ts", "// @ts-ignore\nlet a = 1;\n", 1},
		{"ts-expect-error without reason", banTSComment, "a.ts", "// @ts-expect-error\nlet a = 1;\n// @ts-expect-error: upstream bug\nlet b = 2;\n", 1},
		{"ts-ignore only", banTSIgnore, "a.ts", "// @ts-ignore\n// @ts-expect-error\nlet a = 1;\n", 1},
		{"triple slash", banTripleSlashReference, "a.ts", "/// <reference path=\"a.d.ts\" />\n// not a reference\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := lint(t, tt.path, tt.src, tt.rule)
			assert.Len(t, diags, tt.want, messages(diags))
			for _, d := range diags {
				assert.Equal(t, tt.rule.Code(), d.Code)
				assert.Equal(t, tt.rule.Severity(), d.Severity)
				assert.NotEmpty(t, d.Hint)
			}
		})
	}
}

func TestAssignRules(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		src  string
		want []string
	}{
		{
			name: "const reassigned",
			rule: noConstAssign,
			src:  "const a = 1;\na = 2;\na++;\n",
			want: []string{"'a' is constant", "'a' is constant"},
		},
		{
			name: "shadowed const",
			rule: noConstAssign,
			src:  "const a = 1;\n{ let a = 0; a = 2; }\nfunction f(a) { a = 3; }\n",
			want: []string{},
		},
		{
			name: "destructuring write",
			rule: noConstAssign,
			src:  "const a = 1;\n({ a } = obj);\n",
			want: []string{"'a' is constant"},
		},
		{
			name: "function reassigned",
			rule: noFuncAssign,
			src:  "function f() {}\nf = 1;\n",
			want: []string{"'f' is a function and cannot be reassigned"},
		},
		{
			name: "hoisted function",
			rule: noFuncAssign,
			src:  "f = 1;\nfunction f() {}\n",
			want: []string{"'f' is a function and cannot be reassigned"},
		},
		{
			name: "class reassigned",
			rule: noClassAssign,
			src:  "class C {}\nC = 1;\n",
			want: []string{"'C' is a class and cannot be reassigned"},
		},
		{
			name: "catch parameter reassigned",
			rule: noExAssign,
			src:  "try {} catch (e) { e = 1; }\n",
			want: []string{"Reassigning exception parameter is not allowed"},
		},
		{
			name: "global write",
			rule: noConstAssign,
			src:  "g = 1;\n",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, messages(lint(t, "a.js", tt.src, tt.rule)))
		})
	}
}

func TestNoShadowRestrictedNames(t *testing.T) {
	diags := lint(t, "a.js", "function f(NaN) {}\nlet Infinity = 1;\nlet ok = 2;\n", noShadowRestrictedNames)
	assert.Equal(t, []string{
		"Shadowing of global property 'NaN'",
		"Shadowing of global property 'Infinity'",
	}, messages(diags))
}

// TestAll_NoPanics runs the whole catalog over mixed inputs. The harness has
// no recover, so any rule that panics fails the test.
func TestAll_NoPanics(t *testing.T) {
	fixtures := map[string]string{
		"a.js": "" +
			"'use strict';\n" +
			"label: for (var i = 0; i < 3; i++) { if (i) continue label; }\n" +
			"class A extends B { constructor(x) { if (x) super(); else { super(); } this.y = () => this; } get v() { return 1; } }\n" +
			"const o = { a: 1, ['b']: 2, c() {}, get d() { return 0; } };\n" +
			"switch (o.a) { case 1: break; default: }\n" +
			"try { JSON.parse(''); } catch { } finally { }\n" +
			"async function* g() { for await (const x of y) yield x; }\n",
		"b.tsx": "" +
			"import React, { useState as s } from 'react';\n" +
			"export interface P { x?: number }\n" +
			"namespace N { export const k = 1; }\n" +
			"abstract class C<T> extends D<T> implements P { constructor(private readonly t: T) { super(); } }\n" +
			"const el = <div>{[1, 2].map((n: number): JSX.Element => <span key={n} />)}</div>;\n" +
			"let v = x as unknown as string;\n",
	}
	for path, src := range fixtures {
		t.Run(path, func(t *testing.T) {
			assert.NotPanics(t, func() { lint(t, path, src, All()...) })
		})
	}
}
