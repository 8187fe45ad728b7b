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
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownRule indicates a rule code that is not in the catalog.
var ErrUnknownRule = errors.New("unknown rule")

// Rule codes.
const (
	CodeBanTSComment               = "ban-ts-comment"
	CodeBanTSIgnore                = "ban-ts-ignore"
	CodeBanTypes                   = "ban-types"
	CodeBanUntaggedIgnore          = "ban-untagged-ignore"
	CodeBanUntaggedTodo            = "ban-untagged-todo"
	CodeConstructorSuper           = "constructor-super"
	CodeDefaultParamLast           = "default-param-last"
	CodeEqeqeq                     = "eqeqeq"
	CodeExplicitFunctionReturnType = "explicit-function-return-type"
	CodeForDirection               = "for-direction"
	CodeGetterReturn               = "getter-return"
	CodeNoArrayConstructor         = "no-array-constructor"
	CodeNoAsyncPromiseExecutor     = "no-async-promise-executor"
	CodeNoAwaitInLoop              = "no-await-in-loop"
	CodeNoCaseDeclarations         = "no-case-declarations"
	CodeNoClassAssign              = "no-class-assign"
	CodeNoCompareNegZero           = "no-compare-neg-zero"
	CodeNoCondAssign               = "no-cond-assign"
	CodeNoConstAssign              = "no-const-assign"
	CodeNoDebugger                 = "no-debugger"
	CodeNoDeleteVar                = "no-delete-var"
	CodeNoDupeArgs                 = "no-dupe-args"
	CodeNoDupeClassMembers         = "no-dupe-class-members"
	CodeNoDupeElseIf               = "no-dupe-else-if"
	CodeNoDupeKeys                 = "no-dupe-keys"
	CodeNoDuplicateCase            = "no-duplicate-case"
	CodeNoEmpty                    = "no-empty"
	CodeNoEmptyCharacterClass      = "no-empty-character-class"
	CodeNoEmptyInterface           = "no-empty-interface"
	CodeNoEmptyPattern             = "no-empty-pattern"
	CodeNoEval                     = "no-eval"
	CodeNoExAssign                 = "no-ex-assign"
	CodeNoExplicitAny              = "no-explicit-any"
	CodeNoExtraBooleanCast         = "no-extra-boolean-cast"
	CodeNoExtraNonNullAssertion    = "no-extra-non-null-assertion"
	CodeNoExtraSemi                = "no-extra-semi"
	CodeNoFuncAssign               = "no-func-assign"
	CodeNoInferrableTypes          = "no-inferrable-types"
	CodeNoMisusedNew               = "no-misused-new"
	CodeNoNamespace                = "no-namespace"
	CodeNoNewSymbol                = "no-new-symbol"
	CodeNoNonNullAssertion         = "no-non-null-assertion"
	CodeNoObjCalls                 = "no-obj-calls"
	CodeNoOctal                    = "no-octal"
	CodeNoPrototypeBuiltins        = "no-prototype-builtins"
	CodeNoRegexSpaces              = "no-regex-spaces"
	CodeNoSetterReturn             = "no-setter-return"
	CodeNoShadowRestrictedNames    = "no-shadow-restricted-names"
	CodeNoSparseArray              = "no-sparse-array"
	CodeNoThisAlias                = "no-this-alias"
	CodeNoThisBeforeSuper          = "no-this-before-super"
	CodeNoThrowLiteral             = "no-throw-literal"
	CodeNoUnsafeFinally            = "no-unsafe-finally"
	CodeNoUnsafeNegation           = "no-unsafe-negation"
	CodeNoUnusedLabels             = "no-unused-labels"
	CodeNoVar                      = "no-var"
	CodeNoWith                     = "no-with"
	CodePreferAsConst              = "prefer-as-const"
	CodePreferNamespaceKeyword     = "prefer-namespace-keyword"
	CodeRequireYield               = "require-yield"
	CodeSingleVarDeclarator        = "single-var-declarator"
	CodeTripleSlashReference       = "triple-slash-reference"
	CodeUseIsNaN                   = "use-isnan"
	CodeValidTypeof                = "valid-typeof"
)

// Presets.
const (
	PresetRecommended = "recommended"
	PresetAll         = "all"
)

// catalog lists every rule in display order.
var catalog = []Rule{
	banTSComment,
	banTSIgnore,
	banTypes,
	banUntaggedIgnore,
	banUntaggedTodo,
	constructorSuper,
	defaultParamLast,
	eqeqeq,
	explicitFunctionReturnType,
	forDirection,
	getterReturn,
	noArrayConstructor,
	noAsyncPromiseExecutor,
	noAwaitInLoop,
	noCaseDeclarations,
	noClassAssign,
	noCompareNegZero,
	noCondAssign,
	noDebugger,
	noDeleteVar,
	noDupeArgs,
	noDupeClassMembers,
	noDupeElseIf,
	noDupeKeys,
	noDuplicateCase,
	noEmptyCharacterClass,
	noEmptyInterface,
	noEmptyPattern,
	noEmpty,
	noEval,
	noExAssign,
	noExplicitAny,
	noExtraBooleanCast,
	noExtraNonNullAssertion,
	noExtraSemi,
	noFuncAssign,
	noMisusedNew,
	noNamespace,
	noNewSymbol,
	noNonNullAssertion,
	noObjCalls,
	noOctal,
	noPrototypeBuiltins,
	noRegexSpaces,
	noSetterReturn,
	noSparseArray,
	noThisAlias,
	noThisBeforeSuper,
	noThrowLiteral,
	noUnsafeFinally,
	noUnsafeNegation,
	noVar,
	noWith,
	preferAsConst,
	preferNamespaceKeyword,
	requireYield,
	singleVarDeclarator,
	banTripleSlashReference,
	useIsNaN,
	validTypeof,
	noInferrableTypes,
	noConstAssign,
	noUnusedLabels,
	noShadowRestrictedNames,
}

// notRecommended lists the catalog rules left out of the recommended set.
var notRecommended = map[string]bool{
	CodeBanTSIgnore:                true,
	CodeBanUntaggedTodo:            true,
	CodeDefaultParamLast:           true,
	CodeEqeqeq:                     true,
	CodeExplicitFunctionReturnType: true,
	CodeNoAwaitInLoop:              true,
	CodeNoEval:                     true,
	CodeNoNonNullAssertion:         true,
	CodeNoSparseArray:              true,
	CodeNoThrowLiteral:             true,
	CodeNoVar:                      true,
	CodeSingleVarDeclarator:        true,
	CodeNoConstAssign:              true,
}

// suppressionExempt lists codes whose findings a directive written on the
// finding's own line cannot suppress.
var suppressionExempt = map[string]bool{
	CodeBanUntaggedIgnore: true,
	CodeBanUntaggedTodo:   true,
}

var byCode = func() map[string]Rule {
	m := make(map[string]Rule, len(catalog))
	for _, r := range catalog {
		m[r.Code()] = r
	}
	return m
}()

// All returns every rule in the catalog.
//
// Outputs:
//
//	[]Rule - A fresh slice in catalog order. Callers may modify it.
func All() []Rule {
	return slices.Clone(catalog)
}

// Recommended returns the default rule set, a subset of All.
func Recommended() []Rule {
	out := make([]Rule, 0, len(catalog))
	for _, r := range catalog {
		if !notRecommended[r.Code()] {
			out = append(out, r)
		}
	}
	return out
}

// IsRecommended reports whether code is in the recommended set.
func IsRecommended(code string) bool {
	_, ok := byCode[code]
	return ok && !notRecommended[code]
}

// Get returns the rule registered under code.
func Get(code string) (Rule, bool) {
	r, ok := byCode[code]
	return r, ok
}

// Lookup resolves rule codes to rules.
//
// Description:
//
//	Returns the rules in the order the codes were given, skipping
//	duplicates. Every unknown code is reported in one error.
//
// Outputs:
//
//	[]Rule - The resolved rules.
//	error  - Wraps ErrUnknownRule when any code is not in the catalog.
func Lookup(codes []string) ([]Rule, error) {
	out := make([]Rule, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	var unknown []string
	for _, code := range codes {
		if seen[code] {
			continue
		}
		seen[code] = true
		r, ok := byCode[code]
		if !ok {
			unknown = append(unknown, code)
			continue
		}
		out = append(out, r)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRule, strings.Join(unknown, ", "))
	}
	return out, nil
}

// Preset returns the rules for a named preset.
func Preset(name string) ([]Rule, error) {
	switch name {
	case PresetRecommended, "":
		return Recommended(), nil
	case PresetAll:
		return All(), nil
	}
	return nil, fmt.Errorf("unknown preset %q", name)
}

// SuppressionExempt reports whether code is protected from suppression by
// a directive on the same line as the finding.
func SuppressionExempt(code string) bool {
	return suppressionExempt[code]
}

// SuppressionExemptCodes returns the protected codes as a set.
func SuppressionExemptCodes() map[string]bool {
	out := make(map[string]bool, len(suppressionExempt))
	for code := range suppressionExempt {
		out[code] = true
	}
	return out
}
