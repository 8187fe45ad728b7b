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

// Kind is a tree-sitter node type name.
//
// The grammars define several hundred node types; the constants below are
// the ones the engine and the rule catalog dispatch on.
type Kind string

// Program and declarations.
const (
	KindProgram                  Kind = "program"
	KindClassDeclaration         Kind = "class_declaration"
	KindAbstractClassDeclaration Kind = "abstract_class_declaration"
	KindClass                    Kind = "class"
	KindClassHeritage            Kind = "class_heritage"
	KindExtendsClause            Kind = "extends_clause"
	KindClassBody                Kind = "class_body"
	KindMethodDefinition         Kind = "method_definition"
	KindFieldDefinition          Kind = "field_definition"
	KindPublicFieldDefinition    Kind = "public_field_definition"
	KindFunctionDeclaration      Kind = "function_declaration"
	KindGeneratorFunctionDecl    Kind = "generator_function_declaration"
	KindFunction                 Kind = "function"
	KindFunctionExpression       Kind = "function_expression"
	KindGeneratorFunction        Kind = "generator_function"
	KindArrowFunction            Kind = "arrow_function"
	KindFormalParameters         Kind = "formal_parameters"
	KindLexicalDeclaration       Kind = "lexical_declaration"
	KindVariableDeclaration      Kind = "variable_declaration"
	KindVariableDeclarator       Kind = "variable_declarator"
	KindImportStatement          Kind = "import_statement"
	KindImportSpecifier          Kind = "import_specifier"
	KindNamespaceImport          Kind = "namespace_import"
	KindImportClause             Kind = "import_clause"
	KindExportStatement          Kind = "export_statement"
)

// Statements.
const (
	KindStatementBlock      Kind = "statement_block"
	KindExpressionStatement Kind = "expression_statement"
	KindEmptyStatement      Kind = "empty_statement"
	KindIfStatement         Kind = "if_statement"
	KindElseClause          Kind = "else_clause"
	KindSwitchStatement     Kind = "switch_statement"
	KindSwitchBody          Kind = "switch_body"
	KindSwitchCase          Kind = "switch_case"
	KindSwitchDefault       Kind = "switch_default"
	KindForStatement        Kind = "for_statement"
	KindForInStatement      Kind = "for_in_statement"
	KindWhileStatement      Kind = "while_statement"
	KindDoStatement         Kind = "do_statement"
	KindTryStatement        Kind = "try_statement"
	KindCatchClause         Kind = "catch_clause"
	KindFinallyClause       Kind = "finally_clause"
	KindReturnStatement     Kind = "return_statement"
	KindThrowStatement      Kind = "throw_statement"
	KindBreakStatement      Kind = "break_statement"
	KindContinueStatement   Kind = "continue_statement"
	KindLabeledStatement    Kind = "labeled_statement"
	KindDebuggerStatement   Kind = "debugger_statement"
	KindWithStatement       Kind = "with_statement"
)

// Expressions and literals.
const (
	KindCallExpression                Kind = "call_expression"
	KindNewExpression                 Kind = "new_expression"
	KindMemberExpression              Kind = "member_expression"
	KindSubscriptExpression           Kind = "subscript_expression"
	KindAssignmentExpression          Kind = "assignment_expression"
	KindAugmentedAssignmentExpression Kind = "augmented_assignment_expression"
	KindUpdateExpression              Kind = "update_expression"
	KindBinaryExpression              Kind = "binary_expression"
	KindUnaryExpression               Kind = "unary_expression"
	KindTernaryExpression             Kind = "ternary_expression"
	KindParenthesizedExpression       Kind = "parenthesized_expression"
	KindSequenceExpression            Kind = "sequence_expression"
	KindAwaitExpression               Kind = "await_expression"
	KindYieldExpression               Kind = "yield_expression"
	KindArguments                     Kind = "arguments"
	KindObject                        Kind = "object"
	KindPair                          Kind = "pair"
	KindShorthandProperty             Kind = "shorthand_property_identifier"
	KindArray                         Kind = "array"
	KindObjectPattern                 Kind = "object_pattern"
	KindArrayPattern                  Kind = "array_pattern"
	KindAssignmentPattern             Kind = "assignment_pattern"
	KindObjectAssignmentPattern       Kind = "object_assignment_pattern"
	KindPairPattern                   Kind = "pair_pattern"
	KindOptionalChain                 Kind = "optional_chain"
	KindEscapeSequence                Kind = "escape_sequence"
	KindTemplateSubstitution          Kind = "template_substitution"
	KindRestPattern                   Kind = "rest_pattern"
	KindSpreadElement                 Kind = "spread_element"
	KindIdentifier                    Kind = "identifier"
	KindPropertyIdentifier            Kind = "property_identifier"
	KindPrivatePropertyIdentifier     Kind = "private_property_identifier"
	KindShorthandPropertyPattern      Kind = "shorthand_property_identifier_pattern"
	KindStatementIdentifier           Kind = "statement_identifier"
	KindComputedPropertyName          Kind = "computed_property_name"
	KindThis                          Kind = "this"
	KindSuper                         Kind = "super"
	KindNumber                        Kind = "number"
	KindString                        Kind = "string"
	KindStringFragment                Kind = "string_fragment"
	KindTemplateString                Kind = "template_string"
	KindRegex                         Kind = "regex"
	KindRegexPattern                  Kind = "regex_pattern"
	KindTrue                          Kind = "true"
	KindFalse                         Kind = "false"
	KindNull                          Kind = "null"
	KindUndefined                     Kind = "undefined"
	KindComment                       Kind = "comment"
	KindError                         Kind = "ERROR"
)

// TypeScript-only nodes.
const (
	KindInterfaceDeclaration  Kind = "interface_declaration"
	KindInterfaceBody         Kind = "interface_body"
	KindObjectType            Kind = "object_type"
	KindTypeAnnotation        Kind = "type_annotation"
	KindTypeIdentifier        Kind = "type_identifier"
	KindPredefinedType        Kind = "predefined_type"
	KindLiteralType           Kind = "literal_type"
	KindAsExpression          Kind = "as_expression"
	KindNonNullExpression     Kind = "non_null_expression"
	KindModule                Kind = "module"
	KindInternalModule        Kind = "internal_module"
	KindAmbientDeclaration    Kind = "ambient_declaration"
	KindMethodSignature       Kind = "method_signature"
	KindConstructSignature    Kind = "construct_signature"
	KindRequiredParameter     Kind = "required_parameter"
	KindOptionalParameter     Kind = "optional_parameter"
	KindTypeAliasDeclaration  Kind = "type_alias_declaration"
	KindEnumDeclaration       Kind = "enum_declaration"
	KindAbstractMethodSig     Kind = "abstract_method_signature"
	KindAccessibilityModifier Kind = "accessibility_modifier"
	KindExtendsTypeClause     Kind = "extends_type_clause"
	KindTypeAssertion         Kind = "type_assertion"
	KindGenericType           Kind = "generic_type"
	KindTypeParameter         Kind = "type_parameter"
	KindTypeArguments         Kind = "type_arguments"
)

// FunctionKinds lists every node that introduces a new function scope for
// `this`, `return` and `yield`.
var FunctionKinds = []Kind{
	KindFunctionDeclaration,
	KindGeneratorFunctionDecl,
	KindFunction,
	KindFunctionExpression,
	KindGeneratorFunction,
	KindArrowFunction,
	KindMethodDefinition,
}

// NonArrowFunctionKinds lists the function nodes that rebind `this`.
var NonArrowFunctionKinds = []Kind{
	KindFunctionDeclaration,
	KindGeneratorFunctionDecl,
	KindFunction,
	KindFunctionExpression,
	KindGeneratorFunction,
	KindMethodDefinition,
}

// ClassKinds lists the class declaration and expression nodes.
var ClassKinds = []Kind{
	KindClassDeclaration,
	KindAbstractClassDeclaration,
	KindClass,
}

// LoopKinds lists the iteration statements.
var LoopKinds = []Kind{
	KindForStatement,
	KindForInStatement,
	KindWhileStatement,
	KindDoStatement,
}
