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

import "iter"

// Inspect traverses the named nodes under root in pre-order, parent before
// children and children in source order. If fn returns false the node's
// children are skipped.
func Inspect(root *Node, fn func(*Node) bool) {
	if root == nil {
		return
	}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			continue
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			if c := n.Children[i]; c.Named {
				stack = append(stack, c)
			}
		}
	}
}

// PreOrder yields the named nodes under root in the same order as Inspect.
func PreOrder(root *Node) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		stopped := false
		Inspect(root, func(n *Node) bool {
			if stopped {
				return false
			}
			if !yield(n) {
				stopped = true
				return false
			}
			return true
		})
	}
}

// InspectFunctionBody traverses the named nodes under root like Inspect but
// does not enter nested functions or classes.
func InspectFunctionBody(root *Node, fn func(*Node) bool) {
	Inspect(root, func(n *Node) bool {
		if n != root && (n.Is(FunctionKinds...) || n.Is(ClassKinds...)) {
			return false
		}
		return fn(n)
	})
}
