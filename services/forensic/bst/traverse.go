// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package bst

import "github.com/AleutianAI/AleutianForensics/services/forensic/matcher"

// preorder visits root, then left, then right, using an explicit stack.
func preorder(root *Node, visit func(*Node)) {
	if root == nil {
		return
	}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(n)
		// Right first so left is popped first.
		if n.Right != nil {
			stack = append(stack, n.Right)
		}
		if n.Left != nil {
			stack = append(stack, n.Left)
		}
	}
}

// Walk calls fn for every node in ascending key order.
//
// fn must not change the shape of the tree.
func Walk(root *Node, fn func(*Node)) {
	var stack []*Node
	cur := root
	for cur != nil || len(stack) > 0 {
		for cur != nil {
			stack = append(stack, cur)
			cur = cur.Left
		}
		cur = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(cur)
		cur = cur.Right
	}
}

// InOrder returns every key in ascending order.
func InOrder(root *Node) []string {
	var names []string
	Walk(root, func(n *Node) { names = append(names, n.Name) })
	return names
}

// CountMatching returns how many profiles have IsOfInterest() == ofInterest.
//
// # Description
//
// Visits every node once. Returns 0 for an empty tree.
//
// # Inputs
//
//   - root: Tree root, may be nil.
//   - ofInterest: true counts flagged profiles, false counts unmarked ones.
//
// # Outputs
//
//   - int: Number of matching profiles.
func CountMatching(root *Node, ofInterest bool) int {
	count := 0
	preorder(root, func(n *Node) {
		if n.Profile.IsOfInterest() == ofInterest {
			count++
		}
	})
	return count
}

// FlagAll marks every profile that matches combined.
//
// # Description
//
// Evaluates each node independently with matcher.MatchesProfile and raises
// the interest flag on a match. Flags are never cleared, so repeated calls
// with the same sequence leave the same set flagged.
//
// # Inputs
//
//   - root: Tree root, may be nil.
//   - combined: Concatenation of both unknown sequences.
//
// # Outputs
//
//   - int: Number of profiles newly flagged by this call.
func FlagAll(root *Node, combined string) int {
	flagged := 0
	preorder(root, func(n *Node) {
		if n.Profile.IsOfInterest() {
			return
		}
		if matcher.MatchesProfile(n.Profile, combined) {
			n.Profile.MarkOfInterest()
			flagged++
		}
	})
	return flagged
}

// CollectUnmarked returns the names of all unflagged profiles in level order.
//
// # Description
//
// Breadth-first from the root, left child before right child at each
// level. The result slice is sized by CountMatching(root, false).
//
// # Inputs
//
//   - root: Tree root, may be nil.
//
// # Outputs
//
//   - []string: Unmarked names in visit order. Empty, not nil, for an
//     empty tree.
func CollectUnmarked(root *Node) []string {
	names := make([]string, 0, CountMatching(root, false))
	if root == nil {
		return names
	}
	queue := []*Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if !n.Profile.IsOfInterest() {
			names = append(names, n.Name)
		}
		if n.Left != nil {
			queue = append(queue, n.Left)
		}
		if n.Right != nil {
			queue = append(queue, n.Right)
		}
	}
	return names
}

// Cleanup removes every unflagged profile from the tree.
//
// # Description
//
// Collects the unmarked names, then removes them one by one, each time
// from the current tree. Run FlagAll first: on an unflagged tree Cleanup
// removes everything.
//
// # Inputs
//
//   - root: Tree root, may be nil.
//
// # Outputs
//
//   - *Node: Root of the tree holding only flagged profiles.
//   - []string: Names removed, in removal order.
func Cleanup(root *Node) (*Node, []string) {
	removed := CollectUnmarked(root)
	for _, name := range removed {
		root = Remove(root, name)
	}
	return root, removed
}
