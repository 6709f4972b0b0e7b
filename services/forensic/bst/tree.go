// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package bst is the binary search tree engine of the forensic database.
//
// The tree maps a full name ("Last, First") to a profile. It is a plain
// unbalanced BST ordered by Go string comparison: the shape depends only on
// insertion order and worst-case operations are O(n).
//
// # Ownership Model
//
// Every node exclusively owns its two optional children. There are no
// parent pointers. Operations that change the shape take the current root
// and return the new root:
//
//	root, err = bst.Insert(root, "Smith, Anna", p)
//	root = bst.Remove(root, "Smith, Anna")
//
// A nil *Node is the empty tree and every function accepts it.
//
// # Recursion
//
// Counting, flagging and the ordered walks use an explicit stack or queue.
// Remove recurses to the height of the tree; a fully skewed tree of n nodes
// therefore uses O(n) goroutine stack, which Go grows on demand.
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent use. Callers that share a
// tree must serialise all access with one lock around the whole tree.
package bst

import (
	"fmt"

	"github.com/AleutianAI/AleutianForensics/services/forensic/profile"
)

// Node is one entry of the tree.
type Node struct {
	// Name is the key, formatted "Last, First".
	Name string

	// Profile is owned by this node.
	Profile *profile.Profile

	// Left holds keys less than Name; Right holds greater keys.
	Left  *Node
	Right *Node
}

// Insert adds name → p to the tree rooted at root.
//
// # Description
//
// Walks from the root to a leaf position comparing name with each key and
// attaches a new node there. On an empty tree the new node is the root.
// No rebalancing is done.
//
// # Inputs
//
//   - root: Current root, nil for an empty tree.
//   - name: Key to insert. Must not already be present.
//   - p: Profile to store. Must not be nil.
//
// # Outputs
//
//   - *Node: The root of the tree after insertion.
//   - error: ErrDuplicateKey if the walk meets name, ErrNilProfile if p is
//     nil. The tree is unchanged on error.
func Insert(root *Node, name string, p *profile.Profile) (*Node, error) {
	if p == nil {
		return root, fmt.Errorf("insert %q: %w", name, ErrNilProfile)
	}
	n := &Node{Name: name, Profile: p}
	if root == nil {
		return n, nil
	}

	cur := root
	for {
		switch {
		case name < cur.Name:
			if cur.Left == nil {
				cur.Left = n
				return root, nil
			}
			cur = cur.Left
		case name > cur.Name:
			if cur.Right == nil {
				cur.Right = n
				return root, nil
			}
			cur = cur.Right
		default:
			return root, fmt.Errorf("insert %q: %w", name, ErrDuplicateKey)
		}
	}
}

// Find returns the node holding name, or nil.
func Find(root *Node, name string) *Node {
	for cur := root; cur != nil; {
		switch {
		case name < cur.Name:
			cur = cur.Left
		case name > cur.Name:
			cur = cur.Right
		default:
			return cur
		}
	}
	return nil
}

// Remove deletes the node holding name.
//
// # Description
//
// Standard BST deletion. A node with at most one child is replaced by that
// child. A node with two children is replaced by its in-order successor
// (the leftmost node of its right subtree): the successor node itself is
// moved into place, keeps the deleted node's left subtree, and takes the
// right subtree with the successor spliced out of it.
//
// # Inputs
//
//   - root: Current root, nil for an empty tree.
//   - name: Key to remove.
//
// # Outputs
//
//   - *Node: The root after removal. If name is absent the tree is
//     returned unchanged.
func Remove(root *Node, name string) *Node {
	if root == nil {
		return nil
	}
	switch {
	case name < root.Name:
		root.Left = Remove(root.Left, name)
		return root
	case name > root.Name:
		root.Right = Remove(root.Right, name)
		return root
	}

	if root.Left == nil {
		return root.Right
	}
	if root.Right == nil {
		return root.Left
	}

	successor := root.Right
	for successor.Left != nil {
		successor = successor.Left
	}
	successor.Right = deleteMin(root.Right)
	successor.Left = root.Left
	return successor
}

// deleteMin unlinks the leftmost node of n and returns the new subtree
// root. The leftmost node has no left child, so its right child takes its
// place.
func deleteMin(n *Node) *Node {
	if n == nil {
		return nil
	}
	if n.Left == nil {
		return n.Right
	}
	n.Left = deleteMin(n.Left)
	return n
}

// Len returns the number of nodes in the tree.
func Len(root *Node) int {
	count := 0
	preorder(root, func(*Node) { count++ })
	return count
}

// Height returns the number of nodes on the longest root-to-leaf path.
func Height(root *Node) int {
	if root == nil {
		return 0
	}
	type item struct {
		n     *Node
		depth int
	}
	height := 0
	queue := []item{{root, 1}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		if it.depth > height {
			height = it.depth
		}
		if it.n.Left != nil {
			queue = append(queue, item{it.n.Left, it.depth + 1})
		}
		if it.n.Right != nil {
			queue = append(queue, item{it.n.Right, it.depth + 1})
		}
	}
	return height
}
