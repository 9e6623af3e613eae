// Package mindmap builds a bounded-depth concept tree from course text,
// deepens it lazily through completion calls and drives the guided tour
// over it.
package mindmap

import (
	"strconv"
	"strings"
)

// MaxDepth is the deepest level a node may sit at. The root is 0; nodes at
// MaxDepth never request children.
const MaxDepth = 3

// RootID is the id of every tree root.
const RootID = "root"

// Node is one concept of the map. Nodes are values: every mutation goes
// through UpdateByID, which copies the path to the changed node and shares
// the untouched subtrees.
type Node struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Depth       int    `json:"depth"`
	Children    []Node `json:"children,omitempty"`

	Loaded          bool `json:"loaded"`
	Loading         bool `json:"-"`
	Expanded        bool `json:"expanded"`
	DescriptionOpen bool `json:"descriptionOpen"`
}

// CanExpand reports whether the node sits above the depth limit.
func (n Node) CanExpand() bool {
	return n.Depth < MaxDepth
}

// ChildID returns the id of the i-th (0-based) child of parentID.
func ChildID(parentID string, i int) string {
	return parentID + "." + strconv.Itoa(i+1)
}

// ParentID returns the id of the node's parent, or "" for the root.
func ParentID(id string) string {
	i := strings.LastIndexByte(id, '.')
	if i < 0 {
		return ""
	}
	return id[:i]
}

// UpdateByID returns a copy of root with fn applied to the node with the
// given id. The second result is false, and root is returned unchanged,
// when no node matches.
func UpdateByID(root Node, id string, fn func(Node) Node) (Node, bool) {
	if root.ID == id {
		return fn(root), true
	}
	for i, c := range root.Children {
		updated, ok := UpdateByID(c, id, fn)
		if !ok {
			continue
		}
		children := make([]Node, len(root.Children))
		copy(children, root.Children)
		children[i] = updated
		root.Children = children
		return root, true
	}
	return root, false
}

// Find returns the node with the given id.
func Find(root Node, id string) (Node, bool) {
	if root.ID == id {
		return root, true
	}
	for _, c := range root.Children {
		if n, ok := Find(c, id); ok {
			return n, true
		}
	}
	return Node{}, false
}

// Walk visits root and its descendants depth-first, parents first. fn
// returning false prunes the subtree.
func Walk(root Node, fn func(Node) bool) {
	if !fn(root) {
		return
	}
	for _, c := range root.Children {
		Walk(c, fn)
	}
}

// Count returns the number of nodes in the tree.
func Count(root Node) int {
	n := 0
	Walk(root, func(Node) bool { n++; return true })
	return n
}

// mapNodes returns a copy of the tree with fn applied to every node.
func mapNodes(root Node, fn func(Node) Node) Node {
	root = fn(root)
	if len(root.Children) > 0 {
		children := make([]Node, len(root.Children))
		for i, c := range root.Children {
			children[i] = mapNodes(c, fn)
		}
		root.Children = children
	}
	return root
}

// DisplayLabel shortens a label to at most maxWords words.
func DisplayLabel(label string, maxWords int) string {
	words := strings.Fields(label)
	if maxWords <= 0 || len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ") + "…"
}
