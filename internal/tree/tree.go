// Package tree folds parsed test names into a namespace/fixture/test tree.
package tree

import (
	"fmt"
	"strings"

	"dte/internal/testname"
)

// Test is one runnable test contained directly in a node.
type Test struct {
	Name     string // Display name, including any argument suffix
	FullName string // Raw fully-qualified name as discovered
}

// Node is a folder in the tree: a namespace, a fixture, or the root.
type Node struct {
	Name     string
	FullName string
	// Path is the chain of bare names from the root, each preceded by ".".
	// It is unique within one tree and does not depend on argument lists.
	Path  string
	Tests []Test

	root     bool
	children map[string]*Node
	order    []string
}

func newNode(name, fullName, path string) *Node {
	return &Node{
		Name:     name,
		FullName: fullName,
		Path:     path,
		children: make(map[string]*Node),
	}
}

// NewRoot creates an empty root node.
func NewRoot() *Node {
	root := newNode("", "", "")
	root.root = true
	return root
}

// IsRoot reports whether n is the synthetic root of a tree.
func (n *Node) IsRoot() bool {
	return n.root
}

// Child returns the child folder with the given key.
func (n *Node) Child(key string) (*Node, bool) {
	c, ok := n.children[key]
	return c, ok
}

// Children returns child folders in first-encounter order.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, len(n.order))
	for _, key := range n.order {
		out = append(out, n.children[key])
	}
	return out
}

// Len returns the number of child folders.
func (n *Node) Len() int {
	return len(n.order)
}

func (n *Node) addChild(key string, child *Node) {
	if _, ok := n.children[key]; !ok {
		n.order = append(n.order, key)
	}
	n.children[key] = child
}

// Build assembles parsed names into a tree rooted at an empty node.
func Build(names []testname.ParsedName) *Node {
	root := NewRoot()
	for _, name := range names {
		insert(root, name)
	}
	return root
}

// BuildNames parses and builds in one step.
func BuildNames(raw []string) *Node {
	names := make([]testname.ParsedName, len(raw))
	for i, r := range raw {
		names[i] = testname.Parse(r)
	}
	return Build(names)
}

func insert(root *Node, name testname.ParsedName) {
	current := root
	last := len(name.Segments) - 1
	for i := 0; i < last; i++ {
		key := name.BareName(i)
		child, ok := current.children[key]
		if !ok {
			child = newNode(key, name.Through(i), current.Path+"."+key)
			if !strings.HasPrefix(child.FullName, current.FullName) {
				panic(fmt.Sprintf("tree: folder %q is not under %q", child.FullName, current.FullName))
			}
			current.addChild(key, child)
		}
		current = child
	}
	current.Tests = append(current.Tests, Test{
		Name:     name.Tail(last),
		FullName: name.Raw,
	})
}

// Compact collapses every chain of folders that have no tests and exactly
// one child into a single node named by joining the chain with ".". The
// input is not modified. Compact is idempotent.
func Compact(n *Node) *Node {
	for len(n.Tests) == 0 && n.Len() == 1 {
		only := n.children[n.order[0]]
		merged := *only
		merged.Name = joinName(n, only.Name)
		n = &merged
	}
	return CompactChildren(n)
}

// CompactChildren compacts every child of n but keeps n itself, so a root
// with a single namespace stays a root.
func CompactChildren(n *Node) *Node {
	out := newNode(n.Name, n.FullName, n.Path)
	out.root = n.root
	out.Tests = append([]Test(nil), n.Tests...)
	for _, child := range n.Children() {
		c := Compact(child)
		if _, ok := out.children[c.Name]; ok {
			panic(fmt.Sprintf("tree: compacted folder %q collides with a sibling under %q", c.Name, n.FullName))
		}
		out.addChild(c.Name, c)
	}
	return out
}

// joinName names a merged chain. Only the synthetic root is dropped; an
// empty segment keeps its separator.
func joinName(parent *Node, child string) string {
	if parent.root {
		return child
	}
	return parent.Name + "." + child
}

// Walk visits n and every descendant depth-first, parents before children.
// Returning false from fn skips the node's children.
func Walk(n *Node, fn func(n *Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, child := range n.Children() {
		walk(child, depth+1, fn)
	}
}

// String renders the tree as an indented outline. Folders end with "/".
func (n *Node) String() string {
	var b strings.Builder
	Walk(n, func(node *Node, depth int) bool {
		indent := strings.Repeat("  ", depth)
		if depth > 0 || !node.root {
			fmt.Fprintf(&b, "%s%s/\n", indent, node.Name)
		}
		for _, t := range node.Tests {
			fmt.Fprintf(&b, "%s  %s\n", indent, t.Name)
		}
		return true
	})
	return b.String()
}
