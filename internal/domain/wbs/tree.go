// Package wbs rebuilds a work breakdown structure from a flat list of coded
// items.
package wbs

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FlatItem is one row of the input list. Empty strings stand for missing
// values.
type FlatItem struct {
	ID      string
	WBSCode string
	Task    string
}

// Node is an entry in the tree arena. Parent and Children hold indexes into
// Tree.Nodes; Parent is -1 for roots.
type Node struct {
	ID      string
	WBSCode string
	Task    string
	Depth   int
	Parent  int
	// Children are in the order they were attached.
	Children []int
}

// Tree is a forest stored as an arena of nodes.
type Tree struct {
	Nodes []Node
	Roots []int
}

var leadingCode = regexp.MustCompile(`^\d+(\.\d+)*`)

// Build sorts items naturally by code (or task name when there is no code)
// and attaches each one under the nearest shallower item seen before it.
//
// Items with an empty task name are dropped; a whitespace-only name is
// still a name. An item whose code has no
// shallower ancestor becomes a root but still accepts descendants. Skipped
// levels attach to the nearest surviving ancestor; no nodes are
// synthesized.
func Build(items []FlatItem) *Tree {
	sorted := make([]FlatItem, len(items))
	copy(sorted, items)

	// Collators keep internal buffers, so each call gets its own.
	col := collate.New(language.Und, collate.Loose, collate.Numeric)
	sort.SliceStable(sorted, func(i, j int) bool {
		return col.CompareString(sortKey(sorted[i]), sortKey(sorted[j])) < 0
	})

	tree := &Tree{}
	var stack []int

	for _, item := range sorted {
		if item.Task == "" {
			continue
		}

		code := effectiveCode(item)
		idx := len(tree.Nodes)
		tree.Nodes = append(tree.Nodes, Node{
			ID:      item.ID,
			WBSCode: code,
			Task:    item.Task,
			Depth:   Depth(code),
			Parent:  -1,
		})
		depth := tree.Nodes[idx].Depth

		switch {
		case depth == 0:
			tree.Roots = append(tree.Roots, idx)
		case depth == 1:
			tree.Roots = append(tree.Roots, idx)
			stack = append(stack[:0], idx)
		default:
			for len(stack) > 0 && tree.Nodes[stack[len(stack)-1]].Depth >= depth {
				stack = stack[:len(stack)-1]
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				tree.Nodes[idx].Parent = parent
				tree.Nodes[parent].Children = append(tree.Nodes[parent].Children, idx)
			} else {
				tree.Roots = append(tree.Roots, idx)
			}
			stack = append(stack, idx)
		}
	}

	return tree
}

// Depth returns the number of dot-separated segments of a code after
// stripping one trailing dot, or 0 for an empty code. A bare "." is one
// empty segment.
func Depth(code string) int {
	if code == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(code, "."), ".") + 1
}

func sortKey(item FlatItem) string {
	if code := strings.TrimSpace(item.WBSCode); code != "" {
		return code
	}
	return item.Task
}

func effectiveCode(item FlatItem) string {
	if code := strings.TrimSpace(item.WBSCode); code != "" {
		return code
	}
	return leadingCode.FindString(item.Task)
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.Nodes)
}

// Walk visits nodes depth-first in child order, roots first to last.
// Returning false from fn skips the node's children.
func (t *Tree) Walk(fn func(idx int, n *Node) bool) {
	var visit func(idx int)
	visit = func(idx int) {
		if !fn(idx, &t.Nodes[idx]) {
			return
		}
		for _, child := range t.Nodes[idx].Children {
			visit(child)
		}
	}
	for _, root := range t.Roots {
		visit(root)
	}
}

// Branch is a nested view of a node for rendering and JSON encoding.
type Branch struct {
	ID       string   `json:"id"`
	WBSCode  string   `json:"wbsCode,omitempty"`
	Task     string   `json:"task"`
	Depth    int      `json:"depth"`
	Children []Branch `json:"children"`
}

// Forest materializes the arena as nested branches.
func (t *Tree) Forest() []Branch {
	var build func(idx int) Branch
	build = func(idx int) Branch {
		n := t.Nodes[idx]
		b := Branch{
			ID:       n.ID,
			WBSCode:  n.WBSCode,
			Task:     n.Task,
			Depth:    n.Depth,
			Children: make([]Branch, 0, len(n.Children)),
		}
		for _, child := range n.Children {
			b.Children = append(b.Children, build(child))
		}
		return b
	}

	forest := make([]Branch, 0, len(t.Roots))
	for _, root := range t.Roots {
		forest = append(forest, build(root))
	}
	return forest
}
