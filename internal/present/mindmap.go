package present

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/yungbote/coursehub/internal/generation"
)

// Nodes shallower than this start expanded.
const defaultExpandDepth = 2

// MindmapTree is a collapsible view over a mindmap. The map title is the root
// at depth 0; a node's path is the list of child indexes leading to it, so the
// root is the empty path.
type MindmapTree struct {
	mu   sync.Mutex
	root *treeNode
}

type treeNode struct {
	title    string
	depth    int
	expanded bool
	children []*treeNode
}

// VisibleNode is one line of the rendered tree.
type VisibleNode struct {
	Path        []int  `json:"path"`
	Title       string `json:"title"`
	Depth       int    `json:"depth"`
	HasChildren bool   `json:"has_children"`
	Expanded    bool   `json:"expanded"`
}

func NewMindmapTree(m generation.Mindmap) *MindmapTree {
	root := &treeNode{title: m.Title, expanded: true}
	for _, n := range m.Nodes {
		root.children = append(root.children, buildNode(n, 1))
	}
	return &MindmapTree{root: root}
}

func buildNode(n generation.MindmapNode, depth int) *treeNode {
	t := &treeNode{title: n.Title, depth: depth, expanded: depth < defaultExpandDepth}
	for _, c := range n.Children {
		t.children = append(t.children, buildNode(c, depth+1))
	}
	return t
}

func (t *MindmapTree) Title() string { return t.root.title }

// Toggle flips the expanded state of the node at path and returns the new
// state. Leaves cannot be toggled.
func (t *MindmapTree) Toggle(path []int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.lookup(path)
	if err != nil {
		return false, err
	}
	if len(n.children) == 0 {
		return false, fmt.Errorf("node %s has no children", FormatPath(path))
	}
	n.expanded = !n.expanded
	return n.expanded, nil
}

func (t *MindmapTree) ExpandAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	walk(t.root, func(n *treeNode) { n.expanded = true })
}

func (t *MindmapTree) CollapseAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	walk(t.root, func(n *treeNode) { n.expanded = n == t.root })
}

// Visible lists the nodes reachable through expanded parents, depth first.
func (t *MindmapTree) Visible() []VisibleNode {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []VisibleNode
	var visit func(n *treeNode, path []int)
	visit = func(n *treeNode, path []int) {
		p := append([]int(nil), path...)
		out = append(out, VisibleNode{
			Path:        p,
			Title:       n.title,
			Depth:       n.depth,
			HasChildren: len(n.children) > 0,
			Expanded:    n.expanded,
		})
		if !n.expanded {
			return
		}
		for i, c := range n.children {
			visit(c, append(p, i))
		}
	}
	visit(t.root, nil)
	return out
}

func (t *MindmapTree) lookup(path []int) (*treeNode, error) {
	n := t.root
	for depth, i := range path {
		if i < 0 || i >= len(n.children) {
			return nil, fmt.Errorf("no node at %s (level %d)", FormatPath(path), depth+1)
		}
		n = n.children[i]
	}
	return n, nil
}

func walk(n *treeNode, fn func(*treeNode)) {
	fn(n)
	for _, c := range n.children {
		walk(c, fn)
	}
}

// FormatPath renders a node path as dotted indexes, "" for the root.
func FormatPath(path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ".")
}

func ParsePath(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid path %q", raw)
		}
		out[i] = n
	}
	return out, nil
}
