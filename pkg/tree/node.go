package tree

import (
	"slices"
	"sync/atomic"
)

// nextID is the process-wide node id counter.
// IDs are unique for the lifetime of the process and never reused.
var nextID atomic.Int64

// VisitFunc is called once for every node reached by a traversal.
type VisitFunc[T any] func(n *Node[T])

// MatchFunc reports whether a node payload satisfies a search.
type MatchFunc[T any] func(data T) bool

// Node is a single element of a [Tree]. A node owns its subtree: detaching a
// node detaches every descendant with it, and a node's lifetime is bounded by
// its parent's.
//
// Data is the caller payload and is opaque to the container. The view-state
// fields Expanded, Highlighted and Collapsable are presentation hints with no
// structural meaning; callers may read and write them freely between tree
// operations.
//
// Nodes are created only through [Tree.Add] and [Tree.AddAll].
type Node[T any] struct {
	id       int64
	parent   *Node[T]
	children []*Node[T]
	level    int
	height   int

	// Data is the caller-owned payload.
	Data T

	// Expanded controls whether expanded-only flattening descends into the
	// node's children. Defaults to true.
	Expanded bool
	// Highlighted marks the node for emphasis in renderers. Defaults to false.
	Highlighted bool
	// Collapsable allows [Node.CollapseAll] to force the node closed.
	// Defaults to true.
	Collapsable bool
}

// newNode assigns the next global id and splices the node into the parent's
// children at opts.position when set (inserting before the element currently
// at that index), appending otherwise.
func newNode[T any](data T, parent *Node[T], opts addOptions) *Node[T] {
	n := &Node[T]{
		id:          nextID.Add(1),
		Data:        data,
		parent:      parent,
		Expanded:    opts.expanded,
		Highlighted: opts.highlighted,
		Collapsable: opts.collapsable,
	}
	if parent == nil {
		return n
	}
	n.level = parent.level + 1
	if opts.position != nil && *opts.position >= 0 && *opts.position < len(parent.children) {
		parent.children = slices.Insert(parent.children, *opts.position, n)
	} else {
		parent.children = append(parent.children, n)
	}
	return n
}

// ID returns the node's process-unique identifier.
// IDs are assigned monotonically at construction and never mutated.
func (n *Node[T]) ID() int64 { return n.id }

// Parent returns the owning node, or nil for a root or detached node.
// The back reference never implies ownership.
func (n *Node[T]) Parent() *Node[T] { return n.parent }

// Children returns the node's children in sibling (insertion) order.
// The returned slice is a read-only view; use [Tree] operations to mutate.
func (n *Node[T]) Children() []*Node[T] { return n.children }

// Level returns the node's depth from the root (root = 0).
func (n *Node[T]) Level() int { return n.level }

// Height returns the number of descendant levels below the node.
// A leaf has height 0; a node whose deepest descendant is a grandchild has
// height 2.
func (n *Node[T]) Height() int { return n.height }

// HasChildren reports whether the node has at least one child.
func (n *Node[T]) HasChildren() bool { return len(n.children) > 0 }

// Path returns the sequence of sibling indices from the root down to the
// node. The root's path is empty. Each level re-scans its parent's children
// for the index, so the cost is O(depth × fan-out); callers needing paths at
// scale should cache them.
func (n *Node[T]) Path() []int {
	if n.parent == nil {
		return nil
	}
	return append(n.parent.Path(), slices.Index(n.parent.children, n))
}

// TraverseDFS visits every node of the subtree rooted at n, pre-order by
// default or post-order (children before node) when postOrder is true.
// Recursion depth matches tree depth; callers must bound very deep trees.
func (n *Node[T]) TraverseDFS(visit VisitFunc[T], postOrder bool) {
	if !postOrder {
		visit(n)
	}
	for _, c := range n.children {
		c.TraverseDFS(visit, postOrder)
	}
	if postOrder {
		visit(n)
	}
}

// TraverseBFS visits the subtree rooted at n level by level: each dequeued
// node is visited, then its children are enqueued in sibling order.
func (n *Node[T]) TraverseBFS(visit VisitFunc[T]) {
	queue := []*Node[T]{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		visit(cur)
		queue = append(queue, cur.children...)
	}
}

// TraverseToRoot visits n, then each ancestor in turn, stopping after the
// root has been visited.
func (n *Node[T]) TraverseToRoot(visit VisitFunc[T]) {
	for cur := n; cur != nil; cur = cur.parent {
		visit(cur)
	}
}

// FindBFS returns the first node in breadth-first order whose payload
// satisfies match, or nil if the subtree is exhausted. Breadth-first order
// makes this a shallowest-match-first search.
func (n *Node[T]) FindBFS(match MatchFunc[T]) *Node[T] {
	queue := []*Node[T]{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if match(cur.Data) {
			return cur
		}
		queue = append(queue, cur.children...)
	}
	return nil
}

// IsAllExpanded reports whether every node in the subtree rooted at n,
// including n itself, has Expanded set. The scan stops at the first
// collapsed node.
func (n *Node[T]) IsAllExpanded() bool {
	queue := []*Node[T]{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !cur.Expanded {
			return false
		}
		queue = append(queue, cur.children...)
	}
	return true
}

// ExpandAll sets Expanded on every node in the subtree, including n.
func (n *Node[T]) ExpandAll() {
	n.TraverseBFS(func(m *Node[T]) { m.Expanded = true })
}

// CollapseAll closes the subtree below minLevel: every collapsable node ends
// up expanded exactly when its level is shallower than minLevel. Nodes with
// Collapsable unset keep their current state regardless of level.
func (n *Node[T]) CollapseAll(minLevel int) {
	n.TraverseBFS(func(m *Node[T]) {
		if m.Collapsable {
			m.Expanded = m.level < minLevel
		}
	})
}

// contains reports whether target is n or a descendant of n.
func (n *Node[T]) contains(target *Node[T]) bool {
	if n == target {
		return true
	}
	for _, c := range n.children {
		if c.contains(target) {
			return true
		}
	}
	return false
}

// relevel re-derives the level of n and every descendant from the parent
// linkage (parent.level + 1, or 0 when parentless).
func (n *Node[T]) relevel() {
	if n.parent == nil {
		n.level = 0
	} else {
		n.level = n.parent.level + 1
	}
	for _, c := range n.children {
		c.relevel()
	}
}
