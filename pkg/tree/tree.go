package tree

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

var (
	// ErrInvalidOperation is returned by [Tree.Add] when a root already
	// exists and no parent is given, and by [Tree.Move] when the target lies
	// inside the source's own subtree.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInvalidPath is returned by [Tree.FindInPath] when the path does not
	// resolve: missing root, out-of-range index, or a dead end before the
	// path is exhausted.
	ErrInvalidPath = errors.New("invalid path")
)

// Tree owns the root node and is the sole entry point for structural
// mutation. After every public operation the derived metrics hold: each
// node's level equals its parent's level plus one (root = 0), and each
// node's height equals 1 + the maximum child height (0 for a leaf).
//
// The zero value is usable as an empty tree; New additionally applies
// options such as [WithLogger].
type Tree[T any] struct {
	root   *Node[T]
	logger *log.Logger
}

// Option configures a Tree at construction.
type Option[T any] func(*Tree[T])

// WithLogger attaches a logger used for diagnostic warnings, such as
// unresolvable paths passed to [Tree.FindInPath].
func WithLogger[T any](l *log.Logger) Option[T] {
	return func(t *Tree[T]) { t.logger = l }
}

// New creates an empty tree.
func New[T any](opts ...Option[T]) *Tree[T] {
	t := &Tree[T]{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Root returns the root node, or nil for an empty tree.
func (t *Tree[T]) Root() *Node[T] { return t.root }

// IsEmpty reports whether the tree has no nodes.
func (t *Tree[T]) IsEmpty() bool { return t.root == nil }

// Add creates a node for data and links it under parent, or as the root when
// parent is nil. Returns ErrInvalidOperation if a root already exists and no
// parent is given: a tree may have only one root.
//
// After insertion, ancestor heights are grown along the path to the root.
// Adding a node can never shrink an ancestor's subtree height, so the walk
// stops at the first ancestor whose height is already large enough.
func (t *Tree[T]) Add(data T, parent *Node[T], opts ...AddOption) (*Node[T], error) {
	o := defaultAddOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return t.add(data, parent, o)
}

func (t *Tree[T]) add(data T, parent *Node[T], o addOptions) (*Node[T], error) {
	if parent == nil && t.root != nil {
		return nil, fmt.Errorf("%w: tree already has a root", ErrInvalidOperation)
	}
	n := newNode(data, parent, o)
	if parent == nil {
		t.root = n
		return n, nil
	}
	growHeightsUp(n)
	return n, nil
}

// AddAll inserts each item under parent via Add, preserving input order.
// With [Prepend], items are placed before any pre-existing children while
// still ending up in input order among themselves.
func (t *Tree[T]) AddAll(items []T, parent *Node[T], opts ...AddOption) ([]*Node[T], error) {
	o := defaultAddOptions()
	for _, opt := range opts {
		opt(&o)
	}
	nodes := make([]*Node[T], 0, len(items))
	for i, item := range items {
		per := o
		if o.prepend {
			pos := i
			per.position = &pos
		}
		n, err := t.add(item, parent, per)
		if err != nil {
			return nodes, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// Remove detaches n from its parent, taking n's whole subtree with it. If n
// is the root the tree becomes empty. Ancestor heights along the former
// parent chain are recomputed from scratch, since removal can only decrease
// them.
//
// The returned node is parentless but keeps its own subtree links intact, so
// it can be re-inserted elsewhere.
func (t *Tree[T]) Remove(n *Node[T]) *Node[T] {
	if n == nil {
		return nil
	}
	if n == t.root {
		t.root = nil
		return n
	}
	p := n.parent
	if p == nil {
		return n
	}
	if i := slices.Index(p.children, n); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	n.parent = nil
	recomputeHeightsUp(p)
	return n
}

// Move relocates src to become the first child of dst. It is a no-op when
// src and dst are the same node or src is already a root. Moving a node into
// its own subtree would orphan the structure, so Move returns
// ErrInvalidOperation when dst is src or one of src's descendants.
//
// After relinking, levels are re-derived for src's whole subtree and heights
// are recomputed up the new ancestor chain.
func (t *Tree[T]) Move(src, dst *Node[T]) error {
	if src == nil || dst == nil || src == dst || src.parent == nil {
		return nil
	}
	if src.contains(dst) {
		return fmt.Errorf("%w: cannot move a node into its own subtree", ErrInvalidOperation)
	}
	t.Remove(src)
	dst.children = slices.Insert(dst.children, 0, src)
	src.parent = dst
	src.relevel()
	growHeightsUp(src)
	return nil
}

// Clear discards the root, emptying the tree. Previously held node
// references are no longer reachable from the tree.
func (t *Tree[T]) Clear() { t.root = nil }

// Contains reports whether any node's payload is deeply equal to data.
func (t *Tree[T]) Contains(data T) bool {
	return t.FindBFS(func(v T) bool { return reflect.DeepEqual(v, data) }) != nil
}

// FindBFS returns the first node in breadth-first order whose payload
// satisfies match, or nil for an empty tree or no match.
func (t *Tree[T]) FindBFS(match MatchFunc[T]) *Node[T] {
	if t.root == nil {
		return nil
	}
	return t.root.FindBFS(match)
}

// FindInPath walks from the root, indexing into children at each path
// element in turn. The empty path resolves to the root. Returns
// ErrInvalidPath (after logging a warning) when the root is absent or an
// index is out of range.
func (t *Tree[T]) FindInPath(path []int) (*Node[T], error) {
	if t.root == nil {
		t.warnf("path %s does not resolve: tree is empty", fmtPath(path))
		return nil, fmt.Errorf("%w: tree is empty", ErrInvalidPath)
	}
	n := t.root
	for i, idx := range path {
		if idx < 0 || idx >= len(n.children) {
			t.warnf("path %s does not resolve: index %d out of range at depth %d", fmtPath(path), idx, i)
			return nil, fmt.Errorf("%w: index %d out of range at depth %d", ErrInvalidPath, idx, i)
		}
		n = n.children[idx]
	}
	return n, nil
}

// IsAllExpanded reports whether every node in the tree is expanded.
// An empty tree is never all-expanded.
func (t *Tree[T]) IsAllExpanded() bool {
	if t.root == nil {
		return false
	}
	return t.root.IsAllExpanded()
}

// TraverseDFS visits the subtree rooted at start (the whole tree when start
// is nil) depth-first. No-op on an empty tree.
func (t *Tree[T]) TraverseDFS(visit VisitFunc[T], start *Node[T], postOrder bool) {
	if start == nil {
		start = t.root
	}
	if start == nil {
		return
	}
	start.TraverseDFS(visit, postOrder)
}

// TraverseToRoot visits n and each of its ancestors up to the root.
// No-op when n is nil.
func (t *Tree[T]) TraverseToRoot(n *Node[T], visit VisitFunc[T]) {
	if n == nil {
		return
	}
	n.TraverseToRoot(visit)
}

// FlattenOptions configures [Tree.Flatten].
type FlattenOptions struct {
	// ExpandedOnly hides every node that has a collapsed strict ancestor.
	// A node's own Expanded flag never gates its own inclusion, only its
	// descendants' visibility.
	ExpandedOnly bool
}

// DefaultFlattenOptions returns the render-ready default: expanded-only on.
func DefaultFlattenOptions() FlattenOptions {
	return FlattenOptions{ExpandedOnly: true}
}

// Flatten projects the tree into a flat, render-ready node sequence in
// pre-order. With ExpandedOnly set, descent stops below collapsed nodes; the
// collapsed node itself is still included.
func (t *Tree[T]) Flatten(opts FlattenOptions) []*Node[T] {
	if t.root == nil {
		return nil
	}
	var out []*Node[T]
	var walk func(n *Node[T])
	walk = func(n *Node[T]) {
		out = append(out, n)
		if opts.ExpandedOnly && !n.Expanded {
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)
	return out
}

// FlattenMatch projects the tree into the sequence of nodes satisfying
// match, in pre-order, with every ancestor of a matched node inserted
// immediately before it (outermost first, nearest ancestor last). Ancestors
// are never duplicated, even when matched nodes share them.
func (t *Tree[T]) FlattenMatch(match func(*Node[T]) bool) []*Node[T] {
	if t.root == nil {
		return nil
	}
	var out []*Node[T]
	seen := make(map[*Node[T]]bool)
	t.root.TraverseDFS(func(n *Node[T]) {
		if !match(n) {
			return
		}
		// Collect n plus any ancestors not yet emitted; once a seen ancestor
		// is hit, everything above it is already present.
		var chain []*Node[T]
		for a := n; a != nil && !seen[a]; a = a.parent {
			seen[a] = true
			chain = append(chain, a)
		}
		for i := len(chain) - 1; i >= 0; i-- {
			out = append(out, chain[i])
		}
	}, false)
	return out
}

// ExpandAll expands every node. No-op on an empty tree.
func (t *Tree[T]) ExpandAll() {
	if t.root == nil {
		return
	}
	t.root.ExpandAll()
}

// CollapseAll collapses every collapsable node at or below minLevel and
// forces collapsable nodes shallower than minLevel open. No-op on an empty
// tree.
func (t *Tree[T]) CollapseAll(minLevel int) {
	if t.root == nil {
		return
	}
	t.root.CollapseAll(minLevel)
}

// Print writes a diagnostic dump to w: one line per node in pre-order,
// indented by level, formatted as <data>:<height>:<dash-joined path>.
func (t *Tree[T]) Print(w io.Writer, indent string) {
	if t.root == nil {
		return
	}
	t.root.TraverseDFS(func(n *Node[T]) {
		fmt.Fprintf(w, "%s%v:%d:%s\n", strings.Repeat(indent, n.level), n.Data, n.height, fmtPath(n.Path()))
	}, false)
}

// String returns the Print dump with a single-space indent.
func (t *Tree[T]) String() string {
	var sb strings.Builder
	t.Print(&sb, " ")
	return sb.String()
}

func (t *Tree[T]) warnf(format string, args ...any) {
	if t.logger != nil {
		t.logger.Warnf(format, args...)
	}
}

// growHeightsUp walks from n toward the root, raising each ancestor's height
// to cover the chain below it. Stops early once an ancestor already accounts
// for the new depth, which insertion can never reduce.
func growHeightsUp[T any](n *Node[T]) {
	for child, a := n, n.parent; a != nil; child, a = a, a.parent {
		if a.height >= child.height+1 {
			break
		}
		a.height = child.height + 1
	}
}

// recomputeHeightsUp recomputes each ancestor height from scratch as
// 1 + max(child height), starting at n and walking to the root. Used after
// removal, which can only decrease heights.
func recomputeHeightsUp[T any](n *Node[T]) {
	for a := n; a != nil; a = a.parent {
		h := 0
		for _, c := range a.children {
			if c.height+1 > h {
				h = c.height + 1
			}
		}
		a.height = h
	}
}

// fmtPath renders a sibling-index path as dash-joined integers.
// The root's empty path renders as the empty string.
func fmtPath(path []int) string {
	if len(path) == 0 {
		return ""
	}
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, "-")
}
