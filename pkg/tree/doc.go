// Package tree implements a generic, in-memory tree container for
// hierarchical data that is consumed by presentation layers.
//
// A [Tree] owns at most one root [Node] and is the sole entry point for
// structural mutation (add, remove, move, clear). Nodes carry a caller
// payload, parent/children links, derived structural metadata (depth level
// and subtree height) and per-node view-state flags (expanded, highlighted,
// collapsable) used by tree-view style renderers.
//
// The container maintains two derived metrics by construction:
//
//   - level: depth from the root (root = 0), recomputed top-down whenever a
//     node's ancestry changes
//   - height: number of descendant levels below a node (0 for a leaf),
//     recomputed bottom-up along the ancestor chain after every mutation
//
// Traversals (depth-first pre/post order, breadth-first, node-to-root) and
// the [Tree.Flatten] projection are read-only and deterministic. Flatten
// turns the tree into an ordered slice of nodes ready for linear rendering,
// either gated by the expanded flags of strict ancestors or filtered by a
// caller predicate with automatic ancestor-chain inclusion.
//
// Tree is not safe for concurrent mutation. Callers must serialize
// structural mutations externally; read-only traversals may run concurrently
// with each other but not with a mutation.
package tree
