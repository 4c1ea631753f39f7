// Package viewstate persists per-document presentation state between runs.
//
// The tree model carries view-state flags (expanded, highlighted) that the
// TUI and HTTP viewers mutate while browsing. This package captures those
// flags as a compact [State] keyed by entry id, stores it under the
// document's fingerprint, and re-applies it the next time the same document
// is opened. Only presentation hints are stored; tree structure is never
// serialized.
//
// Storage backends:
//   - memory: in-process map for tests and ephemeral use
//   - file: JSON files under the user config directory for CLI use
//   - redis: shared store for multi-instance viewers
package viewstate

import (
	"context"
	"time"

	"github.com/treelinehq/treeline/pkg/outline"
	"github.com/treelinehq/treeline/pkg/tree"
)

// State is the persisted presentation state of one document.
// Entries not listed keep their document defaults.
type State struct {
	Collapsed   []string  `json:"collapsed,omitempty"`
	Highlighted []string  `json:"highlighted,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store is the interface for view-state storage backends.
type Store interface {
	// Get retrieves the state for a document fingerprint.
	// Returns nil, nil if no state is stored.
	Get(ctx context.Context, fingerprint string) (*State, error)

	// Set stores the state for a document fingerprint.
	Set(ctx context.Context, fingerprint string, st *State) error

	// Delete removes the stored state for a document fingerprint.
	Delete(ctx context.Context, fingerprint string) error

	// Close releases backend resources.
	Close() error
}

// Capture reads the current view-state flags off the tree.
// Nodes are recorded only when they deviate from the render defaults
// (expanded, not highlighted).
func Capture(t *tree.Tree[outline.Entry]) *State {
	st := &State{UpdatedAt: time.Now()}
	if t.Root() == nil {
		return st
	}
	t.Root().TraverseDFS(func(n *tree.Node[outline.Entry]) {
		if !n.Expanded {
			st.Collapsed = append(st.Collapsed, n.Data.ID)
		}
		if n.Highlighted {
			st.Highlighted = append(st.Highlighted, n.Data.ID)
		}
	}, false)
	return st
}

// Apply writes the stored flags back onto the tree. Entries missing from the
// tree (the document changed since the state was saved) are ignored.
func Apply(st *State, t *tree.Tree[outline.Entry]) {
	if st == nil || t.Root() == nil {
		return
	}
	collapsed := make(map[string]bool, len(st.Collapsed))
	for _, id := range st.Collapsed {
		collapsed[id] = true
	}
	highlighted := make(map[string]bool, len(st.Highlighted))
	for _, id := range st.Highlighted {
		highlighted[id] = true
	}
	t.Root().TraverseDFS(func(n *tree.Node[outline.Entry]) {
		if collapsed[n.Data.ID] {
			n.Expanded = false
		}
		if highlighted[n.Data.ID] {
			n.Highlighted = true
		}
	}, false)
}
