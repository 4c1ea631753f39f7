// Package outline loads hierarchical outline documents and turns them into
// tree models.
//
// An outline document is the source-data format consumed by treeline: a
// title plus a nested list of items, written as JSON or TOML. Loading a
// document produces a [tree.Tree] of [Entry] payloads that the render, TUI
// and HTTP layers consume.
//
// Items may carry an explicit id. Missing ids are filled in with
// deterministic UUIDs derived from the document fingerprint and the item's
// position, so ids are stable across runs for an unchanged document and can
// key persisted view state.
package outline

import (
	"github.com/treelinehq/treeline/pkg/errors"
)

// Entry is the tree payload for one outline item.
type Entry struct {
	// ID uniquely identifies the item within the document.
	ID string
	// Label is the display text.
	Label string
}

// String returns the label, making Entry render naturally in diagnostics.
func (e Entry) String() string { return e.Label }

// Item is one element of an outline document. The view-state fields are
// optional tri-state: nil means "use the container default", so an explicit
// false in a document is preserved rather than being folded into the default.
type Item struct {
	ID          string `json:"id,omitempty" toml:"id"`
	Label       string `json:"label" toml:"label"`
	Expanded    *bool  `json:"expanded,omitempty" toml:"expanded"`
	Highlighted *bool  `json:"highlighted,omitempty" toml:"highlighted"`
	Collapsable *bool  `json:"collapsable,omitempty" toml:"collapsable"`
	Children    []Item `json:"children,omitempty" toml:"children"`
}

// Document is a complete outline document.
type Document struct {
	Title string `json:"title,omitempty" toml:"title"`
	Items []Item `json:"items" toml:"items"`
}

// DefaultTitle is used for documents without an explicit title.
const DefaultTitle = "outline"

// Validate checks the document: every label must be a printable non-empty
// string, and explicit ids must be well-formed and unique across the
// document.
func (d *Document) Validate() error {
	seen := make(map[string]bool)
	var walk func(items []Item) error
	walk = func(items []Item) error {
		for _, it := range items {
			if err := errors.ValidateLabel(it.Label); err != nil {
				return err
			}
			if err := errors.ValidateEntryID(it.ID); err != nil {
				return err
			}
			if it.ID != "" {
				if seen[it.ID] {
					return errors.New(errors.ErrCodeInvalidDocument, "duplicate entry id %q", it.ID)
				}
				seen[it.ID] = true
			}
			if err := walk(it.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(d.Items)
}
