package outline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/treelinehq/treeline/pkg/tree"
)

// entryNamespace is the UUID namespace for generated entry ids.
var entryNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// Fingerprint returns a stable identity for the document: the SHA-256 hex of
// its canonical JSON encoding. It keys persisted view state and cached
// artifacts, and seeds generated entry ids.
func Fingerprint(d *Document) string {
	data, _ := json.Marshal(d)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// EntryID returns the deterministic id for the item at the given position
// path within the document identified by fingerprint. Name-based UUIDs keep
// generated ids stable across runs for an unchanged document.
func EntryID(fingerprint string, path []int) string {
	name := fingerprint
	for _, p := range path {
		name += fmt.Sprintf("/%d", p)
	}
	return uuid.NewSHA1(entryNamespace, []byte(name)).String()
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	logger *log.Logger
}

// WithLogger passes a logger through to the constructed tree, so path lookup
// warnings surface in the application log.
func WithLogger(l *log.Logger) BuildOption {
	return func(o *buildOptions) { o.logger = l }
}

// Build constructs a tree model from the document. The root node carries the
// document title; each item becomes one node under it, in document order.
// Items without an explicit id get a deterministic generated one.
func Build(d *Document, opts ...BuildOption) (*tree.Tree[Entry], error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	var treeOpts []tree.Option[Entry]
	if o.logger != nil {
		treeOpts = append(treeOpts, tree.WithLogger[Entry](o.logger))
	}
	t := tree.New[Entry](treeOpts...)

	fp := Fingerprint(d)
	title := d.Title
	if title == "" {
		title = DefaultTitle
	}
	root, err := t.Add(Entry{ID: EntryID(fp, nil), Label: title}, nil)
	if err != nil {
		return nil, err
	}

	var build func(items []Item, parent *tree.Node[Entry], path []int) error
	build = func(items []Item, parent *tree.Node[Entry], path []int) error {
		for i, it := range items {
			itemPath := append(append([]int(nil), path...), i)
			id := it.ID
			if id == "" {
				id = EntryID(fp, itemPath)
			}

			var addOpts []tree.AddOption
			if it.Expanded != nil {
				addOpts = append(addOpts, tree.WithExpanded(*it.Expanded))
			}
			if it.Highlighted != nil {
				addOpts = append(addOpts, tree.WithHighlighted(*it.Highlighted))
			}
			if it.Collapsable != nil {
				addOpts = append(addOpts, tree.WithCollapsable(*it.Collapsable))
			}

			n, err := t.Add(Entry{ID: id, Label: it.Label}, parent, addOpts...)
			if err != nil {
				return err
			}
			if err := build(it.Children, n, itemPath); err != nil {
				return err
			}
		}
		return nil
	}
	if err := build(d.Items, root, nil); err != nil {
		return nil, err
	}
	return t, nil
}

// Load reads, validates and builds an outline file in one step.
// Returns the tree together with the document fingerprint.
func Load(path string, opts ...BuildOption) (*tree.Tree[Entry], string, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	t, err := Build(doc, opts...)
	if err != nil {
		return nil, "", err
	}
	return t, Fingerprint(doc), nil
}
