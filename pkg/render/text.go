package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/treelinehq/treeline/pkg/tree"
)

// TextOptions configures terminal tree rendering.
type TextOptions struct {
	// ExpandedOnly hides the descendants of collapsed nodes and marks
	// collapsed branches with CollapsedMarker.
	ExpandedOnly bool

	// CollapsedMarker is appended to a collapsed node that has hidden
	// children. Defaults to " [+]".
	CollapsedMarker string

	// Color styles highlighted nodes with lipgloss. Disable for plain
	// output (piping, tests).
	Color bool
}

// DefaultTextOptions returns the options used by the CLI show command.
func DefaultTextOptions() TextOptions {
	return TextOptions{
		ExpandedOnly:    true,
		CollapsedMarker: " [+]",
		Color:           true,
	}
}

var highlightStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

// Text writes a branch-glyph drawing of the tree to w.
//
//	root
//	├── branch
//	│   └── leaf
//	└── branch [+]
func Text[T any](w io.Writer, t *tree.Tree[T], opts TextOptions) error {
	root := t.Root()
	if root == nil {
		return nil
	}
	if opts.CollapsedMarker == "" {
		opts.CollapsedMarker = " [+]"
	}
	if _, err := fmt.Fprintln(w, line(root, opts)); err != nil {
		return err
	}
	return writeChildren(w, root, "", opts)
}

func writeChildren[T any](w io.Writer, n *tree.Node[T], prefix string, opts TextOptions) error {
	if opts.ExpandedOnly && !n.Expanded {
		return nil
	}
	children := n.Children()
	for i, c := range children {
		glyph, next := "├── ", prefix+"│   "
		if i == len(children)-1 {
			glyph, next = "└── ", prefix+"    "
		}
		if _, err := fmt.Fprintln(w, prefix+glyph+line(c, opts)); err != nil {
			return err
		}
		if err := writeChildren(w, c, next, opts); err != nil {
			return err
		}
	}
	return nil
}

func line[T any](n *tree.Node[T], opts TextOptions) string {
	label := fmt.Sprintf("%v", n.Data)
	if opts.Color && n.Highlighted {
		label = highlightStyle.Render(label)
	}
	if opts.ExpandedOnly && !n.Expanded && n.HasChildren() {
		label += opts.CollapsedMarker
	}
	return label
}
