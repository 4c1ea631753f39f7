package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/treelinehq/treeline/pkg/outline"
	"github.com/treelinehq/treeline/pkg/tree"
)

func buildBrowserTree(t *testing.T) *tree.Tree[outline.Entry] {
	t.Helper()
	tr := tree.New[outline.Entry]()
	root, err := tr.Add(outline.Entry{ID: "root", Label: "root"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	a, err := tr.Add(outline.Entry{ID: "a", Label: "alpha"}, root)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Add(outline.Entry{ID: "a1", Label: "alpha one"}, a); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Add(outline.Entry{ID: "b", Label: "beta"}, root); err != nil {
		t.Fatal(err)
	}
	return tr
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func update(t *testing.T, m browserModel, msgs ...tea.Msg) browserModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(browserModel)
		if !ok {
			t.Fatalf("Update returned %T, want browserModel", next)
		}
	}
	return m
}

func TestBrowserNavigation(t *testing.T) {
	m := newBrowserModel(buildBrowserTree(t))

	if len(m.rows) != 4 {
		t.Fatalf("initial rows = %d, want 4", len(m.rows))
	}

	m = update(t, m, key("j"), key("j"))
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}

	m = update(t, m, key("k"))
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}

	// Cursor stops at the edges.
	m = update(t, m, key("k"), key("k"), key("k"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}

func TestBrowserToggle(t *testing.T) {
	m := newBrowserModel(buildBrowserTree(t))

	// Collapse "alpha" (row 1): its child disappears.
	m = update(t, m, key("j"), key("enter"))
	if len(m.rows) != 3 {
		t.Fatalf("rows after collapse = %d, want 3", len(m.rows))
	}
	if m.rows[1].Expanded {
		t.Error("toggled node should be collapsed")
	}

	// Toggle again: child returns.
	m = update(t, m, key("enter"))
	if len(m.rows) != 4 {
		t.Errorf("rows after re-expand = %d, want 4", len(m.rows))
	}
}

func TestBrowserToggleLeafIsNoOp(t *testing.T) {
	m := newBrowserModel(buildBrowserTree(t))

	// "beta" is a leaf; toggling must not change the projection.
	m = update(t, m, key("j"), key("j"), key("j"), key("enter"))
	if len(m.rows) != 4 {
		t.Errorf("rows = %d, want 4", len(m.rows))
	}
}

func TestBrowserExpandCollapseAll(t *testing.T) {
	m := newBrowserModel(buildBrowserTree(t))

	m = update(t, m, key("c"))
	if len(m.rows) != 3 {
		t.Errorf("rows after collapse-all = %d, want root plus two children", len(m.rows))
	}

	m = update(t, m, key("e"))
	if len(m.rows) != 4 {
		t.Errorf("rows after expand-all = %d, want 4", len(m.rows))
	}
}

func TestBrowserHighlight(t *testing.T) {
	m := newBrowserModel(buildBrowserTree(t))

	m = update(t, m, key("j"), key("h"))
	if !m.rows[1].Highlighted {
		t.Error("node should be highlighted")
	}

	m = update(t, m, key("h"))
	if m.rows[1].Highlighted {
		t.Error("highlight should toggle off")
	}
}

func TestBrowserCursorClampAfterCollapse(t *testing.T) {
	m := newBrowserModel(buildBrowserTree(t))

	// Move to the last row, then collapse everything from the root.
	m = update(t, m, key("j"), key("j"), key("j"))
	m = update(t, m, key("k"), key("k"), key("k"), key("enter"))
	if m.cursor >= len(m.rows) {
		t.Errorf("cursor %d out of range for %d rows", m.cursor, len(m.rows))
	}
}

func TestBrowserView(t *testing.T) {
	m := newBrowserModel(buildBrowserTree(t))
	view := m.View()

	for _, label := range []string{"root", "alpha", "alpha one", "beta"} {
		if !strings.Contains(view, label) {
			t.Errorf("view missing %q", label)
		}
	}
	if !strings.Contains(view, "[1/4]") {
		t.Error("view missing position indicator")
	}
}

func TestBrowserQuit(t *testing.T) {
	m := newBrowserModel(buildBrowserTree(t))
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}
