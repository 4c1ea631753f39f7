package tree

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

// buildSample builds the four-node sample used across tests:
//
//	A
//	├── B
//	│   └── D
//	└── C
func buildSample(t *testing.T) (tr *Tree[string], a, b, c, d *Node[string]) {
	t.Helper()
	tr = New[string]()
	a = mustAdd(t, tr, "A", nil)
	b = mustAdd(t, tr, "B", a)
	c = mustAdd(t, tr, "C", a)
	d = mustAdd(t, tr, "D", b)
	return tr, a, b, c, d
}

func mustAdd(t *testing.T, tr *Tree[string], data string, parent *Node[string], opts ...AddOption) *Node[string] {
	t.Helper()
	n, err := tr.Add(data, parent, opts...)
	if err != nil {
		t.Fatalf("Add(%q): %v", data, err)
	}
	return n
}

// verifyInvariants walks the whole tree and checks the derived metrics:
// level = parent.level + 1 (root = 0) and height = 1 + max(child height)
// (0 for a leaf).
func verifyInvariants(t *testing.T, tr *Tree[string]) {
	t.Helper()
	if tr.Root() == nil {
		return
	}
	tr.Root().TraverseDFS(func(n *Node[string]) {
		wantLevel := 0
		if n.Parent() != nil {
			wantLevel = n.Parent().Level() + 1
		}
		if n.Level() != wantLevel {
			t.Errorf("node %v: level = %d, want %d", n.Data, n.Level(), wantLevel)
		}
		wantHeight := 0
		for _, c := range n.Children() {
			if c.Height()+1 > wantHeight {
				wantHeight = c.Height() + 1
			}
		}
		if n.Height() != wantHeight {
			t.Errorf("node %v: height = %d, want %d", n.Data, n.Height(), wantHeight)
		}
	}, false)
}

func labels(nodes []*Node[string]) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Data
	}
	return out
}

func TestAdd(t *testing.T) {
	tr, a, b, _, _ := buildSample(t)

	if tr.Root() != a {
		t.Fatal("root is not A")
	}
	if got := a.Height(); got != 2 {
		t.Errorf("A height = %d, want 2", got)
	}
	if got := b.Height(); got != 1 {
		t.Errorf("B height = %d, want 1", got)
	}
	verifyInvariants(t, tr)
}

func TestAddSecondRoot(t *testing.T) {
	tr := New[string]()
	mustAdd(t, tr, "A", nil)

	if _, err := tr.Add("Z", nil); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("Add second root: err = %v, want ErrInvalidOperation", err)
	}
}

func TestAddAtPosition(t *testing.T) {
	tr := New[string]()
	root := mustAdd(t, tr, "root", nil)
	mustAdd(t, tr, "x", root)
	mustAdd(t, tr, "z", root)
	mustAdd(t, tr, "y", root, AtPosition(1))

	if got := labels(root.Children()); !equalStrings(got, []string{"x", "y", "z"}) {
		t.Errorf("children = %v, want [x y z]", got)
	}
}

func TestAddOptions(t *testing.T) {
	tr := New[string]()
	root := mustAdd(t, tr, "root", nil)

	// An explicit false must not be overridden back to the default.
	n := mustAdd(t, tr, "n", root, WithExpanded(false), WithCollapsable(false), WithHighlighted(true))
	if n.Expanded {
		t.Error("Expanded = true, want explicit false honored")
	}
	if n.Collapsable {
		t.Error("Collapsable = true, want explicit false honored")
	}
	if !n.Highlighted {
		t.Error("Highlighted = false, want true")
	}

	// Defaults.
	m := mustAdd(t, tr, "m", root)
	if !m.Expanded || m.Highlighted || !m.Collapsable {
		t.Errorf("defaults = (%v, %v, %v), want (true, false, true)",
			m.Expanded, m.Highlighted, m.Collapsable)
	}
}

func TestAddAll(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		items    []string
		prepend  bool
		want     []string
	}{
		{
			name:  "AppendOrder",
			items: []string{"a", "b", "c"},
			want:  []string{"a", "b", "c"},
		},
		{
			name:     "AppendAfterExisting",
			existing: []string{"x"},
			items:    []string{"a", "b"},
			want:     []string{"x", "a", "b"},
		},
		{
			name:     "PrependKeepsInputOrder",
			existing: []string{"x", "y"},
			items:    []string{"a", "b", "c"},
			prepend:  true,
			want:     []string{"a", "b", "c", "x", "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New[string]()
			root := mustAdd(t, tr, "root", nil)
			for _, e := range tt.existing {
				mustAdd(t, tr, e, root)
			}

			var opts []AddOption
			if tt.prepend {
				opts = append(opts, Prepend())
			}
			if _, err := tr.AddAll(tt.items, root, opts...); err != nil {
				t.Fatalf("AddAll: %v", err)
			}

			if got := labels(root.Children()); !equalStrings(got, tt.want) {
				t.Errorf("children = %v, want %v", got, tt.want)
			}
			verifyInvariants(t, tr)
		})
	}
}

func TestRemove(t *testing.T) {
	tr, a, b, _, d := buildSample(t)

	got := tr.Remove(d)
	if got != d {
		t.Fatal("Remove did not return the detached node")
	}
	if got.Parent() != nil {
		t.Error("removed node still has a parent")
	}
	if b.Height() != 0 {
		t.Errorf("B height = %d, want 0 after removing D", b.Height())
	}
	if a.Height() != 1 {
		t.Errorf("A height = %d, want 1 after removing D", a.Height())
	}
	verifyInvariants(t, tr)
}

func TestRemoveSubtree(t *testing.T) {
	tr, a, b, _, d := buildSample(t)

	// Removing B takes D with it.
	tr.Remove(b)
	if tr.Contains("D") {
		t.Error("tree still contains D after removing its parent")
	}
	if d.Parent() != b {
		t.Error("detached subtree links were not left intact")
	}
	if a.Height() != 1 {
		t.Errorf("A height = %d, want 1", a.Height())
	}
	verifyInvariants(t, tr)
}

func TestRemoveRoot(t *testing.T) {
	tr, a, _, _, _ := buildSample(t)

	tr.Remove(a)
	if !tr.IsEmpty() {
		t.Fatal("tree not empty after removing root")
	}
	if tr.Contains("B") {
		t.Error("Contains reports matches on an empty tree")
	}
	if tr.FindBFS(func(s string) bool { return s == "D" }) != nil {
		t.Error("FindBFS reports matches on an empty tree")
	}
}

func TestMove(t *testing.T) {
	tr, a, b, c, d := buildSample(t)

	if err := tr.Move(d, c); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if len(c.Children()) != 1 || c.Children()[0] != d {
		t.Fatal("D is not C's first child")
	}
	if d.Level() != c.Level()+1 {
		t.Errorf("D level = %d, want %d", d.Level(), c.Level()+1)
	}
	if b.Height() != 0 {
		t.Errorf("B height = %d, want 0 after its only descendant moved away", b.Height())
	}
	if a.Height() != 2 {
		t.Errorf("A height = %d, want 2", a.Height())
	}
	verifyInvariants(t, tr)
}

func TestMoveBecomesFirstChild(t *testing.T) {
	tr, a, _, c, d := buildSample(t)

	if err := tr.Move(d, a); err != nil {
		t.Fatalf("Move: %v", err)
	}
	kids := labels(a.Children())
	if kids[0] != "D" {
		t.Errorf("children = %v, want D first", kids)
	}
	_ = c
	verifyInvariants(t, tr)
}

func TestMoveNoOps(t *testing.T) {
	tr, a, b, _, _ := buildSample(t)

	if err := tr.Move(b, b); err != nil {
		t.Errorf("Move(b, b) = %v, want no-op", err)
	}
	if err := tr.Move(a, b); err != nil {
		t.Errorf("Move(root, ...) = %v, want no-op", err)
	}
	if tr.Root() != a || b.Parent() != a {
		t.Error("no-op move changed the structure")
	}
}

func TestMoveIntoOwnSubtree(t *testing.T) {
	tr, _, b, _, d := buildSample(t)

	if err := tr.Move(b, d); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("Move into own subtree: err = %v, want ErrInvalidOperation", err)
	}
	// Structure must be untouched.
	if d.Parent() != b {
		t.Error("failed move mutated the tree")
	}
	verifyInvariants(t, tr)
}

func TestMoveDeepSubtree(t *testing.T) {
	tr := New[string]()
	root := mustAdd(t, tr, "root", nil)
	a := mustAdd(t, tr, "a", root)
	b := mustAdd(t, tr, "b", a)
	mustAdd(t, tr, "c", b)
	target := mustAdd(t, tr, "target", root)

	if err := tr.Move(a, target); err != nil {
		t.Fatalf("Move: %v", err)
	}
	// Levels of the whole moved subtree are re-derived.
	want := map[string]int{"root": 0, "target": 1, "a": 2, "b": 3, "c": 4}
	tr.Root().TraverseDFS(func(n *Node[string]) {
		if n.Level() != want[n.Data] {
			t.Errorf("node %s: level = %d, want %d", n.Data, n.Level(), want[n.Data])
		}
	}, false)
	if root.Height() != 4 {
		t.Errorf("root height = %d, want 4", root.Height())
	}
	verifyInvariants(t, tr)
}

func TestClear(t *testing.T) {
	tr, _, _, _, _ := buildSample(t)
	tr.Clear()
	if !tr.IsEmpty() {
		t.Fatal("tree not empty after Clear")
	}
	if tr.IsAllExpanded() {
		t.Error("IsAllExpanded = true on empty tree")
	}
}

func TestFindInPath(t *testing.T) {
	tr, a, b, c, d := buildSample(t)

	tests := []struct {
		name string
		path []int
		want *Node[string]
		err  bool
	}{
		{name: "Root", path: nil, want: a},
		{name: "FirstChild", path: []int{0}, want: b},
		{name: "SecondChild", path: []int{1}, want: c},
		{name: "Grandchild", path: []int{0, 0}, want: d},
		{name: "OutOfRange", path: []int{5}, err: true},
		{name: "DeadEnd", path: []int{1, 0}, err: true},
		{name: "Negative", path: []int{-1}, err: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tr.FindInPath(tt.path)
			if tt.err {
				if !errors.Is(err, ErrInvalidPath) {
					t.Fatalf("err = %v, want ErrInvalidPath", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindInPath: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got.Data, tt.want.Data)
			}
		})
	}
}

func TestFindInPathEmptyTree(t *testing.T) {
	tr := New[string]()
	if _, err := tr.FindInPath([]int{0}); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("err = %v, want ErrInvalidPath", err)
	}
}

func TestFindInPathLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	tr := New[string](WithLogger[string](logger))
	mustAdd(t, tr, "A", nil)

	if _, err := tr.FindInPath([]int{3}); err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(buf.String(), "does not resolve") {
		t.Errorf("no warning logged, got %q", buf.String())
	}
}

func TestPathRoundTrip(t *testing.T) {
	tr, _, _, _, _ := buildSample(t)
	mustAdd(t, tr, "E", tr.Root().Children()[1])

	tr.Root().TraverseDFS(func(n *Node[string]) {
		got, err := tr.FindInPath(n.Path())
		if err != nil {
			t.Fatalf("FindInPath(%v): %v", n.Path(), err)
		}
		if got != n {
			t.Errorf("path %v resolved to %v, want %v", n.Path(), got.Data, n.Data)
		}
	}, false)
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name     string
		collapse []string // labels to mark collapsed before flattening
		opts     FlattenOptions
		want     []string
	}{
		{
			name: "AllExpanded",
			opts: FlattenOptions{ExpandedOnly: true},
			want: []string{"A", "B", "D", "C"},
		},
		{
			name:     "CollapsedHidesDescendants",
			collapse: []string{"B"},
			opts:     FlattenOptions{ExpandedOnly: true},
			want:     []string{"A", "B", "C"},
		},
		{
			name:     "CollapsedNodeStillIncluded",
			collapse: []string{"A"},
			opts:     FlattenOptions{ExpandedOnly: true},
			want:     []string{"A"},
		},
		{
			name:     "ExpandedOnlyOffIncludesEverything",
			collapse: []string{"A", "B"},
			opts:     FlattenOptions{ExpandedOnly: false},
			want:     []string{"A", "B", "D", "C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _, _, _, _ := buildSample(t)
			for _, label := range tt.collapse {
				n := tr.FindBFS(func(s string) bool { return s == label })
				n.Expanded = false
			}
			got := labels(tr.Flatten(tt.opts))
			if !equalStrings(got, tt.want) {
				t.Errorf("Flatten = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlattenEmpty(t *testing.T) {
	tr := New[string]()
	if got := tr.Flatten(DefaultFlattenOptions()); got != nil {
		t.Errorf("Flatten on empty tree = %v, want nil", got)
	}
}

func TestFlattenMatch(t *testing.T) {
	// root
	// ├── a
	// │   ├── x1
	// │   └── x2
	// └── b
	//     └── x3
	tr := New[string]()
	root := mustAdd(t, tr, "root", nil)
	a := mustAdd(t, tr, "a", root)
	mustAdd(t, tr, "x1", a)
	mustAdd(t, tr, "x2", a)
	b := mustAdd(t, tr, "b", root)
	mustAdd(t, tr, "x3", b)

	got := labels(tr.FlattenMatch(func(n *Node[string]) bool {
		return strings.HasPrefix(n.Data, "x")
	}))

	// Ancestors appear exactly once, immediately before their first matched
	// descendant, nearest ancestor last.
	want := []string{"root", "a", "x1", "x2", "b", "x3"}
	if !equalStrings(got, want) {
		t.Errorf("FlattenMatch = %v, want %v", got, want)
	}
}

func TestFlattenMatchMatchedAncestor(t *testing.T) {
	tr, _, _, _, _ := buildSample(t)

	// B matches and so does its child D: no duplicates.
	got := labels(tr.FlattenMatch(func(n *Node[string]) bool {
		return n.Data == "B" || n.Data == "D"
	}))
	want := []string{"A", "B", "D"}
	if !equalStrings(got, want) {
		t.Errorf("FlattenMatch = %v, want %v", got, want)
	}
}

func TestExpandCollapseAll(t *testing.T) {
	tr, a, b, c, d := buildSample(t)

	tr.CollapseAll(1)
	if !a.Expanded {
		t.Error("level-0 node collapsed by CollapseAll(1)")
	}
	for _, n := range []*Node[string]{b, c, d} {
		if n.Expanded {
			t.Errorf("node %s still expanded after CollapseAll(1)", n.Data)
		}
	}
	if tr.IsAllExpanded() {
		t.Error("IsAllExpanded = true after collapse")
	}

	tr.ExpandAll()
	if !tr.IsAllExpanded() {
		t.Error("IsAllExpanded = false after ExpandAll")
	}
}

func TestCollapseAllSkipsNonCollapsable(t *testing.T) {
	tr := New[string]()
	root := mustAdd(t, tr, "root", nil)
	pinned := mustAdd(t, tr, "pinned", root, WithCollapsable(false))
	normal := mustAdd(t, tr, "normal", root)

	tr.CollapseAll(0)
	if !pinned.Expanded {
		t.Error("non-collapsable node was collapsed")
	}
	if normal.Expanded {
		t.Error("collapsable node was not collapsed")
	}
	if root.Expanded {
		t.Error("root not collapsed by CollapseAll(0)")
	}
}

func TestContains(t *testing.T) {
	tr, _, _, _, _ := buildSample(t)
	if !tr.Contains("D") {
		t.Error("Contains(D) = false")
	}
	if tr.Contains("Z") {
		t.Error("Contains(Z) = true")
	}
}

func TestPrint(t *testing.T) {
	tr, _, _, _, _ := buildSample(t)

	var buf bytes.Buffer
	tr.Print(&buf, "  ")

	want := "A:2:\n  B:1:0\n    D:0:0-0\n  C:0:1\n"
	if buf.String() != want {
		t.Errorf("Print =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestInvariantsAfterMutationSequence(t *testing.T) {
	tr := New[string]()
	root := mustAdd(t, tr, "root", nil)
	nodes := []*Node[string]{root}

	// Grow a small tree, then shuffle it around and verify the derived
	// metrics after every step.
	for _, label := range []string{"a", "b", "c", "d", "e", "f"} {
		parent := nodes[len(nodes)/2]
		nodes = append(nodes, mustAdd(t, tr, label, parent))
		verifyInvariants(t, tr)
	}

	tr.Remove(nodes[3])
	verifyInvariants(t, tr)

	if err := tr.Move(nodes[5], nodes[1]); err != nil {
		t.Fatalf("Move: %v", err)
	}
	verifyInvariants(t, tr)

	tr.Remove(nodes[1])
	verifyInvariants(t, tr)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
