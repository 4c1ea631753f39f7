package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/treelinehq/treeline/pkg/outline"
	"github.com/treelinehq/treeline/pkg/tree"
	"github.com/treelinehq/treeline/pkg/viewstate"
)

// Outline browser styles
var (
	browserSelectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browserNormalStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	browserDimStyle       = lipgloss.NewStyle().Foreground(colorDim)
	browserHighlightStyle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
)

// tuiCommand creates the tui command for interactive outline browsing.
func (c *CLI) tuiCommand() *cobra.Command {
	var (
		noState   bool
		redisAddr string
	)

	cmd := &cobra.Command{
		Use:   "tui [outline file]",
		Short: "Browse an outline interactively",
		Long: `Browse an outline interactively in the terminal.

Keys:
  up/k, down/j   move the cursor
  enter, space   toggle the branch under the cursor
  h              highlight the node under the cursor
  e              expand all
  c              collapse to the first level
  q              quit

Expand/collapse and highlight changes are persisted per document and
re-applied by show, export, tui and serve, unless --no-state is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context(), args[0], noState, redisAddr)
		},
	}

	cmd.Flags().BoolVar(&noState, "no-state", false, "do not load or persist view state")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for shared view state (host:port)")

	return cmd
}

// runTUI loads the outline, runs the browser and persists the view state.
func (c *CLI) runTUI(ctx context.Context, input string, noState bool, redisAddr string) error {
	t, fingerprint, err := outline.Load(input, outline.WithLogger(c.Logger))
	if err != nil {
		return fmt.Errorf("load outline %s: %w", input, err)
	}

	var store viewstate.Store
	if !noState {
		store, err = c.newStateStore(redisAddr)
		if err != nil {
			return fmt.Errorf("open state store: %w", err)
		}
		defer store.Close()

		st, err := store.Get(ctx, fingerprint)
		if err != nil {
			c.Logger.Warnf("read view state: %v", err)
		}
		viewstate.Apply(st, t)
	}

	model := newBrowserModel(t)
	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	if store != nil {
		if err := store.Set(ctx, fingerprint, viewstate.Capture(t)); err != nil {
			return fmt.Errorf("persist view state: %w", err)
		}
	}
	return nil
}

// =============================================================================
// BrowserModel - Interactive outline browsing
// =============================================================================

// browserModel is the bubbletea model for the outline browser. It renders
// the tree's expanded-only projection and mutates view-state flags in place.
type browserModel struct {
	tree   *tree.Tree[outline.Entry]
	rows   []*tree.Node[outline.Entry]
	cursor int
	height int
	offset int
}

func newBrowserModel(t *tree.Tree[outline.Entry]) browserModel {
	m := browserModel{tree: t, height: 20}
	m.refresh()
	return m
}

// refresh recomputes the visible rows after a view-state change and keeps
// the cursor in range.
func (m *browserModel) refresh() {
	m.rows = m.tree.Flatten(tree.FlattenOptions{ExpandedOnly: true})
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.clampOffset()
}

func (m *browserModel) clampOffset() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.clampOffset()
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				m.clampOffset()
			}
		case "enter", " ":
			if len(m.rows) > 0 {
				n := m.rows[m.cursor]
				if n.HasChildren() {
					n.Expanded = !n.Expanded
					m.refresh()
				}
			}
		case "h":
			if len(m.rows) > 0 {
				n := m.rows[m.cursor]
				n.Highlighted = !n.Highlighted
			}
		case "e":
			m.tree.ExpandAll()
			m.refresh()
		case "c":
			m.tree.CollapseAll(1)
			m.refresh()
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 5
		if m.height < 5 {
			m.height = 5
		}
		m.clampOffset()
	}
	return m, nil
}

func (m browserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Outline"))
	b.WriteString("\n")
	b.WriteString(browserDimStyle.Render("↑/↓ navigate  ⏎ toggle  h highlight  e expand  c collapse  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := m.offset; i < end; i++ {
		n := m.rows[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		marker := "  "
		if n.HasChildren() {
			if n.Expanded {
				marker = "▾ "
			} else {
				marker = "▸ "
			}
		}

		line := cursor + strings.Repeat("  ", n.Level()) + marker + n.Data.Label

		switch {
		case i == m.cursor:
			b.WriteString(browserSelectedStyle.Render(line))
		case n.Highlighted:
			b.WriteString(browserHighlightStyle.Render(line))
		default:
			b.WriteString(browserNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(browserDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.rows))))

	return b.String()
}
