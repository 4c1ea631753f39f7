package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/treelinehq/treeline/pkg/outline"
	"github.com/treelinehq/treeline/pkg/render"
	"github.com/treelinehq/treeline/pkg/viewstate"
)

// showCommand creates the show command for printing an outline.
func (c *CLI) showCommand() *cobra.Command {
	var (
		all       bool
		plain     bool
		noState   bool
		redisAddr string
	)

	cmd := &cobra.Command{
		Use:   "show [outline file]",
		Short: "Print an outline to the terminal",
		Long: `Print an outline to the terminal as a branch-glyph tree.

Collapsed branches are hidden and marked; pass --all to print every node
regardless of view state. Persisted view state (from previous tui or serve
sessions) is applied unless --no-state is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runShow(cmd.Context(), args[0], all, plain, noState, redisAddr)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "print every node, ignoring collapsed branches")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable color output")
	cmd.Flags().BoolVar(&noState, "no-state", false, "do not apply persisted view state")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for shared view state (host:port)")

	return cmd
}

// runShow loads the outline, applies persisted view state and prints it.
func (c *CLI) runShow(ctx context.Context, input string, all, plain, noState bool, redisAddr string) error {
	t, fingerprint, err := outline.Load(input, outline.WithLogger(c.Logger))
	if err != nil {
		return fmt.Errorf("load outline %s: %w", input, err)
	}

	if !noState {
		store, err := c.newStateStore(redisAddr)
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

	opts := render.DefaultTextOptions()
	opts.ExpandedOnly = !all
	opts.Color = !plain

	return render.Text(os.Stdout, t, opts)
}
