package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/treelinehq/treeline/pkg/viewstate"
)

// stateCommand creates the view-state management command.
func (c *CLI) stateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Manage persisted view state",
	}

	cmd.AddCommand(c.stateClearCommand())
	cmd.AddCommand(c.statePathCommand())

	return cmd
}

// stateClearCommand creates the "state clear" subcommand.
func (c *CLI) stateClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all persisted view state",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := viewstate.NewFileStore("")
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}
			defer store.Close()

			if err := store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear state: %w", err)
			}

			printSuccess("View state cleared")
			printDetail("Directory: %s", store.Path())
			return nil
		},
	}
}

// statePathCommand creates the "state path" subcommand.
func (c *CLI) statePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the view-state directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := viewstate.NewFileStore("")
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}
			defer store.Close()

			fmt.Println(store.Path())
			return nil
		},
	}
}
