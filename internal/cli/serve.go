package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/treelinehq/treeline/internal/server"
	"github.com/treelinehq/treeline/pkg/outline"
	"github.com/treelinehq/treeline/pkg/viewstate"
)

// serveCommand creates the serve command exposing an outline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noState   bool
		redisAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve [outline file]",
		Short: "Serve an outline over HTTP",
		Long: `Serve an outline over HTTP.

Endpoints:
  GET  /api/outline               flattened outline (?all=1 for every node)
  POST /api/nodes/{path}/toggle   flip a node's expanded flag
  GET  /healthz                   health check

Toggles are persisted to the view-state store, so terminal sessions on the
same document pick them up.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], addr, noState, redisAddr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noState, "no-state", false, "do not load or persist view state")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for shared view state (host:port)")

	return cmd
}

// runServe loads the outline and blocks serving it until ctx is canceled.
func (c *CLI) runServe(ctx context.Context, input, addr string, noState bool, redisAddr string) error {
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

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(t, fingerprint, store, c.Logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	printInfo("Serving %s on %s", input, addr)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
