package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/treelinehq/treeline/pkg/cache"
	"github.com/treelinehq/treeline/pkg/outline"
	"github.com/treelinehq/treeline/pkg/render"
	"github.com/treelinehq/treeline/pkg/tree"
	"github.com/treelinehq/treeline/pkg/viewstate"
)

// Supported export formats.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPNG = "png"
)

// exportCommand creates the export command for rendering diagram files.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		format    string
		output    string
		all       bool
		detailed  bool
		noCache   bool
		noState   bool
		redisAddr string
	)

	cmd := &cobra.Command{
		Use:   "export [outline file]",
		Short: "Export an outline as a node-link diagram",
		Long: `Export an outline as a node-link diagram.

Supported formats are dot (Graphviz source), svg and png. Collapsed branches
are pruned from the diagram unless --all is given. SVG and PNG artifacts are
cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != formatDOT && format != formatSVG && format != formatPNG {
				return fmt.Errorf("unsupported format %q: use dot, svg or png", format)
			}
			return c.runExport(cmd.Context(), args[0], exportParams{
				format:    format,
				output:    output,
				all:       all,
				detailed:  detailed,
				noCache:   noCache,
				noState:   noState,
				redisAddr: redisAddr,
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatSVG, "output format: dot, svg, png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input name with format extension)")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include collapsed branches")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include entry ids and levels in node labels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable artifact caching")
	cmd.Flags().BoolVar(&noState, "no-state", false, "do not apply persisted view state")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for shared view state (host:port)")

	return cmd
}

type exportParams struct {
	format    string
	output    string
	all       bool
	detailed  bool
	noCache   bool
	noState   bool
	redisAddr string
}

// runExport renders the outline to the requested format, going through the
// artifact cache for the expensive Graphviz formats.
func (c *CLI) runExport(ctx context.Context, input string, p exportParams) error {
	t, fingerprint, err := outline.Load(input, outline.WithLogger(c.Logger))
	if err != nil {
		return fmt.Errorf("load outline %s: %w", input, err)
	}

	if !p.noState {
		store, err := c.newStateStore(p.redisAddr)
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

	prog := newProgress(c.Logger)

	dot := render.ToDOT(t, render.DOTOptions{
		ExpandedOnly: !p.all,
		Detailed:     p.detailed,
	})

	data := []byte(dot)
	cacheHit := false
	if p.format != formatDOT {
		data, cacheHit, err = c.renderCached(ctx, dot, fingerprint, p)
		if err != nil {
			return fmt.Errorf("render %s: %w", p.format, err)
		}
	}

	output := p.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + p.format
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	prog.done(fmt.Sprintf("Exported %s", p.format))
	printSuccess("Export complete")
	printFile(output)
	// The stat counts every node, collapsed branches included.
	rows := t.Flatten(tree.FlattenOptions{ExpandedOnly: false})
	printStats(len(rows), t.Root().Height(), cacheHit)
	return nil
}

// renderCached renders the DOT source to svg/png, consulting the artifact
// cache first. The cache key covers the DOT bytes, so view-state changes
// (collapsed branches) produce distinct artifacts. Keys are scoped per
// document fingerprint, so two documents can never share artifacts.
func (c *CLI) renderCached(ctx context.Context, dot, fingerprint string, p exportParams) ([]byte, bool, error) {
	artifactCache, err := newCache(p.noCache)
	if err != nil {
		return nil, false, err
	}
	defer artifactCache.Close()

	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), docScope(fingerprint))
	key := keyer.ExportKey(cache.Hash([]byte(dot)), cache.ExportKeyOpts{
		Format:       p.format,
		ExpandedOnly: !p.all,
		Detailed:     p.detailed,
	})

	if data, hit, err := artifactCache.Get(ctx, key); err == nil && hit {
		return data, true, nil
	}

	var data []byte
	switch p.format {
	case formatSVG:
		data, err = render.RenderSVG(ctx, dot)
	case formatPNG:
		data, err = render.RenderPNG(ctx, dot)
	}
	if err != nil {
		return nil, false, err
	}

	if err := artifactCache.Set(ctx, key, data, 0); err != nil {
		c.Logger.Warnf("cache artifact: %v", err)
	}
	return data, false, nil
}

// docScope derives the per-document cache key prefix from the fingerprint.
// A short prefix keeps keys readable; 12 hex chars are plenty to separate
// the documents one machine ever renders.
func docScope(fingerprint string) string {
	if len(fingerprint) > 12 {
		fingerprint = fingerprint[:12]
	}
	return "doc:" + fingerprint + ":"
}
