package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/treelinehq/treeline/pkg/outline"
	"github.com/treelinehq/treeline/pkg/tree"
)

// DOTOptions configures node-link diagram output.
type DOTOptions struct {
	// ExpandedOnly omits the descendants of collapsed nodes.
	ExpandedOnly bool

	// Detailed includes entry ids and levels in node labels.
	// When false, only the label text is shown.
	Detailed bool
}

// ToDOT converts an outline tree to Graphviz DOT format.
// The resulting DOT string can be rendered with [RenderSVG] or [RenderPNG].
//
// Highlighted nodes are drawn with a yellow fill; collapsed nodes with
// hidden children get dashed outlines.
func ToDOT(t *tree.Tree[outline.Entry], opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if t.Root() == nil {
		buf.WriteString("}\n")
		return buf.String()
	}

	var edges []string
	writeDOTNode(&buf, t.Root(), opts, &edges)

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeDOTNode(buf *bytes.Buffer, n *tree.Node[outline.Entry], opts DOTOptions, edges *[]string) {
	pruned := opts.ExpandedOnly && !n.Expanded
	attrs := fmtDOTAttrs(n, opts, pruned)
	fmt.Fprintf(buf, "  %q [%s];\n", n.Data.ID, strings.Join(attrs, ", "))

	if pruned {
		return
	}
	for _, c := range n.Children() {
		*edges = append(*edges, fmt.Sprintf("  %q -> %q;\n", n.Data.ID, c.Data.ID))
		writeDOTNode(buf, c, opts, edges)
	}
}

func fmtDOTAttrs(n *tree.Node[outline.Entry], opts DOTOptions, pruned bool) []string {
	label := n.Data.Label
	if opts.Detailed {
		label = fmt.Sprintf("%s\nid: %s\nlevel: %d", n.Data.Label, n.Data.ID, n.Level())
	}

	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.Highlighted:
		attrs = append(attrs, "fillcolor=lightyellow")
	case pruned && n.HasChildren():
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
