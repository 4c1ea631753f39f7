// Package render turns outline trees into displayable output.
//
// Two renderers are provided:
//
//   - Text: branch-glyph drawing for terminals, honoring the tree's
//     expand/collapse view state.
//   - DOT: Graphviz node-link output via [ToDOT], rasterized with
//     [RenderSVG] and [RenderPNG].
//
// Both renderers read the tree; neither mutates it.
package render
