// Package render draws a resolved system as a node-link diagram.
//
// # Overview
//
// Blocks become Graphviz nodes and lines become edges from the source
// block to every destination block. Subsystem blocks are drawn with a
// 3D box so nested structure stands out.
//
//	dot := render.ToDOT(doc.Root.Lookup("Controller"), render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Formats
//
// [FormatDOT] returns the DOT source as-is, for use with external Graphviz
// tools. [FormatSVG] lays the graph out in-process with
// [github.com/goccy/go-graphviz], which bundles Graphviz as WebAssembly, so
// no system installation is needed.
package render
