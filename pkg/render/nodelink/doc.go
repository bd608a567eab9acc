// Package nodelink renders resolved dependency graphs as node-link diagrams.
//
// # Overview
//
// Every resolved package becomes a box and every dependency an arrow. The
// nodes of one resolution level share a Graphviz rank, so the drawing
// mirrors the level layout of [dag.Graph]. Children whose manifests failed
// to load are drawn as dashed placeholders.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(snap.Graph, nodelink.Options{Provider: snap.Provider})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Detailed: label nodes with language and version in addition to the name
//   - Provider: package lookup used for detailed labels and for shading
//     packages that start a nested language graph
//
// The generated DOT uses top-to-bottom layout (rankdir=TB) with rounded box
// nodes and can be saved and processed with external Graphviz tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
