package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/soup/pkg/dag"
	"github.com/matzehuels/soup/pkg/provider"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds language and version lines to node labels.
	Detailed bool
	// Provider supplies package details. Optional.
	Provider *provider.Provider
}

// ToDOT converts a graph to Graphviz DOT format.
// The resulting DOT string can be rendered with [RenderSVG].
func ToDOT(g *dag.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")

	subRoots := subGraphRoots(opts.Provider)
	for level, nodes := range g.Levels {
		fmt.Fprintf(&buf, "\n  // level %d\n", level)
		buf.WriteString("  { rank=same;")
		for _, n := range nodes {
			fmt.Fprintf(&buf, " n%d;", n.ID)
		}
		buf.WriteString(" }\n")
		for _, n := range nodes {
			attrs := []string{fmt.Sprintf("label=%q", label(n, opts))}
			if subRoots[n.ID] {
				attrs = append(attrs, "fillcolor=lightblue")
			}
			fmt.Fprintf(&buf, "  n%d [%s];\n", n.ID, strings.Join(attrs, ", "))
		}
	}

	if len(g.Failed) > 0 {
		buf.WriteString("\n")
		for _, id := range g.Failed {
			fmt.Fprintf(&buf, "  n%d [label=%q, style=\"rounded,dashed\", fontcolor=grey];\n", id, fmt.Sprintf("#%d (unresolved)", id))
		}
	}

	buf.WriteString("\n")
	for _, nodes := range g.Levels {
		for _, n := range nodes {
			for _, c := range n.Children {
				if g.IsFailed(c) {
					fmt.Fprintf(&buf, "  n%d -> n%d [style=dashed];\n", n.ID, c)
				} else {
					fmt.Fprintf(&buf, "  n%d -> n%d;\n", n.ID, c)
				}
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func label(n dag.Node, opts Options) string {
	if !opts.Detailed || opts.Provider == nil {
		return n.Name
	}
	info, err := opts.Provider.GetPackageInfo(n.ID)
	if err != nil {
		return n.Name
	}
	parts := []string{n.Name, info.Language}
	if info.Version != "" {
		parts = append(parts, "v"+info.Version)
	}
	return strings.Join(parts, "\n")
}

// subGraphRoots returns the packages that start a nested package graph.
func subGraphRoots(p *provider.Provider) map[int]bool {
	roots := make(map[int]bool)
	if p == nil {
		return roots
	}
	for _, id := range p.GraphIDs() {
		if id == p.RootPackageGraphID() {
			continue
		}
		if g, err := p.GetPackageGraph(id); err == nil {
			roots[g.RootPackageID] = true
		}
	}
	return roots
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

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz <svg> tag with one whose size
// matches its viewBox, so the output scales cleanly when embedded.
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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
