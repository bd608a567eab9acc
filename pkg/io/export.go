package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/soup/pkg/dag"
	"github.com/matzehuels/soup/pkg/provider"
)

type graph struct {
	Nodes  []node `json:"nodes"`
	Edges  []edge `json:"edges"`
	Failed []int  `json:"failed,omitempty"`
}

type node struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

type edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// WriteJSON encodes a graph as a node and edge list and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(g *dag.Graph, w io.Writer) error {
	out := graph{
		Nodes:  make([]node, 0, g.NodeCount()),
		Edges:  make([]edge, 0, g.EdgeCount()),
		Failed: g.Failed,
	}
	for level, nodes := range g.Levels {
		for _, n := range nodes {
			out.Nodes = append(out.Nodes, node{ID: n.ID, Name: n.Name, Level: level})
			for _, c := range n.Children {
				out.Edges = append(out.Edges, edge{From: n.ID, To: c})
			}
		}
	}
	return encode(w, out)
}

// ExportJSON writes a graph to a JSON file at path.
func ExportJSON(g *dag.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

// WriteSnapshot encodes a snapshot as JSON and writes it to w.
func WriteSnapshot(snap *provider.Snapshot, w io.Writer) error {
	return encode(w, snap)
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
