package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/soup/pkg/dag"
	"github.com/matzehuels/soup/pkg/provider"
)

// ReadJSON decodes a node and edge list from r into a graph.
//
// Nodes are grouped by their "level" field, keeping input order within a
// level; each edge appends its target to the children of its source, in
// input order. ReadJSON returns an error if the JSON is malformed, an edge
// starts at an unknown node, a level is skipped, or the rebuilt graph fails
// [dag.Graph.Validate].
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*dag.Graph, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := &dag.Graph{Failed: data.Failed}
	where := make(map[int][2]int, len(data.Nodes))
	for _, n := range data.Nodes {
		if n.Level < 0 || n.Level > len(g.Levels) {
			return nil, fmt.Errorf("node %d: level %d skips a level", n.ID, n.Level)
		}
		if n.Level == len(g.Levels) {
			g.Levels = append(g.Levels, nil)
		}
		where[n.ID] = [2]int{n.Level, len(g.Levels[n.Level])}
		g.Levels[n.Level] = append(g.Levels[n.Level], dag.Node{ID: n.ID, Name: n.Name})
	}
	for _, e := range data.Edges {
		pos, ok := where[e.From]
		if !ok {
			return nil, fmt.Errorf("edge %d->%d: unknown source node", e.From, e.To)
		}
		n := &g.Levels[pos[0]][pos[1]]
		n.Children = append(n.Children, e.To)
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}
	return g, nil
}

// ImportJSON reads a JSON file at path and returns the decoded graph.
func ImportJSON(path string) (*dag.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// ReadSnapshot decodes a snapshot written by [WriteSnapshot] and validates
// its graph and package lookup.
func ReadSnapshot(r io.Reader) (*provider.Snapshot, error) {
	var snap provider.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if snap.Graph == nil || snap.Provider == nil {
		return nil, errors.New("snapshot is missing its graph or provider")
	}
	if err := snap.Graph.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}
	return &snap, nil
}
