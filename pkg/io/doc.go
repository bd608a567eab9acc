// Package io provides JSON import and export for resolved dependency graphs
// and snapshots.
//
// # Graph Format
//
// A graph is exported as a flat node and edge list that external tools can
// consume without knowing about levels:
//
//	{
//	  "nodes": [
//	    {"id": 1, "name": "App", "level": 0},
//	    {"id": 2, "name": "Json", "level": 1}
//	  ],
//	  "edges": [
//	    {"from": 1, "to": 2}
//	  ],
//	  "failed": [3]
//	}
//
// Nodes are listed level by level in discovery order and edges in child
// order, so [ReadJSON] rebuilds the exact level layout that [WriteJSON]
// wrote. "failed" lists ids of children whose manifests could not be
// loaded; edges may point at them.
//
// Imported graphs are checked with [dag.Graph.Validate].
//
// # Snapshots
//
// [WriteSnapshot] and [ReadSnapshot] serialize a complete
// [provider.Snapshot] (graph, package lookup and notifications). The
// pipeline stores this encoding in the cache.
package io
