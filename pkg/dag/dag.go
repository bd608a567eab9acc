package dag

import (
	"errors"
	"slices"
)

var (
	// ErrNoRoot is returned by [Graph.Validate] when level 0 does not hold
	// exactly one node.
	ErrNoRoot = errors.New("level 0 must contain exactly the root node")

	// ErrInvalidNodeID is returned by [Graph.Validate] when a node id is not
	// positive.
	ErrInvalidNodeID = errors.New("node ID must be positive")

	// ErrDuplicateNodeID is returned by [Graph.Validate] when an id appears
	// more than once across all levels.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownChild is returned by [Graph.Validate] when a child id is
	// neither a node in the next level nor listed as failed.
	ErrUnknownChild = errors.New("unknown child node")

	// ErrNonConsecutiveLevels is returned by [Graph.Validate] when a node in
	// level k+1 is not the child of a node in level k.
	ErrNonConsecutiveLevels = errors.New("children must be in the next level")

	// ErrSharedChild is returned by [Graph.Validate] when a node is the child
	// of more than one parent. Resolution never shares nodes.
	ErrSharedChild = errors.New("node has more than one parent")
)

// Node is one resolved package in the layered graph.
type Node struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Children []int  `json:"children,omitempty"`
}

// Level is one generation of the graph, in discovery order.
type Level []Node

// IDs returns the ids of the level's nodes in order.
func (l Level) IDs() []int {
	ids := make([]int, len(l))
	for i, n := range l {
		ids[i] = n.ID
	}
	return ids
}

// Names returns the names of the level's nodes in order.
func (l Level) Names() []string {
	names := make([]string, len(l))
	for i, n := range l {
		names[i] = n.Name
	}
	return names
}

// Graph is the layered output of a resolution run. The zero value is an
// empty graph.
type Graph struct {
	Levels []Level `json:"levels"`
	// Failed lists ids that were assigned to children whose manifests
	// could not be loaded.
	Failed []int `json:"failed,omitempty"`
}

// Root returns the level-0 node.
func (g *Graph) Root() (Node, bool) {
	if len(g.Levels) == 0 || len(g.Levels[0]) == 0 {
		return Node{}, false
	}
	return g.Levels[0][0], true
}

// Depth returns the number of levels.
func (g *Graph) Depth() int { return len(g.Levels) }

// NodeCount returns the number of nodes across all levels.
func (g *Graph) NodeCount() int {
	n := 0
	for _, l := range g.Levels {
		n += len(l)
	}
	return n
}

// EdgeCount returns the number of parent-child links to loaded nodes.
// Links to failed children are not counted.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, l := range g.Levels {
		for _, node := range l {
			for _, c := range node.Children {
				if !g.IsFailed(c) {
					n++
				}
			}
		}
	}
	return n
}

// Node returns the node with the given id.
func (g *Graph) Node(id int) (Node, bool) {
	for _, l := range g.Levels {
		for _, n := range l {
			if n.ID == id {
				return n, true
			}
		}
	}
	return Node{}, false
}

// LevelOf returns the index of the level holding id, or -1.
func (g *Graph) LevelOf(id int) int {
	for i, l := range g.Levels {
		for _, n := range l {
			if n.ID == id {
				return i
			}
		}
	}
	return -1
}

// IsFailed reports whether id was assigned to a child that failed to load.
func (g *Graph) IsFailed(id int) bool { return slices.Contains(g.Failed, id) }

// Parents returns a map from every non-root node id to its parent id.
func (g *Graph) Parents() map[int]int {
	parents := make(map[int]int, g.NodeCount())
	for _, l := range g.Levels {
		for _, n := range l {
			for _, c := range n.Children {
				parents[c] = n.ID
			}
		}
	}
	return parents
}

// Validate verifies the structural invariants of a resolved graph.
//
// Returns [ErrNoRoot], [ErrInvalidNodeID], [ErrDuplicateNodeID],
// [ErrUnknownChild], [ErrNonConsecutiveLevels] or [ErrSharedChild]. An
// empty graph is valid.
func (g *Graph) Validate() error {
	if len(g.Levels) == 0 {
		return nil
	}
	if len(g.Levels[0]) != 1 {
		return ErrNoRoot
	}

	level := make(map[int]int, g.NodeCount())
	for i, l := range g.Levels {
		for _, n := range l {
			if n.ID <= 0 {
				return ErrInvalidNodeID
			}
			if _, dup := level[n.ID]; dup {
				return ErrDuplicateNodeID
			}
			level[n.ID] = i
		}
	}

	parented := make(map[int]bool, len(level))
	for i, l := range g.Levels {
		for _, n := range l {
			for _, c := range n.Children {
				if parented[c] {
					return ErrSharedChild
				}
				parented[c] = true
				at, ok := level[c]
				if !ok {
					if g.IsFailed(c) {
						continue
					}
					return ErrUnknownChild
				}
				if at != i+1 {
					return ErrNonConsecutiveLevels
				}
			}
		}
	}
	for i := 1; i < len(g.Levels); i++ {
		for _, n := range g.Levels[i] {
			if !parented[n.ID] {
				return ErrNonConsecutiveLevels
			}
		}
	}
	return nil
}
