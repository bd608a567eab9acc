// Package dag provides the layered dependency graph produced by resolution.
//
// # Overview
//
// A [Graph] is an ordered list of levels (generations). Level 0 holds the
// root package; level k holds every package discovered as a direct
// dependency of a package in level k-1. Each [Node] carries an integer id
// that is unique within one resolution run, the package name, and the ids
// of its children in declaration order.
//
// The graph is a tree expansion: two references to the same manifest yield
// two nodes with distinct ids. Diamond dependencies therefore appear as
// separate subtrees.
//
// # Failed Nodes
//
// A child id is assigned before its manifest is loaded. When the load fails
// the id stays in the parent's Children but no node is emitted for it;
// [Graph.Failed] lists those ids so consumers can tell a failure apart from
// corruption:
//
//	for _, id := range n.Children {
//	    child, ok := g.Node(id)
//	    if !ok {
//	        // g.IsFailed(id) is true
//	    }
//	}
//
// # Validation
//
// [Graph.Validate] checks the structural invariants: exactly one root, ids
// unique and positive, children one level below their parent, and every
// non-root node reachable from exactly one parent.
package dag
