package reach

import "go.viam.com/reachplan/geometry"

// NewTestNode builds a standalone reach node with no parents or
// children, for use by other packages' tests (e.g. corridor) that need
// to exercise graph algorithms without running a full Compute.
func NewTestNode(id int64, step int, polyLon, polyLat *geometry.Polygon) *Node {
	return newNode(NodeID(id), step, polyLon, polyLat, nil)
}

// LinkTestNodes establishes a parent/child edge between two
// test-constructed nodes, for corridor-package tests that need a reach
// graph with ancestry without going through Engine.Compute.
func LinkTestNodes(child, parent *Node) {
	link(child, parent)
}
