// Package reach implements the reach node, the one-step propagator, and
// the reachable-set engine: the core state machine that turns an
// initial state plus a scenario into per-step drivable areas and reach
// sets.
package reach

import (
	"sync"

	"go.viam.com/reachplan/geometry"
)

// NodeID is a monotonically assigned integer, unique per engine
// instance. It is a distinct type from a bare int so it can't be
// confused with a step index.
type NodeID int64

// Node is one element of a reach set: a pair of (lon, lat) polygons plus
// a step index and parent/child back-references. Nodes are
// created only by the engine and the initial-state construction; after
// publication they are immutable except for parent/child set edits
// performed by pruning.
type Node struct {
	id      NodeID
	step    int
	polyLon *geometry.Polygon
	polyLat *geometry.Polygon

	// sourcePropagation is the unique pre-projection node this node was
	// derived from, used to recover velocity information after
	// position-plane repartitioning.
	sourcePropagation *Node

	mu       sync.Mutex
	parents  map[NodeID]*Node
	children map[NodeID]*Node
}

func newNode(id NodeID, step int, polyLon, polyLat *geometry.Polygon, source *Node) *Node {
	return &Node{
		id:                id,
		step:              step,
		polyLon:           polyLon,
		polyLat:           polyLat,
		sourcePropagation: source,
		parents:           map[NodeID]*Node{},
		children:          map[NodeID]*Node{},
	}
}

// ID returns the node's engine-unique identifier.
func (n *Node) ID() NodeID { return n.id }

// Step returns the node's time index.
func (n *Node) Step() int { return n.step }

// PolygonLon returns the node's polygon in the (longitudinal-position,
// longitudinal-velocity) plane.
func (n *Node) PolygonLon() *geometry.Polygon { return n.polyLon }

// PolygonLat returns the node's polygon in the (lateral-position,
// lateral-velocity) plane.
func (n *Node) PolygonLat() *geometry.Polygon { return n.polyLat }

// SourcePropagation returns the step t-1 node this node's propagation
// started from (for a node hulled from several contributors, that of the
// one largestContributor picked), or nil for an initial-state node.
func (n *Node) SourcePropagation() *Node { return n.sourcePropagation }

// PositionRectangle derives the axis-aligned position rectangle
// [p_lon_min, p_lat_min] x [p_lon_max, p_lat_max] from the two polygons'
// bounds.
func (n *Node) PositionRectangle() geometry.Rect {
	lon := n.polyLon.Bounds()
	lat := n.polyLat.Bounds()
	if lon.IsEmpty() || lat.IsEmpty() {
		return geometry.EmptyRect()
	}
	return geometry.NewRect(lon.Lo.X, lat.Lo.X, lon.Hi.X, lat.Hi.X)
}

// LonVelocityBounds returns the [v_min, v_max] band the longitudinal
// polygon currently occupies, read from the Y bounds of its plane.
func (n *Node) LonVelocityBounds() (min, max float64) {
	b := n.polyLon.Bounds()
	return b.Lo.Y, b.Hi.Y
}

// LatVelocityBounds returns the lateral velocity band.
func (n *Node) LatVelocityBounds() (min, max float64) {
	b := n.polyLat.Bounds()
	return b.Lo.Y, b.Hi.Y
}

// Parents returns a snapshot of the node's parent back-references.
func (n *Node) Parents() []*Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*Node, 0, len(n.parents))
	for _, p := range n.parents {
		out = append(out, p)
	}
	return out
}

// Children returns a snapshot of the node's child back-references.
func (n *Node) Children() []*Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	return out
}

// addParent records a weak back-reference to a node at step-1. It holds
// the node's mutex, so it is safe for concurrent callers.
func (n *Node) addParent(p *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.parents[p.id] = p
}

// addChild records a weak forward-reference to a node at step+1.
func (n *Node) addChild(c *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.children[c.id] = c
}

// removeChild drops a forward-reference, used by pruning.
func (n *Node) removeChild(id NodeID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.children, id)
}

func (n *Node) childCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.children)
}

// link establishes the mutual parent/child back-reference between a
// node at step t and one of its contributing parents at step t-1.
func link(child, parent *Node) {
	child.addParent(parent)
	parent.addChild(child)
}
