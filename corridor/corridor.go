// Package corridor implements the driving-corridor extractor: it
// reads a published reach-node graph, finds per-step connected
// components of position rectangles, walks the reach graph's parent
// links backward from step_end to build a corridor DAG per seed
// component, and emits ranked root-to-leaf paths as driving corridors.
// It treats the reach graph as read-only.
package corridor

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/floats/scalar"

	"go.viam.com/reachplan/geometry"
	"go.viam.com/reachplan/reach"
)

// ErrBadCorridorArgs is returned when exactly one of LongitudinalCorridor
// and LongitudinalPositions is supplied; the lateral case requires both
// together.
var ErrBadCorridorArgs = errors.New("corridor: longitudinal_corridor and longitudinal_positions must be given together")

// DefaultTolerance is the connectivity and lateral-coverage tolerance
// (10^-2): kept exact since downstream corridor reproducibility depends
// on it.
const DefaultTolerance = 1e-2

// Component is a maximal set of reach nodes at one step whose position
// rectangles form a connected union under the tolerance relation.
type Component struct {
	Step  int
	Nodes []*reach.Node
}

// Area returns the sum of the component's per-node position-rectangle
// areas, the per-step contribution to a corridor's overall ranking
// score.
func (c *Component) Area() float64 {
	total := 0.0
	for _, n := range c.Nodes {
		total += n.PositionRectangle().Area()
	}
	return total
}

// Corridor is one root-to-leaf path through the corridor DAG: a
// temporally connected sequence of components from step_start to
// step_end, plus the area sum used to rank it against its siblings.
type Corridor struct {
	StepStart, StepEnd int
	PerStep            map[int]*Component
	Area               float64
}

// RectanglesAt returns the position rectangles belonging to the
// corridor's component at step t, or nil if t is outside its range.
func (co *Corridor) RectanglesAt(t int) []geometry.Rect {
	comp, ok := co.PerStep[t]
	if !ok {
		return nil
	}
	out := make([]geometry.Rect, len(comp.Nodes))
	for i, n := range comp.Nodes {
		out[i] = n.PositionRectangle()
	}
	return out
}

// Options configures extraction. ToGoalRegion, TerminalShape and
// IsCartesianShape are not read by Extract: every reach node at step_end
// that passes the lateral filter seeds a component, whether or not it
// meets a terminal shape.
type Options struct {
	ToGoalRegion     bool
	TerminalShape    *geometry.Polygon
	IsCartesianShape bool

	// LongitudinalCorridor and LongitudinalPositions select the lateral
	// case: a previously extracted longitudinal corridor and the scalar
	// p_lon(t) series (indexed by step, stepStart..stepEnd) every
	// component's nodes must cover. Both or neither must be set.
	LongitudinalCorridor  *Corridor
	LongitudinalPositions map[int]float64
}

func (o Options) lateral() bool {
	return o.LongitudinalCorridor != nil || o.LongitudinalPositions != nil
}

func (o Options) validate() error {
	if (o.LongitudinalCorridor != nil) != (o.LongitudinalPositions != nil) {
		return ErrBadCorridorArgs
	}
	return nil
}

// Extract finds connected components of the reach graph's position
// rectangles at step_end, walks each one backward through parent links
// to build a corridor DAG, and enumerates its root-to-leaf paths as
// ranked driving corridors. reachSets is the published per-step
// reach-node graph (as produced by reach.Engine.ReachableSetAt); cap
// bounds the number of corridors emitted per seed component at
// step_end (the caller typically passes
// config.Configuration.EffectiveCorridorCap()).
func Extract(reachSets map[int][]*reach.Node, stepStart, stepEnd int, cap int, opts Options) ([]*Corridor, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if cap <= 0 {
		cap = 10
	}

	endNodes := filterLateral(reachSets[stepEnd], stepEnd, opts)
	seeds := connectedComponents(stepEnd, endNodes)

	var corridors []*Corridor
	for _, seed := range seeds {
		root := buildDAG(seed, reachSets, stepStart, opts)
		for _, path := range enumeratePaths(root, cap) {
			corridors = append(corridors, toCorridor(path, stepStart, stepEnd))
		}
	}

	sort.Slice(corridors, func(i, j int) bool { return corridors[i].Area > corridors[j].Area })
	return corridors, nil
}

// filterLateral applies the lateral-case admission constraint: a
// node is only a candidate if its position rectangle's longitudinal
// extent covers p_lon(t) (within tolerance) and, when a longitudinal
// corridor is given, its rectangle overlaps that corridor's rectangles
// at the same step.
func filterLateral(nodes []*reach.Node, step int, opts Options) []*reach.Node {
	if !opts.lateral() {
		return nodes
	}
	pLon, havePos := opts.LongitudinalPositions[step]
	var longRects []geometry.Rect
	if opts.LongitudinalCorridor != nil {
		longRects = opts.LongitudinalCorridor.RectanglesAt(step)
	}

	var out []*reach.Node
	for _, n := range nodes {
		rect := n.PositionRectangle()
		if havePos && !withinTolerance(pLon, rect.Lo.X, rect.Hi.X, DefaultTolerance) {
			continue
		}
		if len(longRects) > 0 && !overlapsAny(rect, longRects) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func withinTolerance(v, lo, hi, tol float64) bool {
	if v >= lo && v <= hi {
		return true
	}
	return scalar.EqualWithinAbs(v, lo, tol) || scalar.EqualWithinAbs(v, hi, tol) || (v > lo-tol && v < hi+tol)
}

func overlapsAny(r geometry.Rect, others []geometry.Rect) bool {
	for _, o := range others {
		if r.Intersects(o) {
			return true
		}
	}
	return false
}

// adjacent reports whether two position rectangles' closed boundaries
// touch or overlap within tol.
func adjacent(a, b geometry.Rect, tol float64) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}
	overlapX := a.Lo.X <= b.Hi.X+tol && b.Lo.X <= a.Hi.X+tol
	overlapY := a.Lo.Y <= b.Hi.Y+tol && b.Lo.Y <= a.Hi.Y+tol
	return overlapX && overlapY
}

// connectedComponents partitions nodes into maximal adjacency-connected
// groups via union-find over their position rectangles.
func connectedComponents(step int, nodes []*reach.Node) []*Component {
	if len(nodes) == 0 {
		return nil
	}
	parent := make([]int, len(nodes))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	rects := make([]geometry.Rect, len(nodes))
	for i, n := range nodes {
		rects[i] = n.PositionRectangle()
	}
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			if adjacent(rects[i], rects[j], DefaultTolerance) {
				union(i, j)
			}
		}
	}

	groups := map[int][]*reach.Node{}
	for i, n := range nodes {
		root := find(i)
		groups[root] = append(groups[root], n)
	}
	roots := make([]int, 0, len(groups))
	for r := range groups {
		roots = append(roots, r)
	}
	sort.Slice(roots, func(i, j int) bool { return minID(groups[roots[i]]) < minID(groups[roots[j]]) })

	comps := make([]*Component, len(roots))
	for i, r := range roots {
		comps[i] = &Component{Step: step, Nodes: groups[r]}
	}
	return comps
}

func minID(nodes []*reach.Node) reach.NodeID {
	min := nodes[0].ID()
	for _, n := range nodes[1:] {
		if n.ID() < min {
			min = n.ID()
		}
	}
	return min
}

// dagNode is one node of the corridor DAG: distinct from the reach
// graph, its edges run from a step_end-seeded root backward in time.
type dagNode struct {
	comp     *Component
	children []*dagNode
}

// buildDAG starts from a seed component at step_end, repeatedly
// collects the parents of its nodes, partitions them into connected
// components at the previous step, and recurses until step_start is
// reached.
func buildDAG(seed *Component, reachSets map[int][]*reach.Node, stepStart int, opts Options) *dagNode {
	root := &dagNode{comp: seed}
	var recurse func(node *dagNode)
	recurse = func(node *dagNode) {
		if node.comp.Step <= stepStart {
			return
		}
		parentSet := map[reach.NodeID]*reach.Node{}
		for _, n := range node.comp.Nodes {
			for _, p := range n.Parents() {
				parentSet[p.ID()] = p
			}
		}
		if len(parentSet) == 0 {
			return
		}
		parents := make([]*reach.Node, 0, len(parentSet))
		for _, p := range parentSet {
			parents = append(parents, p)
		}
		prevStep := node.comp.Step - 1
		parents = filterLateral(parents, prevStep, opts)
		for _, comp := range connectedComponents(prevStep, parents) {
			child := &dagNode{comp: comp}
			node.children = append(node.children, child)
			recurse(child)
		}
	}
	recurse(root)
	return root
}

// enumeratePaths walks the DAG depth-first, capping the number of
// emitted root-to-leaf paths at cap. Each path is returned in
// step_start..step_end order.
func enumeratePaths(root *dagNode, cap int) [][]*Component {
	var out [][]*Component
	var walk func(node *dagNode, path []*Component)
	walk = func(node *dagNode, path []*Component) {
		if len(out) >= cap {
			return
		}
		path = append(path, node.comp)
		if len(node.children) == 0 {
			rev := make([]*Component, len(path))
			for i, c := range path {
				rev[len(path)-1-i] = c
			}
			out = append(out, rev)
			return
		}
		for _, child := range node.children {
			if len(out) >= cap {
				return
			}
			walk(child, path)
		}
	}
	walk(root, nil)
	return out
}

func toCorridor(path []*Component, stepStart, stepEnd int) *Corridor {
	co := &Corridor{StepStart: stepStart, StepEnd: stepEnd, PerStep: make(map[int]*Component, len(path))}
	for _, comp := range path {
		co.PerStep[comp.Step] = comp
		co.Area += comp.Area()
	}
	return co
}
