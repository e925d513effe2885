// Package collision implements the per-step collision predicate: does a
// candidate position rectangle intersect any obstacle or road-boundary
// shape at a given step.
package collision

import (
	"go.viam.com/reachplan/geometry"
	"go.viam.com/reachplan/logging"
	"go.viam.com/reachplan/scenario"
)

// Checker answers collides(step, rect) queries against an ObstacleWorld.
// It is constructed once per computation and is read-only thereafter, so
// it is safe to share across the engine's worker pool.
type Checker struct {
	world  scenario.ObstacleWorld
	logger logging.Logger

	// rasterized, when non-nil, holds curvilinear-frame obstacle boxes
	// precomputed by the frame package, making Collides a pure
	// interval-overlap test with no per-query conversion cost.
	rasterized map[int][]geometry.Rect

	// inflation is the vehicle footprint clearance radius
	// (VehicleParameters.InflationRadius) the query rectangle is grown by
	// before testing, so the position plane can keep treating the ego as
	// a point while obstacle clearance still accounts for its footprint.
	inflation float64

	// considerTraffic mirrors the consider_traffic configuration flag:
	// when false, a Cartesian-mode Checker tests only the obstacle world's
	// time-invariant Static() shapes, so a computation can ignore dynamic
	// agents without the caller needing to build a second, traffic-free
	// ObstacleWorld. A rasterized Checker does not consult it.
	considerTraffic bool
}

// New builds a Cartesian-mode Checker: obstacles are tested directly as
// polygons against the query rectangle, grown by inflation on each side.
// Dynamic obstacles are considered by default; see WithConsiderTraffic.
func New(world scenario.ObstacleWorld, inflation float64, logger logging.Logger) *Checker {
	return &Checker{world: world, inflation: inflation, considerTraffic: true, logger: logger}
}

// WithConsiderTraffic sets the consider_traffic flag: when false, only
// the obstacle world's time-invariant Static() shapes are tested, letting
// a caller disable dynamic-agent avoidance without building a second
// traffic-free ObstacleWorld. The flag has no effect on a Checker built
// by NewRasterized, whose per-step boxes are always tested as given.
// Returns the receiver for chaining.
func (c *Checker) WithConsiderTraffic(considerTraffic bool) *Checker {
	c.considerTraffic = considerTraffic
	return c
}

// NewRasterized builds a curvilinear-mode Checker from pre-rasterized
// axis-aligned obstacle boxes per step, as produced by
// frame.RasterizeObstacles.
func NewRasterized(rasterized map[int][]geometry.Rect, inflation float64, logger logging.Logger) *Checker {
	return &Checker{rasterized: rasterized, inflation: inflation, considerTraffic: true, logger: logger}
}

// inflate grows rect by the configured clearance radius on every side.
func (c *Checker) inflate(rect geometry.Rect) geometry.Rect {
	if c.inflation <= 0 {
		return rect
	}
	return geometry.NewRect(
		rect.Lo.X-c.inflation, rect.Lo.Y-c.inflation,
		rect.Hi.X+c.inflation, rect.Hi.Y+c.inflation,
	)
}

// Collides reports whether rect, grown by the vehicle's inflation
// radius, intersects any obstacle or road-boundary shape active at step.
func (c *Checker) Collides(step int, rect geometry.Rect) bool {
	if rect.IsEmpty() {
		return false
	}
	rect = c.inflate(rect)
	if c.rasterized != nil {
		for _, box := range c.rasterized[step] {
			if rect.Intersects(box) {
				return true
			}
		}
		return false
	}
	shapes := c.world.AtStep(step)
	if !c.considerTraffic {
		shapes = c.world.Static()
	}
	for _, shape := range shapes {
		if shape.Intersects(rect) {
			return true
		}
	}
	return false
}

// AsPredicate adapts Collides to the func(Rect) bool shape that
// geometry.SplitUntilRadius expects for a fixed step.
func (c *Checker) AsPredicate(step int) func(geometry.Rect) bool {
	return func(r geometry.Rect) bool { return c.Collides(step, r) }
}
