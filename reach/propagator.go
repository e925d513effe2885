package reach

import (
	"errors"
	"sync"

	"github.com/golang/geo/r2"

	"go.viam.com/reachplan/geometry"
	"go.viam.com/reachplan/scenario"
)

// ErrPropagationEmpty is returned (and recorded to Diagnostics rather
// than treated as fatal) when a one-step propagation of a node's lon or
// lat polygon yields an empty image after velocity clipping.
var ErrPropagationEmpty = errors.New("reach: propagation produced an empty image")

// CreateZeroStatePolygon builds Z(dt, aMin, aMax), the zero-state
// response segment of a double integrator under constant bounded
// acceleration: the set of (displacement, velocity-delta) pairs
// {(1/2 a dt^2, a dt) : a in [aMin, aMax]}. It degenerates to a
// single point when aMin == aMax.
func CreateZeroStatePolygon(dt, aMin, aMax float64) *geometry.Polygon {
	lo := r2.Point{X: 0.5 * aMin * dt * dt, Y: aMin * dt}
	hi := r2.Point{X: 0.5 * aMax * dt * dt, Y: aMax * dt}
	if lo == hi {
		return geometry.FromRectangle(lo.X, lo.Y, lo.X, lo.Y)
	}
	return geometry.Segment(lo, hi)
}

// Propagator caches the zero-state response polygons it builds, keyed by
// Δt, so repeated propagation over a uniform-dt scenario does not
// rebuild them every step.
type Propagator struct {
	vehicle scenario.VehicleParameters

	mu       sync.Mutex
	lonCache map[float64]*geometry.Polygon
	latCache map[float64]*geometry.Polygon
}

// NewPropagator returns a Propagator bound to the given vehicle's
// acceleration and velocity bounds.
func NewPropagator(vehicle scenario.VehicleParameters) *Propagator {
	return &Propagator{
		vehicle:  vehicle,
		lonCache: map[float64]*geometry.Polygon{},
		latCache: map[float64]*geometry.Polygon{},
	}
}

func (p *Propagator) zeroState(cache map[float64]*geometry.Polygon, dt, aMin, aMax float64) *geometry.Polygon {
	p.mu.Lock()
	defer p.mu.Unlock()
	if z, ok := cache[dt]; ok {
		return z
	}
	z := CreateZeroStatePolygon(dt, aMin, aMax)
	cache[dt] = z
	return z
}

func (p *Propagator) zeroStateLon(dt float64) *geometry.Polygon {
	return p.zeroState(p.lonCache, dt, p.vehicle.AccelLonMin, p.vehicle.AccelLonMax)
}

func (p *Propagator) zeroStateLat(dt float64) *geometry.Polygon {
	return p.zeroState(p.latCache, dt, p.vehicle.AccelLatMin, p.vehicle.AccelLatMax)
}

// shear applies the zero-input (free, unforced) response of a double
// integrator over dt: position advances by velocity*dt, velocity is
// unchanged. This is a linear map, so it is applied directly to the
// polygon's vertices without needing re-convexification first, though
// Polygon.Map re-convexifies defensively.
func shear(pt r2.Point, dt float64) r2.Point {
	return r2.Point{X: pt.X + pt.Y*dt, Y: pt.Y}
}

// propagateAxis advances one axis's polygon by one step: zero-input
// shear, Minkowski sum with the zero-state response, then clip to the
// axis's velocity bounds. Returns ErrPropagationEmpty if the velocity
// clip leaves nothing.
func propagateAxis(poly *geometry.Polygon, zeroState *geometry.Polygon, dt, vMin, vMax float64) (*geometry.Polygon, error) {
	sheared := poly.Map(func(pt r2.Point) r2.Point { return shear(pt, dt) })
	summed := sheared.MinkowskiSum(zeroState)
	clipped := summed.IntersectHalfplane(0, -1, -vMin).IntersectHalfplane(0, 1, vMax)
	if clipped.IsEmpty() {
		return nil, ErrPropagationEmpty
	}
	return clipped, nil
}

// Propagate advances a single node by one step of duration dt, producing
// a new, unparented, unpublished node whose SourcePropagation is the
// input node. Both axes must survive; if either
// clips to empty the whole propagation is reported via
// ErrPropagationEmpty.
func (p *Propagator) Propagate(n *Node, dt float64) (*Node, error) {
	lonZS := p.zeroStateLon(dt)
	latZS := p.zeroStateLat(dt)

	newLon, err := propagateAxis(n.polyLon, lonZS, dt, p.vehicle.VelLonMin, p.vehicle.VelLonMax)
	if err != nil {
		return nil, err
	}
	newLat, err := propagateAxis(n.polyLat, latZS, dt, p.vehicle.VelLatMin, p.vehicle.VelLatMax)
	if err != nil {
		return nil, err
	}
	return newNode(0, n.step+1, newLon, newLat, n), nil
}
