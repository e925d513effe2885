// Package geometry implements the convex polygon and axis-aligned
// rectangle primitives the reachable-set engine is built from.
// Polygons and rectangles are kept as
// distinct types with explicit conversions rather than a common
// abstract base: AABB operations are far cheaper, and the engine's hot
// path (drivable-area construction) exploits that directly.
package geometry

import (
	"errors"

	"github.com/golang/geo/r2"
)

// Epsilon is the tolerance within which two vertices are considered
// equal, per this package's numerical tolerance policy.
const Epsilon = 1e-9

// ErrDegenerate is returned by FromVertices when fewer than 3
// non-collinear points remain after taking the convex hull.
var ErrDegenerate = errors.New("geometry: degenerate polygon (fewer than 3 non-collinear vertices)")

// Polygon is a convex 2-D polygon stored as CCW vertices, always convex
// after any public operation completes. The zero value is not valid;
// use Empty(), FromRectangle, or FromVertices.
type Polygon struct {
	vertices []r2.Point
	bounds   Rect
	isEmpty  bool
}

// Empty returns the distinguished empty polygon. Its bounds are
// undefined (Bounds returns EmptyRect()).
func Empty() *Polygon {
	return &Polygon{isEmpty: true, bounds: EmptyRect()}
}

// FromRectangle builds a 4-vertex CCW polygon from an axis-aligned box.
func FromRectangle(xMin, yMin, xMax, yMax float64) *Polygon {
	r := NewRect(xMin, yMin, xMax, yMax)
	v := r.Vertices()
	p := &Polygon{vertices: v[:]}
	p.computeBounds()
	return p
}

// FromRect builds a polygon from an already-constructed Rect.
func FromRect(r Rect) *Polygon {
	if r.IsEmpty() {
		return Empty()
	}
	v := r.Vertices()
	p := &Polygon{vertices: v[:]}
	p.computeBounds()
	return p
}

// FromVertices takes the convex hull of points. It fails with
// ErrDegenerate if fewer than 3 non-collinear points remain.
func FromVertices(points []r2.Point) (*Polygon, error) {
	hull := convexHull(points)
	if len(hull) < 3 {
		return nil, ErrDegenerate
	}
	p := &Polygon{vertices: hull}
	p.computeBounds()
	return p, nil
}

// Segment builds a degenerate 2-vertex "polygon" representing a line
// segment between a and b. This is the shape of a zero-state response
// under constant acceleration bounds; a proper polygon only emerges
// once it is Minkowski-summed with something else.
func Segment(a, b r2.Point) *Polygon {
	p := &Polygon{vertices: []r2.Point{a, b}}
	p.computeBounds()
	return p
}

// IsEmpty reports whether the polygon is the distinguished empty value.
func (p *Polygon) IsEmpty() bool {
	return p == nil || p.isEmpty || len(p.vertices) == 0
}

// Vertices returns the polygon's CCW vertices. Callers must not mutate
// the returned slice.
func (p *Polygon) Vertices() []r2.Point {
	if p == nil {
		return nil
	}
	return p.vertices
}

func (p *Polygon) computeBounds() {
	if len(p.vertices) == 0 {
		p.bounds = EmptyRect()
		return
	}
	xMin, yMin := p.vertices[0].X, p.vertices[0].Y
	xMax, yMax := xMin, yMin
	for _, v := range p.vertices[1:] {
		if v.X < xMin {
			xMin = v.X
		}
		if v.X > xMax {
			xMax = v.X
		}
		if v.Y < yMin {
			yMin = v.Y
		}
		if v.Y > yMax {
			yMax = v.Y
		}
	}
	p.bounds = NewRect(xMin, yMin, xMax, yMax)
}

// Bounds returns the cached axis-aligned bounding rectangle. Undefined
// (EmptyRect) for the empty polygon.
func (p *Polygon) Bounds() Rect {
	if p.IsEmpty() {
		return EmptyRect()
	}
	return p.bounds
}

// Convexify recomputes the hull of the current vertices. It is
// idempotent and is the mechanism by which any operation that could
// otherwise violate convexity restores the invariant.
func (p *Polygon) Convexify() *Polygon {
	if p.IsEmpty() {
		return Empty()
	}
	hull := convexHull(p.vertices)
	if len(hull) < 3 {
		if len(hull) == 2 {
			return Segment(hull[0], hull[1])
		}
		return Empty()
	}
	out := &Polygon{vertices: hull}
	out.computeBounds()
	return out
}

// IntersectHalfplane returns polygon ∩ {(x,y) : a*x + b*y <= c}, via
// Sutherland-Hodgman clipping against the single half-plane edge. The
// result may be Empty.
func (p *Polygon) IntersectHalfplane(a, b, c float64) *Polygon {
	if p.IsEmpty() {
		return Empty()
	}
	n := len(p.vertices)
	inside := func(pt r2.Point) bool {
		return a*pt.X+b*pt.Y <= c+Epsilon
	}
	var out []r2.Point
	for i := 0; i < n; i++ {
		curr := p.vertices[i]
		prev := p.vertices[(i-1+n)%n]
		currIn := inside(curr)
		prevIn := inside(prev)
		if currIn != prevIn {
			out = append(out, clipIntersection(prev, curr, a, b, c))
		}
		if currIn {
			out = append(out, curr)
		}
	}
	out = fuseClose(out)
	if len(out) < 3 {
		if len(out) == 2 {
			return Segment(out[0], out[1])
		}
		return Empty()
	}
	result := &Polygon{vertices: out}
	result.computeBounds()
	return result
}

// clipIntersection finds the point where segment prev->curr crosses the
// line a*x + b*y = c.
func clipIntersection(prev, curr r2.Point, a, b, c float64) r2.Point {
	dx := curr.X - prev.X
	dy := curr.Y - prev.Y
	denom := a*dx + b*dy
	if denom == 0 {
		return curr
	}
	t := (c - a*prev.X - b*prev.Y) / denom
	return r2.Point{X: prev.X + t*dx, Y: prev.Y + t*dy}
}

// Intersects reports whether the polygon overlaps an axis-aligned
// rectangle: a cheap bounds check first, then (only if the bounds
// overlap) a full clip-based test.
func (p *Polygon) Intersects(rect Rect) bool {
	if p.IsEmpty() || rect.IsEmpty() {
		return false
	}
	if !p.bounds.Intersects(rect) {
		return false
	}
	clipped := p.IntersectHalfplane(1, 0, rect.Hi.X)
	clipped = clipped.IntersectHalfplane(-1, 0, -rect.Lo.X)
	clipped = clipped.IntersectHalfplane(0, 1, rect.Hi.Y)
	clipped = clipped.IntersectHalfplane(0, -1, -rect.Lo.Y)
	return !clipped.IsEmpty()
}

// ContainsPoint reports whether p lies within (or on the boundary of)
// the convex polygon.
func (p *Polygon) ContainsPoint(pt r2.Point) bool {
	if p.IsEmpty() {
		return false
	}
	n := len(p.vertices)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a := p.vertices[i]
		b := p.vertices[(i+1)%n]
		if cross(a, b, pt) < -Epsilon {
			return false
		}
	}
	return true
}

// MinkowskiSum returns the Minkowski sum of two convex polygons (or
// degenerate segments): the convex hull of every pairwise vertex sum.
// Used to form the zero-state response region.
func (p *Polygon) MinkowskiSum(other *Polygon) *Polygon {
	if p.IsEmpty() || other.IsEmpty() {
		return Empty()
	}
	sums := make([]r2.Point, 0, len(p.vertices)*len(other.vertices))
	for _, a := range p.vertices {
		for _, b := range other.vertices {
			sums = append(sums, r2.Point{X: a.X + b.X, Y: a.Y + b.Y})
		}
	}
	result, err := FromVertices(sums)
	if err != nil {
		if len(sums) >= 2 {
			return Segment(sums[0], sums[len(sums)-1])
		}
		return Empty()
	}
	return result
}

// Translate returns the polygon shifted by (dx, dy), preserving
// convexity and vertex order.
func (p *Polygon) Translate(dx, dy float64) *Polygon {
	if p.IsEmpty() {
		return Empty()
	}
	shifted := make([]r2.Point, len(p.vertices))
	for i, v := range p.vertices {
		shifted[i] = r2.Point{X: v.X + dx, Y: v.Y + dy}
	}
	out := &Polygon{vertices: shifted}
	out.computeBounds()
	return out
}

// Map returns a new polygon with f applied to every vertex, followed by
// convexify. Used by the propagator's zero-input shear and by frame
// conversion's per-vertex mapping.
func (p *Polygon) Map(f func(r2.Point) r2.Point) *Polygon {
	if p.IsEmpty() {
		return Empty()
	}
	mapped := make([]r2.Point, len(p.vertices))
	for i, v := range p.vertices {
		mapped[i] = f(v)
	}
	out := &Polygon{vertices: mapped}
	out.computeBounds()
	return out.Convexify()
}
