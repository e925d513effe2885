package geometry

import (
	"math"

	"github.com/golang/geo/r2"
)

// Rect is an axis-aligned rectangle in the position plane. It is the
// concrete representation of drivable-area cells and of a reach node's
// projected position_rectangle.
//
// A Rect built with Lo.X > Hi.X (or Lo.Y > Hi.Y) is the distinguished
// empty rectangle; EmptyRect returns the canonical one.
type Rect struct {
	Lo, Hi r2.Point
}

// EmptyRect returns the canonical empty rectangle.
func EmptyRect() Rect {
	return Rect{Lo: r2.Point{X: math.Inf(1), Y: math.Inf(1)}, Hi: r2.Point{X: math.Inf(-1), Y: math.Inf(-1)}}
}

// NewRect builds a rectangle from its bounds, normalizing min/max order.
func NewRect(xMin, yMin, xMax, yMax float64) Rect {
	if xMin > xMax {
		xMin, xMax = xMax, xMin
	}
	if yMin > yMax {
		yMin, yMax = yMax, yMin
	}
	return Rect{Lo: r2.Point{X: xMin, Y: yMin}, Hi: r2.Point{X: xMax, Y: yMax}}
}

// IsEmpty reports whether the rectangle contains no points.
func (r Rect) IsEmpty() bool {
	return r.Lo.X > r.Hi.X || r.Lo.Y > r.Hi.Y
}

// Width returns the rectangle's extent along X. Zero for an empty rect.
func (r Rect) Width() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.Hi.X - r.Lo.X
}

// Height returns the rectangle's extent along Y. Zero for an empty rect.
func (r Rect) Height() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.Hi.Y - r.Lo.Y
}

// Area returns width * height, or 0 for an empty rect.
func (r Rect) Area() float64 {
	return r.Width() * r.Height()
}

// Center returns the rectangle's centroid.
func (r Rect) Center() r2.Point {
	return r2.Point{X: (r.Lo.X + r.Hi.X) / 2, Y: (r.Lo.Y + r.Hi.Y) / 2}
}

// HalfDiagonal returns half the length of the rectangle's diagonal, used
// by SplitUntilRadius as the terminal-split test.
func (r Rect) HalfDiagonal() float64 {
	return math.Hypot(r.Width(), r.Height()) / 2
}

// Intersects reports whether the two rectangles' closed regions overlap.
func (r Rect) Intersects(other Rect) bool {
	if r.IsEmpty() || other.IsEmpty() {
		return false
	}
	return r.Lo.X <= other.Hi.X && other.Lo.X <= r.Hi.X &&
		r.Lo.Y <= other.Hi.Y && other.Lo.Y <= r.Hi.Y
}

// Intersection returns the overlapping region, or the empty rect if none.
func (r Rect) Intersection(other Rect) Rect {
	if !r.Intersects(other) {
		return EmptyRect()
	}
	return NewRect(
		math.Max(r.Lo.X, other.Lo.X),
		math.Max(r.Lo.Y, other.Lo.Y),
		math.Min(r.Hi.X, other.Hi.X),
		math.Min(r.Hi.Y, other.Hi.Y),
	)
}

// ContainsPoint reports whether p lies within the closed rectangle.
func (r Rect) ContainsPoint(p r2.Point) bool {
	if r.IsEmpty() {
		return false
	}
	return p.X >= r.Lo.X && p.X <= r.Hi.X && p.Y >= r.Lo.Y && p.Y <= r.Hi.Y
}

// ApproxEqual reports whether the two rectangles agree within tol on each
// bound. Two empty rectangles are always approximately equal.
func (r Rect) ApproxEqual(other Rect, tol float64) bool {
	if r.IsEmpty() && other.IsEmpty() {
		return true
	}
	if r.IsEmpty() != other.IsEmpty() {
		return false
	}
	return math.Abs(r.Lo.X-other.Lo.X) <= tol && math.Abs(r.Lo.Y-other.Lo.Y) <= tol &&
		math.Abs(r.Hi.X-other.Hi.X) <= tol && math.Abs(r.Hi.Y-other.Hi.Y) <= tol
}

// Vertices returns the rectangle's four corners in CCW order, suitable
// for handing to FromVertices.
func (r Rect) Vertices() [4]r2.Point {
	return [4]r2.Point{
		{X: r.Lo.X, Y: r.Lo.Y},
		{X: r.Hi.X, Y: r.Lo.Y},
		{X: r.Hi.X, Y: r.Hi.Y},
		{X: r.Lo.X, Y: r.Hi.Y},
	}
}

// SnapOutward grows the rectangle to the nearest enclosing multiple of
// grid size g, i.e. floor for the low corner and ceil for the high
// corner. It is the first step of Repartition.
func (r Rect) SnapOutward(g float64) Rect {
	if r.IsEmpty() || g <= 0 {
		return r
	}
	return NewRect(
		math.Floor(r.Lo.X/g)*g,
		math.Floor(r.Lo.Y/g)*g,
		math.Ceil(r.Hi.X/g)*g,
		math.Ceil(r.Hi.Y/g)*g,
	)
}
