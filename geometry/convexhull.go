package geometry

import (
	"sort"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/floats/scalar"
)

// cross returns the z-component of (o->a) x (o->b).
func cross(o, a, b r2.Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// fuseClose merges consecutive points that are within Epsilon of each
// other, per this package's numerical tolerance policy.
func fuseClose(points []r2.Point) []r2.Point {
	if len(points) == 0 {
		return points
	}
	out := make([]r2.Point, 0, len(points))
	out = append(out, points[0])
	for _, p := range points[1:] {
		last := out[len(out)-1]
		if scalar.EqualWithinAbs(p.X, last.X, Epsilon) && scalar.EqualWithinAbs(p.Y, last.Y, Epsilon) {
			continue
		}
		out = append(out, p)
	}
	if len(out) > 1 {
		first, last := out[0], out[len(out)-1]
		if scalar.EqualWithinAbs(first.X, last.X, Epsilon) && scalar.EqualWithinAbs(first.Y, last.Y, Epsilon) {
			out = out[:len(out)-1]
		}
	}
	return out
}

// convexHull computes the counter-clockwise convex hull of points via the
// monotone-chain algorithm, dropping collinear and near-duplicate points.
// The result may have fewer than 3 points if the input is degenerate.
func convexHull(points []r2.Point) []r2.Point {
	pts := append([]r2.Point(nil), points...)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	pts = fuseClose(pts)
	n := len(pts)
	if n < 3 {
		return pts
	}

	build := func(pts []r2.Point) []r2.Point {
		var hull []r2.Point
		for _, p := range pts {
			for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= Epsilon {
				hull = hull[:len(hull)-1]
			}
			hull = append(hull, p)
		}
		return hull
	}

	lower := build(pts)
	upper := build(reversed(pts))
	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	return fuseClose(hull)
}

func reversed(pts []r2.Point) []r2.Point {
	out := make([]r2.Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}
