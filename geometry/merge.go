package geometry

import "github.com/golang/geo/r2"

// HullMany returns the convex hull of the union of all vertices across
// the given polygons, skipping empty ones. Used when several
// propagation contributors land in the same repartitioned rectangle and
// must be combined into a single node.
func HullMany(polys ...*Polygon) *Polygon {
	var pts []r2.Point
	for _, p := range polys {
		if p.IsEmpty() {
			continue
		}
		pts = append(pts, p.Vertices()...)
	}
	result, err := FromVertices(pts)
	if err != nil {
		if len(pts) == 2 {
			return Segment(pts[0], pts[1])
		}
		return Empty()
	}
	return result
}
