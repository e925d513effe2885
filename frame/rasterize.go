package frame

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/reachplan/geometry"
	"go.viam.com/reachplan/logging"
	"go.viam.com/reachplan/scenario"
)

// DefaultRasterStep is the ~2m longitudinal slice width used by
// RasterizeObstacles.
const DefaultRasterStep = 2.0

// AngleSplitThreshold is the top/bottom-edge angle divergence (radians)
// beyond which a curvilinear rectangle should be represented as more
// than one Cartesian polygon for plotting/consumer use.
const AngleSplitThreshold = 0.2

// RasterizeObstacles converts an ObstacleWorld into per-step axis-aligned
// curvilinear boxes, reducing over-approximation by partitioning each
// obstacle in the longitudinal direction at roughly
// rasterStep meters: each slice's Cartesian polygon, intersected with
// the original obstacle, is converted to curvilinear coordinates and the
// slice's lateral extremes become one Rect. If an obstacle is lost
// entirely (no slice survives conversion) it is omitted with a logged
// warning, never a fatal error.
func RasterizeObstacles(
	world scenario.ObstacleWorld,
	cs CoordinateSystem,
	steps []int,
	rasterStep float64,
	logger logging.Logger,
) map[int][]geometry.Rect {
	if rasterStep <= 0 {
		rasterStep = DefaultRasterStep
	}
	out := make(map[int][]geometry.Rect, len(steps))
	for _, step := range steps {
		var rects []geometry.Rect
		for _, obstacle := range world.AtStep(step) {
			slices := rasterizeOne(obstacle, cs, rasterStep, logger)
			if len(slices) == 0 {
				logger.Warnf("step %d: obstacle lost entirely during curvilinear rasterization", step)
				continue
			}
			rects = append(rects, slices...)
		}
		out[step] = rects
	}
	return out
}

func rasterizeOne(obstacle *geometry.Polygon, cs CoordinateSystem, rasterStep float64, logger logging.Logger) []geometry.Rect {
	if obstacle.IsEmpty() {
		return nil
	}
	bounds := obstacle.Bounds()
	var rects []geometry.Rect
	for x := bounds.Lo.X; x < bounds.Hi.X; x += rasterStep {
		xHi := math.Min(x+rasterStep, bounds.Hi.X)
		slice := obstacle.IntersectHalfplane(1, 0, xHi)
		slice = slice.IntersectHalfplane(-1, 0, -x)
		if slice.IsEmpty() {
			continue
		}
		toCvln := func(p r2.Point) (r2.Point, error) {
			lon, lat, err := cs.ToCurvilinear(r3.Vector{X: p.X, Y: p.Y, Z: 0})
			if err != nil {
				return r2.Point{}, err
			}
			return r2.Point{X: lon, Y: lat}, nil
		}
		converted, err := ConvertPolygon(slice, toCvln, DropVertex, logger)
		if err != nil || converted.IsEmpty() {
			continue
		}
		rects = append(rects, converted.Bounds())
	}
	return rects
}

// SplitByAngle converts a curvilinear Rect into one or more Cartesian
// polygons, recursively subdividing along the longitudinal axis when the
// top and bottom edges' Cartesian angle differ by more than
// AngleSplitThreshold. This is a consumer/plotting convenience; the
// core engine operates on curvilinear rectangles directly and never
// calls this.
func SplitByAngle(r geometry.Rect, cs CoordinateSystem, maxDepth int) []*geometry.Polygon {
	corners, ok := cartesianCorners(r, cs)
	if !ok {
		return nil
	}
	if maxDepth <= 0 || edgeAngleDelta(corners) <= AngleSplitThreshold {
		poly, err := geometry.FromVertices(corners[:])
		if err != nil {
			return nil
		}
		return []*geometry.Polygon{poly}
	}
	mid := (r.Lo.X + r.Hi.X) / 2
	left := geometry.NewRect(r.Lo.X, r.Lo.Y, mid, r.Hi.Y)
	right := geometry.NewRect(mid, r.Lo.Y, r.Hi.X, r.Hi.Y)
	out := SplitByAngle(left, cs, maxDepth-1)
	out = append(out, SplitByAngle(right, cs, maxDepth-1)...)
	return out
}

// cartesianCorners converts a curvilinear rect's four corners to
// Cartesian, in (lonMin,latMin), (lonMax,latMin), (lonMax,latMax),
// (lonMin,latMax) order.
func cartesianCorners(r geometry.Rect, cs CoordinateSystem) ([4]r2.Point, bool) {
	var out [4]r2.Point
	corners := [4][2]float64{
		{r.Lo.X, r.Lo.Y}, {r.Hi.X, r.Lo.Y}, {r.Hi.X, r.Hi.Y}, {r.Lo.X, r.Hi.Y},
	}
	for i, c := range corners {
		v, err := cs.ToCartesian(c[0], c[1])
		if err != nil {
			return out, false
		}
		out[i] = r2.Point{X: v.X, Y: v.Y}
	}
	return out, true
}

func edgeAngleDelta(corners [4]r2.Point) float64 {
	bottom := math.Atan2(corners[1].Y-corners[0].Y, corners[1].X-corners[0].X)
	top := math.Atan2(corners[2].Y-corners[3].Y, corners[2].X-corners[3].X)
	delta := math.Abs(bottom - top)
	if delta > math.Pi {
		delta = 2*math.Pi - delta
	}
	return delta
}
