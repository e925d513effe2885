package frame

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/reachplan/geometry"
	"go.viam.com/reachplan/logging"
	"go.viam.com/reachplan/scenario"
	"go.viam.com/test"
)

func TestStraightLineRoundTrip(t *testing.T) {
	f := StraightLineFrame{HalfWidth: 5}
	for _, pt := range []r3.Vector{{X: 0, Y: 0}, {X: 12.3, Y: -2.5}, {X: -4, Y: 4.9}} {
		lon, lat, err := f.ToCurvilinear(pt)
		test.That(t, err, test.ShouldBeNil)
		back, err := f.ToCartesian(lon, lat)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, back.X, test.ShouldAlmostEqual, pt.X, 1e-6)
		test.That(t, back.Y, test.ShouldAlmostEqual, pt.Y, 1e-6)
	}
}

func TestOutsideProjectionDomain(t *testing.T) {
	f := StraightLineFrame{HalfWidth: 2}
	_, _, err := f.ToCurvilinear(r3.Vector{X: 0, Y: 3})
	test.That(t, err, test.ShouldEqual, ErrOutsideProjectionDomain)

	_, err = f.ToCartesian(0, 3)
	test.That(t, err, test.ShouldEqual, ErrOutsideProjectionDomain)
}

func TestConvertPolygonDropVertex(t *testing.T) {
	f := StraightLineFrame{HalfWidth: 1}
	// One vertex is outside the strip; DropVertex should still produce a
	// polygon from the rest when 3+ survive.
	p, err := geometry.FromVertices([]r2.Point{
		{X: 0, Y: 0}, {X: 1, Y: 0.5}, {X: 1, Y: -0.5}, {X: 0.5, Y: 5},
	})
	test.That(t, err, test.ShouldBeNil)

	toCvln := func(pt r2.Point) (r2.Point, error) {
		lon, lat, err := f.ToCurvilinear(r3.Vector{X: pt.X, Y: pt.Y})
		return r2.Point{X: lon, Y: lat}, err
	}
	converted, err := ConvertPolygon(p, toCvln, DropVertex, logging.NewTestLogger())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, converted.IsEmpty(), test.ShouldBeFalse)
}

func TestConvertPolygonDropWholeShape(t *testing.T) {
	f := StraightLineFrame{HalfWidth: 1}
	p, err := geometry.FromVertices([]r2.Point{
		{X: 0, Y: 0}, {X: 1, Y: 0.5}, {X: 1, Y: -0.5}, {X: 0.5, Y: 5},
	})
	test.That(t, err, test.ShouldBeNil)

	toCvln := func(pt r2.Point) (r2.Point, error) {
		lon, lat, err := f.ToCurvilinear(r3.Vector{X: pt.X, Y: pt.Y})
		return r2.Point{X: lon, Y: lat}, err
	}
	_, err = ConvertPolygon(p, toCvln, DropWholeShape, logging.NewTestLogger())
	test.That(t, err, test.ShouldEqual, ErrOutsideProjectionDomain)
}

func TestRasterizeObstaclesProducesBoxesPerStep(t *testing.T) {
	f := StraightLineFrame{HalfWidth: 5}
	obstacle := geometry.FromRectangle(0, -1, 10, 1)
	world := scenario.NewStaticWorld(obstacle)

	rasterized := RasterizeObstacles(world, f, []int{0}, 2, logging.NewTestLogger())
	test.That(t, len(rasterized[0]) > 1, test.ShouldBeTrue)
	for _, box := range rasterized[0] {
		test.That(t, box.IsEmpty(), test.ShouldBeFalse)
	}
}

func TestRasterizeObstaclesOmitsLostObstacle(t *testing.T) {
	f := StraightLineFrame{HalfWidth: 1}
	obstacle := geometry.FromRectangle(0, 5, 1, 6) // entirely outside the strip
	world := scenario.NewStaticWorld(obstacle)

	rasterized := RasterizeObstacles(world, f, []int{0}, 2, logging.NewTestLogger())
	test.That(t, len(rasterized[0]), test.ShouldEqual, 0)
}
