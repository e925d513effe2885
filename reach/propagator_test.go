package reach

import (
	"testing"

	"go.viam.com/reachplan/geometry"
	"go.viam.com/reachplan/scenario"
	"go.viam.com/test"
)

func testVehicle() scenario.VehicleParameters {
	return scenario.VehicleParameters{
		AccelLonMin: -3, AccelLonMax: 2,
		AccelLatMin: -1, AccelLatMax: 1,
		VelLonMin: 0, VelLonMax: 30,
		VelLatMin: -5, VelLatMax: 5,
		Length: 4.5, Width: 2,
	}
}

func TestCreateZeroStatePolygonDegenerate(t *testing.T) {
	z := CreateZeroStatePolygon(1, 2, 2)
	test.That(t, z.IsEmpty(), test.ShouldBeFalse)
	b := z.Bounds()
	test.That(t, b.Lo.X, test.ShouldAlmostEqual, 1.0, 1e-9)
	test.That(t, b.Hi.X, test.ShouldAlmostEqual, 1.0, 1e-9)
}

func TestPropagatorCachesByDT(t *testing.T) {
	p := NewPropagator(testVehicle())
	a := p.zeroStateLon(0.5)
	b := p.zeroStateLon(0.5)
	test.That(t, a, test.ShouldEqual, b)
	c := p.zeroStateLon(1.0)
	test.That(t, a, test.ShouldNotEqual, c)
}

func TestPropagateAdvancesNode(t *testing.T) {
	p := NewPropagator(testVehicle())
	lon := geometry.FromRectangle(-0.1, 9.9, 0.1, 10.1)
	lat := geometry.FromRectangle(-0.1, -0.1, 0.1, 0.1)
	n := newNode(1, 0, lon, lat, nil)

	next, err := p.Propagate(n, 0.5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, next.step, test.ShouldEqual, 1)
	test.That(t, next.sourcePropagation, test.ShouldEqual, n)
	test.That(t, next.polyLon.IsEmpty(), test.ShouldBeFalse)

	b := next.polyLon.Bounds()
	test.That(t, b.Lo.X > 0, test.ShouldBeTrue)
}

func TestPropagateEmptyWhenVelocityClipsOut(t *testing.T) {
	p := NewPropagator(testVehicle())
	lon := geometry.FromRectangle(-0.1, 39.9, 0.1, 40.1) // already outside [0,30]
	lat := geometry.FromRectangle(-0.1, -0.1, 0.1, 0.1)
	n := newNode(1, 0, lon, lat, nil)

	_, err := p.Propagate(n, 0.5)
	test.That(t, err, test.ShouldEqual, ErrPropagationEmpty)
}
