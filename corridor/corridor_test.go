package corridor

import (
	"context"
	"testing"
	"time"

	"go.viam.com/reachplan/collision"
	"go.viam.com/reachplan/config"
	"go.viam.com/reachplan/geometry"
	"go.viam.com/reachplan/logging"
	"go.viam.com/reachplan/reach"
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

// narrowCorridorEngine builds and computes an engine over a 20m-long,
// 3m-wide straight road with road-boundary walls as static obstacles.
func narrowCorridorEngine(t *testing.T) (*reach.Engine, int, int) {
	t.Helper()
	leftWall := geometry.FromRectangle(-1, 1.5, 21, 2.5)
	rightWall := geometry.FromRectangle(-1, -2.5, 21, -1.5)
	world := scenario.NewStaticWorld(leftWall, rightWall)

	cfg := config.Configuration{
		SizeGrid: 0.5, SizeGrid2nd: 0.5, RadiusTerminalSplit: 0.1,
		NumThreads: 4, ModeRepartition: config.RepartitionPrePost,
	}
	initial := scenario.InitialState{
		PLon0: 0, PLat0: 0, VLon0: 5, VLat0: 0,
		DeltaPLon: 0.2, DeltaPLat: 0.2, DeltaVLon: 0.1, DeltaVLat: 0.1,
	}
	provider := &scenario.FixedProvider{StepDT: 300 * time.Millisecond, Start: 0, NumSteps: 5, ObstacleWorld: world}
	checker := collision.New(world, 0, logging.NewTestLogger())

	e, err := reach.New(cfg, testVehicle(), initial, provider, checker, logging.NewTestLogger())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, e.Compute(context.Background(), 0, 5), test.ShouldBeNil)
	return e, 0, 5
}

func collectReachSets(t *testing.T, e *reach.Engine, start, end int) map[int][]*reach.Node {
	t.Helper()
	out := make(map[int][]*reach.Node, end-start+1)
	for s := start; s <= end; s++ {
		nodes, err := e.ReachableSetAt(s)
		test.That(t, err, test.ShouldBeNil)
		out[s] = nodes
	}
	return out
}

func TestExtractNarrowCorridorYieldsOneChain(t *testing.T) {
	e, start, end := narrowCorridorEngine(t)
	reachSets := collectReachSets(t, e, start, end)

	corridors, err := Extract(reachSets, start, end, 10, Options{ToGoalRegion: true})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(corridors) > 0, test.ShouldBeTrue)

	top := corridors[0]
	for s := start; s <= end; s++ {
		comp, ok := top.PerStep[s]
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, len(comp.Nodes) > 0, test.ShouldBeTrue)
	}
}

func TestExtractRejectsLopsidedLateralArgs(t *testing.T) {
	e, start, end := narrowCorridorEngine(t)
	reachSets := collectReachSets(t, e, start, end)

	_, err := Extract(reachSets, start, end, 10, Options{LongitudinalPositions: map[int]float64{0: 0}})
	test.That(t, err, test.ShouldEqual, ErrBadCorridorArgs)
}

func TestExtractRanksCorridorsByDescendingArea(t *testing.T) {
	e, start, end := narrowCorridorEngine(t)
	reachSets := collectReachSets(t, e, start, end)

	corridors, err := Extract(reachSets, start, end, 10, Options{})
	test.That(t, err, test.ShouldBeNil)
	for i := 1; i < len(corridors); i++ {
		test.That(t, corridors[i-1].Area >= corridors[i].Area, test.ShouldBeTrue)
	}
}

func TestConnectedComponentsMergesTouchingRects(t *testing.T) {
	lon := geometry.FromRectangle(0, 0, 1, 1)
	lat := geometry.FromRectangle(0, 0, 1, 1)
	a := reach.NewTestNode(1, 0, lon, lat)

	lon2 := geometry.FromRectangle(1, 0, 2, 1)
	lat2 := geometry.FromRectangle(0, 0, 1, 1)
	b := reach.NewTestNode(2, 0, lon2, lat2)

	lon3 := geometry.FromRectangle(5, 0, 6, 1)
	lat3 := geometry.FromRectangle(0, 0, 1, 1)
	c := reach.NewTestNode(3, 0, lon3, lat3)

	comps := connectedComponents(0, []*reach.Node{a, b, c})
	test.That(t, len(comps), test.ShouldEqual, 2)
}
