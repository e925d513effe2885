package reach

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.viam.com/reachplan/collision"
	"go.viam.com/reachplan/config"
	"go.viam.com/reachplan/geometry"
	"go.viam.com/reachplan/logging"
	"go.viam.com/reachplan/scenario"
	"go.viam.com/test"
)

func testConfig() config.Configuration {
	return config.Configuration{
		SizeGrid:            0.5,
		SizeGrid2nd:         0.5,
		RadiusTerminalSplit: 0.1,
		NumThreads:          4,
		ModeRepartition:     config.RepartitionPrePost,
	}
}

func testInitialState() scenario.InitialState {
	return scenario.InitialState{
		PLon0: 0, PLat0: 0,
		VLon0: 5, VLat0: 0,
		DeltaPLon: 0.2, DeltaPLat: 0.2,
		DeltaVLon: 0.1, DeltaVLat: 0.1,
	}
}

func newTestEngine(t *testing.T, world scenario.ObstacleWorld, numSteps int) *Engine {
	t.Helper()
	provider := &scenario.FixedProvider{
		StepDT:        200 * time.Millisecond,
		Start:         0,
		NumSteps:      numSteps,
		ObstacleWorld: world,
	}
	checker := collision.New(world, 0, logging.NewTestLogger())
	e, err := New(testConfig(), testVehicle(), testInitialState(), provider, checker, logging.NewTestLogger())
	test.That(t, err, test.ShouldBeNil)
	return e
}

func TestComputeEmptyWorldAreaGrowsOverHorizon(t *testing.T) {
	world := scenario.NewStaticWorld()
	e := newTestEngine(t, world, 10)

	err := e.Compute(context.Background(), 0, 10)
	test.That(t, err, test.ShouldBeNil)

	for t0 := 0; t0 <= 10; t0++ {
		area, err := e.DrivableAreaAt(t0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(area) > 0, test.ShouldBeTrue)
	}

	early, _ := e.DrivableAreaAt(0)
	late, _ := e.DrivableAreaAt(10)
	var earlyArea, lateArea float64
	for _, r := range early {
		earlyArea += r.Area()
	}
	for _, r := range late {
		lateArea += r.Area()
	}
	test.That(t, lateArea > earlyArea, test.ShouldBeTrue)
}

func TestComputeRejectsBadHorizon(t *testing.T) {
	world := scenario.NewStaticWorld()
	e := newTestEngine(t, world, 5)
	err := e.Compute(context.Background(), 5, 5)
	test.That(t, errors.Is(err, ErrBadHorizon), test.ShouldBeTrue)
}

func TestQueryBeforeComputeReturnsEmpty(t *testing.T) {
	world := scenario.NewStaticWorld()
	e := newTestEngine(t, world, 5)
	area, err := e.DrivableAreaAt(0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(area), test.ShouldEqual, 0)
}

// TestSingleBlockerKeepsDrivableAreaCollisionFree checks that a static
// obstacle placed directly ahead of the ego vehicle never overlaps the
// interior of a published drivable-area rectangle (a rectangle may share
// an edge with it, since the final repartition snaps collision-free
// pieces outward to the grid), and that the engine still
// publishes a non-empty drivable area past the obstacle (the reach set
// finds a way around rather than terminating).
func TestSingleBlockerKeepsDrivableAreaCollisionFree(t *testing.T) {
	blocker := geometry.FromRectangle(3, -0.5, 4, 0.5)
	world := scenario.NewStaticWorld(blocker)
	e := newTestEngine(t, world, 6)

	err := e.Compute(context.Background(), 0, 6)
	test.That(t, err, test.ShouldBeNil)

	for t0 := 1; t0 <= 6; t0++ {
		area, err := e.DrivableAreaAt(t0)
		test.That(t, err, test.ShouldBeNil)
		for _, r := range area {
			test.That(t, r.Intersection(blocker.Bounds()).Area(), test.ShouldEqual, 0.0)
		}
	}
	final, err := e.DrivableAreaAt(6)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(final) > 0, test.ShouldBeTrue)
}

func TestPruneRemovesDeadBranches(t *testing.T) {
	world := scenario.NewStaticWorld()
	cfg := testConfig()
	cfg.PruneNodesNotReachingFinalStep = true

	provider := &scenario.FixedProvider{StepDT: 200 * time.Millisecond, Start: 0, NumSteps: 4, ObstacleWorld: world}
	checker := collision.New(world, 0, logging.NewTestLogger())
	e, err := New(cfg, testVehicle(), testInitialState(), provider, checker, logging.NewTestLogger())
	test.That(t, err, test.ShouldBeNil)

	err = e.Compute(context.Background(), 0, 4)
	test.That(t, err, test.ShouldBeNil)

	nodes, err := e.ReachableSetAt(0)
	test.That(t, err, test.ShouldBeNil)
	for _, n := range nodes {
		test.That(t, n.childCount() > 0, test.ShouldBeTrue)
	}
}

func TestComputeToleratesTightVelocityBounds(t *testing.T) {
	world := scenario.NewStaticWorld()
	cfg := testConfig()
	vp := testVehicle()
	vp.VelLonMax = 5.05 // tight enough that the velocity clip trims the upper edge of propagated lon bands
	provider := &scenario.FixedProvider{StepDT: 500 * time.Millisecond, Start: 0, NumSteps: 3, ObstacleWorld: world}
	checker := collision.New(world, 0, logging.NewTestLogger())
	e, err := New(cfg, vp, testInitialState(), provider, checker, logging.NewTestLogger())
	test.That(t, err, test.ShouldBeNil)

	err = e.Compute(context.Background(), 0, 3)
	test.That(t, err, test.ShouldBeNil)
}
