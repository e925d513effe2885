package scenario

import (
	"testing"
	"time"

	"go.viam.com/reachplan/geometry"
	"go.viam.com/test"
)

func TestStaticWorldMergesDynamicAtStep(t *testing.T) {
	static := geometry.FromRectangle(0, 0, 1, 1)
	dyn := geometry.FromRectangle(5, 5, 6, 6)
	w := NewStaticWorld(static).WithDynamic(3, dyn)

	test.That(t, len(w.Static()), test.ShouldEqual, 1)
	test.That(t, len(w.AtStep(3)), test.ShouldEqual, 2)
	test.That(t, len(w.AtStep(4)), test.ShouldEqual, 1)
}

func TestFixedProvider(t *testing.T) {
	w := NewStaticWorld()
	p := FixedProvider{StepDT: 100 * time.Millisecond, Start: 0, NumSteps: 10, ObstacleWorld: w}
	test.That(t, p.DT(), test.ShouldEqual, 100*time.Millisecond)
	test.That(t, p.StepStart(), test.ShouldEqual, 0)
	test.That(t, p.StepsComputation(), test.ShouldEqual, 10)
}

func TestInflationRadius(t *testing.T) {
	vp := VehicleParameters{Length: 4, Width: 2}
	test.That(t, vp.InflationRadius(InflationInscribed), test.ShouldEqual, 1.0)
	test.That(t, vp.InflationRadius(InflationCircumscribed) > 2.0, test.ShouldBeTrue)
}
