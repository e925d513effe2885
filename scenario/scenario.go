// Package scenario defines the collaborator contracts the reachable-set
// engine consumes: the scenario/obstacle provider and the initial-state
// and vehicle-parameter inputs. The curvilinear coordinate-system
// contract lives in package frame. Scenario-file parsing, route
// planning, and vehicle-parameter lookup tables are out of scope — this package only defines the
// interfaces and ships minimal in-memory test doubles sufficient to
// drive tests.
package scenario

import (
	"math"
	"time"

	"go.viam.com/reachplan/geometry"
)

// Provider yields the per-computation scalars the engine needs: the step
// size, the horizon, and the obstacle world.
type Provider interface {
	// DT is the per-step duration; must be a positive multiple of 100ms.
	DT() time.Duration
	// StepStart is the first step index the engine should compute from.
	StepStart() int
	// StepsComputation is the number of steps beyond StepStart to compute.
	StepsComputation() int
	// Obstacles returns the obstacle world for this computation.
	Obstacles() ObstacleWorld
}

// ObstacleWorld is a finite collection of convex shapes in the working
// frame, static or indexed by step. It is built once by an external
// collaborator and is read-only for the duration of a computation, so it
// is safe to share across worker-pool goroutines.
type ObstacleWorld interface {
	// Static returns obstacle shapes that do not change across steps,
	// e.g. road-boundary geometry.
	Static() []*geometry.Polygon
	// AtStep returns the obstacle shapes active at the given step,
	// i.e. Static() plus whatever dynamic obstacles occupy that step.
	AtStep(step int) []*geometry.Polygon
}

// InitialState is the ego vehicle's initial position/velocity and its
// symmetric uncertainty bounds in each axis, all finite doubles.
type InitialState struct {
	PLon0, PLat0 float64
	VLon0, VLat0 float64

	DeltaPLon, DeltaPLat float64
	DeltaVLon, DeltaVLat float64
}

// ReferencePoint selects which point on the vehicle the initial state is
// given with respect to; it only affects the initial-state transform.
type ReferencePoint int

// Reference point choices.
const (
	ReferenceRear ReferencePoint = iota
	ReferenceCenter
)

// VehicleParameters bounds the vehicle's dynamics and gives its footprint.
// AccelLonMin <= 0 <= AccelLonMax, and likewise laterally; VelLonMin
// <= VelLonMax, and likewise laterally.
type VehicleParameters struct {
	AccelLonMin, AccelLonMax float64
	AccelLatMin, AccelLatMax float64
	VelLonMin, VelLonMax     float64
	VelLatMin, VelLatMax     float64

	Length, Width float64
}

// InflationMode picks the circle used to turn the vehicle's footprint
// into a single inflation radius for obstacle clearance.
type InflationMode int

// Inflation mode choices.
const (
	InflationInscribed InflationMode = iota
	InflationCircumscribed
)

// InflationRadius returns the inscribed or circumscribed circle radius
// of the vehicle's rectangular footprint.
func (vp VehicleParameters) InflationRadius(mode InflationMode) float64 {
	switch mode {
	case InflationCircumscribed:
		return math.Hypot(vp.Length/2, vp.Width/2)
	default:
		return math.Min(vp.Length, vp.Width) / 2
	}
}
