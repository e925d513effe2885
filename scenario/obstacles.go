package scenario

import (
	"time"

	"go.viam.com/reachplan/geometry"
)

// StaticWorld is a minimal ObstacleWorld: a fixed list of static shapes
// plus a per-step map of additional dynamic shapes. It is sufficient for
// tests; real scenario files are an out-of-scope collaborator concern.
type StaticWorld struct {
	StaticShapes  []*geometry.Polygon
	DynamicShapes map[int][]*geometry.Polygon
}

// NewStaticWorld builds a StaticWorld with the given static shapes and no
// dynamic obstacles.
func NewStaticWorld(static ...*geometry.Polygon) *StaticWorld {
	return &StaticWorld{StaticShapes: static, DynamicShapes: map[int][]*geometry.Polygon{}}
}

// WithDynamic registers shapes active only at the given step, returning
// the receiver for chaining.
func (w *StaticWorld) WithDynamic(step int, shapes ...*geometry.Polygon) *StaticWorld {
	w.DynamicShapes[step] = append(w.DynamicShapes[step], shapes...)
	return w
}

// Static implements ObstacleWorld.
func (w *StaticWorld) Static() []*geometry.Polygon {
	return w.StaticShapes
}

// AtStep implements ObstacleWorld.
func (w *StaticWorld) AtStep(step int) []*geometry.Polygon {
	if len(w.DynamicShapes[step]) == 0 {
		return w.StaticShapes
	}
	out := make([]*geometry.Polygon, 0, len(w.StaticShapes)+len(w.DynamicShapes[step]))
	out = append(out, w.StaticShapes...)
	out = append(out, w.DynamicShapes[step]...)
	return out
}

// FixedProvider is a minimal Provider backed by constant fields, enough
// to drive a Compute call in tests and the demo CLI.
type FixedProvider struct {
	StepDT        time.Duration
	Start         int
	NumSteps      int
	ObstacleWorld ObstacleWorld
}

// DT implements Provider.
func (p FixedProvider) DT() time.Duration { return p.StepDT }

// StepStart implements Provider.
func (p FixedProvider) StepStart() int { return p.Start }

// StepsComputation implements Provider.
func (p FixedProvider) StepsComputation() int { return p.NumSteps }

// Obstacles implements Provider.
func (p FixedProvider) Obstacles() ObstacleWorld { return p.ObstacleWorld }
