package reach

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.viam.com/utils"
	"golang.org/x/sync/errgroup"

	"go.viam.com/reachplan/collision"
	"go.viam.com/reachplan/config"
	"go.viam.com/reachplan/diagnostics"
	"go.viam.com/reachplan/geometry"
	"go.viam.com/reachplan/logging"
	"go.viam.com/reachplan/scenario"
)

// ErrBadHorizon is returned by Compute when stepEnd does not strictly
// follow stepStart.
var ErrBadHorizon = errors.New("reach: step_end must be strictly greater than step_start")

// ErrUninitializedQuery describes a DrivableAreaAt/ReachableSetAt call
// for a step Compute has not produced. It is logged at Warn level next
// to an empty result; the query methods never return it as an error.
var ErrUninitializedQuery = errors.New("reach: query before compute reached this step")

// state is the engine's lifecycle: it only ever moves forward.
type state int

const (
	stateUninitialized state = iota
	stateInitialized
	stateComputing
	stateComputed
	statePruned
)

// Engine is the reachable-set computation state machine. One
// Engine serves one computation; it is not safe to call Compute twice
// concurrently, but DrivableAreaAt/ReachableSetAt are safe to call
// concurrently with each other once Compute has returned.
type Engine struct {
	// id namespaces this instance's log lines; it is independent of the
	// per-node monotonic integer ID.
	id      uuid.UUID
	cfg     config.Configuration
	vehicle scenario.VehicleParameters
	initial scenario.InitialState

	provider   scenario.Provider
	checker    *collision.Checker
	logger     logging.Logger
	diag       *diagnostics.Diagnostics
	propagator *Propagator

	mu         sync.RWMutex
	state      state
	stepStart  int
	stepEnd    int
	nextID     int64
	reachSets  map[int][]*Node
	drivable   map[int][]geometry.Rect

	cancelled *atomic.Bool
}

// New builds an Engine bound to a validated configuration and its
// collaborators. The returned engine is Uninitialised until Compute is
// called.
func New(
	cfg config.Configuration,
	vehicle scenario.VehicleParameters,
	initial scenario.InitialState,
	provider scenario.Provider,
	checker *collision.Checker,
	logger logging.Logger,
) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewTestLogger()
	}
	id := uuid.New()
	logger = logger.Named("reach").With("engine_id", id.String())
	return &Engine{
		id:         id,
		cfg:        cfg,
		vehicle:    vehicle,
		initial:    initial,
		provider:   provider,
		checker:    checker,
		logger:     logger,
		diag:       diagnostics.New(),
		propagator: NewPropagator(vehicle),
		state:      stateUninitialized,
		reachSets:  map[int][]*Node{},
		drivable:   map[int][]geometry.Rect{},
		cancelled:  atomic.NewBool(false),
	}, nil
}

// Diagnostics returns the engine's recoverable-drop counters.
func (e *Engine) Diagnostics() *diagnostics.Diagnostics { return e.diag }

// ID returns this engine instance's unique identifier.
func (e *Engine) ID() uuid.UUID { return e.id }

// Cancel requests cooperative cancellation. The engine only checks this
// flag between steps, so an in-flight step's worker pool always
// finishes.
func (e *Engine) Cancel() { e.cancelled.Store(true) }

func (e *Engine) allocID() NodeID {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	return NodeID(e.nextID)
}

// referenceAdjustedPLon0 converts the configured initial longitudinal
// position to the engine's own convention: the position plane treats
// the ego as a point at the vehicle's geometric center (footprint
// clearance is handled separately via VehicleParameters.InflationRadius).
// An initial state given with respect to the rear axle is shifted forward
// by half the vehicle length to align with that convention. A state
// already given with respect to the center needs no adjustment.
func (e *Engine) referenceAdjustedPLon0() float64 {
	if e.cfg.ReferencePoint == scenario.ReferenceRear {
		return e.initial.PLon0 + e.vehicle.Length/2
	}
	return e.initial.PLon0
}

// initialState builds the step-0 reach node from the configured initial
// state and its uncertainty bounds.
func (e *Engine) initialState() *Node {
	pLon0 := e.referenceAdjustedPLon0()
	lon := geometry.FromRectangle(
		pLon0-e.initial.DeltaPLon, e.initial.VLon0-e.initial.DeltaVLon,
		pLon0+e.initial.DeltaPLon, e.initial.VLon0+e.initial.DeltaVLon,
	)
	lat := geometry.FromRectangle(
		e.initial.PLat0-e.initial.DeltaPLat, e.initial.VLat0-e.initial.DeltaVLat,
		e.initial.PLat0+e.initial.DeltaPLat, e.initial.VLat0+e.initial.DeltaVLat,
	)
	return newNode(e.allocID(), e.stepStart, lon, lat, nil)
}

// Compute runs the engine from stepStart through stepEnd inclusive. It
// is the only place the engine moves through Initialised, Computing,
// and Computed/Pruned.
func (e *Engine) Compute(ctx context.Context, stepStart, stepEnd int) error {
	if stepEnd <= stepStart {
		return fmt.Errorf("%w: got start=%d end=%d", ErrBadHorizon, stepStart, stepEnd)
	}

	e.mu.Lock()
	e.stepStart = stepStart
	e.stepEnd = stepEnd
	e.state = stateInitialized
	e.mu.Unlock()

	root := e.initialState()
	e.mu.Lock()
	e.reachSets[stepStart] = []*Node{root}
	e.drivable[stepStart] = []geometry.Rect{root.PositionRectangle()}
	e.state = stateComputing
	e.mu.Unlock()

	dt := e.provider.DT().Seconds()

	for t := stepStart + 1; t <= stepEnd; t++ {
		if e.cancelled.Load() {
			e.logger.Infof("reach: computation cancelled after step %d", t-1)
			break
		}
		if err := e.advance(ctx, t, dt); err != nil {
			return err
		}
	}

	e.mu.Lock()
	e.state = stateComputed
	e.mu.Unlock()

	if e.cfg.PruneNodesNotReachingFinalStep {
		e.prune()
		e.mu.Lock()
		e.state = statePruned
		e.mu.Unlock()
	}
	return nil
}

// advance computes reach_set[t] and drivable_area[t] from
// reach_set[t-1] by running the per-step pipeline: propagate, project,
// repartition(grid_1), collide-and-split, repartition(grid_2), adapt.
func (e *Engine) advance(ctx context.Context, t int, dt float64) error {
	e.mu.RLock()
	prior := e.reachSets[t-1]
	e.mu.RUnlock()

	if len(prior) == 0 {
		e.mu.Lock()
		e.reachSets[t] = nil
		e.drivable[t] = nil
		e.mu.Unlock()
		return nil
	}

	propagated, err := e.propagateAll(ctx, prior, dt)
	if err != nil {
		return err
	}
	if len(propagated) == 0 {
		e.mu.Lock()
		e.reachSets[t] = nil
		e.drivable[t] = nil
		e.mu.Unlock()
		return nil
	}

	// Project: each propagated node's own position rectangle.
	projected := make([]geometry.Rect, len(propagated))
	for i, p := range propagated {
		projected[i] = p.PositionRectangle()
	}

	preCollision := projected
	if e.cfg.ModeRepartition == config.RepartitionPre || e.cfg.ModeRepartition == config.RepartitionPrePost {
		preCollision = geometry.Repartition(projected, e.cfg.SizeGrid)
	}

	split := e.splitAll(ctx, preCollision, t)

	final := split
	if e.cfg.ModeRepartition != config.RepartitionPre {
		final = geometry.Repartition(split, e.cfg.SizeGrid2nd)
	}

	nodes := e.adapt(propagated, final, t)

	e.mu.Lock()
	e.reachSets[t] = nodes
	e.drivable[t] = final
	e.mu.Unlock()
	return nil
}

// propagateAll advances every node in a reach set by one step, in
// parallel across EffectiveThreads workers. A node whose propagation
// clips to empty on either axis is dropped and recorded to
// Diagnostics rather than failing the computation.
func (e *Engine) propagateAll(ctx context.Context, nodes []*Node, dt float64) ([]*Node, error) {
	results := make([]*Node, len(nodes))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.EffectiveThreads())

	for i, n := range nodes {
		i, n := i, n
		g.Go(func() error {
			propagated, err := e.propagator.Propagate(n, dt)
			if err != nil {
				if errors.Is(err, ErrPropagationEmpty) {
					e.diag.Record(diagnostics.PropagationEmpty, n.step+1, err)
					return nil
				}
				return err
			}
			results[i] = propagated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*Node, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

// splitAll runs the recursive collision split over a set of
// candidate rectangles in parallel.
func (e *Engine) splitAll(ctx context.Context, rects []geometry.Rect, step int) []geometry.Rect {
	predicate := e.checker.AsPredicate(step)
	if len(rects) == 0 {
		return nil
	}
	results := make([][]geometry.Rect, len(rects))
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.cfg.EffectiveThreads())
	for i, r := range rects {
		i, r := i, r
		wg.Add(1)
		sem <- struct{}{}
		utils.PanicCapturingGo(func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = geometry.SplitUntilRadius(r, predicate, e.cfg.RadiusTerminalSplit)
		})
	}
	wg.Wait()

	var out []geometry.Rect
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// adapt takes each final drivable rectangle, gathers the propagated
// nodes whose own position rectangle overlaps it, intersects their
// polygons down to that rectangle's position bounds, and publishes one
// reach node per rectangle (hulling multiple contributors together,
// unioning their parent sets).
func (e *Engine) adapt(propagated []*Node, final []geometry.Rect, step int) []*Node {
	out := make([]*Node, 0, len(final))
	for _, r := range final {
		var lonParts, latParts []*geometry.Polygon
		var sources []*Node
		for _, p := range propagated {
			if !p.PositionRectangle().Intersects(r) {
				continue
			}
			adaptedLon := p.polyLon.IntersectHalfplane(1, 0, r.Hi.X).IntersectHalfplane(-1, 0, -r.Lo.X)
			adaptedLat := p.polyLat.IntersectHalfplane(1, 0, r.Hi.Y).IntersectHalfplane(-1, 0, -r.Lo.Y)
			if adaptedLon.IsEmpty() || adaptedLat.IsEmpty() {
				continue
			}
			lonParts = append(lonParts, adaptedLon)
			latParts = append(latParts, adaptedLat)
			sources = append(sources, p.sourcePropagation)
		}
		if len(lonParts) == 0 {
			continue
		}

		var lon, lat *geometry.Polygon
		var primarySource *Node
		if len(lonParts) == 1 {
			lon, lat = lonParts[0], latParts[0]
			primarySource = sources[0]
		} else {
			lon = geometry.HullMany(lonParts...)
			lat = geometry.HullMany(latParts...)
			primarySource = largestContributor(sources)
		}

		n := newNode(e.allocID(), step, lon, lat, primarySource)
		seen := map[NodeID]bool{}
		for _, s := range sources {
			if s == nil || seen[s.id] {
				continue
			}
			seen[s.id] = true
			link(n, s)
		}
		out = append(out, n)
	}
	return out
}

// largestContributor is the degenerate-tiebreak policy for
// SourcePropagation when multiple propagated nodes are hulled into one
// final reach node: the field is documented as "the unique" source, so
// when several exist this picks the first (deterministic, order is the
// iteration order of the prior reach set).
func largestContributor(sources []*Node) *Node {
	if len(sources) == 0 {
		return nil
	}
	return sources[0]
}

// DrivableAreaAt returns the published drivable-area rectangles at step
// t. For a step Compute has not produced it logs ErrUninitializedQuery
// at Warn level and returns an empty result with a nil error.
func (e *Engine) DrivableAreaAt(t int) ([]geometry.Rect, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state == stateUninitialized || t < e.stepStart || t > e.stepEnd {
		e.logger.Warnf("%v: drivable area requested for uncomputed step %d", ErrUninitializedQuery, t)
		return nil, nil
	}
	return e.drivable[t], nil
}

// ReachableSetAt returns the published reach nodes at step t. For a step
// Compute has not produced it logs ErrUninitializedQuery at Warn level
// and returns an empty result with a nil error.
func (e *Engine) ReachableSetAt(t int) ([]*Node, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state == stateUninitialized || t < e.stepStart || t > e.stepEnd {
		e.logger.Warnf("%v: reachable set requested for uncomputed step %d", ErrUninitializedQuery, t)
		return nil, nil
	}
	return e.reachSets[t], nil
}

// StepRange returns the [stepStart, stepEnd] horizon of the most recent
// Compute call.
func (e *Engine) StepRange() (start, end int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stepStart, e.stepEnd
}

// prune is the optional backward-reachability pass: walking from
// stepEnd back to stepStart, any node with zero children (and which is
// not itself at stepEnd) did not lead anywhere and is removed from its
// step's published reach set; drivable area is left untouched (a pruned
// node's rectangle may still be covered by a sibling). Its parent's
// child reference to it is dropped so the pass can cascade backward.
func (e *Engine) prune() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for t := e.stepEnd - 1; t >= e.stepStart; t-- {
		kept := e.reachSets[t][:0]
		for _, n := range e.reachSets[t] {
			if t != e.stepEnd && n.childCount() == 0 {
				for _, p := range n.Parents() {
					p.removeChild(n.id)
				}
				continue
			}
			kept = append(kept, n)
		}
		e.reachSets[t] = kept
	}
}
