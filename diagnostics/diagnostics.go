// Package diagnostics aggregates the non-fatal drop events the engine
// produces while computing reach sets: the core never aborts a
// multi-step computation over a single geometric failure, but every
// drop is counted and its cause retained for later inspection.
package diagnostics

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
)

// Kind identifies which recoverable error caused a drop.
type Kind int

// Recoverable drop kinds.
const (
	PropagationEmpty Kind = iota
	DegeneratePolygon
	OutsideProjectionDomain
)

func (k Kind) String() string {
	switch k {
	case PropagationEmpty:
		return "PropagationEmpty"
	case DegeneratePolygon:
		return "DegeneratePolygon"
	case OutsideProjectionDomain:
		return "OutsideProjectionDomain"
	default:
		return "Unknown"
	}
}

// Diagnostics collects dropped-node/vertex events across a computation.
// It is safe for concurrent use from worker-pool goroutines, since the
// engine's stages may run drop-producing operations in parallel.
type Diagnostics struct {
	mu     sync.Mutex
	counts map[Kind]int
	causes error
}

// New returns an empty Diagnostics ready to record drops.
func New() *Diagnostics {
	return &Diagnostics{counts: map[Kind]int{}}
}

// Record registers one drop of the given kind at the given step, with
// the underlying cause that triggered it.
func (d *Diagnostics) Record(kind Kind, step int, cause error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.counts[kind]++
	d.causes = multierr.Append(d.causes, fmt.Errorf("step %d: %s: %w", step, kind, cause))
}

// Count returns how many drops of the given kind have been recorded.
func (d *Diagnostics) Count(kind Kind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[kind]
}

// Total returns the number of drops recorded across all kinds.
func (d *Diagnostics) Total() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	total := 0
	for _, c := range d.counts {
		total += c
	}
	return total
}

// Err returns the aggregated chain of drop causes, or nil if nothing was
// ever recorded. This is always informational: a non-nil Err does not
// mean the computation failed.
func (d *Diagnostics) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.causes
}
