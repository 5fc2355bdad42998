// Package sizing resizes network elements against a maximum flow velocity.
//
// Two strategies share one sweep loop: Continuous changes diameters by a
// fixed step, Catalog walks pipes along an ordered type table. In both, a
// too-fast element grows unconditionally and is checked again on the next
// sweep, while a shrink is only a proposal: it is applied, the network is
// re-solved, and the change is committed or rolled back depending on the new
// velocity. Sweeps repeat until one commits nothing.
//
// Velocities are compared by magnitude, so the bookkeeping direction of a
// pipe does not matter.
package sizing

import (
	"errors"
	"log/slog"

	"github.com/katalvlaran/heatnet/logging"
	"github.com/katalvlaran/heatnet/metrics"
	"github.com/katalvlaran/heatnet/network"
	"github.com/katalvlaran/heatnet/solver"
)

// Sentinel errors.
var (
	// ErrInvalidSettings is returned for non-positive limits or steps.
	ErrInvalidSettings = errors.New("sizing: invalid settings")

	// ErrEmptyCatalog is returned when the material/insulation filter leaves no entries.
	ErrEmptyCatalog = errors.New("sizing: no catalog entries match the filter")
)

// DefaultMaxSweeps bounds a sizing run that never reaches a fixed point.
const DefaultMaxSweeps = 1000

// Resize actions, used as metric labels.
const (
	ActionGrow   = "grow"
	ActionShrink = "shrink"
	ActionRevert = "revert"
)

// ContinuousSettings configures Continuous.
type ContinuousSettings struct {
	// VMax is the velocity limit in m/s.
	VMax float64
	// Step is the diameter increment in m.
	Step float64
	// MinDiameter stops shrinking; zero means Step.
	MinDiameter float64
	// MaxDiameter stops growing; zero means unbounded.
	MaxDiameter float64
}

// CatalogSettings configures Catalog.
type CatalogSettings struct {
	VMax       float64
	Material   string
	Insulation string
}

// Report summarizes one sizing run.
type Report struct {
	Kind     network.Kind
	Sweeps   int
	Solves   int
	Grown    int
	Shrunk   int
	Reverted int
	// Snapped counts pipes moved onto the filtered catalog before sizing.
	Snapped int
	// AtLimit lists elements still above VMax that cannot grow further.
	AtLimit []int
	// FixedPoint is false when the sweep cap ended the run.
	FixedPoint bool
}

// Changed reports whether the run committed any change.
func (r Report) Changed() bool {
	return r.Grown+r.Shrunk+r.Snapped > 0
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithMaxSweeps caps the number of sweeps per run.
func WithMaxSweeps(n int) Option {
	return func(o *Optimizer) {
		if n > 0 {
			o.maxSweeps = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Optimizer) { o.log = logging.OrDiscard(l) }
}

// WithMetrics records resizes and sweeps in reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(o *Optimizer) { o.metrics = reg }
}

// Optimizer runs sizing strategies against a solver.
type Optimizer struct {
	solver    solver.Solver
	maxSweeps int
	log       *slog.Logger
	metrics   *metrics.Registry
}

// New returns an Optimizer solving with s.
func New(s solver.Solver, opts ...Option) *Optimizer {
	o := &Optimizer{solver: s, maxSweeps: DefaultMaxSweeps, log: logging.Discard()}
	for _, opt := range opts {
		opt(o)
	}

	return o
}
