// Package gate serialises heavy computations behind a non-queueing busy flag.
//
// A Gate admits one Run at a time. A Run attempted while another is in
// flight is rejected immediately; it is never queued and is not an error.
// The flag is released on every exit path, including panics, which are
// recovered and reported as ErrFault.
package gate

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// ErrFault wraps a panic recovered from gated work.
var ErrFault = errors.New("gate: computation fault")

// Outcome label values for lvroute_gate_runs_total.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeFault    = "fault"
	OutcomeRejected = "rejected"
)

// Gate is a named busy flag with change notification and metrics.
// The zero value is not usable; construct with New.
type Gate struct {
	name string
	busy atomic.Bool

	mu        sync.Mutex
	listeners []func(busy bool)

	m   *metrics
	log zerolog.Logger
}

// New returns an idle gate. Metrics are registered on reg; a nil reg leaves
// them unregistered. Several gates may share one registry.
func New(name string, reg prometheus.Registerer, log zerolog.Logger) *Gate {
	return &Gate{
		name: name,
		m:    newMetrics(reg),
		log:  log.With().Str("component", "gate").Str("gate", name).Logger(),
	}
}

// Name returns the gate name used in metric labels.
func (g *Gate) Name() string { return g.name }

// Busy reports whether a computation is in flight.
func (g *Gate) Busy() bool { return g.busy.Load() }

// OnChange registers fn to be called with the new busy value on every
// transition. Listeners run synchronously on the goroutine calling Run.
func (g *Gate) OnChange(fn func(busy bool)) {
	g.mu.Lock()
	g.listeners = append(g.listeners, fn)
	g.mu.Unlock()
}

func (g *Gate) notify(busy bool) {
	g.mu.Lock()
	ls := slices.Clone(g.listeners)
	g.mu.Unlock()
	for _, fn := range ls {
		fn(busy)
	}
}

// Run executes fn if the gate is idle and reports whether it ran.
// When the gate is busy Run returns (false, nil) without calling fn.
// The error is fn's own, or one wrapping ErrFault if fn panicked.
func (g *Gate) Run(label string, fn func() error) (ran bool, err error) {
	if !g.busy.CompareAndSwap(false, true) {
		g.m.runs.WithLabelValues(g.name, label, OutcomeRejected).Inc()
		g.log.Debug().Str("label", label).Msg("rejected: busy")
		return false, nil
	}

	start := time.Now()
	defer func() {
		outcome := OutcomeOK
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrFault, label, r)
			outcome = OutcomeFault
			g.log.Error().Str("label", label).Interface("panic", r).Msg("recovered")
		} else if err != nil {
			outcome = OutcomeError
		}
		elapsed := time.Since(start)
		g.m.duration.WithLabelValues(g.name, label).Observe(elapsed.Seconds())
		g.m.runs.WithLabelValues(g.name, label, outcome).Inc()
		g.log.Debug().Str("label", label).Str("outcome", outcome).Dur("elapsed", elapsed).Msg("done")

		g.busy.Store(false)
		g.notify(false)
	}()

	ran = true
	g.notify(true)
	err = fn()
	return ran, err
}
