// Package engine implements the virtual-clock event loop the NIC model runs on.
//
// All logical processes (cores, dispatcher, generator, samplers, timers) share one
// Engine and execute strictly sequentially: a process suspends by registering a
// continuation on an Event (a timeout, a Store get, an AnyOf race or an
// interruptible Process) and is resumed when that event is processed.
// Equal-time events are processed in the order they were scheduled.
package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

var (
	// ErrStalled is returned by Run when the event queue drains before Stop is called.
	ErrStalled = errors.New("engine: no pending events before the run was stopped")
	// ErrHorizon is returned by Run when the next event lies beyond the horizon.
	ErrHorizon = errors.New("engine: simulation horizon reached")
)

// Engine holds the virtual clock and the pending event queue.
// Not thread-safe: every callback runs on the goroutine that called Run.
type Engine struct {
	now     float64
	seq     uint64
	queue   entryHeap
	stopped bool
	horizon float64
	steps   uint64
}

// New creates an engine at time zero with no horizon.
func New() *Engine {
	return &Engine{horizon: math.Inf(1)}
}

// Now returns the current virtual time.
func (e *Engine) Now() float64 {
	return e.now
}

// SetHorizon bounds Run: events scheduled later than horizon are never executed.
func (e *Engine) SetHorizon(horizon float64) {
	if math.IsNaN(horizon) || horizon < 0 {
		panic(fmt.Sprintf("engine: invalid horizon %v", horizon))
	}
	e.horizon = horizon
}

// Steps returns the number of callbacks executed so far.
func (e *Engine) Steps() uint64 {
	return e.steps
}

// Stop ends Run after the current callback returns.
func (e *Engine) Stop() {
	e.stopped = true
}

// schedule registers fn to run delay time units from now.
func (e *Engine) schedule(delay float64, fn func()) *entry {
	if math.IsNaN(delay) || math.IsInf(delay, 0) || delay < 0 {
		panic(fmt.Sprintf("engine: invalid delay %v at t=%v", delay, e.now))
	}
	ent := &entry{at: e.now + delay, seq: e.seq, fn: fn}
	e.seq++
	e.queue.schedule(ent)
	return ent
}

// Run executes events in time order until Stop is called, the queue drains
// (ErrStalled) or the horizon is reached (ErrHorizon).
func (e *Engine) Run() error {
	for !e.stopped {
		next := e.queue.peek()
		if next == nil {
			logrus.Warnf("[t=%.1f] engine stalled after %d steps", e.now, e.steps)
			return ErrStalled
		}
		if next.at > e.horizon {
			logrus.Warnf("[t=%.1f] next event at %.1f is beyond horizon %.1f", e.now, next.at, e.horizon)
			e.now = e.horizon
			return ErrHorizon
		}
		e.queue.popNext()
		if next.cancelled {
			continue
		}
		e.now = next.at
		e.steps++
		next.fn()
	}
	logrus.Debugf("[t=%.1f] engine stopped after %d steps", e.now, e.steps)
	return nil
}
