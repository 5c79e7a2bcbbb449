package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nic-sched-sim/nic-sched-sim/sim/engine"
)

// SimulationRun is the state of one trial shared by every component.
// Completion bookkeeping goes exclusively through RecordCompletion, which
// performs the termination check in the same step as the increment.
type SimulationRun struct {
	eng *engine.Engine

	Target     int
	Completed  int
	FinishTime float64

	CompletionTimes       []float64         // now - start_time per completed request, completion order
	CompletedIDs          []uint64          // request ids in completion order
	CompletionsByPriority map[int][]float64 // same latencies keyed by request priority (priority policies)
	ServiceTimes          []float64         // audit: service times drawn by the generator
	ArrivalDelays         []float64         // audit: inter-arrival delays drawn by the generator

	done   bool
	nextID uint64
}

// NewSimulationRun creates the run state for target completions.
func NewSimulationRun(eng *engine.Engine, target int) *SimulationRun {
	if target <= 0 {
		panic(fmt.Sprintf("NewSimulationRun: target must be positive, got %d", target))
	}
	return &SimulationRun{
		eng:                   eng,
		Target:                target,
		CompletionTimes:       make([]float64, 0, target),
		CompletedIDs:          make([]uint64, 0, target),
		CompletionsByPriority: make(map[int][]float64),
		ServiceTimes:          make([]float64, 0, target),
		ArrivalDelays:         make([]float64, 0, target),
	}
}

// Done reports whether the run reached its target.
func (r *SimulationRun) Done() bool {
	return r.done
}

// Now returns the current virtual time.
func (r *SimulationRun) Now() float64 {
	return r.eng.Now()
}

// NextRequestID returns a monotonically increasing request id.
func (r *SimulationRun) NextRequestID() uint64 {
	id := r.nextID
	r.nextID++
	return id
}

// RecordArrival keeps the generator's draws for audit output.
func (r *SimulationRun) RecordArrival(serviceTime, delay float64) {
	r.ServiceTimes = append(r.ServiceTimes, serviceTime)
	r.ArrivalDelays = append(r.ArrivalDelays, delay)
}

// RecordCompletion records the latency of req, increments the completed
// counter and checks for termination. Completing a request twice, or past
// the target, panics.
func (r *SimulationRun) RecordCompletion(req *Request) {
	if req.completed {
		panic(fmt.Sprintf("RecordCompletion: request %d completed twice", req.ID))
	}
	if r.done {
		panic(fmt.Sprintf("RecordCompletion: request %d completed after the run finished", req.ID))
	}
	req.completed = true
	latency := r.eng.Now() - req.StartTime
	r.CompletionTimes = append(r.CompletionTimes, latency)
	r.CompletedIDs = append(r.CompletedIDs, req.ID)
	req.Priority.If(func(p int) {
		r.CompletionsByPriority[p] = append(r.CompletionsByPriority[p], latency)
	})
	r.Completed++
	r.checkDone()
}

func (r *SimulationRun) checkDone() {
	if r.Completed == r.Target {
		r.done = true
		r.FinishTime = r.eng.Now()
		logrus.Debugf("[t=%.1f] run complete: %d requests", r.FinishTime, r.Completed)
		r.eng.Stop()
	}
}
