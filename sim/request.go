// Defines the Request struct that models an individual unit of work in the simulation.
// Tracks arrival time, remaining work, the current quantum and optional routing metadata.

package sim

import (
	"fmt"
	"math"

	"github.com/markphelps/optional"
)

// Request models a single request's lifecycle in the simulation.
// Each request has:
// - a start time (arrival at the dispatcher)
// - remaining service time, reduced as the request is serviced
// - a runtime quantum for preemptive policies
// - an optional priority and destination core for fixed-destination policies
type Request struct {
	ID uint64 // Unique within a run, assigned in arrival order

	StartTime   float64 // Virtual time the request was generated
	ServiceTime float64 // Remaining processing need
	Runtime     float64 // Quantum to execute before the next preemption check (preemptive policies)

	Priority        optional.Int // Smaller value = higher priority
	DestinationCore optional.Int // Core index for fixed-destination policies

	OriginalServiceTime float64 // Service time at construction, kept for audit
	Serviced            float64 // Sum of all work the request was serviced for so far
	completed           bool
}

// NewRequest builds a request with the given id, arrival time and service need.
// A negative or NaN service time panics.
func NewRequest(id uint64, startTime, serviceTime float64) *Request {
	if math.IsNaN(serviceTime) || serviceTime < 0 {
		panic(fmt.Sprintf("NewRequest: invalid service time %v", serviceTime))
	}
	return &Request{
		ID:                  id,
		StartTime:           startTime,
		ServiceTime:         serviceTime,
		OriginalServiceTime: serviceTime,
	}
}

// UpdateServiceTime carves the next quantum out of the remaining service time.
// If more than quantum remains, Runtime becomes quantum; otherwise Runtime takes
// the rest and ServiceTime drops to zero. Runtime+ServiceTime after the call
// equals ServiceTime before it.
func (req *Request) UpdateServiceTime(quantum float64) {
	if quantum <= 0 || math.IsNaN(quantum) {
		panic(fmt.Sprintf("UpdateServiceTime: quantum must be positive, got %v", quantum))
	}
	if req.ServiceTime > quantum {
		req.Runtime = quantum
		req.ServiceTime -= quantum
	} else {
		req.Runtime = req.ServiceTime
		req.ServiceTime = 0
	}
}

// RemainingWork returns runtime+service_time, the SRPT ordering key.
func (req *Request) RemainingWork() float64 {
	return req.Runtime + req.ServiceTime
}

// Consume records elapsed units of service. It panics if the request would be
// serviced for a negative amount or for more than its original need.
func (req *Request) Consume(elapsed float64) {
	if elapsed < 0 || math.IsNaN(elapsed) {
		panic(fmt.Sprintf("Consume: request %d serviced for %v", req.ID, elapsed))
	}
	req.Serviced += elapsed
	if req.Serviced > req.OriginalServiceTime+workEpsilon(req.OriginalServiceTime) {
		panic(fmt.Sprintf("Consume: request %d serviced %v of %v", req.ID, req.Serviced, req.OriginalServiceTime))
	}
}

// PriorityOr returns the request priority, or def when none is set.
func (req *Request) PriorityOr(def int) int {
	return req.Priority.OrElse(def)
}

// workEpsilon bounds float drift from summing quanta.
func workEpsilon(total float64) float64 {
	return 1e-9 * math.Max(1, total)
}

// This method returns a human-readable string representation of a Request.
func (req *Request) String() string {
	s := fmt.Sprintf("Request: (ID: %d, ServiceTime: %.1f, Runtime: %.1f, StartTime: %.1f", req.ID, req.ServiceTime, req.Runtime, req.StartTime)
	req.Priority.If(func(p int) { s += fmt.Sprintf(", Priority: %d", p) })
	req.DestinationCore.If(func(c int) { s += fmt.Sprintf(", Core: %d", c) })
	return s + ")"
}
