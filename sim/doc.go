// Package sim simulates how a multi-core NIC schedules requests across its
// cores under a family of dispatch policies.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - request.go: a unit of work and its single work-accounting rule
//   - core.go: the per-core serve loop, context switches and interruptible service
//   - dispatcher.go: the central queue and the idle-core pool
//   - simulator.go: wiring of one run and the event loop
//
// # Architecture
//
// A Policy is the pair of a Router (where a request goes: random, hashed,
// fixed or the next idle core) and a Discipline (how a core serves it: to
// completion, quantum slicing, priority preemption or timer preemption).
// policy.go builds both from a PolicyKind; discipline.go and routing.go hold
// the implementations.
//
// Sub-packages:
//   - sim/engine/: event heap, stores, interruptible processes
//   - sim/workload/: service time and arrival delay distributions
//   - sim/sweep/: parameter sequences consumed one value per run
//   - sim/trace/: dispatch and preemption records
//   - sim/harness/: YAML configuration, run loop and CSV output
package sim
