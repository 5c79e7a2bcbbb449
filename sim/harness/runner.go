package harness

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nic-sched-sim/nic-sched-sim/sim"
	"github.com/nic-sched-sim/nic-sched-sim/sim/trace"
	"github.com/nic-sched-sim/nic-sched-sim/sim/workload"
)

// RunResult is everything one finished run produced.
type RunResult struct {
	Spec    RunSpec
	Metrics *sim.Metrics

	CompletionTimes       []float64
	CompletionsByPriority map[int][]float64
	ServiceTimes          []float64
	ArrivalDelays         []float64
	Samples               []sim.QueueSample
	Trace                 *trace.TraceSummary // nil unless tracing was on
}

// Execute runs one resolved spec on a fresh simulator.
func Execute(spec RunSpec) (*RunResult, error) {
	rng := sim.NewPartitionedRNG(spec.Sim.Seed)
	svc, err := workload.NewSource(spec.ServiceTime, rng.Source(sim.SubsystemServiceTime))
	if err != nil {
		return nil, fmt.Errorf("run %d: service_time: %w", spec.Index, err)
	}
	delay, err := workload.NewSource(spec.ArrivalDelay, rng.Source(sim.SubsystemArrivalDelay))
	if err != nil {
		return nil, fmt.Errorf("run %d: arrival_delay: %w", spec.Index, err)
	}

	s, err := sim.NewSimulator(spec.Sim, svc, delay)
	if err != nil {
		return nil, fmt.Errorf("run %d: %w", spec.Index, err)
	}
	if err := s.Run(); err != nil {
		return nil, fmt.Errorf("run %d: %w", spec.Index, err)
	}

	res := &RunResult{
		Spec:                  spec,
		Metrics:               s.Metrics(),
		CompletionTimes:       s.State.CompletionTimes,
		CompletionsByPriority: s.State.CompletionsByPriority,
		ServiceTimes:          s.State.ServiceTimes,
		ArrivalDelays:         s.State.ArrivalDelays,
		Samples:               s.Sampler.Samples,
	}
	if s.Trace != nil {
		res.Trace = trace.Summarize(s.Trace)
	}
	return res, nil
}

// Runner executes a sweep strictly sequentially and writes its outputs.
type Runner struct {
	OutDir string
	// OnResult, if set, is called after each run's files are written.
	OnResult func(*RunResult)
}

// Run executes every spec in order. A failing run aborts the sweep; the
// cross-run files then hold the runs completed so far.
func (r *Runner) Run(specs []RunSpec) ([]*RunResult, error) {
	out, err := NewOutput(r.OutDir)
	if err != nil {
		return nil, err
	}
	results := make([]*RunResult, 0, len(specs))
	var runErr error
	for _, spec := range specs {
		logrus.Infof("run %d: policy=%s cores=%d requests=%d seed=%d", spec.Index, spec.Sim.Policy, spec.Sim.NumCores, spec.Sim.NumRequests, spec.Sim.Seed)
		res, err := Execute(spec)
		if err != nil {
			runErr = err
			break
		}
		logrus.Infof("run %d: p99=%.2f p90=%.2f throughput=%.6f finish=%.1f", spec.Index, res.Metrics.P99Latency, res.Metrics.P90Latency, res.Metrics.Throughput, res.Metrics.FinishTime)
		if res.Trace != nil {
			logrus.Infof("run %d: %d dispatches over %d cores, %d preemptions of %d requests", spec.Index, res.Trace.TotalDispatches, res.Trace.UniqueCores, res.Trace.TotalPreemptions, res.Trace.PreemptedRequests)
		}
		if err := out.WriteRun(res); err != nil {
			runErr = err
			break
		}
		results = append(results, res)
		if r.OnResult != nil {
			r.OnResult(res)
		}
	}
	if err := out.WriteSummary(results); err != nil && runErr == nil {
		runErr = err
	}
	return results, runErr
}
