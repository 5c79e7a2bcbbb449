// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nic-sched-sim/nic-sched-sim/sim/engine"
	"github.com/nic-sched-sim/nic-sched-sim/sim/trace"
	"github.com/nic-sched-sim/nic-sched-sim/sim/workload"
)

// Simulator is one fully wired run: engine, run state, dispatcher, cores,
// generator and the optional queue sampler. A Simulator is single use.
type Simulator struct {
	Config     Config
	Engine     *engine.Engine
	State      *SimulationRun
	RNG        *PartitionedRNG
	Policy     *Policy
	Dispatcher *Dispatcher
	Cores      []*Core
	Generator  *LoadGenerator
	Sampler    *QueueSampler
	Trace      *trace.SimulationTrace // nil unless Config.Trace
}

// NewSimulator validates cfg and builds a run fed by the two sources.
func NewSimulator(cfg Config, serviceTime, arrivalDelay workload.NumericSource) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	if serviceTime == nil || arrivalDelay == nil {
		return nil, fmt.Errorf("service time and arrival delay sources are required")
	}

	eng := engine.New()
	if cfg.Horizon > 0 {
		eng.SetHorizon(cfg.Horizon)
	}
	rng := NewPartitionedRNG(cfg.Seed)
	run := NewSimulationRun(eng, cfg.NumRequests)
	policy := NewPolicy(cfg, rng)

	var st *trace.SimulationTrace
	if cfg.Trace {
		st = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	}

	cores := make([]*Core, cfg.NumCores)
	for i := range cores {
		cores[i] = newCore(i, eng, run, policy, cfg)
	}
	d := newDispatcher(eng, run, policy, cores, st)

	return &Simulator{
		Config:     cfg,
		Engine:     eng,
		State:      run,
		RNG:        rng,
		Policy:     policy,
		Dispatcher: d,
		Cores:      cores,
		Generator:  newLoadGenerator(eng, run, policy, d, serviceTime, arrivalDelay),
		Sampler:    newQueueSampler(eng, run, d, cores, cfg.SamplePeriod),
		Trace:      st,
	}, nil
}

// Run executes the simulation until the target number of requests completed.
// It returns an error wrapping engine.ErrStalled or engine.ErrHorizon when the
// run ended without reaching the target.
func (s *Simulator) Run() error {
	logrus.Debugf("starting %s run: %d cores, %d requests", s.Policy.Kind, len(s.Cores), s.State.Target)
	for _, c := range s.Cores {
		c.start()
	}
	s.Dispatcher.start()
	s.Generator.start()
	s.Sampler.start()

	if err := s.Engine.Run(); err != nil {
		return fmt.Errorf("%s run ended at t=%.1f with %d of %d requests completed: %w",
			s.Policy.Kind, s.Engine.Now(), s.State.Completed, s.State.Target, err)
	}
	logrus.Debugf("[t=%.1f] %s run finished after %d engine steps", s.Engine.Now(), s.Policy.Kind, s.Engine.Steps())
	return nil
}

// Metrics summarizes the run. Call after Run.
func (s *Simulator) Metrics() *Metrics {
	return ComputeMetrics(s.State, s.Cores)
}
