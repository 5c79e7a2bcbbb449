package sim

import (
	"github.com/nic-sched-sim/nic-sched-sim/sim/engine"
)

// QueueSample is one observation of every queue depth.
type QueueSample struct {
	Time       float64
	Dispatcher int
	Cores      []int
}

// QueueSampler records queue depths every period until the run is done.
type QueueSampler struct {
	eng        *engine.Engine
	run        *SimulationRun
	dispatcher *Dispatcher
	cores      []*Core
	period     float64

	Samples []QueueSample
}

func newQueueSampler(eng *engine.Engine, run *SimulationRun, d *Dispatcher, cores []*Core, period float64) *QueueSampler {
	return &QueueSampler{eng: eng, run: run, dispatcher: d, cores: cores, period: period}
}

func (s *QueueSampler) start() {
	if s.period <= 0 {
		return
	}
	s.sample()
}

func (s *QueueSampler) sample() {
	if s.run.Done() {
		return
	}
	depths := make([]int, len(s.cores))
	for i, c := range s.cores {
		depths[i] = c.QueueLen()
	}
	s.Samples = append(s.Samples, QueueSample{
		Time:       s.eng.Now(),
		Dispatcher: s.dispatcher.QueueLen(),
		Cores:      depths,
	})
	s.eng.Timeout(s.period).Then(func(*engine.Event) { s.sample() })
}
