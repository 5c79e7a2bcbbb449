package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/nic-sched-sim/nic-sched-sim/sim/engine"
	"github.com/nic-sched-sim/nic-sched-sim/sim/workload"
)

// LoadGenerator produces the run's requests. Each iteration pulls a service
// time and an inter-arrival delay, enqueues a request stamped with the current
// time and then waits out the delay.
type LoadGenerator struct {
	eng          *engine.Engine
	run          *SimulationRun
	policy       *Policy
	dispatcher   *Dispatcher
	serviceTime  workload.NumericSource
	arrivalDelay workload.NumericSource

	Generated int
}

func newLoadGenerator(eng *engine.Engine, run *SimulationRun, policy *Policy, d *Dispatcher, serviceTime, arrivalDelay workload.NumericSource) *LoadGenerator {
	return &LoadGenerator{
		eng:          eng,
		run:          run,
		policy:       policy,
		dispatcher:   d,
		serviceTime:  serviceTime,
		arrivalDelay: arrivalDelay,
	}
}

func (g *LoadGenerator) start() {
	g.step()
}

func (g *LoadGenerator) step() {
	if g.Generated >= g.run.Target {
		return
	}
	svc := g.serviceTime.Next()
	delay := g.arrivalDelay.Next()
	if math.IsNaN(svc) || svc < 0 {
		panic(fmt.Sprintf("LoadGenerator: service time source produced %v", svc))
	}

	req := NewRequest(g.run.NextRequestID(), g.eng.Now(), svc)
	g.policy.Prepare(req)
	g.run.RecordArrival(svc, delay)
	logrus.Debugf("[t=%.1f] generator: %s", g.eng.Now(), req)
	g.dispatcher.Enqueue(req)
	g.Generated++

	g.eng.Timeout(delay).Then(func(*engine.Event) { g.step() })
}
