package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/nic-sched-sim/nic-sched-sim/sim/engine"
	"github.com/nic-sched-sim/nic-sched-sim/sim/trace"
)

// Dispatcher receives generated requests and forwards each one to a core
// chosen by the policy's Router. It processes one request at a time: while the
// router waits for an idle core, later requests stay in the dispatcher queue.
type Dispatcher struct {
	eng     *engine.Engine
	run     *SimulationRun
	policy  *Policy
	inbound *engine.Store[*Request]
	idle    *engine.Store[*Core] // nil unless the policy routes through an idle pool
	cores   []*Core
	trace   *trace.SimulationTrace // nil when tracing is off

	Dispatched int
}

func newDispatcher(eng *engine.Engine, run *SimulationRun, policy *Policy, cores []*Core, st *trace.SimulationTrace) *Dispatcher {
	d := &Dispatcher{
		eng:    eng,
		run:    run,
		policy: policy,
		cores:  cores,
		trace:  st,
	}
	if less := policy.dispatchLess(); less != nil {
		d.inbound = engine.NewPriorityStore(eng, "dispatcher", less)
	} else {
		d.inbound = engine.NewStore[*Request](eng, "dispatcher")
	}
	if policy.PoolBound > 0 {
		d.idle = engine.NewStore[*Core](eng, "idle")
		// Seed round by round so the first tokens spread across cores.
		for i := 0; i < policy.PoolBound; i++ {
			for _, c := range cores {
				d.idle.Put(c)
			}
		}
	}
	for _, c := range cores {
		c.dispatcher = d
	}
	return d
}

// QueueLen returns the number of requests waiting at the dispatcher.
func (d *Dispatcher) QueueLen() int {
	return d.inbound.Len()
}

// IdleTokens returns the number of idle-pool entries currently available.
func (d *Dispatcher) IdleTokens() int {
	if d.idle == nil {
		return 0
	}
	return d.idle.Len()
}

// Enqueue hands a request to the dispatcher.
func (d *Dispatcher) Enqueue(req *Request) {
	d.inbound.Put(req)
}

func (d *Dispatcher) start() {
	d.next()
}

func (d *Dispatcher) next() {
	if d.run.Done() {
		return
	}
	d.inbound.Get().Then(func(ev *engine.Event) {
		req := engine.Item[*Request](ev)
		d.policy.Router.Route(d, req, func(c *Core, reason string) {
			d.deliver(c, req, reason)
			d.next()
		})
	})
}

func (d *Dispatcher) deliver(c *Core, req *Request, reason string) {
	logrus.Debugf("[t=%.1f] dispatcher: request %d -> core %d (%s)", d.eng.Now(), req.ID, c.ID, reason)
	d.Dispatched++
	if d.trace != nil {
		d.trace.RecordDispatch(trace.DispatchRecord{
			RequestID: req.ID,
			Clock:     d.eng.Now(),
			Core:      c.ID,
			Reason:    reason,
			QueueLen:  c.inbound.Len(),
		})
	}
	c.inbound.Put(req)
	d.policy.Discipline.OnArrival(c, req)
}

func (d *Dispatcher) recordPreemption(c *Core, req *Request, cause string, elapsed float64) {
	logrus.Debugf("[t=%.1f] core %d: preempted request %d after %.1f (%s), %.1f left", d.eng.Now(), c.ID, req.ID, elapsed, cause, req.RemainingWork())
	if d.trace != nil {
		d.trace.RecordPreemption(trace.PreemptionRecord{
			RequestID: req.ID,
			Clock:     d.eng.Now(),
			Core:      c.ID,
			Cause:     cause,
			Elapsed:   elapsed,
			Remaining: req.RemainingWork(),
		})
	}
}
