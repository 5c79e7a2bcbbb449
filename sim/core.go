package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nic-sched-sim/nic-sched-sim/sim/engine"
)

// NoPriority is the sentinel current priority of a core that has not yet
// served a prioritized request. It compares greater than any real priority.
const NoPriority = 0xffffffff

// Core is a worker that pulls requests from its local queue and services them
// according to the policy's discipline.
//
// Lifecycle of one request on a core:
//
//	IDLE -> [context switch] -> SERVING -> COMPLETED | PREEMPTED -> [comm delay] -> IDLE
//
// The core never runs more than one request at a time; every transition is a
// continuation registered on an engine event.
type Core struct {
	ID              int
	CurrentPriority int

	eng        *engine.Engine
	run        *SimulationRun
	policy     *Policy
	dispatcher *Dispatcher
	inbound    *engine.Store[*Request]
	preempt    *engine.Event // next preemption signal, replaced each time it fires
	cfg        Config

	Served      int // requests completed on this core
	Preemptions int
	BusyTime    float64
}

func newCore(id int, eng *engine.Engine, run *SimulationRun, policy *Policy, cfg Config) *Core {
	c := &Core{
		ID:              id,
		CurrentPriority: NoPriority,
		eng:             eng,
		run:             run,
		policy:          policy,
		cfg:             cfg,
	}
	name := fmt.Sprintf("core%d", id)
	if less := policy.coreLess(); less != nil {
		c.inbound = engine.NewPriorityStore(eng, name, less)
	} else {
		c.inbound = engine.NewStore[*Request](eng, name)
	}
	c.preempt = eng.NewEvent(name + ".preempt")
	return c
}

// QueueLen returns the number of requests waiting in the core's local queue.
func (c *Core) QueueLen() int {
	return c.inbound.Len()
}

func (c *Core) start() {
	c.policy.Discipline.Start(c)
	c.next()
}

// next waits for the following request, unless the run is over.
func (c *Core) next() {
	if c.run.Done() {
		return
	}
	c.inbound.Get().Then(func(ev *engine.Event) {
		c.receive(engine.Item[*Request](ev))
	})
}

func (c *Core) receive(req *Request) {
	prio, err := req.Priority.Get()
	if err != nil || prio == c.CurrentPriority {
		c.policy.Discipline.Service(c, req)
		return
	}
	logrus.Debugf("[t=%.1f] core %d: context switch %d -> %d for request %d", c.eng.Now(), c.ID, c.CurrentPriority, prio, req.ID)
	c.eng.Timeout(c.cfg.ContextSwitch).Then(func(*engine.Event) {
		c.CurrentPriority = prio
		c.policy.Discipline.Service(c, req)
	})
}

// complete records the request as finished on this core.
func (c *Core) complete(req *Request) {
	logrus.Debugf("[t=%.1f] core %d: completed request %d (latency %.1f)", c.eng.Now(), c.ID, req.ID, c.eng.Now()-req.StartTime)
	c.Served++
	c.run.RecordCompletion(req)
}

// announceIdle returns one token for this core to the dispatcher's idle pool.
func (c *Core) announceIdle() {
	c.dispatcher.idle.Put(c)
}

// raisePreempt fires the current preemption signal and arms a fresh one.
// A signal nobody is waiting on is simply dropped.
func (c *Core) raisePreempt() {
	ev := c.preempt
	c.preempt = c.eng.NewEvent(ev.Name())
	ev.Succeed(nil)
}

// higherPriorityWaiting reports whether the local queue head outranks the
// priority the core is currently running at.
func (c *Core) higherPriorityWaiting() bool {
	head, ok := c.inbound.Peek()
	return ok && head.PriorityOr(NoPriority) < c.CurrentPriority
}

// serveFor runs req for d time units and then calls fn.
func (c *Core) serveFor(req *Request, d float64, fn func()) {
	c.eng.Timeout(d).Then(func(*engine.Event) {
		req.Consume(d)
		c.BusyTime += d
		fn()
	})
}

// serveInterruptible runs req until its remaining service time elapses or the
// preemption signal fires. fn receives the executed work and whether the
// request finished. An interrupted request that keeps the core is not a
// preemption; the discipline calls yield when it actually lets go.
func (c *Core) serveInterruptible(req *Request, cause string, fn func(elapsed float64, finished bool)) {
	p := c.eng.Start(req.ServiceTime, fmt.Sprintf("core%d.service", c.ID))
	c.eng.AnyOf(p.Done(), c.preempt).Then(func(*engine.Event) {
		finished := p.Done().Triggered()
		if !finished {
			p.Interrupt(cause)
		}
		elapsed := p.Elapsed()
		if finished {
			elapsed = req.ServiceTime
		}
		req.Consume(elapsed)
		req.ServiceTime -= elapsed
		if req.ServiceTime < 0 {
			req.ServiceTime = 0
		}
		c.BusyTime += elapsed
		fn(elapsed, finished)
	})
}

// yield counts req as preempted on this core after elapsed units of service.
func (c *Core) yield(req *Request, cause string, elapsed float64) {
	c.Preemptions++
	c.dispatcher.recordPreemption(c, req, cause, elapsed)
}

func (c *Core) String() string {
	return fmt.Sprintf("Core(%d, prio=%d, queue=%d)", c.ID, c.CurrentPriority, c.inbound.Len())
}
