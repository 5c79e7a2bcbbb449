package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/nic-sched-sim/nic-sched-sim/sim/engine"
)

// Discipline is the core side of a policy: how a core services the request it
// just took from its queue, and what happens when that request is cut short.
type Discipline interface {
	// Start runs once per core before it takes its first request.
	Start(c *Core)
	// OnArrival runs after the dispatcher put req into c's local queue.
	OnArrival(c *Core, req *Request)
	// Service runs req on c. It must eventually hand control back through c.next().
	Service(c *Core, req *Request)
	// OnPreempt requeues req after its service was interrupted.
	OnPreempt(c *Core, req *Request)
}

// notifyMode is when a run-to-completion core returns its idle-pool token.
type notifyMode int

const (
	notifyNone      notifyMode = iota // no idle pool
	notifyImmediate                   // token returned at the completion instant
	notifyAsync                       // token returned after comm_delay while the core already waits for work
	notifySync                        // core waits comm_delay, returns the token, then waits for work
)

// ToCompletion services every request in one uninterrupted burst.
type ToCompletion struct {
	notify notifyMode
}

func (d *ToCompletion) Start(c *Core)                   {}
func (d *ToCompletion) OnArrival(c *Core, req *Request) {}

// Service implements Discipline for ToCompletion.
func (d *ToCompletion) Service(c *Core, req *Request) {
	c.serveFor(req, req.ServiceTime, func() {
		req.ServiceTime = 0
		switch d.notify {
		case notifyNone:
			c.complete(req)
			c.next()
		case notifyImmediate:
			c.announceIdle()
			c.complete(req)
			c.next()
		case notifyAsync:
			c.eng.Timeout(c.cfg.CommDelay).Then(func(*engine.Event) {
				c.announceIdle()
				c.complete(req)
			})
			c.next()
		case notifySync:
			c.eng.Timeout(c.cfg.CommDelay).Then(func(*engine.Event) {
				c.announceIdle()
				c.complete(req)
				c.next()
			})
		}
	})
}

// OnPreempt implements Discipline; run-to-completion cores are never interrupted.
func (d *ToCompletion) OnPreempt(c *Core, req *Request) {
	panic("ToCompletion.OnPreempt: request " + req.String() + " cannot be preempted")
}

// continueRule decides, after a quantum, whether the core keeps the request.
type continueRule func(c *Core, req *Request) bool

func dispatcherEmpty(c *Core, req *Request) bool {
	return c.dispatcher.QueueLen() == 0
}

func allQueuesEmpty(c *Core, req *Request) bool {
	return c.dispatcher.QueueLen() == 0 && c.QueueLen() == 0
}

func shortestRemaining(c *Core, req *Request) bool {
	head, ok := c.dispatcher.inbound.Peek()
	return !ok || req.RemainingWork() < head.RemainingWork()
}

func never(c *Core, req *Request) bool {
	return false
}

// QuantumSlicing services a request one runtime quantum at a time and
// re-checks keepServing after each quantum. When the core lets go of an
// unfinished request, it goes back to the dispatcher queue.
type QuantumSlicing struct {
	keepServing continueRule
	usePool     bool // wait comm_delay and return the idle-pool token before letting go
}

func (d *QuantumSlicing) Start(c *Core)                   {}
func (d *QuantumSlicing) OnArrival(c *Core, req *Request) {}

// Service implements Discipline for QuantumSlicing.
// At least one quantum is always served.
func (d *QuantumSlicing) Service(c *Core, req *Request) {
	ran := req.Runtime
	c.serveFor(req, ran, func() {
		req.UpdateServiceTime(c.cfg.Quantum)
		if req.Runtime > 0 && d.keepServing(c, req) {
			logrus.Debugf("[t=%.1f] core %d: keeps request %d for another quantum", c.eng.Now(), c.ID, req.ID)
			d.Service(c, req)
			return
		}
		d.release(c, req, ran)
	})
}

func (d *QuantumSlicing) release(c *Core, req *Request, ran float64) {
	finish := func() {
		if req.Runtime > 0 {
			c.yield(req, "quantum expired", ran)
			d.OnPreempt(c, req)
		} else {
			c.complete(req)
		}
		c.next()
	}
	if !d.usePool {
		finish()
		return
	}
	c.eng.Timeout(c.cfg.CommDelay).Then(func(*engine.Event) {
		c.announceIdle()
		finish()
	})
}

// OnPreempt implements Discipline: unfinished work rejoins the dispatcher queue.
func (d *QuantumSlicing) OnPreempt(c *Core, req *Request) {
	c.dispatcher.Enqueue(req)
}

// PriorityPreemption serves the local priority queue head and is interrupted
// when a strictly higher-priority request lands in the same queue.
type PriorityPreemption struct{}

func (d *PriorityPreemption) Start(c *Core) {}

// OnArrival implements Discipline: signal the core if the new head outranks it.
func (d *PriorityPreemption) OnArrival(c *Core, req *Request) {
	if c.higherPriorityWaiting() {
		c.raisePreempt()
	}
}

// Service implements Discipline for PriorityPreemption.
func (d *PriorityPreemption) Service(c *Core, req *Request) {
	const cause = "higher priority arrival"
	c.serveInterruptible(req, cause, func(elapsed float64, finished bool) {
		if finished {
			c.complete(req)
		} else {
			c.yield(req, cause, elapsed)
			d.OnPreempt(c, req)
		}
		c.next()
	})
}

// OnPreempt implements Discipline: the request goes back ahead of equal-priority work.
func (d *PriorityPreemption) OnPreempt(c *Core, req *Request) {
	c.inbound.PutFront(req)
}

// TimerPreemption slices service with a periodic per-core timer. On each
// tick the core yields only if a higher-priority request is waiting.
type TimerPreemption struct {
	period float64
}

// Start implements Discipline: arm the core's timer.
func (d *TimerPreemption) Start(c *Core) {
	d.arm(c)
}

func (d *TimerPreemption) arm(c *Core) {
	c.eng.Timeout(d.period).Then(func(*engine.Event) {
		c.raisePreempt()
		if !c.run.Done() {
			d.arm(c)
		}
	})
}

func (d *TimerPreemption) OnArrival(c *Core, req *Request) {}

// Service implements Discipline for TimerPreemption.
func (d *TimerPreemption) Service(c *Core, req *Request) {
	const cause = "timer interrupt"
	c.serveInterruptible(req, cause, func(elapsed float64, finished bool) {
		switch {
		case finished:
			c.complete(req)
			c.next()
		case c.higherPriorityWaiting():
			c.yield(req, cause, elapsed)
			d.OnPreempt(c, req)
			c.next()
		default:
			d.Service(c, req)
		}
	})
}

// OnPreempt implements Discipline: the request goes back ahead of equal-priority work.
func (d *TimerPreemption) OnPreempt(c *Core, req *Request) {
	c.inbound.PutFront(req)
}
