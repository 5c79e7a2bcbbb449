package sim

import (
	"fmt"
	"math/rand/v2"

	"github.com/nic-sched-sim/nic-sched-sim/sim/engine"
)

// Router decides which core receives a request taken from the dispatcher
// queue. Route may deliver synchronously or after waiting on the engine, but
// must call deliver exactly once. The dispatcher does not take the next
// request until deliver has run.
type Router interface {
	Route(d *Dispatcher, req *Request, deliver func(c *Core, reason string))
}

// RoutingError reports a request addressed to a core that does not exist, or
// carrying no destination at all. The run cannot continue, so routers panic
// with it.
type RoutingError struct {
	RequestID uint64
	Missing   bool // no destination core was set; Core is meaningless
	Core      int
	NumCores  int
}

func (e *RoutingError) Error() string {
	if e.Missing {
		return fmt.Sprintf("request %d has no destination core", e.RequestID)
	}
	return fmt.Sprintf("request %d addressed to core %d, only %d cores exist", e.RequestID, e.Core, e.NumCores)
}

// RandomRouter picks a core uniformly at random.
type RandomRouter struct {
	rng *rand.Rand
}

// Route implements Router for RandomRouter.
func (r *RandomRouter) Route(d *Dispatcher, req *Request, deliver func(*Core, string)) {
	if len(d.cores) == 0 {
		panic("RandomRouter.Route: no cores")
	}
	idx := r.rng.IntN(len(d.cores))
	deliver(d.cores[idx], fmt.Sprintf("random[%d]", idx))
}

// HashRouter sends request id mod number of cores.
type HashRouter struct{}

// Route implements Router for HashRouter.
func (r *HashRouter) Route(d *Dispatcher, req *Request, deliver func(*Core, string)) {
	if len(d.cores) == 0 {
		panic("HashRouter.Route: no cores")
	}
	idx := int(req.ID % uint64(len(d.cores)))
	deliver(d.cores[idx], fmt.Sprintf("hash[%d]", idx))
}

// IdlePoolRouter blocks until a core token is available in the idle pool.
// Cores return tokens themselves once their communication delay has elapsed.
type IdlePoolRouter struct{}

// Route implements Router for IdlePoolRouter.
func (r *IdlePoolRouter) Route(d *Dispatcher, req *Request, deliver func(*Core, string)) {
	if d.idle == nil {
		panic("IdlePoolRouter.Route: dispatcher has no idle pool")
	}
	d.idle.Get().Then(func(ev *engine.Event) {
		deliver(engine.Item[*Core](ev), "idle-pool")
	})
}

// FixedRouter sends each request to its DestinationCore.
type FixedRouter struct{}

// Route implements Router for FixedRouter.
func (r *FixedRouter) Route(d *Dispatcher, req *Request, deliver func(*Core, string)) {
	dest, err := req.DestinationCore.Get()
	if err != nil {
		panic(&RoutingError{RequestID: req.ID, Missing: true, NumCores: len(d.cores)})
	}
	if dest < 0 || dest >= len(d.cores) {
		panic(&RoutingError{RequestID: req.ID, Core: dest, NumCores: len(d.cores)})
	}
	deliver(d.cores[dest], "fixed")
}
