package sim

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/markphelps/optional"
)

// PolicyKind names a dispatcher/core scheduling policy.
type PolicyKind string

const (
	PolicyRandom   PolicyKind = "random"   // random core, run to completion
	PolicyHash     PolicyKind = "hash"     // request id mod cores, run to completion
	PolicyJBSQ     PolicyKind = "jbsq"     // join-bounded-shortest-queue
	PolicyCFCFS    PolicyKind = "cfcfs"    // centralized first-come-first-served
	PolicyCSRPT    PolicyKind = "csrpt"    // centralized shortest-remaining-processing-time
	PolicyCPRE     PolicyKind = "cpre"     // centralized FCFS with quantum self-preemption
	PolicyCPRESRPT PolicyKind = "cpresrpt" // centralized SRPT with quantum self-preemption
	PolicyPREJBSQ  PolicyKind = "prejbsq"  // JBSQ with quantum self-preemption
	PolicyDPRE     PolicyKind = "dpre"     // random core, one quantum then back to the dispatcher
	PolicyLNIC     PolicyKind = "lnic"     // fixed destination, priority preemption
	PolicyLinuxSP  PolicyKind = "linuxsp"  // fixed destination, periodic timer preemption
)

// validPolicies maps accepted policy names.
var validPolicies = map[PolicyKind]bool{
	PolicyRandom:   true,
	PolicyHash:     true,
	PolicyJBSQ:     true,
	PolicyCFCFS:    true,
	PolicyCSRPT:    true,
	PolicyCPRE:     true,
	PolicyCPRESRPT: true,
	PolicyPREJBSQ:  true,
	PolicyDPRE:     true,
	PolicyLNIC:     true,
	PolicyLinuxSP:  true,
}

// IsValidPolicy returns true if name is a recognized policy.
func IsValidPolicy(name string) bool {
	return validPolicies[PolicyKind(name)]
}

// AvailablePolicies returns the sorted list of policy names.
func AvailablePolicies() []string {
	names := make([]string, 0, len(validPolicies))
	for k := range validPolicies {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return names
}

// usesQuantum reports whether requests are sliced into runtime quanta.
func (k PolicyKind) usesQuantum() bool {
	switch k {
	case PolicyCPRE, PolicyCPRESRPT, PolicyPREJBSQ, PolicyDPRE:
		return true
	}
	return false
}

// usesBoundedPool reports whether every core enters the idle pool queue_bound times.
func (k PolicyKind) usesBoundedPool() bool {
	return k == PolicyJBSQ || k == PolicyPREJBSQ
}

// usesFixedDestination reports whether requests carry a destination core and priority.
func (k PolicyKind) usesFixedDestination() bool {
	return k == PolicyLNIC || k == PolicyLinuxSP
}

// Policy binds a router to a service discipline. Both are fixed when the run
// is constructed; the set of variants is closed.
type Policy struct {
	Kind       PolicyKind
	Router     Router
	Discipline Discipline
	PoolBound  int // idle-pool tokens seeded per core, 0 when there is no pool

	cfg     Config
	tagging *rand.Rand
}

// NewPolicy builds the policy named by cfg.Policy.
// Panics on an unknown name; Config.Validate rejects those first.
func NewPolicy(cfg Config, rng *PartitionedRNG) *Policy {
	if !IsValidPolicy(string(cfg.Policy)) {
		panic(fmt.Sprintf("unknown policy %q", cfg.Policy))
	}
	p := &Policy{Kind: cfg.Policy, cfg: cfg, tagging: rng.ForSubsystem(SubsystemTagging)}
	switch cfg.Policy {
	case PolicyRandom:
		p.Router = &RandomRouter{rng: rng.ForSubsystem(SubsystemRouter)}
		p.Discipline = &ToCompletion{notify: notifyNone}
	case PolicyHash:
		p.Router = &HashRouter{}
		p.Discipline = &ToCompletion{notify: notifyNone}
	case PolicyJBSQ:
		p.Router = &IdlePoolRouter{}
		p.Discipline = &ToCompletion{notify: notifyAsync}
	case PolicyCFCFS:
		p.Router = &IdlePoolRouter{}
		p.Discipline = &ToCompletion{notify: notifyImmediate}
	case PolicyCSRPT:
		p.Router = &IdlePoolRouter{}
		p.Discipline = &ToCompletion{notify: notifySync}
	case PolicyCPRE:
		p.Router = &IdlePoolRouter{}
		p.Discipline = &QuantumSlicing{keepServing: dispatcherEmpty, usePool: true}
	case PolicyCPRESRPT:
		p.Router = &IdlePoolRouter{}
		p.Discipline = &QuantumSlicing{keepServing: shortestRemaining, usePool: true}
	case PolicyPREJBSQ:
		p.Router = &IdlePoolRouter{}
		p.Discipline = &QuantumSlicing{keepServing: allQueuesEmpty, usePool: true}
	case PolicyDPRE:
		p.Router = &RandomRouter{rng: rng.ForSubsystem(SubsystemRouter)}
		p.Discipline = &QuantumSlicing{keepServing: never}
	case PolicyLNIC:
		p.Router = &FixedRouter{}
		p.Discipline = &PriorityPreemption{}
	case PolicyLinuxSP:
		p.Router = &FixedRouter{}
		p.Discipline = &TimerPreemption{period: cfg.TimerInterrupt}
	default:
		panic(fmt.Sprintf("unhandled policy %q", cfg.Policy))
	}
	if _, ok := p.Router.(*IdlePoolRouter); ok {
		p.PoolBound = 1
		if cfg.Policy.usesBoundedPool() {
			p.PoolBound = cfg.QueueBound
		}
	}
	return p
}

// Prepare tags a freshly generated request before it reaches the dispatcher:
// quantum policies carve the first runtime quantum, fixed-destination
// policies draw a destination core and a priority.
func (p *Policy) Prepare(req *Request) {
	if p.Kind.usesQuantum() {
		req.UpdateServiceTime(p.cfg.Quantum)
	}
	if p.Kind.usesFixedDestination() {
		req.DestinationCore = optional.NewInt(p.tagging.IntN(p.cfg.NumCores))
		req.Priority = optional.NewInt(p.tagging.IntN(p.cfg.NumPriorities))
	}
}

// dispatchLess orders the dispatcher queue, nil for FIFO.
func (p *Policy) dispatchLess() func(a, b *Request) bool {
	switch p.Kind {
	case PolicyCSRPT:
		return func(a, b *Request) bool { return a.ServiceTime < b.ServiceTime }
	case PolicyCPRESRPT:
		return func(a, b *Request) bool { return a.RemainingWork() < b.RemainingWork() }
	}
	return nil
}

// coreLess orders a core's local queue, nil for FIFO.
func (p *Policy) coreLess() func(a, b *Request) bool {
	if p.Kind.usesFixedDestination() {
		return func(a, b *Request) bool { return a.PriorityOr(NoPriority) < b.PriorityOr(NoPriority) }
	}
	return nil
}
