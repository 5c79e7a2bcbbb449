package sim

import (
	"fmt"
	"math"
)

// Config groups the parameters of one simulation run.
// Durations share one unit (nanoseconds by convention).
type Config struct {
	Policy         PolicyKind
	NumCores       int     // processing units (must be > 0)
	NumRequests    int     // completions that end the run (must be > 0)
	SamplePeriod   float64 // queue depth sampling period, 0 disables sampling
	QueueBound     int     // idle-pool tokens per core for jbsq and prejbsq
	CommDelay      float64 // delay before a core re-announces itself as idle
	ContextSwitch  float64 // cost of switching a core to another priority
	TimerInterrupt float64 // linuxsp timer period
	Quantum        float64 // runtime quantum for cpre, cpresrpt, prejbsq and dpre
	NumPriorities  int     // priorities drawn for lnic and linuxsp (default 1)
	Seed           int64
	Horizon        float64 // 0 = unbounded
	Trace          bool    // record dispatch and preemption decisions
}

// Validate checks the parameters the selected policy depends on.
func (c Config) Validate() error {
	if !IsValidPolicy(string(c.Policy)) {
		return fmt.Errorf("unknown policy %q; valid options: %v", c.Policy, AvailablePolicies())
	}
	if c.NumCores <= 0 {
		return fmt.Errorf("num_cores must be > 0, got %d", c.NumCores)
	}
	if c.NumRequests <= 0 {
		return fmt.Errorf("num_requests must be > 0, got %d", c.NumRequests)
	}
	for _, d := range []struct {
		name string
		v    float64
	}{
		{"sample_period", c.SamplePeriod},
		{"comm_delay", c.CommDelay},
		{"context_switch", c.ContextSwitch},
		{"max_time", c.Horizon},
	} {
		if err := validateDuration(d.name, d.v); err != nil {
			return err
		}
	}
	if c.Policy.usesBoundedPool() && c.QueueBound <= 0 {
		return fmt.Errorf("policy %s requires queue_bound > 0, got %d", c.Policy, c.QueueBound)
	}
	if c.Policy.usesQuantum() && !(c.Quantum > 0) {
		return fmt.Errorf("policy %s requires preemp > 0, got %v", c.Policy, c.Quantum)
	}
	if c.Policy == PolicyLinuxSP && !(c.TimerInterrupt > 0) {
		return fmt.Errorf("policy %s requires timer_interrupt > 0, got %v", c.Policy, c.TimerInterrupt)
	}
	if c.Policy.usesFixedDestination() && c.NumPriorities <= 0 {
		return fmt.Errorf("policy %s requires num_priorities > 0, got %d", c.Policy, c.NumPriorities)
	}
	return nil
}

func validateDuration(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%s must be a finite value >= 0, got %v", name, v)
	}
	return nil
}
