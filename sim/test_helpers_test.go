package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nic-sched-sim/nic-sched-sim/sim/engine"
	"github.com/nic-sched-sim/nic-sched-sim/sim/workload"
)

// seriesSource replays fixed values and then repeats the last one.
type seriesSource struct {
	values []float64
	next   int
}

func series(values ...float64) *seriesSource {
	return &seriesSource{values: values}
}

func (s *seriesSource) Next() float64 {
	v := s.values[s.next]
	if s.next < len(s.values)-1 {
		s.next++
	}
	return v
}

var _ workload.NumericSource = (*seriesSource)(nil)

// newTestSimulator builds a simulator fed by fixed service times and delays.
func newTestSimulator(t *testing.T, cfg Config, svc, delays []float64) *Simulator {
	t.Helper()
	s, err := NewSimulator(cfg, series(svc...), series(delays...))
	require.NoError(t, err)
	return s
}

// scriptedArrival is a hand-built request injected at a fixed time.
type scriptedArrival struct {
	at  float64
	req *Request
}

// runScripted starts every component except the generator, injects the given
// requests and runs the engine. Used where the test controls priorities and
// destinations.
func runScripted(t *testing.T, s *Simulator, arrivals []scriptedArrival) {
	t.Helper()
	for _, c := range s.Cores {
		c.start()
	}
	s.Dispatcher.start()
	for _, a := range arrivals {
		a := a
		s.Engine.Timeout(a.at).Then(func(*engine.Event) {
			a.req.StartTime = s.Engine.Now()
			s.Dispatcher.Enqueue(a.req)
		})
	}
	require.NoError(t, s.Engine.Run())
}

// baseConfig returns a valid single-core config for policy.
func baseConfig(policy PolicyKind, requests int) Config {
	return Config{
		Policy:         policy,
		NumCores:       1,
		NumRequests:    requests,
		QueueBound:     1,
		Quantum:        50,
		TimerInterrupt: 10,
		NumPriorities:  1,
		Seed:           42,
	}
}
