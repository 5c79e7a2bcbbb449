// Tracks run-wide performance metrics: tail latencies, throughput and core usage.

package sim

import (
	"fmt"
	"io"
	"sort"
)

// Metrics aggregates statistics about one finished run
// for final reporting.
type Metrics struct {
	CompletedRequests int     // Number of requests completed
	FinishTime        float64 // Virtual time of the last completion
	Throughput        float64 // Completed requests per time unit

	P99Latency    float64
	P90Latency    float64
	P50Latency    float64
	MeanLatency   float64
	StdDevLatency float64

	Preemptions     int
	CoreServed      []int     // completions per core
	CoreUtilization []float64 // busy time / finish time per core

	PriorityP99 map[int]float64 // tail latency per priority (priority policies)
}

// ComputeMetrics summarizes a finished run.
func ComputeMetrics(run *SimulationRun, cores []*Core) *Metrics {
	m := &Metrics{
		CompletedRequests: run.Completed,
		FinishTime:        run.FinishTime,
		P99Latency:        CalculatePercentile(run.CompletionTimes, 99),
		P90Latency:        CalculatePercentile(run.CompletionTimes, 90),
		P50Latency:        CalculatePercentile(run.CompletionTimes, 50),
		MeanLatency:       CalculateMean(run.CompletionTimes),
		StdDevLatency:     CalculateStdDev(run.CompletionTimes),
		CoreServed:        make([]int, len(cores)),
		CoreUtilization:   make([]float64, len(cores)),
		PriorityP99:       make(map[int]float64, len(run.CompletionsByPriority)),
	}
	if run.FinishTime > 0 {
		m.Throughput = float64(run.Target) / run.FinishTime
	}
	for i, c := range cores {
		m.Preemptions += c.Preemptions
		m.CoreServed[i] = c.Served
		if run.FinishTime > 0 {
			m.CoreUtilization[i] = c.BusyTime / run.FinishTime
		}
	}
	for p, lat := range run.CompletionsByPriority {
		m.PriorityP99[p] = CalculatePercentile(lat, 99)
	}
	return m
}

// Print writes the metrics in a human-readable block.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Completed Requests   : %d\n", m.CompletedRequests)
	fmt.Fprintf(w, "Finish Time          : %.2f\n", m.FinishTime)
	fmt.Fprintf(w, "Throughput           : %.6f req/unit\n", m.Throughput)
	if m.CompletedRequests > 0 {
		fmt.Fprintf(w, "Latency p99 / p90    : %.2f / %.2f\n", m.P99Latency, m.P90Latency)
		fmt.Fprintf(w, "Latency p50          : %.2f\n", m.P50Latency)
		fmt.Fprintf(w, "Latency mean (sd)    : %.2f (%.2f)\n", m.MeanLatency, m.StdDevLatency)
	}
	fmt.Fprintf(w, "Preemptions          : %d\n", m.Preemptions)
	for i, u := range m.CoreUtilization {
		fmt.Fprintf(w, "Core %-3d             : %d served, %.1f%% busy\n", i, m.CoreServed[i], 100*u)
	}
	prios := make([]int, 0, len(m.PriorityP99))
	for p := range m.PriorityP99 {
		prios = append(prios, p)
	}
	sort.Ints(prios)
	for _, p := range prios {
		fmt.Fprintf(w, "Priority %-3d p99     : %.2f\n", p, m.PriorityP99[p])
	}
}
