package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDispatches    int
	TotalPreemptions   int
	PreemptedRequests  int            // distinct requests preempted at least once
	MeanSliceElapsed   float64        // mean work executed before a preemption
	MaxDispatchQueue   int            // deepest core queue observed at delivery
	UniqueCores        int
	CoreDistribution   map[int]int    // core ID → count of requests delivered
	PreemptionsByCause map[string]int // cause → count
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		CoreDistribution:   make(map[int]int),
		PreemptionsByCause: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDispatches = len(st.Dispatches)
	for _, d := range st.Dispatches {
		summary.CoreDistribution[d.Core]++
		if d.QueueLen > summary.MaxDispatchQueue {
			summary.MaxDispatchQueue = d.QueueLen
		}
	}
	summary.UniqueCores = len(summary.CoreDistribution)

	summary.TotalPreemptions = len(st.Preemptions)
	if len(st.Preemptions) > 0 {
		seen := make(map[uint64]bool)
		total := 0.0
		for _, p := range st.Preemptions {
			summary.PreemptionsByCause[p.Cause]++
			seen[p.RequestID] = true
			total += p.Elapsed
		}
		summary.PreemptedRequests = len(seen)
		summary.MeanSliceElapsed = total / float64(len(st.Preemptions))
	}

	return summary
}
