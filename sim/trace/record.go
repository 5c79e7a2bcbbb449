// Package trace provides decision-trace recording for dispatch policy analysis.
// This package has no dependencies on sim/ — it stores pure data types.
package trace

// DispatchRecord captures a single routing decision of the dispatcher.
type DispatchRecord struct {
	RequestID uint64
	Clock     float64
	Core      int    // core the request was delivered to
	Reason    string // router explanation, e.g. "idle-pool" or "random[3]"
	QueueLen  int    // core queue depth before delivery
}

// PreemptionRecord captures a request being cut short on a core.
type PreemptionRecord struct {
	RequestID uint64
	Clock     float64
	Core      int
	Cause     string  // "higher priority arrival", "timer interrupt", "quantum expired"
	Elapsed   float64 // work executed in the interrupted slice
	Remaining float64 // runtime+service_time left after the slice
}
