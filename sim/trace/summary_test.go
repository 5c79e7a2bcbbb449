package trace

import "testing"

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	if summary.TotalDispatches != 0 || summary.TotalPreemptions != 0 {
		t.Error("expected zero counts for nil trace")
	}
	if summary.CoreDistribution == nil || summary.PreemptionsByCause == nil {
		t.Error("expected initialized maps")
	}
}

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.TotalDispatches != 0 {
		t.Errorf("expected 0 dispatches, got %d", summary.TotalDispatches)
	}
	if summary.UniqueCores != 0 {
		t.Errorf("expected 0 unique cores, got %d", summary.UniqueCores)
	}
	if summary.MeanSliceElapsed != 0 {
		t.Error("expected 0 mean slice")
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with dispatches to two cores and preemptions of one request
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})
	st.RecordDispatch(DispatchRecord{RequestID: 1, Core: 0, QueueLen: 0})
	st.RecordDispatch(DispatchRecord{RequestID: 2, Core: 0, QueueLen: 2})
	st.RecordDispatch(DispatchRecord{RequestID: 3, Core: 1, QueueLen: 1})
	st.RecordPreemption(PreemptionRecord{RequestID: 1, Cause: "quantum expired", Elapsed: 10})
	st.RecordPreemption(PreemptionRecord{RequestID: 1, Cause: "quantum expired", Elapsed: 30})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts match
	if summary.TotalDispatches != 3 {
		t.Errorf("expected 3 dispatches, got %d", summary.TotalDispatches)
	}
	if summary.UniqueCores != 2 {
		t.Errorf("expected 2 unique cores, got %d", summary.UniqueCores)
	}
	if summary.CoreDistribution[0] != 2 || summary.CoreDistribution[1] != 1 {
		t.Errorf("unexpected core distribution %v", summary.CoreDistribution)
	}
	if summary.MaxDispatchQueue != 2 {
		t.Errorf("expected max queue 2, got %d", summary.MaxDispatchQueue)
	}
	if summary.TotalPreemptions != 2 || summary.PreemptedRequests != 1 {
		t.Errorf("expected 2 preemptions of 1 request, got %d of %d", summary.TotalPreemptions, summary.PreemptedRequests)
	}
	if summary.MeanSliceElapsed != 20 {
		t.Errorf("expected mean slice 20, got %v", summary.MeanSliceElapsed)
	}
	if summary.PreemptionsByCause["quantum expired"] != 2 {
		t.Errorf("expected 2 quantum expirations, got %d", summary.PreemptionsByCause["quantum expired"])
	}
}
