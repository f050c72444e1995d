package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalObservations int
	Experiments       int
	PerObserver       map[string]int               // observer name → number of records
	Last              map[string]ObservationRecord // observer name → most recent record
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		PerObserver: make(map[string]int),
		Last:        make(map[string]ObservationRecord),
	}
	if st == nil {
		return summary
	}

	summary.TotalObservations = len(st.Observations)
	experiments := make(map[int]bool)
	for _, o := range st.Observations {
		summary.PerObserver[o.Observer]++
		summary.Last[o.Observer] = o
		experiments[o.Experiment] = true
	}
	summary.Experiments = len(experiments)

	return summary
}
