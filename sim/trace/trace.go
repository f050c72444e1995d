package trace

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// TraceLevel controls the verbosity of observation tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelObservations captures every observer record.
	TraceLevelObservations TraceLevel = "observations"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:         true,
	TraceLevelObservations: true,
	"":                     true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects observation records during a run.
// A nil *SimulationTrace is valid and records nothing.
type SimulationTrace struct {
	Config       TraceConfig
	Observations []ObservationRecord
	experiment   int
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:       config,
		Observations: make([]ObservationRecord, 0),
	}
}

// Enabled reports whether records are kept.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level == TraceLevelObservations
}

// SetExperiment stamps subsequent records with the experiment number.
func (st *SimulationTrace) SetExperiment(n int) {
	if st != nil {
		st.experiment = n
	}
}

// RecordObservation appends an observation record.
func (st *SimulationTrace) RecordObservation(record ObservationRecord) {
	if !st.Enabled() {
		return
	}
	record.Experiment = st.experiment
	st.Observations = append(st.Observations, record)
}

// WriteYAML serializes the recorded observations.
func (st *SimulationTrace) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	var obs []ObservationRecord
	if st != nil {
		obs = st.Observations
	}
	if err := enc.Encode(map[string][]ObservationRecord{"observations": obs}); err != nil {
		return fmt.Errorf("encoding trace: %w", err)
	}
	return enc.Close()
}
