package trace

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulationTrace_RecordObservation_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for observations
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelObservations})

	// WHEN an observation is recorded
	st.RecordObservation(ObservationRecord{
		Time:     3,
		Observer: "avg",
		Fields:   []Field{{Name: "mean", Value: 1.5}},
	})

	// THEN the trace contains one record with correct data
	if len(st.Observations) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(st.Observations))
	}
	if st.Observations[0].Observer != "avg" {
		t.Errorf("expected observer avg, got %s", st.Observations[0].Observer)
	}
	v, ok := st.Observations[0].Get("mean")
	if !ok || v != 1.5 {
		t.Errorf("expected mean 1.5, got %v (found=%t)", v, ok)
	}
}

func TestSimulationTrace_LevelNone_RecordsNothing(t *testing.T) {
	// GIVEN a disabled trace and a nil trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelNone})
	var nilTrace *SimulationTrace

	// WHEN observations are recorded
	st.RecordObservation(ObservationRecord{Observer: "x"})
	nilTrace.RecordObservation(ObservationRecord{Observer: "x"})

	// THEN nothing is kept and nothing panics
	assert.Empty(t, st.Observations)
	assert.False(t, nilTrace.Enabled())
}

func TestSimulationTrace_SetExperiment_StampsRecords(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelObservations})
	st.RecordObservation(ObservationRecord{Observer: "a"})
	st.SetExperiment(1)
	st.RecordObservation(ObservationRecord{Observer: "a"})

	require.Len(t, st.Observations, 2)
	assert.Equal(t, 0, st.Observations[0].Experiment)
	assert.Equal(t, 1, st.Observations[1].Experiment)
}

func TestSimulationTrace_WriteYAML_PreservesFieldOrder(t *testing.T) {
	// GIVEN a record whose fields are not alphabetical
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelObservations})
	st.RecordObservation(ObservationRecord{
		Time:     7,
		Observer: "deg",
		Fields:   []Field{{Name: "max", Value: 9}, {Name: "min", Value: 1}},
	})

	// WHEN serialized
	var buf bytes.Buffer
	require.NoError(t, st.WriteYAML(&buf))

	// THEN the fields keep emission order
	out := buf.String()
	assert.Contains(t, out, "observer: deg")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("max")), bytes.Index(buf.Bytes(), []byte("min")))
}

func TestIsValidTraceLevel(t *testing.T) {
	assert.True(t, IsValidTraceLevel(""))
	assert.True(t, IsValidTraceLevel("none"))
	assert.True(t, IsValidTraceLevel("observations"))
	assert.False(t, IsValidTraceLevel("decisions"))
}
