package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCycleSim(t *testing.T, nw *Network, seed int64, cfg CycleConfig, comps Components) *CycleSimulator {
	t.Helper()
	ctx := NewContext(nw, NewSimulationKey(seed).NewRand())
	s, err := NewCycleSimulator(ctx, cfg, comps, nil)
	require.NoError(t, err)
	return s
}

func TestCycleSimulator_Run_ControlsThenNodesInOrder(t *testing.T) {
	// GIVEN two nodes with two probe protocols and one control per cycle
	log := &callLog{}
	nw := newTestNetwork(2, &probe{tag: "a", log: log}, &probe{tag: "b", log: log})
	comps := Components{Dynamics: []ScheduledDynamics{{Name: "c", Schedule: EveryStep(), Dynamics: recordingControl("c", log)}}}
	s := newCycleSim(t, nw, 1, CycleConfig{Cycles: 2}, comps)

	// WHEN run
	res, err := s.Run()

	// THEN each cycle runs the control, then every protocol of every node in index order
	require.NoError(t, err)
	assert.Equal(t, []string{
		"c@0", "a@0:0", "b@0:0", "a@0:1", "b@0:1",
		"c@1", "a@1:0", "b@1:0", "a@1:1", "b@1:1",
	}, log.entries)
	assert.Equal(t, int64(2), res.Time)
	assert.False(t, res.Stopped)
	assert.Equal(t, RunDone, s.State())
}

func TestCycleSimulator_ProtocolOrder_Respected(t *testing.T) {
	log := &callLog{}
	nw := newTestNetwork(1, &probe{tag: "a", log: log}, &probe{tag: "b", log: log})
	s := newCycleSim(t, nw, 1, CycleConfig{Cycles: 1, ProtocolOrder: []int{1, 0}}, Components{})

	_, err := s.Run()

	require.NoError(t, err)
	assert.Equal(t, []string{"b@0:0", "a@0:0"}, log.entries)
}

func TestCycleSimulator_ObserverStop_SkipsNodePassAndRunsFinal(t *testing.T) {
	// GIVEN an observer that requests a stop at cycle 2, a second observer
	// scheduled in the same cycle and a final-only observer
	log := &callLog{}
	nw := newTestNetwork(1, &probe{tag: "a", log: log})
	var finalPhase Phase
	comps := Components{Observers: []ScheduledObserver{
		{Name: "stopper", Schedule: EveryStep(), Observer: ObserverFunc(func(ctx *Context) bool {
			log.add("stopper@%d", ctx.Time)
			return ctx.Time == 2
		})},
		{Name: "after", Schedule: EveryStep(), Observer: ObserverFunc(func(ctx *Context) bool {
			log.add("after@%d", ctx.Time)
			return false
		})},
		{Name: "final", Schedule: FinalOnly(), Observer: ObserverFunc(func(ctx *Context) bool {
			finalPhase = ctx.Phase
			log.add("final@%d", ctx.Time)
			return false
		})},
	}}
	s := newCycleSim(t, nw, 1, CycleConfig{Cycles: 10}, comps)

	// WHEN run
	res, err := s.Run()

	// THEN cycle 2 runs all its controls but no protocol, then the final observer runs
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.Equal(t, int64(2), res.Time)
	assert.Equal(t, []string{
		"stopper@0", "after@0", "a@0:0",
		"stopper@1", "after@1", "a@1:0",
		"stopper@2", "after@2",
		"final@2",
	}, log.entries)
	assert.Equal(t, PhaseFinal, finalPhase)
}

func TestCycleSimulator_IdleAndPassiveSlots_Skipped(t *testing.T) {
	// GIVEN a passive slot, an idle probe and an active probe
	log := &callLog{}
	nw := newTestNetwork(1, passive{}, &probe{tag: "idle", log: log}, &probe{tag: "a", log: log})
	comps := Components{Protocols: []ProtocolConfig{{}, {Name: "idle", Idle: true}, {}}}
	s := newCycleSim(t, nw, 1, CycleConfig{Cycles: 2}, comps)

	// WHEN run
	_, err := s.Run()

	// THEN only the active probe was called
	require.NoError(t, err)
	assert.Equal(t, []int{2}, s.ActiveProtocols())
	assert.Equal(t, []string{"a@0:0", "a@1:0"}, log.entries)
}

func TestCycleSimulator_ProtocolSchedule_LimitsCycles(t *testing.T) {
	log := &callLog{}
	nw := newTestNetwork(1, &probe{tag: "a", log: log})
	every2, err := NewScheduler(0, Forever, 2, false)
	require.NoError(t, err)
	s := newCycleSim(t, nw, 1, CycleConfig{Cycles: 5}, Components{Protocols: []ProtocolConfig{{Schedule: every2}}})

	_, err = s.Run()

	require.NoError(t, err)
	assert.Equal(t, []string{"a@0:0", "a@2:0", "a@4:0"}, log.entries)
}

func TestCycleSimulator_DownNodes_Skipped(t *testing.T) {
	log := &callLog{}
	nw := newTestNetwork(3, &probe{tag: "a", log: log})
	require.NoError(t, nw.Get(1).SetFailState(StateDown))
	s := newCycleSim(t, nw, 1, CycleConfig{Cycles: 1}, Components{})

	_, err := s.Run()

	require.NoError(t, err)
	assert.Equal(t, []string{"a@0:0", "a@0:2"}, log.entries)
}

func TestCycleSimulator_Shuffle_DeterministicPerSeed(t *testing.T) {
	run := func(seed int64) []string {
		log := &callLog{}
		nw := newTestNetwork(20, &probe{tag: "a", log: log})
		s := newCycleSim(t, nw, seed, CycleConfig{Cycles: 3, Shuffle: true}, Components{})
		_, err := s.Run()
		require.NoError(t, err)
		return log.entries
	}

	// THEN the same seed gives the same visitation, a different seed another
	assert.Equal(t, run(42), run(42))
	assert.NotEqual(t, run(42), run(43))
}

func TestCycleSimulator_InitializerError_Aborts(t *testing.T) {
	boom := errors.New("boom")
	log := &callLog{}
	nw := newTestNetwork(1, &probe{tag: "a", log: log})
	comps := Components{Initializers: []NamedInitializer{{Name: "bad", Initializer: InitializerFunc(func(*Context) error { return boom })}}}
	s := newCycleSim(t, nw, 1, CycleConfig{Cycles: 3}, comps)

	_, err := s.Run()

	assert.True(t, errors.Is(err, boom))
	assert.Empty(t, log.entries)
}

func TestCycleSimulator_Run_Twice_Panics(t *testing.T) {
	s := newCycleSim(t, newTestNetwork(1, passive{}), 1, CycleConfig{Cycles: 1}, Components{})
	_, err := s.Run()
	require.NoError(t, err)
	assert.Panics(t, func() { _, _ = s.Run() })
}

func TestNewCycleSimulator_InvalidConfig_ReturnsError(t *testing.T) {
	nw := newTestNetwork(1, passive{})
	ctx := NewContext(nw, NewSimulationKey(1).NewRand())
	tests := []struct {
		name  string
		cfg   CycleConfig
		comps Components
	}{
		{"negative cycles", CycleConfig{Cycles: -1}, Components{}},
		{"pid out of range", CycleConfig{Cycles: 1, ProtocolOrder: []int{3}}, Components{}},
		{"duplicate pid", CycleConfig{Cycles: 1, ProtocolOrder: []int{0, 0}}, Components{}},
		{"nil dynamics", CycleConfig{Cycles: 1}, Components{Dynamics: []ScheduledDynamics{{Name: "x", Schedule: EveryStep()}}}},
		{"degenerate schedule", CycleConfig{Cycles: 1}, Components{Observers: []ScheduledObserver{{Name: "x", Observer: ObserverFunc(func(*Context) bool { return false })}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCycleSimulator(ctx, tt.cfg, tt.comps, nil)
			assert.Error(t, err)
		})
	}
}

func TestContext_Schedule_CycleDriven_Panics(t *testing.T) {
	nw := newTestNetwork(1, passive{})
	ctx := NewContext(nw, NewSimulationKey(1).NewRand())
	assert.False(t, ctx.CanSchedule())
	assert.Panics(t, func() { ctx.Schedule(1, "x", nw.Get(0), 0) })
}
