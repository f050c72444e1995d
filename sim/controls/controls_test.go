package controls

import (
	"errors"
	"testing"

	"github.com/overlaysim/overlaysim/sim"
	"github.com/overlaysim/overlaysim/sim/internal/testutil"
	"github.com/overlaysim/overlaysim/sim/protocols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func averages(nw *sim.Network, pid int) []float64 {
	out := make([]float64, nw.Size())
	for i := range out {
		out[i] = nw.Get(i).Protocol(pid).(*protocols.Average).Value()
	}
	return out
}

func TestWireTopology_KOut_WiresAndPacks(t *testing.T) {
	// GIVEN 20 unlinked nodes
	nw := testutil.LinkedNetwork(t, 20)
	ctx := testutil.NewContext(nw)
	w := NewWireKOut(0, 3, false)
	w.Pack = true

	// WHEN initialized
	require.NoError(t, w.Initialize(ctx))

	// THEN every node has out-degree 3
	for i, d := range testutil.Outdegrees(nw, 0) {
		assert.Equal(t, 3, d, "node %d", i)
	}
}

func TestWireTopology_UndirectedKOut_Symmetric(t *testing.T) {
	nw := testutil.LinkedNetwork(t, 10)
	require.NoError(t, NewWireKOut(0, 2, true).Initialize(testutil.NewContext(nw)))

	for i := 0; i < nw.Size(); i++ {
		l := nw.Get(i).Capabilities(0).Link
		for k := 0; k < l.Degree(); k++ {
			peer := l.Neighbor(k)
			assert.True(t, peer.Capabilities(0).Link.Contains(nw.Get(i)), "edge %d -> %d not mirrored", i, peer.Index())
		}
	}
}

func TestWireTopology_NonLinkableSlot_ReturnsError(t *testing.T) {
	nw := testutil.NewNetwork(t, 3, protocols.NewAverage(0))
	err := NewWireStar(0).Initialize(testutil.NewContext(nw))
	assert.True(t, errors.Is(err, sim.ErrMissingCapability))
}

func TestLinearValues_EvenSpread(t *testing.T) {
	nw := testutil.LinkedNetwork(t, 5, protocols.NewAverage(0))
	require.NoError(t, (&LinearValues{PID: 1, Min: 0, Max: 8}).Initialize(testutil.NewContext(nw)))
	assert.Equal(t, []float64{0, 2, 4, 6, 8}, averages(nw, 1))
}

func TestPeakValue_SingleNonZero(t *testing.T) {
	nw := testutil.LinkedNetwork(t, 10, protocols.NewAverage(0))
	require.NoError(t, (&PeakValue{PID: 1, Value: 100}).Initialize(testutil.NewContext(nw)))

	nonZero, sum := 0, 0.0
	for _, v := range averages(nw, 1) {
		if v != 0 {
			nonZero++
		}
		sum += v
	}
	assert.Equal(t, 1, nonZero)
	assert.Equal(t, 100.0, sum)
}

func TestUniformValues_InRange(t *testing.T) {
	nw := testutil.LinkedNetwork(t, 50, protocols.NewAverage(0))
	require.NoError(t, (&UniformValues{PID: 1, Min: 2, Max: 3}).Initialize(testutil.NewContext(nw)))
	for _, v := range averages(nw, 1) {
		assert.GreaterOrEqual(t, v, 2.0)
		assert.Less(t, v, 3.0)
	}
}

func TestValues_NonSingleValueSlot_ReturnsError(t *testing.T) {
	nw := testutil.LinkedNetwork(t, 2)
	err := (&LinearValues{PID: 0}).Initialize(testutil.NewContext(nw))
	assert.True(t, errors.Is(err, sim.ErrMissingCapability))
}

func TestRumorSeed_CycleMode_ReturnsError(t *testing.T) {
	nw := testutil.LinkedNetwork(t, 2, protocols.NewBroadcast(0, 1, 1))
	err := (&RumorSeed{PID: 1, Sources: 1}).Initialize(testutil.NewContext(nw))
	assert.ErrorIs(t, err, ErrNotEventDriven)
}

func TestDynamicNetwork_Grow_RespectsMaxSizeAndInitializesNewNodes(t *testing.T) {
	// GIVEN 10 nodes and churn adding 5 per activation up to 13
	nw := testutil.LinkedNetwork(t, 10)
	ctx := testutil.NewContext(nw)
	d := &DynamicNetwork{Add: 5, MaxSize: 13, Inits: []NodeInitializer{&RandomLinks{PID: 0, K: 2}}}

	// WHEN run twice
	d.Modify(ctx)
	d.Modify(ctx)

	// THEN only 3 nodes joined, each with 2 links to other nodes
	require.Equal(t, 13, nw.Size())
	for i := 10; i < 13; i++ {
		l := nw.Get(i).Capabilities(0).Link
		assert.Equal(t, 2, l.Degree(), "node %d", i)
		assert.False(t, l.Contains(nw.Get(i)))
	}
}

func TestDynamicNetwork_Grow_StopsAtCapacity(t *testing.T) {
	nw := sim.NewNetwork(sim.NewNode(-1, protocols.NewNeighborList(0)), 4)
	require.NoError(t, nw.Reset(3))

	(&DynamicNetwork{Add: 5}).Modify(testutil.NewContext(nw))

	assert.Equal(t, 4, nw.Size())
}

func TestDynamicNetwork_Shrink_KillsRemovedNodes(t *testing.T) {
	// GIVEN 10 nodes
	nw := testutil.LinkedNetwork(t, 10)
	before := nw.Nodes()

	// WHEN shrinking by 4 with a floor of 8
	(&DynamicNetwork{Add: -4, MinSize: 8}).Modify(testutil.NewContext(nw))

	// THEN 2 nodes left the network dead and indices stay dense
	assert.Equal(t, 8, nw.Size())
	dead := 0
	for _, n := range before {
		if !nw.Contains(n) {
			assert.Equal(t, sim.StateDead, n.FailState())
			assert.Equal(t, -1, n.Index())
			dead++
		}
	}
	assert.Equal(t, 2, dead)
	for i := 0; i < nw.Size(); i++ {
		assert.Equal(t, i, nw.Get(i).Index())
	}
}

func TestDynamicNetwork_Substitute_KeepsSize(t *testing.T) {
	nw := testutil.LinkedNetwork(t, 10)
	(&DynamicNetwork{Add: 3, Substitute: true}).Modify(testutil.NewContext(nw))
	assert.Equal(t, 10, nw.Size())
	assert.Equal(t, int64(12), nw.Get(9).ID())
}

func TestCrash_ProbabilityOne_FailsEveryUpNode(t *testing.T) {
	nw := testutil.LinkedNetwork(t, 5)
	c, err := NewCrash(1, 0, sim.StateDead)
	require.NoError(t, err)

	c.Modify(testutil.NewContext(nw))

	for i := 0; i < nw.Size(); i++ {
		assert.Equal(t, sim.StateDead, nw.Get(i).FailState())
	}
}

func TestCrash_Recover_BringsDownNodesBack(t *testing.T) {
	nw := testutil.LinkedNetwork(t, 3)
	for i := 0; i < 3; i++ {
		require.NoError(t, nw.Get(i).SetFailState(sim.StateDown))
	}
	c, err := NewCrash(0, 1, sim.StateDown)
	require.NoError(t, err)

	c.Modify(testutil.NewContext(nw))

	for i := 0; i < 3; i++ {
		assert.True(t, nw.Get(i).IsUp())
	}
}

func TestNewCrash_InvalidArguments(t *testing.T) {
	_, err := NewCrash(0.5, 0, sim.StateOK)
	assert.Error(t, err)
	_, err = NewCrash(1.5, 0, sim.StateDown)
	assert.Error(t, err)
}
