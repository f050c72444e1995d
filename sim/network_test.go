package sim

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertDense checks that every live node's index matches its position.
func assertDense(t *testing.T, nw *Network) {
	t.Helper()
	for i := 0; i < nw.Size(); i++ {
		if got := nw.Get(i).Index(); got != i {
			t.Fatalf("node at position %d reports index %d", i, got)
		}
	}
}

func TestNetwork_AddRemoveSwap_KeepsIndicesDense(t *testing.T) {
	// GIVEN a network of 10 nodes
	nw := newTestNetwork(10, passive{})
	assertDense(t, nw)

	// WHEN nodes are swapped, removed and added
	nw.Swap(2, 9)
	removed := nw.Remove()
	require.NoError(t, nw.Add(nw.NewNode()))
	nw.Swap(0, 5)

	// THEN indices stay dense and the removed node is detached
	assertDense(t, nw)
	assert.Equal(t, 10, nw.Size())
	assert.Equal(t, -1, removed.Index())
	assert.False(t, nw.Contains(removed))
}

func TestNetwork_Add_Duplicate_Panics(t *testing.T) {
	nw := newTestNetwork(2, passive{})
	assert.Panics(t, func() { _ = nw.Add(nw.Get(0)) })
	assert.Panics(t, func() { _ = nw.Add(nil) })
}

func TestNetwork_Add_AtCapacity_ReturnsError(t *testing.T) {
	// GIVEN a network at its capacity
	nw := NewNetwork(NewNode(-1, passive{}), 3)
	require.NoError(t, nw.Reset(3))

	// WHEN one more node is added
	err := nw.Add(nw.NewNode())

	// THEN the add fails and the size is unchanged
	assert.True(t, errors.Is(err, ErrCapacityExceeded))
	assert.Equal(t, 3, nw.Size())
}

func TestNetwork_Remove_Empty_Panics(t *testing.T) {
	nw := newTestNetwork(0, passive{})
	assert.Panics(t, func() { nw.Remove() })
}

func TestNetwork_Get_OutOfRange_Panics(t *testing.T) {
	nw := newTestNetwork(1, passive{})
	assert.Panics(t, func() { nw.Get(1) })
}

func TestNetwork_Shuffle_PermutesAndKeepsIndices(t *testing.T) {
	// GIVEN 50 nodes
	nw := newTestNetwork(50, passive{})
	before := nw.Nodes()

	// WHEN shuffled
	nw.Shuffle(rand.New(rand.NewSource(1)))

	// THEN the same nodes are present, order changed, indices dense
	assertDense(t, nw)
	assert.ElementsMatch(t, before, nw.Nodes())
	assert.NotEqual(t, before, nw.Nodes())
}

func TestNetwork_Sort_ByID(t *testing.T) {
	nw := newTestNetwork(20, passive{})
	nw.Shuffle(rand.New(rand.NewSource(3)))

	nw.Sort(func(a, b *Node) int {
		switch {
		case a.ID() < b.ID():
			return -1
		case a.ID() > b.ID():
			return 1
		}
		return 0
	})

	assertDense(t, nw)
	for i := 0; i < nw.Size(); i++ {
		assert.Equal(t, int64(i), nw.Get(i).ID())
	}
}

func TestNetwork_Reset_FreshNodesWithNewIDs(t *testing.T) {
	// GIVEN a populated network
	nw := newTestNetwork(5, passive{})
	old := nw.Get(0)

	// WHEN reset
	require.NoError(t, nw.Reset(4))

	// THEN the old nodes are detached and the new ones have unseen IDs
	assert.Equal(t, 4, nw.Size())
	assert.Equal(t, -1, old.Index())
	assert.Equal(t, int64(5), nw.Get(0).ID())
	assertDense(t, nw)
}

func TestNetwork_Reset_BeyondCapacity_ReturnsError(t *testing.T) {
	nw := NewNetwork(NewNode(-1, passive{}), 2)
	err := nw.Reset(3)
	assert.True(t, errors.Is(err, ErrCapacityExceeded))
}
