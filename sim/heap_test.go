package sim

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventHeap_RemoveMin_Empty_ReturnsFalse(t *testing.T) {
	// GIVEN an empty heap
	eh := NewEventHeap()

	// WHEN RemoveMin and Peek are called
	_, ok := eh.RemoveMin()
	_, peekOK := eh.Peek()

	// THEN both report emptiness
	assert.False(t, ok)
	assert.False(t, peekOK)
	assert.Equal(t, 0, eh.Len())
}

func TestEventHeap_EqualTimes_PopInInsertionOrder(t *testing.T) {
	// GIVEN events inserted at times [5, 1, 3, 1]
	eh := NewEventHeap()
	for i, tm := range []int64{5, 1, 3, 1} {
		eh.Insert(tm, i, nil, 0)
	}

	// WHEN drained
	var times []int64
	var payloads []int
	for eh.Len() > 0 {
		ev, ok := eh.RemoveMin()
		require.True(t, ok)
		times = append(times, ev.Time)
		payloads = append(payloads, ev.Payload.(int))
	}

	// THEN times are sorted and the two events at time 1 keep insertion order
	assert.Equal(t, []int64{1, 1, 3, 5}, times)
	assert.Equal(t, []int{1, 3, 2, 0}, payloads)
}

func TestEventHeap_RandomPermutation_DrainsSorted(t *testing.T) {
	// GIVEN 1000 events with random times inserted in random order
	rng := rand.New(rand.NewSource(7))
	eh := NewEventHeap()
	want := make([]int64, 1000)
	for i := range want {
		want[i] = rng.Int63n(100)
		eh.Insert(want[i], i, nil, 0)
	}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })

	// WHEN drained
	got := make([]int64, 0, len(want))
	lastSeq := map[int64]int{}
	for {
		ev, ok := eh.RemoveMin()
		if !ok {
			break
		}
		got = append(got, ev.Time)
		// equal times must come out in insertion order
		if prev, seen := lastSeq[ev.Time]; seen && ev.Payload.(int) < prev {
			t.Fatalf("time %d: payload %d popped after %d", ev.Time, ev.Payload.(int), prev)
		}
		lastSeq[ev.Time] = ev.Payload.(int)
	}

	// THEN the multiset of times comes out non-decreasing
	assert.Equal(t, want, got)
}

func TestEventHeap_InsertOrdered_LowerOrderFirst(t *testing.T) {
	// GIVEN a plain event and two ordered events at the same time
	eh := NewEventHeap()
	eh.Insert(10, "message", nil, 0)
	eh.InsertOrdered(10, -1, "second-global", nil, -1)
	eh.InsertOrdered(10, -2, "first-global", nil, -1)

	// WHEN drained
	var got []string
	for eh.Len() > 0 {
		ev, _ := eh.RemoveMin()
		got = append(got, ev.Payload.(string))
	}

	// THEN negative orders precede the plain event, ascending
	assert.Equal(t, []string{"first-global", "second-global", "message"}, got)
}

func TestEventHeap_Peek_DoesNotRemove(t *testing.T) {
	eh := NewEventHeap()
	eh.Insert(4, "a", nil, 0)
	eh.Insert(2, "b", nil, 0)

	ev, ok := eh.Peek()

	require.True(t, ok)
	assert.Equal(t, int64(2), ev.Time)
	assert.Equal(t, 2, eh.Len())
}

func TestCycleHeap_OrdersByCycleThenOrder(t *testing.T) {
	// GIVEN entries for cycles 3 and 1 with mixed order tags
	ch := NewCycleHeap()
	ch.Insert(3, 0, "c3-o0")
	ch.Insert(1, 2, "c1-o2")
	ch.Insert(1, 0, "c1-o0")
	ch.Insert(3, 1, "c3-o1")

	// WHEN drained
	var got []string
	for ch.Len() > 0 {
		e, ok := ch.RemoveMin()
		require.True(t, ok)
		got = append(got, e.Item.(string))
	}

	// THEN cycle dominates, order breaks ties
	assert.Equal(t, []string{"c1-o0", "c1-o2", "c3-o0", "c3-o1"}, got)
	_, ok := ch.Peek()
	assert.False(t, ok)
}
