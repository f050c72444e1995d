package sim

import (
	"container/heap"

	"golang.org/x/exp/constraints"
)

// timedHeap is the binary min-heap shared by EventHeap and CycleHeap.
// Ordering: key → tag → insertion sequence. The sequence number makes ties
// deterministic, so two runs with the same seed pop entries in the same order.
type timedHeap[K constraints.Integer, V any] struct {
	entries []timedEntry[K, V]
	seq     uint64
}

type timedEntry[K constraints.Integer, V any] struct {
	key   K
	tag   int
	seq   uint64
	value V
}

// Len implements heap.Interface
func (h *timedHeap[K, V]) Len() int { return len(h.entries) }

// Less implements heap.Interface with deterministic ordering
func (h *timedHeap[K, V]) Less(i, j int) bool {
	ei, ej := &h.entries[i], &h.entries[j]
	if ei.key != ej.key {
		return ei.key < ej.key
	}
	if ei.tag != ej.tag {
		return ei.tag < ej.tag
	}
	return ei.seq < ej.seq
}

// Swap implements heap.Interface
func (h *timedHeap[K, V]) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
}

// Push implements heap.Interface
func (h *timedHeap[K, V]) Push(x any) {
	h.entries = append(h.entries, x.(timedEntry[K, V]))
}

// Pop implements heap.Interface
func (h *timedHeap[K, V]) Pop() any {
	old := h.entries
	n := len(old)
	item := old[n-1]
	old[n-1] = timedEntry[K, V]{} // drop payload references
	h.entries = old[0 : n-1]
	return item
}

func (h *timedHeap[K, V]) insert(key K, tag int, value V) {
	h.seq++
	heap.Push(h, timedEntry[K, V]{key: key, tag: tag, seq: h.seq, value: value})
}

func (h *timedHeap[K, V]) removeMin() (timedEntry[K, V], bool) {
	if len(h.entries) == 0 {
		return timedEntry[K, V]{}, false
	}
	return heap.Pop(h).(timedEntry[K, V]), true
}

func (h *timedHeap[K, V]) peek() (timedEntry[K, V], bool) {
	if len(h.entries) == 0 {
		return timedEntry[K, V]{}, false
	}
	return h.entries[0], true
}

// Event is a timestamped item of the event-driven engine. A nil Node marks a
// global item (control, observer or protocol cycle emulation); otherwise the
// payload is a message for protocol PID on Node.
type Event struct {
	Time    int64
	Payload any
	Node    *Node
	PID     int
}

// EventHeap orders events by simulated time; equal times pop in insertion order.
type EventHeap struct {
	h timedHeap[int64, Event]
}

// NewEventHeap creates an empty event heap.
func NewEventHeap() *EventHeap {
	return &EventHeap{}
}

// Insert adds an event at the given time.
func (eh *EventHeap) Insert(time int64, payload any, node *Node, pid int) {
	eh.h.insert(time, 0, Event{Time: time, Payload: payload, Node: node, PID: pid})
}

// InsertOrdered adds an event with an explicit tie-break: among events at the
// same time, lower order pops first; Insert uses order 0.
func (eh *EventHeap) InsertOrdered(time int64, order int, payload any, node *Node, pid int) {
	eh.h.insert(time, order, Event{Time: time, Payload: payload, Node: node, PID: pid})
}

// RemoveMin removes and returns the earliest event.
// ok is false when the heap is empty; the returned Event is then meaningless.
func (eh *EventHeap) RemoveMin() (ev Event, ok bool) {
	e, ok := eh.h.removeMin()
	return e.value, ok
}

// Peek returns the earliest event without removing it.
func (eh *EventHeap) Peek() (Event, bool) {
	e, ok := eh.h.peek()
	return e.value, ok
}

// Len returns the number of pending events.
func (eh *EventHeap) Len() int {
	return eh.h.Len()
}

// CycleEntry is a recurring cycle-level activity keyed by the cycle it is due
// in. Order is the configured position of the activity; entries due in the same
// cycle pop by ascending Order.
type CycleEntry struct {
	Cycle int
	Order int
	Item  any
}

// CycleHeap orders cycle-level activities by (cycle, order).
type CycleHeap struct {
	h timedHeap[int, CycleEntry]
}

// NewCycleHeap creates an empty cycle heap.
func NewCycleHeap() *CycleHeap {
	return &CycleHeap{}
}

// Insert schedules item for the given cycle with the given ordering tag.
func (ch *CycleHeap) Insert(cycle, order int, item any) {
	ch.h.insert(cycle, order, CycleEntry{Cycle: cycle, Order: order, Item: item})
}

// RemoveMin removes and returns the entry due first. ok is false when empty.
func (ch *CycleHeap) RemoveMin() (entry CycleEntry, ok bool) {
	e, ok := ch.h.removeMin()
	return e.value, ok
}

// Peek returns the entry due first without removing it.
func (ch *CycleHeap) Peek() (CycleEntry, bool) {
	e, ok := ch.h.peek()
	return e.value, ok
}

// Len returns the number of scheduled entries.
func (ch *CycleHeap) Len() int {
	return ch.h.Len()
}
