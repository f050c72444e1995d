// Package protocols holds plug-in protocols for overlaysim scenarios.
//
// They exist so that scenarios can be run end to end; none of them is part of
// the kernel contract. Each protocol is registered in sim/config under a type
// name (see Register).
package protocols

import (
	"fmt"

	"github.com/overlaysim/overlaysim/sim"
)

// NeighborList is a passive Linkable: a bounded set of neighbour references
// other protocols read and topology initializers write.
type NeighborList struct {
	neighbors []*sim.Node
	capacity  int // 0: unbounded
}

// NewNeighborList creates an empty list holding at most capacity neighbours.
func NewNeighborList(capacity int) *NeighborList {
	return &NeighborList{capacity: capacity}
}

// Clone returns an empty list with the same capacity.
func (l *NeighborList) Clone() sim.Protocol {
	return NewNeighborList(l.capacity)
}

func (l *NeighborList) Degree() int {
	return len(l.neighbors)
}

// Neighbor returns the i-th neighbour. Panics if i is out of range.
func (l *NeighborList) Neighbor(i int) *sim.Node {
	if i < 0 || i >= len(l.neighbors) {
		panic(fmt.Sprintf("NeighborList.Neighbor: index %d out of range [0,%d)", i, len(l.neighbors)))
	}
	return l.neighbors[i]
}

func (l *NeighborList) AddNeighbor(n *sim.Node) bool {
	if n == nil || l.Contains(n) {
		return false
	}
	if l.capacity > 0 && len(l.neighbors) >= l.capacity {
		return false
	}
	l.neighbors = append(l.neighbors, n)
	return true
}

func (l *NeighborList) Contains(n *sim.Node) bool {
	for _, x := range l.neighbors {
		if x == n {
			return true
		}
	}
	return false
}

// Pack drops references to dead nodes and trims the backing array.
func (l *NeighborList) Pack() {
	kept := make([]*sim.Node, 0, len(l.neighbors))
	for _, n := range l.neighbors {
		if n.FailState() != sim.StateDead {
			kept = append(kept, n)
		}
	}
	l.neighbors = kept
}

// OnKill releases the neighbour references of a dead node.
func (l *NeighborList) OnKill() {
	l.neighbors = nil
}

// LinkUser is implemented by protocols that read the neighbour list of
// another slot. Scenario wiring checks that the slot is Linkable.
type LinkUser interface {
	LinkableSlot() int
}

// randomUpNeighbor picks a uniformly random neighbour that is up, or nil.
func randomUpNeighbor(ctx *sim.Context, l sim.Linkable) *sim.Node {
	d := l.Degree()
	if d == 0 {
		return nil
	}
	start := ctx.Rand().Intn(d)
	for k := 0; k < d; k++ {
		if n := l.Neighbor((start + k) % d); n.IsUp() {
			return n
		}
	}
	return nil
}

// linkableOf returns the Linkable in slot pid of node.
// Panics if the slot is not Linkable: this is a wiring mistake caught by
// config validation in normal runs.
func linkableOf(node *sim.Node, pid int) sim.Linkable {
	l := node.Capabilities(pid).Link
	if l == nil {
		panic(fmt.Sprintf("%s: pid %d is not Linkable", node, pid))
	}
	return l
}
