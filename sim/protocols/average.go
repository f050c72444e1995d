package protocols

import (
	"github.com/overlaysim/overlaysim/sim"
)

// SingleValue is implemented by protocols that hold one numeric value,
// letting initializers and observers work on any of them.
type SingleValue interface {
	Value() float64
	SetValue(v float64)
}

// Average is a cycle-driven aggregation protocol: each cycle a node picks a
// random up neighbour from the Linkable in slot LinkPID and both adopt the
// mean of their values. The global sum is preserved, so all values converge
// to the initial average.
type Average struct {
	LinkPID int
	value   float64
}

// NewAverage creates the prototype instance.
func NewAverage(linkPID int) *Average {
	return &Average{LinkPID: linkPID}
}

func (a *Average) Clone() sim.Protocol {
	c := *a
	return &c
}

func (a *Average) LinkableSlot() int {
	return a.LinkPID
}

func (a *Average) Value() float64 {
	return a.value
}

func (a *Average) SetValue(v float64) {
	a.value = v
}

func (a *Average) NextCycle(ctx *sim.Context, node *sim.Node, pid int) {
	peer := randomUpNeighbor(ctx, linkableOf(node, a.LinkPID))
	if peer == nil {
		return
	}
	other, ok := peer.Protocol(pid).(*Average)
	if !ok {
		return
	}
	mean := (a.value + other.value) / 2
	a.value = mean
	other.value = mean
}
