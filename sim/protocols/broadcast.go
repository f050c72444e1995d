package protocols

import (
	"github.com/overlaysim/overlaysim/sim"
)

// Rumor is the message flooded by Broadcast.
type Rumor struct {
	Origin int64 // node ID of the source
	Hops   int
}

// Broadcast is an event-driven epidemic: the first time a node receives a
// Rumor it records the time and forwards it to every neighbour of the
// Linkable in slot LinkPID after a random latency in [MinDelay, MaxDelay].
// Copies sent to failed neighbours are lost by the engine.
type Broadcast struct {
	LinkPID  int
	MinDelay int64
	MaxDelay int64

	informed   bool
	informedAt int64
	hops       int
	received   int
}

// NewBroadcast creates the prototype instance. A maxDelay below minDelay is
// raised to minDelay.
func NewBroadcast(linkPID int, minDelay, maxDelay int64) *Broadcast {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Broadcast{LinkPID: linkPID, MinDelay: minDelay, MaxDelay: maxDelay}
}

func (b *Broadcast) Clone() sim.Protocol {
	return NewBroadcast(b.LinkPID, b.MinDelay, b.MaxDelay)
}

func (b *Broadcast) LinkableSlot() int {
	return b.LinkPID
}

// Informed reports whether the node has received the rumor.
func (b *Broadcast) Informed() bool {
	return b.informed
}

// InformedAt returns the time of first reception.
func (b *Broadcast) InformedAt() int64 {
	return b.informedAt
}

// Hops returns the hop count of the first received copy.
func (b *Broadcast) Hops() int {
	return b.hops
}

// Received counts every delivered copy, duplicates included.
func (b *Broadcast) Received() int {
	return b.received
}

func (b *Broadcast) ProcessEvent(ctx *sim.Context, node *sim.Node, pid int, event any) {
	r, ok := event.(Rumor)
	if !ok {
		return
	}
	b.received++
	if b.informed {
		return
	}
	b.informed = true
	b.informedAt = ctx.Time
	b.hops = r.Hops
	l := linkableOf(node, b.LinkPID)
	fwd := Rumor{Origin: r.Origin, Hops: r.Hops + 1}
	for k := 0; k < l.Degree(); k++ {
		ctx.Schedule(b.delay(ctx), fwd, l.Neighbor(k), pid)
	}
}

func (b *Broadcast) delay(ctx *sim.Context) int64 {
	if b.MaxDelay == b.MinDelay {
		return b.MinDelay
	}
	return b.MinDelay + ctx.Rand().Int63n(b.MaxDelay-b.MinDelay+1)
}
