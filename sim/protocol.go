package sim

// Protocol is the per-node state of one protocol slot. New nodes are built by
// cloning the prototype node's protocols, so Clone must return an independent
// value: copied scalar fields and freshly allocated containers, never a shared
// slice or map.
type Protocol interface {
	Clone() Protocol
}

// CycleProtocol is implemented by protocols driven once per cycle.
type CycleProtocol interface {
	Protocol
	NextCycle(ctx *Context, node *Node, pid int)
}

// EventProtocol is implemented by protocols that react to delivered events.
type EventProtocol interface {
	Protocol
	ProcessEvent(ctx *Context, node *Node, pid int, event any)
}

// Linkable exposes a node's neighbour list in an overlay.
type Linkable interface {
	Degree() int
	Neighbor(i int) *Node
	// AddNeighbor returns false if n was already a neighbour or could not be added.
	AddNeighbor(n *Node) bool
	Contains(n *Node) bool
	// Pack compacts internal storage once wiring is finished.
	Pack()
}

// Cleanable protocols are notified when their node dies, before the node drops
// its protocol references.
type Cleanable interface {
	OnKill()
}

// Capabilities is the resolved capability set of one protocol instance.
// Engines consult it instead of asserting interfaces inside the hot loop.
// A nil field means the protocol does not provide that capability.
type Capabilities struct {
	Cycle CycleProtocol
	Event EventProtocol
	Link  Linkable
	Clean Cleanable
}

// CapabilitiesOf resolves the capability set of p.
func CapabilitiesOf(p Protocol) Capabilities {
	var c Capabilities
	if cp, ok := p.(CycleProtocol); ok {
		c.Cycle = cp
	}
	if ep, ok := p.(EventProtocol); ok {
		c.Event = ep
	}
	if l, ok := p.(Linkable); ok {
		c.Link = l
	}
	if cl, ok := p.(Cleanable); ok {
		c.Clean = cl
	}
	return c
}
