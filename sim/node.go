package sim

import (
	"fmt"
)

// FailState describes the availability of a node.
type FailState int

const (
	// StateOK is the initial state: the node runs its protocols.
	StateOK FailState = iota
	// StateDown is a temporary failure; the node may come back OK.
	StateDown
	// StateDead is terminal. The node's protocols are released.
	StateDead
)

func (s FailState) String() string {
	switch s {
	case StateOK:
		return "OK"
	case StateDown:
		return "DOWN"
	case StateDead:
		return "DEAD"
	default:
		return fmt.Sprintf("FailState(%d)", int(s))
	}
}

// Node is one participant of the simulated overlay.
//
// Lifecycle: created by NewNode or Clone with StateOK, placed into a Network
// which assigns its index, possibly failed, and finally removed from the
// Network by swapping it to the tail. A removed or dead node object stays
// valid so that stale references held in other nodes' neighbour lists can
// still ask IsUp().
type Node struct {
	id        int64
	index     int
	protocols []Protocol
	caps      []Capabilities
	state     FailState
}

// NewNode creates an OK node that is not part of any network (index -1).
func NewNode(id int64, protocols ...Protocol) *Node {
	n := &Node{
		id:        id,
		index:     -1,
		protocols: protocols,
		caps:      make([]Capabilities, len(protocols)),
	}
	for pid, p := range protocols {
		n.caps[pid] = CapabilitiesOf(p)
	}
	return n
}

// ID returns the node's process-unique identifier. Unlike the index, it never
// changes.
func (n *Node) ID() int64 {
	return n.id
}

// Index returns the node's current position in its Network, or -1 if the
// node is not part of one.
func (n *Node) Index() int {
	return n.index
}

// setIndex is reserved to Network: protocol code must never renumber nodes.
func (n *Node) setIndex(i int) {
	n.index = i
}

// ProtocolCount returns the number of protocol slots. A dead node has none.
func (n *Node) ProtocolCount() int {
	return len(n.protocols)
}

// Protocol returns the protocol in slot pid.
// Panics if pid is out of range.
func (n *Node) Protocol(pid int) Protocol {
	n.checkPID(pid)
	return n.protocols[pid]
}

// Capabilities returns the resolved capability set of slot pid.
// Panics if pid is out of range.
func (n *Node) Capabilities(pid int) Capabilities {
	n.checkPID(pid)
	return n.caps[pid]
}

func (n *Node) checkPID(pid int) {
	if pid < 0 || pid >= len(n.protocols) {
		panic(fmt.Sprintf("node %d (%s): protocol id %d out of range [0,%d)", n.id, n.state, pid, len(n.protocols)))
	}
}

// FailState returns the current fail-state.
func (n *Node) FailState() FailState {
	return n.state
}

// IsUp reports whether the node is OK.
func (n *Node) IsUp() bool {
	return n.state == StateOK
}

// SetFailState changes the fail-state.
//
// Allowed transitions: DOWN -> OK, OK/DOWN -> DOWN, and anything -> DEAD.
// Leaving DEAD returns ErrIllegalTransition. Entering DEAD notifies Cleanable
// protocols and releases the protocol slots.
func (n *Node) SetFailState(s FailState) error {
	switch s {
	case StateOK, StateDown:
		if n.state == StateDead {
			return fmt.Errorf("node %d: %s -> %s: %w", n.id, n.state, s, ErrIllegalTransition)
		}
		n.state = s
	case StateDead:
		if n.state == StateDead {
			return nil
		}
		n.state = StateDead
		for _, c := range n.caps {
			if c.Clean != nil {
				c.Clean.OnKill()
			}
		}
		n.protocols = nil
		n.caps = nil
	default:
		return fmt.Errorf("node %d: unknown fail-state %d: %w", n.id, int(s), ErrIllegalTransition)
	}
	return nil
}

// Clone builds a new OK node with the given id whose protocols are independent
// clones of n's protocols. The clone is not part of any network.
func (n *Node) Clone(id int64) *Node {
	protocols := make([]Protocol, len(n.protocols))
	for pid, p := range n.protocols {
		protocols[pid] = p.Clone()
	}
	return NewNode(id, protocols...)
}

func (n *Node) String() string {
	return fmt.Sprintf("node(id=%d, index=%d, %s)", n.id, n.index, n.state)
}
