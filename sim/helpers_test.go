package sim

import (
	"fmt"
)

// callLog collects "who ran when" entries across protocols and controls.
type callLog struct {
	entries []string
}

func (l *callLog) add(format string, args ...any) {
	l.entries = append(l.entries, fmt.Sprintf(format, args...))
}

// probe is a cycle- and event-driven test protocol. Each instance logs its
// calls as "<tag>@<time>:<node id>".
type probe struct {
	tag    string
	log    *callLog
	cycles int
	events []any
	killed bool
}

func (p *probe) Clone() Protocol {
	return &probe{tag: p.tag, log: p.log}
}

func (p *probe) NextCycle(ctx *Context, node *Node, pid int) {
	p.cycles++
	p.log.add("%s@%d:%d", p.tag, ctx.Time, node.ID())
}

func (p *probe) ProcessEvent(ctx *Context, node *Node, pid int, event any) {
	p.events = append(p.events, event)
	p.log.add("%s@%d:%d:%v", p.tag, ctx.Time, node.ID(), event)
}

func (p *probe) OnKill() {
	p.killed = true
}

// passive implements no optional capability.
type passive struct{}

func (passive) Clone() Protocol { return passive{} }

// newTestNetwork builds a network of size clones of a node holding protos.
func newTestNetwork(size int, protos ...Protocol) *Network {
	nw := NewNetwork(NewNode(-1, protos...), 0)
	if err := nw.Reset(size); err != nil {
		panic(err)
	}
	return nw
}

func probeAt(nw *Network, i, pid int) *probe {
	return nw.Get(i).Protocol(pid).(*probe)
}

// recordingControl logs its activations as "<name>@<time>".
func recordingControl(name string, log *callLog) DynamicsFunc {
	return func(ctx *Context) {
		log.add("%s@%d", name, ctx.Time)
	}
}
