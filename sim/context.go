package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// Phase tells callbacks which part of a run is executing.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseRunning
	PhaseFinal
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseRunning:
		return "running"
	case PhaseFinal:
		return "final"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Context is the simulation state every callback receives: the clock, the
// protocol slot being executed, the shared random source and the network.
// One Context exists per run; engines update it in place before each callback.
type Context struct {
	// Time is the current cycle (cycle engine) or simulated timestamp (event engine).
	Time int64
	// PID is the protocol slot currently executing, or -1 inside controls.
	PID   int
	Phase Phase

	rng     *rand.Rand
	network *Network
	events  *EventHeap
}

// NewContext creates a context for a run over network, drawing randomness from rng.
// Panics if either argument is nil.
func NewContext(network *Network, rng *rand.Rand) *Context {
	if network == nil || rng == nil {
		panic("NewContext: network and rng must not be nil")
	}
	return &Context{PID: -1, rng: rng, network: network}
}

// Rand returns the run-wide random source.
func (c *Context) Rand() *rand.Rand {
	return c.rng
}

// Network returns the simulated network.
func (c *Context) Network() *Network {
	return c.network
}

// Cycle returns Time as a cycle index.
func (c *Context) Cycle() int {
	return int(c.Time)
}

// CanSchedule reports whether events can be scheduled, i.e. the run is driven
// by the event engine.
func (c *Context) CanSchedule() bool {
	return c.events != nil
}

// Schedule delivers event to protocol pid of node after delay time units.
// A nil node is not allowed here: global items are owned by the engine.
// Panics if delay is negative or overflows the clock, node is nil, or the run
// is cycle-driven.
func (c *Context) Schedule(delay int64, event any, node *Node, pid int) {
	if c.events == nil {
		panic("Context.Schedule: no event queue (cycle-driven run)")
	}
	if delay < 0 {
		panic(fmt.Sprintf("Context.Schedule: negative delay %d for pid %d", delay, pid))
	}
	if delay > math.MaxInt64-c.Time {
		panic(fmt.Sprintf("Context.Schedule: delay %d at time %d overflows the clock", delay, c.Time))
	}
	if node == nil {
		panic("Context.Schedule: node must not be nil")
	}
	c.events.Insert(c.Time+delay, event, node, pid)
}
