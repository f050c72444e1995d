package controls

import (
	"fmt"
	"math/rand"

	"github.com/overlaysim/overlaysim/sim"
	"github.com/overlaysim/overlaysim/sim/overlay"
	"github.com/sirupsen/logrus"
)

// WireFunc adds edges to g.
type WireFunc func(g overlay.Graph, rng *rand.Rand) error

// WireTopology wires the Linkable in slot PID with a graph factory. It is
// both an initializer and a dynamics: run on a schedule it only adds edges.
type WireTopology struct {
	PID int
	// Undirected makes SetEdge add both directions.
	Undirected bool
	// Pack compacts every neighbour list after wiring.
	Pack bool
	Wire WireFunc
}

// NewWireKOut links every node to k random other nodes.
func NewWireKOut(pid, k int, undirected bool) *WireTopology {
	return &WireTopology{PID: pid, Undirected: undirected, Wire: func(g overlay.Graph, rng *rand.Rand) error {
		return overlay.WireKOut(g, k, rng)
	}}
}

// NewWireRingLattice links every node to its k nearest ring neighbours.
func NewWireRingLattice(pid, k int) *WireTopology {
	return &WireTopology{PID: pid, Wire: func(g overlay.Graph, _ *rand.Rand) error {
		return overlay.WireRingLattice(g, k)
	}}
}

// NewWireStar links node 0 with every other node.
func NewWireStar(pid int) *WireTopology {
	return &WireTopology{PID: pid, Wire: func(g overlay.Graph, _ *rand.Rand) error {
		return overlay.WireStar(g)
	}}
}

// NewWireWattsStrogatz builds a small-world overlay from a ring of degree k
// with rewiring probability beta.
func NewWireWattsStrogatz(pid, k int, beta float64, undirected bool) *WireTopology {
	return &WireTopology{PID: pid, Undirected: undirected, Wire: func(g overlay.Graph, rng *rand.Rand) error {
		return overlay.WireWattsStrogatz(g, k, beta, rng)
	}}
}

func (w *WireTopology) Initialize(ctx *sim.Context) error {
	g, err := overlay.New(ctx.Network(), w.PID, !w.Undirected)
	if err != nil {
		return err
	}
	if err := w.Wire(g, ctx.Rand()); err != nil {
		return err
	}
	if w.Pack {
		g.Pack()
	}
	logrus.Debugf("wired pid %d over %d nodes", w.PID, g.Size())
	return nil
}

func (w *WireTopology) Modify(ctx *sim.Context) {
	if err := w.Initialize(ctx); err != nil {
		logrus.Warnf("[t %010d] rewiring pid %d: %v", ctx.Time, w.PID, err)
	}
}

// RandomLinks is a NodeInitializer that links a newly added node to K random
// up nodes of the network. With Bidirectional set, each chosen peer links
// back.
type RandomLinks struct {
	PID           int
	K             int
	Bidirectional bool
}

func (r *RandomLinks) InitializeNode(ctx *sim.Context, node *sim.Node) error {
	l := node.Capabilities(r.PID).Link
	if l == nil {
		return fmt.Errorf("random links: pid %d of %s: %w", r.PID, node, sim.ErrMissingCapability)
	}
	nw := ctx.Network()
	candidates := make([]*sim.Node, 0, nw.Size())
	for i := 0; i < nw.Size(); i++ {
		if n := nw.Get(i); n != node && n.IsUp() {
			candidates = append(candidates, n)
		}
	}
	k := r.K
	if k > len(candidates) {
		k = len(candidates)
	}
	for s := 0; s < k; s++ {
		j := s + ctx.Rand().Intn(len(candidates)-s)
		candidates[s], candidates[j] = candidates[j], candidates[s]
		peer := candidates[s]
		l.AddNeighbor(peer)
		if r.Bidirectional {
			if pl := peer.Capabilities(r.PID).Link; pl != nil {
				pl.AddNeighbor(node)
			}
		}
	}
	return nil
}
