// Package overlay views the neighbour lists of a Linkable protocol as a graph.
//
// Nodes are the network indices 0..Size()-1. Edges are never stored: every
// query reads the live Linkable state, so a view reflects topology changes
// made earlier in the same time step. A view is not a snapshot; a control that
// wires the topology must finish before another component iterates it.
package overlay

import (
	"errors"
	"fmt"

	"github.com/overlaysim/overlaysim/sim"
)

// ErrUnsupported is returned by mutators of read-only views.
var ErrUnsupported = errors.New("unsupported operation on read-only graph")

// Graph is the query surface topology algorithms and observers work on.
type Graph interface {
	// Size is the number of nodes, including failed or excluded ones.
	Size() int
	IsEdge(i, j int) bool
	// Neighbours lists the indices j such that IsEdge(i, j).
	Neighbours(i int) []int
	Degree(i int) int
	// SetEdge adds the edge i -> j (and j -> i for undirected wiring).
	SetEdge(i, j int) error
	// ClearEdge removes an edge. Linkable neighbour lists only grow, so the
	// overlay views return ErrUnsupported.
	ClearEdge(i, j int) error
	Directed() bool
}

// OverlayGraph is the graph of the Linkable protocol in slot pid over a network.
// An edge i -> j exists iff both nodes are up, both are inside the optional
// subset restriction, and the Linkable of node i contains node j.
type OverlayGraph struct {
	nw       *sim.Network
	pid      int
	directed bool
	readOnly bool
	subset   []bool // nil: every index is included
}

// New returns a writable view of protocol pid. With directed false, SetEdge
// adds both directions.
// Returns an error if the prototype's slot pid is not Linkable.
func New(nw *sim.Network, pid int, directed bool) (*OverlayGraph, error) {
	proto := nw.Prototype()
	if pid < 0 || pid >= proto.ProtocolCount() {
		return nil, fmt.Errorf("overlay: pid %d out of range [0,%d)", pid, proto.ProtocolCount())
	}
	if proto.Capabilities(pid).Link == nil {
		return nil, fmt.Errorf("overlay: pid %d (%T) is not Linkable: %w", pid, proto.Protocol(pid), sim.ErrMissingCapability)
	}
	return &OverlayGraph{nw: nw, pid: pid, directed: directed}, nil
}

// NewReadOnly returns a read-only view of protocol pid.
func NewReadOnly(nw *sim.Network, pid int) (*OverlayGraph, error) {
	g, err := New(nw, pid, true)
	if err != nil {
		return nil, err
	}
	g.readOnly = true
	return g, nil
}

// ReadOnly returns a read-only copy of the view.
func (g *OverlayGraph) ReadOnly() *OverlayGraph {
	c := *g
	c.readOnly = true
	return &c
}

// Restrict returns a read-only view limited to the given node indices.
// Size still reports the full network size; excluded nodes have no edges.
func (g *OverlayGraph) Restrict(indices []int) *OverlayGraph {
	c := *g
	c.readOnly = true
	c.subset = make([]bool, g.nw.Size())
	for _, i := range indices {
		if i >= 0 && i < len(c.subset) {
			c.subset[i] = true
		}
	}
	return &c
}

// PID returns the protocol slot the view reads.
func (g *OverlayGraph) PID() int {
	return g.pid
}

func (g *OverlayGraph) Size() int {
	return g.nw.Size()
}

func (g *OverlayGraph) Directed() bool {
	return g.directed
}

func (g *OverlayGraph) included(i int) bool {
	if i < 0 || i >= g.nw.Size() {
		return false
	}
	return g.subset == nil || (i < len(g.subset) && g.subset[i])
}

// linkable returns the Linkable of an up node.
func (g *OverlayGraph) linkable(n *sim.Node) sim.Linkable {
	l := n.Capabilities(g.pid).Link
	if l == nil {
		panic(fmt.Sprintf("overlay: %s has no Linkable in pid %d", n, g.pid))
	}
	return l
}

func (g *OverlayGraph) IsEdge(i, j int) bool {
	if !g.included(i) || !g.included(j) {
		return false
	}
	ni, nj := g.nw.Get(i), g.nw.Get(j)
	if !ni.IsUp() || !nj.IsUp() {
		return false
	}
	return g.linkable(ni).Contains(nj)
}

func (g *OverlayGraph) Neighbours(i int) []int {
	if !g.included(i) {
		return nil
	}
	ni := g.nw.Get(i)
	if !ni.IsUp() {
		return nil
	}
	l := g.linkable(ni)
	out := make([]int, 0, l.Degree())
	for k := 0; k < l.Degree(); k++ {
		n := l.Neighbor(k)
		if n == nil || !n.IsUp() || !g.nw.Contains(n) || !g.included(n.Index()) {
			continue
		}
		out = append(out, n.Index())
	}
	return out
}

func (g *OverlayGraph) Degree(i int) int {
	return len(g.Neighbours(i))
}

func (g *OverlayGraph) SetEdge(i, j int) error {
	if g.readOnly {
		return fmt.Errorf("overlay: set edge %d -> %d: %w", i, j, ErrUnsupported)
	}
	ni, nj := g.nw.Get(i), g.nw.Get(j)
	g.linkable(ni).AddNeighbor(nj)
	if !g.directed {
		g.linkable(nj).AddNeighbor(ni)
	}
	return nil
}

func (g *OverlayGraph) ClearEdge(i, j int) error {
	return fmt.Errorf("overlay: clear edge %d -> %d: %w", i, j, ErrUnsupported)
}

// Pack compacts the Linkable of every up node.
func (g *OverlayGraph) Pack() {
	for i := 0; i < g.nw.Size(); i++ {
		if n := g.nw.Get(i); n.IsUp() {
			g.linkable(n).Pack()
		}
	}
}
