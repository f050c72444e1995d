// Package testutil provides shared test fixtures for the overlaysim packages:
// networks of plug-in protocols, run contexts and hand-wired topologies.
package testutil

import (
	"testing"

	"github.com/overlaysim/overlaysim/sim"
	"github.com/overlaysim/overlaysim/sim/protocols"
)

// Seed is the default seed of fixture contexts.
const Seed = 42

// NewNetwork builds size nodes cloned from a prototype holding protos.
func NewNetwork(t testing.TB, size int, protos ...sim.Protocol) *sim.Network {
	t.Helper()
	nw := sim.NewNetwork(sim.NewNode(-1, protos...), 0)
	if err := nw.Reset(size); err != nil {
		t.Fatalf("building %d-node network: %v", size, err)
	}
	return nw
}

// LinkedNetwork builds size nodes with a single unbounded neighbour list in
// slot 0 followed by extra.
func LinkedNetwork(t testing.TB, size int, extra ...sim.Protocol) *sim.Network {
	t.Helper()
	return NewNetwork(t, size, append([]sim.Protocol{protocols.NewNeighborList(0)}, extra...)...)
}

// NewContext returns a cycle-mode context over nw seeded with Seed.
func NewContext(nw *sim.Network) *sim.Context {
	return sim.NewContext(nw, sim.NewSimulationKey(Seed).NewRand())
}

// Link adds the directed edges from -> to (network indices) to the
// Linkable in slot pid.
func Link(t testing.TB, nw *sim.Network, pid int, edges ...[2]int) {
	t.Helper()
	for _, e := range edges {
		l := nw.Get(e[0]).Capabilities(pid).Link
		if l == nil {
			t.Fatalf("node %d: pid %d is not Linkable", e[0], pid)
		}
		l.AddNeighbor(nw.Get(e[1]))
	}
}

// Ring links node i to node i+1 (mod size) in slot pid, in both directions.
func Ring(t testing.TB, nw *sim.Network, pid int) {
	t.Helper()
	n := nw.Size()
	for i := 0; i < n; i++ {
		Link(t, nw, pid, [2]int{i, (i + 1) % n}, [2]int{(i + 1) % n, i})
	}
}

// Outdegrees returns the Linkable degree in slot pid of every node.
func Outdegrees(nw *sim.Network, pid int) []int {
	out := make([]int, nw.Size())
	for i := range out {
		if n := nw.Get(i); n.IsUp() {
			out[i] = n.Capabilities(pid).Link.Degree()
		}
	}
	return out
}
