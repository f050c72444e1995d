package sim

import (
	"fmt"
	"math/rand"

	"golang.org/x/exp/slices"
)

// Network is the registry of live nodes of one simulation run.
//
// Invariant: for every i in [0, Size()), Get(i).Index() == i. Nodes only enter
// and leave at the tail; removing an arbitrary node means swapping it to the
// tail first.
//
// Thread-safety: NOT thread-safe. Engines and controls run on one goroutine.
type Network struct {
	nodes     []*Node
	prototype *Node
	capacity  int
	nextID    int64
}

// NewNetwork creates an empty network whose new nodes are cloned from
// prototype. capacity bounds Size(); zero or negative means unbounded.
// Panics if prototype is nil.
func NewNetwork(prototype *Node, capacity int) *Network {
	if prototype == nil {
		panic("NewNetwork: prototype must not be nil")
	}
	return &Network{
		prototype: prototype,
		capacity:  capacity,
	}
}

// Size returns the number of live nodes.
func (nw *Network) Size() int {
	return len(nw.nodes)
}

// Get returns the node at index i. Panics if i is out of range.
func (nw *Network) Get(i int) *Node {
	if i < 0 || i >= len(nw.nodes) {
		panic(fmt.Sprintf("Network.Get: index %d out of range [0,%d)", i, len(nw.nodes)))
	}
	return nw.nodes[i]
}

// Add appends n at the tail and sets its index.
// Returns ErrCapacityExceeded when the network is full.
// Panics if n is nil or already part of this network.
func (nw *Network) Add(n *Node) error {
	if n == nil {
		panic("Network.Add: node must not be nil")
	}
	if nw.Contains(n) {
		panic(fmt.Sprintf("Network.Add: %s already in network", n))
	}
	if nw.capacity > 0 && len(nw.nodes) >= nw.capacity {
		return fmt.Errorf("adding %s: size %d: %w", n, len(nw.nodes), ErrCapacityExceeded)
	}
	n.setIndex(len(nw.nodes))
	nw.nodes = append(nw.nodes, n)
	return nil
}

// Remove drops the tail node and returns it with its index reset to -1.
// Panics on an empty network.
func (nw *Network) Remove() *Node {
	last := len(nw.nodes) - 1
	if last < 0 {
		panic("Network.Remove: network is empty")
	}
	n := nw.nodes[last]
	nw.nodes[last] = nil
	nw.nodes = nw.nodes[:last]
	n.setIndex(-1)
	return n
}

// Swap exchanges the nodes at i and j and fixes both indices.
func (nw *Network) Swap(i, j int) {
	a, b := nw.Get(i), nw.Get(j)
	nw.nodes[i], nw.nodes[j] = b, a
	a.setIndex(j)
	b.setIndex(i)
}

// Shuffle applies a uniform random permutation (Fisher-Yates, via
// rand.Shuffle) to the visitation order.
func (nw *Network) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(nw.nodes), nw.Swap)
}

// Sort reorders the nodes stably by cmp and renumbers them.
func (nw *Network) Sort(cmp func(a, b *Node) int) {
	slices.SortStableFunc(nw.nodes, cmp)
	for i, n := range nw.nodes {
		n.setIndex(i)
	}
}

// Contains reports whether n is currently a live member of this network.
func (nw *Network) Contains(n *Node) bool {
	i := n.Index()
	return i >= 0 && i < len(nw.nodes) && nw.nodes[i] == n
}

// Nodes returns a copy of the live node list.
func (nw *Network) Nodes() []*Node {
	return slices.Clone(nw.nodes)
}

// Prototype returns the template node new nodes are cloned from.
func (nw *Network) Prototype() *Node {
	return nw.prototype
}

// NewNode clones the prototype into a fresh node with a new unique ID.
// The node is not added to the network.
func (nw *Network) NewNode() *Node {
	id := nw.nextID
	nw.nextID++
	return nw.prototype.Clone(id)
}

// Capacity returns the size bound, or 0 when unbounded.
func (nw *Network) Capacity() int {
	return nw.capacity
}

// SetCapacity changes the size bound. It never evicts nodes; a bound below the
// current size only prevents further additions.
func (nw *Network) SetCapacity(capacity int) {
	nw.capacity = capacity
}

// Reset discards every node and builds a fresh population of size nodes from
// the prototype. Used between independent experiment repetitions.
func (nw *Network) Reset(size int) error {
	if nw.capacity > 0 && size > nw.capacity {
		return fmt.Errorf("resetting network to %d nodes: capacity %d: %w", size, nw.capacity, ErrCapacityExceeded)
	}
	for i, n := range nw.nodes {
		n.setIndex(-1)
		nw.nodes[i] = nil
	}
	nw.nodes = make([]*Node, 0, size)
	for i := 0; i < size; i++ {
		if err := nw.Add(nw.NewNode()); err != nil {
			return err
		}
	}
	return nil
}
