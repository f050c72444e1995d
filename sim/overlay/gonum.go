package overlay

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

// gonumGraph exposes a Graph as a gonum directed graph. Gonum node IDs are the
// network indices.
type gonumGraph struct {
	g Graph
}

// Gonum adapts g to gonum's graph.Directed so gonum's path, topo and traverse
// algorithms run on the overlay.
func Gonum(g Graph) graph.Directed {
	return gonumGraph{g: g}
}

func (a gonumGraph) valid(id int64) bool {
	return id >= 0 && id < int64(a.g.Size())
}

func (a gonumGraph) Node(id int64) graph.Node {
	if !a.valid(id) {
		return nil
	}
	return simple.Node(id)
}

func (a gonumGraph) Nodes() graph.Nodes {
	n := a.g.Size()
	if n == 0 {
		return graph.Empty
	}
	nodes := make([]graph.Node, n)
	for i := range nodes {
		nodes[i] = simple.Node(i)
	}
	return iterator.NewOrderedNodes(nodes)
}

func (a gonumGraph) From(id int64) graph.Nodes {
	if !a.valid(id) {
		return graph.Empty
	}
	return toNodes(a.g.Neighbours(int(id)))
}

func (a gonumGraph) To(id int64) graph.Nodes {
	if !a.valid(id) {
		return graph.Empty
	}
	// undirected wiring may still leave one-way lists behind a full neighbour list
	var in []int
	for i := 0; i < a.g.Size(); i++ {
		if a.g.IsEdge(i, int(id)) {
			in = append(in, i)
		}
	}
	return toNodes(in)
}

func (a gonumGraph) HasEdgeBetween(xid, yid int64) bool {
	return a.HasEdgeFromTo(xid, yid) || a.HasEdgeFromTo(yid, xid)
}

func (a gonumGraph) HasEdgeFromTo(uid, vid int64) bool {
	return a.valid(uid) && a.valid(vid) && a.g.IsEdge(int(uid), int(vid))
}

func (a gonumGraph) Edge(uid, vid int64) graph.Edge {
	if !a.HasEdgeFromTo(uid, vid) {
		return nil
	}
	return simple.Edge{F: simple.Node(uid), T: simple.Node(vid)}
}

func toNodes(ids []int) graph.Nodes {
	if len(ids) == 0 {
		return graph.Empty
	}
	nodes := make([]graph.Node, len(ids))
	for k, id := range ids {
		nodes[k] = simple.Node(id)
	}
	return iterator.NewOrderedNodes(nodes)
}

// ConnectedComponents returns the weakly connected components of g, each a
// list of node indices. Nodes without any edge (including failed ones) form
// singleton components.
func ConnectedComponents(g Graph) [][]int {
	cc := topo.ConnectedComponents(graph.Undirect{G: Gonum(Undirected(g))})
	out := make([][]int, len(cc))
	for k, comp := range cc {
		ids := make([]int, len(comp))
		for i, n := range comp {
			ids[i] = int(n.ID())
		}
		out[k] = ids
	}
	return out
}

// HopDistances returns the breadth-first hop count from src to every node
// reachable along directed edges. Unreachable nodes are absent.
func HopDistances(g Graph, src int) map[int]int {
	dist := make(map[int]int)
	if src < 0 || src >= g.Size() {
		return dist
	}
	var bf traverse.BreadthFirst
	bf.Walk(Gonum(g), simple.Node(src), func(n graph.Node, d int) bool {
		dist[int(n.ID())] = d
		return false
	})
	return dist
}
