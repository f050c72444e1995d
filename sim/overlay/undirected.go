package overlay

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// UndirectedGraph is a read-only symmetric snapshot of a Graph: i and j are
// adjacent iff g.IsEdge(i, j) or g.IsEdge(j, i) held when the snapshot was
// taken. Unlike OverlayGraph it stores its adjacency, so it must be rebuilt
// after the topology changes.
type UndirectedGraph struct {
	adj [][]int
}

// Undirected builds the symmetric closure of g in O(V+E).
func Undirected(g Graph) *UndirectedGraph {
	n := g.Size()
	adj := make([][]int, n)
	for i := 0; i < n; i++ {
		for _, j := range g.Neighbours(i) {
			if j == i {
				continue
			}
			adj[i] = append(adj[i], j)
			adj[j] = append(adj[j], i)
		}
	}
	for i := range adj {
		slices.Sort(adj[i])
		adj[i] = slices.Compact(adj[i])
	}
	return &UndirectedGraph{adj: adj}
}

func (u *UndirectedGraph) Size() int {
	return len(u.adj)
}

func (u *UndirectedGraph) IsEdge(i, j int) bool {
	if i < 0 || i >= len(u.adj) {
		return false
	}
	_, found := slices.BinarySearch(u.adj[i], j)
	return found
}

func (u *UndirectedGraph) Neighbours(i int) []int {
	if i < 0 || i >= len(u.adj) {
		return nil
	}
	return slices.Clone(u.adj[i])
}

func (u *UndirectedGraph) Degree(i int) int {
	if i < 0 || i >= len(u.adj) {
		return 0
	}
	return len(u.adj[i])
}

func (u *UndirectedGraph) SetEdge(i, j int) error {
	return fmt.Errorf("overlay: set edge %d -> %d on undirected snapshot: %w", i, j, ErrUnsupported)
}

func (u *UndirectedGraph) ClearEdge(i, j int) error {
	return fmt.Errorf("overlay: clear edge %d -> %d on undirected snapshot: %w", i, j, ErrUnsupported)
}

func (u *UndirectedGraph) Directed() bool {
	return false
}
