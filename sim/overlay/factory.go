package overlay

import (
	"fmt"
	"math/rand"
)

// Graph factories add edges to an existing graph through SetEdge. They never
// remove edges, so wiring an already wired overlay only adds links.

// WireKOut gives every node k distinct random out-neighbours other than
// itself (all other nodes if k >= Size()-1).
func WireKOut(g Graph, k int, rng *rand.Rand) error {
	n := g.Size()
	if n < 2 || k <= 0 {
		return nil
	}
	if k > n-1 {
		k = n - 1
	}
	others := make([]int, n)
	for i := range others {
		others[i] = i
	}
	for i := 0; i < n; i++ {
		// move i out of the candidate prefix, then partial Fisher-Yates on the prefix
		pos := indexOf(others, i)
		others[pos], others[n-1] = others[n-1], others[pos]
		for s := 0; s < k; s++ {
			r := s + rng.Intn(n-1-s)
			others[s], others[r] = others[r], others[s]
			if err := g.SetEdge(i, others[s]); err != nil {
				return fmt.Errorf("wiring k-out: %w", err)
			}
		}
	}
	return nil
}

func indexOf(xs []int, v int) int {
	for i, x := range xs {
		if x == v {
			return i
		}
	}
	return -1
}

// WireRingLattice connects every node to its k nearest neighbours on a ring,
// k/2 on each side.
func WireRingLattice(g Graph, k int) error {
	n := g.Size()
	if n < 2 {
		return nil
	}
	for i := 0; i < n; i++ {
		for d := 1; d <= k/2; d++ {
			if err := g.SetEdge(i, (i+d)%n); err != nil {
				return fmt.Errorf("wiring ring lattice: %w", err)
			}
			if err := g.SetEdge(i, (i-d+n)%n); err != nil {
				return fmt.Errorf("wiring ring lattice: %w", err)
			}
		}
	}
	return nil
}

// WireStar links node 0 and every other node in both directions.
func WireStar(g Graph) error {
	for i := 1; i < g.Size(); i++ {
		if err := g.SetEdge(0, i); err != nil {
			return fmt.Errorf("wiring star: %w", err)
		}
		if err := g.SetEdge(i, 0); err != nil {
			return fmt.Errorf("wiring star: %w", err)
		}
	}
	return nil
}

// WireWattsStrogatz builds a ring lattice of degree k whose clockwise edges are
// each redirected, with probability beta, to a uniformly random node.
func WireWattsStrogatz(g Graph, k int, beta float64, rng *rand.Rand) error {
	n := g.Size()
	if n < 2 {
		return nil
	}
	for i := 0; i < n; i++ {
		chosen := make(map[int]bool, k/2)
		for d := 1; d <= k/2; d++ {
			target := (i + d) % n
			if rng.Float64() < beta {
				// draw until the target is new; bounded because k/2 < n-1 in practice
				for tries := 0; tries < 4*n; tries++ {
					t := rng.Intn(n)
					if t != i && !chosen[t] {
						target = t
						break
					}
				}
			}
			chosen[target] = true
			if err := g.SetEdge(i, target); err != nil {
				return fmt.Errorf("wiring watts-strogatz: %w", err)
			}
		}
	}
	return nil
}
