package constraintprop

import "fmt"

// DefaultCompletionNeighbors is the number of nearest centroids each node is
// weakly linked to by CompleteGraph.
const DefaultCompletionNeighbors = 2

// CompleteGraph links floating nodes to their geometric neighbours. For each
// node it finds the k nearest other centroids and, where the similarity is
// currently zero, adds a synthetic must-link of weight +1 in both
// directions. Non-zero entries carry real constraint evidence and are never
// overwritten.
//
// Completion is skipped, returning 0, unless the graph has more than 2k+2
// nodes; small graphs would otherwise become fully connected. It returns the
// number of synthetic edges added.
func CompleteGraph(g *NodeGraph, nf NeighborFinder, k int) (int, error) {
	if k < 1 {
		return 0, fmt.Errorf("%w: completion neighbors must be >= 1, got %d", ErrInvalidConfig, k)
	}
	m := g.NumNodes()
	if m <= 2*k+2 {
		return 0, nil
	}

	nbrs, err := nf.Neighbors(g.flatCentroids(), m, g.Dims(), k)
	if err != nil {
		return 0, fmt.Errorf("constraintprop: completing node graph: %w", err)
	}
	if len(nbrs) != m {
		return 0, fmt.Errorf("%w: neighbor finder returned %d rows, want %d", ErrInvalidData, len(nbrs), m)
	}

	added := 0
	for a, row := range nbrs {
		for _, b := range row {
			if b < 0 || b >= m {
				return added, fmt.Errorf("%w: neighbor finder returned index %d for %d nodes", ErrInvalidData, b, m)
			}
			if b == a || g.sim.At(a, b) != 0 {
				continue
			}
			g.sim.SetSym(a, b, 1)
			added++
		}
	}
	return added, nil
}
