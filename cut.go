package constraintprop

// CutResult is the node partition found by GreedyCut.
type CutResult struct {
	// NodeLabels[a] is the final group of node a, dense in [0, NumGroups)
	// and numbered by first appearance.
	NodeLabels []int
	NumGroups  int
	// Merges is the number of absorb steps performed (at most nodes-1).
	Merges int
}

// GreedyCut approximates a maximum-agreement partition of g. It repeatedly
// absorbs the live pair with the largest similarity (col into row, first
// maximum in row-major upper-triangle order on ties) until no pair has a
// positive similarity or, when target > 0, at most target nodes remain.
// The target is checked before every step, so target >= g.NumLive() merges
// nothing.
//
// Cannot-links only count through the net similarity, so a pair whose
// must-links outweigh its cannot-links is absorbed. With hardCannotLinks set,
// pairs joined by any cannot-link are never absorbed and no final group
// contains a cannot-link pair.
//
// The procedure is greedy and never backtracks. g is modified in place.
func GreedyCut(g *NodeGraph, target int, hardCannotLinks bool) *CutResult {
	owners := NewUnionFind(g.NumNodes())
	merges := 0

	for {
		if target > 0 && g.NumLive() <= target {
			break
		}
		row, col, value, ok := g.strongestPair(hardCannotLinks)
		if !ok || value <= 0 {
			break
		}
		g.absorb(row, col)
		owners.Union(row, col)
		merges++
	}

	roots := make([]int, g.NumNodes())
	for a := range roots {
		roots[a] = owners.Find(a)
	}
	labels, numGroups := denseLabels(roots)

	return &CutResult{
		NodeLabels: labels,
		NumGroups:  numGroups,
		Merges:     merges,
	}
}
