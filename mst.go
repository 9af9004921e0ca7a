package constraintprop

import (
	"math"
)

// PrimMST computes a minimum spanning tree with Prim's algorithm over a dense
// distance matrix (flat n×n, row-major). Returns n-1 edges [from, to, weight]
// where from is the tree vertex nearest to the newly added vertex to. Ties
// resolve to the lowest vertex index, so the output is deterministic.
func PrimMST(distMatrix []float64, n int) [][3]float64 {
	return primMST(n, func(i, j int) float64 { return distMatrix[i*n+j] })
}

// PrimMSTVector is PrimMST without the n×n matrix: distances are computed on
// demand from flat row-major data, using O(n) memory.
func PrimMSTVector(data []float64, n, dims int, metric DistanceMetric) [][3]float64 {
	return primMST(n, func(i, j int) float64 {
		return metric.Distance(data[i*dims:(i+1)*dims], data[j*dims:(j+1)*dims])
	})
}

func primMST(n int, dist func(i, j int) float64) [][3]float64 {
	if n <= 1 {
		return nil
	}

	inTree := make([]bool, n)
	best := make([]float64, n)
	source := make([]int, n)
	for j := range best {
		best[j] = math.Inf(1)
	}

	edges := make([][3]float64, 0, n-1)
	current := 0
	for step := 1; step < n; step++ {
		inTree[current] = true

		next := -1
		for j := 0; j < n; j++ {
			if inTree[j] {
				continue
			}
			if d := dist(current, j); d < best[j] {
				best[j] = d
				source[j] = current
			}
			if next == -1 || best[j] < best[next] {
				next = j
			}
		}

		edges = append(edges, [3]float64{float64(source[next]), float64(next), best[next]})
		current = next
	}

	return edges
}

// hasInfiniteEdge reports whether any edge weight is +Inf, which happens
// when the data contains disconnected components (e.g. Inf coordinates).
func hasInfiniteEdge(edges [][3]float64) bool {
	for _, e := range edges {
		if math.IsInf(e[2], 1) {
			return true
		}
	}
	return false
}
