package constraintprop

import "fmt"

// NeighborFinder returns, for each of n points (flat row-major, dims
// columns), the indices of its k nearest other points, nearest first. A
// point never appears in its own list. When fewer than k other points
// exist, every other point is returned.
type NeighborFinder interface {
	Neighbors(points []float64, n, dims, k int) ([][]int, error)
}

// TreeNeighbors is the built-in NeighborFinder. With AlgorithmAuto it uses a
// KD-tree for axis-decomposable metrics in up to 60 dimensions, a ball tree
// above that, and a brute-force scan for metrics neither tree supports.
type TreeNeighbors struct {
	Metric    DistanceMetric
	LeafSize  int
	Algorithm Algorithm
}

// Neighbors implements NeighborFinder.
func (f TreeNeighbors) Neighbors(points []float64, n, dims, k int) ([][]int, error) {
	if len(points) != n*dims {
		return nil, fmt.Errorf("%w: neighbor query has %d values, want %d×%d", ErrInvalidData, len(points), n, dims)
	}
	if k < 0 {
		return nil, fmt.Errorf("%w: neighbor count must be >= 0, got %d", ErrInvalidConfig, k)
	}

	index, err := f.index(points, n, dims)
	if err != nil {
		return nil, err
	}
	// Ask for one extra so the query point itself can be dropped.
	want := min(k+1, n)
	found, _ := index.QueryKNN(points, n, want)

	out := make([][]int, n)
	for i, row := range found {
		nbrs := make([]int, 0, k)
		for _, j := range row {
			if j == i || len(nbrs) == k {
				continue
			}
			nbrs = append(nbrs, j)
		}
		out[i] = nbrs
	}
	return out, nil
}

// index builds the SpatialIndex for the configured algorithm and metric.
func (f TreeNeighbors) index(points []float64, n, dims int) (SpatialIndex, error) {
	metric := f.Metric
	if metric == nil {
		metric = EuclideanMetric{}
	}
	algo, err := selectAlgorithm(f.Algorithm, metric, dims)
	if err != nil {
		return nil, err
	}
	leafSize := f.LeafSize
	if leafSize <= 0 {
		leafSize = defaultLeafSize
	}
	switch algo {
	case AlgorithmKDTree:
		return NewKDTree(points, n, dims, metric, leafSize), nil
	case AlgorithmBallTree:
		return NewBallTree(points, n, dims, metric, leafSize), nil
	default:
		return NewBruteIndex(points, n, dims, metric), nil
	}
}
