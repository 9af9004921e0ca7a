package constraintprop

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Linkage selects how the distance between two clusters is measured when
// building the dendrogram.
type Linkage string

const (
	// LinkageAverage uses the mean pairwise distance between members (UPGMA).
	LinkageAverage Linkage = "average"
	// LinkageSingle uses the minimum pairwise distance between members.
	LinkageSingle Linkage = "single"
)

// HierarchicalClusterer produces a dendrogram for a flat row-major data
// matrix with n rows and dims columns. Implementations must return exactly
// n-1 merges in non-decreasing height order, with merge i producing virtual
// node n+i.
type HierarchicalClusterer interface {
	Dendrogram(data []float64, n, dims int) (*Dendrogram, error)
}

// LinkageClusterer is the built-in agglomerative HierarchicalClusterer.
type LinkageClusterer struct {
	Linkage Linkage
	Metric  DistanceMetric
	// LowMemory computes single linkage with the matrix-free Prim variant.
	// Ignored for average linkage, which needs the full distance matrix.
	LowMemory bool
	// Workers bounds the goroutines used for the pairwise distance matrix.
	Workers int
	Logger  *zap.Logger
}

// Dendrogram implements HierarchicalClusterer.
func (c LinkageClusterer) Dendrogram(data []float64, n, dims int) (*Dendrogram, error) {
	if len(data) != n*dims {
		return nil, fmt.Errorf("%w: data has %d values, want %d×%d", ErrInvalidData, len(data), n, dims)
	}
	metric := c.Metric
	if metric == nil {
		metric = EuclideanMetric{}
	}
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var edges [][3]float64
	switch c.Linkage {
	case LinkageSingle:
		if c.LowMemory {
			edges = PrimMSTVector(data, n, dims, metric)
		} else {
			edges = PrimMST(ComputePairwiseDistancesParallel(data, n, dims, metric, c.Workers), n)
		}
	case LinkageAverage, "":
		edges = AverageLinkageEdges(ComputePairwiseDistancesParallel(data, n, dims, metric, c.Workers), n)
	default:
		return nil, fmt.Errorf("%w: unknown linkage %q", ErrInvalidConfig, c.Linkage)
	}

	if hasInfiniteEdge(edges) {
		logger.Warn("dendrogram contains +Inf merge heights (disconnected components)",
			zap.Int("samples", n))
	}

	return DendrogramFromLinkage(Label(edges, n), n)
}

// AverageLinkageEdges runs the nearest-neighbour-chain algorithm with
// average linkage over a flat n×n distance matrix. Each returned edge
// [a, b, height] names one original point from each merged cluster; pass the
// result through Label to get a dendrogram. The input is not modified.
//
// Each cluster lives in the matrix slot of one of its points. When clusters
// in slots x < y merge, the result moves to slot y and slot x is retired, and
// distances to y are updated with the Lance-Williams average rule.
func AverageLinkageEdges(distMatrix []float64, n int) [][3]float64 {
	if n <= 1 {
		return nil
	}

	d := make([]float64, len(distMatrix))
	copy(d, distMatrix)
	size := make([]int, n)
	for i := range size {
		size[i] = 1
	}

	edges := make([][3]float64, 0, n-1)
	chain := make([]int, 0, n)

	for k := 0; k < n-1; k++ {
		if len(chain) == 0 {
			for i := 0; i < n; i++ {
				if size[i] > 0 {
					chain = append(chain, i)
					break
				}
			}
		}

		var x, y int
		var height float64
		for {
			x = chain[len(chain)-1]
			y = -1
			height = math.Inf(1)
			// Prefer the previous chain element on ties so the chain
			// terminates on reciprocal nearest neighbours.
			if len(chain) > 1 {
				y = chain[len(chain)-2]
				height = d[x*n+y]
			}
			for i := 0; i < n; i++ {
				if size[i] == 0 || i == x {
					continue
				}
				if v := d[x*n+i]; v < height {
					height = v
					y = i
				}
			}
			if y == -1 {
				// Every remaining distance is +Inf or NaN: join the
				// lowest live slot so the dendrogram stays complete.
				for i := 0; i < n; i++ {
					if size[i] > 0 && i != x {
						y = i
						height = d[x*n+i]
						break
					}
				}
			}
			if len(chain) > 1 && y == chain[len(chain)-2] {
				break
			}
			chain = append(chain, y)
		}
		chain = chain[:len(chain)-2]

		if x > y {
			x, y = y, x
		}
		edges = append(edges, [3]float64{float64(x), float64(y), height})

		nx, ny := float64(size[x]), float64(size[y])
		size[y] += size[x]
		size[x] = 0
		for i := 0; i < n; i++ {
			if size[i] == 0 || i == y {
				continue
			}
			v := (nx*d[x*n+i] + ny*d[y*n+i]) / (nx + ny)
			d[y*n+i] = v
			d[i*n+y] = v
		}
	}

	return edges
}
