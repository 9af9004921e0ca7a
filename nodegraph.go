package constraintprop

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NodeGraph is the compressed graph-cut problem: one vertex per working
// label, weighted by net constraint agreement.
//
// Similarity is held in a symmetric matrix, so sim(a, b) == sim(b, a) holds
// by construction, and the diagonal is kept at zero. A second symmetric
// matrix counts the cannot-link edges between nodes so the cut can refuse
// any pair that holds one.
// Vertices absorbed by the greedy cut are tombstoned rather than removed:
// they keep their index but are never offered as a merge candidate again.
type NodeGraph struct {
	centroids   *mat.Dense // numNodes × dims
	populations []int
	sim         *mat.SymDense
	cl          *mat.SymDense
	live        []bool
	numLive     int
}

// BuildNodeGraph collapses each working label of agg into a node with its
// centroid and population, and sets sim(a, b) to the number of must-link
// edges minus the number of cannot-link edges between nodes a and b.
//
// data is flat row-major with dims columns. The O(M²) pair pass is spread
// over up to workers goroutines; the result does not depend on workers.
// Returns ErrDegenerateGraph when agg has fewer than two groups.
func BuildNodeGraph(store *ConstraintStore, agg *Agglomeration, data []float64, dims, workers int) (*NodeGraph, error) {
	m := agg.NumGroups
	if m < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrDegenerateGraph, m)
	}
	if dims < 1 {
		return nil, fmt.Errorf("%w: node centroids need at least one feature, got %d", ErrInvalidData, dims)
	}

	groups := agg.Groups()

	centroids := mat.NewDense(m, dims, nil)
	populations := make([]int, m)
	row := make([]float64, dims)
	for l, members := range groups {
		for i := range row {
			row[i] = 0
		}
		for _, s := range members {
			floats.Add(row, data[s*dims:(s+1)*dims])
		}
		floats.Scale(1/float64(len(members)), row)
		centroids.SetRow(l, row)
		populations[l] = len(members)
	}

	// upper[a][b-a-1] holds the (ML, CL) counts of (a, b) for b > a. Each
	// block owns its rows.
	upper := make([][][2]int, m)
	forEachRowBlock(m, workers, func(start, end int) {
		for a := start; a < end; a++ {
			vals := make([][2]int, m-a-1)
			for b := a + 1; b < m; b++ {
				vals[b-a-1] = [2]int{
					store.ConstraintCount(groups[a], groups[b], MustLink),
					store.ConstraintCount(groups[a], groups[b], CannotLink),
				}
			}
			upper[a] = vals
		}
	})

	sim := mat.NewSymDense(m, nil)
	cl := mat.NewSymDense(m, nil)
	for a, vals := range upper {
		for off, v := range vals {
			sim.SetSym(a, a+1+off, float64(v[0]-v[1]))
			cl.SetSym(a, a+1+off, float64(v[1]))
		}
	}

	live := make([]bool, m)
	for i := range live {
		live[i] = true
	}

	return &NodeGraph{
		centroids:   centroids,
		populations: populations,
		sim:         sim,
		cl:          cl,
		live:        live,
		numLive:     m,
	}, nil
}

// NumNodes returns the number of vertices, including tombstoned ones.
func (g *NodeGraph) NumNodes() int { return len(g.live) }

// NumLive returns the number of vertices not yet absorbed.
func (g *NodeGraph) NumLive() int { return g.numLive }

// IsLive reports whether vertex a has not been absorbed.
func (g *NodeGraph) IsLive(a int) bool { return g.live[a] }

// Similarity returns the net constraint agreement between a and b.
func (g *NodeGraph) Similarity(a, b int) int { return int(g.sim.At(a, b)) }

// CannotLinks returns the number of cannot-link edges between a and b.
func (g *NodeGraph) CannotLinks(a, b int) int { return int(g.cl.At(a, b)) }

// Population returns the number of constrained samples in node a, counting
// the samples of every node it has absorbed.
func (g *NodeGraph) Population(a int) int { return g.populations[a] }

// Centroid returns a copy of node a's mean feature vector.
func (g *NodeGraph) Centroid(a int) []float64 {
	return mat.Row(nil, a, g.centroids)
}

// Dims returns the feature dimensionality of the centroids.
func (g *NodeGraph) Dims() int {
	_, c := g.centroids.Dims()
	return c
}

// Snapshot copies the current centroids, populations and similarity matrix.
func (g *NodeGraph) Snapshot() *GraphCutProblem {
	return &GraphCutProblem{
		Centroids:   mat.DenseCopyOf(g.centroids),
		Populations: append([]int(nil), g.populations...),
		Similarity:  copySym(g.sim),
		CannotLinks: copySym(g.cl),
	}
}

func copySym(s *mat.SymDense) *mat.SymDense {
	out := mat.NewSymDense(s.SymmetricDim(), nil)
	out.CopySym(s)
	return out
}

// flatCentroids returns the centroids as flat row-major data.
func (g *NodeGraph) flatCentroids() []float64 {
	r, c := g.centroids.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, g.centroids.RawRowView(i)...)
	}
	return out
}

// strongestPair returns the live pair (row < col) with the largest
// similarity, skipping pairs with a cannot-link when hardCannotLinks is set. Pairs are scanned row-major over the upper triangle
// and only a strictly larger value replaces the current best, so the first
// maximum in that order wins ties. ok is false when no such pair exists.
func (g *NodeGraph) strongestPair(hardCannotLinks bool) (row, col, value int, ok bool) {
	n := len(g.live)
	best := 0.0
	for a := 0; a < n; a++ {
		if !g.live[a] {
			continue
		}
		for b := a + 1; b < n; b++ {
			if !g.live[b] || (hardCannotLinks && g.cl.At(a, b) > 0) {
				continue
			}
			v := g.sim.At(a, b)
			if !ok || v > best {
				row, col, best, ok = a, b, v, true
			}
		}
	}
	return row, col, int(best), ok
}

// absorb merges vertex col into vertex row: row's similarities and
// cannot-link counts become the sum of both, the diagonal stays zero, and
// col is tombstoned.
func (g *NodeGraph) absorb(row, col int) {
	n := len(g.live)
	for j := 0; j < n; j++ {
		if j == row || j == col || !g.live[j] {
			continue
		}
		g.sim.SetSym(row, j, g.sim.At(row, j)+g.sim.At(col, j))
		g.cl.SetSym(row, j, g.cl.At(row, j)+g.cl.At(col, j))
	}
	for j := 0; j < n; j++ {
		g.sim.SetSym(col, j, 0)
		g.cl.SetSym(col, j, 0)
	}
	g.sim.SetSym(row, row, 0)
	g.cl.SetSym(row, row, 0)
	g.populations[row] += g.populations[col]
	g.live[col] = false
	g.numLive--
}

// GraphCutProblem is an immutable copy of a NodeGraph, suitable for
// inspection or plotting by callers.
type GraphCutProblem struct {
	Centroids   *mat.Dense
	Populations []int
	Similarity  *mat.SymDense
	CannotLinks *mat.SymDense
}
