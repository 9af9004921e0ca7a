package constraintprop

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// newTestGraph builds a NodeGraph directly from a similarity table and one
// centroid per node, with every population set to 1.
func newTestGraph(t *testing.T, sim [][]int, centroids [][]float64) *NodeGraph {
	t.Helper()
	m := len(sim)
	require.Len(t, centroids, m)
	dims := len(centroids[0])

	c := mat.NewDense(m, dims, nil)
	s := mat.NewSymDense(m, nil)
	pops := make([]int, m)
	live := make([]bool, m)
	for a := 0; a < m; a++ {
		c.SetRow(a, centroids[a])
		pops[a] = 1
		live[a] = true
		for b := a + 1; b < m; b++ {
			require.Equal(t, sim[a][b], sim[b][a], "test similarity must be symmetric")
			s.SetSym(a, b, float64(sim[a][b]))
		}
	}
	return &NodeGraph{centroids: c, populations: pops, sim: s, cl: mat.NewSymDense(m, nil), live: live, numLive: m}
}

// lineCentroids places m nodes at 0, 1, ..., m-1 on a line.
func lineCentroids(m int) [][]float64 {
	out := make([][]float64, m)
	for i := range out {
		out[i] = []float64{float64(i)}
	}
	return out
}

func TestBuildNodeGraph_CentroidsPopulationsSimilarity(t *testing.T) {
	// Samples 0..5 on a line; groups {0,1}, {2,3,4}, {5}.
	data := []float64{0, 2, 10, 11, 12, 40}
	store, err := NewConstraintStore([][3]int{
		{0, 1, 1},
		{2, 3, 1},
		{3, 4, 1},
		{0, 2, 1},
		{1, 3, 1},
		{1, 4, 0},
		{4, 5, 0},
	}, 6)
	require.NoError(t, err)

	agg := &Agglomeration{
		Samples:   []int{0, 1, 2, 3, 4, 5},
		Labels:    []int{0, 0, 1, 1, 1, 2},
		NumGroups: 3,
	}
	g, err := BuildNodeGraph(store, agg, data, 1, 1)
	require.NoError(t, err)

	assert.Equal(t, 3, g.NumNodes())
	assert.Equal(t, 3, g.NumLive())
	assert.Equal(t, 1, g.Dims())

	assert.Equal(t, []float64{1}, g.Centroid(0))
	assert.Equal(t, []float64{11}, g.Centroid(1))
	assert.Equal(t, []float64{40}, g.Centroid(2))

	assert.Equal(t, 2, g.Population(0))
	assert.Equal(t, 3, g.Population(1))
	assert.Equal(t, 1, g.Population(2))

	// Two must-links and one cannot-link between nodes 0 and 1.
	assert.Equal(t, 1, g.Similarity(0, 1))
	assert.Equal(t, 0, g.Similarity(0, 2))
	assert.Equal(t, -1, g.Similarity(1, 2))
	assert.Equal(t, 1, g.CannotLinks(0, 1))
	assert.Equal(t, 1, g.CannotLinks(2, 1))
	assert.Equal(t, 0, g.CannotLinks(0, 2))

	for a := 0; a < 3; a++ {
		assert.Equal(t, 0, g.Similarity(a, a))
		for b := 0; b < 3; b++ {
			assert.Equal(t, g.Similarity(a, b), g.Similarity(b, a))
		}
	}
}

func TestBuildNodeGraph_Degenerate(t *testing.T) {
	store, err := NewConstraintStore([][3]int{{0, 1, 1}}, 2)
	require.NoError(t, err)
	agg := &Agglomeration{Samples: []int{0, 1}, Labels: []int{0, 0}, NumGroups: 1}

	_, err = BuildNodeGraph(store, agg, []float64{0, 1}, 1, 1)
	require.ErrorIs(t, err, ErrDegenerateGraph)

	split := &Agglomeration{Samples: []int{0, 1}, Labels: []int{0, 1}, NumGroups: 2}
	_, err = BuildNodeGraph(store, split, []float64{0, 1}, 0, 1)
	require.ErrorIs(t, err, ErrInvalidData)
}

func TestBuildNodeGraph_WorkersDoNotChangeResult(t *testing.T) {
	n, dims := 120, 2
	data := generateFlatData(n, dims)
	store, err := NewConstraintStore(randomConstraints(rand.New(rand.NewSource(3)), n, 200), n)
	require.NoError(t, err)

	// One node per constrained sample maximises the pair pass.
	samples := store.Samples()
	labels := make([]int, len(samples))
	for i := range labels {
		labels[i] = i
	}
	agg := &Agglomeration{Samples: samples, Labels: labels, NumGroups: len(samples)}

	base, err := BuildNodeGraph(store, agg, data, dims, 1)
	require.NoError(t, err)
	for _, workers := range []int{2, 4, 16} {
		g, err := BuildNodeGraph(store, agg, data, dims, workers)
		require.NoError(t, err)
		assert.True(t, mat.Equal(base.sim, g.sim), "workers=%d", workers)
		assert.True(t, mat.Equal(base.cl, g.cl), "workers=%d", workers)
		assert.True(t, mat.Equal(base.centroids, g.centroids), "workers=%d", workers)
	}
}

func TestNodeGraph_SnapshotIsIndependent(t *testing.T) {
	g := newTestGraph(t, [][]int{
		{0, 2, 0},
		{2, 0, 1},
		{0, 1, 0},
	}, lineCentroids(3))

	snap := g.Snapshot()
	g.absorb(0, 1)

	assert.Equal(t, 2.0, snap.Similarity.At(0, 1))
	assert.Equal(t, []int{1, 1, 1}, snap.Populations)
	assert.Equal(t, 0, g.Similarity(0, 1))
	assert.Equal(t, 2, g.Population(0))
}

func TestNodeGraph_Absorb(t *testing.T) {
	g := newTestGraph(t, [][]int{
		{0, 3, -1, 0},
		{3, 0, 1, 2},
		{-1, 1, 0, 0},
		{0, 2, 0, 0},
	}, lineCentroids(4))

	g.absorb(0, 1)

	assert.False(t, g.IsLive(1))
	assert.Equal(t, 3, g.NumLive())
	assert.Equal(t, 0, g.Similarity(0, 0))
	assert.Equal(t, 0, g.Similarity(0, 2))
	assert.Equal(t, 2, g.Similarity(0, 3))
	assert.Equal(t, 2, g.Similarity(3, 0))
	for j := 0; j < 4; j++ {
		assert.Equal(t, 0, g.Similarity(1, j), "absorbed row must be cleared")
	}
	assert.Equal(t, 2, g.Population(0))
}

func TestNodeGraph_StrongestPair(t *testing.T) {
	g := newTestGraph(t, [][]int{
		{0, -2, -1},
		{-2, 0, -1},
		{-1, -1, 0},
	}, lineCentroids(3))

	row, col, v, ok := g.strongestPair(false)
	require.True(t, ok)
	assert.Equal(t, [3]int{0, 2, -1}, [3]int{row, col, v})

	g.absorb(0, 2)
	g.absorb(0, 1)
	_, _, _, ok = g.strongestPair(false)
	assert.False(t, ok)
}

func TestNodeGraph_StrongestPairSkipsCannotLinkedNodes(t *testing.T) {
	g := newTestGraph(t, [][]int{
		{0, 3, 1},
		{3, 0, 0},
		{1, 0, 0},
	}, lineCentroids(3))
	g.cl.SetSym(0, 1, 1)

	row, col, v, ok := g.strongestPair(true)
	require.True(t, ok)
	assert.Equal(t, [3]int{0, 2, 1}, [3]int{row, col, v})

	// Node 0 inherits 2's links; 1 was already cannot-linked to 0.
	g.absorb(0, 2)
	assert.Equal(t, 1, g.CannotLinks(0, 1))
	_, _, _, ok = g.strongestPair(true)
	assert.False(t, ok)
}
