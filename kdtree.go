package constraintprop

import (
	"math"
	"sort"
)

// KDTree is a KD-tree SpatialIndex. Points are stored in a flat row-major
// array and reordered internally through an index permutation.
//
// The tree is stored as a complete binary tree in array form:
//   - node i has children at 2*i+1 and 2*i+2
//   - node bounds are stored as min/max per dimension per node
type KDTree struct {
	data     []float64 // flat row-major point data (n * dims)
	n        int
	dims     int
	leafSize int
	metric   DistanceMetric
	idxArray []int // tree-order position → original index
	nodes    []NodeData
	// nodeBoundsMin[node*dims + j] = min value of feature j in node
	nodeBoundsMin []float64
	// nodeBoundsMax[node*dims + j] = max value of feature j in node
	nodeBoundsMax []float64
}

// KDTreeValidMetric reports whether the metric supports KD-tree pruning.
// KD-trees need metrics that decompose along coordinate axes.
func KDTreeValidMetric(m DistanceMetric) bool {
	switch m.(type) {
	case EuclideanMetric, ManhattanMetric, ChebyshevMetric, MinkowskiMetric:
		return true
	default:
		return false
	}
}

// NewKDTree builds a KD-tree over flat row-major data with n points of
// dimensionality dims. leafSize bounds the points per leaf.
func NewKDTree(data []float64, n, dims int, metric DistanceMetric, leafSize int) *KDTree {
	if leafSize < 1 {
		leafSize = 1
	}

	dataCopy := make([]float64, len(data))
	copy(dataCopy, data)
	idxArray := make([]int, n)
	for i := range idxArray {
		idxArray[i] = i
	}

	maxNodes := kdMaxNodes(n, leafSize)
	t := &KDTree{
		data:          dataCopy,
		n:             n,
		dims:          dims,
		leafSize:      leafSize,
		metric:        metric,
		idxArray:      idxArray,
		nodes:         make([]NodeData, maxNodes),
		nodeBoundsMin: make([]float64, maxNodes*dims),
		nodeBoundsMax: make([]float64, maxNodes*dims),
	}
	if n > 0 {
		t.buildNode(0, 0, n)
	}
	return t
}

// kdMaxNodes returns an upper bound on the number of nodes needed for a
// binary tree with n points and the given leaf size.
func kdMaxNodes(n, leafSize int) int {
	if n == 0 {
		return 1
	}
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	for v := 1; v < leaves; v *= 2 {
		depth++
	}
	return (1 << (depth + 1)) - 1 + 2
}

// buildNode recursively builds the subtree for idxArray[start:end].
func (t *KDTree) buildNode(nodeID, start, end int) {
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, NodeData{})
		t.nodeBoundsMin = append(t.nodeBoundsMin, make([]float64, t.dims)...)
		t.nodeBoundsMax = append(t.nodeBoundsMax, make([]float64, t.dims)...)
	}

	t.computeNodeBounds(nodeID, start, end)

	count := end - start
	if count <= t.leafSize {
		t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end, IsLeaf: true}
		return
	}

	// Split on the dimension with the greatest spread, at the median.
	splitDim := 0
	maxSpread := -1.0
	for d := 0; d < t.dims; d++ {
		spread := t.nodeBoundsMax[nodeID*t.dims+d] - t.nodeBoundsMin[nodeID*t.dims+d]
		if spread > maxSpread {
			maxSpread = spread
			splitDim = d
		}
	}
	t.sortByDimension(start, end, splitDim)
	mid := start + count/2

	t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end}
	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

func (t *KDTree) computeNodeBounds(nodeID, start, end int) {
	base := nodeID * t.dims
	for d := 0; d < t.dims; d++ {
		t.nodeBoundsMin[base+d] = math.Inf(1)
		t.nodeBoundsMax[base+d] = math.Inf(-1)
	}
	for i := start; i < end; i++ {
		pt := t.idxArray[i]
		for d := 0; d < t.dims; d++ {
			v := t.data[pt*t.dims+d]
			t.nodeBoundsMin[base+d] = math.Min(t.nodeBoundsMin[base+d], v)
			t.nodeBoundsMax[base+d] = math.Max(t.nodeBoundsMax[base+d], v)
		}
	}
}

// sortByDimension sorts idxArray[start:end] by the given dimension. The sort
// is stable so equal coordinates keep index order and builds are repeatable.
func (t *KDTree) sortByDimension(start, end, dim int) {
	sub := t.idxArray[start:end]
	dims := t.dims
	data := t.data
	sort.SliceStable(sub, func(i, j int) bool {
		return data[sub[i]*dims+dim] < data[sub[j]*dims+dim]
	})
}

func (t *KDTree) NumPoints() int   { return t.n }
func (t *KDTree) NumFeatures() int { return t.dims }

// QueryKNN implements SpatialIndex.
func (t *KDTree) QueryKNN(queryData []float64, queryRows, k int) ([][]int, [][]float64) {
	indices := make([][]int, queryRows)
	distances := make([][]float64, queryRows)
	for q := 0; q < queryRows; q++ {
		query := queryData[q*t.dims : (q+1)*t.dims]
		h := &knnHeap{}
		if t.n > 0 {
			t.knnSearch(0, query, k, h)
		}
		indices[q], distances[q] = drainHeap(h)
	}
	return indices, distances
}

// knnSearch visits the nearer child first and prunes the farther one when
// its lower bound cannot beat the current k-th candidate.
func (t *KDTree) knnSearch(nodeID int, query []float64, k int, h *knnHeap) {
	node := t.nodes[nodeID]
	if node.IsLeaf {
		for i := node.IdxStart; i < node.IdxEnd; i++ {
			pt := t.idxArray[i]
			d := t.metric.Distance(query, t.data[pt*t.dims:(pt+1)*t.dims])
			pushBounded(h, knnItem{index: pt, dist: d}, k)
		}
		return
	}

	left, right := 2*nodeID+1, 2*nodeID+2
	leftRdist := t.minRdistPoint(left, query)
	rightRdist := t.minRdistPoint(right, query)

	near, far := left, right
	farRdist := rightRdist
	if rightRdist < leftRdist {
		near, far = right, left
		farRdist = leftRdist
	}

	t.knnSearch(near, query, k, h)

	// >= keeps equal-distance candidates reachable for the index tie-break.
	if h.Len() < k || t.metric.DistToRdist((*h)[0].dist) >= farRdist {
		t.knnSearch(far, query, k, h)
	}
}

// minRdistPoint returns a lower bound, in reduced-distance space, on the
// distance between point and any point inside node.
func (t *KDTree) minRdistPoint(node int, point []float64) float64 {
	base := node * t.dims
	gap := func(j int) float64 {
		lo, hi := t.nodeBoundsMin[base+j], t.nodeBoundsMax[base+j]
		switch {
		case point[j] < lo:
			return lo - point[j]
		case point[j] > hi:
			return point[j] - hi
		}
		return 0
	}

	var rdist float64
	switch m := t.metric.(type) {
	case ChebyshevMetric:
		for j := 0; j < t.dims; j++ {
			rdist = math.Max(rdist, gap(j))
		}
	case MinkowskiMetric:
		for j := 0; j < t.dims; j++ {
			rdist += math.Pow(gap(j), m.P)
		}
	case ManhattanMetric:
		for j := 0; j < t.dims; j++ {
			rdist += gap(j)
		}
	default:
		for j := 0; j < t.dims; j++ {
			g := gap(j)
			rdist += g * g
		}
	}
	return rdist
}
