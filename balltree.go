package constraintprop

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// BallTree is a ball tree SpatialIndex. Each node stores the centroid of its
// points and the radius of the smallest centroid-centred ball enclosing
// them, so it stays effective in dimensions where KD-tree boxes are loose.
//
// The tree uses the same array layout as KDTree: node i has children at
// 2*i+1 and 2*i+2.
type BallTree struct {
	data     []float64 // flat row-major point data (n * dims)
	n        int
	dims     int
	leafSize int
	metric   DistanceMetric
	idxArray []int // tree-order position → original index
	nodes    []NodeData
	radii    []float64
	// centroids[node*dims .. (node+1)*dims) = centroid of node
	centroids []float64
}

// NewBallTree builds a ball tree over flat row-major data with n points of
// dimensionality dims. leafSize bounds the points per leaf.
func NewBallTree(data []float64, n, dims int, metric DistanceMetric, leafSize int) *BallTree {
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
	t := &BallTree{
		data:      dataCopy,
		n:         n,
		dims:      dims,
		leafSize:  leafSize,
		metric:    metric,
		idxArray:  idxArray,
		nodes:     make([]NodeData, maxNodes),
		radii:     make([]float64, maxNodes),
		centroids: make([]float64, maxNodes*dims),
	}
	if n > 0 {
		t.buildNode(0, 0, n)
	}
	return t
}

func (t *BallTree) point(i int) []float64 {
	return t.data[i*t.dims : (i+1)*t.dims]
}

func (t *BallTree) centroid(node int) []float64 {
	return t.centroids[node*t.dims : (node+1)*t.dims]
}

// buildNode recursively builds the subtree for idxArray[start:end].
func (t *BallTree) buildNode(nodeID, start, end int) {
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, NodeData{})
		t.radii = append(t.radii, 0)
		t.centroids = append(t.centroids, make([]float64, t.dims)...)
	}

	c := t.centroid(nodeID)
	for d := range c {
		c[d] = 0
	}
	for i := start; i < end; i++ {
		floats.Add(c, t.point(t.idxArray[i]))
	}
	floats.Scale(1/float64(end-start), c)

	var radius float64
	for i := start; i < end; i++ {
		radius = max(radius, t.metric.Distance(c, t.point(t.idxArray[i])))
	}
	t.radii[nodeID] = radius

	count := end - start
	if count <= t.leafSize {
		t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end, IsLeaf: true}
		return
	}

	t.sortByDimension(start, end, t.spreadDimension(start, end))
	mid := start + count/2

	t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end}
	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

// spreadDimension returns the feature with the widest range over
// idxArray[start:end].
func (t *BallTree) spreadDimension(start, end int) int {
	best, bestSpread := 0, -1.0
	col := make([]float64, end-start)
	for d := 0; d < t.dims; d++ {
		for i := start; i < end; i++ {
			col[i-start] = t.data[t.idxArray[i]*t.dims+d]
		}
		if spread := floats.Max(col) - floats.Min(col); spread > bestSpread {
			best, bestSpread = d, spread
		}
	}
	return best
}

func (t *BallTree) sortByDimension(start, end, dim int) {
	sub := t.idxArray[start:end]
	dims := t.dims
	data := t.data
	sort.SliceStable(sub, func(i, j int) bool {
		return data[sub[i]*dims+dim] < data[sub[j]*dims+dim]
	})
}

func (t *BallTree) NumPoints() int   { return t.n }
func (t *BallTree) NumFeatures() int { return t.dims }

// QueryKNN implements SpatialIndex.
func (t *BallTree) QueryKNN(queryData []float64, queryRows, k int) ([][]int, [][]float64) {
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

func (t *BallTree) knnSearch(nodeID int, query []float64, k int, h *knnHeap) {
	node := t.nodes[nodeID]
	if node.IsLeaf {
		for i := node.IdxStart; i < node.IdxEnd; i++ {
			pt := t.idxArray[i]
			pushBounded(h, knnItem{index: pt, dist: t.metric.Distance(query, t.point(pt))}, k)
		}
		return
	}

	left, right := 2*nodeID+1, 2*nodeID+2
	leftDist := t.minDistPoint(left, query)
	rightDist := t.minDistPoint(right, query)

	near, far := left, right
	farDist := rightDist
	if rightDist < leftDist {
		near, far = right, left
		farDist = leftDist
	}

	t.knnSearch(near, query, k, h)

	if h.Len() < k || (*h)[0].dist >= farDist {
		t.knnSearch(far, query, k, h)
	}
}

// minDistPoint returns a lower bound on the distance between point and any
// point inside node, from the triangle inequality.
func (t *BallTree) minDistPoint(node int, point []float64) float64 {
	return max(0, t.metric.Distance(point, t.centroid(node))-t.radii[node])
}
