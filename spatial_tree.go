package constraintprop

import (
	"container/heap"
)

// NodeData describes a single node in a KD-tree.
type NodeData struct {
	IdxStart, IdxEnd int
	IsLeaf           bool
}

// SpatialIndex answers k-nearest-neighbour queries over a fixed point set.
type SpatialIndex interface {
	// QueryKNN finds the k nearest indexed points for each row of queryData
	// (flat row-major, queryRows rows). Results are sorted by distance,
	// ascending, with ties broken by lower point index.
	QueryKNN(queryData []float64, queryRows, k int) (indices [][]int, distances [][]float64)

	// NumPoints returns the number of indexed points.
	NumPoints() int

	// NumFeatures returns the dimensionality of each point.
	NumFeatures() int
}

// BruteIndex is a SpatialIndex that scans every point. It accepts any
// metric, including ones that do not decompose along coordinate axes.
type BruteIndex struct {
	data   []float64
	n      int
	dims   int
	metric DistanceMetric
}

// NewBruteIndex indexes flat row-major data with n rows and dims columns.
func NewBruteIndex(data []float64, n, dims int, metric DistanceMetric) *BruteIndex {
	return &BruteIndex{data: data, n: n, dims: dims, metric: metric}
}

func (b *BruteIndex) NumPoints() int   { return b.n }
func (b *BruteIndex) NumFeatures() int { return b.dims }

// QueryKNN implements SpatialIndex.
func (b *BruteIndex) QueryKNN(queryData []float64, queryRows, k int) ([][]int, [][]float64) {
	indices := make([][]int, queryRows)
	distances := make([][]float64, queryRows)
	for q := 0; q < queryRows; q++ {
		query := queryData[q*b.dims : (q+1)*b.dims]
		h := &knnHeap{}
		for i := 0; i < b.n; i++ {
			pushBounded(h, knnItem{index: i, dist: b.metric.Distance(query, b.data[i*b.dims:(i+1)*b.dims])}, k)
		}
		indices[q], distances[q] = drainHeap(h)
	}
	return indices, distances
}

// --- bounded max-heap for KNN queries ---

type knnItem struct {
	index int
	dist  float64
}

// worse reports whether a ranks after b: larger distance, then larger index.
func (a knnItem) worse(b knnItem) bool {
	if a.dist != b.dist {
		return a.dist > b.dist
	}
	return a.index > b.index
}

// knnHeap is a max-heap of knnItem (worst candidate on top) used as a
// bounded priority queue.
type knnHeap []knnItem

func (h knnHeap) Len() int            { return len(h) }
func (h knnHeap) Less(i, j int) bool  { return h[i].worse(h[j]) }
func (h knnHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *knnHeap) Push(x interface{}) { *h = append(*h, x.(knnItem)) }
func (h *knnHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// pushBounded offers item to a heap holding at most k candidates.
func pushBounded(h *knnHeap, item knnItem, k int) {
	if k <= 0 {
		return
	}
	if h.Len() < k {
		heap.Push(h, item)
	} else if (*h)[0].worse(item) {
		(*h)[0] = item
		heap.Fix(h, 0)
	}
}

// drainHeap empties h into slices sorted best-first.
func drainHeap(h *knnHeap) ([]int, []float64) {
	n := h.Len()
	idx := make([]int, n)
	dist := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		item := heap.Pop(h).(knnItem)
		idx[i] = item.index
		dist[i] = item.dist
	}
	return idx, dist
}
