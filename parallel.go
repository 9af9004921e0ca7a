package constraintprop

import (
	"golang.org/x/sync/errgroup"
)

// forEachRowBlock splits rows [0, n) into at most workers contiguous blocks
// and calls fn(start, end) for each block concurrently. fn must only write
// to state owned by its block. With workers <= 1 the call is sequential.
// It returns once every block has finished.
func forEachRowBlock(n, workers int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if workers <= 1 || n == 1 {
		fn(0, n)
		return
	}

	rowsPerWorker := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += rowsPerWorker {
		start := start // per-iteration copy (go directive is < 1.22)
		end := min(start+rowsPerWorker, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait() // blocks never fail
}

// ComputePairwiseDistancesParallel computes the full n×n distance matrix
// using up to numWorkers goroutines. data is flat row-major with n rows and
// dims columns. The result is bitwise identical to ComputePairwiseDistances.
func ComputePairwiseDistancesParallel(data []float64, n, dims int, metric DistanceMetric, numWorkers int) []float64 {
	if numWorkers <= 1 || n <= 1 {
		return ComputePairwiseDistances(data, n, dims, metric)
	}

	result := make([]float64, n*n)

	// Each block owns rows [start, end) and writes dist(i, j) for j > i into
	// both triangles. Cell (j, i) with j > i is only written by the block
	// owning row i, so no two blocks touch the same cell.
	forEachRowBlock(n, numWorkers, func(start, end int) {
		for i := start; i < end; i++ {
			for j := i + 1; j < n; j++ {
				d := metric.Distance(data[i*dims:(i+1)*dims], data[j*dims:(j+1)*dims])
				result[i*n+j] = d
				result[j*n+i] = d
			}
		}
	})

	return result
}
