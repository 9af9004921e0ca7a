package constraintprop

import "sort"

// Label converts spanning-tree or merge edges into a dendrogram in scipy
// linkage format. edges is [][3]float64 where each edge is [a, b, height]
// and a, b are original point indices (any member of the clusters being
// joined). Returns [][4]float64 rows: [left, right, height, mergedSize],
// where merged cluster IDs start at n and increment.
//
// Edges are stably sorted by height, so equal-height merges keep their input
// order and the output is deterministic.
func Label(edges [][3]float64, n int) [][4]float64 {
	if len(edges) == 0 {
		return nil
	}

	sorted := make([][3]float64, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i][2] < sorted[j][2]
	})

	uf := newLinkageUnionFind(n)
	result := make([][4]float64, 0, len(sorted))

	for _, edge := range sorted {
		aa := uf.Find(int(edge[0]))
		bb := uf.Find(int(edge[1]))
		newSize := uf.size[aa] + uf.size[bb]
		result = append(result, [4]float64{float64(aa), float64(bb), edge[2], float64(newSize)})
		uf.relabel(aa, bb)
	}

	return result
}
