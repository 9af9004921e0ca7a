package constraintprop

// UnionFind is a disjoint-set forest with path compression and union by
// size. Groups of samples during agglomeration and absorbed nodes during the
// greedy cut are both tracked with it, so the partition invariant holds by
// construction: every element belongs to exactly one set at all times.
type UnionFind struct {
	parent []int // -1 marks a root
	size   []int
	sets   int
	// next is the ID handed out by relabel; only used when building
	// dendrograms, where merged clusters take IDs n, n+1, ...
	next int
}

// NewUnionFind creates n singleton sets {0}, {1}, ..., {n-1}.
func NewUnionFind(n int) *UnionFind {
	return newUnionFind(n, n)
}

// newLinkageUnionFind creates a UnionFind over n points with room for the
// n-1 merged cluster IDs (n..2n-2) of a scipy-style dendrogram.
func newLinkageUnionFind(n int) *UnionFind {
	total := 2*n - 1
	if total < 1 {
		total = 1
	}
	return newUnionFind(n, total)
}

func newUnionFind(n, capacity int) *UnionFind {
	uf := &UnionFind{
		parent: make([]int, capacity),
		size:   make([]int, capacity),
		sets:   n,
		next:   n,
	}
	for i := range uf.parent {
		uf.parent[i] = -1
	}
	for i := 0; i < n; i++ {
		uf.size[i] = 1
	}
	return uf
}

// Find returns the root of the set containing x, compressing the path.
func (uf *UnionFind) Find(x int) int {
	root := x
	for uf.parent[root] != -1 {
		root = uf.parent[root]
	}
	for uf.parent[x] != -1 {
		x, uf.parent[x] = uf.parent[x], root
	}
	return root
}

// Union merges the sets containing x and y, attaching the smaller tree under
// the larger, and returns the new root.
func (uf *UnionFind) Union(x, y int) int {
	rootX := uf.Find(x)
	rootY := uf.Find(y)
	if rootX == rootY {
		return rootX
	}
	if uf.size[rootX] < uf.size[rootY] {
		rootX, rootY = rootY, rootX
	}
	uf.parent[rootY] = rootX
	uf.size[rootX] += uf.size[rootY]
	uf.sets--
	return rootX
}

// Connected reports whether x and y are in the same set.
func (uf *UnionFind) Connected(x, y int) bool { return uf.Find(x) == uf.Find(y) }

// SetSize returns the number of elements in the set containing x.
func (uf *UnionFind) SetSize(x int) int { return uf.size[uf.Find(x)] }

// Sets returns the current number of disjoint sets.
func (uf *UnionFind) Sets() int { return uf.sets }

// relabel joins roots a and b under a fresh dendrogram cluster ID and
// returns that ID. Both arguments must be roots.
func (uf *UnionFind) relabel(a, b int) int {
	id := uf.next
	uf.size[id] = uf.size[a] + uf.size[b]
	uf.parent[a] = id
	uf.parent[b] = id
	uf.next++
	uf.sets--
	return id
}
