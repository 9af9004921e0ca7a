package constraintprop

import (
	"fmt"
	"math"
)

// Merge is one step of a dendrogram: virtual nodes Left and Right join at
// Height into a cluster of Size original points. Indices below N are
// original samples; index N+i is the cluster produced by merge i.
type Merge struct {
	Left, Right int
	Height      float64
	Size        int
}

// Dendrogram is the ordered merge sequence of a hierarchical clustering of
// N samples. A complete dendrogram has exactly N-1 merges, and every merge
// only references samples or clusters produced by earlier merges.
type Dendrogram struct {
	N      int
	Merges []Merge
}

// DendrogramFromLinkage builds a Dendrogram from scipy-format linkage rows
// ([left, right, height, size]), as returned by Label or by an external
// clustering library. The result is validated against n.
func DendrogramFromLinkage(rows [][4]float64, n int) (*Dendrogram, error) {
	d := &Dendrogram{N: n, Merges: make([]Merge, len(rows))}
	for i, r := range rows {
		left, right := r[0], r[1]
		if left != math.Trunc(left) || right != math.Trunc(right) {
			return nil, fmt.Errorf("%w: merge %d has non-integer child (%g, %g)",
				ErrDendrogramMismatch, i, left, right)
		}
		d.Merges[i] = Merge{Left: int(left), Right: int(right), Height: r[2], Size: int(r[3])}
	}
	if err := d.Validate(n); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks that d describes exactly n samples: N == n, there are n-1
// merges, and each merge consumes two distinct virtual nodes that already
// exist and have not been consumed before.
func (d *Dendrogram) Validate(n int) error {
	if d == nil {
		return fmt.Errorf("%w: nil dendrogram", ErrDendrogramMismatch)
	}
	if d.N != n {
		return fmt.Errorf("%w: dendrogram has %d samples, data has %d", ErrDendrogramMismatch, d.N, n)
	}
	want := max(n-1, 0)
	if len(d.Merges) != want {
		return fmt.Errorf("%w: dendrogram has %d merges, want %d", ErrDendrogramMismatch, len(d.Merges), want)
	}

	used := make([]bool, 2*n)
	for i, m := range d.Merges {
		limit := n + i
		for _, c := range [2]int{m.Left, m.Right} {
			if c < 0 || c >= limit {
				return fmt.Errorf("%w: merge %d references node %d, valid range is [0, %d)",
					ErrDendrogramMismatch, i, c, limit)
			}
			if used[c] {
				return fmt.Errorf("%w: merge %d reuses node %d", ErrDendrogramMismatch, i, c)
			}
		}
		if m.Left == m.Right {
			return fmt.Errorf("%w: merge %d joins node %d with itself", ErrDendrogramMismatch, i, m.Left)
		}
		used[m.Left] = true
		used[m.Right] = true
	}
	return nil
}

// Linkage returns the merges in scipy linkage format.
func (d *Dendrogram) Linkage() [][4]float64 {
	rows := make([][4]float64, len(d.Merges))
	for i, m := range d.Merges {
		rows[i] = [4]float64{float64(m.Left), float64(m.Right), m.Height, float64(m.Size)}
	}
	return rows
}

// Leaves returns the original sample indices under virtual node v, in
// left-to-right order.
func (d *Dendrogram) Leaves(v int) []int {
	var out []int
	stack := []int{v}
	for len(stack) > 0 {
		x := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if x < d.N {
			out = append(out, x)
			continue
		}
		m := d.Merges[x-d.N]
		stack = append(stack, m.Right, m.Left)
	}
	return out
}
