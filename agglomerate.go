package constraintprop

import "fmt"

// Agglomeration is the CL-respecting grouping of the constrained samples
// obtained by walking a dendrogram from the leaves to the root.
type Agglomeration struct {
	// Samples is the constrained-sample set, sorted ascending.
	Samples []int
	// Labels[i] is the working label of Samples[i], dense in [0, NumGroups)
	// and numbered by first appearance.
	Labels []int
	// NumGroups is the number of distinct working labels.
	NumGroups int
	// Rejected counts merges whose label union was skipped because the
	// merged subtree contained a cannot-link pair.
	Rejected int
}

// Agglomerate walks d in merge order. Each merge is accepted at the
// geometric level (its constrained members are remembered for later
// ancestors), but the working labels of the two subtrees are only unified
// when the merged subtree contains no cannot-link pair. Two cannot-linked
// samples therefore never share a label.
func Agglomerate(store *ConstraintStore, d *Dendrogram) (*Agglomeration, error) {
	return agglomerate(store, d, nil)
}

// agglomerate is Agglomerate with an optional hook called after every merge
// step with the merge index and the current grouping.
func agglomerate(store *ConstraintStore, d *Dendrogram, observe func(step int, groups *UnionFind)) (*Agglomeration, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: nil dendrogram", ErrDendrogramMismatch)
	}
	n := d.N
	if err := d.Validate(n); err != nil {
		return nil, err
	}
	samples := store.Samples()
	if len(samples) > 0 && samples[len(samples)-1] >= n {
		return nil, fmt.Errorf("%w: constraint references sample %d, dendrogram has %d samples",
			ErrDendrogramMismatch, samples[len(samples)-1], n)
	}

	// members[v] holds the constrained samples under virtual node v. Each
	// child is consumed exactly once, so its slice is released on merge.
	members := make([][]int, max(2*n-1, 1))
	for _, s := range samples {
		members[s] = []int{s}
	}
	// violated[v] marks subtrees already known to hold a cannot-link pair;
	// every ancestor of such a subtree holds it too.
	violated := make([]bool, len(members))

	groups := NewUnionFind(n)
	rejected := 0

	for i, m := range d.Merges {
		parent := n + i
		a, b := members[m.Left], members[m.Right]
		joined := make([]int, 0, len(a)+len(b))
		joined = append(joined, a...)
		joined = append(joined, b...)
		members[parent] = joined
		members[m.Left], members[m.Right] = nil, nil

		switch {
		case violated[m.Left] || violated[m.Right]:
			violated[parent] = true
			if len(a) > 0 && len(b) > 0 {
				rejected++
			}
		case len(a) == 0 || len(b) == 0:
			// Nothing constrained on one side; no labels to unify.
		case store.IsCLViolated(joined):
			violated[parent] = true
			rejected++
		default:
			for _, s := range joined[1:] {
				groups.Union(joined[0], s)
			}
		}

		if observe != nil {
			observe(i, groups)
		}
	}

	roots := make([]int, len(samples))
	for i, s := range samples {
		roots[i] = groups.Find(s)
	}
	labels, numGroups := denseLabels(roots)

	return &Agglomeration{
		Samples:   samples,
		Labels:    labels,
		NumGroups: numGroups,
		Rejected:  rejected,
	}, nil
}

// Groups returns the members of each working label, indexed by label.
func (a *Agglomeration) Groups() [][]int {
	out := make([][]int, a.NumGroups)
	for i, l := range a.Labels {
		out[l] = append(out[l], a.Samples[i])
	}
	return out
}
