package constraintprop

import "fmt"

// TranslateLabels maps each working label through the node partition:
// out[i] = nodeLabels[working[i]]. Samples whose nodes ended up in the same
// final group receive equal labels.
func TranslateLabels(working, nodeLabels []int) ([]int, error) {
	out := make([]int, len(working))
	for i, l := range working {
		if l < 0 || l >= len(nodeLabels) {
			return nil, fmt.Errorf("%w: working label %d has no node (have %d nodes)", ErrInvalidData, l, len(nodeLabels))
		}
		out[i] = nodeLabels[l]
	}
	return out, nil
}

// denseLabels renumbers arbitrary integer labels to [0, k) in order of first
// appearance and returns the new labels with k.
func denseLabels(raw []int) ([]int, int) {
	ids := make(map[int]int)
	out := make([]int, len(raw))
	for i, v := range raw {
		id, ok := ids[v]
		if !ok {
			id = len(ids)
			ids[v] = id
		}
		out[i] = id
	}
	return out, len(ids)
}
