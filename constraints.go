package constraintprop

import (
	"fmt"
	"sort"
)

// Kind is the type of a pairwise constraint. The numeric values match the
// third column of a raw constraint table.
type Kind int

const (
	CannotLink Kind = 0
	MustLink   Kind = 1
)

func (k Kind) String() string {
	switch k {
	case CannotLink:
		return "cannot-link"
	case MustLink:
		return "must-link"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Constraint is an undirected pairwise constraint between samples A and B.
type Constraint struct {
	A, B int
	Kind Kind
}

// pairKey is the canonical (low, high) form of an undirected pair.
type pairKey [2]int

func makePairKey(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// ConstraintStore holds a validated, deduplicated set of must-link and
// cannot-link constraints with symmetric adjacency for both kinds. It is
// immutable after construction and safe for concurrent reads.
type ConstraintStore struct {
	// adj[kind][i] lists every j linked to i by kind, sorted ascending.
	adj   [2]map[int][]int
	pairs [2]map[pairKey]struct{}
	// samples is the sorted set of every index appearing in any row.
	samples []int
	// order holds each distinct edge once, in first-seen row order.
	order []Constraint
}

// NewConstraintStore builds a store from an m×3 table of (a, b, kind) rows,
// where kind is 0 for cannot-link and 1 for must-link. n is the number of
// samples in the dataset; indices must lie in [0, n). Pass n <= 0 to skip the
// upper bound check.
//
// Duplicate rows collapse into one edge. A must-link self pair marks the
// sample as constrained but adds no edge; a cannot-link self pair can never
// be satisfied and is rejected.
func NewConstraintStore(table [][3]int, n int) (*ConstraintStore, error) {
	if len(table) == 0 {
		return nil, ErrEmptyConstraintSet
	}

	s := &ConstraintStore{
		adj:   [2]map[int][]int{make(map[int][]int), make(map[int][]int)},
		pairs: [2]map[pairKey]struct{}{make(map[pairKey]struct{}), make(map[pairKey]struct{})},
	}
	seen := make(map[int]struct{})

	for row, r := range table {
		a, b, kind := r[0], r[1], r[2]
		cerr := &ConstraintError{Row: row, A: a, B: b, Kind: kind}

		if kind != int(CannotLink) && kind != int(MustLink) {
			cerr.Reason = "kind must be 0 (cannot-link) or 1 (must-link)"
			return nil, cerr
		}
		if a < 0 || b < 0 {
			cerr.Reason = "negative sample index"
			return nil, cerr
		}
		if n > 0 && (a >= n || b >= n) {
			cerr.Reason = fmt.Sprintf("sample index out of range [0, %d)", n)
			return nil, cerr
		}
		if a == b && Kind(kind) == CannotLink {
			cerr.Reason = "sample cannot-linked to itself"
			return nil, cerr
		}

		key := makePairKey(a, b)
		other := MustLink
		if Kind(kind) == MustLink {
			other = CannotLink
		}
		if _, conflict := s.pairs[other][key]; conflict {
			cerr.Reason = "pair is marked as both must-link and cannot-link"
			return nil, cerr
		}

		seen[a] = struct{}{}
		seen[b] = struct{}{}

		if a == b {
			continue
		}
		if _, dup := s.pairs[kind][key]; dup {
			continue
		}
		s.pairs[kind][key] = struct{}{}
		s.adj[kind][a] = append(s.adj[kind][a], b)
		s.adj[kind][b] = append(s.adj[kind][b], a)
		s.order = append(s.order, Constraint{A: a, B: b, Kind: Kind(kind)})
	}

	for k := range s.adj {
		for i := range s.adj[k] {
			sort.Ints(s.adj[k][i])
		}
	}

	s.samples = make([]int, 0, len(seen))
	for i := range seen {
		s.samples = append(s.samples, i)
	}
	sort.Ints(s.samples)

	return s, nil
}

// NewConstraintStoreFromConstraints is NewConstraintStore for typed input.
func NewConstraintStoreFromConstraints(cs []Constraint, n int) (*ConstraintStore, error) {
	table := make([][3]int, len(cs))
	for i, c := range cs {
		table[i] = [3]int{c.A, c.B, int(c.Kind)}
	}
	return NewConstraintStore(table, n)
}

// Samples returns the sorted constrained-sample set. The slice is shared;
// callers must not modify it.
func (s *ConstraintStore) Samples() []int { return s.samples }

// Constraints returns each distinct edge once, in the order first seen.
func (s *ConstraintStore) Constraints() []Constraint {
	out := make([]Constraint, len(s.order))
	copy(out, s.order)
	return out
}

// NumMustLink returns the number of distinct must-link edges.
func (s *ConstraintStore) NumMustLink() int { return len(s.pairs[MustLink]) }

// NumCannotLink returns the number of distinct cannot-link edges.
func (s *ConstraintStore) NumCannotLink() int { return len(s.pairs[CannotLink]) }

// Linked reports whether a and b share an edge of the given kind.
func (s *ConstraintStore) Linked(a, b int, kind Kind) bool {
	_, ok := s.pairs[kind][makePairKey(a, b)]
	return ok
}

// LinkedSamples returns, sorted and without duplicates, every sample linked
// by an edge of the given kind to any member of group. Members of group are
// included when they are linked to another member.
func (s *ConstraintStore) LinkedSamples(group []int, kind Kind) []int {
	found := make(map[int]struct{})
	for _, i := range group {
		for _, j := range s.adj[kind][i] {
			found[j] = struct{}{}
		}
	}
	out := make([]int, 0, len(found))
	for j := range found {
		out = append(out, j)
	}
	sort.Ints(out)
	return out
}

// IsCLViolated reports whether any two members of group are cannot-linked.
func (s *ConstraintStore) IsCLViolated(group []int) bool {
	cl := s.adj[CannotLink]
	if len(cl) == 0 || len(group) < 2 {
		return false
	}
	members := toSet(group)
	for _, i := range group {
		for _, j := range cl[i] {
			if _, ok := members[j]; ok {
				return true
			}
		}
	}
	return false
}

// ConstraintCount returns the number of distinct kind-edges with one endpoint
// in g1 and the other in g2. For disjoint groups the count is symmetric.
func (s *ConstraintStore) ConstraintCount(g1, g2 []int, kind Kind) int {
	// Iterate over the smaller group, look up in the larger.
	if len(g1) > len(g2) {
		g1, g2 = g2, g1
	}
	other := toSet(g2)
	count := 0
	for _, i := range g1 {
		for _, j := range s.adj[kind][i] {
			if _, ok := other[j]; ok {
				count++
			}
		}
	}
	return count
}

func toSet(xs []int) map[int]struct{} {
	m := make(map[int]struct{}, len(xs))
	for _, x := range xs {
		m[x] = struct{}{}
	}
	return m
}
