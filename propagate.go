package constraintprop

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Result contains the labels propagated from pairwise constraints.
type Result struct {
	// RunID identifies this run in logs.
	RunID string

	// Samples is the sorted set of sample indices that appear in any
	// constraint. Only these samples are labeled.
	Samples []int

	// Labels[i] is the final label of Samples[i], in [0, NumClusters).
	// Two cannot-linked samples never share a label. Must-linked samples
	// usually do, but it is not guaranteed.
	Labels []int

	// NumClusters is the number of distinct final labels.
	NumClusters int

	// WorkingLabels[i] is the node of Samples[i] after dendrogram-guided
	// agglomeration, before the graph cut.
	WorkingLabels []int

	// NodeLabels[a] is the final label of node a.
	NodeLabels []int

	// Merges is the number of node merges performed by the greedy cut.
	Merges int

	// SyntheticEdges is the number of weak must-link edges added by graph
	// completion.
	SyntheticEdges int

	// Problem is the node graph as handed to the greedy cut (after
	// completion). Useful for inspection or plotting.
	Problem *GraphCutProblem

	// Dendrogram is the hierarchy the agglomeration followed.
	Dendrogram *Dendrogram
}

// TrainingSet returns the labeled rows of data, ready to train a supervised
// classifier: X[i] is a copy of data[Samples[i]] and y[i] is Labels[i].
func (r *Result) TrainingSet(data [][]float64) (X [][]float64, y []int) {
	X = make([][]float64, len(r.Samples))
	for i, s := range r.Samples {
		X[i] = append([]float64(nil), data[s]...)
	}
	return X, append([]int(nil), r.Labels...)
}

// Propagate turns pairwise constraints into labels for the constrained
// samples. data holds one point per row, all with the same dimensionality.
// constraints is an m×3 table of (a, b, kind) rows with kind 0 for
// cannot-link and 1 for must-link. The dendrogram comes from cfg.Clusterer.
//
// Errors wrap ErrInvalidConfig, ErrInvalidConstraint, ErrEmptyConstraintSet,
// ErrDendrogramMismatch or ErrDegenerateGraph. No partial result is returned.
func Propagate(data [][]float64, constraints [][3]int, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	flat, n, dims, err := flatten(data)
	if err != nil {
		return nil, err
	}
	store, err := NewConstraintStore(constraints, n)
	if err != nil {
		return nil, err
	}

	d, err := cfg.Clusterer.Dendrogram(flat, n, dims)
	if err != nil {
		return nil, fmt.Errorf("constraintprop: building dendrogram: %w", err)
	}
	if err := d.Validate(n); err != nil {
		return nil, err
	}

	return run(store, d, flat, dims, cfg)
}

// PropagateDendrogram is Propagate with a precomputed dendrogram, for
// callers that run hierarchical clustering elsewhere. cfg.Clusterer,
// cfg.Linkage and cfg.LowMemory are ignored.
func PropagateDendrogram(data [][]float64, constraints [][3]int, d *Dendrogram, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	flat, n, dims, err := flatten(data)
	if err != nil {
		return nil, err
	}
	store, err := NewConstraintStore(constraints, n)
	if err != nil {
		return nil, err
	}
	if err := d.Validate(n); err != nil {
		return nil, err
	}

	return run(store, d, flat, dims, cfg)
}

// run executes agglomeration, node graph construction, completion, the
// greedy cut and label translation. cfg must already be defaulted.
func run(store *ConstraintStore, d *Dendrogram, flat []float64, dims int, cfg Config) (*Result, error) {
	runID := uuid.NewString()
	logger := cfg.Logger.With(zap.String("run_id", runID))
	logger.Debug("constraints loaded",
		zap.Int("samples", d.N),
		zap.Int("constrained_samples", len(store.Samples())),
		zap.Int("must_link", store.NumMustLink()),
		zap.Int("cannot_link", store.NumCannotLink()),
	)

	agg, err := Agglomerate(store, d)
	if err != nil {
		return nil, err
	}
	logger.Debug("agglomeration finished",
		zap.Int("nodes", agg.NumGroups),
		zap.Int("rejected_merges", agg.Rejected),
	)

	g, err := BuildNodeGraph(store, agg, flat, dims, cfg.Workers)
	if err != nil {
		return nil, err
	}

	synthetic := 0
	if !cfg.SkipCompletion {
		synthetic, err = CompleteGraph(g, cfg.NeighborFinder, cfg.Neighbors)
		if err != nil {
			return nil, err
		}
		logger.Debug("graph completion finished", zap.Int("synthetic_edges", synthetic))
	}

	problem := g.Snapshot()
	cut := GreedyCut(g, cfg.NumClusters, cfg.HardCannotLinks)
	logger.Debug("greedy cut finished",
		zap.Bool("hard_cannot_links", cfg.HardCannotLinks),
		zap.Int("merges", cut.Merges),
		zap.Int("clusters", cut.NumGroups),
	)

	labels, err := TranslateLabels(agg.Labels, cut.NodeLabels)
	if err != nil {
		return nil, err
	}

	return &Result{
		RunID:          runID,
		Samples:        append([]int(nil), agg.Samples...),
		Labels:         labels,
		NumClusters:    cut.NumGroups,
		WorkingLabels:  agg.Labels,
		NodeLabels:     cut.NodeLabels,
		Merges:         cut.Merges,
		SyntheticEdges: synthetic,
		Problem:        problem,
		Dendrogram:     d,
	}, nil
}

// flatten copies data into a flat row-major slice and checks that every row
// has the same, non-zero length.
func flatten(data [][]float64) ([]float64, int, int, error) {
	n := len(data)
	if n == 0 {
		return nil, 0, 0, fmt.Errorf("%w: data has no rows", ErrInvalidData)
	}
	dims := len(data[0])
	if dims == 0 {
		return nil, 0, 0, fmt.Errorf("%w: data rows have no features", ErrInvalidData)
	}
	flat := make([]float64, n*dims)
	for i, row := range data {
		if len(row) != dims {
			return nil, 0, 0, fmt.Errorf("%w: row %d has %d features, want %d", ErrInvalidData, i, len(row), dims)
		}
		copy(flat[i*dims:], row)
	}
	return flat, n, dims, nil
}
