package constraintprop

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

const defaultLeafSize = 40

// Config controls constraint propagation.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// NumClusters is the target number of final groups. The greedy cut stops
	// once this many nodes remain, even if positive agreement is left.
	// 0 means no target: merge until no positive agreement remains.
	// Must be >= 0. Default: 0.
	NumClusters int

	// Neighbors is the number of nearest centroids each node is weakly
	// linked to during graph completion. Completion only runs on graphs with
	// more than 2*Neighbors+2 nodes. Must be >= 1. Default: 2.
	Neighbors int

	// SkipCompletion disables graph completion, leaving floating nodes
	// unmerged. Default: false.
	SkipCompletion bool

	// HardCannotLinks stops the greedy cut from joining two nodes that have
	// any cannot-link between their members, even when must-links outweigh
	// it. Without it only the net agreement counts, and a cut may place
	// cannot-linked samples in one group. Default: false.
	HardCannotLinks bool

	// Linkage selects the built-in dendrogram linkage. Ignored when
	// Clusterer is set. Default: "average".
	Linkage Linkage

	// Metric is used for the built-in dendrogram and neighbour queries.
	// Default: EuclideanMetric.
	Metric DistanceMetric

	// LowMemory builds single-linkage dendrograms without the n×n distance
	// matrix. Default: false.
	LowMemory bool

	// LeafSize bounds the points per tree leaf for neighbour queries.
	// Default: 40.
	LeafSize int

	// Algorithm selects the spatial index for neighbour queries during graph
	// completion. Forcing a tree with a metric it cannot prune is an error.
	// Default: AlgorithmAuto.
	Algorithm Algorithm

	// Workers bounds the goroutines used for the pairwise distance matrix
	// and the node similarity pass. Results do not depend on it.
	// 0 means runtime.NumCPU(). Default: 0 (auto).
	Workers int

	// Clusterer supplies the dendrogram. Default: a LinkageClusterer built
	// from Linkage, Metric, LowMemory and Workers.
	Clusterer HierarchicalClusterer

	// NeighborFinder supplies nearest centroids for graph completion.
	// Default: TreeNeighbors built from Metric and LeafSize.
	NeighborFinder NeighborFinder

	// Logger receives stage-level debug logs. Default: a no-op logger.
	Logger *zap.Logger
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Neighbors: DefaultCompletionNeighbors,
		Linkage:   LinkageAverage,
		Metric:    EuclideanMetric{},
		LeafSize:  defaultLeafSize,
		Algorithm: AlgorithmAuto,
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Neighbors == 0 {
		cfg.Neighbors = DefaultCompletionNeighbors
	}
	if cfg.Linkage == "" {
		cfg.Linkage = LinkageAverage
	}
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.LeafSize == 0 {
		cfg.LeafSize = defaultLeafSize
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmAuto
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Clusterer == nil {
		cfg.Clusterer = LinkageClusterer{
			Linkage:   cfg.Linkage,
			Metric:    cfg.Metric,
			LowMemory: cfg.LowMemory,
			Workers:   cfg.Workers,
			Logger:    cfg.Logger,
		}
	}
	if cfg.NeighborFinder == nil {
		cfg.NeighborFinder = TreeNeighbors{Metric: cfg.Metric, LeafSize: cfg.LeafSize, Algorithm: cfg.Algorithm}
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive
// error wrapping ErrInvalidConfig if not.
func validateConfig(cfg *Config) error {
	if cfg.NumClusters < 0 {
		return fmt.Errorf("%w: NumClusters must be >= 0 (0 means no target), got %d", ErrInvalidConfig, cfg.NumClusters)
	}
	if cfg.Neighbors < 1 {
		return fmt.Errorf("%w: Neighbors must be >= 1, got %d", ErrInvalidConfig, cfg.Neighbors)
	}
	if cfg.Linkage != LinkageAverage && cfg.Linkage != LinkageSingle {
		return fmt.Errorf("%w: Linkage must be %q or %q, got %q", ErrInvalidConfig, LinkageAverage, LinkageSingle, cfg.Linkage)
	}
	if cfg.LeafSize < 1 {
		return fmt.Errorf("%w: LeafSize must be >= 1, got %d", ErrInvalidConfig, cfg.LeafSize)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("%w: Workers must be >= 0 (0 means runtime.NumCPU), got %d", ErrInvalidConfig, cfg.Workers)
	}
	if m, ok := cfg.Metric.(MinkowskiMetric); ok && m.P < 1 {
		return fmt.Errorf("%w: MinkowskiMetric.P must be >= 1, got %g", ErrInvalidConfig, m.P)
	}
	if cfg.Algorithm != AlgorithmAuto {
		if _, err := selectAlgorithm(cfg.Algorithm, cfg.Metric, 0); err != nil {
			return err
		}
	}
	return nil
}
