// Command constraintprop labels the constrained samples of a dataset from
// pairwise must-link / cannot-link constraints.
//
//	constraintprop -data data.csv -constraints constraints.csv -clusters 3
//
// data.csv holds one sample per row. constraints.csv holds (a, b, kind) rows
// with kind 1 for must-link and 0 for cannot-link. The labels are written as
// JSON to -out, or to stdout.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/TrevorS/constraintprop"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "constraintprop:", err)
		}
		os.Exit(1)
	}
}

type options struct {
	dataPath        string
	constraintsPath string
	configPath      string
	outPath         string
	file            fileConfig
}

// parseOptions resolves settings with flag > config file > default
// precedence.
func parseOptions(args []string) (options, error) {
	var (
		opts  options
		flags fileConfig
	)
	fs := flag.NewFlagSet("constraintprop", flag.ContinueOnError)
	fs.StringVar(&opts.dataPath, "data", "", "CSV data matrix, one sample per row (required)")
	fs.StringVar(&opts.constraintsPath, "constraints", "", "CSV constraint table of (a, b, kind) rows (required)")
	fs.StringVar(&opts.configPath, "config", "", "YAML config file")
	fs.StringVar(&opts.outPath, "out", "", "output JSON file (default stdout)")
	fs.IntVar(&flags.Clusters, "clusters", 0, "target number of clusters (0 = no target)")
	fs.IntVar(&flags.Neighbors, "neighbors", 0, "nearest centroids linked during graph completion (0 = default)")
	fs.BoolVar(&flags.SkipCompletion, "skip-completion", false, "disable graph completion")
	fs.BoolVar(&flags.HardCannotLinks, "hard-cannot-links", false, "never join cannot-linked nodes in the graph cut")
	fs.StringVar(&flags.Linkage, "linkage", "", "dendrogram linkage: average or single")
	fs.StringVar(&flags.Metric, "metric", "", "distance metric: euclidean, manhattan, chebyshev, cosine, minkowski:<p>")
	fs.BoolVar(&flags.LowMemory, "low-memory", false, "build single-linkage dendrograms without the distance matrix")
	fs.IntVar(&flags.LeafSize, "leaf-size", 0, "points per neighbour-tree leaf (0 = default)")
	fs.StringVar(&flags.Algorithm, "algorithm", "", "neighbour index: auto, kd_tree, ball_tree or brute")
	fs.IntVar(&flags.Workers, "workers", 0, "worker goroutines (0 = all CPUs)")
	fs.BoolVar(&flags.Debug, "debug", false, "development logging at debug level")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.dataPath == "" || opts.constraintsPath == "" {
		return opts, errors.New("-data and -constraints are required")
	}

	if opts.configPath != "" {
		fc, err := loadFileConfig(opts.configPath)
		if err != nil {
			return opts, err
		}
		opts.file = fc
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "clusters":
			opts.file.Clusters = flags.Clusters
		case "neighbors":
			opts.file.Neighbors = flags.Neighbors
		case "skip-completion":
			opts.file.SkipCompletion = flags.SkipCompletion
		case "linkage":
			opts.file.Linkage = flags.Linkage
		case "metric":
			opts.file.Metric = flags.Metric
		case "hard-cannot-links":
			opts.file.HardCannotLinks = flags.HardCannotLinks
		case "leaf-size":
			opts.file.LeafSize = flags.LeafSize
		case "low-memory":
			opts.file.LowMemory = flags.LowMemory
		case "algorithm":
			opts.file.Algorithm = flags.Algorithm
		case "workers":
			opts.file.Workers = flags.Workers
		case "debug":
			opts.file.Debug = flags.Debug
		}
	})

	if err := opts.file.validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(opts.file.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	data, err := readFile(opts.dataPath, readMatrix)
	if err != nil {
		return err
	}
	constraints, err := readFile(opts.constraintsPath, readConstraints)
	if err != nil {
		return err
	}

	cfg, err := opts.file.libraryConfig()
	if err != nil {
		return err
	}
	cfg.Logger = logger

	res, err := constraintprop.Propagate(data, constraints, cfg)
	if err != nil {
		return err
	}
	logger.Info("constraints propagated",
		zap.String("run_id", res.RunID),
		zap.Int("samples", len(res.Samples)),
		zap.Int("clusters", res.NumClusters),
	)

	if opts.outPath == "" {
		return writeResult(stdout, res)
	}
	f, err := os.Create(opts.outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := writeResult(f, res); err != nil {
		f.Close()
		return fmt.Errorf("write output: %w", err)
	}
	return f.Close()
}

func readFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()
	return parse(f)
}
