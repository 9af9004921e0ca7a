package constraintprop

import "fmt"

// Algorithm selects the spatial index used for neighbour queries during
// graph completion.
type Algorithm string

const (
	// AlgorithmAuto picks an index from the metric and dimensionality.
	AlgorithmAuto Algorithm = "auto"
	// AlgorithmKDTree forces a KD-tree.
	AlgorithmKDTree Algorithm = "kd_tree"
	// AlgorithmBallTree forces a ball tree.
	AlgorithmBallTree Algorithm = "ball_tree"
	// AlgorithmBrute forces an exhaustive scan.
	AlgorithmBrute Algorithm = "brute"
)

// kdTreeMaxDims is the dimensionality above which AlgorithmAuto prefers a
// ball tree over a KD-tree.
const kdTreeMaxDims = 60

// BallTreeValidMetric reports whether the metric supports ball tree pruning.
// Ball trees need the triangle inequality, which cosine distance lacks.
func BallTreeValidMetric(m DistanceMetric) bool {
	switch m.(type) {
	case EuclideanMetric, ManhattanMetric, ChebyshevMetric, MinkowskiMetric:
		return true
	default:
		return false
	}
}

// selectAlgorithm resolves AlgorithmAuto into a concrete index for the
// metric and dimensionality, and checks that a forced choice supports the
// metric.
func selectAlgorithm(algo Algorithm, metric DistanceMetric, dims int) (Algorithm, error) {
	switch algo {
	case AlgorithmAuto, "":
		if !BallTreeValidMetric(metric) {
			return AlgorithmBrute, nil
		}
		if KDTreeValidMetric(metric) && dims <= kdTreeMaxDims {
			return AlgorithmKDTree, nil
		}
		return AlgorithmBallTree, nil
	case AlgorithmKDTree:
		if !KDTreeValidMetric(metric) {
			return "", fmt.Errorf("%w: metric %T is not supported by the KD-tree", ErrInvalidConfig, metric)
		}
	case AlgorithmBallTree:
		if !BallTreeValidMetric(metric) {
			return "", fmt.Errorf("%w: metric %T is not supported by the ball tree", ErrInvalidConfig, metric)
		}
	case AlgorithmBrute:
	default:
		return "", fmt.Errorf("%w: unknown algorithm %q", ErrInvalidConfig, algo)
	}
	return algo, nil
}
