package constraintprop

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// DistanceMetric provides distance computation with a reduced form for
// tree pruning (e.g. squared Euclidean skips the sqrt).
type DistanceMetric interface {
	Distance(a, b []float64) float64
	ReducedDistance(a, b []float64) float64
	// DistToRdist converts a true distance into reduced-distance space.
	DistToRdist(d float64) float64
}

// DistanceFunc adapts a plain function into a DistanceMetric whose reduced
// distance is the distance itself.
type DistanceFunc func(a, b []float64) float64

func (f DistanceFunc) Distance(a, b []float64) float64        { return f(a, b) }
func (f DistanceFunc) ReducedDistance(a, b []float64) float64 { return f(a, b) }
func (f DistanceFunc) DistToRdist(d float64) float64          { return d }

// EuclideanMetric is the L2 distance. Reduced distance is squared L2.
type EuclideanMetric struct{}

func (EuclideanMetric) Distance(a, b []float64) float64 {
	return math.Sqrt(euclideanSumOfSquares(a, b))
}

func (EuclideanMetric) ReducedDistance(a, b []float64) float64 {
	return euclideanSumOfSquares(a, b)
}

func (EuclideanMetric) DistToRdist(d float64) float64 { return d * d }

func euclideanSumOfSquares(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// ManhattanMetric is the L1 (city-block) distance.
type ManhattanMetric struct{}

func (ManhattanMetric) Distance(a, b []float64) float64        { return floats.Distance(a, b, 1) }
func (m ManhattanMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }
func (ManhattanMetric) DistToRdist(d float64) float64           { return d }

// ChebyshevMetric is the L-infinity distance.
type ChebyshevMetric struct{}

func (ChebyshevMetric) Distance(a, b []float64) float64        { return floats.Distance(a, b, math.Inf(1)) }
func (m ChebyshevMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }
func (ChebyshevMetric) DistToRdist(d float64) float64           { return d }

// MinkowskiMetric is the Minkowski distance of order P (P >= 1).
// ReducedDistance is sum(|a[i]-b[i]|^P) without the final root.
type MinkowskiMetric struct {
	P float64
}

func (m MinkowskiMetric) Distance(a, b []float64) float64 {
	return math.Pow(m.ReducedDistance(a, b), 1.0/m.P)
}

func (m MinkowskiMetric) ReducedDistance(a, b []float64) float64 {
	if m.P < 1 {
		panic("MinkowskiMetric: P must be >= 1")
	}
	var sum float64
	for i := range a {
		sum += math.Pow(math.Abs(a[i]-b[i]), m.P)
	}
	return sum
}

func (m MinkowskiMetric) DistToRdist(d float64) float64 { return math.Pow(d, m.P) }

// CosineMetric is 1 - cosine similarity. Two zero vectors give NaN.
// Not axis-decomposable, so neighbour queries fall back to brute force.
type CosineMetric struct{}

func (CosineMetric) Distance(a, b []float64) float64 {
	return 1.0 - floats.Dot(a, b)/(floats.Norm(a, 2)*floats.Norm(b, 2))
}

func (m CosineMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }
func (CosineMetric) DistToRdist(d float64) float64            { return d }

// MetricByName resolves a metric from its configuration name:
// "euclidean", "manhattan", "chebyshev", "cosine", or "minkowski:<p>".
func MetricByName(name string) (DistanceMetric, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); {
	case n == "" || n == "euclidean":
		return EuclideanMetric{}, nil
	case n == "manhattan":
		return ManhattanMetric{}, nil
	case n == "chebyshev":
		return ChebyshevMetric{}, nil
	case n == "cosine":
		return CosineMetric{}, nil
	case strings.HasPrefix(n, "minkowski:"):
		var p float64
		if _, err := fmt.Sscanf(strings.TrimPrefix(n, "minkowski:"), "%g", &p); err != nil || p < 1 {
			return nil, fmt.Errorf("%w: minkowski order must be a number >= 1, got %q", ErrInvalidConfig, name)
		}
		return MinkowskiMetric{P: p}, nil
	default:
		return nil, fmt.Errorf("%w: unknown metric %q", ErrInvalidConfig, name)
	}
}

// ComputePairwiseDistances computes the full n×n distance matrix.
// data is flat row-major with n rows and dims columns.
func ComputePairwiseDistances(data []float64, n, dims int, metric DistanceMetric) []float64 {
	result := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := metric.Distance(data[i*dims:(i+1)*dims], data[j*dims:(j+1)*dims])
			result[i*n+j] = d
			result[j*n+i] = d
		}
	}
	return result
}
