package constraintprop

import (
	"errors"
	"math"
	"testing"
)

const distTol = 1e-12

func TestMetrics_HandComputed(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{4, 0, 3}
	tests := []struct {
		name    string
		metric  DistanceMetric
		dist    float64
		reduced float64
	}{
		{"euclidean", EuclideanMetric{}, math.Sqrt(13), 13},
		{"manhattan", ManhattanMetric{}, 5, 5},
		{"chebyshev", ChebyshevMetric{}, 3, 3},
		{"minkowski3", MinkowskiMetric{P: 3}, math.Cbrt(35), 35},
		{"cosine", CosineMetric{}, 1 - 13/(math.Sqrt(14)*5), 1 - 13/(math.Sqrt(14)*5)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.metric.Distance(a, b); math.Abs(got-tc.dist) > distTol {
				t.Errorf("Distance = %.15f, want %.15f", got, tc.dist)
			}
			if got := tc.metric.ReducedDistance(a, b); math.Abs(got-tc.reduced) > distTol {
				t.Errorf("ReducedDistance = %.15f, want %.15f", got, tc.reduced)
			}
			// DistToRdist maps the true distance onto the reduced scale.
			if got := tc.metric.DistToRdist(tc.dist); math.Abs(got-tc.reduced) > 1e-9 {
				t.Errorf("DistToRdist(%g) = %g, want %g", tc.dist, got, tc.reduced)
			}
		})
	}
}

func TestMetrics_IdenticalVectorsAreZero(t *testing.T) {
	v := []float64{3, -1, 7}
	for _, m := range []DistanceMetric{EuclideanMetric{}, ManhattanMetric{}, ChebyshevMetric{}, MinkowskiMetric{P: 2}, CosineMetric{}} {
		if d := m.Distance(v, v); math.Abs(d) > distTol {
			t.Errorf("%T: Distance(v, v) = %g, want 0", m, d)
		}
	}
}

func TestCosineDistance_ZeroVectorsNaN(t *testing.T) {
	if d := (CosineMetric{}).Distance([]float64{0, 0}, []float64{0, 0}); !math.IsNaN(d) {
		t.Errorf("cosine of zero vectors = %g, want NaN", d)
	}
}

func TestMinkowskiDistance_InvalidPPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for P < 1")
		}
	}()
	MinkowskiMetric{P: 0.5}.Distance([]float64{0}, []float64{1})
}

func TestDistanceFunc_Adapter(t *testing.T) {
	var m DistanceMetric = DistanceFunc(func(a, b []float64) float64 { return 42 })
	if m.Distance(nil, nil) != 42 || m.ReducedDistance(nil, nil) != 42 || m.DistToRdist(7) != 7 {
		t.Error("DistanceFunc adapter does not delegate as documented")
	}
}

func TestMetricByName(t *testing.T) {
	tests := []struct {
		name string
		want DistanceMetric
	}{
		{"", EuclideanMetric{}},
		{"euclidean", EuclideanMetric{}},
		{" Manhattan ", ManhattanMetric{}},
		{"chebyshev", ChebyshevMetric{}},
		{"cosine", CosineMetric{}},
		{"minkowski:3", MinkowskiMetric{P: 3}},
	}
	for _, tc := range tests {
		got, err := MetricByName(tc.name)
		if err != nil {
			t.Errorf("MetricByName(%q) error: %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("MetricByName(%q) = %#v, want %#v", tc.name, got, tc.want)
		}
	}

	for _, bad := range []string{"hamming", "minkowski:0.5", "minkowski:x"} {
		if _, err := MetricByName(bad); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("MetricByName(%q) = %v, want ErrInvalidConfig", bad, err)
		}
	}
}

func TestComputePairwiseDistances_SymmetricZeroDiagonal(t *testing.T) {
	data := []float64{0, 0, 3, 4, 6, 8}
	dist := ComputePairwiseDistances(data, 3, 2, EuclideanMetric{})
	for i := 0; i < 3; i++ {
		if dist[i*3+i] != 0 {
			t.Errorf("dist[%d][%d] = %g, want 0", i, i, dist[i*3+i])
		}
		for j := 0; j < 3; j++ {
			if dist[i*3+j] != dist[j*3+i] {
				t.Errorf("dist not symmetric at (%d,%d)", i, j)
			}
		}
	}
	if dist[0*3+1] != 5 || dist[0*3+2] != 10 || dist[1*3+2] != 5 {
		t.Errorf("unexpected distances %v", dist)
	}
}
