package constraintprop

import (
	"math/rand"
	"runtime"
	"testing"
)

func generateBenchData(n, dims int) [][]float64 {
	rng := rand.New(rand.NewSource(42))
	data := make([][]float64, n)
	for i := range data {
		data[i] = make([]float64, dims)
		for j := range data[i] {
			data[i][j] = rng.Float64() * 100
		}
	}
	return data
}

func generateFlatData(n, dims int) []float64 {
	rng := rand.New(rand.NewSource(42))
	data := make([]float64, n*dims)
	for i := range data {
		data[i] = rng.Float64() * 100
	}
	return data
}

// --- Pairwise Distances ---

func benchPairwiseDistances(b *testing.B, n, workers int) {
	b.Helper()
	dims := 2
	data := generateFlatData(n, dims)
	metric := EuclideanMetric{}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ComputePairwiseDistancesParallel(data, n, dims, metric, workers)
	}
}

func BenchmarkPairwiseDistances_500(b *testing.B)           { benchPairwiseDistances(b, 500, 1) }
func BenchmarkPairwiseDistances_1000(b *testing.B)          { benchPairwiseDistances(b, 1000, 1) }
func BenchmarkPairwiseDistances_1000_Parallel(b *testing.B) { benchPairwiseDistances(b, 1000, runtime.NumCPU()) }

// --- Dendrograms ---

func benchLinkage(b *testing.B, n int, c LinkageClusterer) {
	b.Helper()
	dims := 2
	data := generateFlatData(n, dims)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Dendrogram(data, n, dims); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAverageLinkage_500(b *testing.B) { benchLinkage(b, 500, LinkageClusterer{}) }
func BenchmarkSingleLinkage_500(b *testing.B) {
	benchLinkage(b, 500, LinkageClusterer{Linkage: LinkageSingle})
}
func BenchmarkSingleLinkageLowMemory_500(b *testing.B) {
	benchLinkage(b, 500, LinkageClusterer{Linkage: LinkageSingle, LowMemory: true})
}

// --- Node Graph ---

func BenchmarkBuildNodeGraph_1000(b *testing.B) {
	n, dims := 1000, 2
	data := generateFlatData(n, dims)
	store, err := NewConstraintStore(randomConstraints(rand.New(rand.NewSource(1)), n, 2000), n)
	if err != nil {
		b.Fatal(err)
	}
	samples := store.Samples()
	labels := make([]int, len(samples))
	for i := range labels {
		labels[i] = i
	}
	agg := &Agglomeration{Samples: samples, Labels: labels, NumGroups: len(samples)}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildNodeGraph(store, agg, data, dims, runtime.NumCPU()); err != nil {
			b.Fatal(err)
		}
	}
}

// --- End to End ---

func benchPropagate(b *testing.B, n, m int) {
	b.Helper()
	data := generateBenchData(n, 2)
	constraints := randomConstraints(rand.New(rand.NewSource(2)), n, m)
	cfg := DefaultConfig()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Propagate(data, constraints, cfg); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPropagate_500(b *testing.B)  { benchPropagate(b, 500, 200) }
func BenchmarkPropagate_1000(b *testing.B) { benchPropagate(b, 1000, 500) }
