package constraintprop

import (
	"errors"
	"math"
	"testing"
)

// lineData returns 1-D points at the given coordinates as flat data.
func lineData(xs ...float64) []float64 { return append([]float64(nil), xs...) }

func TestAverageLinkage_HandTraced(t *testing.T) {
	// Points at 0, 1, 3, 7.
	//   merge {0},{1} at 1
	//   d({0,1}, 3) = (3+2)/2 = 2.5        -> merge at 2.5
	//   d({0,1,3}, 7) = (7+6+4)/3 = 17/3   -> merge at 17/3
	data := lineData(0, 1, 3, 7)
	d, err := LinkageClusterer{Linkage: LinkageAverage}.Dendrogram(data, 4, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Merge{
		{Left: 0, Right: 1, Height: 1, Size: 2},
		{Left: 4, Right: 2, Height: 2.5, Size: 3},
		{Left: 5, Right: 3, Height: 17.0 / 3.0, Size: 4},
	}
	for i, m := range d.Merges {
		if m.Left != want[i].Left || m.Right != want[i].Right || m.Size != want[i].Size {
			t.Errorf("merge %d = %+v, want %+v", i, m, want[i])
		}
		if math.Abs(m.Height-want[i].Height) > 1e-12 {
			t.Errorf("merge %d height = %g, want %g", i, m.Height, want[i].Height)
		}
	}
}

func TestSingleLinkage_HandTraced(t *testing.T) {
	data := lineData(0, 1, 3, 7)
	for _, lowMem := range []bool{false, true} {
		d, err := LinkageClusterer{Linkage: LinkageSingle, LowMemory: lowMem}.Dendrogram(data, 4, 1)
		if err != nil {
			t.Fatalf("lowMem=%v: unexpected error: %v", lowMem, err)
		}
		heights := []float64{1, 2, 4}
		for i, m := range d.Merges {
			if m.Height != heights[i] {
				t.Errorf("lowMem=%v: merge %d height = %g, want %g", lowMem, i, m.Height, heights[i])
			}
		}
		if d.Merges[2].Size != 4 {
			t.Errorf("lowMem=%v: root size = %d, want 4", lowMem, d.Merges[2].Size)
		}
	}
}

func TestAverageLinkage_HeightsNonDecreasing(t *testing.T) {
	data := generateFlatData(60, 3)
	d, err := LinkageClusterer{Linkage: LinkageAverage, Workers: 3}.Dendrogram(data, 60, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.Validate(60); err != nil {
		t.Fatalf("invalid dendrogram: %v", err)
	}
	for i := 1; i < len(d.Merges); i++ {
		if d.Merges[i].Height < d.Merges[i-1].Height {
			t.Errorf("merge %d height %g < previous %g", i, d.Merges[i].Height, d.Merges[i-1].Height)
		}
	}
	if root := d.Merges[len(d.Merges)-1]; root.Size != 60 {
		t.Errorf("root size = %d, want 60", root.Size)
	}
}

func TestAverageLinkageEdges_DoesNotModifyInput(t *testing.T) {
	dist := ComputePairwiseDistances(lineData(0, 1, 3, 7), 4, 1, EuclideanMetric{})
	orig := append([]float64(nil), dist...)
	AverageLinkageEdges(dist, 4)
	for i := range dist {
		if dist[i] != orig[i] {
			t.Fatalf("distance matrix modified at %d", i)
		}
	}
}

func TestAverageLinkageEdges_TiesTerminate(t *testing.T) {
	// Equidistant neighbours must not make the chain loop.
	edges := AverageLinkageEdges(ComputePairwiseDistances(lineData(0, 1, 2, 3), 4, 1, EuclideanMetric{}), 4)
	if len(edges) != 3 {
		t.Fatalf("expected 3 edges, got %d", len(edges))
	}
}

func TestLinkageClusterer_Errors(t *testing.T) {
	if _, err := (LinkageClusterer{Linkage: "ward"}).Dendrogram(lineData(0, 1), 2, 1); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("unknown linkage: got %v, want ErrInvalidConfig", err)
	}
	if _, err := (LinkageClusterer{}).Dendrogram(lineData(0, 1, 2), 2, 1); !errors.Is(err, ErrInvalidData) {
		t.Errorf("shape mismatch: got %v, want ErrInvalidData", err)
	}
}

func TestLinkageClusterer_SinglePoint(t *testing.T) {
	d, err := LinkageClusterer{}.Dendrogram(lineData(4), 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.N != 1 || len(d.Merges) != 0 {
		t.Errorf("got N=%d merges=%d, want 1 and 0", d.N, len(d.Merges))
	}
}
