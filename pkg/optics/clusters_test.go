package optics

import "testing"

func ordering(handles []int, reach []float64) Ordering {
	o := make(Ordering, len(handles))
	for i := range handles {
		o[i] = OrderEntry{Handle: Handle(handles[i]), Reachability: reach[i]}
	}
	return o
}

func TestClusterExtractorNoOutliers(t *testing.T) {
	o := ordering([]int{0, 1, 2, 3, 4, 5}, []float64{Undefined, 0.1, 0.1, Undefined, 0.2, 0.2})
	clusters, err := ClusterExtractor(o, []int{3}, Undefined)
	if err != nil {
		t.Fatalf("ClusterExtractor: %v", err)
	}
	if len(clusters) != 3 {
		t.Fatalf("len(clusters) = %d, want 3", len(clusters))
	}
	if len(clusters[0]) != 0 {
		t.Errorf("outlier bucket = %v, want empty", clusters[0])
	}
	if got := clusters[1]; len(got) != 3 || got[0] != 0 || got[2] != 2 {
		t.Errorf("cluster 1 = %v, want [0 1 2]", got)
	}
	if got := clusters[2]; len(got) != 3 || got[0] != 3 || got[2] != 5 {
		t.Errorf("cluster 2 = %v, want [3 4 5]", got)
	}
}

func TestClusterExtractorZeroThresholdDisablesOutliers(t *testing.T) {
	// A threshold <= 0 means "no outliers": even an Undefined
	// reachability stays in its segment's bucket.
	o := ordering([]int{0}, []float64{Undefined})
	clusters, err := ClusterExtractor(o, nil, 0)
	if err != nil {
		t.Fatalf("ClusterExtractor: %v", err)
	}
	if len(clusters) != 2 {
		t.Fatalf("len(clusters) = %d, want 2", len(clusters))
	}
	if len(clusters[0]) != 0 {
		t.Errorf("outlier bucket = %v, want empty", clusters[0])
	}
	if len(clusters[1]) != 1 || clusters[1][0] != 0 {
		t.Errorf("cluster 1 = %v, want [0]", clusters[1])
	}
}

func TestClusterExtractorDivertsOutliers(t *testing.T) {
	// With a finite, positive outlier_threshold, a point whose
	// reachability is still Undefined exceeds it too (Undefined is the
	// maximum finite real) and is diverted just like a genuinely distant
	// point — the threshold-<=0 "no outliers" shortcut does not apply.
	o := ordering([]int{0, 1, 2}, []float64{Undefined, 0.1, 50.0})
	clusters, err := ClusterExtractor(o, nil, 1.0)
	if err != nil {
		t.Fatalf("ClusterExtractor: %v", err)
	}
	if len(clusters) != 2 {
		t.Fatalf("len(clusters) = %d, want 2", len(clusters))
	}
	if len(clusters[0]) != 2 || clusters[0][0] != 0 || clusters[0][1] != 2 {
		t.Errorf("outlier bucket = %v, want [0 2]", clusters[0])
	}
	if len(clusters[1]) != 1 || clusters[1][0] != 1 {
		t.Errorf("cluster 1 = %v, want [1]", clusters[1])
	}
}

func TestClusterExtractorEmptyBucketsNotElided(t *testing.T) {
	o := ordering([]int{0, 1}, []float64{Undefined, 0.1})
	clusters, err := ClusterExtractor(o, []int{2}, Undefined)
	if err != nil {
		t.Fatalf("ClusterExtractor: %v", err)
	}
	if len(clusters) != 3 {
		t.Fatalf("len(clusters) = %d, want 3", len(clusters))
	}
	if clusters[2] == nil || len(clusters[2]) != 0 {
		t.Errorf("final empty segment = %v, want empty slice, not nil", clusters[2])
	}
}

func TestClusterExtractorRejectsOutOfRangeBorder(t *testing.T) {
	o := ordering([]int{0, 1}, []float64{Undefined, 0.1})
	_, err := ClusterExtractor(o, []int{5}, Undefined)
	if _, ok := err.(*DimensionMismatchError); !ok {
		t.Fatalf("expected DimensionMismatchError, got %v", err)
	}
}
