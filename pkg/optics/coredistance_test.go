package optics

import "testing"

func TestCoreDistanceUndefinedWhenSparse(t *testing.T) {
	ps, _ := NewPointStore([][]float64{{0, 0}, {10, 0}})
	n := NeighborScan(ps, 0, 1.0)
	if got := CoreDistance(ps, 0, 1, n); got != Undefined {
		t.Errorf("CoreDistance = %v, want Undefined", got)
	}
}

func TestCoreDistanceSingleNeighbor(t *testing.T) {
	// Two points one apart: {(0,0),(1,0)}, eps=2, min_pts=1.
	ps, _ := NewPointStore([][]float64{{0, 0}, {1, 0}})
	n := NeighborScan(ps, 0, 4.0)
	got := CoreDistance(ps, 0, 1, n)
	if got != 1.0 {
		t.Errorf("CoreDistance = %v, want 1.0", got)
	}
}

func TestCoreDistanceOrderStatistic(t *testing.T) {
	// p at origin, neighbors at squared distances 0 (self), 1, 4, 9.
	ps, _ := NewPointStore([][]float64{{0, 0}, {1, 0}, {2, 0}, {3, 0}})
	n := NeighborScan(ps, 0, 100.0)
	for minPts, want := range map[int]float64{1: 1, 2: 4, 3: 9} {
		if got := CoreDistance(ps, 0, minPts, n); got != want {
			t.Errorf("CoreDistance(min_pts=%d) = %v, want %v", minPts, got, want)
		}
	}
}

func TestCoreDistanceStrictInequality(t *testing.T) {
	// |N_eps(p)| must be strictly greater than min_pts, not >=.
	ps, _ := NewPointStore([][]float64{{0, 0}, {1, 0}})
	n := NeighborScan(ps, 0, 4.0)
	if got := CoreDistance(ps, 0, 2, n); got != Undefined {
		t.Errorf("CoreDistance = %v, want Undefined (|N|=2 <= min_pts=2)", got)
	}
}
