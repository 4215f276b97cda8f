package optics

// CoreDistance computes the squared core distance of point h given its
// ε-neighborhood neighbors (as produced by NeighborScan) and min_pts.
//
// If |N_ε(p)| ≤ min_pts, the core distance is Undefined
// (strict inequality — the neighborhood includes p itself, so a genuine
// core object needs min_pts *other* points within ε). Otherwise the core
// distance is the squared distance to the min_pts-th closest point in
// N_ε(p), 0-indexed from nearest (index 0 is p itself, at distance 0).
//
// The min_pts-th order statistic is found by quickselect rather than a full
// sort: the core distance is the only value needed out of the neighborhood,
// and min_pts is typically small relative to |N_ε(p)|.
func CoreDistance(ps *PointStore, h Handle, minPts int, neighbors []Handle) float64 {
	if len(neighbors) <= minPts {
		return Undefined
	}

	p := ps.Get(h)
	dists := make([]float64, len(neighbors))
	for i, q := range neighbors {
		dists[i] = SquaredEuclidean(p, ps.Get(q))
	}

	return quickselect(dists, minPts)
}

// quickselect returns the k-th smallest element (0-indexed) of vals by
// repeated partitioning, without fully sorting the slice. vals is reordered as
// a side effect; callers that need the original order must copy first.
func quickselect(vals []float64, k int) float64 {
	lo, hi := 0, len(vals)-1
	for {
		if lo == hi {
			return vals[lo]
		}
		p := partition(vals, lo, hi)
		switch {
		case k == p:
			return vals[p]
		case k < p:
			hi = p - 1
		default:
			lo = p + 1
		}
	}
}

// partition performs a Lomuto partition of vals[lo:hi+1] around the pivot
// vals[hi], returning the pivot's final index.
func partition(vals []float64, lo, hi int) int {
	pivot := vals[hi]
	store := lo
	for i := lo; i < hi; i++ {
		if vals[i] < pivot {
			vals[store], vals[i] = vals[i], vals[store]
			store++
		}
	}
	vals[store], vals[hi] = vals[hi], vals[store]
	return store
}
