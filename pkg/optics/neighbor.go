package optics

// NeighborScan finds every point within squared radius eps2 of the point at
// h, inclusive of h itself (N_ε(p) always contains p). It is
// a plain linear scan: the core has no index acceleration, by design (see
// doc.go) — an index layer is free to wrap PointStore with a faster scan
// without touching the algorithm above it.
func NeighborScan(ps *PointStore, h Handle, eps2 float64) []Handle {
	p := ps.Get(h)
	var neighbors []Handle
	for i := 0; i < ps.Len(); i++ {
		q := ps.Get(Handle(i))
		if SquaredEuclidean(p, q) <= eps2 {
			neighbors = append(neighbors, Handle(i))
		}
	}
	return neighbors
}
