package optics

// OrderEntry is one record in an Ordering: a point and the reachability it
// held at the instant it was emitted.
type OrderEntry struct {
	Handle       Handle  `json:"handle"`
	Reachability float64 `json:"reachability"`
}

// Ordering is the linear density-reachability traversal OpticsOrdering
// produces. Its length always equals the dataset size; every handle
// appears exactly once.
type Ordering []OrderEntry

// ProgressFunc is invoked once per point emission, synchronously, in the
// same execution context as Optics itself. It must not mutate the
// PointStore or dataset; doing so is undefined behavior.
type ProgressFunc func(h Handle)

// Optics runs the density-reachability ordering algorithm over ps and
// returns the resulting Ordering. onPointProcessed may be nil.
//
// Optics requires eps >= 0. A caller layer that wants to offer "no radius
// limit" as a user-facing option is responsible for substituting the
// maximum finite real before calling in; Optics itself treats a negative
// eps as a parameter error, not a sentinel.
func Optics(ps *PointStore, eps float64, minPts int, onPointProcessed ProgressFunc) (Ordering, error) {
	if eps < 0 {
		return nil, &InvalidParameterError{Parameter: "eps", Reason: "must be >= 0"}
	}
	if minPts < 1 {
		return nil, &InvalidParameterError{Parameter: "min_pts", Reason: "must be >= 1"}
	}

	ps.reset()
	eps2 := eps * eps

	ordering := make(Ordering, 0, ps.Len())
	emit := func(h Handle) {
		ps.MarkProcessed(h)
		ordering = append(ordering, OrderEntry{Handle: h, Reachability: ps.Reachability(h)})
		if onPointProcessed != nil {
			onPointProcessed(h)
		}
	}

	for i := 0; i < ps.Len(); i++ {
		p := Handle(i)
		if ps.Processed(p) {
			continue
		}
		expand(ps, p, eps2, minPts, emit)
	}

	return ordering, nil
}

// expand emits p, and if p is a core object, drains a SeedQueue of its
// density-connected neighbors, emitting each in turn.
func expand(ps *PointStore, p Handle, eps2 float64, minPts int, emit func(Handle)) {
	n := NeighborScan(ps, p, eps2)
	ps.SetReachability(p, Undefined)
	cd := CoreDistance(ps, p, minPts, n)
	emit(p)

	if cd == Undefined {
		return
	}

	seeds := NewSeedQueue()
	updateSeeds(ps, n, p, cd, seeds)

	for seeds.Len() > 0 {
		q, _ := seeds.PopMin()
		nq := NeighborScan(ps, q, eps2)
		cdq := CoreDistance(ps, q, minPts, nq)
		emit(q)
		if cdq != Undefined {
			updateSeeds(ps, nq, q, cdq, seeds)
		}
	}
}

// updateSeeds offers every unprocessed neighbor of center a tentative
// reachability derived from center's core distance, inserting it into seeds
// the first time it receives a finite reachability and decrease-keying it
// on every subsequent improvement.
func updateSeeds(ps *PointStore, neighbors []Handle, center Handle, coreDist float64, seeds *SeedQueue) {
	cp := ps.Get(center)
	for _, o := range neighbors {
		if ps.Processed(o) {
			continue
		}
		newRD := coreDist
		if d := SquaredEuclidean(cp, ps.Get(o)); d > newRD {
			newRD = d
		}

		switch {
		case ps.Reachability(o) == Undefined:
			ps.SetReachability(o, newRD)
			seeds.Insert(o, newRD)
		case newRD < ps.Reachability(o):
			ps.SetReachability(o, newRD)
			seeds.UpdateKey(o, newRD)
		}
	}
}
