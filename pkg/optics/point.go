package optics

import "math"

// Undefined is the sentinel reachability value: "no finite value yet". It is
// the maximum finite float64, so it is strictly greater than any squared
// distance the engine will ever compute and participates correctly in
// ordinary numeric comparisons without special-casing.
const Undefined = math.MaxFloat64

// Handle identifies a point within one PointStore. Handles are dense
// indices assigned once at store construction in dataset storage order and
// never reused, which doubles as the stable total order SeedQueue needs for
// its tie-break.
type Handle int

// pointState is the mutable per-point state: reachability and processed
// flag. Coordinates themselves are immutable for the lifetime of the store.
type pointState struct {
	reachability float64
	processed    bool
}

// PointStore owns a dataset's coordinates and mutable per-point state for
// the lifetime of one OPTICS run. Every other component borrows points by
// Handle; none copy coordinates or extend their lifetime.
type PointStore struct {
	coords [][]float64
	state  []pointState
	dim    int
}

// NewPointStore validates the dataset (non-empty, uniform dimensionality)
// and returns a store with every point in its initial state
// (reachability = Undefined, processed = false).
func NewPointStore(dataset [][]float64) (*PointStore, error) {
	if len(dataset) == 0 {
		return nil, &InvalidParameterError{Parameter: "dataset", Reason: "must contain at least one point"}
	}

	dim := len(dataset[0])
	if dim == 0 {
		return nil, &InvalidParameterError{Parameter: "dataset", Reason: "points must have dimensionality >= 1"}
	}

	coords := make([][]float64, len(dataset))
	for i, p := range dataset {
		if len(p) != dim {
			return nil, &DimensionMismatchError{Context: "dataset", Want: dim, Got: len(p)}
		}
		coords[i] = p
	}

	ps := &PointStore{
		coords: coords,
		state:  make([]pointState, len(coords)),
		dim:    dim,
	}
	ps.reset()
	return ps, nil
}

// reset sets every point's reachability to Undefined and processed to
// false, as the start of every OPTICS run requires.
func (ps *PointStore) reset() {
	for i := range ps.state {
		ps.state[i] = pointState{reachability: Undefined, processed: false}
	}
}

// Len returns the number of points in the store.
func (ps *PointStore) Len() int { return len(ps.coords) }

// Dim returns the shared dimensionality of every point in the store.
func (ps *PointStore) Dim() int { return ps.dim }

// Get returns the immutable coordinates of point h.
func (ps *PointStore) Get(h Handle) []float64 {
	return ps.coords[h]
}

// Reachability returns the current reachability of point h: a finite
// distance, or Undefined if it has never been set.
func (ps *PointStore) Reachability(h Handle) float64 {
	return ps.state[h].reachability
}

// SetReachability records a new reachability for point h. v must be
// non-negative; a negative value is a caller logic error and aborts.
func (ps *PointStore) SetReachability(h Handle, v float64) {
	if v < 0 {
		panic(&LogicError{Reason: "reachability must be non-negative"})
	}
	ps.state[h].reachability = v
}

// Processed reports whether point h has already been emitted.
func (ps *PointStore) Processed(h Handle) bool {
	return ps.state[h].processed
}

// MarkProcessed marks point h as emitted. Processing is one-way: a point is
// never un-marked within a run.
func (ps *PointStore) MarkProcessed(h Handle) {
	ps.state[h].processed = true
}
