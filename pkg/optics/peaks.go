package optics

import "sort"

// persistencePair is one birth-death event from the 1-D persistence
// pairing: a local minimum (birth) matched with the local maximum (death)
// that merges its basin into a more persistent neighbor.
type persistencePair struct {
	minIndex    int
	maxIndex    int
	persistence float64
}

// persistencePairs runs the standard sub-level-set persistence pairing
// over a 1-D signal r: each local minimum starts a basin; basins merge at
// local maxima in increasing order of the maximum's value, and a merge
// pairs the higher (more recently created, i.e. shallower) of the two
// basins' minima with the merging maximum. The surviving basin is the one
// whose minimum is lower.
//
// This is the union-find formulation of 1-D persistent homology: process
// indices in ascending order of r[i]; an index starts a new component if
// neither neighbor has been seen yet, joins a component if exactly one
// neighbor has, and merges two components (recording a pair) if both
// neighbors belong to different components.
func persistencePairs(r []float64) []persistencePair {
	n := len(r)
	if n == 0 {
		return nil
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if r[order[a]] != r[order[b]] {
			return r[order[a]] < r[order[b]]
		}
		return order[a] < order[b]
	})

	parent := make([]int, n)
	for i := range parent {
		parent[i] = -1
	}
	basinMin := make([]int, n)
	seen := make([]bool, n)

	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	var pairs []persistencePair

	for _, i := range order {
		seen[i] = true
		parent[i] = i
		basinMin[i] = i

		var neighbors []int
		if i > 0 && seen[i-1] {
			neighbors = append(neighbors, i-1)
		}
		if i < n-1 && seen[i+1] {
			neighbors = append(neighbors, i+1)
		}

		switch len(neighbors) {
		case 0:
			// i opens a new basin; nothing to merge yet.
		case 1:
			root := find(neighbors[0])
			parent[i] = root
		case 2:
			rootA := find(neighbors[0])
			rootB := find(neighbors[1])
			if rootA == rootB {
				parent[i] = rootA
				continue
			}
			minA, minB := basinMin[rootA], basinMin[rootB]
			// The basin whose minimum is lower survives (it is the deeper,
			// more persistent feature); the shallower basin's minimum is
			// paired with i, the maximum that just merged it away.
			survivor, dying := rootA, rootB
			if r[minB] < r[minA] {
				survivor, dying = rootB, rootA
			}
			dyingMin := basinMin[dying]
			pairs = append(pairs, persistencePair{
				minIndex:    dyingMin,
				maxIndex:    i,
				persistence: r[i] - r[dyingMin],
			})
			parent[dying] = survivor
			parent[i] = survivor
		}
	}

	return pairs
}

// PeakFinder extracts cluster borders from a reachability sequence via 1-D
// persistence. Exactly one of topK or threshold mode is requested by the
// caller; see TopKPeaks and ThresholdPeaks.
//
// TopKPeaks returns up to k-1 max-indices, the most persistent first. If
// fewer than k-1 paired extrema exist, all of them are returned.
func TopKPeaks(r []float64, k int) ([]int, error) {
	if k < 1 {
		return nil, &InvalidParameterError{Parameter: "k", Reason: "must be >= 1"}
	}

	pairs := persistencePairs(r)
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].persistence > pairs[j].persistence
	})

	want := k - 1
	if want > len(pairs) {
		want = len(pairs)
	}

	out := make([]int, want)
	for i := 0; i < want; i++ {
		out[i] = pairs[i].maxIndex
	}
	return out, nil
}

// ThresholdPeaks returns every max-index from a paired extremum whose
// persistence is >= tau, in the order yielded by the persistence routine
// (ascending order of the paired maximum's position in the sweep).
func ThresholdPeaks(r []float64, tau float64) ([]int, error) {
	if tau < 0 {
		return nil, &InvalidParameterError{Parameter: "tau", Reason: "must be >= 0"}
	}

	pairs := persistencePairs(r)
	var out []int
	for _, p := range pairs {
		if p.persistence >= tau {
			out = append(out, p.maxIndex)
		}
	}
	return out, nil
}
