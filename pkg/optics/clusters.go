package optics

import "math"

// Clusters is the output of ClusterExtractor: bucket 0 holds outliers;
// buckets 1..len(Clusters)-1 hold the contiguous ordering segments in
// order. Buckets are never elided, even when empty.
type Clusters [][]Handle

// ClusterExtractor partitions an Ordering into contiguous segments along
// ascending-sorted border indices, diverting any point whose reachability
// exceeds outlierThreshold into a dedicated outlier bucket (bucket 0).
//
// borders must already be sorted ascending; ClusterExtractor does not sort
// them itself (see PeakFinder's contract). An outlierThreshold <= 0 means
// "no outliers": it is replaced internally with the maximum finite real, so
// no point's reachability can exceed it.
func ClusterExtractor(ordering Ordering, borders []int, outlierThreshold float64) (Clusters, error) {
	if outlierThreshold <= 0 {
		outlierThreshold = math.MaxFloat64
	}

	n := len(ordering)
	for _, b := range borders {
		if b < 0 || b > n {
			return nil, &DimensionMismatchError{Context: "cluster border index", Want: n, Got: b}
		}
	}

	clusters := make(Clusters, len(borders)+2)
	for i := range clusters {
		clusters[i] = []Handle{}
	}

	start := 0
	segment := 1
	bounds := append(append([]int{}, borders...), n)
	for _, end := range bounds {
		for i := start; i < end; i++ {
			entry := ordering[i]
			if entry.Reachability > outlierThreshold {
				clusters[0] = append(clusters[0], entry.Handle)
			} else {
				clusters[segment] = append(clusters[segment], entry.Handle)
			}
		}
		start = end
		segment++
	}

	return clusters, nil
}
