// Package optics implements the density-reachability ordering at the heart of
// OPTICS (Ordering Points To Identify the Clustering Structure): given a set
// of equal-dimensionality points and a neighborhood radius and density
// threshold, it produces a linear cluster ordering annotated with
// reachability distances, plus a peak-finding and extraction pipeline that
// turns the ordering into flat clusters and an outlier set.
//
// The package is a pure algorithmic core: no logging, no file I/O, no
// indexing acceleration. A single run is single-threaded and holds no
// process-wide state, so independent runs over disjoint PointStores may run
// concurrently.
package optics
