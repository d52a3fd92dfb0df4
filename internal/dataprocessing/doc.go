// Package dataprocessing implements the transformation core of the
// franchise sales pipeline: schema mapping and snapshot normalization,
// rank-based week bucketing into TTM/LY/PY windows, zero-filled
// franchise crosstab aggregation, derived analytical metrics, and the
// data-quality report.
//
// Every run is a full batch recompute from the input snapshot. The
// package holds no mutable state between calls; all functions are
// deterministic given identical input.
package dataprocessing
