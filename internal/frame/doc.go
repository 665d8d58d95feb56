// Package frame provides the in-memory table types shared by the ABR data
// access layers.
//
// This package contains two main components:
//
// Table: An ordered metadata table with named, typed columns (float64 or
// string), one row per stimulus trial. Column order is preserved across
// load, rename and concatenation.
//
// Epochs: A trial-by-sample matrix of extracted signal windows. Rows are
// keyed by (file, trial), columns are sample offsets in seconds, and NaN
// marks samples the extraction could not provide (epochs near the signal
// boundary). Rows can only be removed, never mutated in place.
//
// Both types round-trip through CBOR so they can be persisted by the call
// cache.
//
// Example usage:
//
//	merged := frame.ConcatEpochs(parts)
//	kept := merged.Select(func(row []float64) bool { return true })
package frame
