// Package colstore reads and writes the directory-per-dataset columnar
// store used by ABR recordings.
//
// A recording's base directory contains one sub-directory per named dataset.
// An array dataset holds meta.json (recorded length and sample rate) next to
// data.bin, raw little-endian float64 samples. A table dataset holds
// meta.json (ordered column specs) next to one file per column: <col>.f64
// for numeric columns, <col>.json for string columns.
//
// An array whose data file cannot back the recorded length is considered
// corrupt and reports zero length; Repair rewrites the recorded length to
// the largest whole-sample count the data file supports.
//
// Signal wraps an array dataset and provides the epoch and random-segment
// extraction operations, including the band-pass filtered variants used to
// suppress low-frequency artifact before windowing.
package colstore
