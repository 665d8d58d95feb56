// Package abr provides read access to tone-evoked auditory brainstem
// response recordings stored as on-disk columnar arrays.
//
// This package contains three main components:
//
// Recording: One acquisition session. It exposes the EEG signal and trial
// metadata through memoized accessors and the epoch/segment extraction
// operations, each wrapped by a persistent result cache and post-processed
// by the artifact rejection filter.
//
// Superset: An aggregate over repeated sessions for one animal/ear. It
// exposes the same operations as a Recording, fanning out to every
// constituent sequentially and concatenating results under a file
// provenance index.
//
// Load: Decides whether a location holds a single Recording or a directory
// of sessions, and constructs accordingly.
//
// Example usage:
//
//	ds, err := abr.Load("/data/20240115-093000 brad B0042 right - abr_io")
//	if err != nil {
//	    return err
//	}
//	epochs, err := ds.Epochs(abr.DefaultEpochOptions())
package abr
