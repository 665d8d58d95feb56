package frame

import "math"

// RowKey identifies one epoch row. File is the provenance ordinal assigned
// when supersets merge per-session results; it is -1 for unmerged rows.
// Trial is the trial (or random-segment) ordinal within its session.
type RowKey struct {
	File  int `cbor:"file"`
	Trial int `cbor:"trial"`
}

// Epochs is a trial-by-sample matrix of extracted signal windows. Offsets
// holds the column labels (sample offsets in seconds relative to the epoch
// anchor); Data is row-major with one slice per epoch. NaN marks a sample
// the extraction could not provide.
type Epochs struct {
	Keys    []RowKey    `cbor:"keys"`
	Offsets []float64   `cbor:"offsets"`
	Data    [][]float64 `cbor:"data"`
}

// NRows returns the number of epoch rows.
func (e *Epochs) NRows() int {
	return len(e.Data)
}

// NSamples returns the number of samples per epoch.
func (e *Epochs) NSamples() int {
	return len(e.Offsets)
}

// Select returns a new Epochs holding only the rows for which keep returns
// true. Row data is shared with the receiver; rows are never copied or
// mutated.
func (e *Epochs) Select(keep func(row []float64) bool) *Epochs {
	out := &Epochs{Offsets: e.Offsets}
	for i, row := range e.Data {
		if keep(row) {
			out.Keys = append(out.Keys, e.Keys[i])
			out.Data = append(out.Data, row)
		}
	}
	return out
}

// DropMissing removes every row containing at least one NaN sample.
func (e *Epochs) DropMissing() *Epochs {
	return e.Select(func(row []float64) bool {
		for _, v := range row {
			if math.IsNaN(v) {
				return false
			}
		}
		return true
	})
}

// ConcatEpochs concatenates epoch tables row-wise, assigning each part's
// ordinal position as the File key of its rows. The first part's offsets
// define the result's column labels.
func ConcatEpochs(parts []*Epochs) *Epochs {
	out := &Epochs{}
	if len(parts) > 0 {
		out.Offsets = parts[0].Offsets
	}
	for ordinal, part := range parts {
		for i, row := range part.Data {
			key := part.Keys[i]
			key.File = ordinal
			out.Keys = append(out.Keys, key)
			out.Data = append(out.Data, row)
		}
	}
	return out
}
