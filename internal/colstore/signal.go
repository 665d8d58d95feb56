package colstore

import (
	"fmt"
	"math"
	"math/rand"
	"path/filepath"

	"abrdata/internal/frame"
)

// Detrend modes accepted by the extraction operations.
const (
	DetrendConstant = "constant"
	DetrendLinear   = "linear"
	DetrendNone     = "none"
)

// ColumnsAuto derives the epoch row index from trial ordinal positions. It
// is the only supported value of the columns parameter.
const ColumnsAuto = "auto"

// timeColumn is the metadata column holding each trial's stimulus-onset
// timestamp in seconds.
const timeColumn = "t0"

// Signal is a lazily-windowable one-dimensional sample array. Samples are
// materialized on first extraction and shared by all subsequent extractions.
type Signal struct {
	dir        string
	name       string
	length     int64
	sampleRate float64

	samples []float64
}

// Len returns the number of samples the signal reports. Zero indicates a
// corrupt or truncated backing array.
func (s *Signal) Len() int64 {
	return s.length
}

// SampleRate returns the signal's sample rate in Hz.
func (s *Signal) SampleRate() float64 {
	return s.sampleRate
}

func (s *Signal) load() ([]float64, error) {
	if s.samples != nil {
		return s.samples, nil
	}
	values, err := readFloatFile(filepath.Join(s.dir, dataFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read signal %s: %w", s.name, err)
	}
	if int64(len(values)) > s.length {
		values = values[:s.length]
	}
	s.samples = values
	return s.samples, nil
}

// ExtractEpochs extracts one fixed-size window per metadata row, anchored at
// the row's stimulus-onset timestamp plus offset. Samples falling outside
// the signal are NaN.
func (s *Signal) ExtractEpochs(md *frame.Table, offset, duration float64, detrend, columns string) (*frame.Epochs, error) {
	if columns != ColumnsAuto {
		return nil, fmt.Errorf("unsupported columns selector %q", columns)
	}
	t0 := md.Column(timeColumn)
	if t0 == nil || t0.Type != frame.ColumnFloat {
		return nil, fmt.Errorf("metadata table has no numeric %q column", timeColumn)
	}

	samples, err := s.load()
	if err != nil {
		return nil, err
	}

	n := s.windowSamples(duration)
	out := s.newEpochs(offset, n)
	for trial, anchor := range t0.Floats {
		start := int64(math.Round((anchor + offset) * s.sampleRate))
		row := gather(samples, start, n)
		applyDetrend(row, detrend)
		out.Keys = append(out.Keys, frame.RowKey{File: -1, Trial: trial})
		out.Data = append(out.Data, row)
	}
	return out, nil
}

// ExtractRandomSegments extracts n randomly-positioned fixed-size windows,
// used for noise-floor and baseline estimation.
func (s *Signal) ExtractRandomSegments(n int, offset, duration float64, detrend string) (*frame.Epochs, error) {
	samples, err := s.load()
	if err != nil {
		return nil, err
	}

	width := s.windowSamples(duration)
	out := s.newEpochs(offset, width)
	offsetSamples := int64(math.Round(offset * s.sampleRate))
	for i := 0; i < n; i++ {
		start := randomStart(int64(len(samples)), width) + offsetSamples
		row := gather(samples, start, width)
		applyDetrend(row, detrend)
		out.Keys = append(out.Keys, frame.RowKey{File: -1, Trial: i})
		out.Data = append(out.Data, row)
	}
	return out, nil
}

// ExtractEpochsFiltered is ExtractEpochs with a zero-phase band-pass applied
// to a pad-extended window before the pad is trimmed away. An epoch whose
// padded window leaves the signal cannot be filtered cleanly and is returned
// entirely missing.
func (s *Signal) ExtractEpochsFiltered(md *frame.Table, offset, duration, lb, ub float64, order int, detrend string, padDuration float64, columns string) (*frame.Epochs, error) {
	if columns != ColumnsAuto {
		return nil, fmt.Errorf("unsupported columns selector %q", columns)
	}
	t0 := md.Column(timeColumn)
	if t0 == nil || t0.Type != frame.ColumnFloat {
		return nil, fmt.Errorf("metadata table has no numeric %q column", timeColumn)
	}

	samples, err := s.load()
	if err != nil {
		return nil, err
	}

	n := s.windowSamples(duration)
	pad := s.windowSamples(padDuration)
	bp := newBandPass(lb, ub, order, s.sampleRate)
	out := s.newEpochs(offset, n)
	for trial, anchor := range t0.Floats {
		start := int64(math.Round((anchor + offset) * s.sampleRate))
		row := filteredWindow(samples, start, n, pad, bp)
		applyDetrend(row, detrend)
		out.Keys = append(out.Keys, frame.RowKey{File: -1, Trial: trial})
		out.Data = append(out.Data, row)
	}
	return out, nil
}

// ExtractRandomSegmentsFiltered is ExtractRandomSegments with the same
// pad-and-filter treatment as ExtractEpochsFiltered.
func (s *Signal) ExtractRandomSegmentsFiltered(n int, offset, duration, lb, ub float64, order int, detrend string, padDuration float64) (*frame.Epochs, error) {
	samples, err := s.load()
	if err != nil {
		return nil, err
	}

	width := s.windowSamples(duration)
	pad := s.windowSamples(padDuration)
	bp := newBandPass(lb, ub, order, s.sampleRate)
	out := s.newEpochs(offset, width)
	offsetSamples := int64(math.Round(offset * s.sampleRate))
	for i := 0; i < n; i++ {
		start := randomStart(int64(len(samples)), width) + offsetSamples
		row := filteredWindow(samples, start, width, pad, bp)
		applyDetrend(row, detrend)
		out.Keys = append(out.Keys, frame.RowKey{File: -1, Trial: i})
		out.Data = append(out.Data, row)
	}
	return out, nil
}

func (s *Signal) windowSamples(duration float64) int {
	return int(math.Round(duration * s.sampleRate))
}

func (s *Signal) newEpochs(offset float64, n int) *frame.Epochs {
	offsets := make([]float64, n)
	for i := range offsets {
		offsets[i] = offset + float64(i)/s.sampleRate
	}
	return &frame.Epochs{Offsets: offsets}
}

// gather copies n samples starting at start, substituting NaN for positions
// outside the signal.
func gather(samples []float64, start int64, n int) []float64 {
	row := make([]float64, n)
	for i := range row {
		idx := start + int64(i)
		if idx < 0 || idx >= int64(len(samples)) {
			row[i] = math.NaN()
		} else {
			row[i] = samples[idx]
		}
	}
	return row
}

// filteredWindow gathers a pad-extended window, band-pass filters it with
// zero phase, and returns the central n samples. If the padded window is not
// fully backed by the signal the result is all NaN.
func filteredWindow(samples []float64, start int64, n, pad int, bp *bandPass) []float64 {
	lo := start - int64(pad)
	hi := start + int64(n+pad)
	if lo < 0 || hi > int64(len(samples)) {
		row := make([]float64, n)
		for i := range row {
			row[i] = math.NaN()
		}
		return row
	}
	padded := make([]float64, n+2*pad)
	copy(padded, samples[lo:hi])
	bp.filtfilt(padded)
	row := make([]float64, n)
	copy(row, padded[pad:pad+n])
	return row
}

func randomStart(total int64, width int) int64 {
	span := total - int64(width)
	if span <= 0 {
		return 0
	}
	return rand.Int63n(span)
}

// applyDetrend removes the per-epoch trend in place. Missing samples are
// ignored when estimating the trend and left missing afterwards.
func applyDetrend(row []float64, mode string) {
	switch mode {
	case DetrendConstant:
		var sum float64
		var count int
		for _, v := range row {
			if !math.IsNaN(v) {
				sum += v
				count++
			}
		}
		if count == 0 {
			return
		}
		mean := sum / float64(count)
		for i, v := range row {
			if !math.IsNaN(v) {
				row[i] = v - mean
			}
		}
	case DetrendLinear:
		// Least-squares line over the present samples.
		var sx, sy, sxx, sxy float64
		var count int
		for i, v := range row {
			if math.IsNaN(v) {
				continue
			}
			x := float64(i)
			sx += x
			sy += v
			sxx += x * x
			sxy += x * v
			count++
		}
		if count < 2 {
			return
		}
		cn := float64(count)
		denom := cn*sxx - sx*sx
		if denom == 0 {
			return
		}
		slope := (cn*sxy - sx*sy) / denom
		intercept := (sy - slope*sx) / cn
		for i, v := range row {
			if !math.IsNaN(v) {
				row[i] = v - (intercept + slope*float64(i))
			}
		}
	}
}
