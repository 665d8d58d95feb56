package abr

import (
	"log/slog"
	"slices"

	"abrdata/internal/callcache"
	"abrdata/internal/colstore"
	apperrors "abrdata/internal/errors"
	"abrdata/internal/frame"
)

const (
	eegArrayName    = "eeg"
	erpMetadataName = "erp_metadata"
	metadataPrefix  = "target_tone_"
)

// Dataset is the retrieval capability shared by Recording and Superset.
type Dataset interface {
	Epochs(opts EpochOptions) (*frame.Epochs, error)
	EpochsFiltered(opts FilteredEpochOptions) (*frame.Epochs, error)
	RandomSegments(n int, opts SegmentOptions) (*frame.Epochs, error)
	RandomSegmentsFiltered(n int, opts FilteredSegmentOptions) (*frame.Epochs, error)
	ERPMetadata() (*frame.Table, error)
}

// Recording is one ABR acquisition session rooted at a base directory. The
// EEG signal and trial metadata are loaded once and memoized for the
// Recording's lifetime; extraction results are persisted by the call cache
// under the session's cache directory.
type Recording struct {
	basePath string
	store    *colstore.Store
	cache    *callcache.Cache

	eeg         *colstore.Signal
	erpMetadata *frame.Table
}

// OpenRecording opens the session at basePath. It fails unless the store
// holds both the EEG array and the trial metadata table.
func OpenRecording(basePath string) (*Recording, error) {
	store, err := colstore.Open(basePath)
	if err != nil {
		return nil, apperrors.NewConstructionError("failed to open recording", err).
			WithContext("path", basePath)
	}
	if !slices.Contains(store.ArrayNames(), eegArrayName) {
		return nil, apperrors.NewConstructionError("missing eeg data", nil).
			WithContext("path", basePath)
	}
	if !slices.Contains(store.TableNames(), erpMetadataName) {
		return nil, apperrors.NewConstructionError("missing erp metadata", nil).
			WithContext("path", basePath)
	}
	return &Recording{
		basePath: basePath,
		store:    store,
		cache:    callcache.New(basePath),
	}, nil
}

// BasePath returns the session's base directory.
func (r *Recording) BasePath() string {
	return r.basePath
}

// EEG returns the session's EEG signal. On first access a zero-length
// array indicates a truncated store; one repair pass is attempted before
// reloading.
func (r *Recording) EEG() (*colstore.Signal, error) {
	if r.eeg != nil {
		return r.eeg, nil
	}
	sig, err := r.store.OpenSignal(eegArrayName)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open eeg signal", err).
			WithContext("path", r.basePath)
	}
	if sig.Len() == 0 {
		slog.Debug("EEG is corrupt. Repairing.", slog.String("path", r.basePath))
		if err := r.store.Repair(eegArrayName); err != nil {
			return nil, apperrors.NewStorageError("failed to repair eeg signal", err).
				WithContext("path", r.basePath)
		}
		sig, err = r.store.OpenSignal(eegArrayName)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to reload eeg signal", err).
				WithContext("path", r.basePath)
		}
	}
	r.eeg = sig
	return r.eeg, nil
}

// ERPMetadata returns the trial metadata with the stimulus parameter prefix
// stripped from column names. Loaded once per Recording.
func (r *Recording) ERPMetadata() (*frame.Table, error) {
	if r.erpMetadata != nil {
		return r.erpMetadata, nil
	}
	table, err := r.store.LoadTable(erpMetadataName)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to load erp metadata", err).
			WithContext("path", r.basePath)
	}
	r.erpMetadata = table.StripPrefix(metadataPrefix)
	return r.erpMetadata, nil
}

// Epochs extracts one fixed-size window per trial, anchored at each trial's
// stimulus onset plus opts.Offset, and returns the cleaned epoch table.
// Results are served from the persistent cache when the effective options
// match a previous call.
func (r *Recording) Epochs(opts EpochOptions) (*frame.Epochs, error) {
	opts = opts.withDefaults()
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	return r.cache.Fetch(opts.cacheKey(), opts.RefreshCache, func() (*frame.Epochs, error) {
		eeg, err := r.EEG()
		if err != nil {
			return nil, err
		}
		md, err := r.ERPMetadata()
		if err != nil {
			return nil, err
		}
		result, err := eeg.ExtractEpochs(md, opts.Offset, opts.Duration, opts.Detrend, opts.Columns)
		if err != nil {
			return nil, err
		}
		return r.applyReject(result, opts.RejectThreshold, opts.RejectMode)
	})
}

// RandomSegments extracts n randomly-positioned windows from the signal for
// baseline and noise estimation, then applies the same cleaning as Epochs.
func (r *Recording) RandomSegments(n int, opts SegmentOptions) (*frame.Epochs, error) {
	if err := validateCount(n); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	return r.cache.Fetch(opts.cacheKey(n), opts.RefreshCache, func() (*frame.Epochs, error) {
		eeg, err := r.EEG()
		if err != nil {
			return nil, err
		}
		result, err := eeg.ExtractRandomSegments(n, opts.Offset, opts.Duration, opts.Detrend)
		if err != nil {
			return nil, err
		}
		return r.applyReject(result, opts.RejectThreshold, opts.RejectMode)
	})
}

// EpochsFiltered is Epochs with a band-pass applied to a pad-extended
// window before windowing, keeping filter transients out of the epoch.
func (r *Recording) EpochsFiltered(opts FilteredEpochOptions) (*frame.Epochs, error) {
	opts = opts.withDefaults()
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	return r.cache.Fetch(opts.cacheKey(), opts.RefreshCache, func() (*frame.Epochs, error) {
		eeg, err := r.EEG()
		if err != nil {
			return nil, err
		}
		md, err := r.ERPMetadata()
		if err != nil {
			return nil, err
		}
		result, err := eeg.ExtractEpochsFiltered(md, opts.Offset, opts.Duration,
			opts.FilterLB, opts.FilterUB, opts.FilterOrder, opts.Detrend,
			opts.PadDuration, opts.Columns)
		if err != nil {
			return nil, err
		}
		return r.applyReject(result, opts.RejectThreshold, opts.RejectMode)
	})
}

// RandomSegmentsFiltered is RandomSegments with the band-pass treatment of
// EpochsFiltered.
func (r *Recording) RandomSegmentsFiltered(n int, opts FilteredSegmentOptions) (*frame.Epochs, error) {
	if err := validateCount(n); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	return r.cache.Fetch(opts.cacheKey(n), opts.RefreshCache, func() (*frame.Epochs, error) {
		eeg, err := r.EEG()
		if err != nil {
			return nil, err
		}
		result, err := eeg.ExtractRandomSegmentsFiltered(n, opts.Offset, opts.Duration,
			opts.FilterLB, opts.FilterUB, opts.FilterOrder, opts.Detrend, opts.PadDuration)
		if err != nil {
			return nil, err
		}
		return r.applyReject(result, opts.RejectThreshold, opts.RejectMode)
	})
}
