package abr

import (
	"github.com/go-playground/validator/v10"

	"abrdata/internal/callcache"
	"abrdata/internal/colstore"
	apperrors "abrdata/internal/errors"
)

// Reject modes. Amplitude (peak-to-peak) rejection is declared but not
// implemented; requesting it always fails.
const (
	RejectAbsolute  = "absolute"
	RejectAmplitude = "amplitude"
)

// Default extraction parameters. The unfiltered window starts at stimulus
// onset; the filtered window starts 1 ms before onset and carries a 10 ms
// pad on both sides to keep filter transients out of the window.
const (
	DefaultDuration = 8.5e-3

	DefaultFilterLB         = 300.0
	DefaultFilterUB         = 3000.0
	DefaultFilterOrder      = 1
	DefaultFilteredOffset   = -1e-3
	DefaultFilteredDuration = 10e-3
	DefaultPadDuration      = 10e-3
)

var validate = validator.New()

// EpochOptions parameterizes Recording.Epochs. The zero value of Duration,
// Detrend, RejectMode and Columns means "use the default"; Offset is taken
// literally. A nil RejectThreshold defers both threshold and mode to the
// first row of the trial metadata. RefreshCache forces a fresh extraction
// and is not part of the cache key.
type EpochOptions struct {
	Offset          float64
	Duration        float64 `validate:"gt=0"`
	Detrend         string  `validate:"oneof=constant linear none"`
	RejectThreshold *float64
	RejectMode      string `validate:"oneof=absolute amplitude"`
	Columns         string `validate:"eq=auto"`
	RefreshCache    bool
}

// DefaultEpochOptions returns the options Recording.Epochs uses when fields
// are left at their zero value.
func DefaultEpochOptions() EpochOptions {
	return EpochOptions{}.withDefaults()
}

func (o EpochOptions) withDefaults() EpochOptions {
	if o.Duration == 0 {
		o.Duration = DefaultDuration
	}
	if o.Detrend == "" {
		o.Detrend = colstore.DetrendConstant
	}
	if o.RejectMode == "" {
		o.RejectMode = RejectAbsolute
	}
	if o.Columns == "" {
		o.Columns = colstore.ColumnsAuto
	}
	return o
}

func (o EpochOptions) cacheKey() callcache.Key {
	return callcache.Key{Op: "get_epochs", Params: []callcache.Param{
		callcache.FloatParam("offset", o.Offset),
		callcache.FloatParam("duration", o.Duration),
		callcache.StringParam("detrend", o.Detrend),
		callcache.OptFloatParam("reject_threshold", o.RejectThreshold),
		callcache.StringParam("reject_mode", o.RejectMode),
		callcache.StringParam("columns", o.Columns),
	}}
}

// SegmentOptions parameterizes Recording.RandomSegments. Field semantics
// match EpochOptions.
type SegmentOptions struct {
	Offset          float64
	Duration        float64 `validate:"gt=0"`
	Detrend         string  `validate:"oneof=constant linear none"`
	RejectThreshold *float64
	RejectMode      string `validate:"oneof=absolute amplitude"`
	RefreshCache    bool
}

// DefaultSegmentOptions returns the options Recording.RandomSegments uses
// when fields are left at their zero value.
func DefaultSegmentOptions() SegmentOptions {
	return SegmentOptions{}.withDefaults()
}

func (o SegmentOptions) withDefaults() SegmentOptions {
	if o.Duration == 0 {
		o.Duration = DefaultDuration
	}
	if o.Detrend == "" {
		o.Detrend = colstore.DetrendConstant
	}
	if o.RejectMode == "" {
		o.RejectMode = RejectAbsolute
	}
	return o
}

func (o SegmentOptions) cacheKey(n int) callcache.Key {
	return callcache.Key{Op: "get_random_segments", Params: []callcache.Param{
		callcache.IntParam("n", n),
		callcache.FloatParam("offset", o.Offset),
		callcache.FloatParam("duration", o.Duration),
		callcache.StringParam("detrend", o.Detrend),
		callcache.OptFloatParam("reject_threshold", o.RejectThreshold),
		callcache.StringParam("reject_mode", o.RejectMode),
	}}
}

// FilteredEpochOptions parameterizes Recording.EpochsFiltered. Offset is
// taken literally, so build on DefaultFilteredEpochOptions to start from
// the conventional pre-stimulus window.
type FilteredEpochOptions struct {
	FilterLB        float64 `validate:"gt=0"`
	FilterUB        float64 `validate:"gt=0,gtfield=FilterLB"`
	FilterOrder     int     `validate:"gte=1"`
	Offset          float64
	Duration        float64 `validate:"gt=0"`
	Detrend         string  `validate:"oneof=constant linear none"`
	PadDuration     float64 `validate:"gte=0"`
	RejectThreshold *float64
	RejectMode      string `validate:"oneof=absolute amplitude"`
	Columns         string `validate:"eq=auto"`
	RefreshCache    bool
}

// DefaultFilteredEpochOptions returns the conventional filtered extraction
// parameters: 300-3000 Hz first-order band-pass, 10 ms window starting 1 ms
// before stimulus onset, 10 ms pad.
func DefaultFilteredEpochOptions() FilteredEpochOptions {
	return FilteredEpochOptions{Offset: DefaultFilteredOffset}.withDefaults()
}

func (o FilteredEpochOptions) withDefaults() FilteredEpochOptions {
	if o.FilterLB == 0 {
		o.FilterLB = DefaultFilterLB
	}
	if o.FilterUB == 0 {
		o.FilterUB = DefaultFilterUB
	}
	if o.FilterOrder == 0 {
		o.FilterOrder = DefaultFilterOrder
	}
	if o.Duration == 0 {
		o.Duration = DefaultFilteredDuration
	}
	if o.Detrend == "" {
		o.Detrend = colstore.DetrendConstant
	}
	if o.PadDuration == 0 {
		o.PadDuration = DefaultPadDuration
	}
	if o.RejectMode == "" {
		o.RejectMode = RejectAbsolute
	}
	if o.Columns == "" {
		o.Columns = colstore.ColumnsAuto
	}
	return o
}

func (o FilteredEpochOptions) cacheKey() callcache.Key {
	return callcache.Key{Op: "get_epochs_filtered", Params: []callcache.Param{
		callcache.FloatParam("filter_lb", o.FilterLB),
		callcache.FloatParam("filter_ub", o.FilterUB),
		callcache.IntParam("filter_order", o.FilterOrder),
		callcache.FloatParam("offset", o.Offset),
		callcache.FloatParam("duration", o.Duration),
		callcache.StringParam("detrend", o.Detrend),
		callcache.FloatParam("pad_duration", o.PadDuration),
		callcache.OptFloatParam("reject_threshold", o.RejectThreshold),
		callcache.StringParam("reject_mode", o.RejectMode),
		callcache.StringParam("columns", o.Columns),
	}}
}

// FilteredSegmentOptions parameterizes Recording.RandomSegmentsFiltered.
type FilteredSegmentOptions struct {
	FilterLB        float64 `validate:"gt=0"`
	FilterUB        float64 `validate:"gt=0,gtfield=FilterLB"`
	FilterOrder     int     `validate:"gte=1"`
	Offset          float64
	Duration        float64 `validate:"gt=0"`
	Detrend         string  `validate:"oneof=constant linear none"`
	PadDuration     float64 `validate:"gte=0"`
	RejectThreshold *float64
	RejectMode      string `validate:"oneof=absolute amplitude"`
	RefreshCache    bool
}

// DefaultFilteredSegmentOptions mirrors DefaultFilteredEpochOptions for
// random segments.
func DefaultFilteredSegmentOptions() FilteredSegmentOptions {
	return FilteredSegmentOptions{Offset: DefaultFilteredOffset}.withDefaults()
}

func (o FilteredSegmentOptions) withDefaults() FilteredSegmentOptions {
	if o.FilterLB == 0 {
		o.FilterLB = DefaultFilterLB
	}
	if o.FilterUB == 0 {
		o.FilterUB = DefaultFilterUB
	}
	if o.FilterOrder == 0 {
		o.FilterOrder = DefaultFilterOrder
	}
	if o.Duration == 0 {
		o.Duration = DefaultFilteredDuration
	}
	if o.Detrend == "" {
		o.Detrend = colstore.DetrendConstant
	}
	if o.PadDuration == 0 {
		o.PadDuration = DefaultPadDuration
	}
	if o.RejectMode == "" {
		o.RejectMode = RejectAbsolute
	}
	return o
}

func (o FilteredSegmentOptions) cacheKey(n int) callcache.Key {
	return callcache.Key{Op: "get_random_segments_filtered", Params: []callcache.Param{
		callcache.IntParam("n", n),
		callcache.FloatParam("filter_lb", o.FilterLB),
		callcache.FloatParam("filter_ub", o.FilterUB),
		callcache.IntParam("filter_order", o.FilterOrder),
		callcache.FloatParam("offset", o.Offset),
		callcache.FloatParam("duration", o.Duration),
		callcache.StringParam("detrend", o.Detrend),
		callcache.FloatParam("pad_duration", o.PadDuration),
		callcache.OptFloatParam("reject_threshold", o.RejectThreshold),
		callcache.StringParam("reject_mode", o.RejectMode),
	}}
}

func validateOptions(opts interface{}) error {
	if err := validate.Struct(opts); err != nil {
		return apperrors.NewValidationError("invalid extraction options", err)
	}
	return nil
}

func validateCount(n int) error {
	if n <= 0 {
		return apperrors.NewValidationError("segment count must be positive", nil)
	}
	return nil
}
