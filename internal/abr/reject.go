package abr

import (
	"fmt"
	"math"

	apperrors "abrdata/internal/errors"
	"abrdata/internal/frame"
)

// applyReject cleans an extracted epoch table. Rows with missing samples
// are always dropped. A nil threshold defers both threshold and mode to the
// first row of the trial metadata; reject_mode was not recorded by early
// versions of the acquisition program, so a missing column means absolute.
// An infinite threshold disables amplitude-based rejection entirely.
func (r *Recording) applyReject(result *frame.Epochs, threshold *float64, mode string) (*frame.Epochs, error) {
	result = result.DropMissing()

	var resolved float64
	if threshold != nil {
		resolved = *threshold
	} else {
		md, err := r.ERPMetadata()
		if err != nil {
			return nil, err
		}
		resolved, err = md.Float(0, "reject_threshold")
		if err != nil {
			return nil, apperrors.NewStorageError("metadata has no usable reject_threshold", err).
				WithContext("path", r.basePath)
		}
		mode = RejectAbsolute
		if md.HasColumn("reject_mode") {
			mode, err = md.String(0, "reject_mode")
			if err != nil {
				return nil, apperrors.NewStorageError("metadata has no usable reject_mode", err).
					WithContext("path", r.basePath)
			}
		}
	}

	if math.IsInf(resolved, 1) {
		return result, nil
	}

	switch mode {
	case RejectAbsolute:
		return result.Select(func(row []float64) bool {
			for _, v := range row {
				if v >= resolved {
					return false
				}
			}
			return true
		}), nil
	case RejectAmplitude:
		return nil, apperrors.NewUnsupportedError("amplitude rejection is not implemented")
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown reject mode %q", mode), nil)
	}
}
