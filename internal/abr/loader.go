package abr

import (
	"os"
	"path/filepath"
)

// Load decides what a storage location holds. A location containing the EEG
// array directory is a single Recording; anything else is treated as a
// directory of sessions and loaded as a Superset.
func Load(basePath string) (Dataset, error) {
	marker := filepath.Join(basePath, eegArrayName)
	if _, err := os.Stat(marker); err == nil {
		return OpenRecording(basePath)
	}
	return SupersetFromFolder(basePath)
}

// IsABRExperiment reports whether the location loads as either a Recording
// or a Superset. All construction failures convert to false; this is the
// one place errors are deliberately swallowed.
func IsABRExperiment(basePath string) bool {
	_, err := Load(basePath)
	return err == nil
}
