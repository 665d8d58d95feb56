package abr

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	apperrors "abrdata/internal/errors"
	"abrdata/internal/frame"
)

// sessionNameRe parses a session directory name of the form
// "<date>-<time> <experimenter> <animal> <ear> <note> <experiment>...".
var sessionNameRe = regexp.MustCompile(
	`^(?P<date>\d{8}-\d{6}) (?P<experimenter>\S+) (?P<animal>\S+) (?P<ear>\S+) (?P<note>\S+) (?P<experiment>\w+)`)

// Superset aggregates repeated sessions for one animal/ear into a single
// logical dataset. Retrieval operations fan out to every constituent
// Recording sequentially and concatenate results under a file provenance
// index assigned in constituent order.
type Superset struct {
	basePath   string
	recordings []*Recording
}

// OpenSuperset builds a Superset from an explicit list of session
// locations. Any location that fails Recording validation fails the whole
// Superset.
func OpenSuperset(basePaths ...string) (*Superset, error) {
	s := &Superset{}
	for _, path := range basePaths {
		rec, err := OpenRecording(path)
		if err != nil {
			return nil, err
		}
		s.recordings = append(s.recordings, rec)
	}
	return s, nil
}

// SupersetFromFolder treats every subdirectory of baseFolder as a candidate
// session. Non-directories and locations that fail Recording validation are
// skipped.
func SupersetFromFolder(baseFolder string) (*Superset, error) {
	entries, err := os.ReadDir(baseFolder)
	if err != nil {
		return nil, apperrors.NewConstructionError("failed to enumerate sessions", err).
			WithContext("path", baseFolder)
	}
	s := &Superset{basePath: baseFolder}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		rec, err := OpenRecording(filepath.Join(baseFolder, entry.Name()))
		if err != nil {
			continue
		}
		s.recordings = append(s.recordings, rec)
	}
	return s, nil
}

// SupersetFromPattern discovers the sibling sessions of baseFolder: those
// sharing its experimenter, animal, ear and note while differing in date or
// experiment suffix.
func SupersetFromPattern(baseFolder string) (*Superset, error) {
	head, tail := filepath.Split(filepath.Clean(baseFolder))
	pattern, err := siblingPattern(tail)
	if err != nil {
		return nil, apperrors.NewConstructionError("failed to build sibling pattern", err).
			WithContext("path", baseFolder)
	}
	matches, err := filepath.Glob(filepath.Join(head, pattern))
	if err != nil {
		return nil, apperrors.NewConstructionError("failed to glob sibling sessions", err).
			WithContext("pattern", pattern)
	}
	s, err := OpenSuperset(matches...)
	if err != nil {
		return nil, err
	}
	s.basePath = baseFolder
	return s, nil
}

// siblingPattern rewrites a session directory name into a glob that keeps
// experimenter, animal, ear and note fixed while wildcarding the date and
// any experiment suffix.
func siblingPattern(name string) (string, error) {
	m := sessionNameRe.FindStringSubmatch(name)
	if m == nil {
		return "", fmt.Errorf("session name %q does not match the naming convention", name)
	}
	fields := make(map[string]string)
	for i, group := range sessionNameRe.SubexpNames() {
		if group != "" {
			fields[group] = m[i]
		}
	}
	return fmt.Sprintf("* %s %s %s %s %s*",
		fields["experimenter"], fields["animal"], fields["ear"],
		fields["note"], fields["experiment"]), nil
}

// BasePath returns the location the Superset was constructed from; empty
// when built from an explicit list.
func (s *Superset) BasePath() string {
	return s.basePath
}

// Recordings returns the constituent Recordings in provenance order.
func (s *Superset) Recordings() []*Recording {
	return s.recordings
}

func (s *Superset) merge(fn func(*Recording) (*frame.Epochs, error)) (*frame.Epochs, error) {
	parts := make([]*frame.Epochs, 0, len(s.recordings))
	for _, rec := range s.recordings {
		part, err := fn(rec)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return frame.ConcatEpochs(parts), nil
}

// Epochs fans out to every constituent with identical options and
// concatenates the results under the file provenance index.
func (s *Superset) Epochs(opts EpochOptions) (*frame.Epochs, error) {
	return s.merge(func(rec *Recording) (*frame.Epochs, error) {
		return rec.Epochs(opts)
	})
}

// EpochsFiltered fans out EpochsFiltered across the constituents.
func (s *Superset) EpochsFiltered(opts FilteredEpochOptions) (*frame.Epochs, error) {
	return s.merge(func(rec *Recording) (*frame.Epochs, error) {
		return rec.EpochsFiltered(opts)
	})
}

// RandomSegments fans out RandomSegments across the constituents.
func (s *Superset) RandomSegments(n int, opts SegmentOptions) (*frame.Epochs, error) {
	return s.merge(func(rec *Recording) (*frame.Epochs, error) {
		return rec.RandomSegments(n, opts)
	})
}

// RandomSegmentsFiltered fans out RandomSegmentsFiltered across the
// constituents.
func (s *Superset) RandomSegmentsFiltered(n int, opts FilteredSegmentOptions) (*frame.Epochs, error) {
	return s.merge(func(rec *Recording) (*frame.Epochs, error) {
		return rec.RandomSegmentsFiltered(n, opts)
	})
}

// ERPMetadata concatenates the constituents' trial metadata under the file
// provenance index. Metadata loads are cheap, so the result is not routed
// through the call cache.
func (s *Superset) ERPMetadata() (*frame.Table, error) {
	parts := make([]*frame.Table, 0, len(s.recordings))
	for _, rec := range s.recordings {
		part, err := rec.ERPMetadata()
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return frame.ConcatTables(parts), nil
}
