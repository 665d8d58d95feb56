package abr

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "abrdata/internal/errors"
)

// writeSiblingSessions writes K sessions with the given trial counts under
// root and returns their paths in name order.
func writeSiblingSessions(t *testing.T, root string, trialCounts []int) []string {
	t.Helper()
	names := []string{
		"20240101-093000 brad B0042 right - abr_io",
		"20240102-101500 brad B0042 right - abr_io",
		"20240103-110000 brad B0042 right - abr_io (2)",
	}
	var paths []string
	for i, count := range trialCounts {
		t0s := make([]float64, count)
		for j := range t0s {
			t0s[j] = 0.1 + 0.05*float64(j)
		}
		base := filepath.Join(root, names[i])
		writeSession(t, base, sessionSpec{
			samples:         flatSignal(2000, 0.1),
			sampleRate:      1000,
			t0s:             t0s,
			rejectThreshold: math.Inf(1),
			rejectMode:      "absolute",
		})
		paths = append(paths, base)
	}
	return paths
}

func TestOpenSupersetExplicitList(t *testing.T) {
	root := t.TempDir()
	paths := writeSiblingSessions(t, root, []int{3, 5})

	set, err := OpenSuperset(paths...)
	require.NoError(t, err)
	assert.Len(t, set.Recordings(), 2)
}

func TestOpenSupersetPropagatesConstructionError(t *testing.T) {
	root := t.TempDir()
	paths := writeSiblingSessions(t, root, []int{3})
	paths = append(paths, filepath.Join(root, "not-a-session"))

	_, err := OpenSuperset(paths...)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConstruction))
}

func TestSupersetFromFolderSkipsInvalidEntries(t *testing.T) {
	root := t.TempDir()
	writeSiblingSessions(t, root, []int{3, 5})

	// Neither a stray file nor an empty directory is a session.
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0755))

	set, err := SupersetFromFolder(root)
	require.NoError(t, err)
	assert.Len(t, set.Recordings(), 2)
	assert.Equal(t, root, set.BasePath())
}

func TestSupersetFromFolderMissingRoot(t *testing.T) {
	_, err := SupersetFromFolder(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConstruction))
}

func TestSupersetEpochsProvenance(t *testing.T) {
	root := t.TempDir()
	paths := writeSiblingSessions(t, root, []int{3, 5, 2})

	set, err := OpenSuperset(paths...)
	require.NoError(t, err)

	epochs, err := set.Epochs(EpochOptions{})
	require.NoError(t, err)
	require.Equal(t, 10, epochs.NRows(), "merged size is the sum of constituent sizes")

	var files []int
	for _, key := range epochs.Keys {
		files = append(files, key.File)
	}
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1, 1, 1, 2, 2}, files)
	assert.Equal(t, 0, epochs.Keys[3].Trial, "trial ordinals restart per constituent")
}

func TestSupersetERPMetadata(t *testing.T) {
	root := t.TempDir()
	paths := writeSiblingSessions(t, root, []int{3, 5})

	set, err := OpenSuperset(paths...)
	require.NoError(t, err)

	md, err := set.ERPMetadata()
	require.NoError(t, err)
	assert.Equal(t, 8, md.NRows())
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1, 1, 1}, md.Files)
	assert.True(t, md.HasColumn("frequency"), "constituent column normalization carries through")
}

func TestSupersetRandomSegments(t *testing.T) {
	root := t.TempDir()
	paths := writeSiblingSessions(t, root, []int{3, 5})

	set, err := OpenSuperset(paths...)
	require.NoError(t, err)

	segments, err := set.RandomSegments(4, SegmentOptions{RejectThreshold: f64(math.Inf(1))})
	require.NoError(t, err)
	assert.Equal(t, 8, segments.NRows(), "each constituent contributes n segments")
}

func TestSupersetFromPattern(t *testing.T) {
	root := t.TempDir()
	paths := writeSiblingSessions(t, root, []int{3, 5, 2})

	// Same animal, different ear and different note must not be discovered.
	for _, name := range []string{
		"20240104-120000 brad B0042 left - abr_io",
		"20240105-120000 brad B0042 right saline abr_io",
		"20240106-120000 dana B0077 right - abr_io",
	} {
		writeSession(t, filepath.Join(root, name), sessionSpec{
			samples:         flatSignal(2000, 0.1),
			sampleRate:      1000,
			t0s:             []float64{0.1},
			rejectThreshold: math.Inf(1),
			rejectMode:      "absolute",
		})
	}

	set, err := SupersetFromPattern(paths[0])
	require.NoError(t, err)
	require.Len(t, set.Recordings(), 3, "all sessions sharing experimenter/animal/ear/note are discovered")
	assert.Equal(t, paths[0], set.BasePath())

	var found []string
	for _, rec := range set.Recordings() {
		found = append(found, filepath.Base(rec.BasePath()))
	}
	assert.Contains(t, found, "20240103-110000 brad B0042 right - abr_io (2)",
		"experiment suffixes are allowed to differ")
}

func TestSupersetFromPatternRejectsUnconventionalName(t *testing.T) {
	base := filepath.Join(t.TempDir(), "plain-session-name")
	tenTrialSession(t, base)

	_, err := SupersetFromPattern(base)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConstruction))
}
