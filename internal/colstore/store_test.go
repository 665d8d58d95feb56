package colstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abrdata/internal/frame"
)

func TestOpenRequiresDirectory(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = Open(file)
	assert.Error(t, err)
}

func TestArrayRoundTrip(t *testing.T) {
	base := t.TempDir()
	samples := []float64{0.5, -1.25, 3, 0}
	require.NoError(t, WriteArray(base, "eeg", samples, 25000))

	store, err := Open(base)
	require.NoError(t, err)

	sig, err := store.OpenSignal("eeg")
	require.NoError(t, err)
	assert.Equal(t, int64(4), sig.Len())
	assert.Equal(t, 25000.0, sig.SampleRate())

	loaded, err := sig.load()
	require.NoError(t, err)
	assert.Equal(t, samples, loaded)
}

func TestTruncatedArrayReportsZeroLength(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, WriteArray(base, "eeg", []float64{1, 2, 3, 4}, 25000))

	// Drop the last sample and a half from the data file.
	dataFile := filepath.Join(base, "eeg", "data.bin")
	require.NoError(t, os.Truncate(dataFile, 4*8-12))

	store, err := Open(base)
	require.NoError(t, err)

	sig, err := store.OpenSignal("eeg")
	require.NoError(t, err)
	assert.Equal(t, int64(0), sig.Len())
}

func TestRepairRestoresBackedLength(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, WriteArray(base, "eeg", []float64{1, 2, 3, 4}, 25000))

	dataFile := filepath.Join(base, "eeg", "data.bin")
	require.NoError(t, os.Truncate(dataFile, 4*8-12))

	store, err := Open(base)
	require.NoError(t, err)
	require.NoError(t, store.Repair("eeg"))

	sig, err := store.OpenSignal("eeg")
	require.NoError(t, err)
	assert.Equal(t, int64(2), sig.Len(), "repair keeps only whole samples")

	loaded, err := sig.load()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, loaded)
}

func TestRepairMissingArrayFails(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, store.Repair("eeg"))
}

func TestTableRoundTrip(t *testing.T) {
	base := t.TempDir()
	table := &frame.Table{Columns: []frame.Column{
		{Name: "t0", Type: frame.ColumnFloat, Floats: []float64{0.1, 0.2}},
		{Name: "reject_threshold", Type: frame.ColumnFloat, Floats: []float64{2.5, 2.5}},
		{Name: "reject_mode", Type: frame.ColumnString, Strings: []string{"absolute", "absolute"}},
	}}
	require.NoError(t, WriteTable(base, "erp_metadata", table))

	store, err := Open(base)
	require.NoError(t, err)

	loaded, err := store.LoadTable("erp_metadata")
	require.NoError(t, err)
	require.Len(t, loaded.Columns, 3)
	assert.Equal(t, "t0", loaded.Columns[0].Name, "column order survives the round trip")
	assert.Equal(t, table.Columns[1].Floats, loaded.Column("reject_threshold").Floats)
	assert.Equal(t, table.Columns[2].Strings, loaded.Column("reject_mode").Strings)
}

func TestDatasetNameClassification(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, WriteArray(base, "eeg", []float64{1}, 25000))
	require.NoError(t, WriteArray(base, "mic", []float64{1}, 25000))
	require.NoError(t, WriteTable(base, "erp_metadata", &frame.Table{Columns: []frame.Column{
		{Name: "t0", Type: frame.ColumnFloat, Floats: []float64{0}},
	}}))
	// Directories without metadata are not datasets.
	require.NoError(t, os.MkdirAll(filepath.Join(base, "cache"), 0755))

	store, err := Open(base)
	require.NoError(t, err)

	assert.Equal(t, []string{"eeg", "mic"}, store.ArrayNames())
	assert.Equal(t, []string{"erp_metadata"}, store.TableNames())
}

func TestLoadTableUnknownDtype(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "bad")
	require.NoError(t, os.MkdirAll(dir, 0755))
	meta := `{"kind":"table","columns":[{"name":"x","dtype":"int32"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meta.json"), []byte(meta), 0644))

	store, err := Open(base)
	require.NoError(t, err)

	_, err = store.LoadTable("bad")
	assert.ErrorContains(t, err, "unknown dtype")
}
