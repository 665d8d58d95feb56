package exporter

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abrdata/internal/frame"
)

func sampleEpochs() *frame.Epochs {
	return &frame.Epochs{
		Keys:    []frame.RowKey{{File: 0, Trial: 0}, {File: 1, Trial: 0}},
		Offsets: []float64{0, 0.001},
		Data: [][]float64{
			{0.5, -0.25},
			{1.5, math.NaN()},
		},
	}
}

func TestWriteEpochsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "epochs.csv")

	require.NoError(t, NewCSVWriter(false).WriteEpochs(path, sampleEpochs()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "file,trial,0,0.001", lines[0])
	assert.Equal(t, "0,0,0.5,-0.25", lines[1])
	assert.Equal(t, "1,0,1.5,", lines[2], "missing samples export as empty cells")
}

func TestWriteEpochsCSVWithBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "epochs.csv")

	require.NoError(t, NewCSVWriter(true).WriteEpochs(path, sampleEpochs()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, raw[:3])
}

func TestWriteTableCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.csv")
	table := &frame.Table{
		Columns: []frame.Column{
			{Name: "frequency", Type: frame.ColumnFloat, Floats: []float64{1000, 2000}},
			{Name: "reject_mode", Type: frame.ColumnString, Strings: []string{"absolute", "absolute"}},
		},
		Files: []int{0, 1},
	}

	require.NoError(t, NewCSVWriter(false).WriteTable(path, table))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "file,frequency,reject_mode", lines[0])
	assert.Equal(t, "0,1000,absolute", lines[1])
	assert.Equal(t, "1,2000,absolute", lines[2])
}

func TestWriteTableCSVWithoutFileIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.csv")
	table := &frame.Table{Columns: []frame.Column{
		{Name: "frequency", Type: frame.ColumnFloat, Floats: []float64{1000}},
	}}

	require.NoError(t, NewCSVWriter(false).WriteTable(path, table))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "frequency", strings.Split(strings.TrimSpace(string(raw)), "\n")[0],
		"single-session tables have no file column")
}
