package frame

import (
	"math"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableLookups(t *testing.T) {
	table := &Table{Columns: []Column{
		{Name: "reject_threshold", Type: ColumnFloat, Floats: []float64{2.5, 2.5}},
		{Name: "reject_mode", Type: ColumnString, Strings: []string{"absolute", "absolute"}},
	}}

	assert.Equal(t, 2, table.NRows())
	assert.True(t, table.HasColumn("reject_mode"))
	assert.False(t, table.HasColumn("missing"))

	v, err := table.Float(0, "reject_threshold")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	s, err := table.String(1, "reject_mode")
	require.NoError(t, err)
	assert.Equal(t, "absolute", s)

	_, err = table.Float(0, "reject_mode")
	assert.Error(t, err, "type mismatch should be reported")

	_, err = table.Float(5, "reject_threshold")
	assert.Error(t, err, "out-of-range row should be reported")
}

func TestStripPrefix(t *testing.T) {
	table := &Table{Columns: []Column{
		{Name: "target_tone_frequency", Type: ColumnFloat, Floats: []float64{1000}},
		{Name: "target_tone_level", Type: ColumnFloat, Floats: []float64{80}},
		{Name: "t0", Type: ColumnFloat, Floats: []float64{0.5}},
	}}

	stripped := table.StripPrefix("target_tone_")

	assert.Equal(t, "frequency", stripped.Columns[0].Name)
	assert.Equal(t, "level", stripped.Columns[1].Name)
	assert.Equal(t, "t0", stripped.Columns[2].Name, "non-matching names are untouched")
	assert.Equal(t, "target_tone_frequency", table.Columns[0].Name, "original table is unchanged")
}

func TestConcatTables(t *testing.T) {
	a := &Table{Columns: []Column{
		{Name: "frequency", Type: ColumnFloat, Floats: []float64{1000, 2000}},
	}}
	b := &Table{Columns: []Column{
		{Name: "frequency", Type: ColumnFloat, Floats: []float64{4000}},
	}}

	merged := ConcatTables([]*Table{a, b})

	assert.Equal(t, 3, merged.NRows())
	assert.Equal(t, []int{0, 0, 1}, merged.Files)
	assert.Equal(t, []float64{1000, 2000, 4000}, merged.Column("frequency").Floats)
}

func TestConcatTablesMissingColumnPadsNaN(t *testing.T) {
	a := &Table{Columns: []Column{
		{Name: "level", Type: ColumnFloat, Floats: []float64{80}},
	}}
	b := &Table{Columns: []Column{
		{Name: "other", Type: ColumnFloat, Floats: []float64{1}},
	}}

	merged := ConcatTables([]*Table{a, b})

	require.Equal(t, 2, merged.NRows())
	assert.Equal(t, 80.0, merged.Column("level").Floats[0])
	assert.True(t, math.IsNaN(merged.Column("level").Floats[1]))
}

func TestEpochsDropMissing(t *testing.T) {
	e := &Epochs{
		Keys:    []RowKey{{File: -1, Trial: 0}, {File: -1, Trial: 1}, {File: -1, Trial: 2}},
		Offsets: []float64{0, 0.001},
		Data: [][]float64{
			{1, 2},
			{3, math.NaN()},
			{5, 6},
		},
	}

	kept := e.DropMissing()

	require.Equal(t, 2, kept.NRows())
	assert.Equal(t, []RowKey{{File: -1, Trial: 0}, {File: -1, Trial: 2}}, kept.Keys)
	assert.Equal(t, 3, e.NRows(), "receiver is not mutated")
}

func TestConcatEpochsAssignsFileOrdinals(t *testing.T) {
	parts := []*Epochs{
		{
			Keys:    []RowKey{{File: -1, Trial: 0}, {File: -1, Trial: 1}},
			Offsets: []float64{0},
			Data:    [][]float64{{1}, {2}},
		},
		{
			Keys:    []RowKey{{File: -1, Trial: 0}},
			Offsets: []float64{0},
			Data:    [][]float64{{3}},
		},
	}

	merged := ConcatEpochs(parts)

	require.Equal(t, 3, merged.NRows())
	assert.Equal(t, []RowKey{{File: 0, Trial: 0}, {File: 0, Trial: 1}, {File: 1, Trial: 0}}, merged.Keys)
}

func TestEpochsCBORRoundTrip(t *testing.T) {
	e := &Epochs{
		Keys:    []RowKey{{File: -1, Trial: 0}},
		Offsets: []float64{0, 0.0005},
		Data:    [][]float64{{0.25, -0.5}},
	}

	raw, err := cbor.Marshal(e)
	require.NoError(t, err)

	var decoded Epochs
	require.NoError(t, cbor.Unmarshal(raw, &decoded))
	assert.Equal(t, e.Keys, decoded.Keys)
	assert.Equal(t, e.Offsets, decoded.Offsets)
	assert.Equal(t, e.Data, decoded.Data)
}
