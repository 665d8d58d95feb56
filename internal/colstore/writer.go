package colstore

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"abrdata/internal/frame"
)

// WriteArray persists samples as an array dataset under basePath. It
// creates the dataset directory if absent and overwrites any existing data.
func WriteArray(basePath, name string, samples []float64, sampleRate float64) error {
	dir := filepath.Join(basePath, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create array directory: %w", err)
	}
	if err := writeFloatFile(filepath.Join(dir, dataFileName), samples); err != nil {
		return fmt.Errorf("failed to write array %s: %w", name, err)
	}
	meta := &arrayMeta{
		Kind:       kindArray,
		Length:     int64(len(samples)),
		SampleRate: sampleRate,
	}
	if err := writeArrayMeta(dir, meta); err != nil {
		return fmt.Errorf("failed to write array %s: %w", name, err)
	}
	return nil
}

// WriteTable persists a table dataset under basePath, one file per column.
func WriteTable(basePath, name string, table *frame.Table) error {
	dir := filepath.Join(basePath, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create table directory: %w", err)
	}

	meta := &tableMeta{Kind: kindTable}
	for _, col := range table.Columns {
		meta.Columns = append(meta.Columns, columnSpec{Name: col.Name, Dtype: string(col.Type)})
		switch col.Type {
		case frame.ColumnString:
			raw, err := json.Marshal(col.Strings)
			if err != nil {
				return fmt.Errorf("failed to encode column %s of table %s: %w", col.Name, name, err)
			}
			if err := os.WriteFile(filepath.Join(dir, col.Name+".json"), raw, 0644); err != nil {
				return fmt.Errorf("failed to write column %s of table %s: %w", col.Name, name, err)
			}
		default:
			if err := writeFloatFile(filepath.Join(dir, col.Name+".f64"), col.Floats); err != nil {
				return fmt.Errorf("failed to write column %s of table %s: %w", col.Name, name, err)
			}
		}
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode table %s metadata: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, metaFileName), raw, 0644); err != nil {
		return fmt.Errorf("failed to write table %s metadata: %w", name, err)
	}
	return nil
}

func writeFloatFile(path string, values []float64) error {
	raw := make([]byte, len(values)*sampleSize)
	for i, v := range values {
		binary.LittleEndian.PutUint64(raw[i*sampleSize:], math.Float64bits(v))
	}
	return os.WriteFile(path, raw, 0644)
}
