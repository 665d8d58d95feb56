package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"abrdata/internal/frame"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	// BOMPrefix adds a UTF-8 BOM for Excel compatibility.
	BOMPrefix bool
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(bomPrefix bool) *CSVWriter {
	return &CSVWriter{BOMPrefix: bomPrefix}
}

// WriteEpochs writes an epoch table to filePath, creating the directory if
// absent.
func (w *CSVWriter) WriteEpochs(filePath string, epochs *frame.Epochs) error {
	slog.Info("Writing epochs CSV",
		slog.String("file_path", filePath),
		slog.Int("row_count", epochs.NRows()))

	records := make([][]string, 0, epochs.NRows()+1)
	records = append(records, epochHeader(epochs))
	for i, row := range epochs.Data {
		record := make([]string, 0, len(row)+2)
		record = append(record,
			strconv.Itoa(epochs.Keys[i].File),
			strconv.Itoa(epochs.Keys[i].Trial))
		for _, v := range row {
			record = append(record, formatSample(v))
		}
		records = append(records, record)
	}
	return w.write(filePath, records)
}

// WriteTable writes a metadata table to filePath.
func (w *CSVWriter) WriteTable(filePath string, table *frame.Table) error {
	slog.Info("Writing metadata CSV",
		slog.String("file_path", filePath),
		slog.Int("row_count", table.NRows()))

	records := make([][]string, 0, table.NRows()+1)
	records = append(records, tableHeader(table))
	for i := 0; i < table.NRows(); i++ {
		records = append(records, tableRecord(table, i))
	}
	return w.write(filePath, records)
}

func (w *CSVWriter) write(filePath string, records [][]string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if w.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(file)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// epochHeader builds the header row: index columns then sample offsets.
func epochHeader(epochs *frame.Epochs) []string {
	header := []string{"file", "trial"}
	for _, offset := range epochs.Offsets {
		header = append(header, strconv.FormatFloat(offset, 'g', -1, 64))
	}
	return header
}

func tableHeader(table *frame.Table) []string {
	var header []string
	if table.Files != nil {
		header = append(header, "file")
	}
	for _, col := range table.Columns {
		header = append(header, col.Name)
	}
	return header
}

func tableRecord(table *frame.Table, row int) []string {
	var record []string
	if table.Files != nil {
		record = append(record, strconv.Itoa(table.Files[row]))
	}
	for _, col := range table.Columns {
		if col.Type == frame.ColumnString {
			record = append(record, col.Strings[row])
		} else {
			record = append(record, formatSample(col.Floats[row]))
		}
	}
	return record
}

// formatSample renders a sample value, leaving missing values empty.
func formatSample(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
