package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"abrdata/internal/frame"
)

const epochsSheetName = "epochs"

// ExcelWriter exports epoch tables as Excel workbooks.
type ExcelWriter struct{}

// NewExcelWriter creates a new Excel writer instance
func NewExcelWriter() *ExcelWriter {
	return &ExcelWriter{}
}

// WriteEpochs writes an epoch table as a single-sheet workbook.
func (w *ExcelWriter) WriteEpochs(filePath string, epochs *frame.Epochs) error {
	slog.Info("Writing epochs workbook",
		slog.String("file_path", filePath),
		slog.Int("row_count", epochs.NRows()))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(epochsSheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	header := make([]interface{}, 0, epochs.NSamples()+2)
	header = append(header, "file", "trial")
	for _, offset := range epochs.Offsets {
		header = append(header, offset)
	}
	if err := setRow(f, 1, header); err != nil {
		return err
	}

	for i, row := range epochs.Data {
		record := make([]interface{}, 0, len(row)+2)
		record = append(record, epochs.Keys[i].File, epochs.Keys[i].Trial)
		for _, v := range row {
			if math.IsNaN(v) {
				record = append(record, nil)
			} else {
				record = append(record, v)
			}
		}
		if err := setRow(f, i+2, record); err != nil {
			return err
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", row, err)
	}
	if err := f.SetSheetRow(epochsSheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
