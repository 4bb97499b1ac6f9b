package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the worksheet name limit of the xlsx format.
const maxSheetName = 31

// defaultSheet is created by excelize.NewFile and removed once real sheets exist.
const defaultSheet = "Sheet1"

// WorkbookWriter writes tables as worksheets of one xlsx file.
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger}
}

// WriteWorkbook saves tables to path, one sheet per table in order.
// Numeric cells are stored as numbers.
func (w *WorkbookWriter) WriteWorkbook(path string, tables []Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("workbook needs at least one table")
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, table := range tables {
		sheet := sheetName(table.Name)
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}

		if err := writeRow(f, sheet, 1, table.Headers); err != nil {
			return err
		}
		if err := f.SetRowStyle(sheet, 1, 1, header); err != nil {
			return fmt.Errorf("failed to style header of %s: %w", sheet, err)
		}
		for r, row := range table.Rows {
			if err := writeRow(f, sheet, r+2, row); err != nil {
				return err
			}
		}
	}

	if sheetName(tables[0].Name) != defaultSheet {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("failed to remove default sheet: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Debug("Workbook written",
		slog.String("path", path),
		slog.Int("sheets", len(tables)))
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = cellValue(v)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func cellValue(v string) interface{} {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

func sheetName(name string) string {
	if name == "" {
		return defaultSheet
	}
	r := []rune(name)
	if len(r) > maxSheetName {
		r = r[:maxSheetName]
	}
	return string(r)
}
