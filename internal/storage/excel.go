package storage

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"freightcalc/internal/sheet"
)

var (
	ErrNoInput = errors.New("no input files")
	// ErrUnsupportedFormat is returned for legacy .xls workbooks, which
	// excelize cannot open.
	ErrUnsupportedFormat = errors.New("unsupported workbook format, save it as .xlsx")
)

const defaultSheet = "Sheet1"

// Workbooks reads and writes .xlsx files through excelize.
type Workbooks struct {
	sheetName string
	logger    *zap.Logger
}

func NewWorkbooks(outputSheet string, logger *zap.Logger) *Workbooks {
	if outputSheet == "" {
		outputSheet = defaultSheet
	}
	return &Workbooks{sheetName: outputSheet, logger: logger}
}

// ReadAll reads the first sheet of every file and stacks them into one
// table. headerRow is 1-based; rows above it are skipped.
func (w *Workbooks) ReadAll(paths []string, headerRow int) (*sheet.Table, error) {
	const operation = "storage.ReadAll"

	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", operation, ErrNoInput)
	}

	for _, path := range paths {
		if strings.EqualFold(filepath.Ext(path), ".xls") {
			return nil, fmt.Errorf("%s: %s: %w", operation, path, ErrUnsupportedFormat)
		}
	}

	tables := make([]*sheet.Table, 0, len(paths))
	for _, path := range paths {
		t, err := w.read(path, headerRow)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", operation, err)
		}
		w.logger.Info("Workbook loaded",
			zap.String("path", path),
			zap.Int("rows", t.Len()),
			zap.Int("columns", len(t.Columns)))
		tables = append(tables, t)
	}

	return sheet.Concat(tables...), nil
}

func (w *Workbooks) read(path string, headerRow int) (*sheet.Table, error) {
	if headerRow < 1 {
		return nil, fmt.Errorf("header row must be at least 1, got %d", headerRow)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from %s: %w", path, err)
	}
	if len(rows) < headerRow {
		return nil, fmt.Errorf("%s: header row %d not found (sheet has %d rows)", path, headerRow, len(rows))
	}

	header := rows[headerRow-1]
	columns := make([]string, len(header))
	for i, name := range header {
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		columns[i] = name
	}

	t := sheet.New(columns...)
	for _, row := range rows[headerRow:] {
		if isBlank(row) {
			continue
		}
		t.Append(row)
	}

	return t, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Write saves the table as a single sheet. The workbook is written to a
// temporary file next to path and renamed into place, so a failed write
// leaves no partial output.
func (w *Workbooks) Write(path string, t *sheet.Table) error {
	const operation = "storage.Write"

	f := excelize.NewFile()
	defer f.Close()

	if w.sheetName != defaultSheet {
		if err := f.SetSheetName(defaultSheet, w.sheetName); err != nil {
			return fmt.Errorf("%s: failed to name sheet: %w", operation, err)
		}
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(w.sheetName, "A1", &header); err != nil {
		return fmt.Errorf("%s: failed to write header: %w", operation, err)
	}

	if len(t.Columns) > 0 {
		if err := w.styleHeader(f, len(t.Columns)); err != nil {
			w.logger.Warn("Failed to style header", zap.Error(err))
		}
	}

	for r, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = cellValue(v)
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(w.sheetName, cell, &cells); err != nil {
			return fmt.Errorf("%s: failed to write row %d: %w", operation, r+1, err)
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".freightcalc-*.xlsx")
	if err != nil {
		return fmt.Errorf("%s: failed to create temp file: %w", operation, err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := f.SaveAs(tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%s: failed to save Excel file: %w", operation, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%s: failed to move Excel file into place: %w", operation, err)
	}

	w.logger.Info("Workbook saved",
		zap.String("path", path),
		zap.Int("rows", t.Len()))
	return nil
}

func (w *Workbooks) styleHeader(f *excelize.File, columns int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(w.sheetName, "A1", last, style)
}

// cellValue writes text that reads back unchanged as a number as a numeric
// cell. Identifiers with leading zeros or more digits than a float holds stay
// text.
func cellValue(v string) interface{} {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return v
	}
	if strconv.FormatFloat(f, 'f', -1, 64) != v {
		return v
	}
	return f
}
