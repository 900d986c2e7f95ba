package core

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// loadXLSX reads the first worksheet of a workbook. The first non-empty row
// is the header; fully empty rows are skipped. Numeric cells load as their
// stored values regardless of number format, except those whose format
// displays them as dates.
func loadXLSX(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpreadsheet, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	raw, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %w", ErrSpreadsheet, sheets[0], err)
	}
	display, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %w", ErrSpreadsheet, sheets[0], err)
	}
	mergeDisplayedCells(raw, display)

	rows := make([][]string, 0, len(raw))
	width := 0
	for _, row := range raw {
		if isBlankRow(row) {
			continue
		}
		rows = append(rows, row)
		if len(row) > width {
			width = len(row)
		}
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	header := make([]string, width)
	copy(header, rows[0])
	return buildTable(header, rows[1:], true)
}

// mergeDisplayedCells replaces raw cells in place with their displayed text
// where that text carries the meaning: dates, booleans and non-numeric cells.
func mergeDisplayedCells(raw, display [][]string) {
	for i, row := range raw {
		if i >= len(display) {
			return
		}
		for j, r := range row {
			if j >= len(display[i]) {
				break
			}
			raw[i][j] = cellText(r, display[i][j])
		}
	}
}

func cellText(raw, shown string) string {
	if raw == shown {
		return raw
	}
	if _, ok := parseNumber(raw); !ok {
		return shown
	}
	if shown == "TRUE" || shown == "FALSE" {
		return shown
	}
	if _, ok := parseDate(shown); ok {
		return shown
	}
	return raw
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
