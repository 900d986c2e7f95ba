package core

import (
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// inferColumn picks the narrowest kind that every present cell satisfies:
// numeric, then datetime when allowDates is set, then text. A column with no
// present cells stays text.
func inferColumn(name string, cells []string, allowDates bool) *Column {
	present := 0
	numeric := true
	dates := allowDates
	for _, s := range cells {
		if isMissingToken(s) {
			continue
		}
		present++
		if numeric {
			if _, ok := parseNumber(s); !ok {
				numeric = false
			}
		}
		if dates {
			if _, ok := parseDate(s); !ok {
				dates = false
			}
		}
		if !numeric && !dates {
			break
		}
	}

	switch {
	case present == 0:
		return textColumnFromCells(name, cells)
	case numeric:
		nums := make([]pgtype.Float8, len(cells))
		for i, s := range cells {
			nums[i] = ToFloat8(s)
		}
		return newNumericColumn(name, nums)
	case dates:
		times := make([]pgtype.Timestamp, len(cells))
		for i, s := range cells {
			times[i] = ToTimestamp(s)
		}
		return &Column{Name: name, Kind: KindDatetime, Times: times}
	default:
		return textColumnFromCells(name, cells)
	}
}

func textColumnFromCells(name string, cells []string) *Column {
	texts := make([]pgtype.Text, len(cells))
	for i, s := range cells {
		texts[i] = ToText(s)
	}
	return &Column{Name: name, Kind: KindText, Texts: texts}
}

// normalizeHeaders names blank headers "Unnamed: N" and suffixes repeated
// names with ".1", ".2" and so on.
func normalizeHeaders(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	taken := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		taken[h] = true
		out[i] = h
	}
	for i, h := range out {
		n := seen[h]
		seen[h] = n + 1
		if n == 0 {
			continue
		}
		name := h + "." + strconv.Itoa(n)
		for taken[name] {
			n++
			name = h + "." + strconv.Itoa(n)
		}
		seen[h] = n + 1
		taken[name] = true
		out[i] = name
	}
	return out
}

// buildTable turns a header and rows of raw cells into a typed table.
// Rows shorter than the header are padded with missing cells.
func buildTable(header []string, rows [][]string, allowDates bool) (*Table, error) {
	names := normalizeHeaders(header)
	cols := make([]*Column, len(names))
	cells := make([]string, len(rows))
	for j, name := range names {
		for i, row := range rows {
			if j < len(row) {
				cells[i] = row[j]
			} else {
				cells[i] = ""
			}
		}
		cols[j] = inferColumn(name, cells, allowDates)
	}
	return NewTable(cols...)
}
