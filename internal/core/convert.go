package core

// convert.go parses individual cell strings into numbers and timestamps.
//
// These helpers back both type inference at load time and explicit
// per-column coercion:
//   - Numbers accept an optional sign, decimals and scientific notation
//   - Dates accept ISO, RFC 3339, US and European orderings, and month names
//   - Two-digit years are resolved with a pivot
//   - Common missing-value tokens ("NA", "null", "#N/A", ...) are treated as empty

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex validates that a string is a valid numeric format.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// missingTokens are cell values read as missing in addition to the empty string.
var missingTokens = map[string]bool{
	"#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true, "-1.#QNAN": true,
	"-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true, "<NA>": true,
	"N/A": true, "NA": true, "NULL": true, "NaN": true, "None": true,
	"n/a": true, "nan": true, "null": true,
}

// Date layouts split by year format for proper 2-digit year handling.
// Month-first orderings are tried before day-first ones.
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "1-2-06", "1/2/06 15:04", "1/2/06 15:04:05",
		"2.1.06",
	}
	fourDigitYearLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"2006/01/02", "2006/01/02 15:04:05", "2006.01.02",
		"1/2/2006", "1-2-2006", "1/2/2006 15:04", "1/2/2006 15:04:05",
		"2/1/2006", "2-1-2006",
		"2.1.2006", "2.1.2006 15:04",
		"Jan 2, 2006", "Jan 2 2006", "January 2, 2006", "January 2 2006",
		"2 Jan 2006", "2 January 2006", "02-Jan-2006", "2-Jan-2006",
		"Mon, 02 Jan 2006 15:04:05 MST",
		"20060102",
	}
)

// isMissingToken reports whether a raw cell should be read as missing.
func isMissingToken(s string) bool {
	return s == "" || missingTokens[s] || strings.TrimSpace(s) == ""
}

// parseNumber converts a cell to a float.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	switch strings.ToLower(s) {
	case "inf", "+inf", "infinity", "+infinity":
		return math.Inf(1), true
	case "-inf", "-infinity":
		return math.Inf(-1), true
	}
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ToFloat8 converts a cell string to pgtype.Float8.
// Returns invalid for missing tokens and unparseable input.
func ToFloat8(s string) pgtype.Float8 {
	if isMissingToken(s) {
		return pgtype.Float8{}
	}
	f, ok := parseNumber(s)
	if !ok {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: f, Valid: true}
}

// parseDate converts a cell to a time using the known layouts.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	// Try 4-digit year layouts first (unambiguous)
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	// Try 2-digit year layouts with pivot year adjustment
	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// ToTimestamp converts a cell string to pgtype.Timestamp.
// Returns invalid for missing tokens and unparseable input.
func ToTimestamp(s string) pgtype.Timestamp {
	if isMissingToken(s) {
		return pgtype.Timestamp{}
	}
	t, ok := parseDate(s)
	if !ok {
		return pgtype.Timestamp{}
	}
	return pgtype.Timestamp{Time: t, Valid: true}
}

// ToText converts a cell string to pgtype.Text.
// Returns invalid for missing tokens. Present values are kept verbatim.
func ToText(s string) pgtype.Text {
	if isMissingToken(s) {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
