package core

import (
	"math"
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// ToFloat8 Tests
// ----------------------------------------------------------------------------

func TestToFloat8(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue float64
	}{
		// Valid: Basic numbers
		{name: "positive integer", input: "123", wantValid: true, wantValue: 123},
		{name: "zero", input: "0", wantValid: true, wantValue: 0},
		{name: "negative integer", input: "-456", wantValid: true, wantValue: -456},
		{name: "explicit plus", input: "+7", wantValid: true, wantValue: 7},
		{name: "decimal number", input: "123.45", wantValid: true, wantValue: 123.45},
		{name: "leading decimal point", input: ".99", wantValid: true, wantValue: 0.99},
		{name: "trailing decimal point", input: "99.", wantValid: true, wantValue: 99},
		{name: "scientific notation", input: "1.5e3", wantValid: true, wantValue: 1500},
		{name: "surrounding whitespace", input: "  42  ", wantValid: true, wantValue: 42},

		// Missing tokens
		{name: "empty string", input: "", wantValid: false},
		{name: "whitespace only", input: "   ", wantValid: false},
		{name: "NA token", input: "NA", wantValid: false},
		{name: "NaN token", input: "NaN", wantValid: false},
		{name: "excel N/A", input: "#N/A", wantValid: false},
		{name: "null token", input: "null", wantValid: false},

		// Invalid
		{name: "letters", input: "abc", wantValid: false},
		{name: "thousands separator", input: "1,234", wantValid: false},
		{name: "currency", input: "$5", wantValid: false},
		{name: "hex", input: "0x10", wantValid: false},
		{name: "two decimal points", input: "1.2.3", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToFloat8(tt.input)

			if result.Valid != tt.wantValid {
				t.Fatalf("ToFloat8(%q).Valid = %v, want %v", tt.input, result.Valid, tt.wantValid)
			}
			if tt.wantValid && result.Float64 != tt.wantValue {
				t.Errorf("ToFloat8(%q) = %v, want %v", tt.input, result.Float64, tt.wantValue)
			}
		})
	}
}

func TestToFloat8_Infinity(t *testing.T) {
	if got := ToFloat8("inf"); !got.Valid || !math.IsInf(got.Float64, 1) {
		t.Errorf("ToFloat8(inf) = %+v, want +Inf", got)
	}
	if got := ToFloat8("-Infinity"); !got.Valid || !math.IsInf(got.Float64, -1) {
		t.Errorf("ToFloat8(-Infinity) = %+v, want -Inf", got)
	}
}

// ----------------------------------------------------------------------------
// ToTimestamp Tests
// ----------------------------------------------------------------------------

func TestToTimestamp(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantDate  time.Time
	}{
		// ISO formats
		{name: "ISO date", input: "2024-01-15", wantValid: true, wantDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{name: "ISO datetime", input: "2024-01-15 13:45:00", wantValid: true, wantDate: time.Date(2024, 1, 15, 13, 45, 0, 0, time.UTC)},
		{name: "ISO T separator", input: "2024-01-15T13:45:00", wantValid: true, wantDate: time.Date(2024, 1, 15, 13, 45, 0, 0, time.UTC)},
		{name: "RFC3339 UTC", input: "2024-01-15T13:45:00Z", wantValid: true, wantDate: time.Date(2024, 1, 15, 13, 45, 0, 0, time.UTC)},
		{name: "slash year first", input: "2024/01/15", wantValid: true, wantDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},

		// US formats
		{name: "US slash", input: "01/15/2024", wantValid: true, wantDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{name: "US slash no padding", input: "1/5/2024", wantValid: true, wantDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{name: "US dash", input: "01-15-2024", wantValid: true, wantDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},

		// European formats
		{name: "EU slash day first", input: "15/01/2024", wantValid: true, wantDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{name: "EU dot", input: "15.01.2024", wantValid: true, wantDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},

		// Month names
		{name: "short month name", input: "Jan 15, 2024", wantValid: true, wantDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{name: "long month name", input: "January 15, 2024", wantValid: true, wantDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{name: "day month year", input: "15 Jan 2024", wantValid: true, wantDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},

		// Invalid
		{name: "empty", input: "", wantValid: false},
		{name: "missing token", input: "NULL", wantValid: false},
		{name: "text", input: "not a date", wantValid: false},
		{name: "invalid month", input: "2024-13-01", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToTimestamp(tt.input)

			if result.Valid != tt.wantValid {
				t.Fatalf("ToTimestamp(%q).Valid = %v, want %v", tt.input, result.Valid, tt.wantValid)
			}
			if tt.wantValid && !result.Time.Equal(tt.wantDate) {
				t.Errorf("ToTimestamp(%q) = %v, want %v", tt.input, result.Time, tt.wantDate)
			}
		})
	}
}

func TestToTimestamp_TwoDigitYear(t *testing.T) {
	originalPivot := TwoDigitYearPivot
	defer func() { TwoDigitYearPivot = originalPivot }()

	TwoDigitYearPivot = 20
	pivotYear := time.Now().Year() + 20

	tests := []struct {
		name     string
		input    string
		wantYear int
	}{
		{name: "2-digit year 25 as 2025", input: "01/15/25", wantYear: 2025},
		{name: "2-digit year 99 as 1999", input: "01/15/99", wantYear: 1999},
		{name: "2-digit year 60 beyond pivot", input: "01/15/60", wantYear: 1960},
		{name: "dash format", input: "1-15-99", wantYear: 1999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToTimestamp(tt.input)
			if !result.Valid {
				t.Fatalf("ToTimestamp(%q) invalid", tt.input)
			}
			if got := result.Time.Year(); got != tt.wantYear {
				t.Errorf("ToTimestamp(%q).Year = %d, want %d (pivot year: %d)",
					tt.input, got, tt.wantYear, pivotYear)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToText Tests
// ----------------------------------------------------------------------------

func TestToText(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      string
	}{
		{input: "hello", wantValid: true, want: "hello"},
		{input: " padded ", wantValid: true, want: " padded "},
		{input: "", wantValid: false},
		{input: "N/A", wantValid: false},
		{input: "None", wantValid: false},
	}

	for _, tt := range tests {
		result := ToText(tt.input)
		if result.Valid != tt.wantValid {
			t.Errorf("ToText(%q).Valid = %v, want %v", tt.input, result.Valid, tt.wantValid)
			continue
		}
		if result.String != tt.want {
			t.Errorf("ToText(%q) = %q, want %q", tt.input, result.String, tt.want)
		}
	}
}
