package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil error returns empty", err: nil, wantCode: ""},
		{name: "file too large", err: fmt.Errorf("read upload: %w", ErrFileTooLarge), wantCode: "FILE001"},
		{name: "unsupported format", err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, ".txt"), wantCode: "FILE002"},
		{name: "no encoding", err: fmt.Errorf("%w (utf-8, latin1)", ErrNoEncoding), wantCode: "FILE003"},
		{name: "no file", err: ErrNoFile, wantCode: "FILE004"},
		{name: "empty file", err: ErrEmptyFile, wantCode: "FILE005"},
		{name: "csv parse error", err: fmt.Errorf("%w: expected 2 fields in line 3, saw 3", ErrParse), wantCode: "FILE006"},
		{name: "spreadsheet error", err: fmt.Errorf("%w: zip: not a valid zip file", ErrSpreadsheet), wantCode: "FILE006"},
		{name: "unknown type", err: fmt.Errorf("%w: %q", ErrUnknownType, "bool"), wantCode: "TYPE001"},
		{name: "conversion failed", err: ErrCoercion, wantCode: "TYPE002"},
		{name: "chart unavailable", err: ErrChartUnavailable, wantCode: "CHART001"},
		{name: "session expired", err: fmt.Errorf("%w: abc", ErrSessionNotFound), wantCode: "SES001"},
		{name: "analysis limiter", err: ErrTooManyAnalyses, wantCode: "RATE001"},
		{name: "rate limit", err: errors.New("rate limit exceeded"), wantCode: "RATE001"},
		{name: "unknown error returns default", err: errors.New("some random internal error"), wantCode: "ERR000"},
		{name: "case insensitive matching", err: errors.New("EMPTY FILE"), wantCode: "FILE005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrEmptyFile)

	expected := "The uploaded file is empty (Code: FILE005). Upload a file with a header row and data rows"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error is not user facing", err: nil, want: false},
		{name: "known error is user facing", err: ErrFileTooLarge, want: true},
		{name: "unknown error is not user facing", err: errors.New("random internal error xyz"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("session lookup: %w", ErrSessionNotFound)
		userErr := NewUserError(techErr)

		if userErr.Error() != "Your session has expired" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, ErrSessionNotFound) {
			t.Error("Unwrap() should return original error")
		}
	})
}
