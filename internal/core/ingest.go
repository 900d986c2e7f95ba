package core

// ingest.go turns uploaded bytes into a Table.
//
// Delimited text is decoded with each candidate encoding in order. A decoding
// failure moves on to the next candidate; a structural failure after a
// successful decode stops the loop, since another encoding would not fix it.
// Spreadsheets are read directly and never enter the encoding loop.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Format is a supported upload format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat resolves a file extension such as ".CSV" or "xlsx".
func ParseFormat(ext string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), ".")) {
	case "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// FormatFromFilename resolves the format from a file name's extension.
func FormatFromFilename(name string) (Format, error) {
	return ParseFormat(filepath.Ext(name))
}

// EncodingAttempt records the outcome of trying one candidate encoding.
type EncodingAttempt struct {
	Encoding string
	// Decoded is true when the bytes decoded and parsing was attempted.
	Decoded bool
	Err     error
}

// OK reports whether this attempt produced the table.
func (a EncodingAttempt) OK() bool {
	return a.Decoded && a.Err == nil
}

// Level classifies the attempt for display: success, warning or error.
func (a EncodingAttempt) Level() string {
	switch {
	case a.OK():
		return "success"
	case !a.Decoded:
		return "warning"
	default:
		return "error"
	}
}

// Message is the line shown to the user for this attempt.
func (a EncodingAttempt) Message() string {
	switch {
	case a.OK():
		return fmt.Sprintf("File loaded successfully with %s encoding!", a.Encoding)
	case !a.Decoded:
		return fmt.Sprintf("Failed to decode with %s. Trying next encoding...", a.Encoding)
	default:
		return fmt.Sprintf("An error occurred while loading the file with %s encoding: %v", a.Encoding, a.Err)
	}
}

// LoadResult is the outcome of Load. It is never nil, so the attempts made
// before a failure can still be reported.
type LoadResult struct {
	Table    *Table
	Format   Format
	Encoding string
	Attempts []EncodingAttempt
}

// Load parses data according to ext. For CSV, candidates are tried in order;
// an empty list means DefaultEncodings.
func Load(data []byte, ext string, candidates []Encoding) (*LoadResult, error) {
	res := &LoadResult{}

	format, err := ParseFormat(ext)
	if err != nil {
		return res, err
	}
	res.Format = format

	if len(bytes.TrimSpace(data)) == 0 {
		return res, ErrEmptyFile
	}

	if format == FormatXLSX {
		t, err := loadXLSX(data)
		if err != nil {
			return res, err
		}
		res.Table = t
		res.Encoding = string(FormatXLSX)
		return res, nil
	}

	if len(candidates) == 0 {
		candidates = MustParseEncodings(DefaultEncodings...)
	}

	for _, enc := range candidates {
		text, err := enc.Decode(data)
		if err != nil {
			res.Attempts = append(res.Attempts, EncodingAttempt{Encoding: enc.Name, Err: err})
			continue
		}

		t, err := parseCSV(text)
		res.Attempts = append(res.Attempts, EncodingAttempt{Encoding: enc.Name, Decoded: true, Err: err})
		if err != nil {
			return res, err
		}
		res.Table = t
		res.Encoding = enc.Name
		return res, nil
	}

	return res, fmt.Errorf("%w (%s)", ErrNoEncoding, encodingNames(candidates))
}

// parseCSV reads comma-separated text with a header row. Quoted fields may
// contain commas and newlines. Rows with more fields than the header are an
// error; shorter rows are padded.
func parseCSV(text string) (*Table, error) {
	r := csv.NewReader(NewBOMSkippingReader(strings.NewReader(text)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		if len(rec) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("%w: expected %d fields in line %d, saw %d",
				ErrParse, len(header), line, len(rec))
		}
		rows = append(rows, rec)
	}

	return buildTable(header, rows, false)
}
