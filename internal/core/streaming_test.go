package core

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestBOMSkippingReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("a,b\n1,2")...),
			expected: "a,b\n1,2",
		},
		{
			name:     "file without BOM",
			input:    []byte("a,b\n1,2"),
			expected: "a,b\n1,2",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "short input",
			input:    []byte("a"),
			expected: "a",
		},
		{
			name:     "partial BOM at start",
			input:    []byte{0xEF, 0xBB, 'a', 'b', 'c'},
			expected: string([]byte{0xEF, 0xBB, 'a', 'b', 'c'}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewBOMSkippingReader(bytes.NewReader(tt.input))
			result, err := io.ReadAll(reader)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestBOMSkippingReader_SmallBuffer(t *testing.T) {
	reader := NewBOMSkippingReader(strings.NewReader("abcdef"))
	buf := make([]byte, 2)
	var out []byte
	for {
		n, err := reader.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if string(out) != "abcdef" {
		t.Errorf("got %q, want %q", out, "abcdef")
	}
}

func TestCountingReader(t *testing.T) {
	input := strings.Repeat("x", 1000)
	reader := NewCountingReader(strings.NewReader(input), 0)

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) != len(input) {
		t.Errorf("read %d bytes, want %d", len(data), len(input))
	}
	if reader.BytesRead != int64(len(input)) {
		t.Errorf("BytesRead = %d, want %d", reader.BytesRead, len(input))
	}
}

func TestCountingReader_Limit(t *testing.T) {
	reader := NewCountingReader(strings.NewReader(strings.Repeat("x", 100)), 10)

	_, err := io.ReadAll(reader)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}
