package core

// streaming.go provides small io.Reader wrappers used while ingesting uploads:
//
//   - BOMSkippingReader: Removes the UTF-8 BOM (0xEF 0xBB 0xBF) that Excel
//     and other Windows programs put in front of CSV exports
//   - CountingReader: Tracks bytes read and enforces the upload size limit

import (
	"fmt"
	"io"
)

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
type BOMSkippingReader struct {
	reader     io.Reader
	bomChecked bool
	buf        [3]byte
	pending    []byte
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: r}
}

// Read implements io.Reader. On the first read, it checks for and skips the BOM.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.bomChecked {
		r.bomChecked = true

		n, err := io.ReadFull(r.reader, r.buf[:])
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return 0, err
		}
		if n == 3 && r.buf[0] == 0xEF && r.buf[1] == 0xBB && r.buf[2] == 0xBF {
			r.pending = nil
		} else {
			r.pending = r.buf[:n]
		}
	}

	if len(r.pending) > 0 {
		copied := copy(p, r.pending)
		r.pending = r.pending[copied:]
		return copied, nil
	}

	return r.reader.Read(p)
}

// CountingReader wraps an io.Reader, counts bytes read, and fails once more
// than Limit bytes have been read. A Limit of zero disables the check.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Limit     int64
}

// NewCountingReader creates a counting reader with an optional size limit.
func NewCountingReader(r io.Reader, limit int64) *CountingReader {
	return &CountingReader{reader: r, Limit: limit}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	if r.Limit > 0 && r.BytesRead > r.Limit {
		return n, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, r.Limit)
	}
	return n, err
}
