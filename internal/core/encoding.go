package core

// encoding.go holds the candidate text encodings tried when decoding
// delimited files.
//
// Decoding is strict. UTF-8 input must be valid UTF-8, and a single-byte
// code page rejects any byte it leaves undefined. Latin-1 defines all 256
// bytes, so it never rejects input.

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DefaultEncodings is the candidate order used when none is configured.
var DefaultEncodings = []string{"utf-8", "latin1", "iso-8859-1", "cp1252"}

// Encoding is a named candidate text encoding.
type Encoding struct {
	// Name is the label the encoding was requested with, used in messages.
	Name string

	cm *charmap.Charmap // nil means UTF-8
}

// encodingRegistry maps normalized labels to code pages.
var encodingRegistry = map[string]*charmap.Charmap{
	"utf-8":        nil,
	"utf8":         nil,
	"latin1":       charmap.ISO8859_1,
	"latin-1":      charmap.ISO8859_1,
	"l1":           charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso8859-1":    charmap.ISO8859_1,
	"cp1252":       charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"iso-8859-15":  charmap.ISO8859_15,
	"latin9":       charmap.ISO8859_15,
	"iso-8859-2":   charmap.ISO8859_2,
	"latin2":       charmap.ISO8859_2,
	"cp1250":       charmap.Windows1250,
	"windows-1250": charmap.Windows1250,
	"cp1251":       charmap.Windows1251,
	"windows-1251": charmap.Windows1251,
	"koi8-r":       charmap.KOI8R,
	"mac-roman":    charmap.Macintosh,
	"macintosh":    charmap.Macintosh,
	"cp437":        charmap.CodePage437,
	"cp850":        charmap.CodePage850,
}

func normalizeEncodingName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

// LookupEncoding resolves a label such as "utf-8" or "cp1252".
func LookupEncoding(name string) (Encoding, error) {
	cm, ok := encodingRegistry[normalizeEncodingName(name)]
	if !ok {
		return Encoding{}, fmt.Errorf("unknown encoding %q", name)
	}
	return Encoding{Name: strings.TrimSpace(name), cm: cm}, nil
}

// ParseEncodings resolves an ordered list of labels.
func ParseEncodings(names []string) ([]Encoding, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no candidate encodings")
	}
	out := make([]Encoding, 0, len(names))
	for _, n := range names {
		enc, err := LookupEncoding(n)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}

// MustParseEncodings is ParseEncodings for static lists.
func MustParseEncodings(names ...string) []Encoding {
	encs, err := ParseEncodings(names)
	if err != nil {
		panic(err)
	}
	return encs
}

// DecodeError reports a byte the encoding cannot represent.
type DecodeError struct {
	Encoding string
	Offset   int
	Byte     byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: cannot decode byte 0x%02x at offset %d", e.Encoding, e.Byte, e.Offset)
}

// Decode converts data to a UTF-8 string, failing on the first byte the
// encoding does not define.
func (e Encoding) Decode(data []byte) (string, error) {
	if e.cm == nil {
		if utf8.Valid(data) {
			return string(data), nil
		}
		for i := 0; i < len(data); {
			r, size := utf8.DecodeRune(data[i:])
			if r == utf8.RuneError && size <= 1 {
				return "", &DecodeError{Encoding: e.Name, Offset: i, Byte: data[i]}
			}
			i += size
		}
		return string(data), nil
	}

	var b strings.Builder
	b.Grow(len(data))
	for i, c := range data {
		r := e.cm.DecodeByte(c)
		if r == utf8.RuneError {
			return "", &DecodeError{Encoding: e.Name, Offset: i, Byte: c}
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

// Encode converts a UTF-8 string into the encoding's bytes.
// It is used to build fixtures and to round-trip downloads.
func (e Encoding) Encode(s string) ([]byte, error) {
	if e.cm == nil {
		return []byte(s), nil
	}
	out, err := e.cm.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Name, err)
	}
	return out, nil
}

func encodingNames(encs []Encoding) string {
	names := make([]string, len(encs))
	for i, e := range encs {
		names[i] = e.Name
	}
	return strings.Join(names, ", ")
}
