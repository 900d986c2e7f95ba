package core

import "errors"

// Sentinel errors. Their texts are matched by MapError, so keep them stable.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("empty file")
	ErrNoFile            = errors.New("no file provided")
	ErrFileTooLarge      = errors.New("file too large")
	ErrNoEncoding        = errors.New("could not decode file with any of the candidate encodings")
	ErrParse             = errors.New("invalid csv")
	ErrSpreadsheet       = errors.New("invalid spreadsheet")

	ErrUnknownType    = errors.New("unknown column type")
	ErrColumnNotFound = errors.New("column not found")
	ErrCoercion       = errors.New("conversion failed")

	ErrNoNumericColumns = errors.New("no numerical columns")
	ErrChartUnavailable = errors.New("chart unavailable")

	ErrSessionNotFound = errors.New("session not found")
)

// InfoError is a condition shown to the user as information rather than a
// failure, such as a chart that cannot be drawn for the selected columns.
type InfoError struct {
	Err     error
	Message string
}

func (e *InfoError) Error() string {
	return e.Message
}

func (e *InfoError) Unwrap() error {
	return e.Err
}

// newInfo builds an InfoError wrapping sentinel.
func newInfo(sentinel error, message string) *InfoError {
	return &InfoError{Err: sentinel, Message: message}
}

// AsInfo reports whether err is informational and returns it.
func AsInfo(err error) (*InfoError, bool) {
	var ie *InfoError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
